package osn

import (
	"reflect"

	"github.com/danderson/obsipc/transport"
	"github.com/fxamacker/cbor/v2"
)

// MaxSettingsSize is the largest encoded settings a source may hold,
// so that replies carrying them fit in one frame.
const MaxSettingsSize = transport.MaxFrameSize - 1024

var (
	settingsEnc = mustEncMode(cbor.CanonicalEncOptions())
	settingsDec = mustDecMode(cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	})
)

func mustEncMode(o cbor.EncOptions) cbor.EncMode {
	m, err := o.EncMode()
	if err != nil {
		panic(err)
	}
	return m
}

func mustDecMode(o cbor.DecOptions) cbor.DecMode {
	m, err := o.DecMode()
	if err != nil {
		panic(err)
	}
	return m
}

// EncodeSettings returns the wire encoding of source settings.
//
// Settings travel as canonical CBOR maps, so equal settings always
// encode to the same bytes.
func EncodeSettings(settings map[string]any) ([]byte, error) {
	if settings == nil {
		settings = map[string]any{}
	}
	return settingsEnc.Marshal(settings)
}

// DecodeSettings decodes source settings. An empty input decodes to
// empty settings.
func DecodeSettings(bs []byte) (map[string]any, error) {
	ret := map[string]any{}
	if len(bs) == 0 {
		return ret, nil
	}
	if err := settingsDec.Unmarshal(bs, &ret); err != nil {
		return nil, err
	}
	return ret, nil
}
