package property

import (
	"errors"
	"fmt"

	"github.com/danderson/obsipc/fragments"
)

// ErrUnknownType is returned when decoding a property with an
// unrecognized type tag.
var ErrUnknownType = errors.New("unknown property type")

const (
	u8Size  = 1
	u32Size = 4
	numSize = 8

	rangeSize = 4 * u32Size
)

// Size returns the number of bytes [Append] writes for p.
func Size(p Property) int {
	c := p.Base()
	ret := u8Size +
		fragments.StringSize(c.Name) +
		fragments.StringSize(c.Description) +
		fragments.StringSize(c.LongDescription) +
		2*u8Size

	switch v := p.(type) {
	case *Boolean, *Color, *Button, *Font:
	case *Integer:
		ret += u8Size + 3*numSize
	case *Float:
		ret += u8Size + 3*numSize
	case *Text:
		ret += u8Size
	case *Path:
		ret += u8Size + fragments.StringSize(v.Filter) + fragments.StringSize(v.DefaultPath)
	case *List:
		ret += 2*u8Size + u32Size
		for _, it := range v.Items {
			ret += fragments.StringSize(it.Name) + u8Size + 2*numSize + fragments.StringSize(it.String)
		}
	case *EditableList:
		ret += u8Size + fragments.StringSize(v.Filter) + fragments.StringSize(v.DefaultPath)
	case *FrameRate:
		ret += u32Size + len(v.Ranges)*rangeSize + u32Size
		for _, o := range v.Options {
			ret += fragments.StringSize(o.Name) + fragments.StringSize(o.Description)
		}
	default:
		panic(fmt.Sprintf("unknown property variant %T", p))
	}
	return ret
}

// Marshal returns the encoding of p.
func Marshal(p Property) []byte {
	return Append(make([]byte, 0, Size(p)), p)
}

// Append appends the encoding of p to bs.
func Append(bs []byte, p Property) []byte {
	e := fragments.Encoder{Out: bs}
	c := p.Base()
	e.Uint8(uint8(p.Type()))
	e.String(c.Name)
	e.String(c.Description)
	e.String(c.LongDescription)
	e.Bool(c.Enabled)
	e.Bool(c.Visible)

	switch v := p.(type) {
	case *Boolean, *Color, *Button, *Font:
	case *Integer:
		e.Uint8(uint8(v.NumberType))
		e.Int64(v.Min)
		e.Int64(v.Max)
		e.Int64(v.Step)
	case *Float:
		e.Uint8(uint8(v.NumberType))
		e.Float64(v.Min)
		e.Float64(v.Max)
		e.Float64(v.Step)
	case *Text:
		e.Uint8(uint8(v.TextType))
	case *Path:
		e.Uint8(uint8(v.PathType))
		e.String(v.Filter)
		e.String(v.DefaultPath)
	case *List:
		e.Uint8(uint8(v.ListType))
		e.Uint8(uint8(v.Format))
		e.Array(len(v.Items), func(i int) error {
			it := &v.Items[i]
			e.String(it.Name)
			e.Bool(it.Enabled)
			e.Int64(it.Int)
			e.Float64(it.Float)
			e.String(it.String)
			return nil
		})
	case *EditableList:
		e.Uint8(uint8(v.ListType))
		e.String(v.Filter)
		e.String(v.DefaultPath)
	case *FrameRate:
		e.Array(len(v.Ranges), func(i int) error {
			r := v.Ranges[i]
			e.Uint32(r.Min.Num)
			e.Uint32(r.Min.Den)
			e.Uint32(r.Max.Num)
			e.Uint32(r.Max.Den)
			return nil
		})
		e.Array(len(v.Options), func(i int) error {
			e.String(v.Options[i].Name)
			e.String(v.Options[i].Description)
			return nil
		})
	default:
		panic(fmt.Sprintf("unknown property variant %T", p))
	}
	return e.Out
}

// MarshalAll returns the concatenated encodings of ps.
func MarshalAll(ps []Property) []byte {
	n := 0
	for _, p := range ps {
		n += Size(p)
	}
	bs := make([]byte, 0, n)
	for _, p := range ps {
		bs = Append(bs, p)
	}
	return bs
}

// Decode decodes a single property, which must span all of bs.
func Decode(bs []byte) (Property, error) {
	d := fragments.Decoder{In: bs}
	p, err := decode(&d)
	if err != nil {
		return nil, err
	}
	if n := d.Remaining(); n != 0 {
		return nil, fmt.Errorf("%d trailing bytes after %s property", n, p.Type())
	}
	return p, nil
}

// DecodeAll decodes a concatenation of properties, as produced by
// [MarshalAll].
func DecodeAll(bs []byte) ([]Property, error) {
	d := fragments.Decoder{In: bs}
	var ret []Property
	for d.Remaining() > 0 {
		p, err := decode(&d)
		if err != nil {
			return nil, fmt.Errorf("property %d: %w", len(ret), err)
		}
		ret = append(ret, p)
	}
	return ret, nil
}

func decode(d *fragments.Decoder) (p Property, err error) {
	start := d.Offset
	defer func() {
		if err != nil {
			d.Offset = start
		}
	}()

	tag, err := d.Uint8()
	if err != nil {
		return nil, err
	}
	switch Type(tag) {
	case TypeBoolean:
		p = &Boolean{}
	case TypeInteger:
		p = &Integer{}
	case TypeFloat:
		p = &Float{}
	case TypeText:
		p = &Text{}
	case TypePath:
		p = &Path{}
	case TypeList:
		p = &List{}
	case TypeColor:
		p = &Color{}
	case TypeButton:
		p = &Button{}
	case TypeFont:
		p = &Font{}
	case TypeEditableList:
		p = &EditableList{}
	case TypeFrameRate:
		p = &FrameRate{}
	default:
		return nil, fmt.Errorf("%w %d at offset %d", ErrUnknownType, tag, start)
	}

	if err := decodeCommon(d, p.Base()); err != nil {
		return nil, fmt.Errorf("decoding %s property: %w", p.Type(), err)
	}
	if err := decodeFields(d, p); err != nil {
		return nil, fmt.Errorf("decoding %s property %q: %w", p.Type(), p.Base().Name, err)
	}
	return p, nil
}

func decodeCommon(d *fragments.Decoder, c *Common) (err error) {
	if c.Name, err = d.String(); err != nil {
		return err
	}
	if c.Description, err = d.String(); err != nil {
		return err
	}
	if c.LongDescription, err = d.String(); err != nil {
		return err
	}
	if c.Enabled, err = d.Bool(); err != nil {
		return err
	}
	c.Visible, err = d.Bool()
	return err
}

func decodeFields(d *fragments.Decoder, p Property) (err error) {
	switch v := p.(type) {
	case *Boolean, *Color, *Button, *Font:
		return nil
	case *Integer:
		var nt uint8
		if nt, err = d.Uint8(); err != nil {
			return err
		}
		v.NumberType = NumberType(nt)
		if v.Min, err = d.Int64(); err != nil {
			return err
		}
		if v.Max, err = d.Int64(); err != nil {
			return err
		}
		v.Step, err = d.Int64()
		return err
	case *Float:
		var nt uint8
		if nt, err = d.Uint8(); err != nil {
			return err
		}
		v.NumberType = NumberType(nt)
		if v.Min, err = d.Float64(); err != nil {
			return err
		}
		if v.Max, err = d.Float64(); err != nil {
			return err
		}
		v.Step, err = d.Float64()
		return err
	case *Text:
		var tt uint8
		tt, err = d.Uint8()
		v.TextType = TextType(tt)
		return err
	case *Path:
		var pt uint8
		if pt, err = d.Uint8(); err != nil {
			return err
		}
		v.PathType = PathType(pt)
		if v.Filter, err = d.String(); err != nil {
			return err
		}
		v.DefaultPath, err = d.String()
		return err
	case *List:
		var lt, f uint8
		if lt, err = d.Uint8(); err != nil {
			return err
		}
		if f, err = d.Uint8(); err != nil {
			return err
		}
		v.ListType, v.Format = ListType(lt), ListFormat(f)
		// Smallest item: two empty strings, a bool and two numbers.
		_, err = d.Array(2*u32Size+u8Size+2*numSize, func(int) error {
			var it ListItem
			var err error
			if it.Name, err = d.String(); err != nil {
				return err
			}
			if it.Enabled, err = d.Bool(); err != nil {
				return err
			}
			if it.Int, err = d.Int64(); err != nil {
				return err
			}
			if it.Float, err = d.Float64(); err != nil {
				return err
			}
			if it.String, err = d.String(); err != nil {
				return err
			}
			v.Items = append(v.Items, it)
			return nil
		})
		return err
	case *EditableList:
		var lt uint8
		if lt, err = d.Uint8(); err != nil {
			return err
		}
		v.ListType = EditableListType(lt)
		if v.Filter, err = d.String(); err != nil {
			return err
		}
		v.DefaultPath, err = d.String()
		return err
	case *FrameRate:
		_, err = d.Array(rangeSize, func(int) error {
			var r FrameRateRange
			var err error
			if r.Min.Num, err = d.Uint32(); err != nil {
				return err
			}
			if r.Min.Den, err = d.Uint32(); err != nil {
				return err
			}
			if r.Max.Num, err = d.Uint32(); err != nil {
				return err
			}
			r.Max.Den, err = d.Uint32()
			v.Ranges = append(v.Ranges, r)
			return err
		})
		if err != nil {
			return err
		}
		_, err = d.Array(2*u32Size, func(int) error {
			var o FrameRateOption
			var err error
			if o.Name, err = d.String(); err != nil {
				return err
			}
			o.Description, err = d.String()
			v.Options = append(v.Options, o)
			return err
		})
		return err
	default:
		panic(fmt.Sprintf("unknown property variant %T", p))
	}
}
