package obsipc

import (
	"fmt"

	"github.com/danderson/obsipc/fragments"
)

type msgType uint8

const (
	msgTypeCall  msgType = 1
	msgTypeReply msgType = 2
	msgTypeError msgType = 3
)

var msgTypeNames = map[msgType]string{
	msgTypeCall:  "call",
	msgTypeReply: "reply",
	msgTypeError: "error",
}

func (t msgType) String() string {
	if n, ok := msgTypeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("msgType(%d)", t)
}

// message is one framed unit of the IPC protocol.
//
// Which fields are meaningful depends on Type:
//   - msgTypeCall: Collection, Function, Values (arguments)
//   - msgTypeReply: Values
//   - msgTypeError: ErrName, ErrDetail
type message struct {
	Type msgType
	// ID matches replies and errors to the call that caused them.
	ID uint64

	Collection string
	Function   string
	Values     []Value

	ErrName   string
	ErrDetail string
}

func (m *message) String() string {
	switch m.Type {
	case msgTypeCall:
		return fmt.Sprintf("call#%d %s.%s%s", m.ID, m.Collection, m.Function, FormatValues(m.Values))
	case msgTypeReply:
		return fmt.Sprintf("reply#%d %s", m.ID, FormatValues(m.Values))
	case msgTypeError:
		return fmt.Sprintf("error#%d %s: %s", m.ID, m.ErrName, m.ErrDetail)
	default:
		return fmt.Sprintf("%s#%d", m.Type, m.ID)
	}
}

// appendMessage appends the wire encoding of m to bs.
func appendMessage(bs []byte, m *message) ([]byte, error) {
	e := fragments.Encoder{Out: bs}
	e.Uint8(uint8(m.Type))
	e.Uint64(m.ID)
	switch m.Type {
	case msgTypeCall:
		e.String(m.Collection)
		e.String(m.Function)
		appendValues(&e, m.Values)
	case msgTypeReply:
		appendValues(&e, m.Values)
	case msgTypeError:
		e.String(m.ErrName)
		e.String(m.ErrDetail)
	default:
		return bs, fmt.Errorf("unknown message type %d", m.Type)
	}
	return e.Out, nil
}

// parseMessage decodes one message, which must span all of bs.
func parseMessage(bs []byte) (*message, error) {
	d := fragments.Decoder{In: bs}
	t, err := d.Uint8()
	if err != nil {
		return nil, fmt.Errorf("reading message type: %w", err)
	}
	ret := &message{Type: msgType(t)}
	if ret.ID, err = d.Uint64(); err != nil {
		return nil, fmt.Errorf("reading message ID: %w", err)
	}

	switch ret.Type {
	case msgTypeCall:
		if ret.Collection, err = d.String(); err != nil {
			return ret, fmt.Errorf("reading collection name: %w", err)
		}
		if ret.Function, err = d.String(); err != nil {
			return ret, fmt.Errorf("reading function name: %w", err)
		}
		if ret.Values, err = decodeValues(&d); err != nil {
			return ret, fmt.Errorf("reading arguments: %w", err)
		}
	case msgTypeReply:
		if ret.Values, err = decodeValues(&d); err != nil {
			return ret, fmt.Errorf("reading reply values: %w", err)
		}
	case msgTypeError:
		if ret.ErrName, err = d.String(); err != nil {
			return ret, fmt.Errorf("reading error name: %w", err)
		}
		if ret.ErrDetail, err = d.String(); err != nil {
			return ret, fmt.Errorf("reading error detail: %w", err)
		}
	default:
		return ret, fmt.Errorf("unknown message type %d", t)
	}

	if n := d.Remaining(); n != 0 {
		return ret, fmt.Errorf("%d trailing bytes after %s message", n, ret.Type)
	}
	return ret, nil
}
