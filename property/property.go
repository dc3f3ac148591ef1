// Package property describes the user-configurable fields of engine
// resources, and encodes those descriptions for the IPC wire.
//
// A [Property] is one of a closed set of variants. Every encoded
// property starts with a one-byte [Type] tag followed by the fields
// shared by all variants ([Common]), then the variant's own fields.
// Strings are a little-endian uint32 length followed by that many
// bytes, booleans are one byte.
package property

import "fmt"

// Type is the wire tag of a property variant.
type Type uint8

const (
	TypeBoolean Type = iota + 1
	TypeInteger
	TypeFloat
	TypeText
	TypePath
	TypeList
	TypeColor
	TypeButton
	TypeFont
	TypeEditableList
	TypeFrameRate
)

var typeNames = map[Type]string{
	TypeBoolean:      "Boolean",
	TypeInteger:      "Integer",
	TypeFloat:        "Float",
	TypeText:         "Text",
	TypePath:         "Path",
	TypeList:         "List",
	TypeColor:        "Color",
	TypeButton:       "Button",
	TypeFont:         "Font",
	TypeEditableList: "EditableList",
	TypeFrameRate:    "FrameRate",
}

func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// Property is a descriptor of one configurable field.
//
// The concrete types are *Boolean, *Integer, *Float, *Text, *Path,
// *List, *Color, *Button, *Font, *EditableList and *FrameRate.
type Property interface {
	Type() Type
	// Base returns the fields shared by all variants.
	Base() *Common
}

// Common holds the fields shared by all property variants.
type Common struct {
	// Name is the settings key the property edits.
	Name            string
	Description     string
	LongDescription string
	Enabled         bool
	Visible         bool
}

func (c *Common) Base() *Common { return c }

// Boolean is an on/off toggle.
type Boolean struct{ Common }

func (*Boolean) Type() Type { return TypeBoolean }

// NumberType is how a numeric property is presented.
type NumberType uint8

const (
	NumberScroller NumberType = iota
	NumberSlider
)

// Integer is a bounded integer field.
type Integer struct {
	Common
	NumberType     NumberType
	Min, Max, Step int64
}

func (*Integer) Type() Type { return TypeInteger }

// Float is a bounded floating point field.
type Float struct {
	Common
	NumberType     NumberType
	Min, Max, Step float64
}

func (*Float) Type() Type { return TypeFloat }

// TextType is how a text property is presented.
type TextType uint8

const (
	TextDefault TextType = iota
	TextPassword
	TextMultiLine
)

// Text is a free-form string field.
type Text struct {
	Common
	TextType TextType
}

func (*Text) Type() Type { return TypeText }

// PathType is the kind of filesystem path a [Path] selects.
type PathType uint8

const (
	PathFile PathType = iota
	PathSaveFile
	PathDirectory
)

// Path is a filesystem path field.
type Path struct {
	Common
	PathType PathType
	// Filter is a file type filter, in the engine's
	// "Description (*.ext);;..." syntax.
	Filter      string
	DefaultPath string
}

func (*Path) Type() Type { return TypePath }

// ListType is how a [List] is presented.
type ListType uint8

const (
	ListInvalid ListType = iota
	ListEditable
	ListList
)

// ListFormat is which value of a [ListItem] is meaningful.
type ListFormat uint8

const (
	FormatInvalid ListFormat = iota
	FormatInt
	FormatFloat
	FormatString
)

// ListItem is one choice of a [List].
type ListItem struct {
	Name    string
	Enabled bool
	Int     int64
	Float   float64
	String  string
}

// List is a choice among ordered items.
type List struct {
	Common
	ListType ListType
	Format   ListFormat
	Items    []ListItem
}

func (*List) Type() Type { return TypeList }

// Color is an RGBA color field.
type Color struct{ Common }

func (*Color) Type() Type { return TypeColor }

// Button is an action trigger.
type Button struct{ Common }

func (*Button) Type() Type { return TypeButton }

// Font is a font selection field.
type Font struct{ Common }

func (*Font) Type() Type { return TypeFont }

// EditableListType is the kind of entries an [EditableList] holds.
type EditableListType uint8

const (
	EditableStrings EditableListType = iota
	EditableFiles
	EditableFilesAndURLs
)

// EditableList is a user-editable list of strings or paths.
type EditableList struct {
	Common
	ListType    EditableListType
	Filter      string
	DefaultPath string
}

func (*EditableList) Type() Type { return TypeEditableList }

// Fraction is a rational frame rate.
type Fraction struct {
	Num, Den uint32
}

// FrameRateRange is an inclusive range of supported frame rates.
type FrameRateRange struct {
	Min, Max Fraction
}

// FrameRateOption is a named preset frame rate.
type FrameRateOption struct {
	Name        string
	Description string
}

// FrameRate is a frame rate selector.
type FrameRate struct {
	Common
	Ranges  []FrameRateRange
	Options []FrameRateOption
}

func (*FrameRate) Type() Type { return TypeFrameRate }
