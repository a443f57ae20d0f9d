package listview

import (
	"cmp"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidArgument is returned for non-positive page sizes and for sort
// fields or directions the model does not know about.
var ErrInvalidArgument = errors.New("invalid argument")

// Direction is the sort order of a [Sort].
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Field identifies one entry in a model's sort capability table.
type Field string

// Sort is the sort specification of a model.
type Sort struct {
	Field     Field     `json:"field"`
	Direction Direction `json:"direction"`
}

// String renders the sort in "field-direction" form, e.g. "title-asc".
func (s Sort) String() string {
	return string(s.Field) + "-" + string(s.Direction)
}

// Filter holds the search criteria. An empty Search matches every item.
type Filter struct {
	Search string `json:"search"`
}

// ParseDirection accepts "asc"/"ascending" and "desc"/"descending" in any case.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	default:
		return "", fmt.Errorf("%w: unknown sort direction %q", ErrInvalidArgument, s)
	}
}

// ParseSort parses a "field-direction" token such as "id-desc".
// A token without a direction sorts ascending.
func ParseSort(s string) (Sort, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Sort{}, fmt.Errorf("%w: empty sort", ErrInvalidArgument)
	}

	field, dir, found := strings.Cut(s, "-")
	if field == "" {
		return Sort{}, fmt.Errorf("%w: sort %q has no field", ErrInvalidArgument, s)
	}
	if !found {
		return Sort{Field: Field(strings.ToLower(field)), Direction: Ascending}, nil
	}

	d, err := ParseDirection(dir)
	if err != nil {
		return Sort{}, err
	}
	return Sort{Field: Field(strings.ToLower(field)), Direction: d}, nil
}

type keyKind uint8

const (
	textKey keyKind = iota
	floatKey
	uintKey
)

// Key is a comparable sort key produced by an [Accessor].
type Key struct {
	kind    keyKind
	text    string
	number  float64
	integer uint64
}

// StringKey builds a key compared case-insensitively.
func StringKey(s string) Key {
	return Key{kind: textKey, text: strings.ToLower(s)}
}

// NumberKey builds a key compared numerically.
func NumberKey(n float64) Key {
	return Key{kind: floatKey, number: n}
}

// UintKey builds a numeric key for identifiers. Two UintKeys compare exactly
// over the full uint range.
func UintKey(n uint) Key {
	return Key{kind: uintKey, integer: uint64(n)}
}

func (k Key) numeric() bool { return k.kind != textKey }

func (k Key) float() float64 {
	if k.kind == uintKey {
		return float64(k.integer)
	}
	return k.number
}

// Compare returns -1, 0 or +1. Numeric keys order before string keys so that
// an accessor mixing both kinds still yields a total order.
func (k Key) Compare(other Key) int {
	switch {
	case k.kind == uintKey && other.kind == uintKey:
		return cmp.Compare(k.integer, other.integer)
	case k.numeric() && other.numeric():
		return cmp.Compare(k.float(), other.float())
	case k.numeric():
		return -1
	case other.numeric():
		return 1
	default:
		return strings.Compare(k.text, other.text)
	}
}

// Accessor extracts the sort key of one field from an item.
type Accessor[T any] func(T) Key

// compare orders two keys for the given direction. Equal keys report 0 so the
// stable sort falls back to insertion order.
func compare(a, b Key, d Direction) int {
	c := a.Compare(b)
	if d == Descending {
		return -c
	}
	return c
}

func validDirection(d Direction) bool {
	return d == Ascending || d == Descending
}
