package builder

import (
	"fmt"
	"math/rand"
)

const (
	// KeyID holds the element identifier.
	KeyID = "id"
	// KeyType holds the element kind (section, column, widget, container).
	KeyType = "elType"
	// KeyChildren holds nested elements.
	KeyChildren = "elements"
)

// Element is a single node of a builder content tree.
type Element map[string]any

// ID returns the element identifier or an empty string.
func (e Element) ID() string {
	id, _ := e[KeyID].(string)
	return id
}

// Type returns the element kind or an empty string.
func (e Element) Type() string {
	kind, _ := e[KeyType].(string)
	return kind
}

// Children returns the nested elements. Children decoded from JSON arrive as
// []any and are converted; entries that are not objects are skipped.
func (e Element) Children() []Element {
	return asElements(e[KeyChildren])
}

// Clone returns a shallow copy of the element. Nested children are not copied.
func (e Element) Clone() Element {
	if e == nil {
		return nil
	}
	out := make(Element, len(e))
	for key, value := range e {
		out[key] = value
	}
	return out
}

// IDFunc produces element identifiers.
type IDFunc func() string

// RandomID returns a seven character lowercase hex identifier in the range
// the builder itself generates.
func RandomID() string {
	return fmt.Sprintf("%x", rand.Intn(0xfffffff+1))
}

// FromAny converts a decoded JSON value into a content tree. Values that are
// not arrays yield nil.
func FromAny(raw any) []Element {
	return asElements(raw)
}

func asElements(raw any) []Element {
	switch v := raw.(type) {
	case []Element:
		return v
	case []map[string]any:
		out := make([]Element, 0, len(v))
		for _, item := range v {
			out = append(out, Element(item))
		}
		return out
	case []any:
		out := make([]Element, 0, len(v))
		for _, item := range v {
			switch el := item.(type) {
			case map[string]any:
				out = append(out, Element(el))
			case Element:
				out = append(out, el)
			}
		}
		return out
	default:
		return nil
	}
}
