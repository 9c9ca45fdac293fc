package node

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/stackbom/pkg/errors"
)

// ValueKind tags the variant held by a [Value].
type ValueKind uint8

const (
	// KindInvalid is the zero Value. It is rejected by every node variant.
	KindInvalid ValueKind = iota
	KindString
	KindNumber
	KindBool
	// KindRef is a reference to another node by identifier.
	KindRef
	// KindList is an ordered list of scalars and references.
	KindList
)

// String returns the lowercase name of the kind.
func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindRef:
		return "ref"
	case KindList:
		return "list"
	default:
		return "invalid"
	}
}

// Value is an attribute value: a scalar, a node reference, or a flat list of
// those. Nodes are always referenced by identifier, never embedded. Values
// are immutable; List copies its arguments.
type Value struct {
	kind ValueKind
	str  string // string scalar or reference identifier
	num  float64
	b    bool
	list []Value
}

// String returns a string scalar.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number returns a numeric scalar.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Int returns a numeric scalar holding i.
func Int(i int64) Value { return Value{kind: KindNumber, num: float64(i)} }

// Bool returns a boolean scalar.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Ref returns a reference to the node identified by id.
func Ref(id string) Value { return Value{kind: KindRef, str: id} }

// List returns an ordered list value. Nested lists are representable but
// fail [Value.Validate].
func List(items ...Value) Value {
	return Value{kind: KindList, list: append([]Value(nil), items...)}
}

// Kind returns the variant tag.
func (v Value) Kind() ValueKind { return v.kind }

// AsString returns the string scalar.
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsNumber returns the numeric scalar.
func (v Value) AsNumber() (float64, bool) { return v.num, v.kind == KindNumber }

// AsBool returns the boolean scalar.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsRef returns the referenced identifier.
func (v Value) AsRef() (string, bool) { return v.str, v.kind == KindRef }

// Items returns a copy of the list items, or nil for non-list values.
func (v Value) Items() []Value {
	if v.kind != KindList {
		return nil
	}
	return append([]Value(nil), v.list...)
}

// Validate checks the value is representable in a document: a known kind,
// valid UTF-8 text, a finite number, an absolute or blank reference, and
// list items that are themselves scalars or references.
func (v Value) Validate() error {
	switch v.kind {
	case KindString:
		if !utf8.ValidString(v.str) {
			return errors.New(errors.ErrCodeInvalidValue, "string %q is not valid UTF-8", v.str)
		}
		return nil
	case KindBool:
		return nil
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return errors.New(errors.ErrCodeInvalidValue, "number %v is not finite", v.num)
		}
		return nil
	case KindRef:
		if err := errors.ValidateIdentifier(v.str); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidValue, err, "invalid reference")
		}
		return nil
	case KindList:
		for i, item := range v.list {
			if item.kind == KindList {
				return errors.New(errors.ErrCodeInvalidValue, "list item %d: nested lists are not allowed", i)
			}
			if err := item.Validate(); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidValue, err, "list item %d", i)
			}
		}
		return nil
	default:
		return errors.New(errors.ErrCodeInvalidValue, "value has no kind")
	}
}

// Equal reports whether v and o hold the same variant and contents.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString, KindRef:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.b == o.b
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// String formats the value for logs and test failures.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return strconv.Quote(v.str)
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindRef:
		return "<" + v.str + ">"
	case KindList:
		parts := make([]string, len(v.list))
		for i, item := range v.list {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, " ") + "]"
	default:
		return fmt.Sprintf("invalid(%d)", v.kind)
	}
}
