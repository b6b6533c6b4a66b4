package storage

import (
	"fmt"
	"strings"
)

// Kind enumerates the value shapes a store accepts.
type Kind int

const (
	KindText Kind = iota
	KindBool
	KindNumber
	KindRef
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "string"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindRef:
		return "ref"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Value is a single storable value: a text, boolean or number scalar, a typed
// reference to another object, or a list of such values. Model objects also
// satisfy Value so that a live object can be handed anywhere a reference is
// expected; stores never see them, the model layer converts an object to its
// Ref (copying it across store boundaries first) before the value reaches a
// store.
type Value interface {
	Kind() Kind
}

// Handle is the part of a model object a store boundary needs: where the
// object lives and which store holds its state.
type Handle interface {
	Value
	Reference() Ref
	ModelStore() Store
}

// Text is a string value.
type Text struct {
	Value string
}

func (Text) Kind() Kind { return KindText }

// Bool is a boolean value.
type Bool struct {
	Value bool
}

func (Bool) Kind() Kind { return KindBool }

// Number is a numeric value.
type Number struct {
	Value float64
}

func (Number) Kind() Kind { return KindNumber }

// Ref points at another object without embedding it. The type name travels
// with the reference so a resolver can construct the right model type without
// consulting the target store first.
type Ref struct {
	DocumentURI string
	ID          string
	Type        string
}

func (Ref) Kind() Kind { return KindRef }

// List is an ordered sequence of scalar and reference values.
type List []Value

func (List) Kind() Kind { return KindList }

func NewText(v string) Text        { return Text{Value: v} }
func NewBool(v bool) Bool          { return Bool{Value: v} }
func NewNumber(v float64) Number   { return Number{Value: v} }
func NewList(values ...Value) List { return List(values) }

// RefTo returns the reference a value resolves to, if it is a reference or a
// live object.
func RefTo(v Value) (Ref, bool) {
	switch rv := v.(type) {
	case Ref:
		return rv, true
	case Handle:
		return rv.Reference(), true
	}
	return Ref{}, false
}

// ValidateStorable rejects values that must not reach a store as they are:
// nils, live object handles that still need to be converted to refs, and
// lists used where a single value is expected.
func ValidateStorable(value Value) error {
	if value == nil {
		return NewInvalidTypeError("nil is not a storable value")
	}

	switch value.Kind() {
	case KindText, KindBool, KindNumber:
		return nil
	case KindRef:
		if _, isPlain := value.(Ref); !isPlain {
			return NewInvalidTypeError("live objects must be converted to refs before they reach a store")
		}
		return nil
	case KindList:
		return NewInvalidTypeError("a list can not be stored where a single value is expected")
	}

	return NewInvalidTypeError(fmt.Sprintf("unsupported value kind %s", value.Kind()))
}

// ValueEqual compares two values. Scalars compare by kind and content.
// References compare by target identity: exact document URI and
// case-insensitive id, regardless of type name, holding store or the
// referenced object's contents. A reference and the live object it points at
// compare equal. Lists compare element by element in order.
func ValueEqual(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	ra, aIsRef := RefTo(a)
	rb, bIsRef := RefTo(b)
	if aIsRef || bIsRef {
		if !aIsRef || !bIsRef {
			return false
		}
		return ra.DocumentURI == rb.DocumentURI && strings.EqualFold(ra.ID, rb.ID)
	}

	switch av := a.(type) {
	case Text:
		bv, ok := b.(Text)
		return ok && av.Value == bv.Value
	case Bool:
		bv, ok := b.(Bool)
		return ok && av.Value == bv.Value
	case Number:
		bv, ok := b.(Number)
		return ok && av.Value == bv.Value
	case List:
		bv, ok := b.(List)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !ValueEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	}

	return false
}
