// Package storage defines the contract between stateless model objects and
// the stores that hold their state. A store keeps property values keyed by
// (document URI, object id, property name); it never stores a nested object
// graph, only typed references plus each referenced object's own properties.
package storage

import (
	"context"
	"fmt"
)

// IDType classifies an object identifier into the storage category that
// governs how a store mints and interprets it.
type IDType int

const (
	// IDTypeLicenseRef identifies a locally defined license (LicenseRef- prefix)
	IDTypeLicenseRef IDType = iota
	// IDTypeSpdxID identifies an element within a document (SPDXRef- prefix)
	IDTypeSpdxID
	// IDTypeDocumentRef identifies an external document (DocumentRef- prefix)
	IDTypeDocumentRef
	// IDTypeListedLicense identifies an entry in the canonical license list
	IDTypeListedLicense
	// IDTypeLiteral identifies one of the reserved literals (none, noassertion)
	IDTypeLiteral
	// IDTypeAnonymous identifies an object with no stable external identifier
	IDTypeAnonymous
)

const (
	LicenseRefPrefix  string = "LicenseRef-"
	SpdxRefPrefix     string = "SPDXRef-"
	DocumentRefPrefix string = "DocumentRef-"

	LiteralNone        string = "none"
	LiteralNoAssertion string = "noassertion"
)

func (t IDType) String() string {
	switch t {
	case IDTypeLicenseRef:
		return "LicenseRef"
	case IDTypeSpdxID:
		return "SpdxId"
	case IDTypeDocumentRef:
		return "DocumentRef"
	case IDTypeListedLicense:
		return "ListedLicense"
	case IDTypeLiteral:
		return "Literal"
	case IDTypeAnonymous:
		return "Anonymous"
	default:
		return fmt.Sprintf("IDType(%d)", int(t))
	}
}

// ParseIDType maps the wire form produced by IDType.String back to an IDType.
func ParseIDType(s string) (IDType, error) {
	for _, t := range []IDType{
		IDTypeLicenseRef, IDTypeSpdxID, IDTypeDocumentRef,
		IDTypeListedLicense, IDTypeLiteral, IDTypeAnonymous,
	} {
		if t.String() == s {
			return t, nil
		}
	}
	return IDTypeAnonymous, NewInvalidTypeError(fmt.Sprintf("unknown id type %q", s))
}

// Store is the persistence boundary every backing store must satisfy.
//
// A property name is either a scalar slot or a list slot for the lifetime of
// an object, never both. Any operation addressing a (documentURI, id) that is
// not present fails with a not found error, except Exists and Create. The
// store alone is responsible for making its internal state transitions safe
// under concurrent callers.
type Store interface {
	// Exists reports whether an object is present in the store.
	Exists(ctx context.Context, documentURI, id string) (bool, error)

	// Create allocates an empty object of the given type. It fails with an
	// already exists error if the object is present.
	Create(ctx context.Context, documentURI, id, typeName string) error

	// GetValue returns the value stored in a slot. The second return value is
	// false if the property was never set; that is not an error. List slots
	// are returned as a List value.
	GetValue(ctx context.Context, documentURI, id, propertyName string) (Value, bool, error)

	// SetValue stores a scalar or reference value, creating the slot if
	// absent. It fails with an invalid type error if the slot currently holds
	// a list.
	SetValue(ctx context.Context, documentURI, id, propertyName string, value Value) error

	// RemoveProperty deletes a property and its value. Removing an absent
	// property is a no-op.
	RemoveProperty(ctx context.Context, documentURI, id, propertyName string) error

	// GetValueList returns the elements of a list slot in order. An absent
	// slot yields an empty list.
	GetValueList(ctx context.Context, documentURI, id, propertyName string) ([]Value, error)

	// ClearValueList empties a list slot, creating it if absent.
	ClearValueList(ctx context.Context, documentURI, id, propertyName string) error

	// AddValueToList appends a scalar or reference to a list slot, creating
	// the slot if absent.
	AddValueToList(ctx context.Context, documentURI, id, propertyName string, value Value) error

	// RemoveValueFromList removes the first element equal to value. Removing
	// a value that is not present is a no-op.
	RemoveValueFromList(ctx context.Context, documentURI, id, propertyName string, value Value) error

	// ReplaceValueList replaces the entire list, equivalent to a clear
	// followed by adding each value in order. The replacement must appear
	// atomic to readers.
	ReplaceValueList(ctx context.Context, documentURI, id, propertyName string, values []Value) error

	// GetNextID mints a fresh identifier for the category, unique within the
	// document. Successive calls return lexically increasing identifiers and
	// never repeat, including under concurrent callers.
	GetNextID(ctx context.Context, idType IDType, documentURI string) (string, error)

	// CopyFrom copies one object's full property set from source into this
	// store, re-homing nested references recursively and preserving the
	// document URI and id.
	CopyFrom(ctx context.Context, documentURI, id, typeName string, source Store) error

	// GetPropertyValueNames enumerates the populated scalar slots of an object.
	GetPropertyValueNames(ctx context.Context, documentURI, id string) ([]string, error)

	// GetPropertyValueListNames enumerates the populated list slots of an object.
	GetPropertyValueListNames(ctx context.Context, documentURI, id string) ([]string, error)
}

// Transactional is an optional capability that lets a store group several
// mutations into a single transactional boundary for better throughput.
// Stores that do not implement it simply see the mutations one by one.
type Transactional interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
