// Package model implements stateless handles over stored objects. A handle
// carries nothing but its coordinates and the store that holds the object's
// state, so any number of handles can point at the same object and every read
// goes back to the store.
package model

import (
	"context"
	"errors"
	"fmt"

	"github.com/sbomkit/model-store/pkg/storage"
)

// Object is a handle to one stored object. It satisfies storage.Value and
// storage.Handle, so a live object can be written wherever a reference is
// expected and the write path will convert it to a plain ref, copying the
// object across store boundaries first when it has to.
type Object struct {
	store       storage.Store
	documentURI string
	id          string
	typeName    string
}

// TypedModel is the common surface of every concrete model type, generic
// handles included.
type TypedModel interface {
	storage.Handle
	Type() string
}

// NewObject binds a handle to the object at (documentURI, id) in store. With
// create set the object is created first if it does not exist. Without it,
// binding to a missing object fails with a not found error.
func NewObject(ctx context.Context, store storage.Store, documentURI, id, typeName string, create bool) (*Object, error) {
	if store == nil {
		return nil, storage.NewMissingStoreError(fmt.Sprintf("can not bind %s without a model store", id))
	}

	exists, err := store.Exists(ctx, documentURI, id)
	if err != nil {
		return nil, err
	}

	if !exists {
		if !create {
			return nil, storage.NewNotFoundError(fmt.Sprintf("%s does not exist in document %s", id, documentURI))
		}

		err = store.Create(ctx, documentURI, id, typeName)
		if err != nil && !errors.Is(err, storage.ErrAlreadyExists) {
			// a concurrent caller winning the create still leaves us with
			// the object we asked for
			return nil, err
		}
	}

	return &Object{
		store:       store,
		documentURI: documentURI,
		id:          id,
		typeName:    typeName,
	}, nil
}

func (o *Object) ID() string                { return o.id }
func (o *Object) DocumentURI() string       { return o.documentURI }
func (o *Object) Type() string              { return o.typeName }
func (o *Object) ModelStore() storage.Store { return o.store }
func (o *Object) Kind() storage.Kind        { return storage.KindRef }

func (o *Object) Reference() storage.Ref {
	return storage.Ref{DocumentURI: o.documentURI, ID: o.id, Type: o.typeName}
}

func (o *Object) String() string {
	return o.documentURI + "#" + o.id
}

// Equals reports whether other points at the same object: same document URI
// and same id apart from case. Stores and property contents do not take part.
func (o *Object) Equals(other storage.Value) bool {
	return storage.ValueEqual(o, other)
}

// GetProperty returns the raw stored value of a property. References come
// back as storage.Ref; use GetObjectProperty to turn them into live handles.
func (o *Object) GetProperty(ctx context.Context, name string) (storage.Value, bool, error) {
	return o.store.GetValue(ctx, o.documentURI, o.id, name)
}

func (o *Object) GetStringProperty(ctx context.Context, name string) (string, bool, error) {
	value, found, err := o.GetProperty(ctx, name)
	if err != nil || !found {
		return "", false, err
	}

	text, ok := value.(storage.Text)
	if !ok {
		return "", false, storage.NewInvalidTypeError(
			fmt.Sprintf("property %s of %s holds a %s, not a string", name, o.id, value.Kind()),
		)
	}

	return text.Value, true, nil
}

func (o *Object) GetBoolProperty(ctx context.Context, name string) (bool, bool, error) {
	value, found, err := o.GetProperty(ctx, name)
	if err != nil || !found {
		return false, false, err
	}

	b, ok := value.(storage.Bool)
	if !ok {
		return false, false, storage.NewInvalidTypeError(
			fmt.Sprintf("property %s of %s holds a %s, not a boolean", name, o.id, value.Kind()),
		)
	}

	return b.Value, true, nil
}

func (o *Object) GetNumberProperty(ctx context.Context, name string) (float64, bool, error) {
	value, found, err := o.GetProperty(ctx, name)
	if err != nil || !found {
		return 0, false, err
	}

	n, ok := value.(storage.Number)
	if !ok {
		return 0, false, storage.NewInvalidTypeError(
			fmt.Sprintf("property %s of %s holds a %s, not a number", name, o.id, value.Kind()),
		)
	}

	return n.Value, true, nil
}

// GetObjectProperty resolves a reference property to a live handle of the
// registered type, bound to the same store as this object.
func (o *Object) GetObjectProperty(ctx context.Context, name string) (TypedModel, bool, error) {
	value, found, err := o.GetProperty(ctx, name)
	if err != nil || !found {
		return nil, false, err
	}

	ref, ok := value.(storage.Ref)
	if !ok {
		return nil, false, storage.NewInvalidTypeError(
			fmt.Sprintf("property %s of %s holds a %s, not a ref", name, o.id, value.Kind()),
		)
	}

	resolved, err := Inflate(ctx, o.store, ref)
	if err != nil {
		return nil, false, err
	}

	return resolved, true, nil
}

// SetProperty stores a scalar or reference value. Live objects are converted
// to refs; an object living in another store is copied into this one first,
// unless it is already present here.
func (o *Object) SetProperty(ctx context.Context, name string, value storage.Value) error {
	value, err := o.normalize(ctx, value)
	if err != nil {
		return err
	}

	return o.store.SetValue(ctx, o.documentURI, o.id, name, value)
}

func (o *Object) RemoveProperty(ctx context.Context, name string) error {
	return o.store.RemoveProperty(ctx, o.documentURI, o.id, name)
}

// GetValueList returns the elements of a list property in order, references
// as plain refs. An absent list reads as empty.
func (o *Object) GetValueList(ctx context.Context, name string) ([]storage.Value, error) {
	return o.store.GetValueList(ctx, o.documentURI, o.id, name)
}

// GetObjectList resolves every element of a list property to a live handle.
// It fails with an invalid type error if an element is not a reference.
func (o *Object) GetObjectList(ctx context.Context, name string) ([]TypedModel, error) {
	values, err := o.GetValueList(ctx, name)
	if err != nil {
		return nil, err
	}

	objects := make([]TypedModel, 0, len(values))

	for _, value := range values {
		ref, ok := value.(storage.Ref)
		if !ok {
			return nil, storage.NewInvalidTypeError(
				fmt.Sprintf("list %s of %s contains a %s, not a ref", name, o.id, value.Kind()),
			)
		}

		resolved, err := Inflate(ctx, o.store, ref)
		if err != nil {
			return nil, err
		}

		objects = append(objects, resolved)
	}

	return objects, nil
}

func (o *Object) AddValueToList(ctx context.Context, name string, value storage.Value) error {
	value, err := o.normalize(ctx, value)
	if err != nil {
		return err
	}

	return o.store.AddValueToList(ctx, o.documentURI, o.id, name, value)
}

func (o *Object) RemoveValueFromList(ctx context.Context, name string, value storage.Value) error {
	value, err := o.normalize(ctx, value)
	if err != nil {
		return err
	}

	return o.store.RemoveValueFromList(ctx, o.documentURI, o.id, name, value)
}

func (o *Object) ClearValueList(ctx context.Context, name string) error {
	return o.store.ClearValueList(ctx, o.documentURI, o.id, name)
}

// ReplaceValueList swaps the full contents of a list property in one go.
func (o *Object) ReplaceValueList(ctx context.Context, name string, values []storage.Value) error {
	normalized := make([]storage.Value, 0, len(values))

	for _, value := range values {
		value, err := o.normalize(ctx, value)
		if err != nil {
			return err
		}
		normalized = append(normalized, value)
	}

	return o.store.ReplaceValueList(ctx, o.documentURI, o.id, name, normalized)
}

// normalize prepares a caller supplied value for storage. Live objects become
// refs, and an object held by a foreign store is materialized in this
// object's store first so that the stored ref has a target to resolve to.
func (o *Object) normalize(ctx context.Context, value storage.Value) (storage.Value, error) {
	handle, ok := value.(storage.Handle)
	if !ok {
		return value, nil
	}

	ref := handle.Reference()

	source := handle.ModelStore()
	if source == nil {
		return nil, storage.NewMissingStoreError(fmt.Sprintf("%s is not bound to a model store", ref.ID))
	}

	if source != o.store {
		err := storage.CopyObject(ctx, o.store, ref.DocumentURI, ref.ID, ref.Type, source)
		if err != nil {
			return nil, err
		}
	}

	return ref, nil
}
