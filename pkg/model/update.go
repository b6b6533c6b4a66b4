package model

import (
	"context"

	"github.com/sbomkit/model-store/pkg/storage"
)

// UpdateKind names the mutation an Update will perform.
type UpdateKind int

const (
	SetPropertyUpdate UpdateKind = iota
	RemovePropertyUpdate
	AddValueToListUpdate
	RemoveValueFromListUpdate
	ClearValueListUpdate
	ReplaceValueListUpdate
)

func (k UpdateKind) String() string {
	switch k {
	case SetPropertyUpdate:
		return "set"
	case RemovePropertyUpdate:
		return "remove"
	case AddValueToListUpdate:
		return "add to list"
	case RemoveValueFromListUpdate:
		return "remove from list"
	case ClearValueListUpdate:
		return "clear list"
	case ReplaceValueListUpdate:
		return "replace list"
	default:
		return "unknown"
	}
}

// Update is one deferred mutation of one object, described as data. Building
// an Update touches no store; the change happens when Apply is called, and
// values passed in are normalized at that point, not before.
type Update struct {
	object   *Object
	kind     UpdateKind
	property string
	value    storage.Value
	values   []storage.Value
}

func (u Update) Kind() UpdateKind { return u.kind }
func (u Update) Property() string { return u.property }

// Target returns the reference of the object the update will mutate.
func (u Update) Target() storage.Ref { return u.object.Reference() }

// Apply performs the mutation.
func (u Update) Apply(ctx context.Context) error {
	switch u.kind {
	case SetPropertyUpdate:
		return u.object.SetProperty(ctx, u.property, u.value)
	case RemovePropertyUpdate:
		return u.object.RemoveProperty(ctx, u.property)
	case AddValueToListUpdate:
		return u.object.AddValueToList(ctx, u.property, u.value)
	case RemoveValueFromListUpdate:
		return u.object.RemoveValueFromList(ctx, u.property, u.value)
	case ClearValueListUpdate:
		return u.object.ClearValueList(ctx, u.property)
	case ReplaceValueListUpdate:
		return u.object.ReplaceValueList(ctx, u.property, u.values)
	}

	return storage.NewInvalidTypeError("unknown update kind")
}

// ApplyAll applies the updates in order, stopping at the first failure. When
// every update targets the same store and that store can group mutations
// transactionally, the batch is applied inside a single transaction.
func ApplyAll(ctx context.Context, updates ...Update) error {
	if len(updates) == 0 {
		return nil
	}

	store := updates[0].object.store
	shared := true

	for _, u := range updates[1:] {
		if u.object.store != store {
			shared = false
			break
		}
	}

	if shared {
		if tx, ok := store.(storage.Transactional); ok {
			return tx.WithTransaction(ctx, func(ctx context.Context) error {
				return applyEach(ctx, updates)
			})
		}
	}

	return applyEach(ctx, updates)
}

func applyEach(ctx context.Context, updates []Update) error {
	for _, u := range updates {
		err := u.Apply(ctx)
		if err != nil {
			return err
		}
	}

	return nil
}

// UpdateSetProperty describes setting a property without performing it.
func (o *Object) UpdateSetProperty(name string, value storage.Value) Update {
	return Update{object: o, kind: SetPropertyUpdate, property: name, value: value}
}

// UpdateRemoveProperty describes removing a property without performing it.
func (o *Object) UpdateRemoveProperty(name string) Update {
	return Update{object: o, kind: RemovePropertyUpdate, property: name}
}

// UpdateAddValueToList describes a list append without performing it.
func (o *Object) UpdateAddValueToList(name string, value storage.Value) Update {
	return Update{object: o, kind: AddValueToListUpdate, property: name, value: value}
}

// UpdateRemoveValueFromList describes a list removal without performing it.
func (o *Object) UpdateRemoveValueFromList(name string, value storage.Value) Update {
	return Update{object: o, kind: RemoveValueFromListUpdate, property: name, value: value}
}

// UpdateClearValueList describes emptying a list without performing it.
func (o *Object) UpdateClearValueList(name string) Update {
	return Update{object: o, kind: ClearValueListUpdate, property: name}
}

// UpdateReplaceValueList describes swapping a list's contents without
// performing it.
func (o *Object) UpdateReplaceValueList(name string, values []storage.Value) Update {
	return Update{object: o, kind: ReplaceValueListUpdate, property: name, values: values}
}
