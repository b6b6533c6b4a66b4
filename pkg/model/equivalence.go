package model

import (
	"context"

	"github.com/sbomkit/model-store/pkg/storage"
)

// Equivalent compares the stored contents of two objects. Unlike Equals it
// looks at property values, not coordinates, so two objects with different
// ids or in different stores can be equivalent.
//
// Two objects are equivalent when their type names match and every property
// populated on either side agrees: scalars by value, references by target
// identity (nested objects are not descended into), and lists as multisets,
// where each element on one side consumes exactly one equal element on the
// other. A property that is absent on one side counts as equal to an empty
// list on the other, but not to a scalar.
func Equivalent(ctx context.Context, a, b storage.Handle) (bool, error) {
	refA, refB := a.Reference(), b.Reference()
	if refA.Type != refB.Type {
		return false, nil
	}

	storeA, storeB := a.ModelStore(), b.ModelStore()
	if storeA == nil || storeB == nil {
		return false, storage.NewMissingStoreError("equivalence needs both objects bound to a store")
	}

	scalarsA, listsA, err := propertyShapes(ctx, storeA, refA)
	if err != nil {
		return false, err
	}

	scalarsB, listsB, err := propertyShapes(ctx, storeB, refB)
	if err != nil {
		return false, err
	}

	for _, name := range unionOf(scalarsA, scalarsB, listsA, listsB) {
		same, err := propertyEquivalent(ctx, name,
			side{store: storeA, ref: refA, isScalar: scalarsA[name], isList: listsA[name]},
			side{store: storeB, ref: refB, isScalar: scalarsB[name], isList: listsB[name]},
		)
		if err != nil || !same {
			return false, err
		}
	}

	return true, nil
}

type side struct {
	store    storage.Store
	ref      storage.Ref
	isScalar bool
	isList   bool
}

func propertyEquivalent(ctx context.Context, name string, a, b side) (bool, error) {
	// a list on one side can only match a list, or nothing at all - and
	// nothing at all only when the list is empty
	if a.isList || b.isList {
		if a.isScalar || b.isScalar {
			return false, nil
		}

		valuesA, err := listOrEmpty(ctx, a, name)
		if err != nil {
			return false, err
		}

		valuesB, err := listOrEmpty(ctx, b, name)
		if err != nil {
			return false, err
		}

		return multisetEqual(valuesA, valuesB), nil
	}

	valueA, foundA, err := scalarOrAbsent(ctx, a, name)
	if err != nil {
		return false, err
	}

	valueB, foundB, err := scalarOrAbsent(ctx, b, name)
	if err != nil {
		return false, err
	}

	if foundA != foundB {
		return false, nil
	}

	if !foundA {
		return true, nil
	}

	return storage.ValueEqual(valueA, valueB), nil
}

func scalarOrAbsent(ctx context.Context, s side, name string) (storage.Value, bool, error) {
	if !s.isScalar {
		return nil, false, nil
	}

	return s.store.GetValue(ctx, s.ref.DocumentURI, s.ref.ID, name)
}

func listOrEmpty(ctx context.Context, s side, name string) ([]storage.Value, error) {
	if !s.isList {
		return nil, nil
	}

	return s.store.GetValueList(ctx, s.ref.DocumentURI, s.ref.ID, name)
}

// multisetEqual reports whether the two value sequences contain the same
// elements with the same multiplicities, in any order. Every element on the
// left consumes the first equal element still remaining on the right.
func multisetEqual(a, b []storage.Value) bool {
	if len(a) != len(b) {
		return false
	}

	remaining := make([]storage.Value, len(b))
	copy(remaining, b)

	for _, value := range a {
		matched := false

		for i, candidate := range remaining {
			if storage.ValueEqual(value, candidate) {
				remaining = append(remaining[:i], remaining[i+1:]...)
				matched = true
				break
			}
		}

		if !matched {
			return false
		}
	}

	return true
}

func propertyShapes(ctx context.Context, store storage.Store, ref storage.Ref) (map[string]bool, map[string]bool, error) {
	scalarNames, err := store.GetPropertyValueNames(ctx, ref.DocumentURI, ref.ID)
	if err != nil {
		return nil, nil, err
	}

	listNames, err := store.GetPropertyValueListNames(ctx, ref.DocumentURI, ref.ID)
	if err != nil {
		return nil, nil, err
	}

	return nameSet(scalarNames), nameSet(listNames), nil
}

func nameSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}

	return set
}

func unionOf(sets ...map[string]bool) []string {
	union := map[string]bool{}
	for _, set := range sets {
		for name := range set {
			union[name] = true
		}
	}

	names := make([]string, 0, len(union))
	for name := range union {
		names = append(names, name)
	}

	return names
}
