package storage

import (
	"context"
	"fmt"
)

// CopyObject copies the object at (documentURI, id) and everything it
// references, directly or transitively, from source into dst. Objects keep
// their document URI and id, so a reference stays valid after the copy.
//
// An object that is already present in dst is left untouched and its
// properties are not visited. The target object is created before its
// properties are, which is what terminates reference cycles: when the
// recursion comes back around to an object it has already started on, Exists
// reports true and the branch stops.
func CopyObject(ctx context.Context, dst Store, documentURI, id, typeName string, source Store) error {
	if dst == source {
		return nil
	}

	exists, err := dst.Exists(ctx, documentURI, id)
	if err != nil {
		return err
	}

	if exists {
		return nil
	}

	err = dst.Create(ctx, documentURI, id, typeName)
	if err != nil {
		return err
	}

	propertyNames, err := source.GetPropertyValueNames(ctx, documentURI, id)
	if err != nil {
		return err
	}

	for _, name := range propertyNames {
		value, found, err := source.GetValue(ctx, documentURI, id, name)
		if err != nil {
			return err
		}
		if !found {
			continue
		}

		value, err = rehome(ctx, dst, value, source)
		if err != nil {
			return fmt.Errorf("failed to copy property %s of %s: %w", name, id, err)
		}

		err = dst.SetValue(ctx, documentURI, id, name, value)
		if err != nil {
			return err
		}
	}

	listNames, err := source.GetPropertyValueListNames(ctx, documentURI, id)
	if err != nil {
		return err
	}

	for _, name := range listNames {
		values, err := source.GetValueList(ctx, documentURI, id, name)
		if err != nil {
			return err
		}

		err = dst.ClearValueList(ctx, documentURI, id, name)
		if err != nil {
			return err
		}

		for _, value := range values {
			value, err = rehome(ctx, dst, value, source)
			if err != nil {
				return fmt.Errorf("failed to copy list property %s of %s: %w", name, id, err)
			}

			err = dst.AddValueToList(ctx, documentURI, id, name, value)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// rehome makes sure that the target of a reference value exists in dst before
// the reference itself is stored there. Scalars pass through untouched.
func rehome(ctx context.Context, dst Store, value Value, source Store) (Value, error) {
	ref, isRef := RefTo(value)
	if !isRef {
		return value, nil
	}

	err := CopyObject(ctx, dst, ref.DocumentURI, ref.ID, ref.Type, source)
	if err != nil {
		return nil, err
	}

	return ref, nil
}
