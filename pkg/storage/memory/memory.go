// Package memory provides the reference storage.Store implementation, backed
// by process memory. It is the default store for tests and for tenants that
// do not configure a persistent backend.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/sbomkit/model-store/pkg/storage"
)

type storedObject struct {
	typeName string
	scalars  map[string]storage.Value
	lists    map[string][]storage.Value
}

type objectKey struct {
	documentURI string
	id          string
}

type counterKey struct {
	documentURI string
	prefix      string
}

type memstore struct {
	mu       sync.RWMutex
	objects  map[objectKey]*storedObject
	counters map[counterKey]uint64
}

// NewStore creates an empty in-memory store.
func NewStore() storage.Store {
	return &memstore{
		objects:  map[objectKey]*storedObject{},
		counters: map[counterKey]uint64{},
	}
}

func (s *memstore) Exists(ctx context.Context, documentURI, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, found := s.objects[objectKey{documentURI, id}]
	return found, nil
}

func (s *memstore) Create(ctx context.Context, documentURI, id, typeName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := objectKey{documentURI, id}
	if _, found := s.objects[key]; found {
		return storage.NewAlreadyExistsError(fmt.Sprintf("%s already exists in document %s", id, documentURI))
	}

	s.objects[key] = &storedObject{
		typeName: typeName,
		scalars:  map[string]storage.Value{},
		lists:    map[string][]storage.Value{},
	}

	// an externally minted id that looks like one of ours must push the
	// matching counter forward, or a later GetNextID would collide with it
	if prefix, taken, ok := storage.ParseMintedID(id); ok {
		counter := counterKey{documentURI, prefix}
		if taken > s.counters[counter] {
			s.counters[counter] = taken
		}
	}

	return nil
}

func (s *memstore) GetValue(ctx context.Context, documentURI, id, propertyName string) (storage.Value, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	object, err := s.lookup(documentURI, id)
	if err != nil {
		return nil, false, err
	}

	if value, found := object.scalars[propertyName]; found {
		return value, true, nil
	}

	if values, found := object.lists[propertyName]; found {
		return storage.List(copyValues(values)), true, nil
	}

	return nil, false, nil
}

func (s *memstore) SetValue(ctx context.Context, documentURI, id, propertyName string, value storage.Value) error {
	if err := storage.ValidateStorable(value); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	object, err := s.lookup(documentURI, id)
	if err != nil {
		return err
	}

	if _, found := object.lists[propertyName]; found {
		return storage.NewInvalidTypeError(fmt.Sprintf("property %s of %s holds a list", propertyName, id))
	}

	object.scalars[propertyName] = value
	return nil
}

func (s *memstore) RemoveProperty(ctx context.Context, documentURI, id, propertyName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	object, err := s.lookup(documentURI, id)
	if err != nil {
		return err
	}

	delete(object.scalars, propertyName)
	delete(object.lists, propertyName)
	return nil
}

func (s *memstore) GetValueList(ctx context.Context, documentURI, id, propertyName string) ([]storage.Value, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	object, err := s.lookup(documentURI, id)
	if err != nil {
		return nil, err
	}

	if _, found := object.scalars[propertyName]; found {
		return nil, storage.NewInvalidTypeError(fmt.Sprintf("property %s of %s holds a scalar", propertyName, id))
	}

	return copyValues(object.lists[propertyName]), nil
}

func (s *memstore) ClearValueList(ctx context.Context, documentURI, id, propertyName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	object, err := s.lookup(documentURI, id)
	if err != nil {
		return err
	}

	if _, found := object.scalars[propertyName]; found {
		return storage.NewInvalidTypeError(fmt.Sprintf("property %s of %s holds a scalar", propertyName, id))
	}

	object.lists[propertyName] = []storage.Value{}
	return nil
}

func (s *memstore) AddValueToList(ctx context.Context, documentURI, id, propertyName string, value storage.Value) error {
	if err := storage.ValidateStorable(value); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	object, err := s.lookup(documentURI, id)
	if err != nil {
		return err
	}

	if _, found := object.scalars[propertyName]; found {
		return storage.NewInvalidTypeError(fmt.Sprintf("property %s of %s holds a scalar", propertyName, id))
	}

	object.lists[propertyName] = append(object.lists[propertyName], value)
	return nil
}

func (s *memstore) RemoveValueFromList(ctx context.Context, documentURI, id, propertyName string, value storage.Value) error {
	if err := storage.ValidateStorable(value); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	object, err := s.lookup(documentURI, id)
	if err != nil {
		return err
	}

	if _, found := object.scalars[propertyName]; found {
		return storage.NewInvalidTypeError(fmt.Sprintf("property %s of %s holds a scalar", propertyName, id))
	}

	values := object.lists[propertyName]
	for i, v := range values {
		if storage.ValueEqual(v, value) {
			object.lists[propertyName] = append(values[:i], values[i+1:]...)
			return nil
		}
	}

	return nil
}

func (s *memstore) ReplaceValueList(ctx context.Context, documentURI, id, propertyName string, values []storage.Value) error {
	for _, value := range values {
		if err := storage.ValidateStorable(value); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	object, err := s.lookup(documentURI, id)
	if err != nil {
		return err
	}

	if _, found := object.scalars[propertyName]; found {
		return storage.NewInvalidTypeError(fmt.Sprintf("property %s of %s holds a scalar", propertyName, id))
	}

	object.lists[propertyName] = copyValues(values)
	return nil
}

func (s *memstore) GetNextID(ctx context.Context, idType storage.IDType, documentURI string) (string, error) {
	prefix, err := storage.MintPrefix(idType)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	counter := counterKey{documentURI, prefix}
	s.counters[counter]++

	return storage.FormatMintedID(prefix, s.counters[counter]), nil
}

func (s *memstore) CopyFrom(ctx context.Context, documentURI, id, typeName string, source storage.Store) error {
	return storage.CopyObject(ctx, s, documentURI, id, typeName, source)
}

func (s *memstore) GetPropertyValueNames(ctx context.Context, documentURI, id string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	object, err := s.lookup(documentURI, id)
	if err != nil {
		return nil, err
	}

	return sortedKeys(object.scalars), nil
}

func (s *memstore) GetPropertyValueListNames(ctx context.Context, documentURI, id string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	object, err := s.lookup(documentURI, id)
	if err != nil {
		return nil, err
	}

	return sortedKeys(object.lists), nil
}

// lookup must be called with at least a read lock held.
func (s *memstore) lookup(documentURI, id string) (*storedObject, error) {
	object, found := s.objects[objectKey{documentURI, id}]
	if !found {
		return nil, storage.NewNotFoundError(fmt.Sprintf("%s does not exist in document %s", id, documentURI))
	}

	return object, nil
}

func copyValues(values []storage.Value) []storage.Value {
	copied := make([]storage.Value, len(values))
	copy(copied, values)
	return copied
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}

	sort.Strings(keys)
	return keys
}
