package licenses

import (
	"context"
	"fmt"
	"sync"

	"github.com/sbomkit/model-store/pkg/spdx"
	"github.com/sbomkit/model-store/pkg/storage"
	"github.com/sbomkit/model-store/pkg/storage/memory"
)

// LicenseListURI is the document URI that all listed licenses and exceptions
// live under, no matter which document references them.
const LicenseListURI = "https://spdx.org/licenses/"

const generatedIDFormat = "SpdxLicenseGeneratedId-%08d"

// Store is a model store seeded with one object per listed license and
// exception, all filed under LicenseListURI. It behaves like any other
// store, so documents in other stores can hold refs into it and local
// modifications to license metadata are allowed, but they only live as
// long as the store does.
type Store struct {
	storage.Store

	registry *Registry

	mu      sync.Mutex
	counter uint64
}

// NewStore builds a license list store from a registry, seeding an in-memory
// store with the registry's licenses and exceptions.
func NewStore(ctx context.Context, registry *Registry) (*Store, error) {
	backing := memory.NewStore()

	for _, id := range registry.LicenseIDs() {
		l, _ := registry.License(id)
		if err := seedLicense(ctx, backing, l); err != nil {
			return nil, fmt.Errorf("failed to seed license %s: %w", id, err)
		}
	}

	for _, id := range registry.ExceptionIDs() {
		e, _ := registry.Exception(id)
		if err := seedException(ctx, backing, e); err != nil {
			return nil, fmt.Errorf("failed to seed exception %s: %w", id, err)
		}
	}

	return &Store{Store: backing, registry: registry}, nil
}

// Registry returns the registry the store was seeded from.
func (s *Store) Registry() *Registry {
	return s.registry
}

// Version returns the license list version the store was seeded from.
func (s *Store) Version() string {
	return s.registry.Version()
}

// Create allocates a new object and, for license and exception types, fills
// in the licenseId or licenseExceptionId property with the object id, the way
// the seeded entries carry it.
func (s *Store) Create(ctx context.Context, documentURI, id, typeName string) error {
	err := s.Store.Create(ctx, documentURI, id, typeName)
	if err != nil {
		return err
	}

	switch typeName {
	case spdx.ListedLicenseTypeName:
		return s.Store.SetValue(ctx, documentURI, id, spdx.PropLicenseID, storage.NewText(id))
	case spdx.ListedLicenseExceptionTypeName:
		return s.Store.SetValue(ctx, documentURI, id, spdx.PropLicenseExceptionID, storage.NewText(id))
	}

	return nil
}

// GetNextID mints ids of the form SpdxLicenseGeneratedId-00000001. Only
// listed license ids can be minted here; the documentURI argument is
// ignored since the license list is a single document.
func (s *Store) GetNextID(ctx context.Context, idType storage.IDType, documentURI string) (string, error) {
	if idType != storage.IDTypeListedLicense {
		return "", storage.NewInvalidTypeError(fmt.Sprintf("the license list can not mint ids of type %s", idType.String()))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.counter++
	return fmt.Sprintf(generatedIDFormat, s.counter), nil
}

func seedLicense(ctx context.Context, store storage.Store, l License) error {
	err := store.Create(ctx, LicenseListURI, l.LicenseID, spdx.ListedLicenseTypeName)
	if err != nil {
		return err
	}

	scalars := map[string]storage.Value{
		spdx.PropLicenseID:       storage.NewText(l.LicenseID),
		spdx.PropName:            storage.NewText(l.Name),
		spdx.PropReferenceNumber: storage.NewNumber(float64(l.ReferenceNumber)),
		spdx.PropIsOsiApproved:   storage.NewBool(l.IsOsiApproved),
		spdx.PropIsDeprecated:    storage.NewBool(l.IsDeprecated),
	}

	for property, value := range scalars {
		if err := store.SetValue(ctx, LicenseListURI, l.LicenseID, property, value); err != nil {
			return err
		}
	}

	return seedSeeAlso(ctx, store, l.LicenseID, l.SeeAlso)
}

func seedException(ctx context.Context, store storage.Store, e Exception) error {
	err := store.Create(ctx, LicenseListURI, e.ExceptionID, spdx.ListedLicenseExceptionTypeName)
	if err != nil {
		return err
	}

	scalars := map[string]storage.Value{
		spdx.PropLicenseExceptionID: storage.NewText(e.ExceptionID),
		spdx.PropName:               storage.NewText(e.Name),
		spdx.PropReferenceNumber:    storage.NewNumber(float64(e.ReferenceNumber)),
		spdx.PropIsDeprecated:       storage.NewBool(e.IsDeprecated),
	}

	for property, value := range scalars {
		if err := store.SetValue(ctx, LicenseListURI, e.ExceptionID, property, value); err != nil {
			return err
		}
	}

	return seedSeeAlso(ctx, store, e.ExceptionID, e.SeeAlso)
}

func seedSeeAlso(ctx context.Context, store storage.Store, id string, urls []string) error {
	for _, url := range urls {
		err := store.AddValueToList(ctx, LicenseListURI, id, spdx.PropSeeAlso, storage.NewText(url))
		if err != nil {
			return err
		}
	}

	return nil
}
