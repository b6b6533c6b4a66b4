package spdx

import (
	"context"
	"fmt"
	"strings"

	"github.com/sbomkit/model-store/pkg/model"
	"github.com/sbomkit/model-store/pkg/storage"
)

// Package is a distributable unit described by a document. Packages are SPDX
// elements, so their ids carry the SPDXRef- prefix.
type Package struct {
	*model.Object
}

// NewPackage binds a package handle, creating the object when create is set.
func NewPackage(ctx context.Context, store storage.Store, documentURI, id string, create bool) (*Package, error) {
	if !strings.HasPrefix(id, storage.SpdxRefPrefix) {
		return nil, storage.NewInvalidTypeError(
			fmt.Sprintf("package ids must start with %s, got %s", storage.SpdxRefPrefix, id),
		)
	}

	base, err := model.NewObject(ctx, store, documentURI, id, PackageTypeName, create)
	if err != nil {
		return nil, err
	}

	return &Package{base}, nil
}

func (p *Package) Name(ctx context.Context) (string, bool, error) {
	return p.GetStringProperty(ctx, PropName)
}

func (p *Package) SetName(ctx context.Context, name string) error {
	return p.SetProperty(ctx, PropName, storage.NewText(name))
}

func (p *Package) CopyrightText(ctx context.Context) (string, bool, error) {
	return p.GetStringProperty(ctx, PropCopyrightText)
}

func (p *Package) SetCopyrightText(ctx context.Context, text string) error {
	return p.SetProperty(ctx, PropCopyrightText, storage.NewText(text))
}

// LicenseConcluded returns the license the creator concluded for this
// package, either a reference to a license object or one of the reserved
// literals.
func (p *Package) LicenseConcluded(ctx context.Context) (storage.Value, bool, error) {
	return p.GetProperty(ctx, PropLicenseConcluded)
}

func (p *Package) SetLicenseConcluded(ctx context.Context, license storage.Value) error {
	return p.SetProperty(ctx, PropLicenseConcluded, license)
}

// AddFile attaches a file to this package through a CONTAINS relationship.
// The relationship object is created in the package's store under a minted
// anonymous id.
func (p *Package) AddFile(ctx context.Context, file *File) (*Relationship, error) {
	id, err := p.ModelStore().GetNextID(ctx, storage.IDTypeAnonymous, p.DocumentURI())
	if err != nil {
		return nil, err
	}

	relationship, err := NewRelationship(ctx, p.ModelStore(), p.DocumentURI(), id, true)
	if err != nil {
		return nil, err
	}

	err = relationship.SetRelationshipType(ctx, "CONTAINS")
	if err != nil {
		return nil, err
	}

	err = relationship.SetRelatedElement(ctx, file)
	if err != nil {
		return nil, err
	}

	err = p.AddValueToList(ctx, PropRelationships, relationship)
	if err != nil {
		return nil, err
	}

	return relationship, nil
}

// Relationships resolves the relationship objects attached to this package.
func (p *Package) Relationships(ctx context.Context) ([]*Relationship, error) {
	resolved, err := p.GetObjectList(ctx, PropRelationships)
	if err != nil {
		return nil, err
	}

	relationships := make([]*Relationship, 0, len(resolved))

	for _, object := range resolved {
		relationship, ok := object.(*Relationship)
		if !ok {
			return nil, storage.NewInvalidTypeError(
				fmt.Sprintf("relationship list of %s contains a %s", p.ID(), object.Type()),
			)
		}
		relationships = append(relationships, relationship)
	}

	return relationships, nil
}

// Verify returns a warning per missing or malformed field.
func (p *Package) Verify(ctx context.Context) []string {
	warnings := []string{}

	name, found, err := p.Name(ctx)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("failed to read name: %s", err.Error()))
	} else if !found || name == "" {
		warnings = append(warnings, "missing required package name")
	}

	return warnings
}
