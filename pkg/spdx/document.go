package spdx

import (
	"context"
	"fmt"

	"github.com/sbomkit/model-store/pkg/model"
	"github.com/sbomkit/model-store/pkg/storage"
)

// SpdxIDDocument is the fixed element id of a document object within its own
// document URI.
const SpdxIDDocument string = "SPDXRef-DOCUMENT"

// DataLicenseCC0 is the only data license the format allows.
const DataLicenseCC0 string = "CC0-1.0"

// Document is the root object of an SPDX document.
type Document struct {
	*model.Object
}

// NewDocument binds a handle to the root object of the document at
// documentURI, creating it when create is set. The root object always has the
// id SPDXRef-DOCUMENT.
func NewDocument(ctx context.Context, store storage.Store, documentURI string, create bool) (*Document, error) {
	base, err := model.NewObject(ctx, store, documentURI, SpdxIDDocument, DocumentTypeName, create)
	if err != nil {
		return nil, err
	}

	return &Document{base}, nil
}

func (d *Document) Name(ctx context.Context) (string, bool, error) {
	return d.GetStringProperty(ctx, PropName)
}

func (d *Document) SetName(ctx context.Context, name string) error {
	return d.SetProperty(ctx, PropName, storage.NewText(name))
}

func (d *Document) SpecVersion(ctx context.Context) (string, bool, error) {
	return d.GetStringProperty(ctx, PropSpecVersion)
}

func (d *Document) SetSpecVersion(ctx context.Context, version string) error {
	return d.SetProperty(ctx, PropSpecVersion, storage.NewText(version))
}

func (d *Document) DataLicense(ctx context.Context) (string, bool, error) {
	return d.GetStringProperty(ctx, PropDataLicense)
}

func (d *Document) SetDataLicense(ctx context.Context, license string) error {
	return d.SetProperty(ctx, PropDataLicense, storage.NewText(license))
}

// AddDescribedElement records that this document describes the given element.
func (d *Document) AddDescribedElement(ctx context.Context, element storage.Value) error {
	return d.AddValueToList(ctx, PropDescribes, element)
}

// DescribedElements resolves the elements this document describes.
func (d *Document) DescribedElements(ctx context.Context) ([]model.TypedModel, error) {
	return d.GetObjectList(ctx, PropDescribes)
}

// Verify returns a warning per missing or malformed field.
func (d *Document) Verify(ctx context.Context) []string {
	warnings := []string{}

	name, found, err := d.Name(ctx)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("failed to read name: %s", err.Error()))
	} else if !found || name == "" {
		warnings = append(warnings, "missing required document name")
	}

	version, found, err := d.SpecVersion(ctx)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("failed to read spec version: %s", err.Error()))
	} else if !found || version == "" {
		warnings = append(warnings, "missing required spec version")
	}

	license, found, err := d.DataLicense(ctx)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("failed to read data license: %s", err.Error()))
	} else if found && license != DataLicenseCC0 {
		warnings = append(warnings, fmt.Sprintf("data license must be %s, got %s", DataLicenseCC0, license))
	} else if !found {
		warnings = append(warnings, "missing required data license")
	}

	return warnings
}
