package spdx

import (
	"context"
	"fmt"

	"github.com/sbomkit/model-store/pkg/model"
	"github.com/sbomkit/model-store/pkg/storage"
)

// ListedLicense is an entry on the canonical license list. Its object id is
// the license id itself, e.g. Apache-2.0.
type ListedLicense struct {
	*model.Object
}

// NewListedLicense binds a handle to a license list entry, creating the
// object when create is set.
func NewListedLicense(ctx context.Context, store storage.Store, documentURI, id string, create bool) (*ListedLicense, error) {
	base, err := model.NewObject(ctx, store, documentURI, id, ListedLicenseTypeName, create)
	if err != nil {
		return nil, err
	}

	return &ListedLicense{base}, nil
}

// LicenseID returns the stored licenseId property, which mirrors the object
// id for license list entries.
func (l *ListedLicense) LicenseID(ctx context.Context) (string, bool, error) {
	return l.GetStringProperty(ctx, PropLicenseID)
}

func (l *ListedLicense) Name(ctx context.Context) (string, bool, error) {
	return l.GetStringProperty(ctx, PropName)
}

func (l *ListedLicense) SetName(ctx context.Context, name string) error {
	return l.SetProperty(ctx, PropName, storage.NewText(name))
}

func (l *ListedLicense) LicenseText(ctx context.Context) (string, bool, error) {
	return l.GetStringProperty(ctx, PropLicenseText)
}

func (l *ListedLicense) SetLicenseText(ctx context.Context, text string) error {
	return l.SetProperty(ctx, PropLicenseText, storage.NewText(text))
}

func (l *ListedLicense) IsOsiApproved(ctx context.Context) (bool, bool, error) {
	return l.GetBoolProperty(ctx, PropIsOsiApproved)
}

func (l *ListedLicense) IsDeprecated(ctx context.Context) (bool, bool, error) {
	return l.GetBoolProperty(ctx, PropIsDeprecated)
}

func (l *ListedLicense) ReferenceNumber(ctx context.Context) (float64, bool, error) {
	return l.GetNumberProperty(ctx, PropReferenceNumber)
}

func (l *ListedLicense) SeeAlso(ctx context.Context) ([]string, error) {
	return stringList(ctx, l.Object, PropSeeAlso)
}

// Verify returns a warning per missing or malformed field.
func (l *ListedLicense) Verify(ctx context.Context) []string {
	warnings := []string{}

	name, found, err := l.Name(ctx)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("failed to read name: %s", err.Error()))
	} else if !found || name == "" {
		warnings = append(warnings, "missing required license name")
	}

	return warnings
}

// ListedLicenseException is an exception on the canonical license list, to be
// combined with a license using the WITH operator.
type ListedLicenseException struct {
	*model.Object
}

// NewListedLicenseException binds a handle to a license list exception,
// creating the object when create is set.
func NewListedLicenseException(ctx context.Context, store storage.Store, documentURI, id string, create bool) (*ListedLicenseException, error) {
	base, err := model.NewObject(ctx, store, documentURI, id, ListedLicenseExceptionTypeName, create)
	if err != nil {
		return nil, err
	}

	return &ListedLicenseException{base}, nil
}

// ExceptionID returns the stored licenseExceptionId property, which mirrors
// the object id for license list entries.
func (e *ListedLicenseException) ExceptionID(ctx context.Context) (string, bool, error) {
	return e.GetStringProperty(ctx, PropLicenseExceptionID)
}

func (e *ListedLicenseException) Name(ctx context.Context) (string, bool, error) {
	return e.GetStringProperty(ctx, PropName)
}

func (e *ListedLicenseException) SetName(ctx context.Context, name string) error {
	return e.SetProperty(ctx, PropName, storage.NewText(name))
}

func (e *ListedLicenseException) IsDeprecated(ctx context.Context) (bool, bool, error) {
	return e.GetBoolProperty(ctx, PropIsDeprecated)
}

func (e *ListedLicenseException) SeeAlso(ctx context.Context) ([]string, error) {
	return stringList(ctx, e.Object, PropSeeAlso)
}
