package spdx

import (
	"context"
	"fmt"
	"strings"

	"github.com/sbomkit/model-store/pkg/model"
	"github.com/sbomkit/model-store/pkg/storage"
)

// File is a single file described by a document. Files are SPDX elements, so
// their ids carry the SPDXRef- prefix.
type File struct {
	*model.Object
}

// NewFile binds a file handle, creating the object when create is set.
func NewFile(ctx context.Context, store storage.Store, documentURI, id string, create bool) (*File, error) {
	if !strings.HasPrefix(id, storage.SpdxRefPrefix) {
		return nil, storage.NewInvalidTypeError(
			fmt.Sprintf("file ids must start with %s, got %s", storage.SpdxRefPrefix, id),
		)
	}

	base, err := model.NewObject(ctx, store, documentURI, id, FileTypeName, create)
	if err != nil {
		return nil, err
	}

	return &File{base}, nil
}

func (f *File) FileName(ctx context.Context) (string, bool, error) {
	return f.GetStringProperty(ctx, PropFileName)
}

func (f *File) SetFileName(ctx context.Context, name string) error {
	return f.SetProperty(ctx, PropFileName, storage.NewText(name))
}

func (f *File) CopyrightText(ctx context.Context) (string, bool, error) {
	return f.GetStringProperty(ctx, PropCopyrightText)
}

func (f *File) SetCopyrightText(ctx context.Context, text string) error {
	return f.SetProperty(ctx, PropCopyrightText, storage.NewText(text))
}

// LicenseConcluded returns the license the creator concluded for this file,
// either a reference to a license object or one of the reserved literals.
func (f *File) LicenseConcluded(ctx context.Context) (storage.Value, bool, error) {
	return f.GetProperty(ctx, PropLicenseConcluded)
}

func (f *File) SetLicenseConcluded(ctx context.Context, license storage.Value) error {
	return f.SetProperty(ctx, PropLicenseConcluded, license)
}

// AddChecksum attaches a checksum object to this file, copying it into the
// file's store first if it lives elsewhere.
func (f *File) AddChecksum(ctx context.Context, checksum *Checksum) error {
	return f.AddValueToList(ctx, PropChecksums, checksum)
}

// Checksums resolves the attached checksum objects.
func (f *File) Checksums(ctx context.Context) ([]*Checksum, error) {
	resolved, err := f.GetObjectList(ctx, PropChecksums)
	if err != nil {
		return nil, err
	}

	checksums := make([]*Checksum, 0, len(resolved))

	for _, object := range resolved {
		checksum, ok := object.(*Checksum)
		if !ok {
			return nil, storage.NewInvalidTypeError(
				fmt.Sprintf("checksum list of %s contains a %s", f.ID(), object.Type()),
			)
		}
		checksums = append(checksums, checksum)
	}

	return checksums, nil
}

func (f *File) Contributors(ctx context.Context) ([]string, error) {
	return stringList(ctx, f.Object, PropFileContributor)
}

func (f *File) AddContributor(ctx context.Context, contributor string) error {
	return f.AddValueToList(ctx, PropFileContributor, storage.NewText(contributor))
}

// Verify returns a warning per missing or malformed field.
func (f *File) Verify(ctx context.Context) []string {
	warnings := []string{}

	name, found, err := f.FileName(ctx)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("failed to read file name: %s", err.Error()))
	} else if !found || name == "" {
		warnings = append(warnings, "missing required file name")
	}

	checksums, err := f.Checksums(ctx)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("failed to read checksums: %s", err.Error()))
	} else if len(checksums) == 0 {
		warnings = append(warnings, "a file must carry at least one checksum")
	} else {
		for _, checksum := range checksums {
			warnings = append(warnings, checksum.Verify(ctx)...)
		}
	}

	return warnings
}
