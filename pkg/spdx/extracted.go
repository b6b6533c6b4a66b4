package spdx

import (
	"context"
	"fmt"
	"strings"

	"github.com/sbomkit/model-store/pkg/model"
	"github.com/sbomkit/model-store/pkg/storage"
)

// ExtractedLicensingInfo is a license found inside the analyzed artifacts
// rather than on the canonical license list. Its id has to carry the
// LicenseRef- prefix.
type ExtractedLicensingInfo struct {
	*model.Object
}

// NewExtractedLicensingInfo binds a handle to a locally defined license,
// creating the object when create is set.
func NewExtractedLicensingInfo(ctx context.Context, store storage.Store, documentURI, id string, create bool) (*ExtractedLicensingInfo, error) {
	if !strings.HasPrefix(id, storage.LicenseRefPrefix) {
		return nil, storage.NewInvalidTypeError(
			fmt.Sprintf("extracted licensing info ids must start with %s, got %s", storage.LicenseRefPrefix, id),
		)
	}

	base, err := model.NewObject(ctx, store, documentURI, id, ExtractedLicensingInfoTypeName, create)
	if err != nil {
		return nil, err
	}

	return &ExtractedLicensingInfo{base}, nil
}

func (x *ExtractedLicensingInfo) Name(ctx context.Context) (string, bool, error) {
	return x.GetStringProperty(ctx, PropName)
}

func (x *ExtractedLicensingInfo) SetName(ctx context.Context, name string) error {
	return x.SetProperty(ctx, PropName, storage.NewText(name))
}

func (x *ExtractedLicensingInfo) ExtractedText(ctx context.Context) (string, bool, error) {
	return x.GetStringProperty(ctx, PropExtractedText)
}

func (x *ExtractedLicensingInfo) SetExtractedText(ctx context.Context, text string) error {
	return x.SetProperty(ctx, PropExtractedText, storage.NewText(text))
}

func (x *ExtractedLicensingInfo) Comment(ctx context.Context) (string, bool, error) {
	return x.GetStringProperty(ctx, PropComment)
}

func (x *ExtractedLicensingInfo) SetComment(ctx context.Context, comment string) error {
	return x.SetProperty(ctx, PropComment, storage.NewText(comment))
}

func (x *ExtractedLicensingInfo) SeeAlso(ctx context.Context) ([]string, error) {
	return stringList(ctx, x.Object, PropSeeAlso)
}

func (x *ExtractedLicensingInfo) AddSeeAlso(ctx context.Context, url string) error {
	return x.AddValueToList(ctx, PropSeeAlso, storage.NewText(url))
}

// Verify returns a warning per missing or malformed field.
func (x *ExtractedLicensingInfo) Verify(ctx context.Context) []string {
	warnings := []string{}

	text, found, err := x.ExtractedText(ctx)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("failed to read extracted text: %s", err.Error()))
	} else if !found || text == "" {
		warnings = append(warnings, "missing required extracted text")
	}

	return warnings
}

func stringList(ctx context.Context, o *model.Object, property string) ([]string, error) {
	values, err := o.GetValueList(ctx, property)
	if err != nil {
		return nil, err
	}

	result := make([]string, 0, len(values))

	for _, value := range values {
		text, ok := value.(storage.Text)
		if !ok {
			return nil, storage.NewInvalidTypeError(
				fmt.Sprintf("list %s contains a %s, not a string", property, value.Kind()),
			)
		}
		result = append(result, text.Value)
	}

	return result, nil
}
