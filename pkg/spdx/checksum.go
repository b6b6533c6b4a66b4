package spdx

import (
	"context"
	"fmt"

	"github.com/sbomkit/model-store/pkg/model"
	"github.com/sbomkit/model-store/pkg/storage"
)

// Algorithms accepted in Checksum objects.
var ChecksumAlgorithms = []string{"SHA1", "SHA224", "SHA256", "SHA384", "SHA512", "MD2", "MD4", "MD5", "MD6"}

// Checksum pairs a hash algorithm with its value.
type Checksum struct {
	*model.Object
}

// NewChecksum binds a checksum handle, creating the object when create is set.
func NewChecksum(ctx context.Context, store storage.Store, documentURI, id string, create bool) (*Checksum, error) {
	base, err := model.NewObject(ctx, store, documentURI, id, ChecksumTypeName, create)
	if err != nil {
		return nil, err
	}

	return &Checksum{base}, nil
}

func (c *Checksum) Algorithm(ctx context.Context) (string, bool, error) {
	return c.GetStringProperty(ctx, PropAlgorithm)
}

func (c *Checksum) SetAlgorithm(ctx context.Context, algorithm string) error {
	for _, known := range ChecksumAlgorithms {
		if algorithm == known {
			return c.SetProperty(ctx, PropAlgorithm, storage.NewText(algorithm))
		}
	}

	return storage.NewInvalidTypeError(fmt.Sprintf("unknown checksum algorithm %s", algorithm))
}

func (c *Checksum) Value(ctx context.Context) (string, bool, error) {
	return c.GetStringProperty(ctx, PropChecksumValue)
}

func (c *Checksum) SetValue(ctx context.Context, value string) error {
	return c.SetProperty(ctx, PropChecksumValue, storage.NewText(value))
}

// Verify returns a warning per missing or malformed field.
func (c *Checksum) Verify(ctx context.Context) []string {
	warnings := []string{}

	algorithm, found, err := c.Algorithm(ctx)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("failed to read algorithm: %s", err.Error()))
	} else if !found || algorithm == "" {
		warnings = append(warnings, "missing required algorithm")
	}

	value, found, err := c.Value(ctx)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("failed to read checksum value: %s", err.Error()))
	} else if !found || value == "" {
		warnings = append(warnings, "missing required checksum value")
	}

	return warnings
}
