package spdx

import (
	"context"

	"github.com/sbomkit/model-store/pkg/model"
	"github.com/sbomkit/model-store/pkg/storage"
)

// Relationship links one element to another, e.g. a package to the files it
// CONTAINS.
type Relationship struct {
	*model.Object
}

// NewRelationship binds a relationship handle, creating the object when
// create is set.
func NewRelationship(ctx context.Context, store storage.Store, documentURI, id string, create bool) (*Relationship, error) {
	base, err := model.NewObject(ctx, store, documentURI, id, RelationshipTypeName, create)
	if err != nil {
		return nil, err
	}

	return &Relationship{base}, nil
}

func (r *Relationship) RelationshipType(ctx context.Context) (string, bool, error) {
	return r.GetStringProperty(ctx, PropRelationshipType)
}

func (r *Relationship) SetRelationshipType(ctx context.Context, relationshipType string) error {
	return r.SetProperty(ctx, PropRelationshipType, storage.NewText(relationshipType))
}

// RelatedElement resolves the element on the far side of the relationship.
func (r *Relationship) RelatedElement(ctx context.Context) (model.TypedModel, bool, error) {
	return r.GetObjectProperty(ctx, PropRelatedElement)
}

func (r *Relationship) SetRelatedElement(ctx context.Context, element storage.Value) error {
	return r.SetProperty(ctx, PropRelatedElement, element)
}
