package storage

import (
	"errors"
	"testing"

	"github.com/matryer/is"
)

func TestScalarsCompareByContent(t *testing.T) {
	is := is.New(t)

	is.True(ValueEqual(NewText("MIT"), NewText("MIT")))
	is.True(!ValueEqual(NewText("MIT"), NewText("mit")))
	is.True(ValueEqual(NewBool(true), NewBool(true)))
	is.True(ValueEqual(NewNumber(42), NewNumber(42)))
	is.True(!ValueEqual(NewNumber(42), NewNumber(42.5)))
}

func TestScalarsOfDifferentKindsAreNotEqual(t *testing.T) {
	is := is.New(t)

	is.True(!ValueEqual(NewText("true"), NewBool(true)))
	is.True(!ValueEqual(NewText("42"), NewNumber(42)))
	is.True(!ValueEqual(NewBool(false), nil))
	is.True(ValueEqual(nil, nil))
}

func TestRefsCompareByDocumentAndCaseInsensitiveID(t *testing.T) {
	is := is.New(t)

	a := Ref{DocumentURI: "https://sbom.example/doc1", ID: "SPDXRef-File", Type: "File"}
	b := Ref{DocumentURI: "https://sbom.example/doc1", ID: "spdxref-file", Type: "Snippet"}

	is.True(ValueEqual(a, b)) // type names do not take part in ref identity

	b.DocumentURI = "https://sbom.example/DOC1"
	is.True(!ValueEqual(a, b)) // document URIs compare exactly
}

func TestRefNeverEqualsScalar(t *testing.T) {
	is := is.New(t)

	ref := Ref{DocumentURI: "https://sbom.example/doc1", ID: "SPDXRef-File"}

	is.True(!ValueEqual(ref, NewText("SPDXRef-File")))
	is.True(!ValueEqual(NewText("SPDXRef-File"), ref))
}

func TestListsCompareElementwiseInOrder(t *testing.T) {
	is := is.New(t)

	a := NewList(NewText("a"), NewNumber(1))
	b := NewList(NewText("a"), NewNumber(1))
	c := NewList(NewNumber(1), NewText("a"))

	is.True(ValueEqual(a, b))
	is.True(!ValueEqual(a, c))
	is.True(!ValueEqual(a, NewList(NewText("a"))))
}

func TestParseIDTypeRoundTrips(t *testing.T) {
	is := is.New(t)

	for _, idType := range []IDType{
		IDTypeLicenseRef, IDTypeSpdxID, IDTypeDocumentRef,
		IDTypeListedLicense, IDTypeLiteral, IDTypeAnonymous,
	} {
		parsed, err := ParseIDType(idType.String())
		is.NoErr(err)
		is.Equal(parsed, idType)
	}

	_, err := ParseIDType("Banana")
	is.True(errors.Is(err, ErrInvalidType))
}
