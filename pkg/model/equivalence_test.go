package model

import (
	"context"
	"testing"

	"github.com/matryer/is"
	"github.com/sbomkit/model-store/pkg/storage"
	"github.com/sbomkit/model-store/pkg/storage/memory"
)

func TestObjectsWithSamePropertiesAreEquivalent(t *testing.T) {
	is, ctx, store := setupTest(t)
	other := memory.NewStore()

	a := newTestLicense(is, ctx, store, "LicenseRef-a", "Sample License", "text")
	b := newTestLicense(is, ctx, other, "LicenseRef-b", "Sample License", "text")

	same, err := Equivalent(ctx, a, b)
	is.NoErr(err)
	is.True(same) // ids and stores do not take part in equivalence
}

func TestDifferingScalarBreaksEquivalence(t *testing.T) {
	is, ctx, store := setupTest(t)

	a := newTestLicense(is, ctx, store, "LicenseRef-a", "Sample License", "text")
	b := newTestLicense(is, ctx, store, "LicenseRef-b", "Another License", "text")

	same, err := Equivalent(ctx, a, b)
	is.NoErr(err)
	is.True(!same)
}

func TestDifferentTypeNamesAreNeverEquivalent(t *testing.T) {
	is, ctx, store := setupTest(t)

	a, err := NewObject(ctx, store, testDoc, "SPDXRef-1", "File", true)
	is.NoErr(err)

	b, err := NewObject(ctx, store, testDoc, "SPDXRef-2", "Snippet", true)
	is.NoErr(err)

	same, err := Equivalent(ctx, a, b)
	is.NoErr(err)
	is.True(!same)
}

func TestScalarPresentOnOneSideBreaksEquivalence(t *testing.T) {
	is, ctx, store := setupTest(t)

	a := newTestLicense(is, ctx, store, "LicenseRef-a", "Sample License", "text")
	b := newTestLicense(is, ctx, store, "LicenseRef-b", "Sample License", "text")
	is.NoErr(b.SetProperty(ctx, "comment", storage.NewText("extra")))

	same, err := Equivalent(ctx, a, b)
	is.NoErr(err)
	is.True(!same)
}

func TestAbsentListEquivalentToEmptyList(t *testing.T) {
	is, ctx, store := setupTest(t)

	a := newTestLicense(is, ctx, store, "LicenseRef-a", "Sample License", "text")
	b := newTestLicense(is, ctx, store, "LicenseRef-b", "Sample License", "text")

	is.NoErr(b.ClearValueList(ctx, "seeAlso")) // creates an empty list slot

	same, err := Equivalent(ctx, a, b)
	is.NoErr(err)
	is.True(same)
}

func TestListsCompareAsMultisets(t *testing.T) {
	is, ctx, store := setupTest(t)

	a := newTestLicense(is, ctx, store, "LicenseRef-a", "Sample License", "text")
	b := newTestLicense(is, ctx, store, "LicenseRef-b", "Sample License", "text")

	is.NoErr(a.AddValueToList(ctx, "seeAlso", storage.NewText("https://a.example")))
	is.NoErr(a.AddValueToList(ctx, "seeAlso", storage.NewText("https://b.example")))

	is.NoErr(b.AddValueToList(ctx, "seeAlso", storage.NewText("https://b.example")))
	is.NoErr(b.AddValueToList(ctx, "seeAlso", storage.NewText("https://a.example")))

	same, err := Equivalent(ctx, a, b)
	is.NoErr(err)
	is.True(same) // order does not matter
}

func TestMultisetComparisonConsumesMatches(t *testing.T) {
	is, ctx, store := setupTest(t)

	a := newTestLicense(is, ctx, store, "LicenseRef-a", "Sample License", "text")
	b := newTestLicense(is, ctx, store, "LicenseRef-b", "Sample License", "text")

	// same length, same element set, different multiplicities
	for _, v := range []string{"x", "x", "y"} {
		is.NoErr(a.AddValueToList(ctx, "seeAlso", storage.NewText(v)))
	}
	for _, v := range []string{"x", "y", "y"} {
		is.NoErr(b.AddValueToList(ctx, "seeAlso", storage.NewText(v)))
	}

	same, err := Equivalent(ctx, a, b)
	is.NoErr(err)
	is.True(!same)
}

func TestEquivalenceComparesReferencesByIdentityOnly(t *testing.T) {
	is, ctx, store := setupTest(t)

	// two checksums with identical contents under different ids
	checksumA, err := NewObject(ctx, store, testDoc, "SPDXRef-SumA", "Checksum", true)
	is.NoErr(err)
	is.NoErr(checksumA.SetProperty(ctx, "checksumValue", storage.NewText("d6a770ba38583ed4bb")))

	checksumB, err := NewObject(ctx, store, testDoc, "SPDXRef-SumB", "Checksum", true)
	is.NoErr(err)
	is.NoErr(checksumB.SetProperty(ctx, "checksumValue", storage.NewText("d6a770ba38583ed4bb")))

	fileA, err := NewObject(ctx, store, testDoc, "SPDXRef-FileA", "File", true)
	is.NoErr(err)
	is.NoErr(fileA.SetProperty(ctx, "checksum", checksumA))

	fileB, err := NewObject(ctx, store, testDoc, "SPDXRef-FileB", "File", true)
	is.NoErr(err)
	is.NoErr(fileB.SetProperty(ctx, "checksum", checksumB))

	same, err := Equivalent(ctx, fileA, fileB)
	is.NoErr(err)
	is.True(!same) // nested objects are not descended into

	fileC, err := NewObject(ctx, store, testDoc, "SPDXRef-FileC", "File", true)
	is.NoErr(err)
	is.NoErr(fileC.SetProperty(ctx, "checksum", checksumA))

	same, err = Equivalent(ctx, fileA, fileC)
	is.NoErr(err)
	is.True(same) // both point at the same checksum
}

func TestScalarAgainstListIsNotEquivalent(t *testing.T) {
	is, ctx, store := setupTest(t)

	a, err := NewObject(ctx, store, testDoc, "SPDXRef-1", "Package", true)
	is.NoErr(err)
	is.NoErr(a.SetProperty(ctx, "licenseInfo", storage.NewText("MIT")))

	b, err := NewObject(ctx, store, testDoc, "SPDXRef-2", "Package", true)
	is.NoErr(err)
	is.NoErr(b.AddValueToList(ctx, "licenseInfo", storage.NewText("MIT")))

	same, err := Equivalent(ctx, a, b)
	is.NoErr(err)
	is.True(!same)
}

func newTestLicense(is *is.I, ctx context.Context, store storage.Store, id, name, text string) *Object {
	license, err := NewObject(ctx, store, testDoc, id, "ExtractedLicensingInfo", true)
	is.NoErr(err)
	is.NoErr(license.SetProperty(ctx, "name", storage.NewText(name)))
	is.NoErr(license.SetProperty(ctx, "extractedText", storage.NewText(text)))
	return license
}
