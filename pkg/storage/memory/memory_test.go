package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/matryer/is"
	"github.com/sbomkit/model-store/pkg/storage"
)

const testDoc = "https://sbom.example/doc1"

func TestCreateAndExists(t *testing.T) {
	is, ctx, store := setupTest(t)

	found, err := store.Exists(ctx, testDoc, "SPDXRef-File")
	is.NoErr(err)
	is.True(!found)

	err = store.Create(ctx, testDoc, "SPDXRef-File", "File")
	is.NoErr(err)

	found, err = store.Exists(ctx, testDoc, "SPDXRef-File")
	is.NoErr(err)
	is.True(found)

	err = store.Create(ctx, testDoc, "SPDXRef-File", "File")
	is.True(errors.Is(err, storage.ErrAlreadyExists))
}

func TestOperationsOnMissingObjectFail(t *testing.T) {
	is, ctx, store := setupTest(t)

	_, _, err := store.GetValue(ctx, testDoc, "SPDXRef-Nope", "name")
	is.True(errors.Is(err, storage.ErrNotFound))

	err = store.SetValue(ctx, testDoc, "SPDXRef-Nope", "name", storage.NewText("x"))
	is.True(errors.Is(err, storage.ErrNotFound))

	_, err = store.GetPropertyValueNames(ctx, testDoc, "SPDXRef-Nope")
	is.True(errors.Is(err, storage.ErrNotFound))
}

func TestSetAndGetValue(t *testing.T) {
	is, ctx, store := setupTest(t)

	err := store.Create(ctx, testDoc, "SPDXRef-File", "File")
	is.NoErr(err)

	_, found, err := store.GetValue(ctx, testDoc, "SPDXRef-File", "name")
	is.NoErr(err)
	is.True(!found) // an unset property is not an error

	err = store.SetValue(ctx, testDoc, "SPDXRef-File", "name", storage.NewText("main.go"))
	is.NoErr(err)

	value, found, err := store.GetValue(ctx, testDoc, "SPDXRef-File", "name")
	is.NoErr(err)
	is.True(found)
	is.Equal(value, storage.Text{Value: "main.go"})

	err = store.RemoveProperty(ctx, testDoc, "SPDXRef-File", "name")
	is.NoErr(err)

	_, found, err = store.GetValue(ctx, testDoc, "SPDXRef-File", "name")
	is.NoErr(err)
	is.True(!found)

	err = store.RemoveProperty(ctx, testDoc, "SPDXRef-File", "name")
	is.NoErr(err) // removing an absent property is a no-op
}

func TestSlotsKeepTheirShape(t *testing.T) {
	is, ctx, store := setupTest(t)

	err := store.Create(ctx, testDoc, "SPDXRef-Pkg", "Package")
	is.NoErr(err)

	err = store.AddValueToList(ctx, testDoc, "SPDXRef-Pkg", "seenLicenses", storage.NewText("MIT"))
	is.NoErr(err)

	err = store.SetValue(ctx, testDoc, "SPDXRef-Pkg", "seenLicenses", storage.NewText("MIT"))
	is.True(errors.Is(err, storage.ErrInvalidType)) // list slot rejects scalar writes

	err = store.SetValue(ctx, testDoc, "SPDXRef-Pkg", "name", storage.NewText("pkg"))
	is.NoErr(err)

	err = store.AddValueToList(ctx, testDoc, "SPDXRef-Pkg", "name", storage.NewText("x"))
	is.True(errors.Is(err, storage.ErrInvalidType)) // scalar slot rejects list writes

	_, err = store.GetValueList(ctx, testDoc, "SPDXRef-Pkg", "name")
	is.True(errors.Is(err, storage.ErrInvalidType))
}

func TestListOperations(t *testing.T) {
	is, ctx, store := setupTest(t)

	err := store.Create(ctx, testDoc, "SPDXRef-Pkg", "Package")
	is.NoErr(err)

	values, err := store.GetValueList(ctx, testDoc, "SPDXRef-Pkg", "seenLicenses")
	is.NoErr(err)
	is.Equal(len(values), 0) // an absent list reads as empty

	for _, name := range []string{"MIT", "Apache-2.0", "MIT"} {
		err = store.AddValueToList(ctx, testDoc, "SPDXRef-Pkg", "seenLicenses", storage.NewText(name))
		is.NoErr(err)
	}

	values, err = store.GetValueList(ctx, testDoc, "SPDXRef-Pkg", "seenLicenses")
	is.NoErr(err)
	is.Equal(len(values), 3)
	is.Equal(values[0], storage.Text{Value: "MIT"})

	err = store.RemoveValueFromList(ctx, testDoc, "SPDXRef-Pkg", "seenLicenses", storage.NewText("MIT"))
	is.NoErr(err)

	values, err = store.GetValueList(ctx, testDoc, "SPDXRef-Pkg", "seenLicenses")
	is.NoErr(err)
	is.Equal(len(values), 2) // only the first equal element is removed
	is.Equal(values[0], storage.Text{Value: "Apache-2.0"})
	is.Equal(values[1], storage.Text{Value: "MIT"})

	err = store.RemoveValueFromList(ctx, testDoc, "SPDXRef-Pkg", "seenLicenses", storage.NewText("GPL-2.0"))
	is.NoErr(err) // removing an absent value is a no-op

	err = store.ReplaceValueList(ctx, testDoc, "SPDXRef-Pkg", "seenLicenses", []storage.Value{storage.NewText("BSD-3-Clause")})
	is.NoErr(err)

	values, err = store.GetValueList(ctx, testDoc, "SPDXRef-Pkg", "seenLicenses")
	is.NoErr(err)
	is.Equal(len(values), 1)

	err = store.ClearValueList(ctx, testDoc, "SPDXRef-Pkg", "seenLicenses")
	is.NoErr(err)

	values, err = store.GetValueList(ctx, testDoc, "SPDXRef-Pkg", "seenLicenses")
	is.NoErr(err)
	is.Equal(len(values), 0)
}

func TestGetValueReturnsListSlotsAsListValue(t *testing.T) {
	is, ctx, store := setupTest(t)

	err := store.Create(ctx, testDoc, "SPDXRef-Pkg", "Package")
	is.NoErr(err)

	err = store.AddValueToList(ctx, testDoc, "SPDXRef-Pkg", "seenLicenses", storage.NewText("MIT"))
	is.NoErr(err)

	value, found, err := store.GetValue(ctx, testDoc, "SPDXRef-Pkg", "seenLicenses")
	is.NoErr(err)
	is.True(found)
	is.True(storage.ValueEqual(value, storage.NewList(storage.NewText("MIT"))))
}

func TestPropertyNamesArePartitionedBySlotShape(t *testing.T) {
	is, ctx, store := setupTest(t)

	err := store.Create(ctx, testDoc, "SPDXRef-Pkg", "Package")
	is.NoErr(err)

	is.NoErr(store.SetValue(ctx, testDoc, "SPDXRef-Pkg", "name", storage.NewText("pkg")))
	is.NoErr(store.SetValue(ctx, testDoc, "SPDXRef-Pkg", "copyrightText", storage.NewText("NOASSERTION")))
	is.NoErr(store.AddValueToList(ctx, testDoc, "SPDXRef-Pkg", "seenLicenses", storage.NewText("MIT")))

	names, err := store.GetPropertyValueNames(ctx, testDoc, "SPDXRef-Pkg")
	is.NoErr(err)
	is.Equal(names, []string{"copyrightText", "name"})

	listNames, err := store.GetPropertyValueListNames(ctx, testDoc, "SPDXRef-Pkg")
	is.NoErr(err)
	is.Equal(listNames, []string{"seenLicenses"})
}

func TestGetNextIDMintsLexicallyIncreasingIDs(t *testing.T) {
	is, ctx, store := setupTest(t)

	previous := ""
	for i := 0; i < 12; i++ {
		id, err := store.GetNextID(ctx, storage.IDTypeSpdxID, testDoc)
		is.NoErr(err)
		is.True(id > previous)
		previous = id
	}

	licenseID, err := store.GetNextID(ctx, storage.IDTypeLicenseRef, testDoc)
	is.NoErr(err)
	is.Equal(licenseID, "LicenseRef-gnrtd00000001") // categories count independently

	otherDocID, err := store.GetNextID(ctx, storage.IDTypeSpdxID, "https://sbom.example/doc2")
	is.NoErr(err)
	is.Equal(otherDocID, "SPDXRef-gnrtd00000001") // documents count independently
}

func TestGetNextIDRefusesUnmintableCategories(t *testing.T) {
	is, ctx, store := setupTest(t)

	_, err := store.GetNextID(ctx, storage.IDTypeListedLicense, testDoc)
	is.True(errors.Is(err, storage.ErrInvalidType))

	_, err = store.GetNextID(ctx, storage.IDTypeLiteral, testDoc)
	is.True(errors.Is(err, storage.ErrInvalidType))
}

func TestGetNextIDSkipsManuallyTakenIDs(t *testing.T) {
	is, ctx, store := setupTest(t)

	err := store.Create(ctx, testDoc, "SPDXRef-gnrtd00000007", "File")
	is.NoErr(err)

	id, err := store.GetNextID(ctx, storage.IDTypeSpdxID, testDoc)
	is.NoErr(err)
	is.Equal(id, "SPDXRef-gnrtd00000008")
}

func TestGetNextIDUnderConcurrentCallers(t *testing.T) {
	is, ctx, store := setupTest(t)

	const count = 100

	var wg sync.WaitGroup
	minted := make(chan string, count)

	for i := 0; i < count; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := store.GetNextID(ctx, storage.IDTypeAnonymous, testDoc)
			if err == nil {
				minted <- id
			}
		}()
	}

	wg.Wait()
	close(minted)

	seen := map[string]bool{}
	for id := range minted {
		is.True(!seen[id]) // no id is handed out twice
		seen[id] = true
	}

	is.Equal(len(seen), count)
}

func TestValuesDoNotAliasStoreState(t *testing.T) {
	is, ctx, store := setupTest(t)

	err := store.Create(ctx, testDoc, "SPDXRef-Pkg", "Package")
	is.NoErr(err)

	original := []storage.Value{storage.NewText("MIT")}
	err = store.ReplaceValueList(ctx, testDoc, "SPDXRef-Pkg", "seenLicenses", original)
	is.NoErr(err)

	original[0] = storage.NewText("GPL-2.0")

	values, err := store.GetValueList(ctx, testDoc, "SPDXRef-Pkg", "seenLicenses")
	is.NoErr(err)
	is.Equal(values[0], storage.Text{Value: "MIT"})

	values[0] = storage.NewText("GPL-2.0")

	values, err = store.GetValueList(ctx, testDoc, "SPDXRef-Pkg", "seenLicenses")
	is.NoErr(err)
	is.Equal(values[0], storage.Text{Value: "MIT"})
}

func TestStoreRejectsUnstorableValues(t *testing.T) {
	is, ctx, store := setupTest(t)

	err := store.Create(ctx, testDoc, "SPDXRef-Pkg", "Package")
	is.NoErr(err)

	err = store.SetValue(ctx, testDoc, "SPDXRef-Pkg", "name", nil)
	is.True(errors.Is(err, storage.ErrInvalidType))

	err = store.SetValue(ctx, testDoc, "SPDXRef-Pkg", "name", storage.NewList(storage.NewText("x")))
	is.True(errors.Is(err, storage.ErrInvalidType))

	err = store.AddValueToList(ctx, testDoc, "SPDXRef-Pkg", "stuff", storage.NewList(storage.NewText("x")))
	is.True(errors.Is(err, storage.ErrInvalidType)) // no nested lists
}

func TestCopyObjectCarriesNestedReferences(t *testing.T) {
	is, ctx, source := setupTest(t)
	target := NewStore()

	is.NoErr(source.Create(ctx, testDoc, "SPDXRef-File", "File"))
	is.NoErr(source.SetValue(ctx, testDoc, "SPDXRef-File", "name", storage.NewText("main.go")))
	is.NoErr(source.Create(ctx, testDoc, "SPDXRef-Checksum", "Checksum"))
	is.NoErr(source.SetValue(ctx, testDoc, "SPDXRef-Checksum", "algorithm", storage.NewText("SHA1")))
	is.NoErr(source.SetValue(ctx, testDoc, "SPDXRef-File", "checksum",
		storage.Ref{DocumentURI: testDoc, ID: "SPDXRef-Checksum", Type: "Checksum"}))
	is.NoErr(source.AddValueToList(ctx, testDoc, "SPDXRef-File", "contributors", storage.NewText("someone")))

	err := target.CopyFrom(ctx, testDoc, "SPDXRef-File", "File", source)
	is.NoErr(err)

	value, found, err := target.GetValue(ctx, testDoc, "SPDXRef-File", "name")
	is.NoErr(err)
	is.True(found)
	is.Equal(value, storage.Text{Value: "main.go"})

	// the checksum the file refers to materialized in the target as well
	value, found, err = target.GetValue(ctx, testDoc, "SPDXRef-Checksum", "algorithm")
	is.NoErr(err)
	is.True(found)
	is.Equal(value, storage.Text{Value: "SHA1"})

	contributors, err := target.GetValueList(ctx, testDoc, "SPDXRef-File", "contributors")
	is.NoErr(err)
	is.Equal(len(contributors), 1)
}

func TestCopyObjectTerminatesOnReferenceCycles(t *testing.T) {
	is, ctx, source := setupTest(t)
	target := NewStore()

	is.NoErr(source.Create(ctx, testDoc, "SPDXRef-A", "Relationship"))
	is.NoErr(source.Create(ctx, testDoc, "SPDXRef-B", "Relationship"))
	is.NoErr(source.SetValue(ctx, testDoc, "SPDXRef-A", "relatedElement",
		storage.Ref{DocumentURI: testDoc, ID: "SPDXRef-B", Type: "Relationship"}))
	is.NoErr(source.SetValue(ctx, testDoc, "SPDXRef-B", "relatedElement",
		storage.Ref{DocumentURI: testDoc, ID: "SPDXRef-A", Type: "Relationship"}))

	err := target.CopyFrom(ctx, testDoc, "SPDXRef-A", "Relationship", source)
	is.NoErr(err)

	for _, id := range []string{"SPDXRef-A", "SPDXRef-B"} {
		found, err := target.Exists(ctx, testDoc, id)
		is.NoErr(err)
		is.True(found)
	}
}

func TestCopyObjectLeavesExistingObjectsAlone(t *testing.T) {
	is, ctx, source := setupTest(t)
	target := NewStore()

	is.NoErr(source.Create(ctx, testDoc, "SPDXRef-File", "File"))
	is.NoErr(source.SetValue(ctx, testDoc, "SPDXRef-File", "name", storage.NewText("theirs")))

	is.NoErr(target.Create(ctx, testDoc, "SPDXRef-File", "File"))
	is.NoErr(target.SetValue(ctx, testDoc, "SPDXRef-File", "name", storage.NewText("mine")))

	err := target.CopyFrom(ctx, testDoc, "SPDXRef-File", "File", source)
	is.NoErr(err)

	value, _, err := target.GetValue(ctx, testDoc, "SPDXRef-File", "name")
	is.NoErr(err)
	is.Equal(value, storage.Text{Value: "mine"})
}

func TestManyObjectsStayApart(t *testing.T) {
	is, ctx, store := setupTest(t)

	for i := 0; i < 25; i++ {
		id := fmt.Sprintf("SPDXRef-File%d", i)
		is.NoErr(store.Create(ctx, testDoc, id, "File"))
		is.NoErr(store.SetValue(ctx, testDoc, id, "name", storage.NewText(id)))
	}

	for i := 0; i < 25; i++ {
		id := fmt.Sprintf("SPDXRef-File%d", i)
		value, _, err := store.GetValue(ctx, testDoc, id, "name")
		is.NoErr(err)
		is.Equal(value, storage.Text{Value: id})
	}
}

func setupTest(t *testing.T) (*is.I, context.Context, storage.Store) {
	return is.New(t), context.Background(), NewStore()
}
