package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/matryer/is"

	"github.com/sbomkit/model-store/pkg/storage"
	"github.com/sbomkit/model-store/pkg/storage/memory"
)

// These tests run against a live database and are skipped unless
// POSTGRES_HOST is set. Each test works in its own document so that
// runs do not interfere with each other or with leftover data.

func setupTest(t *testing.T) (*is.I, context.Context, storage.Store, string) {
	if os.Getenv("POSTGRES_HOST") == "" {
		t.Skip("POSTGRES_HOST is not set")
	}

	is := is.New(t)
	ctx := context.Background()

	pool, err := Connect(ctx, LoadConfiguration(ctx))
	is.NoErr(err)
	t.Cleanup(pool.Close)

	err = Initialize(ctx, pool)
	is.NoErr(err)

	testDoc := fmt.Sprintf("https://sbom.example/%s", uuid.NewString())

	return is, ctx, NewStore(pool), testDoc
}

func TestCreateAndExists(t *testing.T) {
	is, ctx, store, testDoc := setupTest(t)

	found, err := store.Exists(ctx, testDoc, "SPDXRef-Package")
	is.NoErr(err)
	is.True(!found)

	err = store.Create(ctx, testDoc, "SPDXRef-Package", "Package")
	is.NoErr(err)

	found, err = store.Exists(ctx, testDoc, "SPDXRef-Package")
	is.NoErr(err)
	is.True(found)

	err = store.Create(ctx, testDoc, "SPDXRef-Package", "Package")
	is.True(errors.Is(err, storage.ErrAlreadyExists))
}

func TestScalarValuesSurviveAStoreRoundTrip(t *testing.T) {
	is, ctx, store, testDoc := setupTest(t)

	err := store.Create(ctx, testDoc, "SPDXRef-File", "File")
	is.NoErr(err)

	values := map[string]storage.Value{
		"fileName":      storage.NewText("./src/main.c"),
		"isOsiApproved": storage.NewBool(true),
		"refNumber":     storage.NewNumber(42),
		"checksum":      storage.Ref{DocumentURI: testDoc, ID: "SPDXRef-Checksum", Type: "Checksum"},
	}

	for property, value := range values {
		err = store.SetValue(ctx, testDoc, "SPDXRef-File", property, value)
		is.NoErr(err)
	}

	for property, expected := range values {
		stored, found, err := store.GetValue(ctx, testDoc, "SPDXRef-File", property)
		is.NoErr(err)
		is.True(found)
		is.True(storage.ValueEqual(stored, expected))
	}
}

func TestSlotShapesAreEnforced(t *testing.T) {
	is, ctx, store, testDoc := setupTest(t)

	err := store.Create(ctx, testDoc, "SPDXRef-File", "File")
	is.NoErr(err)

	err = store.SetValue(ctx, testDoc, "SPDXRef-File", "fileName", storage.NewText("./a"))
	is.NoErr(err)

	err = store.AddValueToList(ctx, testDoc, "SPDXRef-File", "fileName", storage.NewText("./b"))
	is.True(errors.Is(err, storage.ErrInvalidType)) // fileName holds a scalar

	err = store.AddValueToList(ctx, testDoc, "SPDXRef-File", "contributors", storage.NewText("alice"))
	is.NoErr(err)

	err = store.SetValue(ctx, testDoc, "SPDXRef-File", "contributors", storage.NewText("bob"))
	is.True(errors.Is(err, storage.ErrInvalidType)) // contributors holds a list
}

func TestListValuesKeepTheirOrder(t *testing.T) {
	is, ctx, store, testDoc := setupTest(t)

	err := store.Create(ctx, testDoc, "SPDXRef-File", "File")
	is.NoErr(err)

	for _, name := range []string{"alice", "bob", "carol"} {
		err = store.AddValueToList(ctx, testDoc, "SPDXRef-File", "contributors", storage.NewText(name))
		is.NoErr(err)
	}

	err = store.RemoveValueFromList(ctx, testDoc, "SPDXRef-File", "contributors", storage.NewText("bob"))
	is.NoErr(err)

	values, err := store.GetValueList(ctx, testDoc, "SPDXRef-File", "contributors")
	is.NoErr(err)
	is.Equal(len(values), 2)
	is.True(storage.ValueEqual(values[0], storage.NewText("alice")))
	is.True(storage.ValueEqual(values[1], storage.NewText("carol")))

	err = store.ReplaceValueList(ctx, testDoc, "SPDXRef-File", "contributors", []storage.Value{storage.NewText("dave")})
	is.NoErr(err)

	values, err = store.GetValueList(ctx, testDoc, "SPDXRef-File", "contributors")
	is.NoErr(err)
	is.Equal(len(values), 1)
	is.True(storage.ValueEqual(values[0], storage.NewText("dave")))
}

func TestMissingObjectsAreReported(t *testing.T) {
	is, ctx, store, testDoc := setupTest(t)

	_, _, err := store.GetValue(ctx, testDoc, "SPDXRef-Nothing", "fileName")
	is.True(errors.Is(err, storage.ErrNotFound))

	err = store.SetValue(ctx, testDoc, "SPDXRef-Nothing", "fileName", storage.NewText("./a"))
	is.True(errors.Is(err, storage.ErrNotFound))

	_, err = store.GetValueList(ctx, testDoc, "SPDXRef-Nothing", "contributors")
	is.True(errors.Is(err, storage.ErrNotFound))
}

func TestMintedIDsSkipManuallyCreatedOnes(t *testing.T) {
	is, ctx, store, testDoc := setupTest(t)

	first, err := store.GetNextID(ctx, storage.IDTypeSpdxID, testDoc)
	is.NoErr(err)
	is.Equal(first, "SPDXRef-gnrtd00000001")

	err = store.Create(ctx, testDoc, "SPDXRef-gnrtd00000007", "File")
	is.NoErr(err)

	next, err := store.GetNextID(ctx, storage.IDTypeSpdxID, testDoc)
	is.NoErr(err)
	is.Equal(next, "SPDXRef-gnrtd00000008")
	is.True(first < next)
}

func TestObjectsAreCopiedFromOtherStores(t *testing.T) {
	is, ctx, store, testDoc := setupTest(t)

	scratch := memory.NewStore()

	err := scratch.Create(ctx, testDoc, "SPDXRef-File", "File")
	is.NoErr(err)

	err = scratch.SetValue(ctx, testDoc, "SPDXRef-File", "fileName", storage.NewText("./src/main.c"))
	is.NoErr(err)

	err = scratch.Create(ctx, testDoc, "SPDXRef-Checksum", "Checksum")
	is.NoErr(err)

	err = scratch.SetValue(ctx, testDoc, "SPDXRef-File", "checksum",
		storage.Ref{DocumentURI: testDoc, ID: "SPDXRef-Checksum", Type: "Checksum"})
	is.NoErr(err)

	err = store.CopyFrom(ctx, testDoc, "SPDXRef-File", "File", scratch)
	is.NoErr(err)

	name, found, err := store.GetValue(ctx, testDoc, "SPDXRef-File", "fileName")
	is.NoErr(err)
	is.True(found)
	is.True(storage.ValueEqual(name, storage.NewText("./src/main.c")))

	found, err = store.Exists(ctx, testDoc, "SPDXRef-Checksum")
	is.NoErr(err)
	is.True(found) // referenced objects come along
}

func TestFailedTransactionsLeaveNoTrace(t *testing.T) {
	is, ctx, store, testDoc := setupTest(t)

	boom := errors.New("boom")

	transactional, ok := store.(storage.Transactional)
	is.True(ok)

	err := transactional.WithTransaction(ctx, func(ctx context.Context) error {
		if err := store.Create(ctx, testDoc, "SPDXRef-File", "File"); err != nil {
			return err
		}
		return boom
	})
	is.True(errors.Is(err, boom))

	found, err := store.Exists(ctx, testDoc, "SPDXRef-File")
	is.NoErr(err)
	is.True(!found) // the rolled back create must not be visible
}

func TestPropertyNamesArePartitionedBySlotShape(t *testing.T) {
	is, ctx, store, testDoc := setupTest(t)

	err := store.Create(ctx, testDoc, "SPDXRef-File", "File")
	is.NoErr(err)

	err = store.SetValue(ctx, testDoc, "SPDXRef-File", "fileName", storage.NewText("./a"))
	is.NoErr(err)

	err = store.AddValueToList(ctx, testDoc, "SPDXRef-File", "contributors", storage.NewText("alice"))
	is.NoErr(err)

	scalars, err := store.GetPropertyValueNames(ctx, testDoc, "SPDXRef-File")
	is.NoErr(err)
	is.Equal(scalars, []string{"fileName"})

	lists, err := store.GetPropertyValueListNames(ctx, testDoc, "SPDXRef-File")
	is.NoErr(err)
	is.Equal(lists, []string{"contributors"})
}
