package model

import (
	"errors"
	"testing"

	"github.com/matryer/is"
	"github.com/sbomkit/model-store/pkg/storage"
)

type testChecksum struct {
	*Object
}

func TestInflateUsesRegisteredFactory(t *testing.T) {
	is, ctx, store := setupTest(t)

	RegisterType("test.Checksum", func(base *Object) TypedModel {
		return &testChecksum{base}
	})

	o, err := NewObject(ctx, store, testDoc, "SPDXRef-Sum", "test.Checksum", true)
	is.NoErr(err)

	resolved, err := Inflate(ctx, store, o.Reference())
	is.NoErr(err)

	_, ok := resolved.(*testChecksum)
	is.True(ok)
	is.Equal(resolved.Type(), "test.Checksum")
}

func TestInflateFallsBackToBareHandle(t *testing.T) {
	is, ctx, store := setupTest(t)

	o, err := NewObject(ctx, store, testDoc, "SPDXRef-Mystery", "test.Unregistered", true)
	is.NoErr(err)

	resolved, err := Inflate(ctx, store, o.Reference())
	is.NoErr(err)

	_, ok := resolved.(*Object)
	is.True(ok) // unregistered type names resolve to plain handles
	is.Equal(resolved.Type(), "test.Unregistered")
}

func TestInflateFailsOnDanglingRef(t *testing.T) {
	is, ctx, store := setupTest(t)

	_, err := Inflate(ctx, store, storage.Ref{DocumentURI: testDoc, ID: "SPDXRef-Gone", Type: "File"})
	is.True(errors.Is(err, storage.ErrNotFound))
}

func TestGetObjectPropertyResolvesRegisteredType(t *testing.T) {
	is, ctx, store := setupTest(t)

	RegisterType("test.Checksum", func(base *Object) TypedModel {
		return &testChecksum{base}
	})

	sum, err := NewObject(ctx, store, testDoc, "SPDXRef-Sum", "test.Checksum", true)
	is.NoErr(err)

	file, err := NewObject(ctx, store, testDoc, "SPDXRef-File", "File", true)
	is.NoErr(err)
	is.NoErr(file.SetProperty(ctx, "checksum", sum))

	resolved, found, err := file.GetObjectProperty(ctx, "checksum")
	is.NoErr(err)
	is.True(found)

	_, ok := resolved.(*testChecksum)
	is.True(ok)
}

func TestGetObjectPropertyRejectsScalars(t *testing.T) {
	is, ctx, store := setupTest(t)

	file, err := NewObject(ctx, store, testDoc, "SPDXRef-File", "File", true)
	is.NoErr(err)
	is.NoErr(file.SetProperty(ctx, "name", storage.NewText("main.go")))

	_, _, err = file.GetObjectProperty(ctx, "name")
	is.True(errors.Is(err, storage.ErrInvalidType))
}
