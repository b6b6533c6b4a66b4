package storage

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/matryer/is"
)

func TestValuesMarshalToTaggedJSON(t *testing.T) {
	is := is.New(t)

	b, err := json.Marshal(NewText("Apache License 2.0"))
	is.NoErr(err)
	is.Equal(string(b), `{"type":"string","value":"Apache License 2.0"}`)

	b, err = json.Marshal(NewBool(true))
	is.NoErr(err)
	is.Equal(string(b), `{"type":"boolean","value":true}`)

	b, err = json.Marshal(NewNumber(2.5))
	is.NoErr(err)
	is.Equal(string(b), `{"type":"number","value":2.5}`)

	b, err = json.Marshal(Ref{DocumentURI: "https://sbom.example/doc1", ID: "SPDXRef-File", Type: "File"})
	is.NoErr(err)
	is.Equal(string(b), `{"type":"ref","documentUri":"https://sbom.example/doc1","id":"SPDXRef-File","objectType":"File"}`)

	b, err = json.Marshal(NewList(NewText("a"), NewNumber(1)))
	is.NoErr(err)
	is.Equal(string(b), `{"type":"list","values":[{"type":"string","value":"a"},{"type":"number","value":1}]}`)
}

func TestUnmarshalValueRestoresKindAndContent(t *testing.T) {
	is := is.New(t)

	original := NewList(
		NewText("checksum"),
		NewBool(false),
		Ref{DocumentURI: "https://sbom.example/doc1", ID: "SPDXRef-Pkg", Type: "Package"},
	)

	b, err := json.Marshal(original)
	is.NoErr(err)

	restored, err := UnmarshalValue(b)
	is.NoErr(err)
	is.True(ValueEqual(original, restored))

	list, ok := restored.(List)
	is.True(ok)
	is.Equal(len(list), 3)
	is.Equal(list[0], Text{Value: "checksum"})

	ref, ok := list[2].(Ref)
	is.True(ok)
	is.Equal(ref.Type, "Package") // the type name survives the round trip
}

func TestEmptyListMarshalsToEmptyArray(t *testing.T) {
	is := is.New(t)

	b, err := json.Marshal(List(nil))
	is.NoErr(err)
	is.Equal(string(b), `{"type":"list","values":[]}`)
}

func TestUnmarshalValueRejectsUnknownType(t *testing.T) {
	is := is.New(t)

	_, err := UnmarshalValue([]byte(`{"type":"uri","value":"https://spdx.org"}`))
	is.True(errors.Is(err, ErrInvalidType))

	_, err = UnmarshalValue([]byte(`{"type":"number"}`))
	is.True(errors.Is(err, ErrInvalidType)) // scalar without a value
}

func TestUnmarshalValueList(t *testing.T) {
	is := is.New(t)

	values, err := UnmarshalValueList([]byte(`[{"type":"string","value":"a"},{"type":"boolean","value":true}]`))
	is.NoErr(err)
	is.Equal(len(values), 2)
	is.Equal(values[1], Bool{Value: true})
}
