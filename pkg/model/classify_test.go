package model

import (
	"testing"

	"github.com/matryer/is"
	"github.com/sbomkit/model-store/pkg/storage"
)

type recognizerFunc func(string) bool

func (f recognizerFunc) IsRecognized(id string) bool { return f(id) }

func TestIDTypeOfRecognizesPrefixes(t *testing.T) {
	is := is.New(t)

	is.Equal(IDTypeOf("LicenseRef-my-license", nil), storage.IDTypeLicenseRef)
	is.Equal(IDTypeOf("SPDXRef-File", nil), storage.IDTypeSpdxID)
	is.Equal(IDTypeOf("DocumentRef-other", nil), storage.IDTypeDocumentRef)
}

func TestIDTypeOfConsultsTheLicenseList(t *testing.T) {
	is := is.New(t)

	listed := recognizerFunc(func(id string) bool { return id == "Apache-2.0" })

	is.Equal(IDTypeOf("Apache-2.0", listed), storage.IDTypeListedLicense)
	is.Equal(IDTypeOf("Apache-2.0", nil), storage.IDTypeAnonymous)
	is.Equal(IDTypeOf("MIT", listed), storage.IDTypeAnonymous)
}

func TestIDTypeOfPrefixesWinOverTheLicenseList(t *testing.T) {
	is := is.New(t)

	greedy := recognizerFunc(func(string) bool { return true })

	is.Equal(IDTypeOf("LicenseRef-anything", greedy), storage.IDTypeLicenseRef)
	is.Equal(IDTypeOf("SPDXRef-anything", greedy), storage.IDTypeSpdxID)
}

func TestIDTypeOfLiteralsAreCaseSensitive(t *testing.T) {
	is := is.New(t)

	is.Equal(IDTypeOf("none", nil), storage.IDTypeLiteral)
	is.Equal(IDTypeOf("noassertion", nil), storage.IDTypeLiteral)
	is.Equal(IDTypeOf("NONE", nil), storage.IDTypeAnonymous)
	is.Equal(IDTypeOf("NoAssertion", nil), storage.IDTypeAnonymous)
}

func TestIDTypeOfFallsBackToAnonymous(t *testing.T) {
	is := is.New(t)

	is.Equal(IDTypeOf("", nil), storage.IDTypeAnonymous)
	is.Equal(IDTypeOf("__anon__gnrtd00000001", nil), storage.IDTypeAnonymous)
	is.Equal(IDTypeOf("just-some-id", nil), storage.IDTypeAnonymous)
}
