package model

import (
	"strings"

	"github.com/sbomkit/model-store/pkg/storage"
)

// Recognizer answers whether an id names an entry in the canonical license
// list. The licenses package provides the standard implementation.
type Recognizer interface {
	IsRecognized(id string) bool
}

// IDTypeOf classifies an identifier by working through the recognized forms
// in a fixed order: the LicenseRef, SPDXRef and DocumentRef prefixes first,
// then the license list, then the reserved literals, which have to be spelled
// exactly. Anything left over counts as anonymous. A nil recognizer skips the
// license list check.
func IDTypeOf(id string, listed Recognizer) storage.IDType {
	switch {
	case strings.HasPrefix(id, storage.LicenseRefPrefix):
		return storage.IDTypeLicenseRef
	case strings.HasPrefix(id, storage.SpdxRefPrefix):
		return storage.IDTypeSpdxID
	case strings.HasPrefix(id, storage.DocumentRefPrefix):
		return storage.IDTypeDocumentRef
	case listed != nil && listed.IsRecognized(id):
		return storage.IDTypeListedLicense
	case id == storage.LiteralNone || id == storage.LiteralNoAssertion:
		return storage.IDTypeLiteral
	default:
		return storage.IDTypeAnonymous
	}
}
