package storage

import (
	"fmt"
	"regexp"
	"strconv"
)

// AnonymousIDPrefix marks minted ids for objects that have no stable identity
// of their own, such as relationship records.
const AnonymousIDPrefix = "__anon__"

const mintedIDInfix = "gnrtd"

var mintedIDPattern = regexp.MustCompile(
	`^(` + LicenseRefPrefix + `|` + SpdxRefPrefix + `|` + DocumentRefPrefix + `|` + AnonymousIDPrefix + `)` + mintedIDInfix + `(\d+)$`,
)

// MintPrefix returns the id prefix a store uses when minting ids of the given
// type. License list ids are assigned by the license list itself and can not
// be minted by a general purpose store.
func MintPrefix(idType IDType) (string, error) {
	switch idType {
	case IDTypeLicenseRef:
		return LicenseRefPrefix, nil
	case IDTypeSpdxID:
		return SpdxRefPrefix, nil
	case IDTypeDocumentRef:
		return DocumentRefPrefix, nil
	case IDTypeAnonymous:
		return AnonymousIDPrefix, nil
	}

	return "", NewInvalidTypeError(fmt.Sprintf("can not mint ids of type %s", idType.String()))
}

// FormatMintedID builds the n:th minted id for a prefix. The counter is zero
// padded so that the lexical order of minted ids matches the order they were
// handed out in.
func FormatMintedID(prefix string, n uint64) string {
	return fmt.Sprintf("%s%s%08d", prefix, mintedIDInfix, n)
}

// ParseMintedID splits an id that looks like a minted one into its prefix and
// counter value. Stores use it to keep their counters ahead of ids that were
// minted elsewhere and created here.
func ParseMintedID(id string) (prefix string, n uint64, ok bool) {
	match := mintedIDPattern.FindStringSubmatch(id)
	if match == nil {
		return "", 0, false
	}

	value, err := strconv.ParseUint(match[2], 10, 64)
	if err != nil {
		return "", 0, false
	}

	return match[1], value, true
}
