// Package licenses knows about the SPDX license list: which license and
// exception ids exist, what they are called, and where their texts live.
//
// A trimmed table of contents for license list version 3.24 is embedded in
// the binary so that id recognition works without network access. Fetch can
// replace it with a newer table downloaded from spdx.org, and NewStore
// exposes the registry as a read-mostly model store so that listed licenses
// can be referenced from documents like any other object.
package licenses

import (
	_ "embed"
	"encoding/json"
	"sort"
	"strings"
	"sync"
)

//go:embed licenses.json
var embeddedLicenses []byte

//go:embed exceptions.json
var embeddedExceptions []byte

// License is a single entry from the license list table of contents.
type License struct {
	ReferenceNumber int      `json:"referenceNumber"`
	LicenseID       string   `json:"licenseId"`
	Name            string   `json:"name"`
	IsOsiApproved   bool     `json:"isOsiApproved"`
	IsDeprecated    bool     `json:"isDeprecatedLicenseId"`
	SeeAlso         []string `json:"seeAlso"`
}

// Exception is a single license exception entry, such as Classpath-exception-2.0.
type Exception struct {
	ReferenceNumber int      `json:"referenceNumber"`
	ExceptionID     string   `json:"licenseExceptionId"`
	Name            string   `json:"name"`
	IsDeprecated    bool     `json:"isDeprecatedLicenseId"`
	SeeAlso         []string `json:"seeAlso"`
}

type licenseTOC struct {
	Version     string    `json:"licenseListVersion"`
	ReleaseDate string    `json:"releaseDate"`
	Licenses    []License `json:"licenses"`
}

type exceptionTOC struct {
	Version     string      `json:"licenseListVersion"`
	ReleaseDate string      `json:"releaseDate"`
	Exceptions  []Exception `json:"exceptions"`
}

// Registry answers questions about the license list. Lookups are
// case-insensitive, matching how license expressions are compared, but the
// ids handed back always carry the canonical casing from the list itself.
type Registry struct {
	version     string
	releaseDate string

	licenses   map[string]License
	exceptions map[string]Exception
}

// Parse builds a registry from the raw JSON tables of contents published at
// spdx.org/licenses/licenses.json and exceptions.json.
func Parse(licenseTocJSON, exceptionTocJSON []byte) (*Registry, error) {
	ltoc := licenseTOC{}
	err := json.Unmarshal(licenseTocJSON, &ltoc)
	if err != nil {
		return nil, err
	}

	etoc := exceptionTOC{}
	err = json.Unmarshal(exceptionTocJSON, &etoc)
	if err != nil {
		return nil, err
	}

	r := &Registry{
		version:     ltoc.Version,
		releaseDate: ltoc.ReleaseDate,
		licenses:    make(map[string]License, len(ltoc.Licenses)),
		exceptions:  make(map[string]Exception, len(etoc.Exceptions)),
	}

	for _, l := range ltoc.Licenses {
		r.licenses[strings.ToLower(l.LicenseID)] = l
	}

	for _, e := range etoc.Exceptions {
		r.exceptions[strings.ToLower(e.ExceptionID)] = e
	}

	return r, nil
}

var defaultRegistry *Registry
var defaultRegistryOnce sync.Once

// Default returns the registry built from the embedded tables of contents.
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		r, err := Parse(embeddedLicenses, embeddedExceptions)
		if err != nil {
			// the embedded tables are validated by the package tests
			panic("licenses: embedded license list is broken: " + err.Error())
		}
		defaultRegistry = r
	})

	return defaultRegistry
}

// Version returns the license list version the registry was built from, e.g. "3.24".
func (r *Registry) Version() string {
	return r.version
}

// ReleaseDate returns the publication date of the license list.
func (r *Registry) ReleaseDate() string {
	return r.releaseDate
}

// IsRecognized reports whether id names a license on the license list,
// ignoring case.
func (r *Registry) IsRecognized(id string) bool {
	_, ok := r.licenses[strings.ToLower(id)]
	return ok
}

// IsRecognizedException reports whether id names a license exception on the
// license list, ignoring case.
func (r *Registry) IsRecognizedException(id string) bool {
	_, ok := r.exceptions[strings.ToLower(id)]
	return ok
}

// License looks up a license entry by id, ignoring case.
func (r *Registry) License(id string) (License, bool) {
	l, ok := r.licenses[strings.ToLower(id)]
	return l, ok
}

// Exception looks up an exception entry by id, ignoring case.
func (r *Registry) Exception(id string) (Exception, bool) {
	e, ok := r.exceptions[strings.ToLower(id)]
	return e, ok
}

// LicenseIDs returns the canonical ids of all listed licenses in
// lexical order.
func (r *Registry) LicenseIDs() []string {
	ids := make([]string, 0, len(r.licenses))
	for _, l := range r.licenses {
		ids = append(ids, l.LicenseID)
	}
	sort.Strings(ids)
	return ids
}

// ExceptionIDs returns the canonical ids of all listed exceptions in
// lexical order.
func (r *Registry) ExceptionIDs() []string {
	ids := make([]string, 0, len(r.exceptions))
	for _, e := range r.exceptions {
		ids = append(ids, e.ExceptionID)
	}
	sort.Strings(ids)
	return ids
}
