// Package spdx provides typed model objects for the parts of an SPDX
// document this service works with. Each type is a thin wrapper around a
// model.Object handle; all state lives in the store the handle is bound to.
package spdx

import (
	"github.com/google/uuid"
	"github.com/sbomkit/model-store/pkg/model"
)

const (
	//DocumentTypeName is the type name constant for SpdxDocument objects
	DocumentTypeName string = "SpdxDocument"
	//PackageTypeName is the type name constant for Package objects
	PackageTypeName string = "Package"
	//FileTypeName is the type name constant for File objects
	FileTypeName string = "File"
	//ChecksumTypeName is the type name constant for Checksum objects
	ChecksumTypeName string = "Checksum"
	//ExtractedLicensingInfoTypeName is the type name constant for licenses found in files
	ExtractedLicensingInfoTypeName string = "ExtractedLicensingInfo"
	//ListedLicenseTypeName is the type name constant for licenses on the canonical license list
	ListedLicenseTypeName string = "ListedLicense"
	//ListedLicenseExceptionTypeName is the type name constant for exceptions on the canonical license list
	ListedLicenseExceptionTypeName string = "ListedLicenseException"
	//RelationshipTypeName is the type name constant for Relationship objects
	RelationshipTypeName string = "Relationship"
)

// Property names shared by the typed wrappers.
const (
	PropAlgorithm          string = "algorithm"
	PropChecksum           string = "checksum"
	PropChecksums          string = "checksums"
	PropChecksumValue      string = "checksumValue"
	PropComment            string = "comment"
	PropCopyrightText      string = "copyrightText"
	PropDataLicense        string = "dataLicense"
	PropDescribes          string = "documentDescribes"
	PropExtractedText      string = "extractedText"
	PropFileContributor    string = "fileContributor"
	PropFileName           string = "fileName"
	PropIsDeprecated       string = "isDeprecatedLicenseId"
	PropIsOsiApproved      string = "isOsiApproved"
	PropLicenseConcluded   string = "licenseConcluded"
	PropLicenseExceptionID string = "licenseExceptionId"
	PropLicenseID          string = "licenseId"
	PropLicenseInfoInFile  string = "licenseInfoInFile"
	PropLicenseText        string = "licenseText"
	PropName               string = "name"
	PropReferenceNumber    string = "referenceNumber"
	PropRelatedElement     string = "relatedSpdxElement"
	PropRelationships      string = "relationships"
	PropRelationshipType   string = "relationshipType"
	PropSeeAlso            string = "seeAlso"
	PropSpecVersion        string = "specVersion"
)

// DocumentURIPrefix is the namespace new document URIs are minted under.
const DocumentURIPrefix string = "https://spdx.org/spdxdocs/"

// NewDocumentURI mints a unique document URI.
func NewDocumentURI() string {
	return DocumentURIPrefix + uuid.New().String()
}

func init() {
	model.RegisterType(DocumentTypeName, func(base *model.Object) model.TypedModel { return &Document{base} })
	model.RegisterType(PackageTypeName, func(base *model.Object) model.TypedModel { return &Package{base} })
	model.RegisterType(FileTypeName, func(base *model.Object) model.TypedModel { return &File{base} })
	model.RegisterType(ChecksumTypeName, func(base *model.Object) model.TypedModel { return &Checksum{base} })
	model.RegisterType(ExtractedLicensingInfoTypeName, func(base *model.Object) model.TypedModel { return &ExtractedLicensingInfo{base} })
	model.RegisterType(ListedLicenseTypeName, func(base *model.Object) model.TypedModel { return &ListedLicense{base} })
	model.RegisterType(ListedLicenseExceptionTypeName, func(base *model.Object) model.TypedModel { return &ListedLicenseException{base} })
	model.RegisterType(RelationshipTypeName, func(base *model.Object) model.TypedModel { return &Relationship{base} })
}
