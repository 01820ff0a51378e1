// Package schemasassets provides embedded JSON schemas for standalone binary behavior.
//
// Schemas are embedded at compile time so params files and job documents
// validate the same way regardless of the working directory.
package schemasassets

import _ "embed"

// ParamsFileSchema is the embedded params-file JSON schema.
//
//go:embed params-file.schema.json
var ParamsFileSchema []byte

// JobDescriptionSchema is the embedded job-description JSON schema.
//
// The execution host contract: every document handed off must validate.
//
//go:embed job-description.schema.json
var JobDescriptionSchema []byte

// ConditionsCatalogSchema is the embedded conditions-catalog JSON schema.
//
//go:embed conditions-catalog.schema.json
var ConditionsCatalogSchema []byte
