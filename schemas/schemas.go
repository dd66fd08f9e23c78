// Package schemas embeds the JSON Schemas for the profile and run configuration files.
package schemas

import _ "embed"

// Profile is the JSON Schema for profile.json.
//
//go:embed profile.schema.json
var Profile string

// Config is the JSON Schema for config.json.
//
//go:embed config.schema.json
var Config string
