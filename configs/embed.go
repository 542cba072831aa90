// Package configs provides embedded configuration templates.
//
// Templates are embedded at build time with go:embed so they ship in
// every distribution, source builds and binary releases alike. The
// init command writes ProjectConfigTemplate as .doctx.yaml into a
// document root.
package configs

import _ "embed"

// ProjectConfigTemplate is the annotated template for .doctx.yaml.
//
//go:embed project-config.example.yaml
var ProjectConfigTemplate string
