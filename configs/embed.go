// Package configs provides the embedded configuration template for
// vectorium. The template is embedded at build time so `vectorium
// config init` works in every distribution, binary releases included.
package configs

import _ "embed"

// ConfigTemplate is the annotated template written by `vectorium
// config init` as vectorium.yaml in the working directory.
//
//go:embed vectorium.example.yaml
var ConfigTemplate string
