// Package web provides embedded web assets for abacus-service.
package web

import "embed"

// Templates contains the embedded HTML templates.
//
//go:embed templates/*
var Templates embed.FS
