package web

import "embed"

// StaticFS holds the embedded static assets (stylesheet, table sort script).
//
//go:embed static/*
var StaticFS embed.FS
