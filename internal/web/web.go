// Package web embeds the browser uploader served at GET /app.
package web

import _ "embed"

// IndexHTML is the single-page uploader.
//
//go:embed static/index.html
var IndexHTML []byte
