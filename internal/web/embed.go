package web

import "embed"

// templatesFS carries the server-rendered HTML templates in the binary
//
//go:embed templates/*.html
var templatesFS embed.FS
