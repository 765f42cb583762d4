// Package web embeds the page templates and fragments served by drawmap.
package web

import "embed"

// FS holds templates/ and static/.
//
//go:embed templates static
var FS embed.FS

// TemplatePatterns lists the template globs parsed at startup.
var TemplatePatterns = []string{"templates/*.html", "templates/fragments/*.html"}
