// Package templates embeds the prompt and boilerplate file templates.
package templates

import "embed"

//go:embed system.tmpl user.tmpl LICENSE.tmpl README.md.tmpl
var FS embed.FS
