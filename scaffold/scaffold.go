// Package scaffold provides embedded template files for `pubadmin init`,
// which lays out a deployment directory with its own main package.
package scaffold

import "embed"

// Templates contains all scaffold template files.
// Files use Go text/template syntax and have a .tmpl suffix.
//
//go:embed all:templates
var Templates embed.FS
