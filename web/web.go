// Package web holds the page template and the browser script. Illustrations are served
// from disk (assets.dir) so they can be swapped without a rebuild.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.html
var templates embed.FS

//go:embed static/js/*.js
var scripts embed.FS

// Templates returns the page templates rooted at templates/.
func Templates() fs.FS {
	sub, err := fs.Sub(templates, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// Scripts returns the browser scripts rooted at static/js/.
func Scripts() fs.FS {
	sub, err := fs.Sub(scripts, "static/js")
	if err != nil {
		panic(err)
	}
	return sub
}
