// Package web embeds the browser UI served at the root path.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var content embed.FS

// FS returns the UI files rooted at the static directory
func FS() fs.FS {
	sub, err := fs.Sub(content, "static")
	if err != nil {
		// static is compiled in, so this only fails on a build mistake
		panic(err)
	}
	return sub
}

// Handler serves the UI files
func Handler() http.Handler {
	return http.FileServer(http.FS(FS()))
}
