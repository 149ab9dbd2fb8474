// Package site serves the embedded single-page frontend.
package site

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var staticFS embed.FS

// FS returns an http.FileSystem rooted at the embedded static directory.
func FS() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// Only possible if the embed directive and the path disagree.
		return http.FS(staticFS)
	}
	return http.FS(sub)
}

// Handler serves index.html at / and any other embedded asset by path.
func Handler() http.Handler {
	return http.FileServer(FS())
}
