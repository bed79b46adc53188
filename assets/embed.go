// Package assets embeds the JavaScript browser client and the demo page.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed dist
var clientFiles embed.FS

// GetFS returns the embedded asset filesystem.
func GetFS() fs.FS {
	return clientFiles
}

// ClientScript returns the unminified JavaScript client.
func ClientScript() ([]byte, error) {
	return clientFiles.ReadFile("dist/realtime.js")
}
