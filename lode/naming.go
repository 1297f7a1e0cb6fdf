package lode

import (
	"fmt"
	"strings"

	"github.com/pithecene-io/mimestream/types"
)

// ManifestFilename is the stored name of an XOP manifest.
const ManifestFilename = "manifest.xml"

var extensions = map[string]string{
	"application/xop+xml":  ".xml",
	"application/xml":      ".xml",
	"text/xml":             ".xml",
	"application/soap+xml": ".xml",
	"application/json":     ".json",
	"text/plain":           ".txt",
	"text/html":            ".html",
	"application/pdf":      ".pdf",
	"image/png":            ".png",
	"image/jpeg":           ".jpg",
	"image/gif":            ".gif",
	"application/zip":      ".zip",
}

// PartFilename names the stored body of rec: the manifest keeps a fixed
// name, other parts are numbered with an extension from their media type.
func PartFilename(rec *types.PartRecord) string {
	if rec.Manifest {
		return ManifestFilename
	}
	mediaType, _, _ := strings.Cut(rec.ContentType, ";")
	ext, ok := extensions[strings.ToLower(strings.TrimSpace(mediaType))]
	if !ok {
		ext = ".bin"
	}
	return fmt.Sprintf("part-%04d%s", rec.Index, ext)
}
