// Package docstore implements the document store backends: a local
// filesystem store and an S3-compatible object store. Both serve YAML
// flashcard documents under a logical namespace and satisfy
// repositories.ScopableStore.
package docstore

import (
	"path"
	"strings"
)

// Extensions recognized for flashcard documents, in lookup preference order.
var Extensions = []string{".yaml", ".yml"}

// HasRecognizedExtension reports whether a filename carries one of the
// flashcard extensions.
func HasRecognizedExtension(name string) bool {
	for _, ext := range Extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// DeriveID returns the derived document ID for a filename: the base name
// without its extension.
func DeriveID(filename string) string {
	base := path.Base(filename)
	return strings.TrimSuffix(base, path.Ext(base))
}
