package restapi

import (
	"net/http"

	"github.com/klauspost/compress/gzhttp"
)

// Responses below this size go out uncompressed.
const compressionMinSize = 1024

var compressibleTypes = []string{"application/json", "text/html", "text/plain"}

// NewCompressionMiddleware gzips JSON, HTML and plain-text responses of at
// least minSize bytes for clients that accept it. level is a gzip level, 1 to 9.
func NewCompressionMiddleware(minSize, level int) (func(http.Handler) http.Handler, error) {
	wrap, err := gzhttp.NewWrapper(
		gzhttp.MinSize(minSize),
		gzhttp.CompressionLevel(level),
		gzhttp.ContentTypes(compressibleTypes),
	)
	if err != nil {
		return nil, err
	}
	return func(next http.Handler) http.Handler { return wrap(next) }, nil
}

// CompressionMiddleware compresses with the server defaults.
func CompressionMiddleware(next http.Handler) http.Handler {
	wrap, err := NewCompressionMiddleware(compressionMinSize, 6)
	if err != nil {
		// Constant options; only reachable if gzhttp rejects them.
		return gzhttp.GzipHandler(next)
	}
	return wrap(next)
}
