package restapi

import (
	"net/http"

	"github.com/klauspost/compress/gzhttp"
)

// CompressionConfig holds configuration options for response compression
type CompressionConfig struct {
	// MinSize is the smallest response in bytes that gets compressed
	MinSize int
	// Level is the gzip level, 1-9
	Level int
	// ContentTypes limits compression to these types; empty means all
	ContentTypes []string
}

// DefaultCompressionConfig compresses JSON and the debug page above 1KB
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		MinSize:      1024,
		Level:        6,
		ContentTypes: []string{"application/json", "text/html"},
	}
}

// NewCompressionMiddleware creates a compression middleware with the given configuration
func NewCompressionMiddleware(config CompressionConfig) func(http.Handler) http.Handler {
	var (
		wrapper func(http.Handler) http.HandlerFunc
		err     error
	)
	if len(config.ContentTypes) > 0 {
		wrapper, err = gzhttp.NewWrapper(
			gzhttp.MinSize(config.MinSize),
			gzhttp.CompressionLevel(config.Level),
			gzhttp.ContentTypes(config.ContentTypes),
		)
	} else {
		wrapper, err = gzhttp.NewWrapper(
			gzhttp.MinSize(config.MinSize),
			gzhttp.CompressionLevel(config.Level),
		)
	}

	return func(next http.Handler) http.Handler {
		if err != nil {
			// fall back to the library defaults
			return gzhttp.GzipHandler(next)
		}
		return wrapper(next)
	}
}

// CompressionMiddleware applies gzip compression with default settings
func CompressionMiddleware(next http.Handler) http.Handler {
	return NewCompressionMiddleware(DefaultCompressionConfig())(next)
}
