package apiclient

import (
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
)

// acceptEncoding is advertised on buffered requests. Setting it disables the
// transport's transparent gzip handling, so decodeBody handles both.
const acceptEncoding = "br, gzip"

type readCloser struct {
	io.Reader
	close func() error
}

func (r readCloser) Close() error { return r.close() }

// decodeBody wraps resp.Body according to its Content-Encoding.
// Closing the returned reader closes the underlying body.
func decodeBody(resp *http.Response) (io.ReadCloser, error) {
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "", "identity":
		return resp.Body, nil
	case "br":
		return readCloser{Reader: brotli.NewReader(resp.Body), close: resp.Body.Close}, nil
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("invalid gzip body: %w", err)
		}
		return readCloser{Reader: gz, close: func() error {
			_ = gz.Close()
			return resp.Body.Close()
		}}, nil
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", resp.Header.Get("Content-Encoding"))
	}
}
