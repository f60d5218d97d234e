package remoteaccess

import (
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzhttp"
)

// compressed serves next with brotli when the client accepts it and falls
// back to gzhttp's gzip negotiation otherwise.
func compressed(next http.Handler) http.Handler {
	gz := gzhttp.GzipHandler(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !acceptsEncoding(r, "br") {
			gz.ServeHTTP(w, r)
			return
		}
		cw := brotli.HTTPCompressor(w, r)
		defer cw.Close()
		next.ServeHTTP(&encodedWriter{ResponseWriter: w, body: cw}, r)
	})
}

func acceptsEncoding(r *http.Request, coding string) bool {
	for _, part := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		if !strings.EqualFold(strings.TrimSpace(name), coding) {
			continue
		}
		q := strings.ReplaceAll(params, " ", "")
		return q != "q=0" && q != "q=0.0" && q != "q=0.00" && q != "q=0.000"
	}
	return false
}

type encodedWriter struct {
	http.ResponseWriter
	body io.Writer
}

func (w *encodedWriter) Write(p []byte) (int, error) {
	return w.body.Write(p)
}
