package reqhandler

import (
	"bufio"
	"errors"
	"net"
	"net/http"
)

var errHijackUnsupported = errors.New("hijack: response writer does not support hijacking")

// ResWrap buffers response headers until the status is written and keeps a
// copy of the body for panic dumps. At most maxDumpPartSize bytes of the body
// are kept.
type ResWrap struct {
	http.ResponseWriter

	StatusCode int
	Body       []byte

	header        http.Header
	headerWritten bool
}

// NewResWrap wraps w. The status defaults to 200.
func NewResWrap(w http.ResponseWriter) *ResWrap {
	return &ResWrap{
		ResponseWriter: w,
		StatusCode:     http.StatusOK,
		header:         make(http.Header),
	}
}

// Header returns the pending headers. They reach the client with the first
// WriteHeader or Write.
func (rw *ResWrap) Header() http.Header {
	return rw.header
}

// WriteHeader sends the pending headers and statusCode. Later calls are
// ignored.
func (rw *ResWrap) WriteHeader(statusCode int) {
	if rw.headerWritten {
		return
	}
	rw.headerWritten = true
	rw.StatusCode = statusCode

	dst := rw.ResponseWriter.Header()
	for key, values := range rw.header {
		dst[key] = append(dst[key], values...)
	}
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (rw *ResWrap) Write(data []byte) (int, error) {
	if !rw.headerWritten {
		rw.WriteHeader(rw.StatusCode)
	}
	if room := maxDumpPartSize - len(rw.Body); room > 0 {
		rw.Body = append(rw.Body, data[:min(room, len(data))]...)
	}
	return rw.ResponseWriter.Write(data)
}

// HeaderWritten reports whether the status has been sent.
func (rw *ResWrap) HeaderWritten() bool {
	return rw.headerWritten
}

// Unwrap lets http.ResponseController reach the wrapped writer.
func (rw *ResWrap) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

func (rw *ResWrap) Flush() {
	if !rw.headerWritten {
		rw.WriteHeader(rw.StatusCode)
	}
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (rw *ResWrap) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errHijackUnsupported
	}
	return hijacker.Hijack()
}
