package appkit

import (
	"bytes"
	"fmt"
	"net/http"
	"sync"
)

// bufPool recycles response buffers between requests.
var bufPool = sync.Pool{New: func() any { return new(bytes.Buffer) }}

// ResponseBuffer is the concrete [ResponseWriter] implementation. Writes are held in memory
// until the buffer is flushed, either explicitly through the http.Flusher interface or
// implicitly by the mux when the handler returns without error.
type ResponseBuffer struct {
	resp   http.ResponseWriter
	buf    *bytes.Buffer
	limit  int
	status int

	// header holds the live header map, frozen holds the snapshot taken at the first
	// Write or WriteHeader call. Flushing uses the snapshot, mirroring the standard
	// library rule that headers set after the status was written have no effect.
	header http.Header
	frozen http.Header

	headerWritten bool
	streaming     bool
	flushed       bool
}

// NewResponseWriter wraps a standard response writer in a buffered one. A negative limit
// means the buffer may grow without bound.
func NewResponseWriter(resp http.ResponseWriter, limit int) *ResponseBuffer {
	buf, _ := bufPool.Get().(*bytes.Buffer)
	buf.Reset()

	return &ResponseBuffer{
		resp:   resp,
		buf:    buf,
		limit:  limit,
		header: make(http.Header),
	}
}

// Header returns the live header map.
func (b *ResponseBuffer) Header() http.Header {
	return b.header
}

// WriteHeader records the status code and snapshots the headers. Only the first call has
// any effect.
func (b *ResponseBuffer) WriteHeader(status int) {
	if b.headerWritten {
		return
	}

	b.status = status
	b.frozen = b.header.Clone()
	b.headerWritten = true
}

// Write appends p to the buffer. If a limit was configured and it would be exceeded the
// write fails. After an explicit Flush the buffer is bypassed and writes go straight to
// the underlying writer.
func (b *ResponseBuffer) Write(p []byte) (int, error) {
	if !b.headerWritten {
		b.WriteHeader(http.StatusOK)
	}

	if b.streaming {
		return b.resp.Write(p)
	}

	if b.limit >= 0 && b.buf.Len()+len(p) > b.limit {
		return 0, fmt.Errorf("appkit: response buffer limit of %d bytes exceeded", b.limit)
	}

	return b.buf.Write(p)
}

// Reset discards the buffered body, headers and status so a completely new response can be
// formulated. Once bytes have reached the underlying writer there is nothing left to take
// back and Reset is a no-op.
func (b *ResponseBuffer) Reset() {
	if b.streaming || b.flushed {
		return
	}

	b.buf.Reset()
	b.header = make(http.Header)
	b.frozen = nil
	b.headerWritten = false
	b.status = 0
}

// Status returns the status code recorded so far, or 0 when neither Write nor WriteHeader
// has been called.
func (b *ResponseBuffer) Status() int {
	return b.status
}

// Buffered returns the bytes written so far. The slice is only valid until the next write
// or Reset.
func (b *ResponseBuffer) Buffered() []byte {
	return b.buf.Bytes()
}

// FlushBuffer writes the headers, status and buffered body to the underlying writer. It is
// idempotent so the mux can flush implicitly without double-writing.
func (b *ResponseBuffer) FlushBuffer() error {
	if b.flushed || b.streaming {
		return nil
	}

	if !b.headerWritten {
		b.WriteHeader(http.StatusOK)
	}

	dst := b.resp.Header()
	for k, v := range b.frozen {
		dst[k] = v
	}

	b.resp.WriteHeader(b.status)
	b.flushed = true

	if b.buf.Len() == 0 {
		return nil
	}

	if _, err := b.resp.Write(b.buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write buffered response: %w", err)
	}

	return nil
}

// Flush implements http.Flusher. The buffered response is pushed to the client and the
// writer switches to pass-through mode: later writes are no longer buffered and Reset no
// longer has any effect.
func (b *ResponseBuffer) Flush() {
	if err := b.FlushBuffer(); err != nil {
		return
	}

	b.streaming = true

	if fl, ok := b.resp.(http.Flusher); ok {
		fl.Flush()
	}
}

// Free returns the buffer to the pool. The ResponseBuffer must not be used afterwards.
func (b *ResponseBuffer) Free() {
	if b.buf == nil {
		return
	}

	bufPool.Put(b.buf)
	b.buf = nil
}

var _ ResponseWriter = &ResponseBuffer{}
