package log

import (
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"
)

// TraceLogger records every chunk the emitter writes.
type TraceLogger interface {
	Trace(block, member string, chunk []byte)
}

type traceLogger struct {
	w   io.Writer
	mu  sync.Mutex
	now func() time.Time
}

// NewTrace creates a TraceLogger. If w is nil, the logger discards everything.
func NewTrace(w io.Writer) TraceLogger {
	return &traceLogger{w: w, now: time.Now}
}

// Trace writes one line per chunk: timestamp, block/member location, size and the
// chunk itself as a quoted string.
func (t *traceLogger) Trace(block, member string, chunk []byte) {
	if len(chunk) == 0 || t.w == nil {
		return
	}

	loc := "<prelude>"
	switch {
	case block != "" && member != "":
		loc = block + "." + member
	case block != "":
		loc = block
	}

	line := fmt.Sprintf("%s %s chunk: %d bytes, text: %s\n",
		t.now().Format("2006/01/02 15:04:05"),
		loc,
		len(chunk),
		strconv.Quote(string(chunk)))

	t.mu.Lock()
	_, _ = io.WriteString(t.w, line)
	t.mu.Unlock()
}
