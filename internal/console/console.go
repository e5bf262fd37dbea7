// SPDX-License-Identifier: MPL-2.0

package console

import (
	"bytes"
	"sync"

	"github.com/charmbracelet/log"
)

// Writer buffers script output and emits one log record per complete line.
// It is safe for concurrent use; shell pipelines write from several goroutines.
type Writer struct {
	mu     sync.Mutex
	buf    []byte
	logger *log.Logger
	level  log.Level
	source string
}

// NewWriter returns a Writer logging at info level. source, when non-empty,
// is attached to every record as the "script" key.
func NewWriter(logger *log.Logger, source string) *Writer {
	return &Writer{logger: logger, level: log.InfoLevel, source: source}
}

// WithLevel returns a Writer sharing w's logger and source but logging at lvl.
// Used to route stderr at warn level.
func (w *Writer) WithLevel(lvl log.Level) *Writer {
	return &Writer{logger: w.logger, level: lvl, source: w.source}
}

// Write never fails; partial lines stay buffered until a newline or Flush.
func (w *Writer) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, p...)
	for {
		idx := bytes.IndexByte(w.buf, '\n')
		if idx < 0 {
			break
		}
		w.emit(w.buf[:idx])
		w.buf = w.buf[idx+1:]
	}
	return len(p), nil
}

// Flush logs any buffered partial line.
func (w *Writer) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.buf) == 0 {
		return
	}
	w.emit(w.buf)
	w.buf = w.buf[:0]
}

func (w *Writer) emit(line []byte) {
	if w.logger == nil {
		return
	}
	msg := string(bytes.TrimSuffix(line, []byte{'\r'}))
	if w.source != "" {
		w.logger.Log(w.level, msg, "script", w.source)
		return
	}
	w.logger.Log(w.level, msg)
}
