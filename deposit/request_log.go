package deposit

import (
	"fmt"
	"strings"
)

// RequestLog accumulates the diagnostic log of one deposit attempt.
// It belongs to a single protocol instance and is not safe for
// concurrent use.
type RequestLog struct {
	buffer strings.Builder
}

func NewRequestLog() *RequestLog {
	return &RequestLog{}
}

// Log appends line and a newline.
func (log *RequestLog) Log(line string) {
	log.buffer.WriteString(line)
	log.buffer.WriteString("\n")
}

// Logf formats a line and appends it with a newline.
func (log *RequestLog) Logf(format string, a ...interface{}) {
	log.Log(fmt.Sprintf(format, a...))
}

// String returns everything logged since the last Reset.
func (log *RequestLog) String() string {
	return log.buffer.String()
}

func (log *RequestLog) Reset() {
	log.buffer.Reset()
}
