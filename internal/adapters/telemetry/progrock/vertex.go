package progrock

import (
	"fmt"

	"github.com/vito/progrock"
)

// Span implements ports.Span wrapping *progrock.VertexRecorder.
type Span struct {
	vertex *progrock.VertexRecorder
	err    error
}

// Write streams output to the vertex.
func (s *Span) Write(p []byte) (n int, err error) {
	return s.vertex.Stdout().Write(p)
}

// SetAttribute records a key-value pair on the vertex output.
func (s *Span) SetAttribute(key string, value any) {
	_, _ = fmt.Fprintf(s.vertex.Stdout(), "%s=%v\n", key, value)
}

// RecordError remembers the error so End can complete the vertex with it.
func (s *Span) RecordError(err error) {
	s.err = err
}

// End completes the vertex.
func (s *Span) End() {
	s.vertex.Done(s.err)
}
