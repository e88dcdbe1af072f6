// Package sse decodes server-sent event bodies into typed JSON payloads.
//
// A Stream pulls bytes from the body only when no complete frame is
// buffered, so a caller reading events one at a time never forces the whole
// response into memory.
package sse

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/qstash-sdk/qstash-go/internal/httpx"
)

// DoneSentinel is the payload that ends a stream without producing an event.
const DoneSentinel = "[DONE]"

const defaultReadSize = 4096

type options struct {
	readSize int
	metrics  *httpx.Metrics
}

// Option configures a Stream.
type Option func(*options)

// WithReadSize sets how many bytes are requested from the body per read.
func WithReadSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.readSize = n
		}
	}
}

// WithMetrics records each decoder result on m.
func WithMetrics(m *httpx.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// Stream is a single-consumer decoder over an SSE body. It is not safe for
// concurrent use.
type Stream[T any] struct {
	body    io.ReadCloser
	buf     []byte
	lines   []string
	chunk   []byte
	eof     bool
	err     error
	metrics *httpx.Metrics
}

// NewStream takes ownership of body. The body is closed once the stream
// reaches a terminal state or Close is called.
func NewStream[T any](body io.ReadCloser, opts ...Option) *Stream[T] {
	o := options{readSize: defaultReadSize}
	for _, opt := range opts {
		opt(&o)
	}
	return &Stream[T]{
		body:    body,
		chunk:   make([]byte, o.readSize),
		metrics: o.metrics,
	}
}

// Next returns the next decoded event. Lines end with "\r\n", "\n" or "\r"
// and a frame ends at an empty line. It returns io.EOF once the sentinel is
// seen or the body ends; a trailing frame without its empty line is
// discarded. A frame that does not decode into T yields a
// *httpx.StreamParseError. Both outcomes are terminal: every later call
// returns the same error without touching the body.
func (s *Stream[T]) Next() (*T, error) {
	for s.err == nil {
		frame, ok := s.nextFrame()
		if !ok {
			if s.eof {
				s.finish(io.EOF, httpx.StreamOutcomeDone)
				break
			}
			if err := s.fill(); err != nil {
				s.finish(httpx.NewRequestFailedError(err), httpx.StreamOutcomeReadError)
			}
			continue
		}

		data, ok := payload(frame)
		if !ok {
			continue
		}
		if data == DoneSentinel {
			s.finish(io.EOF, httpx.StreamOutcomeDone)
			break
		}

		var event T
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			s.finish(httpx.NewStreamParseError(data, err), httpx.StreamOutcomeParseError)
			break
		}
		s.metrics.ObserveStreamEvent(httpx.StreamOutcomeEvent)
		return &event, nil
	}
	return nil, s.err
}

// Err returns the terminal error, or nil while the stream is open or after
// a clean end.
func (s *Stream[T]) Err() error {
	if errors.Is(s.err, io.EOF) {
		return nil
	}
	return s.err
}

// Close releases the body. Later calls to Next return io.EOF unless the
// stream had already failed.
func (s *Stream[T]) Close() error {
	if s.err != nil {
		return nil
	}
	s.err = io.EOF
	s.buf = nil
	s.lines = nil
	return s.body.Close()
}

// nextFrame returns the lines of the first complete frame, keeping a
// partial frame's lines until its terminating empty line arrives.
func (s *Stream[T]) nextFrame() ([]string, bool) {
	for {
		line, ok := s.nextLine()
		if !ok {
			return nil, false
		}
		if line != "" {
			s.lines = append(s.lines, line)
			continue
		}
		if len(s.lines) == 0 {
			continue
		}
		frame := s.lines
		s.lines = nil
		return frame, true
	}
}

// nextLine removes and returns the first complete line in the buffer. A
// trailing "\r" waits for the next read, which may complete a "\r\n".
func (s *Stream[T]) nextLine() (string, bool) {
	i := bytes.IndexAny(s.buf, "\r\n")
	if i < 0 {
		return "", false
	}
	size := 1
	if s.buf[i] == '\r' {
		switch {
		case i+1 < len(s.buf) && s.buf[i+1] == '\n':
			size = 2
		case i+1 == len(s.buf) && !s.eof:
			return "", false
		}
	}
	line := string(s.buf[:i])
	s.buf = s.buf[i+size:]
	return line, true
}

// fill appends one read's worth of bytes to the buffer.
func (s *Stream[T]) fill() error {
	n, err := s.body.Read(s.chunk)
	s.buf = append(s.buf, s.chunk[:n]...)
	if errors.Is(err, io.EOF) {
		s.eof = true
		return nil
	}
	return err
}

func (s *Stream[T]) finish(err error, outcome string) {
	s.err = err
	s.buf = nil
	s.lines = nil
	s.metrics.ObserveStreamEvent(outcome)
	s.body.Close()
}

// payload extracts the data of one frame. data fields are joined with "\n";
// comments and all other fields are ignored. A line that is not a field and
// starts with '{' or '[' is taken as payload, so bare JSON frames decode too.
// ok is false for frames with no payload, such as keep-alives.
func payload(lines []string) (data string, ok bool) {
	var parts []string
	for _, line := range lines {
		if strings.HasPrefix(line, ":") {
			continue
		}
		if strings.HasPrefix(line, "{") || strings.HasPrefix(line, "[") {
			parts = append(parts, line)
			continue
		}
		field, value, found := strings.Cut(line, ":")
		if field != "data" {
			continue
		}
		if found {
			value = strings.TrimPrefix(value, " ")
		}
		parts = append(parts, value)
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, "\n"), true
}
