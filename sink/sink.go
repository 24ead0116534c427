// Copyright 2026 the plog authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package sink implements the Sink side of spec.md §9's "formatters and
// sinks are polymorphism over a small interface" design note: a single
// write(level, bytes) -> error entry point (alongside Flush and Close),
// plus four concrete sinks: Console, File, Null (which also serves as the
// default, discarding error sink) and Writer (any io.Writer).
package sink

import (
	"bufio"
	"io"
	"os"
	"sync"

	"code.hybscloud.com/plog/record"
)

// Sink is a byte-stream output target.
type Sink interface {
	// Write renders level and the already-formatted bytes to the target.
	Write(level record.Level, rendered []byte) error
	// Flush forces any buffered bytes out.
	Flush() error
	// Close releases any resources the sink holds.
	Close() error
}

// Console is a Sink writing to an *os.File (typically os.Stdout or
// os.Stderr), synchronized for concurrent Writer/MProc pipeline use.
type Console struct {
	mu sync.Mutex
	w  *bufio.Writer
	f  *os.File
}

// NewConsole wraps f (e.g. os.Stdout) as a Sink.
func NewConsole(f *os.File) *Console {
	return &Console{w: bufio.NewWriter(f), f: f}
}

func (c *Console) Write(_ record.Level, rendered []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.w.Write(rendered)
	return err
}

func (c *Console) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.w.Flush()
}

func (c *Console) Close() error {
	if err := c.Flush(); err != nil {
		return err
	}
	return nil
}

// File is a Sink writing to a rotatable-by-the-caller file handle.
type File struct {
	mu sync.Mutex
	w  *bufio.Writer
	f  *os.File
}

// OpenFile creates a File sink at path, appending if it already exists.
func OpenFile(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	return &File{w: bufio.NewWriter(f), f: f}, nil
}

func (s *File) Write(_ record.Level, rendered []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.w.Write(rendered)
	return err
}

func (s *File) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Flush()
}

func (s *File) Close() error {
	if err := s.Flush(); err != nil {
		s.f.Close()
		return err
	}
	return s.f.Close()
}

// Null discards every write, the default error sink (spec.md §4.H).
type Null struct{}

func (Null) Write(record.Level, []byte) error { return nil }
func (Null) Flush() error                     { return nil }
func (Null) Close() error                     { return nil }

// Writer wraps any io.Writer as a Sink, for network or custom targets.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter wraps w as a Sink. If w also implements io.Closer, Close
// forwards to it.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (s *Writer) Write(_ record.Level, rendered []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.w.Write(rendered)
	return err
}

func (s *Writer) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

func (s *Writer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
