// Package logging points the standard logger at stdout and, when a file is
// configured, a size-rotated log file.
package logging

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures Setup
type Options struct {
	File       string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
	Quiet      bool
}

// Output is the writer the standard logger uses after Setup. The HTTP
// access log writes to it too.
type Output struct {
	io.Writer
	file *lumberjack.Logger
}

// Close releases the log file, if any
func (o *Output) Close() error {
	if o.file == nil {
		return nil
	}
	return o.file.Close()
}

// Setup configures the standard logger and returns its writer. Quiet drops
// the stdout copy, which the stdio MCP server needs.
func Setup(opts Options) (*Output, error) {
	var writers []io.Writer
	if !opts.Quiet {
		writers = append(writers, os.Stdout)
	}

	out := &Output{}
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return nil, err
		}
		out.file = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSize,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAge,
			LocalTime:  true,
		}
		writers = append(writers, out.file)
	}

	switch len(writers) {
	case 0:
		out.Writer = io.Discard
	case 1:
		out.Writer = writers[0]
	default:
		out.Writer = io.MultiWriter(writers...)
	}

	log.SetOutput(out.Writer)
	log.SetFlags(log.LstdFlags)
	return out, nil
}
