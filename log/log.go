// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log provides package scoped loggers on top of go-ethereum's slog based logger.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"

	ethlog "github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-isatty"
)

// Logger writes key/value pairs.
type Logger interface {
	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Crit(msg string, ctx ...any)
	With(ctx ...any) Logger
	Enabled(level slog.Level) bool
}

// WithContext returns a logger carrying ctx. The root handler is resolved on
// every record, so package level loggers follow a later Init.
func WithContext(ctx ...any) Logger {
	return &lazyLogger{ctx: ctx}
}

type lazyLogger struct {
	ctx []any
}

func (l *lazyLogger) root() ethlog.Logger {
	return ethlog.Root().With(l.ctx...)
}

func (l *lazyLogger) Trace(msg string, ctx ...any) { l.root().Trace(msg, ctx...) }
func (l *lazyLogger) Debug(msg string, ctx ...any) { l.root().Debug(msg, ctx...) }
func (l *lazyLogger) Info(msg string, ctx ...any)  { l.root().Info(msg, ctx...) }
func (l *lazyLogger) Warn(msg string, ctx ...any)  { l.root().Warn(msg, ctx...) }
func (l *lazyLogger) Error(msg string, ctx ...any) { l.root().Error(msg, ctx...) }
func (l *lazyLogger) Crit(msg string, ctx ...any)  { l.root().Crit(msg, ctx...) }

func (l *lazyLogger) With(ctx ...any) Logger {
	merged := make([]any, 0, len(l.ctx)+len(ctx))
	merged = append(append(merged, l.ctx...), ctx...)
	return &lazyLogger{ctx: merged}
}

func (l *lazyLogger) Enabled(level slog.Level) bool {
	return ethlog.Root().Enabled(context.Background(), level)
}

// Options configures the root logger.
type Options struct {
	// Verbosity uses the legacy scale: 0 crit, 1 error, 2 warn, 3 info, 4 debug, 5 trace.
	Verbosity int
	JSON      bool
	Output    io.Writer
}

// Init installs the root handler.
func Init(opts Options) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	var handler slog.Handler
	if opts.JSON {
		handler = ethlog.JSONHandler(out)
	} else {
		handler = ethlog.NewTerminalHandler(out, useColor(out))
	}
	glog := ethlog.NewGlogHandler(handler)
	glog.Verbosity(ethlog.FromLegacyLevel(opts.Verbosity))
	ethlog.SetDefault(ethlog.NewLogger(glog))
}

// Discard silences the root logger.
func Discard() {
	ethlog.SetDefault(ethlog.NewLogger(ethlog.DiscardHandler()))
}

func useColor(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
