// Copyright 2017 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package log

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
)

var root atomic.Value

func init() {
	root.Store(&logger{slog.New(DiscardHandler())})
}

// SetDefault sets the default global logger
func SetDefault(l Logger) {
	root.Store(l)
	if lg, ok := l.(*logger); ok {
		slog.SetDefault(lg.inner)
	}
}

// Root returns the root logger
func Root() Logger {
	return root.Load().(Logger)
}

// New returns a new logger with the given context, bound to the current root.
func New(ctx ...any) Logger {
	return Root().With(ctx...)
}

// WithContext returns a logger which always writes through the current root logger,
// so package level loggers can be declared before the root is configured.
func WithContext(ctx ...any) Logger {
	return &lazyLogger{ctx: ctx}
}

type lazyLogger struct {
	ctx []any
}

func (l *lazyLogger) inner() *slog.Logger {
	if lg, ok := Root().(*logger); ok {
		return lg.inner.With(l.ctx...)
	}
	return slog.New(Root().Handler()).With(l.ctx...)
}

func (l *lazyLogger) With(ctx ...any) Logger {
	return &lazyLogger{ctx: append(append([]any(nil), l.ctx...), ctx...)}
}

func (l *lazyLogger) Write(level slog.Level, msg string, attrs ...any) {
	write(l.inner(), level, msg, attrs...)
}

func (l *lazyLogger) Log(level slog.Level, msg string, attrs ...any) {
	write(l.inner(), level, msg, attrs...)
}

func (l *lazyLogger) Enabled(ctx context.Context, level slog.Level) bool {
	return Root().Enabled(ctx, level)
}

func (l *lazyLogger) Handler() slog.Handler { return l.inner().Handler() }

func (l *lazyLogger) Trace(msg string, ctx ...any) { write(l.inner(), LevelTrace, msg, ctx...) }
func (l *lazyLogger) Debug(msg string, ctx ...any) { write(l.inner(), LevelDebug, msg, ctx...) }
func (l *lazyLogger) Info(msg string, ctx ...any)  { write(l.inner(), LevelInfo, msg, ctx...) }
func (l *lazyLogger) Warn(msg string, ctx ...any)  { write(l.inner(), LevelWarn, msg, ctx...) }
func (l *lazyLogger) Error(msg string, ctx ...any) { write(l.inner(), LevelError, msg, ctx...) }

func (l *lazyLogger) Crit(msg string, ctx ...any) {
	write(l.inner(), LevelCrit, msg, ctx...)
	os.Exit(1)
}

// The following functions keep the call depth the same for all paths to write,
// so the recorded caller is always the call site in client code.

// Trace is a convenient alias for Root().Trace
func Trace(msg string, ctx ...any) { rootWrite(LevelTrace, msg, ctx...) }

// Debug is a convenient alias for Root().Debug
func Debug(msg string, ctx ...any) { rootWrite(LevelDebug, msg, ctx...) }

// Info is a convenient alias for Root().Info
func Info(msg string, ctx ...any) { rootWrite(LevelInfo, msg, ctx...) }

// Warn is a convenient alias for Root().Warn
func Warn(msg string, ctx ...any) { rootWrite(LevelWarn, msg, ctx...) }

// Error is a convenient alias for Root().Error
func Error(msg string, ctx ...any) { rootWrite(LevelError, msg, ctx...) }

// Crit is a convenient alias for Root().Crit
func Crit(msg string, ctx ...any) {
	rootWrite(LevelCrit, msg, ctx...)
	os.Exit(1)
}

func rootWrite(level slog.Level, msg string, ctx ...any) {
	if lg, ok := Root().(*logger); ok {
		write(lg.inner, level, msg, ctx...)
		return
	}
	Root().Write(level, msg, ctx...)
}
