// Copyright 2024 The Rustbelt Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logging provides a narrow structured-logging facade so that every
// other package can accept a Logger without depending on zerolog directly.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger is the structured logging interface threaded through every
// constructor in this module via a WithLogger option.
type Logger interface {
	Trace(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	WithValues(keysAndValues ...interface{}) Logger
}

// zlogger adapts a zerolog.Logger to the Logger interface.
type zlogger struct {
	z zerolog.Logger
}

// NewZerolog constructs a Logger backed by zerolog, writing to w.
func NewZerolog(w io.Writer) Logger {
	return &zlogger{z: zerolog.New(w).With().Timestamp().Logger()}
}

// NewNop constructs a Logger that discards everything.
func NewNop() Logger {
	return &zlogger{z: zerolog.New(io.Discard)}
}

// NewDefault constructs a Logger writing to stderr in zerolog's
// human-readable console format, with the given level.
func NewDefault(level string) Logger {
	l := NewZerolog(zerolog.ConsoleWriter{Out: os.Stderr}).(*zlogger) //nolint:forcetypeassert
	if lvl, err := zerolog.ParseLevel(level); err == nil {
		l.z = l.z.Level(lvl)
	}
	return l
}

func (l *zlogger) event(level zerolog.Level, msg string, keysAndValues ...interface{}) {
	e := l.z.WithLevel(level)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		e = e.Interface(key, keysAndValues[i+1])
	}
	e.Msg(msg)
}

func (l *zlogger) Trace(msg string, kv ...interface{}) { l.event(zerolog.TraceLevel, msg, kv...) }
func (l *zlogger) Debug(msg string, kv ...interface{}) { l.event(zerolog.DebugLevel, msg, kv...) }
func (l *zlogger) Info(msg string, kv ...interface{})  { l.event(zerolog.InfoLevel, msg, kv...) }
func (l *zlogger) Warn(msg string, kv ...interface{})  { l.event(zerolog.WarnLevel, msg, kv...) }

func (l *zlogger) WithValues(keysAndValues ...interface{}) Logger {
	ctx := l.z.With()
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		ctx = ctx.Interface(key, keysAndValues[i+1])
	}
	return &zlogger{z: ctx.Logger()}
}
