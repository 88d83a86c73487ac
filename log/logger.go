/*
 * Copyright 2020 Guardtime, Inc.
 *
 * This file is part of the Guardtime client SDK.
 *
 * Licensed under the Apache License, Version 2.0 (the "License").
 * You may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *     http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES, CONDITIONS, OR OTHER LICENSES OF ANY KIND, either
 * express or implied. See the License for the specific language governing
 * permissions and limitations under the License.
 * "Guardtime" and "KSI" are trademarks or registered trademarks of
 * Guardtime, Inc., and no license to trademarks is granted; Guardtime
 * reserves and retains all trademark rights.
 */

package log

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/sipsentry/tlvenvelope/errors"
)

// Level is the logging priority threshold for WriterLogger.
type Level int

const (
	// NONE disables all logging. New() refuses this level since it would make the logger useless.
	NONE Level = iota
	// ERROR logs only Error level messages.
	ERROR
	// WARNING logs Warning and above.
	WARNING
	// NOTICE logs Notice and above.
	NOTICE
	// INFO logs Info and above.
	INFO
	// DEBUG logs everything.
	DEBUG
)

// WriterLogger is a basic Logger implementation that writes leveled, timestamped lines to an
// io.Writer. A nil *WriterLogger silently drops every call, so callers may leave logging
// unconfigured without guarding every call site.
type WriterLogger struct {
	level Level
	out   *log.Logger
}

// New constructs a WriterLogger writing lines of at most the given level to w. If w is nil,
// messages are discarded but the logger is still usable (matches the behavior callers rely on
// when they want a no-op sink instead of a nil check). NONE is refused: a logger
// that can never emit anything is almost certainly a configuration mistake.
func New(level Level, w io.Writer) (*WriterLogger, error) {
	if level == NONE {
		return nil, errors.New(errors.InvalidArgument).AppendMessage("Logging level NONE is not a usable logger level.")
	}
	if w == nil {
		w = io.Discard
	}
	return &WriterLogger{
		level: level,
		out:   log.New(w, "", 0),
	}, nil
}

func (l *WriterLogger) write(lvl Level, tag string, v ...interface{}) {
	if l == nil || l.level < lvl {
		return
	}
	l.out.Printf("%s [%s] %s", time.Now().Format(time.RFC3339), tag, fmt.Sprint(v...))
}

// Debug implements Logger.
func (l *WriterLogger) Debug(v ...interface{}) { l.write(DEBUG, "D", v...) }

// Info implements Logger.
func (l *WriterLogger) Info(v ...interface{}) { l.write(INFO, "I", v...) }

// Notice implements Logger.
func (l *WriterLogger) Notice(v ...interface{}) { l.write(NOTICE, "N", v...) }

// Warning implements Logger.
func (l *WriterLogger) Warning(v ...interface{}) { l.write(WARNING, "W", v...) }

// Error implements Logger.
func (l *WriterLogger) Error(v ...interface{}) { l.write(ERROR, "E", v...) }
