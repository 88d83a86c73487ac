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

// Package logrusadapter adapts a *logrus.Logger to the log.Logger interface, so callers that
// already run a logrus-based logging pipeline (structured fields, hooks, JSON output) can wire it
// straight into the envelope engine instead of using log.WriterLogger.
package logrusadapter

import (
	"github.com/sirupsen/logrus"

	"github.com/sipsentry/tlvenvelope/log"
)

// Adapter wraps a *logrus.Logger so it satisfies log.Logger. Notice has no logrus equivalent and
// is mapped to Info.
type Adapter struct {
	entry *logrus.Entry
}

var _ log.Logger = (*Adapter)(nil)

// New wraps l. If l is nil, logrus.StandardLogger() is used.
func New(l *logrus.Logger) *Adapter {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return &Adapter{entry: logrus.NewEntry(l)}
}

// WithField returns a copy of a that attaches the given key/value to every subsequent line, in
// the manner of logrus.Entry.WithField.
func (a *Adapter) WithField(key string, value interface{}) *Adapter {
	if a == nil {
		return nil
	}
	return &Adapter{entry: a.entry.WithField(key, value)}
}

func (a *Adapter) Debug(v ...interface{}) {
	if a == nil {
		return
	}
	a.entry.Debug(v...)
}

func (a *Adapter) Info(v ...interface{}) {
	if a == nil {
		return
	}
	a.entry.Info(v...)
}

// Notice is mapped to logrus' Info level - logrus has no distinct notice level.
func (a *Adapter) Notice(v ...interface{}) {
	if a == nil {
		return
	}
	a.entry.Info(v...)
}

func (a *Adapter) Warning(v ...interface{}) {
	if a == nil {
		return
	}
	a.entry.Warning(v...)
}

func (a *Adapter) Error(v ...interface{}) {
	if a == nil {
		return
	}
	a.entry.Error(v...)
}
