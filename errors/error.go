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

// Package errors implements the typed error taxonomy used throughout the envelope engine.
package errors

import (
	"fmt"
	"runtime"
	"strings"
)

// EnvelopeError carries a taxonomy code (see ErrorCode), an optional message stack, an
// optional wrapped external error and the stack trace captured at construction time.
type EnvelopeError struct {
	errorCode    ErrorCode
	message      []string
	extError     error
	extErrorCode int
	errorStack   string
}

// New constructs a new EnvelopeError with the given code.
func New(code ErrorCode) *EnvelopeError {
	return &EnvelopeError{
		errorCode:  code,
		errorStack: stack(),
	}
}

// Err wraps the provided error into an EnvelopeError, if it is not one already. By default the
// error code is set to ExternalError. In case 'err' is already an *EnvelopeError, it is returned
// without modification.
//
// Optionally an error code can be provided to apply in case of an external error. Despite 'code'
// being variadic, only the first value is used.
func Err(err error, code ...ErrorCode) *EnvelopeError {
	if err == nil {
		return nil
	}

	errCode := ExternalError
	if len(code) != 0 {
		errCode = code[0]
	}

	envErr, ok := err.(*EnvelopeError)
	if !ok {
		envErr = New(errCode).SetExtError(err)
	}
	return envErr
}

func stack() string {
	buf := make([]byte, 1024)
	n := 0
	for {
		n = runtime.Stack(buf, false)
		if n < len(buf) {
			break
		}
		buf = make([]byte, 2*len(buf))
	}

	return string(buf[:n])
}

// Error implements the error interface.
func (e *EnvelopeError) Error() string {
	if e == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%04x/%d] %s.\n", uint16(e.errorCode), e.extErrorCode, e.errorCode.String()))

	if len(e.message) > 0 {
		b.WriteString("Error message:")
		for i := len(e.message); i > 0; i-- {
			b.WriteString(fmt.Sprintf("\n  %d: %s", i, e.message[i-1]))
		}
		b.WriteString("\n")
	}

	if e.extError != nil {
		b.WriteString(fmt.Sprintf("Extended error: %s\n", e.extError))
	}

	if len(e.errorStack) != 0 {
		b.WriteString(e.errorStack)
	}

	b.WriteString("\n")
	return b.String()
}

// AppendMessage adds an additional descriptive message to the error and returns the receiver.
func (e *EnvelopeError) AppendMessage(msg string) *EnvelopeError {
	if e == nil {
		return nil
	}
	e.message = append(e.message, msg)
	return e
}

// SetExtError sets an additional low-level error and returns the receiver.
func (e *EnvelopeError) SetExtError(err error) *EnvelopeError {
	if e == nil {
		return nil
	}
	e.extError = err
	return e
}

// SetExtErrorCode sets an additional low-level error code and returns the receiver.
func (e *EnvelopeError) SetExtErrorCode(c int) *EnvelopeError {
	if e == nil {
		return nil
	}
	e.extErrorCode = c
	return e
}

// Code returns the error code.
func (e *EnvelopeError) Code() ErrorCode {
	if e == nil {
		return NoError
	}
	return e.errorCode
}

// Stack returns the stack trace captured where the error occurred.
func (e *EnvelopeError) Stack() string {
	if e == nil {
		return ""
	}
	return e.errorStack
}

// ExtCode returns the extended error code.
func (e *EnvelopeError) ExtCode() int {
	if e == nil {
		return 0
	}
	return e.extErrorCode
}

// ExtError returns the wrapped external error, if any.
func (e *EnvelopeError) ExtError() error {
	if e == nil {
		return nil
	}
	return e.extError
}

// Message returns the appended messages.
func (e *EnvelopeError) Message() []string {
	if e == nil {
		return nil
	}
	return e.message
}
