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

package errors

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnitNewError(t *testing.T) {
	e := New(Io)
	require.Equal(t, Io, e.errorCode)
	require.Contains(t, e.Error(), Io.String())
}

func TestUnitErrorStack(t *testing.T) {
	e := New(NotImplemented).AppendMessage("a").AppendMessage("b")
	require.NotEmpty(t, e.Stack())
}

func TestUnitErrorSetters(t *testing.T) {
	const (
		errCode        = NotImplemented
		msg            = "This is custom error message"
		extErrMsg      = "this is ext error"
		extErrCode int = 12345
	)
	e := New(errCode).AppendMessage(msg).SetExtError(errors.New(extErrMsg)).SetExtErrorCode(extErrCode)

	eString := e.Error()
	require.Contains(t, eString, errCode.String())
	require.Contains(t, eString, msg)
	require.Contains(t, eString, extErrMsg)
	require.Contains(t, eString, strconv.Itoa(extErrCode))
}

func TestUnitErrorAppendMessage(t *testing.T) {
	e := New(NotImplemented).AppendMessage("KSI").AppendMessage("Blockchain")
	eString := e.Error()
	require.True(t, strings.Contains(eString, "1: KSI") && strings.Contains(eString, "2: Blockchain"))
}

func TestUnitErrorConvertEnvelopeError(t *testing.T) {
	original := New(InvalidArgument).AppendMessage("Dummy")
	processed := Err(original)

	require.Same(t, original, processed)
	require.Len(t, processed.Message(), 1)
	require.Equal(t, InvalidArgument, processed.Code())
	require.Nil(t, processed.ExtError())
}

type myError struct {
	errmsg string
}

func (e myError) Error() string {
	return e.errmsg
}

func TestUnitErrorConvertExternalError(t *testing.T) {
	myerr := &myError{"Dummy"}
	envErr := Err(myerr)

	require.NotNil(t, envErr.ExtError())

	got, ok := envErr.ExtError().(*myError)
	require.True(t, ok)
	require.Same(t, myerr, got)
	require.Equal(t, "Dummy", got.Error())
	require.Equal(t, ExternalError, envErr.Code())
}

func TestErrWithNil(t *testing.T) {
	require.Nil(t, Err(nil))
}

func TestErrWithMultipleCodesExternal(t *testing.T) {
	dummyErr := &myError{"Dummy"}
	envErr := Err(dummyErr, InvalidArgument, InvalidState, HashMismatch)
	require.Equal(t, InvalidArgument, envErr.Code())
}

func TestErrWithMultipleCodesAlreadyEnvelope(t *testing.T) {
	dummyErr := New(Io)
	envErr := Err(dummyErr, InvalidArgument, InvalidState, HashMismatch)
	require.Equal(t, Io, envErr.Code())
}

func TestNilEnvelopeError(t *testing.T) {
	var nilErr *EnvelopeError
	require.Equal(t, "", nilErr.Error())
}

func TestAppendMessageToNilEnvelopeError(t *testing.T) {
	var nilErr *EnvelopeError
	require.Nil(t, nilErr.AppendMessage("Some msg."))
}

func TestSetExtErrorToNilEnvelopeError(t *testing.T) {
	var nilErr *EnvelopeError
	require.Nil(t, nilErr.SetExtError(&myError{"Dummy"}))
}

func TestSetExtErrorCodeToNilEnvelopeError(t *testing.T) {
	var nilErr *EnvelopeError
	require.Nil(t, nilErr.SetExtErrorCode(15))
}

func TestGetCodeFromNilEnvelopeError(t *testing.T) {
	var nilErr *EnvelopeError
	require.Equal(t, NoError, nilErr.Code())
}

func TestGetStackFromNilEnvelopeError(t *testing.T) {
	var nilErr *EnvelopeError
	require.Equal(t, "", nilErr.Stack())
}

func TestGetExtCodeFromNilEnvelopeError(t *testing.T) {
	var nilErr *EnvelopeError
	require.Equal(t, 0, nilErr.ExtCode())
}

func TestGetExtErrorFromNilEnvelopeError(t *testing.T) {
	var nilErr *EnvelopeError
	require.Nil(t, nilErr.ExtError())
}

func TestGetMessageFromNilEnvelopeError(t *testing.T) {
	var nilErr *EnvelopeError
	require.Nil(t, nilErr.Message())
}
