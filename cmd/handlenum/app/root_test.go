/*
 * Copyright 2020-2021 by Nedim Sabic Sabic
 * https://www.fibratus.io
 * All Rights Reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package app

import (
	"bytes"
	"testing"

	"github.com/rabbitstack/handlenum/pkg/enum"
	errs "github.com/rabbitstack/handlenum/pkg/errors"
	"github.com/rabbitstack/handlenum/pkg/handle/types"
	"github.com/rabbitstack/handlenum/pkg/sys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func run(b enum.Backend, args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := Run(args, &stdout, &stderr, b)
	return code, stdout.String(), stderr.String()
}

func records(n int, pid uintptr) []types.RawHandle {
	handles := make([]types.RawHandle, n)
	for i := range handles {
		handles[i] = types.RawHandle{PID: pid, Num: uintptr(i+1) * 4, Access: 0x1F0003}
	}
	return handles
}

func TestHelp(t *testing.T) {
	b := new(enum.BackendMock)
	for _, arg := range []string{"--help", "-h"} {
		code, stdout, _ := run(b, arg)
		assert.Equal(t, 0, code)
		assert.Contains(t, stdout, "HandleEnum.exe [OPTIONS]")
		assert.Contains(t, stdout, "--pid")
	}
	b.AssertNotCalled(t, "QuerySystemHandles")
}

func TestParseErrors(t *testing.T) {
	var tests = []struct {
		args []string
	}{
		{[]string{"--does-not-exist"}},
		{[]string{"-p", "4294967296"}},
		{[]string{"-p", "-1"}},
		{[]string{"-p", "abc"}},
		{[]string{"-s", "size"}},
		{[]string{"-t"}},
		{[]string{"positional"}},
	}

	for _, tt := range tests {
		b := new(enum.BackendMock)
		code, _, stderr := run(b, tt.args...)
		assert.NotEqual(t, 0, code, "%v", tt.args)
		assert.Contains(t, stderr, "Error:", "%v", tt.args)
		b.AssertNotCalled(t, "EnableDebugPrivilege")
		b.AssertNotCalled(t, "QuerySystemHandles")
	}
}

func TestVerbosePIDFilter(t *testing.T) {
	b := new(enum.BackendMock)
	b.On("EnableDebugPrivilege").Return(nil)
	b.On("QuerySystemHandles").Return(records(5, 4), nil)

	code, stdout, _ := run(b, "-v", "-p", "1234")

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "Verbose mode is ON")
	assert.Contains(t, stdout, "Filtering by PID: 1234")
	assert.Contains(t, stdout, "Retrieved 5 system handles.")
	assert.Contains(t, stdout, "Matching handles: 0")
}

func TestQueryFailure(t *testing.T) {
	b := new(enum.BackendMock)
	b.On("EnableDebugPrivilege").Return(nil)
	b.On("QuerySystemHandles").Return(nil, errs.Status("NtQuerySystemInformation", sys.StatusAccessDenied))

	code, stdout, stderr := run(b)

	assert.NotEqual(t, 0, code)
	assert.Contains(t, stderr, "Error: failed to query system handles")
	assert.NotContains(t, stdout, "Retrieved")
}

func TestPrivilegeWarning(t *testing.T) {
	b := new(enum.BackendMock)
	b.On("EnableDebugPrivilege").Return(errs.SystemCode("AdjustTokenPrivileges", sys.ErrorNotAllAssigned))
	b.On("QuerySystemHandles").Return(records(2, 1234), nil)

	code, stdout, stderr := run(b, "-c")

	assert.Equal(t, 0, code)
	assert.Contains(t, stderr, "Warning: failed to enable")
	assert.Contains(t, stdout, "Retrieved 2 system handles.")
	assert.Contains(t, stdout, "Matching handles: 2")
}

func TestTypeFilter(t *testing.T) {
	handles := records(3, 1234)
	b := new(enum.BackendMock)
	b.On("EnableDebugPrivilege").Return(nil)
	b.On("QuerySystemHandles").Return(handles, nil)
	b.On("QueryObjectType", handles[0]).Return("Event", nil)
	b.On("QueryObjectType", handles[1]).Return("File", nil)
	b.On("QueryObjectType", handles[2]).Return("", errs.New(errs.KindPermissionDenied, "NtQueryObject"))

	code, stdout, _ := run(b, "-t", "event", "-c")

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "Retrieved 3 system handles.\nMatching handles: 1\n")
	b.AssertNotCalled(t, "QueryObjectName", mock.Anything)
}

func TestStreamingRows(t *testing.T) {
	handles := records(2, 1234)
	b := new(enum.BackendMock)
	b.On("EnableDebugPrivilege").Return(nil)
	b.On("QuerySystemHandles").Return(handles, nil)
	b.On("QueryObjectType", mock.Anything).Return("Event", nil)
	b.On("QueryObjectName", handles[0]).Return(`\BaseNamedObjects\first`, nil)
	b.On("QueryObjectName", handles[1]).Return(`\BaseNamedObjects\second`, nil)
	b.On("ProcessName", uint32(1234)).Return("svchost.exe").Once()

	code, stdout, stderr := run(b, "--object", "SECOND", "-n", "ignored.exe")

	assert.Equal(t, 0, code)
	assert.Empty(t, stderr)
	assert.Contains(t, stdout, "PID      Process         Handle     Type                     Name\n")
	assert.Contains(t, stdout, `1234     svchost.exe     0x8        Event                    \BaseNamedObjects\second`)
	assert.NotContains(t, stdout, "first")
	assert.Contains(t, stdout, "Matching handles: 1\n")
}

func TestVersion(t *testing.T) {
	b := new(enum.BackendMock)
	code, stdout, _ := run(b, "--version")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "Version")
	b.AssertNotCalled(t, "QuerySystemHandles")
}
