/*
 * Copyright 2019-2020 by Nedim Sabic Sabic
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

package enum

import (
	"github.com/rabbitstack/handlenum/pkg/handle/types"
	"github.com/stretchr/testify/mock"
)

// BackendMock is the mock backend used in tests.
type BackendMock struct {
	mock.Mock
}

// EnableDebugPrivilege method mock.
func (m *BackendMock) EnableDebugPrivilege() error {
	args := m.Called()
	return args.Error(0)
}

// QuerySystemHandles method mock.
func (m *BackendMock) QuerySystemHandles() ([]types.RawHandle, error) {
	args := m.Called()
	handles, _ := args.Get(0).([]types.RawHandle)
	return handles, args.Error(1)
}

// QueryObjectType method mock.
func (m *BackendMock) QueryObjectType(h types.RawHandle) (string, error) {
	args := m.Called(h)
	return args.String(0), args.Error(1)
}

// QueryObjectName method mock.
func (m *BackendMock) QueryObjectName(h types.RawHandle) (string, error) {
	args := m.Called(h)
	return args.String(0), args.Error(1)
}

// ProcessName method mock.
func (m *BackendMock) ProcessName(pid uint32) string {
	args := m.Called(pid)
	return args.String(0)
}
