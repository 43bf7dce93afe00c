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

package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampPID(t *testing.T) {
	pid, ok := RawHandle{PID: 1234}.ClampPID()
	assert.True(t, ok)
	assert.Equal(t, uint32(1234), pid)

	pid, ok = RawHandle{PID: math.MaxUint32}.ClampPID()
	assert.True(t, ok)
	assert.Equal(t, uint32(math.MaxUint32), pid)

	if ^uintptr(0) > math.MaxUint32 {
		wide := uint64(math.MaxUint32) + 1
		pid, ok = RawHandle{PID: uintptr(wide)}.ClampPID()
		assert.False(t, ok)
		assert.Equal(t, uint32(math.MaxUint32), pid)
	}
}

func TestRowIsLocked(t *testing.T) {
	assert.True(t, Row{Name: Locked}.IsLocked())
	assert.False(t, Row{Name: `\Device\NamedPipe\lsass`}.IsLocked())
}
