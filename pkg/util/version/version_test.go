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

package version

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	v, err := New("1.4.2", "8f1c2d", "2026-10-01")
	require.NoError(t, err)
	assert.Equal(t, Version{Major: 1, Minor: 4, Patch: 2, Commit: "8f1c2d", Date: "2026-10-01"}, v)
	assert.Equal(t, "1.4.2", v.String())

	v, err = New("", "8f1c2d", "")
	require.NoError(t, err)
	assert.Equal(t, "dev", v.String())

	_, err = New("not-a-version", "", "")
	require.Error(t, err)
}

func TestRender(t *testing.T) {
	v, err := New("2.0.1", "abc", "today")
	require.NoError(t, err)
	var buf bytes.Buffer
	v.Render(&buf)
	assert.Contains(t, buf.String(), "2.0.1")
	assert.Contains(t, buf.String(), "abc")
}

func TestGet(t *testing.T) {
	Set("")
	assert.Equal(t, "dev", Get())
	Set("1.0.0")
	assert.Equal(t, "1.0.0", Get())
	Set("")
}
