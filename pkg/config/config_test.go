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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func parse(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	c := New()
	cmd := &cobra.Command{}
	c.MustViperize(cmd)
	if err := cmd.PersistentFlags().Parse(args); err != nil {
		return nil, err
	}
	return c, c.Init()
}

func TestDefaults(t *testing.T) {
	c, err := parse(t)
	require.NoError(t, err)

	assert.False(t, c.HasPID)
	assert.Equal(t, SortByPID, c.SortKey)
	assert.Equal(t, Streaming, c.DisplayMode())
	assert.False(t, c.Verbose)
	assert.Equal(t, "warn", c.Log.Level)
	assert.Equal(t, "text", c.Log.Formatter)
	assert.Equal(t, 4096, c.Cache.MaxProcesses)
	require.NoError(t, c.Validate())
}

func TestFlags(t *testing.T) {
	c, err := parse(t, "-p", "1234", "-n", "svchost.exe", "-t", "File", "-o", `\Device\NamedPipe`, "-s", "type", "-v")
	require.NoError(t, err)

	assert.True(t, c.HasPID)
	assert.Equal(t, uint32(1234), c.PID)
	assert.Equal(t, "svchost.exe", c.ProcessName)
	assert.Equal(t, "File", c.Type)
	assert.Equal(t, `\Device\NamedPipe`, c.Object)
	assert.Equal(t, SortByType, c.SortKey)
	assert.True(t, c.Verbose)
	assert.Equal(t, Batch, c.DisplayMode())
	require.NoError(t, c.Validate())

	c, err = parse(t, "--pid=4294967295", "--count", "--sort", "name")
	require.NoError(t, err)
	assert.Equal(t, uint32(4294967295), c.PID)
	assert.Equal(t, CountOnly, c.DisplayMode())
	assert.Equal(t, SortByName, c.SortKey)
}

func TestLastOccurrenceWins(t *testing.T) {
	c, err := parse(t, "-t", "File", "-t", "Event", "-s", "name", "-s", "pid", "-p", "1", "-p", "2")
	require.NoError(t, err)
	assert.Equal(t, "Event", c.Type)
	assert.Equal(t, SortByPID, c.SortKey)
	assert.Equal(t, uint32(2), c.PID)
}

func TestParseErrors(t *testing.T) {
	var tests = [][]string{
		{"-p", "4294967296"},
		{"-p", "-1"},
		{"-p", "abc"},
		{"-s", "size"},
		{"-p"},
		{"--does-not-exist"},
	}

	for _, args := range tests {
		_, err := parse(t, args...)
		require.Error(t, err, "args=%v", args)
	}
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "handlenum.yml")
	require.NoError(t, os.WriteFile(file, []byte(`
pid: 1234
type: Event
sort: name
logging:
  level: debug
cache:
  max-processes: 16
`), 0600))

	c, err := parse(t, "--config-file", file, "-s", "type")
	require.NoError(t, err)
	assert.True(t, c.HasPID)
	assert.Equal(t, uint32(1234), c.PID)
	assert.Equal(t, "Event", c.Type)
	assert.Equal(t, SortByType, c.SortKey)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, 16, c.Cache.MaxProcesses)
	assert.Regexp(t, `cache\.max-processes\s+│\s+16`, c.Print())

	invalid := filepath.Join(dir, "invalid.json")
	require.NoError(t, os.WriteFile(invalid, []byte(`{"sort": "size", "colors": true}`), 0600))
	_, err = parse(t, "--config-file", invalid)
	require.Error(t, err)

	_, err = parse(t, "--config-file", filepath.Join(dir, "missing.yml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	var tests = []struct {
		text  string
		valid bool
		errs  int
	}{
		{text: `pid: 1234`, valid: true},
		{text: `pid: -1`, valid: false, errs: -1},
		{text: `sort: type`, valid: true},
		{text: `sort: size`, valid: false, errs: 1},
		{text: `logging:
                 level: debug
                 formatter: json
                 max-size: 10`, valid: true},
		{text: `logging:
                 level: loud
                 formatter: xml`, valid: false, errs: 2},
		{text: `cache:
                 max-procs: 10`, valid: false, errs: 1},
	}

	for i, tt := range tests {
		var m interface{}
		require.NoError(t, yaml.Unmarshal([]byte(tt.text), &m))
		valid, errs := validate(m)
		assert.Equal(t, tt.valid, valid, "%d. text=%q errs=%v", i, tt.text, errs)
		if tt.errs < 0 {
			assert.NotEmpty(t, errs, "%d. text=%q", i, tt.text)
			continue
		}
		assert.Len(t, errs, tt.errs, "%d. text=%q", i, tt.text)
	}
}
