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

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rabbitstack/handlenum/pkg/ps"
	"github.com/rabbitstack/handlenum/pkg/util/log"
	"github.com/rabbitstack/handlenum/pkg/util/multierror"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	configFile = "config-file"

	pid         = "pid"
	processName = "name"
	handleType  = "type"
	objectName  = "object"
	sortKey     = "sort"
	countOnly   = "count"
	verbose     = "verbose"

	cacheMaxProcesses = "cache.max-processes"
)

// DisplayMode determines how the matching handles are rendered.
type DisplayMode uint8

const (
	// CountOnly prints the number of retrieved and matching handles.
	CountOnly DisplayMode = iota
	// Streaming resolves and prints every row as soon as it is produced.
	Streaming
	// Batch resolves all rows, sorts and then prints them.
	Batch
)

// String returns the display mode name.
func (m DisplayMode) String() string {
	switch m {
	case CountOnly:
		return "count"
	case Streaming:
		return "streaming"
	case Batch:
		return "batch"
	default:
		return "unknown"
	}
}

// CacheConfig contains the settings of the process name cache.
type CacheConfig struct {
	// MaxProcesses is the maximum number of process names kept in the cache.
	MaxProcesses int `json:"cache.max-processes" yaml:"cache.max-processes"`
}

// Config stores the filters, the ordering policy and the output settings of the enumeration.
type Config struct {
	// PID is the owning process identifier filter. It is only active if HasPID is true.
	PID uint32 `json:"pid" yaml:"pid"`
	// HasPID indicates if the pid filter was given.
	HasPID bool `json:"-" yaml:"-"`
	// ProcessName is the process name filter. It is accepted but not applied.
	ProcessName string `json:"name" yaml:"name"`
	// Type is the handle type filter matched case-insensitively.
	Type string `json:"type" yaml:"type"`
	// Object is the object name substring filter matched case-insensitively.
	Object string `json:"object" yaml:"object"`
	// SortKey determines the order of the printed rows.
	SortKey SortKey `json:"sort" yaml:"sort"`
	// Count enables the count-only display mode.
	Count bool `json:"count" yaml:"count"`
	// Verbose enables diagnostic output.
	Verbose bool `json:"verbose" yaml:"verbose"`

	// Log contains log-specific configuration options
	Log log.Config `json:"logging" yaml:"logging"`
	// Cache contains the process name cache options
	Cache CacheConfig `json:"cache" yaml:"cache"`

	flags *pflag.FlagSet
	viper *viper.Viper
}

// New builds a new configuration store. Values come from the command line
// flags and optionally from the configuration file. Environment variables
// are not consulted.
func New() *Config {
	c := &Config{
		SortKey: SortByPID,
		Log:     log.Config{},
		flags:   new(pflag.FlagSet),
		viper:   viper.New(),
	}
	c.addFlags()
	return c
}

func (c *Config) addFlags() {
	c.flags.Uint32P(pid, "p", 0, "Only show handles owned by the process with the given identifier")
	c.flags.StringP(processName, "n", "", "Only show handles owned by processes with the given name (reserved)")
	c.flags.StringP(handleType, "t", "", "Only show handles of the given type (e.g. File, Event, Key)")
	c.flags.StringP(objectName, "o", "", "Only show handles whose object name contains the given string")
	sk := SortByPID
	c.flags.VarP(&sk, sortKey, "s", "Sort order of the rows (pid|type|name)")
	c.flags.BoolP(countOnly, "c", false, "Only print the number of retrieved and matching handles")
	c.flags.BoolP(verbose, "v", false, "Emit diagnostic output")
	c.flags.String(configFile, "", "Path to the optional configuration file")
	c.flags.Int(cacheMaxProcesses, ps.DefaultCacheSize, "Maximum number of process names kept in the cache")
	c.Log.AddFlags(c.flags)
}

// MustViperize adds the flag set to the Cobra command and binds them within the Viper flags.
func (c *Config) MustViperize(cmd *cobra.Command) {
	cmd.PersistentFlags().AddFlagSet(c.flags)
	if err := c.viper.BindPFlags(cmd.PersistentFlags()); err != nil {
		panic(err)
	}
}

// Init loads the configuration file when given and populates the config
// from the flag and file values. Flags take precedence over the file.
func (c *Config) Init() error {
	if file := c.GetConfigFile(); file != "" {
		if err := c.TryLoadFile(file); err != nil {
			return fmt.Errorf("couldn't load %s config file: %v", file, err)
		}
		if err := c.Validate(); err != nil {
			return err
		}
	}

	c.PID = c.viper.GetUint32(pid)
	c.HasPID = c.flags.Changed(pid) || c.viper.InConfig(pid)
	c.ProcessName = c.viper.GetString(processName)
	c.Type = c.viper.GetString(handleType)
	c.Object = c.viper.GetString(objectName)
	key, err := ParseSortKey(c.viper.GetString(sortKey))
	if err != nil {
		return err
	}
	c.SortKey = key
	c.Count = c.viper.GetBool(countOnly)
	c.Verbose = c.viper.GetBool(verbose)
	c.Cache.MaxProcesses = c.viper.GetInt(cacheMaxProcesses)
	c.Log.InitFromViper(c.viper)

	return nil
}

// DisplayMode returns the display mode derived from the count flag and the sort key.
// Rows sorted by pid are streamed because the kernel already groups handles by process.
func (c *Config) DisplayMode() DisplayMode {
	switch {
	case c.Count:
		return CountOnly
	case c.SortKey == SortByPID:
		return Streaming
	default:
		return Batch
	}
}

// TryLoadFile attempts to load the configuration file from specified path on the file system.
func (c *Config) TryLoadFile(file string) error {
	c.viper.SetConfigFile(file)
	return c.viper.ReadInConfig()
}

// GetConfigFile gets the path of the configuration file from Viper value.
func (c *Config) GetConfigFile() string { return c.viper.GetString(configFile) }

// Validate ensures that all configuration options provided by user have the expected values. It returns
// a list of validation errors prefixed with the offending configuration property/flag.
func (c *Config) Validate() error {
	// we'll first validate the structure and values of the config file
	if file := c.GetConfigFile(); file != "" {
		b, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		var out interface{}
		switch filepath.Ext(file) {
		case ".yaml", ".yml":
			err = yaml.Unmarshal(b, &out)
		case ".json":
			err = json.Unmarshal(b, &out)
		default:
			return fmt.Errorf("%s is not a supported config file extension", filepath.Ext(file))
		}
		if err != nil {
			return fmt.Errorf("couldn't read the config file: %v", err)
		}
		if valid, errs := validate(out); !valid || len(errs) > 0 {
			return fmt.Errorf("invalid config: %v", multierror.Wrap(errs...))
		}
	}
	// now validate the Viper config flags
	if valid, errs := validate(c.viper.AllSettings()); !valid || len(errs) > 0 {
		return fmt.Errorf("invalid config: %v", multierror.Wrap(errs...))
	}
	return nil
}
