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

package log

import (
	"fmt"
	"path/filepath"

	"github.com/rabbitstack/handlenum/pkg/util/log/rotate"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	logLevel      = "logging.level"
	logMaxAge     = "logging.max-age"
	logMaxBackups = "logging.max-backups"
	logMaxSize    = "logging.max-size"
	logFormatter  = "logging.formatter"
	logPath       = "logging.path"
	logStdout     = "logging.log-stdout"
)

// Config contains the settings of the logging system.
type Config struct {
	// Level specifies the minimum allowed log level.
	Level string `json:"logging.level" yaml:"logging.level"`
	// Formatter represents the log formatter (json|text).
	Formatter string `json:"logging.formatter" yaml:"logging.formatter"`
	// Path is the directory of the log file. Logs are not written to a file when empty.
	Path string `json:"logging.path" yaml:"logging.path"`
	// LogStdout indicates whether log lines are written to the console when
	// the log file is enabled.
	LogStdout bool `json:"logging.log-stdout" yaml:"logging.log-stdout"`
	// Rotation controls the rotation of the log file.
	Rotation rotate.Settings `json:"rotation" yaml:"rotation"`
}

// InitFromViper initializes logging configuration from Viper.
func (c *Config) InitFromViper(v *viper.Viper) {
	c.Level = v.GetString(logLevel)
	c.Formatter = v.GetString(logFormatter)
	c.Path = v.GetString(logPath)
	c.LogStdout = v.GetBool(logStdout)
	c.Rotation = rotate.Settings{
		MaxSize:    v.GetInt(logMaxSize),
		MaxBackups: v.GetInt(logMaxBackups),
		MaxAge:     v.GetInt(logMaxAge),
	}
}

// AddFlags registers persistent logging flags.
func (c *Config) AddFlags(flags *pflag.FlagSet) {
	flags.String(logLevel, "warn", "Specifies the minimum allowed log level")
	flags.String(logFormatter, "text", "Represents the log formatter (json|text)")
	flags.String(logPath, "", "Specifies the directory where log files are stored")
	flags.Bool(logStdout, true, "Indicates whether log lines are written to the error stream when the log file is enabled")
	flags.Int(logMaxSize, 100, "Specifies the maximum size in megabytes of the log file before it gets rotated")
	flags.Int(logMaxBackups, 15, "Specifies the maximum number of old log files to retain")
	flags.Int(logMaxAge, 0, "Sets the maximum number of days to retain old log files based on the timestamp encoded in their filename. By default no old log files will be removed")
}

// ParseLevel returns the minimum log level. The empty level defaults to warn.
func (c Config) ParseLevel() (logrus.Level, error) {
	if c.Level == "" {
		return logrus.WarnLevel, nil
	}
	return logrus.ParseLevel(c.Level)
}

// RaiseLevel makes sure entries at the given level are logged. Levels that
// are already more verbose are kept.
func (c *Config) RaiseLevel(level logrus.Level) {
	if current, err := c.ParseLevel(); err == nil && current >= level {
		return
	}
	c.Level = level.String()
}

// NewFormatter creates the log formatter.
func (c Config) NewFormatter() (logrus.Formatter, error) {
	switch c.Formatter {
	case "json":
		return &logrus.JSONFormatter{}, nil
	case "text", "":
		return &logrus.TextFormatter{DisableColors: true}, nil
	default:
		return nil, fmt.Errorf("%q is not a valid log formatter", c.Formatter)
	}
}

// File returns the full path of the log file with the given name.
func (c Config) File(name string) string { return filepath.Join(c.Path, name) }
