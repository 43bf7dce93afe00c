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

package rotate

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Settings control when the log file is rotated and how many rotated files are kept.
type Settings struct {
	// MaxSize is the maximum size in megabytes of the log file before it gets rotated.
	MaxSize int `json:"logging.max-size" yaml:"logging.max-size"`
	// MaxBackups is the maximum number of old log files to retain.
	MaxBackups int `json:"logging.max-backups" yaml:"logging.max-backups"`
	// MaxAge is the maximum number of days to retain old log files based on the
	// timestamp encoded in their filename. Zero keeps them forever.
	MaxAge int `json:"logging.max-age" yaml:"logging.max-age"`
}

// Validate checks the rotation limits are not negative.
func (s Settings) Validate() error {
	switch {
	case s.MaxSize < 0:
		return fmt.Errorf("invalid max log file size: %d", s.MaxSize)
	case s.MaxBackups < 0:
		return fmt.Errorf("invalid max log file backups: %d", s.MaxBackups)
	case s.MaxAge < 0:
		return fmt.Errorf("invalid max log file age: %d", s.MaxAge)
	}
	return nil
}

// Hook writes log entries at or above the minimum level to the rotated file.
type Hook struct {
	mu        sync.Mutex
	levels    []logrus.Level
	formatter logrus.Formatter
	file      *lumberjack.Logger
}

// NewHook builds a new rotate file hook.
func NewHook(filename string, s Settings, level logrus.Level, formatter logrus.Formatter) (*Hook, error) {
	if filename == "" {
		return nil, fmt.Errorf("empty log file name")
	}
	if formatter == nil {
		return nil, fmt.Errorf("missing formatter for %s log file", filename)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &Hook{
		levels:    logrus.AllLevels[:level+1],
		formatter: formatter,
		file: &lumberjack.Logger{
			Filename:   filename,
			MaxSize:    s.MaxSize,
			MaxBackups: s.MaxBackups,
			MaxAge:     s.MaxAge,
		},
	}, nil
}

// Levels returns the levels the hook fires for.
func (h *Hook) Levels() []logrus.Level { return h.levels }

// Fire formats the entry and appends it to the log file.
func (h *Hook) Fire(entry *logrus.Entry) error {
	b, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.file.Write(b)
	return err
}

// Close closes the current log file.
func (h *Hook) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.file.Close()
}
