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
	"expvar"
	"fmt"
	"io"
	"os"

	"github.com/rabbitstack/handlenum/pkg/util/log/rotate"
	fs "github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
)

var (
	// loggerErrors contains logger setup errors
	loggerErrors = expvar.NewMap("logger.errors")
)

// InitFromConfig initializes the global Logrus instance from config options. Log
// lines go to the console writer, and additionally to the file with the given
// name in the logs directory when the path is set.
func InitFromConfig(c Config, filename string, w io.Writer) error {
	formatter, err := c.NewFormatter()
	if err != nil {
		return err
	}
	level, err := c.ParseLevel()
	if err != nil {
		return err
	}
	logrus.SetFormatter(formatter)
	logrus.SetLevel(level)
	logrus.SetOutput(w)

	if c.Path == "" {
		return nil
	}
	if err := os.MkdirAll(c.Path, os.ModePerm); err != nil {
		loggerErrors.Add(err.Error(), 1)
		return fmt.Errorf("unable to create the %s logs directory: %v", c.Path, err)
	}
	file := c.File(filename)

	// disable writing to the console
	if !c.LogStdout {
		logrus.SetOutput(io.Discard)
	}

	hook, err := rotate.NewHook(file, c.Rotation, level, formatter)
	if err != nil {
		loggerErrors.Add(err.Error(), 1)
		// rotation settings are unusable, so we fallback on the plain file hook
		pathMap := make(fs.PathMap)
		for _, lvl := range logrus.AllLevels[:level+1] {
			pathMap[lvl] = file
		}
		logrus.AddHook(fs.NewHook(pathMap, formatter))
		logrus.Warnf("unable to initialize rotate file hook: %v", err)
		return nil
	}
	logrus.AddHook(hook)

	return nil
}
