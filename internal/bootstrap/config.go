/*
 * Copyright 2021-2022 by Nedim Sabic Sabic
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

package bootstrap

import (
	"io"

	"github.com/rabbitstack/handlenum/pkg/config"
	"github.com/rabbitstack/handlenum/pkg/util/log"
	"github.com/rabbitstack/handlenum/pkg/util/version"
	"github.com/sirupsen/logrus"
)

// logFile is the name of the log file inside the logs directory.
const logFile = "handlenum.log"

// InitConfigAndLogger initializes the configuration and sets up the logger.
// Console log lines are written to w. Verbose mode raises the log level to
// debug unless an even more verbose level was requested.
func InitConfigAndLogger(cfg *config.Config, w io.Writer) error {
	if err := cfg.Init(); err != nil {
		return err
	}
	if cfg.Verbose {
		cfg.Log.RaiseLevel(logrus.DebugLevel)
	}
	if err := log.InitFromConfig(cfg.Log, logFile, w); err != nil {
		return err
	}
	logrus.Debugf("handlenum %s running with config:\n%s", version.Get(), cfg.Print())
	return nil
}
