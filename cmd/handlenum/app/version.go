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

package app

import (
	"io"

	"github.com/rabbitstack/handlenum/pkg/util/version"
)

// set at build time
var (
	ver    string
	commit string
	built  string
)

func renderVersion(w io.Writer) error {
	v, err := version.New(ver, commit, built)
	if err != nil {
		return err
	}
	v.Render(w)
	return nil
}
