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

package ntstatus

import (
	"fmt"
	"sync"
)

var statusCache = map[uint32]string{}
var mux sync.Mutex

var knownStatuses = map[uint32]string{
	0xC0000004: "The specified information record length does not match the length required for the specified information class.",
	0xC0000008: "An invalid HANDLE was specified.",
	0xC0000022: "A process has requested access to an object, but has not been granted those access rights.",
	0xC0000017: "Not enough virtual memory or paging file quota is available to complete the specified operation.",
	0xC00000BB: "The request is not supported.",
}

// IsSuccess determines if the status code is in success or information value ranges.
// https://learn.microsoft.com/en-us/windows-hardware/drivers/kernel/using-ntstatus-values
func IsSuccess(status uint32) bool {
	return status <= 0x7FFFFFFF
}

// FormatMessage resolves the NT status code to an error message. The cache of resolved
// messages is kept to alleviate the pressure on API call invocations.
func FormatMessage(status uint32) string {
	if IsSuccess(status) {
		return "Success"
	}
	mux.Lock()
	defer mux.Unlock()
	if s, ok := statusCache[status]; ok {
		return s
	}
	s := formatMessage(status)
	if s == "" {
		known, ok := knownStatuses[status]
		if !ok {
			return fmt.Sprintf("NTSTATUS 0x%08X", status)
		}
		s = known
	}
	statusCache[status] = s
	return s
}
