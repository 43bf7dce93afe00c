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

package sys

import "unsafe"

// SystemHandleTableEntryInfoEx is the structure that describes the system handle entry.
type SystemHandleTableEntryInfoEx struct {
	Object                uintptr
	UniqueProcessID       uintptr
	HandleValue           uintptr
	GrantedAccess         uint32
	CreatorBackTraceIndex uint16
	ObjectTypeIndex       uint16
	HandleAttributes      uint32
	Reserved              uint32
}

// SystemHandleInformationEx is the structure that holds the system handle table.
type SystemHandleInformationEx struct {
	NumberOfHandles uintptr
	Reserved        uintptr
	Handles         [1]SystemHandleTableEntryInfoEx
}

var (
	// SystemHandleInformationExHeaderSize is the offset of the first handle entry.
	SystemHandleInformationExHeaderSize = unsafe.Offsetof(SystemHandleInformationEx{}.Handles)
	// SystemHandleTableEntryInfoExSize is the stride between consecutive handle entries.
	SystemHandleTableEntryInfoExSize = unsafe.Sizeof(SystemHandleTableEntryInfoEx{})
)

// Entries returns the view over the handle entries stored in the buffer. The
// caller must validate the handle count against the buffer size beforehand.
func (s *SystemHandleInformationEx) Entries(count int) []SystemHandleTableEntryInfoEx {
	if count == 0 {
		return nil
	}
	return unsafe.Slice(&s.Handles[0], count)
}
