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

const (
	// ObjectNameInformationClass returns the object name information.
	ObjectNameInformationClass uint32 = iota + 1
	// ObjectTypeInformationClass returns the object type information.
	ObjectTypeInformationClass
)

// UnicodeString is the counted UTF-16 string descriptor heading the
// object name and object type information structures. Buffer is kept
// as an address because it is only ever compared against the bounds
// of the buffer the descriptor lives in.
type UnicodeString struct {
	Length        uint16
	MaximumLength uint16
	Buffer        uintptr
}

// UnicodeStringSize is the size of the counted string descriptor.
var UnicodeStringSize = unsafe.Sizeof(UnicodeString{})

// ObjectNameInformation stores object name information.
type ObjectNameInformation struct {
	ObjectName UnicodeString
}

// ObjectTypeInformationHead is the leading part of the object type information
// structure. The remaining counters are never consulted.
type ObjectTypeInformationHead struct {
	TypeName UnicodeString
}
