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

package types

import (
	"fmt"
	"math"
)

const (
	// NotAvailable is the cell value for type or name queries that failed.
	NotAvailable = "N/A"
	// Locked is the cell value for handles whose name was not queried to avoid a hang.
	Locked = "Locked (Anti-Deadlock)"
)

// RawHandle is the untreated entry of the system-wide handle table.
type RawHandle struct {
	// Object is the kernel address of the object this handle references.
	Object uintptr
	// PID is the identifier of the process owning the handle. It is kept
	// pointer-sized as reported by the kernel.
	PID uintptr
	// Num is the handle value inside the owning process.
	Num uintptr
	// Access is the granted access mask.
	Access uint32
	// TypeIndex is the index in the kernel object type table. It
	// varies across OS versions.
	TypeIndex uint16
	// Attributes are the handle attribute flags.
	Attributes uint32
}

// ClampPID returns the owning pid narrowed to 32 bits. The second return value is
// false when the pid does not fit in which case the pid is clamped to the maximum.
func (h RawHandle) ClampPID() (uint32, bool) {
	if uint64(h.PID) > math.MaxUint32 {
		return math.MaxUint32, false
	}
	return uint32(h.PID), true
}

// String returns a string representation of the raw handle.
func (h RawHandle) String() string {
	return fmt.Sprintf("PID: %d Num: 0x%X Access: 0x%08X Object: 0x%x", h.PID, h.Num, h.Access, h.Object)
}

// Row is the fully resolved handle emitted by the enumeration.
type Row struct {
	// PID is the owning pid clamped to 32 bits.
	PID uint32
	// ProcessName is the executable name of the owning process.
	ProcessName string
	// Num is the handle value inside the owning process.
	Num uintptr
	// Type is the object type name (e.g. File, Event, Key).
	Type string
	// Name is the object name (e.g. \Device\HarddiskVolume4\Windows\Temp).
	Name string
	// Access is the granted access mask.
	Access uint32
	// Object is the kernel address of the object.
	Object uintptr
	// Attributes are the handle attribute flags.
	Attributes uint32
}

// IsLocked determines if the object name was withheld by the anti-deadlock gates.
func (r Row) IsLocked() bool { return r.Name == Locked }

// String returns a string representation of the row.
func (r Row) String() string {
	return fmt.Sprintf("PID: %d (%s) Num: 0x%X Type: %s, Name: %s", r.PID, r.ProcessName, r.Num, r.Type, r.Name)
}
