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

package sys

// Handle is the native handle value as seen by the calling process.
type Handle uintptr

// CurrentProcessHandle is the pseudo handle that designates the calling process.
const CurrentProcessHandle = ^Handle(0)

// LUID is the locally unique identifier assigned to a privilege.
type LUID struct {
	LowPart  uint32
	HighPart int32
}

// NT status codes inspected by the collectors.
const (
	// StatusSuccess is the NTSTATUS returned by successful calls.
	StatusSuccess uint32 = 0x00000000
	// StatusInfoLengthMismatch signals the supplied buffer is too small.
	StatusInfoLengthMismatch uint32 = 0xC0000004
	// StatusInvalidHandle signals the queried handle is not valid.
	StatusInvalidHandle uint32 = 0xC0000008
	// StatusAccessDenied signals the caller lacks access to the object.
	StatusAccessDenied uint32 = 0xC0000022
)

// Win32 error codes.
const (
	// ErrorAccessDenied is returned when the caller lacks the requested access rights.
	ErrorAccessDenied uint32 = 5
	// ErrorInvalidHandle is returned for stale or foreign handle values.
	ErrorInvalidHandle uint32 = 6
	// ErrorInvalidParameter is returned for unknown process identifiers.
	ErrorInvalidParameter uint32 = 87
	// ErrorInsufficientBuffer is returned when the output buffer is too small.
	ErrorInsufficientBuffer uint32 = 122
	// ErrorNotAllAssigned specifies that the token does not have one or more of the privileges specified in the state parameter.
	ErrorNotAllAssigned uint32 = 1300
)

// Access rights and options.
const (
	ProcessDupHandle               uint32 = 0x0040
	ProcessQueryLimitedInformation uint32 = 0x1000

	TokenQuery            uint32 = 0x0008
	TokenAdjustPrivileges uint32 = 0x0020

	DuplicateSameAccess uint32 = 0x00000002

	FileReadData  uint32 = 0x0001
	FileWriteData uint32 = 0x0002
	Synchronize   uint32 = 0x00100000
)

// SystemExtendedHandleInformation is the information class that returns the
// system-wide handle table with pointer-sized fields.
const SystemExtendedHandleInformation uint32 = 64

// Kernel is the narrow boundary between the enumeration pipeline and the operating system.
// The native implementation delegates to the Windows API, while tests substitute the
// instrumented KernelMock.
type Kernel interface {
	// Resolve makes sure the undocumented ntdll entry points are available.
	Resolve() error
	// CurrentProcess returns the pseudo handle of the calling process.
	CurrentProcess() Handle
	// OpenProcess opens the process with the requested access rights.
	OpenProcess(access uint32, pid uint32) (Handle, error)
	// DuplicateHandle duplicates the handle owned by the source process into the target process.
	DuplicateHandle(sourceProcess Handle, source Handle, targetProcess Handle, access uint32, options uint32) (Handle, error)
	// CloseHandle releases the handle.
	CloseHandle(h Handle) error
	// OpenProcessToken opens the access token of the process.
	OpenProcessToken(process Handle, access uint32) (Handle, error)
	// LookupPrivilegeValue resolves the privilege name to its LUID on the local system.
	LookupPrivilegeValue(name string) (LUID, error)
	// AdjustTokenPrivileges applies the attributes to the privilege. Partial success
	// reported through the last error is returned as an error.
	AdjustTokenPrivileges(token Handle, luid LUID, attributes uint32) error
	// QuerySystemInformation invokes NtQuerySystemInformation and returns the raw NTSTATUS.
	QuerySystemInformation(class uint32, buf []byte, retLen *uint32) uint32
	// QueryObject invokes NtQueryObject and returns the raw NTSTATUS.
	QueryObject(h Handle, class uint32, buf []byte, retLen *uint32) uint32
	// QueryFullProcessImageName fills the buffer with the process image path. On
	// return size holds the number of characters written.
	QueryFullProcessImageName(process Handle, buf []uint16, size *uint32) error
}
