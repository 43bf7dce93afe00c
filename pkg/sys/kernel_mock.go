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

import (
	"sync"
	"syscall"
	"unicode/utf16"
	"unsafe"
)

// MockHandleKey identifies a handle inside the table of the owning process.
type MockHandleKey struct {
	PID    uint32
	Handle uintptr
}

// MockObject is the kernel object reachable through a mocked handle.
type MockObject struct {
	// Type is the object type name returned by the type query.
	Type string
	// Name is the object name returned by the name query.
	Name string
	// NullName makes the name query return a descriptor with a null buffer.
	NullName bool
	// TypeStatus, when set, is returned by the type query.
	TypeStatus uint32
	// NameStatus, when set, is returned by the name query.
	NameStatus uint32
}

type mockHandleKind uint8

const (
	mockProcess mockHandleKind = iota + 1
	mockToken
	mockDuplicate
)

type mockHandle struct {
	kind mockHandleKind
	pid  uint32
	key  MockHandleKey
}

// KernelMock is the in-memory kernel used by tests. It tracks every handle it
// hands out, so callers can assert that all of them are released, and counts
// the object query invocations.
type KernelMock struct {
	mu sync.Mutex

	// Entries is the system handle table returned by the extended handle query.
	Entries []SystemHandleTableEntryInfoEx
	// Objects maps the handles of the system table to the objects they reference.
	// Handles without an object fail duplication with ERROR_INVALID_HANDLE.
	Objects map[MockHandleKey]MockObject
	// Processes maps pids to their image paths. Unknown pids can't be opened.
	Processes map[uint32]string
	// Protected lists pids that refuse to be opened with ERROR_ACCESS_DENIED.
	Protected map[uint32]bool

	// ResolveErr is returned by Resolve.
	ResolveErr error
	// TokenErr is returned by OpenProcessToken.
	TokenErr error
	// LookupErr is returned by LookupPrivilegeValue.
	LookupErr error
	// AdjustErr is returned by AdjustTokenPrivileges.
	AdjustErr error
	// SystemInfoFn overrides the extended handle query when set.
	SystemInfoFn func(buf []byte, retLen *uint32) uint32
	// ObjectQueryFn overrides the object query when set.
	ObjectQueryFn func(class uint32, buf []byte, retLen *uint32) uint32

	ProcessOpens  int
	TokenOpens    int
	Duplicates    int
	Closes        int
	SystemQueries int
	ObjectQueries int
	TypeQueries   int
	NameQueries   int
	ImageQueries  int

	next Handle
	live map[Handle]mockHandle
}

// NewKernelMock creates an empty kernel mock.
func NewKernelMock() *KernelMock {
	return &KernelMock{
		Objects:   make(map[MockHandleKey]MockObject),
		Processes: make(map[uint32]string),
		Protected: make(map[uint32]bool),
		next:      0x100,
		live:      make(map[Handle]mockHandle),
	}
}

// AddHandle appends the handle to the system table and registers the object it references.
func (k *KernelMock) AddHandle(pid uint32, handle uintptr, access uint32, obj MockObject) {
	k.Entries = append(k.Entries, SystemHandleTableEntryInfoEx{
		Object:          uintptr(0xFFFF800000000000 | uint64(len(k.Entries)+1)<<4),
		UniqueProcessID: uintptr(pid),
		HandleValue:     handle,
		GrantedAccess:   access,
	})
	k.Objects[MockHandleKey{PID: pid, Handle: handle}] = obj
}

// Live returns the number of handles that were handed out and not closed yet.
func (k *KernelMock) Live() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.live)
}

func (k *KernelMock) alloc(h mockHandle) Handle {
	k.next += 4
	k.live[k.next] = h
	return k.next
}

func (k *KernelMock) Resolve() error { return k.ResolveErr }

func (k *KernelMock) CurrentProcess() Handle { return CurrentProcessHandle }

func (k *KernelMock) OpenProcess(access uint32, pid uint32) (Handle, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.Protected[pid] {
		return 0, syscall.Errno(ErrorAccessDenied)
	}
	if _, ok := k.Processes[pid]; !ok {
		return 0, syscall.Errno(ErrorInvalidParameter)
	}
	k.ProcessOpens++
	return k.alloc(mockHandle{kind: mockProcess, pid: pid}), nil
}

func (k *KernelMock) DuplicateHandle(sourceProcess Handle, source Handle, targetProcess Handle, access uint32, options uint32) (Handle, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	proc, ok := k.live[sourceProcess]
	if !ok || proc.kind != mockProcess {
		return 0, syscall.Errno(ErrorInvalidHandle)
	}
	key := MockHandleKey{PID: proc.pid, Handle: uintptr(source)}
	if _, ok := k.Objects[key]; !ok {
		return 0, syscall.Errno(ErrorInvalidHandle)
	}
	k.Duplicates++
	return k.alloc(mockHandle{kind: mockDuplicate, key: key}), nil
}

func (k *KernelMock) CloseHandle(h Handle) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if _, ok := k.live[h]; !ok {
		return syscall.Errno(ErrorInvalidHandle)
	}
	delete(k.live, h)
	k.Closes++
	return nil
}

func (k *KernelMock) OpenProcessToken(process Handle, access uint32) (Handle, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.TokenErr != nil {
		return 0, k.TokenErr
	}
	k.TokenOpens++
	return k.alloc(mockHandle{kind: mockToken}), nil
}

func (k *KernelMock) LookupPrivilegeValue(name string) (LUID, error) {
	if k.LookupErr != nil {
		return LUID{}, k.LookupErr
	}
	return LUID{LowPart: 20}, nil
}

func (k *KernelMock) AdjustTokenPrivileges(token Handle, luid LUID, attributes uint32) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if h, ok := k.live[token]; !ok || h.kind != mockToken {
		return syscall.Errno(ErrorInvalidHandle)
	}
	return k.AdjustErr
}

// QuerySystemInformation serializes the handle table with the native layout. The
// required size is always reported through retLen.
func (k *KernelMock) QuerySystemInformation(class uint32, buf []byte, retLen *uint32) uint32 {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.SystemQueries++
	if k.SystemInfoFn != nil {
		return k.SystemInfoFn(buf, retLen)
	}
	if class != SystemExtendedHandleInformation {
		return StatusInvalidHandle
	}
	n := len(k.Entries)
	size := SystemHandleInformationExHeaderSize + uintptr(n)*SystemHandleTableEntryInfoExSize
	if retLen != nil {
		*retLen = uint32(size)
	}
	if uintptr(len(buf)) < size {
		return StatusInfoLengthMismatch
	}
	info := (*SystemHandleInformationEx)(unsafe.Pointer(&buf[0]))
	info.NumberOfHandles = uintptr(n)
	copy(info.Entries(n), k.Entries)
	return StatusSuccess
}

// QueryObject writes the counted string descriptor followed by the UTF-16
// characters, mirroring the layout of the object information classes.
func (k *KernelMock) QueryObject(h Handle, class uint32, buf []byte, retLen *uint32) uint32 {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.ObjectQueries++
	switch class {
	case ObjectTypeInformationClass:
		k.TypeQueries++
	case ObjectNameInformationClass:
		k.NameQueries++
	}
	if k.ObjectQueryFn != nil {
		return k.ObjectQueryFn(class, buf, retLen)
	}
	dup, ok := k.live[h]
	if !ok || dup.kind != mockDuplicate {
		return StatusInvalidHandle
	}
	obj := k.Objects[dup.key]

	var (
		s    string
		null bool
	)
	switch class {
	case ObjectTypeInformationClass:
		if obj.TypeStatus != 0 {
			return obj.TypeStatus
		}
		s = obj.Type
	case ObjectNameInformationClass:
		if obj.NameStatus != 0 {
			return obj.NameStatus
		}
		s, null = obj.Name, obj.NullName
	default:
		return StatusInvalidHandle
	}
	return writeUnicodeString(s, null, buf, retLen)
}

func writeUnicodeString(s string, null bool, buf []byte, retLen *uint32) uint32 {
	var chars []uint16
	if !null {
		chars = utf16.Encode([]rune(s))
	}
	size := UnicodeStringSize + uintptr(len(chars)+1)*2
	if retLen != nil {
		*retLen = uint32(size)
	}
	if uintptr(len(buf)) < size {
		return StatusInfoLengthMismatch
	}
	us := (*UnicodeString)(unsafe.Pointer(&buf[0]))
	if null {
		*us = UnicodeString{}
		return StatusSuccess
	}
	off := UnicodeStringSize
	for i, c := range chars {
		buf[off+uintptr(i)*2] = byte(c)
		buf[off+uintptr(i)*2+1] = byte(c >> 8)
	}
	buf[off+uintptr(len(chars))*2] = 0
	buf[off+uintptr(len(chars))*2+1] = 0
	*us = UnicodeString{
		Length:        uint16(len(chars) * 2),
		MaximumLength: uint16(len(chars)*2 + 2),
		Buffer:        uintptr(unsafe.Pointer(&buf[off])),
	}
	return StatusSuccess
}

// QueryFullProcessImageName copies the image path of the opened process.
func (k *KernelMock) QueryFullProcessImageName(process Handle, buf []uint16, size *uint32) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.ImageQueries++
	h, ok := k.live[process]
	if !ok || h.kind != mockProcess {
		return syscall.Errno(ErrorInvalidHandle)
	}
	path := utf16.Encode([]rune(k.Processes[h.pid]))
	if int(*size) < len(path)+1 || len(buf) < len(path)+1 {
		return syscall.Errno(ErrorInsufficientBuffer)
	}
	copy(buf, path)
	buf[len(path)] = 0
	*size = uint32(len(path))
	return nil
}
