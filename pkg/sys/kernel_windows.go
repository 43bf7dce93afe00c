//go:build windows

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
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modadvapi32 = windows.NewLazySystemDLL("advapi32.dll")

	procAdjustTokenPrivileges = modadvapi32.NewProc("AdjustTokenPrivileges")
)

type kernel struct{}

// NewKernel returns the kernel backed by the Windows API.
func NewKernel() Kernel { return kernel{} }

func (kernel) Resolve() error { return Resolve() }

func (kernel) CurrentProcess() Handle { return Handle(windows.CurrentProcess()) }

func (kernel) OpenProcess(access uint32, pid uint32) (Handle, error) {
	h, err := windows.OpenProcess(access, false, pid)
	if err != nil {
		return 0, err
	}
	return Handle(h), nil
}

func (kernel) DuplicateHandle(sourceProcess Handle, source Handle, targetProcess Handle, access uint32, options uint32) (Handle, error) {
	var dup windows.Handle
	err := windows.DuplicateHandle(windows.Handle(sourceProcess), windows.Handle(source), windows.Handle(targetProcess), &dup, access, false, options)
	if err != nil {
		return 0, err
	}
	return Handle(dup), nil
}

func (kernel) CloseHandle(h Handle) error { return windows.CloseHandle(windows.Handle(h)) }

func (kernel) OpenProcessToken(process Handle, access uint32) (Handle, error) {
	var token windows.Token
	if err := windows.OpenProcessToken(windows.Handle(process), access, &token); err != nil {
		return 0, err
	}
	return Handle(token), nil
}

func (kernel) LookupPrivilegeValue(name string) (LUID, error) {
	n, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return LUID{}, err
	}
	var luid windows.LUID
	if err := windows.LookupPrivilegeValue(nil, n, &luid); err != nil {
		return LUID{}, err
	}
	return LUID{LowPart: luid.LowPart, HighPart: luid.HighPart}, nil
}

func (kernel) AdjustTokenPrivileges(token Handle, luid LUID, attributes uint32) error {
	privs := windows.Tokenprivileges{PrivilegeCount: 1}
	privs.Privileges[0] = windows.LUIDAndAttributes{
		Luid:       windows.LUID{LowPart: luid.LowPart, HighPart: luid.HighPart},
		Attributes: attributes,
	}
	r1, _, lastErr := procAdjustTokenPrivileges.Call(
		uintptr(token),
		0,
		uintptr(unsafe.Pointer(&privs)),
		unsafe.Sizeof(privs),
		0,
		0,
	)
	// the call succeeds even when the privilege is not held by
	// the token, so the last error has to be inspected as well
	errno, _ := lastErr.(syscall.Errno)
	if r1 == 0 {
		if errno == 0 {
			return syscall.EINVAL
		}
		return errno
	}
	if uint32(errno) == ErrorNotAllAssigned {
		return errno
	}
	return nil
}

func (kernel) QuerySystemInformation(class uint32, buf []byte, retLen *uint32) uint32 {
	if err := Resolve(); err != nil {
		return StatusInvalidHandle
	}
	r0, _, _ := syscall.SyscallN(ntdll.querySystemInformation,
		uintptr(class),
		bufferAddr(buf),
		uintptr(len(buf)),
		uintptr(unsafe.Pointer(retLen)),
	)
	return uint32(r0)
}

func (kernel) QueryObject(h Handle, class uint32, buf []byte, retLen *uint32) uint32 {
	if err := Resolve(); err != nil {
		return StatusInvalidHandle
	}
	r0, _, _ := syscall.SyscallN(ntdll.queryObject,
		uintptr(h),
		uintptr(class),
		bufferAddr(buf),
		uintptr(len(buf)),
		uintptr(unsafe.Pointer(retLen)),
	)
	return uint32(r0)
}

func (kernel) QueryFullProcessImageName(process Handle, buf []uint16, size *uint32) error {
	if len(buf) == 0 {
		return syscall.Errno(ErrorInsufficientBuffer)
	}
	return windows.QueryFullProcessImageName(windows.Handle(process), 0, &buf[0], size)
}

func bufferAddr(buf []byte) uintptr {
	if len(buf) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&buf[0]))
}
