//go:build !windows

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
	errs "github.com/rabbitstack/handlenum/pkg/errors"
)

type kernel struct{}

// NewKernel returns the kernel for platforms that lack the Windows object
// manager. Every operation fails with the unsupported platform error.
func NewKernel() Kernel { return kernel{} }

// Resolve always fails outside Windows.
func Resolve() error { return errs.New(errs.KindUnsupportedPlatform, "ntdll.dll") }

func (kernel) Resolve() error { return Resolve() }

func (kernel) CurrentProcess() Handle { return CurrentProcessHandle }

func (kernel) OpenProcess(uint32, uint32) (Handle, error) {
	return 0, errs.ErrUnsupportedPlatform
}

func (kernel) DuplicateHandle(Handle, Handle, Handle, uint32, uint32) (Handle, error) {
	return 0, errs.ErrUnsupportedPlatform
}

func (kernel) CloseHandle(Handle) error { return errs.ErrUnsupportedPlatform }

func (kernel) OpenProcessToken(Handle, uint32) (Handle, error) {
	return 0, errs.ErrUnsupportedPlatform
}

func (kernel) LookupPrivilegeValue(string) (LUID, error) {
	return LUID{}, errs.ErrUnsupportedPlatform
}

func (kernel) AdjustTokenPrivileges(Handle, LUID, uint32) error {
	return errs.ErrUnsupportedPlatform
}

func (kernel) QuerySystemInformation(uint32, []byte, *uint32) uint32 { return StatusInvalidHandle }

func (kernel) QueryObject(Handle, uint32, []byte, *uint32) uint32 { return StatusInvalidHandle }

func (kernel) QueryFullProcessImageName(Handle, []uint16, *uint32) error {
	return errs.ErrUnsupportedPlatform
}
