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
	"sync"

	"github.com/pkg/errors"
	errs "github.com/rabbitstack/handlenum/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/windows"
)

const (
	ntdllName = "ntdll.dll"

	getModuleHandleExFlagUnchangedRefcount = 0x00000002
)

// ntdllSymbols holds the addresses of the undocumented ntdll entry points.
type ntdllSymbols struct {
	querySystemInformation uintptr
	queryObject            uintptr
}

var (
	ntdll     ntdllSymbols
	ntdllErr  error
	ntdllOnce sync.Once
)

// loadNtdll returns the module handle of ntdll. The already mapped module is
// reused when possible, otherwise the library is loaded from the system directory.
// The module is never unloaded.
func loadNtdll() (windows.Handle, error) {
	name, err := windows.UTF16PtrFromString(ntdllName)
	if err != nil {
		return 0, err
	}
	var mod windows.Handle
	if err := windows.GetModuleHandleEx(getModuleHandleExFlagUnchangedRefcount, name, &mod); err == nil && mod != 0 {
		return mod, nil
	}
	return windows.LoadLibraryEx(ntdllName, 0, windows.LOAD_LIBRARY_SEARCH_SYSTEM32)
}

// Resolve resolves the NtQuerySystemInformation and NtQueryObject entry points.
// Resolution happens once per process lifetime and the outcome is memoized.
func Resolve() error {
	ntdllOnce.Do(func() {
		mod, err := loadNtdll()
		if err != nil {
			ntdllErr = errs.System("LoadLibrary", err)
			return
		}
		resolve := func(name string) uintptr {
			if ntdllErr != nil {
				return 0
			}
			addr, err := windows.GetProcAddress(mod, name)
			if err != nil || addr == 0 {
				ntdllErr = errors.Wrapf(&errs.Error{Kind: errs.KindUnsupportedPlatform, Op: name, Err: err}, "%s is not exported by %s", name, ntdllName)
				return 0
			}
			return addr
		}
		ntdll.querySystemInformation = resolve("NtQuerySystemInformation")
		ntdll.queryObject = resolve("NtQueryObject")
		if ntdllErr == nil {
			log.Debugf("resolved %s entry points", ntdllName)
		}
	})
	return ntdllErr
}
