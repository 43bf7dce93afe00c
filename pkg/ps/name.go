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

package ps

import (
	"errors"
	"expvar"
	"math"
	"strings"
	"syscall"

	"github.com/rabbitstack/handlenum/pkg/sys"
	"github.com/rabbitstack/handlenum/pkg/util/utf16"
	log "github.com/sirupsen/logrus"
)

const (
	// Idle is the name of the idle pseudo-process.
	Idle = "Idle"
	// System is the name of the system pseudo-process.
	System = "System"
	// Unknown is the name of processes whose image can't be resolved.
	Unknown = "Unknown"
)

const (
	idlePID   uint32 = 0
	systemPID uint32 = 4

	initialPathSize = 512
	maxAttempts     = 10
)

var processLookupFailures = expvar.NewInt("process.lookup.failures")

// NameResolver resolves process identifiers to executable names.
type NameResolver struct {
	k sys.Kernel
}

// NewNameResolver creates a new process name resolver.
func NewNameResolver(k sys.Kernel) *NameResolver {
	return &NameResolver{k: k}
}

// Name returns the executable name of the process. It never fails. Processes
// that can't be opened or whose image path can't be queried are reported as Unknown.
func (r *NameResolver) Name(pid uint32) string {
	switch pid {
	case idlePID:
		return Idle
	case systemPID:
		return System
	}
	h, err := r.k.OpenProcess(sys.ProcessQueryLimitedInformation, pid)
	if err != nil {
		processLookupFailures.Add(1)
		log.Tracef("couldn't open process %d: %v", pid, err)
		return Unknown
	}
	proc := sys.Own(r.k, h)
	//nolint:errcheck
	defer proc.Close()

	buf := make([]uint16, initialPathSize)
	for attempt := 0; attempt < maxAttempts; attempt++ {
		size := uint32(len(buf))
		err := r.k.QueryFullProcessImageName(proc.Handle(), buf, &size)
		if err == nil {
			if size > uint32(len(buf)) {
				size = uint32(len(buf))
			}
			name := BaseName(utf16.DecodeNul(buf[:size]))
			if name == "" {
				return Unknown
			}
			return name
		}
		if !errors.Is(err, syscall.Errno(sys.ErrorInsufficientBuffer)) {
			processLookupFailures.Add(1)
			log.Tracef("couldn't query image name of process %d: %v", pid, err)
			break
		}
		if len(buf) > math.MaxUint32/2 {
			break
		}
		buf = make([]uint16, len(buf)*2)
	}
	return Unknown
}

// BaseName returns the last element of the Windows path. Both backslash
// and forward slash are accepted as separators.
func BaseName(path string) string {
	if i := strings.LastIndexAny(path, `\/`); i >= 0 {
		return path[i+1:]
	}
	return path
}
