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

package handle

import (
	"expvar"
	"unsafe"

	errs "github.com/rabbitstack/handlenum/pkg/errors"
	"github.com/rabbitstack/handlenum/pkg/handle/types"
	"github.com/rabbitstack/handlenum/pkg/sys"
	"github.com/rabbitstack/handlenum/pkg/util/ntstatus"
	"github.com/rabbitstack/handlenum/pkg/util/utf16"
	log "github.com/sirupsen/logrus"
)

// minObjectBufferSize is the smallest buffer handed to the object queries.
const minObjectBufferSize uint32 = 512

var (
	deadlockRefusals  = expvar.NewInt("handle.deadlock.refusals")
	duplicateFailures = expvar.NewInt("handle.duplicate.failures")
	typeQueryFailures = expvar.NewInt("handle.type.query.failures")
	nameQueryFailures = expvar.NewInt("handle.name.query.failures")
)

// pipeAccessMasks are the access masks of synchronous pipe-like file handles.
// Querying the name of such handles can block for as long as the remote I/O
// is pending, so they are never duplicated for naming.
var pipeAccessMasks = map[uint32]struct{}{
	0x0012019F: {}, // generic read/write + synchronize
	0x001A019F: {}, // generic read/write + synchronize + attributes
	0x00120189: {}, // read + synchronize
	0x00100000: {}, // synchronize
}

// IsPipeAccessMask determines if the access mask equals one of the well-known
// synchronous pipe-like masks.
func IsPipeAccessMask(access uint32) bool {
	_, ok := pipeAccessMasks[access]
	return ok
}

// LooksLikeSyncFile determines if the access mask includes read, write and synchronize rights.
func LooksLikeSyncFile(access uint32) bool {
	const mask = sys.FileReadData | sys.FileWriteData | sys.Synchronize
	return access&mask == mask
}

// Resolver resolves the type and the name of the objects referenced by raw handles.
// Every handle is duplicated into the current process for the duration of a
// single query and released afterwards.
type Resolver struct {
	k sys.Kernel
}

// NewResolver creates a new object resolver on top of the kernel.
func NewResolver(k sys.Kernel) *Resolver {
	return &Resolver{k: k}
}

// QueryType returns the object type name of the handle.
func (r *Resolver) QueryType(h types.RawHandle) (typ string, err error) {
	defer recoverFault(&err)
	if err := r.k.Resolve(); err != nil {
		return "", err
	}
	dup, err := r.duplicate(h)
	if err != nil {
		return "", err
	}
	//nolint:errcheck
	defer dup.Close()
	typ, err = r.queryUnicode(dup.Handle(), sys.ObjectTypeInformationClass)
	if err != nil {
		typeQueryFailures.Add(1)
		log.Tracef("couldn't query type of handle [%s]: %v", h, err)
		return "", err
	}
	return typ, nil
}

// QueryName returns the object name of the handle. Handles with an empty access
// mask yield KindPermissionDenied. The name of synchronous pipe-like file handles
// is never queried and KindWouldBlock is returned instead.
func (r *Resolver) QueryName(h types.RawHandle) (name string, err error) {
	defer recoverFault(&err)
	if h.Access == 0 {
		return "", errs.New(errs.KindPermissionDenied, "NtQueryObject")
	}
	if IsPipeAccessMask(h.Access) {
		deadlockRefusals.Add(1)
		return "", errs.New(errs.KindWouldBlock, "NtQueryObject")
	}
	if err := r.k.Resolve(); err != nil {
		return "", err
	}
	dup, err := r.duplicate(h)
	if err != nil {
		return "", err
	}
	//nolint:errcheck
	defer dup.Close()
	typ, err := r.queryUnicode(dup.Handle(), sys.ObjectTypeInformationClass)
	if err != nil {
		typeQueryFailures.Add(1)
		return "", err
	}
	if typ == File && LooksLikeSyncFile(h.Access) {
		deadlockRefusals.Add(1)
		return "", errs.New(errs.KindWouldBlock, "NtQueryObject")
	}
	name, err = r.queryUnicode(dup.Handle(), sys.ObjectNameInformationClass)
	if err != nil {
		nameQueryFailures.Add(1)
		log.Tracef("couldn't query name of handle [%s]: %v", h, err)
		return "", err
	}
	return name, nil
}

const (
	idlePID   uintptr = 0
	systemPID uintptr = 4
)

// duplicate duplicates the handle in the current process with the same access rights.
// Handles owned by the idle and system pseudo-processes are never duplicated.
func (r *Resolver) duplicate(h types.RawHandle) (*sys.Scoped, error) {
	if h.PID == idlePID || h.PID == systemPID || h.Num == 0 {
		return nil, errs.New(errs.KindInvalidArgument, "DuplicateHandle")
	}
	pid, ok := h.ClampPID()
	if !ok {
		return nil, errs.New(errs.KindResultOutOfRange, "DuplicateHandle")
	}
	// handle to the process with the handle to be duplicated
	ph, err := r.k.OpenProcess(sys.ProcessDupHandle, pid)
	if err != nil {
		duplicateFailures.Add(1)
		return nil, errs.System("OpenProcess", err)
	}
	source := sys.Own(r.k, ph)
	dup, err := r.k.DuplicateHandle(source.Handle(), sys.Handle(h.Num), r.k.CurrentProcess(), 0, sys.DuplicateSameAccess)
	//nolint:errcheck
	source.Close()
	if err != nil {
		duplicateFailures.Add(1)
		return nil, errs.System("DuplicateHandle", err)
	}
	if dup == 0 {
		duplicateFailures.Add(1)
		return nil, errs.SystemCode("DuplicateHandle", sys.ErrorInvalidHandle)
	}
	return sys.Own(r.k, dup), nil
}

// queryUnicode queries the object information class whose layout starts with
// a counted UTF-16 string and returns the decoded string.
func (r *Resolver) queryUnicode(h sys.Handle, class uint32) (string, error) {
	const op = "NtQueryObject"
	var required uint32
	status := r.k.QueryObject(h, class, nil, &required)
	if status != sys.StatusSuccess && status != sys.StatusInfoLengthMismatch {
		return "", errs.Status(op, status)
	}
	size := required
	if size < minObjectBufferSize {
		size = minObjectBufferSize
	}
	buf := make([]byte, size)
	for attempt := 0; attempt < maxAttempts; attempt++ {
		required = 0
		status = r.k.QueryObject(h, class, buf, &required)
		if status == sys.StatusSuccess {
			break
		}
		if status != sys.StatusInfoLengthMismatch {
			return "", errs.Status(op, status)
		}
		next := GrowBufferSize(size, required)
		if next <= size {
			return "", errs.New(errs.KindValueTooLarge, op)
		}
		size = next
		buf = make([]byte, size)
	}
	if status != sys.StatusSuccess {
		log.Tracef("giving up on object query after %d attempts: %s", maxAttempts, ntstatus.FormatMessage(status))
		return "", errs.Status(op, status)
	}
	return decodeUnicodeString(buf)
}

// decodeUnicodeString decodes the counted string descriptor at the head of the buffer.
// The characters must reside inside the buffer.
func decodeUnicodeString(buf []byte) (string, error) {
	if uintptr(len(buf)) < sys.UnicodeStringSize {
		return "", errs.New(errs.KindResultOutOfRange, "UNICODE_STRING")
	}
	us := (*sys.UnicodeString)(unsafe.Pointer(&buf[0]))
	if us.Buffer == 0 || us.Length == 0 {
		return "", nil
	}
	base := uintptr(unsafe.Pointer(&buf[0]))
	if us.Buffer < base || us.Buffer-base+uintptr(us.Length) > uintptr(len(buf)) {
		return "", errs.New(errs.KindResultOutOfRange, "UNICODE_STRING")
	}
	off := us.Buffer - base
	return utf16.DecodeBytes(buf[off : off+uintptr(us.Length)]), nil
}

// recoverFault converts a panic raised while resolving the handle into a structured error.
func recoverFault(err *error) {
	if r := recover(); r != nil {
		*err = errs.FromPanic(r)
		log.Debugf("recovered from fault while resolving handle: %v", r)
	}
}
