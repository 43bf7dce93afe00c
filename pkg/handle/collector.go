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
	"math"
	"unsafe"

	"github.com/dustin/go-humanize"
	errs "github.com/rabbitstack/handlenum/pkg/errors"
	"github.com/rabbitstack/handlenum/pkg/handle/types"
	"github.com/rabbitstack/handlenum/pkg/sys"
	"github.com/rabbitstack/handlenum/pkg/util/ntstatus"
	log "github.com/sirupsen/logrus"
)

const (
	// initialBufferSize is the size of the first buffer handed to the system handle query.
	initialBufferSize uint32 = 1 << 20
	// maxAttempts bounds the number of queries issued while growing the buffer.
	maxAttempts = 10
	// maxBufferSize is the largest buffer length expressible to the query APIs.
	maxBufferSize uint64 = math.MaxUint32
)

// GrowBufferSize returns the size of the next buffer given the current size and
// the size the kernel reported as required. The buffer at least doubles, and when
// the kernel asks for more than that, a quarter of the required size is added
// as margin for handles created in the meantime. The result is clamped to the
// maximum buffer length, so callers must treat a result not greater than the
// current size as an overflow.
func GrowBufferSize(current, required uint32) uint32 {
	next := uint64(current) * 2
	if uint64(required) > next {
		next = uint64(required) + uint64(required)/4
	}
	if next > maxBufferSize {
		next = maxBufferSize
	}
	return uint32(next)
}

// HasCompletePayload determines whether the buffer of the given size can hold
// the header of the handle table and as many entries as the kernel reported.
func HasCompletePayload(size, count uintptr) bool {
	header := sys.SystemHandleInformationExHeaderSize
	if size < header {
		return false
	}
	return (size-header)/sys.SystemHandleTableEntryInfoExSize >= count
}

// Collector retrieves the system-wide handle table.
type Collector struct {
	k sys.Kernel
}

// NewCollector creates a new handle collector on top of the kernel.
func NewCollector(k sys.Kernel) *Collector {
	return &Collector{k: k}
}

// Collect queries the extended handle information and returns a freshly
// allocated slice of raw handles.
func (c *Collector) Collect() ([]types.RawHandle, error) {
	const op = "NtQuerySystemInformation"
	if err := c.k.Resolve(); err != nil {
		return nil, err
	}
	var (
		size   = initialBufferSize
		buf    = make([]byte, size)
		status uint32
	)
	for attempt := 0; attempt < maxAttempts; attempt++ {
		var required uint32
		status = c.k.QuerySystemInformation(sys.SystemExtendedHandleInformation, buf, &required)
		if status == sys.StatusSuccess {
			break
		}
		if status != sys.StatusInfoLengthMismatch {
			return nil, errs.Status(op, status)
		}
		next := GrowBufferSize(size, required)
		if next <= size {
			return nil, errs.New(errs.KindValueTooLarge, op)
		}
		log.Debugf("handle table requires %s, growing buffer from %s to %s",
			humanize.IBytes(uint64(required)), humanize.IBytes(uint64(size)), humanize.IBytes(uint64(next)))
		size = next
		buf = make([]byte, size)
	}
	if status != sys.StatusSuccess {
		log.Debugf("giving up on handle table query after %d attempts: %s", maxAttempts, ntstatus.FormatMessage(status))
		return nil, errs.Status(op, status)
	}
	return parseHandleTable(buf)
}

func parseHandleTable(buf []byte) ([]types.RawHandle, error) {
	if uintptr(len(buf)) < sys.SystemHandleInformationExHeaderSize {
		return nil, errs.New(errs.KindResultOutOfRange, "SystemExtendedHandleInformation")
	}
	info := (*sys.SystemHandleInformationEx)(unsafe.Pointer(&buf[0]))
	count := info.NumberOfHandles
	if !HasCompletePayload(uintptr(len(buf)), count) {
		return nil, errs.New(errs.KindResultOutOfRange, "SystemExtendedHandleInformation")
	}
	entries := info.Entries(int(count))
	handles := make([]types.RawHandle, len(entries))
	for i, e := range entries {
		handles[i] = types.RawHandle{
			Object:     e.Object,
			PID:        e.UniqueProcessID,
			Num:        e.HandleValue,
			Access:     e.GrantedAccess,
			TypeIndex:  e.ObjectTypeIndex,
			Attributes: e.HandleAttributes,
		}
	}
	return handles, nil
}
