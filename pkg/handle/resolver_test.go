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
	"math/rand"
	"strings"
	"testing"
	"unsafe"

	errs "github.com/rabbitstack/handlenum/pkg/errors"
	"github.com/rabbitstack/handlenum/pkg/handle/types"
	"github.com/rabbitstack/handlenum/pkg/sys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKernel() *sys.KernelMock {
	k := sys.NewKernelMock()
	k.Processes[1234] = `C:\Windows\System32\svchost.exe`
	k.Processes[5678] = `C:\Program Files\Mozilla Firefox\firefox.exe`
	return k
}

func assertReleased(t *testing.T, k *sys.KernelMock) {
	t.Helper()
	assert.Zero(t, k.Live())
	assert.Equal(t, k.ProcessOpens+k.TokenOpens+k.Duplicates, k.Closes)
}

func TestQueryType(t *testing.T) {
	k := newKernel()
	k.AddHandle(1234, 0x44, 0x1F0003, sys.MockObject{Type: Event, Name: `\BaseNamedObjects\ready`})
	r := NewResolver(k)

	typ, err := r.QueryType(types.RawHandle{PID: 1234, Num: 0x44, Access: 0x1F0003})
	require.NoError(t, err)
	assert.Equal(t, Event, typ)
	assert.Equal(t, 1, k.Duplicates)
	assert.Equal(t, 0, k.NameQueries)
	assertReleased(t, k)
}

func TestQueryName(t *testing.T) {
	k := newKernel()
	k.AddHandle(1234, 0x44, 0x1F0003, sys.MockObject{Type: Event, Name: `\BaseNamedObjects\ready`})
	k.AddHandle(1234, 0x48, 0x00120089, sys.MockObject{Type: File, Name: `\Device\HarddiskVolume4\Windows\Temp\log.txt`})
	k.AddHandle(5678, 0x4C, 0x000F003F, sys.MockObject{Type: Key, Name: `\REGISTRY\MACHINE\SOFTWARE\Mozilla\Firefox`})
	r := NewResolver(k)

	name, err := r.QueryName(types.RawHandle{PID: 1234, Num: 0x44, Access: 0x1F0003})
	require.NoError(t, err)
	assert.Equal(t, `\BaseNamedObjects\ready`, name)

	name, err = r.QueryName(types.RawHandle{PID: 1234, Num: 0x48, Access: 0x00120089})
	require.NoError(t, err)
	assert.Equal(t, `\Device\HarddiskVolume4\Windows\Temp\log.txt`, name)

	name, err = r.QueryName(types.RawHandle{PID: 5678, Num: 0x4C, Access: 0x000F003F})
	require.NoError(t, err)
	assert.Equal(t, `\REGISTRY\MACHINE\SOFTWARE\Mozilla\Firefox`, name)

	assert.Equal(t, 6, k.NameQueries)
	assertReleased(t, k)
}

func TestQueryNameEmptyDescriptor(t *testing.T) {
	k := newKernel()
	k.AddHandle(1234, 0x44, 0x1F0003, sys.MockObject{Type: Event, NullName: true})
	k.AddHandle(1234, 0x48, 0x1F0003, sys.MockObject{Type: Event})
	r := NewResolver(k)

	name, err := r.QueryName(types.RawHandle{PID: 1234, Num: 0x44, Access: 0x1F0003})
	require.NoError(t, err)
	assert.Empty(t, name)

	name, err = r.QueryName(types.RawHandle{PID: 1234, Num: 0x48, Access: 0x1F0003})
	require.NoError(t, err)
	assert.Empty(t, name)
	assertReleased(t, k)
}

func TestQueryNameLong(t *testing.T) {
	k := newKernel()
	long := `\Device\HarddiskVolume4\` + strings.Repeat("nested\\", 200) + "é.txt"
	k.AddHandle(1234, 0x44, 0x00120089, sys.MockObject{Type: File, Name: long})

	name, err := NewResolver(k).QueryName(types.RawHandle{PID: 1234, Num: 0x44, Access: 0x00120089})
	require.NoError(t, err)
	assert.Equal(t, long, name)
	assertReleased(t, k)
}

func TestQueryNameRefusesPipeAccessMasks(t *testing.T) {
	for _, access := range []uint32{0x0012019F, 0x001A019F, 0x00120189, 0x00100000} {
		k := newKernel()
		k.AddHandle(1234, 0x44, access, sys.MockObject{Type: File, Name: `\Device\NamedPipe\svc`})

		_, err := NewResolver(k).QueryName(types.RawHandle{PID: 1234, Num: 0x44, Access: access})
		require.ErrorIs(t, err, errs.ErrWouldBlock, "access=0x%08X", access)
		assert.True(t, errs.IsWouldBlock(err))
		assert.Zero(t, k.ObjectQueries)
		assert.Zero(t, k.ProcessOpens)
		assert.Zero(t, k.Duplicates)
	}
}

func TestQueryNameRefusesSyncFiles(t *testing.T) {
	k := newKernel()
	k.AddHandle(1234, 0x44, 0x0012019B, sys.MockObject{Type: File, Name: `\Device\Afd`})
	k.AddHandle(1234, 0x48, 0x0012019B, sys.MockObject{Type: Event, Name: `\BaseNamedObjects\ready`})
	r := NewResolver(k)

	_, err := r.QueryName(types.RawHandle{PID: 1234, Num: 0x44, Access: 0x0012019B})
	require.ErrorIs(t, err, errs.ErrWouldBlock)
	assert.Equal(t, 2, k.TypeQueries)
	assert.Zero(t, k.NameQueries)

	name, err := r.QueryName(types.RawHandle{PID: 1234, Num: 0x48, Access: 0x0012019B})
	require.NoError(t, err)
	assert.Equal(t, `\BaseNamedObjects\ready`, name)
	assertReleased(t, k)
}

func TestQueryNameZeroAccess(t *testing.T) {
	k := newKernel()
	k.AddHandle(1234, 0x44, 0, sys.MockObject{Type: Event, Name: `\BaseNamedObjects\ready`})

	_, err := NewResolver(k).QueryName(types.RawHandle{PID: 1234, Num: 0x44})
	require.ErrorIs(t, err, errs.ErrPermissionDenied)
	assert.Zero(t, k.ObjectQueries)
	assert.Zero(t, k.Duplicates)
}

func TestDuplicateDegenerateInputs(t *testing.T) {
	k := newKernel()
	r := NewResolver(k)

	_, err := r.QueryType(types.RawHandle{PID: 0, Num: 0x44, Access: 0x1F0003})
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
	_, err = r.QueryName(types.RawHandle{PID: 1234, Num: 0, Access: 0x1F0003})
	require.ErrorIs(t, err, errs.ErrInvalidArgument)

	if ^uintptr(0) > math.MaxUint32 {
		wide := uint64(math.MaxUint32) + 1
		_, err = r.QueryType(types.RawHandle{PID: uintptr(wide), Num: 0x44, Access: 0x1F0003})
		require.ErrorIs(t, err, errs.ErrResultOutOfRange)
	}
	assert.Zero(t, k.ProcessOpens)
}

func TestSystemHandlesAreNeverDuplicated(t *testing.T) {
	k := newKernel()
	k.Processes[4] = "System"
	k.AddHandle(4, 0x10, 0x1F0003, sys.MockObject{Type: Event, Name: `\KernelObjects\LowMemoryCondition`})
	r := NewResolver(k)

	h := types.RawHandle{PID: 4, Num: 0x10, Access: 0x1F0003}
	_, err := r.QueryType(h)
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
	_, err = r.QueryName(h)
	require.ErrorIs(t, err, errs.ErrInvalidArgument)

	assert.Zero(t, k.ProcessOpens)
	assert.Zero(t, k.Duplicates)
	assert.Zero(t, k.ObjectQueries)
}

func TestDuplicateFailures(t *testing.T) {
	k := newKernel()
	k.Protected[4321] = true
	r := NewResolver(k)

	_, err := r.QueryType(types.RawHandle{PID: 9999, Num: 0x44, Access: 0x1F0003})
	require.ErrorIs(t, err, &errs.Error{Kind: errs.KindSystemError, Code: sys.ErrorInvalidParameter})

	_, err = r.QueryType(types.RawHandle{PID: 4321, Num: 0x44, Access: 0x1F0003})
	require.ErrorIs(t, err, &errs.Error{Kind: errs.KindSystemError, Code: sys.ErrorAccessDenied})

	// the owning process opens but the handle is gone
	_, err = r.QueryName(types.RawHandle{PID: 1234, Num: 0x88, Access: 0x1F0003})
	require.ErrorIs(t, err, &errs.Error{Kind: errs.KindSystemError, Code: sys.ErrorInvalidHandle})
	assert.Equal(t, 1, k.ProcessOpens)
	assertReleased(t, k)
}

func TestQueryFailureStatus(t *testing.T) {
	k := newKernel()
	k.AddHandle(1234, 0x44, 0x1F0003, sys.MockObject{Type: Event, NameStatus: sys.StatusAccessDenied})
	k.AddHandle(1234, 0x48, 0x1F0003, sys.MockObject{TypeStatus: sys.StatusInvalidHandle})
	r := NewResolver(k)

	_, err := r.QueryName(types.RawHandle{PID: 1234, Num: 0x44, Access: 0x1F0003})
	require.ErrorIs(t, err, errs.ErrIO)

	_, err = r.QueryType(types.RawHandle{PID: 1234, Num: 0x48, Access: 0x1F0003})
	require.ErrorIs(t, err, errs.ErrIO)

	queries := k.NameQueries
	_, err = r.QueryName(types.RawHandle{PID: 1234, Num: 0x48, Access: 0x1F0003})
	require.ErrorIs(t, err, errs.ErrIO)
	assert.Equal(t, queries, k.NameQueries)
	assertReleased(t, k)
}

func TestQueryObjectGrowth(t *testing.T) {
	k := newKernel()
	k.AddHandle(1234, 0x44, 0x1F0003, sys.MockObject{Type: Event})
	var sizes []int
	k.ObjectQueryFn = func(class uint32, buf []byte, retLen *uint32) uint32 {
		sizes = append(sizes, len(buf))
		if len(buf) < 2000 {
			// the probe reports nothing useful
			return sys.StatusInfoLengthMismatch
		}
		return sys.StatusSuccess
	}

	typ, err := NewResolver(k).QueryType(types.RawHandle{PID: 1234, Num: 0x44, Access: 0x1F0003})
	require.NoError(t, err)
	assert.Empty(t, typ)
	assert.Equal(t, []int{0, 512, 1024, 2048}, sizes)
	assertReleased(t, k)
}

func TestQueryObjectGivesUp(t *testing.T) {
	k := newKernel()
	k.AddHandle(1234, 0x44, 0x1F0003, sys.MockObject{Type: Event})
	k.ObjectQueryFn = func(class uint32, buf []byte, retLen *uint32) uint32 {
		return sys.StatusInfoLengthMismatch
	}

	_, err := NewResolver(k).QueryType(types.RawHandle{PID: 1234, Num: 0x44, Access: 0x1F0003})
	require.ErrorIs(t, err, errs.ErrIO)
	assert.Equal(t, 1+maxAttempts, k.ObjectQueries)
	assertReleased(t, k)
}

func TestQueryRecoversFromFaults(t *testing.T) {
	k := newKernel()
	k.AddHandle(1234, 0x44, 0x1F0003, sys.MockObject{Type: Event})
	k.ObjectQueryFn = func(class uint32, buf []byte, retLen *uint32) uint32 {
		var entries []uint32
		return entries[len(buf)+1]
	}

	_, err := NewResolver(k).QueryType(types.RawHandle{PID: 1234, Num: 0x44, Access: 0x1F0003})
	require.ErrorIs(t, err, errs.ErrIO)
	assertReleased(t, k)
}

func TestDecodeUnicodeStringBounds(t *testing.T) {
	buf := make([]byte, 64)
	base := uintptr(unsafe.Pointer(&buf[0]))
	*(*sys.UnicodeString)(unsafe.Pointer(&buf[0])) = sys.UnicodeString{Length: 8, MaximumLength: 10, Buffer: base + 60}
	_, err := decodeUnicodeString(buf)
	require.ErrorIs(t, err, errs.ErrResultOutOfRange)

	copy(buf[sys.UnicodeStringSize:], []byte{'K', 0, 'e', 0, 'y', 0})
	*(*sys.UnicodeString)(unsafe.Pointer(&buf[0])) = sys.UnicodeString{Length: 6, MaximumLength: 8, Buffer: base + sys.UnicodeStringSize}
	s, err := decodeUnicodeString(buf)
	require.NoError(t, err)
	assert.Equal(t, Key, s)

	_, err = decodeUnicodeString(buf[:2])
	require.ErrorIs(t, err, errs.ErrResultOutOfRange)
}

func TestResolverReleasesResources(t *testing.T) {
	k := newKernel()
	k.Protected[4321] = true
	r := rand.New(rand.NewSource(7))
	pids := []uint32{0, 4, 1234, 4321, 5678, 9999}
	accesses := []uint32{0, 0x1F0003, 0x0012019F, 0x0012019B, 0x00120089, 0x00100000}
	objs := []sys.MockObject{
		{Type: File, Name: `\Device\NamedPipe\svc`},
		{Type: Event, Name: `\BaseNamedObjects\ready`},
		{Type: Key, NameStatus: sys.StatusAccessDenied},
		{TypeStatus: sys.StatusInvalidHandle},
		{Type: Section, NullName: true},
	}
	var raw []types.RawHandle
	for i := 0; i < 200; i++ {
		pid := pids[r.Intn(len(pids))]
		access := accesses[r.Intn(len(accesses))]
		num := uintptr(4 * (i + 1))
		if r.Intn(10) > 0 {
			k.AddHandle(pid, num, access, objs[r.Intn(len(objs))])
		}
		raw = append(raw, types.RawHandle{PID: uintptr(pid), Num: num, Access: access})
	}

	res := NewResolver(k)
	var pseudo int
	for _, h := range raw {
		if h.PID == 0 || h.PID == 4 {
			pseudo++
		}
		_, _ = res.QueryType(h)
		_, _ = res.QueryName(h)
	}
	assert.NotZero(t, pseudo)
	assert.NotZero(t, k.Duplicates)
	assertReleased(t, k)
}
