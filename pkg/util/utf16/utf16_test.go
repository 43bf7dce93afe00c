/*
 * Copyright 2021-2022 by Nedim Sabic Sabic
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

package utf16

import (
	"math/rand"
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	for i := 0; i < 20; i++ {
		buf := genbuf(1 << i)
		require.Equal(t, string(utf16.Decode(buf)), Decode(buf), "mismatch on 1<<%d", i)
	}
	require.Equal(t, "\\Device\\NamedPipe\\café", Decode(utf16.Encode([]rune("\\Device\\NamedPipe\\café"))))
	require.Equal(t, "\ufffd", Decode([]uint16{0xdc00}))
}

func TestDecodeBytes(t *testing.T) {
	require.Equal(t, "", DecodeBytes(nil))
	require.Equal(t, "", DecodeBytes([]byte{'E'}))
	require.Equal(t, "Event", DecodeBytes([]byte{'E', 0, 'v', 0, 'e', 0, 'n', 0, 't', 0}))
	require.Equal(t, "Ev", DecodeBytes([]byte{'E', 0, 'v', 0, 'e'}))
	require.Equal(t, "😀", DecodeBytes([]byte{0x3d, 0xd8, 0x00, 0xde}))
}

func TestDecodeNul(t *testing.T) {
	require.Equal(t, `C:\Windows\explorer.exe`, DecodeNul(append(utf16.Encode([]rune(`C:\Windows\explorer.exe`)), 0, 'x')))
	require.Equal(t, "svchost.exe", DecodeNul(utf16.Encode([]rune("svchost.exe"))))
}

func BenchmarkDecode(b *testing.B) {
	b.ReportAllocs()
	b.StopTimer()
	buf := genbuf(b.N)
	b.StartTimer()
	_ = Decode(buf)
}

func genbuf(n int) []uint16 {
	r := rand.New(rand.NewSource(int64(n)))
	buf := make([]rune, n)
	for i := 0; i < n; i++ {
		// simulate mostly-ASCII
		if r.Intn(100) == 0 {
			buf[i] = rune(r.Intn(0xd7ff))
		} else {
			buf[i] = rune(r.Intn(1 << 7))
		}
	}
	return utf16.Encode(buf)
}
