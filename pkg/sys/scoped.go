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

// Scoped owns a native handle. Close releases the handle exactly once and
// is safe to defer on every exit path.
type Scoped struct {
	k Kernel
	h Handle
}

// Own wraps the handle so it is released through the kernel that produced it.
func Own(k Kernel, h Handle) *Scoped { return &Scoped{k: k, h: h} }

// Handle returns the owned handle value.
func (s *Scoped) Handle() Handle { return s.h }

// Close releases the handle. Subsequent calls are no-ops.
func (s *Scoped) Close() error {
	if s == nil || s.h == 0 {
		return nil
	}
	h := s.h
	s.h = 0
	return s.k.CloseHandle(h)
}
