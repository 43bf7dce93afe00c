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

package filter

import (
	"github.com/rabbitstack/handlenum/pkg/handle/types"
)

// ObjectResolver resolves the object type and the object name of raw handles.
type ObjectResolver interface {
	// QueryObjectType returns the object type name of the handle.
	QueryObjectType(h types.RawHandle) (string, error)
	// QueryObjectName returns the object name of the handle.
	QueryObjectName(h types.RawHandle) (string, error)
}

// Record is the raw handle under evaluation. The object type and the object
// name are resolved on first access and memoized, so filters and row
// assembly never query the same handle twice.
type Record struct {
	Raw types.RawHandle

	r ObjectResolver

	typ      string
	typErr   error
	typDone  bool
	name     string
	nameErr  error
	nameDone bool
}

// NewRecord creates a new record for the raw handle.
func NewRecord(raw types.RawHandle, r ObjectResolver) *Record {
	return &Record{Raw: raw, r: r}
}

// Type returns the object type of the handle.
func (r *Record) Type() (string, error) {
	if !r.typDone {
		r.typ, r.typErr = r.r.QueryObjectType(r.Raw)
		r.typDone = true
	}
	return r.typ, r.typErr
}

// Name returns the object name of the handle.
func (r *Record) Name() (string, error) {
	if !r.nameDone {
		r.name, r.nameErr = r.r.QueryObjectName(r.Raw)
		r.nameDone = true
	}
	return r.name, r.nameErr
}
