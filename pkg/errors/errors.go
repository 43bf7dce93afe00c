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

package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"syscall"
)

// Kind classifies the failures produced along the handle enumeration pipeline.
type Kind uint8

const (
	// KindUnknown is the zero kind.
	KindUnknown Kind = iota
	// KindUnsupportedPlatform signals that a required OS symbol is missing.
	KindUnsupportedPlatform
	// KindSystemError carries the last-error code reported by an OS call.
	KindSystemError
	// KindIoError is a non-success status returned by a kernel query.
	KindIoError
	// KindValueTooLarge means buffer growth would overflow the size limit.
	KindValueTooLarge
	// KindResultOutOfRange means the kernel payload is inconsistent with the buffer.
	KindResultOutOfRange
	// KindInvalidArgument is returned for zero pids or zero handles given to duplication.
	KindInvalidArgument
	// KindPermissionDenied is returned for handles with an empty access mask.
	KindPermissionDenied
	// KindWouldBlock is the anti-deadlock refusal to name a handle.
	KindWouldBlock
	// KindOutOfMemory is an allocation failure during resolution.
	KindOutOfMemory
)

// String returns the human-readable kind description.
func (k Kind) String() string {
	switch k {
	case KindUnsupportedPlatform:
		return "operation not supported on this platform"
	case KindSystemError:
		return "system error"
	case KindIoError:
		return "input/output error"
	case KindValueTooLarge:
		return "value too large for defined data type"
	case KindResultOutOfRange:
		return "result out of range"
	case KindInvalidArgument:
		return "invalid argument"
	case KindPermissionDenied:
		return "permission denied"
	case KindWouldBlock:
		return "operation would block"
	case KindOutOfMemory:
		return "not enough memory"
	default:
		return "unknown error"
	}
}

// Error is the structured error value returned by the kernel-facing packages.
type Error struct {
	// Kind is the error classification.
	Kind Kind
	// Op is the name of the failed operation (e.g. NtQueryObject).
	Op string
	// Code is the OS last-error code for KindSystemError.
	Code uint32
	// Status is the NTSTATUS value for KindIoError.
	Status uint32
	// Err is the underlying cause, if any.
	Err error
}

// Error returns the error message.
func (e *Error) Error() string {
	var sb strings.Builder
	if e.Op != "" {
		sb.WriteString(e.Op)
		sb.WriteString(": ")
	}
	switch {
	case e.Kind == KindSystemError && e.Err != nil:
		sb.WriteString(e.Err.Error())
	case e.Kind == KindSystemError:
		sb.WriteString(fmt.Sprintf("system error %d", e.Code))
	default:
		sb.WriteString(e.Kind.String())
	}
	if e.Kind == KindIoError && e.Status != 0 {
		sb.WriteString(fmt.Sprintf(" (status 0x%08X)", e.Status))
	}
	return sb.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether the target error has the same kind. A target with a
// non-zero code additionally requires the codes to match.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Code == 0 || t.Code == e.Code
}

var (
	// ErrUnsupportedPlatform is the sentinel for KindUnsupportedPlatform.
	ErrUnsupportedPlatform = &Error{Kind: KindUnsupportedPlatform}
	// ErrSystem is the sentinel for KindSystemError.
	ErrSystem = &Error{Kind: KindSystemError}
	// ErrIO is the sentinel for KindIoError.
	ErrIO = &Error{Kind: KindIoError}
	// ErrValueTooLarge is the sentinel for KindValueTooLarge.
	ErrValueTooLarge = &Error{Kind: KindValueTooLarge}
	// ErrResultOutOfRange is the sentinel for KindResultOutOfRange.
	ErrResultOutOfRange = &Error{Kind: KindResultOutOfRange}
	// ErrInvalidArgument is the sentinel for KindInvalidArgument.
	ErrInvalidArgument = &Error{Kind: KindInvalidArgument}
	// ErrPermissionDenied is the sentinel for KindPermissionDenied.
	ErrPermissionDenied = &Error{Kind: KindPermissionDenied}
	// ErrWouldBlock is the sentinel for KindWouldBlock.
	ErrWouldBlock = &Error{Kind: KindWouldBlock}
	// ErrOutOfMemory is the sentinel for KindOutOfMemory.
	ErrOutOfMemory = &Error{Kind: KindOutOfMemory}
)

// New creates an error of the given kind for the operation.
func New(kind Kind, op string) error {
	return &Error{Kind: kind, Op: op}
}

// System wraps the error returned by an OS call. The last-error code is
// extracted when the cause is an errno value.
func System(op string, err error) error {
	e := &Error{Kind: KindSystemError, Op: op, Err: err}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		e.Code = uint32(errno)
	}
	return e
}

// SystemCode builds a system error from the raw last-error code.
func SystemCode(op string, code uint32) error {
	return &Error{Kind: KindSystemError, Op: op, Code: code, Err: syscall.Errno(code)}
}

// Status creates an I/O error out of the non-success NTSTATUS value.
func Status(op string, status uint32) error {
	return &Error{Kind: KindIoError, Op: op, Status: status}
}

// KindOf returns the kind of the first structured error in the chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsWouldBlock determines if the error is the anti-deadlock refusal.
func IsWouldBlock(err error) bool { return KindOf(err) == KindWouldBlock }

// FromPanic translates a recovered panic value into a structured error. Allocation
// failures become KindOutOfMemory, anything else is reported as KindIoError.
func FromPanic(r any) error {
	if r == nil {
		return nil
	}
	if rerr, ok := r.(runtime.Error); ok {
		msg := rerr.Error()
		if strings.Contains(msg, "makeslice") || strings.Contains(msg, "out of memory") {
			return &Error{Kind: KindOutOfMemory, Err: rerr}
		}
		return &Error{Kind: KindIoError, Err: rerr}
	}
	if err, ok := r.(error); ok {
		return &Error{Kind: KindIoError, Err: err}
	}
	return &Error{Kind: KindIoError, Err: fmt.Errorf("%v", r)}
}
