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

package enum

import (
	"github.com/rabbitstack/handlenum/pkg/filter"
	"github.com/rabbitstack/handlenum/pkg/handle"
	"github.com/rabbitstack/handlenum/pkg/handle/types"
	"github.com/rabbitstack/handlenum/pkg/ps"
	"github.com/rabbitstack/handlenum/pkg/sys"
)

// Backend provides the native operations the enumeration is built upon.
type Backend interface {
	filter.ObjectResolver
	// EnableDebugPrivilege enables the debug privilege in the current process token.
	EnableDebugPrivilege() error
	// QuerySystemHandles captures the system-wide handle table.
	QuerySystemHandles() ([]types.RawHandle, error)
	// ProcessName returns the executable name of the process. It never fails.
	ProcessName(pid uint32) string
}

type backend struct {
	k         sys.Kernel
	collector *handle.Collector
	resolver  *handle.Resolver
	names     *ps.NameResolver
}

// NewBackend creates the backend that talks to the kernel.
func NewBackend(k sys.Kernel) Backend {
	return &backend{
		k:         k,
		collector: handle.NewCollector(k),
		resolver:  handle.NewResolver(k),
		names:     ps.NewNameResolver(k),
	}
}

func (b *backend) EnableDebugPrivilege() error { return sys.EnableDebugPrivilege(b.k) }

func (b *backend) QuerySystemHandles() ([]types.RawHandle, error) { return b.collector.Collect() }

func (b *backend) QueryObjectType(h types.RawHandle) (string, error) { return b.resolver.QueryType(h) }

func (b *backend) QueryObjectName(h types.RawHandle) (string, error) { return b.resolver.QueryName(h) }

func (b *backend) ProcessName(pid uint32) string { return b.names.Name(pid) }
