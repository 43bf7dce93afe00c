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

package ps

import (
	"github.com/golang/groupcache/lru"
)

// DefaultCacheSize is the default bound of the process name cache.
const DefaultCacheSize = 4096

// NameFunc resolves the process identifier to the process name.
type NameFunc func(pid uint32) string

// Cache memoizes process names for the duration of a single enumeration pass.
// Least recently used names are evicted once the cache reaches its bound and
// resolved again on the next lookup.
type Cache struct {
	names  *lru.Cache
	lookup NameFunc
	misses int
}

// NewCache creates a new process name cache. A non-positive size means the cache is unbounded.
func NewCache(size int, lookup NameFunc) *Cache {
	if size < 0 {
		size = 0
	}
	return &Cache{names: lru.New(size), lookup: lookup}
}

// Prefill resolves the names of the given processes ahead of time. Duplicate
// pids are resolved once.
func (c *Cache) Prefill(pids []uint32) {
	for _, pid := range pids {
		if _, ok := c.names.Get(pid); ok {
			continue
		}
		c.add(pid)
	}
}

// Get returns the name of the process, resolving it on cache miss.
func (c *Cache) Get(pid uint32) string {
	if name, ok := c.names.Get(pid); ok {
		return name.(string)
	}
	return c.add(pid)
}

// Len returns the number of cached names.
func (c *Cache) Len() int { return c.names.Len() }

// Misses returns the number of lookups that needed to resolve the name.
func (c *Cache) Misses() int { return c.misses }

func (c *Cache) add(pid uint32) string {
	c.misses++
	name := c.lookup(pid)
	c.names.Add(pid, name)
	return name
}
