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

package filter

import (
	"expvar"
	"fmt"

	"github.com/rabbitstack/handlenum/pkg/config"
	"github.com/rabbitstack/handlenum/pkg/util/fold"
)

var (
	filterMatches    = expvar.NewMap("filter.chain.matches")
	filterRejections = expvar.NewMap("filter.chain.rejections")
)

// Kind is the filter discriminator.
type Kind uint8

const (
	// PID matches handles owned by the given process.
	PID Kind = iota + 1
	// Type matches handles whose object type equals the value case-insensitively.
	Type
	// Object matches handles whose object name contains the value case-insensitively.
	Object
)

// String returns the filter kind name.
func (k Kind) String() string {
	switch k {
	case PID:
		return "pid"
	case Type:
		return "type"
	case Object:
		return "object"
	default:
		return "unknown"
	}
}

// Filter is a single predicate over handle records.
type Filter struct {
	Kind  Kind
	PID   uint32
	Value string
}

// ByPID creates the owning process filter.
func ByPID(pid uint32) Filter { return Filter{Kind: PID, PID: pid} }

// ByType creates the object type filter.
func ByType(typ string) Filter { return Filter{Kind: Type, Value: typ} }

// ByObject creates the object name filter.
func ByObject(name string) Filter { return Filter{Kind: Object, Value: name} }

// Match evaluates the filter against the record. Records whose type or name
// can't be resolved don't match the filters depending on them.
func (f Filter) Match(rec *Record) bool {
	switch f.Kind {
	case PID:
		pid, ok := rec.Raw.ClampPID()
		return ok && pid == f.PID
	case Type:
		typ, err := rec.Type()
		return err == nil && fold.Equal(typ, f.Value)
	case Object:
		name, err := rec.Name()
		return err == nil && fold.Contains(name, f.Value)
	default:
		return false
	}
}

// String returns the filter representation.
func (f Filter) String() string {
	if f.Kind == PID {
		return fmt.Sprintf("pid = %d", f.PID)
	}
	return fmt.Sprintf("%s ~ %q", f.Kind, f.Value)
}

// Chain is the conjunction of filters. The filters are evaluated in order and
// the evaluation stops at the first filter that doesn't match.
type Chain []Filter

// NewChain builds the filter chain from the config. The pid filter goes first
// as it doesn't need to query the handle.
func NewChain(c *config.Config) Chain {
	var chain Chain
	if c.HasPID {
		chain = append(chain, ByPID(c.PID))
	}
	if c.Type != "" {
		chain = append(chain, ByType(c.Type))
	}
	if c.Object != "" {
		chain = append(chain, ByObject(c.Object))
	}
	return chain
}

// Run determines if the record satisfies every filter in the chain. The empty
// chain matches all records.
func (c Chain) Run(rec *Record) bool {
	for _, f := range c {
		if !f.Match(rec) {
			filterRejections.Add(f.Kind.String(), 1)
			return false
		}
		filterMatches.Add(f.Kind.String(), 1)
	}
	return true
}

// IsEmpty determines if the chain has no filters.
func (c Chain) IsEmpty() bool { return len(c) == 0 }
