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

package config

import (
	"fmt"
	"strings"
)

// SortKey designates the primary key of the row ordering.
type SortKey uint8

const (
	// SortByPID orders rows by the owning pid.
	SortByPID SortKey = iota
	// SortByType orders rows by the lowercased handle type.
	SortByType
	// SortByName orders rows by the lowercased object name.
	SortByName
)

var sortKeys = map[string]SortKey{
	"pid":  SortByPID,
	"type": SortByType,
	"name": SortByName,
}

// ParseSortKey parses the sort key from its name.
func ParseSortKey(s string) (SortKey, error) {
	key, ok := sortKeys[strings.ToLower(s)]
	if !ok {
		return SortByPID, fmt.Errorf("%q is not a valid sort key (pid|type|name)", s)
	}
	return key, nil
}

// String returns the sort key name.
func (k SortKey) String() string {
	switch k {
	case SortByType:
		return "type"
	case SortByName:
		return "name"
	default:
		return "pid"
	}
}

// Set parses the flag value.
func (k *SortKey) Set(s string) error {
	key, err := ParseSortKey(s)
	if err != nil {
		return err
	}
	*k = key
	return nil
}

// Type returns the flag value type shown in the usage.
func (k *SortKey) Type() string { return "string" }
