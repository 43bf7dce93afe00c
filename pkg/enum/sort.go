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
	"sort"

	"github.com/rabbitstack/handlenum/pkg/config"
	"github.com/rabbitstack/handlenum/pkg/handle/types"
	"github.com/rabbitstack/handlenum/pkg/util/fold"
)

// Sort orders the rows by the sort key. Rows equal on the primary key are
// ordered by pid and then by handle value, so the order is total.
func Sort(rows []types.Row, key config.SortKey) {
	if key == config.SortByPID {
		sort.Slice(rows, func(i, j int) bool { return byPID(rows[i], rows[j]) })
		return
	}
	keys := make([]string, len(rows))
	for i, row := range rows {
		if key == config.SortByType {
			keys[i] = fold.Lower(row.Type)
		} else {
			keys[i] = fold.Lower(row.Name)
		}
	}
	sort.Sort(&keyed{rows: rows, keys: keys})
}

func byPID(a, b types.Row) bool {
	if a.PID != b.PID {
		return a.PID < b.PID
	}
	return a.Num < b.Num
}

// keyed sorts the rows along with their precomputed lowercased keys.
type keyed struct {
	rows []types.Row
	keys []string
}

func (k *keyed) Len() int { return len(k.rows) }

func (k *keyed) Less(i, j int) bool {
	if k.keys[i] != k.keys[j] {
		return k.keys[i] < k.keys[j]
	}
	return byPID(k.rows[i], k.rows[j])
}

func (k *keyed) Swap(i, j int) {
	k.rows[i], k.rows[j] = k.rows[j], k.rows[i]
	k.keys[i], k.keys[j] = k.keys[j], k.keys[i]
}
