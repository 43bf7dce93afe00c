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
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/rabbitstack/handlenum/pkg/config"
	errs "github.com/rabbitstack/handlenum/pkg/errors"
	"github.com/rabbitstack/handlenum/pkg/filter"
	"github.com/rabbitstack/handlenum/pkg/handle/types"
	"github.com/rabbitstack/handlenum/pkg/outputs/console"
	"github.com/rabbitstack/handlenum/pkg/ps"
	"github.com/rabbitstack/handlenum/pkg/util/spinner"
	log "github.com/sirupsen/logrus"
)

// Enumerator drives a single enumeration pass. It captures the system handle
// table, keeps the handles matching every configured filter and prints them
// according to the display mode.
type Enumerator struct {
	backend Backend
	config  *config.Config
	stdout  io.Writer
	stderr  io.Writer
}

// New creates a new enumerator. Rows and diagnostics go to stdout, warnings
// and the progress spinner to stderr.
func New(backend Backend, c *config.Config, stdout, stderr io.Writer) *Enumerator {
	return &Enumerator{
		backend: backend,
		config:  c,
		stdout:  stdout,
		stderr:  stderr,
	}
}

// Run executes the enumeration pass. Only the failure to capture the handle
// table is returned as an error. Failures concerning individual handles end
// up in the printed rows.
func (e *Enumerator) Run() error {
	if err := e.backend.EnableDebugPrivilege(); err != nil {
		log.Debugf("running without debug privilege: %v", err)
		fmt.Fprintf(e.stderr, "Warning: failed to enable SeDebugPrivilege (%v)\n", err)
	}

	handles, err := e.backend.QuerySystemHandles()
	if err != nil {
		return errors.Wrap(err, "failed to query system handles")
	}

	c := e.config
	p := console.New(e.stdout)
	//nolint:errcheck
	defer p.Flush()

	if c.Verbose {
		p.Linef("Verbose mode is ON")
	}
	if c.HasPID {
		p.Linef("Filtering by PID: %d", c.PID)
	}
	p.Linef("Retrieved %d system handles.", len(handles))

	if c.ProcessName != "" {
		log.Debugf("process name filter %q is ignored", c.ProcessName)
	}

	chain := filter.NewChain(c)
	matches := make([]*filter.Record, 0, len(handles))
	for _, h := range handles {
		rec := filter.NewRecord(h, e.backend)
		if chain.Run(rec) {
			matches = append(matches, rec)
		}
	}
	mode := c.DisplayMode()
	log.Debugf("%d out of %d handles matched %d filter(s). Display mode: %s", len(matches), len(handles), len(chain), mode)

	if mode == config.CountOnly {
		p.Linef("Matching handles: %d", len(matches))
		return nil
	}

	names := ps.NewCache(c.Cache.MaxProcesses, e.backend.ProcessName)
	names.Prefill(uniquePIDs(matches))

	var stats tally
	switch mode {
	case config.Streaming:
		p.Header()
		for _, rec := range matches {
			row := assemble(rec, names)
			p.Row(row)
			stats.add(row)
		}
	case config.Batch:
		spin := spinner.Show(e.stderr, fmt.Sprintf("Resolving %d handles", len(matches)))
		rows := make([]types.Row, 0, len(matches))
		for _, rec := range matches {
			rows = append(rows, assemble(rec, names))
		}
		spin.Stop()
		Sort(rows, c.SortKey)
		p.Header()
		for _, row := range rows {
			p.Row(row)
			stats.add(row)
		}
	}
	p.Linef("Matching handles: %d", stats.rows)
	log.Debugf("resolved %d process names with %d lookups", names.Len(), names.Misses())

	if c.Verbose {
		p.Summary(stats.summary())
		p.Linef("Anti-deadlock refusals: %d", stats.refusals)
	}

	return nil
}

// assemble resolves the row of the handle. Type and name query failures are
// rendered as N/A unless the name was withheld to avoid a hang.
func assemble(rec *filter.Record, names *ps.Cache) types.Row {
	pid, _ := rec.Raw.ClampPID()
	row := types.Row{
		PID:         pid,
		ProcessName: names.Get(pid),
		Num:         rec.Raw.Num,
		Access:      rec.Raw.Access,
		Object:      rec.Raw.Object,
		Attributes:  rec.Raw.Attributes,
	}
	typ, err := rec.Type()
	if err != nil {
		log.Tracef("couldn't resolve type of handle [%s]: %v", rec.Raw, err)
		typ = types.NotAvailable
	}
	row.Type = typ
	name, err := rec.Name()
	switch {
	case errs.IsWouldBlock(err):
		name = types.Locked
	case err != nil:
		log.Tracef("couldn't resolve name of handle [%s]: %v", rec.Raw, err)
		name = types.NotAvailable
	}
	row.Name = name
	return row
}

// uniquePIDs returns the clamped pids of the records in order of first appearance.
func uniquePIDs(recs []*filter.Record) []uint32 {
	seen := make(map[uint32]bool)
	pids := make([]uint32, 0)
	for _, rec := range recs {
		pid, _ := rec.Raw.ClampPID()
		if seen[pid] {
			continue
		}
		seen[pid] = true
		pids = append(pids, pid)
	}
	return pids
}

// tally keeps the per-type counts and the refusals of the printed rows.
type tally struct {
	rows     int
	refusals int
	types    map[string]int
}

func (t *tally) add(row types.Row) {
	if t.types == nil {
		t.types = make(map[string]int)
	}
	t.rows++
	t.types[row.Type]++
	if row.IsLocked() {
		t.refusals++
	}
}

func (t *tally) summary() []console.TypeCount {
	counts := make([]console.TypeCount, 0, len(t.types))
	for typ, n := range t.types {
		counts = append(counts, console.TypeCount{Type: typ, Count: n})
	}
	console.SortTypeCounts(counts)
	return counts
}
