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

package console

import (
	"bufio"
	"expvar"
	"fmt"
	"io"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rabbitstack/handlenum/pkg/handle/types"
)

var (
	consoleErrors = expvar.NewInt("output.console.errors")
)

const (
	// rowFormat lays out the pid, process, handle, type and name columns.
	rowFormat    = "%-8d %-15s 0x%-8X %-24s %s\n"
	headerFormat = "%-8s %-15s %-10s %-24s %s\n"
)

// Printer renders diagnostic lines and handle rows to the output stream.
type Printer struct {
	writer *bufio.Writer
}

// New creates a printer that writes to the given stream.
func New(w io.Writer) *Printer {
	return &Printer{writer: bufio.NewWriterSize(w, 8*1024)}
}

// Linef prints a single diagnostic line.
func (p *Printer) Linef(format string, args ...interface{}) {
	p.write(fmt.Sprintf(format, args...) + "\n")
}

// Header prints the column header.
func (p *Printer) Header() {
	p.write(fmt.Sprintf(headerFormat, "PID", "Process", "Handle", "Type", "Name"))
}

// Row prints the resolved handle.
func (p *Printer) Row(r types.Row) {
	p.write(FormatRow(r))
}

// FormatRow returns the fixed-width line for the row.
func FormatRow(r types.Row) string {
	return fmt.Sprintf(rowFormat, r.PID, r.ProcessName, uint64(r.Num), r.Type, r.Name)
}

// TypeCount is the number of rows of the given handle type.
type TypeCount struct {
	Type  string
	Count int
}

// SortTypeCounts orders the counts by descending count and then by type name.
func SortTypeCounts(counts []TypeCount) {
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Type < counts[j].Type
	})
}

// Summary renders the per-type handle counts as a table.
func (p *Printer) Summary(counts []TypeCount) {
	t := table.NewWriter()
	t.SetOutputMirror(p.writer)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Type", "Handles"})
	total := 0
	for _, c := range counts {
		t.AppendRow(table.Row{c.Type, humanize.Comma(int64(c.Count))})
		total += c.Count
	}
	t.AppendFooter(table.Row{"Total", humanize.Comma(int64(total))})
	t.Render()
}

// Flush writes any buffered data to the underlying stream.
func (p *Printer) Flush() error {
	if err := p.writer.Flush(); err != nil {
		consoleErrors.Add(1)
		return err
	}
	return nil
}

func (p *Printer) write(s string) {
	if _, err := p.writer.WriteString(s); err != nil {
		consoleErrors.Add(1)
	}
}
