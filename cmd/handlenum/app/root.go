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

package app

import (
	"fmt"
	"io"

	"github.com/rabbitstack/handlenum/internal/bootstrap"
	"github.com/rabbitstack/handlenum/pkg/config"
	"github.com/rabbitstack/handlenum/pkg/enum"
	"github.com/rabbitstack/handlenum/pkg/util/version"
	"github.com/spf13/cobra"
)

const usage = "HandleEnum.exe [OPTIONS]"

// Run parses the command line arguments and runs a single enumeration pass
// against the backend. It returns the process exit code.
func Run(args []string, stdout, stderr io.Writer, backend enum.Backend) int {
	version.Set(ver)
	cmd := newRootCmd(stdout, stderr, backend)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer, backend enum.Backend) *cobra.Command {
	cfg := config.New()
	var showVersion bool

	cmd := &cobra.Command{
		Use:   usage,
		Short: "Enumerate the open handles of all processes",
		Long: usage + `

Lists the handles held open by the processes running on the system along
with the type and the name of the objects they reference. The names of
handles that could block the query, such as synchronous pipes, are reported
as locked instead of being queried.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				return renderVersion(stdout)
			}
			if err := bootstrap.InitConfigAndLogger(cfg, stderr); err != nil {
				return err
			}
			return enum.New(backend, cfg, stdout, stderr).Run()
		},
	}
	cmd.SetOutput(stdout)
	cfg.MustViperize(cmd)
	cmd.Flags().BoolVar(&showVersion, "version", false, "Show version info")

	return cmd
}
