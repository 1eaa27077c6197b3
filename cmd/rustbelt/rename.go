// Copyright 2024 The Rustbelt Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"github.com/spf13/cobra"

	"github.com/tenxhq/rustbelt/internal/edit"
)

func renameCmd() *cobra.Command {
	var apply bool
	cmd := &cobra.Command{
		Use:   "rename NEW_NAME",
		Short: "Compute (and optionally apply) a rename plan for the symbol at a cursor position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEngine(cmd)
			if err != nil {
				return err
			}
			coord, err := cursorFromFlags(cmd)
			if err != nil {
				return err
			}
			plan, err := e.RenameSymbol(coord, args[0])
			if err != nil {
				return err
			}
			if plan == nil {
				return printJSON(nil)
			}
			if apply {
				if err := edit.New().Apply(*plan); err != nil {
					return err
				}
			}
			return printJSON(plan)
		},
	}
	addCursorFlags(cmd)
	cmd.Flags().BoolVar(&apply, "apply", false, "write the rename plan's edits to disk instead of only printing it")
	return cmd
}
