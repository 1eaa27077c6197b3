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

import "github.com/spf13/cobra"

func completionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completions",
		Short: "List completion suggestions at a cursor position",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEngine(cmd)
			if err != nil {
				return err
			}
			coord, err := cursorFromFlags(cmd)
			if err != nil {
				return err
			}
			items, err := e.GetCompletions(coord)
			if err != nil {
				return err
			}
			return printJSON(items)
		},
	}
	addCursorFlags(cmd)
	return cmd
}
