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

func assistsCmd() *cobra.Command {
	var resolveID string
	cmd := &cobra.Command{
		Use:   "assists",
		Short: "List available code actions at a cursor position, or resolve one to its edit plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEngine(cmd)
			if err != nil {
				return err
			}
			coord, err := cursorFromFlags(cmd)
			if err != nil {
				return err
			}
			if resolveID != "" {
				change, rerr := e.ApplyAssist(coord, resolveID)
				if rerr != nil {
					return rerr
				}
				return printJSON(change)
			}
			assists, aerr := e.GetAssists(coord)
			if aerr != nil {
				return aerr
			}
			return printJSON(assists)
		},
	}
	addCursorFlags(cmd)
	cmd.Flags().StringVar(&resolveID, "resolve", "", "resolve the assist with this id into its edit plan, instead of listing available assists")
	return cmd
}
