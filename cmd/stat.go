// Copyright 2026 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newStatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stat locator...",
		Short: "Print the name and length of remote files",
		Args:  cobra.MinimumNArgs(1),
		RunE: a.run(func(ctx context.Context, env *Environment, cmd *cobra.Command, args []string) error {
			infos := make([]string, len(args))
			g, ctx := errgroup.WithContext(ctx)
			g.SetLimit(int(env.Config.Transport.Workers))
			for i, locator := range args {
				g.Go(func() error {
					desc, err := describe(ctx, env, locator, resourceFlags{length: -1})
					if err != nil {
						return err
					}
					infos[i] = fmt.Sprintf("%s\t%d\t%s", desc.Name, desc.Length, desc.Locator)
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tLENGTH\tLOCATOR")
			for _, line := range infos {
				fmt.Fprintln(tw, line)
			}
			return tw.Flush()
		}),
	}
}
