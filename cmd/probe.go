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
	"errors"
	"fmt"

	"github.com/drivestream/drivestream/internal/probe"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	outputText = "text"
	outputJSON = "json"
)

func newProbeCmd(a *app) *cobra.Command {
	var rf resourceFlags
	var output string

	cmd := &cobra.Command{
		Use:   "probe [flags] locator...",
		Short: "Report the content type and ID3 tags of remote files",
		Long: `probe reads the first bytes and the last 128 bytes of every locator to
sniff its MIME type and decode ID3v2 and ID3v1 tags. Locators are probed
concurrently.`,
		Args: cobra.MinimumNArgs(1),
		PreRunE: func(_ *cobra.Command, args []string) error {
			if output != outputText && output != outputJSON {
				return fmt.Errorf("unsupported output %q: use %s or %s", output, outputText, outputJSON)
			}
			if rf.isSet() && len(args) > 1 {
				return errors.New("--resource-name and --resource-length need a single locator")
			}
			return nil
		},
		RunE: a.run(func(ctx context.Context, env *Environment, cmd *cobra.Command, args []string) error {
			results, err := probeAll(ctx, env, args, rf)
			if err != nil {
				return err
			}
			if output == outputJSON {
				return probe.WriteJSON(cmd.OutOrStdout(), results)
			}
			return probe.WriteText(cmd.OutOrStdout(), results)
		}),
	}
	rf.bind(cmd.Flags())
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "Output format: text or json.")
	return cmd
}

// probeAll probes every locator, at most Transport.Workers at a time, and
// returns the results in argument order.
func probeAll(ctx context.Context, env *Environment, locators []string, rf resourceFlags) ([]*probe.Result, error) {
	results := make([]*probe.Result, len(locators))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(int(env.Config.Transport.Workers))
	for i, locator := range locators {
		g.Go(func() error {
			s, err := openStream(ctx, env, locator, rf)
			if err != nil {
				return err
			}
			defer logStats(s)
			if results[i], err = probe.Probe(ctx, s); err != nil {
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
