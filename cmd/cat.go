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
	"io"

	"github.com/drivestream/drivestream/internal/stream"
	"github.com/drivestream/drivestream/internal/util"
	"github.com/spf13/cobra"
)

const defaultBlockSize = util.MiB

func newCatCmd(a *app) *cobra.Command {
	var rf resourceFlags
	var offset, length, blockSize int64

	cmd := &cobra.Command{
		Use:   "cat [flags] locator",
		Short: "Write a byte range of a remote file to stdout",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(*cobra.Command, []string) error {
			if offset < 0 {
				return fmt.Errorf("--offset must be non-negative, got %d", offset)
			}
			if blockSize <= 0 {
				return fmt.Errorf("--block-size must be positive, got %d", blockSize)
			}
			return nil
		},
		RunE: a.run(func(ctx context.Context, env *Environment, cmd *cobra.Command, args []string) error {
			s, err := openStream(ctx, env, args[0], rf)
			if err != nil {
				return err
			}
			defer logStats(s)
			return copyRange(ctx, cmd.OutOrStdout(), s, offset, length, blockSize)
		}),
	}
	rf.bind(cmd.Flags())
	cmd.Flags().Int64Var(&offset, "offset", 0, "Offset of the first byte to write.")
	cmd.Flags().Int64Var(&length, "length", -1, "Number of bytes to write. Negative means up to the end.")
	cmd.Flags().Int64Var(&blockSize, "block-size", defaultBlockSize, "Bytes requested per read.")
	return cmd
}

// copyRange writes length bytes of s starting at offset to w, block by block.
// It fails when the stream returns fewer bytes than the range holds.
func copyRange(ctx context.Context, w io.Writer, s *stream.Stream, offset, length, blockSize int64) error {
	if offset > s.Length() {
		return fmt.Errorf("offset %d is past the end of %s (%d bytes)", offset, s.Name(), s.Length())
	}
	remaining := s.Length() - offset
	if length >= 0 && length < remaining {
		remaining = length
	}

	rs := stream.NewReadSeeker(ctx, s)
	if _, err := rs.Seek(offset, io.SeekStart); err != nil {
		return err
	}

	buf := make([]byte, min(blockSize, max(remaining, 1)))
	for remaining > 0 {
		n, err := rs.Read(buf[:min(remaining, int64(len(buf)))])
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return werr
			}
			remaining -= int64(n)
		}
		if errors.Is(err, io.EOF) && remaining > 0 {
			return fmt.Errorf("read %s at offset %d: %w", s.Name(), s.Tell(), io.ErrUnexpectedEOF)
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
	}
	return nil
}
