// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/creachadair/jchunk"
	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [file...]",
		Short: "Check the syntax of JSON inputs without building values",
		RunE: func(cmd *cobra.Command, args []string) error {
			var failed int
			err := eachInput(args, func(name string, r io.Reader) error {
				rd := jchunk.NewReader(r, chunkSize)
				s := jchunk.Skip()
				n := 0
				for {
					err := rd.Decode(s)
					if errors.Is(err, io.EOF) {
						break
					}
					var serr *jchunk.SyntaxError
					if errors.As(err, &serr) {
						failed++
						logger.Error("invalid input", "input", name, "at", serr.Location, "offset", serr.Offset, "err", serr.Message)
						return nil
					} else if err != nil {
						return fmt.Errorf("%s: %w", name, err)
					}
					n++
				}
				logger.Info("ok", "input", name, "values", n)
				return nil
			})
			if err != nil {
				return err
			} else if failed != 0 {
				return fmt.Errorf("%d invalid inputs", failed)
			}
			return nil
		},
	}
	return cmd
}
