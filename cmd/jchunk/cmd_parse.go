// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/creachadair/jchunk"
	"github.com/creachadair/jchunk/cursor"
	"github.com/creachadair/jchunk/writer"
	"github.com/spf13/cobra"
)

func newParseCmd() *cobra.Command {
	var selectPath, indent string

	cmd := &cobra.Command{
		Use:   "parse [file...]",
		Short: "Parse JSON values and print them",
		Long: `Parse each JSON value in the inputs into an untyped tree and print it.

With --select, print only the value at the given dotted path in each input
value, for example "items.0.name". Integer path elements index arrays.
Keys containing dots may be quoted as JSON strings, as in 'items."a.b"'.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := bufio.NewWriter(os.Stdout)
			defer out.Flush()

			path, err := cursor.ParsePath(selectPath)
			if err != nil {
				return fmt.Errorf("select: %w", err)
			}
			w := writer.New(indent)
			return eachInput(args, func(name string, r io.Reader) error {
				rd := jchunk.NewReader(r, chunkSize)
				s := jchunk.Generic()
				for n := 0; ; n++ {
					err := rd.Decode(s)
					if errors.Is(err, io.EOF) {
						logger.Debug("end of input", "input", name, "values", n)
						return nil
					} else if err != nil {
						return fmt.Errorf("%s: %w", name, err)
					}

					v := s.Result()
					if len(path) != 0 {
						c := cursor.New(v).Down(path...)
						if err := c.Err(); err != nil {
							logger.Warn("select failed", "input", name, "value", n, "path", cursor.FormatPath(path), "err", err)
							continue
						}
						v = c.Value()
					}

					w.Reset()
					w.Value(v)
					if err := w.Err(); err != nil {
						return fmt.Errorf("%s: value %d: %w", name, n, err)
					}
					out.Write(w.Bytes())
					out.WriteByte('\n')
				}
			})
		},
	}

	cmd.Flags().StringVarP(&selectPath, "select", "s", "", "dotted path of the value to print")
	cmd.Flags().StringVar(&indent, "indent", "", "indentation for pretty-printed output")

	return cmd
}
