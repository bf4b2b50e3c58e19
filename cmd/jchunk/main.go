// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Program jchunk parses and checks JSON input in fixed-size chunks.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/creachadair/jchunk"
	"github.com/spf13/cobra"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "jchunk"})

// Settings shared by all subcommands.
var (
	chunkSize int
	logLevel  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "jchunk",
		Short:         "Chunked JSON parsing tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := log.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("log level: %w", err)
			}
			logger.SetLevel(lvl)
			if chunkSize <= 0 {
				return fmt.Errorf("invalid chunk size %d", chunkSize)
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().IntVarP(&chunkSize, "chunk-size", "c", jchunk.DefaultChunkSize, "input chunk size in bytes")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(newParseCmd(), newCheckCmd())

	if err := rootCmd.Execute(); err != nil {
		logger.Error("command failed", "err", err)
		os.Exit(1)
	}
}

// eachInput calls f with a reader for each named input. The name "-", or
// an empty list, denotes standard input.
func eachInput(names []string, f func(name string, r io.Reader) error) error {
	if len(names) == 0 {
		names = []string{"-"}
	}
	for _, name := range names {
		if name == "-" {
			if err := f("stdin", os.Stdin); err != nil {
				return err
			}
			continue
		}
		in, err := os.Open(name)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		err = f(name, in)
		in.Close()
		if err != nil {
			return err
		}
	}
	return nil
}
