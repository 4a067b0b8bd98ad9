package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	envDB     = "CALLGRAPH_DB"
	envFormat = "CALLGRAPH_FORMAT"
)

// loadEnv reads a .env file from the working directory if one exists and
// fills flags the user did not set from the environment.
func loadEnv(cmd *cobra.Command) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	flags := cmd.Flags()
	if v := os.Getenv(envDB); v != "" && !flags.Changed("db") {
		flagDB = v
	}
	if v := os.Getenv(envFormat); v != "" && !flags.Changed("format") {
		flagFormat = v
	}
	return nil
}
