package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/roach88/nlsql/internal/cli"
)

func main() {
	// Load .env if present; ANTHROPIC_API_KEY usually comes from here.
	_ = godotenv.Load()

	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
