package main

import (
	"fmt"
	"os"

	"github.com/DEstebanP/transcript-AI/cmd/a2t/cmd"
	"github.com/DEstebanP/transcript-AI/internal/config"
)

func main() {
	// .env is optional, a broken one should not stop the CLI
	if err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	cmd.Execute()
}
