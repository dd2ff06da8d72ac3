package main

import (
	"fmt"
	"os"

	"github.com/soyeahso/roster/internal/cli"
	"github.com/tillberg/autorestart"
)

func main() {
	// restart on binary rebuilds during local development
	if os.Getenv("ROSTER_AUTORESTART") == "1" {
		go autorestart.RestartOnChange()
	}

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
