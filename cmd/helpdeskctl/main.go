package main

import (
	"os"

	"github.com/opsdesk/helpdesk/cmd/helpdeskctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
