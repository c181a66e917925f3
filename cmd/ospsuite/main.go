package main

import (
	"os"

	"github.com/Yuri05/OSPSuite.Core/cmd/ospsuite/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
