package main

import (
	"os"

	"github.com/tutorlink/walletview/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
