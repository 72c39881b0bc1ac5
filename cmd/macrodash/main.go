package main

import (
	"os"

	"github.com/wonny/macrodash/cmd/macrodash/commands"
)

// main is the entry point for the macrodash CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/macrodash [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
