package main

import (
	"os"

	"github.com/wonny/srm-sim/cmd/srm/commands"
)

// main is the entry point for the SRM simulator CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/srm [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
