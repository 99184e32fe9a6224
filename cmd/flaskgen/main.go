package main

import (
	"os"

	"github.com/jakoblorz/flaskgen/internal/cli"
	"github.com/joho/godotenv"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// .env may set FLASKGEN_* defaults
	_ = godotenv.Load()

	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
