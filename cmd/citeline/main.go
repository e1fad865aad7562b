package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/citeline-ai/citeline/internal/adapters/driving/cli"
)

func main() {
	// A .env in the working directory can point at non-default service URLs.
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
