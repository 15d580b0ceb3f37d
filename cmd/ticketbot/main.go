package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// Credentials and overrides come from the environment; a local .env
	// file is a convenience, not a requirement.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
