package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/spigell/interview-sim/cmd"
)

func main() {
	// Optional .env with GEMINI_API_KEY and friends.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
