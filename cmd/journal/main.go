package main

import (
	"os"

	"github.com/joho/godotenv"

	"trading-journal-go/cmd/journal/cmd"
)

func main() {
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
