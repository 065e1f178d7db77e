package main

import (
	"log/slog"

	"github.com/joho/godotenv"

	"github.com/mcoot/jukebox/internal/cli"
)

func main() {
	// A .env file is optional; its values feed JUKEBOX_* settings
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", slog.String("error", err.Error()))
	}

	cli.Execute()
}
