// Command explorer serves the prescribing data explorer API.
package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/alan-aru/MOD006901-PrescribeGUI/internal/app"
	"github.com/alan-aru/MOD006901-PrescribeGUI/internal/infrastructure"
)

func main() {
	// A missing .env is fine; the environment and config.yaml still apply.
	_ = godotenv.Load()

	application, err := app.NewApplication()
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	if err := application.Run(); err != nil {
		slog.Error("Application error", slog.String("error", err.Error()))
		infrastructure.CloseLogFile()
		os.Exit(1)
	}
}
