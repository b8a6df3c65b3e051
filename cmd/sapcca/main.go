package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"sapcca/client/internal/config"
	"sapcca/client/internal/localization"
	"sapcca/client/internal/session"
	"sapcca/client/internal/ui"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: no .env file loaded")
	}
	cfg := config.FromEnv()

	// The terminal belongs to the UI; logs go to a file under the data dir.
	if err := os.MkdirAll(cfg.DataDir, 0o700); err == nil {
		logFile, err := os.OpenFile(filepath.Join(cfg.DataDir, "client.log"),
			os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err == nil {
			defer logFile.Close()
			log.SetOutput(logFile)
		}
	}

	loc, err := localization.NewLocalizer(cfg.Lang)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if cfg.LocalesDir != "" {
		if err := loc.LoadDir(cfg.LocalesDir); err != nil {
			log.Printf("extra locales not loaded: %v", err)
		}
	}

	store, err := session.NewStore(cfg.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	app := ui.NewApp(cfg, store, loc)
	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
