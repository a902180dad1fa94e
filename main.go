package main

import (
	stdlog "log"

	"github.com/joho/godotenv"

	"fleetdocs/cmd"
	"fleetdocs/internal/config"
	"fleetdocs/internal/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		stdlog.Printf("Warning: Could not load .env file: %v", err)
	}

	logCfg := logger.DefaultConfig()
	if cfg, err := config.Load(); err == nil {
		logCfg = cfg.GetLoggerConfig()
	}
	if err := logger.Setup(logCfg); err != nil {
		stdlog.Fatalf("Failed to initialize logger: %v", err)
	}

	cmd.Execute()
}
