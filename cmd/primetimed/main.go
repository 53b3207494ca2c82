// Command primetimed runs the publishing daemon: the Telegram bot, the
// scheduling engine, and the HTTP API.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"primetime/internal/config"
	"primetime/internal/daemonrun"
)

func main() {
	configPath := flag.String("config", "", "configuration file path")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := daemonrun.Run(context.Background(), cfg, daemonrun.Options{LogLevel: *logLevel}); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}
