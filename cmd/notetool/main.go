package main

import (
	"flag"
	"log"

	"github.com/VivekBose50/ClinicalNoteTool/internal/config"
	"github.com/VivekBose50/ClinicalNoteTool/internal/server"
)

func main() {
	addrFlag := flag.String("addr", "", "HTTP listen address (overrides config)")
	configPath := flag.String("config", "notetool.yaml", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	addr := cfg.Server.Addr
	if *addrFlag != "" {
		addr = *addrFlag
	}

	srv, err := server.New(cfg)
	if err != nil {
		log.Fatalf("failed to build server: %v", err)
	}

	if err := srv.Start(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
