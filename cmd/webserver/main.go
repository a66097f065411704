package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"go.uber.org/zap"

	"github.com/ivlev/comic2premiere/internal/config"
	"github.com/ivlev/comic2premiere/internal/gemini"
	"github.com/ivlev/comic2premiere/internal/server"
)

func main() {
	configPtr := flag.String("config", "comic2premiere.yaml", "Path to the YAML config file")
	addrPtr := flag.String("addr", "", "Listen address (overrides config, e.g. :8080)")
	debugPtr := flag.Bool("debug", false, "Verbose logging")
	flag.Parse()

	cfg, err := config.Load(*configPtr)
	if err != nil {
		log.Fatalf("[-] Config error: %v", err)
	}
	if *addrPtr != "" {
		cfg.ListenAddr = *addrPtr
	}

	zapCfg := zap.NewProductionConfig()
	if *debugPtr {
		zapCfg = zap.NewDevelopmentConfig()
	}
	logger, err := zapCfg.Build()
	if err != nil {
		log.Fatalf("[-] Logger error: %v", err)
	}
	defer logger.Sync()

	var client *gemini.Client
	if cfg.APIKey == "" {
		fmt.Println("[!] GEMINI_API_KEY is not set, timings will be an even split")
	} else {
		client, err = gemini.New(context.Background(), cfg.APIKey, cfg.GeminiModel, logger)
		if err != nil {
			log.Fatalf("[-] Could not create Gemini client: %v", err)
		}
		defer client.Close()
	}

	srv := server.New(cfg, client, logger)
	if err := srv.Run(); err != nil {
		log.Fatalf("[-] Server error: %v", err)
	}
}
