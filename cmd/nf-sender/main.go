package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"NetFlowScope/internal/config"
	"NetFlowScope/internal/sender"
)

func main() {
	log.Println("=== Netflow Sender ===")

	configPath := flag.String("config", "", "Path to YAML config file (optional, env vars override).")
	flag.Parse()

	// 1. Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Build the generator and the delivery loop
	gen := sender.NewGenerator(rand.New(rand.NewSource(time.Now().UnixNano())))
	s, err := sender.New(cfg.Sender, gen)
	if err != nil {
		log.Fatalf("Failed to create sender: %v", err)
	}
	defer s.Close()

	// 3. Run until interrupted
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := s.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("Sender error: %v", err)
	}
	log.Println("Sender stopped")
}
