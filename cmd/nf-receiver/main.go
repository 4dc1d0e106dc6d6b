package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"NetFlowScope/internal/config"
	"NetFlowScope/internal/model"
	"NetFlowScope/internal/receiver"
	"NetFlowScope/internal/relay"
)

func main() {
	log.Println("=== Netflow Receiver ===")

	mode := flag.String("mode", "listen", "Operating mode: 'listen' to decode UDP datagrams, 'tap' to subscribe to the relay and print reports.")
	configPath := flag.String("config", "", "Path to YAML config file (optional, env vars override).")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	switch *mode {
	case "listen":
		runListener(cfg)
	case "tap":
		runTap(cfg)
	default:
		fmt.Fprintf(os.Stderr, "Invalid mode: %s\n", *mode)
		flag.Usage()
		os.Exit(1)
	}
}

// runListener decodes UDP datagrams, prints reports, serves the stats API
// and optionally forwards decoded packets to NATS.
func runListener(cfg *config.Config) {
	stats := receiver.NewStats()

	// 1. Optional NATS relay
	var publisher *relay.Publisher
	if cfg.Receiver.NATS.Enabled {
		var err error
		publisher, err = relay.NewPublisher(cfg.Receiver.NATS)
		if err != nil {
			log.Fatalf("Failed to connect to NATS: %v", err)
		}
		defer publisher.Close()
	}

	handler := func(packet *model.Packet) {
		fmt.Print(receiver.RenderPacket(packet))
		if publisher != nil {
			if err := publisher.Publish(packet); err != nil {
				log.Printf("Failed to publish packet: %v", err)
			}
		}
	}

	// 2. Open the UDP listener
	recv, err := receiver.New(cfg.Receiver, stats, handler)
	if err != nil {
		log.Fatalf("Failed to create receiver: %v", err)
	}

	// 3. Start the stats/metrics HTTP API
	server := &http.Server{
		Addr:    cfg.Receiver.APIListenAddr,
		Handler: receiver.NewRouter(stats),
	}
	go func() {
		log.Printf("Stats API listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v", server.Addr, err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Periodic stats report
	statsInterval, err := time.ParseDuration(cfg.Receiver.StatsInterval)
	if err != nil {
		log.Fatalf("Invalid stats_interval: %v", err)
	}
	go func() {
		ticker := time.NewTicker(statsInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if stats.PacketsReceived() > 0 {
					log.Println(stats.Summary())
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	// 5. Run the listen loop until interrupted
	if err := recv.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("Receiver error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("API server forced to shutdown: %v", err)
	}

	log.Printf("Final %s", stats.Summary())
	log.Println("Receiver stopped")
}

// runTap subscribes to the relay subject and prints a report for each
// forwarded packet.
func runTap(cfg *config.Config) {
	sub, err := relay.NewSubscriber(cfg.Receiver.NATS)
	if err != nil {
		log.Fatalf("Failed to create subscriber: %v", err)
	}
	defer sub.Close()

	if err := sub.Start(func(packet *model.Packet) {
		fmt.Print(receiver.RenderPacket(packet))
	}); err != nil {
		log.Fatalf("Subscriber failed to start: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")
}
