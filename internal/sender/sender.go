package sender

import (
	"context"
	"fmt"
	"log"
	"net"
	"time"

	"NetFlowScope/internal/codec"
	"NetFlowScope/internal/config"
)

// Resolver looks up the addresses of the export target. It is a field on the
// Sender so tests can substitute a deterministic implementation.
type Resolver func(host string) ([]net.IP, error)

// Sender drives the export side: it periodically synthesizes a packet,
// encodes it and transmits it as one UDP datagram. Every wait interval is
// fixed (no exponential backoff): the exporter is best-effort and a lost
// datagram is simply accepted.
type Sender struct {
	cfg     config.SenderConfig
	gen     *Generator
	conn    net.PacketConn
	resolve Resolver

	startupDelay     time.Duration
	resolveRetryWait time.Duration
	sendRetryWait    time.Duration

	packetsSent uint64
}

// New creates a sender. The UDP socket is opened once here and reused for
// the process lifetime.
func New(cfg config.SenderConfig, gen *Generator) (*Sender, error) {
	s := &Sender{
		cfg:     cfg,
		gen:     gen,
		resolve: net.LookupIP,
	}

	var err error
	if s.startupDelay, err = time.ParseDuration(cfg.StartupDelay); err != nil {
		return nil, fmt.Errorf("invalid startup_delay: %w", err)
	}
	if s.resolveRetryWait, err = time.ParseDuration(cfg.ResolveRetryWait); err != nil {
		return nil, fmt.Errorf("invalid resolve_retry_wait: %w", err)
	}
	if s.sendRetryWait, err = time.ParseDuration(cfg.SendRetryWait); err != nil {
		return nil, fmt.Errorf("invalid send_retry_wait: %w", err)
	}
	if cfg.CooldownMinSecs < 0 || cfg.CooldownMaxSecs < cfg.CooldownMinSecs {
		return nil, fmt.Errorf("invalid cooldown range [%d,%d]", cfg.CooldownMinSecs, cfg.CooldownMaxSecs)
	}

	if s.conn, err = net.ListenPacket("udp", ":0"); err != nil {
		return nil, fmt.Errorf("failed to open UDP socket: %w", err)
	}
	return s, nil
}

// Close releases the UDP socket.
func (s *Sender) Close() {
	if s.conn != nil {
		s.conn.Close()
	}
}

// PacketsSent returns how many datagrams were transmitted successfully.
func (s *Sender) PacketsSent() uint64 {
	return s.packetsSent
}

// Run executes the delivery loop until the context is cancelled. Each
// iteration re-resolves the target host: a receiver behind a dynamic DNS
// record or a restarted container keeps working without a sender restart.
// A failed resolution retries without generating a packet, so the flow
// sequence is untouched; a failed transmission drops that packet and moves
// on, it is never re-sent.
func (s *Sender) Run(ctx context.Context) error {
	log.Printf("Starting netflow sender to %s:%d", s.cfg.TargetHost, s.cfg.TargetPort)

	// Give a collaborating receiver time to come up.
	if !sleepCtx(ctx, s.startupDelay) {
		return ctx.Err()
	}

	for {
		addrs, err := s.resolve(s.cfg.TargetHost)
		if err != nil {
			log.Printf("DNS resolution error: %v", err)
			log.Printf("Retrying in %v...", s.resolveRetryWait)
			if !sleepCtx(ctx, s.resolveRetryWait) {
				return ctx.Err()
			}
			continue
		}
		if len(addrs) == 0 {
			log.Printf("No IP addresses found for %s", s.cfg.TargetHost)
			log.Printf("Retrying in %v...", s.resolveRetryWait)
			if !sleepCtx(ctx, s.resolveRetryWait) {
				return ctx.Err()
			}
			continue
		}
		target := &net.UDPAddr{IP: addrs[0], Port: s.cfg.TargetPort}

		packet := s.gen.Next(time.Now())
		payload, err := codec.EncodePacket(packet)
		if err != nil {
			// Generated packets always carry valid addresses; treat a
			// failure like a failed transmission and drop the packet.
			log.Printf("Error encoding packet: %v", err)
			if !sleepCtx(ctx, s.sendRetryWait) {
				return ctx.Err()
			}
			continue
		}

		if _, err := s.conn.WriteTo(payload, target); err != nil {
			log.Printf("Error sending packet: %v", err)
			if !sleepCtx(ctx, s.sendRetryWait) {
				return ctx.Err()
			}
			continue
		}

		s.packetsSent++
		log.Printf("Sent packet %d to %s:%d", s.packetsSent, s.cfg.TargetHost, s.cfg.TargetPort)
		log.Printf("  Sequence: %d", packet.Header.FlowSequence)
		log.Printf("  Size: %d bytes", len(payload))

		cooldown := s.cooldown()
		if !sleepCtx(ctx, cooldown) {
			return ctx.Err()
		}
	}
}

// cooldown draws a whole-second pause from the configured range to pace the
// datagram rate.
func (s *Sender) cooldown() time.Duration {
	span := s.cfg.CooldownMaxSecs - s.cfg.CooldownMinSecs + 1
	secs := s.cfg.CooldownMinSecs + s.gen.rng.Intn(span)
	return time.Duration(secs) * time.Second
}

// sleepCtx pauses for d, returning false if the context ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
