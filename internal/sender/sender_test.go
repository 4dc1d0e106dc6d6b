package sender

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"testing"
	"time"

	"NetFlowScope/internal/codec"
	"NetFlowScope/internal/config"
	"NetFlowScope/internal/model"
)

// testConfig returns a sender configuration with waits short enough for
// tests.
func testConfig(port int) config.SenderConfig {
	return config.SenderConfig{
		TargetHost:       "collector.test",
		TargetPort:       port,
		StartupDelay:     "1ms",
		ResolveRetryWait: "5ms",
		SendRetryWait:    "5ms",
		CooldownMinSecs:  0,
		CooldownMaxSecs:  0,
	}
}

// listen opens a loopback UDP socket standing in for the collector.
func listen(t *testing.T) (net.PacketConn, int) {
	t.Helper()
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to open test listener: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn, conn.LocalAddr().(*net.UDPAddr).Port
}

// receive reads one datagram from the test listener and decodes it.
func receive(t *testing.T, conn net.PacketConn, number uint64) (*model.Packet, error) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 65535)
	n, addr, err := conn.ReadFrom(buf)
	if err != nil {
		return nil, err
	}
	host, _, _ := net.SplitHostPort(addr.String())
	return codec.DecodePacket(buf[:n], host, 0, number)
}

func TestSenderSequenceAcrossSends(t *testing.T) {
	// 1. Stand up a loopback collector
	conn, port := listen(t)

	// 2. Run the sender against it with an always-succeeding resolver
	s, err := New(testConfig(port), NewGenerator(rand.New(rand.NewSource(1))))
	if err != nil {
		t.Fatalf("Failed to create sender: %v", err)
	}
	defer s.Close()
	s.resolve = func(host string) ([]net.IP, error) {
		return []net.IP{net.ParseIP("127.0.0.1")}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	// 3. Consecutive sends must carry sequence 1, 2, 3 with no gaps
	for want := uint64(1); want <= 3; want++ {
		p, err := receive(t, conn, want)
		if err != nil {
			t.Fatalf("Did not receive packet %d: %v", want, err)
		}
		if p.Header.FlowSequence != uint32(want) {
			t.Fatalf("Packet %d carries sequence %d", want, p.Header.FlowSequence)
		}
		if p.Header.Version != codec.Version || len(p.Flows) != 1 {
			t.Errorf("Malformed export packet: %+v", p.Header)
		}
	}

	cancel()
	if err := <-done; err != context.Canceled {
		t.Errorf("Expected context.Canceled from Run, got %v", err)
	}
	if s.PacketsSent() < 3 {
		t.Errorf("Expected at least 3 packets sent, got %d", s.PacketsSent())
	}
}

// TestSenderResolutionRetry fails resolution twice before succeeding. No
// packet may be generated until resolution succeeds, so the first datagram
// on the wire must still carry sequence 1.
func TestSenderResolutionRetry(t *testing.T) {
	conn, port := listen(t)

	s, err := New(testConfig(port), NewGenerator(rand.New(rand.NewSource(1))))
	if err != nil {
		t.Fatalf("Failed to create sender: %v", err)
	}
	defer s.Close()

	attempts := 0
	s.resolve = func(host string) ([]net.IP, error) {
		attempts++
		switch attempts {
		case 1:
			return nil, fmt.Errorf("lookup %s: no such host", host)
		case 2:
			return nil, nil // resolved, but zero addresses
		default:
			return []net.IP{net.ParseIP("127.0.0.1")}, nil
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	p, err := receive(t, conn, 1)
	if err != nil {
		t.Fatalf("Did not receive a packet after resolution recovered: %v", err)
	}
	if attempts < 3 {
		t.Errorf("Expected at least 3 resolution attempts, got %d", attempts)
	}
	if p.Header.FlowSequence != 1 {
		t.Errorf("Failed resolutions consumed sequence numbers: first packet has sequence %d",
			p.Header.FlowSequence)
	}
}
