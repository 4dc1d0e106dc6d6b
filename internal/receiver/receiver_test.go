package receiver

import (
	"context"
	"net"
	"testing"
	"time"

	"NetFlowScope/internal/codec"
	"NetFlowScope/internal/config"
	"NetFlowScope/internal/model"
)

func testPacket(sequence uint32) *model.Packet {
	return &model.Packet{
		Header: model.Header{
			Version:      codec.Version,
			Count:        1,
			SysUptime:    15000,
			UnixSecs:     1700000000,
			FlowSequence: sequence,
		},
		Flows: []model.FlowRecord{{
			SrcAddr:  "192.168.2.50",
			DstAddr:  "10.0.1.9",
			NextHop:  "192.168.2.1",
			InputIf:  1,
			OutputIf: 2,
			Packets:  10,
			Bytes:    1500,
			First:    1000,
			Last:     2000,
			SrcPort:  50000,
			DstPort:  443,
			TCPFlags: 0x18,
			Protocol: 6,
			SrcAS:    65001,
			DstAS:    65002,
			SrcMask:  24,
			DstMask:  24,
		}},
	}
}

func TestReceiverEndToEnd(t *testing.T) {
	// 1. Start a receiver on an ephemeral loopback port
	decoded := make(chan *model.Packet, 10)
	stats := NewStats()
	recv, err := New(config.ReceiverConfig{ListenHost: "127.0.0.1", ListenPort: 0}, stats,
		func(p *model.Packet) { decoded <- p })
	if err != nil {
		t.Fatalf("Failed to create receiver: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- recv.Run(ctx) }()

	conn, err := net.Dial("udp", recv.Addr().String())
	if err != nil {
		t.Fatalf("Failed to dial receiver: %v", err)
	}
	defer conn.Close()

	// 2. A malformed datagram must be dropped without consuming a number
	if _, err := conn.Write(make([]byte, 10)); err != nil {
		t.Fatalf("Failed to send garbage datagram: %v", err)
	}

	// 3. Two valid packets follow
	for _, sequence := range []uint32{1, 2} {
		payload, err := codec.EncodePacket(testPacket(sequence))
		if err != nil {
			t.Fatalf("EncodePacket failed: %v", err)
		}
		if _, err := conn.Write(payload); err != nil {
			t.Fatalf("Failed to send datagram: %v", err)
		}
	}

	// 4. Verify decoding, numbering and provenance
	for want := uint64(1); want <= 2; want++ {
		select {
		case p := <-decoded:
			if p.PacketNumber != want {
				t.Errorf("Expected packet number %d, got %d (malformed datagrams must not be numbered)",
					want, p.PacketNumber)
			}
			if p.SourceAddr != "127.0.0.1" || p.SourcePort == 0 {
				t.Errorf("Missing provenance: %s:%d", p.SourceAddr, p.SourcePort)
			}
			if p.Header.FlowSequence != uint32(want) {
				t.Errorf("Expected sequence %d, got %d", want, p.Header.FlowSequence)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("Timed out waiting for packet %d", want)
		}
	}

	// 5. Stats must account both outcomes
	snap := stats.Snapshot()
	if snap.PacketsReceived != 2 || snap.DecodeErrors != 1 {
		t.Errorf("Expected 2 packets and 1 decode error, got %+v", snap)
	}
	if snap.FlowsDecoded != 2 || snap.BytesAccounted != 3000 {
		t.Errorf("Unexpected flow accounting: %+v", snap)
	}
	if snap.FlowsByProtocol["TCP"] != 2 {
		t.Errorf("Expected 2 TCP flows, got %+v", snap.FlowsByProtocol)
	}

	// 6. Cancelling the context stops the loop
	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Receiver did not stop after cancellation")
	}
}
