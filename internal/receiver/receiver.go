package receiver

import (
	"context"
	"fmt"
	"log"
	"net"

	"NetFlowScope/internal/codec"
	"NetFlowScope/internal/config"
	"NetFlowScope/internal/model"
)

// PacketHandler is a function that processes a successfully decoded packet.
type PacketHandler func(packet *model.Packet)

// Receiver owns the UDP socket and decodes each received datagram
// independently. Nothing about one datagram depends on the previous one, so
// a handler is free to dispatch packets onward however it likes.
type Receiver struct {
	conn    *net.UDPConn
	stats   *Stats
	handler PacketHandler

	// packetNumber is 1-based and only advances on a successful decode.
	packetNumber uint64
}

// New opens the UDP listening socket.
func New(cfg config.ReceiverConfig, stats *Stats, handler PacketHandler) (*Receiver, error) {
	addr := &net.UDPAddr{IP: net.ParseIP(cfg.ListenHost), Port: cfg.ListenPort}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s:%d: %w", cfg.ListenHost, cfg.ListenPort, err)
	}
	return &Receiver{conn: conn, stats: stats, handler: handler}, nil
}

// Addr returns the bound address of the listening socket.
func (r *Receiver) Addr() net.Addr {
	return r.conn.LocalAddr()
}

// Run reads datagrams until the context is cancelled. A datagram that fails
// to decode is counted and logged but never stops the loop, and it does not
// consume a packet number.
func (r *Receiver) Run(ctx context.Context) error {
	log.Printf("Receiver listening on %s", r.conn.LocalAddr())

	// Closing the socket is the only way to unblock the read below.
	go func() {
		<-ctx.Done()
		r.conn.Close()
	}()

	buf := make([]byte, 65535)
	for {
		n, peer, err := r.conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("failed to read datagram: %w", err)
		}

		packet, err := codec.DecodePacket(buf[:n], peer.IP.String(), uint16(peer.Port), r.packetNumber+1)
		if err != nil {
			r.stats.RecordError()
			log.Printf("Error processing packet from %s: %v", peer, err)
			continue
		}
		r.packetNumber++

		r.stats.Record(packet)
		if r.handler != nil {
			r.handler(packet)
		}
	}
}
