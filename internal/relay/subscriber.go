package relay

import (
	"encoding/json"
	"log"

	"github.com/nats-io/nats.go"

	"NetFlowScope/internal/config"
	"NetFlowScope/internal/model"
)

// PacketHandler is a function that processes a relayed packet.
type PacketHandler func(packet *model.Packet)

// Subscriber consumes relayed packets from a NATS subject.
type Subscriber struct {
	nc      *nats.Conn
	sub     *nats.Subscription
	subject string
}

// NewSubscriber creates a new NATS subscriber.
func NewSubscriber(cfg config.NATSConfig) (*Subscriber, error) {
	nc, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, err
	}
	log.Printf("Connected to NATS server at %s", cfg.URL)
	return &Subscriber{nc: nc, subject: cfg.Subject}, nil
}

// Start subscribes to the configured subject and hands each relayed packet
// to the handler.
func (s *Subscriber) Start(handler PacketHandler) error {
	sub, err := s.nc.Subscribe(s.subject, func(msg *nats.Msg) {
		var packet model.Packet
		if err := json.Unmarshal(msg.Data, &packet); err != nil {
			log.Printf("Error unmarshalling relayed packet: %v", err)
			return
		}
		handler(&packet)
	})
	if err != nil {
		return err
	}
	s.sub = sub
	log.Printf("Subscribed to '%s'. Waiting for packets...", s.subject)
	return nil
}

// Close unsubscribes and closes the NATS connection.
func (s *Subscriber) Close() {
	if s.sub != nil {
		s.sub.Unsubscribe()
	}
	if s.nc != nil {
		s.nc.Close()
		log.Println("NATS connection closed.")
	}
}
