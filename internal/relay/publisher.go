// Package relay forwards decoded export packets over NATS so other
// consumers can process them without listening for the raw datagrams.
package relay

import (
	"encoding/json"
	"log"

	"github.com/nats-io/nats.go"

	"NetFlowScope/internal/config"
	"NetFlowScope/internal/model"
)

// Publisher publishes decoded packets to a NATS subject.
type Publisher struct {
	nc      *nats.Conn
	subject string
}

// NewPublisher creates a new NATS publisher.
func NewPublisher(cfg config.NATSConfig) (*Publisher, error) {
	nc, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, err
	}
	log.Printf("Connected to NATS server at %s", cfg.URL)
	return &Publisher{nc: nc, subject: cfg.Subject}, nil
}

// Publish serializes a decoded packet to JSON and publishes it, provenance
// included, to the configured subject.
func (p *Publisher) Publish(packet *model.Packet) error {
	data, err := json.Marshal(packet)
	if err != nil {
		return err
	}
	return p.nc.Publish(p.subject, data)
}

// Close drains and closes the NATS connection.
func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
		log.Println("NATS connection drained and closed.")
	}
}
