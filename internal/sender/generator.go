package sender

import (
	"fmt"
	"math/rand"
	"time"

	"NetFlowScope/internal/codec"
	"NetFlowScope/internal/model"
)

// Synthetic traffic shape: clients in 192.168.2.0/24 talking to servers in
// 10.0.1.0/24 through the subnet gateway.
const nextHopAddr = "192.168.2.1"

var (
	dstPorts  = []uint16{80, 443, 22, 25, 53, 8080}
	protocols = []uint8{6, 17, 1} // TCP, UDP, ICMP
)

// Generator synthesizes single-flow NetFlow v5 packets for the delivery
// loop. The randomness source is passed in explicitly so tests can seed it;
// the flow sequence starts at 1 and increments by exactly one per generated
// packet, wrapping only at the 32-bit boundary.
type Generator struct {
	rng      *rand.Rand
	sequence uint32
}

// NewGenerator creates a generator drawing from the given source.
func NewGenerator(rng *rand.Rand) *Generator {
	return &Generator{rng: rng, sequence: 1}
}

// Sequence returns the sequence number the next generated packet will carry.
func (g *Generator) Sequence() uint32 {
	return g.sequence
}

// Next builds one export packet containing a single randomized flow record
// and consumes one sequence number.
func (g *Generator) Next(now time.Time) *model.Packet {
	packets := uint32(1 + g.rng.Intn(100))

	p := &model.Packet{
		Header: model.Header{
			Version:      codec.Version,
			Count:        1,
			SysUptime:    uint32(10000 + g.rng.Intn(90000)),
			UnixSecs:     uint32(now.Unix()),
			FlowSequence: g.sequence,
		},
		Flows: []model.FlowRecord{{
			SrcAddr:  fmt.Sprintf("192.168.2.%d", 1+g.rng.Intn(254)),
			DstAddr:  fmt.Sprintf("10.0.1.%d", 1+g.rng.Intn(254)),
			NextHop:  nextHopAddr,
			InputIf:  1,
			OutputIf: 2,
			Packets:  packets,
			Bytes:    packets * uint32(64+g.rng.Intn(1437)),
			First:    1000,
			Last:     2000,
			SrcPort:  uint16(1024 + g.rng.Intn(64512)),
			DstPort:  dstPorts[g.rng.Intn(len(dstPorts))],
			TCPFlags: 0x18, // SYN+ACK
			Protocol: protocols[g.rng.Intn(len(protocols))],
			SrcAS:    65001,
			DstAS:    65002,
			SrcMask:  24,
			DstMask:  24,
		}},
	}

	g.sequence++ // unsigned, wraps at 2^32 by itself
	return p
}
