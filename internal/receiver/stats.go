package receiver

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"NetFlowScope/internal/codec"
	"NetFlowScope/internal/model"
)

var (
	metricPacketsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "netflow_packets_received_total",
		Help: "Number of export packets successfully decoded.",
	})
	metricDecodeErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "netflow_decode_errors_total",
		Help: "Number of datagrams that failed to decode.",
	})
	metricFlowsDecoded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "netflow_flows_decoded_total",
		Help: "Number of flow records decoded.",
	})
)

// Stats accumulates running totals for the process lifetime. The listen loop
// writes while the HTTP API reads, hence the atomics.
type Stats struct {
	packetsReceived atomic.Uint64
	decodeErrors    atomic.Uint64
	flowsDecoded    atomic.Uint64
	bytesAccounted  atomic.Uint64

	mu           sync.Mutex
	flowsByProto map[string]uint64
}

// NewStats creates an empty stats accumulator.
func NewStats() *Stats {
	return &Stats{flowsByProto: make(map[string]uint64)}
}

// Record accounts one successfully decoded packet.
func (s *Stats) Record(packet *model.Packet) {
	s.packetsReceived.Add(1)
	s.flowsDecoded.Add(uint64(len(packet.Flows)))
	metricPacketsReceived.Inc()
	metricFlowsDecoded.Add(float64(len(packet.Flows)))

	var bytes uint64
	s.mu.Lock()
	for _, flow := range packet.Flows {
		bytes += uint64(flow.Bytes)
		s.flowsByProto[codec.ProtocolName(flow.Protocol)]++
	}
	s.mu.Unlock()
	s.bytesAccounted.Add(bytes)
}

// RecordError accounts one datagram that failed to decode.
func (s *Stats) RecordError() {
	s.decodeErrors.Add(1)
	metricDecodeErrors.Inc()
}

// PacketsReceived returns how many packets decoded successfully so far.
func (s *Stats) PacketsReceived() uint64 {
	return s.packetsReceived.Load()
}

// Snapshot is the JSON shape served by the stats API.
type Snapshot struct {
	PacketsReceived uint64            `json:"packets_received"`
	DecodeErrors    uint64            `json:"decode_errors"`
	FlowsDecoded    uint64            `json:"flows_decoded"`
	BytesAccounted  uint64            `json:"bytes_accounted"`
	FlowsByProtocol map[string]uint64 `json:"flows_by_protocol"`
}

// Snapshot returns a consistent copy of the totals.
func (s *Stats) Snapshot() Snapshot {
	snap := Snapshot{
		PacketsReceived: s.packetsReceived.Load(),
		DecodeErrors:    s.decodeErrors.Load(),
		FlowsDecoded:    s.flowsDecoded.Load(),
		BytesAccounted:  s.bytesAccounted.Load(),
		FlowsByProtocol: make(map[string]uint64),
	}
	s.mu.Lock()
	for proto, count := range s.flowsByProto {
		snap.FlowsByProtocol[proto] = count
	}
	s.mu.Unlock()
	return snap
}

// Summary renders the one-line periodic stats report.
func (s *Stats) Summary() string {
	snap := s.Snapshot()
	return fmt.Sprintf("Stats: Total=%d, Flows=%d, Bytes=%d, Errors=%d",
		snap.PacketsReceived, snap.FlowsDecoded, snap.BytesAccounted, snap.DecodeErrors)
}
