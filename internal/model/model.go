package model

import "time"

// Header is the fixed 24-byte NetFlow v5 export packet header.
// All fields appear on the wire in this order, big-endian.
type Header struct {
	Version          uint16 `json:"version"`
	Count            uint16 `json:"count"`
	SysUptime        uint32 `json:"sys_uptime"`
	UnixSecs         uint32 `json:"unix_secs"`
	UnixNsecs        uint32 `json:"unix_nsecs"`
	FlowSequence     uint32 `json:"flow_sequence"`
	EngineType       uint8  `json:"engine_type"`
	EngineID         uint8  `json:"engine_id"`
	SamplingInterval uint16 `json:"sampling_interval"`
}

// Timestamp renders the export time carried in the header. Exporters that do
// not stamp their packets send a zero UnixSecs; that must not turn into an
// epoch-1970 date, so it is reported as invalid instead.
func (h Header) Timestamp() string {
	if h.UnixSecs == 0 {
		return "Invalid timestamp"
	}
	return time.Unix(int64(h.UnixSecs), 0).UTC().Format("2006-01-02 15:04:05 MST")
}

// FlowRecord is one observed flow inside an export packet (48 bytes on the
// wire). Addresses are kept as dotted-quad strings: every consumer downstream
// of the decoder wants display text, none does arithmetic on them.
type FlowRecord struct {
	SrcAddr  string `json:"srcaddr"`
	DstAddr  string `json:"dstaddr"`
	NextHop  string `json:"nexthop"`
	InputIf  uint16 `json:"input_snmp"`
	OutputIf uint16 `json:"output_snmp"`
	Packets  uint32 `json:"packets"`
	Bytes    uint32 `json:"bytes"`
	First    uint32 `json:"first"`
	Last     uint32 `json:"last"`
	SrcPort  uint16 `json:"srcport"`
	DstPort  uint16 `json:"dstport"`
	Pad1     uint8  `json:"pad1"`
	TCPFlags uint8  `json:"tcp_flags"`
	Protocol uint8  `json:"protocol"`
	Tos      uint8  `json:"tos"`
	SrcAS    uint16 `json:"src_as"`
	DstAS    uint16 `json:"dst_as"`
	SrcMask  uint8  `json:"src_mask"`
	DstMask  uint8  `json:"dst_mask"`
	Pad2     uint16 `json:"pad2"`
}

// Packet is one decoded (or to-be-encoded) export datagram. The provenance
// fields are supplied by the transport layer, not read from the wire: who
// sent the datagram and its 1-based position within this process lifetime.
type Packet struct {
	Header Header       `json:"header"`
	Flows  []FlowRecord `json:"flows"`

	SourceAddr   string `json:"source_addr"`
	SourcePort   uint16 `json:"source_port"`
	PacketNumber uint64 `json:"packet_number"`
}
