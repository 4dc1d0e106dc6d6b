// Package codec implements the NetFlow v5 wire format: a fixed 24-byte
// header followed by zero or more fixed 48-byte flow records, every
// multi-byte field unsigned and big-endian.
package codec

import "fmt"

const (
	// Version is the only export format version this codec speaks.
	Version = 5

	// HeaderSize is the fixed byte length of the packet header.
	HeaderSize = 24

	// FlowRecordSize is the fixed byte length of one flow record.
	FlowRecordSize = 48
)

// protocolNames maps the IP protocol numbers commonly seen in flow exports
// to display names. The mapping is advisory only: it never influences how a
// packet is parsed.
var protocolNames = map[uint8]string{
	1:  "ICMP",
	6:  "TCP",
	17: "UDP",
	47: "GRE",
	50: "ESP",
	51: "AH",
	89: "OSPF",
}

// ProtocolName returns a display name for an IP protocol number, or a
// synthesized "Unknown(N)" label for numbers outside the table.
func ProtocolName(protocol uint8) string {
	if name, ok := protocolNames[protocol]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", protocol)
}
