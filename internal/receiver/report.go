package receiver

import (
	"fmt"
	"strings"

	"NetFlowScope/internal/codec"
	"NetFlowScope/internal/model"
)

const reportRule = "======================================================================"

// RenderPacket produces the human-readable report for one decoded packet.
func RenderPacket(packet *model.Packet) string {
	var b strings.Builder

	fmt.Fprintf(&b, "\n%s\n", reportRule)
	fmt.Fprintf(&b, "Netflow Packet #%d received from %s:%d\n",
		packet.PacketNumber, packet.SourceAddr, packet.SourcePort)
	fmt.Fprintf(&b, "Timestamp: %s\n", packet.Header.Timestamp())
	fmt.Fprintf(&b, "Version: %d, Flow count: %d\n", packet.Header.Version, packet.Header.Count)
	fmt.Fprintf(&b, "Sequence: %d\n", packet.Header.FlowSequence)
	fmt.Fprintf(&b, "System uptime: %d ms\n", packet.Header.SysUptime)

	for i, flow := range packet.Flows {
		fmt.Fprintf(&b, "\n Flow %d:\n", i+1)
		fmt.Fprintf(&b, "   Source: %s:%d\n", flow.SrcAddr, flow.SrcPort)
		fmt.Fprintf(&b, "   Destination: %s:%d\n", flow.DstAddr, flow.DstPort)
		fmt.Fprintf(&b, "   Protocol: %s (%d)\n", codec.ProtocolName(flow.Protocol), flow.Protocol)
		fmt.Fprintf(&b, "   Packets: %d, Bytes: %d\n", flow.Packets, flow.Bytes)
		fmt.Fprintf(&b, "   TCP Flags: 0x%02x\n", flow.TCPFlags)
		fmt.Fprintf(&b, "   AS Path: %d -> %d\n", flow.SrcAS, flow.DstAS)
		fmt.Fprintf(&b, "   Next Hop: %s\n", flow.NextHop)
	}

	fmt.Fprintf(&b, "%s\n", reportRule)
	return b.String()
}
