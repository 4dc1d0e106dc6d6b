package codec

import (
	"encoding/binary"
	"fmt"
	"net/netip"

	"NetFlowScope/internal/model"
)

// writer fills a byte buffer with big-endian fields at a cursor. The buffer
// is sized up front, so the writes themselves cannot fail.
type writer struct {
	buf []byte
	off int
}

func (w *writer) u8(v uint8) {
	w.buf[w.off] = v
	w.off++
}

func (w *writer) u16(v uint16) {
	binary.BigEndian.PutUint16(w.buf[w.off:], v)
	w.off += 2
}

func (w *writer) u32(v uint32) {
	binary.BigEndian.PutUint32(w.buf[w.off:], v)
	w.off += 4
}

// addr writes a dotted-quad IPv4 address as its 4 raw big-endian bytes.
func (w *writer) addr(s string) error {
	a, err := netip.ParseAddr(s)
	if err != nil || !a.Is4() {
		return fmt.Errorf("invalid IPv4 address %q", s)
	}
	copy(w.buf[w.off:], a.AsSlice())
	w.off += 4
	return nil
}

// EncodePacket serializes a packet into exactly
// HeaderSize + len(p.Flows)*FlowRecordSize bytes. Every field is written at
// its fixed offset as given, including the header's declared record count:
// the encoder does not validate domain semantics, it only serializes.
// Provenance metadata (source address/port, packet number) never reaches the
// wire. The only possible failure is an address string that does not parse
// as IPv4.
func EncodePacket(p *model.Packet) ([]byte, error) {
	w := &writer{buf: make([]byte, HeaderSize+len(p.Flows)*FlowRecordSize)}

	w.u16(p.Header.Version)
	w.u16(p.Header.Count)
	w.u32(p.Header.SysUptime)
	w.u32(p.Header.UnixSecs)
	w.u32(p.Header.UnixNsecs)
	w.u32(p.Header.FlowSequence)
	w.u8(p.Header.EngineType)
	w.u8(p.Header.EngineID)
	w.u16(p.Header.SamplingInterval)

	for i, f := range p.Flows {
		if err := w.addr(f.SrcAddr); err != nil {
			return nil, fmt.Errorf("flow %d srcaddr: %w", i, err)
		}
		if err := w.addr(f.DstAddr); err != nil {
			return nil, fmt.Errorf("flow %d dstaddr: %w", i, err)
		}
		if err := w.addr(f.NextHop); err != nil {
			return nil, fmt.Errorf("flow %d nexthop: %w", i, err)
		}
		w.u16(f.InputIf)
		w.u16(f.OutputIf)
		w.u32(f.Packets)
		w.u32(f.Bytes)
		w.u32(f.First)
		w.u32(f.Last)
		w.u16(f.SrcPort)
		w.u16(f.DstPort)
		w.u8(f.Pad1)
		w.u8(f.TCPFlags)
		w.u8(f.Protocol)
		w.u8(f.Tos)
		w.u16(f.SrcAS)
		w.u16(f.DstAS)
		w.u8(f.SrcMask)
		w.u8(f.DstMask)
		w.u16(f.Pad2)
	}

	return w.buf, nil
}
