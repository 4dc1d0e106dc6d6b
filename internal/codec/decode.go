package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net/netip"

	"NetFlowScope/internal/model"
)

// Decode failure taxonomy. Every failure is local to the one datagram being
// decoded; the decoder mutates no shared state and never reads past the
// buffer it was given.
var (
	// ErrTooShort means the buffer cannot even hold the 24-byte header.
	ErrTooShort = errors.New("packet too short for netflow header")

	// ErrFieldRead means the buffer ended in the middle of a field. The
	// bound checks in DecodePacket make this unreachable, but every read
	// still checks for it rather than trusting the caller.
	ErrFieldRead = errors.New("buffer ended mid-field")

	// ErrTruncatedRecord means a record selected for decoding has fewer
	// than FlowRecordSize bytes available. The count policy below drops
	// partial trailing records before they are selected, so this is
	// defensive as well.
	ErrTruncatedRecord = errors.New("flow record truncated")
)

// reader walks a byte buffer extracting big-endian fields at a cursor.
type reader struct {
	buf []byte
	off int
}

func (r *reader) u8() (uint8, error) {
	if r.off+1 > len(r.buf) {
		return 0, ErrFieldRead
	}
	v := r.buf[r.off]
	r.off++
	return v, nil
}

func (r *reader) u16() (uint16, error) {
	if r.off+2 > len(r.buf) {
		return 0, ErrFieldRead
	}
	v := binary.BigEndian.Uint16(r.buf[r.off:])
	r.off += 2
	return v, nil
}

func (r *reader) u32() (uint32, error) {
	if r.off+4 > len(r.buf) {
		return 0, ErrFieldRead
	}
	v := binary.BigEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return v, nil
}

// addr reads 4 raw bytes holding the big-endian encoding of an IPv4 address
// and renders it as dotted-quad text.
func (r *reader) addr() (string, error) {
	if r.off+4 > len(r.buf) {
		return "", ErrFieldRead
	}
	a := netip.AddrFrom4([4]byte(r.buf[r.off : r.off+4]))
	r.off += 4
	return a.String(), nil
}

// DecodePacket parses one received datagram into a typed Packet. The
// provenance arguments come from the transport layer and are carried on the
// result as-is, they are not part of the wire format.
//
// The header's declared record count is never trusted outright: the number of
// records parsed is min(count, available/48). A payload shorter than count*48
// yields a silently shortened flow list, and residual bytes beyond the last
// full record are ignored.
func DecodePacket(data []byte, sourceAddr string, sourcePort uint16, packetNumber uint64) (*model.Packet, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: got %d bytes, need %d", ErrTooShort, len(data), HeaderSize)
	}

	header, err := decodeHeader(data[:HeaderSize])
	if err != nil {
		return nil, err
	}

	payload := data[HeaderSize:]
	count := int(header.Count)
	if available := len(payload) / FlowRecordSize; count > available {
		count = available
	}

	flows := make([]model.FlowRecord, 0, count)
	for i := 0; i < count; i++ {
		offset := i * FlowRecordSize
		if offset+FlowRecordSize > len(payload) {
			return nil, fmt.Errorf("flow %d: %w", i, ErrTruncatedRecord)
		}
		flow, err := decodeFlowRecord(payload[offset : offset+FlowRecordSize])
		if err != nil {
			return nil, fmt.Errorf("flow %d: %w", i, err)
		}
		flows = append(flows, flow)
	}

	return &model.Packet{
		Header:       header,
		Flows:        flows,
		SourceAddr:   sourceAddr,
		SourcePort:   sourcePort,
		PacketNumber: packetNumber,
	}, nil
}

func decodeHeader(data []byte) (model.Header, error) {
	var h model.Header
	var err error
	r := &reader{buf: data}

	if h.Version, err = r.u16(); err != nil {
		return h, fmt.Errorf("reading version: %w", err)
	}
	if h.Count, err = r.u16(); err != nil {
		return h, fmt.Errorf("reading count: %w", err)
	}
	if h.SysUptime, err = r.u32(); err != nil {
		return h, fmt.Errorf("reading sys_uptime: %w", err)
	}
	if h.UnixSecs, err = r.u32(); err != nil {
		return h, fmt.Errorf("reading unix_secs: %w", err)
	}
	if h.UnixNsecs, err = r.u32(); err != nil {
		return h, fmt.Errorf("reading unix_nsecs: %w", err)
	}
	if h.FlowSequence, err = r.u32(); err != nil {
		return h, fmt.Errorf("reading flow_sequence: %w", err)
	}
	if h.EngineType, err = r.u8(); err != nil {
		return h, fmt.Errorf("reading engine_type: %w", err)
	}
	if h.EngineID, err = r.u8(); err != nil {
		return h, fmt.Errorf("reading engine_id: %w", err)
	}
	if h.SamplingInterval, err = r.u16(); err != nil {
		return h, fmt.Errorf("reading sampling_interval: %w", err)
	}
	return h, nil
}

func decodeFlowRecord(data []byte) (model.FlowRecord, error) {
	var f model.FlowRecord
	var err error

	if len(data) < FlowRecordSize {
		return f, ErrTruncatedRecord
	}
	r := &reader{buf: data}

	if f.SrcAddr, err = r.addr(); err != nil {
		return f, fmt.Errorf("reading srcaddr: %w", err)
	}
	if f.DstAddr, err = r.addr(); err != nil {
		return f, fmt.Errorf("reading dstaddr: %w", err)
	}
	if f.NextHop, err = r.addr(); err != nil {
		return f, fmt.Errorf("reading nexthop: %w", err)
	}
	if f.InputIf, err = r.u16(); err != nil {
		return f, fmt.Errorf("reading input_snmp: %w", err)
	}
	if f.OutputIf, err = r.u16(); err != nil {
		return f, fmt.Errorf("reading output_snmp: %w", err)
	}
	if f.Packets, err = r.u32(); err != nil {
		return f, fmt.Errorf("reading packets: %w", err)
	}
	if f.Bytes, err = r.u32(); err != nil {
		return f, fmt.Errorf("reading bytes: %w", err)
	}
	if f.First, err = r.u32(); err != nil {
		return f, fmt.Errorf("reading first: %w", err)
	}
	if f.Last, err = r.u32(); err != nil {
		return f, fmt.Errorf("reading last: %w", err)
	}
	if f.SrcPort, err = r.u16(); err != nil {
		return f, fmt.Errorf("reading srcport: %w", err)
	}
	if f.DstPort, err = r.u16(); err != nil {
		return f, fmt.Errorf("reading dstport: %w", err)
	}
	if f.Pad1, err = r.u8(); err != nil {
		return f, fmt.Errorf("reading pad1: %w", err)
	}
	if f.TCPFlags, err = r.u8(); err != nil {
		return f, fmt.Errorf("reading tcp_flags: %w", err)
	}
	if f.Protocol, err = r.u8(); err != nil {
		return f, fmt.Errorf("reading protocol: %w", err)
	}
	if f.Tos, err = r.u8(); err != nil {
		return f, fmt.Errorf("reading tos: %w", err)
	}
	if f.SrcAS, err = r.u16(); err != nil {
		return f, fmt.Errorf("reading src_as: %w", err)
	}
	if f.DstAS, err = r.u16(); err != nil {
		return f, fmt.Errorf("reading dst_as: %w", err)
	}
	if f.SrcMask, err = r.u8(); err != nil {
		return f, fmt.Errorf("reading src_mask: %w", err)
	}
	if f.DstMask, err = r.u8(); err != nil {
		return f, fmt.Errorf("reading dst_mask: %w", err)
	}
	if f.Pad2, err = r.u16(); err != nil {
		return f, fmt.Errorf("reading pad2: %w", err)
	}
	return f, nil
}
