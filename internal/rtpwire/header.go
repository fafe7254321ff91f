// Package rtpwire implements the RFC 3550 RTP fixed header and the RFC 6184
// FU-A indicator/header bytes, serialized bit-exactly to and from the wire.
package rtpwire

import (
	"h264streamer/internal/packet"
)

const (
	// Version is the only RTP version this implementation emits or accepts.
	Version = 2

	// HeaderSize is the length of the fixed RTP header with no CSRC list or
	// extension, in bytes.
	HeaderSize = 12

	// PayloadTypeH264 is the dynamic payload type used for all packets in
	// this stream (RFC 6184 doesn't fix a static PT for H.264).
	PayloadTypeH264 = 96
)

// Header is the fixed 12-byte RTP header (no CSRC, no extension): version 2,
// padding 0, extension 0, csrc_count 0.
type Header struct {
	Marker         bool
	PayloadType    byte
	SequenceNumber uint16
	Timestamp      uint32
	SSRC           uint32
}

// WriteTo serializes h into the next 12 bytes of w, in the field order and
// bit layout of RFC 3550 §5.1.
func (h Header) WriteTo(w *packet.Writer) error {
	// version(2) padding(1) extension(1) csrc_count(4)
	w.WriteByte(Version << 6)
	// marker(1) payload_type(7)
	pt := h.PayloadType & 0x7f
	if h.Marker {
		pt |= 0x80
	}
	w.WriteByte(pt)
	w.WriteUint16(h.SequenceNumber)
	w.WriteUint32(h.Timestamp)
	w.WriteUint32(h.SSRC)
	return nil
}

// ReadFrom decodes a 12-byte RTP header from the front of r. It does not
// handle CSRC lists or header extensions, neither of which this stream
// ever produces.
func ReadFrom(r *packet.Reader) (Header, error) {
	var h Header
	if err := r.CheckRemaining(HeaderSize); err != nil {
		return h, err
	}
	r.Skip(1) // version/padding/extension/csrc_count: fixed, not validated on read
	b1 := r.ReadByte()
	h.Marker = b1&0x80 != 0
	h.PayloadType = b1 & 0x7f
	h.SequenceNumber = r.ReadUint16()
	h.Timestamp = r.ReadUint32()
	h.SSRC = r.ReadUint32()
	return h, nil
}

// FUIndicatorAndHeader packs the two bytes that precede a FU-A fragment's
// payload: the FU indicator (F=0, NRI from the source NAL, type=28) and the
// FU header (S, E, R=0, original NAL type).
func FUIndicatorAndHeader(nri byte, nalKind byte, start, end bool) (indicator, header byte) {
	const fuAType = 28
	indicator = ((nri & 0x03) << 5) | fuAType

	header = nalKind & 0x1f
	if start {
		header |= 0x80
	}
	if end {
		header |= 0x40
	}
	return
}
