package packetizer

import "h264streamer/internal/rtpwire"

// Kind distinguishes the two RTP payload shapes this packetizer produces.
type Kind int

const (
	// SingleNal carries one whole NAL unit as the RTP payload (RFC 6184 §5.6).
	SingleNal Kind = iota
	// FuA carries one fragment of a NAL unit (RFC 6184 §5.8).
	FuA
)

// Packet is an RTP packet descriptor: a fully-populated RTP header plus a
// byte range (or two, for FU-A) into the byte source that the sender reads
// positionally when it serializes the packet to the wire.
type Packet struct {
	Header rtpwire.Header
	Kind   Kind

	// Valid when Kind == SingleNal. The range [NalOffset, NalOffset+NalLen)
	// is the entire NAL (header byte and payload) as it appears in the
	// source file.
	NalOffset int64
	NalLen    int64

	// Valid when Kind == FuA.
	FUIndicator   byte
	FUHeader      byte
	PayloadOffset int64
	PayloadLen    int64
}
