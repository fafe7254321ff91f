// Package nal implements Annex B NAL unit typing and scanning for H.264
// elementary streams.
package nal

// Kind identifies the type of an H.264 NAL unit (the low 5 bits of the NAL
// header byte). See ITU-T H.264 Table 7-1.
type Kind byte

// Byte returns the raw 5-bit NAL unit type value.
func (k Kind) Byte() byte {
	return byte(k)
}

const (
	KindSliceNonIDR   Kind = 1
	KindSliceDPA      Kind = 2
	KindSliceDPB      Kind = 3
	KindSliceDPC      Kind = 4
	KindSliceIDR      Kind = 5
	KindSEI           Kind = 6
	KindSPS           Kind = 7
	KindPPS           Kind = 8
	KindAUD           Kind = 9
	KindEndOfSequence Kind = 10
	KindEndOfStream   Kind = 11
	KindFiller        Kind = 12
)

// Header is the packed 8-bit NAL header byte: forbidden_zero_bit (1),
// nal_ref_idc (2), kind (5).
type Header byte

// NewHeader decodes a raw NAL header byte.
func NewHeader(b byte) Header {
	return Header(b)
}

// ForbiddenZeroBit returns bit 7.
func (h Header) ForbiddenZeroBit() byte {
	return byte(h) >> 7
}

// RefIdc returns nal_ref_idc, bits 6-5.
func (h Header) RefIdc() byte {
	return (byte(h) >> 5) & 0x03
}

// Kind returns the NAL unit type, bits 4-0.
func (h Header) Kind() Kind {
	return Kind(byte(h) & 0x1f)
}

// Byte returns the raw header byte.
func (h Header) Byte() byte {
	return byte(h)
}

// IsVCL reports whether this NAL carries Video Coding Layer data (slice
// types 1-5).
func (h Header) IsVCL() bool {
	switch h.Kind() {
	case KindSliceNonIDR, KindSliceDPA, KindSliceDPB, KindSliceDPC, KindSliceIDR:
		return true
	default:
		return false
	}
}

// Nal is an immutable descriptor referring to a byte range in a
// bytesource.Source: [StartOff, EndOff), where StartOff addresses the NAL
// header byte. The descriptor owns no bytes.
type Nal struct {
	Header   Header
	StartOff int64
	EndOff   int64
}

// Size returns the total length of the NAL, including its header byte.
func (n Nal) Size() int64 {
	return n.EndOff - n.StartOff
}

// PayloadSize returns the length of the NAL's payload, excluding the header
// byte.
func (n Nal) PayloadSize() int64 {
	return n.Size() - 1
}
