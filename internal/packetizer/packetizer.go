// Package packetizer implements Stage 2 of the streaming pipeline: the RFC
// 6184 single-NAL/FU-A decision, SPS/PPS cache-and-resend policy, and RTP
// header state (sequence number, timestamp, marker), adapted from the
// STAP-A-aggregating H.264 packetizer this was derived from
// (internal/rtp/h264.go in the reference implementation) to the
// offset-addressed, configurable-FPS design this spec requires.
package packetizer

import (
	"h264streamer/internal/logging"
	"h264streamer/internal/nal"
	"h264streamer/internal/queue"
	"h264streamer/internal/rtpwire"
)

var log = logging.DefaultLogger.WithTag("packetizer")

// paramResendInterval is the number of NALs that are neither parameter sets
// nor IDR slices after which a cached SPS/PPS is proactively resent, per
// spec §4.2.
const paramResendInterval = 100

// fuAOverhead is the number of extra header bytes an FU-A fragment carries
// beyond the 12-byte RTP header: 1 FU indicator byte + 1 FU header byte.
const fuAOverhead = 2

// Packetizer turns a sequence of NAL descriptors into a sequence of RTP
// packet descriptors.
type Packetizer struct {
	in  *queue.Queue[nal.Nal]
	ssrc uint32
	mtu  uint32

	sequenceNumber uint16
	timestamp      uint32
	timestampStep  uint32

	currentNal     *nal.Nal
	fragmentOffset uint32

	cachedSPS *nal.Nal
	cachedPPS *nal.Nal

	pendingSPS bool
	pendingPPS bool

	// heldNal is the NAL already pulled off the queue (an IDR, or the NAL
	// that tripped the periodic resend threshold) that is waiting for a
	// scheduled SPS/PPS resend to drain before it is itself emitted. The
	// spec describes this as "recursing" before emitting the just-fetched
	// NAL; this field is what that recursion needs to remember across the
	// loop's iterations.
	heldNal *nal.Nal

	packetsSinceParamResend uint32
}

// New returns a Packetizer reading NALs from in. fps must be > 0; the RTP
// timestamp advances by 90000/fps ticks per emitted NAL.
func New(in *queue.Queue[nal.Nal], ssrc uint32, mtu uint32, fps int) *Packetizer {
	return &Packetizer{
		in:            in,
		ssrc:          ssrc,
		mtu:           mtu,
		timestampStep: 90000 / uint32(fps),
	}
}

// Next returns the next RTP packet descriptor, or ok=false once the input
// NAL queue is closed and drained and no fragment or cached parameter set
// remains pending.
func (pz *Packetizer) Next() (pkt Packet, ok bool, err error) {
	for {
		if pz.currentNal != nil {
			return pz.nextFragment(), true, nil
		}
		if pz.pendingSPS {
			pz.pendingSPS = false
			pz.packetsSinceParamResend = 0
			return pz.beginEmit(*pz.cachedSPS), true, nil
		}
		if pz.pendingPPS {
			pz.pendingPPS = false
			pz.packetsSinceParamResend = 0
			return pz.beginEmit(*pz.cachedPPS), true, nil
		}
		if pz.heldNal != nil {
			n := *pz.heldNal
			pz.heldNal = nil
			return pz.beginEmit(n), true, nil
		}

		n, got := pz.in.Get()
		if !got {
			return Packet{}, false, nil
		}

		switch n.Header.Kind() {
		case nal.KindSPS:
			cached := n
			pz.cachedSPS = &cached
			log.Debug("cached SPS, %d bytes", n.Size())
			return pz.beginEmit(n), true, nil

		case nal.KindPPS:
			cached := n
			pz.cachedPPS = &cached
			log.Debug("cached PPS, %d bytes", n.Size())
			return pz.beginEmit(n), true, nil

		case nal.KindSliceIDR:
			pz.pendingSPS = pz.cachedSPS != nil
			pz.pendingPPS = pz.cachedPPS != nil
			if pz.pendingSPS || pz.pendingPPS {
				log.Debug("IDR triggers parameter set resend (sps=%v, pps=%v)", pz.pendingSPS, pz.pendingPPS)
				held := n
				pz.heldNal = &held
				continue
			}
			return pz.beginEmit(n), true, nil

		default:
			pz.packetsSinceParamResend++
			if pz.packetsSinceParamResend >= paramResendInterval && (pz.cachedSPS != nil || pz.cachedPPS != nil) {
				pz.pendingSPS = pz.cachedSPS != nil
				pz.pendingPPS = pz.cachedPPS != nil
				pz.packetsSinceParamResend = 0
				log.Debug("periodic parameter set resend triggered (sps=%v, pps=%v)", pz.pendingSPS, pz.pendingPPS)
				held := n
				pz.heldNal = &held
				continue
			}
			return pz.beginEmit(n), true, nil
		}
	}
}

// beginEmit advances the RTP timestamp for a newly-scheduled NAL emission
// (a fresh NAL from the queue, or a parameter-set resend) and emits it as a
// SingleNal packet, or starts FU-A fragmentation and returns its first
// fragment.
func (pz *Packetizer) beginEmit(n nal.Nal) Packet {
	pz.timestamp += pz.timestampStep

	if n.Size() <= int64(pz.mtu)-rtpwire.HeaderSize {
		return Packet{
			Header:    pz.header(n.Header.IsVCL()),
			Kind:      SingleNal,
			NalOffset: n.StartOff,
			NalLen:    n.Size(),
		}
	}

	pz.currentNal = &n
	pz.fragmentOffset = 0
	return pz.nextFragment()
}

// nextFragment emits the next FU-A fragment of pz.currentNal.
func (pz *Packetizer) nextFragment() Packet {
	n := pz.currentNal
	payloadTotal := n.PayloadSize()
	remaining := payloadTotal - int64(pz.fragmentOffset)
	maxFragment := int64(pz.mtu) - rtpwire.HeaderSize - fuAOverhead
	take := remaining
	if take > maxFragment {
		take = maxFragment
	}

	start := pz.fragmentOffset == 0
	end := int64(pz.fragmentOffset)+take == payloadTotal

	fuIndicator, fuHeader := rtpwire.FUIndicatorAndHeader(n.Header.RefIdc(), n.Header.Kind().Byte(), start, end)

	pkt := Packet{
		Header:        pz.header(end && n.Header.IsVCL()),
		Kind:          FuA,
		FUIndicator:   fuIndicator,
		FUHeader:      fuHeader,
		PayloadOffset: n.StartOff + 1 + int64(pz.fragmentOffset),
		PayloadLen:    take,
	}

	pz.fragmentOffset += uint32(take)
	if end {
		pz.currentNal = nil
		pz.fragmentOffset = 0
	}
	return pkt
}

func (pz *Packetizer) header(marker bool) rtpwire.Header {
	h := rtpwire.Header{
		Marker:         marker,
		PayloadType:    rtpwire.PayloadTypeH264,
		SequenceNumber: pz.sequenceNumber,
		Timestamp:      pz.timestamp,
		SSRC:           pz.ssrc,
	}
	pz.sequenceNumber++
	return h
}
