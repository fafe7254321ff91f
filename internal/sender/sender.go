// Package sender implements Stage 4 of the streaming pipeline: bit-exact
// RTP wire serialization, 90 kHz pacing, and one UDP datagram per packet.
//
// The serialization and sequence/timestamp bookkeeping are adapted from
// rtpWriter in the reference implementation's internal/rtp package; the
// pacing loop has no counterpart there (the original streams live video
// over WebRTC's own congestion-controlled transport) and is built fresh
// from spec.
package sender

import (
	"net"
	"time"

	errors "golang.org/x/xerrors"

	"h264streamer/internal/bytesource"
	"h264streamer/internal/logging"
	"h264streamer/internal/packet"
	"h264streamer/internal/packetizer"
	"h264streamer/internal/queue"
)

var log = logging.DefaultLogger.WithTag("sender")

// clockRate is the RTP media clock rate for H.264, in Hz.
const clockRate = 90000

// maxPaceTicks is the sanity filter from spec §4.3: a timestamp delta of a
// full second or more indicates a discontinuity, not a real inter-frame
// gap, so pacing is skipped rather than sleeping for that long.
const maxPaceTicks = clockRate

// Sender consumes RTP packet descriptors from a queue and transmits each as
// one UDP datagram to a fixed destination.
type Sender struct {
	in   *queue.Queue[packetizer.Packet]
	src  *bytesource.Source
	conn *net.UDPConn

	writer *packet.Writer

	havePrev      bool
	prevTimestamp uint32
	startTime     time.Time
}

// New returns a Sender that reads payload bytes from src and writes
// serialized packets to conn. mtu bounds the serialization buffer; it must
// be at least as large as the largest packet the packetizer will produce.
func New(in *queue.Queue[packetizer.Packet], src *bytesource.Source, conn *net.UDPConn, mtu int) *Sender {
	return &Sender{
		in:     in,
		src:    src,
		conn:   conn,
		writer: packet.NewWriterSize(mtu),
	}
}

// Run consumes packets until the queue is closed and drained, pacing and
// sending each in turn. It returns nil on clean queue closure, or the
// first fatal serialization/send error encountered.
func (s *Sender) Run() error {
	count := 0
	for {
		pkt, ok := s.in.Get()
		if !ok {
			log.Debug("sender: queue closed, %d packets sent", count)
			return nil
		}
		if err := s.sendOne(pkt); err != nil {
			return err
		}
		count++
	}
}

func (s *Sender) sendOne(pkt packetizer.Packet) error {
	s.pace(pkt.Header.Timestamp)

	buf, err := s.serialize(pkt)
	if err != nil {
		return errors.Errorf("sender: serialize: %w", err)
	}

	if _, err := s.conn.Write(buf); err != nil {
		return errors.Errorf("sender: write: %w", err)
	}

	s.havePrev = true
	s.prevTimestamp = pkt.Header.Timestamp
	return nil
}

// pace sleeps, if necessary, so that the gap between consecutive sends
// matches the gap between their RTP timestamps on the 90 kHz media clock.
func (s *Sender) pace(timestamp uint32) {
	if s.havePrev {
		deltaTicks := timestamp - s.prevTimestamp // wraps modulo 2^32
		if deltaTicks > 0 && deltaTicks < maxPaceTicks {
			targetNs := time.Duration(deltaTicks) * time.Second / clockRate
			elapsed := time.Since(s.startTime)
			if targetNs > elapsed {
				time.Sleep(targetNs - elapsed)
			}
		}
	}
	s.startTime = time.Now()
}

// serialize writes pkt's wire bytes into the reused scratch buffer and
// returns the filled portion.
func (s *Sender) serialize(pkt packetizer.Packet) ([]byte, error) {
	s.writer.Reset()

	if err := pkt.Header.WriteTo(s.writer); err != nil {
		return nil, err
	}

	switch pkt.Kind {
	case packetizer.SingleNal:
		data, err := s.src.Slice(pkt.NalOffset, pkt.NalOffset+pkt.NalLen)
		if err != nil {
			return nil, err
		}
		if err := s.writer.WriteSlice(data); err != nil {
			return nil, err
		}

	case packetizer.FuA:
		s.writer.WriteByte(pkt.FUIndicator)
		s.writer.WriteByte(pkt.FUHeader)
		data, err := s.src.Slice(pkt.PayloadOffset, pkt.PayloadOffset+pkt.PayloadLen)
		if err != nil {
			return nil, err
		}
		if err := s.writer.WriteSlice(data); err != nil {
			return nil, err
		}
	}

	return s.writer.Bytes(), nil
}
