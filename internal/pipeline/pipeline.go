// Package pipeline wires the three streaming stages (NAL parser,
// packetizer, UDP sender) together through the bounded queues described in
// spec §2, and owns the cancellation point described in §5.
//
// This coordinator plays the role that peer_connection.go's lifecycle
// methods play in the reference implementation this was adapted from: one
// object owns the sub-components and is the single place that starts and
// tears them down.
package pipeline

import (
	"context"
	"net"
	"sync"

	errors "golang.org/x/xerrors"

	"h264streamer/internal/bytesource"
	"h264streamer/internal/logging"
	"h264streamer/internal/nal"
	"h264streamer/internal/packetizer"
	"h264streamer/internal/queue"
	"h264streamer/internal/sender"
)

var log = logging.DefaultLogger.WithTag("pipeline")

// Config carries the derived configuration from spec §6.
type Config struct {
	InputPath string
	FPS       int
	MTU       int
	SSRC      uint32
	Dest      string // host:port, e.g. "127.0.0.1:5004"

	// QueueCapacity bounds each of the two inter-stage queues (spec §4.4).
	QueueCapacity int
}

const defaultQueueCapacity = 1024

// Pipeline owns the byte source and runs the three streaming stages.
type Pipeline struct {
	cfg Config
	src *bytesource.Source
}

// Open maps the input file and returns a Pipeline ready to Run.
func Open(cfg Config) (*Pipeline, error) {
	if cfg.QueueCapacity == 0 {
		cfg.QueueCapacity = defaultQueueCapacity
	}
	src, err := bytesource.Open(cfg.InputPath)
	if err != nil {
		return nil, errors.Errorf("pipeline: %w", err)
	}
	return &Pipeline{cfg: cfg, src: src}, nil
}

// Source returns the pipeline's byte source, e.g. for scanning SPS/PPS
// before Run to build the SDP companion file.
func (p *Pipeline) Source() *bytesource.Source {
	return p.src
}

// Close releases the mapped input file.
func (p *Pipeline) Close() error {
	return p.src.Close()
}

// Run drives the pipeline to completion: it parses the input into NALs,
// packetizes them into RTP packets, and sends them paced over UDP to
// cfg.Dest from an ephemeral local port. Run returns when the input is
// exhausted, ctx is canceled, or a fatal error occurs in any stage.
func (p *Pipeline) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	conn, err := dialUDP(p.cfg.Dest)
	if err != nil {
		return errors.Errorf("pipeline: %w", err)
	}
	defer conn.Close()

	log.Debug("starting pipeline: %s -> %s, ssrc=0x%08x, mtu=%d", p.cfg.InputPath, p.cfg.Dest, p.cfg.SSRC, p.cfg.MTU)

	nalQueue := queue.New[nal.Nal](p.cfg.QueueCapacity)
	pktQueue := queue.New[packetizer.Packet](p.cfg.QueueCapacity)

	var (
		wg                        sync.WaitGroup
		parseErr, pktErr, sendErr error
	)
	wg.Add(3)

	go func() {
		defer wg.Done()
		defer nalQueue.Close()
		parseErr = p.runParser(ctx, nalQueue)
	}()

	go func() {
		defer wg.Done()
		defer pktQueue.Close()
		pktErr = p.runPacketizer(ctx, nalQueue, pktQueue)
	}()

	go func() {
		defer wg.Done()
		s := sender.New(pktQueue, p.src, conn, p.cfg.MTU)
		if err := s.Run(); err != nil {
			sendErr = err
			log.Error("sender stage failed, canceling pipeline: %v", err)
			// A fatal send error cancels the remaining stages so the
			// parser/packetizer don't block forever trying to hand off
			// work to a sender that has stopped draining.
			cancel()
		}
	}()

	wg.Wait()
	log.Debug("pipeline stopped")

	if parseErr != nil && !errors.Is(parseErr, context.Canceled) {
		return parseErr
	}
	if pktErr != nil && !errors.Is(pktErr, context.Canceled) {
		return pktErr
	}
	return sendErr
}

func (p *Pipeline) runParser(ctx context.Context, out *queue.Queue[nal.Nal]) error {
	parser := nal.NewParser(p.src)
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		n, ok, err := parser.Next()
		if err != nil {
			return errors.Errorf("parser: %w", err)
		}
		if !ok {
			return nil
		}
		if err := out.PutContext(ctx, n); err != nil {
			return err
		}
	}
}

func (p *Pipeline) runPacketizer(ctx context.Context, in *queue.Queue[nal.Nal], out *queue.Queue[packetizer.Packet]) error {
	pz := packetizer.New(in, p.cfg.SSRC, uint32(p.cfg.MTU), p.cfg.FPS)
	for {
		pkt, ok, err := pz.Next()
		if err != nil {
			return errors.Errorf("packetizer: %w", err)
		}
		if !ok {
			return nil
		}
		if err := out.PutContext(ctx, pkt); err != nil {
			return err
		}
	}
}

func dialUDP(dest string) (*net.UDPConn, error) {
	raddr, err := net.ResolveUDPAddr("udp", dest)
	if err != nil {
		return nil, errors.Errorf("resolve destination %s: %w", dest, err)
	}
	laddr := &net.UDPAddr{IP: net.IPv4zero, Port: 0}
	conn, err := net.DialUDP("udp", laddr, raddr)
	if err != nil {
		return nil, errors.Errorf("dial %s: %w", dest, err)
	}
	return conn, nil
}
