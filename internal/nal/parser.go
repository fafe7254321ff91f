package nal

import (
	"bytes"

	"h264streamer/internal/bytesource"
	"h264streamer/internal/logging"
)

var log = logging.DefaultLogger.WithTag("parser")

// startCode is the 3-byte Annex B start code suffix shared by both the
// 3-byte (00 00 01) and 4-byte (00 00 00 01) forms. A 4-byte start code is
// recognized by an extra zero byte immediately preceding this suffix; it
// takes precedence (matches the longest form) when computing where a start
// code begins, but the NAL header byte always sits immediately after the
// matched 3-byte suffix either way.
var startCode = []byte{0x00, 0x00, 0x01}

// Parser scans an Annex B elementary stream into a lazy sequence of NAL
// descriptors, without copying any payload bytes.
type Parser struct {
	src   *bytesource.Source
	cur   *bytesource.Cursor
	done  bool
	count int
}

// NewParser returns a Parser that scans src from the beginning.
func NewParser(src *bytesource.Source) *Parser {
	log.Debug("scanning %d bytes", src.Len())
	return &Parser{src: src, cur: src.Cursor()}
}

// Next returns the next NAL in the stream. ok is false once the stream is
// exhausted (no further NALs, and no error).
func (p *Parser) Next() (n Nal, ok bool, err error) {
	if p.done {
		return Nal{}, false, nil
	}

	// Skip-to-start-code: find where the next NAL begins.
	basePos := p.cur.Pos()
	data := p.cur.Remaining()
	idx := bytes.Index(data, startCode)
	if idx == -1 {
		p.done = true
		log.Debug("%d NALs parsed, no further start code", p.count)
		return Nal{}, false, nil
	}
	headerOff := basePos + int64(idx) + int64(len(startCode))

	if headerOff >= p.src.Len() {
		// Dangling start code with no header byte following it: nothing to
		// decode, and nothing more to scan.
		p.done = true
		log.Debug("%d NALs parsed, dangling start code at EOF", p.count)
		return Nal{}, false, nil
	}

	headerByte, err := p.src.ByteAt(headerOff)
	if err != nil {
		p.done = true
		log.Error("reading NAL header at offset %d: %v", headerOff, err)
		return Nal{}, false, err
	}

	// Scan-to-next-start-code, starting just past the header byte so that a
	// start code immediately following the header byte (a zero-length body)
	// is still recognized.
	p.cur.Seek(headerOff + 1)
	tailBase := p.cur.Pos()
	tail := p.cur.Remaining()
	idx2 := bytes.Index(tail, startCode)

	var endOff int64
	if idx2 == -1 {
		endOff = tailBase + int64(len(tail))
		p.done = true
		p.cur.Seek(endOff)
	} else {
		scStart := tailBase + int64(idx2)
		if idx2 >= 1 && tail[idx2-1] == 0x00 {
			// The 3-byte suffix is preceded by an extra zero: this is really
			// a 4-byte start code beginning one byte earlier.
			scStart--
		}
		endOff = scStart
		p.cur.Seek(endOff)
	}

	p.count++
	return Nal{
		Header:   NewHeader(headerByte),
		StartOff: headerOff,
		EndOff:   endOff,
	}, true, nil
}
