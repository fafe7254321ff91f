package rtpwire

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"h264streamer/internal/packet"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{
		Marker:         true,
		PayloadType:    PayloadTypeH264,
		SequenceNumber: 0xABCD,
		Timestamp:      0x01020304,
		SSRC:           0x00066E64,
	}

	w := packet.NewWriterSize(HeaderSize)
	if err := h.WriteTo(w); err != nil {
		t.Fatal(err)
	}
	buf := w.Bytes()
	assert.Len(t, buf, HeaderSize)

	// version(2)=2 padding(1)=0 extension(1)=0 csrc_count(4)=0
	assert.Equal(t, byte(Version<<6), buf[0])
	// marker(1)=1 payload_type(7)=96
	assert.Equal(t, byte(0x80|PayloadTypeH264), buf[1])

	r := packet.NewReader(buf)
	got, err := ReadFrom(r)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, h, got)
}

func TestHeaderWriteToNoMarker(t *testing.T) {
	h := Header{PayloadType: PayloadTypeH264}
	w := packet.NewWriterSize(HeaderSize)
	if err := h.WriteTo(w); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, byte(PayloadTypeH264), w.Bytes()[1])
}

func TestReadFromTooShort(t *testing.T) {
	r := packet.NewReader(make([]byte, HeaderSize-1))
	_, err := ReadFrom(r)
	assert.Error(t, err)
}

func TestFUIndicatorAndHeaderStart(t *testing.T) {
	indicator, header := FUIndicatorAndHeader(3, 5, true, false)
	assert.Equal(t, byte((3<<5)|28), indicator)
	assert.Equal(t, byte(0x80|5), header)
}

func TestFUIndicatorAndHeaderEnd(t *testing.T) {
	indicator, header := FUIndicatorAndHeader(1, 5, false, true)
	assert.Equal(t, byte((1<<5)|28), indicator)
	assert.Equal(t, byte(0x40|5), header)
}

func TestFUIndicatorAndHeaderMiddle(t *testing.T) {
	_, header := FUIndicatorAndHeader(0, 5, false, false)
	assert.Equal(t, byte(5), header)
}
