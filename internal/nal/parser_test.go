package nal

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"h264streamer/internal/bytesource"
)

func openBytes(t *testing.T, data []byte) *bytesource.Source {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "nal")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Write(data); err != nil {
		t.Fatal(err)
	}
	f.Close()

	src, err := bytesource.Open(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { src.Close() })
	return src
}

// S1 input: SPS (4-byte start code), PPS (3-byte start code), IDR (4-byte
// start code).
func TestParserThreeNals(t *testing.T) {
	data := []byte{
		0x00, 0x00, 0x00, 0x01, 0x67, 0x42, // SPS, payload "42"
		0x00, 0x00, 0x01, 0x68, 0xCE, // PPS, payload "CE"
		0x00, 0x00, 0x00, 0x01, 0x65, 0xAA, 0xBB, // IDR, payload "AA BB"
	}
	src := openBytes(t, data)
	p := NewParser(src)

	n1, ok, err := p.Next()
	if err != nil {
		t.Fatal(err)
	}
	assert.True(t, ok)
	assert.Equal(t, KindSPS, n1.Header.Kind())
	assert.EqualValues(t, 2, n1.Size())

	n2, ok, err := p.Next()
	if err != nil {
		t.Fatal(err)
	}
	assert.True(t, ok)
	assert.Equal(t, KindPPS, n2.Header.Kind())
	assert.EqualValues(t, 2, n2.Size())

	n3, ok, err := p.Next()
	if err != nil {
		t.Fatal(err)
	}
	assert.True(t, ok)
	assert.Equal(t, KindSliceIDR, n3.Header.Kind())
	assert.EqualValues(t, 3, n3.Size())

	_, ok, err = p.Next()
	if err != nil {
		t.Fatal(err)
	}
	assert.False(t, ok)
}

// S3: no start code at all.
func TestParserNoStartCode(t *testing.T) {
	src := openBytes(t, []byte{0x01, 0x02, 0x03, 0x04, 0x05})
	p := NewParser(src)

	_, ok, err := p.Next()
	if err != nil {
		t.Fatal(err)
	}
	assert.False(t, ok)
}

func TestParserEmptyInput(t *testing.T) {
	src := openBytes(t, nil)
	p := NewParser(src)

	_, ok, err := p.Next()
	if err != nil {
		t.Fatal(err)
	}
	assert.False(t, ok)
}

func TestParserDanglingStartCode(t *testing.T) {
	// A start code with nothing after it: no header byte to read.
	src := openBytes(t, []byte{0x00, 0x00, 0x00, 0x01})
	p := NewParser(src)

	_, ok, err := p.Next()
	if err != nil {
		t.Fatal(err)
	}
	assert.False(t, ok)
}

func TestParserZeroLengthBody(t *testing.T) {
	// Two start codes back to back: the first NAL's header byte is
	// immediately followed by the next start code.
	data := []byte{
		0x00, 0x00, 0x01, 0x09,
		0x00, 0x00, 0x01, 0x67, 0x11,
	}
	src := openBytes(t, data)
	p := NewParser(src)

	n1, ok, err := p.Next()
	if err != nil {
		t.Fatal(err)
	}
	assert.True(t, ok)
	assert.EqualValues(t, 1, n1.Size())
	assert.Equal(t, KindAUD, n1.Header.Kind())

	n2, ok, err := p.Next()
	if err != nil {
		t.Fatal(err)
	}
	assert.True(t, ok)
	assert.Equal(t, KindSPS, n2.Header.Kind())
	assert.EqualValues(t, 2, n2.Size())
}

func TestFindParameterSets(t *testing.T) {
	data := []byte{
		0x00, 0x00, 0x00, 0x01, 0x67, 0x42,
		0x00, 0x00, 0x01, 0x68, 0xCE,
		0x00, 0x00, 0x00, 0x01, 0x65, 0xAA, 0xBB,
	}
	src := openBytes(t, data)

	sps, pps, err := FindParameterSets(src)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, []byte{0x67, 0x42}, sps)
	assert.Equal(t, []byte{0x68, 0xCE}, pps)
}

func TestFindParameterSetsMissing(t *testing.T) {
	src := openBytes(t, []byte{0x00, 0x00, 0x01, 0x65, 0xAA})
	sps, pps, err := FindParameterSets(src)
	if err != nil {
		t.Fatal(err)
	}
	assert.Nil(t, sps)
	assert.Nil(t, pps)
}
