package nal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeaderDecode(t *testing.T) {
	h := NewHeader(0x67) // 0110 0111: ref_idc=3, kind=7 (SPS)
	assert.EqualValues(t, 0, h.ForbiddenZeroBit())
	assert.EqualValues(t, 3, h.RefIdc())
	assert.Equal(t, KindSPS, h.Kind())
	assert.False(t, h.IsVCL())

	idr := NewHeader(0x65) // kind=5 (IDR slice)
	assert.Equal(t, KindSliceIDR, idr.Kind())
	assert.True(t, idr.IsVCL())
}

func TestNalSize(t *testing.T) {
	n := Nal{Header: NewHeader(0x65), StartOff: 10, EndOff: 13}
	assert.EqualValues(t, 3, n.Size())
	assert.EqualValues(t, 2, n.PayloadSize())
}
