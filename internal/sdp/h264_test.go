package sdp

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildH264SessionWithParameterSets(t *testing.T) {
	sps := []byte{0x67, 0x42, 0x00, 0x1e}
	pps := []byte{0x68, 0xce, 0x3c, 0x80}

	session := BuildH264Session("127.0.0.1", 5004, sps, pps)
	text := session.String()

	assert.True(t, strings.HasPrefix(text, "v=0\r\n"))
	assert.Contains(t, text, "o=- 0 0 IN IP4 127.0.0.1\r\n")
	assert.Contains(t, text, "s=H264 RTP stream\r\n")
	assert.Contains(t, text, "c=IN IP4 127.0.0.1\r\n")
	assert.Contains(t, text, "t=0 0\r\n")
	assert.Contains(t, text, "m=video 5004 RTP/AVP 96\r\n")
	assert.Contains(t, text, "a=rtpmap:96 H264/90000\r\n")

	wantFmtp := "a=fmtp:96 packetization-mode=1; sprop-parameter-sets=" +
		base64.StdEncoding.EncodeToString(sps) + "," +
		base64.StdEncoding.EncodeToString(pps) + "\r\n"
	assert.Contains(t, text, wantFmtp)
}

func TestBuildH264SessionOmitsFmtpWithoutParameterSets(t *testing.T) {
	session := BuildH264Session("127.0.0.1", 5004, nil, nil)
	text := session.String()

	assert.NotContains(t, text, "a=fmtp")
	assert.Contains(t, text, "a=rtpmap:96 H264/90000\r\n")
}

func TestBuildH264SessionSPSOnly(t *testing.T) {
	sps := []byte{0x67, 0x42}
	session := BuildH264Session("127.0.0.1", 5004, sps, nil)
	text := session.String()

	wantFmtp := "a=fmtp:96 packetization-mode=1; sprop-parameter-sets=" +
		base64.StdEncoding.EncodeToString(sps) + "\r\n"
	assert.Contains(t, text, wantFmtp)
}
