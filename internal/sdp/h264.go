package sdp

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// BuildH264Session builds the SDP session description for the H.264 RTP
// stream this program sends, per spec §6: a single video media section at
// payload type 96, clock rate 90000, with an optional fmtp line carrying
// base64-encoded SPS/PPS when either was found in the input.
func BuildH264Session(host string, port int, sps, pps []byte) Session {
	media := Media{
		Type:   "video",
		Port:   port,
		Proto:  "RTP/AVP",
		Format: []string{"96"},
		Attributes: []Attribute{
			{Key: "rtpmap", Value: "96 H264/90000"},
		},
	}

	if fmtp, ok := buildFmtp(sps, pps); ok {
		media.Attributes = append(media.Attributes, Attribute{Key: "fmtp", Value: fmtp})
	}

	return Session{
		Version: 0,
		Origin: Origin{
			Username:       "-",
			SessionId:      "0",
			SessionVersion: 0,
			NetworkType:    "IN",
			AddressType:    "IP4",
			Address:        host,
		},
		Name: "H264 RTP stream",
		Connection: &Connection{
			NetworkType: "IN",
			AddressType: "IP4",
			Address:     host,
		},
		Time:  []Time{{}},
		Media: []Media{media},
	}
}

// buildFmtp returns the packetization-mode/sprop-parameter-sets fmtp value.
// ok is false when neither an SPS nor a PPS was found, in which case the
// fmtp line is omitted entirely, per spec §6.
func buildFmtp(sps, pps []byte) (value string, ok bool) {
	var sets []string
	if len(sps) > 0 {
		sets = append(sets, base64.StdEncoding.EncodeToString(sps))
	}
	if len(pps) > 0 {
		sets = append(sets, base64.StdEncoding.EncodeToString(pps))
	}
	if len(sets) == 0 {
		return "", false
	}
	return fmt.Sprintf("96 packetization-mode=1; sprop-parameter-sets=%s", strings.Join(sets, ",")), true
}
