package nal

import "h264streamer/internal/bytesource"

// FindParameterSets scans src for the first SPS and first PPS NAL (kinds 7
// and 8), per spec §6: "SPS/PPS are located in the input by scanning for
// NAL type 7 and 8 respectively after Annex B start codes." Either or both
// may come back nil if not present. The returned slices are copies: unlike
// the streaming pipeline, the SDP writer needs the bytes to outlive the
// byte source's lifetime.
func FindParameterSets(src *bytesource.Source) (sps, pps []byte, err error) {
	p := NewParser(src)
	for {
		n, ok, perr := p.Next()
		if perr != nil {
			return sps, pps, perr
		}
		if !ok {
			return sps, pps, nil
		}
		if sps != nil && pps != nil {
			return sps, pps, nil
		}

		switch n.Header.Kind() {
		case KindSPS:
			if sps == nil {
				sps, err = copyRange(src, n)
				if err != nil {
					return sps, pps, err
				}
			}
		case KindPPS:
			if pps == nil {
				pps, err = copyRange(src, n)
				if err != nil {
					return sps, pps, err
				}
			}
		}
	}
}

func copyRange(src *bytesource.Source, n Nal) ([]byte, error) {
	slice, err := src.Slice(n.StartOff, n.EndOff)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(slice))
	copy(out, slice)
	return out, nil
}
