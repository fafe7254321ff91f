package main

import (
	flag "github.com/spf13/pflag"
)

var (
	flagMTU  int
	flagDest string
	flagSSRC uint32
	flagSDP  string
	flagHelp bool
)

// defaultSSRC matches spec §6's fixed literal.
const defaultSSRC = 0x00066E64

func init() {
	flag.IntVar(&flagMTU, "mtu", 1500, "Maximum UDP payload size, in bytes")
	flag.StringVar(&flagDest, "dest", "127.0.0.1:5004", "RTP destination address")
	flag.Uint32Var(&flagSSRC, "ssrc", defaultSSRC, "RTP synchronization source identifier")
	flag.StringVar(&flagSDP, "sdp", "", "Path to write the SDP companion file (default: <input_path>.sdp)")
	flag.BoolVarP(&flagHelp, "help", "h", false, "Print usage information and exit")
}
