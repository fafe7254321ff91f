package main

import (
	"fmt"

	"github.com/fatih/color"
)

const helpString = `Low-latency H.264 Annex B to RTP/UDP streamer

Usage: h264streamer [OPTION]... INPUT_PATH [FPS]

Arguments:
  INPUT_PATH              Path to an Annex B H.264 elementary stream
  FPS                      Frame rate used to derive RTP timestamps (default: 30)

Network:
      --dest=HOST:PORT     RTP destination (default: 127.0.0.1:5004)
      --mtu=NUM            Maximum UDP payload size, in bytes (default: 1500)
      --ssrc=NUM           RTP synchronization source identifier (default: 0x00066e64)

Output:
      --sdp=FILE           Path to write the SDP companion file (default: INPUT_PATH.sdp)

Miscellaneous:
  -h, --help               Prints this help message and exits
`

// help prints usage information. The caller decides how to exit.
func help() {
	b := color.New(color.FgCyan)
	y := color.New(color.FgYellow)

	b.Printf("h264")
	y.Println("streamer")

	fmt.Println(helpString)
}
