package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/fatih/color"
	flag "github.com/spf13/pflag"

	"h264streamer/internal/nal"
	"h264streamer/internal/pipeline"
	"h264streamer/internal/sdp"
)

const defaultFPS = 30
const maxFPS = 90000

func main() {
	flag.Parse()

	if flagHelp {
		help()
		os.Exit(0)
	}

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "h264streamer: missing INPUT_PATH")
		fmt.Fprintln(os.Stderr, "Try 'h264streamer --help' for usage.")
		os.Exit(1)
	}
	inputPath := flag.Arg(0)

	fps := defaultFPS
	if flag.NArg() >= 2 {
		n, err := strconv.Atoi(flag.Arg(1))
		if err != nil {
			log.Fatalf("h264streamer: invalid FPS %q: %v", flag.Arg(1), err)
		}
		fps = n
	}
	if fps <= 0 || fps > maxFPS {
		log.Fatalf("h264streamer: FPS must be in (0, %d], got %d", maxFPS, fps)
	}

	sdpPath := flagSDP
	if sdpPath == "" {
		sdpPath = inputPath + ".sdp"
	}

	cfg := pipeline.Config{
		InputPath: inputPath,
		FPS:       fps,
		MTU:       flagMTU,
		SSRC:      flagSSRC,
		Dest:      flagDest,
	}

	pl, err := pipeline.Open(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pl.Close()

	sps, pps, err := nal.FindParameterSets(pl.Source())
	if err != nil {
		log.Fatal(err)
	}

	host, portStr, err := net.SplitHostPort(flagDest)
	if err != nil {
		log.Fatalf("h264streamer: invalid --dest %q: %v", flagDest, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("h264streamer: invalid --dest port %q: %v", portStr, err)
	}

	session := sdp.BuildH264Session(host, port, sps, pps)
	if err := os.WriteFile(sdpPath, []byte(session.String()), 0o644); err != nil {
		log.Fatalf("h264streamer: writing SDP file: %v", err)
	}

	banner(inputPath, fps, sdpPath)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := pl.Run(ctx); err != nil {
		log.Fatal(err)
	}
}

func banner(inputPath string, fps int, sdpPath string) {
	b := color.New(color.FgCyan)
	y := color.New(color.FgYellow)

	b.Printf("h264streamer ")
	y.Printf("streaming %s", inputPath)
	fmt.Println()
	fmt.Printf("  source:      %s (%d fps)\n", inputPath, fps)
	fmt.Printf("  destination: %s\n", flagDest)
	fmt.Printf("  mtu:         %d\n", flagMTU)
	fmt.Printf("  ssrc:        0x%08x\n", flagSSRC)
	fmt.Printf("  sdp:         %s\n", sdpPath)
}
