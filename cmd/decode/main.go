// Command decode reads a WAV file and prints one FT8/FT4 decode per decoded
// message, in the format "HHMMSS SNR TIME_OFFSET_S FREQ_HZ ~ TEXT". The
// -list and -dev flags are accepted, but this build has no capture-device
// support: -list prints that enumeration is not implemented and -dev exits
// with an error.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cwsl/ft8dec/ft8"
	"github.com/cwsl/ft8dec/internal/wavio"
)

func main() {
	ft4 := flag.Bool("ft4", false, "decode FT4 instead of FT8")
	list := flag.Bool("list", false, "report audio capture device enumeration (not implemented in this build) and exit")
	dev := flag.String("dev", "", "live capture device name (streaming mode)")
	configPath := flag.String("config", "", "path to a YAML decoder config file")
	metricsAddr := flag.String("metrics", "", "address to serve Prometheus metrics on, e.g. :9100 (optional)")
	flag.Parse()

	if *list {
		listDevices()
		return
	}

	cfg, err := loadConfig(*configPath, *ft4)
	if err != nil {
		log.Printf("decode: %v", err)
		os.Exit(1)
	}

	var metrics *ft8.Metrics
	if *metricsAddr != "" {
		metrics = ft8.NewMetrics()
		go serveMetrics(*metricsAddr)
	}

	if *dev != "" {
		log.Printf("decode: live capture device %q requested, but no AudioSource implementation is wired into this build", *dev)
		os.Exit(1)
	}

	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: decode [-ft4] [-config PATH] [-metrics ADDR] (-list | -dev DEV | WAVPATH)")
		os.Exit(1)
	}

	if err := decodeFile(args[0], cfg, metrics); err != nil {
		log.Printf("decode: %v", err)
		os.Exit(1)
	}
}

func loadConfig(path string, ft4 bool) (ft8.FT8Config, error) {
	var cfg ft8.FT8Config
	var err error
	if path != "" {
		cfg, err = ft8.LoadConfig(path)
		if err != nil {
			return ft8.FT8Config{}, &ft8.ConfigError{Kind: ft8.ErrConfig, Err: err}
		}
	} else {
		cfg = ft8.DefaultFT8Config()
	}

	if ft4 {
		cfg.Protocol = ft8.ProtocolFT4
	}
	return cfg, nil
}

func decodeFile(path string, cfg ft8.FT8Config, metrics *ft8.Metrics) error {
	wavFile, err := wavio.Load(path)
	if err != nil {
		return &ft8.AudioError{Kind: ft8.ErrAudio, Err: err}
	}

	orch := ft8.NewOrchestrator(cfg, metrics)
	results, err := orch.DecodeWAV(wavFile.Samples, wavFile.SampleRate)
	if err != nil {
		return err
	}

	for _, r := range results {
		printResult(r)
	}
	return nil
}

// printResult writes one decode in WSJT-X's familiar decode-log format:
// HHMMSS SNR TIME_OFFSET_S FREQ_HZ ~ TEXT
func printResult(r ft8.DecodeResult) {
	fmt.Printf("%02d%02d%02d %4.0f %5.1f %4.0f ~ %s\n",
		r.Hour, r.Minute, r.Second, r.SNR, r.TimeOffset, r.FreqHz, r.Text)
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("decode: metrics server on %s: %v", addr, err)
	}
}

// listDevices reports that live-device enumeration is out of this build's
// scope: it would require an SDR/capture-device integration layer this
// decoder core does not implement.
func listDevices() {
	fmt.Println("live audio device enumeration is not implemented in this build")
}
