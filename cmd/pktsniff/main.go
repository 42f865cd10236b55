//go:build linux

// Command pktsniff captures frames off one network interface, parses them
// against a protocol descriptor tree, and records every raw frame to a
// PCAP file until interrupted. It wires gnet/capture, gnet/sniffer,
// gnet/parser, gnet/netdev, and gnet/recorder into the one end-to-end
// pipeline the spec describes; optional delivery sinks are enabled
// through the same config file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sofiworker/pktcore/gconfig"
	"github.com/sofiworker/pktcore/glog"
	"github.com/sofiworker/pktcore/gnet/delivery/statsink"
	"github.com/sofiworker/pktcore/gnet/frame"
	"github.com/sofiworker/pktcore/gnet/netdev"
	"github.com/sofiworker/pktcore/gnet/parser"
	"github.com/sofiworker/pktcore/gnet/recorder"
	"github.com/sofiworker/pktcore/gnet/sniffer"
	"github.com/sofiworker/pktcore/gotel"
)

// Settings is the subset of pktsniff's behavior that comes from
// gconfig/the environment rather than the command line.
type Settings struct {
	Interface         string `json:"interface"`
	OutputPCAP        string `json:"output_pcap"`
	ProtocolEntryFile string `json:"protocol_entry_file"`
	SnapLen           uint32 `json:"snap_len"`
	StatsRedisAddr    string `json:"stats_redis_addr"`
	StatsStreamKey    string `json:"stats_stream_key"`
	TracingEnabled    bool   `json:"tracing_enabled"`
	PostProcess       string `json:"post_process"` // "", "gzip", or "encrypt"
	EncryptPassphrase string `json:"encrypt_passphrase"`
}

func loadSettings() (Settings, error) {
	cfg, err := gconfig.New(
		gconfig.WithName("pktsniff"),
		gconfig.WithType("yaml"),
		gconfig.WithEnvPrefix("PKTSNIFF"),
	)
	if err != nil {
		return Settings{}, fmt.Errorf("build config loader: %w", err)
	}
	cfg.SetDefault("output_pcap", "capture.pcap")
	cfg.SetDefault("snap_len", uint32(65535))
	cfg.SetDefault("stats_stream_key", "pktsniff:stats")

	var s Settings
	if err := cfg.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("load config: %w", err)
	}
	return s, nil
}

func main() {
	iface := flag.String("interface", "", "network interface to capture on (overrides config)")
	entry := flag.String("protocol-entry", "", "protocol descriptor entry file (overrides config)")
	out := flag.String("out", "", "PCAP output path (overrides config)")
	flag.Parse()

	appLogger, err := glog.NewLogger(glog.DefaultConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "pktsniff: build logger: %v\n", err)
		os.Exit(1)
	}

	settings, err := loadSettings()
	if err != nil {
		appLogger.Errorf("pktsniff: %v", err)
		os.Exit(1)
	}
	if *iface != "" {
		settings.Interface = *iface
	}
	if *entry != "" {
		settings.ProtocolEntryFile = *entry
	}
	if *out != "" {
		settings.OutputPCAP = *out
	}
	if settings.Interface == "" {
		appLogger.Errorf("pktsniff: no interface specified (flag -interface or config interface)")
		os.Exit(1)
	}

	if _, err := netdev.ByName(settings.Interface); err != nil {
		appLogger.Errorf("pktsniff: %v", err)
		os.Exit(1)
	}

	zapLogger := zap.NewExample()

	rec, err := recorder.Open(settings.OutputPCAP, zapLogger, settings.SnapLen)
	if err != nil {
		appLogger.Errorf("pktsniff: %v", err)
		os.Exit(1)
	}

	p := parser.New(settings.ProtocolEntryFile, zapLogger)
	s := sniffer.New(zapLogger)
	s.SetParser(p)

	if settings.StatsRedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: settings.StatsRedisAddr})
		defer redisClient.Close()
		s.SetStatsSink(statsink.New(redisClient, settings.StatsStreamKey, zapLogger))
	}

	if settings.TracingEnabled {
		provider := gotel.NewOTELProvider("pktsniff")
		defer provider.Shutdown(context.Background())
		s.SetTracer(provider)
	}

	callback := func(raw frame.RawFrame, parsed frame.ParsedPacket) {
		rec.Callback(raw, parsed)
	}

	if err := s.StartSniffing(settings.Interface, callback); err != nil {
		appLogger.Errorf("pktsniff: start sniffing: %v", err)
		os.Exit(1)
	}
	appLogger.Infof("pktsniff: capturing on %s, writing to %s", settings.Interface, settings.OutputPCAP)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	appLogger.Infof("pktsniff: shutting down")
	s.StopSniffing()

	written, dropped := rec.Stats()
	appLogger.Infof("pktsniff: wrote %d frames, dropped %d", written, dropped)

	if err := rec.Close(); err != nil {
		appLogger.Errorf("pktsniff: close capture file: %v", err)
		os.Exit(1)
	}

	switch settings.PostProcess {
	case "gzip":
		target, err := recorder.CompressFile(settings.OutputPCAP)
		if err != nil {
			appLogger.Errorf("pktsniff: %v", err)
			os.Exit(1)
		}
		appLogger.Infof("pktsniff: compressed capture to %s", target)
	case "encrypt":
		if settings.EncryptPassphrase == "" {
			appLogger.Errorf("pktsniff: post_process=encrypt requires encrypt_passphrase")
			os.Exit(1)
		}
		target, err := recorder.EncryptFile(settings.OutputPCAP, []byte(settings.EncryptPassphrase))
		if err != nil {
			appLogger.Errorf("pktsniff: %v", err)
			os.Exit(1)
		}
		appLogger.Infof("pktsniff: encrypted capture to %s", target)
	}
}
