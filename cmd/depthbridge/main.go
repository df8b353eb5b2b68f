// cmd/depthbridge/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/tamzrod/depth-bridge/internal/config"
	"github.com/tamzrod/depth-bridge/internal/metrics"
	"github.com/tamzrod/depth-bridge/internal/poller"
	"github.com/tamzrod/depth-bridge/internal/writer"
	"github.com/tamzrod/depth-bridge/internal/writer/dbus"
	"github.com/tamzrod/depth-bridge/internal/writer/mqtt"
)

func main() {
	if len(os.Args) > 2 {
		log.Fatal("usage: depthbridge [config.yaml]")
	}

	cfgPath := ""
	if len(os.Args) == 2 {
		cfgPath = os.Args[1]
	}

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}
	config.Normalize(cfg)

	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("depthbridge stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	version, err := readVersion(cfg.Service.VersionFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --------------------
	// Publish sinks
	// --------------------

	bus, err := dbus.Connect(cfg.Service.Name, logger)
	if err != nil {
		return err
	}
	sinks := []writer.Sink{bus}

	if cfg.MQTT.Enabled {
		m, err := mqtt.New(mqtt.Config{
			Server:      cfg.MQTT.Server,
			ClientID:    cfg.MQTT.ClientID,
			Username:    cfg.MQTT.Username,
			Password:    cfg.MQTT.Password,
			TopicPrefix: cfg.MQTT.TopicPrefix,
		})
		if err != nil {
			logger.Warn("mqtt mirror disabled", zap.Error(err))
		} else {
			sinks = append(sinks, m)
		}
	}

	w := writer.New(logger, sinks...)
	defer func() {
		if err := w.Close(); err != nil {
			logger.Warn("sink close failed", zap.Error(err))
		}
	}()

	items := writer.BuildItems(writer.Identity{
		ProcessName:     filepath.Base(os.Args[0]),
		ProcessVersion:  fmt.Sprintf("%s, running on %s", version, runtime.Version()),
		Connection:      cfg.Service.Connection,
		DeviceInstance:  cfg.Service.DeviceInstance,
		ProductName:     cfg.Service.ProductName,
		CustomName:      cfg.Service.CustomName,
		FirmwareVersion: version,
		FluidType:       cfg.Service.FluidType,
		Capacity:        cfg.Service.Capacity,
		Standard:        cfg.Service.Standard,
		PublishUnit:     cfg.Service.PublishUnit,
	})

	// --------------------
	// Sensor + poll loop
	// --------------------

	p, closeReader, err := poller.Build(cfg, items, w, logger)
	if err != nil {
		return fmt.Errorf("poller build failed: %w", err)
	}
	defer func() { _ = closeReader() }()

	if cfg.Metrics.Listen != "" {
		go metrics.Serve(ctx, cfg.Metrics.Listen, logger)
	}

	logger.Info("starting depth sensor bridge",
		zap.String("service", cfg.Service.Name),
		zap.String("version", version),
	)

	// Blocks until signal. Startup waits for the first reading before the
	// service is registered.
	if err := p.Run(ctx); err != nil {
		return err
	}

	logger.Info("shutting down")
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = lvl
	return zc.Build()
}

// readVersion reads the single-line version file. Relative paths resolve
// against the executable's directory. A missing file is fatal.
func readVersion(path string) (string, error) {
	if !filepath.IsAbs(path) {
		exe, err := os.Executable()
		if err == nil {
			path = filepath.Join(filepath.Dir(exe), path)
		}
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("version file: %w", err)
	}
	v := strings.TrimSpace(strings.ReplaceAll(string(b), "\n", ""))
	if v == "" {
		return "", fmt.Errorf("version file %s is empty", path)
	}
	return v, nil
}
