// internal/poller/poller.go
package poller

import (
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/depth-bridge/internal/metrics"
	"github.com/tamzrod/depth-bridge/internal/sensor"
	"github.com/tamzrod/depth-bridge/internal/status"
	"github.com/tamzrod/depth-bridge/internal/writer"
)

// Published precision. /Level is also the dedup key.
const (
	LevelDecimals     = 2
	RemainingDecimals = 3
)

// warnEvery escalates the startup wait message every Nth attempt.
const warnEvery = 12

// Poller is the clock-driven bridge between sensor and service.
type Poller struct {
	cfg    Config
	reader LevelReader
	pub    Publisher
	health *status.Tracker
	log    *zap.Logger

	state       State
	publishUnit bool

	newWaiter func(primed bool) Waiter
}

// New creates a poller with immutable config.
func New(cfg Config, reader LevelReader, pub Publisher, log *zap.Logger) (*Poller, error) {
	if cfg.StartupWait <= 0 {
		return nil, errors.New("poller: startup wait must be > 0")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if cfg.ReconnectAfter < 0 {
		return nil, errors.New("poller: reconnect threshold must be >= 0")
	}
	if reader == nil || pub == nil {
		return nil, errors.New("poller: reader and publisher required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	p := &Poller{
		cfg:         cfg,
		reader:      reader,
		pub:         pub,
		health:      status.NewTracker(),
		log:         log.With(zap.String("component", "poller")),
		publishUnit: writer.HasPath(cfg.Items, writer.PathUnit),
	}
	p.newWaiter = p.defaultWaiter
	return p, nil
}

// State returns a copy of the bridge state.
func (p *Poller) State() State { return p.state }

// PollOnce performs exactly one poll cycle in the current phase.
// Only a failure to open the published service is returned; every
// sensor-side failure is logged and retried on the next cycle.
func (p *Poller) PollOnce() error {
	if !p.state.Primed {
		return p.prime()
	}
	p.tick()
	return nil
}

// prime tries connect+read once and opens the service on the first success,
// so consumers never see an empty service. A failed attempt drops the session.
func (p *Poller) prime() error {
	attempt := p.state.Attempts
	p.state.Attempts++

	if !p.reader.Connected() {
		if err := p.reader.Connect(); err != nil {
			p.logWaiting(attempt, err)
			return nil
		}
	}

	r := p.read()
	if !r.OK() {
		p.logWaiting(attempt, r.Err)
		// next attempt runs discovery again; the port may have moved
		p.closeReader()
		return nil
	}

	items := append([]writer.Item(nil), p.cfg.Items...)
	level := round(r.Level, LevelDecimals)
	writer.SetInitial(items, writer.PathLevel, level)
	writer.SetInitial(items, writer.PathRemaining, round(r.Level, RemainingDecimals))
	writer.SetInitial(items, writer.PathUnit, r.Unit)

	if err := p.pub.Open(items); err != nil {
		return fmt.Errorf("poller: open service: %w", err)
	}

	p.state.Primed = true
	p.state.LastLevel = level
	metrics.Level.Set(level)

	p.log.Info("first reading received, switching to interval polling",
		zap.Float64("level", level),
		zap.String("unit", r.Unit),
		zap.Duration("interval", p.cfg.Interval),
	)
	return nil
}

// tick is one steady-state cycle.
func (p *Poller) tick() {
	r := p.read()
	if !r.OK() {
		p.health.Failure(r.Err)
		p.maybeReconnect()
		return
	}

	if p.health.Success() {
		p.publishHealth()
	}

	var changes []writer.Change

	level := round(r.Level, LevelDecimals)
	if level != p.state.LastLevel {
		changes = append(changes,
			writer.Change{Path: writer.PathLevel, Value: level},
			writer.Change{Path: writer.PathRemaining, Value: round(r.Level, RemainingDecimals)},
		)
		if p.publishUnit {
			changes = append(changes, writer.Change{Path: writer.PathUnit, Value: r.Unit})
		}

		p.log.Info("level changed",
			zap.Float64("level", level),
			zap.Float64("previous", p.state.LastLevel),
			zap.String("unit", r.Unit),
		)
		p.state.LastLevel = level
		metrics.Level.Set(level)
	}

	// uint8 arithmetic wraps 255 -> 0
	p.state.UpdateIndex++
	changes = append(changes, writer.Change{Path: writer.PathUpdateIndex, Value: p.state.UpdateIndex})
	metrics.UpdateIndex.Set(float64(p.state.UpdateIndex))

	if err := p.pub.Write(changes...); err != nil {
		p.log.Warn("publish failed", zap.Error(err))
	}
}

// maybeReconnect tears the session down after ReconnectAfter consecutive
// failures and retries discovery+connect on every following failed tick.
func (p *Poller) maybeReconnect() {
	n := p.cfg.ReconnectAfter
	if n == 0 || int(p.health.Snapshot().FailStreak) < n {
		return
	}

	if p.reader.Connected() {
		p.log.Warn("too many consecutive read failures, reconnecting",
			zap.Int("failures", int(p.health.Snapshot().FailStreak)),
		)
		p.closeReader()
		if p.health.Disconnect() {
			p.publishHealth()
		}
	}

	err := p.reader.Connect()
	metrics.ObserveReconnect(err)
	if err != nil {
		p.log.Warn("reconnect failed", zap.Error(err))
		return
	}

	p.log.Info("sensor reconnected")
	if p.health.Reconnect() {
		p.publishHealth()
	}
}

func (p *Poller) closeReader() {
	if err := p.reader.Close(); err != nil {
		p.log.Debug("sensor close failed", zap.Error(err))
	}
}

func (p *Poller) read() sensor.Reading {
	start := time.Now()
	r := p.reader.ReadLevel()
	metrics.ObserveRead(time.Since(start), status.ErrorCode(r.Err))
	return r
}

func (p *Poller) publishHealth() {
	s := p.health.Snapshot()
	err := p.pub.Write(
		writer.Change{Path: writer.PathConnected, Value: s.Connected},
		writer.Change{Path: writer.PathStatus, Value: s.Status},
	)
	if err != nil {
		p.log.Warn("status publish failed", zap.Error(err))
	}
}

func (p *Poller) logWaiting(attempt int, err error) {
	if attempt%warnEvery != 0 || attempt == 0 {
		p.log.Info("waiting for first data",
			zap.Duration("retry_in", p.cfg.StartupWait),
			zap.Error(err),
		)
		return
	}
	p.log.Warn("still waiting for first data",
		zap.Duration("waited", time.Duration(attempt)*p.cfg.StartupWait),
		zap.Error(err),
	)
}

func round(v float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(v*pow) / pow
}
