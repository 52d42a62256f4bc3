// Package tasks runs the scheduled background work a live server needs
// beyond its request/response paths: periodic world saves, a rotating
// announcement broadcast, and a live network-throughput sampler. It
// wraps go-co-op/gocron/v2 the way the teacher's internal/taskManager
// does: one package-level-style Scheduler, one RegisterXxx per
// concern, started together.
package tasks

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/obsidian-net/classicd/internal/metrics"
	"github.com/obsidian-net/classicd/pkg/log"
)

// Gateway is the slice of *server.Server the scheduler needs: saving
// every world, and broadcasting a line of chat to every connected
// player regardless of which world they're in.
type Gateway interface {
	SaveAll() error
	BroadcastServerMessage(message string) error
}

// Scheduler owns the gocron.Scheduler and every job registered on it.
type Scheduler struct {
	gw Gateway
	s  gocron.Scheduler

	announcements []string
	announceIndex int

	lastSample     time.Time
	lastTxPackets  float64
	lastRxPackets  float64
}

// New builds a Scheduler. It does not start anything until Start is
// called.
func New(gw Gateway) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("tasks: creating scheduler: %w", err)
	}
	return &Scheduler{gw: gw, s: s}, nil
}

// Start registers and begins every configured job:
//   - periodic save, every interval (skipped if interval <= 0)
//   - announcement rotation through messages, every interval (skipped
//     if messages is empty or interval <= 0)
//   - a net-info sampler reporting packet throughput, every interval
//     (skipped if interval <= 0)
//
// A heartbeat job slot is intentionally not registered here: nothing in
// this expansion's scope needs a liveness ping beyond what the TCP
// connection itself already provides.
func (t *Scheduler) Start(saveInterval time.Duration, announcements []string, announceInterval time.Duration, netInfoInterval time.Duration) error {
	if saveInterval > 0 {
		if err := t.registerSave(saveInterval); err != nil {
			return err
		}
	}
	if len(announcements) > 0 && announceInterval > 0 {
		t.announcements = announcements
		if err := t.registerAnnouncements(announceInterval); err != nil {
			return err
		}
	}
	if netInfoInterval > 0 {
		if err := t.registerNetInfo(netInfoInterval); err != nil {
			return err
		}
	}

	t.s.Start()
	return nil
}

// Shutdown stops the scheduler and waits for any in-flight job to
// finish.
func (t *Scheduler) Shutdown() error {
	return t.s.Shutdown()
}

func (t *Scheduler) registerSave(interval time.Duration) error {
	_, err := t.s.NewJob(gocron.DurationJob(interval), gocron.NewTask(func() {
		log.Debug("tasks: periodic save starting")
		if err := t.gw.SaveAll(); err != nil {
			log.Errorf("tasks: periodic save failed: %v", err)
			return
		}
		log.Debug("tasks: periodic save done")
	}))
	if err != nil {
		return fmt.Errorf("tasks: registering save job: %w", err)
	}
	return nil
}

// registerAnnouncements recovers original_source's announcements.py:
// a rotating broadcast, one message per tick, wrapping back to the
// start of the list.
func (t *Scheduler) registerAnnouncements(interval time.Duration) error {
	_, err := t.s.NewJob(gocron.DurationJob(interval), gocron.NewTask(func() {
		if len(t.announcements) == 0 {
			return
		}
		message := t.announcements[t.announceIndex%len(t.announcements)]
		t.announceIndex++
		if err := t.gw.BroadcastServerMessage("&e" + message); err != nil {
			log.Errorf("tasks: sending announcement: %v", err)
		}
	}))
	if err != nil {
		return fmt.Errorf("tasks: registering announcement job: %w", err)
	}
	return nil
}

// registerNetInfo recovers original_source's netinfo.py: a live
// tx/rx packets/sec sample, reported to the server log rather
// than the client's status bar (the CPE MessageTypes status-line
// placement netinfo.py used is out of scope here — see DESIGN.md).
func (t *Scheduler) registerNetInfo(interval time.Duration) error {
	t.lastSample = time.Now()

	_, err := t.s.NewJob(gocron.DurationJob(interval), gocron.NewTask(func() {
		now := time.Now()
		elapsed := now.Sub(t.lastSample).Seconds()
		if elapsed <= 0 {
			return
		}

		tx := metrics.SumCounterVec(metrics.PacketsSent)
		rx := metrics.SumCounterVec(metrics.PacketsReceived)

		txRate := (tx - t.lastTxPackets) / elapsed
		rxRate := (rx - t.lastRxPackets) / elapsed

		t.lastTxPackets, t.lastRxPackets, t.lastSample = tx, rx, now

		log.Infof("tasks: net-info tx=%.1f pkt/s rx=%.1f pkt/s", txRate, rxRate)
	}))
	if err != nil {
		return fmt.Errorf("tasks: registering net-info job: %w", err)
	}
	return nil
}
