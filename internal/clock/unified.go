package clock

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bassaes67/engine/shared"
)

// Mode selects which primary source the unified clock should discipline
// against; SYS is always available as the fallback regardless of Mode.
type Mode int

const (
	ModePTP Mode = iota
	ModeLivewire
	ModeSystem
	ModeAuto
)

const (
	defaultFailoverGrace    = 2 * time.Second
	defaultRelockHysteresis = 5 * time.Second
)

// Unified is the process-wide clock abstraction: it owns a primary source
// (PTP or Livewire), a System fallback that is always running, and fails
// over to SYS when the primary is unlocked for longer than a grace period,
// switching back only after a continuous-lock hysteresis.
type Unified struct {
	log shared.LoggerAdapter

	mode   Mode
	domain uint8
	iface  string

	ptp      *PTPClient
	livewire *LivewireClient
	sys      *SystemClock

	mu     sync.Mutex
	active Source

	primaryUnlockedSince time.Time
	primaryLockedSince   time.Time

	failoverGrace    time.Duration
	relockHysteresis time.Duration

	transitions atomic.Uint64

	running atomic.Bool
}

// NewUnified constructs a unified clock for the given mode; Init must be
// called to actually bring up sockets and the monitoring loop.
func NewUnified(log shared.LoggerAdapter, mode Mode, iface string, domain uint8) *Unified {
	return &Unified{
		log:              log,
		mode:             mode,
		domain:           domain,
		iface:            iface,
		sys:              NewSystemClock(sysClockDefaultInterval),
		active:           SourceSystem,
		failoverGrace:    defaultFailoverGrace,
		relockHysteresis: defaultRelockHysteresis,
	}
}

// Init starts the requested primary plus SYS, matching the spec's
// init(mode, iface, domain) contract.
func (u *Unified) Init(ctx context.Context) error {
	u.sys.Start(ctx, u.AdjustInterval)

	switch u.mode {
	case ModePTP, ModeAuto:
		u.ptp = NewPTPClient(u.log, u.iface, u.domain)
		if err := u.ptp.Start(ctx); err != nil {
			u.log.Error("ptp client failed to start", err)
		} else {
			u.active = SourcePTP
		}
	case ModeLivewire:
		addr := &net.UDPAddr{IP: net.IPv4zero, Port: 5004}
		u.livewire = NewLivewireClient(u.log, addr)
		if err := u.livewire.Start(ctx); err != nil {
			u.log.Error("livewire client failed to start", err)
		} else {
			u.active = SourceLivewire
		}
	case ModeSystem:
		u.active = SourceSystem
	}

	u.running.Store(true)
	go u.monitorLoop(ctx)
	return nil
}

func (u *Unified) Stop() {
	u.running.Store(false)
	if u.ptp != nil {
		u.ptp.Stop()
	}
	if u.livewire != nil {
		u.livewire.Stop()
	}
	u.sys.Stop()
}

// ActiveSource returns the currently selected source.
func (u *Unified) ActiveSource() Source {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.active
}

// IsLocked is true iff the active source reports locked.
func (u *Unified) IsLocked() bool {
	return u.activeSample().Locked
}

func (u *Unified) FrequencyPPB() float64 {
	return u.activeSample().FreqPPB
}

func (u *Unified) FrequencyPPM() float64 {
	return u.activeSample().FreqPPM()
}

// Transitions returns the monotonic count of active-source switches.
func (u *Unified) Transitions() uint64 {
	return u.transitions.Load()
}

// AdjustInterval folds the active source's frequency offset into base,
// the PLL correction the system clock's own tick, the TX path's pacer,
// and the RX path's playout pump all apply to their wall-clock sleep
// intervals.
func (u *Unified) AdjustInterval(base time.Duration) time.Duration {
	return AdjustInterval(base, u.activeSample())
}

// ApplyDefaults overrides the failover/relock timings and the system
// clock's tick interval from loaded process defaults; zero values leave
// the built-in default in place. Must be called before Init.
func (u *Unified) ApplyDefaults(failoverGrace, relockHysteresis, systemTick time.Duration) {
	if failoverGrace > 0 {
		u.failoverGrace = failoverGrace
	}
	if relockHysteresis > 0 {
		u.relockHysteresis = relockHysteresis
	}
	if systemTick > 0 {
		u.sys = NewSystemClock(systemTick)
	}
}

func (u *Unified) activeSample() Sample {
	u.mu.Lock()
	active := u.active
	u.mu.Unlock()

	switch active {
	case SourcePTP:
		if u.ptp != nil {
			return u.ptp.Sample()
		}
	case SourceLivewire:
		if u.livewire != nil {
			return u.livewire.Sample()
		}
	}
	return u.sys.Sample()
}

func (u *Unified) primarySample() (Sample, bool) {
	switch u.mode {
	case ModePTP, ModeAuto:
		if u.ptp != nil {
			return u.ptp.Sample(), true
		}
	case ModeLivewire:
		if u.livewire != nil {
			return u.livewire.Sample(), true
		}
	}
	return Sample{}, false
}

// monitorLoop implements the failover/hysteresis contract: if the
// configured primary is unlocked for longer than failoverGrace, switch
// active to SYS; once the primary has been continuously locked for
// relockHysteresis, switch back.
func (u *Unified) monitorLoop(ctx context.Context) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for u.running.Load() {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			primary, hasPrimary := u.primarySample()
			if !hasPrimary {
				continue
			}

			u.mu.Lock()
			if primary.Locked {
				if u.primaryLockedSince.IsZero() {
					u.primaryLockedSince = now
				}
				u.primaryUnlockedSince = time.Time{}

				if u.active == SourceSystem && now.Sub(u.primaryLockedSince) >= u.relockHysteresis {
					u.active = u.primarySource()
					u.transitions.Add(1)
					u.log.Info("unified clock relocked to primary")
				}
			} else {
				u.primaryLockedSince = time.Time{}
				if u.primaryUnlockedSince.IsZero() {
					u.primaryUnlockedSince = now
				}

				if u.active != SourceSystem && now.Sub(u.primaryUnlockedSince) >= u.failoverGrace {
					u.active = SourceSystem
					u.transitions.Add(1)
					u.log.Info("unified clock failed over to system clock")
				}
			}
			u.mu.Unlock()
		}
	}
}

func (u *Unified) primarySource() Source {
	switch u.mode {
	case ModeLivewire:
		return SourceLivewire
	default:
		return SourcePTP
	}
}
