// Package auth implements the brute-force-resistant admin PIN gate: a
// per-IP lockout map in process memory composed with constant-time secret
// comparison. Lockout state is intentionally not persisted — a restart grants
// amnesty.
package auth

import (
	"crypto/subtle"
	"errors"
	"sync"
	"time"

	"github.com/MrSnakeDoc/linkdrop/internal/errx"
	"github.com/MrSnakeDoc/linkdrop/internal/logger"
)

const (
	// MaxFailures is the number of wrong PINs before an IP is locked.
	MaxFailures = 6
	// LockDuration is how long a locked IP stays locked.
	LockDuration = time.Minute

	sweepInterval = time.Minute
	idleTTL       = 15 * time.Minute
)

var (
	errWrongPIN = errors.New("wrong pin")
	errLocked   = errors.New("ip locked out")
)

type attempt struct {
	failures  int
	lockUntil time.Time
	lastSeen  time.Time
}

// PinGate verifies the shared admin secret and throttles brute force per
// client IP. Safe for concurrent use.
type PinGate struct {
	secret string
	log    logger.Logger
	now    func() time.Time

	mu        sync.Mutex
	attempts  map[string]*attempt
	lastSweep time.Time
}

// Option configures a PinGate.
type Option func(*PinGate)

// WithClock overrides the gate's time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(g *PinGate) { g.now = now }
}

// NewPinGate builds the gate. An empty secret is accepted and means every
// verification fails (and still counts against the lockout) — the panel
// degrades to always-reject rather than crashing at startup.
func NewPinGate(secret string, log logger.Logger, opts ...Option) *PinGate {
	g := &PinGate{
		secret:   secret,
		log:      log,
		now:      time.Now,
		attempts: make(map[string]*attempt),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.lastSweep = g.now()
	if secret == "" {
		log.Warn("no admin PIN configured, verify-pin will reject every attempt")
	}
	return g
}

// Verify checks pin for the given client IP. It returns nil on success,
// an errx.RateLimited error (with retry-after) while the IP is locked, and
// an errx.Unauthorized error on a wrong PIN. A locked IP is rejected before
// the PIN is consulted at all.
func (g *PinGate) Verify(ip, pin string) error {
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	g.sweepMaybe(now)

	a := g.attempts[ip]
	if a != nil && a.lockUntil.After(now) {
		retry := a.lockUntil.Sub(now)
		return errx.Retry("auth.Verify", retry, errLocked)
	}

	if g.secret != "" && subtle.ConstantTimeCompare([]byte(pin), []byte(g.secret)) == 1 {
		delete(g.attempts, ip)
		return nil
	}

	if a == nil {
		a = &attempt{}
		g.attempts[ip] = a
	}
	a.failures++
	a.lastSeen = now
	if a.failures >= MaxFailures {
		a.failures = 0
		a.lockUntil = now.Add(LockDuration)
		g.log.Warn("admin pin lockout engaged",
			logger.String("ip", ip),
			logger.Duration("lock_for", LockDuration))
	}
	return errx.E("auth.Verify", errx.Unauthorized, errWrongPIN)
}

// sweepMaybe drops idle entries so the map cannot grow without bound.
// Caller must hold g.mu.
func (g *PinGate) sweepMaybe(now time.Time) {
	if now.Sub(g.lastSweep) < sweepInterval {
		return
	}
	for ip, a := range g.attempts {
		if now.Sub(a.lastSeen) > idleTTL && !a.lockUntil.After(now) {
			delete(g.attempts, ip)
		}
	}
	g.lastSweep = now
}
