package boschalarm

import (
	"crypto/tls"
	"errors"
	"time"
)

// Port is the conventional Mode 2 automation TLS port. Spec.md doesn't
// name one; callers override via Config.Addr as needed, same as
// cs104.Config callers override cs104.Port/PortSecure.
const Port = 7700

// Range bounds for the supervisor's tunable intervals, mirroring
// cs104/config.go's per-field Min/Max constants and the "0 means apply
// spec default" convention of its Valid().
const (
	SupervisorTickMin = 1 * time.Second
	SupervisorTickMax = 10 * time.Minute

	IdleTimeoutMin = 10 * time.Second
	IdleTimeoutMax = 1 * time.Hour

	SkewWindowMin = 5 * time.Second
	SkewWindowMax = 10 * time.Minute

	PollIntervalMin = 100 * time.Millisecond
	PollIntervalMax = 1 * time.Minute
)

// Config carries connection, authentication, and supervisor settings for
// one Panel. The zero value is invalid; call Valid (or Connect, which
// calls it) to fill in defaults.
type Config struct {
	// Addr is host:port of the panel's automation TLS listener.
	Addr string

	// TLSConfig is used to dial the panel. A nil TLSConfig defaults to
	// the lenient policy spec.md 6 requires implementations to allow
	// (InsecureSkipVerify: true), since panels ship self-signed certs
	// with no stable SAN.
	TLSConfig *tls.Config

	// InstallerCode and AutomationCode are the passcodes spec.md 4.4
	// requires per panel family; which ones are required depends on the
	// negotiated family.
	InstallerCode  string
	AutomationCode string

	// SupervisorTick is how often the supervisor wakes to check
	// liveness and attempt reconnects. Zero applies the spec default
	// (30s).
	SupervisorTick time.Duration
	// IdleTimeout tears down a connection that has decoded nothing for
	// this long. Zero applies the spec default (3min).
	IdleTimeout time.Duration
	// SkewWindow is how long the pending FIFO may stay continuously
	// non-empty before the supervisor runs a skew probe. Zero applies
	// the spec default (1min).
	SkewWindow time.Duration
	// PollInterval is the status re-poll period used when the panel
	// doesn't support subscriptions. Zero applies the spec default (1s).
	PollInterval time.Duration
}

// Valid fills in unset fields with spec.md defaults and rejects
// out-of-range overrides, the same shape as cs104.Config.Valid().
func (c *Config) Valid() error {
	if c == nil {
		return errors.New("boschalarm: nil config")
	}
	if c.Addr == "" {
		return &ConfigurationError{Reason: "Addr is required"}
	}

	if c.SupervisorTick == 0 {
		c.SupervisorTick = 30 * time.Second
	} else if c.SupervisorTick < SupervisorTickMin || c.SupervisorTick > SupervisorTickMax {
		return &ConfigurationError{Reason: "SupervisorTick out of range"}
	}

	if c.IdleTimeout == 0 {
		c.IdleTimeout = 3 * time.Minute
	} else if c.IdleTimeout < IdleTimeoutMin || c.IdleTimeout > IdleTimeoutMax {
		return &ConfigurationError{Reason: "IdleTimeout out of range"}
	}

	if c.SkewWindow == 0 {
		c.SkewWindow = 1 * time.Minute
	} else if c.SkewWindow < SkewWindowMin || c.SkewWindow > SkewWindowMax {
		return &ConfigurationError{Reason: "SkewWindow out of range"}
	}

	if c.PollInterval == 0 {
		c.PollInterval = 1 * time.Second
	} else if c.PollInterval < PollIntervalMin || c.PollInterval > PollIntervalMax {
		return &ConfigurationError{Reason: "PollInterval out of range"}
	}

	if c.TLSConfig == nil {
		c.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return nil
}

// DefaultConfig returns a Config with every tunable at its spec.md
// default, TLS pinned to the documented lenient policy, and Addr/codes
// left for the caller to fill in.
func DefaultConfig() Config {
	return Config{
		TLSConfig:      &tls.Config{InsecureSkipVerify: true},
		SupervisorTick: 30 * time.Second,
		IdleTimeout:    3 * time.Minute,
		SkewWindow:     1 * time.Minute,
		PollInterval:   1 * time.Second,
	}
}
