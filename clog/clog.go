// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package clog

import (
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
)

// LogProvider RFC5424 log message levels Critical, Error, Warn and Debug
type LogProvider interface {
	Critical(format string, v ...interface{})
	Error(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Debug(format string, v ...interface{})
}

// Clog Log internal debugging implementation
type Clog struct {
	provider LogProvider
	// is log output enabled,1: enable, 0: disable
	has uint32
}

// NewLogger creates a new Clog backed by a text slog.Logger writing to
// stdout, tagged with component=prefix. Output is disabled until LogMode
// is called, matching the reference implementation's quiet-by-default
// behavior.
func NewLogger(prefix string) Clog {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	return Clog{
		defaultLogger{slog.New(handler).With("component", prefix)},
		0,
	}
}

// NewNoop returns a Clog backed by a default slog provider writing to
// stdout, with output disabled. Safe to use wherever a caller doesn't
// care about diagnostics, since logging stays disabled until
// LogMode(true) is called.
func NewNoop() Clog {
	return Clog{defaultLogger{slog.New(slog.NewTextHandler(os.Stdout, nil))}, 0}
}

// LogMode set enable or disable log output when you has set provider
func (sf *Clog) LogMode(enable bool) {
	if enable {
		atomic.StoreUint32(&sf.has, 1)
	} else {
		atomic.StoreUint32(&sf.has, 0)
	}
}

// SetLogProvider set provider provider
func (sf *Clog) SetLogProvider(p LogProvider) {
	if p != nil {
		sf.provider = p
	}
}

// Critical Log CRITICAL level message.
func (sf Clog) Critical(format string, v ...interface{}) {
	if atomic.LoadUint32(&sf.has) == 1 {
		sf.provider.Critical(format, v...)
	}
}

// Error Log ERROR level message.
func (sf Clog) Error(format string, v ...interface{}) {
	if atomic.LoadUint32(&sf.has) == 1 {
		sf.provider.Error(format, v...)
	}
}

// Warn Log WARN level message.
func (sf Clog) Warn(format string, v ...interface{}) {
	if atomic.LoadUint32(&sf.has) == 1 {
		sf.provider.Warn(format, v...)
	}
}

// Debug Log DEBUG level message.
func (sf Clog) Debug(format string, v ...interface{}) {
	if atomic.LoadUint32(&sf.has) == 1 {
		sf.provider.Debug(format, v...)
	}
}

// default log, a thin adapter over log/slog so output carries structured
// component tagging instead of a bare text prefix.
type defaultLogger struct {
	*slog.Logger
}

var _ LogProvider = (*defaultLogger)(nil)

// Critical logs at slog's Error level with a "critical" marker — slog has
// no level above Error.
func (sf defaultLogger) Critical(format string, v ...interface{}) {
	sf.Logger.Error("critical: " + fmt.Sprintf(format, v...))
}

// Error Log ERROR level message.
func (sf defaultLogger) Error(format string, v ...interface{}) {
	sf.Logger.Error(fmt.Sprintf(format, v...))
}

// Warn Log WARN level message.
func (sf defaultLogger) Warn(format string, v ...interface{}) {
	sf.Logger.Warn(fmt.Sprintf(format, v...))
}

// Debug Log DEBUG level message.
func (sf defaultLogger) Debug(format string, v ...interface{}) {
	sf.Logger.Debug(fmt.Sprintf(format, v...))
}
