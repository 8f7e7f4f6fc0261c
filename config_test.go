package boschalarm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidFillsDefaults(t *testing.T) {
	cfg := Config{Addr: "panel.local:7700"}
	assert.NoError(t, cfg.Valid())
	assert.Equal(t, 30*time.Second, cfg.SupervisorTick)
	assert.Equal(t, 3*time.Minute, cfg.IdleTimeout)
	assert.Equal(t, 1*time.Minute, cfg.SkewWindow)
	assert.Equal(t, 1*time.Second, cfg.PollInterval)
	assert.NotNil(t, cfg.TLSConfig)
	assert.True(t, cfg.TLSConfig.InsecureSkipVerify)
}

func TestConfigValidRequiresAddr(t *testing.T) {
	cfg := Config{}
	err := cfg.Valid()
	assert.Error(t, err)
	var cfgErr *ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestConfigValidRejectsOutOfRangeOverride(t *testing.T) {
	cfg := Config{Addr: "panel.local:7700", SupervisorTick: SupervisorTickMax * 2}
	assert.Error(t, cfg.Valid())
}

func TestDefaultConfigIsAlreadyValid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Addr = "panel.local:7700"
	assert.NoError(t, cfg.Valid())
}
