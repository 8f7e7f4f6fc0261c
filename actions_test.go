package boschalarm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSetPanelDateRejectsYearOutOfRange(t *testing.T) {
	p := New(Config{Addr: "panel.local:7700"}, testLog())
	err := p.SetPanelDate(context.Background(), time.Date(2009, time.January, 1, 0, 0, 0, 0, time.UTC))
	assert.Error(t, err)
	var cfgErr *ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)

	err = p.SetPanelDate(context.Background(), time.Date(2038, time.January, 1, 0, 0, 0, 0, time.UTC))
	assert.Error(t, err)
	assert.ErrorAs(t, err, &cfgErr)
}

func TestSetOutputStateRejectsWideID(t *testing.T) {
	p := New(Config{Addr: "panel.local:7700"}, testLog())
	err := p.SetOutputActive(context.Background(), 0x100)
	assert.Error(t, err)
	var cfgErr *ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestAreaArmRejectedWithoutCapability(t *testing.T) {
	p := New(Config{Addr: "panel.local:7700"}, testLog())
	err := p.AreaArmPart(context.Background(), 1)
	assert.Error(t, err)
	var cfgErr *ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}
