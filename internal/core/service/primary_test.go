package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shellyboard/internal/core/domain"
)

func TestPrimaryEntityPrefersLightOverSwitch(t *testing.T) {
	entities := []domain.EntityRecord{
		entity("switch.relay", "d1"),
		entity("light.lamp", "d1"),
	}
	states := stateMap(map[string]string{
		"switch.relay": "on",
		"light.lamp":   "off",
	})

	p := PrimaryEntity(entities, states)

	require.NotNil(t, p)
	assert.Equal(t, "light.lamp", p.EntityId)
}

func TestPrimaryEntityAvoidsChannelSuffix(t *testing.T) {
	entities := []domain.EntityRecord{
		entity("switch.foo_1", "d1"),
		entity("switch.foo_2", "d1"),
		entity("switch.foo", "d1"),
	}
	states := stateMap(map[string]string{
		"switch.foo_1": "on",
		"switch.foo_2": "off",
		"switch.foo":   "on",
	})

	p := PrimaryEntity(entities, states)

	require.NotNil(t, p)
	assert.Equal(t, "switch.foo", p.EntityId)
}

func TestPrimaryEntityChannelOnlyFallsBackToFirst(t *testing.T) {
	entities := []domain.EntityRecord{
		entity("switch.foo_1", "d1"),
		entity("switch.foo_channel_2", "d1"),
	}
	states := stateMap(map[string]string{
		"switch.foo_1":         "on",
		"switch.foo_channel_2": "on",
	})

	p := PrimaryEntity(entities, states)

	require.NotNil(t, p)
	assert.Equal(t, "switch.foo_1", p.EntityId)
}

func TestPrimaryEntitySkipsDiagnostics(t *testing.T) {
	// diagnostics come first in group order and still must not win
	entities := []domain.EntityRecord{
		diagnosticEntity("sensor.relay_rssi", "d1"),
		diagnosticEntity("sensor.relay_uptime", "d1"),
		entity("sensor.temp", "d1"),
	}
	states := stateMap(map[string]string{
		"sensor.relay_rssi":   "-50",
		"sensor.relay_uptime": "12345",
		"sensor.temp":         "21.5",
	})

	p := PrimaryEntity(entities, states)

	require.NotNil(t, p)
	assert.Equal(t, "sensor.temp", p.EntityId)
}

func TestPrimaryEntityDiagnosticsOnlyFallsBackToRawList(t *testing.T) {
	entities := []domain.EntityRecord{
		diagnosticEntity("sensor.relay_rssi", "d1"),
		diagnosticEntity("button.relay_reboot", "d1"),
	}

	p := PrimaryEntity(entities, noStates)

	require.NotNil(t, p)
	assert.Equal(t, "sensor.relay_rssi", p.EntityId)
}

func TestPrimaryEntityStatelessDomainReturnsImmediately(t *testing.T) {
	// the light domain matches but has no live state; it still wins over the
	// stateful sensor because domain priority is decided first
	entities := []domain.EntityRecord{
		entity("sensor.temp", "d1"),
		entity("light.lamp", "d1"),
	}
	states := stateMap(map[string]string{
		"sensor.temp": "21.5",
	})

	p := PrimaryEntity(entities, states)

	require.NotNil(t, p)
	assert.Equal(t, "light.lamp", p.EntityId)
}

func TestPrimaryEntitySentinelStatesAreNotLive(t *testing.T) {
	entities := []domain.EntityRecord{
		entity("switch.foo_1", "d1"),
		entity("switch.foo", "d1"),
	}
	states := stateMap(map[string]string{
		"switch.foo_1": "on",
		"switch.foo":   domain.StateUnavailable,
	})

	p := PrimaryEntity(entities, states)

	require.NotNil(t, p)
	assert.Equal(t, "switch.foo_1", p.EntityId)
}

func TestPrimaryEntityNoEntities(t *testing.T) {
	assert.Nil(t, PrimaryEntity(nil, noStates))
}

func TestPrimaryEntityUnknownDomainFallsThrough(t *testing.T) {
	entities := []domain.EntityRecord{
		entity("valve.water", "d1"),
		entity("number.threshold", "d1"),
	}
	states := stateMap(map[string]string{
		"number.threshold": "5",
	})

	p := PrimaryEntity(entities, states)

	require.NotNil(t, p)
	assert.Equal(t, "number.threshold", p.EntityId)
}
