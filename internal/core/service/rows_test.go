package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shellyboard/internal/core/domain"
)

func shellyDevice(id, name, configURL string) domain.DeviceRecord {
	return domain.DeviceRecord{
		Id:               id,
		Name:             name,
		Model:            "Shelly 1PM",
		Manufacturer:     "Shelly",
		ConfigurationURL: configURL,
		Connections:      []domain.Connection{{Kind: "mac", Value: "AA:BB:CC:00:11:22"}},
	}
}

func TestBuildRowsOneRowPerDevice(t *testing.T) {
	devices := []domain.DeviceRecord{
		shellyDevice("d1", "relay one", "http://192.168.1.10"),
		shellyDevice("d2", "relay two", "http://192.168.1.11"),
		{Id: "d3", Name: "thermostat", Manufacturer: "Acme"},
	}
	entities := []domain.EntityRecord{
		entity("switch.relay_one", "d1"),
		entity("binary_sensor.relay_one_cloud", "d1"),
		entity("switch.relay_two", "d2"),
	}
	states := stateMap(map[string]string{
		"switch.relay_one":              "on",
		"binary_sensor.relay_one_cloud": "on",
		"switch.relay_two":              "off",
	})

	rows := BuildRows(devices, entities, states)

	require.Len(t, rows, 2)
	assert.Equal(t, "d1", rows[0].DeviceId)
	assert.Equal(t, "switch.relay_one", rows[0].PrimaryEntityId)
	assert.Equal(t, "192.168.1.10", rows[0].IP)
	assert.Equal(t, "AA:BB:CC:00:11:22", rows[0].MAC)
	assert.Equal(t, domain.TriTrue, rows[0].Cloud)
	assert.Equal(t, "http://192.168.1.10", rows[0].ConfigurationURL)
	assert.Equal(t, "d2", rows[1].DeviceId)
	assert.Equal(t, domain.TriUnknown, rows[1].Cloud)
}

func TestBuildRowsDeduplicatesByIP(t *testing.T) {
	// same physical unit registered twice under different device ids
	devices := []domain.DeviceRecord{
		shellyDevice("d1", "relay", "http://192.168.1.10"),
		shellyDevice("d2", "relay (old entry)", "http://192.168.1.10"),
	}

	rows := BuildRows(devices, nil, noStates)

	require.Len(t, rows, 1)
	assert.Equal(t, "d1", rows[0].DeviceId)
}

func TestBuildRowsDeduplicatesByDeviceId(t *testing.T) {
	devices := []domain.DeviceRecord{
		shellyDevice("d1", "relay", ""),
		shellyDevice("d1", "relay", ""),
	}

	rows := BuildRows(devices, nil, noStates)

	assert.Len(t, rows, 1)
}

func TestBuildRowsIdempotentAndIPUnique(t *testing.T) {
	devices := []domain.DeviceRecord{
		shellyDevice("d1", "relay one", "http://192.168.1.10"),
		shellyDevice("d2", "relay two", ""),
		shellyDevice("d3", "relay three", "http://192.168.1.12"),
	}
	entities := []domain.EntityRecord{
		entity("sensor.relay_two_wifi_ip", "d2"),
		entity("update.relay_two_firmware_update", "d2"),
	}
	states := stateMap(map[string]string{
		"sensor.relay_two_wifi_ip":         "192.168.1.11",
		"update.relay_two_firmware_update": "on",
	})

	first := BuildRows(devices, entities, states)
	second := BuildRows(devices, entities, states)

	assert.Equal(t, first, second)

	seen := make(map[string]bool)
	for _, r := range first {
		if r.IP == "" {
			continue
		}
		assert.False(t, seen[r.IP], "duplicate ip %s", r.IP)
		seen[r.IP] = true
	}
}

func TestBuildRowsFirmwareFlagsNeverBothTrue(t *testing.T) {
	devices := []domain.DeviceRecord{shellyDevice("d1", "relay", "")}
	entities := []domain.EntityRecord{entity("update.relay_firmware_update", "d1")}

	for _, state := range []string{"on", "off", domain.StateUnknown} {
		states := stateMap(map[string]string{"update.relay_firmware_update": state})
		rows := BuildRows(devices, entities, states)
		require.Len(t, rows, 1)
		both := rows[0].FirmwareUpdateAvailable && rows[0].FirmwareUpToDate == domain.TriTrue
		assert.False(t, both, "state %q", state)
	}
}

func TestBuildRowsSynthesizesConfigurationURL(t *testing.T) {
	devices := []domain.DeviceRecord{shellyDevice("d1", "relay", "")}
	entities := []domain.EntityRecord{entity("sensor.relay_wifi_ip", "d1")}
	states := stateMap(map[string]string{"sensor.relay_wifi_ip": "10.1.2.3"})

	rows := BuildRows(devices, entities, states)

	require.Len(t, rows, 1)
	assert.Equal(t, "http://10.1.2.3", rows[0].ConfigurationURL)
}
