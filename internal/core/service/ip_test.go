package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"shellyboard/internal/core/domain"
)

func TestResolveIPFromConfigurationURL(t *testing.T) {
	device := domain.DeviceRecord{Id: "d1", ConfigurationURL: "http://192.168.1.20/"}

	ip := ResolveIP(device, nil, noStates)

	assert.Equal(t, "192.168.1.20", ip)
}

func TestResolveIPConfigurationURLWinsOverSensor(t *testing.T) {
	device := domain.DeviceRecord{Id: "d1", ConfigurationURL: "http://192.168.1.20"}
	entities := []domain.EntityRecord{entity("sensor.relay_wifi_ip", "d1")}
	states := stateMap(map[string]string{"sensor.relay_wifi_ip": "10.0.0.9"})

	ip := ResolveIP(device, entities, states)

	assert.Equal(t, "192.168.1.20", ip)
}

func TestResolveIPRejectsLoopbackSentinels(t *testing.T) {
	for _, raw := range []string{"http://localhost:8123", "http://0.0.0.0/"} {
		device := domain.DeviceRecord{Id: "d1", ConfigurationURL: raw}
		assert.Empty(t, ResolveIP(device, nil, noStates), raw)
	}
}

func TestResolveIPManualParseFallback(t *testing.T) {
	// invalid port makes url.Parse fail, so the scheme/path strip path is used
	device := domain.DeviceRecord{Id: "d1", ConfigurationURL: "http://192.168.1.30:80a/index.html"}
	assert.Equal(t, "192.168.1.30", ResolveIP(device, nil, noStates))

	device = domain.DeviceRecord{Id: "d1", ConfigurationURL: "192.168.1.31/status"}
	assert.Equal(t, "192.168.1.31", ResolveIP(device, nil, noStates))
}

func TestResolveIPSensorPatternPriority(t *testing.T) {
	entities := []domain.EntityRecord{
		entity("sensor.relay_ip_address", "d1"),
		entity("sensor.relay_wifi_ip", "d1"),
	}
	states := stateMap(map[string]string{
		"sensor.relay_ip_address": "10.0.0.2",
		"sensor.relay_wifi_ip":    "10.0.0.1",
	})

	// wifi_ip outranks ip_address even though ip_address appears first
	ip := ResolveIP(domain.DeviceRecord{Id: "d1"}, entities, states)

	assert.Equal(t, "10.0.0.1", ip)
}

func TestResolveIPSkipsDeadAndMalformedSensors(t *testing.T) {
	entities := []domain.EntityRecord{
		entity("sensor.relay_wifi_ip", "d1"),
		entity("sensor.relay_ip_address", "d1"),
	}
	states := stateMap(map[string]string{
		"sensor.relay_wifi_ip":    domain.StateUnavailable,
		"sensor.relay_ip_address": "10.0.0.2",
	})

	ip := ResolveIP(domain.DeviceRecord{Id: "d1"}, entities, states)

	assert.Equal(t, "10.0.0.2", ip)
}

func TestResolveIPAnySensorWithDottedQuad(t *testing.T) {
	entities := []domain.EntityRecord{
		entity("sensor.relay_uptime", "d1"),
		entity("sensor.relay_address", "d1"),
	}
	states := stateMap(map[string]string{
		"sensor.relay_uptime":  "8723",
		"sensor.relay_address": "172.16.4.7",
	})

	ip := ResolveIP(domain.DeviceRecord{Id: "d1"}, entities, states)

	assert.Equal(t, "172.16.4.7", ip)
}

func TestResolveIPFromDeviceName(t *testing.T) {
	device := domain.DeviceRecord{Id: "d1", Name: "shelly1 (192.168.7.40)"}

	assert.Equal(t, "192.168.7.40", ResolveIP(device, nil, noStates))
}

func TestResolveIPAbsent(t *testing.T) {
	device := domain.DeviceRecord{Id: "d1", Name: "bedroom relay"}

	assert.Empty(t, ResolveIP(device, nil, noStates))
}

func TestIsIPv4(t *testing.T) {
	assert.True(t, isIPv4("192.168.1.1"))
	assert.True(t, isIPv4("8.8.8.8"))
	assert.False(t, isIPv4("300.1.1.1"))
	assert.False(t, isIPv4("192.168.1"))
	assert.False(t, isIPv4("::1"))
	assert.False(t, isIPv4("not-an-ip"))
}
