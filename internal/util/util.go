package util

import (
	"shellyboard/internal/config"

	"go.uber.org/zap"
)

func LoadTestConfig() config.Config {
	return config.Config{
		LogLevel: zap.DebugLevel,
		HomeAssistant: config.HomeAssistantConfig{
			Host:                 "localhost",
			Port:                 8123,
			AccessToken:          "test-token",
			RequestTimeoutMillis: 2000,
		},
		MQTT: config.MQTTConfig{
			Host:      "localhost",
			Port:      1883,
			BaseTopic: "shellyboard",
		},
		Port:                  8080,
		RefreshIntervalMillis: 0,
		SortLocale:            "en",
	}
}
