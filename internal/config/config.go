package config

import (
	"errors"
	"regexp"
	"strings"

	"go.uber.org/zap/zapcore"
)

type Config struct {
	LogLevel      zapcore.Level
	HomeAssistant HomeAssistantConfig `mapstructure:"homeassistant"`
	MQTT          MQTTConfig          `mapstructure:"mqtt"`

	Port                  uint   `mapstructure:"port"`
	HttpLog               bool   `mapstructure:"http_log"`
	RefreshIntervalMillis uint32 `mapstructure:"refresh_interval_millis"`
	SortLocale            string `mapstructure:"sort_locale"`
}

type HomeAssistantConfig struct {
	Host                 string
	Port                 uint
	TLS                  bool   `mapstructure:"tls"`
	AccessToken          string `mapstructure:"access_token"`
	RequestTimeoutMillis uint32 `mapstructure:"request_timeout_millis"`
}

type MQTTConfig struct {
	Enable    bool
	Host      string
	Port      int
	Username  string
	Password  string
	BaseTopic string `mapstructure:"base_topic"`
}

func CheckMQTTTopic(baseTopic string) (string, error) {
	// check and fix base topic
	lowerBaseTopic := strings.ToLower(baseTopic)
	baseTopicRegexp := regexp.MustCompile("^[a-z0-9_]+$")
	matches := baseTopicRegexp.FindAllStringSubmatch(lowerBaseTopic, 1)
	if len(matches) <= 0 {
		return "", errors.New("invalid topic. can only contain letters, numbers and underscores")
	}
	return lowerBaseTopic, nil
}
