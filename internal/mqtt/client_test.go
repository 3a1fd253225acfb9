package mqtt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"shellyboard/internal/config"
)

func testClient() *MQTTClient {
	return &MQTTClient{
		cfg: config.MQTTConfig{BaseTopic: "loremtopic"},
	}
}

func TestBridgeStateTopic(t *testing.T) {

	assert := assert.New(t)

	assert.Equal("loremtopic/bridge/state", testClient().BridgeStateTopic())
}

func TestDeviceStateTopic(t *testing.T) {

	assert := assert.New(t)

	assert.Equal("loremtopic/device/abc123/state", testClient().DeviceStateTopic("abc123"))
}

func TestDeviceStateTopicSanitizesId(t *testing.T) {

	assert := assert.New(t)

	assert.Equal("loremtopic/device/a_b_c/state", testClient().DeviceStateTopic("a/b+c"))
}

func TestBoardStateTopic(t *testing.T) {

	assert := assert.New(t)

	assert.Equal("loremtopic/board/state", testClient().BoardStateTopic())
}
