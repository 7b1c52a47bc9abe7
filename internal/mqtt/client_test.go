package mqtt

import (
	"testing"

	"github.com/berfenger/pzem2mqtt/internal/config"

	"github.com/stretchr/testify/assert"
)

func testClient() *MQTTClient {
	cfg := config.Config{
		MQTT: config.MQTTConfig{
			Host:      "localhost",
			Port:      1883,
			BaseTopic: "pzem",
		},
	}
	return CreateMQTTClient(&cfg, OptsFromConfig(&cfg), nil, nil)
}

func TestButtonCommandParse(t *testing.T) {

	assert := assert.New(t)

	r := buttonCommandExtractor("loremTopic")
	cmd, err := parseButtonCommand(r, "loremTopic/button/reset_energy/press", []byte("PRESS\n"))

	assert.NoError(err)
	assert.Equal("reset_energy", cmd.DeviceId, "device extract")
	assert.Equal(COMMAND_BUTTON, cmd.Command)
	assert.Equal(MQTT_PAYLOAD_PRESS, cmd.Payload)
}

func TestButtonCommandParseFail(t *testing.T) {

	assert := assert.New(t)

	r := buttonCommandExtractor("loremTopic")

	_, err := parseButtonCommand(r, "loremTopic/button/reset_energy/state", nil)
	assert.Error(err, "no matches")

	_, err = parseButtonCommand(r, "otherTopic/loremTopic/button/reset_energy/press", nil)
	assert.Error(err, "anchored to base topic")
}

func TestTopics(t *testing.T) {

	assert := assert.New(t)

	c := testClient()
	assert.Equal("pzem/bridge/state", c.BridgeStateTopic())
	assert.Equal("pzem/meter/state", c.MeterStateTopic())
	assert.Equal("pzem/sensor/voltage/state", c.SensorStateTopic("voltage"))
	assert.Equal("pzem/binary_sensor/power_alarm/state", c.BinarySensorStateTopic("power_alarm"))
	assert.Equal("pzem/button/reset_energy/press", c.ButtonCommandTopic("reset_energy"))
	assert.Equal("pzem/button/+/press", c.commandTopic())
	assert.Equal("homeassistant", c.HADiscoveryTopic())
}

func TestOptsFromConfigWill(t *testing.T) {
	cfg := config.Config{
		MQTT: config.MQTTConfig{Host: "broker", Port: 1884, BaseTopic: "kitchen"},
	}
	opts := OptsFromConfig(&cfg)

	assert.True(t, opts.WillEnabled)
	assert.True(t, opts.WillRetained)
	assert.Equal(t, "kitchen/bridge/state", opts.WillTopic)
	assert.Equal(t, []byte(MQTT_PAYLOAD_OFFLINE), opts.WillPayload)
	assert.Equal(t, "tcp://broker:1884", opts.Servers[0].String())
}
