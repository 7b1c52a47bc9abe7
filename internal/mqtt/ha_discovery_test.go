package mqtt

import (
	"encoding/json"
	"testing"

	"github.com/berfenger/pzem2mqtt/internal/core/domain"
	"github.com/berfenger/pzem2mqtt/internal/meter"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSensorDiscoveryMessage(t *testing.T) {
	assert := assert.New(t)

	c := testClient()
	dev := domain.MeterDevice(meter.Info{Transport: "serial", Address: 0xF8, Endpoint: "/dev/ttyUSB0"})

	var energy, alarm, meterState domain.GenericSensor
	for _, s := range domain.MeterSensors(dev) {
		switch s.Id {
		case domain.SENSOR_ID_ENERGY:
			energy = s
		case domain.SENSOR_ID_POWER_ALARM:
			alarm = s
		case domain.SENSOR_ID_METER_STATE:
			meterState = s
		}
	}

	msg := GenericSensorToHADiscoveryMessage(c, energy)
	assert.Equal("pzem/sensor/energy/state", msg.StateTopic)
	assert.Equal("kWh", msg.UnitOfMeasurement)
	assert.Equal("all", msg.AvailabilityMode)
	assert.Len(msg.Availability, 2)
	assert.Empty(msg.AvTopic)
	assert.Equal("homeassistant/sensor/"+dev.Id+"/energy/config", HADiscoverySensorTopic(c, energy))

	msg = GenericSensorToHADiscoveryMessage(c, alarm)
	assert.Equal("pzem/binary_sensor/power_alarm/state", msg.StateTopic)
	assert.Equal(MQTT_PAYLOAD_ON, msg.PayloadOn)

	msg = GenericSensorToHADiscoveryMessage(c, meterState)
	assert.Equal("pzem/meter/state", msg.StateTopic)
	assert.Equal(MQTT_PAYLOAD_ONLINE, msg.PayloadOn)
	assert.Equal("pzem/bridge/state", msg.AvTopic)
}

func TestButtonDiscoveryMessage(t *testing.T) {
	c := testClient()
	dev := domain.MeterDevice(meter.Info{Transport: "serial", Address: 0x01})
	buttons := domain.MeterButtons(dev, true)
	require.Len(t, buttons, 1)

	msg := GenericButtonToHADiscoveryMessage(c, buttons[0])
	payload, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, "pzem/button/reset_energy/press", decoded["command_topic"])
	assert.Equal(t, MQTT_PAYLOAD_PRESS, decoded["payload_press"])
	assert.NotContains(t, decoded, "state_topic")
	assert.Equal(t, "homeassistant/button/"+dev.Id+"/reset_energy/config", HADiscoveryButtonTopic(c, buttons[0]))
}
