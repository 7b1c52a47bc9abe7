package domain

import (
	"strings"
	"testing"

	"github.com/berfenger/pzem2mqtt/internal/meter"

	"github.com/stretchr/testify/assert"
)

func TestMeterDeviceIsStable(t *testing.T) {
	assert := assert.New(t)

	info := meter.Info{Transport: "serial", Address: 0xF8, Endpoint: "/dev/ttyUSB0"}
	a := MeterDevice(info)
	b := MeterDevice(info)
	assert.Equal(a, b)
	assert.True(strings.HasPrefix(a.Id, "pzem_meter_"))
	assert.Contains(a.Name, "0xF8")

	info.Address = 0x01
	assert.NotEqual(a.Id, MeterDevice(info).Id)
}

func TestMeterSensors(t *testing.T) {
	assert := assert.New(t)

	dev := MeterDevice(meter.Info{Transport: "test", Address: 0x01, Endpoint: "test"})
	sensors := MeterSensors(dev)

	ids := map[string]GenericSensor{}
	for _, s := range sensors {
		ids[s.Id] = s
		assert.Equal(uniqueId(dev.Id, s.Id), s.UniqueId)
	}
	assert.Len(ids, 8)
	assert.Equal(STATE_CLASS_TOTAL_INCREASING, ids[SENSOR_ID_ENERGY].StateClass)
	assert.Equal(SENSOR_TYPE_BINARY, ids[SENSOR_ID_POWER_ALARM].SensorType)
	assert.True(ids[SENSOR_ID_VOLTAGE].MeterAvailability)
	assert.False(ids[SENSOR_ID_METER_STATE].MeterAvailability)
}

func TestMeterButtons(t *testing.T) {
	dev := MeterDevice(meter.Info{Transport: "test", Address: 0x01})
	assert.Len(t, MeterButtons(dev, true), 1)
	assert.Empty(t, MeterButtons(dev, false))
}
