package actor

import (
	"testing"

	"github.com/berfenger/pzem2mqtt/internal/config"
	"github.com/berfenger/pzem2mqtt/internal/core/domain"
	"github.com/berfenger/pzem2mqtt/internal/meter"

	"github.com/stretchr/testify/assert"
)

func TestDiscoveryEntities(t *testing.T) {

	assert := assert.New(t)

	info := meter.Info{Transport: config.TransportSerial, Address: 0xF8, Endpoint: "/dev/ttyUSB0"}
	sensors, buttons := DiscoveryEntities("pzem", info)

	assert.Equal(domain.SENSOR_ID_BRIDGE_STATE, sensors[0].Id)
	assert.Equal(1+len(domain.MeterSensors(domain.MeterDevice(info))), len(sensors))

	meterDevice := domain.MeterDevice(info)
	first := sensors[1]
	assert.Equal(meterDevice.Id, first.Device.Id)
	assert.Equal(domain.BridgeDevice("pzem").Id, first.Device.ViaDevice)
	assert.Equal("Peacefair", first.Device.Manufacturer)
	for _, s := range sensors[2:] {
		assert.Empty(s.Device.Manufacturer, s.Id)
		assert.Equal(meterDevice.Id, s.Device.Id)
	}

	assert.Len(buttons, 1)
	assert.Equal(domain.BUTTON_ID_RESET_ENERGY, buttons[0].Id)

	info.Transport = config.TransportGateway
	_, buttons = DiscoveryEntities("pzem", info)
	assert.Empty(buttons)
}
