package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validMeter() MeterConfig {
	return MeterConfig{
		Transport:            TransportSerial,
		Address:              0xF8,
		ByteTimeoutMillis:    100,
		RequestTimeoutMillis: 5000,
		ResetAck:             "legacy",
		Serial: SerialConfig{
			Device:   "/dev/ttyUSB0",
			BaudRate: 9600,
		},
	}
}

func TestCheckMQTTTopic(t *testing.T) {
	assert := assert.New(t)

	topic, err := CheckMQTTTopic("PZEM_kitchen")
	assert.NoError(err)
	assert.Equal("pzem_kitchen", topic)

	_, err = CheckMQTTTopic("pzem/kitchen")
	assert.Error(err)
	_, err = CheckMQTTTopic("")
	assert.Error(err)
}

func TestCheckMeter(t *testing.T) {
	assert := assert.New(t)

	assert.NoError(CheckMeter(validMeter()))

	c := validMeter()
	c.Address = 0
	assert.Error(CheckMeter(c))

	c = validMeter()
	c.Address = 0xF9
	assert.Error(CheckMeter(c))

	c = validMeter()
	c.Address = 0x01
	assert.NoError(CheckMeter(c))

	c = validMeter()
	c.Serial.Device = ""
	assert.Error(CheckMeter(c))

	c = validMeter()
	c.Serial.Driver = "ftdi"
	assert.Error(CheckMeter(c))

	c = validMeter()
	c.Transport = TransportGateway
	assert.Error(CheckMeter(c))
	c.Gateway.URL = "rtuovertcp://10.0.0.5:502"
	assert.NoError(CheckMeter(c))

	c = validMeter()
	c.Transport = "bluetooth"
	assert.Error(CheckMeter(c))

	c = validMeter()
	c.RequestTimeoutMillis = 1000
	assert.Error(CheckMeter(c))

	c = validMeter()
	c.ResetAck = "always"
	assert.Error(CheckMeter(c))
}
