package util

import (
	"github.com/berfenger/pzem2mqtt/internal/config"

	"go.uber.org/zap"
)

func LoadTestConfig() config.Config {
	return config.Config{
		LogLevel: zap.DebugLevel,
		Meter: config.MeterConfig{
			Transport:            config.TransportTest,
			Address:              0xF8,
			ByteTimeoutMillis:    100,
			RequestTimeoutMillis: 5000,
			ResetAck:             "legacy",
		},
		MQTT: config.MQTTConfig{
			Host:      "localhost",
			Port:      1883,
			BaseTopic: "pzem",
		},
		MonitorConfig: config.MonitorConfig{
			PollIntervalMillis: 5000,
		},
		Port: 8080,
	}
}
