package config

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
)

const (
	TransportSerial  = "serial"
	TransportGateway = "gateway"
	TransportTest    = "test"
)

type Config struct {
	LogLevel      zapcore.Level
	Meter         MeterConfig   `mapstructure:"meter"`
	MQTT          MQTTConfig    `mapstructure:"mqtt"`
	MonitorConfig MonitorConfig `mapstructure:"monitor"`
	Port          uint          `mapstructure:"port"`
	HttpLog       bool          `mapstructure:"http_log"`
}

type MeterConfig struct {
	// Transport is one of serial, gateway or test
	Transport            string
	Address              uint8
	ByteTimeoutMillis    uint32        `mapstructure:"byte_timeout_millis"`
	RequestTimeoutMillis uint32        `mapstructure:"request_timeout_millis"`
	ResetAck             string        `mapstructure:"reset_ack"`
	Serial               SerialConfig  `mapstructure:"serial"`
	Gateway              GatewayConfig `mapstructure:"gateway"`
}

type SerialConfig struct {
	Device   string
	BaudRate int `mapstructure:"baud_rate"`
	Driver   string
}

type GatewayConfig struct {
	URL           string `mapstructure:"url"`
	TimeoutMillis uint32 `mapstructure:"timeout_millis"`
}

type MonitorConfig struct {
	PollIntervalMillis uint32 `mapstructure:"poll_interval_millis"`
	ResetEnergyCron    string `mapstructure:"reset_energy_cron"`
}

type MQTTConfig struct {
	Host              string
	Port              int
	Username          string
	Password          string
	BaseTopic         string `mapstructure:"base_topic"`
	HADiscoveryEnable bool   `mapstructure:"ha_discovery_enable"`
	HADiscoveryTopic  string `mapstructure:"ha_discovery_topic"`
}

func (c MeterConfig) ByteTimeout() time.Duration {
	return time.Duration(c.ByteTimeoutMillis) * time.Millisecond
}

// RequestTimeout bounds a whole bus call as seen by the meter actor.
func (c MeterConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMillis) * time.Millisecond
}

func (c GatewayConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMillis) * time.Millisecond
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

// CheckMeter validates the meter section. Address 0 is broadcast and gets
// no reply, addresses above 0xF8 are reserved.
func CheckMeter(c MeterConfig) error {
	switch c.Transport {
	case TransportSerial:
		if c.Serial.Device == "" {
			return errors.New("config param meter.serial.device is required for serial transport")
		}
		switch c.Serial.Driver {
		case "", "bugst", "tarm":
		default:
			return errors.New("config param meter.serial.driver should be bugst or tarm")
		}
	case TransportGateway:
		if c.Gateway.URL == "" {
			return errors.New("config param meter.gateway.url is required for gateway transport")
		}
	case TransportTest:
	default:
		return errors.New("config param meter.transport should be serial, gateway or test")
	}
	if c.Address == 0 || c.Address > 0xF8 {
		return errors.New("config param meter.address should be within 1-247 or 248 (0xF8)")
	}
	if c.ByteTimeoutMillis == 0 {
		return errors.New("config param meter.byte_timeout_millis should be > 0")
	}
	// a full read is 25 bytes, each allowed one byte timeout
	if c.RequestTimeoutMillis < 25*c.ByteTimeoutMillis {
		return errors.New("config param meter.request_timeout_millis should be >= 25 * meter.byte_timeout_millis")
	}
	switch strings.ToLower(c.ResetAck) {
	case "", "legacy", "echo", "full":
	default:
		return errors.New("config param meter.reset_ack should be legacy, echo or full")
	}
	return nil
}
