package mqtt

import (
	"fmt"

	"github.com/berfenger/pzem2mqtt/internal/core/domain"
)

type HADiscoveryConfig struct {
	Device            HADiscoveryDevice `json:"device"`
	StateTopic        string            `json:"state_topic,omitempty"`
	CommandTopic      string            `json:"command_topic,omitempty"`
	StateClass        string            `json:"state_class,omitempty"`
	DeviceClass       string            `json:"device_class,omitempty"`
	UnitOfMeasurement string            `json:"unit_of_measurement,omitempty"`
	AvTopic           string            `json:"availability_topic,omitempty"`
	Availability      []HAAvailability  `json:"availability,omitempty"`
	AvailabilityMode  string            `json:"availability_mode,omitempty"`
	EntityCategory    string            `json:"entity_category,omitempty"`
	Name              string            `json:"name"`
	UniqueId          string            `json:"unique_id"`
	Platform          string            `json:"platform"`
	EnabledByDefault  *bool             `json:"enabled_by_default,omitempty"`
	PayloadOn         string            `json:"payload_on,omitempty"`
	PayloadOff        string            `json:"payload_off,omitempty"`
	PayloadPress      string            `json:"payload_press,omitempty"`
	Icon              string            `json:"icon,omitempty"`
}

type HAAvailability struct {
	Topic string `json:"topic"`
}

type HADiscoveryDevice struct {
	Id           []string `json:"identifiers"`
	Manufacturer string   `json:"manufacturer,omitempty"`
	Version      string   `json:"sw_version,omitempty"`
	Model        string   `json:"model,omitempty"`
	Name         string   `json:"name,omitempty"`
	ViaDevice    string   `json:"via_device,omitempty"`
}

func HADiscoverySensorTopic(client *MQTTClient, sensor domain.GenericSensor) string {
	return fmt.Sprintf("%s/%s/%s/%s/config", client.HADiscoveryTopic(), sensor.SensorType, sensor.Device.Id, sensor.Id)
}

func HADiscoveryButtonTopic(client *MQTTClient, button domain.GenericButton) string {
	return fmt.Sprintf("%s/button/%s/%s/config", client.HADiscoveryTopic(), button.Device.Id, button.Id)
}

func GenericSensorToHADiscoveryMessage(client *MQTTClient, sensor domain.GenericSensor) HADiscoveryConfig {
	dev := device(sensor.Device)
	var topic string
	switch {
	case sensor.Id == domain.SENSOR_ID_BRIDGE_STATE:
		topic = client.BridgeStateTopic()
	case sensor.Id == domain.SENSOR_ID_METER_STATE:
		topic = client.MeterStateTopic()
	case sensor.SensorType == domain.SENSOR_TYPE_SENSOR:
		topic = client.SensorStateTopic(sensor.Id)
	case sensor.SensorType == domain.SENSOR_TYPE_BINARY:
		topic = client.BinarySensorStateTopic(sensor.Id)
	}
	disConfig := HADiscoveryConfig{
		Device:            dev,
		StateTopic:        topic,
		StateClass:        sensor.StateClass,
		DeviceClass:       sensor.DeviceClass,
		UnitOfMeasurement: sensor.UnitOfMeasurement,
		EntityCategory:    sensor.EntityCategory,
		Name:              sensor.Name,
		UniqueId:          sensor.UniqueId,
		Icon:              sensor.Icon,
		EnabledByDefault:  sensor.EnabledByDefault,
		Platform:          "mqtt",
	}
	if sensor.MeterAvailability {
		disConfig.Availability = meterAvailability(client)
		disConfig.AvailabilityMode = "all"
	} else {
		disConfig.AvTopic = client.BridgeStateTopic()
	}
	switch {
	case sensor.Id == domain.SENSOR_ID_BRIDGE_STATE || sensor.Id == domain.SENSOR_ID_METER_STATE:
		disConfig.PayloadOn = MQTT_PAYLOAD_ONLINE
		disConfig.PayloadOff = MQTT_PAYLOAD_OFFLINE
	case sensor.SensorType == domain.SENSOR_TYPE_BINARY:
		disConfig.PayloadOn = MQTT_PAYLOAD_ON
		disConfig.PayloadOff = MQTT_PAYLOAD_OFF
	}
	return disConfig
}

func GenericButtonToHADiscoveryMessage(client *MQTTClient, button domain.GenericButton) HADiscoveryConfig {
	dev := device(button.Device)
	disConfig := HADiscoveryConfig{
		Device:           dev,
		CommandTopic:     client.ButtonCommandTopic(button.Id),
		Availability:     meterAvailability(client),
		AvailabilityMode: "all",
		DeviceClass:      button.DeviceClass,
		EntityCategory:   domain.ENTITY_CLASS_CONFIG,
		Name:             button.Name,
		UniqueId:         button.UniqueId,
		Icon:             button.Icon,
		Platform:         "mqtt",
		PayloadPress:     MQTT_PAYLOAD_PRESS,
	}
	return disConfig
}

func meterAvailability(client *MQTTClient) []HAAvailability {
	return []HAAvailability{
		{Topic: client.BridgeStateTopic()},
		{Topic: client.MeterStateTopic()},
	}
}

func device(d domain.Device) HADiscoveryDevice {
	return HADiscoveryDevice{
		Id:           []string{d.Id},
		Manufacturer: d.Manufacturer,
		Version:      d.Version,
		Model:        d.Model,
		Name:         d.Name,
		ViaDevice:    d.ViaDevice,
	}
}
