package domain

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"github.com/berfenger/pzem2mqtt/internal/meter"

	"github.com/carlmjohnson/versioninfo"
)

const (
	SENSOR_ID_BRIDGE_STATE       = "bridge"
	SENSOR_ID_METER_STATE        = "meter_state"
	SENSOR_ID_MEASUREMENT        = "measurement"
	SENSOR_ID_VOLTAGE            = "voltage"
	SENSOR_ID_CURRENT            = "current"
	SENSOR_ID_POWER              = "power"
	SENSOR_ID_ENERGY             = "energy"
	SENSOR_ID_FREQUENCY          = "frequency"
	SENSOR_ID_POWER_FACTOR       = "power_factor"
	SENSOR_ID_POWER_ALARM        = "power_alarm"
	BUTTON_ID_RESET_ENERGY       = "reset_energy"
	STATE_CLASS_MEASUREMENT      = "measurement"
	STATE_CLASS_TOTAL_INCREASING = "total_increasing"
	DEVICE_CLASS_CURRENT         = "current"
	DEVICE_CLASS_ENERGY          = "energy"
	DEVICE_CLASS_FREQUENCY       = "frequency"
	DEVICE_CLASS_POWER           = "power"
	DEVICE_CLASS_POWER_FACTOR    = "power_factor"
	DEVICE_CLASS_VOLTAGE         = "voltage"
	DEVICE_CLASS_CONNECTIVITY    = "connectivity"
	DEVICE_CLASS_PROBLEM         = "problem"
	DEVICE_CLASS_RESTART         = "restart"
	ENTITY_CLASS_DIAGNOSTIC      = "diagnostic"
	ENTITY_CLASS_CONFIG          = "config"
	SENSOR_TYPE_SENSOR           = "sensor"
	SENSOR_TYPE_BINARY           = "binary_sensor"
)

func BridgeDevice(baseTopic string) Device {
	return Device{
		Id:           fmt.Sprintf("pzem2mqtt_bridge_%s", md5HashShort(baseTopic)),
		Manufacturer: "ACasal",
		Model:        "pzem2mqtt",
		Version:      versioninfo.Short(),
		Name:         fmt.Sprintf("pzem2mqtt %s", md5HashShort(baseTopic)),
	}
}

// MeterDevice identifies a meter by the bus it hangs on and its slave address.
func MeterDevice(info meter.Info) Device {
	hash := md5HashShort(fmt.Sprintf("%s|%s|%d", info.Transport, info.Endpoint, info.Address))
	return Device{
		Id:           fmt.Sprintf("pzem_meter_%s", hash),
		Manufacturer: "Peacefair",
		Model:        "PZEM-004T v3",
		Name:         fmt.Sprintf("PZEM 0x%02X %s", info.Address, hash),
	}
}

func IdDevice(device Device) Device {
	return Device{
		Id:   device.Id,
		Name: device.Name,
	}
}

func MeterSensors(meterDevice Device) []GenericSensor {

	var sensors []GenericSensor

	// Voltage
	sensors = append(sensors, GenericSensor{
		Device:            meterDevice,
		Id:                SENSOR_ID_VOLTAGE,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Voltage",
		StateClass:        STATE_CLASS_MEASUREMENT,
		DeviceClass:       DEVICE_CLASS_VOLTAGE,
		UnitOfMeasurement: "V",
		UniqueId:          uniqueId(meterDevice.Id, SENSOR_ID_VOLTAGE),
		MeterAvailability: true,
	})

	// Current
	sensors = append(sensors, GenericSensor{
		Device:            meterDevice,
		Id:                SENSOR_ID_CURRENT,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Current",
		StateClass:        STATE_CLASS_MEASUREMENT,
		DeviceClass:       DEVICE_CLASS_CURRENT,
		UnitOfMeasurement: "A",
		UniqueId:          uniqueId(meterDevice.Id, SENSOR_ID_CURRENT),
		MeterAvailability: true,
	})

	// Active power
	sensors = append(sensors, GenericSensor{
		Device:            meterDevice,
		Id:                SENSOR_ID_POWER,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Power",
		StateClass:        STATE_CLASS_MEASUREMENT,
		DeviceClass:       DEVICE_CLASS_POWER,
		UnitOfMeasurement: "W",
		UniqueId:          uniqueId(meterDevice.Id, SENSOR_ID_POWER),
		MeterAvailability: true,
	})

	// Energy counter, raw Wh divided by 1000
	sensors = append(sensors, GenericSensor{
		Device:            meterDevice,
		Id:                SENSOR_ID_ENERGY,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Energy",
		StateClass:        STATE_CLASS_TOTAL_INCREASING,
		DeviceClass:       DEVICE_CLASS_ENERGY,
		UnitOfMeasurement: "kWh",
		UniqueId:          uniqueId(meterDevice.Id, SENSOR_ID_ENERGY),
		MeterAvailability: true,
	})

	// Frequency
	sensors = append(sensors, GenericSensor{
		Device:            meterDevice,
		Id:                SENSOR_ID_FREQUENCY,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Frequency",
		StateClass:        STATE_CLASS_MEASUREMENT,
		DeviceClass:       DEVICE_CLASS_FREQUENCY,
		UnitOfMeasurement: "Hz",
		UniqueId:          uniqueId(meterDevice.Id, SENSOR_ID_FREQUENCY),
		MeterAvailability: true,
	})

	// Power factor
	sensors = append(sensors, GenericSensor{
		Device:            meterDevice,
		Id:                SENSOR_ID_POWER_FACTOR,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Power factor",
		StateClass:        STATE_CLASS_MEASUREMENT,
		DeviceClass:       DEVICE_CLASS_POWER_FACTOR,
		UniqueId:          uniqueId(meterDevice.Id, SENSOR_ID_POWER_FACTOR),
		MeterAvailability: true,
	})

	// Power alarm
	sensors = append(sensors, GenericSensor{
		Device:            meterDevice,
		Id:                SENSOR_ID_POWER_ALARM,
		SensorType:        SENSOR_TYPE_BINARY,
		Name:              "Power alarm",
		DeviceClass:       DEVICE_CLASS_PROBLEM,
		UniqueId:          uniqueId(meterDevice.Id, SENSOR_ID_POWER_ALARM),
		MeterAvailability: true,
	})

	// Meter reachable on the bus
	sensors = append(sensors, GenericSensor{
		Device:         meterDevice,
		Id:             SENSOR_ID_METER_STATE,
		SensorType:     SENSOR_TYPE_BINARY,
		Name:           "Meter connection",
		DeviceClass:    DEVICE_CLASS_CONNECTIVITY,
		EntityCategory: ENTITY_CLASS_DIAGNOSTIC,
		UniqueId:       uniqueId(meterDevice.Id, SENSOR_ID_METER_STATE),
	})

	return sensors
}

func BridgeSensors(bridgeDevice Device) []GenericSensor {

	var sensors []GenericSensor

	// Bridge connection state
	sensors = append(sensors, GenericSensor{
		Device:         bridgeDevice,
		Id:             SENSOR_ID_BRIDGE_STATE,
		SensorType:     SENSOR_TYPE_BINARY,
		Name:           "Connection state",
		DeviceClass:    DEVICE_CLASS_CONNECTIVITY,
		EntityCategory: ENTITY_CLASS_DIAGNOSTIC,
		UniqueId:       uniqueId(bridgeDevice.Id, SENSOR_ID_BRIDGE_STATE),
	})

	return sensors
}

func MeterButtons(meterDevice Device, resetSupported bool) []GenericButton {

	var buttons []GenericButton

	if resetSupported {
		// Energy counter reset
		buttons = append(buttons, GenericButton{
			Device:      meterDevice,
			Id:          BUTTON_ID_RESET_ENERGY,
			Name:        "Reset energy",
			UniqueId:    uniqueId(meterDevice.Id, BUTTON_ID_RESET_ENERGY),
			Icon:        "mdi:counter",
			DeviceClass: DEVICE_CLASS_RESTART,
		})
	}

	return buttons
}

func uniqueId(baseId, id string) string {
	return fmt.Sprintf("uid_%s_%s", baseId, id)
}

func md5Hash(text string) string {
	hash := md5.Sum([]byte(text))
	return hex.EncodeToString(hash[:])
}

func md5HashShort(text string) string {
	hash := md5Hash(text)
	return hash[0:8]
}
