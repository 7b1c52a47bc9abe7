package events

import (
	. "github.com/berfenger/pzem2mqtt/internal/core/domain"
	"github.com/berfenger/pzem2mqtt/pkg/pzem"
)

func MeasurementToUpdateEvents(m *pzem.Measurement) []any {
	var events []any

	// Voltage
	events = append(events, FloatSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SENSOR_ID_VOLTAGE,
		},
		Value:    m.Voltage,
		Decimals: 1,
	})
	// Current
	events = append(events, FloatSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SENSOR_ID_CURRENT,
		},
		Value:    m.Current,
		Decimals: 3,
	})
	// Active power
	events = append(events, FloatSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SENSOR_ID_POWER,
		},
		Value:    m.Power,
		Decimals: 1,
	})
	// Energy
	events = append(events, FloatSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SENSOR_ID_ENERGY,
		},
		Value:    m.Energy,
		Decimals: 3,
	})
	// Frequency
	events = append(events, FloatSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SENSOR_ID_FREQUENCY,
		},
		Value:    m.Frequency,
		Decimals: 1,
	})
	// Power factor
	events = append(events, FloatSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SENSOR_ID_POWER_FACTOR,
		},
		Value:    m.PowerFactor,
		Decimals: 2,
	})
	// Power alarm
	events = append(events, BinarySensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SENSOR_ID_POWER_ALARM,
		},
		Value: m.AlarmActive(),
	})
	// Whole reading
	events = append(events, MeasurementUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SENSOR_ID_MEASUREMENT,
		},
		Voltage:     m.Voltage,
		Current:     m.Current,
		Power:       m.Power,
		Energy:      m.Energy,
		Frequency:   m.Frequency,
		PowerFactor: m.PowerFactor,
		Alarm:       m.AlarmActive(),
	})

	return events
}

func MeterStateUpdateEvents(available bool) []any {
	var events []any
	events = append(events, MeterStateUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SENSOR_ID_METER_STATE,
		},
		Value: available,
	})
	return events
}
