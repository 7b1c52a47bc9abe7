package domain

type Device struct {
	Id           string
	Name         string
	Version      string
	Model        string
	Manufacturer string
	ViaDevice    string
}

type GenericSensor struct {
	Device            Device
	Id                string
	SensorType        string
	Name              string
	UniqueId          string
	UnitOfMeasurement string
	StateClass        string // measurement, total_increasing (for acc energy)
	DeviceClass       string // voltage, current, power, energy, frequency, power_factor
	EntityCategory    string // diagnostic, config, nil
	EnabledByDefault  *bool
	Icon              string
	// MeterAvailability marks entities that go unavailable with the meter
	MeterAvailability bool
}

type GenericButton struct {
	Device      Device
	Id          string
	Name        string
	UniqueId    string
	Icon        string
	DeviceClass string
}
