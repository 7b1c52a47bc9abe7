package domain

import "fmt"

// MeterRequest is any request that must reach the meter actor, the single
// owner of the bus.
type MeterRequest interface {
	ActorRequest
	MeterCommand() string
}

type MeterRequestMixIn struct {
	ActorRequestMixIn
}

func (r MeterRequestMixIn) MeterCommand() string {
	return fmt.Sprintf("%T", r)
}

// ensure interface compliance
var (
	_ MeterRequest = (*GetMeasurementRequest)(nil)
	_ MeterRequest = (*ResetEnergyRequest)(nil)
	_ MeterRequest = (*GetMeterInfoRequest)(nil)
)
