package service

import (
	"fmt"
	"math"

	"github.com/DominikStarke/becker-centralcontrol-has/pkg/centralcontrol"
)

const (
	DeviceClassTemperature = "temperature"
	DeviceClassEnum        = "enum"
	StateClassMeasurement  = "measurement"
)

// SensorDescription carries the presentation of one measurement kind.
type SensorDescription struct {
	Label       string
	DeviceClass string
	Unit        string
	StateClass  string
	Icon        string
	Options     []string
}

func DescribeMeasurement(kind centralcontrol.MeasurementKind) SensorDescription {
	switch kind {
	case centralcontrol.MeasurementTemperature:
		return SensorDescription{Label: "Temperature", DeviceClass: DeviceClassTemperature, Unit: "°C", StateClass: StateClassMeasurement}
	case centralcontrol.MeasurementSun:
		return SensorDescription{Label: "Sun", Icon: "mdi:white-balance-sunny", Unit: "/ 15", StateClass: StateClassMeasurement}
	case centralcontrol.MeasurementWind:
		return SensorDescription{Label: "Wind", Icon: "mdi:weather-dust", Unit: "/ 11", StateClass: StateClassMeasurement}
	case centralcontrol.MeasurementRain:
		return SensorDescription{Label: "Rain", Icon: "mdi:weather-rainy", DeviceClass: DeviceClassEnum, Options: centralcontrol.RainOptions}
	case centralcontrol.MeasurementDawn:
		return SensorDescription{Label: "Dawn", Icon: "mdi:weather-sunset", Unit: "/ 15", StateClass: StateClassMeasurement}
	}
	return SensorDescription{Label: string(kind)}
}

// Sensor reads one measurement kind of a remote.
type Sensor struct {
	item  centralcontrol.Item
	kind  centralcontrol.MeasurementKind
	opts  Options
	value *float64
}

func NewSensors(item centralcontrol.Item, opts Options) []*Sensor {
	kinds, ok := centralcontrol.MeasurementKinds(item.RemoteType)
	if !ok {
		return nil
	}
	sensors := make([]*Sensor, 0, len(kinds))
	for _, kind := range kinds {
		sensors = append(sensors, &Sensor{item: item, kind: kind, opts: opts})
	}
	return sensors
}

func (s *Sensor) Item() centralcontrol.Item {
	return s.item
}

func (s *Sensor) Kind() centralcontrol.MeasurementKind {
	return s.kind
}

func (s *Sensor) UniqueId() string {
	return s.opts.uniqueId(fmt.Sprintf("%s-%s", s.item.Id, s.kind))
}

func (s *Sensor) DeviceId() string {
	return s.opts.uniqueId(s.item.Id.String())
}

func (s *Sensor) Name() string {
	return fmt.Sprintf("%s %s", s.opts.name(s.item.DisplayName()), s.Description().Label)
}

func (s *Sensor) Description() SensorDescription {
	return DescribeMeasurement(s.kind)
}

func (s *Sensor) ShouldPoll() bool {
	return true
}

// ApplyState reads value-<kind> rounded to one decimal, halves to even. A
// missing field keeps the previous reading.
func (s *Sensor) ApplyState(state centralcontrol.State) bool {
	raw, ok := state.Number(centralcontrol.MeasurementField(s.kind))
	if !ok {
		return false
	}
	value := math.RoundToEven(raw*10) / 10
	s.value = &value
	return true
}

func (s *Sensor) Reading() (float64, bool) {
	if s.value == nil {
		return 0, false
	}
	return *s.value, true
}

// NativeValue is nil while unknown, an option string for rain and the
// rounded reading otherwise.
func (s *Sensor) NativeValue() any {
	if s.value == nil {
		return nil
	}
	if s.kind == centralcontrol.MeasurementRain {
		idx := int(*s.value)
		if idx < 0 || idx >= len(centralcontrol.RainOptions) {
			return nil
		}
		return centralcontrol.RainOptions[idx]
	}
	return *s.value
}

var _ Entity = (*Sensor)(nil)
