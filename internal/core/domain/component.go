package domain

type Device struct {
	Id           string
	Name         string
	Version      string
	Model        string
	Manufacturer string
	ViaDevice    string
}

type GenericCover struct {
	Device      Device
	Id          string
	Name        string
	UniqueId    string
	DeviceClass string // awning, door, window, shutter, blind, shade
	SetPosition bool
	Optimistic  bool
}

type GenericLight struct {
	Device     Device
	Id         string
	Name       string
	UniqueId   string
	Brightness bool
	Optimistic bool
}

type GenericSensor struct {
	Device            Device
	Id                string
	SensorType        string // sensor, binary_sensor
	Name              string
	UniqueId          string
	UnitOfMeasurement string
	StateClass        string
	DeviceClass       string
	EntityCategory    string
	EnabledByDefault  *bool
	Icon              string
	Options           []string
}
