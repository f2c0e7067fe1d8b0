package centralcontrol

// Gateway command names. Which device types accept which command is up to the
// gateway firmware.
const (
	CommandMove       = "move"       // -1 open, 0 stop, 1 close
	CommandMoveTo     = "moveto"     // 0 open .. 100 closed
	CommandMovePreset = "movepreset" // 1 or 2
	CommandStep       = "step"       // venetian and door-pulse
	CommandSwitch     = "switch"     // 0 or 1
	CommandDim        = "dim"        // -1 darker, 0, 1 brighter
	CommandDimTo      = "dimto"      // 0 off .. 100 on
	CommandDimPreset  = "dimpreset"  // 1 or 2
	CommandTempMode   = "tempmode"   // 0..3
	CommandTempSet    = "tempset"    // 4.0 .. 40.0
)

type DeviceType string

const (
	DeviceTypeAwning         DeviceType = "awning"
	DeviceTypeDoor           DeviceType = "door"
	DeviceTypeDoorPulse      DeviceType = "door-pulse"
	DeviceTypeRoofWindow     DeviceType = "roof-window"
	DeviceTypeScreen         DeviceType = "screen"
	DeviceTypeShutter        DeviceType = "shutter"
	DeviceTypeShutterBlinds  DeviceType = "shutter-blinds"
	DeviceTypeShutterFoldout DeviceType = "shutter-foldout"
	DeviceTypeSunSail        DeviceType = "sun-sail"
	DeviceTypeVenetian       DeviceType = "venetian"
	DeviceTypeTiltWindow     DeviceType = "tilt-window"
	DeviceTypeDimmer         DeviceType = "dimmer"
	DeviceTypeSwitch         DeviceType = "switch"
)

type Category int

const (
	CategoryNone Category = iota
	CategoryCover
	CategoryLight
)

type CoverClass string

const (
	CoverClassAwning  CoverClass = "awning"
	CoverClassDoor    CoverClass = "door"
	CoverClassWindow  CoverClass = "window"
	CoverClassShutter CoverClass = "shutter"
	CoverClassBlind   CoverClass = "blind"
	CoverClassShade   CoverClass = "shade"
)

type LightKind string

const (
	LightKindDimmer LightKind = "dimmer"
	LightKindSwitch LightKind = "switch"
)

// DeviceClass is the classification of a group device type.
type DeviceClass struct {
	Type     DeviceType
	Category Category
	Cover    CoverClass
	Light    LightKind
	// Reversed device types open and close the other way round.
	Reversed bool
}

// ClassifyDeviceType returns false for device types that map to no entity.
func ClassifyDeviceType(deviceType string) (DeviceClass, bool) {
	t := DeviceType(deviceType)
	switch t {
	case DeviceTypeAwning:
		return DeviceClass{Type: t, Category: CategoryCover, Cover: CoverClassAwning, Reversed: true}, true
	case DeviceTypeDoor, DeviceTypeDoorPulse:
		return DeviceClass{Type: t, Category: CategoryCover, Cover: CoverClassDoor}, true
	case DeviceTypeRoofWindow, DeviceTypeTiltWindow:
		return DeviceClass{Type: t, Category: CategoryCover, Cover: CoverClassWindow}, true
	case DeviceTypeScreen, DeviceTypeShutter, DeviceTypeShutterFoldout, DeviceTypeVenetian:
		return DeviceClass{Type: t, Category: CategoryCover, Cover: CoverClassShutter}, true
	case DeviceTypeShutterBlinds:
		return DeviceClass{Type: t, Category: CategoryCover, Cover: CoverClassBlind}, true
	case DeviceTypeSunSail:
		return DeviceClass{Type: t, Category: CategoryCover, Cover: CoverClassShade}, true
	case DeviceTypeDimmer:
		return DeviceClass{Type: t, Category: CategoryLight, Light: LightKindDimmer}, true
	case DeviceTypeSwitch:
		return DeviceClass{Type: t, Category: CategoryLight, Light: LightKindSwitch}, true
	}
	return DeviceClass{}, false
}

type RemoteType string

const (
	RemoteTypeSun             RemoteType = "sensor-sun"
	RemoteTypeWind            RemoteType = "sensor-wind"
	RemoteTypeRain            RemoteType = "sensor-rain"
	RemoteTypeDawn            RemoteType = "sensor-dawn"
	RemoteTypeTemperature     RemoteType = "sensor-temperature"
	RemoteTypeSunWind         RemoteType = "sensor-sun-wind"
	RemoteTypeSunRain         RemoteType = "sensor-sun-rain"
	RemoteTypeSunWindRain     RemoteType = "sensor-sun-wind-rain"
	RemoteTypeSunWindRainTemp RemoteType = "sensor-sun-wind-rain-temp"
	RemoteTypeSunWindRainDawn RemoteType = "sensor-sun-wind-rain-dawn"
)

type MeasurementKind string

const (
	MeasurementSun         MeasurementKind = "sun"
	MeasurementWind        MeasurementKind = "wind"
	MeasurementRain        MeasurementKind = "rain"
	MeasurementDawn        MeasurementKind = "dawn"
	MeasurementTemperature MeasurementKind = "temp"
)

// RainOptions are the enum values of a rain measurement, indexed by raw value.
var RainOptions = []string{"dry", "rain"}

// MeasurementKinds returns the ordered measurement kinds of a remote type, or
// false when the remote carries no sensors.
func MeasurementKinds(remoteType string) ([]MeasurementKind, bool) {
	switch RemoteType(remoteType) {
	case RemoteTypeSun:
		return []MeasurementKind{MeasurementSun}, true
	case RemoteTypeWind:
		return []MeasurementKind{MeasurementWind}, true
	case RemoteTypeRain:
		return []MeasurementKind{MeasurementRain}, true
	case RemoteTypeDawn:
		return []MeasurementKind{MeasurementDawn}, true
	case RemoteTypeTemperature:
		return []MeasurementKind{MeasurementTemperature}, true
	case RemoteTypeSunWind:
		return []MeasurementKind{MeasurementSun, MeasurementWind}, true
	case RemoteTypeSunRain:
		return []MeasurementKind{MeasurementSun, MeasurementRain}, true
	case RemoteTypeSunWindRain:
		return []MeasurementKind{MeasurementSun, MeasurementWind, MeasurementRain}, true
	case RemoteTypeSunWindRainTemp:
		return []MeasurementKind{MeasurementSun, MeasurementWind, MeasurementRain, MeasurementTemperature}, true
	case RemoteTypeSunWindRainDawn:
		return []MeasurementKind{MeasurementSun, MeasurementWind, MeasurementRain, MeasurementDawn}, true
	}
	return nil, false
}
