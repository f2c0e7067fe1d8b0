package service

import (
	"github.com/DominikStarke/becker-centralcontrol-has/pkg/centralcontrol"
)

type ColorMode string

const (
	ColorModeBrightness ColorMode = "brightness"
	ColorModeOnOff      ColorMode = "onoff"
)

type Light struct {
	item       centralcontrol.Item
	class      centralcontrol.DeviceClass
	opts       Options
	isOn       *bool
	brightness *int
}

func NewLight(item centralcontrol.Item, opts Options) (*Light, bool) {
	class, ok := centralcontrol.ClassifyDeviceType(item.DeviceType)
	if !ok || class.Category != centralcontrol.CategoryLight {
		return nil, false
	}
	return &Light{item: item, class: class, opts: opts}, true
}

func (l *Light) Item() centralcontrol.Item {
	return l.item
}

func (l *Light) UniqueId() string {
	return l.opts.uniqueId(l.item.Id.String())
}

func (l *Light) DeviceId() string {
	return l.opts.uniqueId(l.item.Id.String())
}

func (l *Light) Name() string {
	return l.opts.name(l.item.DisplayName())
}

func (l *Light) ShouldPoll() bool {
	return l.item.Feedback
}

func (l *Light) ColorMode() ColorMode {
	if l.class.Light == centralcontrol.LightKindDimmer {
		return ColorModeBrightness
	}
	return ColorModeOnOff
}

func (l *Light) TurnOnCommand() centralcontrol.Command {
	return centralcontrol.Command{GroupId: l.item.Id, Name: centralcontrol.CommandSwitch, Value: 1}
}

func (l *Light) TurnOffCommand() centralcontrol.Command {
	return centralcontrol.Command{GroupId: l.item.Id, Name: centralcontrol.CommandSwitch, Value: 0}
}

func (l *Light) ApplyState(state centralcontrol.State) bool {
	value, ok := state.Value()
	if !ok {
		return false
	}
	on := value != 0
	brightness := int(value)
	l.isOn = &on
	l.brightness = &brightness
	return true
}

func (l *Light) IsOn() *bool {
	return l.isOn
}

// Brightness is the raw gateway value, 0..100.
func (l *Light) Brightness() (int, bool) {
	if l.brightness == nil {
		return 0, false
	}
	return *l.brightness, true
}

var _ Entity = (*Light)(nil)
