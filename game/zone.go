package game

// ZoneIndicator is the coarse game mode, stored as a four character tag
type ZoneIndicator int

const (
	ZoneUnknown ZoneIndicator = iota
	ZoneMainMenu
	ZoneZones
	ZoneEnding
	ZoneSaveSelect
)

// Tags as little-endian ASCII: "Main", "Zone", "Endi", "Save".
const (
	tagMainMenu   uint32 = 0x6E69614D
	tagZones      uint32 = 0x656E6F5A
	tagEnding     uint32 = 0x69646E45
	tagSaveSelect uint32 = 0x65766153
)

// DecodeZoneIndicator maps a raw tag to its mode. Unrecognised tags are ZoneUnknown.
func DecodeZoneIndicator(tag uint32) ZoneIndicator {
	switch tag {
	case tagMainMenu:
		return ZoneMainMenu
	case tagZones:
		return ZoneZones
	case tagEnding:
		return ZoneEnding
	case tagSaveSelect:
		return ZoneSaveSelect
	default:
		return ZoneUnknown
	}
}

func (z ZoneIndicator) String() string {
	switch z {
	case ZoneMainMenu:
		return "MainMenu"
	case ZoneZones:
		return "Zones"
	case ZoneEnding:
		return "Ending"
	case ZoneSaveSelect:
		return "SaveSelect"
	default:
		return "Unknown"
	}
}
