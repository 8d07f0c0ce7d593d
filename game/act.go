package game

// Act is one playable level segment. The zero value is ActUnknown.
type Act int

const (
	ActUnknown Act = iota
	GreenHill1
	GreenHill2
	GreenHill3
	Marble1
	Marble2
	Marble3
	SpringYard1
	SpringYard2
	SpringYard3
	Labyrinth1
	Labyrinth2
	Labyrinth3
	StarLight1
	StarLight2
	StarLight3
	ScrapBrain1
	ScrapBrain2
	ScrapBrain3
	FinalZone
)

var actNames = [...]string{
	ActUnknown:  "Unknown",
	GreenHill1:  "Green Hill 1",
	GreenHill2:  "Green Hill 2",
	GreenHill3:  "Green Hill 3",
	Marble1:     "Marble 1",
	Marble2:     "Marble 2",
	Marble3:     "Marble 3",
	SpringYard1: "Spring Yard 1",
	SpringYard2: "Spring Yard 2",
	SpringYard3: "Spring Yard 3",
	Labyrinth1:  "Labyrinth 1",
	Labyrinth2:  "Labyrinth 2",
	Labyrinth3:  "Labyrinth 3",
	StarLight1:  "Star Light 1",
	StarLight2:  "Star Light 2",
	StarLight3:  "Star Light 3",
	ScrapBrain1: "Scrap Brain 1",
	ScrapBrain2: "Scrap Brain 2",
	ScrapBrain3: "Scrap Brain 3",
	FinalZone:   "Final Zone",
}

func (a Act) String() string {
	if a < 0 || int(a) >= len(actNames) {
		return "Unknown"
	}
	return actNames[a]
}

// DecodeAct maps the level id byte (0 = Green Hill 1 ... 18 = Final Zone).
func DecodeAct(levelID uint8) Act {
	if levelID > 18 {
		return ActUnknown
	}
	return Act(levelID) + GreenHill1
}

// NextAct decides the act to record for this tick. The level id byte only
// means something while playing a zone; elsewhere the previous act carries
// forward, except the ending which closes the run. ok is false when the
// level id could not be read.
func NextAct(zone ZoneIndicator, previous Act, levelID uint8, ok bool) Act {
	switch zone {
	case ZoneEnding:
		return ActUnknown
	case ZoneZones:
		if !ok {
			return previous
		}
		return DecodeAct(levelID)
	default:
		return previous
	}
}
