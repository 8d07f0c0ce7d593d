package settings

// Toggle names one setting.
type Toggle int

const (
	StartCleanSave Toggle = iota
	StartNewGamePlus
	Reset
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

// Descriptor pairs a toggle with its config key and display label.
type Descriptor struct {
	Toggle Toggle
	Key    string
	Label  string
}

// Descriptors lists every toggle in display order.
var Descriptors = []Descriptor{
	{StartCleanSave, "start_clean_save", "Start --> New Game"},
	{StartNewGamePlus, "start_new_game_plus", "Start --> New Game+"},
	{Reset, "reset", "Reset --> Enable auto reset"},
	{GreenHill1, "green_hill_1", "Green Hill Zone - Act 1"},
	{GreenHill2, "green_hill_2", "Green Hill Zone - Act 2"},
	{GreenHill3, "green_hill_3", "Green Hill Zone - Act 3"},
	{Marble1, "marble_1", "Marble Zone - Act 1"},
	{Marble2, "marble_2", "Marble Zone - Act 2"},
	{Marble3, "marble_3", "Marble Zone - Act 3"},
	{SpringYard1, "spring_yard_1", "Spring Yard Zone - Act 1"},
	{SpringYard2, "spring_yard_2", "Spring Yard Zone - Act 2"},
	{SpringYard3, "spring_yard_3", "Spring Yard Zone - Act 3"},
	{Labyrinth1, "labyrinth_1", "Labyrinth Zone - Act 1"},
	{Labyrinth2, "labyrinth_2", "Labyrinth Zone - Act 2"},
	{Labyrinth3, "labyrinth_3", "Labyrinth Zone - Act 3"},
	{StarLight1, "star_light_1", "Star Light Zone - Act 1"},
	{StarLight2, "star_light_2", "Star Light Zone - Act 2"},
	{StarLight3, "star_light_3", "Star Light Zone - Act 3"},
	{ScrapBrain1, "scrap_brain_1", "Scrap Brain Zone - Act 1"},
	{ScrapBrain2, "scrap_brain_2", "Scrap Brain Zone - Act 2"},
	{ScrapBrain3, "scrap_brain_3", "Scrap Brain Zone - Act 3"},
	{FinalZone, "final_zone", "Final Zone"},
}

func (t Toggle) String() string {
	if t < 0 || int(t) >= len(Descriptors) {
		return "unknown"
	}
	return Descriptors[t].Key
}

// field maps a toggle onto its struct field.
func (s *Settings) field(t Toggle) *bool {
	switch t {
	case StartCleanSave:
		return &s.StartCleanSave
	case StartNewGamePlus:
		return &s.StartNewGamePlus
	case Reset:
		return &s.Reset
	case GreenHill1:
		return &s.GreenHill1
	case GreenHill2:
		return &s.GreenHill2
	case GreenHill3:
		return &s.GreenHill3
	case Marble1:
		return &s.Marble1
	case Marble2:
		return &s.Marble2
	case Marble3:
		return &s.Marble3
	case SpringYard1:
		return &s.SpringYard1
	case SpringYard2:
		return &s.SpringYard2
	case SpringYard3:
		return &s.SpringYard3
	case Labyrinth1:
		return &s.Labyrinth1
	case Labyrinth2:
		return &s.Labyrinth2
	case Labyrinth3:
		return &s.Labyrinth3
	case StarLight1:
		return &s.StarLight1
	case StarLight2:
		return &s.StarLight2
	case StarLight3:
		return &s.StarLight3
	case ScrapBrain1:
		return &s.ScrapBrain1
	case ScrapBrain2:
		return &s.ScrapBrain2
	case ScrapBrain3:
		return &s.ScrapBrain3
	case FinalZone:
		return &s.FinalZone
	default:
		return nil
	}
}

// Enabled reports the value of t. Unknown toggles are disabled.
func (s Settings) Enabled(t Toggle) bool {
	if f := s.field(t); f != nil {
		return *f
	}
	return false
}

// Set changes t in this snapshot.
func (s *Settings) Set(t Toggle, on bool) {
	if f := s.field(t); f != nil {
		*f = on
	}
}
