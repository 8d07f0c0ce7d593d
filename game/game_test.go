package game

import "testing"

func TestTierFor(t *testing.T) {
	cases := []struct {
		bits BitWidth
		size uint64
		want VersionTier
	}{
		{Bits64, 0x9000000, Legacy},
		{Bits64, 0x1000, Legacy},
		{Bits32, 0x57F3FFF, Legacy},
		{Bits32, 0x57F4000, Current},
		{Bits32, 0x6000000, Current},
	}
	for _, tc := range cases {
		if got := TierFor(tc.bits, tc.size); got != tc.want {
			t.Fatalf("TierFor(%s, 0x%x) = %s, want %s", tc.bits, tc.size, got, tc.want)
		}
	}
}

func TestResetTransition(t *testing.T) {
	if from, to := Legacy.ResetTransition(); from != 200 || to != 201 {
		t.Fatalf("legacy reset %d->%d", from, to)
	}
	if from, to := Current.ResetTransition(); from != 13 || to != 14 {
		t.Fatalf("current reset %d->%d", from, to)
	}
}

func TestDecodeZoneIndicator(t *testing.T) {
	cases := map[uint32]ZoneIndicator{
		0x6E69614D: ZoneMainMenu,
		0x656E6F5A: ZoneZones,
		0x69646E45: ZoneEnding,
		0x65766153: ZoneSaveSelect,
		0:          ZoneUnknown,
		0xDEADBEEF: ZoneUnknown,
	}
	for tag, want := range cases {
		if got := DecodeZoneIndicator(tag); got != want {
			t.Fatalf("DecodeZoneIndicator(0x%x) = %s, want %s", tag, got, want)
		}
	}
}

func TestDecodeAct(t *testing.T) {
	if DecodeAct(0) != GreenHill1 || DecodeAct(2) != GreenHill3 || DecodeAct(18) != FinalZone {
		t.Fatalf("decode table is off")
	}
	if DecodeAct(19) != ActUnknown || DecodeAct(255) != ActUnknown {
		t.Fatalf("out-of-range level ids must decode to ActUnknown")
	}
	if FinalZone.String() != "Final Zone" || Act(99).String() != "Unknown" {
		t.Fatalf("unexpected names %q %q", FinalZone, Act(99))
	}
}

func TestNextAct(t *testing.T) {
	cases := []struct {
		name     string
		zone     ZoneIndicator
		previous Act
		levelID  uint8
		ok       bool
		want     Act
	}{
		{"zones decodes", ZoneZones, GreenHill1, 1, true, GreenHill2},
		{"zones read failure carries", ZoneZones, Marble2, 0, false, Marble2},
		{"zones garbage", ZoneZones, Marble2, 200, true, ActUnknown},
		{"ending forces unknown", ZoneEnding, FinalZone, 18, true, ActUnknown},
		{"menu is sticky", ZoneMainMenu, StarLight3, 0, true, StarLight3},
		{"save select is sticky", ZoneSaveSelect, Labyrinth1, 5, true, Labyrinth1},
		{"unknown tag is sticky", ZoneUnknown, ScrapBrain1, 0, true, ScrapBrain1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NextAct(tc.zone, tc.previous, tc.levelID, tc.ok); got != tc.want {
				t.Fatalf("NextAct = %s, want %s", got, tc.want)
			}
		})
	}
}
