package hexdump

import (
	"strings"
	"testing"

	"sonicsplit/process"
)

func TestDumpPlain(t *testing.T) {
	data := []byte("SaveZone\x00\x01\x02\x03\x04\x05\x06\x07ab")
	out := Dump(data, 0x400000, Options{Plain: true})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "0000000000400000  53 61 76 65") {
		t.Fatalf("unexpected first line %q", lines[0])
	}
	if !strings.HasSuffix(lines[0], "|SaveZone........|") {
		t.Fatalf("unexpected ASCII column %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "0000000000400010  61 62 ") || !strings.HasSuffix(lines[1], "|ab|") {
		t.Fatalf("unexpected short line %q", lines[1])
	}
	if len(lines[0]) != len(lines[1])+14 {
		t.Fatalf("hex column not padded: %q / %q", lines[0], lines[1])
	}
}

func TestDumpHighlightKeepsText(t *testing.T) {
	aob := process.AOB{Pattern: []byte{0x69, 0xF8, 0, 0}, Mask: []byte{0xFF, 0xFF, 0, 0}}
	out := Dump([]byte{0x00, 0x69, 0xF8, 0x10, 0x20}, 0, Options{Match: aob, MatchOffset: 1})
	for _, cell := range []string{"00", "69", "f8", "10", "20"} {
		if !strings.Contains(out, cell) {
			t.Fatalf("missing %s in %q", cell, out)
		}
	}
}

func TestPattern(t *testing.T) {
	aob := process.AOB{
		Pattern: []byte{0x81, 0xF9, 0, 0x40},
		Mask:    []byte{0xFF, 0xFF, 0, 0xF0},
	}
	if got := Pattern(aob); got != "81 F9 ?? 4?" {
		t.Fatalf("Pattern = %q", got)
	}
}
