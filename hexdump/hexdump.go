// Package hexdump renders process memory around signature hits.
package hexdump

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/Moonlight-Companies/gologger/coloransi"

	"sonicsplit/process"
)

// Options controls one dump.
type Options struct {
	// BytesPerLine defaults to 16.
	BytesPerLine int

	// Match, when valid, is drawn over the bytes starting at MatchOffset:
	// fixed bytes in one color, wildcard operands in another.
	Match       process.AOB
	MatchOffset int

	// Plain disables colors.
	Plain bool
}

// Dump renders data as if it were read from start.
func Dump(data []byte, start uint64, opts Options) string {
	var buf bytes.Buffer
	DumpToWriter(&buf, data, start, opts)
	return buf.String()
}

// DumpToWriter writes one line per BytesPerLine bytes: address, hex, ASCII.
func DumpToWriter(w io.Writer, data []byte, start uint64, opts Options) {
	perLine := opts.BytesPerLine
	if perLine <= 0 {
		perLine = 16
	}

	for off := 0; off < len(data); off += perLine {
		end := min(off+perLine, len(data))

		fmt.Fprintf(w, "%016x  ", start+uint64(off))
		for i := off; i < off+perLine; i++ {
			if i >= end {
				fmt.Fprint(w, "   ")
				continue
			}
			fmt.Fprint(w, opts.paint(i, fmt.Sprintf("%02x", data[i])), " ")
		}

		fmt.Fprint(w, " |")
		for i := off; i < end; i++ {
			fmt.Fprint(w, opts.paint(i, printable(data[i])))
		}
		fmt.Fprintln(w, "|")
	}
}

// paint colors cell i when it falls inside the match.
func (o Options) paint(i int, cell string) string {
	if o.Plain || !o.Match.IsValid() {
		return cell
	}
	j := i - o.MatchOffset
	if j < 0 || j >= o.Match.Len() {
		return cell
	}
	if o.Match.Mask[j] == 0 {
		return coloransi.Color(coloransi.ColorPurple, coloransi.ColorTeal, cell)
	}
	return coloransi.Color(coloransi.ColorLimeGreen, coloransi.ColorTeal, cell)
}

func printable(b byte) string {
	if b >= 0x20 && b < 0x7f {
		return string(rune(b))
	}
	return "."
}

// Pattern renders an AOB in the notation signatures are written in.
func Pattern(aob process.AOB) string {
	parts := make([]string, aob.Len())
	for i := range aob.Pattern {
		switch aob.Mask[i] {
		case 0:
			parts[i] = "??"
		case 0xFF:
			parts[i] = fmt.Sprintf("%02X", aob.Pattern[i])
		default:
			hi, lo := "?", "?"
			if aob.Mask[i]&0xF0 != 0 {
				hi = fmt.Sprintf("%X", aob.Pattern[i]>>4)
			}
			if aob.Mask[i]&0x0F != 0 {
				lo = fmt.Sprintf("%X", aob.Pattern[i]&0xF)
			}
			parts[i] = hi + lo
		}
	}
	return strings.Join(parts, " ")
}
