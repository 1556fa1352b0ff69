package render

import (
	_ "embed"
	"strings"

	"github.com/go-pdf/fpdf"
)

var (
	//go:embed fonts/DejaVuSansCondensed.ttf
	fontRegular []byte
	//go:embed fonts/DejaVuSansCondensed-Bold.ttf
	fontBold []byte
	//go:embed fonts/DejaVuSansCondensed-Oblique.ttf
	fontItalic []byte
)

// registerFonts adds the UTF-8 font family used by every style.
func registerFonts(pdf *fpdf.Fpdf) {
	pdf.AddUTF8FontFromBytes(fontFamily, "", fontRegular)
	pdf.AddUTF8FontFromBytes(fontFamily, "B", fontBold)
	pdf.AddUTF8FontFromBytes(fontFamily, "I", fontItalic)
}

// plain replaces runes outside the Basic Multilingual Plane, which fpdf cannot
// encode or measure, with U+FFFD.
func plain(s string) string {
	if !strings.ContainsFunc(s, outsideBMP) {
		return s
	}
	return strings.Map(func(r rune) rune {
		if outsideBMP(r) {
			return '\uFFFD'
		}
		return r
	}, s)
}

func outsideBMP(r rune) bool {
	return r > 0xFFFF
}
