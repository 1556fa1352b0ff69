// Package pdftext reads rendered PDFs back as plain text.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf16"

	"github.com/ledongthuc/pdf"
)

var footerPattern = regexp.MustCompile(`Page \d+ of \d+`)

// ErrEmpty is returned for zero-length input.
var ErrEmpty = errors.New("empty pdf data")

// Pages returns the plain text of every page, in page order.
func Pages(data []byte) ([]string, error) {
	reader, err := open(data)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			out = append(out, "")
			continue
		}
		text, err := pageText(page)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		out = append(out, text)
	}
	return out, nil
}

// PageCount returns the number of pages.
func PageCount(data []byte) (int, error) {
	reader, err := open(data)
	if err != nil {
		return 0, err
	}
	return reader.NumPage(), nil
}

// CheckFooters verifies that every page carries exactly one "Page i of N" stamp
// and no stamp for any other page.
func CheckFooters(data []byte) error {
	pages, err := Pages(data)
	if err != nil {
		return err
	}
	total := len(pages)
	for i, text := range pages {
		want := fmt.Sprintf("Page %d of %d", i+1, total)
		if n := strings.Count(text, want); n != 1 {
			return fmt.Errorf("page %d: found %d %q stamps", i+1, n, want)
		}
		if n := len(footerPattern.FindAllString(text, -1)); n != 1 {
			return fmt.Errorf("page %d: found %d footer stamps", i+1, n)
		}
	}
	return nil
}

func open(data []byte) (*pdf.Reader, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	return pdf.NewReader(bytes.NewReader(data), int64(len(data)))
}

// pageText walks the content stream of one page. Text objects start on a new line.
func pageText(page pdf.Page) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("content stream: %v", r)
		}
	}()

	contents := page.V.Key("Contents")
	if contents.Kind() == pdf.Null {
		return "", nil
	}

	var b strings.Builder
	decode := func(s string) string { return s }
	show := func(v pdf.Value) {
		switch v.Kind() {
		case pdf.String:
			b.WriteString(decode(v.RawString()))
		case pdf.Array:
			for i := 0; i < v.Len(); i++ {
				if item := v.Index(i); item.Kind() == pdf.String {
					b.WriteString(decode(item.RawString()))
				}
			}
		}
	}

	pdf.Interpret(contents, func(stk *pdf.Stack, op string) {
		args := make([]pdf.Value, stk.Len())
		for i := len(args) - 1; i >= 0; i-- {
			args[i] = stk.Pop()
		}
		switch op {
		case "BT", "T*":
			b.WriteByte('\n')
		case "Tf":
			if len(args) == 2 {
				decode = decoderFor(page.Font(args[0].Name()))
			}
		case "Tj", "TJ", "'", "\"":
			if len(args) > 0 {
				show(args[len(args)-1])
			}
		}
	})
	return b.String(), nil
}

// decoderFor returns the text decoder of a font. Identity-H fonts written by the
// renderer carry an identity ToUnicode map, so their two-byte codes are UTF-16BE.
// The library's own range decoder only shifts the low byte of such codes.
func decoderFor(font pdf.Font) func(string) string {
	if enc := font.V.Key("Encoding"); enc.Kind() == pdf.Name && enc.Name() == "Identity-H" {
		return decodeUTF16BE
	}
	enc := font.Encoder()
	return enc.Decode
}

func decodeUTF16BE(raw string) string {
	units := make([]uint16, 0, len(raw)/2)
	for i := 0; i+1 < len(raw); i += 2 {
		units = append(units, uint16(raw[i])<<8|uint16(raw[i+1]))
	}
	return string(utf16.Decode(units))
}
