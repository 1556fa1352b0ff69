package render

// TextStyle captures the font settings for one kind of line.
type TextStyle struct {
	Family string
	Style  string
	Size   float64
	Color  RGB
}

// RGB is a text or stroke color.
type RGB struct {
	R, G, B int
}

const (
	fontFamily = "DejaVu"

	pageSize     = "Letter"
	pageMargin   = 50.0
	footerHeight = 20.0

	lineHeight    = 13.0
	bulletIndent  = 12.0
	bulletWidth   = 10.0
	bulletGap     = 2.0
	sectionGap    = 8.0
	ruleWidth     = 0.5
	bulletGlyph   = "•"
	dateSeparator = " - "
)

var (
	headingColor = RGB{31, 41, 55}
	nameColor    = RGB{17, 17, 17}
	bodyColor    = RGB{33, 33, 33}
	mutedColor   = RGB{90, 90, 90}
	ruleColor    = RGB{170, 170, 170}
)

// StyleMap centralizes the formatting of resume elements.
var StyleMap = map[string]TextStyle{
	"name":           {Family: fontFamily, Style: "B", Size: 20, Color: nameColor},
	"contact":        {Family: fontFamily, Size: 9.5, Color: mutedColor},
	"sectionHeading": {Family: fontFamily, Style: "B", Size: 11, Color: headingColor},
	"roleLine":       {Family: fontFamily, Style: "B", Size: 10.5, Color: bodyColor},
	"meta":           {Family: fontFamily, Style: "I", Size: 9.5, Color: mutedColor},
	"body":           {Family: fontFamily, Size: 10, Color: bodyColor},
	"footer":         {Family: fontFamily, Style: "I", Size: 8, Color: mutedColor},
}
