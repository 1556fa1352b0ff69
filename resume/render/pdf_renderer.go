package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"jobtracker-backend/internal/shared/apperr"
	"jobtracker-backend/resume/model"
)

// Result is a rendered document and its page count.
type Result struct {
	PDF   []byte
	Pages int
}

// RenderPDF lays out doc as a paginated PDF.
func RenderPDF(doc model.Document) ([]byte, error) {
	res, err := Render(doc)
	if err != nil {
		return nil, err
	}
	return res.PDF, nil
}

// Render lays out every populated section, then revisits each page to stamp a
// "Page X of N" footer once N is known.
func Render(doc model.Document) (Result, error) {
	doc = doc.Normalize()

	l := newLayout(doc.Name)
	l.header(doc)
	l.summary(doc.Summary)
	l.skills(doc.Skills)
	l.projects(doc.Projects)
	l.experience(doc.Experience)
	l.education(doc.Education)
	l.certifications(doc.Certifications)

	pages := l.pages()
	l.stampFooters(pages)

	if err := l.pdf.Error(); err != nil {
		return Result{}, fmt.Errorf("%w: %v", apperr.ErrRender, err)
	}
	var buf bytes.Buffer
	if err := l.pdf.Output(&buf); err != nil {
		return Result{}, fmt.Errorf("%w: %v", apperr.ErrRender, err)
	}
	return Result{PDF: buf.Bytes(), Pages: len(pages)}, nil
}

// SplitColumns balances items across two columns; the left one takes the extra item.
func SplitColumns(items []string) (left, right []string) {
	mid := (len(items) + 1) / 2
	return items[:mid], items[mid:]
}

type layout struct {
	pdf   *fpdf.Fpdf
	left  float64
	width float64
}

func newLayout(title string) *layout {
	pdf := fpdf.New("P", "pt", pageSize, "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin+footerHeight)
	pdf.SetCreator("jobtracker", true)
	registerFonts(pdf)
	if title != "" {
		pdf.SetTitle(plain(title), true)
	}
	pdf.AddPage()

	w, _ := pdf.GetPageSize()
	return &layout{
		pdf:   pdf,
		left:  pageMargin,
		width: w - 2*pageMargin,
	}
}

func (l *layout) use(name string) {
	s := StyleMap[name]
	l.pdf.SetFont(s.Family, s.Style, s.Size)
	l.pdf.SetTextColor(s.Color.R, s.Color.G, s.Color.B)
}

func (l *layout) header(doc model.Document) {
	if doc.Name != "" {
		l.use("name")
		l.pdf.MultiCell(l.width, 24, plain(doc.Name), "", "C", false)
	}
	if line := contactLine(doc.Contact); line != "" {
		l.use("contact")
		l.pdf.MultiCell(l.width, 12, plain(line), "", "C", false)
	}
}

// section draws the rule as the top border of the heading cell so both move to
// the next page together.
func (l *layout) section(title string) {
	l.pdf.Ln(sectionGap)
	l.pdf.SetDrawColor(ruleColor.R, ruleColor.G, ruleColor.B)
	l.pdf.SetLineWidth(ruleWidth)
	l.use("sectionHeading")
	l.pdf.CellFormat(l.width, 20, plain(strings.ToUpper(title)), "T", 1, "LM", false, 0, "")
	l.pdf.Ln(2)
}

func (l *layout) summary(text string) {
	if text == "" {
		return
	}
	l.section("Summary")
	l.use("body")
	l.pdf.MultiCell(l.width, lineHeight, plain(text), "", "L", false)
}

func (l *layout) skills(items []string) {
	if len(items) == 0 {
		return
	}
	l.section("Skills")
	l.use("body")

	left, right := SplitColumns(items)
	textWidth := l.width/2 - bulletWidth
	for i := range left {
		leftLines := l.wrap(left[i], textWidth)
		var rightLines []string
		if i < len(right) {
			rightLines = l.wrap(right[i], textWidth)
		}
		rows := len(leftLines)
		if len(rightLines) > rows {
			rows = len(rightLines)
		}
		for k := 0; k < rows; k++ {
			l.pdf.SetX(l.left)
			l.skillCell(leftLines, k, textWidth, 0)
			l.skillCell(rightLines, k, textWidth, 1)
		}
		l.pdf.Ln(bulletGap)
	}
}

// skillCell writes one wrapped line of a column item; lines are already cleaned.
func (l *layout) skillCell(lines []string, k int, width float64, ln int) {
	glyph, text := "", ""
	if k < len(lines) {
		text = lines[k]
		if k == 0 {
			glyph = bulletGlyph
		}
	}
	l.pdf.CellFormat(bulletWidth, lineHeight, glyph, "", 0, "L", false, 0, "")
	l.pdf.CellFormat(width, lineHeight, text, "", ln, "L", false, 0, "")
}

func (l *layout) projects(items []model.Project) {
	if len(items) == 0 {
		return
	}
	l.section("Projects")
	for i, p := range items {
		if i > 0 {
			l.pdf.Ln(4)
		}
		l.entryLine("roleLine", p.Title, dateRange(p.Start, p.End))
		if len(p.Tech) > 0 {
			l.use("meta")
			l.pdf.MultiCell(l.width, lineHeight, plain("Tech: "+strings.Join(p.Tech, ", ")), "", "L", false)
		}
		l.bullets(p.Bullets)
	}
}

func (l *layout) experience(items []model.Experience) {
	if len(items) == 0 {
		return
	}
	l.section("Experience")
	for i, e := range items {
		if i > 0 {
			l.pdf.Ln(4)
		}
		l.entryLine("roleLine", joinNonEmpty(", ", e.Role, e.Company), dateRange(e.Start, e.End))
		l.bullets(e.Bullets)
	}
}

func (l *layout) education(items []model.Education) {
	if len(items) == 0 {
		return
	}
	l.section("Education")
	for i, e := range items {
		if i > 0 {
			l.pdf.Ln(4)
		}
		if title := joinNonEmpty(", ", e.Degree, e.Field); title != "" {
			l.use("roleLine")
			l.pdf.MultiCell(l.width, lineHeight+1, plain(title), "", "L", false)
		}
		l.entryLine("body", e.Institution, dateRange(e.Start, e.End))
	}
}

func (l *layout) certifications(items []model.Certification) {
	if len(items) == 0 {
		return
	}
	l.section("Certifications")
	titles := make([]string, 0, len(items))
	for _, c := range items {
		titles = append(titles, c.Title)
	}
	l.bullets(titles)
}

func (l *layout) bullets(items []string) {
	l.use("body")
	for _, item := range items {
		l.pdf.SetX(l.left + bulletIndent)
		l.pdf.CellFormat(bulletWidth, lineHeight, bulletGlyph, "", 0, "L", false, 0, "")
		l.pdf.MultiCell(l.width-bulletIndent-bulletWidth, lineHeight, plain(item), "", "L", false)
		l.pdf.Ln(bulletGap)
	}
}

// entryLine writes a left-aligned title with right-aligned dates on the same line,
// wrapping the title onto its own lines when both do not fit.
func (l *layout) entryLine(style, title, dates string) {
	if title == "" && dates == "" {
		return
	}
	dateWidth := 0.0
	if dates != "" {
		l.use("meta")
		dateWidth = l.pdf.GetStringWidth(plain(dates)) + 6
	}

	l.use(style)
	titleWidth := l.width - dateWidth
	if dates == "" {
		l.pdf.MultiCell(l.width, lineHeight+1, plain(title), "", "L", false)
		return
	}
	if l.pdf.GetStringWidth(plain(title)) > titleWidth {
		l.pdf.MultiCell(l.width, lineHeight+1, plain(title), "", "L", false)
		l.use("meta")
		l.pdf.CellFormat(l.width, lineHeight, plain(dates), "", 1, "L", false, 0, "")
		return
	}
	l.pdf.CellFormat(titleWidth, lineHeight+1, plain(title), "", 0, "L", false, 0, "")
	l.use("meta")
	l.pdf.CellFormat(dateWidth, lineHeight+1, plain(dates), "", 1, "R", false, 0, "")
}

func (l *layout) wrap(text string, width float64) []string {
	out := l.pdf.SplitText(plain(text), width)
	if len(out) == 0 {
		out = append(out, "")
	}
	return out
}

// pages lists the page handles produced by the layout pass.
func (l *layout) pages() []int {
	out := make([]int, l.pdf.PageCount())
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func (l *layout) stampFooters(pages []int) {
	total := len(pages)
	_, pageHeight := l.pdf.GetPageSize()
	footer := StyleMap["footer"]

	l.pdf.SetAutoPageBreak(false, 0)
	for _, page := range pages {
		l.pdf.SetPage(page)
		// fpdf skips a SetFont matching its last call, and the revisited page may end in another font.
		l.pdf.SetFont(footer.Family, "", footer.Size+1)
		l.use("footer")
		l.pdf.SetXY(l.left, pageHeight-pageMargin-footerHeight/2)
		l.pdf.CellFormat(l.width, footerHeight, fmt.Sprintf("Page %d of %d", page, total), "", 0, "C", false, 0, "")
	}
}

func contactLine(c model.Contact) string {
	return joinNonEmpty(" | ", c.Location, c.Phone, c.Email, c.LinkedIn, c.GitHub, c.Portfolio)
}

func dateRange(start, end string) string {
	return joinNonEmpty(dateSeparator, start, end)
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
