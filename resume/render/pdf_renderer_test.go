package render

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"jobtracker-backend/internal/pdftext"
	"jobtracker-backend/resume/model"
)

func TestRenderSinglePageHasOneFooter(t *testing.T) {
	res, err := Render(sampleDocument(1))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if res.Pages != 1 {
		t.Fatalf("expected 1 page, got %d", res.Pages)
	}
	pages, err := pdftext.Pages(res.PDF)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("reader saw %d pages", len(pages))
	}
	if strings.Count(pages[0], "Page 1 of 1") != 1 {
		t.Fatalf("expected one footer, got text %q", pages[0])
	}
	for _, want := range []string{"Ada Lovelace", "SUMMARY", "SKILLS", "EXPERIENCE", "Role 0, Company 0"} {
		if !strings.Contains(pages[0], want) {
			t.Fatalf("expected %q in rendered text", want)
		}
	}
}

func TestRenderStampsEveryPageOfThree(t *testing.T) {
	var res Result
	found := false
	for n := 1; n <= 200; n++ {
		var err error
		res, err = Render(sampleDocument(n))
		if err != nil {
			t.Fatalf("Render(%d): %v", n, err)
		}
		if res.Pages == 3 {
			found = true
			break
		}
		if res.Pages > 3 {
			t.Fatalf("jumped past 3 pages at %d experiences", n)
		}
	}
	if !found {
		t.Fatalf("never reached 3 pages")
	}

	pages, err := pdftext.Pages(res.PDF)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, reader saw %d", len(pages))
	}
	for i, text := range pages {
		for j := 1; j <= 3; j++ {
			want := 0
			if j == i+1 {
				want = 1
			}
			stamp := fmt.Sprintf("Page %d of 3", j)
			if got := strings.Count(text, stamp); got != want {
				t.Fatalf("page %d: %q appears %d times, want %d", i+1, stamp, got, want)
			}
		}
	}
	if err := pdftext.CheckFooters(res.PDF); err != nil {
		t.Fatalf("CheckFooters: %v", err)
	}
}

func TestRenderSkipsEmptySections(t *testing.T) {
	doc := model.Document{Name: "Ada", Summary: "Writes engines."}
	pdf, err := RenderPDF(doc)
	if err != nil {
		t.Fatalf("RenderPDF: %v", err)
	}
	pages, err := pdftext.Pages(pdf)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	for _, absent := range []string{"SKILLS", "PROJECTS", "EXPERIENCE", "EDUCATION", "CERTIFICATIONS"} {
		if strings.Contains(pages[0], absent) {
			t.Fatalf("empty section %s should not render", absent)
		}
	}
	if !strings.Contains(pages[0], "SUMMARY") {
		t.Fatalf("expected summary heading")
	}
}

func TestRenderEmptyDocument(t *testing.T) {
	res, err := Render(model.Document{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if res.Pages != 1 || len(res.PDF) == 0 {
		t.Fatalf("expected a single blank page, got %d pages", res.Pages)
	}
}

func TestRenderKeepsNonLatinText(t *testing.T) {
	doc := model.Document{
		Name:    "Łukasz Żółć",
		Summary: "Cut p99 latency → 40ms; ≥ 99.9% uptime",
		Skills:  []string{"Grafana", "Žilina ops"},
	}
	pdf, err := RenderPDF(doc)
	if err != nil {
		t.Fatalf("RenderPDF: %v", err)
	}
	pages, err := pdftext.Pages(pdf)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	for _, want := range []string{"Łukasz Żółć", "→ 40ms; ≥ 99.9% uptime", "Žilina ops", "Page 1 of 1"} {
		if !strings.Contains(pages[0], want) {
			t.Fatalf("expected %q in rendered text %q", want, pages[0])
		}
	}
}

func TestRenderWrapsLongName(t *testing.T) {
	name := strings.TrimSpace(strings.Repeat("Alexandria ", 14))
	pdf, err := RenderPDF(model.Document{Name: name})
	if err != nil {
		t.Fatalf("RenderPDF: %v", err)
	}
	pages, err := pdftext.Pages(pdf)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	lines := 0
	for _, line := range strings.Split(pages[0], "\n") {
		if strings.Contains(line, "Alexandria") {
			lines++
			if line == name {
				t.Fatalf("name was drawn on a single line")
			}
		}
	}
	if lines < 2 {
		t.Fatalf("expected the name to wrap, got %d lines in %q", lines, pages[0])
	}
}

func TestSplitColumns(t *testing.T) {
	tests := []struct {
		items       []string
		left, right []string
	}{
		{items: []string{}, left: []string{}, right: []string{}},
		{items: []string{"a"}, left: []string{"a"}, right: []string{}},
		{items: []string{"a", "b"}, left: []string{"a"}, right: []string{"b"}},
		{items: []string{"a", "b", "c", "d", "e"}, left: []string{"a", "b", "c"}, right: []string{"d", "e"}},
	}
	for _, tt := range tests {
		left, right := SplitColumns(tt.items)
		if !reflect.DeepEqual(left, tt.left) || !reflect.DeepEqual(right, tt.right) {
			t.Fatalf("SplitColumns(%v) = %v / %v", tt.items, left, right)
		}
	}
}

func TestContactLineOmitsEmptyFields(t *testing.T) {
	got := contactLine(model.Contact{Location: "London", Email: "ada@example.com", GitHub: " "})
	if got != "London | ada@example.com" {
		t.Fatalf("unexpected contact line %q", got)
	}
}

func sampleDocument(experiences int) model.Document {
	doc := model.Document{
		Name: "Ada Lovelace",
		Contact: model.Contact{
			Location: "London",
			Email:    "ada@example.com",
			GitHub:   "github.com/ada",
		},
		Summary: "Engineer focused on analytical engines and reliable numerical software.",
		Skills:  []string{"Go", "PostgreSQL", "Redis", "Kubernetes", "Distributed systems design and operations"},
		Projects: []model.Project{{
			Title:   "Difference Engine",
			Start:   "Jan 2020",
			End:     "Present",
			Bullets: []string{"Built a mechanical calculator."},
			Tech:    []string{"Brass", "Steam"},
		}},
		Education:      []model.Education{{Degree: "BSc", Field: "Mathematics", Institution: "University of London", Start: "Sep 2010", End: "Jun 2013"}},
		Certifications: []model.Certification{{Title: "Certified Analyst"}},
	}
	for i := 0; i < experiences; i++ {
		doc.Experience = append(doc.Experience, model.Experience{
			Company: fmt.Sprintf("Company %d", i),
			Role:    fmt.Sprintf("Role %d", i),
			Start:   "Jan 2015",
			End:     "Dec 2019",
			Bullets: []string{
				"Designed and shipped a service handling millions of requests per day with careful attention to latency.",
				"Mentored engineers and reviewed designs.",
				"Reduced infrastructure spend through capacity planning.",
			},
		})
	}
	return doc
}
