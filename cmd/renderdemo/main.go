package main

// Render a resume document to PDF:
//   go run ./cmd/renderdemo -out ./out/sample_resume.pdf
//   go run ./cmd/renderdemo -in resume.json -out resume.pdf

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"jobtracker-backend/internal/pdftext"
	"jobtracker-backend/internal/profiles"
	"jobtracker-backend/resume/fallback"
	"jobtracker-backend/resume/model"
	"jobtracker-backend/resume/render"
)

func main() {
	outPath := flag.String("out", "./out/sample_resume.pdf", "output path for the rendered PDF")
	inPath := flag.String("in", "", "resume document JSON to render; a built-in sample when empty")
	verify := flag.Bool("verify", true, "read the PDF back and check one page footer per page")
	flag.Parse()

	doc, err := loadDocument(*inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load failed: %v\n", err)
		os.Exit(1)
	}

	result, err := render.Render(doc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "render failed: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "write failed: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*outPath, result.PDF, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write failed: %v\n", err)
		os.Exit(1)
	}

	if *verify {
		read, err := pdftext.PageCount(result.PDF)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read back failed: %v\n", err)
			os.Exit(1)
		}
		if read != result.Pages {
			fmt.Fprintf(os.Stderr, "page count mismatch: rendered %d, read back %d\n", result.Pages, read)
			os.Exit(1)
		}
		if err := pdftext.CheckFooters(result.PDF); err != nil {
			fmt.Fprintf(os.Stderr, "footer check failed: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("OK: wrote %s (%d pages)\n", *outPath, result.Pages)
}

func loadDocument(path string) (model.Document, error) {
	if path == "" {
		return fallback.Generate(sampleInput()), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.Document{}, err
	}
	doc, err := model.DecodeLenient(string(raw))
	if err != nil {
		return model.Document{}, err
	}
	return doc.Normalize(), nil
}

func sampleInput() profiles.GenerationInput {
	month := func(y int, m time.Month) time.Time { return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC) }
	ended := month(2021, time.March)

	return profiles.GenerationInput{
		User: profiles.User{ID: "demo", Name: "Jordan Lee", Email: "jordan.lee@example.com"},
		Profile: profiles.Profile{
			Phone:    "+1-555-0102",
			Location: "Austin, TX",
			LinkedIn: "linkedin.com/in/jordanlee",
			GitHub:   "github.com/jordanlee",
			Summary:  "Backend engineer with 8+ years of experience building resilient APIs and data services.",
			Educations: []profiles.Education{{
				Institution: "University of Texas",
				Degree:      "B.S.",
				Field:       "Computer Science",
				StartDate:   timePtr(month(2010, time.August)),
				EndDate:     timePtr(month(2014, time.May)),
			}},
		},
		Experiences: []profiles.Experience{
			{
				Company:   "Acme Logistics",
				Position:  "Senior Backend Engineer",
				StartDate: month(2021, time.April),
				Current:   true,
				Bullets: []profiles.Bullet{
					{Content: "Designed a routing service that reduced shipment latency by 18%.", Order: 0},
					{Content: "Implemented distributed tracing to cut incident triage time by 35%.", Order: 1},
				},
			},
			{
				Company:   "Blue Harbor Systems",
				Position:  "Backend Engineer",
				StartDate: month(2018, time.January),
				EndDate:   &ended,
				Bullets: []profiles.Bullet{
					{Content: "Built event-driven ingestion pipelines for compliance data feeds.", Order: 0},
				},
			},
		},
		Projects: []profiles.Project{{
			Title:     "Job Tracker",
			Summary:   "Tracks applications and tailors resumes per job.",
			TechStack: `["Go", "PostgreSQL", "Redis"]`,
			StartDate: timePtr(month(2024, time.January)),
		}},
		Skills: []profiles.Skill{
			{Name: "Go"}, {Name: "Java"}, {Name: "Kubernetes"}, {Name: "Terraform"}, {Name: "gRPC"},
		},
		Certifications: []profiles.Certification{{Title: "AWS Certified Developer"}},
		Job:            profiles.JobTarget{Title: "Staff Backend Engineer"},
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
