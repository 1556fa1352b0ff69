// Package fallback builds a resume document from stored records without calling a generative service.
package fallback

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"jobtracker-backend/internal/profiles"
	"jobtracker-backend/resume/model"
)

const monthYearLayout = "Jan 2006"

// Generate is deterministic: the same input always yields the same document.
// Every schema key is present; sections without data are empty.
func Generate(in profiles.GenerationInput) model.Document {
	doc := model.Document{
		Name:    strings.TrimSpace(in.User.Name),
		Contact: contact(in),
		Summary: summary(in),
	}

	projectTech := make([][]string, len(in.Projects))
	skills := make([]string, 0, len(in.Skills))
	for _, s := range in.Skills {
		skills = append(skills, s.Name)
	}
	for i, p := range in.Projects {
		projectTech[i] = ParseTechStack(p.TechStack)
		skills = append(skills, projectTech[i]...)
	}
	doc.Skills = skills

	for i, p := range in.Projects {
		doc.Projects = append(doc.Projects, model.Project{
			Title:   p.Title,
			Start:   MonthYear(p.StartDate),
			End:     MonthYear(p.EndDate),
			Bullets: projectBullets(p),
			Tech:    projectTech[i],
		})
	}

	for _, e := range in.Experiences {
		start := e.StartDate
		doc.Experience = append(doc.Experience, model.Experience{
			Company: e.Company,
			Role:    e.Position,
			Start:   MonthYear(&start),
			End:     endDate(e.EndDate, e.Current),
			Bullets: bulletText(e.Bullets),
		})
	}

	for _, edu := range in.Profile.Educations {
		doc.Education = append(doc.Education, model.Education{
			Degree:      edu.Degree,
			Field:       edu.Field,
			Institution: edu.Institution,
			Start:       MonthYear(edu.StartDate),
			End:         endDate(edu.EndDate, edu.Current),
		})
	}

	for _, c := range in.Certifications {
		doc.Certifications = append(doc.Certifications, model.Certification{Title: c.Title})
	}

	return doc.Normalize()
}

// Mark attaches the fallback marker. It is kept apart from Generate so the document stays deterministic.
func Mark(doc model.Document, reason string, now time.Time) model.Document {
	doc.Meta = &model.Meta{
		Generator: model.GeneratorFallback,
		Reason:    reason,
		Timestamp: now.UTC(),
	}
	return doc
}

// ParseTechStack reads a stored tech stack. A JSON string array is used as is; anything else
// is split on commas. It never fails.
func ParseTechStack(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}
	}
	var list []string
	if strings.HasPrefix(raw, "[") && json.Unmarshal([]byte(raw), &list) == nil {
		return model.DedupeStrings(list)
	}
	return model.DedupeStrings(strings.Split(raw, ","))
}

// MonthYear formats a date as "Jan 2006"; nil or zero renders "".
func MonthYear(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(monthYearLayout)
}

func endDate(end *time.Time, current bool) string {
	if current {
		return model.Present
	}
	return MonthYear(end)
}

func contact(in profiles.GenerationInput) model.Contact {
	email := in.Profile.Email
	if strings.TrimSpace(email) == "" {
		email = in.User.Email
	}
	return model.Contact{
		Location:  in.Profile.Location,
		Phone:     in.Profile.Phone,
		Email:     email,
		LinkedIn:  in.Profile.LinkedIn,
		GitHub:    in.Profile.GitHub,
		Portfolio: in.Profile.Portfolio,
	}
}

func summary(in profiles.GenerationInput) string {
	if s := strings.TrimSpace(in.Profile.Summary); s != "" {
		return s
	}
	title := strings.TrimSpace(in.Job.Title)
	if title == "" {
		return "Professional profile summarized from saved experience and projects."
	}
	return fmt.Sprintf("Candidate for the %s role, summarized from saved experience and projects.", title)
}

func projectBullets(p profiles.Project) []string {
	bullets := bulletText(p.Bullets)
	if len(bullets) > 0 {
		return bullets
	}
	for _, text := range []string{p.Description, p.Summary} {
		if text = strings.TrimSpace(text); text != "" {
			return []string{text}
		}
	}
	return []string{}
}

func bulletText(bullets []profiles.Bullet) []string {
	out := make([]string, 0, len(bullets))
	for _, b := range bullets {
		out = append(out, b.Content)
	}
	return out
}
