package model

import (
	"encoding/json"
	"strings"
	"time"
)

// Document is the structured resume produced by generation or the fallback path.
type Document struct {
	Name           string          `json:"name"`
	Contact        Contact         `json:"contact"`
	Summary        string          `json:"summary"`
	Skills         []string        `json:"skills"`
	Projects       []Project       `json:"projects"`
	Experience     []Experience    `json:"experience"`
	Education      []Education     `json:"education"`
	Certifications []Certification `json:"certifications"`
	Meta           *Meta           `json:"meta,omitempty"`
}

// Contact holds the header contact line. Every field is optional.
type Contact struct {
	Location  string `json:"location"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	LinkedIn  string `json:"linkedin"`
	GitHub    string `json:"github"`
	Portfolio string `json:"portfolio"`
}

// Project is a notable project entry.
type Project struct {
	Title   string   `json:"title"`
	Start   string   `json:"start"`
	End     string   `json:"end"`
	Bullets []string `json:"bullets"`
	Tech    []string `json:"tech"`
}

// Experience is a work history entry.
type Experience struct {
	Company string   `json:"company"`
	Role    string   `json:"role"`
	Start   string   `json:"start"`
	End     string   `json:"end"`
	Bullets []string `json:"bullets"`
}

// Education is an education entry.
type Education struct {
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	Institution string `json:"institution"`
	Start       string `json:"start"`
	End         string `json:"end"`
}

// Certification is a certification entry.
type Certification struct {
	Title string `json:"title"`
}

// Meta marks how a document was produced. It is not part of the schema contract.
type Meta struct {
	Generator string    `json:"generator"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	GeneratorAI       = "ai"
	GeneratorFallback = "fallback"
	GeneratorImport   = "import"

	// Present is the end-date literal for ongoing entries.
	Present = "Present"
)

// Normalize trims strings, replaces nil slices with empty ones and dedupes skills
// case-insensitively, keeping the first spelling.
func (d Document) Normalize() Document {
	out := d
	out.Name = strings.TrimSpace(d.Name)
	out.Summary = strings.TrimSpace(d.Summary)
	out.Contact = Contact{
		Location:  strings.TrimSpace(d.Contact.Location),
		Phone:     strings.TrimSpace(d.Contact.Phone),
		Email:     strings.TrimSpace(d.Contact.Email),
		LinkedIn:  strings.TrimSpace(d.Contact.LinkedIn),
		GitHub:    strings.TrimSpace(d.Contact.GitHub),
		Portfolio: strings.TrimSpace(d.Contact.Portfolio),
	}
	out.Skills = DedupeStrings(d.Skills)

	out.Projects = make([]Project, 0, len(d.Projects))
	for _, p := range d.Projects {
		out.Projects = append(out.Projects, Project{
			Title:   strings.TrimSpace(p.Title),
			Start:   strings.TrimSpace(p.Start),
			End:     strings.TrimSpace(p.End),
			Bullets: cleanStrings(p.Bullets),
			Tech:    DedupeStrings(p.Tech),
		})
	}
	out.Experience = make([]Experience, 0, len(d.Experience))
	for _, e := range d.Experience {
		out.Experience = append(out.Experience, Experience{
			Company: strings.TrimSpace(e.Company),
			Role:    strings.TrimSpace(e.Role),
			Start:   strings.TrimSpace(e.Start),
			End:     strings.TrimSpace(e.End),
			Bullets: cleanStrings(e.Bullets),
		})
	}
	out.Education = make([]Education, 0, len(d.Education))
	for _, e := range d.Education {
		out.Education = append(out.Education, Education{
			Degree:      strings.TrimSpace(e.Degree),
			Field:       strings.TrimSpace(e.Field),
			Institution: strings.TrimSpace(e.Institution),
			Start:       strings.TrimSpace(e.Start),
			End:         strings.TrimSpace(e.End),
		})
	}
	out.Certifications = make([]Certification, 0, len(d.Certifications))
	for _, c := range d.Certifications {
		title := strings.TrimSpace(c.Title)
		if title == "" {
			continue
		}
		out.Certifications = append(out.Certifications, Certification{Title: title})
	}
	return out
}

// Marshal encodes the document as the stored content text.
func (d Document) Marshal() (string, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// WithoutMeta returns a copy with the generator marker removed.
func (d Document) WithoutMeta() Document {
	d.Meta = nil
	return d
}

// Decode parses stored content into a normalized Document. Unknown keys are ignored.
func Decode(content string) (Document, error) {
	var doc Document
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return Document{}, err
	}
	return doc.Normalize(), nil
}

// DedupeStrings drops blanks and case-insensitive duplicates, preserving first-seen order.
func DedupeStrings(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}

func cleanStrings(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
