package model

import (
	"errors"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrNotObject means stored content is not a JSON object.
var ErrNotObject = errors.New("content is not a json object")

// DecodeLenient reads stored content for layout without requiring it to match the
// schema. Imported documents only promise a summary, experience or projects field,
// so mismatched types are coerced instead of rejected:
//   - string skills, tech and bullets are split into lists
//   - numbers and booleans become text, so a start of 2021 renders as "2021"
//   - a project or role description becomes its only bullet when bullets are absent
//   - a single object stands in for a one-entry list
func DecodeLenient(content string) (Document, error) {
	if !gjson.Valid(content) {
		return Document{}, ErrNotObject
	}
	root := gjson.Parse(content)
	if !root.IsObject() {
		return Document{}, ErrNotObject
	}

	doc := Document{
		Name:    first(root, "name", "fullName"),
		Contact: lenientContact(root),
		Summary: text(root.Get("summary")),
		Skills:  skillList(root.Get("skills")),
	}
	for _, p := range entries(root.Get("projects")) {
		doc.Projects = append(doc.Projects, Project{
			Title:   first(p, "title", "name"),
			Start:   text(p.Get("start")),
			End:     endDate(p),
			Bullets: bulletList(p),
			Tech:    splitList(firstValue(p, "tech", "technologies", "stack"), ","),
		})
	}
	for _, e := range entries(root.Get("experience")) {
		doc.Experience = append(doc.Experience, Experience{
			Company: first(e, "company", "organization", "employer"),
			Role:    first(e, "role", "title", "position"),
			Start:   text(e.Get("start")),
			End:     endDate(e),
			Bullets: bulletList(e),
		})
	}
	for _, e := range entries(root.Get("education")) {
		doc.Education = append(doc.Education, Education{
			Degree:      text(e.Get("degree")),
			Field:       first(e, "field", "major"),
			Institution: first(e, "institution", "school", "university"),
			Start:       text(e.Get("start")),
			End:         endDate(e),
		})
	}
	for _, c := range items(root.Get("certifications")) {
		title := text(c)
		if c.IsObject() {
			title = first(c, "title", "name")
		}
		doc.Certifications = append(doc.Certifications, Certification{Title: title})
	}
	return doc.Normalize(), nil
}

func lenientContact(root gjson.Result) Contact {
	src := root
	if c := root.Get("contact"); c.IsObject() {
		src = c
	}
	return Contact{
		Location:  text(src.Get("location")),
		Phone:     text(src.Get("phone")),
		Email:     text(src.Get("email")),
		LinkedIn:  text(src.Get("linkedin")),
		GitHub:    text(src.Get("github")),
		Portfolio: first(src, "portfolio", "website"),
	}
}

// text renders a scalar as a string and joins a list of scalars with spaces.
// Objects have no text form.
func text(r gjson.Result) string {
	switch {
	case r.IsArray():
		parts := make([]string, 0, len(r.Array()))
		for _, item := range r.Array() {
			if s := text(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	case r.IsObject():
		return ""
	case r.Type == gjson.Null:
		return ""
	}
	return strings.TrimSpace(r.String())
}

func first(r gjson.Result, keys ...string) string {
	return text(firstValue(r, keys...))
}

func firstValue(r gjson.Result, keys ...string) gjson.Result {
	for _, key := range keys {
		if v := r.Get(gjson.Escape(key)); v.Exists() && v.Type != gjson.Null {
			return v
		}
	}
	return gjson.Result{}
}

// entries returns the objects of a list, or the value itself when it is one object.
func entries(r gjson.Result) []gjson.Result {
	if r.IsObject() {
		return []gjson.Result{r}
	}
	var out []gjson.Result
	for _, item := range r.Array() {
		if item.IsObject() {
			out = append(out, item)
		}
	}
	return out
}

func items(r gjson.Result) []gjson.Result {
	if r.IsArray() {
		return r.Array()
	}
	if r.Exists() && r.Type != gjson.Null {
		return []gjson.Result{r}
	}
	return nil
}

// splitList reads a list of scalars, or splits a single string on sep.
func splitList(r gjson.Result, sep string) []string {
	if r.Type == gjson.String {
		return strings.Split(r.Str, sep)
	}
	var out []string
	for _, item := range items(r) {
		if item.IsObject() {
			out = append(out, first(item, "name", "title"))
			continue
		}
		out = append(out, text(item))
	}
	return out
}

// skillList also accepts skills grouped by category, as in {"languages": ["Go"]}.
func skillList(r gjson.Result) []string {
	if !r.IsObject() {
		return splitList(r, ",")
	}
	var out []string
	r.ForEach(func(_, group gjson.Result) bool {
		out = append(out, splitList(group, ",")...)
		return true
	})
	return out
}

func bulletList(entry gjson.Result) []string {
	bullets := splitList(firstValue(entry, "bullets", "highlights", "responsibilities"), "\n")
	if len(cleanStrings(bullets)) > 0 {
		return bullets
	}
	if desc := first(entry, "description", "summary"); desc != "" {
		return []string{desc}
	}
	return nil
}

func endDate(entry gjson.Result) string {
	if end := text(entry.Get("end")); end != "" {
		return end
	}
	if entry.Get("current").Bool() {
		return Present
	}
	return ""
}
