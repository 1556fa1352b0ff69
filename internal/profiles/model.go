package profiles

import "time"

// User is the account owning a profile.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Profile carries the contact block, summary and saved prompt of a user.
type Profile struct {
	ID           string      `json:"id"`
	UserID       string      `json:"userId"`
	Email        string      `json:"email"`
	Phone        string      `json:"phone"`
	LinkedIn     string      `json:"linkedin"`
	GitHub       string      `json:"github"`
	Portfolio    string      `json:"portfolio"`
	Location     string      `json:"location"`
	Summary      string      `json:"summary"`
	CustomPrompt string      `json:"-"`
	Educations   []Education `json:"educations"`
}

// Education is one education record on the profile.
type Education struct {
	ID          string     `json:"id"`
	Institution string     `json:"institution"`
	Degree      string     `json:"degree"`
	Field       string     `json:"field"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	Current     bool       `json:"current"`
}

// Bullet is an ordered line under an experience or project.
// Seq preserves insertion order for bullets sharing the same Order.
type Bullet struct {
	Seq     int64  `json:"-"`
	Content string `json:"content"`
	Order   int    `json:"order"`
}

// Experience is a work history record.
type Experience struct {
	ID          string     `json:"id"`
	Company     string     `json:"company"`
	Position    string     `json:"position"`
	Location    string     `json:"location"`
	Description string     `json:"description"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	Current     bool       `json:"current"`
	Bullets     []Bullet   `json:"bullets"`
}

// Project is a portfolio project. TechStack is stored raw, either a JSON array or comma separated.
type Project struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Summary     string     `json:"summary"`
	Description string     `json:"description"`
	Role        string     `json:"role"`
	TechStack   string     `json:"techStack"`
	URL         string     `json:"url"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	Archived    bool       `json:"-"`
	Order       int        `json:"order"`
	CreatedAt   time.Time  `json:"-"`
	Bullets     []Bullet   `json:"bullets"`
}

// Skill is a named skill with the user's proficiency.
type Skill struct {
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Proficiency string    `json:"proficiency"`
	CreatedAt   time.Time `json:"-"`
}

// Certification is a certification record.
type Certification struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// JobTarget is the job application the resume is tailored for.
type JobTarget struct {
	ApplicationID string `json:"applicationId"`
	Title         string `json:"title"`
	Description   string `json:"description"`
}

// GenerationInput is the flattened, ordered view of a user's data used to build a resume.
type GenerationInput struct {
	User           User            `json:"user"`
	Profile        Profile         `json:"profile"`
	Experiences    []Experience    `json:"experiences"`
	Projects       []Project       `json:"projects"`
	Skills         []Skill         `json:"skills"`
	Certifications []Certification `json:"certifications"`
	Job            JobTarget       `json:"job"`
}
