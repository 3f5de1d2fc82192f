package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Resume is the aggregate stored in the "resumes" collection. All access is
// scoped by UserID (the identity-provider subject from the JWT).
type Resume struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID string             `bson:"user_id" json:"user_id"`

	Title    string `bson:"title" json:"title"`
	Template string `bson:"template,omitempty" json:"template,omitempty"` // modern|classic|minimal
	Theme    string `bson:"theme,omitempty" json:"theme,omitempty"`

	Basics     Basics           `bson:"basics" json:"basics"`
	Skills     SkillSet         `bson:"skills" json:"skills"`
	Work       []WorkEntry      `bson:"work" json:"work"`
	Education  []EducationEntry `bson:"education" json:"education"`
	Volunteer  []VolunteerEntry `bson:"volunteer" json:"volunteer"`
	Awards     []AwardEntry     `bson:"awards" json:"awards"`
	Activities Activities       `bson:"activities" json:"activities"`
	Labels     []string         `bson:"labels" json:"labels"`

	IsPublic  bool `bson:"is_public" json:"is_public"`
	IsDefault bool `bson:"is_default" json:"is_default"`

	// Set wholesale when a verification flow completes, cleared on revoke.
	Verification *Verification `bson:"verification,omitempty" json:"verification,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

type Basics struct {
	Name     string    `bson:"name" json:"name"`
	Label    string    `bson:"label,omitempty" json:"label,omitempty"`
	Email    string    `bson:"email,omitempty" json:"email,omitempty"`
	Phone    string    `bson:"phone,omitempty" json:"phone,omitempty"`
	Website  string    `bson:"website,omitempty" json:"website,omitempty"`
	Summary  string    `bson:"summary,omitempty" json:"summary,omitempty"`
	Location Location  `bson:"location,omitempty" json:"location,omitempty"`
	Profiles []Profile `bson:"profiles,omitempty" json:"profiles,omitempty"`
}

type Location struct {
	Address     string `bson:"address,omitempty" json:"address,omitempty"`
	City        string `bson:"city,omitempty" json:"city,omitempty"`
	Region      string `bson:"region,omitempty" json:"region,omitempty"`
	PostalCode  string `bson:"postal_code,omitempty" json:"postal_code,omitempty"`
	CountryCode string `bson:"country_code,omitempty" json:"country_code,omitempty"`
}

type Profile struct {
	Network  string `bson:"network" json:"network"` // linkedin|github|...
	Username string `bson:"username,omitempty" json:"username,omitempty"`
	URL      string `bson:"url,omitempty" json:"url,omitempty"`
}

// SkillSet groups skills into the seven fixed editor categories.
type SkillSet struct {
	Languages  []Skill `bson:"languages" json:"languages"`
	Frameworks []Skill `bson:"frameworks" json:"frameworks"`
	Databases  []Skill `bson:"databases" json:"databases"`
	Tools      []Skill `bson:"tools" json:"tools"`
	Cloud      []Skill `bson:"cloud" json:"cloud"`
	Practices  []Skill `bson:"practices" json:"practices"`
	SoftSkills []Skill `bson:"soft_skills" json:"soft_skills"`
}

type Skill struct {
	Name  string `bson:"name" json:"name"`
	Level int    `bson:"level" json:"level"` // 0..5
}

type WorkEntry struct {
	Company    string   `bson:"company" json:"company"`
	Position   string   `bson:"position" json:"position"`
	Website    string   `bson:"website,omitempty" json:"website,omitempty"`
	StartDate  string   `bson:"start_date,omitempty" json:"start_date,omitempty"`
	EndDate    string   `bson:"end_date,omitempty" json:"end_date,omitempty"`
	Summary    string   `bson:"summary,omitempty" json:"summary,omitempty"`
	Highlights []string `bson:"highlights,omitempty" json:"highlights,omitempty"`
}

type EducationEntry struct {
	Institution string   `bson:"institution" json:"institution"`
	Area        string   `bson:"area,omitempty" json:"area,omitempty"`
	StudyType   string   `bson:"study_type,omitempty" json:"study_type,omitempty"`
	StartDate   string   `bson:"start_date,omitempty" json:"start_date,omitempty"`
	EndDate     string   `bson:"end_date,omitempty" json:"end_date,omitempty"`
	GPA         string   `bson:"gpa,omitempty" json:"gpa,omitempty"`
	Courses     []string `bson:"courses,omitempty" json:"courses,omitempty"`
}

type VolunteerEntry struct {
	Organization string `bson:"organization" json:"organization"`
	Position     string `bson:"position,omitempty" json:"position,omitempty"`
	StartDate    string `bson:"start_date,omitempty" json:"start_date,omitempty"`
	EndDate      string `bson:"end_date,omitempty" json:"end_date,omitempty"`
	Summary      string `bson:"summary,omitempty" json:"summary,omitempty"`
}

type AwardEntry struct {
	Title   string `bson:"title" json:"title"`
	Date    string `bson:"date,omitempty" json:"date,omitempty"`
	Awarder string `bson:"awarder,omitempty" json:"awarder,omitempty"`
	Summary string `bson:"summary,omitempty" json:"summary,omitempty"`
}

// Activities holds the two free-text editor fields.
type Activities struct {
	Involvements string `bson:"involvements,omitempty" json:"involvements,omitempty"`
	Achievements string `bson:"achievements,omitempty" json:"achievements,omitempty"`
}
