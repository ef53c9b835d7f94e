package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxDescriptionLength = 3000
	MinSkillRating       = 1
	MaxSkillRating       = 5
)

// Skills maps a skill name to its rating (1-5).
type Skills map[string]int

// Average returns the mean rating, or 0 when no skill is defined.
func (s Skills) Average() float64 {
	if len(s) == 0 {
		return 0
	}
	total := 0
	for _, rating := range s {
		total += rating
	}
	return float64(total) / float64(len(s))
}

// Validate checks every rating is within [MinSkillRating, MaxSkillRating].
func (s Skills) Validate() error {
	for name, rating := range s {
		if rating < MinSkillRating || rating > MaxSkillRating {
			return fmt.Errorf("%w: %q=%d", ErrInvalidSkillRating, name, rating)
		}
	}
	return nil
}

type Hero struct {
	ID             string    `json:"id"`
	Firstname      string    `json:"firstname"`
	Lastname       string    `json:"lastname"`
	Nickname       string    `json:"nickname"`
	Description    string    `json:"description"`
	ProfilePicture *string   `json:"profile_picture,omitempty"`
	Skills         Skills    `json:"skills"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Initial is the glyph rendered when the hero has no profile picture.
func (h Hero) Initial() string {
	r, _ := utf8.DecodeRuneInString(h.Nickname)
	if r == utf8.RuneError {
		return "?"
	}
	return strings.ToUpper(string(r))
}

// FullName returns "firstname lastname".
func (h Hero) FullName() string {
	return strings.TrimSpace(h.Firstname + " " + h.Lastname)
}

// HasPicture reports whether a profile picture path is set.
func (h Hero) HasPicture() bool {
	return h.ProfilePicture != nil && *h.ProfilePicture != ""
}

// HeroCreate holds the fields accepted when creating a hero.
type HeroCreate struct {
	Firstname      string  `json:"firstname"`
	Lastname       string  `json:"lastname"`
	Nickname       string  `json:"nickname"`
	Description    string  `json:"description"`
	ProfilePicture *string `json:"profile_picture,omitempty"`
	Skills         Skills  `json:"skills"`
}

// Validate enforces the required fields, description bound and skill ratings.
func (c HeroCreate) Validate() error {
	required := map[string]string{
		"firstname":   c.Firstname,
		"lastname":    c.Lastname,
		"nickname":    c.Nickname,
		"description": c.Description,
	}
	for _, field := range []string{"firstname", "lastname", "nickname", "description"} {
		if strings.TrimSpace(required[field]) == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, field)
		}
	}
	if utf8.RuneCountInString(c.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	return c.Skills.Validate()
}

// HeroUpdate is a partial update: nil fields are left untouched. A non-nil
// empty Skills map clears the skills.
type HeroUpdate struct {
	Firstname      *string `json:"firstname,omitempty"`
	Lastname       *string `json:"lastname,omitempty"`
	Nickname       *string `json:"nickname,omitempty"`
	Description    *string `json:"description,omitempty"`
	ProfilePicture *string `json:"profile_picture,omitempty"`
	Skills         Skills  `json:"skills"`
}

// Validate checks the fields that are present.
func (u HeroUpdate) Validate() error {
	for field, value := range map[string]*string{
		"firstname":   u.Firstname,
		"lastname":    u.Lastname,
		"nickname":    u.Nickname,
		"description": u.Description,
	} {
		if value != nil && strings.TrimSpace(*value) == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, field)
		}
	}
	if u.Description != nil && utf8.RuneCountInString(*u.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	return u.Skills.Validate()
}

// Apply copies the present fields onto hero.
func (u HeroUpdate) Apply(hero *Hero) {
	if u.Firstname != nil {
		hero.Firstname = *u.Firstname
	}
	if u.Lastname != nil {
		hero.Lastname = *u.Lastname
	}
	if u.Nickname != nil {
		hero.Nickname = *u.Nickname
	}
	if u.Description != nil {
		hero.Description = *u.Description
	}
	if u.ProfilePicture != nil {
		hero.ProfilePicture = u.ProfilePicture
	}
	if u.Skills != nil {
		hero.Skills = u.Skills
	}
}
