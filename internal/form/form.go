// Package form turns the create/edit form input into directory calls.
package form

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"go.uber.org/multierr"

	"github.com/dom/cyprine-heroes/internal/domain"
)

// SkillEntry is one editable skill row.
type SkillEntry struct {
	Name  string
	Level int
}

// Image is the file chosen for upload.
type Image struct {
	Name string
	Data io.Reader
}

type Input struct {
	Firstname      string
	Lastname       string
	Nickname       string
	Description    string
	ProfilePicture string
	Skills         []SkillEntry
	Image          *Image
}

// ValidationError lists every field failure of an Input.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return "invalid hero: " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Fields returns the individual failures.
func (e *ValidationError) Fields() []error {
	return multierr.Errors(e.Err)
}

// Validate checks the input before any network call is made.
func (in Input) Validate() error {
	var err error
	for _, f := range []struct{ name, value string }{
		{"firstname", in.Firstname},
		{"lastname", in.Lastname},
		{"nickname", in.Nickname},
		{"description", in.Description},
	} {
		if strings.TrimSpace(f.value) == "" {
			err = multierr.Append(err, fmt.Errorf("%w: %s", domain.ErrMissingField, f.name))
		}
	}
	if n := utf8.RuneCountInString(in.Description); n > domain.MaxDescriptionLength {
		err = multierr.Append(err, fmt.Errorf("%w: %d characters, at most %d",
			domain.ErrDescriptionTooLong, n, domain.MaxDescriptionLength))
	}
	for _, s := range in.Skills {
		if strings.TrimSpace(s.Name) == "" {
			continue
		}
		if s.Level < domain.MinSkillRating || s.Level > domain.MaxSkillRating {
			err = multierr.Append(err, fmt.Errorf("%w: %q=%d", domain.ErrInvalidSkillRating, s.Name, s.Level))
		}
	}
	if err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}

// BuildSkills drops rows with a blank name. A repeated name keeps the last
// level. The result is never nil.
func (in Input) BuildSkills() domain.Skills {
	skills := domain.Skills{}
	for _, s := range in.Skills {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			continue
		}
		skills[name] = s.Level
	}
	return skills
}

// FromHero prefills the edit form.
func FromHero(hero domain.Hero) Input {
	in := Input{
		Firstname:   hero.Firstname,
		Lastname:    hero.Lastname,
		Nickname:    hero.Nickname,
		Description: hero.Description,
	}
	if hero.ProfilePicture != nil {
		in.ProfilePicture = *hero.ProfilePicture
	}
	names := make([]string, 0, len(hero.Skills))
	for name := range hero.Skills {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		in.Skills = append(in.Skills, SkillEntry{Name: name, Level: hero.Skills[name]})
	}
	return in
}

func (in Input) create() domain.HeroCreate {
	c := domain.HeroCreate{
		Firstname:   strings.TrimSpace(in.Firstname),
		Lastname:    strings.TrimSpace(in.Lastname),
		Nickname:    strings.TrimSpace(in.Nickname),
		Description: in.Description,
		Skills:      in.BuildSkills(),
	}
	if pic := strings.TrimSpace(in.ProfilePicture); pic != "" {
		c.ProfilePicture = &pic
	}
	return c
}

func (in Input) update() domain.HeroUpdate {
	c := in.create()
	return domain.HeroUpdate{
		Firstname:      &c.Firstname,
		Lastname:       &c.Lastname,
		Nickname:       &c.Nickname,
		Description:    &c.Description,
		ProfilePicture: c.ProfilePicture,
		Skills:         c.Skills,
	}
}

// Directory is the subset of the hero directory client the form writes to.
type Directory interface {
	CreateHero(ctx context.Context, input domain.HeroCreate) (*domain.Hero, error)
	UpdateHero(ctx context.Context, id string, input domain.HeroUpdate) (*domain.Hero, error)
	UploadImage(ctx context.Context, id, filename string, r io.Reader) (*domain.Hero, error)
	GetHero(ctx context.Context, id string) (*domain.Hero, error)
}

// PartialSaveError reports a record that was saved while the image upload
// that followed it failed. Hero is the saved record.
type PartialSaveError struct {
	Hero *domain.Hero
	Err  error
}

func (e *PartialSaveError) Error() string {
	return fmt.Sprintf("hero %s saved but image upload failed: %v", e.Hero.ID, e.Err)
}

func (e *PartialSaveError) Unwrap() error {
	return e.Err
}

// IsPartial returns the PartialSaveError wrapped in err, if any.
func IsPartial(err error) (*PartialSaveError, bool) {
	var pe *PartialSaveError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// Save writes the record, creating it when existing is nil, then uploads the
// chosen image and re-fetches the hero. The two writes are not atomic.
func Save(ctx context.Context, dir Directory, existing *domain.Hero, in Input) (*domain.Hero, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var (
		saved *domain.Hero
		err   error
	)
	if existing == nil {
		saved, err = dir.CreateHero(ctx, in.create())
	} else {
		saved, err = dir.UpdateHero(ctx, existing.ID, in.update())
	}
	if err != nil {
		return nil, err
	}

	if in.Image == nil {
		return saved, nil
	}
	if _, err := dir.UploadImage(ctx, saved.ID, in.Image.Name, in.Image.Data); err != nil {
		return saved, &PartialSaveError{Hero: saved, Err: err}
	}
	fresh, err := dir.GetHero(ctx, saved.ID)
	if err != nil {
		return saved, &PartialSaveError{Hero: saved, Err: err}
	}
	return fresh, nil
}
