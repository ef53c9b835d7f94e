package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dom/cyprine-heroes/internal/domain"
	"github.com/dom/cyprine-heroes/internal/repository/postgres"
)

// HeroBuilder creates test heroes with a builder pattern
type HeroBuilder struct {
	hero domain.Hero
}

// NewHeroBuilder creates a new HeroBuilder with a unique nickname
func NewHeroBuilder() *HeroBuilder {
	suffix := uuid.New().String()[:8]
	return &HeroBuilder{
		hero: domain.Hero{
			Firstname:   "Test",
			Lastname:    "Hero",
			Nickname:    fmt.Sprintf("hero_%s", suffix),
			Description: "A hero built for tests",
			Skills:      domain.Skills{},
		},
	}
}

// WithID sets a fixed id, for heroes used without a database.
func (b *HeroBuilder) WithID(id string) *HeroBuilder {
	b.hero.ID = id
	return b
}

func (b *HeroBuilder) WithNickname(nickname string) *HeroBuilder {
	b.hero.Nickname = nickname
	return b
}

func (b *HeroBuilder) WithName(firstname, lastname string) *HeroBuilder {
	b.hero.Firstname = firstname
	b.hero.Lastname = lastname
	return b
}

func (b *HeroBuilder) WithDescription(description string) *HeroBuilder {
	b.hero.Description = description
	return b
}

// WithSkill adds or replaces one skill.
func (b *HeroBuilder) WithSkill(name string, rating int) *HeroBuilder {
	b.hero.Skills[name] = rating
	return b
}

func (b *HeroBuilder) WithPicture(path string) *HeroBuilder {
	b.hero.ProfilePicture = &path
	return b
}

// Hero returns the hero without persisting it.
func (b *HeroBuilder) Hero() domain.Hero {
	h := b.hero
	h.Skills = domain.Skills{}
	for name, rating := range b.hero.Skills {
		h.Skills[name] = rating
	}
	return h
}

// Create returns the matching create payload.
func (b *HeroBuilder) Create() domain.HeroCreate {
	h := b.Hero()
	return domain.HeroCreate{
		Firstname:      h.Firstname,
		Lastname:       h.Lastname,
		Nickname:       h.Nickname,
		Description:    h.Description,
		ProfilePicture: h.ProfilePicture,
		Skills:         h.Skills,
	}
}

// Build creates the hero in the database
func (b *HeroBuilder) Build(t *testing.T, db *gorm.DB) *domain.Hero {
	t.Helper()

	hero := b.Hero()
	if err := postgres.NewHeroRepository(db).Create(context.Background(), &hero); err != nil {
		t.Fatalf("failed to create hero: %v", err)
	}
	return &hero
}
