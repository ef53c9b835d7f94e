package repository

import (
	"context"

	"github.com/dom/cyprine-heroes/internal/domain"
)

// HeroRepository persists heroes. Lookups of an unknown id return
// domain.ErrHeroNotFound.
type HeroRepository interface {
	Create(ctx context.Context, hero *domain.Hero) error
	GetAll(ctx context.Context) ([]*domain.Hero, error)
	GetByID(ctx context.Context, id string) (*domain.Hero, error)
	GetByNickname(ctx context.Context, nickname string) (*domain.Hero, error)
	Update(ctx context.Context, hero *domain.Hero) error
	Delete(ctx context.Context, id string) error
}

type Repositories struct {
	Hero HeroRepository
}
