package service

import (
	"go.uber.org/zap"

	"github.com/dom/cyprine-heroes/internal/config"
	"github.com/dom/cyprine-heroes/internal/repository"
)

type Services struct {
	Auth *AuthService
	Hero *HeroService
}

func NewServices(repos *repository.Repositories, images ImageStore, cfg *config.Config, log *zap.SugaredLogger) (*Services, error) {
	auth, err := NewAuthService(cfg)
	if err != nil {
		return nil, err
	}
	return &Services{
		Auth: auth,
		Hero: NewHeroService(repos.Hero, images, log),
	}, nil
}
