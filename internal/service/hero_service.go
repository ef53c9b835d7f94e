package service

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"

	"github.com/dom/cyprine-heroes/internal/domain"
	"github.com/dom/cyprine-heroes/internal/repository"
)

// ImageStore persists hero pictures and returns their public path.
type ImageStore interface {
	Save(heroID, filename, contentType string, r io.Reader) (string, error)
	Remove(heroID string) error
}

type HeroService struct {
	heroRepo repository.HeroRepository
	images   ImageStore
	log      *zap.SugaredLogger
}

func NewHeroService(heroRepo repository.HeroRepository, images ImageStore, log *zap.SugaredLogger) *HeroService {
	return &HeroService{
		heroRepo: heroRepo,
		images:   images,
		log:      log,
	}
}

// IsValidation reports whether err is a rejected hero payload.
func IsValidation(err error) bool {
	return errors.Is(err, domain.ErrMissingField) ||
		errors.Is(err, domain.ErrDescriptionTooLong) ||
		errors.Is(err, domain.ErrInvalidSkillRating)
}

func (s *HeroService) List(ctx context.Context) ([]*domain.Hero, error) {
	return s.heroRepo.GetAll(ctx)
}

func (s *HeroService) Get(ctx context.Context, id string) (*domain.Hero, error) {
	return s.heroRepo.GetByID(ctx, id)
}

func (s *HeroService) Create(ctx context.Context, input domain.HeroCreate) (*domain.Hero, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	if err := s.ensureNicknameFree(ctx, input.Nickname); err != nil {
		return nil, err
	}

	hero := &domain.Hero{
		Firstname:      input.Firstname,
		Lastname:       input.Lastname,
		Nickname:       input.Nickname,
		Description:    input.Description,
		ProfilePicture: input.ProfilePicture,
		Skills:         input.Skills,
	}
	if err := s.heroRepo.Create(ctx, hero); err != nil {
		return nil, err
	}

	s.log.Infow("hero created", "heroID", hero.ID, "nickname", hero.Nickname)
	return hero, nil
}

func (s *HeroService) Update(ctx context.Context, id string, input domain.HeroUpdate) (*domain.Hero, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	hero, err := s.heroRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Nickname != nil && *input.Nickname != hero.Nickname {
		if err := s.ensureNicknameFree(ctx, *input.Nickname); err != nil {
			return nil, err
		}
	}

	input.Apply(hero)
	if err := s.heroRepo.Update(ctx, hero); err != nil {
		return nil, err
	}

	s.log.Infow("hero updated", "heroID", hero.ID)
	return hero, nil
}

func (s *HeroService) Delete(ctx context.Context, id string) error {
	if err := s.heroRepo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.images.Remove(id); err != nil {
		s.log.Warnw("failed to remove hero images", "heroID", id, "error", err)
	}

	s.log.Infow("hero deleted", "heroID", id)
	return nil
}

// UploadImage stores the picture and points the hero's profile_picture at it.
func (s *HeroService) UploadImage(ctx context.Context, id, filename, contentType string, r io.Reader) (*domain.Hero, error) {
	hero, err := s.heroRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	publicPath, err := s.images.Save(hero.ID, filename, contentType, r)
	if err != nil {
		return nil, err
	}

	hero.ProfilePicture = &publicPath
	if err := s.heroRepo.Update(ctx, hero); err != nil {
		return nil, err
	}

	s.log.Infow("hero image uploaded", "heroID", hero.ID, "path", publicPath)
	return hero, nil
}

func (s *HeroService) ensureNicknameFree(ctx context.Context, nickname string) error {
	existing, err := s.heroRepo.GetByNickname(ctx, nickname)
	if err == nil && existing != nil {
		return domain.ErrNicknameExists
	}
	if err != nil && !errors.Is(err, domain.ErrHeroNotFound) {
		return err
	}
	return nil
}
