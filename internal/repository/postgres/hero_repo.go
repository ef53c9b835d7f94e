package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/dom/cyprine-heroes/internal/domain"
)

type heroRecord struct {
	ID             uuid.UUID                         `gorm:"type:uuid;primaryKey"`
	Firstname      string                            `gorm:"size:100;not null"`
	Lastname       string                            `gorm:"size:100;not null"`
	Nickname       string                            `gorm:"size:100;uniqueIndex;not null"`
	Description    string                            `gorm:"type:text;not null"`
	ProfilePicture *string                           `gorm:"size:500"`
	Skills         datatypes.JSONType[domain.Skills] `gorm:"not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (heroRecord) TableName() string {
	return "heroes"
}

func (r *heroRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func toRecord(h *domain.Hero) (*heroRecord, error) {
	rec := &heroRecord{
		Firstname:      h.Firstname,
		Lastname:       h.Lastname,
		Nickname:       h.Nickname,
		Description:    h.Description,
		ProfilePicture: h.ProfilePicture,
		Skills:         datatypes.NewJSONType(nonNilSkills(h.Skills)),
		CreatedAt:      h.CreatedAt,
		UpdatedAt:      h.UpdatedAt,
	}
	if h.ID != "" {
		id, err := uuid.Parse(h.ID)
		if err != nil {
			return nil, domain.ErrHeroNotFound
		}
		rec.ID = id
	}
	return rec, nil
}

func (r *heroRecord) toDomain() *domain.Hero {
	return &domain.Hero{
		ID:             r.ID.String(),
		Firstname:      r.Firstname,
		Lastname:       r.Lastname,
		Nickname:       r.Nickname,
		Description:    r.Description,
		ProfilePicture: r.ProfilePicture,
		Skills:         nonNilSkills(r.Skills.Data()),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func nonNilSkills(s domain.Skills) domain.Skills {
	if s == nil {
		return domain.Skills{}
	}
	return s
}

type heroRepository struct {
	db *gorm.DB
}

func NewHeroRepository(db *gorm.DB) *heroRepository {
	return &heroRepository{db: db}
}

func (r *heroRepository) Create(ctx context.Context, hero *domain.Hero) error {
	rec, err := toRecord(hero)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return translate(err)
	}
	*hero = *rec.toDomain()
	return nil
}

func (r *heroRepository) GetAll(ctx context.Context) ([]*domain.Hero, error) {
	var records []heroRecord
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&records).Error
	if err != nil {
		return nil, err
	}
	heroes := make([]*domain.Hero, len(records))
	for i := range records {
		heroes[i] = records[i].toDomain()
	}
	return heroes, nil
}

func (r *heroRepository) GetByID(ctx context.Context, id string) (*domain.Hero, error) {
	heroID, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrHeroNotFound
	}
	return r.first(ctx, "id = ?", heroID)
}

func (r *heroRepository) GetByNickname(ctx context.Context, nickname string) (*domain.Hero, error) {
	return r.first(ctx, "nickname = ?", nickname)
}

func (r *heroRepository) first(ctx context.Context, query string, arg any) (*domain.Hero, error) {
	var rec heroRecord
	err := r.db.WithContext(ctx).First(&rec, query, arg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrHeroNotFound
		}
		return nil, err
	}
	return rec.toDomain(), nil
}

func (r *heroRepository) Update(ctx context.Context, hero *domain.Hero) error {
	rec, err := toRecord(hero)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Model(&heroRecord{ID: rec.ID}).Select("*").Omit("id", "created_at").Updates(rec)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrHeroNotFound
	}
	updated, err := r.first(ctx, "id = ?", rec.ID)
	if err != nil {
		return err
	}
	*hero = *updated
	return nil
}

func (r *heroRepository) Delete(ctx context.Context, id string) error {
	heroID, err := uuid.Parse(id)
	if err != nil {
		return domain.ErrHeroNotFound
	}
	result := r.db.WithContext(ctx).Delete(&heroRecord{}, "id = ?", heroID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrHeroNotFound
	}
	return nil
}

// translate maps the unique nickname index onto the domain error.
func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrNicknameExists
	}
	return err
}
