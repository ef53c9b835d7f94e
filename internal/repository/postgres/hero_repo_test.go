package postgres_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dom/cyprine-heroes/internal/domain"
	"github.com/dom/cyprine-heroes/internal/repository/postgres"
	"github.com/dom/cyprine-heroes/internal/testutil"
)

func TestHeroRepository_Create(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewHeroRepository(testDB.DB)
	ctx := context.Background()

	hero := testutil.NewHeroBuilder().
		WithNickname("Iron Man").
		WithSkill("vol", 4).
		Hero()
	require.NoError(t, repo.Create(ctx, &hero))

	_, err := uuid.Parse(hero.ID)
	assert.NoError(t, err, "id assigned")
	assert.False(t, hero.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, hero.ID)
	require.NoError(t, err)
	testutil.AssertSameHero(t, hero, *got)
	assert.Nil(t, got.ProfilePicture)
}

func TestHeroRepository_DuplicateNickname(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewHeroRepository(testDB.DB)
	ctx := context.Background()

	first := testutil.NewHeroBuilder().WithNickname("Hulk").Build(t, testDB.DB)
	second := testutil.NewHeroBuilder().WithNickname("Thor").Build(t, testDB.DB)

	dup := testutil.NewHeroBuilder().WithNickname("Hulk").Hero()
	assert.ErrorIs(t, repo.Create(ctx, &dup), domain.ErrNicknameExists)

	second.Nickname = first.Nickname
	assert.ErrorIs(t, repo.Update(ctx, second), domain.ErrNicknameExists)

	got, err := repo.GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "Thor", got.Nickname)
}

func TestHeroRepository_NilSkillsStoredAsEmpty(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewHeroRepository(testDB.DB)
	ctx := context.Background()

	hero := testutil.NewHeroBuilder().Hero()
	hero.Skills = nil
	require.NoError(t, repo.Create(ctx, &hero))

	got, err := repo.GetByID(ctx, hero.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.Skills)
	assert.Empty(t, got.Skills)
}

func TestHeroRepository_GetByID(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewHeroRepository(testDB.DB)
	ctx := context.Background()

	hero := testutil.NewHeroBuilder().Build(t, testDB.DB)

	tests := []struct {
		name    string
		id      string
		wantErr error
	}{
		{name: "existing hero", id: hero.ID},
		{name: "non-existent hero", id: uuid.NewString(), wantErr: domain.ErrHeroNotFound},
		{name: "malformed id", id: "not-a-uuid", wantErr: domain.ErrHeroNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.GetByID(ctx, tt.id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, hero.ID, got.ID)
		})
	}
}

func TestHeroRepository_GetAllOrdered(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewHeroRepository(testDB.DB)
	ctx := context.Background()

	empty, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	first := testutil.NewHeroBuilder().WithNickname("first").Build(t, testDB.DB)
	second := testutil.NewHeroBuilder().WithNickname("second").Build(t, testDB.DB)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first.ID, all[0].ID)
	assert.Equal(t, second.ID, all[1].ID)
}

func TestHeroRepository_GetByNickname(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewHeroRepository(testDB.DB)
	ctx := context.Background()

	hero := testutil.NewHeroBuilder().WithNickname("Loki").Build(t, testDB.DB)

	got, err := repo.GetByNickname(ctx, "Loki")
	require.NoError(t, err)
	assert.Equal(t, hero.ID, got.ID)

	_, err = repo.GetByNickname(ctx, "Thor")
	assert.ErrorIs(t, err, domain.ErrHeroNotFound)
}

func TestHeroRepository_Update(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewHeroRepository(testDB.DB)
	ctx := context.Background()

	hero := testutil.NewHeroBuilder().WithSkill("force", 5).WithSkill("vol", 2).Build(t, testDB.DB)

	pic := "/uploads/" + hero.ID + ".png"
	hero.Nickname = "renamed"
	hero.ProfilePicture = &pic
	hero.Skills = domain.Skills{"force": 3}
	require.NoError(t, repo.Update(ctx, hero))

	got, err := repo.GetByID(ctx, hero.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Nickname)
	require.NotNil(t, got.ProfilePicture)
	assert.Equal(t, pic, *got.ProfilePicture)
	assert.Equal(t, domain.Skills{"force": 3}, got.Skills, "skills replaced, not merged")
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))

	missing := testutil.NewHeroBuilder().WithID(uuid.NewString()).Hero()
	assert.ErrorIs(t, repo.Update(ctx, &missing), domain.ErrHeroNotFound)
}

func TestHeroRepository_Delete(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewHeroRepository(testDB.DB)
	ctx := context.Background()

	hero := testutil.NewHeroBuilder().Build(t, testDB.DB)

	require.NoError(t, repo.Delete(ctx, hero.ID))
	_, err := repo.GetByID(ctx, hero.ID)
	assert.ErrorIs(t, err, domain.ErrHeroNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, hero.ID), domain.ErrHeroNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "bogus"), domain.ErrHeroNotFound)
}

func TestHeroRepository_Postgres(t *testing.T) {
	testDB := testutil.NewPostgresDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	ctx := context.Background()

	hero := testutil.NewHeroBuilder().WithSkill("magie", 5).Hero()
	require.NoError(t, repos.Hero.Create(ctx, &hero))

	dup := testutil.NewHeroBuilder().WithNickname(hero.Nickname).Hero()
	assert.ErrorIs(t, repos.Hero.Create(ctx, &dup), domain.ErrNicknameExists)

	hero.Skills = domain.Skills{}
	require.NoError(t, repos.Hero.Update(ctx, &hero))
	got, err := repos.Hero.GetByID(ctx, hero.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Skills)

	testDB.Truncate(t)
	all, err := repos.Hero.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
