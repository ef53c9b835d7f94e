package view_test

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dom/cyprine-heroes/internal/form"
	"github.com/dom/cyprine-heroes/internal/heroclient"
	"github.com/dom/cyprine-heroes/internal/session"
	"github.com/dom/cyprine-heroes/internal/testutil"
	"github.com/dom/cyprine-heroes/internal/view"
)

const sessionFile = "/session.json"

// newAdmin wires a dashboard to the test server the same way the CLI does.
func newAdmin(t *testing.T, ts *testutil.TestServer, fs afero.Fs) *view.Admin {
	t.Helper()
	client := ts.Client()
	sess := session.New(session.NewFileStore(fs, sessionFile), client, nil)
	adm := view.NewAdmin(sess, client.WithTokens(sess), nil)
	require.NoError(t, adm.Init())
	return adm
}

func heroInput(nickname string) form.Input {
	return form.Input{
		Firstname:   "Natasha",
		Lastname:    "Romanoff",
		Nickname:    nickname,
		Description: "Espionne",
		Skills:      []form.SkillEntry{{Name: "combat", Level: 5}, {Name: "infiltration", Level: 4}},
	}
}

func TestAdmin_Login(t *testing.T) {
	ts := testutil.NewTestServer(t)
	fs := afero.NewMemMapFs()
	adm := newAdmin(t, ts, fs)
	ctx := context.Background()

	assert.Equal(t, session.StatusUnauthenticated, adm.Status())

	ok, err := adm.Login(ctx, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, view.MsgWrongPassword, adm.Message())
	assert.Equal(t, session.StatusUnauthenticated, adm.Status())

	ok, err = adm.Login(ctx, testutil.AdminPassword)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, adm.Message())

	reloaded := newAdmin(t, ts, fs)
	assert.Equal(t, session.StatusAuthenticated, reloaded.Status())

	require.NoError(t, reloaded.Logout())
	assert.Equal(t, session.StatusUnauthenticated, newAdmin(t, ts, fs).Status())
}

func TestAdmin_RequiresLogin(t *testing.T) {
	ts := testutil.NewTestServer(t)
	adm := newAdmin(t, ts, afero.NewMemMapFs())

	_, err := adm.Save(context.Background(), nil, heroInput("Black Widow"))
	assert.ErrorIs(t, err, view.ErrNotAuthenticated)
	assert.ErrorIs(t, adm.Delete(context.Background(), "x"), view.ErrNotAuthenticated)
}

func TestAdmin_CRUD(t *testing.T) {
	ts := testutil.NewTestServer(t)
	adm := newAdmin(t, ts, afero.NewMemMapFs())
	ctx := context.Background()

	ok, err := adm.Login(ctx, testutil.AdminPassword)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, adm.Load(ctx))
	assert.Equal(t, view.Stats{}, adm.Stats())

	created, err := adm.Save(ctx, nil, heroInput("Black Widow"))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, view.Stats{Heroes: 1, Skills: 2}, adm.Stats())

	in := form.FromHero(*created)
	in.Nickname = "Widow"
	in.Skills = append(in.Skills, form.SkillEntry{Name: "agilite", Level: 4})
	updated, err := adm.Save(ctx, created, in)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Widow", adm.Heroes()[0].Nickname)
	assert.Equal(t, view.Stats{Heroes: 1, Skills: 3}, adm.Stats())

	require.NoError(t, adm.Delete(ctx, created.ID))
	assert.Empty(t, adm.Heroes())

	err = adm.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, heroclient.ErrNotFound)
	assert.Equal(t, view.MsgDeleteFailed, adm.Message())
	assert.Equal(t, session.StatusAuthenticated, adm.Status())
}

func TestAdmin_SaveValidationFailure(t *testing.T) {
	ts := testutil.NewTestServer(t)
	adm := newAdmin(t, ts, afero.NewMemMapFs())
	ctx := context.Background()
	_, err := adm.Login(ctx, testutil.AdminPassword)
	require.NoError(t, err)

	in := heroInput("")
	hero, err := adm.Save(ctx, nil, in)
	assert.Nil(t, hero)
	var verr *form.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, view.MsgInvalidForm, adm.Message())

	heroes, err := ts.Services.Hero.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, heroes)
}

func TestAdmin_PartialSave(t *testing.T) {
	ts := testutil.NewTestServer(t)
	adm := newAdmin(t, ts, afero.NewMemMapFs())
	ctx := context.Background()
	_, err := adm.Login(ctx, testutil.AdminPassword)
	require.NoError(t, err)

	in := heroInput("Black Widow")
	in.Image = &form.Image{Name: "notes.txt", Data: strings.NewReader("not an image")}

	hero, err := adm.Save(ctx, nil, in)
	require.Error(t, err)
	_, partial := form.IsPartial(err)
	assert.True(t, partial)
	assert.ErrorIs(t, err, heroclient.ErrBadRequest)
	assert.Equal(t, view.MsgImageFailed, adm.Message())

	require.NotNil(t, hero)
	assert.False(t, hero.HasPicture())
	require.Len(t, adm.Heroes(), 1, "saved record applied to the list")

	stored, err := ts.Services.Hero.Get(ctx, hero.ID)
	require.NoError(t, err)
	assert.Equal(t, "Black Widow", stored.Nickname)
}

func TestAdmin_RejectedCredentialForcesLogout(t *testing.T) {
	ts := testutil.NewTestServer(t)
	fs := afero.NewMemMapFs()
	require.NoError(t, session.NewFileStore(fs, sessionFile).Set(session.TokenKey, "expired-token"))
	hero := testutil.NewHeroBuilder().Build(t, ts.DB.DB)

	adm := newAdmin(t, ts, fs)
	require.Equal(t, session.StatusAuthenticated, adm.Status())

	err := adm.Delete(context.Background(), hero.ID)
	assert.ErrorIs(t, err, heroclient.ErrUnauthorized)
	assert.Equal(t, view.MsgSessionExpired, adm.Message())
	assert.Equal(t, session.StatusUnauthenticated, adm.Status())
	assert.Equal(t, session.StatusUnauthenticated, newAdmin(t, ts, fs).Status(), "stored credential cleared")

	_, err = ts.Services.Hero.Get(context.Background(), hero.ID)
	assert.NoError(t, err, "hero not deleted")
}
