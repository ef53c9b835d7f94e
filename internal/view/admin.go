package view

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/dom/cyprine-heroes/internal/collection"
	"github.com/dom/cyprine-heroes/internal/domain"
	"github.com/dom/cyprine-heroes/internal/form"
	"github.com/dom/cyprine-heroes/internal/heroclient"
	"github.com/dom/cyprine-heroes/internal/logger"
	"github.com/dom/cyprine-heroes/internal/session"
)

const (
	MsgWrongPassword   = "Mot de passe incorrect"
	MsgLoginFailed     = "Erreur de connexion. Vérifiez que le serveur est démarré."
	MsgAdminLoadFailed = "Impossible de charger les héros"
	MsgDeleteFailed    = "Impossible de supprimer le héros"
	MsgSaveFailed      = "Erreur lors de la sauvegarde du héros"
	MsgImageFailed     = "Héros sauvegardé, mais l'envoi de l'image a échoué"
	MsgInvalidForm     = "Formulaire invalide"
	MsgSessionExpired  = "Session expirée, veuillez vous reconnecter"
)

// ErrNotAuthenticated is returned by protected actions before a login.
var ErrNotAuthenticated = errors.New("not authenticated")

// Directory is the hero directory as used by the dashboard.
type Directory interface {
	collection.Lister
	form.Directory
	DeleteHero(ctx context.Context, id string) error
}

// Admin is the password-gated dashboard.
type Admin struct {
	session *session.Session
	dir     Directory
	heroes  *collection.State
	log     *zap.SugaredLogger

	message string
}

func NewAdmin(sess *session.Session, dir Directory, log *zap.SugaredLogger) *Admin {
	log = logger.OrNop(log)
	return &Admin{
		session: sess,
		dir:     dir,
		heroes:  collection.New(dir, log),
		log:     log,
	}
}

// Init runs the one-shot credential check. Until it returns, Status reports
// session.StatusLoading.
func (a *Admin) Init() error {
	return a.session.Init()
}

func (a *Admin) Status() session.Status {
	return a.session.Status()
}

func (a *Admin) Message() string {
	return a.message
}

func (a *Admin) Heroes() []domain.Hero {
	return a.heroes.Heroes()
}

// Login returns false with MsgWrongPassword set when the password is
// rejected.
func (a *Admin) Login(ctx context.Context, password string) (bool, error) {
	ok, err := a.session.Login(ctx, password)
	switch {
	case err != nil:
		a.message = MsgLoginFailed
		return false, err
	case !ok:
		a.message = MsgWrongPassword
		return false, nil
	}
	a.message = ""
	return true, nil
}

func (a *Admin) Logout() error {
	a.message = ""
	return a.session.Logout()
}

func (a *Admin) Load(ctx context.Context) error {
	if _, err := a.heroes.Load(ctx); err != nil {
		a.message = MsgAdminLoadFailed
		return err
	}
	a.message = ""
	return nil
}

// Save creates (existing == nil) or updates a hero and reflects the result
// in the list. A record saved before a failed image upload is still applied
// and the *form.PartialSaveError is returned.
func (a *Admin) Save(ctx context.Context, existing *domain.Hero, in form.Input) (*domain.Hero, error) {
	if !a.session.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}

	hero, err := form.Save(ctx, a.dir, existing, in)
	if hero != nil {
		a.apply(existing == nil, *hero)
	}
	if err == nil {
		a.message = ""
		return hero, nil
	}

	var verr *form.ValidationError
	switch {
	case errors.As(err, &verr):
		a.message = MsgInvalidForm
	case a.expired(err):
		a.message = MsgSessionExpired
	case hero != nil:
		a.message = MsgImageFailed
	default:
		a.message = MsgSaveFailed
	}
	a.log.Warnw("save hero failed", "error", err, "partial", hero != nil)
	return hero, err
}

// Delete removes the hero on the server, then from the list. A hero already
// gone from the server leaves the list untouched.
func (a *Admin) Delete(ctx context.Context, id string) error {
	if !a.session.IsAuthenticated() {
		return ErrNotAuthenticated
	}

	if err := a.dir.DeleteHero(ctx, id); err != nil {
		if !a.expired(err) {
			a.message = MsgDeleteFailed
		}
		a.log.Warnw("delete hero failed", "heroID", id, "error", err)
		return fmt.Errorf("delete hero %s: %w", id, err)
	}
	a.heroes.ApplyDeleted(id)
	a.message = ""
	return nil
}

// Stats is the dashboard header.
type Stats struct {
	Heroes int
	Skills int
}

func (a *Admin) Stats() Stats {
	return Stats{
		Heroes: a.heroes.Len(),
		Skills: a.heroes.TotalSkills(),
	}
}

func (a *Admin) apply(created bool, hero domain.Hero) {
	if created {
		a.heroes.ApplyCreated(hero)
		return
	}
	a.heroes.ApplyUpdated(hero)
}

// expired logs out when the server rejected the credential.
func (a *Admin) expired(err error) bool {
	if !errors.Is(err, heroclient.ErrUnauthorized) {
		return false
	}
	if lerr := a.session.Logout(); lerr != nil {
		a.log.Errorw("logout after rejected credential", "error", lerr)
	}
	a.message = MsgSessionExpired
	return true
}
