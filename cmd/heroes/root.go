package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/dom/cyprine-heroes/internal/config"
	"github.com/dom/cyprine-heroes/internal/heroclient"
	"github.com/dom/cyprine-heroes/internal/logger"
	"github.com/dom/cyprine-heroes/internal/session"
	"github.com/dom/cyprine-heroes/internal/view"
)

// app carries the dependencies shared by every command.
type app struct {
	v       *viper.Viper
	fs      afero.Fs
	log     *zap.SugaredLogger
	client  *heroclient.Client
	session *session.Session
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), fs: afero.NewOsFs()}

	root := &cobra.Command{
		Use:           "heroes",
		Short:         "Browse heroes, build a team and manage the roster",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.String("api-url", heroclient.DefaultBaseURL, "heroes API base URL")
	flags.String("session-file", defaultSessionFile(), "file holding the admin credential")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")

	a.v.SetEnvPrefix("HEROES")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	_ = a.v.BindPFlags(flags)

	root.AddCommand(
		newListCmd(a),
		newShowCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newStatusCmd(a),
		newCreateCmd(a),
		newEditCmd(a),
		newDeleteCmd(a),
		newUploadCmd(a),
		newTeamCmd(a),
		newSeedCmd(a),
	)
	return root
}

func (a *app) init() error {
	logCfg := config.LoggerConfig{
		Level:  a.v.GetString("log-level"),
		Format: "console",
		Output: "stderr",
	}
	if err := logCfg.Validate(); err != nil {
		return err
	}
	log, err := logger.New(logCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.log = log

	sessionFile := a.v.GetString("session-file")
	if err := a.fs.MkdirAll(filepath.Dir(sessionFile), 0o700); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	client := heroclient.New(a.v.GetString("api-url"))
	a.session = session.New(session.NewFileStore(a.fs, sessionFile), client, log)
	a.client = client.WithTokens(a.session)
	return nil
}

// admin returns an initialised dashboard.
func (a *app) admin() (*view.Admin, error) {
	adm := view.NewAdmin(a.session, a.client, a.log)
	if err := adm.Init(); err != nil {
		return nil, err
	}
	return adm, nil
}

// requireLogin returns an initialised dashboard or an error telling the user
// to log in first.
func (a *app) requireLogin() (*view.Admin, error) {
	adm, err := a.admin()
	if err != nil {
		return nil, err
	}
	if adm.Status() != session.StatusAuthenticated {
		return nil, fmt.Errorf("not logged in, run `heroes login` first")
	}
	return adm, nil
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "cyprine-heroes", "session.json")
}
