package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/dom/cyprine-heroes/internal/domain"
	"github.com/dom/cyprine-heroes/internal/heroclient"
)

var demoHeroes = []domain.HeroCreate{
	{
		Firstname:   "Tony",
		Lastname:    "Stark",
		Nickname:    "Iron Man",
		Description: "Milliardaire philanthrope inventeur de génie avec une armure technologique ultra-perfectionnée",
		Skills:      domain.Skills{"intelligence": 5, "technologie": 5, "combat": 3, "vol": 4},
	},
	{
		Firstname:   "Natasha",
		Lastname:    "Romanoff",
		Nickname:    "Black Widow",
		Description: "Espionne et assassin de légende, experte en combat rapproché et infiltration",
		Skills:      domain.Skills{"combat_rapproche": 5, "infiltration": 5, "agilite": 4},
	},
	{
		Firstname:   "Loki",
		Lastname:    "Laufeyson",
		Nickname:    "God of Mischief",
		Description: "Dieu nordique du mensonge et des tours, maître des illusions et de la magie",
		Skills:      domain.Skills{"magie": 5, "illusion": 5, "manipulation": 4, "combat": 2},
	},
	{
		Firstname:   "Steve",
		Lastname:    "Rogers",
		Nickname:    "Captain America",
		Description: "Super-soldat patriote avec un bouclier en vibranium et des valeurs inébranlables",
		Skills:      domain.Skills{"leadership": 5, "combat": 4, "endurance": 4},
	},
	{
		Firstname:   "Bruce",
		Lastname:    "Banner",
		Nickname:    "The Hulk",
		Description: "Scientifique brillant qui se transforme en géant vert incontrôlable sous la colère",
		Skills:      domain.Skills{"force": 5, "resistance": 5, "intelligence": 4, "controle": 1},
	},
}

// seedClient is the part of the directory client used by seed.
type seedClient interface {
	ListHeroes(ctx context.Context) ([]domain.Hero, error)
	CreateHero(ctx context.Context, input domain.HeroCreate) (*domain.Hero, error)
}

func newSeedCmd(a *app) *cobra.Command {
	var (
		wait     time.Duration
		password string
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Wait for the API and create the demo heroes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if !cmd.Flags().Changed("password") {
				password = a.v.GetString("admin-password")
			}
			if password == "" {
				return errors.New("admin password required (--password or HEROES_ADMIN_PASSWORD)")
			}

			if err := waitForAPI(ctx, a.client, wait, a.log); err != nil {
				return err
			}
			adm, err := a.admin()
			if err != nil {
				return err
			}
			ok, err := adm.Login(ctx, password)
			if err != nil {
				return err
			}
			if !ok {
				return errors.New(adm.Message())
			}

			created, err := seedHeroes(ctx, a.client, demoHeroes, out)
			fmt.Fprintf(out, "%d/%d heroes created\n", created, len(demoHeroes))
			return err
		},
	}
	cmd.Flags().DurationVar(&wait, "wait", 30*time.Second, "how long to wait for the API")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	_ = a.v.BindEnv("admin-password", "HEROES_ADMIN_PASSWORD")
	return cmd
}

// waitForAPI polls the hero list with exponential backoff. Any HTTP answer
// counts as alive; only transport failures are retried.
func waitForAPI(ctx context.Context, client seedClient, wait time.Duration, log *zap.SugaredLogger) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 250 * time.Millisecond
	policy.MaxInterval = 2 * time.Second
	policy.MaxElapsedTime = wait

	probe := func() error {
		_, err := client.ListHeroes(ctx)
		if err == nil || !errors.Is(err, heroclient.ErrTransport) {
			return nil
		}
		return err
	}
	notify := func(err error, next time.Duration) {
		log.Infow("waiting for API", "error", err, "next", next)
	}
	if err := backoff.RetryNotify(probe, backoff.WithContext(policy, ctx), notify); err != nil {
		return fmt.Errorf("API not available after %s: %w", wait, err)
	}
	return nil
}

// seedHeroes creates heroes whose nickname is not taken yet.
func seedHeroes(ctx context.Context, client seedClient, heroes []domain.HeroCreate, out io.Writer) (int, error) {
	existing, err := client.ListHeroes(ctx)
	if err != nil {
		return 0, err
	}
	taken := make(map[string]bool, len(existing))
	for _, h := range existing {
		taken[h.Nickname] = true
	}

	created := 0
	var errs error
	for _, input := range heroes {
		if taken[input.Nickname] {
			fmt.Fprintf(out, "skipped %s (exists)\n", input.Nickname)
			continue
		}
		hero, err := client.CreateHero(ctx, input)
		if err != nil {
			fmt.Fprintf(out, "failed  %s: %v\n", input.Nickname, err)
			errs = multierr.Append(errs, err)
			continue
		}
		created++
		fmt.Fprintf(out, "created %s (%s)\n", hero.Nickname, hero.FullName())
	}
	return created, errs
}
