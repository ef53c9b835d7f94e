package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dom/cyprine-heroes/internal/domain"
	"github.com/dom/cyprine-heroes/internal/form"
	"github.com/dom/cyprine-heroes/internal/view"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every hero",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			home := view.NewHome(a.client, a.log)
			defer home.Close()
			if err := home.Load(cmd.Context()); err != nil {
				return fmt.Errorf("%s: %w", home.Message(), err)
			}
			if msg := home.Message(); msg != "" {
				fmt.Fprintln(cmd.OutOrStdout(), msg)
				return nil
			}
			printHeroTable(cmd.OutOrStdout(), home.Heroes())
			return nil
		},
	}
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a hero's details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hero, err := a.client.GetHero(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printHero(cmd.OutOrStdout(), a.client, *hero)
			return nil
		},
	}
}

// heroFlags are the form fields shared by create and edit.
type heroFlags struct {
	firstname   string
	lastname    string
	nickname    string
	description string
	picture     string
	skills      []string
	clearSkills bool
	image       string
}

func (f *heroFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.firstname, "firstname", "", "first name")
	fl.StringVar(&f.lastname, "lastname", "", "last name")
	fl.StringVar(&f.nickname, "nickname", "", "nickname")
	fl.StringVar(&f.description, "description", "", "description, or @file to read it from a file")
	fl.StringVar(&f.picture, "picture", "", "profile picture path or URL")
	fl.StringArrayVar(&f.skills, "skill", nil, "skill as name=level (1-5), repeatable")
	fl.BoolVar(&f.clearSkills, "clear-skills", false, "remove every skill")
	fl.StringVar(&f.image, "image", "", "image file to upload after saving")
}

// apply overwrites in with the flags set on cmd.
func (f *heroFlags) apply(cmd *cobra.Command, in *form.Input) error {
	changed := cmd.Flags().Changed
	if changed("firstname") {
		in.Firstname = f.firstname
	}
	if changed("lastname") {
		in.Lastname = f.lastname
	}
	if changed("nickname") {
		in.Nickname = f.nickname
	}
	if changed("description") {
		desc, err := readValue(f.description)
		if err != nil {
			return err
		}
		in.Description = desc
	}
	if changed("picture") {
		in.ProfilePicture = f.picture
	}
	if f.clearSkills {
		in.Skills = nil
	}
	if changed("skill") {
		entries, err := parseSkills(f.skills)
		if err != nil {
			return err
		}
		in.Skills = append(in.Skills, entries...)
	}
	return nil
}

// open returns the image to upload, if any. The caller closes it.
func (f *heroFlags) open(in *form.Input) (*os.File, error) {
	if f.image == "" {
		return nil, nil
	}
	file, err := os.Open(f.image)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	in.Image = &form.Image{Name: filepath.Base(f.image), Data: file}
	return file, nil
}

func newCreateCmd(a *app) *cobra.Command {
	var f heroFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a hero",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			adm, err := a.requireLogin()
			if err != nil {
				return err
			}
			var in form.Input
			if err := f.apply(cmd, &in); err != nil {
				return err
			}
			return saveHero(cmd, a, adm, nil, in, &f)
		},
	}
	f.register(cmd)
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	var f heroFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a hero; unset flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			adm, err := a.requireLogin()
			if err != nil {
				return err
			}
			existing, err := a.client.GetHero(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			in := form.FromHero(*existing)
			if err := f.apply(cmd, &in); err != nil {
				return err
			}
			return saveHero(cmd, a, adm, existing, in, &f)
		},
	}
	f.register(cmd)
	return cmd
}

func saveHero(cmd *cobra.Command, a *app, adm *view.Admin, existing *domain.Hero, in form.Input, f *heroFlags) error {
	file, err := f.open(&in)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	hero, err := adm.Save(cmd.Context(), existing, in)
	if err != nil {
		var verr *form.ValidationError
		if errors.As(err, &verr) {
			for _, ferr := range verr.Fields() {
				fmt.Fprintf(cmd.ErrOrStderr(), "  - %v\n", ferr)
			}
		}
		if hero != nil {
			printHero(cmd.OutOrStdout(), a.client, *hero)
		}
		return fmt.Errorf("%s: %w", adm.Message(), err)
	}
	printHero(cmd.OutOrStdout(), a.client, *hero)
	return nil
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a hero",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			adm, err := a.requireLogin()
			if err != nil {
				return err
			}
			if err := adm.Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("%s: %w", adm.Message(), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}

func newUploadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <id> <image>",
		Short: "Upload a hero's profile picture",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireLogin(); err != nil {
				return err
			}
			file, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("open image: %w", err)
			}
			defer file.Close()

			hero, err := a.client.UploadImage(cmd.Context(), args[0], filepath.Base(args[1]), file)
			if err != nil {
				return err
			}
			printHero(cmd.OutOrStdout(), a.client, *hero)
			return nil
		},
	}
}

// parseSkills reads name=level pairs.
func parseSkills(raw []string) ([]form.SkillEntry, error) {
	entries := make([]form.SkillEntry, 0, len(raw))
	for _, s := range raw {
		name, level, ok := strings.Cut(s, "=")
		if !ok {
			return nil, fmt.Errorf("invalid skill %q, expected name=level", s)
		}
		n, err := strconv.Atoi(strings.TrimSpace(level))
		if err != nil {
			return nil, fmt.Errorf("invalid level in skill %q: %w", s, err)
		}
		entries = append(entries, form.SkillEntry{Name: strings.TrimSpace(name), Level: n})
	}
	return entries, nil
}

func readValue(v string) (string, error) {
	path, ok := strings.CutPrefix(v, "@")
	if !ok {
		return v, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
