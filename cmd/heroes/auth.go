package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func newLoginCmd(a *app) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in as admin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			adm, err := a.admin()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("password") {
				fmt.Fprint(cmd.OutOrStdout(), "Mot de passe: ")
				password, err = readLine(cmd.InOrStdin())
				if err != nil {
					return err
				}
			}
			ok, err := adm.Login(cmd.Context(), password)
			if err != nil {
				return fmt.Errorf("%s: %w", adm.Message(), err)
			}
			if !ok {
				return errors.New(adm.Message())
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged in")
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "admin password (prompted when omitted)")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored admin credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			adm, err := a.admin()
			if err != nil {
				return err
			}
			if err := adm.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the session state and dashboard stats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			adm, err := a.admin()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "session: %s\n", adm.Status())
			if err := adm.Load(cmd.Context()); err != nil {
				fmt.Fprintln(out, adm.Message())
				return nil
			}
			stats := adm.Stats()
			fmt.Fprintf(out, "heroes:  %d\nskills:  %d\n", stats.Heroes, stats.Skills)
			return nil
		},
	}
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
