package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dom/cyprine-heroes/internal/domain"
	"github.com/dom/cyprine-heroes/internal/view"
)

const teamHelp = `commands:
  heroes               list heroes (numbered)
  select <n|id>        show a hero in the detail panel
  drag <n|id>          pick a hero up
  drop <slot>          drop the dragged hero on slot 1-3
  cancel               drop outside any slot
  place <slot> <n|id>  put a hero on a slot directly
  fire <slot>          empty a slot
  reset                empty the team
  show                 print the team
  retry                reload the heroes
  quit`

func newTeamCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "team",
		Short: "Interactive team builder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			home := view.NewHome(a.client, a.log)
			defer home.Close()
			return runTeam(cmd.Context(), home, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// runTeam reads one command per line until quit or end of input.
func runTeam(ctx context.Context, home *view.Home, in io.Reader, out io.Writer) error {
	load := func() {
		if err := home.Load(ctx); err != nil {
			fmt.Fprintf(out, "%s (retry)\n", home.Message())
			return
		}
		printNumbered(out, home)
	}
	load()
	fmt.Fprintln(out, teamHelp)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		home.ClearMessage()

		var err error
		switch fields[0] {
		case "quit", "exit", "q":
			return nil
		case "help", "?":
			fmt.Fprintln(out, teamHelp)
			continue
		case "retry", "reload":
			load()
			continue
		case "heroes", "ls":
			printNumbered(out, home)
			continue
		case "show":
			printTeam(out, home.TeamSummary())
			continue
		case "select":
			if err = need(fields, 2); err == nil {
				if err = home.Select(resolveRef(home, fields[1])); err == nil {
					hero, _ := home.Selected()
					printHeroPlain(out, hero)
				}
			}
		case "drag":
			if err = need(fields, 2); err == nil {
				err = home.Drag(resolveRef(home, fields[1]))
			}
		case "cancel":
			home.CancelDrag()
		case "reset":
			home.ResetTeam()
		case "drop":
			var slot int
			if err = need(fields, 2); err == nil {
				if slot, err = parseSlot(fields[1]); err == nil {
					err = home.Drop(slot)
				}
			}
		case "place":
			var slot int
			if err = need(fields, 3); err == nil {
				if slot, err = parseSlot(fields[1]); err == nil {
					err = home.Place(slot, resolveRef(home, fields[2]))
				}
			}
		case "fire", "remove":
			var slot int
			if err = need(fields, 2); err == nil {
				if slot, err = parseSlot(fields[1]); err == nil {
					err = home.Fire(slot)
				}
			}
		default:
			fmt.Fprintf(out, "unknown command %q, type help\n", fields[0])
			continue
		}

		if msg := home.Message(); msg != "" {
			fmt.Fprintln(out, msg)
		} else if err != nil {
			fmt.Fprintln(out, err)
		}
		printTeam(out, home.TeamSummary())
	}
}

func printNumbered(out io.Writer, home *view.Home) {
	selected, _ := home.Selected()
	for i, h := range home.Heroes() {
		marker := " "
		if h.ID == selected.ID {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %d. %s (%s)\n", marker, i+1, h.Nickname, h.FullName())
	}
}

func printHeroPlain(out io.Writer, h domain.Hero) {
	fmt.Fprintf(out, "%s - %s\n%s\n", h.Nickname, h.FullName(), h.Description)
	for _, l := range view.SkillLines(h.Skills) {
		fmt.Fprintf(out, "  %-20s %s\n", l.Name, l.Stars)
	}
}

// resolveRef accepts a 1-based list position or a hero id.
func resolveRef(home *view.Home, ref string) string {
	if n, err := strconv.Atoi(ref); err == nil {
		heroes := home.Heroes()
		if n >= 1 && n <= len(heroes) {
			return heroes[n-1].ID
		}
	}
	return ref
}

// parseSlot converts a 1-based slot number to an index.
func parseSlot(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid slot %q", s)
	}
	return n - 1, nil
}

func need(fields []string, n int) error {
	if len(fields) < n {
		return fmt.Errorf("%s: missing argument", fields[0])
	}
	return nil
}
