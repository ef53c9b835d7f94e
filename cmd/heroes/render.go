package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dom/cyprine-heroes/internal/domain"
	"github.com/dom/cyprine-heroes/internal/heroclient"
	"github.com/dom/cyprine-heroes/internal/team"
	"github.com/dom/cyprine-heroes/internal/view"
)

func printHeroTable(w io.Writer, heroes []domain.Hero) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNICKNAME\tNAME\tSKILLS\tAVG")
	for _, h := range heroes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.1f\n", h.ID, h.Nickname, h.FullName(), len(h.Skills), h.Skills.Average())
	}
	tw.Flush()
}

func printHero(w io.Writer, client *heroclient.Client, h domain.Hero) {
	fmt.Fprintf(w, "[%s] %s\n", h.Initial(), h.Nickname)
	fmt.Fprintf(w, "  %s\n", h.FullName())
	fmt.Fprintf(w, "  id: %s\n", h.ID)
	if h.HasPicture() {
		fmt.Fprintf(w, "  image: %s\n", client.ImageURL(*h.ProfilePicture))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, h.Description)

	lines := view.SkillLines(h.Skills)
	if len(lines) == 0 {
		return
	}
	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, l := range lines {
		fmt.Fprintf(tw, "  %s\t%s\n", l.Name, l.Stars)
	}
	tw.Flush()
}

func printTeam(w io.Writer, summary view.TeamSummary) {
	fmt.Fprintf(w, "Composition de l'Équipe (%d/%d)", summary.Filled, team.SlotCount)
	if label := summary.StrengthLabel(); label != "" {
		fmt.Fprintf(w, "  %s", label)
	}
	fmt.Fprintln(w)
	for i, h := range summary.Slots {
		if h == nil {
			fmt.Fprintf(w, "  %d. (vide)\n", i+1)
			continue
		}
		fmt.Fprintf(w, "  %d. %s  %s\n", i+1, h.Nickname, view.Stars(int(h.Skills.Average()+0.5)))
	}
}
