package view

import (
	"sort"
	"strings"

	"github.com/dom/cyprine-heroes/internal/domain"
)

// Stars renders a rating as filled and empty stars out of MaxSkillRating.
func Stars(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > domain.MaxSkillRating {
		rating = domain.MaxSkillRating
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", domain.MaxSkillRating-rating)
}

// SkillName turns a stored skill key such as "hand_to_hand" into a label.
func SkillName(key string) string {
	return strings.ReplaceAll(key, "_", " ")
}

// SkillLine is one rendered skill row.
type SkillLine struct {
	Name   string
	Rating int
	Stars  string
}

// SkillLines lists skills sorted by name.
func SkillLines(skills domain.Skills) []SkillLine {
	names := make([]string, 0, len(skills))
	for name := range skills {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]SkillLine, 0, len(names))
	for _, name := range names {
		lines = append(lines, SkillLine{
			Name:   SkillName(name),
			Rating: skills[name],
			Stars:  Stars(skills[name]),
		})
	}
	return lines
}
