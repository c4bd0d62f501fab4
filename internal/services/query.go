package services

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/codyseavey/card-portfolio/internal/models"
)

var (
	numberingPrefixRe = regexp.MustCompile(`^\d+\.\s*`)
	printRunRe        = regexp.MustCompile(`/\d+`)
)

// simplifiedSets maps long product names to the short form sellers actually
// use in listing titles.
var simplifiedSets = []struct {
	match string
	short string
}{
	{"donruss optic", "Donruss Optic"},
	{"national treasures", "National Treasures"},
	{"topps finest", "Topps Finest"},
	{"immaculate", "Immaculate"},
}

// BuildSearchQuery constructs the marketplace search string for a card from
// its descriptive attributes. Graded cards include the grade so comps match
// the same slab tier; raw owned cards search with a "raw" qualifier; want
// list cards search for the benchmark PSA 10 copy.
func BuildSearchQuery(card *models.Card) string {
	parts := []string{card.PlayerName, simplifySetName(card)}

	if p := cleanParallel(card.ParallelRarity); p != "" {
		parts = append(parts, p)
	}

	switch {
	case card.IsGraded && card.GradingCompany != "" && card.Grade != nil:
		parts = append(parts, card.GradingCompany+" "+formatGrade(*card.Grade))
	case card.IsOwned:
		parts = append(parts, "raw")
	default:
		parts = append(parts, "PSA 10")
	}

	return strings.Join(parts, " ")
}

// CohortQuery builds the search string for a cohort player's copy of the
// same parallel, used for draft-class comps.
func CohortQuery(card *models.Card, player string) string {
	parts := []string{player, simplifySetName(card)}
	if p := cleanParallel(card.ParallelRarity); p != "" {
		parts = append(parts, p)
	}
	return strings.Join(parts, " ")
}

func simplifySetName(card *models.Card) string {
	setLower := strings.ToLower(card.SetName)
	if strings.Contains(strings.ToLower(card.ParallelRarity), "kaboom") {
		return "Kaboom"
	}
	for _, s := range simplifiedSets {
		if strings.Contains(setLower, s.match) {
			return s.short
		}
	}
	// Fall back to the product line before any " - " suffix
	return strings.SplitN(card.SetName, " - ", 2)[0]
}

// cleanParallel strips checklist numbering and print runs from a parallel
// name, keeping "1/1" since sellers always title one-of-ones that way.
func cleanParallel(parallelRarity string) string {
	clean := numberingPrefixRe.ReplaceAllString(parallelRarity, "")

	if strings.Contains(parallelRarity, "1/1") {
		clean = strings.TrimSpace(strings.ReplaceAll(clean, "1/1", ""))
		if clean == "" {
			return "1/1"
		}
		return clean + " 1/1"
	}

	clean = strings.TrimSpace(printRunRe.ReplaceAllString(clean, ""))
	switch strings.ToLower(clean) {
	case "base", "rookie":
		return ""
	}
	return clean
}

// formatGrade renders "10" for whole grades and "9.5" for half grades.
func formatGrade(grade float64) string {
	if grade == float64(int(grade)) {
		return strconv.Itoa(int(grade))
	}
	return strconv.FormatFloat(grade, 'f', 1, 64)
}
