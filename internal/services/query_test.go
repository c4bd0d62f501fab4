package services

import (
	"testing"

	"github.com/codyseavey/card-portfolio/internal/models"
)

func floatPtr(f float64) *float64 { return &f }

func TestBuildSearchQuery(t *testing.T) {
	tests := []struct {
		name string
		card models.Card
		want string
	}{
		{
			name: "graded card includes company and grade",
			card: models.Card{
				PlayerName:     "Caleb Williams",
				SetName:        "2024 Donruss Optic Football",
				ParallelRarity: "Purple /60",
				IsOwned:        true,
				IsGraded:       true,
				GradingCompany: "PSA",
				Grade:          floatPtr(10),
			},
			want: "Caleb Williams Donruss Optic Purple PSA 10",
		},
		{
			name: "half grades keep the decimal",
			card: models.Card{
				PlayerName:     "Caleb Williams",
				SetName:        "2024 Topps Finest",
				ParallelRarity: "Refractor",
				IsOwned:        true,
				IsGraded:       true,
				GradingCompany: "BGS",
				Grade:          floatPtr(9.5),
			},
			want: "Caleb Williams Topps Finest Refractor BGS 9.5",
		},
		{
			name: "raw owned card",
			card: models.Card{
				PlayerName:     "Caleb Williams",
				SetName:        "2024 Donruss Optic",
				ParallelRarity: "Holo",
				IsOwned:        true,
			},
			want: "Caleb Williams Donruss Optic Holo raw",
		},
		{
			name: "want list card targets the PSA 10 benchmark",
			card: models.Card{
				PlayerName:     "Caleb Williams",
				SetName:        "2024 National Treasures Collegiate",
				ParallelRarity: "RPA /99",
			},
			want: "Caleb Williams National Treasures RPA PSA 10",
		},
		{
			name: "kaboom parallel overrides the set name",
			card: models.Card{
				PlayerName:     "Caleb Williams",
				SetName:        "2024 Panini Absolute",
				ParallelRarity: "Kaboom!",
				IsOwned:        true,
			},
			want: "Caleb Williams Kaboom Kaboom! raw",
		},
		{
			name: "checklist numbering and print run stripped",
			card: models.Card{
				PlayerName:     "Caleb Williams",
				SetName:        "2024 Immaculate Collection",
				ParallelRarity: "12. Gold /10",
				IsOwned:        true,
			},
			want: "Caleb Williams Immaculate Gold raw",
		},
		{
			name: "one of one is kept in the query",
			card: models.Card{
				PlayerName:     "Caleb Williams",
				SetName:        "2024 Donruss Optic",
				ParallelRarity: "Gold Vinyl 1/1",
				IsOwned:        true,
			},
			want: "Caleb Williams Donruss Optic Gold Vinyl 1/1 raw",
		},
		{
			name: "base parallel adds nothing",
			card: models.Card{
				PlayerName:     "Caleb Williams",
				SetName:        "2024 Donruss Optic",
				ParallelRarity: "Base",
				IsOwned:        true,
			},
			want: "Caleb Williams Donruss Optic raw",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildSearchQuery(&tt.card); got != tt.want {
				t.Errorf("BuildSearchQuery() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCohortQuery(t *testing.T) {
	card := models.Card{
		PlayerName:     "Caleb Williams",
		SetName:        "2024 Donruss Optic",
		ParallelRarity: "Purple /60",
	}
	want := "Jayden Daniels Donruss Optic Purple"
	if got := CohortQuery(&card, "Jayden Daniels"); got != want {
		t.Errorf("CohortQuery() = %q, want %q", got, want)
	}
}

func TestFormatGrade(t *testing.T) {
	if got := formatGrade(10); got != "10" {
		t.Errorf("formatGrade(10) = %q, want \"10\"", got)
	}
	if got := formatGrade(9.5); got != "9.5" {
		t.Errorf("formatGrade(9.5) = %q, want \"9.5\"", got)
	}
}
