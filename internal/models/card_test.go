package models

import "testing"

func TestParsePopulation(t *testing.T) {
	tests := []struct {
		input      string
		wantSerial string
		wantPop    int // 0 means nil
	}{
		{"Purple /60", "/60", 60},
		{"Gold Vinyl 1/1", "1/1", 1},
		{"23/99 Red Wave", "23/99", 99},
		{"Holo Silver", "", 0},
		{"Base", "", 0},
		{"", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			serial, pop := ParsePopulation(tt.input)
			if serial != tt.wantSerial {
				t.Errorf("ParsePopulation(%q) serial = %q, want %q", tt.input, serial, tt.wantSerial)
			}
			if tt.wantPop == 0 {
				if pop != nil {
					t.Errorf("ParsePopulation(%q) pop = %d, want nil", tt.input, *pop)
				}
			} else {
				if pop == nil {
					t.Fatalf("ParsePopulation(%q) pop = nil, want %d", tt.input, tt.wantPop)
				}
				if *pop != tt.wantPop {
					t.Errorf("ParsePopulation(%q) pop = %d, want %d", tt.input, *pop, tt.wantPop)
				}
			}
		})
	}
}

func TestCardLabel(t *testing.T) {
	card := Card{SetName: "2024 Donruss Optic", ParallelRarity: "Purple /60"}
	want := "2024 Donruss Optic - Purple /60"
	if got := card.Label(); got != want {
		t.Errorf("Label() = %q, want %q", got, want)
	}
}
