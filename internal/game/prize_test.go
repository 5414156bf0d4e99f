package game

import "testing"

func TestPrize(t *testing.T) {
	tests := []struct {
		hits  int
		prize int64
		skim  int64
	}{
		{5, 5000, 500},
		{4, 1000, 100},
		{3, 500, 50},
		{2, 100, 10},
		{1, 0, 0},
		{0, 0, 0},
	}
	for _, tt := range tests {
		prize, skim := Prize(tt.hits)
		if prize != tt.prize || skim != tt.skim {
			t.Errorf("Prize(%d) = (%d, %d), want (%d, %d)", tt.hits, prize, skim, tt.prize, tt.skim)
		}
	}
}

func TestIsJackpot(t *testing.T) {
	if IsJackpot(map[int]int{0: 3, 5: 0}) {
		t.Error("no five-hit ticket should not be a jackpot")
	}
	if !IsJackpot(map[int]int{5: 1}) {
		t.Error("a five-hit ticket should be a jackpot")
	}
}
