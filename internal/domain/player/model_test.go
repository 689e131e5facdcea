package player

import "testing"

func TestPositionRank(t *testing.T) {
	if PositionGoalkeeper.Rank() >= PositionDefender.Rank() {
		t.Fatalf("goalkeeper must rank before defender")
	}
	if Position(" attacker ").Rank() != PositionAttacker.Rank() {
		t.Fatalf("rank must ignore case and whitespace")
	}
	if Position("Coach").Rank() <= PositionAttacker.Rank() {
		t.Fatalf("unknown positions must sort last")
	}
}
