package game

import "testing"

func TestAttackDamage(t *testing.T) {
	tests := []struct {
		name      string
		roll      int
		attack    int
		critBonus float64
		want      int
	}{
		{name: "natural one fumbles", roll: 1, attack: 50, critBonus: 0, want: 0},
		{name: "base attack passes the roll through", roll: 10, attack: 10, critBonus: 0, want: 10},
		{name: "low roll", roll: 2, attack: 10, critBonus: 0, want: 2},
		{name: "attack scales the roll", roll: 10, attack: 15, critBonus: 0, want: 15},
		{name: "natural twenty doubles", roll: 20, attack: 10, critBonus: 0, want: 40},
		{name: "crit bonus stacks on the double", roll: 20, attack: 10, critBonus: 0.5, want: 50},
		{name: "weak attack truncates", roll: 19, attack: 3, critBonus: 0, want: 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AttackDamage(tt.roll, tt.attack, tt.critBonus); got != tt.want {
				t.Errorf("AttackDamage(%d, %d, %g) = %d, want %d", tt.roll, tt.attack, tt.critBonus, got, tt.want)
			}
		})
	}
}

func TestRollerDeterminism(t *testing.T) {
	a := NewRoller(42)
	b := NewRoller(42)
	for i := 0; i < 100; i++ {
		if x, y := a.D20(), b.D20(); x != y {
			t.Fatalf("same seed diverged at draw %d: %d vs %d", i, x, y)
		}
	}
}

func TestRollerBounds(t *testing.T) {
	r := NewRoller(7)
	for i := 0; i < 1000; i++ {
		if v := r.D20(); v < 1 || v > 20 {
			t.Fatalf("D20() = %d out of [1, 20]", v)
		}
		if v := r.Range(3, 8); v < 3 || v > 8 {
			t.Fatalf("Range(3, 8) = %d out of bounds", v)
		}
		if v := r.FloatRange(0.5, 1.5); v < 0.5 || v >= 1.5 {
			t.Fatalf("FloatRange(0.5, 1.5) = %g out of bounds", v)
		}
	}
	if v := r.Range(5, 5); v != 5 {
		t.Errorf("Range(5, 5) = %d, want 5", v)
	}
}
