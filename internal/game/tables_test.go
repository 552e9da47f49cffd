package game

import "testing"

func TestTierForFloor(t *testing.T) {
	tests := []struct {
		floor, divisor, want int
	}{
		{0, 5, 1},
		{1, 5, 1},
		{4, 5, 1},
		{5, 5, 2},
		{9, 5, 2},
		{10, 5, 3},
		{50, 5, 3},
	}
	for _, tt := range tests {
		if got := TierForFloor(tt.floor, tt.divisor); got != tt.want {
			t.Errorf("TierForFloor(%d, %d) = %d, want %d", tt.floor, tt.divisor, got, tt.want)
		}
	}
}

func TestScaleEnemyFloorZeroIsUnscaled(t *testing.T) {
	r := NewRoller(1)
	for i := 0; i < 50; i++ {
		e := ScaleEnemy(r, []int{1, 2}, 0, 5, 0.10, 0.05)
		if e.Tier != 1 {
			t.Fatalf("floor 0 spawned tier %d", e.Tier)
		}
		def := defByName(t, 1, e.Name)
		if e.HP < def.HPMin || e.HP > def.HPMax {
			t.Errorf("%s HP %d out of base [%d, %d]", e.Name, e.HP, def.HPMin, def.HPMax)
		}
		if e.AttackMin != def.AttackMin || e.AttackMax != def.AttackMax {
			t.Errorf("%s attack [%d, %d], want base [%d, %d]", e.Name, e.AttackMin, e.AttackMax, def.AttackMin, def.AttackMax)
		}
		if e.SCRMax != def.SCRMax {
			t.Errorf("%s SCRMax %g, want base %g", e.Name, e.SCRMax, def.SCRMax)
		}
	}
}

func TestScaleEnemyFloorTenDoubles(t *testing.T) {
	r := NewRoller(2)
	// Floor 10 with divisor 5 is tier 3, so only the boss can spawn.
	e := ScaleEnemy(r, []int{1, 2, 3}, 10, 5, 0.10, 0.05)
	if e.Name != BossName {
		t.Fatalf("tier 3 spawned %q", e.Name)
	}
	def := defByName(t, 3, e.Name)
	if e.HP < def.HPMin*2 || e.HP > def.HPMax*2 {
		t.Errorf("HP %d out of doubled [%d, %d]", e.HP, def.HPMin*2, def.HPMax*2)
	}
	if e.AttackMin != def.AttackMin*2 || e.AttackMax != def.AttackMax*2 {
		t.Errorf("attack [%d, %d], want doubled [%d, %d]", e.AttackMin, e.AttackMax, def.AttackMin*2, def.AttackMax*2)
	}
	if e.SCRMax != def.SCRMax*1.5 {
		t.Errorf("SCRMax %g, want %g", e.SCRMax, def.SCRMax*1.5)
	}
}

func TestScaleEnemyRespectsZoneTiers(t *testing.T) {
	r := NewRoller(3)
	// A zone without tier 3 tops out at its deepest allowed tier.
	for i := 0; i < 50; i++ {
		e := ScaleEnemy(r, []int{1, 2}, 30, 5, 0.10, 0.05)
		if e.Tier != 2 {
			t.Fatalf("capped zone spawned tier %d", e.Tier)
		}
	}
}

func TestScaleBounds(t *testing.T) {
	def := EnemyDef{HPMin: 25, HPMax: 35, AttackMin: 5, AttackMax: 8}
	hpMin, hpMax, atkMin, atkMax := ScaleBounds(def, 10, 0.10)
	if hpMin != 50 || hpMax != 70 || atkMin != 10 || atkMax != 16 {
		t.Errorf("ScaleBounds = (%d, %d, %d, %d), want (50, 70, 10, 16)", hpMin, hpMax, atkMin, atkMax)
	}
}

func TestPickZoneCoversCatalog(t *testing.T) {
	r := NewRoller(4)
	seen := map[string]int{}
	for i := 0; i < 2000; i++ {
		seen[PickZone(r).Name]++
	}
	for _, z := range Zones {
		if seen[z.Name] == 0 {
			t.Errorf("zone %q never picked in 2000 draws", z.Name)
		}
	}
	// The heaviest zone should be drawn more often than the lightest.
	if seen["City Ruins"] <= seen["Death's Hollow"] {
		t.Errorf("weights ignored: City Ruins %d vs Death's Hollow %d", seen["City Ruins"], seen["Death's Hollow"])
	}
}

func defByName(t *testing.T, tier int, name string) EnemyDef {
	t.Helper()
	for _, d := range EnemyTiers[tier] {
		if d.Name == name {
			return d
		}
	}
	t.Fatalf("unknown tier-%d enemy %q", tier, name)
	return EnemyDef{}
}
