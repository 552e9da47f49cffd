package game

// Static enemy and zone catalogs. Base stats come from the tier tables;
// per-encounter instances are scaled by the current floor.

// EnemyDef is a static table entry.
type EnemyDef struct {
	Name      string
	Flavor    string
	HPMin     int
	HPMax     int
	AttackMin int
	AttackMax int
	SCRMin    float64
	SCRMax    float64
}

// Enemy is an ephemeral scaled instance for one encounter.
type Enemy struct {
	Name      string
	Flavor    string
	Tier      int
	HP        int
	AttackMin int
	AttackMax int
	SCRMin    float64
	SCRMax    float64
}

// Zone is a static dungeon definition selected by weight.
type Zone struct {
	Name     string
	Desc     string
	Weight   int
	Tiers    []int
	FloorCap int // 0 means endless
}

// BossName is the tier-3 enemy whose defeat can yield the legendary key item.
const BossName = "Radiated Scorpion King"

// KeyItemName is the trophy required (and consumed) by legendary recipes.
const KeyItemName = "Scorpion King's Tail"

// EnemyTiers indexes the static enemy tables by tier (1..3).
var EnemyTiers = map[int][]EnemyDef{
	1: {
		{Name: "Rust Bandit", Flavor: "A wiry scavenger clad in rusted armor lunges at you!", HPMin: 25, HPMax: 35, AttackMin: 5, AttackMax: 8, SCRMin: 0.03, SCRMax: 0.05},
		{Name: "Glow Hound", Flavor: "Its eyes pulse with a sickly green light.", HPMin: 30, HPMax: 40, AttackMin: 6, AttackMax: 9, SCRMin: 0.04, SCRMax: 0.06},
		{Name: "Dust Wretch", Flavor: "It screeches through a cracked gas mask.", HPMin: 25, HPMax: 35, AttackMin: 5, AttackMax: 7, SCRMin: 0.05, SCRMax: 0.07},
	},
	2: {
		{Name: "Iron Maw", Flavor: "Its roar echoes through the shattered steel.", HPMin: 50, HPMax: 60, AttackMin: 10, AttackMax: 14, SCRMin: 0.15, SCRMax: 0.2},
		{Name: "Rad Reaver", Flavor: "It grins through a haze of rad-fueled rage.", HPMin: 45, HPMax: 55, AttackMin: 9, AttackMax: 12, SCRMin: 0.1, SCRMax: 0.15},
	},
	3: {
		{Name: BossName, Flavor: "Its glowing tail arcs high, dripping venomous light!", HPMin: 80, HPMax: 100, AttackMin: 12, AttackMax: 18, SCRMin: 0.5, SCRMax: 1.0},
	},
}

// Zones is the static dungeon catalog.
var Zones = []Zone{
	{Name: "City Ruins", Desc: "Crumbling towers loom over streets of ash.", Weight: 40, Tiers: []int{1, 2}},
	{Name: "Glowing Dunes", Desc: "Shimmering haze drifts across irradiated sand.", Weight: 30, Tiers: []int{1, 2}},
	{Name: "Scav Shanties", Desc: "Huts creak in the wind; nothing here died peacefully.", Weight: 25, Tiers: []int{1, 2}},
	{Name: "Death's Hollow", Desc: "A pit echoes with growls from far below.", Weight: 5, Tiers: []int{1, 2, 3}},
}

// ZoneByName looks up a zone in the catalog.
func ZoneByName(name string) (Zone, bool) {
	for _, z := range Zones {
		if z.Name == name {
			return z, true
		}
	}
	return Zone{}, false
}

// Weighted is anything selectable by weight.
type Weighted interface{ weight() int }

func (z Zone) weight() int { return z.Weight }

// WeightedPick selects one candidate by linear weight accumulation over a
// draw in [0, totalWeight). Deterministic given a fixed draw.
func WeightedPick[T Weighted](r *Roller, candidates []T) T {
	total := 0
	for _, c := range candidates {
		total += c.weight()
	}
	draw := r.Float() * float64(total)
	acc := 0.0
	for _, c := range candidates {
		acc += float64(c.weight())
		if draw < acc {
			return c
		}
	}
	return candidates[len(candidates)-1]
}

// PickZone selects a zone from the catalog by weight.
func PickZone(r *Roller) Zone { return WeightedPick(r, Zones) }

// TierForFloor maps a floor to an enemy tier: min(3, floor/divisor + 1).
func TierForFloor(floor, divisor int) int {
	t := floor/divisor + 1
	if t > 3 {
		t = 3
	}
	return t
}

// ScaleEnemy instantiates a scaled enemy for the floor. The tier comes from
// the floor; hp and attack bounds grow by hpAttackScale per floor, the reward
// upper bound by rewardScale per floor. Floor 0 yields unscaled base stats.
func ScaleEnemy(r *Roller, allowedTiers []int, floor int, divisor int, hpAttackScale, rewardScale float64) Enemy {
	tier := TierForFloor(floor, divisor)
	if !containsInt(allowedTiers, tier) {
		tier = allowedTiers[len(allowedTiers)-1]
	}
	defs := EnemyTiers[tier]
	def := defs[r.Range(0, len(defs)-1)]

	statMul := 1 + hpAttackScale*float64(floor)
	rewardMul := 1 + rewardScale*float64(floor)

	hpMin := int(float64(def.HPMin) * statMul)
	hpMax := int(float64(def.HPMax) * statMul)
	return Enemy{
		Name:      def.Name,
		Flavor:    def.Flavor,
		Tier:      tier,
		HP:        r.Range(hpMin, hpMax),
		AttackMin: int(float64(def.AttackMin) * statMul),
		AttackMax: int(float64(def.AttackMax) * statMul),
		SCRMin:    def.SCRMin,
		SCRMax:    def.SCRMax * rewardMul,
	}
}

// ScaleBounds returns the scaled hp and attack bounds for a definition
// without rolling an instance. Used by tests and stat displays.
func ScaleBounds(def EnemyDef, floor int, hpAttackScale float64) (hpMin, hpMax, atkMin, atkMax int) {
	mul := 1 + hpAttackScale*float64(floor)
	return int(float64(def.HPMin) * mul), int(float64(def.HPMax) * mul),
		int(float64(def.AttackMin) * mul), int(float64(def.AttackMax) * mul)
}

func containsInt(xs []int, n int) bool {
	for _, x := range xs {
		if x == n {
			return true
		}
	}
	return false
}
