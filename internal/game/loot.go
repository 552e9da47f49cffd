package game

// Material drop odds per kind. Each kind is an independent trial; odds
// decrease with rarity and the quantity granted scales with floor.
type materialOdds struct {
	kind Resource
	p    float64
}

var dropOdds = []materialOdds{
	{ScrapMetal, 0.50},
	{RadWaste, 0.40},
	{SlagShards, 0.25},
	{GlowDust, 0.10},
}

// keyDropChance is the odds of the legendary key item dropping from the
// tier-3 boss, on top of the guaranteed trophy.
const keyDropChance = 0.02

// packPools maps a pack tier to the material kinds it can contain.
var packPools = map[string][]Resource{
	"common":    {ScrapMetal, RadWaste},
	"rare":      {ScrapMetal, RadWaste, SlagShards},
	"legendary": {ScrapMetal, RadWaste, SlagShards, GlowDust},
}

// legendaryPackKeyChance is the odds a legendary pack grants the key item
// directly.
const legendaryPackKeyChance = 0.03

// MaterialDrop is the outcome of a material roll.
type MaterialDrop struct {
	Materials Pool
	KeyItem   bool
}

// RollMaterials rolls the post-kill material drops for a floor. Each kind is
// an independent Bernoulli trial; a success grants a quantity that grows
// every five floors. Defeating the boss by name can additionally yield the
// legendary key item.
func RollMaterials(r *Roller, floor int, enemyName string) MaterialDrop {
	drop := MaterialDrop{Materials: Pool{}}
	qty := 1 + floor/5
	for _, o := range dropOdds {
		if r.Float() < o.p {
			drop.Materials[o.kind] += float64(r.Range(1, qty))
		}
	}
	if enemyName == BossName && r.Float() < keyDropChance {
		drop.KeyItem = true
	}
	return drop
}

// RollMaterialPack opens a purchased pack: up to three independent trials
// each select one kind from the tier pool and grant +1. Legendary packs have
// a small chance to yield the key item directly.
func RollMaterialPack(r *Roller, tier string) MaterialDrop {
	pool, ok := packPools[tier]
	if !ok {
		pool = packPools["common"]
	}
	drop := MaterialDrop{Materials: Pool{}}
	for i := 0; i < 3; i++ {
		if r.Float() < 0.6 {
			kind := pool[r.Range(0, len(pool)-1)]
			drop.Materials[kind]++
		}
	}
	if tier == "legendary" && r.Float() < legendaryPackKeyChance {
		drop.KeyItem = true
	}
	return drop
}

// CursedLootTable holds the bonus/debuff pairs a kill can rarely yield.
var CursedLootTable = []CursedItem{
	{Name: "Cursed Geiger Shard", Bonus: "+50% SCR drops", BonusValue: 0.5, Debuff: "-20% HP", DebuffValue: 0.2},
	{Name: "Cursed Rad Blade", Bonus: "+5 Attack", BonusValue: 5, Debuff: "-10% damage resistance", DebuffValue: 0.1},
}

// RollCursedLoot returns a cursed item at the configured odds, or nil.
func RollCursedLoot(r *Roller, chance float64) *CursedItem {
	if r.Float() < chance {
		c := CursedLootTable[r.Range(0, len(CursedLootTable)-1)]
		return &c
	}
	return nil
}

// CacheLoot rolls the contents of a rare loot cache found while advancing.
func CacheLoot(r *Roller) Pool {
	return Pool{
		SCR:        r.FloatRange(1, 2),
		ScrapMetal: float64(r.Range(5, 10)),
		RadWaste:   float64(r.Range(5, 10)),
	}
}

// ExploreLoot rolls the one-time floor exploration bonus.
func ExploreLoot(r *Roller, floor int) Pool {
	loot := Pool{SCR: r.FloatRange(0, 0.05)}
	qty := 1 + floor/5
	if r.Float() < 0.5 {
		loot[ScrapMetal] = float64(r.Range(1, 1+qty))
	}
	if r.Float() < 0.5 {
		loot[RadWaste] = float64(r.Range(1, 1+qty))
	}
	return loot
}
