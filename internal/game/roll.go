package game

import (
	"hash/fnv"
	"math/rand/v2"
	"strconv"
)

// Roller wraps the RNG used by all loot and combat rolls. Tests inject a
// seeded instance for deterministic outcomes.
type Roller struct {
	rng *rand.Rand
}

// NewRoller returns a Roller seeded from the given value.
func NewRoller(seed int64) *Roller {
	// Non-cryptographic PRNG is fine for game mechanics.
	// #nosec G404
	return &Roller{rng: rand.New(rand.NewPCG(seedWord(seed, "a"), seedWord(seed, "b")))}
}

func seedWord(seed int64, salt string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(strconv.FormatInt(seed, 10) + ":" + salt))
	return h.Sum64()
}

// Float returns a uniform draw in [0, 1).
func (r *Roller) Float() float64 { return r.rng.Float64() }

// Range returns a uniform integer in [min, max].
func (r *Roller) Range(min, max int) int {
	if max <= min {
		return min
	}
	return min + r.rng.IntN(max-min+1)
}

// FloatRange returns a uniform draw in [min, max).
func (r *Roller) FloatRange(min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + r.rng.Float64()*(max-min)
}

// D20 returns a uniform roll in [1, 20].
func (r *Roller) D20() int { return 1 + r.rng.IntN(20) }

// AttackDamage turns a d20 roll into damage for the given attack stat.
// A natural 1 fumbles to zero; a natural 20 doubles, further scaled by any
// equipped critical bonus. The roll is then scaled by attack relative to the
// base attack stat of 10.
func AttackDamage(roll, attack int, critBonus float64) int {
	if roll <= 1 {
		return 0
	}
	dmg := float64(roll)
	if roll >= 20 {
		dmg *= 2 + critBonus
	}
	return int(dmg * float64(attack) / 10)
}
