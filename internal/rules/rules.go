// Package rules holds every tunable gameplay constant as data. The engine is
// parameterized over a RuleSet so the older balance numbers stay expressible
// without touching code.
package rules

import (
	"os"
	"time"
)

// RuleSet is the full set of gameplay constants injected into the game engine.
type RuleSet struct {
	Name string

	// Vitals
	BaseMaxHP   int
	BaseAttack  int
	EnergyCap   int
	StartEnergy int

	// Regeneration
	HPRegenInterval     time.Duration
	HPRegenAmount       int
	EnergyRegenInterval time.Duration
	DeathCooldown       time.Duration
	ReviveHP            int

	// Combat
	ArmorReductionPerPoint float64 // fraction of incoming damage removed per armor point

	// Floor scaling
	HPAttackScalePerFloor float64 // hp/attack bounds multiplied by (1 + this*floor)
	RewardScalePerFloor   float64 // reward upper bound multiplied by (1 + this*floor)
	TierFloorDivisor      int     // tier = min(3, floor/divisor + 1)

	// Advance outcome odds, evaluated in order: cache, then hazard.
	LootCacheChance  float64
	HazardChance     float64
	HazardDamage     int
	CursedLootChance float64

	// Sessions
	SessionIdleTimeout time.Duration
	RegenSweepInterval time.Duration

	// Economy
	RegistrationFeeTokens float64
	StorePrices           map[string]float64 // consumable name -> SCR price
	PackPrices            map[string]float64 // pack tier -> SCR price
	PurifyCost            float64
}

// Canonical returns the current balance: 24h death wait, 10% damage
// reduction per armor point, endless floors.
func Canonical() RuleSet {
	return RuleSet{
		Name:                   "canonical",
		BaseMaxHP:              100,
		BaseAttack:             10,
		EnergyCap:              5,
		StartEnergy:            5,
		HPRegenInterval:        6 * time.Minute,
		HPRegenAmount:          1,
		EnergyRegenInterval:    time.Hour,
		DeathCooldown:          24 * time.Hour,
		ReviveHP:               1,
		ArmorReductionPerPoint: 0.10,
		HPAttackScalePerFloor:  0.10,
		RewardScalePerFloor:    0.05,
		TierFloorDivisor:       5,
		LootCacheChance:        0.01,
		HazardChance:           0.30,
		HazardDamage:           5,
		CursedLootChance:       0.05,
		SessionIdleTimeout:     5 * time.Minute,
		RegenSweepInterval:     time.Minute,
		RegistrationFeeTokens:  20,
		StorePrices: map[string]float64{
			"scavJuice":  5,
			"radPill":    3,
			"reviveStim": 10,
		},
		PackPrices: map[string]float64{
			"common":    4,
			"rare":      12,
			"legendary": 40,
		},
		PurifyCost: 5,
	}
}

// Legacy returns the original balance: smaller HP pool, 1h death wait, 5%
// reduction per armor point.
func Legacy() RuleSet {
	r := Canonical()
	r.Name = "legacy"
	r.BaseMaxHP = 50
	r.DeathCooldown = time.Hour
	r.ArmorReductionPerPoint = 0.05
	return r
}

// FromEnv selects a rule set by the RULESET environment variable.
func FromEnv() RuleSet {
	if os.Getenv("RULESET") == "legacy" {
		return Legacy()
	}
	return Canonical()
}
