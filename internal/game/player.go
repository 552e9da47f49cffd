package game

import (
	"fmt"
	"time"

	"github.com/wscgames/scavbot/internal/rules"
)

// Resource identifies a currency or crafting material kind.
type Resource string

const (
	SCR        Resource = "scr"
	ScrapMetal Resource = "scrapMetal"
	RadWaste   Resource = "radWaste"
	SlagShards Resource = "slagShards"
	GlowDust   Resource = "glowDust"
)

// MaterialKinds lists every non-currency resource, in display order.
var MaterialKinds = []Resource{ScrapMetal, RadWaste, SlagShards, GlowDust}

// Pool maps resource kinds to non-negative quantities. SCR is fractional,
// materials are whole numbers stored as float64 for uniform ledger ops.
type Pool map[Resource]float64

// Clone returns an independent copy of the pool.
func (p Pool) Clone() Pool {
	out := make(Pool, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Add merges other into p.
func (p Pool) Add(other Pool) {
	for k, v := range other {
		p[k] += v
	}
}

// FormatPool renders a pool for prompts: SCR with two decimals, materials as
// whole numbers, in stable display order.
func FormatPool(p Pool) string {
	s := fmt.Sprintf("%.2f SCR", p[SCR])
	for _, k := range MaterialKinds {
		if p[k] != 0 {
			s += fmt.Sprintf(", %d %s", int(p[k]), displayName(k))
		}
	}
	return s
}

func displayName(k Resource) string {
	switch k {
	case ScrapMetal:
		return "Scrap Metal"
	case RadWaste:
		return "Rad Waste"
	case SlagShards:
		return "Slag Shards"
	case GlowDust:
		return "Glow Dust"
	default:
		return string(k)
	}
}

// Empty reports whether every quantity is zero.
func (p Pool) Empty() bool {
	for _, v := range p {
		if v != 0 {
			return false
		}
	}
	return true
}

// SpecialBonusKind enumerates the permanent effects legendary gear can carry.
type SpecialBonusKind string

const (
	BonusMaxHP          SpecialBonusKind = "maxHP"          // flat max-HP increase
	BonusEnergyInterval SpecialBonusKind = "energyInterval" // energy regen interval reduction (fraction)
	BonusCrit           SpecialBonusKind = "crit"           // added critical multiplier
	BonusHPRegen        SpecialBonusKind = "hpRegen"        // extra HP per regen tick
	BonusResist         SpecialBonusKind = "resist"         // fractional damage resistance
	BonusDiscount       SpecialBonusKind = "discount"       // fractional material-cost discount
)

// SpecialBonus is a permanent effect attached to the highest rarity tier.
type SpecialBonus struct {
	Kind  SpecialBonusKind `json:"kind"`
	Value float64          `json:"value"`
}

// Item is an owned weapon or armor piece. MintTx is set when the external
// mint call succeeded at craft time.
type Item struct {
	Name        string        `json:"name"`
	AttackBonus int           `json:"attackBonus,omitempty"`
	ArmorBonus  int           `json:"armorBonus,omitempty"`
	Rarity      Rarity        `json:"rarity,omitempty"`
	Special     *SpecialBonus `json:"special,omitempty"`
	MintTx      string        `json:"mintTx,omitempty"`
}

// CursedItem pairs a bonus with a debuff until purified.
type CursedItem struct {
	Name        string  `json:"name"`
	Bonus       string  `json:"bonus"`
	BonusValue  float64 `json:"bonusValue"`
	Debuff      string  `json:"debuff"`
	DebuffValue float64 `json:"debuffValue"`
	Purified    bool    `json:"purified"`
}

// MiscItem is a named trophy or key item.
type MiscItem struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Inventory holds consumable counts and owned gear.
type Inventory struct {
	Consumables map[string]int `json:"consumables"`
	Weapons     []Item         `json:"weapons"`
	Armor       []Item         `json:"armor"`
	Cursed      []CursedItem   `json:"cursedItems"`
	Misc        []MiscItem     `json:"misc"`
}

// Equipped holds at most one weapon and one armor piece, copied by value from
// the inventory at equip time.
type Equipped struct {
	Weapon *Item `json:"weapon,omitempty"`
	Armor  *Item `json:"armor,omitempty"`
}

// Player is the persistent per-user state.
type Player struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	WalletAddr string `json:"walletAddr"`

	HP     int `json:"hp"`
	Energy int `json:"energy"`

	Active Pool `json:"active"`
	Bunker Pool `json:"bunker"`

	Inventory Inventory `json:"inventory"`
	Equipped  Equipped  `json:"equipped"`

	LastDeathAt      time.Time `json:"lastDeathAt"`
	LastHPRegenAt    time.Time `json:"lastHpRegenAt"`
	LastEnergyRegen  time.Time `json:"lastEnergyRegenAt"`
	RegistrationTx   string    `json:"registrationTx,omitempty"`
	BestFloor        int       `json:"bestFloor"`
	BestRounds       int       `json:"bestRounds"`
	RegisteredAt     time.Time `json:"registeredAt"`
}

// NewPlayer creates a freshly registered player.
func NewPlayer(id, name, wallet string, rs rules.RuleSet, now time.Time) *Player {
	return &Player{
		ID:         id,
		Name:       name,
		WalletAddr: wallet,
		HP:         rs.BaseMaxHP,
		Energy:     rs.StartEnergy,
		Active:     Pool{SCR: 0},
		Bunker:     Pool{SCR: 0},
		Inventory: Inventory{
			Consumables: map[string]int{},
		},
		LastHPRegenAt:   now,
		LastEnergyRegen: now,
		RegisteredAt:    now,
	}
}

// specialTotal sums the named bonus across equipped gear.
func (p *Player) specialTotal(kind SpecialBonusKind) float64 {
	total := 0.0
	for _, it := range []*Item{p.Equipped.Weapon, p.Equipped.Armor} {
		if it != nil && it.Special != nil && it.Special.Kind == kind {
			total += it.Special.Value
		}
	}
	return total
}

// MaxHP is the base pool plus gear bonuses, reduced by unpurified cursed
// HP debuffs.
func (p *Player) MaxHP(rs rules.RuleSet) int {
	max := float64(rs.BaseMaxHP) + p.specialTotal(BonusMaxHP)
	for _, c := range p.Inventory.Cursed {
		if !c.Purified && c.Debuff == "-20% HP" {
			max *= 1 - c.DebuffValue
		}
	}
	if max < 1 {
		max = 1
	}
	return int(max)
}

// Attack is the base stat plus the equipped weapon bonus and cursed attack
// bonuses.
func (p *Player) Attack(rs rules.RuleSet) int {
	atk := rs.BaseAttack
	if p.Equipped.Weapon != nil {
		atk += p.Equipped.Weapon.AttackBonus
	}
	// Cursed bonuses are always active; only the debuff is lifted by purifying.
	for _, c := range p.Inventory.Cursed {
		if c.Bonus == "+5 Attack" {
			atk += int(c.BonusValue)
		}
	}
	return atk
}

// Armor is the equipped armor bonus.
func (p *Player) Armor() int {
	if p.Equipped.Armor != nil {
		return p.Equipped.Armor.ArmorBonus
	}
	return 0
}

// CritBonus is the added critical multiplier from gear.
func (p *Player) CritBonus() float64 { return p.specialTotal(BonusCrit) }

// ResistBonus is the flat fractional damage resistance from gear, reduced by
// unpurified cursed resistance debuffs.
func (p *Player) ResistBonus() float64 {
	r := p.specialTotal(BonusResist)
	for _, c := range p.Inventory.Cursed {
		if !c.Purified && c.Debuff == "-10% damage resistance" {
			r -= c.DebuffValue
		}
	}
	return r
}

// HPRegenBonus is extra HP gained per regen tick.
func (p *Player) HPRegenBonus() int { return int(p.specialTotal(BonusHPRegen)) }

// EnergyInterval is the effective energy regen interval after gear reduction.
func (p *Player) EnergyInterval(rs rules.RuleSet) time.Duration {
	cut := p.specialTotal(BonusEnergyInterval)
	if cut > 0.5 {
		cut = 0.5
	}
	return time.Duration(float64(rs.EnergyRegenInterval) * (1 - cut))
}

// MaterialDiscount is the fractional crafting-cost discount from gear.
func (p *Player) MaterialDiscount() float64 {
	d := p.specialTotal(BonusDiscount)
	if d > 0.5 {
		d = 0.5
	}
	return d
}

// SCRDropBonus is the fractional currency-drop bonus from cursed items.
func (p *Player) SCRDropBonus() float64 {
	b := 0.0
	for _, c := range p.Inventory.Cursed {
		if c.Bonus == "+50% SCR drops" {
			b += c.BonusValue
		}
	}
	return b
}

// Dead reports whether the player is at zero HP.
func (p *Player) Dead() bool { return p.HP <= 0 }

// DeathWaitRemaining returns how long until the death cooldown lapses, or
// zero when the player may act again.
func (p *Player) DeathWaitRemaining(rs rules.RuleSet, now time.Time) time.Duration {
	if !p.Dead() {
		return 0
	}
	rem := rs.DeathCooldown - now.Sub(p.LastDeathAt)
	if rem < 0 {
		return 0
	}
	return rem
}

// HasMisc reports whether a named key item is present.
func (p *Player) HasMisc(name string) bool {
	for _, m := range p.Inventory.Misc {
		if m.Name == name {
			return true
		}
	}
	return false
}

// RemoveMisc consumes one named key item, reporting whether it was present.
func (p *Player) RemoveMisc(name string) bool {
	for i, m := range p.Inventory.Misc {
		if m.Name == name {
			p.Inventory.Misc = append(p.Inventory.Misc[:i], p.Inventory.Misc[i+1:]...)
			return true
		}
	}
	return false
}
