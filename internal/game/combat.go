package game

import (
	"fmt"
	"time"
)

// Resolver runs single attack rounds between a player and an enemy.
type Resolver struct {
	Ledger *Ledger
	Roll   *Roller
	// rollD20 overrides the attack die in tests; nil means Roll.D20.
	rollD20 func() int
}

// NewResolver wires a combat resolver over the ledger and roller.
func NewResolver(l *Ledger, r *Roller) *Resolver {
	return &Resolver{Ledger: l, Roll: r}
}

// AttackOutcome reports one resolved round.
type AttackOutcome struct {
	PlayerDamage int
	EnemyDamage  int
	EnemyDown    bool
	PlayerDown   bool
	Reward       Pool       // currency + materials granted on a kill
	KeyItem      bool       // legendary key dropped
	Trophy       *MiscItem  // boss trophy granted on a kill
	Cursed       *CursedItem
	Log          []string
}

// ResolveAttack applies the player's hit, then the enemy counterattack if it
// survives. On a kill the reward currency and material drops are rolled; the
// death rule runs unconditionally if the counterattack drops the player.
func (c *Resolver) ResolveAttack(p *Player, e *Enemy, floor int, now time.Time) AttackOutcome {
	out := AttackOutcome{Reward: Pool{}}

	roll := c.d20()
	out.PlayerDamage = AttackDamage(roll, p.Attack(c.Ledger.Rules), p.CritBonus())
	e.HP -= out.PlayerDamage
	out.Log = append(out.Log, fmt.Sprintf("You hit %s for %d. Enemy HP: %d", e.Name, out.PlayerDamage, e.HP))

	if e.HP > 0 {
		out.EnemyDamage = c.counterattack(p, e)
		out.Log = append(out.Log, fmt.Sprintf("%s hits for %d. HP: %d", e.Name, out.EnemyDamage, p.HP))
		if p.Dead() {
			out.PlayerDown = true
			c.Ledger.ApplyDeath(p, now)
			out.Log = append(out.Log, "You collapse. All active loot lost.")
		}
		return out
	}

	out.EnemyDown = true
	scr := c.Roll.FloatRange(e.SCRMin, e.SCRMax) * (1 + p.SCRDropBonus())
	out.Reward[SCR] += scr
	out.Log = append(out.Log, fmt.Sprintf("%s falls! +%.2f SCR", e.Name, scr))

	drop := RollMaterials(c.Roll, floor, e.Name)
	out.Reward.Add(drop.Materials)
	out.KeyItem = drop.KeyItem

	if e.Name == BossName {
		out.Trophy = &MiscItem{Name: KeyItemName, Description: "An epic trophy from the " + BossName + "."}
	}
	if cursed := RollCursedLoot(c.Roll, c.Ledger.Rules.CursedLootChance); cursed != nil {
		out.Cursed = cursed
		out.Log = append(out.Log, fmt.Sprintf("You found a %s! (%s, but %s)", cursed.Name, cursed.Bonus, cursed.Debuff))
	}
	return out
}

// counterattack samples the enemy hit and applies armor plus flat resistance,
// floored at zero and truncated to an integer.
func (c *Resolver) counterattack(p *Player, e *Enemy) int {
	raw := c.Roll.Range(e.AttackMin, e.AttackMax)
	reduction := float64(p.Armor())*c.Ledger.Rules.ArmorReductionPerPoint + p.ResistBonus()
	if reduction < 0 {
		reduction = 0
	}
	dmg := int(float64(raw) * (1 - reduction))
	if dmg < 0 {
		dmg = 0
	}
	p.HP -= dmg
	return dmg
}

func (c *Resolver) d20() int {
	if c.rollD20 != nil {
		return c.rollD20()
	}
	return c.Roll.D20()
}

// healingTiers orders consumables by preference: strongest first.
var healingTiers = []struct {
	name   string
	amount int
}{
	{"scavJuice", 20},
	{"radPill", 10},
}

// UseHealingItem consumes the best available healing consumable. It fails
// without touching state when none is held or the player is already full.
func (c *Resolver) UseHealingItem(p *Player) (string, int, error) {
	maxHP := p.MaxHP(c.Ledger.Rules)
	if p.HP >= maxHP {
		return "", 0, ErrValidation
	}
	for _, t := range healingTiers {
		if p.Inventory.Consumables[t.name] > 0 {
			p.Inventory.Consumables[t.name]--
			p.HP += t.amount
			if p.HP > maxHP {
				p.HP = maxHP
			}
			return t.name, t.amount, nil
		}
	}
	return "", 0, &InsufficientError{Short: map[string]float64{"healing items": 1}}
}

// UseReviveStim revives a dead player to 1 HP, consuming one stim and
// resetting the regen clock.
func (c *Resolver) UseReviveStim(p *Player, now time.Time) error {
	if !p.Dead() {
		return ErrValidation
	}
	if p.Inventory.Consumables["reviveStim"] <= 0 {
		return &InsufficientError{Short: map[string]float64{"reviveStim": 1}}
	}
	p.Inventory.Consumables["reviveStim"]--
	p.HP = 1
	p.LastHPRegenAt = now
	return nil
}
