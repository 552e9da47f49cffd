package game

import (
	"time"

	"github.com/wscgames/scavbot/internal/rules"
)

// Ledger applies resource mutations to a single player. All operations are
// all-or-nothing within the process; a failed debit leaves the player
// untouched.
type Ledger struct {
	Rules rules.RuleSet
}

// RegenerateTick applies passive recovery as of now. Dead players revive to a
// small HP value once the death cooldown lapses; living players heal on the
// HP interval and recover energy on the (possibly gear-shortened) energy
// interval, capped.
func (l *Ledger) RegenerateTick(p *Player, now time.Time) {
	if p.Dead() {
		if now.Sub(p.LastDeathAt) >= l.Rules.DeathCooldown {
			p.HP = l.Rules.ReviveHP
			p.LastHPRegenAt = now
		}
		return
	}

	maxHP := p.MaxHP(l.Rules)
	if p.HP > maxHP {
		p.HP = maxHP
	}
	if now.Sub(p.LastHPRegenAt) >= l.Rules.HPRegenInterval {
		p.HP += l.Rules.HPRegenAmount + p.HPRegenBonus()
		if p.HP > maxHP {
			p.HP = maxHP
		}
		p.LastHPRegenAt = now
	}
	if now.Sub(p.LastEnergyRegen) >= p.EnergyInterval(l.Rules) {
		if p.Energy < l.Rules.EnergyCap {
			p.Energy++
		}
		p.LastEnergyRegen = now
	}
}

// SpendEnergy deducts n energy or fails without touching state.
func (l *Ledger) SpendEnergy(p *Player, n int) error {
	if p.Energy < n {
		return &InsufficientError{Short: map[string]float64{"energy": float64(n - p.Energy)}}
	}
	p.Energy -= n
	return nil
}

// CreditMaterials adds every quantity in amounts to the pool.
func (l *Ledger) CreditMaterials(pool Pool, amounts Pool) {
	pool.Add(amounts)
}

// DebitMaterials subtracts amounts from the pool. If any single kind is
// short, nothing at all is debited and the error reports every shortage.
func (l *Ledger) DebitMaterials(pool Pool, amounts Pool) error {
	short := map[string]float64{}
	for k, v := range amounts {
		if pool[k] < v {
			short[string(k)] = v - pool[k]
		}
	}
	if len(short) > 0 {
		return &InsufficientError{Short: short}
	}
	for k, v := range amounts {
		pool[k] -= v
	}
	return nil
}

// Deposit moves the entire active pool into the bunker, zeroing active.
// Depositing an empty active pool is a no-op.
func (l *Ledger) Deposit(p *Player) {
	for k, v := range p.Active {
		p.Bunker[k] += v
		p.Active[k] = 0
	}
}

// ApplyDeath zeroes the active pool and stamps the death time. The bunker is
// never touched: losing unsaved loot is the risk side of the deposit choice.
func (l *Ledger) ApplyDeath(p *Player, now time.Time) {
	for k := range p.Active {
		p.Active[k] = 0
	}
	p.LastDeathAt = now
}
