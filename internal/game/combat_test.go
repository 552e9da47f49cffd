package game

import (
	"errors"
	"testing"

	"github.com/wscgames/scavbot/internal/rules"
)

func fixedResolver(rs rules.RuleSet, seed int64, roll int) *Resolver {
	r := NewResolver(&Ledger{Rules: rs}, NewRoller(seed))
	r.rollD20 = func() int { return roll }
	return r
}

func TestResolveAttackRound(t *testing.T) {
	rs := rules.Canonical()
	c := fixedResolver(rs, 21, 10)
	p := testPlayer(rs)
	p.HP = 50
	p.Equipped.Armor = &Item{Name: "Tattered Clothes", ArmorBonus: 1}
	e := &Enemy{Name: "Rust Bandit", HP: 25, AttackMin: 5, AttackMax: 5, SCRMin: 0.03, SCRMax: 0.05}

	out := c.ResolveAttack(p, e, 1, testNow)
	if out.PlayerDamage != 10 {
		t.Errorf("player damage = %d, want 10", out.PlayerDamage)
	}
	if e.HP != 15 {
		t.Errorf("enemy HP = %d, want 15", e.HP)
	}
	// 5 raw, 10% reduction from one armor point, truncated.
	if out.EnemyDamage != 4 {
		t.Errorf("enemy damage = %d, want 4", out.EnemyDamage)
	}
	if p.HP != 46 {
		t.Errorf("player HP = %d, want 46", p.HP)
	}
	if out.EnemyDown || out.PlayerDown {
		t.Errorf("round reported a knockout: %+v", out)
	}
}

func TestResolveAttackKill(t *testing.T) {
	rs := rules.Canonical()
	rs.CursedLootChance = 0
	c := fixedResolver(rs, 22, 10)
	p := testPlayer(rs)
	e := &Enemy{Name: "Rust Bandit", HP: 5, AttackMin: 5, AttackMax: 8, SCRMin: 0.03, SCRMax: 0.05}

	out := c.ResolveAttack(p, e, 1, testNow)
	if !out.EnemyDown {
		t.Fatal("enemy survived a lethal hit")
	}
	if out.EnemyDamage != 0 {
		t.Errorf("dead enemy counterattacked for %d", out.EnemyDamage)
	}
	if scr := out.Reward[SCR]; scr < 0.03 || scr > 0.05 {
		t.Errorf("SCR reward %g out of [0.03, 0.05]", scr)
	}
	if out.Trophy != nil {
		t.Error("non-boss kill granted a trophy")
	}
	if out.Cursed != nil {
		t.Error("cursed item at zero chance")
	}
}

func TestResolveAttackBossTrophyAndCurse(t *testing.T) {
	rs := rules.Canonical()
	rs.CursedLootChance = 1
	c := fixedResolver(rs, 23, 20)
	p := testPlayer(rs)
	e := &Enemy{Name: BossName, HP: 30, AttackMin: 12, AttackMax: 18, SCRMin: 0.5, SCRMax: 1.0}

	out := c.ResolveAttack(p, e, 10, testNow)
	if !out.EnemyDown {
		t.Fatalf("boss survived a crit for %d", out.PlayerDamage)
	}
	if out.Trophy == nil || out.Trophy.Name != KeyItemName {
		t.Errorf("trophy = %+v, want %q", out.Trophy, KeyItemName)
	}
	if out.Cursed == nil {
		t.Error("no cursed item at certain chance")
	}
}

func TestResolveAttackPlayerDeath(t *testing.T) {
	rs := rules.Canonical()
	c := fixedResolver(rs, 24, 10)
	p := testPlayer(rs)
	p.HP = 3
	p.Active = Pool{SCR: 7, GlowDust: 1}
	p.Bunker = Pool{SCR: 100}
	e := &Enemy{Name: "Iron Maw", HP: 500, AttackMin: 50, AttackMax: 50}

	out := c.ResolveAttack(p, e, 1, testNow)
	if !out.PlayerDown {
		t.Fatal("player survived a lethal counter")
	}
	if !p.Active.Empty() {
		t.Errorf("death kept active loot: %v", p.Active)
	}
	if p.Bunker[SCR] != 100 {
		t.Errorf("death touched the bunker: %v", p.Bunker)
	}
	if !p.LastDeathAt.Equal(testNow) {
		t.Errorf("LastDeathAt = %v", p.LastDeathAt)
	}
}

func TestCursedGearAffectsCombat(t *testing.T) {
	rs := rules.Canonical()
	p := testPlayer(rs)
	p.Inventory.Cursed = []CursedItem{CursedLootTable[1]} // +5 attack, -10% resistance

	if got := p.Attack(rs); got != 15 {
		t.Errorf("Attack = %d, want 15", got)
	}
	if got := p.ResistBonus(); got != -0.1 {
		t.Errorf("ResistBonus = %g, want -0.1", got)
	}
	p.Inventory.Cursed[0].Purified = true
	if got := p.Attack(rs); got != 15 {
		t.Errorf("purified Attack = %d, want the bonus kept", got)
	}
	if got := p.ResistBonus(); got != 0 {
		t.Errorf("purified ResistBonus = %g, want 0", got)
	}
}

func TestUseHealingItem(t *testing.T) {
	rs := rules.Canonical()
	c := NewResolver(&Ledger{Rules: rs}, NewRoller(25))
	p := testPlayer(rs)

	if _, _, err := c.UseHealingItem(p); !errors.Is(err, ErrValidation) {
		t.Errorf("full-HP heal = %v, want ErrValidation", err)
	}

	p.HP = 50
	if _, _, err := c.UseHealingItem(p); !IsInsufficient(err) {
		t.Errorf("empty-bag heal = %v, want InsufficientError", err)
	}

	p.Inventory.Consumables["radPill"] = 1
	p.Inventory.Consumables["scavJuice"] = 1
	name, amount, err := c.UseHealingItem(p)
	if err != nil {
		t.Fatalf("UseHealingItem: %v", err)
	}
	// Strongest consumable goes first.
	if name != "scavJuice" || amount != 20 || p.HP != 70 {
		t.Errorf("healed %d with %s to %d HP", amount, name, p.HP)
	}

	p.HP = 95
	name, _, err = c.UseHealingItem(p)
	if err != nil {
		t.Fatalf("UseHealingItem: %v", err)
	}
	if name != "radPill" || p.HP != 100 {
		t.Errorf("overheal with %s left HP %d, want clamp at 100", name, p.HP)
	}
}

func TestUseReviveStim(t *testing.T) {
	rs := rules.Canonical()
	c := NewResolver(&Ledger{Rules: rs}, NewRoller(26))
	p := testPlayer(rs)

	if err := c.UseReviveStim(p, testNow); !errors.Is(err, ErrValidation) {
		t.Errorf("living revive = %v, want ErrValidation", err)
	}
	p.HP = 0
	if err := c.UseReviveStim(p, testNow); !IsInsufficient(err) {
		t.Errorf("stimless revive = %v, want InsufficientError", err)
	}
	p.Inventory.Consumables["reviveStim"] = 1
	if err := c.UseReviveStim(p, testNow); err != nil {
		t.Fatalf("UseReviveStim: %v", err)
	}
	if p.HP != 1 || p.Inventory.Consumables["reviveStim"] != 0 {
		t.Errorf("after revive: HP %d, stims %d", p.HP, p.Inventory.Consumables["reviveStim"])
	}
}
