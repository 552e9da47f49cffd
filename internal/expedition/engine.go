// Package expedition drives one scavenging run from entry to a terminal
// outcome. Transition legality lives in an enetx/fsm machine; the engine
// methods compute combat and loot outcomes and feed the machine events.
package expedition

import (
	"errors"
	"fmt"
	"time"

	"github.com/enetx/fsm"

	"github.com/wscgames/scavbot/internal/game"
	"github.com/wscgames/scavbot/internal/rules"
)

// States of one run.
const (
	StateIdle    fsm.State = "Idle"
	StateCombat  fsm.State = "Combat"
	StateChoice  fsm.State = "PostVictoryChoice"
	StateDeath   fsm.State = "Death"
	StateFlee    fsm.State = "Flee"
	StateTimeout fsm.State = "Timeout"
	StateCleared fsm.State = "Cleared"
)

// Externally triggered events.
const (
	EventStart   fsm.Event = "start"
	EventAttack  fsm.Event = "attack"
	EventHeal    fsm.Event = "heal"
	EventExplore fsm.Event = "explore"
	EventAdvance fsm.Event = "advance"
	EventRetreat fsm.Event = "retreat"
	EventTimeout fsm.Event = "timeout"
)

// Internal events emitted once a combat or advance outcome is known.
const (
	eventVictory fsm.Event = "victory"
	eventDie     fsm.Event = "die"
	eventStay    fsm.Event = "stay"
	eventCleared fsm.Event = "cleared"
)

// Recorder receives best-floor/round updates on every advance and terminal
// transition. Implementations must be monotonic per player.
type Recorder interface {
	Record(playerID, name string, floor, rounds int)
}

// Engine is one active run for one player. It is not safe for concurrent use;
// the session layer serializes actions per player.
type Engine struct {
	rulesSet rules.RuleSet
	ledger   *game.Ledger
	resolver *game.Resolver
	roll     *game.Roller
	recorder Recorder
	now      func() time.Time

	player   *game.Player
	zone     game.Zone
	floor    int
	round    int
	enemy    *game.Enemy
	loot     game.Pool
	explored bool

	machine *fsm.FSM
}

// NewEngine builds an idle engine for the player. The recorder may be nil.
func NewEngine(p *game.Player, l *game.Ledger, r *game.Roller, rec Recorder, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	e := &Engine{
		rulesSet: l.Rules,
		ledger:   l,
		resolver: game.NewResolver(l, r),
		roll:     r,
		recorder: rec,
		now:      now,
		player:   p,
		loot:     game.Pool{},
	}
	e.machine = newMachine(e)
	return e
}

// newMachine wires the transition table. Terminal commits run as OnEnter
// callbacks so no path can skip them.
func newMachine(e *Engine) *fsm.FSM {
	m := fsm.New(StateIdle)

	m.Transition(StateIdle, EventStart, StateCombat).
		Transition(StateCombat, EventAttack, StateCombat).
		Transition(StateCombat, EventHeal, StateCombat).
		Transition(StateCombat, eventVictory, StateChoice).
		Transition(StateCombat, eventDie, StateDeath).
		Transition(StateCombat, EventRetreat, StateFlee).
		Transition(StateCombat, EventTimeout, StateTimeout).
		TransitionWhen(StateChoice, EventExplore, StateChoice, func(*fsm.Context) bool { return !e.explored }).
		Transition(StateChoice, EventAdvance, StateCombat).
		Transition(StateChoice, eventStay, StateChoice).
		Transition(StateChoice, eventDie, StateDeath).
		Transition(StateChoice, eventCleared, StateCleared).
		Transition(StateChoice, EventRetreat, StateFlee).
		Transition(StateChoice, EventTimeout, StateTimeout)

	commit := func(*fsm.Context) error { e.commitLoot(); return nil }
	m.OnEnter(StateFlee, commit).
		OnEnter(StateTimeout, commit).
		OnEnter(StateCleared, commit).
		OnEnter(StateDeath, func(*fsm.Context) error {
			// The death rule already zeroed the active pool; run loot is
			// discarded, not merged.
			e.loot = game.Pool{}
			e.record()
			return nil
		})
	return m
}

// State returns the current machine state.
func (e *Engine) State() fsm.State { return e.machine.Current() }

// Done reports whether the run reached a terminal state.
func (e *Engine) Done() bool {
	switch e.machine.Current() {
	case StateDeath, StateFlee, StateTimeout, StateCleared:
		return true
	}
	return false
}

// Floor returns the current depth counter.
func (e *Engine) Floor() int { return e.floor }

// Zone returns the run's zone.
func (e *Engine) Zone() game.Zone { return e.zone }

// Enemy returns the current enemy, nil outside combat.
func (e *Engine) Enemy() *game.Enemy { return e.enemy }

// Loot returns the accumulated, not yet committed run loot.
func (e *Engine) Loot() game.Pool { return e.loot.Clone() }

// Start begins the run in the given zone: one energy is spent, the floor-1
// enemy spawned. Rejected while the post-death wait is running.
func (e *Engine) Start(zone game.Zone) ([]string, error) {
	if rem := e.player.DeathWaitRemaining(e.rulesSet, e.now()); rem > 0 {
		return nil, &game.CooldownError{Remaining: rem}
	}
	// Reject a reused engine before spending energy; EventStart only fires
	// from Idle, so a failed trigger after the spend would double-charge.
	if e.machine.Current() != StateIdle {
		return nil, game.ErrValidation
	}
	if err := e.ledger.SpendEnergy(e.player, 1); err != nil {
		return nil, err
	}
	e.zone = zone
	e.floor = 1
	e.spawn()
	if err := e.trigger(EventStart); err != nil {
		return nil, err
	}
	return []string{
		fmt.Sprintf("%s — %s", e.zone.Name, e.zone.Desc),
		fmt.Sprintf("%s (HP: %d) lunges! %s", e.enemy.Name, e.enemy.HP, e.enemy.Flavor),
	}, nil
}

// Attack resolves one combat round and routes the machine by its outcome.
func (e *Engine) Attack() ([]string, error) {
	if err := e.trigger(EventAttack); err != nil {
		return nil, err
	}
	e.round++
	out := e.resolver.ResolveAttack(e.player, e.enemy, e.floor, e.now())
	log := out.Log

	switch {
	case out.PlayerDown:
		if err := e.trigger(eventDie); err != nil {
			return log, err
		}
	case out.EnemyDown:
		e.loot.Add(out.Reward)
		if out.Trophy != nil {
			e.player.Inventory.Misc = append(e.player.Inventory.Misc, *out.Trophy)
			log = append(log, fmt.Sprintf("You obtained the epic %s!", out.Trophy.Name))
		}
		if out.KeyItem && out.Trophy == nil {
			e.player.Inventory.Misc = append(e.player.Inventory.Misc, game.MiscItem{Name: game.KeyItemName})
		}
		if out.Cursed != nil {
			e.player.Inventory.Cursed = append(e.player.Inventory.Cursed, *out.Cursed)
		}
		e.enemy = nil
		if err := e.trigger(eventVictory); err != nil {
			return log, err
		}
	}
	return log, nil
}

// Heal consumes the best healing item; the enemy still counterattacks.
func (e *Engine) Heal() ([]string, error) {
	if err := e.trigger(EventHeal); err != nil {
		return nil, err
	}
	e.round++
	var log []string
	name, amount, err := e.resolver.UseHealingItem(e.player)
	if err != nil {
		log = append(log, "No healing items available!")
	} else {
		log = append(log, fmt.Sprintf("Used %s! +%d HP. HP: %d", name, amount, e.player.HP))
	}
	if e.enemy != nil && e.enemy.HP > 0 {
		dmg := e.enemySwing()
		log = append(log, fmt.Sprintf("%s hits for %d. HP: %d", e.enemy.Name, dmg, e.player.HP))
		if e.player.Dead() {
			e.ledger.ApplyDeath(e.player, e.now())
			log = append(log, "You collapse. All active loot lost.")
			if err := e.trigger(eventDie); err != nil {
				return log, err
			}
		}
	}
	return log, nil
}

// enemySwing applies a counterattack without a player hit.
func (e *Engine) enemySwing() int {
	raw := e.roll.Range(e.enemy.AttackMin, e.enemy.AttackMax)
	reduction := float64(e.player.Armor())*e.rulesSet.ArmorReductionPerPoint + e.player.ResistBonus()
	if reduction < 0 {
		reduction = 0
	}
	dmg := int(float64(raw) * (1 - reduction))
	if dmg < 0 {
		dmg = 0
	}
	e.player.HP -= dmg
	return dmg
}

// Explore rolls the one-time floor bonus. A second explore on the same floor
// is rejected by the machine guard and reported as a no-op.
func (e *Engine) Explore() ([]string, error) {
	if err := e.trigger(EventExplore); err != nil {
		if e.explored {
			return []string{"You already picked this floor clean."}, nil
		}
		return nil, err
	}
	e.explored = true
	found := game.ExploreLoot(e.roll, e.floor)
	e.loot.Add(found)
	return []string{fmt.Sprintf("You scavenge the area... found %s.", game.FormatPool(found))}, nil
}

// Advance moves one floor deeper. Depending on configured odds the floor
// holds a loot cache, a hazard, or (usually) a fresh scaled enemy. Capped
// zones end the run as Cleared at their cap.
func (e *Engine) Advance() ([]string, error) {
	if e.machine.Current() != StateChoice {
		return nil, e.trigger(EventAdvance) // yield the transition error
	}
	if e.zone.FloorCap > 0 && e.floor >= e.zone.FloorCap {
		if err := e.trigger(eventCleared); err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("You've ventured far enough in %s. Time to head back!", e.zone.Name)}, nil
	}

	e.floor++
	e.explored = false
	e.record()

	chance := e.roll.Float()
	switch {
	case chance < e.rulesSet.LootCacheChance:
		cache := game.CacheLoot(e.roll)
		e.loot.Add(cache)
		if err := e.trigger(eventStay); err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("You stumble upon a hidden Loot Cache! Found %s.", game.FormatPool(cache))}, nil
	case chance < e.rulesSet.LootCacheChance+e.rulesSet.HazardChance:
		e.player.HP -= e.rulesSet.HazardDamage
		log := []string{fmt.Sprintf("A Rad Storm hits, dealing %d damage! HP: %d", e.rulesSet.HazardDamage, e.player.HP)}
		if e.player.Dead() {
			e.ledger.ApplyDeath(e.player, e.now())
			log = append(log, "You collapse. All active loot lost.")
			if err := e.trigger(eventDie); err != nil {
				return log, err
			}
			return log, nil
		}
		if err := e.trigger(eventStay); err != nil {
			return nil, err
		}
		return log, nil
	default:
		e.spawn()
		if err := e.trigger(EventAdvance); err != nil {
			return nil, err
		}
		return []string{
			fmt.Sprintf("Floor %d. %s (HP: %d) lunges! %s", e.floor, e.enemy.Name, e.enemy.HP, e.enemy.Flavor),
		}, nil
	}
}

// Retreat ends the run, committing accumulated loot into the active pool.
func (e *Engine) Retreat() ([]string, error) {
	if err := e.trigger(EventRetreat); err != nil {
		return nil, err
	}
	return []string{fmt.Sprintf("You flee %s with your loot.", e.zone.Name)}, nil
}

// Timeout force-terminates an inactive run with the same loot commit as a
// flee.
func (e *Engine) Timeout() ([]string, error) {
	if e.Done() || e.machine.Current() == StateIdle {
		return nil, nil
	}
	if err := e.trigger(EventTimeout); err != nil {
		return nil, err
	}
	return []string{"You stall! The scavenge ends."}, nil
}

// spawn instantiates a floor-scaled enemy for the zone.
func (e *Engine) spawn() {
	enemy := game.ScaleEnemy(e.roll, e.zone.Tiers, e.floor, e.rulesSet.TierFloorDivisor,
		e.rulesSet.HPAttackScalePerFloor, e.rulesSet.RewardScalePerFloor)
	e.enemy = &enemy
}

// commitLoot merges accumulated run loot into the player's active pool and
// discards it, then records bests.
func (e *Engine) commitLoot() {
	e.player.Active.Add(e.loot)
	e.loot = game.Pool{}
	e.record()
}

// record pushes current bests to the player and the recorder.
func (e *Engine) record() {
	if e.floor > e.player.BestFloor {
		e.player.BestFloor = e.floor
	}
	if e.round > e.player.BestRounds {
		e.player.BestRounds = e.round
	}
	if e.recorder != nil {
		e.recorder.Record(e.player.ID, e.player.Name, e.floor, e.round)
	}
}

// trigger maps machine rejections onto the game error taxonomy.
func (e *Engine) trigger(ev fsm.Event) error {
	err := e.machine.Trigger(ev)
	if err == nil {
		return nil
	}
	var invalid *fsm.ErrInvalidTransition
	if errors.As(err, &invalid) {
		return game.ErrValidation
	}
	return err
}
