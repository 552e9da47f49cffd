package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/wscgames/scavbot/internal/chain"
	"github.com/wscgames/scavbot/internal/expedition"
	"github.com/wscgames/scavbot/internal/game"
	"github.com/wscgames/scavbot/internal/leaderboard"
	"github.com/wscgames/scavbot/internal/rules"
	"github.com/wscgames/scavbot/internal/store"
)

// Manager owns all live sessions and routes actions to handlers.
type Manager struct {
	Rules   rules.RuleSet
	Ledger  *game.Ledger
	Board   leaderboard.Board
	Chain   chain.Service
	Snap    store.Snapshot
	AdminID string

	roll *game.Roller
	now  func() time.Time

	mu       sync.Mutex
	state    *store.State
	sessions map[string]*playerSession
}

// NewManager wires the router over loaded state. now may be nil.
func NewManager(rs rules.RuleSet, st *store.State, snap store.Snapshot, board leaderboard.Board, svc chain.Service, adminID string, roll *game.Roller, now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{
		Rules:    rs,
		Ledger:   &game.Ledger{Rules: rs},
		Board:    board,
		Chain:    svc,
		Snap:     snap,
		AdminID:  adminID,
		roll:     roll,
		now:      now,
		state:    st,
		sessions: map[string]*playerSession{},
	}
}

// handler processes one action for a session and returns the next prompt.
type handler func(m *Manager, s *playerSession, arg string) (Prompt, error)

// dispatch is the single transition table: (menu state, action id) -> handler.
// Parameterized actions are keyed by their prefix with a trailing underscore.
var dispatch = map[menuState]map[string]handler{
	menuMain: {
		"scavenge":  (*Manager).startScavenge,
		"bunker":    (*Manager).showBunker,
		"store":     (*Manager).showStore,
		"stats":     (*Manager).showStats,
		"inventory": (*Manager).showInventory,
		"exit":      (*Manager).exitSession,
	},
	menuBunker: {
		"deposit": (*Manager).deposit,
		"craft":   (*Manager).showCraft,
		"wallet":  (*Manager).showWallet,
		"purify_": (*Manager).purify,
		"purify":  (*Manager).showPurify,
		"back":    (*Manager).showMain,
	},
	menuCraft: {
		"craft_": (*Manager).craft,
		"back":   (*Manager).showBunker,
	},
	menuStore: {
		"buy_":  (*Manager).buyConsumable,
		"pack_": (*Manager).buyPack,
		"back":  (*Manager).showMain,
	},
	menuInventory: {
		"equip_weapon_": (*Manager).equipWeapon,
		"equip_armor_":  (*Manager).equipArmor,
		"healing":       (*Manager).showHealing,
		"back":          (*Manager).showMain,
	},
	menuHealing: {
		"use_revive_stim": (*Manager).useReviveStim,
		"back":            (*Manager).showInventory,
	},
	menuExpedition: {
		"attack":         (*Manager).expAttack,
		"heal":           (*Manager).expHeal,
		"scavenge_loot":  (*Manager).expExplore,
		"go_further":     (*Manager).expAdvance,
		"run":            (*Manager).expRetreat,
		"back_to_bunker": (*Manager).expFinish,
	},
}

// HandleAction processes one button press for the user. Unknown or
// out-of-state actions re-render the current prompt.
func (m *Manager) HandleAction(userID, actionID string) (Prompt, error) {
	s, ok := m.session(userID)
	if !ok {
		return Prompt{}, game.ErrSessionExpired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = m.now()

	h, arg, ok := resolve(s.menu, actionID)
	if !ok {
		return m.renderCurrent(s), nil
	}
	p, err := h(m, s, arg)
	if err != nil {
		return m.renderError(s, err), nil
	}
	if err := m.persist(); err != nil {
		// Fatal: progress cannot be saved. End the session with whatever
		// could still be committed in memory.
		return m.terminate(s, "Something went wrong saving your progress. Session ended."), nil
	}
	return p, nil
}

// resolve finds the handler for an action id in the current menu, matching
// parameterized prefixes like craft_<id>.
func resolve(menu menuState, actionID string) (handler, string, bool) {
	row, ok := dispatch[menu]
	if !ok {
		return nil, "", false
	}
	if h, ok := row[actionID]; ok {
		return h, "", true
	}
	for key, h := range row {
		if strings.HasSuffix(key, "_") && strings.HasPrefix(actionID, key) {
			return h, strings.TrimPrefix(actionID, key), true
		}
	}
	return nil, "", false
}

// session returns the live session for the user.
func (m *Manager) session(userID string) (*playerSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	return s, ok
}

// Open attaches a transport for a registered player and renders the main
// menu. An existing session for the same user is replaced; its running
// expedition commits via the timeout transition so the run loot survives
// the reconnect.
func (m *Manager) Open(userID string, t Transport) (Prompt, error) {
	m.mu.Lock()
	p, ok := m.state.Players[userID]
	if !ok {
		m.mu.Unlock()
		return Prompt{}, game.ErrValidation
	}
	s := &playerSession{player: p, menu: menuMain, transport: t, lastActive: m.now()}
	old := m.sessions[userID]
	m.sessions[userID] = s
	m.mu.Unlock()
	if old != nil {
		old.mu.Lock()
		if old.exp != nil && !old.exp.Done() {
			if _, err := old.exp.Timeout(); err != nil {
				log.Printf("session %s: timeout commit: %v", userID, err)
			}
		}
		old.exp = nil
		if old.transport != nil {
			old.transport.Close("replaced")
		}
		old.mu.Unlock()
		m.persist()
	}
	return m.mainMenu(p), nil
}

// CloseSession drops a session, committing any running expedition as a
// timeout first.
func (m *Manager) CloseSession(userID, reason string) {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	if ok {
		delete(m.sessions, userID)
	}
	m.mu.Unlock()
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.exp != nil && !s.exp.Done() {
		if _, err := s.exp.Timeout(); err != nil {
			log.Printf("session %s: timeout commit: %v", userID, err)
		}
	}
	s.exp = nil
	m.persist()
	if s.transport != nil {
		s.transport.Close(reason)
	}
}

// ExpireIdle force-terminates sessions without a recent action. Pending run
// loot is committed via the Timeout transition.
func (m *Manager) ExpireIdle() {
	cutoff := m.now().Add(-m.Rules.SessionIdleTimeout)
	m.mu.Lock()
	var expired []string
	for id, s := range m.sessions {
		if s.lastActive.Before(cutoff) {
			expired = append(expired, id)
		}
	}
	m.mu.Unlock()
	for _, id := range expired {
		log.Printf("session %s: idle timeout", id)
		m.CloseSession(id, "session timed out")
	}
}

// SweepRegen applies RegenerateTick to every player and saves the snapshot.
// Called on a fixed timer; it takes the same per-player boundary as actions.
func (m *Manager) SweepRegen() {
	now := m.now()
	m.mu.Lock()
	players := make([]*game.Player, 0, len(m.state.Players))
	for _, p := range m.state.Players {
		players = append(players, p)
	}
	sessions := make(map[string]*playerSession, len(m.sessions))
	for id, s := range m.sessions {
		sessions[id] = s
	}
	m.mu.Unlock()

	for _, p := range players {
		if s, ok := sessions[p.ID]; ok {
			s.mu.Lock()
			m.Ledger.RegenerateTick(p, now)
			s.mu.Unlock()
		} else {
			m.Ledger.RegenerateTick(p, now)
		}
	}
	m.persist()
}

// persist writes the snapshot. The error is logged here; callers that cannot
// continue without a save decide what to tear down.
func (m *Manager) persist() error {
	if m.Snap == nil {
		return nil
	}
	m.mu.Lock()
	st := m.state
	m.mu.Unlock()
	if err := m.Snap.SaveSnapshot(st); err != nil {
		log.Printf("persist: %v", err)
		return err
	}
	return nil
}

// State exposes the loaded state for admin dump and the regen ticker.
func (m *Manager) State() *store.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Reset clears all game state. Restricted to the admin identity.
func (m *Manager) Reset(callerID string) error {
	if callerID != m.AdminID {
		return game.ErrUnauthorized
	}
	m.mu.Lock()
	for id, s := range m.sessions {
		if s.transport != nil {
			s.transport.Close("state reset")
		}
		delete(m.sessions, id)
	}
	m.state = store.NewState()
	m.mu.Unlock()
	m.persist()
	return nil
}

// ========================= Menu handlers =========================

func (m *Manager) showMain(s *playerSession, _ string) (Prompt, error) {
	s.menu = menuMain
	return m.mainMenu(s.player), nil
}

func (m *Manager) mainMenu(p *game.Player) Prompt {
	return Prompt{
		Text: fmt.Sprintf("%s, welcome to the Wasteland Terminal.\nChoose your action:", p.Name),
		Actions: []Action{
			{ID: "scavenge", Label: "SCAVENGE"},
			{ID: "bunker", Label: "BUNKER"},
			{ID: "store", Label: "STORE"},
			{ID: "stats", Label: "STATS"},
			{ID: "inventory", Label: "INVENTORY"},
			{ID: "exit", Label: "EXIT"},
		},
	}
}

func (m *Manager) showBunker(s *playerSession, _ string) (Prompt, error) {
	s.menu = menuBunker
	p := s.player
	return Prompt{
		Text: fmt.Sprintf("%s, welcome to your Bunker.\nActive Loot: %s\nBunker Storage: %s",
			p.Name, game.FormatPool(p.Active), game.FormatPool(p.Bunker)),
		Actions: []Action{
			{ID: "deposit", Label: "Deposit Loot"},
			{ID: "craft", Label: "Craft"},
			{ID: "wallet", Label: "Wallet"},
			{ID: "purify", Label: "Purify Cursed Items"},
			{ID: "back", Label: "Back"},
		},
	}, nil
}

func (m *Manager) deposit(s *playerSession, _ string) (Prompt, error) {
	m.Ledger.Deposit(s.player)
	return Prompt{
		Text: fmt.Sprintf("%s, loot deposited.\nBunker Storage: %s",
			s.player.Name, game.FormatPool(s.player.Bunker)),
		Actions: []Action{{ID: "back", Label: "Back"}},
	}, nil
}

func (m *Manager) showWallet(s *playerSession, _ string) (Prompt, error) {
	p := s.player
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	bal, err := m.Chain.GetBalance(ctx, p.WalletAddr, "wsc")
	if err != nil {
		return Prompt{}, &game.ExternalServiceError{Op: "balance", Err: err}
	}
	return Prompt{
		Text:    fmt.Sprintf("%s, your wallet:\nWSC Balance: %.2f", p.Name, bal),
		Actions: []Action{{ID: "back", Label: "Back"}},
	}, nil
}

func (m *Manager) showCraft(s *playerSession, _ string) (Prompt, error) {
	s.menu = menuCraft
	p := s.player
	actions := make([]Action, 0, len(game.Recipes)+1)
	for _, rec := range game.Recipes {
		label := fmt.Sprintf("Craft %s (%s)", rec.Output.Name, game.FormatPool(rec.Materials))
		if rec.RequiresKey {
			label += " [requires " + game.KeyItemName + "]"
		}
		actions = append(actions, Action{ID: "craft_" + rec.ID, Label: label})
	}
	actions = append(actions, Action{ID: "back", Label: "Back"})
	return Prompt{
		Text:    fmt.Sprintf("%s, crafting options:\nBunker Storage: %s", p.Name, game.FormatPool(p.Bunker)),
		Actions: actions,
	}, nil
}

func (m *Manager) craft(s *playerSession, recipeID string) (Prompt, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	item, err := m.Ledger.Craft(ctx, s.player, recipeID, m.Chain)
	var extErr *game.ExternalServiceError
	if err != nil && !errors.As(err, &extErr) {
		return Prompt{}, err
	}
	text := fmt.Sprintf("%s, crafted %s!", s.player.Name, item.Name)
	if extErr != nil {
		// Craft committed; only the mint side channel failed.
		text += fmt.Sprintf("\nMint failed: %v", extErr)
	} else if item.MintTx != "" {
		m.mu.Lock()
		m.state.NFTCount++
		m.mu.Unlock()
		text += fmt.Sprintf("\nMinted as collectible. Tx: %s", item.MintTx)
	}
	return Prompt{Text: text, Actions: []Action{{ID: "back", Label: "Back"}}}, nil
}

func (m *Manager) showPurify(s *playerSession, _ string) (Prompt, error) {
	p := s.player
	actions := []Action{}
	for i, c := range p.Inventory.Cursed {
		if !c.Purified {
			actions = append(actions, Action{
				ID:    "purify_" + strconv.Itoa(i),
				Label: fmt.Sprintf("Purify %s (%.0f SCR)", c.Name, m.Rules.PurifyCost),
			})
		}
	}
	if len(actions) == 0 {
		return Prompt{
			Text:    fmt.Sprintf("%s, no cursed items to purify!", p.Name),
			Actions: []Action{{ID: "back", Label: "Back"}},
		}, nil
	}
	actions = append(actions, Action{ID: "back", Label: "Back"})
	return Prompt{Text: fmt.Sprintf("%s, select a cursed item to purify:", p.Name), Actions: actions}, nil
}

func (m *Manager) purify(s *playerSession, arg string) (Prompt, error) {
	idx, err := strconv.Atoi(arg)
	if err != nil {
		return Prompt{}, game.ErrValidation
	}
	if err := m.Ledger.Purify(s.player, idx); err != nil {
		return Prompt{}, err
	}
	c := s.player.Inventory.Cursed[idx]
	return Prompt{
		Text:    fmt.Sprintf("%s, purified %s! (%s now active without debuff)", s.player.Name, c.Name, c.Bonus),
		Actions: []Action{{ID: "back", Label: "Back"}},
	}, nil
}

func (m *Manager) showStore(s *playerSession, _ string) (Prompt, error) {
	s.menu = menuStore
	p := s.player
	actions := []Action{
		{ID: "buy_scavJuice", Label: fmt.Sprintf("Buy Scav Juice (%.0f SCR)", m.Rules.StorePrices["scavJuice"])},
		{ID: "buy_radPill", Label: fmt.Sprintf("Buy Rad Pill (%.0f SCR)", m.Rules.StorePrices["radPill"])},
		{ID: "buy_reviveStim", Label: fmt.Sprintf("Buy Revive Stim (%.0f SCR)", m.Rules.StorePrices["reviveStim"])},
		{ID: "pack_common", Label: fmt.Sprintf("Common Material Pack (%.0f SCR)", m.Rules.PackPrices["common"])},
		{ID: "pack_rare", Label: fmt.Sprintf("Rare Material Pack (%.0f SCR)", m.Rules.PackPrices["rare"])},
		{ID: "pack_legendary", Label: fmt.Sprintf("Legendary Material Pack (%.0f SCR)", m.Rules.PackPrices["legendary"])},
		{ID: "back", Label: "Back"},
	}
	return Prompt{
		Text:    fmt.Sprintf("%s, welcome to the Store.\nBunker SCR: %.2f", p.Name, p.Bunker[game.SCR]),
		Actions: actions,
	}, nil
}

func (m *Manager) buyConsumable(s *playerSession, name string) (Prompt, error) {
	if err := m.Ledger.BuyConsumable(s.player, name); err != nil {
		return Prompt{}, err
	}
	return Prompt{
		Text:    fmt.Sprintf("%s, bought! You now hold %d.", s.player.Name, s.player.Inventory.Consumables[name]),
		Actions: []Action{{ID: "back", Label: "Back"}},
	}, nil
}

func (m *Manager) buyPack(s *playerSession, tier string) (Prompt, error) {
	drop, err := m.Ledger.BuyPack(s.player, m.roll, tier)
	if err != nil {
		return Prompt{}, err
	}
	text := fmt.Sprintf("%s, pack opened: %s", s.player.Name, game.FormatPool(drop.Materials))
	if drop.KeyItem {
		text += fmt.Sprintf("\nInside: the %s!", game.KeyItemName)
	}
	return Prompt{Text: text, Actions: []Action{{ID: "back", Label: "Back"}}}, nil
}

func (m *Manager) showStats(s *playerSession, _ string) (Prompt, error) {
	p := s.player
	return Prompt{
		Text: fmt.Sprintf("%s, your stats:\nHP: %d/%d\nAttack: %d\nArmor: %d (reduces damage by %.0f%%)\nEnergy: %d/%d\nBest floor: %d",
			p.Name, p.HP, p.MaxHP(m.Rules), p.Attack(m.Rules), p.Armor(),
			float64(p.Armor())*m.Rules.ArmorReductionPerPoint*100, p.Energy, m.Rules.EnergyCap, p.BestFloor),
		Actions: []Action{{ID: "back", Label: "Back"}},
	}, nil
}

func (m *Manager) showInventory(s *playerSession, _ string) (Prompt, error) {
	s.menu = menuInventory
	p := s.player
	var b strings.Builder
	fmt.Fprintf(&b, "%s, your inventory:\n", p.Name)
	b.WriteString("Weapons:\n")
	actions := []Action{}
	for i, w := range p.Inventory.Weapons {
		fmt.Fprintf(&b, "  %d. %s (+%d Attack)\n", i+1, w.Name, w.AttackBonus)
		actions = append(actions, Action{ID: "equip_weapon_" + strconv.Itoa(i), Label: "Equip " + w.Name})
	}
	b.WriteString("Armor:\n")
	for i, a := range p.Inventory.Armor {
		fmt.Fprintf(&b, "  %d. %s (+%d Armor)\n", i+1, a.Name, a.ArmorBonus)
		actions = append(actions, Action{ID: "equip_armor_" + strconv.Itoa(i), Label: "Equip " + a.Name})
	}
	if len(p.Inventory.Misc) > 0 {
		b.WriteString("Misc:\n")
		for i, t := range p.Inventory.Misc {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, t.Name)
		}
	}
	actions = append(actions, Action{ID: "healing", Label: "Healing"}, Action{ID: "back", Label: "Back"})
	return Prompt{Text: b.String(), Actions: actions}, nil
}

func (m *Manager) equipWeapon(s *playerSession, arg string) (Prompt, error) {
	idx, err := strconv.Atoi(arg)
	if err != nil {
		return Prompt{}, game.ErrValidation
	}
	if err := s.player.EquipWeapon(idx); err != nil {
		return Prompt{}, err
	}
	return Prompt{
		Text:    fmt.Sprintf("%s, equipped %s!", s.player.Name, s.player.Equipped.Weapon.Name),
		Actions: []Action{{ID: "back", Label: "Back"}},
	}, nil
}

func (m *Manager) equipArmor(s *playerSession, arg string) (Prompt, error) {
	idx, err := strconv.Atoi(arg)
	if err != nil {
		return Prompt{}, game.ErrValidation
	}
	if err := s.player.EquipArmor(idx); err != nil {
		return Prompt{}, err
	}
	return Prompt{
		Text:    fmt.Sprintf("%s, equipped %s!", s.player.Name, s.player.Equipped.Armor.Name),
		Actions: []Action{{ID: "back", Label: "Back"}},
	}, nil
}

func (m *Manager) showHealing(s *playerSession, _ string) (Prompt, error) {
	s.menu = menuHealing
	inv := s.player.Inventory.Consumables
	actions := []Action{}
	if s.player.Dead() && inv["reviveStim"] > 0 {
		actions = append(actions, Action{ID: "use_revive_stim", Label: "Use Revive Stim"})
	}
	actions = append(actions, Action{ID: "back", Label: "Back to Inventory"})
	return Prompt{
		Text: fmt.Sprintf("%s, your healing items:\nScav Juice: %d\nRad Pills: %d\nRevive Stims: %d",
			s.player.Name, inv["scavJuice"], inv["radPill"], inv["reviveStim"]),
		Actions: actions,
	}, nil
}

func (m *Manager) useReviveStim(s *playerSession, _ string) (Prompt, error) {
	res := game.NewResolver(m.Ledger, m.roll)
	if err := res.UseReviveStim(s.player, m.now()); err != nil {
		return Prompt{}, err
	}
	return Prompt{
		Text:    fmt.Sprintf("%s, used a Revive Stim! HP restored to 1.", s.player.Name),
		Actions: []Action{{ID: "back", Label: "Back to Inventory"}},
	}, nil
}

// exitSession tears the session down in place.
func (m *Manager) exitSession(s *playerSession, _ string) (Prompt, error) {
	return m.terminate(s, fmt.Sprintf("%s, session ended. Reconnect to return.", s.player.Name)), nil
}

// terminate force-ends a session whose per-player lock is already held by
// HandleAction, so it must not go through CloseSession. A live run is
// committed via the timeout transition first.
func (m *Manager) terminate(s *playerSession, msg string) Prompt {
	if s.exp != nil && !s.exp.Done() {
		if _, err := s.exp.Timeout(); err != nil {
			log.Printf("session %s: timeout commit: %v", s.player.ID, err)
		}
	}
	s.exp = nil
	m.mu.Lock()
	delete(m.sessions, s.player.ID)
	m.mu.Unlock()
	if s.transport != nil {
		t := s.transport
		defer t.Close("session ended")
	}
	return Prompt{Text: msg}
}

// ========================= Expedition handlers =========================

// startScavenge picks a weighted zone and begins a run. Energy and the death
// cooldown are checked inside the engine's Start.
func (m *Manager) startScavenge(s *playerSession, _ string) (Prompt, error) {
	zone := game.PickZone(m.roll)
	eng := expedition.NewEngine(s.player, m.Ledger, m.roll, m.Board, m.now)
	log, err := eng.Start(zone)
	if err != nil {
		return Prompt{}, err
	}
	s.exp = eng
	s.menu = menuExpedition
	return m.expPrompt(s, log), nil
}

// run returns the live engine, or ErrValidation when the run already ended
// and the user replays an expedition button.
func (s *playerSession) run() (*expedition.Engine, error) {
	if s.exp == nil {
		return nil, game.ErrValidation
	}
	return s.exp, nil
}

func (m *Manager) expAttack(s *playerSession, _ string) (Prompt, error) {
	e, err := s.run()
	if err != nil {
		return Prompt{}, err
	}
	log, err := e.Attack()
	if err != nil {
		return Prompt{}, err
	}
	return m.expPrompt(s, log), nil
}

func (m *Manager) expHeal(s *playerSession, _ string) (Prompt, error) {
	e, err := s.run()
	if err != nil {
		return Prompt{}, err
	}
	log, err := e.Heal()
	if err != nil {
		return Prompt{}, err
	}
	return m.expPrompt(s, log), nil
}

func (m *Manager) expExplore(s *playerSession, _ string) (Prompt, error) {
	e, err := s.run()
	if err != nil {
		return Prompt{}, err
	}
	log, err := e.Explore()
	if err != nil {
		return Prompt{}, err
	}
	return m.expPrompt(s, log), nil
}

func (m *Manager) expAdvance(s *playerSession, _ string) (Prompt, error) {
	e, err := s.run()
	if err != nil {
		return Prompt{}, err
	}
	log, err := e.Advance()
	if err != nil {
		return Prompt{}, err
	}
	return m.expPrompt(s, log), nil
}

func (m *Manager) expRetreat(s *playerSession, _ string) (Prompt, error) {
	e, err := s.run()
	if err != nil {
		return Prompt{}, err
	}
	log, err := e.Retreat()
	if err != nil {
		return Prompt{}, err
	}
	return m.expPrompt(s, log), nil
}

func (m *Manager) expFinish(s *playerSession, _ string) (Prompt, error) {
	s.exp = nil
	return m.showBunker(s, "")
}

// expPrompt renders the expedition step result with the valid next actions.
func (m *Manager) expPrompt(s *playerSession, log []string) Prompt {
	e := s.exp
	text := strings.Join(log, "\n")
	if e == nil {
		return Prompt{Text: text, Actions: []Action{{ID: "back_to_bunker", Label: "Back to Bunker"}}}
	}
	switch e.State() {
	case expedition.StateCombat:
		en := e.Enemy()
		text += fmt.Sprintf("\nHP: %d, Energy: %d/%d", s.player.HP, s.player.Energy, m.Rules.EnergyCap)
		if en != nil {
			text = fmt.Sprintf("%s — floor %d\n", e.Zone().Name, e.Floor()) + text
		}
		return Prompt{Text: text, Actions: []Action{
			{ID: "attack", Label: "Attack"},
			{ID: "heal", Label: "Heal"},
			{ID: "run", Label: "Abandon Scavenge"},
		}}
	case expedition.StateChoice:
		return Prompt{Text: text + "\nWhat next?", Actions: []Action{
			{ID: "scavenge_loot", Label: "Scavenge for Loot"},
			{ID: "go_further", Label: "Go Further"},
			{ID: "run", Label: "Back with the Loot"},
		}}
	default:
		// Terminal: loot already committed (or lost), back to base.
		s.exp = nil
		s.menu = menuExpedition
		return Prompt{Text: text, Actions: []Action{{ID: "back_to_bunker", Label: "Back to Bunker"}}}
	}
}

// renderCurrent re-renders the prompt for the session's menu state.
func (m *Manager) renderCurrent(s *playerSession) Prompt {
	switch s.menu {
	case menuBunker:
		p, _ := m.showBunker(s, "")
		return p
	case menuCraft:
		p, _ := m.showCraft(s, "")
		return p
	case menuStore:
		p, _ := m.showStore(s, "")
		return p
	case menuInventory:
		p, _ := m.showInventory(s, "")
		return p
	case menuHealing:
		p, _ := m.showHealing(s, "")
		return p
	case menuExpedition:
		return m.expPrompt(s, nil)
	default:
		return m.mainMenu(s.player)
	}
}

// renderError maps the error taxonomy onto a reprompt; state is unchanged
// for every recoverable kind.
func (m *Manager) renderError(s *playerSession, err error) Prompt {
	var text string
	switch {
	case game.IsInsufficient(err):
		text = fmt.Sprintf("Not enough! %v", err)
	case errors.Is(err, game.ErrOnCooldown):
		text = fmt.Sprintf("%s, you're dead! %v. Or use a Revive Stim from the store.", s.player.Name, err)
	case errors.Is(err, game.ErrValidation):
		text = "That action isn't available right now."
	default:
		var ext *game.ExternalServiceError
		if errors.As(err, &ext) {
			text = fmt.Sprintf("External service error: %v", ext)
		} else {
			log.Printf("session %s: internal error: %v", s.player.ID, err)
			return m.terminate(s, "Something went wrong. Session ended; reconnect to continue.")
		}
	}
	cur := m.renderCurrent(s)
	cur.Text = text + "\n\n" + cur.Text
	return cur
}
