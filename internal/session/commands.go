package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"

	"github.com/wscgames/scavbot/internal/game"
)

var knownCommands = []string{"register", "menu", "save", "backup", "reset"}

// HandleCommand processes a text command (for example "!register 0x... Name")
// and returns a reply line. Unknown commands get a nearest-match suggestion.
func (m *Manager) HandleCommand(userID, text string) (string, error) {
	text = strings.TrimSpace(strings.TrimPrefix(text, "!"))
	if text == "" {
		return "", game.ErrValidation
	}
	args := strings.Fields(text)
	cmd := strings.ToLower(args[0])
	args = args[1:]

	switch cmd {
	case "register":
		return m.register(userID, args)
	case "menu":
		m.mu.Lock()
		_, ok := m.state.Players[userID]
		m.mu.Unlock()
		if !ok {
			return "You need to register first! Use: !register <Wallet Address> <Name>", nil
		}
		return "Session ready. Connect a client to play.", nil
	case "save":
		if err := m.persist(); err != nil {
			return "", err
		}
		return "Game state saved.", nil
	case "backup":
		if userID != m.AdminID {
			return "", game.ErrUnauthorized
		}
		b, err := json.MarshalIndent(m.State(), "", "  ")
		if err != nil {
			return "", err
		}
		return string(b), nil
	case "reset":
		if err := m.Reset(userID); err != nil {
			return "", err
		}
		return "Game state has been reset to empty.", nil
	default:
		if suggestion := nearestCommand(cmd); suggestion != "" {
			return fmt.Sprintf("Unknown command %q. Did you mean !%s?", cmd, suggestion), nil
		}
		return fmt.Sprintf("Unknown command %q.", cmd), nil
	}
}

// nearestCommand suggests the closest known command within a small edit
// distance.
func nearestCommand(cmd string) string {
	best, bestDist := "", 3
	for _, k := range knownCommands {
		if d := levenshtein.ComputeDistance(cmd, k); d < bestDist {
			best, bestDist = k, d
		}
	}
	return best
}

// register creates a player after wallet validation and the one-time token
// transfer. The transfer is best effort in the failure direction only: if it
// fails, registration is aborted; if it succeeds and a later write fails,
// nothing reconciles the chain.
func (m *Manager) register(userID string, args []string) (string, error) {
	m.mu.Lock()
	if _, ok := m.state.Players[userID]; ok {
		m.mu.Unlock()
		return "You're already registered! Connect a client to play.", nil
	}
	m.mu.Unlock()

	if len(args) < 1 {
		return "Use: !register <Wallet Address> <Name>", game.ErrValidation
	}
	wallet := args[0]
	if !strings.HasPrefix(wallet, "0x") || len(wallet) != 66 {
		return "Use: !register <Wallet Address> <Name> (wallet must be a 64-char hex address)", game.ErrValidation
	}
	name := "Raider_" + lastN(userID, 4)
	if len(args) > 1 {
		name = args[1]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	tx, err := m.Chain.TransferTokens(ctx, wallet, m.Rules.RegistrationFeeTokens, "wsc")
	if err != nil {
		return "", &game.ExternalServiceError{Op: "registration transfer", Err: err}
	}

	p := game.NewPlayer(userID, name, wallet, m.Rules, m.now())
	p.RegistrationTx = tx
	m.mu.Lock()
	m.state.Players[userID] = p
	m.mu.Unlock()
	m.persist()
	log.Printf("registered player %s (%s)", name, userID)
	return fmt.Sprintf("Registered as %s for %.0f WSC! Tx: %s", name, m.Rules.RegistrationFeeTokens, tx), nil
}

func lastN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
