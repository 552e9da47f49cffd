// Package session maps inbound user actions onto game and expedition
// transitions and renders the next prompt. One playerSession exists per
// connected user; only the originating user's events are accepted.
package session

import (
	"sync"
	"time"

	"github.com/wscgames/scavbot/internal/expedition"
	"github.com/wscgames/scavbot/internal/game"
)

// Action is one labeled button offered to the user.
type Action struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Prompt is a rendered menu: text plus the currently valid actions.
type Prompt struct {
	Text    string   `json:"text"`
	Actions []Action `json:"actions"`
}

// Transport delivers prompts to one connected user.
type Transport interface {
	Render(Prompt) error
	Close(reason string)
}

// menuState selects which dispatch table row applies to the next action.
type menuState int

const (
	menuMain menuState = iota
	menuBunker
	menuCraft
	menuStore
	menuInventory
	menuHealing
	menuExpedition
)

// playerSession is the per-user interactive state. Its mutex is the handler
// boundary from the concurrency model: every action and the regen sweep take
// it before touching the player.
type playerSession struct {
	mu         sync.Mutex
	player     *game.Player
	menu       menuState
	exp        *expedition.Engine
	transport  Transport
	lastActive time.Time
}
