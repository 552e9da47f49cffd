// Command term is a single-player terminal client. It runs the whole game
// in-process against the offline chain, which makes it handy for trying
// balance changes without a bot frontend.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wscgames/scavbot/internal/chain"
	"github.com/wscgames/scavbot/internal/game"
	"github.com/wscgames/scavbot/internal/leaderboard"
	"github.com/wscgames/scavbot/internal/rules"
	"github.com/wscgames/scavbot/internal/session"
	"github.com/wscgames/scavbot/internal/store"
)

const localUserID = "local"

// localWallet is a placeholder address accepted by the offline chain.
var localWallet = "0x" + strings.Repeat("0", 64)

type promptMsg session.Prompt

type closedMsg string

// teaTransport forwards session renders into the running program.
type teaTransport struct {
	send func(tea.Msg)
}

func (t *teaTransport) Render(p session.Prompt) error {
	t.send(promptMsg(p))
	return nil
}

func (t *teaTransport) Close(reason string) {
	t.send(closedMsg(reason))
}

type model struct {
	mgr    *session.Manager
	prompt session.Prompt
	reply  string
	input  textinput.Model
	typing bool
	done   bool
}

func newModel(mgr *session.Manager) model {
	ti := textinput.New()
	ti.Placeholder = "command, e.g. save"
	ti.CharLimit = 120
	return model{mgr: mgr, input: ti}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case promptMsg:
		m.prompt = session.Prompt(msg)
		return m, nil
	case closedMsg:
		m.reply = "session closed: " + string(msg)
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if m.typing {
			switch msg.String() {
			case "enter":
				m.typing = false
				m.input.Blur()
				text := m.input.Value()
				m.input.SetValue("")
				reply, err := m.mgr.HandleCommand(localUserID, text)
				if err != nil {
					m.reply = "error: " + err.Error()
				} else {
					m.reply = reply
				}
				return m, nil
			case "esc":
				m.typing = false
				m.input.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		switch msg.String() {
		case "q", "ctrl+c":
			m.done = true
			return m, tea.Quit
		case ":":
			m.typing = true
			m.input.Focus()
			return m, textinput.Blink
		default:
			if i := digit(msg.String()); i >= 1 && i <= len(m.prompt.Actions) {
				m.reply = ""
				p, err := m.mgr.HandleAction(localUserID, m.prompt.Actions[i-1].ID)
				if err != nil {
					m.reply = "error: " + err.Error()
					return m, nil
				}
				m.prompt = p
			}
			return m, nil
		}
	}
	return m, nil
}

func (m model) View() string {
	if m.done {
		out := "Goodbye\n"
		if m.reply != "" {
			out = m.reply + "\n" + out
		}
		return out
	}
	var b strings.Builder
	b.WriteString("-- Wasteland Scavenger --\n\n")
	b.WriteString(m.prompt.Text)
	b.WriteString("\n\n")
	for i, a := range m.prompt.Actions {
		fmt.Fprintf(&b, "[%d] %s  ", i+1, a.Label)
	}
	b.WriteString("\n")
	if m.reply != "" {
		b.WriteString(m.reply + "\n")
	}
	if m.typing {
		b.WriteString(m.input.View() + "\n")
	} else {
		b.WriteString("[:] command  [q] quit\n")
	}
	return b.String()
}

func digit(s string) int {
	if len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
		return int(s[0] - '0')
	}
	return 0
}

func main() {
	dataFile := os.Getenv("DATA_FILE")
	if dataFile == "" {
		dataFile = "data/term.json"
	}
	snap := store.NewFile(dataFile)
	st, err := snap.LoadSnapshot()
	if err != nil {
		fmt.Printf("load %s: %v\n", dataFile, err)
		os.Exit(1)
	}

	mgr := session.NewManager(rules.FromEnv(), st, snap, leaderboard.NewMemory(), chain.Noop{}, localUserID,
		game.NewRoller(time.Now().UnixNano()), nil)

	if reply, err := mgr.HandleCommand(localUserID, "register "+localWallet+" Scavver"); err != nil {
		fmt.Printf("register: %v\n", err)
		os.Exit(1)
	} else if !strings.Contains(reply, "already") {
		fmt.Println(reply)
	}

	t := &teaTransport{}
	m := newModel(mgr)
	p, err := mgr.Open(localUserID, t)
	if err != nil {
		fmt.Printf("open session: %v\n", err)
		os.Exit(1)
	}
	m.prompt = p

	prog := tea.NewProgram(m)
	t.send = prog.Send
	if _, err := prog.Run(); err != nil {
		fmt.Printf("Error running program: %v\n", err)
	}
}
