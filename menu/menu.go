package menu

import (
	"errors"
	"strings"

	"github.com/alagaddonjuan/q4icoms/model"
)

// ErrUnknownServiceCode means no program is registered for the dialed code.
// The caller must still close the session with a terminal message.
var ErrUnknownServiceCode = errors.New("no menu program registered for service code")

const (
	directiveContinue = "CON"
	directiveEnd      = "END"
	inputSeparator    = "*"
)

// State names one screen of a menu program.
type State string

// StateEntry is the screen shown on the first turn of a session, before the
// user has pressed anything.
const StateEntry State = "entry"

// Screen is one node of a program's decision tree. Prompt renders the display
// text from the caller's phone number and the owning client record and must
// be pure. Next maps a single keystroke to the following state; a screen with
// End set closes the session and its Next is ignored.
type Screen struct {
	Prompt func(phone string, client model.Client) string
	Next   map[string]State
	End    bool
}

// Program is an explicit state-transition table. The accumulated input path
// supplied by the provider on every turn ("", "1", "1*2", ...) is replayed
// through the table from the entry state; any keystroke without a transition
// lands on the terminal invalid-choice screen.
type Program struct {
	Name    string
	Screens map[State]Screen
	Invalid string
}

// Response is one reply to the provider. Render produces the literal wire
// form: CON keeps the session open, END closes it.
type Response struct {
	Text string
	End  bool
}

func (r Response) Render() string {
	if r.End {
		return directiveEnd + " " + r.Text
	}
	return directiveContinue + " " + r.Text
}

// Respond maps the accumulated input path to a response. It is a pure
// function of its arguments: no I/O, no stored state, deterministic.
func (p Program) Respond(text string, phone string, client model.Client) Response {
	state := StateEntry
	if text != "" {
		for _, key := range strings.Split(text, inputSeparator) {
			screen, ok := p.Screens[state]
			if !ok || screen.End {
				return p.invalidChoice()
			}
			next, ok := screen.Next[key]
			if !ok {
				return p.invalidChoice()
			}
			state = next
		}
	}
	screen, ok := p.Screens[state]
	if !ok {
		return p.invalidChoice()
	}
	return Response{Text: screen.Prompt(phone, client), End: screen.End}
}

func (p Program) invalidChoice() Response {
	return Response{Text: p.Invalid, End: true}
}

// Registry maps service codes to menu programs. It is built once at startup
// and passed by reference into the HTTP layer; at most one program owns a
// given service code.
type Registry struct {
	programs map[string]Program
}

func NewRegistry() *Registry {
	return &Registry{programs: map[string]Program{}}
}

func (r *Registry) Register(serviceCode string, program Program) {
	r.programs[serviceCode] = program
}

// Route resolves the service code and runs its program over the accumulated
// input. ErrUnknownServiceCode when nothing is registered for the code.
func (r *Registry) Route(serviceCode string, text string, phone string, client model.Client) (Response, error) {
	program, ok := r.programs[serviceCode]
	if !ok {
		return Response{}, ErrUnknownServiceCode
	}
	return program.Respond(text, phone, client), nil
}
