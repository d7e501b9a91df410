// control/state.go
// Author: momentics <momentics@gmail.com>
//
// Relay-wide interpretation mode and completion parameters with change listeners.

package control

import (
	"fmt"

	"github.com/momentics/ncrelay/api"
)

// Mode selects how control-channel lines are interpreted.
type Mode int

const (
	ModeControl Mode = iota
	ModeCompletion
	ModeNotice
)

func (m Mode) String() string {
	switch m {
	case ModeControl:
		return "ctrl"
	case ModeCompletion:
		return "api"
	case ModeNotice:
		return "notice"
	default:
		return "unknown"
	}
}

// ParseMode maps the console spelling of a mode to its value.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "ctrl":
		return ModeControl, nil
	case "api":
		return ModeCompletion, nil
	case "notice":
		return ModeNotice, nil
	}
	return 0, fmt.Errorf("mode %q: %w", s, api.ErrInvalidArgument)
}

// State holds the current Mode and Params. Listeners run synchronously after
// every change, on the goroutine that made it.
type State struct {
	mode      Mode
	params    api.Params
	listeners []func(Mode, api.Params)
}

// NewState starts in control mode with the given parameters.
func NewState(params api.Params) *State {
	return &State{mode: ModeControl, params: params}
}

// Mode returns the current mode.
func (s *State) Mode() Mode { return s.mode }

// SetMode switches the mode.
func (s *State) SetMode(m Mode) {
	s.mode = m
	s.dispatch()
}

// Params returns a copy of the current parameters.
func (s *State) Params() api.Params { return s.params }

// SetParams replaces the parameters.
func (s *State) SetParams(p api.Params) {
	s.params = p
	s.dispatch()
}

// OnChange registers a listener called after every mode or parameter update.
func (s *State) OnChange(fn func(Mode, api.Params)) {
	s.listeners = append(s.listeners, fn)
}

func (s *State) dispatch() {
	for _, fn := range s.listeners {
		fn(s.mode, s.params)
	}
}
