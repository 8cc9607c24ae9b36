package autoapply

import (
	"errors"
	"fmt"
)

type State string

const (
	StateInit            State = "INIT"
	StateNavigated       State = "NAVIGATED"
	StateAnalyzed        State = "ANALYZED"
	StateCaptchaWait     State = "CAPTCHA_WAIT"
	StateApplyClicked    State = "APPLIED_CLICKED"
	StateReAnalyzed      State = "RE_ANALYZED"
	StateFormFilled      State = "FORM_FILLED"
	StateScreenshotTaken State = "SCREENSHOT_TAKEN"
	StateSubmitLocated   State = "SUBMIT_LOCATED"
	StateTerminal        State = "TERMINAL"
)

var ErrIllegalTransition = errors.New("illegal state transition")

// transitions lists the forward edges. Every non-terminal state may also
// jump to TERMINAL on error.
var transitions = map[State][]State{
	StateInit:            {StateNavigated},
	StateNavigated:       {StateAnalyzed},
	StateAnalyzed:        {StateCaptchaWait, StateApplyClicked, StateFormFilled},
	StateCaptchaWait:     {StateApplyClicked, StateFormFilled},
	StateApplyClicked:    {StateReAnalyzed},
	StateReAnalyzed:      {StateFormFilled},
	StateFormFilled:      {StateScreenshotTaken},
	StateScreenshotTaken: {StateSubmitLocated},
	StateSubmitLocated:   {StateTerminal},
}

func canTransition(from, to State) bool {
	if from == StateTerminal {
		return false
	}
	if to == StateTerminal {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type machine struct {
	current State
	history []State
}

func newMachine() *machine {
	return &machine{current: StateInit, history: []State{StateInit}}
}

// advance panics on an illegal edge; the run boundary turns that into an error result.
func (m *machine) advance(to State) {
	if !canTransition(m.current, to) {
		panic(fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, m.current, to))
	}
	m.current = to
	m.history = append(m.history, to)
}

// terminate moves to TERMINAL from wherever the run is; no-op if already there.
func (m *machine) terminate() {
	if m.current == StateTerminal {
		return
	}
	m.current = StateTerminal
	m.history = append(m.history, StateTerminal)
}
