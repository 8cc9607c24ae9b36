package autoapply

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to State
		want     bool
	}{
		{StateInit, StateNavigated, true},
		{StateInit, StateAnalyzed, false},
		{StateAnalyzed, StateCaptchaWait, true},
		{StateAnalyzed, StateFormFilled, true},
		{StateCaptchaWait, StateApplyClicked, true},
		{StateApplyClicked, StateFormFilled, false},
		{StateFormFilled, StateSubmitLocated, false},
		{StateScreenshotTaken, StateSubmitLocated, true},
		{StateNavigated, StateTerminal, true},
		{StateTerminal, StateTerminal, false},
		{StateTerminal, StateInit, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, canTransition(tt.from, tt.to))
		})
	}
}

func TestMachine_ScreenshotPrecedesSubmitSearch(t *testing.T) {
	m := newMachine()
	m.advance(StateNavigated)
	m.advance(StateAnalyzed)
	m.advance(StateFormFilled)

	assert.Panics(t, func() { m.advance(StateSubmitLocated) })
}

func TestMachine_AdvancePanicsWithIllegalTransition(t *testing.T) {
	m := newMachine()

	defer func() {
		rec := recover()
		require.NotNil(t, rec)
		err, ok := rec.(error)
		require.True(t, ok)
		assert.True(t, errors.Is(err, ErrIllegalTransition))
	}()
	m.advance(StateFormFilled)
}

func TestMachine_Terminate(t *testing.T) {
	m := newMachine()
	m.advance(StateNavigated)
	m.terminate()
	m.terminate()

	assert.Equal(t, StateTerminal, m.current)
	assert.Equal(t, []State{StateInit, StateNavigated, StateTerminal}, m.history)
}
