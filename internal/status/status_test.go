package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMachineLifecycle(t *testing.T) {
	var seen []State
	m := New(func(s Status) { seen = append(seen, s.State) })
	assert.Equal(t, Status{State: Idle}, m.Current())

	require.NoError(t, m.Begin())
	assert.ErrorIs(t, m.Begin(), ErrBusy)

	require.NoError(t, m.Succeed("report.docx"))
	assert.Equal(t, Status{State: Success, Message: `Successfully converted "report.docx". Your download is ready!`}, m.Current())
	assert.ErrorIs(t, m.Succeed("report.docx"), ErrNotConverting)

	// Delivery can still fail after success.
	m.Fail(DownloadErrorMessage)
	assert.Equal(t, Status{State: Error, Message: DownloadErrorMessage}, m.Current())

	require.NoError(t, m.Begin())
	m.Reset()
	assert.Equal(t, Status{State: Idle}, m.Current())

	assert.Equal(t, []State{Converting, Success, Error, Converting, Idle}, seen)
}

func TestMachineFailDefaultMessage(t *testing.T) {
	m := New(nil)
	require.NoError(t, m.Begin())
	m.Fail("")
	assert.Equal(t, Status{State: Error, Message: DefaultErrorMessage}, m.Current())
}

func TestMachineSucceedFromIdle(t *testing.T) {
	m := New(nil)
	assert.ErrorIs(t, m.Succeed("x"), ErrNotConverting)
	assert.Equal(t, Idle, m.Current().State)
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{Idle, "idle"},
		{Converting, "converting"},
		{Success, "success"},
		{Error, "error"},
		{State(9), "State(9)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.state.String())
	}
}
