package reservation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingStep struct {
	name        string
	failExecute error
	failComp    error
	log         *[]string
}

func (s *recordingStep) Name() string { return s.name }

func (s *recordingStep) Execute(context.Context) error {
	if s.failExecute != nil {
		return s.failExecute
	}
	*s.log = append(*s.log, "exec:"+s.name)
	return nil
}

func (s *recordingStep) Compensate(context.Context) error {
	if s.failComp != nil {
		return s.failComp
	}
	*s.log = append(*s.log, "comp:"+s.name)
	return nil
}

func TestRunnerAllStepsSucceed(t *testing.T) {
	var log []string
	steps := []Step{
		&recordingStep{name: "a", log: &log},
		&recordingStep{name: "b", log: &log},
	}

	err := NewRunner("res-1", steps, nil).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"exec:a", "exec:b"}, log)
}

func TestRunnerRollsBackLastFirst(t *testing.T) {
	boom := errors.New("no stock")
	var log []string
	steps := []Step{
		&recordingStep{name: "a", log: &log},
		&recordingStep{name: "b", log: &log},
		&recordingStep{name: "c", failExecute: boom, log: &log},
	}

	err := NewRunner("res-2", steps, nil).Run(context.Background())

	require.ErrorIs(t, err, boom)
	// b undone before a, c never compensated.
	assert.Equal(t, []string{"exec:a", "exec:b", "comp:b", "comp:a"}, log)
}

func TestRunnerContinuesRollbackPastCompensationFailure(t *testing.T) {
	boom := errors.New("boom")
	var log []string
	steps := []Step{
		&recordingStep{name: "a", log: &log},
		&recordingStep{name: "b", failComp: errors.New("restore failed"), log: &log},
		&recordingStep{name: "c", failExecute: boom, log: &log},
	}

	err := NewRunner("res-3", steps, nil).Run(context.Background())

	require.ErrorIs(t, err, boom)
	// b's compensation failed but a is still restored.
	assert.Equal(t, []string{"exec:a", "exec:b", "comp:a"}, log)
}

func TestRunnerFirstStepFailureCompensatesNothing(t *testing.T) {
	boom := errors.New("boom")
	var log []string
	steps := []Step{
		&recordingStep{name: "a", failExecute: boom, log: &log},
		&recordingStep{name: "b", log: &log},
	}

	err := NewRunner("res-4", steps, nil).Run(context.Background())

	require.ErrorIs(t, err, boom)
	assert.Empty(t, log)
}
