package session

import "fmt"

// Phase is a named state in the project-generation workflow. Exactly one is
// active per session at any time.
type Phase string

const (
	PhaseStackSelection  Phase = "stack-selection"
	PhaseThemeSelection  Phase = "theme-selection"
	PhaseDescription     Phase = "description"
	PhaseRequirements    Phase = "requirements"
	PhaseDesign          Phase = "design"
	PhaseTasks           Phase = "tasks"
	PhaseImageGeneration Phase = "image-generation"
	PhaseExecution       Phase = "execution"
	PhaseComplete        Phase = "complete"
)

// phaseChain is the full workflow in order. Each phase transitions only to
// its successor; there is no branching, skipping, or regression.
var phaseChain = []Phase{
	PhaseStackSelection,
	PhaseThemeSelection,
	PhaseDescription,
	PhaseRequirements,
	PhaseDesign,
	PhaseTasks,
	PhaseImageGeneration,
	PhaseExecution,
	PhaseComplete,
}

// PhaseIndex returns the position of a phase in the workflow, or -1 for an
// unknown phase.
func PhaseIndex(p Phase) int {
	for i, phase := range phaseChain {
		if phase == p {
			return i
		}
	}
	return -1
}

// ValidateTransition checks that to is the immediate successor of from.
func ValidateTransition(from, to Phase) error {
	fromIdx := PhaseIndex(from)
	toIdx := PhaseIndex(to)
	if fromIdx < 0 || toIdx < 0 || toIdx != fromIdx+1 {
		return fmt.Errorf("cannot transition from %s to %s: %w", from, to, ErrInvalidTransition)
	}
	return nil
}

// Progress reports workflow completion for a phase as a 0-100 percentage.
func Progress(p Phase) int {
	idx := PhaseIndex(p)
	if idx < 0 {
		return 0
	}
	return idx * 100 / (len(phaseChain) - 1)
}
