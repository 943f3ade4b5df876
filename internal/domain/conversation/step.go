// Package conversation implements the stateful engine that turns a chat
// conversation into a validated blog-post record.
package conversation

import "chatpress/internal/domain/apperrors"

// Step represents a named point in the conversation's linear flow. It gates
// which inputs are accepted next.
type Step string

const (
	// StepIdle is the initial step and the only step every other step can
	// unconditionally return to.
	StepIdle           Step = "idle"
	StepWaitingTitle   Step = "waiting_title"
	StepWaitingContent Step = "waiting_content"
	StepWaitingImage   Step = "waiting_image"
	StepWaitingTags    Step = "waiting_tags"
	StepConfirming     Step = "confirming"
)

// Field names in PostData, as used by RequiredFields.
const (
	FieldTitle   = "title"
	FieldContent = "content"
	FieldImage   = "image"
	FieldTags    = "tags"
)

// forwardFlow maps each step to its single forward-flow successor.
var forwardFlow = map[Step]Step{
	StepIdle:           StepWaitingTitle,
	StepWaitingTitle:   StepWaitingContent,
	StepWaitingContent: StepWaitingImage,
	StepWaitingImage:   StepWaitingTags,
	StepWaitingTags:    StepConfirming,
	StepConfirming:     StepIdle,
}

// requiredFields lists the cumulative data fields that must be non-empty
// before a handler for the step may run.
var requiredFields = map[Step][]string{
	StepIdle:           {},
	StepWaitingTitle:   {},
	StepWaitingContent: {FieldTitle},
	StepWaitingImage:   {FieldTitle, FieldContent},
	StepWaitingTags:    {FieldTitle, FieldContent, FieldImage},
	StepConfirming:     {FieldTitle, FieldContent, FieldImage, FieldTags},
}

// String returns the string representation of the step.
func (s Step) String() string {
	return string(s)
}

// IsKnown reports whether s is one of the defined steps.
func (s Step) IsKnown() bool {
	_, ok := forwardFlow[s]
	return ok
}

// Next returns the single forward-flow successor of s. The successor of
// StepConfirming is StepIdle (completion).
func (s Step) Next() Step {
	return forwardFlow[s]
}

// CanCancel reports whether a cancel command is meaningful at s. Only
// StepIdle has nothing to cancel.
func (s Step) CanCancel() bool {
	return s != StepIdle
}

// RequiredFields returns the data fields that must already be populated when
// a handler reads state at step s.
func (s Step) RequiredFields() []string {
	return requiredFields[s]
}

// CanTransitionTo reports whether moving from s to target is legal: target is
// either the forward-flow successor of s, or StepIdle when s is cancellable.
// StepIdle -> StepIdle is not a transition and is rejected.
func (s Step) CanTransitionTo(target Step) bool {
	if !s.IsKnown() || !target.IsKnown() {
		return false
	}
	if target == forwardFlow[s] {
		return true
	}
	return target == StepIdle && s != StepIdle
}

// TransitionTo validates the move from s to target and returns target, or a
// TransitionError when the move is illegal. A TransitionError here means the
// dispatcher requested a transition it never validated; it is an internal
// fault, never user input.
func (s Step) TransitionTo(target Step) (Step, error) {
	if !s.CanTransitionTo(target) {
		return s, apperrors.NewTransition(s.String(), target.String())
	}
	return target, nil
}
