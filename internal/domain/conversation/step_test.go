package conversation_test

import (
	"errors"
	"testing"

	"chatpress/internal/domain/apperrors"
	"chatpress/internal/domain/conversation"
)

var allSteps = []conversation.Step{
	conversation.StepIdle,
	conversation.StepWaitingTitle,
	conversation.StepWaitingContent,
	conversation.StepWaitingImage,
	conversation.StepWaitingTags,
	conversation.StepConfirming,
}

func TestStep_Next(t *testing.T) {
	tests := []struct {
		from conversation.Step
		want conversation.Step
	}{
		{conversation.StepIdle, conversation.StepWaitingTitle},
		{conversation.StepWaitingTitle, conversation.StepWaitingContent},
		{conversation.StepWaitingContent, conversation.StepWaitingImage},
		{conversation.StepWaitingImage, conversation.StepWaitingTags},
		{conversation.StepWaitingTags, conversation.StepConfirming},
		{conversation.StepConfirming, conversation.StepIdle},
	}
	for _, tt := range tests {
		if got := tt.from.Next(); got != tt.want {
			t.Errorf("Next(%s) = %s, want %s", tt.from, got, tt.want)
		}
	}
}

func TestStep_CanTransitionTo_Matrix(t *testing.T) {
	for _, from := range allSteps {
		for _, to := range allSteps {
			want := to == from.Next() || (to == conversation.StepIdle && from != conversation.StepIdle)
			if got := from.CanTransitionTo(to); got != want {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestStep_CanTransitionTo_IdleToIdleRejected(t *testing.T) {
	if conversation.StepIdle.CanTransitionTo(conversation.StepIdle) {
		t.Error("idle -> idle must not be a valid transition")
	}
}

func TestStep_CanTransitionTo_UnknownStep(t *testing.T) {
	if conversation.Step("bogus").CanTransitionTo(conversation.StepIdle) {
		t.Error("unknown step must not transition anywhere")
	}
	if conversation.StepIdle.CanTransitionTo(conversation.Step("bogus")) {
		t.Error("no step may transition to an unknown step")
	}
}

func TestStep_TransitionTo_IllegalIsTransitionError(t *testing.T) {
	_, err := conversation.StepIdle.TransitionTo(conversation.StepConfirming)
	if err == nil {
		t.Fatal("expected an error for idle -> confirming")
	}
	var te *apperrors.TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransitionError, got %T", err)
	}
}

func TestStep_CanCancel(t *testing.T) {
	for _, step := range allSteps {
		want := step != conversation.StepIdle
		if got := step.CanCancel(); got != want {
			t.Errorf("CanCancel(%s) = %v, want %v", step, got, want)
		}
	}
}

func TestStep_RequiredFields_Cumulative(t *testing.T) {
	tests := []struct {
		step conversation.Step
		want []string
	}{
		{conversation.StepWaitingTitle, nil},
		{conversation.StepWaitingContent, []string{conversation.FieldTitle}},
		{conversation.StepWaitingImage, []string{conversation.FieldTitle, conversation.FieldContent}},
		{conversation.StepWaitingTags, []string{conversation.FieldTitle, conversation.FieldContent, conversation.FieldImage}},
		{conversation.StepConfirming, []string{conversation.FieldTitle, conversation.FieldContent, conversation.FieldImage, conversation.FieldTags}},
	}
	for _, tt := range tests {
		got := tt.step.RequiredFields()
		if len(got) != len(tt.want) {
			t.Errorf("RequiredFields(%s) = %v, want %v", tt.step, got, tt.want)
			continue
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("RequiredFields(%s) = %v, want %v", tt.step, got, tt.want)
				break
			}
		}
	}
}
