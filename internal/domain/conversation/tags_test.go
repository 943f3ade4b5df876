package conversation_test

import (
	"reflect"
	"strings"
	"testing"

	"chatpress/internal/domain/conversation"
)

func TestParseTagSelection(t *testing.T) {
	catalogue := []string{"A", "B", "C"}

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"single index", "1", []string{"A"}},
		{"multiple indices", "1,3", []string{"A", "C"}},
		{"duplicates dropped, order preserved", "1,1,2", []string{"A", "B"}},
		{"out of range dropped", "99,100", nil},
		{"zero is out of range", "0,1", []string{"A"}},
		{"non-numeric tokens dropped", "a,2,b", []string{"B"}},
		{"whitespace tolerated", " 2 , 3 ", []string{"B", "C"}},
		{"garbage only", "hello", nil},
		{"empty input", "", nil},
		{"new tag", "new: golang", []string{"golang"}},
		{"new tag prefix case-insensitive", "NEW: golang", []string{"golang"}},
		{"new tag empty remainder", "new:   ", nil},
		{"new tag too long", "new: " + strings.Repeat("x", 21), nil},
		{"new tag at max length", "new: " + strings.Repeat("x", 20), []string{strings.Repeat("x", 20)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := conversation.ParseTagSelection(tt.input, catalogue)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseTagSelection(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input string
		want  conversation.Command
	}{
		{"/new", conversation.CommandStart},
		{"NEW POST", conversation.CommandStart},
		{"  /cancel  ", conversation.CommandCancel},
		{"Cancel", conversation.CommandCancel},
		{"/help", conversation.CommandHelp},
		{"HELP", conversation.CommandHelp},
		{"new posting", conversation.CommandNone},
		{"something else", conversation.CommandNone},
		{"", conversation.CommandNone},
	}
	for _, tt := range tests {
		if got := conversation.ParseCommand(tt.input); got != tt.want {
			t.Errorf("ParseCommand(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
