package conversation

import "strings"

// Command is a text input recognized regardless of the current step.
type Command string

const (
	CommandNone   Command = ""
	CommandStart  Command = "start"
	CommandHelp   Command = "help"
	CommandCancel Command = "cancel"
)

// Command vocabularies. Matching is case-insensitive and exact after
// trimming surrounding whitespace.
var (
	startVocabulary  = []string{"/new", "new post"}
	helpVocabulary   = []string{"/help", "help"}
	cancelVocabulary = []string{"/cancel", "cancel"}

	affirmativeVocabulary = []string{"yes", "y", "ok", "publish"}
	negativeVocabulary    = []string{"no", "n", "discard"}
)

func normalizeInput(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

func matchVocabulary(text string, vocabulary []string) bool {
	normalized := normalizeInput(text)
	for _, word := range vocabulary {
		if normalized == word {
			return true
		}
	}
	return false
}

// ParseCommand returns the global command contained in text, or CommandNone.
func ParseCommand(text string) Command {
	switch {
	case matchVocabulary(text, startVocabulary):
		return CommandStart
	case matchVocabulary(text, helpVocabulary):
		return CommandHelp
	case matchVocabulary(text, cancelVocabulary):
		return CommandCancel
	}
	return CommandNone
}

// IsAffirmative reports whether text confirms publication.
func IsAffirmative(text string) bool {
	return matchVocabulary(text, affirmativeVocabulary)
}

// IsNegative reports whether text rejects publication.
func IsNegative(text string) bool {
	return matchVocabulary(text, negativeVocabulary)
}
