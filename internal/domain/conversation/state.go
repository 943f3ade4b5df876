package conversation

import "time"

// PostData is the accumulating, partially-filled blog-post record built
// across steps.
type PostData struct {
	Title     string   `json:"title,omitempty"`
	Content   string   `json:"content,omitempty"`
	ImageKey  string   `json:"image_key,omitempty"`
	ImagePath string   `json:"image_path,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// HasField reports whether the named field is populated.
func (d PostData) HasField(name string) bool {
	switch name {
	case FieldTitle:
		return d.Title != ""
	case FieldContent:
		return d.Content != ""
	case FieldImage:
		return d.ImageKey != ""
	case FieldTags:
		return len(d.Tags) > 0
	}
	return false
}

// State is the unit of persisted progress for one user.
type State struct {
	Step      Step      `json:"step"`
	Data      PostData  `json:"data"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewState returns a fresh idle state.
func NewState(now time.Time) *State {
	return &State{
		Step:      StepIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy of the state so handlers can mutate freely
// without touching the loaded instance.
func (s *State) Clone() *State {
	out := *s
	if s.Data.Tags != nil {
		out.Data.Tags = append([]string(nil), s.Data.Tags...)
	}
	return &out
}

// MissingFields returns the required fields of s.Step that are not populated
// in s.Data. An empty result means the step invariant holds.
func (s *State) MissingFields() []string {
	var missing []string
	for _, f := range s.Step.RequiredFields() {
		if !s.Data.HasField(f) {
			missing = append(missing, f)
		}
	}
	return missing
}

// Advance moves the state to target after validating the transition, and
// refreshes UpdatedAt. CreatedAt is immutable once set.
func (s *State) Advance(target Step, now time.Time) error {
	next, err := s.Step.TransitionTo(target)
	if err != nil {
		return err
	}
	s.Step = next
	s.UpdatedAt = now
	return nil
}

// ResetData moves the state back to idle clearing the accumulated post data.
// The state is reused, not deleted; CreatedAt is preserved.
func (s *State) ResetData(now time.Time) error {
	if err := s.Advance(StepIdle, now); err != nil {
		return err
	}
	s.Data = PostData{}
	return nil
}
