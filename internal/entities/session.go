package entities

// DialogueStep is the position of a chat inside the registration wizard.
type DialogueStep string

const (
	StepNone                 DialogueStep = ""
	StepAwaitingName         DialogueStep = "awaiting_name"
	StepAwaitingMobile       DialogueStep = "awaiting_mobile"
	StepAwaitingBatch        DialogueStep = "awaiting_batch"
	StepAwaitingConfirmation DialogueStep = "awaiting_confirmation"
)

// RegistrationData accumulates dialogue answers; a field is set only once its step completed.
type RegistrationData struct {
	Name   string `json:"name,omitempty"`
	Mobile string `json:"mobile,omitempty"`
	Batch  int    `json:"batch,omitempty"`
}

// Session is the ephemeral per-identity chat state.
type Session struct {
	UserID           int64            `json:"userId"`
	Step             DialogueStep     `json:"step,omitempty"`
	Data             RegistrationData `json:"data"`
	AwaitingFeedback bool             `json:"awaitingFeedback,omitempty"`
}

// InDialogue reports whether a registration wizard is active.
func (s *Session) InDialogue() bool {
	return s != nil && s.Step != StepNone
}

// Empty reports whether the session carries nothing worth keeping.
func (s *Session) Empty() bool {
	return s == nil || (s.Step == StepNone && !s.AwaitingFeedback)
}
