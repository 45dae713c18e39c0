package session

// Decision is the operator's answer to the duplicate-name prompt
type Decision string

const (
	DecisionConfirm Decision = "confirm"
	DecisionDecline Decision = "decline"
)

// ConfirmationFlow holds an open duplicate-name prompt and relays the operator's answer.
// It keeps no state beyond the prompt text and where to send the decision.
type ConfirmationFlow struct {
	message string
	decide  func(Decision)
}

// Present opens the prompt. decide receives exactly one decision.
func (f *ConfirmationFlow) Present(message string, decide func(Decision)) {
	f.message = message
	f.decide = decide
}

// Pending reports whether a prompt is open
func (f *ConfirmationFlow) Pending() bool {
	return f.decide != nil
}

// Message returns the open prompt's text
func (f *ConfirmationFlow) Message() string {
	return f.message
}

// Answer closes the prompt and relays d
func (f *ConfirmationFlow) Answer(d Decision) error {
	if f.decide == nil {
		return ErrNoPendingConfirmation
	}
	decide := f.decide
	f.dismiss()
	decide(d)
	return nil
}

func (f *ConfirmationFlow) dismiss() {
	f.message = ""
	f.decide = nil
}
