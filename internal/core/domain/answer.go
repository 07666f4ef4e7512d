package domain

// TurnState names a state of the per-turn answer state machine.
// The happy path is Start → Decide → Retrieve → Compose → Generate → Done.
// Generation failures transition to Failed; retrieval failures do not.
type TurnState string

// Turn states.
const (
	// TurnStart is the initial state: user message and history received.
	TurnStart TurnState = "start"

	// TurnDecide determines whether retrieval is needed. For this domain
	// retrieval is always attempted for a substantive question.
	TurnDecide TurnState = "decide"

	// TurnRetrieve is the retrieval call (network-bound suspension point).
	TurnRetrieve TurnState = "retrieve"

	// TurnCompose builds the model prompt from policy, context and history.
	TurnCompose TurnState = "compose"

	// TurnGenerate is the streaming model call.
	TurnGenerate TurnState = "generate"

	// TurnDone is the terminal success state.
	TurnDone TurnState = "done"

	// TurnFailed is the terminal failure state (generation errors only).
	TurnFailed TurnState = "failed"
)

// Terminal returns true for the two terminal states.
func (s TurnState) Terminal() bool {
	return s == TurnDone || s == TurnFailed
}

// Answer is the finalised output of one turn.
type Answer struct {
	// Text is the full generated answer.
	Text string

	// Citations are the deduplicated year references found in Text,
	// in order of first appearance, e.g. ["(1994)", "(2008)"].
	Citations []string

	// Degraded is true when the answer was generated without retrieved
	// context because retrieval failed or found nothing.
	Degraded bool
}
