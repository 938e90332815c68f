package signup

// AttemptState is the lifecycle position of a single signup attempt.
type AttemptState string

const (
	StateStarted           AttemptState = "started"
	StateDraftValidated    AttemptState = "draft_validated"
	StateTokenIssued       AttemptState = "token_issued"
	StateRedemptionPending AttemptState = "redemption_pending"
	StateActivated         AttemptState = "activated"
	StateRejected          AttemptState = "rejected"
)

// attemptTransitions is the allowed transition graph. Rejection is reachable
// from every non terminal state; everything else moves strictly forward.
var attemptTransitions = map[AttemptState]map[AttemptState]struct{}{
	StateStarted: {
		StateDraftValidated:    {},
		StateRedemptionPending: {},
		StateRejected:          {},
	},
	StateDraftValidated: {
		StateTokenIssued: {},
		StateRejected:    {},
	},
	StateTokenIssued: {
		StateRejected: {},
	},
	StateRedemptionPending: {
		StateActivated: {},
		StateRejected:  {},
	},
}

// attempt tracks one signup attempt through its lifecycle. Handlers advance
// it at each gate; an out of order advance is a bug in the handler, not a
// client failure, and surfaces as ErrInvalidTransition.
type attempt struct {
	state AttemptState
}

func newAttempt() *attempt {
	return &attempt{state: StateStarted}
}

func (a *attempt) State() AttemptState {
	return a.state
}

func (a *attempt) advance(target AttemptState) error {
	if a.isTerminal() {
		return sentinelWithMetadata(ErrInvalidTransition, map[string]any{
			"from":   a.state,
			"to":     target,
			"reason": "state is terminal",
		})
	}

	allowed, ok := attemptTransitions[a.state]
	if !ok {
		return sentinelWithMetadata(ErrInvalidTransition, map[string]any{
			"from": a.state,
			"to":   target,
		})
	}

	if _, ok := allowed[target]; !ok {
		return sentinelWithMetadata(ErrInvalidTransition, map[string]any{
			"from": a.state,
			"to":   target,
		})
	}

	a.state = target
	return nil
}

// reject moves the attempt to its failed terminal state and passes the cause
// through, so gates can fail with a single return expression.
func (a *attempt) reject(cause error) error {
	if !a.isTerminal() {
		a.state = StateRejected
	}
	return cause
}

func (a *attempt) isTerminal() bool {
	return a.state == StateActivated || a.state == StateRejected
}
