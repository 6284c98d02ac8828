package outcome

// Evaluation is the outcome of comparing a pick against a game result.
type Evaluation string

const (
	Pending Evaluation = "pending"
	Hit     Evaluation = "hit"
	Miss    Evaluation = "miss"
)

// Evaluate is total: a missing result or an empty pick is Pending.
func Evaluate(pick Pick, result *Symbol) Evaluation {
	if result == nil || pick.IsEmpty() {
		return Pending
	}
	if pick.Contains(*result) {
		return Hit
	}
	return Miss
}

// Correct maps an evaluation to the nullable is_correct cache value.
func (e Evaluation) Correct() *bool {
	switch e {
	case Hit:
		v := true
		return &v
	case Miss:
		v := false
		return &v
	default:
		return nil
	}
}
