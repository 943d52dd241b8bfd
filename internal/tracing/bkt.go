package tracing

// Params holds the two fixed probabilities of the knowledge tracing model.
type Params struct {
	// Guess is P(correct | not mastered): the chance of answering correctly
	// without knowing the concept.
	Guess float64

	// Slip is P(incorrect | mastered): the chance of answering incorrectly
	// despite knowing the concept.
	Slip float64
}

// DefaultParams returns the tuned guess/slip pair used across the engine.
func DefaultParams() Params {
	return Params{Guess: 0.20, Slip: 0.10}
}

// InitialProbability is the prior mastery probability for a node the
// student has never practiced.
const InitialProbability = 0.10

// UpdateProbability applies a Bayesian update to the mastery probability
// given one observed answer. The posterior moves toward 1 on a correct
// answer and toward 0 on an incorrect one; the magnitude of the move is
// naturally damped by the prior, so a single lucky guess at low probability
// produces only a small shift.
//
// The result is always clamped to [0, 1]. A correct answer never decreases
// the probability and an incorrect answer never increases it.
func UpdateProbability(prior float64, wasCorrect bool, p Params) float64 {
	prior = clamp01(prior)

	var posterior float64
	if wasCorrect {
		num := prior * (1 - p.Slip)
		den := num + (1-prior)*p.Guess
		if den == 0 {
			return prior
		}
		posterior = num / den
	} else {
		num := prior * p.Slip
		den := num + (1-prior)*(1-p.Guess)
		if den == 0 {
			return prior
		}
		posterior = num / den
	}

	return clamp01(posterior)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
