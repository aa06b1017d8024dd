package dice

import "go.uber.org/zap"

// Roller wraps a Source and logs every draw at debug level, so a combat
// transcript can be audited against the raw dice.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that draws from src and logs to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	if src == nil || logger == nil {
		panic("dice: NewLoggedRoller requires non-nil src and logger")
	}
	return &Roller{src: src, logger: logger}
}

// Intn satisfies Source, logging each draw.
//
// Precondition: n > 0.
func (r *Roller) Intn(n int) int {
	v := r.src.Intn(n)
	r.logger.Debug("dice draw",
		zap.Int("bound", n),
		zap.Int("value", v),
	)
	return v
}

// Die rolls one die with the given number of sides, logging the result.
//
// Precondition: sides >= 2.
// Postcondition: result is in [1, sides].
func (r *Roller) Die(sides int) int {
	v := Die(r.src, sides)
	r.logger.Debug("dice roll",
		zap.Int("sides", sides),
		zap.Int("result", v),
	)
	return v
}
