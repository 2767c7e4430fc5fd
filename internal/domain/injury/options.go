package injury

// ClassifierOption configures a TableClassifier.
type ClassifierOption func(*TableClassifier)

// WithMatcher swaps the name matching strategy.
func WithMatcher(m NameMatcher) ClassifierOption {
	return func(c *TableClassifier) {
		if m != nil {
			c.matcher = m
		}
	}
}

// EvaluatorOption configures an Evaluator.
type EvaluatorOption func(*Evaluator)

// WithCap sets the penalty ceiling. Values outside (0, 1] are ignored.
func WithCap(v float64) EvaluatorOption {
	return func(e *Evaluator) {
		if v > 0 && v <= 1 {
			e.cap = v
		}
	}
}
