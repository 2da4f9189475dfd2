package domain

// Evaluation is the judge's verdict on a generated answer. All three
// scores are in [1,5]. A null evaluation (nil scores) means grading was
// not available - it must never be read as a zero score.
type Evaluation struct {
	Helpfulness  *int   `json:"helpfulness"`
	Completeness *int   `json:"completeness"`
	Relevance    *int   `json:"relevance"`
	Reasoning    string `json:"reasoning"`
}

// IsNull reports whether all scores are absent.
func (e *Evaluation) IsNull() bool {
	return e.Helpfulness == nil && e.Completeness == nil && e.Relevance == nil
}

// NullEvaluation builds the degraded "grading not available" value.
func NullEvaluation(reasoning string) *Evaluation {
	return &Evaluation{Reasoning: reasoning}
}

// ValidScore reports whether a score is inside the grading scale.
func ValidScore(s int) bool {
	return s >= 1 && s <= 5
}

// EvaluationRubric configures how the judge is instructed to score.
// The scoring of "the context does not contain this" answers is a
// judgment call, so the guidance is data rather than hard-coded prompt
// text.
type EvaluationRubric struct {
	// AbsenceGuidance tells the judge how to score an answer that
	// correctly reports the context holds no answer.
	AbsenceGuidance string `json:"absence_guidance"`
}

// DefaultRubric scores correctly-reported absence as fully helpful and
// relevant but caps completeness at what the context allowed.
func DefaultRubric() EvaluationRubric {
	return EvaluationRubric{
		AbsenceGuidance: "If the answer correctly states that the context does not contain " +
			"the requested information, score helpfulness and relevance on that " +
			"statement's accuracy, and completeness relative to what the context " +
			"could support.",
	}
}
