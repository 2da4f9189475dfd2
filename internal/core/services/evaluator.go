package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/veridoc-labs/veridoc-core/internal/core/domain"
)

// GenerateFunc produces one completion. The evaluator takes a function
// rather than the full LLM port so parsing and repair are testable
// without a live model.
type GenerateFunc func(ctx context.Context, prompt string) (string, error)

// Evaluator grades generated answers with an independent judge call.
// Grading failure never fails the ask: every path degrades to a null
// evaluation with the failure noted in Reasoning.
type Evaluator struct {
	generate GenerateFunc
	rubric   domain.EvaluationRubric
	limit    int
}

// NewEvaluator creates an evaluator. limit caps the retrieved context
// passed to the judge.
func NewEvaluator(generate GenerateFunc, rubric domain.EvaluationRubric, limit int) *Evaluator {
	return &Evaluator{
		generate: generate,
		rubric:   rubric,
		limit:    limit,
	}
}

// Evaluate grades an answer against the question and retrieved context.
func (e *Evaluator) Evaluate(ctx context.Context, question, answer, retrievedContext string) *domain.Evaluation {
	prompt := e.buildJudgePrompt(question, answer, retrievedContext)

	raw, err := e.generate(ctx, prompt)
	if err != nil {
		return domain.NullEvaluation(fmt.Sprintf("evaluation unavailable: %v", err))
	}

	eval, perr := parseEvaluation(raw)
	if perr == nil {
		return eval
	}

	// One repair pass: show the judge its own malformed output
	repaired, err := e.generate(ctx, repairPrompt(raw))
	if err != nil {
		return domain.NullEvaluation(fmt.Sprintf("evaluation unavailable: %v", err))
	}
	eval, perr = parseEvaluation(repaired)
	if perr != nil {
		return domain.NullEvaluation(perr.Error())
	}
	return eval
}

func (e *Evaluator) buildJudgePrompt(question, answer, retrievedContext string) string {
	var sb strings.Builder

	sb.WriteString("You are grading an answer produced from a document excerpt.\n")
	sb.WriteString("Return ONLY valid JSON. Keys: helpfulness (1-5), completeness (1-5), relevance (1-5), reasoning (string).\n")
	if e.rubric.AbsenceGuidance != "" {
		sb.WriteString(e.rubric.AbsenceGuidance)
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "\nQuestion:\n%s\n", question)
	fmt.Fprintf(&sb, "\nAnswer:\n%s\n", answer)
	fmt.Fprintf(&sb, "\nContext:\n%s\n", truncate(retrievedContext, e.limit))

	return sb.String()
}

func repairPrompt(malformed string) string {
	return fmt.Sprintf(`The following was supposed to be a JSON object with keys helpfulness, completeness, relevance (integers 1-5) and reasoning (string), but it does not parse.

Rewrite it as ONLY that valid JSON object, nothing else:

%s
`, malformed)
}

// rawEvaluation holds the judge's output before score validation.
type rawEvaluation struct {
	Helpfulness  json.Number `json:"helpfulness"`
	Completeness json.Number `json:"completeness"`
	Relevance    json.Number `json:"relevance"`
	Reasoning    string      `json:"reasoning"`
}

// parseEvaluation extracts an evaluation from model output. Output
// wrapped in prose or code fences is salvaged by slicing the outermost
// brace pair before unmarshalling. All failures wrap
// domain.ErrEvaluationUnparseable.
func parseEvaluation(raw string) (*domain.Evaluation, error) {
	eval, err := decodeEvaluation(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEvaluationUnparseable, err)
	}
	return eval, nil
}

func decodeEvaluation(raw string) (*domain.Evaluation, error) {
	payload := salvageJSON(raw)
	if payload == "" {
		return nil, fmt.Errorf("no JSON object in output")
	}

	var parsed rawEvaluation
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return nil, fmt.Errorf("decode evaluation: %w", err)
	}

	eval := &domain.Evaluation{Reasoning: parsed.Reasoning}
	var err error
	if eval.Helpfulness, err = parseScore("helpfulness", parsed.Helpfulness); err != nil {
		return nil, err
	}
	if eval.Completeness, err = parseScore("completeness", parsed.Completeness); err != nil {
		return nil, err
	}
	if eval.Relevance, err = parseScore("relevance", parsed.Relevance); err != nil {
		return nil, err
	}
	return eval, nil
}

func parseScore(key string, n json.Number) (*int, error) {
	if n.String() == "" {
		return nil, fmt.Errorf("missing %s score", key)
	}
	v, err := n.Int64()
	if err != nil {
		return nil, fmt.Errorf("%s score %q is not an integer", key, n.String())
	}
	score := int(v)
	if !domain.ValidScore(score) {
		return nil, fmt.Errorf("%s score %d outside 1-5", key, score)
	}
	return &score, nil
}

// salvageJSON returns the outermost {...} slice of raw, or "" when no
// brace pair exists.
func salvageJSON(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return raw[start : end+1]
}
