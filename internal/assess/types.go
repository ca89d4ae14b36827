package assess

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
)

// CorrectVerdict is the only resultado value the service uses for a
// correct answer. Anything else counts as incorrect.
const CorrectVerdict = "correcta"

// QuestionID is the opaque identifier of a question. It holds the raw JSON
// token the server sent (a number or a string) so that an answer submission
// echoes it back exactly as received.
type QuestionID string

// IDFromInt builds a numeric QuestionID.
func IDFromInt(n int) QuestionID {
	return QuestionID(strconv.Itoa(n))
}

// IDFromString builds a string QuestionID.
func IDFromString(s string) QuestionID {
	b, _ := json.Marshal(s)
	return QuestionID(b)
}

// String returns the identifier without JSON quoting.
func (id QuestionID) String() string {
	var s string
	if err := json.Unmarshal([]byte(id), &s); err == nil {
		return s
	}
	return string(id)
}

// IsZero reports whether the identifier is unset.
func (id QuestionID) IsZero() bool {
	return id == ""
}

func (id QuestionID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	return []byte(id), nil
}

func (id *QuestionID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("question id must be a number or a string, got null")
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("question id: %w", err)
		}
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("question id must be a number or a string: %w", err)
		}
	}
	*id = QuestionID(slices.Clone(data))
	return nil
}

// Question is a single prompt served by the assessment service.
type Question struct {
	ID      QuestionID `json:"id"`
	Text    string     `json:"texto"`
	Skill   string     `json:"habilidad"`
	Options []string   `json:"opciones"`
}

// HasOption reports whether opt is one of the question's answer options.
func (q Question) HasOption(opt string) bool {
	return slices.Contains(q.Options, opt)
}

// SkillPrediction is the server's estimate of the probability that the user
// answers a question on Skill correctly.
type SkillPrediction struct {
	Skill              string  `json:"habilidad"`
	MasteryProbability float64 `json:"prob_acierto"`
}

// Outcome is the server's judgement of an answer.
type Outcome string

const (
	OutcomeCorrect   Outcome = "correct"
	OutcomeIncorrect Outcome = "incorrect"
)

// AnswerResult is the judgement of a verified answer. CorrectAnswer is
// always populated, even when the answer was correct.
type AnswerResult struct {
	Outcome       Outcome
	CorrectAnswer string
}

// IsCorrect reports whether the answer was judged correct.
func (r AnswerResult) IsCorrect() bool {
	return r.Outcome == OutcomeCorrect
}

// QuestionResponse is the body of GET /api/pregunta.
type QuestionResponse struct {
	Question    *Question         `json:"pregunta,omitempty"`
	Predictions []SkillPrediction `json:"predicciones"`
	Completed   bool              `json:"completado,omitempty"`
}

// VerifyRequest is the body of POST /api/verificar.
type VerifyRequest struct {
	ID     QuestionID `json:"id"`
	Answer string     `json:"respuesta"`
}

// VerifyResponse is the body returned by POST /api/verificar.
type VerifyResponse struct {
	Verdict       string            `json:"resultado"`
	CorrectAnswer string            `json:"respuesta_correcta"`
	Predictions   []SkillPrediction `json:"predicciones_actualizadas"`
}

// Result maps the raw verdict to an AnswerResult.
func (v VerifyResponse) Result() AnswerResult {
	outcome := OutcomeIncorrect
	if v.Verdict == CorrectVerdict {
		outcome = OutcomeCorrect
	}
	return AnswerResult{
		Outcome:       outcome,
		CorrectAnswer: v.CorrectAnswer,
	}
}
