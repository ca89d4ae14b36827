package explain

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a friendly tutor reviewing a multiple choice quiz with a learner. Explain briefly and concretely why the correct answer is correct. If the learner chose a different option, point out the likely misunderstanding without scolding. Answer in the language the question is written in.`

func userMessage(in Input) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Skill: %s\n", in.Question.Skill)
	fmt.Fprintf(&b, "Question: %s\n", in.Question.Text)
	b.WriteString("Options:\n")
	for i, opt := range in.Question.Options {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, opt)
	}
	fmt.Fprintf(&b, "Correct answer: %s\n", in.Result.CorrectAnswer)

	switch {
	case in.Chosen == "":
	case in.Result.IsCorrect():
		fmt.Fprintf(&b, "The learner chose %q, which is correct.\n", in.Chosen)
	default:
		fmt.Fprintf(&b, "The learner chose %q, which is incorrect.\n", in.Chosen)
	}
	return b.String()
}
