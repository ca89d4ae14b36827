package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/abhisek/tutoria/internal/assess"
	"github.com/abhisek/tutoria/internal/explain"
	"github.com/abhisek/tutoria/internal/mastery"
	"github.com/abhisek/tutoria/internal/tutor"
)

var plainCmd = &cobra.Command{
	Use:   "plain",
	Short: "Run a quiz session in line mode (no TUI)",
	Long: `Run a quiz session on stdin/stdout.

Answer with the option number. At any prompt, r restarts the session and
q quits. The session is recorded in the local database like a TUI session.`,
	RunE: runPlain,
}

// answerExplainer is the part of explain.Service line mode uses.
type answerExplainer interface {
	Explain(ctx context.Context, in explain.Input) (*explain.Explanation, error)
}

func runPlain(cmd *cobra.Command, args []string) error {
	st, cfg, _, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	eventRepo := st.EventRepo()
	svc, err := newService(cfg, eventRepo)
	if err != nil {
		return err
	}

	journal := tutor.NewJournal(eventRepo, uuid.NewString(), cfg.APIURL)
	journal.Warnings = cmd.ErrOrStderr()

	var explainer answerExplainer
	if e, _ := newExplainer(cmd.Context(), cfg, eventRepo); e != nil {
		explainer = e
	}

	driver := tutor.NewDriver(svc, journal)
	return plainSession(cmd.Context(), driver, journal, explainer, cmd.InOrStdin(), cmd.OutOrStdout())
}

const panelBarWidth = 20

// plainSession runs the prompt loop until the user quits or input ends.
// journal and explainer may be nil.
func plainSession(ctx context.Context, d *tutor.Driver, journal *tutor.Journal, explainer answerExplainer, in io.Reader, out io.Writer) error {
	if journal != nil {
		journal.Begin(ctx)
		defer journal.End(ctx)
	}

	scanner := bufio.NewScanner(in)
	state := d.Start(ctx)
	show := true

	for {
		if show {
			printState(out, state, explainer != nil)
		}
		show = true

		if !scanner.Scan() {
			fmt.Fprintln(out, "\n(input closed)")
			return scanner.Err()
		}
		input := strings.ToLower(strings.TrimSpace(scanner.Text()))

		switch input {
		case "q":
			fmt.Fprintln(out, "Bye!")
			return nil
		case "r":
			state = d.Restart(ctx)
			continue
		}

		switch state.Phase() {
		case tutor.PhaseAwaitingAnswer:
			q := state.Question()
			n, err := strconv.Atoi(input)
			if err != nil || n < 1 || n > len(q.Options) {
				fmt.Fprintf(out, "Please enter a number between 1 and %d: ", len(q.Options))
				show = false
				continue
			}
			state = d.Select(ctx, q.Options[n-1])

		case tutor.PhaseAnswered:
			switch {
			case input == "e" && explainer != nil:
				printExplanation(ctx, out, explainer, state)
				show = false
				fmt.Fprint(out, answeredPrompt(true))
			case input == "" || input == "n":
				state = d.Next(ctx)
			default:
				show = false
				fmt.Fprint(out, answeredPrompt(explainer != nil))
			}

		case tutor.PhaseFailed:
			if input == "" || input == "t" {
				state = d.Retry(ctx)
				continue
			}
			show = false
			fmt.Fprint(out, "[t]ry again  [r]estart  [q]uit: ")

		default:
			show = false
			fmt.Fprint(out, "[r]etake  [q]uit: ")
		}
	}
}

func printState(out io.Writer, state tutor.State, canExplain bool) {
	switch state.Phase() {
	case tutor.PhaseAwaitingAnswer:
		q := state.Question()
		fmt.Fprintln(out)
		fmt.Fprint(out, mastery.Text(state.Predictions(), panelBarWidth))
		fmt.Fprintf(out, "\n── %s ──\n", q.Skill)
		fmt.Fprintln(out, q.Text)
		for i, opt := range q.Options {
			fmt.Fprintf(out, "  %d) %s\n", i+1, opt)
		}
		fmt.Fprint(out, "\nYour answer: ")

	case tutor.PhaseAnswered:
		r := state.Result()
		if r.IsCorrect() {
			fmt.Fprintln(out, "✓ Correct!")
		} else {
			fmt.Fprintf(out, "✗ Not quite. The correct answer is: %s\n", r.CorrectAnswer)
		}
		fmt.Fprintln(out)
		fmt.Fprint(out, mastery.Text(state.Predictions(), panelBarWidth))
		fmt.Fprint(out, answeredPrompt(canExplain))

	case tutor.PhaseCompleted:
		fmt.Fprintln(out, "\nCongratulations! You have completed the session.")
		fmt.Fprintln(out)
		fmt.Fprint(out, mastery.Text(state.Predictions(), panelBarWidth))
		fmt.Fprint(out, "[r]etake  [q]uit: ")

	case tutor.PhaseFailed:
		fmt.Fprintf(out, "\nError: %s\n  %v\n", assess.Describe(state.Err()), state.Err())
		fmt.Fprint(out, "[t]ry again  [r]estart  [q]uit: ")
	}
}

func answeredPrompt(canExplain bool) string {
	if canExplain {
		return "[n]ext  [e]xplain  [r]estart  [q]uit: "
	}
	return "[n]ext  [r]estart  [q]uit: "
}

func printExplanation(ctx context.Context, out io.Writer, explainer answerExplainer, state tutor.State) {
	q, r := state.Question(), state.Result()
	exp, err := explainer.Explain(ctx, explain.Input{Question: *q, Chosen: state.Chosen(), Result: *r})
	if err != nil {
		fmt.Fprintf(out, "Could not get an explanation: %v\n", err)
		return
	}
	fmt.Fprintf(out, "\n%s\n", exp.Text)
	if exp.Tip != "" {
		fmt.Fprintf(out, "Tip: %s\n", exp.Tip)
	}
	fmt.Fprintln(out)
}
