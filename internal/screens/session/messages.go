package session

import (
	"time"

	"github.com/abhisek/tutoria/internal/explain"
	"github.com/abhisek/tutoria/internal/tutor"
)

// outcomeMsg is sent when a call against the assessment service resolves.
type outcomeMsg struct {
	Outcome tutor.Outcome
	Elapsed time.Duration
}

// explanationMsg is sent when an explanation request resolves. Seq
// identifies the request; replies to superseded requests are dropped.
type explanationMsg struct {
	Seq         uint64
	Explanation *explain.Explanation
	Err         error
}
