package notifysvc

import (
	"context"
	"sync"

	"github.com/trezcool/masomo-dashboard/core"
)

// Recorder is a Notifier keeping every notice it receives.
type Recorder struct {
	mu   sync.Mutex
	Sent []core.Notice
}

var _ core.Notifier = (*Recorder)(nil)

func NewRecorder() *Recorder {
	return &Recorder{Sent: make([]core.Notice, 0)}
}

func (r *Recorder) Notify(n core.Notice) {
	r.mu.Lock()
	r.Sent = append(r.Sent, n)
	r.mu.Unlock()
}

// Notices returns a copy of the recorded notices.
func (r *Recorder) Notices() []core.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]core.Notice, len(r.Sent))
	copy(out, r.Sent)
	return out
}

// Last returns the most recent notice, or the zero Notice.
func (r *Recorder) Last() core.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Sent) == 0 {
		return core.Notice{}
	}
	return r.Sent[len(r.Sent)-1]
}

// Levels returns the level of every recorded notice, in order.
func (r *Recorder) Levels() []core.NoticeLevel {
	r.mu.Lock()
	defer r.mu.Unlock()
	levels := make([]core.NoticeLevel, 0, len(r.Sent))
	for _, n := range r.Sent {
		levels = append(levels, n.Level)
	}
	return levels
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.Sent = r.Sent[:0]
	r.mu.Unlock()
}

// Script is a Confirmer answering from a fixed list; once exhausted it answers no.
type Script struct {
	mu      sync.Mutex
	Answers []bool
	Prompts []string
}

var _ core.Confirmer = (*Script)(nil)

func NewScript(answers ...bool) *Script {
	return &Script{Answers: answers}
}

func (s *Script) Confirm(_ context.Context, prompt string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Prompts = append(s.Prompts, prompt)
	if len(s.Answers) == 0 {
		return false, nil
	}
	ok := s.Answers[0]
	s.Answers = s.Answers[1:]
	return ok, nil
}
