package notifysvc

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/trezcool/masomo-dashboard/core"
)

// ErrNotInteractive is returned when confirmation is needed but stdin is not a terminal.
var ErrNotInteractive = errors.New("cannot ask for confirmation: input is not a terminal (use --yes)")

type answer struct {
	line string
	err  error
}

type promptConfirmer struct {
	in        *bufio.Reader
	out       io.Writer
	tty       bool
	assumeYes bool

	mu      sync.Mutex
	pending chan answer // read left in flight by a cancelled Confirm
}

var _ core.Confirmer = (*promptConfirmer)(nil)

// NewPromptConfirmer asks y/N questions on out and reads the answer from in.
// When assumeYes is set every question is answered yes without prompting.
func NewPromptConfirmer(in io.Reader, out io.Writer, assumeYes bool) core.Confirmer {
	tty := true
	if f, ok := in.(*os.File); ok {
		tty = term.IsTerminal(int(f.Fd()))
	}
	return &promptConfirmer{
		in:        bufio.NewReader(in),
		out:       out,
		tty:       tty,
		assumeYes: assumeYes,
	}
}

func (c *promptConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	if c.assumeYes {
		return true, nil
	}
	if !c.tty {
		return false, ErrNotInteractive
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	_, _ = fmt.Fprintf(c.out, "%s [y/N]: ", prompt)

	// at most one goroutine reads c.in; its answer goes to the next Confirm if this one is cancelled
	if c.pending == nil {
		ch := make(chan answer, 1)
		go func() {
			line, err := c.in.ReadString('\n')
			ch <- answer{line, err}
		}()
		c.pending = ch
	}

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case a := <-c.pending:
		c.pending = nil
		if a.err != nil && a.err != io.EOF {
			return false, errors.Wrap(a.err, "reading answer")
		}
		switch core.CleanString(a.line, true) {
		case "y", "yes":
			return true, nil
		}
		return false, nil
	}
}
