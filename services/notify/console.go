package notifysvc

import (
	"fmt"
	"io"
	"sync"

	"github.com/labstack/gommon/color"

	"github.com/trezcool/masomo-dashboard/core"
)

type consoleNotifier struct {
	mu     sync.Mutex
	out    io.Writer
	colour *color.Color
}

var _ core.Notifier = (*consoleNotifier)(nil)

// NewConsoleNotifier prints notices to out, one per line, followed by their field errors.
func NewConsoleNotifier(out io.Writer, colours bool) core.Notifier {
	c := color.New()
	if !colours {
		c.Disable()
	}
	return &consoleNotifier{out: out, colour: c}
}

func (n *consoleNotifier) Notify(notice core.Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()

	var prefix string
	switch notice.Level {
	case core.NoticeSuccess:
		prefix = n.colour.Green("✔")
	case core.NoticeError:
		prefix = n.colour.Red("✘")
	default:
		prefix = n.colour.Cyan("i")
	}
	_, _ = fmt.Fprintf(n.out, "%s %s\n", prefix, notice.Message)
	for _, f := range notice.Fields {
		_, _ = fmt.Fprintf(n.out, "  %s: %s\n", n.colour.Yellow(f.Field), f.Error)
	}
}
