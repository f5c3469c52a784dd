package echoweb

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/masomo-dashboard/core"
)

const flashCookie = "masomo_flash"

// flashes collects the notices of one request.
type flashes struct {
	mu      sync.Mutex
	notices []core.Notice
}

var _ core.Notifier = (*flashes)(nil)

func (f *flashes) Notify(n core.Notice) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notices = append(f.notices, n)
}

func (f *flashes) list() []core.Notice {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]core.Notice, len(f.notices))
	copy(out, f.notices)
	return out
}

// redirect keeps the notices of f for the next page (Post/Redirect/Get).
func (s *server) redirect(ctx echo.Context, f *flashes, to string) error {
	if f != nil {
		s.keepFlashes(ctx, f.list())
	}
	return ctx.Redirect(http.StatusSeeOther, to)
}

func (s *server) keepFlashes(ctx echo.Context, notices []core.Notice) {
	if len(notices) == 0 {
		return
	}
	// field errors are only shown next to the form they belong to
	kept := make([]core.Notice, len(notices))
	for i, n := range notices {
		kept[i] = core.Notice{Level: n.Level, Message: n.Message}
	}
	data, err := json.Marshal(kept)
	if err != nil {
		s.opts.Logger.Error("encoding flashes", err)
		return
	}
	s.setCookie(ctx, flashCookie, base64.RawURLEncoding.EncodeToString(data), 0)
}

// takeFlashes returns the notices kept by the previous request, and forgets them.
func (s *server) takeFlashes(ctx echo.Context) []core.Notice {
	cookie, err := ctx.Cookie(flashCookie)
	if err != nil || cookie.Value == "" {
		return nil
	}
	s.clearCookie(ctx, flashCookie)

	data, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	var notices []core.Notice
	if err := json.Unmarshal(data, &notices); err != nil {
		return nil
	}
	return notices
}

// setCookie sets a session cookie (maxAge 0) or one expiring in maxAge seconds.
func (s *server) setCookie(ctx echo.Context, name, value string, maxAge int) {
	ctx.SetCookie(&http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *server) clearCookie(ctx echo.Context, name string) {
	s.setCookie(ctx, name, "", -1)
}
