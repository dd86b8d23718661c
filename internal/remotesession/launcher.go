// Package remotesession hands a support session id to a desktop remote-access
// tool through its URL scheme.
//
// The handoff is best effort. Nothing reports whether the desktop application
// actually opened, so after a grace period the launcher offers the tool's
// download page instead, and only the user can say whether it is needed.
package remotesession

import (
	"context"
	"sort"
	"strings"
	"time"
	"unicode"

	"buzzi-console/internal/apperr"
)

type Tool struct {
	Name        string
	Scheme      string
	DownloadURL string
}

var Tools = map[string]Tool{
	"anydesk":    {Name: "AnyDesk", Scheme: "anydesk:", DownloadURL: "https://anydesk.com/en/downloads"},
	"teamviewer": {Name: "TeamViewer", Scheme: "teamviewer10://control?device=", DownloadURL: "https://www.teamviewer.com/en/download/"},
	"rustdesk":   {Name: "RustDesk", Scheme: "rustdesk://", DownloadURL: "https://rustdesk.com/download"},
}

// Opener attempts the protocol handoff.
type Opener interface {
	Open(ctx context.Context, link string) error
}

// Signal reports success of the handoff, if the platform can tell.
type Signal interface {
	Opened(ctx context.Context) bool
}

// Confirmer asks the user whether to follow the fallback link.
type Confirmer interface {
	ConfirmFallback(ctx context.Context, tool Tool, url string) bool
}

type Launch struct {
	Tool             string `json:"tool"`
	SessionID        string `json:"sessionId"`
	DeepLink         string `json:"deepLink"`
	FallbackURL      string `json:"fallbackUrl"`
	OpenError        string `json:"openError,omitempty"`
	Opened           bool   `json:"opened"`
	FallbackOffered  bool   `json:"fallbackOffered"`
	FallbackAccepted bool   `json:"fallbackAccepted"`
}

type Launcher struct {
	Opener    Opener
	Signal    Signal
	Confirmer Confirmer
	Grace     time.Duration

	wait func(ctx context.Context, d time.Duration) error
}

func New(o Opener, s Signal, c Confirmer, grace time.Duration) *Launcher {
	if grace <= 0 {
		grace = 2 * time.Second
	}
	return &Launcher{Opener: o, Signal: s, Confirmer: c, Grace: grace, wait: sleep}
}

// NormalizeID removes every whitespace rune ("123 456 789" -> "123456789").
func NormalizeID(raw string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
}

func Lookup(tool string) (Tool, error) {
	t, ok := Tools[strings.ToLower(strings.TrimSpace(tool))]
	if !ok {
		names := make([]string, 0, len(Tools))
		for k := range Tools {
			names = append(names, k)
		}
		sort.Strings(names)
		return Tool{}, apperr.Invalid("tool", "must be one of "+strings.Join(names, ", "))
	}
	return t, nil
}

func (l *Launcher) Launch(ctx context.Context, tool, rawID string) (Launch, error) {
	t, err := Lookup(tool)
	if err != nil {
		return Launch{}, err
	}
	id := NormalizeID(rawID)
	if id == "" {
		return Launch{}, apperr.Invalid("sessionId", "required")
	}

	res := Launch{
		Tool:        strings.ToLower(strings.TrimSpace(tool)),
		SessionID:   id,
		DeepLink:    t.Scheme + id,
		FallbackURL: t.DownloadURL,
	}
	if l.Opener != nil {
		if err := l.Opener.Open(ctx, res.DeepLink); err != nil {
			res.OpenError = err.Error()
		}
	}

	wait := l.wait
	if wait == nil {
		wait = sleep
	}
	if err := wait(ctx, l.Grace); err != nil {
		return res, err
	}

	if l.Signal != nil && l.Signal.Opened(ctx) {
		res.Opened = true
		return res, nil
	}
	res.FallbackOffered = true
	if l.Confirmer != nil {
		res.FallbackAccepted = l.Confirmer.ConfirmFallback(ctx, t, res.FallbackURL)
	}
	return res, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
