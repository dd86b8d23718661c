package remotesession

import "context"

// ClientHandoff is used when the launch is requested over HTTP: the browser
// follows the deep link itself and decides about the fallback, so the server
// only records what it handed over.
type ClientHandoff struct{}

func (ClientHandoff) Open(context.Context, string) error { return nil }

func (ClientHandoff) Opened(context.Context) bool { return false }

// ConfirmFallback never accepts on the user's behalf. FallbackOffered tells
// the client to show the download prompt.
func (ClientHandoff) ConfirmFallback(context.Context, Tool, string) bool { return false }
