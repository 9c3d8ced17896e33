// Package notify raises local reminder notifications for the CLI client.
// It mirrors the server-side dispatch rules: one detailed notification for a
// single due reminder, one aggregate for several. A client that is also
// push-subscribed can receive both; the duplication is accepted.
package notify

import (
	"context"
	"fmt"
	"io"
)

// Notifier presents one notification to the user.
type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}

// TerminalNotifier prints notifications to the CLI output stream.
type TerminalNotifier struct {
	w io.Writer
}

func NewTerminalNotifier(w io.Writer) *TerminalNotifier {
	return &TerminalNotifier{w: w}
}

func (n *TerminalNotifier) Notify(_ context.Context, title, body string) error {
	_, err := fmt.Fprintf(n.w, "\n*** %s ***\n%s\n", title, body)
	return err
}
