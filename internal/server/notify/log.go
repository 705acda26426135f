package notify

import (
	"context"

	"github.com/Silas-Hakuzwimana/streamforge/internal/logging"
)

// LogNotifier records that a message would have been sent without
// delivering it. Codes and links never reach the log.
type LogNotifier struct {
	log logging.Logger
}

func NewLogNotifier(log logging.Logger) *LogNotifier {
	return &LogNotifier{log: log.With("module", "notify")}
}

func (n *LogNotifier) SendOTP(ctx context.Context, to, _ string, _ string) error {
	n.log.Info(ctx, "email not delivered, smtp disabled", "kind", KindOTP, "to", to)
	return nil
}

func (n *LogNotifier) SendPasswordReset(ctx context.Context, to, _ string, _ string) error {
	n.log.Info(ctx, "email not delivered, smtp disabled", "kind", KindReset, "to", to)
	return nil
}

func (n *LogNotifier) SendWelcome(ctx context.Context, to, _ string) error {
	n.log.Info(ctx, "email not delivered, smtp disabled", "kind", KindWelcome, "to", to)
	return nil
}
