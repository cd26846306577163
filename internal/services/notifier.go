package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/placement-tracker/apiserver/internal/notify"
	"github.com/placement-tracker/apiserver/internal/store"
	"github.com/placement-tracker/apiserver/types"
)

// ThrottleWindow is the minimum interval between notification attempts
// per user.
const ThrottleWindow = 24 * time.Hour

// SMSBody is the message sent when a user opens the app.
const SMSBody = "You opened your Placement Tracker. Keep going!"

// AppOpenLogRepository defines persistence operations for notification logs.
type AppOpenLogRepository interface {
	GetByUser(ctx context.Context, userID int) (types.AppOpenLog, error)
	Touch(ctx context.Context, userID int, sentAt time.Time) error
}

// Notifier decides, per app-open event, whether a notification may be
// sent, and delegates delivery to the configured sender.
type Notifier struct {
	users  UserRepository
	logs   AppOpenLogRepository
	sender notify.Sender
	clock  clockwork.Clock
}

// NewNotifier constructs a Notifier. sender may be nil, in which case
// eligible events advance the throttle without dispatching anything.
func NewNotifier(users UserRepository, logs AppOpenLogRepository, sender notify.Sender) *Notifier {
	return &Notifier{
		users:  users,
		logs:   logs,
		sender: sender,
		clock:  clockwork.NewRealClock(),
	}
}

// WithClock replaces the notifier's clock. Used by tests.
func (n *Notifier) WithClock(clock clockwork.Clock) *Notifier {
	n.clock = clock
	return n
}

// AppOpened handles one app-open event for the given user. It reports
// whether a message was actually dispatched. The throttle timestamp
// advances on every eligible attempt, whether or not a sender is
// configured.
func (n *Notifier) AppOpened(ctx context.Context, userID int) (bool, error) {
	user, err := n.users.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}

	now := n.clock.Now()
	eligible := true
	log, err := n.logs.GetByUser(ctx, userID)
	switch {
	case err == nil:
		eligible = log.LastSentAt == nil || now.Sub(*log.LastSentAt) > ThrottleWindow
	case errors.Is(err, store.ErrNotFound):
		// First event for this user; the log row is created below.
	default:
		return false, err
	}

	if !eligible {
		return false, nil
	}

	sent := false
	if n.sender != nil {
		if err := n.sender.Send(ctx, user.PhoneE164, SMSBody); err != nil {
			return false, err
		}
		sent = true
		slog.Info("app-open notification dispatched", "user_id", userID)
	}

	if err := n.logs.Touch(ctx, userID, now); err != nil {
		return false, err
	}
	return sent, nil
}
