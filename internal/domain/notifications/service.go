package notifications

import (
	"context"
	"encoding/json"
	"time"

	"booking-ledger-go/pkg/logger"
	"github.com/google/uuid"
)

const defaultPushTimeout = 5 * time.Second

// PushSink is the external delivery transport. Implementations must respect
// the context deadline; Send is best-effort and called once per fan-out.
type PushSink interface {
	Send(ctx context.Context, recipientIDs []string, title, body string) (int, error)
}

// Audience resolves the member ids that share write reach over an owner's
// resources (owner and write grants).
type Audience interface {
	WriteMembers(ctx context.Context, ownerID string) ([]string, error)
}

type Service struct {
	repo     Repository
	audience Audience
	sink     PushSink
	timeout  time.Duration
	log      logger.Logger
}

func NewService(repo Repository, audience Audience, sink PushSink, timeout time.Duration, log logger.Logger) *Service {
	if timeout <= 0 {
		timeout = defaultPushTimeout
	}
	return &Service{
		repo:     repo,
		audience: audience,
		sink:     sink,
		timeout:  timeout,
		log:      log,
	}
}

// FanOut computes the audience for a ledger change on ownerID's resources,
// persists one notification per recipient and pushes once through the sink.
// The audience is the owner plus every member holding an owner or write
// grant, de-duplicated, minus the acting user. FanOut never fails the
// triggering operation: persistence and delivery problems come back as an
// advisory warning in the result.
func (s *Service) FanOut(ctx context.Context, ownerID, actorID, title, message string, data map[string]any) Result {
	recipients, err := s.recipients(ctx, ownerID, actorID)
	if err != nil {
		s.log.InternalError("notifications: audience resolution failed", err, "owner_id", ownerID)
		return Result{Warning: "notification audience could not be resolved"}
	}
	if len(recipients) == 0 {
		return Result{}
	}

	var payload []byte
	if len(data) > 0 {
		payload, err = json.Marshal(data)
		if err != nil {
			s.log.InternalError("notifications: payload marshal failed", err, "owner_id", ownerID)
			payload = nil
		}
	}

	items := make([]Notification, 0, len(recipients))
	for _, recipient := range recipients {
		items = append(items, Notification{
			ID:      uuid.NewString(),
			UserID:  recipient,
			Title:   title,
			Message: message,
			Data:    payload,
		})
	}

	result := Result{Notified: recipients}
	if err := s.repo.CreateBatch(ctx, items); err != nil {
		s.log.InternalError("notifications: persist failed", err, "owner_id", ownerID, "recipients", len(recipients))
		result.Warning = "notifications could not be persisted"
		return result
	}

	pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	if _, err := s.sink.Send(pushCtx, recipients, title, message); err != nil {
		s.log.BusinessError("notifications: push delivery failed", err, "owner_id", ownerID, "recipients", len(recipients))
		result.Warning = "push delivery failed"
	}

	return result
}

func (s *Service) recipients(ctx context.Context, ownerID, actorID string) ([]string, error) {
	members, err := s.audience.WriteMembers(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(members)+1)
	recipients := make([]string, 0, len(members)+1)
	for _, candidate := range append([]string{ownerID}, members...) {
		if candidate == actorID {
			continue
		}
		if _, ok := seen[candidate]; ok {
			continue
		}
		seen[candidate] = struct{}{}
		recipients = append(recipients, candidate)
	}
	return recipients, nil
}

func (s *Service) List(ctx context.Context, userID string, limit int) ([]Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.ListByUser(ctx, userID, limit)
}

func (s *Service) MarkRead(ctx context.Context, userID, notificationID string) error {
	updated, err := s.repo.MarkRead(ctx, userID, notificationID)
	if err != nil {
		return err
	}
	if !updated {
		return ErrNotificationNotFound
	}
	return nil
}
