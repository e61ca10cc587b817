package push

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/google/uuid"

	"github.com/snapplace/server/internal/logging"
)

// SubscriptionLister is the slice of the store the notifier needs.
type SubscriptionLister interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Subscription, error)
}

// WebPushNotifier delivers new-vote notifications to the owner's registered
// browsers. Delivery is best-effort: a dead endpoint or transport error is
// logged and skipped, never surfaced to the voting request.
type WebPushNotifier struct {
	subs    SubscriptionLister
	logger  *logging.Logger
	options *webpush.Options
}

func NewWebPushNotifier(subs SubscriptionLister, logger *logging.Logger, subscriber, vapidPublicKey, vapidPrivateKey string) *WebPushNotifier {
	return &WebPushNotifier{
		subs:   subs,
		logger: logger,
		options: &webpush.Options{
			Subscriber:      subscriber,
			VAPIDPublicKey:  vapidPublicKey,
			VAPIDPrivateKey: vapidPrivateKey,
			TTL:             3600,
		},
	}
}

type votePayload struct {
	Title string          `json:"title"`
	Body  string          `json:"body"`
	Icon  string          `json:"icon"`
	Data  votePayloadData `json:"data"`
}

type votePayloadData struct {
	PlaceID    uuid.UUID `json:"place_id"`
	TotalVotes int       `json:"total_votes"`
	URL        string    `json:"url"`
}

// NotifyNewVote sends the vote notification to every subscription the owner
// has registered.
func (n *WebPushNotifier) NotifyNewVote(ctx context.Context, ownerID uuid.UUID, placeName string, placeID uuid.UUID, voterName string, totalVotes int) error {
	subs, err := n.subs.ListByUser(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("failed to load subscriptions: %w", err)
	}

	payload, err := json.Marshal(votePayload{
		Title: "¡Nuevo voto en tu lugar!",
		Body:  fmt.Sprintf("%s le dio me gusta a %s. Total: %d votos", voterName, placeName, totalVotes),
		Icon:  "/icon-192x192.png",
		Data: votePayloadData{
			PlaceID:    placeID,
			TotalVotes: totalVotes,
			URL:        fmt.Sprintf("/places/%s", placeID),
		},
	})
	if err != nil {
		return err
	}

	for _, sub := range subs {
		target := &webpush.Subscription{
			Endpoint: sub.Endpoint,
			Keys: webpush.Keys{
				P256dh: sub.P256dh,
				Auth:   sub.Auth,
			},
		}

		resp, err := webpush.SendNotificationWithContext(ctx, payload, target, n.options)
		if err != nil {
			n.logger.WarnContext(ctx, "push delivery failed",
				"endpoint", sub.Endpoint, "error", err)
			continue
		}
		if resp.StatusCode >= http.StatusBadRequest {
			n.logger.WarnContext(ctx, "push endpoint rejected notification",
				"endpoint", sub.Endpoint, "status", resp.StatusCode)
		}
		resp.Body.Close()
	}

	return nil
}
