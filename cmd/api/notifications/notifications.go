package notifications

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Notice is a short message about the outcome of a user action.
type Notice struct {
	ID        uuid.UUID `json:"id"`
	Message   string    `json:"message"`
	Success   bool      `json:"success"`
	CreatedAt time.Time `json:"created_at"`
}

func NewSuccess(message string) Notice {
	return Notice{ID: uuid.New(), Message: message, Success: true, CreatedAt: time.Now().UTC()}
}

func NewFailure(message string) Notice {
	return Notice{ID: uuid.New(), Message: message, Success: false, CreatedAt: time.Now().UTC()}
}

type Notifier interface {
	Notify(ctx context.Context, n Notice) error
}

var ErrNotificationFailed = errors.New("notification not accepted")

// Ntfy forwards notices to an ntfy topic.
type Ntfy struct {
	baseURL string
	enabled bool
	timeout time.Duration
	client  *http.Client
}

func NewNtfy(enableNotifications bool, notificationsTimeout time.Duration, notificationsBaseURL string, client *http.Client) *Ntfy {
	if client == nil {
		client = &http.Client{}
	}
	return &Ntfy{
		baseURL: strings.TrimRight(notificationsBaseURL, "/"),
		enabled: enableNotifications,
		timeout: notificationsTimeout,
		client:  client,
	}
}

/* Posts the notice text to the topic. A disabled Ntfy drops it silently. */
func (ntf *Ntfy) Notify(ctx context.Context, n Notice) error {
	if !ntf.enabled {
		return nil
	}

	if ntf.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ntf.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ntf.baseURL, strings.NewReader(n.Message))
	if err != nil {
		return fmt.Errorf("error delivering message (%s) to topic (%s): %w", n.Message, ntf.baseURL, err)
	}
	req.Header.Set("Title", "Library register")
	if n.Success {
		req.Header.Set("Tags", "white_check_mark")
	} else {
		req.Header.Set("Tags", "warning")
		req.Header.Set("Priority", "high")
	}

	resp, err := ntf.client.Do(req)
	if err != nil {
		return fmt.Errorf("error delivering message (%s) to topic (%s): %w", n.Message, ntf.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("error delivering message (%s) to topic (%s): status %d: %w", n.Message, ntf.baseURL, resp.StatusCode, ErrNotificationFailed)
	}
	return nil
}
