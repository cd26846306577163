package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/placement-tracker/apiserver/config"
)

const (
	twilioBaseURL        = "https://api.twilio.com"
	defaultSendTimeout   = 10 * time.Second
	maxErrorBodyBytes    = 4 << 10
	messagesPathTemplate = "/2010-04-01/Accounts/%s/Messages.json"
)

// TwilioClient sends SMS messages through the Twilio REST API.
type TwilioClient struct {
	httpClient *http.Client
	baseURL    string
	accountSID string
	authToken  string
	from       string
}

// NewTwilioClient constructs a Twilio client from config.
func NewTwilioClient(cfg config.TwilioConfig) (*TwilioClient, error) {
	if strings.TrimSpace(cfg.AccountSID) == "" || strings.TrimSpace(cfg.AuthToken) == "" {
		return nil, errors.New("twilio account sid and auth token are required")
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, errors.New("twilio from number is required")
	}

	return &TwilioClient{
		httpClient: &http.Client{Timeout: defaultSendTimeout},
		baseURL:    twilioBaseURL,
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		from:       cfg.From,
	}, nil
}

// Send posts one message to the Twilio Messages endpoint.
func (c *TwilioClient) Send(ctx context.Context, toE164, body string) error {
	form := url.Values{}
	form.Set("From", c.from)
	form.Set("To", toE164)
	form.Set("Body", body)

	endpoint := c.baseURL + fmt.Sprintf(messagesPathTemplate, c.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.accountSID, c.authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return fmt.Errorf("twilio send failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}
