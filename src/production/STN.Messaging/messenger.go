package messaging

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
	config "gitlab.com/stationzero/zero.temp_server/src/production/STN.Config"
)

// Messenger delivers a text message to a phone number. A failed send is a
// normal error value; callers decide whether it is fatal.
type Messenger interface {
	Send(ctx context.Context, to, body string) error
}

// TwilioMessenger sends SMS through the Twilio REST API.
type TwilioMessenger struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioMessenger creates a messenger from credentials. Callers must only
// construct it when cfg.Enabled is true.
func NewTwilioMessenger(cfg *config.MessagingConfig) *TwilioMessenger {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &TwilioMessenger{
		client: client,
		from:   cfg.FromNumber,
	}
}

func (m *TwilioMessenger) Send(ctx context.Context, to, body string) error {
	params := &openapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(m.from)
	params.SetBody(body)

	if _, err := m.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("failed to send sms to %s: %w", to, err)
	}
	return nil
}
