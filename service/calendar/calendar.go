package calendar

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/serenitycare/Serenity-server/cmd/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcalendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
	"gorm.io/gorm"
)

const defaultEventMinutes = 60

// Client wraps the Google Calendar integration. It is constructed once in
// main and passed to the handlers that need it; tokens live in the
// calendar_tokens table and refreshed tokens are written back.
type Client struct {
	db     *gorm.DB
	config *oauth2.Config
}

func NewFromEnv(db *gorm.DB) *Client {
	clientID := os.Getenv("GOOGLE_CLIENT_ID")
	clientSecret := os.Getenv("GOOGLE_CLIENT_SECRET")
	redirectURL := os.Getenv("GOOGLE_REDIRECT_URL")

	c := &Client{db: db}
	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return c
	}

	c.config = &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes: []string{
			gcalendar.CalendarEventsScope,
		},
		Endpoint: google.Endpoint,
	}
	return c
}

func (c *Client) Configured() bool {
	return c.config != nil
}

func (c *Client) AuthURL(state string) string {
	return c.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades an authorization code for a token and persists it for the
// given owner account.
func (c *Client) Exchange(ctx context.Context, userID uint, code string) error {
	token, err := c.config.Exchange(ctx, code)
	if err != nil {
		return err
	}
	return c.saveToken(userID, token)
}

func (c *Client) saveToken(userID uint, token *oauth2.Token) error {
	record := models.CalendarToken{
		UserID:       userID,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		Expiry:       token.Expiry,
	}

	var existing models.CalendarToken
	err := c.db.Where("user_id = ?", userID).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return c.db.Create(&record).Error
	}
	if err != nil {
		return err
	}

	existing.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		existing.RefreshToken = token.RefreshToken
	}
	existing.TokenType = token.TokenType
	existing.Expiry = token.Expiry
	return c.db.Save(&existing).Error
}

// tokenSource loads the practice's stored credentials. A single-practice
// deployment keeps one connected account; the most recently updated token
// wins if several owners connected.
func (c *Client) tokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	var record models.CalendarToken
	if err := c.db.Order("updated_at DESC").First(&record).Error; err != nil {
		return nil, fmt.Errorf("no calendar account connected: %w", err)
	}

	stored := &oauth2.Token{
		AccessToken:  record.AccessToken,
		RefreshToken: record.RefreshToken,
		TokenType:    record.TokenType,
		Expiry:       record.Expiry,
	}

	ts := c.config.TokenSource(ctx, stored)
	fresh, err := ts.Token()
	if err != nil {
		return nil, err
	}
	if fresh.AccessToken != stored.AccessToken {
		if err := c.saveToken(record.UserID, fresh); err != nil {
			return nil, err
		}
	}
	return oauth2.StaticTokenSource(fresh), nil
}

func (c *Client) service(ctx context.Context) (*gcalendar.Service, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("Google Calendar not configured")
	}
	ts, err := c.tokenSource(ctx)
	if err != nil {
		return nil, err
	}
	return gcalendar.NewService(ctx, option.WithTokenSource(ts))
}

// CreateAppointmentEvent inserts a calendar event for a confirmed appointment
// and returns the event ID.
func (c *Client) CreateAppointmentEvent(ctx context.Context, summary, description string, start time.Time) (string, error) {
	srv, err := c.service(ctx)
	if err != nil {
		return "", err
	}

	end := start.Add(defaultEventMinutes * time.Minute)
	event := &gcalendar.Event{
		Summary:     summary,
		Description: description,
		Start: &gcalendar.EventDateTime{
			DateTime: start.Format(time.RFC3339),
			TimeZone: "UTC",
		},
		End: &gcalendar.EventDateTime{
			DateTime: end.Format(time.RFC3339),
			TimeZone: "UTC",
		},
	}

	created, err := srv.Events.Insert("primary", event).Do()
	if err != nil {
		return "", err
	}
	return created.Id, nil
}

// DeleteEvent removes a previously synced event.
func (c *Client) DeleteEvent(ctx context.Context, eventID string) error {
	srv, err := c.service(ctx)
	if err != nil {
		return err
	}
	return srv.Events.Delete("primary", eventID).Do()
}
