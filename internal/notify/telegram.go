package notify

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"brownstone/server/internal/models"
)

// Service pushes Telegram alerts for enrichment results worth a buyer's
// immediate attention (high distress, priced under comps).
type Service struct {
	logger   *logrus.Logger
	client   *http.Client
	botToken string
	chatID   string
	enabled  bool
}

func NewService(logger *logrus.Logger, botToken, chatID string, enabled bool) *Service {
	return &Service{
		logger:   logger,
		botToken: botToken,
		chatID:   chatID,
		enabled:  enabled,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SendMessage sends a message to the configured Telegram chat
func (s *Service) SendMessage(message string) error {
	if !s.enabled {
		return nil
	}

	if s.botToken == "" {
		return errors.New("Telegram bot token is not configured")
	}

	if s.chatID == "" {
		return errors.New("Telegram chat ID is not configured")
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", s.botToken)
	payload := map[string]interface{}{
		"chat_id":    s.chatID,
		"text":       message,
		"parse_mode": "HTML",
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message payload: %v", err)
	}

	resp, err := s.client.Post(url, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to send message to Telegram API: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return errors.New("invalid bot token - please check your token from @BotFather")
		case http.StatusForbidden:
			return errors.New("bot was blocked by the user or chat")
		default:
			return fmt.Errorf("Telegram API error (status %d): %s", resp.StatusCode, string(body))
		}
	}

	return nil
}

// NotifyOpportunity sends an alert for a distressed, underpriced listing.
func (s *Service) NotifyOpportunity(ep *models.EnrichedProperty) error {
	if !s.enabled {
		return nil
	}

	p := &ep.Property
	message := fmt.Sprintf(
		"<b>🔥 Distressed Listing Below Market</b>\n\n"+
			"🏠 %s\n"+
			"📍 %s, %s\n"+
			"💰 $%.0f (%d cuts, %.1f%% off original)\n"+
			"📐 $%.0f/sqft vs comp median $%.0f/sqft (%.1f%%)\n"+
			"📊 Cap rate %.2f%% · %d days on market\n\n"+
			"🔗 <a href=\"%s\">View listing</a>",
		p.Address,
		p.Neighborhood, p.Borough,
		p.CurrentPrice, ep.PriceCutCount, ep.TotalCutPercent,
		ep.Metrics.PricePerSQFT, ep.Trend.MedianCompPPSF, ep.Trend.PriceVariance,
		ep.Metrics.CapRate, p.DaysOnMarket,
		p.ListingURL,
	)

	s.logger.WithField("property_id", p.ID).Info("Sending opportunity alert")
	return s.SendMessage(message)
}
