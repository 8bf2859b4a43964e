// Package telegram delivers prediction digests and watch-loop alerts through
// the Telegram Bot API.
//
// Messages use MarkdownV2 formatting and are sent with linear-backoff retries.
// A small command listener answers /status and /latest in the configured chat.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rewired-gh/lottoracle/internal/logger"
	"github.com/rewired-gh/lottoracle/internal/models"
)

// Client handles Telegram notifications
type Client struct {
	bot            *tgbotapi.BotAPI
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
}

// NewClient creates a new Telegram client
func NewClient(botToken, chatID string, maxRetries int, retryDelayBase time.Duration) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}

	return &Client{
		bot:            bot,
		chatID:         chatIDInt,
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
	}, nil
}

// SendPredictions sends a digest of freshly generated predictions.
func (c *Client) SendPredictions(predictions []models.Prediction) error {
	return c.sendMarkdown(formatPredictions(predictions))
}

// SendError notifies the chat that a watch cycle failed.
func (c *Client) SendError(err error) error {
	message := fmt.Sprintf("⚠️ *Watch cycle failed*\n\n%s", escapeMarkdownV2(err.Error()))
	return c.sendMarkdown(message)
}

// SendRecovery notifies the chat that the watch loop recovered.
func (c *Client) SendRecovery(failures int) error {
	message := fmt.Sprintf("✅ *Watch loop recovered* after %d failed cycles", failures)
	return c.sendMarkdown(message)
}

// sendMarkdown sends a MarkdownV2 message with retry
func (c *Client) sendMarkdown(text string) error {
	msg := tgbotapi.NewMessage(c.chatID, text)
	msg.ParseMode = "MarkdownV2"

	var lastErr error

	for i := 0; i < c.maxRetries; i++ {
		_, err := c.bot.Send(msg)
		if err == nil {
			return nil
		}
		lastErr = err
		time.Sleep(c.retryDelayBase * time.Duration(i+1))
	}

	return fmt.Errorf("failed to send message after %d retries: %w", c.maxRetries, lastErr)
}

// Handlers supplies the dynamic content served by bot commands.
type Handlers struct {
	Status func() string
	Latest func() string
}

// ListenForCommands starts a goroutine that answers /status and /latest
// commands until the context is cancelled. Commands from chats other than
// the configured one are ignored.
func (c *Client) ListenForCommands(ctx context.Context, h Handlers) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := c.bot.GetUpdatesChan(u)

	go func() {
		defer c.bot.StopReceivingUpdates()
		for {
			select {
			case <-ctx.Done():
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				c.handleUpdate(update, h)
			}
		}
	}()

	logger.Info("Telegram command listener started")
}

func (c *Client) handleUpdate(update tgbotapi.Update, h Handlers) {
	if update.Message == nil || !update.Message.IsCommand() {
		return
	}
	if update.Message.Chat.ID != c.chatID {
		logger.Warn("Ignoring command from unknown chat %d", update.Message.Chat.ID)
		return
	}

	var reply string
	switch update.Message.Command() {
	case "status":
		if h.Status != nil {
			reply = h.Status()
		}
	case "latest":
		if h.Latest != nil {
			reply = h.Latest()
		}
	default:
		reply = "Unknown command. Available: /status, /latest"
	}
	if reply == "" {
		return
	}

	msg := tgbotapi.NewMessage(c.chatID, reply)
	if _, err := c.bot.Send(msg); err != nil {
		logger.Warn("Failed to reply to /%s: %v", update.Message.Command(), err)
	}
}

// formatPredictions renders predictions into a MarkdownV2 message
func formatPredictions(predictions []models.Prediction) string {
	var b strings.Builder
	b.WriteString("🎱 *Union Lotto Predictions*\n\n")

	// Show generation time once at the top
	if len(predictions) > 0 {
		dateStr := escapeMarkdownV2(predictions[0].GeneratedAt.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(&b, "📅 Generated: %s\n\n", dateStr)
	}

	for i, p := range predictions {
		fmt.Fprintf(&b, "%d\\. *%s*\n", i+1, escapeMarkdownV2(methodLabel(p)))
		fmt.Fprintf(&b, "   🔴 Reds: %s\n", formatBalls(p.RedBalls))
		fmt.Fprintf(&b, "   🔵 Blue: %02d\n\n", p.BlueBall)
	}

	b.WriteString("_For entertainment only\\. Lottery draws are random\\._")
	return b.String()
}

func methodLabel(p models.Prediction) string {
	switch p.Method {
	case models.MethodGlobalFrequency:
		return "Global frequency"
	case models.MethodRecencyWeighted:
		return fmt.Sprintf("Recency weighted (last %d draws)", p.RecentWindow)
	case models.MethodUniformRandom:
		return "Uniform random (empty archive)"
	default:
		return p.Method
	}
}

func formatBalls(balls []int) string {
	parts := make([]string, len(balls))
	for i, ball := range balls {
		parts[i] = fmt.Sprintf("%02d", ball)
	}
	return strings.Join(parts, " ")
}

// escapeMarkdownV2 escapes the characters reserved by Telegram's MarkdownV2 parser
func escapeMarkdownV2(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch r {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
