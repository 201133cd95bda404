// Package telegram is the chat transport: it long-polls the Bot API,
// feeds commands and confirmations into the orchestrator and owns all
// user-facing rendering.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/requestarr/requestarr/internal/config"
	"github.com/requestarr/requestarr/internal/orchestrator"
)

const apiBase = "https://api.telegram.org/bot"

// Callback data prefixes. Telegram caps callback data at 64 bytes; a
// prefix plus a UUID fits comfortably.
const (
	callbackConfirm = "confirm:"
	callbackCancel  = "cancel:"
)

var ErrTokenMissing = errors.New("telegram bot token is not configured")

// Core is the orchestrator surface the transport consumes.
type Core interface {
	HandleCommand(ctx context.Context, chatID int64, text string) (*orchestrator.CommandResult, error)
	HandleConfirmation(ctx context.Context, chatID int64, actionID string) (*orchestrator.ConfirmResult, error)
	Cancel(ctx context.Context, chatID int64, actionID string) error
}

// Bot runs the Telegram transport.
type Bot struct {
	token       string
	baseURL     string
	pollTimeout int
	httpClient  *http.Client
	core        Core
	logger      zerolog.Logger
}

// New creates a new bot transport.
func New(cfg config.TelegramConfig, core Core, logger zerolog.Logger) *Bot {
	pollTimeout := cfg.PollTimeout
	if pollTimeout <= 0 {
		pollTimeout = 30
	}
	return &Bot{
		token:       cfg.Token,
		baseURL:     apiBase,
		pollTimeout: pollTimeout,
		httpClient: &http.Client{
			// Long poll plus headroom.
			Timeout: time.Duration(pollTimeout+15) * time.Second,
		},
		core:   core,
		logger: logger.With().Str("component", "telegram").Logger(),
	}
}

// IsConfigured returns true if the bot token is set.
func (b *Bot) IsConfigured() bool {
	return b.token != ""
}

// Run polls for updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	if !b.IsConfigured() {
		return ErrTokenMissing
	}

	b.logger.Info().Msg("Telegram transport started")

	var offset int64
	for {
		select {
		case <-ctx.Done():
			b.logger.Info().Msg("Telegram transport stopped")
			return ctx.Err()
		default:
		}

		updates, err := b.getUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.logger.Error().Err(err).Msg("Failed to fetch updates")
			// Back off briefly so a broken network does not spin.
			select {
			case <-time.After(3 * time.Second):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && strings.TrimSpace(update.Message.Text) != "":
		b.handleMessage(ctx, update.Message)
	case update.ChannelPost != nil && strings.TrimSpace(update.ChannelPost.Text) != "":
		b.handleMessage(ctx, update.ChannelPost)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *message) {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	// Accept both bare text and a /request command.
	if strings.HasPrefix(text, "/") {
		parts := strings.SplitN(text, " ", 2)
		if !strings.HasPrefix(parts[0], "/request") {
			return
		}
		if len(parts) < 2 {
			b.reply(ctx, chatID, msg.MessageID, "Tell me what to look for, e.g. /request The Matrix", nil)
			return
		}
		text = strings.TrimSpace(parts[1])
	}

	b.logger.Info().Int64("chatId", chatID).Str("text", text).Msg("Command received")

	result, err := b.core.HandleCommand(ctx, chatID, text)
	if err != nil {
		b.reply(ctx, chatID, msg.MessageID, renderFailure(err), nil)
		return
	}

	replyText, keyboard := renderResult(result)
	b.reply(ctx, chatID, msg.MessageID, replyText, keyboard)
}

func (b *Bot) handleCallback(ctx context.Context, cb *callbackQuery) {
	// Acknowledge first so the client stops its spinner.
	if err := b.answerCallbackQuery(ctx, cb.ID); err != nil {
		b.logger.Warn().Err(err).Msg("Failed to answer callback query")
	}

	if cb.Message == nil || cb.Data == "" {
		return
	}
	chatID := cb.Message.Chat.ID

	var outcome string
	switch {
	case strings.HasPrefix(cb.Data, callbackConfirm):
		actionID := strings.TrimPrefix(cb.Data, callbackConfirm)
		result, err := b.core.HandleConfirmation(ctx, chatID, actionID)
		if err != nil {
			outcome = renderFailure(err)
		} else {
			outcome = renderSubmitted(result)
		}
	case strings.HasPrefix(cb.Data, callbackCancel):
		actionID := strings.TrimPrefix(cb.Data, callbackCancel)
		if err := b.core.Cancel(ctx, chatID, actionID); err != nil {
			outcome = renderFailure(err)
		} else {
			outcome = "Request cancelled."
		}
	default:
		b.logger.Warn().Str("data", cb.Data).Msg("Unrecognized callback data")
		return
	}

	if err := b.editMessageText(ctx, chatID, cb.Message.MessageID, outcome); err != nil {
		b.logger.Error().Err(err).Int64("chatId", chatID).Msg("Failed to edit message")
	}
}

func (b *Bot) reply(ctx context.Context, chatID int64, replyTo int64, text string, keyboard *inlineKeyboardMarkup) {
	payload := sendMessageRequest{
		ChatID:           chatID,
		Text:             text,
		ParseMode:        "HTML",
		ReplyToMessageID: replyTo,
		ReplyMarkup:      keyboard,
	}
	if err := b.apiRequest(ctx, "sendMessage", payload, nil); err != nil {
		b.logger.Error().Err(err).Int64("chatId", chatID).Msg("Failed to send message")
	}
}

func (b *Bot) getUpdates(ctx context.Context, offset int64) ([]update, error) {
	payload := getUpdatesRequest{
		Offset:         offset,
		Timeout:        b.pollTimeout,
		AllowedUpdates: []string{"message", "channel_post", "callback_query"},
	}

	var updates []update
	if err := b.apiRequest(ctx, "getUpdates", payload, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

func (b *Bot) answerCallbackQuery(ctx context.Context, callbackID string) error {
	return b.apiRequest(ctx, "answerCallbackQuery", map[string]string{
		"callback_query_id": callbackID,
	}, nil)
}

func (b *Bot) editMessageText(ctx context.Context, chatID int64, messageID int64, text string) error {
	return b.apiRequest(ctx, "editMessageText", editMessageRequest{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
		ParseMode: "HTML",
	}, nil)
}

// apiRequest performs a Bot API call and decodes result when non-nil.
func (b *Bot) apiRequest(ctx context.Context, method string, payload interface{}, result interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", method, err)
	}

	url := fmt.Sprintf("%s%s/%s", b.baseURL, b.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	var envelope apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	if !envelope.OK {
		return fmt.Errorf("telegram API error on %s: %s (code %d)", method, envelope.Description, envelope.ErrorCode)
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(envelope.Result, result); err != nil {
		return fmt.Errorf("failed to decode %s result: %w", method, err)
	}
	return nil
}
