package telegram

import (
	"context"
	"errors"
	"time"

	tb "gopkg.in/telebot.v3"

	"github.com/lexibot/word-of-the-day-bot/internal/transport"
)

const forbiddenCode = 403

// SendDirect delivers a message to a private chat.
func (b *Bot) SendDirect(ctx context.Context, userID int64, text string, silent bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	opts := &tb.SendOptions{DisableNotification: silent}
	if _, err := b.bot.Send(tb.ChatID(userID), text, opts); err != nil {
		return classifySendError(err)
	}
	return nil
}

// SendChannel delivers a message to a topic thread inside a group chat.
func (b *Bot) SendChannel(ctx context.Context, groupID, channelID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	opts := &tb.SendOptions{ThreadID: int(channelID)}
	if _, err := b.bot.Send(tb.ChatID(groupID), text, opts); err != nil {
		return classifySendError(err)
	}
	return nil
}

func classifySendError(err error) error {
	var flood tb.FloodError
	if errors.As(err, &flood) {
		return &transport.SendError{
			Kind:       transport.ErrorRateLimited,
			RetryAfter: time.Duration(flood.RetryAfter) * time.Second,
			Cause:      err,
		}
	}

	var tbErr *tb.Error
	if errors.As(err, &tbErr) {
		switch {
		case errors.Is(err, tb.ErrChatNotFound):
			return &transport.SendError{Kind: transport.ErrorNotFound, Cause: err}
		case tbErr.Code == forbiddenCode:
			return &transport.SendError{Kind: transport.ErrorForbidden, Cause: err}
		}
	}

	return &transport.SendError{Kind: transport.ErrorOther, Cause: err}
}
