// Package telegram is the Telegram surface of the service: the command bot
// subscribers talk to and the transport the dispatcher delivers through.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	tb "gopkg.in/telebot.v3"

	"github.com/lexibot/word-of-the-day-bot/internal/dal"
	"github.com/lexibot/word-of-the-day-bot/internal/data"
	"github.com/lexibot/word-of-the-day-bot/internal/message"
	"github.com/lexibot/word-of-the-day-bot/internal/subscription"
	"github.com/lexibot/word-of-the-day-bot/internal/words"
)

const (
	commandStart       = "/start"
	commandSubscribe   = "/subscribe"
	commandUnsubscribe = "/unsubscribe"
	commandSettings    = "/settings"
	commandConfig      = "/config"
	commandConfigLink  = "/config_link"
	commandWord        = "/word"
	commandWordDate    = "/word_date"
	commandFind        = "/find"
	commandAppend      = "/append"

	somethingWentWrongMsg = "something went wrong"

	processTimeout = 10 * time.Second
)

const startMsg = `Hello, I deliver the Word of the Day on your schedule.

/subscribe to start receiving words
/unsubscribe to stop
/settings to see your current configuration
/config to change it, e.g. /config timezone Europe/Kyiv
/config_link to configure through the web portal
/word for today's word
/word_date YYYY-MM-DD for the word of a specific day
/find <word> to look up when a word was featured`

type (
	LinkSettings struct {
		BaseURL string
		TTL     time.Duration
	}

	Bot struct {
		bot   *tb.Bot
		store *subscription.Store
		words *words.Source
		links dal.ConfigLinkRepository

		linkSettings LinkSettings
		adminIDs     []int64

		middlewares []tb.MiddlewareFunc

		log *slog.Logger
	}
)

func NewBot(
	token string,
	store *subscription.Store,
	words *words.Source,
	links dal.ConfigLinkRepository,
	linkSettings LinkSettings,
	adminIDs []int64,
	log *slog.Logger,
	middlewares ...tb.MiddlewareFunc,
) (*Bot, error) {
	b, err := tb.NewBot(tb.Settings{
		Token: token,
		Poller: &tb.LongPoller{
			Timeout: 1 * time.Minute,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	return &Bot{
		bot:          b,
		store:        store,
		words:        words,
		links:        links,
		linkSettings: linkSettings,
		adminIDs:     adminIDs,
		middlewares:  middlewares,
		log:          log,
	}, nil
}

func (b *Bot) Start() {
	b.bot.Handle(commandStart, b.HandleStart, b.middlewares...)
	b.bot.Handle(commandSubscribe, b.HandleSubscribe, b.middlewares...)
	b.bot.Handle(commandUnsubscribe, b.HandleUnsubscribe, b.middlewares...)
	b.bot.Handle(commandSettings, b.HandleSettings, b.middlewares...)
	b.bot.Handle(commandConfig, b.HandleConfig, b.middlewares...)
	b.bot.Handle(commandConfigLink, b.HandleConfigLink, b.middlewares...)
	b.bot.Handle(commandWord, b.HandleWord, b.middlewares...)
	b.bot.Handle(commandWordDate, b.HandleWordDate, b.middlewares...)
	b.bot.Handle(commandFind, b.HandleFind, b.middlewares...)
	b.bot.Handle(commandAppend, b.HandleAppend, append(b.middlewares, Admins(b.adminIDs))...)

	b.bot.Start()
}

func (b *Bot) Stop() {
	b.bot.Stop()
}

func (b *Bot) HandleStart(m tb.Context) error {
	return m.Reply(startMsg)
}

func (b *Bot) HandleSubscribe(m tb.Context) error {
	ctx, cancel := processCtx()
	defer cancel()

	err := b.store.Subscribe(ctx, identityOf(m))
	switch {
	case errors.Is(err, subscription.ErrAlreadySubscribed):
		return m.Reply("already subscribed")
	case errors.Is(err, subscription.ErrGroupLimitReached):
		return m.Reply("subscription limit for this group is reached")
	case err != nil:
		b.log.Error("failed to subscribe", "error", err)
		return m.Reply(somethingWentWrongMsg)
	}

	return m.Reply("subscribed; words arrive daily at 00:00 UTC until you /config a schedule")
}

func (b *Bot) HandleUnsubscribe(m tb.Context) error {
	ctx, cancel := processCtx()
	defer cancel()

	if err := b.store.Unsubscribe(ctx, identityOf(m)); err != nil {
		b.log.Error("failed to unsubscribe", "error", err)
		return m.Reply(somethingWentWrongMsg)
	}

	return m.Reply("unsubscribed")
}

func (b *Bot) HandleSettings(m tb.Context) error {
	sub, ok := b.store.Get(identityOf(m))
	if !ok {
		return m.Reply("not subscribed; use /subscribe first")
	}

	return m.Reply(renderSettings(sub))
}

func (b *Bot) HandleConfig(m tb.Context) error {
	ctx, cancel := processCtx()
	defer cancel()

	id := identityOf(m)
	sub, ok := b.store.Get(id)
	if !ok {
		return m.Reply("not subscribed; use /subscribe first")
	}

	patch, err := parseConfigArgs(m.Args(), sub)
	if err != nil {
		return m.Reply(err.Error() + "\n\n" + configUsageMsg)
	}

	if err := b.store.Configure(ctx, id, patch); err != nil {
		if errors.Is(err, subscription.ErrInvalidTimezone) {
			return m.Reply("unknown timezone; use an IANA name like Europe/Kyiv")
		}
		b.log.Error("failed to configure", "error", err)
		return m.Reply(somethingWentWrongMsg)
	}

	updated, _ := b.store.Get(id)
	return m.Reply("updated\n\n" + renderSettings(updated))
}

func (b *Bot) HandleConfigLink(m tb.Context) error {
	ctx, cancel := processCtx()
	defer cancel()

	id := identityOf(m)
	if !b.store.IsSubscribed(id) {
		return m.Reply("not subscribed; use /subscribe first")
	}

	now := time.Now()
	link := dal.ConfigLink{
		Token:     uuid.NewString(),
		Identity:  id,
		CreatedAt: now,
		ExpiresAt: now.Add(b.linkSettings.TTL),
	}
	if err := b.links.InsertConfigLink(ctx, link); err != nil {
		b.log.Error("failed to create config link", "error", err)
		return m.Reply(somethingWentWrongMsg)
	}

	return m.Reply(fmt.Sprintf("%s/config?token=%s\n\nthe link is valid for %s and works once",
		b.linkSettings.BaseURL, link.Token, b.linkSettings.TTL))
}

func (b *Bot) HandleWord(m tb.Context) error {
	ctx, cancel := processCtx()
	defer cancel()

	prefs, loc := b.prefsOf(identityOf(m))
	now := time.Now().In(loc)

	entry, err := b.words.WordForDate(ctx, now.Format(dal.DateLayout))
	if err != nil {
		b.log.Error("failed to get word", "error", err)
		return m.Reply(somethingWentWrongMsg)
	}

	return m.Reply(message.Render(prefs, entry, now))
}

func (b *Bot) HandleWordDate(m tb.Context) error {
	ctx, cancel := processCtx()
	defer cancel()

	args := m.Args()
	if len(args) != 1 {
		return m.Reply("usage: /word_date YYYY-MM-DD")
	}
	date, err := time.Parse(dal.DateLayout, args[0])
	if err != nil {
		return m.Reply("usage: /word_date YYYY-MM-DD")
	}

	prefs, loc := b.prefsOf(identityOf(m))
	now := time.Now().In(loc)
	if date.Format(dal.DateLayout) > now.Format(dal.DateLayout) {
		return m.Reply("that day has not come yet")
	}

	entry, err := b.words.WordForDate(ctx, date.Format(dal.DateLayout))
	if err != nil {
		b.log.Error("failed to get word", "error", err)
		return m.Reply(somethingWentWrongMsg)
	}

	today := date.Format(dal.DateLayout) == now.Format(dal.DateLayout)
	return m.Reply(message.RenderForDate(prefs, entry, date, today))
}

func (b *Bot) HandleFind(m tb.Context) error {
	ctx, cancel := processCtx()
	defer cancel()

	word := strings.TrimSpace(m.Message().Payload)
	if word == "" {
		return m.Reply("usage: /find <word>")
	}

	dates, err := b.words.FindDates(ctx, word)
	if err != nil {
		b.log.Error("failed to find word dates", "error", err)
		return m.Reply(somethingWentWrongMsg)
	}
	if len(dates) == 0 {
		return m.Reply(fmt.Sprintf("%q has not been featured", word))
	}

	return m.Reply(fmt.Sprintf("%q was featured on:\n- %s", word, strings.Join(dates, "\n- ")))
}

func (b *Bot) HandleAppend(m tb.Context) error {
	ctx, cancel := processCtx()
	defer cancel()

	entry, err := data.ParseEntry(m.Message().Payload)
	if err != nil {
		return m.Reply(fmt.Sprintf("%v\n\nusage: /append [date;]word;ipa;part of speech;definition", err))
	}

	stored, err := b.words.Append(ctx, entry)
	if err != nil {
		b.log.Error("failed to append word", "error", err)
		return m.Reply(somethingWentWrongMsg)
	}

	return m.Reply(fmt.Sprintf("%q scheduled for %s", stored.Word, stored.Date))
}

// prefsOf resolves format preferences and the timezone the requester sees
// dates in. Unsubscribed requesters get the defaults.
func (b *Bot) prefsOf(id dal.Identity) (dal.FormatPrefs, *time.Location) {
	sub, ok := b.store.Get(id)
	if !ok {
		sub = dal.DefaultSubscriber(id)
	}

	loc, err := time.LoadLocation(sub.Timezone)
	if err != nil {
		loc = time.UTC
	}
	return sub.Prefs, loc
}

func identityOf(c tb.Context) dal.Identity {
	chat := c.Chat()
	if chat.Type == tb.ChatPrivate {
		return dal.UserIdentity(chat.ID)
	}

	var threadID int64
	if m := c.Message(); m != nil {
		threadID = int64(m.ThreadID)
	}
	return dal.ChannelIdentity(chat.ID, threadID)
}

func processCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), processTimeout)
}
