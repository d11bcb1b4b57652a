package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/sandevgo/cropadvisor/internal/chat"
	"github.com/sandevgo/cropadvisor/internal/core"
	"github.com/sandevgo/cropadvisor/pkg/log"
)

const baseContextKey = "base_context"

const (
	VoiceNotice  = "Voice input is not supported yet. Please type your question."
	maxPhotoSize = 10 << 20
)

const greeting = "🌾 Hello! I'm your farm advisor. Ask me about your crops, soil, irrigation or pests, " +
	"or send a photo of a problem you see in the field. Type /help for commands."

type Bot struct {
	bot      *tele.Bot
	sender   *sender
	sessions *chat.Manager
	router   core.CmdRouter
	ownerID  int64
}

type Option func(*tele.Settings)

// WithAPIURL points the bot at a different Bot API server.
func WithAPIURL(url string) Option {
	return func(s *tele.Settings) {
		s.URL = url
	}
}

// Offline skips the getMe handshake.
func Offline() Option {
	return func(s *tele.Settings) {
		s.Offline = true
	}
}

func NewBot(
	ctx context.Context,
	cfg core.TelegramConfig,
	sessions *chat.Manager,
	router core.CmdRouter,
	opts ...Option,
) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.GetTelegramToken(),
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			log.FromCtx(ctx).Error().Err(err).Msg("telegram handler failed")
		},
	}
	for _, opt := range opts {
		opt(&pref)
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:      b,
		sender:   newSender(b),
		sessions: sessions,
		router:   router,
		ownerID:  cfg.GetTelegramOwnerID(),
	}

	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})
	b.Use(bot.ownerOnly)

	b.Handle("/start", bot.handleStart)
	b.Handle(tele.OnText, bot.handleText)
	b.Handle(tele.OnPhoto, bot.handlePhoto)
	b.Handle(tele.OnVoice, bot.handleVoice)
	b.Handle(tele.OnAudio, bot.handleVoice)

	return bot, nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Int64("owner", b.ownerID).Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return nil
}

// ownerOnly drops updates from everyone but the owner. Owner 0 admits all.
func (b *Bot) ownerOnly(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if !b.allowed(c.Sender()) {
			return nil
		}
		return next(c)
	}
}

func (b *Bot) allowed(u *tele.User) bool {
	if b.ownerID == 0 {
		return true
	}
	return u != nil && u.ID == b.ownerID
}

func sessionID(c tele.Context) string {
	return fmt.Sprintf("telegram-%d", c.Chat().ID)
}

func baseContext(c tele.Context) context.Context {
	if ctx, ok := c.Get(baseContextKey).(context.Context); ok {
		return ctx
	}
	return context.Background()
}

func (b *Bot) handleStart(c tele.Context) error {
	return c.Send(greeting)
}

func (b *Bot) handleText(c tele.Context) error {
	ctx := baseContext(c)
	id := sessionID(c)

	if out, ok := b.router.Execute(ctx, id, c.Text()); ok {
		return b.sender.sendMarkdown(ctx, c.Chat(), out)
	}
	return b.ask(ctx, c, chat.Input{Text: c.Text()})
}

func (b *Bot) handlePhoto(c tele.Context) error {
	ctx := baseContext(c)
	photo := c.Message().Photo
	if photo == nil {
		return nil
	}

	img, err := b.download(&photo.File)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Str("file", photo.FileID).Msg("failed to download photo")
		return c.Send("I couldn't download that photo. Please try sending it again.")
	}

	return b.ask(ctx, c, chat.Input{Text: c.Message().Caption, Image: img})
}

func (b *Bot) handleVoice(c tele.Context) error {
	return c.Send(VoiceNotice)
}

func (b *Bot) download(file *tele.File) (*core.Image, error) {
	rc, err := b.bot.File(file)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxPhotoSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxPhotoSize {
		return nil, fmt.Errorf("photo exceeds %d bytes", maxPhotoSize)
	}
	// Telegram re-encodes photos as JPEG
	return &core.Image{MIMEType: "image/jpeg", Data: data}, nil
}

func (b *Bot) ask(ctx context.Context, c tele.Context, in chat.Input) error {
	logger := log.FromCtx(ctx)
	_ = c.Notify(tele.Typing)

	live := b.sender.live(c.Chat())
	session := b.sessions.Session(ctx, sessionID(c))

	turn, err := session.Submit(ctx, in, func(e chat.Event) {
		if e.Kind == chat.EventDelta {
			live.update(ctx, e.Turn.Text)
		}
	})

	switch {
	case errors.Is(err, chat.ErrCanceled):
		// a newer message in this chat took over
		return live.abandon()
	case errors.Is(err, chat.ErrEmptyInput):
		return nil
	case err != nil:
		logger.Error().Err(err).Msg("submit failed")
		_ = live.abandon()
		return c.Send("Sorry, something went wrong. Please try again.")
	}

	return live.finish(ctx, turn.Text)
}
