package telegram

import (
	"context"
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/sandevgo/cropadvisor/pkg/conv"
	"github.com/sandevgo/cropadvisor/pkg/log"
)

// Markdown chunks are cut below the message limit so HTML escaping still fits.
const markdownChunkLen = 3500

// editInterval throttles live edits; Telegram rate-limits edits per chat.
const editInterval = 1500 * time.Millisecond

type sender struct {
	bot *tele.Bot
}

func newSender(bot *tele.Bot) *sender {
	return &sender{bot: bot}
}

// sendMarkdown converts Markdown to Telegram HTML and sends it in chunks if needed.
func (s *sender) sendMarkdown(ctx context.Context, to tele.Recipient, md string) error {
	for i, chunk := range conv.SplitMessage(md, markdownChunkLen) {
		if _, err := s.send(ctx, to, chunk); err != nil {
			log.FromCtx(ctx).Error().Err(err).Int("chunk", i).Msg("failed to send telegram chunk")
			return err
		}
	}
	return nil
}

// send delivers one Markdown chunk as HTML, retrying as plain text when
// Telegram rejects the markup.
func (s *sender) send(ctx context.Context, to tele.Recipient, md string) (*tele.Message, error) {
	html := strings.TrimSpace(conv.MarkdownToTelegramHTML([]byte(md)))
	if html == "" {
		return nil, nil
	}
	msg, err := s.bot.Send(to, html, tele.ModeHTML)
	if err == nil {
		return msg, nil
	}
	log.FromCtx(ctx).Warn().Err(err).Msg("html rejected, sending plain text")
	return s.bot.Send(to, conv.MarkdownToPlainText([]byte(md)))
}

func (s *sender) edit(ctx context.Context, msg *tele.Message, md string) error {
	html := strings.TrimSpace(conv.MarkdownToTelegramHTML([]byte(md)))
	if html == "" {
		return nil
	}
	if _, err := s.bot.Edit(msg, html, tele.ModeHTML); err == nil {
		return nil
	}
	_, err := s.bot.Edit(msg, conv.MarkdownToPlainText([]byte(md)))
	return err
}

// liveMessage shows a streaming answer by editing one placeholder message.
type liveMessage struct {
	s        *sender
	to       tele.Recipient
	msg      *tele.Message
	shown    string
	lastEdit time.Time
	now      func() time.Time
}

func (s *sender) live(to tele.Recipient) *liveMessage {
	return &liveMessage{s: s, to: to, now: time.Now}
}

// update shows the partial answer, at most once per editInterval.
func (l *liveMessage) update(ctx context.Context, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	if l.msg != nil && l.now().Sub(l.lastEdit) < editInterval {
		return
	}

	preview := conv.SplitMessage(text, markdownChunkLen)[0] + " …"
	if preview == l.shown {
		return
	}

	var err error
	if l.msg == nil {
		l.msg, err = l.s.bot.Send(l.to, preview)
	} else {
		_, err = l.s.bot.Edit(l.msg, preview)
	}
	if err != nil {
		log.FromCtx(ctx).Debug().Err(err).Msg("live update failed")
		return
	}
	l.shown = preview
	l.lastEdit = l.now()
}

// finish replaces the preview with the formatted answer and sends any
// remaining chunks as new messages.
func (l *liveMessage) finish(ctx context.Context, md string) error {
	chunks := conv.SplitMessage(md, markdownChunkLen)
	if len(chunks) == 0 {
		return l.abandon()
	}

	first := chunks[0]
	if l.msg != nil {
		if err := l.s.edit(ctx, l.msg, first); err != nil {
			return err
		}
	} else if _, err := l.s.send(ctx, l.to, first); err != nil {
		return err
	}

	for _, chunk := range chunks[1:] {
		if _, err := l.s.send(ctx, l.to, chunk); err != nil {
			return err
		}
	}
	return nil
}

// abandon removes the preview of an answer that was superseded.
func (l *liveMessage) abandon() error {
	if l.msg == nil {
		return nil
	}
	err := l.s.bot.Delete(l.msg)
	l.msg = nil
	return err
}
