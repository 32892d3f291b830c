// Package telegram plays quizzes in Telegram chats: a user sends a PDF or
// text document, the bot extracts its questions and asks them one by one
// with inline keyboards.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/mind-engage/mindengage-quiz/internal/extract"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
	"github.com/mind-engage/mindengage-quiz/internal/service"
)

// API is the subset of *tgbotapi.BotAPI the bot uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Quiz is the part of *service.Service the bot drives.
type Quiz interface {
	Ingest(ctx context.Context, userID, path string, key extract.AnswerKey) (service.Prompt, error)
	SessionOwner(ctx context.Context, sessionID string) (string, error)
	OptionText(ctx context.Context, sessionID string, ordinal, index int) (string, error)
	SubmitAnswer(ctx context.Context, sessionID string, ordinal int, choice string) (service.Outcome, error)
	Report(ctx context.Context, sessionID string) (quiz.Report, error)
	OpenBlob(key string) (io.ReadCloser, error)
}

type Bot struct {
	api      API
	quiz     Quiz
	maxBytes int64
	client   *http.Client
}

func New(api API, q Quiz, maxBytes int64) *Bot {
	return &Bot{api: api, quiz: q, maxBytes: maxBytes, client: &http.Client{Timeout: 2 * time.Minute}}
}

// NewFromToken connects to the Bot API.
func NewFromToken(token string, q Quiz, maxBytes int64) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	log.Printf("telegram: authorised on account %s", api.Self.UserName)
	return New(api, q, maxBytes), nil
}

// Run long-polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func userID(u *tgbotapi.User) string {
	if u == nil {
		return ""
	}
	return "tg|" + strconv.FormatInt(u.ID, 10)
}

func (b *Bot) handleMessage(ctx context.Context, m *tgbotapi.Message) {
	chatID := m.Chat.ID
	switch {
	case m.Document != nil:
		b.handleDocument(ctx, m)
	case m.Command() == "start" || m.Command() == "help":
		b.sendText(chatID, helpText)
	default:
		b.sendText(chatID, "Send me a PDF or TXT file with numbered multiple-choice questions.")
	}
}

func (b *Bot) handleDocument(ctx context.Context, m *tgbotapi.Message) {
	chatID := m.Chat.ID
	doc := m.Document
	ext := strings.ToLower(filepath.Ext(doc.FileName))
	if ext != ".pdf" && ext != ".txt" {
		b.sendText(chatID, "❌ Only PDF and TXT documents are supported.")
		return
	}
	if b.maxBytes > 0 && int64(doc.FileSize) > b.maxBytes {
		b.sendText(chatID, "❌ That document is too large.")
		return
	}

	var key extract.AnswerKey
	if strings.TrimSpace(m.Caption) != "" {
		k, skipped, err := extract.ParseAnswerKey(strings.NewReader(m.Caption))
		if err == nil && len(k) > 0 {
			key = k
		}
		if len(skipped) > 0 {
			b.sendText(chatID, fmt.Sprintf("⚠️ Ignored %d answer key row(s) in the caption.", len(skipped)))
		}
	}

	b.sendText(chatID, "✅ Got your document, extracting questions...")
	path, err := b.download(ctx, doc.FileID, ext)
	if err != nil {
		log.Printf("telegram: download %s: %v", doc.FileID, err)
		b.sendText(chatID, "❌ Could not download the document. Please try again.")
		return
	}
	defer os.Remove(path)

	p, err := b.quiz.Ingest(ctx, userID(m.From), path, key)
	if err != nil {
		b.sendText(chatID, errorText(err))
		return
	}
	b.sendText(chatID, fmt.Sprintf("📚 Found %d questions. Let's go!", p.Total))
	b.sendQuestion(chatID, p)
}

func (b *Bot) download(ctx context.Context, fileID, ext string) (string, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download: status %s", resp.Status)
	}

	tmp, err := os.CreateTemp("", "quiz-tg-*"+ext)
	if err != nil {
		return "", err
	}
	var body io.Reader = resp.Body
	if b.maxBytes > 0 {
		body = io.LimitReader(resp.Body, b.maxBytes)
	}
	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), tmp.Close()
}

func (b *Bot) sendQuestion(chatID int64, p service.Prompt) {
	if p.Image != nil && p.Image.Key != "" {
		b.sendImage(chatID, p.Image.Key)
	}
	msg := tgbotapi.NewMessage(chatID, formatQuestion(p))
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, opt := range p.Options {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(buttonLabel(i, opt), callbackData(p.SessionID, p.Ordinal, i)),
		))
	}
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("telegram: send question: %v", err)
	}
}

func (b *Bot) sendImage(chatID int64, key string) {
	rc, err := b.quiz.OpenBlob(key)
	if err != nil {
		log.Printf("telegram: open image %s: %v", key, err)
		return
	}
	defer rc.Close()
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileReader{Name: filepath.Base(key), Reader: rc})
	if _, err := b.api.Send(photo); err != nil {
		log.Printf("telegram: send image: %v", err)
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	sessionID, ordinal, option, ok := parseCallback(cb.Data)
	if !ok || cb.Message == nil {
		b.answerCallback(cb.ID, "Unknown action.")
		return
	}
	chatID := cb.Message.Chat.ID

	out, err := b.submit(ctx, userID(cb.From), sessionID, ordinal, option)
	if err != nil {
		if errors.Is(err, quiz.ErrStaleSubmission) {
			b.answerCallback(cb.ID, "That question was already answered.")
			return
		}
		b.answerCallback(cb.ID, "")
		b.sendText(chatID, errorText(err))
		return
	}
	b.answerCallback(cb.ID, "")
	b.clearKeyboard(chatID, cb.Message.MessageID)
	b.sendText(chatID, formatVerdict(out.Verdict.Record))

	if out.Next != nil {
		b.sendQuestion(chatID, *out.Next)
		return
	}
	b.sendReport(ctx, chatID, sessionID)
}

func (b *Bot) submit(ctx context.Context, user, sessionID string, ordinal, option int) (service.Outcome, error) {
	owner, err := b.quiz.SessionOwner(ctx, sessionID)
	if err != nil {
		return service.Outcome{}, err
	}
	if owner != user {
		return service.Outcome{}, quiz.ErrUnknownSession
	}
	choice, err := b.quiz.OptionText(ctx, sessionID, ordinal, option)
	if err != nil {
		return service.Outcome{}, err
	}
	return b.quiz.SubmitAnswer(ctx, sessionID, ordinal, choice)
}

func (b *Bot) sendReport(ctx context.Context, chatID int64, sessionID string) {
	rep, err := b.quiz.Report(ctx, sessionID)
	if err != nil {
		b.sendText(chatID, errorText(err))
		return
	}
	b.sendText(chatID, formatReport(rep))

	var buf strings.Builder
	if err := quiz.WriteCSV(&buf, rep); err != nil {
		log.Printf("telegram: report csv: %v", err)
		return
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: "quiz-report.csv", Bytes: []byte(buf.String())})
	if _, err := b.api.Send(doc); err != nil {
		log.Printf("telegram: send report: %v", err)
	}
}

func (b *Bot) answerCallback(id, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(id, text)); err != nil {
		log.Printf("telegram: answer callback: %v", err)
	}
}

func (b *Bot) clearKeyboard(chatID int64, messageID int) {
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID,
		tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}})
	if _, err := b.api.Request(edit); err != nil {
		log.Printf("telegram: clear keyboard: %v", err)
	}
}

func (b *Bot) sendText(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Printf("telegram: send message: %v", err)
	}
}
