package service

import (
	"context"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"signal_bot/internal/modules/config"
	restsvc "signal_bot/internal/modules/mexc_rest/service"
	"signal_bot/internal/modules/telegram_bot/service/pg"
	"signal_bot/pkg/logger"
)

// Telegram — доставка тревог и команды подписчиков. Ядро про получателей
// не знает: сюда приходит уже готовый AlertEvent.
type Telegram struct {
	bot  *tgbot.BotAPI
	cfg  *config.Config
	repo *pg.Subscriber
	rest *restsvc.Client
}

func NewTelegram(cfg *config.Config, repo *pg.Subscriber, rest *restsvc.Client) (*Telegram, error) {
	b, err := tgbot.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, err
	}
	return &Telegram{
		bot:  b,
		cfg:  cfg,
		repo: repo,
		rest: rest,
	}, nil
}

// Start: меню команд + long-polling.
func (t *Telegram) Start(ctx context.Context) error {
	if err := t.repo.Load(ctx); err != nil {
		logger.Error("load subscribers: %v", err)
	}

	menu := tgbot.NewSetMyCommands(
		tgbot.BotCommand{Command: "start", Description: "Запуск и справка"},
		tgbot.BotCommand{Command: "subscribe", Description: "Включить тревоги pump/dump и EMA"},
		tgbot.BotCommand{Command: "unsubscribe", Description: "Выключить тревоги"},
		tgbot.BotCommand{Command: "timelist", Description: "Листинги на неделю вперёд"},
		tgbot.BotCommand{Command: "coinlist", Description: "Листинги за прошлую неделю"},
	)
	if _, err := t.bot.Request(menu); err != nil {
		logger.Error("set bot commands: %v", err)
	}

	u := tgbot.NewUpdate(0)
	u.Timeout = 30
	u.AllowedUpdates = []string{"message"}

	updates := t.bot.GetUpdatesChan(u)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case upd := <-updates:
				if upd.Message != nil && upd.Message.IsCommand() {
					t.handleCommand(ctx, upd.Message)
				}
			}
		}
	}()
	return nil
}

func (t *Telegram) Stop() { t.bot.StopReceivingUpdates() }

func (t *Telegram) send(chatID int64, text string) {
	msg := tgbot.NewMessage(chatID, text)
	msg.ParseMode = tgbot.ModeMarkdown
	msg.DisableWebPagePreview = true
	if _, err := t.bot.Send(msg); err != nil {
		// доставка best-effort: логируем и едем дальше
		logger.Error("telegram send to %d: %v", chatID, err)
	}
}

// Broadcast — рассылка всем подписчикам.
func (t *Telegram) Broadcast(text string) {
	if text == "" {
		return
	}
	for _, chatID := range t.repo.All() {
		t.send(chatID, text)
	}
}

// SendService — сообщение в сервисный чат, если настроен.
func (t *Telegram) SendService(text string) {
	if t.cfg.Telegram.ChatID == 0 {
		return
	}
	t.send(t.cfg.Telegram.ChatID, text)
}
