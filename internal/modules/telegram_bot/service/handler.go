package service

import (
	"context"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"signal_bot/pkg/logger"
)

const startText = "🤖 Сканер MEXC Futures — тревоги в реальном времени\n\n" +
	"✅ Стрим всех USDT-фьючерсов\n" +
	"✅ Pump/Dump от подвижного референса\n" +
	"✅ Касания EMA-200 по нескольким таймфреймам\n\n" +
	"Команды:\n" +
	"/subscribe — включить тревоги\n" +
	"/unsubscribe — выключить тревоги\n" +
	"/timelist — листинги на неделю вперёд\n" +
	"/coinlist — листинги за прошлую неделю"

func (t *Telegram) handleCommand(ctx context.Context, msg *tgbot.Message) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		if err := t.repo.Add(ctx, chatID); err != nil {
			logger.Error("subscribe %d: %v", chatID, err)
		}
		t.send(chatID, startText)

	case "subscribe":
		if err := t.repo.Add(ctx, chatID); err != nil {
			logger.Error("subscribe %d: %v", chatID, err)
			t.send(chatID, "❗️ Не получилось, попробуйте ещё раз")
			return
		}
		t.send(chatID, "Тревоги включены!")

	case "unsubscribe":
		if err := t.repo.Remove(ctx, chatID); err != nil {
			logger.Error("unsubscribe %d: %v", chatID, err)
			t.send(chatID, "❗️ Не получилось, попробуйте ещё раз")
			return
		}
		t.send(chatID, "Тревоги выключены!")

	case "timelist":
		go t.handleTimelist(ctx, chatID)

	case "coinlist":
		go t.handleCoinlist(ctx, chatID)
	}
}

func (t *Telegram) handleTimelist(ctx context.Context, chatID int64) {
	coins, err := t.rest.UpcomingListings(ctx, 7)
	if err != nil {
		logger.Error("timelist: %v", err)
		t.send(chatID, "❌ Календарь MEXC сейчас недоступен")
		return
	}
	if len(coins) == 0 {
		t.send(chatID, "📅 На неделю вперёд листингов нет")
		return
	}
	t.send(chatID, FormatListings("📅 *ЛИСТИНГИ НА НЕДЕЛЮ*", "🆕", coins))
}

func (t *Telegram) handleCoinlist(ctx context.Context, chatID int64) {
	coins, err := t.rest.RecentListings(ctx, 7)
	if err != nil {
		logger.Error("coinlist: %v", err)
		t.send(chatID, "❌ Календарь MEXC сейчас недоступен")
		return
	}
	if len(coins) == 0 {
		t.send(chatID, "📋 За неделю листингов не было")
		return
	}
	t.send(chatID, FormatListings("📋 *ЛИСТИНГИ ЗА НЕДЕЛЮ*", "✅", coins))
}
