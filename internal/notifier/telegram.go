package notifier

import (
	"fmt"
	"log"

	"monitor-apartamentos/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramSender envia o mesmo resumo das notificações para um chat
// do Telegram. Canal opcional: só é criado quando o token está
// configurado.
type TelegramSender struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramSender inicializa o bot do Telegram
func NewTelegramSender(token string, chatID int64) (*TelegramSender, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		if err.Error() == "Unauthorized" {
			return nil, fmt.Errorf("token do Telegram inválido ou expirado. Verifique o TELEGRAM_BOT_TOKEN no arquivo .env")
		}
		return nil, fmt.Errorf("erro ao conectar com Telegram: %v", err)
	}
	bot.Debug = false

	log.Printf("Bot autorizado como: %s", bot.Self.UserName)
	return &TelegramSender{bot: bot, chatID: chatID}, nil
}

// Send envia o resumo para o chat configurado
func (t *TelegramSender) Send(notifications []models.Notification) error {
	subject, body, err := Digest(notifications)
	if err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(t.chatID, subject+"\n\n"+body)
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("erro ao enviar mensagem: %v", err)
	}
	return nil
}
