package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contém as configurações da aplicação
type Config struct {
	DatabasePath string

	SpreadsheetID         string
	GoogleCredentialsPath string
	ApartmentsTab         string
	HistoryTab            string
	LocalSheetsPath       string
	CSVOutputPath         string

	SMTPHost        string
	SMTPPort        int
	EmailSender     string
	EmailPassword   string
	EmailRecipients []string

	TelegramBotToken string
	TelegramChatID   int64

	PullInterval  time.Duration // idade máxima de um dump antes de re-coletar
	Throttle      time.Duration // espera mínima entre coletas
	CheckInterval time.Duration // intervalo do ciclo em modo daemon
}

// Load carrega as configurações das variáveis de ambiente
func Load() (*Config, error) {
	spreadsheetID := os.Getenv("SPREADSHEET_ID")
	if spreadsheetID == "" {
		return nil, fmt.Errorf("SPREADSHEET_ID não configurado")
	}

	cfg := &Config{
		DatabasePath: getEnv("DATABASE_PATH", "./dumps.db"),

		SpreadsheetID:         spreadsheetID,
		GoogleCredentialsPath: getEnv("GOOGLE_CREDENTIALS_PATH", "./secrets/sa.json"),
		ApartmentsTab:         getEnv("APARTMENTS_TAB", "Apartments"),
		HistoryTab:            getEnv("HISTORY_TAB", "History"),
		LocalSheetsPath:       getEnv("LOCAL_SHEETS_PATH", "./sheets_data.json"),
		CSVOutputPath:         getEnv("CSV_OUTPUT_PATH", "./history.csv"),

		SMTPHost:      getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:      getEnvInt("SMTP_PORT", 587),
		EmailSender:   os.Getenv("EMAIL_SENDER"),
		EmailPassword: os.Getenv("EMAIL_PASSWORD"),

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),

		PullInterval:  time.Duration(getEnvInt("PULL_INTERVAL_HOURS", 24)) * time.Hour,
		Throttle:      time.Duration(getEnvInt("THROTTLE_SECONDS", 1)) * time.Second,
		CheckInterval: time.Duration(getEnvInt("CHECK_INTERVAL_MINUTES", 60)) * time.Minute,
	}

	if recipients := os.Getenv("EMAIL_RECIPIENTS"); recipients != "" {
		for _, r := range strings.Split(recipients, ",") {
			if r = strings.TrimSpace(r); r != "" {
				cfg.EmailRecipients = append(cfg.EmailRecipients, r)
			}
		}
	}

	// Chat ID é opcional: sem ele o canal do Telegram fica desligado
	if chatIDStr := os.Getenv("TELEGRAM_CHAT_ID"); chatIDStr != "" {
		if chatID, err := strconv.ParseInt(chatIDStr, 10, 64); err == nil {
			cfg.TelegramChatID = chatID
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil || parsed < 0 {
			log.Printf("Valor inválido para %s (%q), usando %d", key, val, fallback)
			return fallback
		}
		return parsed
	}
	return fallback
}
