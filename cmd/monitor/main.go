package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"monitor-apartamentos/config"
	"monitor-apartamentos/internal/database"
	"monitor-apartamentos/internal/extractor"
	"monitor-apartamentos/internal/fetcher"
	"monitor-apartamentos/internal/monitor"
	"monitor-apartamentos/internal/notifier"
	"monitor-apartamentos/internal/sheets"

	"github.com/joho/godotenv"
)

func main() {
	// Carregar variáveis de ambiente
	if err := godotenv.Load(); err != nil {
		log.Println("Arquivo .env não encontrado, usando variáveis de ambiente do sistema")
	}

	// Carregar configurações
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Erro ao carregar configurações: %v", err)
	}

	// Subcomando (daemon por padrão) seguido das flags
	cmd := "daemon"
	args := os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd = args[0]
		args = args[1:]
	}

	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	local := fs.Bool("local", false, "usar a cópia local da lista de prédios")
	dryRun := fs.Bool("dry-run", false, "gravar CSV local e não enviar notificações")
	fs.Parse(args)

	// Inicializar banco de dados
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Erro ao inicializar banco de dados: %v", err)
	}
	defer db.Close()

	// Inicializar cliente da planilha
	sheetsClient, err := sheets.New(context.Background(), cfg.GoogleCredentialsPath,
		cfg.SpreadsheetID, cfg.ApartmentsTab, cfg.HistoryTab, cfg.LocalSheetsPath)
	if err != nil {
		log.Fatalf("Erro ao inicializar cliente da planilha: %v", err)
	}

	// Canais de notificação
	var senders []notifier.Sender
	if cfg.EmailSender != "" && len(cfg.EmailRecipients) > 0 {
		senders = append(senders, notifier.NewEmailSender(
			cfg.SMTPHost, cfg.SMTPPort, cfg.EmailSender, cfg.EmailPassword, cfg.EmailRecipients))
	}
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != 0 {
		ts, err := notifier.NewTelegramSender(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			log.Fatalf("Erro ao inicializar bot do Telegram: %v", err)
		}
		senders = append(senders, ts)
	}
	if len(senders) == 0 {
		log.Println("Nenhum canal de notificação configurado; mudanças só serão registradas no banco")
	}

	m := monitor.New(db, fetcher.New(), extractor.NewRegistry(),
		sheetsClient, notifier.New(db), senders, cfg)

	switch cmd {
	case "daemon":
		go m.Start(*local)

		// Aguardar sinal de interrupção
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Println("Encerrando monitor...")

	case "update":
		if err := m.Update(*local); err != nil {
			log.Fatalf("Erro ao atualizar dumps: %v", err)
		}

	case "sync":
		if err := m.Sync(*local, *dryRun); err != nil {
			log.Fatalf("Erro ao sincronizar histórico: %v", err)
		}

	case "reextract":
		if err := m.Reextract(); err != nil {
			log.Fatalf("Erro na re-extração: %v", err)
		}

	default:
		log.Fatalf("Comando desconhecido: %s (use daemon, update, sync ou reextract)", cmd)
	}
}
