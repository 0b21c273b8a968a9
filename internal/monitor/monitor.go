package monitor

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"monitor-apartamentos/config"
	"monitor-apartamentos/internal/database"
	"monitor-apartamentos/internal/extractor"
	"monitor-apartamentos/internal/fetcher"
	"monitor-apartamentos/internal/history"
	"monitor-apartamentos/internal/models"
	"monitor-apartamentos/internal/notifier"
	"monitor-apartamentos/internal/sheets"
)

// SheetSource é o contrato com a planilha: fonte da lista de prédios
// e destino da matriz de histórico
type SheetSource interface {
	Apartments(local bool) ([]models.Apartment, error)
	WriteHistory(vals [][]interface{}) error
}

// Monitor orquestra o ciclo de coleta: atualizar dumps, agregar o
// histórico, sincronizar a planilha e notificar mudanças de preço
type Monitor struct {
	db       *database.DB
	fetcher  *fetcher.Fetcher
	registry *extractor.Registry
	sheets   SheetSource
	notifier *notifier.Notifier
	senders  []notifier.Sender
	cfg      *config.Config
}

// New cria uma nova instância do monitor
func New(db *database.DB, f *fetcher.Fetcher, registry *extractor.Registry, sh SheetSource, nf *notifier.Notifier, senders []notifier.Sender, cfg *config.Config) *Monitor {
	return &Monitor{
		db:       db,
		fetcher:  f,
		registry: registry,
		sheets:   sh,
		notifier: nf,
		senders:  senders,
		cfg:      cfg,
	}
}

// Start roda um ciclo imediatamente e depois repete no intervalo
// configurado
func (m *Monitor) Start(local bool) {
	interval := m.cfg.CheckInterval
	if interval <= 0 {
		// ticker não aceita intervalo zero
		interval = time.Hour
	}
	log.Printf("Monitor iniciado. Ciclo a cada %v", interval)

	if err := m.Cycle(local); err != nil {
		log.Printf("Erro no ciclo: %v", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		if err := m.Cycle(local); err != nil {
			log.Printf("Erro no ciclo: %v", err)
		}
	}
}

// Cycle executa um ciclo completo: coleta e sincronização
func (m *Monitor) Cycle(local bool) error {
	apmts, err := m.sheets.Apartments(local)
	if err != nil {
		return err
	}
	if err := m.updateDumps(apmts); err != nil {
		return err
	}
	return m.syncHistory(apmts, false)
}

// Update coleta páginas desatualizadas sem sincronizar o histórico
func (m *Monitor) Update(local bool) error {
	apmts, err := m.sheets.Apartments(local)
	if err != nil {
		return err
	}
	return m.updateDumps(apmts)
}

// Sync sincroniza o histórico sem coletar páginas novas
func (m *Monitor) Sync(local, dryRun bool) error {
	apmts, err := m.sheets.Apartments(local)
	if err != nil {
		return err
	}
	return m.syncHistory(apmts, dryRun)
}

// updateDumps busca a página de cada prédio cujo último dump passou
// do intervalo de coleta. Falha de rede não aborta o ciclo: o prédio
// segue com o dump antigo.
func (m *Monitor) updateDumps(apmts []models.Apartment) error {
	latest, err := m.db.LatestDumpPerURL(http.StatusOK)
	if err != nil {
		return err
	}

	for _, a := range apmts {
		if last, ok := latest[a.URL]; ok {
			age := time.Since(time.Unix(last.Timestamp, 0))
			if age < m.cfg.PullInterval {
				log.Printf("Pulando %s: última coleta há %v", a.Name, age.Round(time.Second))
				continue
			}
		}

		log.Printf("Coletando dados de: %s", a.Name)
		d, err := m.fetcher.Fetch(a.URL)
		if err != nil {
			log.Printf("Erro ao coletar %s: %v", a.Name, err)
			continue
		}

		if d.Status == http.StatusOK {
			units, err := m.registry.Extract(*d)
			if err != nil {
				// página com formato inesperado: grava o dump sem
				// extracted para re-extração posterior
				log.Printf("Erro ao extrair %s: %v", a.Name, err)
			} else {
				// nil (fonte não suportada) vira "null", como no resto
				// do log de dumps
				payload, err := json.Marshal(units)
				if err != nil {
					return err
				}
				d.Extracted = string(payload)
				log.Printf("Encontradas %d unidades", len(units))
			}
		} else {
			log.Printf("Status %d para %s", d.Status, a.Name)
		}

		if err := m.db.InsertDump(d); err != nil {
			return err
		}
		time.Sleep(m.cfg.Throttle)
	}
	return nil
}

// syncHistory agrega o histórico, exporta a matriz e avalia as
// notificações do dia mais recente
func (m *Monitor) syncHistory(apmts []models.Apartment, dryRun bool) error {
	hist, err := history.Build(apmts, m.db, m.registry)
	if err != nil {
		return err
	}
	_, maxDate, err := hist.DateRange()
	if err != nil {
		return err
	}
	vals, err := hist.Matrix(apmts)
	if err != nil {
		return err
	}

	if dryRun {
		log.Printf("Dry-run: gravando matriz em %s", m.cfg.CSVOutputPath)
		if err := sheets.WriteCSV(m.cfg.CSVOutputPath, vals); err != nil {
			return err
		}
	} else {
		log.Println("Atualizando planilha")
		if err := m.sheets.WriteHistory(vals); err != nil {
			return err
		}
	}

	notifications, err := m.collectNotifications(apmts, hist, maxDate)
	if err != nil {
		return err
	}
	if len(notifications) == 0 {
		log.Println("Nenhuma mudança detectada")
		return nil
	}

	log.Printf("Enviando %d notificações", len(notifications))
	for i := range notifications {
		if err := m.db.InsertNotification(&notifications[i]); err != nil {
			return err
		}
	}

	if dryRun {
		return nil
	}
	for _, s := range m.senders {
		if err := s.Send(notifications); err != nil {
			log.Printf("Erro ao enviar notificações: %v", err)
		}
	}
	return nil
}

// collectNotifications avalia cada série no dia mais recente e depois
// as remoções dos prédios com dump fresco
func (m *Monitor) collectNotifications(apmts []models.Apartment, hist *history.History, maxDate time.Time) ([]models.Notification, error) {
	var out []models.Notification

	for _, e := range hist.Entries {
		o, ok := history.PriceOn(e, maxDate)
		if !ok {
			continue
		}

		n, err := m.notifier.Evaluate(apmts[e.Key.Index].Name, e.Unit, o.Price, o.At)
		if err != nil {
			return nil, err
		}
		if n != nil {
			out = append(out, *n)
		}
	}

	latest, err := m.db.LatestDumpPerURL(http.StatusOK)
	if err != nil {
		return nil, err
	}
	for _, a := range apmts {
		d, ok := latest[a.URL]
		// o dump pode ser posterior a maxDate: uma listagem esvaziada
		// não gera observação nenhuma
		if !ok || day(time.Unix(d.Timestamp, 0)).Before(maxDate) {
			continue
		}

		// só um dump que realmente rendeu um conjunto de unidades
		// atesta ausências: fonte sem dados extraíveis não é o mesmo
		// que listagem vazia
		var fresh []models.UnitRecord
		if d.HasExtracted() {
			fresh, err = d.ExtractedUnits()
		} else {
			fresh, err = m.registry.Extract(d)
		}
		if err != nil {
			return nil, err
		}
		if fresh == nil {
			continue
		}

		units := make(map[string]bool, len(fresh))
		for _, u := range fresh {
			units[u.Unit] = true
		}
		removed, err := m.notifier.EvaluateRemovals(a.Name, units, time.Unix(d.Timestamp, 0))
		if err != nil {
			return nil, err
		}
		for _, n := range removed {
			out = append(out, *n)
		}
	}
	return out, nil
}

// Reextract reparseia o corpo de todos os dumps e regrava o campo
// extracted (manutenção após mudança nos extratores)
func (m *Monitor) Reextract() error {
	dumps, err := m.db.AllDumps()
	if err != nil {
		return err
	}

	for _, d := range dumps {
		units, err := m.registry.Extract(d)
		if err != nil {
			return err
		}
		payload, err := json.Marshal(units)
		if err != nil {
			return err
		}
		if err := m.db.UpdateExtracted(d.ID, string(payload)); err != nil {
			return err
		}
	}

	log.Printf("Re-extraídos %d dumps!", len(dumps))
	return nil
}

// day trunca um instante para o começo do dia local
func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
