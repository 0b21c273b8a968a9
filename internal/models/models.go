package models

import (
	"encoding/json"
	"fmt"
)

// Dump representa o resultado bruto de uma busca de página.
// Imutável depois de inserido, exceto Extracted, que pode ser
// repopulado por uma re-extração.
type Dump struct {
	ID        int64
	URL       string
	Timestamp int64 // unix segundos
	Status    int
	Body      string
	Extracted string // array JSON de UnitRecord, "null" para fonte não suportada, vazio se nunca extraído
}

// HasExtracted indica se o dump já passou por extração (mesmo que o
// resultado tenha sido "fonte não suportada").
func (d *Dump) HasExtracted() bool {
	return d.Extracted != ""
}

// ExtractedUnits decodifica o campo Extracted. Retorna nil sem erro
// quando a fonte não é suportada ("null"). JSON corrompido é erro
// fatal: indica corrupção do banco, não variação de entrada.
func (d *Dump) ExtractedUnits() ([]UnitRecord, error) {
	if d.Extracted == "" {
		return nil, nil
	}
	var units []UnitRecord
	if err := json.Unmarshal([]byte(d.Extracted), &units); err != nil {
		return nil, fmt.Errorf("dump %d: extracted corrompido: %v", d.ID, err)
	}
	return units, nil
}

// UnitRecord é uma unidade extraída de um dump. Efêmero: só é
// persistido como JSON dentro de Dump.Extracted.
type UnitRecord struct {
	Model     string `json:"model"`
	Unit      string `json:"unit"`
	Price     int    `json:"price"`
	Sqft      int    `json:"sqft"`
	Available string `json:"available"`
}

// Apartment representa um prédio rastreado, vindo da planilha.
// A ordem da lista é estável durante uma execução: o índice participa
// da identidade das séries históricas.
type Apartment struct {
	Name  string
	URL   string
	Extra map[string]string // demais colunas da planilha
}

// NotificationAction é o tipo fechado de ações de notificação.
type NotificationAction string

const (
	ActionAdded         NotificationAction = "ADDED"
	ActionRemoved       NotificationAction = "REMOVED"
	ActionPriceIncrease NotificationAction = "PRICE_INCREASE"
	ActionPriceDecrease NotificationAction = "PRICE_DECREASE"
)

// NotificationData é o payload JSON de uma notificação.
type NotificationData struct {
	Price     int    `json:"price"`
	LastPrice *int   `json:"last_price,omitempty"`
	Sqft      int    `json:"sqft,omitempty"`
	Available string `json:"available,omitempty"`
}

// Notification registra uma mudança detectada. Log append-only: o
// estado atual de um par (name, unit) é a linha mais recente por
// last_notified.
type Notification struct {
	ID           int64
	Name         string
	Unit         string
	LastNotified int64 // unix segundos
	Action       NotificationAction
	Data         string // NotificationData em JSON
}

// ParseData decodifica o payload. Payload corrompido é erro fatal,
// pelo mesmo motivo de Dump.ExtractedUnits.
func (n *Notification) ParseData() (NotificationData, error) {
	var d NotificationData
	if err := json.Unmarshal([]byte(n.Data), &d); err != nil {
		return d, fmt.Errorf("notificação %d: data corrompido: %v", n.ID, err)
	}
	return d, nil
}
