package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"monitor-apartamentos/internal/models"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// Client encapsula o acesso à planilha: a primeira aba é a fonte da
// lista de prédios, a aba de histórico recebe a matriz de preços
type Client struct {
	svc           *sheetsapi.Service
	spreadsheetID string
	apartmentsTab string
	historyTab    string
	localPath     string
}

// New cria uma nova instância do cliente da planilha usando a conta
// de serviço apontada por credentialsPath
func New(ctx context.Context, credentialsPath, spreadsheetID, apartmentsTab, historyTab, localPath string) (*Client, error) {
	svc, err := sheetsapi.NewService(ctx,
		option.WithCredentialsFile(credentialsPath),
		option.WithScopes(sheetsapi.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("erro ao conectar com Google Sheets: %v", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		apartmentsTab: apartmentsTab,
		historyTab:    historyTab,
		localPath:     localPath,
	}, nil
}

// Apartments lê a lista de prédios da planilha e salva uma cópia
// local em JSON. Com local=true a cópia é usada no lugar da planilha
// (execuções offline).
func (c *Client) Apartments(local bool) ([]models.Apartment, error) {
	if local {
		log.Println("Usando dados locais da planilha")
		data, err := os.ReadFile(c.localPath)
		if err != nil {
			return nil, fmt.Errorf("erro ao ler cache local: %v", err)
		}
		var apmts []models.Apartment
		if err := json.Unmarshal(data, &apmts); err != nil {
			return nil, fmt.Errorf("cache local corrompido: %v", err)
		}
		return apmts, nil
	}

	log.Println("Buscando dados da planilha...")
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.apartmentsTab).Do()
	if err != nil {
		return nil, fmt.Errorf("erro ao ler planilha: %v", err)
	}
	if len(resp.Values) < 2 {
		return nil, fmt.Errorf("planilha sem linhas de dados")
	}

	// primeira linha é o cabeçalho; chaves em minúsculas
	headers := make([]string, len(resp.Values[0]))
	for i, h := range resp.Values[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(fmt.Sprint(h)))
	}

	var apmts []models.Apartment
	for _, row := range resp.Values[1:] {
		a := models.Apartment{Extra: make(map[string]string)}
		for i, cell := range row {
			if i >= len(headers) {
				break
			}
			v := strings.TrimSpace(fmt.Sprint(cell))
			switch headers[i] {
			case "name":
				a.Name = v
			case "url":
				a.URL = v
			default:
				a.Extra[headers[i]] = v
			}
		}
		if a.Name == "" || a.URL == "" {
			continue
		}
		apmts = append(apmts, a)
	}

	if err := c.saveLocal(apmts); err != nil {
		log.Printf("Erro ao salvar cache local: %v", err)
	}
	return apmts, nil
}

func (c *Client) saveLocal(apmts []models.Apartment) error {
	data, err := json.Marshal(apmts)
	if err != nil {
		return err
	}
	return os.WriteFile(c.localPath, data, 0644)
}

// WriteHistory limpa a aba de histórico e grava a matriz de preços
func (c *Client) WriteHistory(vals [][]interface{}) error {
	_, err := c.svc.Spreadsheets.Values.
		Clear(c.spreadsheetID, c.historyTab, &sheetsapi.ClearValuesRequest{}).Do()
	if err != nil {
		return fmt.Errorf("erro ao limpar aba de histórico: %v", err)
	}

	vr := &sheetsapi.ValueRange{Values: sanitize(vals)}
	_, err = c.svc.Spreadsheets.Values.
		Update(c.spreadsheetID, c.historyTab+"!A1", vr).
		ValueInputOption("RAW").Do()
	if err != nil {
		return fmt.Errorf("erro ao atualizar aba de histórico: %v", err)
	}
	return nil
}

// sanitize troca nil por string vazia: a API interpreta células nil
// como "não tocar", e aqui a grade inteira deve ser reescrita
func sanitize(vals [][]interface{}) [][]interface{} {
	out := make([][]interface{}, len(vals))
	for i, row := range vals {
		out[i] = make([]interface{}, len(row))
		for j, cell := range row {
			if cell == nil {
				out[i][j] = ""
			} else {
				out[i][j] = cell
			}
		}
	}
	return out
}
