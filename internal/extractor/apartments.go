package extractor

import (
	"fmt"
	"strconv"
	"strings"

	"monitor-apartamentos/internal/models"

	"github.com/PuerkitoBio/goquery"
)

// ApartmentsExtractor implementa o extrator para apartments.com
type ApartmentsExtractor struct{}

// NewApartmentsExtractor cria uma nova instância do extrator do
// apartments.com
func NewApartmentsExtractor() *ApartmentsExtractor {
	return &ApartmentsExtractor{}
}

// CanHandle verifica se o extrator pode lidar com a URL fornecida
func (a *ApartmentsExtractor) CanHandle(url string) bool {
	return strings.Contains(url, "apartments.com")
}

// Extract extrai as unidades da grade de preços da página
func (a *ApartmentsExtractor) Extract(d models.Dump) ([]models.UnitRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(d.Body))
	if err != nil {
		return nil, err
	}

	// fatia não-nil mesmo sem unidades: página suportada vazia é
	// diferente de fonte não suportada (nil)
	units := []models.UnitRecord{}
	var parseErr error

	doc.Find(`#pricingView > div[data-tab-content-id="bed1"] .pricingGridItem`).Each(func(i int, m *goquery.Selection) {
		modelName := strings.TrimSpace(m.Find(".priceBedRangeInfo .modelName").Text())

		m.Find(".unitContainer").Each(func(j int, u *goquery.Selection) {
			// remover texto só de leitor de tela antes de ler as colunas
			u.Find(".screenReaderOnly").Remove()

			price, err := parsePrice(u.Find(".pricingColumn").Text())
			if err != nil && parseErr == nil {
				parseErr = fmt.Errorf("unidade %d/%d: %v", i, j, err)
				return
			}
			sqft, err := parseSqft(u.Find(".sqftColumn").Text())
			if err != nil && parseErr == nil {
				parseErr = fmt.Errorf("unidade %d/%d: %v", i, j, err)
				return
			}

			units = append(units, models.UnitRecord{
				Model:     modelName,
				Unit:      strings.TrimSpace(u.Find(".unitColumn").Text()),
				Price:     price,
				Sqft:      sqft,
				Available: strings.TrimSpace(u.Find(".availableColumn").Text()),
			})
		})
	})

	if parseErr != nil {
		return nil, parseErr
	}
	return units, nil
}

// parsePrice converte "$1,500" em 1500
func parsePrice(s string) (int, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	p, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("preço inválido %q: %v", s, err)
	}
	return p, nil
}

// parseSqft converte "1,015" em 1015
func parseSqft(s string) (int, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("metragem inválida %q: %v", s, err)
	}
	return n, nil
}
