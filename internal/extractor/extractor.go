package extractor

import "monitor-apartamentos/internal/models"

// Extractor define a interface para extratores de diferentes sites de
// listagem
type Extractor interface {
	Extract(d models.Dump) ([]models.UnitRecord, error)
	CanHandle(url string) bool
}

// Registry mantém um registro de todos os extratores disponíveis
type Registry struct {
	extractors []Extractor
}

// NewRegistry cria um novo registro de extratores
func NewRegistry() *Registry {
	return &Registry{
		extractors: []Extractor{
			NewApartmentsExtractor(),
		},
	}
}

// FindExtractor encontra o extrator apropriado para uma URL.
// Retorna nil para fontes não suportadas: o chamador deve tratar como
// "sem dados para esse prédio", não como erro.
func (r *Registry) FindExtractor(url string) Extractor {
	for _, e := range r.extractors {
		if e.CanHandle(url) {
			return e
		}
	}
	return nil
}

// Extract extrai as unidades de um dump. Retorna (nil, nil) quando a
// URL do dump não é suportada por nenhum extrator.
func (r *Registry) Extract(d models.Dump) ([]models.UnitRecord, error) {
	e := r.FindExtractor(d.URL)
	if e == nil {
		return nil, nil
	}
	return e.Extract(d)
}
