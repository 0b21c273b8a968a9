package history

import (
	"fmt"
	"net/http"
	"sort"
	"time"

	"monitor-apartamentos/internal/models"
)

// Key identifica uma série de preços rastreável: prédio (pelo índice
// na lista da planilha), planta e unidade
type Key struct {
	Index int
	Model string
	Unit  string
}

// Observation é um preço observado em um instante
type Observation struct {
	Price int
	At    time.Time
}

// Entry é uma série de observações de uma chave, em ordem cronológica
// ascendente, junto com o último registro completo da unidade (usado
// no payload das notificações)
type Entry struct {
	Key    Key
	Unit   models.UnitRecord
	Series []Observation
}

// History é o conjunto de séries de todos os prédios, ordenado por
// chave para saída determinística
type History struct {
	Entries []Entry
}

// DumpSource é o contrato de leitura do banco usado pela agregação
type DumpSource interface {
	DumpsByURL(url string, status int) ([]models.Dump, error)
}

// UnitExtractor é o contrato do extrator de unidades
type UnitExtractor interface {
	Extract(d models.Dump) ([]models.UnitRecord, error)
}

// Build monta o histórico de preços a partir dos dumps com status 200
// de cada prédio. Dumps já extraídos usam o campo armazenado; os
// demais passam pelo extrator. Dumps de fontes não suportadas não
// contribuem com nenhuma série.
func Build(apmts []models.Apartment, src DumpSource, ext UnitExtractor) (*History, error) {
	byKey := make(map[Key]*Entry)

	for i, a := range apmts {
		dumps, err := src.DumpsByURL(a.URL, http.StatusOK)
		if err != nil {
			return nil, fmt.Errorf("erro ao buscar dumps de %s: %v", a.Name, err)
		}

		for _, d := range dumps {
			var units []models.UnitRecord
			if d.HasExtracted() {
				units, err = d.ExtractedUnits()
			} else {
				units, err = ext.Extract(d)
			}
			if err != nil {
				return nil, err
			}

			for _, u := range units {
				k := Key{Index: i, Model: u.Model, Unit: u.Unit}
				e, ok := byKey[k]
				if !ok {
					e = &Entry{Key: k}
					byKey[k] = e
				}
				e.Unit = u
				e.Series = append(e.Series, Observation{
					Price: u.Price,
					At:    time.Unix(d.Timestamp, 0),
				})
			}
		}
	}

	h := &History{Entries: make([]Entry, 0, len(byKey))}
	for _, e := range byKey {
		h.Entries = append(h.Entries, *e)
	}
	sort.Slice(h.Entries, func(i, j int) bool {
		a, b := h.Entries[i].Key, h.Entries[j].Key
		if a.Index != b.Index {
			return a.Index < b.Index
		}
		if a.Model != b.Model {
			return a.Model < b.Model
		}
		return a.Unit < b.Unit
	})
	return h, nil
}

// DateRange retorna o primeiro e o último dia com observação em
// qualquer série. Histórico vazio é falha de precondição: ainda não
// existe dump com dados extraíveis.
func (h *History) DateRange() (time.Time, time.Time, error) {
	var min, max time.Time
	for _, e := range h.Entries {
		for _, o := range e.Series {
			d := day(o.At)
			if min.IsZero() || d.Before(min) {
				min = d
			}
			if max.IsZero() || d.After(max) {
				max = d
			}
		}
	}
	if min.IsZero() {
		return min, max, fmt.Errorf("histórico vazio: nenhum dump com dados extraídos")
	}
	return min, max, nil
}

// PriceOn retorna a ÚLTIMA observação de uma série no dia dado.
// A varredura é de trás para frente: a primeira encontrada é a mais
// recente do dia. Sem observação no dia, ok é false (não há
// interpolação).
func PriceOn(e Entry, d time.Time) (Observation, bool) {
	d = day(d)
	for i := len(e.Series) - 1; i >= 0; i-- {
		if day(e.Series[i].At).Equal(d) {
			return e.Series[i], true
		}
	}
	return Observation{}, false
}

// Matrix produz a grade para exportação: linha 0 = [vazio, vazio,
// datas...]; cada linha seguinte = [nome do prédio, "planta/unidade",
// preço ou vazio por dia]
func (h *History) Matrix(apmts []models.Apartment) ([][]interface{}, error) {
	minDate, maxDate, err := h.DateRange()
	if err != nil {
		return nil, err
	}

	var dates []time.Time
	for d := minDate; !d.After(maxDate); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}

	vals := make([][]interface{}, len(h.Entries)+1)
	for i := range vals {
		vals[i] = make([]interface{}, len(dates)+2)
	}

	for j, e := range h.Entries {
		vals[j+1][0] = apmts[e.Key.Index].Name
		vals[j+1][1] = fmt.Sprintf("%s/%s", e.Key.Model, e.Key.Unit)
	}

	for n, d := range dates {
		vals[0][n+2] = d.Format("Jan 2 2006")

		for j, e := range h.Entries {
			if o, ok := PriceOn(e, d); ok {
				vals[j+1][n+2] = o.Price
			}
		}
	}
	return vals, nil
}

// day trunca um instante para o começo do dia local
func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
