package fetcher

import (
	"io"
	"net/http"
	"time"

	"monitor-apartamentos/internal/models"
)

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 12_3_1) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/15.3 Safari/605.1.15"

// Fetcher baixa páginas de listagem e as transforma em dumps
type Fetcher struct {
	client *http.Client
}

// New cria uma nova instância do fetcher
func New() *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Fetch baixa a página e retorna o dump correspondente. Um status
// não-200 não é erro aqui: o dump é gravado mesmo assim e o filtro de
// status fica com a agregação.
func (f *Fetcher) Fetch(url string) (*models.Dump, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &models.Dump{
		URL:       url,
		Timestamp: time.Now().Unix(),
		Status:    resp.StatusCode,
		Body:      string(body),
	}, nil
}
