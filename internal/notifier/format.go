package notifier

import (
	"fmt"
	"strings"

	"monitor-apartamentos/internal/models"
)

// FormatLine monta a frase legível de uma notificação. O switch cobre
// todas as ações do enum; uma ação fora dele é corrupção do log.
func FormatLine(n models.Notification) (string, error) {
	d, err := n.ParseData()
	if err != nil {
		return "", err
	}

	prefix := fmt.Sprintf("Unidade %s em %s", n.Unit, n.Name)
	if d.Sqft > 0 && d.Available != "" {
		prefix = fmt.Sprintf("%s (%d sq.ft. / %s)", prefix, d.Sqft, d.Available)
	} else if d.Sqft > 0 {
		prefix = fmt.Sprintf("%s (%d sq.ft.)", prefix, d.Sqft)
	}

	switch n.Action {
	case models.ActionAdded:
		return fmt.Sprintf("%s entrou na listagem por $%d!", prefix, d.Price), nil
	case models.ActionRemoved:
		return fmt.Sprintf("%s saiu da listagem!", prefix), nil
	case models.ActionPriceIncrease:
		return fmt.Sprintf("%s subiu de $%d para $%d!", prefix, deref(d.LastPrice), d.Price), nil
	case models.ActionPriceDecrease:
		return fmt.Sprintf("%s caiu de $%d para $%d!", prefix, deref(d.LastPrice), d.Price), nil
	default:
		return "", fmt.Errorf("ação desconhecida: %s", n.Action)
	}
}

// Digest monta o assunto e o corpo (uma linha por notificação) do
// resumo enviado por email e telegram
func Digest(notifications []models.Notification) (string, string, error) {
	subject := fmt.Sprintf("%d atualizações de apartamentos!", len(notifications))

	lines := make([]string, 0, len(notifications))
	for _, n := range notifications {
		line, err := FormatLine(n)
		if err != nil {
			return "", "", err
		}
		lines = append(lines, line)
	}
	return subject, strings.Join(lines, "\n"), nil
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
