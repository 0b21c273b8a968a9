package notifier

import (
	"encoding/json"
	"time"

	"monitor-apartamentos/internal/models"
)

// NotificationStore é o contrato de leitura do log de notificações
type NotificationStore interface {
	LatestNotification(name, unit string) (*models.Notification, error)
	LatestNotificationPerUnit(name string) ([]models.Notification, error)
}

// Sender envia um lote de notificações por algum canal
type Sender interface {
	Send(notifications []models.Notification) error
}

// Notifier decide, a partir do log persistido, se uma observação nova
// gera notificação
type Notifier struct {
	store NotificationStore
}

// New cria uma nova instância do notifier
func New(store NotificationStore) *Notifier {
	return &Notifier{store: store}
}

// Evaluate compara o preço observado no dia mais recente com a última
// notificação do par (name, unit). Sem notificação anterior (ou com a
// unidade marcada como removida) a ação é ADDED. Preço igual ao
// último notificado não gera nada. O ID fica 0 até a inserção.
func (nf *Notifier) Evaluate(name string, u models.UnitRecord, price int, at time.Time) (*models.Notification, error) {
	prev, err := nf.store.LatestNotification(name, u.Unit)
	if err != nil {
		return nil, err
	}

	data := models.NotificationData{
		Price:     price,
		Sqft:      u.Sqft,
		Available: u.Available,
	}
	var action models.NotificationAction

	if prev == nil || prev.Action == models.ActionRemoved {
		// primeira vez que a unidade aparece (ou voltou à listagem)
		action = models.ActionAdded
	} else {
		pd, err := prev.ParseData()
		if err != nil {
			return nil, err
		}
		if pd.Price == price {
			return nil, nil
		}
		last := pd.Price
		data.LastPrice = &last
		if price > pd.Price {
			action = models.ActionPriceIncrease
		} else {
			action = models.ActionPriceDecrease
		}
	}

	return build(name, u.Unit, at, action, data)
}

// EvaluateRemovals gera notificações REMOVED para as unidades de um
// prédio que já foram notificadas mas não aparecem mais na listagem.
// Só deve ser chamado quando o prédio tem dump fresco no dia mais
// recente, para que uma falha de fetch não vire um falso sumiço.
func (nf *Notifier) EvaluateRemovals(name string, present map[string]bool, at time.Time) ([]*models.Notification, error) {
	latest, err := nf.store.LatestNotificationPerUnit(name)
	if err != nil {
		return nil, err
	}

	var removed []*models.Notification
	for _, prev := range latest {
		if prev.Action == models.ActionRemoved || present[prev.Unit] {
			continue
		}
		pd, err := prev.ParseData()
		if err != nil {
			return nil, err
		}

		n, err := build(name, prev.Unit, at, models.ActionRemoved, models.NotificationData{
			Price:     pd.Price,
			Sqft:      pd.Sqft,
			Available: pd.Available,
		})
		if err != nil {
			return nil, err
		}
		removed = append(removed, n)
	}
	return removed, nil
}

func build(name, unit string, at time.Time, action models.NotificationAction, data models.NotificationData) (*models.Notification, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &models.Notification{
		ID:           0,
		Name:         name,
		Unit:         unit,
		LastNotified: at.Unix(),
		Action:       action,
		Data:         string(payload),
	}, nil
}
