package notifier

import (
	"encoding/json"
	"testing"

	"monitor-apartamentos/internal/models"

	"github.com/stretchr/testify/require"
)

func notification(action models.NotificationAction, data models.NotificationData) models.Notification {
	payload, _ := json.Marshal(data)
	return models.Notification{
		Name:   "Maple Apartments",
		Unit:   "204",
		Action: action,
		Data:   string(payload),
	}
}

func TestFormatLine(t *testing.T) {
	last := 1500

	cases := []struct {
		n    models.Notification
		want string
	}{
		{
			notification(models.ActionAdded, models.NotificationData{Price: 950, Sqft: 700, Available: "Now"}),
			"Unidade 204 em Maple Apartments (700 sq.ft. / Now) entrou na listagem por $950!",
		},
		{
			notification(models.ActionPriceIncrease, models.NotificationData{Price: 1550, LastPrice: &last, Sqft: 700, Available: "Now"}),
			"Unidade 204 em Maple Apartments (700 sq.ft. / Now) subiu de $1500 para $1550!",
		},
		{
			notification(models.ActionPriceDecrease, models.NotificationData{Price: 1400, LastPrice: &last, Sqft: 700, Available: "Now"}),
			"Unidade 204 em Maple Apartments (700 sq.ft. / Now) caiu de $1500 para $1400!",
		},
		{
			notification(models.ActionRemoved, models.NotificationData{Price: 1400}),
			"Unidade 204 em Maple Apartments saiu da listagem!",
		},
		{
			// metragem sem disponibilidade não deixa a barra solta
			notification(models.ActionAdded, models.NotificationData{Price: 950, Sqft: 700}),
			"Unidade 204 em Maple Apartments (700 sq.ft.) entrou na listagem por $950!",
		},
	}

	for _, c := range cases {
		got, err := FormatLine(c.n)
		require.NoError(t, err)
		require.Equal(t, c.want, got)
	}
}

func TestFormatLineUnknownAction(t *testing.T) {
	n := notification("EXPLODED", models.NotificationData{Price: 1})
	_, err := FormatLine(n)
	require.Error(t, err)
}

func TestDigest(t *testing.T) {
	ns := []models.Notification{
		notification(models.ActionAdded, models.NotificationData{Price: 950}),
		notification(models.ActionRemoved, models.NotificationData{Price: 950}),
	}

	subject, body, err := Digest(ns)
	require.NoError(t, err)
	require.Equal(t, "2 atualizações de apartamentos!", subject)
	require.Equal(t,
		"Unidade 204 em Maple Apartments entrou na listagem por $950!\n"+
			"Unidade 204 em Maple Apartments saiu da listagem!",
		body)
}
