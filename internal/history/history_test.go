package history

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"monitor-apartamentos/internal/database"
	"monitor-apartamentos/internal/extractor"
	"monitor-apartamentos/internal/models"

	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "dumps.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func insertDump(t *testing.T, db *database.DB, url string, at time.Time, units []models.UnitRecord) {
	t.Helper()
	payload, err := json.Marshal(units)
	require.NoError(t, err)
	require.NoError(t, db.InsertDump(&models.Dump{
		URL:       url,
		Timestamp: at.Unix(),
		Status:    200,
		Body:      "<html></html>",
		Extracted: string(payload),
	}))
}

func unit(model, unit string, price int) models.UnitRecord {
	return models.UnitRecord{Model: model, Unit: unit, Price: price, Sqft: 700, Available: "Now"}
}

var apmts = []models.Apartment{
	{Name: "Maple Apartments", URL: "https://www.apartments.com/maple"},
	{Name: "Oak Towers", URL: "https://www.apartments.com/oak"},
}

func TestBuildDeterministicOrdering(t *testing.T) {
	db := testDB(t)
	day1 := time.Date(2026, 1, 5, 10, 0, 0, 0, time.Local)

	// inserção fora de ordem de chave
	insertDump(t, db, apmts[1].URL, day1, []models.UnitRecord{unit("2BR", "310", 2100)})
	insertDump(t, db, apmts[0].URL, day1, []models.UnitRecord{
		unit("1BR", "206", 1600),
		unit("1BR", "204", 1500),
	})

	h1, err := Build(apmts, db, extractor.NewRegistry())
	require.NoError(t, err)
	h2, err := Build(apmts, db, extractor.NewRegistry())
	require.NoError(t, err)

	require.Equal(t, h1.Entries, h2.Entries)
	require.Len(t, h1.Entries, 3)
	require.Equal(t, []Key{
		{Index: 0, Model: "1BR", Unit: "204"},
		{Index: 0, Model: "1BR", Unit: "206"},
		{Index: 1, Model: "2BR", Unit: "310"},
	}, []Key{h1.Entries[0].Key, h1.Entries[1].Key, h1.Entries[2].Key})
}

func TestPriceOnKeepsLastObservationOfDay(t *testing.T) {
	db := testDB(t)
	morning := time.Date(2026, 1, 5, 9, 0, 0, 0, time.Local)
	evening := time.Date(2026, 1, 5, 21, 0, 0, 0, time.Local)

	insertDump(t, db, apmts[0].URL, morning, []models.UnitRecord{unit("1BR", "204", 1500)})
	insertDump(t, db, apmts[0].URL, evening, []models.UnitRecord{unit("1BR", "204", 1550)})

	h, err := Build(apmts[:1], db, extractor.NewRegistry())
	require.NoError(t, err)
	require.Len(t, h.Entries, 1)

	o, ok := PriceOn(h.Entries[0], morning)
	require.True(t, ok)
	require.Equal(t, 1550, o.Price)
	require.Equal(t, evening.Unix(), o.At.Unix())
}

func TestPriceOnNoObservation(t *testing.T) {
	db := testDB(t)
	day1 := time.Date(2026, 1, 5, 10, 0, 0, 0, time.Local)

	insertDump(t, db, apmts[0].URL, day1, []models.UnitRecord{unit("1BR", "204", 1500)})

	h, err := Build(apmts[:1], db, extractor.NewRegistry())
	require.NoError(t, err)

	_, ok := PriceOn(h.Entries[0], day1.AddDate(0, 0, 1))
	require.False(t, ok)
}

func TestDateRangeEmptyHistory(t *testing.T) {
	db := testDB(t)

	h, err := Build(apmts, db, extractor.NewRegistry())
	require.NoError(t, err)

	_, _, err = h.DateRange()
	require.Error(t, err)

	_, err = h.Matrix(apmts)
	require.Error(t, err)
}

func TestMatrixLayout(t *testing.T) {
	db := testDB(t)
	day1 := time.Date(2026, 1, 5, 10, 0, 0, 0, time.Local)
	day3 := time.Date(2026, 1, 7, 10, 0, 0, 0, time.Local)

	insertDump(t, db, apmts[0].URL, day1, []models.UnitRecord{unit("1BR", "204", 1500)})
	insertDump(t, db, apmts[0].URL, day3, []models.UnitRecord{unit("1BR", "204", 1550)})

	h, err := Build(apmts[:1], db, extractor.NewRegistry())
	require.NoError(t, err)

	vals, err := h.Matrix(apmts[:1])
	require.NoError(t, err)

	// 1 série + cabeçalho; 3 dias + 2 colunas de rótulo
	require.Len(t, vals, 2)
	require.Len(t, vals[0], 5)

	require.Nil(t, vals[0][0])
	require.Nil(t, vals[0][1])
	require.Equal(t, "Jan 5 2026", vals[0][2])
	require.Equal(t, "Jan 7 2026", vals[0][4])

	require.Equal(t, "Maple Apartments", vals[1][0])
	require.Equal(t, "1BR/204", vals[1][1])
	require.Equal(t, 1500, vals[1][2])
	require.Nil(t, vals[1][3]) // dia sem observação fica vazio
	require.Equal(t, 1550, vals[1][4])
}

func TestUnsupportedSourceContributesNothing(t *testing.T) {
	db := testDB(t)
	day1 := time.Date(2026, 1, 5, 10, 0, 0, 0, time.Local)
	other := []models.Apartment{{Name: "Craigslist Find", URL: "https://example.org/listing"}}

	// extracted "null": fonte não suportada já marcada na coleta
	require.NoError(t, db.InsertDump(&models.Dump{
		URL:       other[0].URL,
		Timestamp: day1.Unix(),
		Status:    200,
		Body:      "<html></html>",
		Extracted: "null",
	}))
	// dump nunca extraído de fonte não suportada
	require.NoError(t, db.InsertDump(&models.Dump{
		URL:       other[0].URL,
		Timestamp: day1.Add(time.Hour).Unix(),
		Status:    200,
		Body:      "<html></html>",
	}))

	h, err := Build(other, db, extractor.NewRegistry())
	require.NoError(t, err)
	require.Empty(t, h.Entries)
}

func TestBuildSkipsNon200Dumps(t *testing.T) {
	db := testDB(t)
	day1 := time.Date(2026, 1, 5, 10, 0, 0, 0, time.Local)

	payload, err := json.Marshal([]models.UnitRecord{unit("1BR", "204", 1500)})
	require.NoError(t, err)
	require.NoError(t, db.InsertDump(&models.Dump{
		URL:       apmts[0].URL,
		Timestamp: day1.Unix(),
		Status:    503,
		Body:      "<html></html>",
		Extracted: string(payload),
	}))

	h, err := Build(apmts[:1], db, extractor.NewRegistry())
	require.NoError(t, err)
	require.Empty(t, h.Entries)
}

func TestBuildKeepsLatestUnitRecord(t *testing.T) {
	db := testDB(t)
	day1 := time.Date(2026, 1, 5, 10, 0, 0, 0, time.Local)

	first := unit("1BR", "204", 1500)
	second := unit("1BR", "204", 1550)
	second.Available = "Feb 1"

	insertDump(t, db, apmts[0].URL, day1, []models.UnitRecord{first})
	insertDump(t, db, apmts[0].URL, day1.AddDate(0, 0, 1), []models.UnitRecord{second})

	h, err := Build(apmts[:1], db, extractor.NewRegistry())
	require.NoError(t, err)
	require.Equal(t, "Feb 1", h.Entries[0].Unit.Available)
	require.Len(t, h.Entries[0].Series, 2)
}
