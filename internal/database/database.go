package database

import (
	"database/sql"
	"log"

	"monitor-apartamentos/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

// DB encapsula a conexão com o banco de dados
type DB struct {
	conn *sql.DB
}

// New cria uma nova instância do banco de dados
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	db := &DB{conn: conn}

	if err := db.init(); err != nil {
		conn.Close()
		return nil, err
	}

	log.Println("Banco de dados inicializado com sucesso")
	return db, nil
}

// Close fecha a conexão com o banco de dados
func (db *DB) Close() error {
	return db.conn.Close()
}

// init cria as tabelas necessárias
func (db *DB) init() error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS dumps (
		id INTEGER PRIMARY KEY,
		url TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		status INTEGER NOT NULL,
		body TEXT NOT NULL,
		extracted JSON
	);

	CREATE TABLE IF NOT EXISTS notifications (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		unit TEXT NOT NULL,
		last_notified INTEGER NOT NULL,
		action TEXT NOT NULL,
		data JSON NOT NULL DEFAULT '{}'
	);
	`

	_, err := db.conn.Exec(createTableSQL)
	return err
}

// InsertDump insere um dump e preenche o ID atribuído pelo banco
func (db *DB) InsertDump(d *models.Dump) error {
	var extracted interface{}
	if d.Extracted != "" {
		extracted = d.Extracted
	}
	res, err := db.conn.Exec(
		"INSERT INTO dumps (url, timestamp, status, body, extracted) VALUES (?, ?, ?, ?, ?)",
		d.URL, d.Timestamp, d.Status, d.Body, extracted,
	)
	if err != nil {
		return err
	}
	d.ID, err = res.LastInsertId()
	return err
}

// DumpsByURL retorna os dumps de uma URL com o status dado, ordenados
// por timestamp ascendente
func (db *DB) DumpsByURL(url string, status int) ([]models.Dump, error) {
	rows, err := db.conn.Query(
		"SELECT id, url, timestamp, status, body, extracted FROM dumps WHERE status = ? AND url = ? ORDER BY timestamp",
		status, url,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDumps(rows)
}

// AllDumps retorna todos os dumps, independente de status (usado pela
// manutenção de re-extração)
func (db *DB) AllDumps() ([]models.Dump, error) {
	rows, err := db.conn.Query("SELECT id, url, timestamp, status, body, extracted FROM dumps ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDumps(rows)
}

// LatestDumpPerURL retorna o dump mais recente com o status dado para
// cada URL
func (db *DB) LatestDumpPerURL(status int) (map[string]models.Dump, error) {
	rows, err := db.conn.Query(`
		SELECT t1.id, t1.url, t1.timestamp, t1.status, t1.body, t1.extracted
		FROM dumps t1
		JOIN (
			SELECT url, max(timestamp) as timestamp
			FROM dumps t2
			WHERE status = ?
			GROUP BY url
		) t2 ON t1.url = t2.url AND t1.timestamp = t2.timestamp`,
		status,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dumps, err := scanDumps(rows)
	if err != nil {
		return nil, err
	}

	byURL := make(map[string]models.Dump, len(dumps))
	for _, d := range dumps {
		byURL[d.URL] = d
	}
	return byURL, nil
}

// UpdateExtracted substitui o campo extracted de um dump (re-extração)
func (db *DB) UpdateExtracted(id int64, extracted string) error {
	_, err := db.conn.Exec("UPDATE dumps SET extracted = ? WHERE id = ?", extracted, id)
	return err
}

// InsertNotification insere uma notificação e preenche o ID atribuído
func (db *DB) InsertNotification(n *models.Notification) error {
	res, err := db.conn.Exec(
		"INSERT INTO notifications (name, unit, last_notified, action, data) VALUES (?, ?, ?, ?, ?)",
		n.Name, n.Unit, n.LastNotified, string(n.Action), n.Data,
	)
	if err != nil {
		return err
	}
	n.ID, err = res.LastInsertId()
	return err
}

// LatestNotification retorna a notificação mais recente para o par
// (name, unit), ou nil se nunca houve notificação
func (db *DB) LatestNotification(name, unit string) (*models.Notification, error) {
	var n models.Notification
	var action string
	err := db.conn.QueryRow(`
		SELECT id, name, unit, last_notified, action, data
		FROM notifications
		WHERE name = ? AND unit = ?
		ORDER BY last_notified DESC
		LIMIT 1`,
		name, unit,
	).Scan(&n.ID, &n.Name, &n.Unit, &n.LastNotified, &action, &n.Data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	n.Action = models.NotificationAction(action)
	return &n, nil
}

// LatestNotificationPerUnit retorna, para um prédio, a notificação
// mais recente de cada unidade já notificada
func (db *DB) LatestNotificationPerUnit(name string) ([]models.Notification, error) {
	rows, err := db.conn.Query(`
		SELECT t1.id, t1.name, t1.unit, t1.last_notified, t1.action, t1.data
		FROM notifications t1
		JOIN (
			SELECT unit, max(last_notified) as last_notified
			FROM notifications
			WHERE name = ?
			GROUP BY unit
		) t2 ON t1.unit = t2.unit AND t1.last_notified = t2.last_notified
		WHERE t1.name = ?`,
		name, name,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		var action string
		if err := rows.Scan(&n.ID, &n.Name, &n.Unit, &n.LastNotified, &action, &n.Data); err != nil {
			return nil, err
		}
		n.Action = models.NotificationAction(action)
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func scanDumps(rows *sql.Rows) ([]models.Dump, error) {
	var dumps []models.Dump
	for rows.Next() {
		var d models.Dump
		var extracted sql.NullString
		if err := rows.Scan(&d.ID, &d.URL, &d.Timestamp, &d.Status, &d.Body, &extracted); err != nil {
			return nil, err
		}
		if extracted.Valid {
			d.Extracted = extracted.String
		}
		dumps = append(dumps, d)
	}
	return dumps, rows.Err()
}
