package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"claimdesk/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS teams (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  team_name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS categories (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  category_name TEXT NOT NULL,
  team_id INTEGER,
  send_to_l1_monitor INTEGER NOT NULL DEFAULT 0,
  FOREIGN KEY(team_id) REFERENCES teams(id)
);

CREATE TABLE IF NOT EXISTS configs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  config_name TEXT NOT NULL,
  mappings_json TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS claim_edit_rules (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  config_id INTEGER NOT NULL,
  category_id INTEGER NOT NULL,
  edit_text TEXT NOT NULL,
  UNIQUE(config_id, edit_text),
  FOREIGN KEY(config_id) REFERENCES configs(id),
  FOREIGN KEY(category_id) REFERENCES categories(id)
);

CREATE TABLE IF NOT EXISTS claim_note_rules (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  config_id INTEGER NOT NULL,
  category_id INTEGER NOT NULL,
  note_keyword TEXT NOT NULL,
  UNIQUE(config_id, note_keyword),
  FOREIGN KEY(config_id) REFERENCES configs(id),
  FOREIGN KEY(category_id) REFERENCES categories(id)
);

CREATE TABLE IF NOT EXISTS client_team_associations (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  config_id INTEGER NOT NULL,
  team_id INTEGER NOT NULL,
  UNIQUE(config_id, team_id),
  FOREIGN KEY(config_id) REFERENCES configs(id),
  FOREIGN KEY(team_id) REFERENCES teams(id)
);

CREATE TABLE IF NOT EXISTS team_report_configurations (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  report_name TEXT NOT NULL,
  payload_json TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_edit_rules_config ON claim_edit_rules(config_id);
CREATE INDEX IF NOT EXISTS idx_note_rules_config ON claim_note_rules(config_id);
CREATE INDEX IF NOT EXISTS idx_associations_config ON client_team_associations(config_id);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// --- teams ---

func (d *DB) CreateTeam(name string) (internal.Team, error) {
	result, err := d.conn.Exec(`INSERT INTO teams (team_name) VALUES (?)`, name)
	if err != nil {
		return internal.Team{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return internal.Team{}, err
	}
	return internal.Team{ID: int(id), Name: name}, nil
}

func (d *DB) ListTeams() ([]internal.Team, error) {
	rows, err := d.conn.Query(`SELECT id, team_name FROM teams ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.Team
	for rows.Next() {
		var t internal.Team
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// DeleteTeam removes a team, detaches its categories and drops any
// client associations referencing it, in one transaction.
func (d *DB) DeleteTeam(id int) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM teams WHERE id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`UPDATE categories SET team_id = NULL WHERE team_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM client_team_associations WHERE team_id = ?`, id); err != nil {
		return err
	}

	return tx.Commit()
}

// --- categories ---

func (d *DB) CreateCategory(name string, teamID *int, sendToL1Monitor bool) (internal.Category, error) {
	result, err := d.conn.Exec(`
INSERT INTO categories (category_name, team_id, send_to_l1_monitor) VALUES (?, ?, ?)
`, name, teamID, boolToInt(sendToL1Monitor))
	if err != nil {
		return internal.Category{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return internal.Category{}, err
	}
	return internal.Category{ID: int(id), Name: name, TeamID: teamID, SendToL1Monitor: sendToL1Monitor}, nil
}

// ListCategories joins the owning team's display name at read time so
// a team rename is never stale in category views.
func (d *DB) ListCategories() ([]internal.Category, error) {
	rows, err := d.conn.Query(`
SELECT c.id, c.category_name, c.team_id, COALESCE(t.team_name, 'Unassigned'), c.send_to_l1_monitor
FROM categories c
LEFT JOIN teams t ON t.id = c.team_id
ORDER BY c.category_name ASC
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.Category
	for rows.Next() {
		var c internal.Category
		var l1 int
		if err := rows.Scan(&c.ID, &c.Name, &c.TeamID, &c.TeamName, &l1); err != nil {
			return nil, err
		}
		c.SendToL1Monitor = l1 != 0
		out = append(out, c)
	}
	return out, rows.Err()
}

func (d *DB) UpdateCategoryTeam(id int, teamID *int) error {
	result, err := d.conn.Exec(`UPDATE categories SET team_id = ? WHERE id = ?`, teamID, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("category not found: id=%d", id)
	}
	return nil
}

// DeleteCategory removes a category together with every rule that
// pointed at it.
func (d *DB) DeleteCategory(id int) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM categories WHERE id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM claim_edit_rules WHERE category_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM claim_note_rules WHERE category_id = ?`, id); err != nil {
		return err
	}

	return tx.Commit()
}

// --- client configs ---

func (d *DB) CreateConfig(name string, mappings map[string]string) (internal.ClientConfig, error) {
	blob, err := json.Marshal(mappings)
	if err != nil {
		return internal.ClientConfig{}, err
	}
	result, err := d.conn.Exec(`INSERT INTO configs (config_name, mappings_json) VALUES (?, ?)`, name, string(blob))
	if err != nil {
		return internal.ClientConfig{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return internal.ClientConfig{}, err
	}
	return internal.ClientConfig{ID: int(id), Name: name, ColumnMappings: mappings}, nil
}

func (d *DB) UpdateConfig(id int, name string, mappings map[string]string) error {
	blob, err := json.Marshal(mappings)
	if err != nil {
		return err
	}
	result, err := d.conn.Exec(`
UPDATE configs SET config_name = ?, mappings_json = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?
`, name, string(blob), id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("config not found: id=%d", id)
	}
	return nil
}

func (d *DB) GetConfig(id int) (*internal.ClientConfig, error) {
	var cfg internal.ClientConfig
	var blob string
	err := d.conn.QueryRow(`SELECT id, config_name, mappings_json FROM configs WHERE id = ?`, id).
		Scan(&cfg.ID, &cfg.Name, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(blob), &cfg.ColumnMappings); err != nil {
		return nil, fmt.Errorf("config %d has invalid mappings: %w", id, err)
	}
	return &cfg, nil
}

func (d *DB) MustConfig(id int) (internal.ClientConfig, error) {
	cfg, err := d.GetConfig(id)
	if err != nil {
		return internal.ClientConfig{}, err
	}
	if cfg == nil {
		return internal.ClientConfig{}, fmt.Errorf("config not found: id=%d", id)
	}
	return *cfg, nil
}

func (d *DB) ListConfigs() ([]internal.ClientConfig, error) {
	rows, err := d.conn.Query(`SELECT id, config_name, mappings_json FROM configs ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.ClientConfig
	for rows.Next() {
		var cfg internal.ClientConfig
		var blob string
		if err := rows.Scan(&cfg.ID, &cfg.Name, &blob); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(blob), &cfg.ColumnMappings); err != nil {
			return nil, fmt.Errorf("config %d has invalid mappings: %w", cfg.ID, err)
		}
		out = append(out, cfg)
	}
	return out, rows.Err()
}

// DeleteConfig removes a client configuration with its rules and team
// associations.
func (d *DB) DeleteConfig(id int) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM configs WHERE id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM claim_edit_rules WHERE config_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM claim_note_rules WHERE config_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM client_team_associations WHERE config_id = ?`, id); err != nil {
		return err
	}

	return tx.Commit()
}

// --- classification rules ---

func ruleTable(kind internal.RuleKind) (table, textColumn string, err error) {
	switch kind {
	case internal.RuleEdit:
		return "claim_edit_rules", "edit_text", nil
	case internal.RuleNote:
		return "claim_note_rules", "note_keyword", nil
	default:
		return "", "", fmt.Errorf("unsupported rule kind: %s", kind)
	}
}

// GetRules returns a config's rules in insertion order, with category
// and team display names joined at read time. Insertion order is the
// tie-break order for equal-length note keywords.
func (d *DB) GetRules(kind internal.RuleKind, configID int) ([]internal.Rule, error) {
	table, textColumn, err := ruleTable(kind)
	if err != nil {
		return nil, err
	}

	rows, err := d.conn.Query(`
SELECT r.`+textColumn+`, r.category_id,
       COALESCE(c.category_name, 'Unknown'),
       COALESCE(t.team_name, 'Unknown')
FROM `+table+` r
LEFT JOIN categories c ON c.id = r.category_id
LEFT JOIN teams t ON t.id = c.team_id
WHERE r.config_id = ?
ORDER BY r.id ASC
`, configID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.Rule
	for rows.Next() {
		var r internal.Rule
		if err := rows.Scan(&r.Text, &r.CategoryID, &r.CategoryName, &r.TeamName); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetRuleSet loads both rule kinds for a config as one snapshot.
func (d *DB) GetRuleSet(configID int) (internal.RuleSet, error) {
	editRules, err := d.GetRules(internal.RuleEdit, configID)
	if err != nil {
		return internal.RuleSet{}, err
	}
	noteRules, err := d.GetRules(internal.RuleNote, configID)
	if err != nil {
		return internal.RuleSet{}, err
	}
	return internal.RuleSet{EditRules: editRules, NoteRules: noteRules}, nil
}

// SaveRules upserts assignments by (config_id, text): an existing rule
// gets its category updated, a new text is inserted. All or nothing.
func (d *DB) SaveRules(kind internal.RuleKind, configID int, assignments []internal.RuleAssignment) error {
	table, textColumn, err := ruleTable(kind)
	if err != nil {
		return err
	}

	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO ` + table + ` (config_id, category_id, ` + textColumn + `) VALUES (?, ?, ?)
ON CONFLICT(config_id, ` + textColumn + `) DO UPDATE SET category_id = excluded.category_id
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, a := range assignments {
		if _, err := stmt.Exec(configID, a.CategoryID, a.Text); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) DeleteRule(kind internal.RuleKind, configID int, text string) error {
	table, textColumn, err := ruleTable(kind)
	if err != nil {
		return err
	}
	_, err = d.conn.Exec(`DELETE FROM `+table+` WHERE config_id = ? AND `+textColumn+` = ?`, configID, text)
	return err
}

// --- client-team associations ---

func (d *DB) GetClientTeamAssociations(configID int) ([]int, error) {
	rows, err := d.conn.Query(`
SELECT team_id FROM client_team_associations WHERE config_id = ? ORDER BY team_id ASC
`, configID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// SaveClientTeamAssociations replaces a config's association set.
func (d *DB) SaveClientTeamAssociations(configID int, teamIDs []int) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM client_team_associations WHERE config_id = ?`, configID); err != nil {
		return err
	}
	for _, teamID := range teamIDs {
		if _, err := tx.Exec(`
INSERT INTO client_team_associations (config_id, team_id) VALUES (?, ?)
`, configID, teamID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// --- team report configurations ---

func (d *DB) CreateReportConfig(name, payloadJSON string) (internal.ReportConfig, error) {
	result, err := d.conn.Exec(`
INSERT INTO team_report_configurations (report_name, payload_json) VALUES (?, ?)
`, name, payloadJSON)
	if err != nil {
		return internal.ReportConfig{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return internal.ReportConfig{}, err
	}
	return internal.ReportConfig{ID: int(id), Name: name, PayloadJSON: payloadJSON}, nil
}

func (d *DB) UpdateReportConfig(id int, name, payloadJSON string) error {
	result, err := d.conn.Exec(`
UPDATE team_report_configurations SET report_name = ?, payload_json = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?
`, name, payloadJSON, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("report config not found: id=%d", id)
	}
	return nil
}

func (d *DB) ListReportConfigs() ([]internal.ReportConfig, error) {
	rows, err := d.conn.Query(`SELECT id, report_name, payload_json FROM team_report_configurations ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.ReportConfig
	for rows.Next() {
		var rc internal.ReportConfig
		if err := rows.Scan(&rc.ID, &rc.Name, &rc.PayloadJSON); err != nil {
			return nil, err
		}
		out = append(out, rc)
	}
	return out, rows.Err()
}

// --- metadata ---

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
