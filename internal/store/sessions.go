package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"finsight/internal/model"
)

// CreateSession 保存会话及其原始表格
func (s *Store) CreateSession(sess *model.Session, table model.RawTable) error {
	headers, err := json.Marshal(sess.Headers)
	if err != nil {
		return fmt.Errorf("failed to encode headers: %w", err)
	}
	assessment, err := json.Marshal(sess.Assessment)
	if err != nil {
		return fmt.Errorf("failed to encode assessment: %w", err)
	}
	data, err := json.Marshal(storedTable{Headers: table.Headers(), Rows: table.Rows()})
	if err != nil {
		return fmt.Errorf("failed to encode table: %w", err)
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now().UTC()
	}

	_, err = s.db.Exec(`
		INSERT INTO sessions (id, filename, format, headers, row_count, assessment, table_data, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, sess.ID, sess.Filename, sess.Format, string(headers), sess.RowCount, string(assessment), string(data), sess.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// storedTable 按位置保存行，重复表头的列不会丢失
type storedTable struct {
	Headers []string    `json:"headers"`
	Rows    []model.Row `json:"rows"`
}

const sessionColumns = `id, filename, format, headers, row_count, assessment, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*model.Session, error) {
	var (
		sess       model.Session
		headers    string
		assessment string
	)
	if err := row.Scan(&sess.ID, &sess.Filename, &sess.Format, &headers, &sess.RowCount, &assessment, &sess.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(headers), &sess.Headers); err != nil {
		return nil, fmt.Errorf("failed to decode headers: %w", err)
	}
	if err := json.Unmarshal([]byte(assessment), &sess.Assessment); err != nil {
		return nil, fmt.Errorf("failed to decode assessment: %w", err)
	}
	return &sess, nil
}

// GetSession 按 ID 查询会话
func (s *Store) GetSession(id string) (*model.Session, error) {
	row := s.db.QueryRow(`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return sess, nil
}

// ListSessions 按创建时间倒序
func (s *Store) ListSessions() ([]*model.Session, error) {
	rows, err := s.db.Query(`SELECT ` + sessionColumns + ` FROM sessions ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []*model.Session{}
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// GetSessionTable 会话上传时的原始表格
func (s *Store) GetSessionTable(id string) (model.RawTable, error) {
	var data string
	err := s.db.QueryRow(`SELECT table_data FROM sessions WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return model.RawTable{}, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.RawTable{}, fmt.Errorf("failed to get session table: %w", err)
	}
	var table model.RawTable
	if err := json.Unmarshal([]byte(data), &table); err != nil {
		return model.RawTable{}, fmt.Errorf("failed to decode session table: %w", err)
	}
	return table, nil
}

// DeleteSession 删除会话及其分析结果
func (s *Store) DeleteSession(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM analyses WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete analyses: %w", err)
	}
	res, err := tx.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return tx.Commit()
}
