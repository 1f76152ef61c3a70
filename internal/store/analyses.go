package store

import (
	"encoding/json"
	"fmt"
	"time"

	"finsight/internal/model"
)

// StoredAnalysis 持久化的单个分析结果
type StoredAnalysis struct {
	Kind      model.AnalysisKind `json:"kind"`
	Payload   json.RawMessage    `json:"payload"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// PutAnalysis 写入（覆盖）某会话某类型的分析结果
// raw 必须能被解码为对应类型的 payload 或 {"error": ...}
func (s *Store) PutAnalysis(sessionID string, kind model.AnalysisKind, raw []byte) error {
	if _, ok := model.ParseAnalysisKind(string(kind)); !ok {
		return fmt.Errorf("unknown analysis kind: %s", kind)
	}
	var check model.AnalysisBundle
	if err := check.SetRaw(kind, raw); err != nil {
		return err
	}
	if _, err := s.GetSession(sessionID); err != nil {
		return err
	}

	_, err := s.db.Exec(`
		INSERT INTO analyses (session_id, kind, payload, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id, kind) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
	`, sessionID, string(kind), string(raw), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}
	return nil
}

// ListAnalyses 某会话全部已存分析结果（按类型排序）
func (s *Store) ListAnalyses(sessionID string) ([]StoredAnalysis, error) {
	rows, err := s.db.Query(`
		SELECT kind, payload, updated_at FROM analyses WHERE session_id = ? ORDER BY kind
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	result := []StoredAnalysis{}
	for rows.Next() {
		var (
			a       StoredAnalysis
			kind    string
			payload string
		)
		if err := rows.Scan(&kind, &payload, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		a.Kind = model.AnalysisKind(kind)
		a.Payload = json.RawMessage(payload)
		result = append(result, a)
	}
	return result, rows.Err()
}

// GetBundle 组装会话的分析快照；未存储的类型为 Absent
func (s *Store) GetBundle(sessionID string) (model.AnalysisBundle, error) {
	if _, err := s.GetSession(sessionID); err != nil {
		return model.AnalysisBundle{}, err
	}
	analyses, err := s.ListAnalyses(sessionID)
	if err != nil {
		return model.AnalysisBundle{}, err
	}

	var bundle model.AnalysisBundle
	for _, a := range analyses {
		if _, ok := model.ParseAnalysisKind(string(a.Kind)); !ok {
			continue
		}
		if err := bundle.SetRaw(a.Kind, a.Payload); err != nil {
			return model.AnalysisBundle{}, err
		}
	}
	return bundle, nil
}
