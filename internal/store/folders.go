package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"ewastelocator/internal/model"
)

// FolderKeyPrefix 文件夹键前缀
const FolderKeyPrefix = "folder:"

// FolderKey 用户文件夹的存储键
func FolderKey(email string) string {
	return FolderKeyPrefix + email
}

// AppendPickup 读出用户文件夹、追加记录并写回（同一事务内，后写覆盖）。
// 记录 ID 在文件夹内唯一且递增，返回实际写入的记录。
func (s *Store) AppendPickup(ctx context.Context, email string, rec model.PickupRecord) (model.PickupRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return rec, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	key := FolderKey(email)
	folder := []model.PickupRecord{}

	var raw string
	err = tx.QueryRowContext(ctx, s.rebind("SELECT value FROM kv WHERE key = ?"), key).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return rec, fmt.Errorf("read folder: %w", err)
	default:
		if err := json.Unmarshal([]byte(raw), &folder); err != nil {
			return rec, fmt.Errorf("decode folder %s: %w", key, err)
		}
	}

	if n := len(folder); n > 0 {
		rec.ID = model.UniquePickupID(folder[n-1].ID, rec.ID)
	}
	folder = append(folder, rec)
	data, err := json.Marshal(folder)
	if err != nil {
		return rec, err
	}
	if _, err := tx.ExecContext(ctx, s.rebind(upsertKV), key, string(data), nowText()); err != nil {
		return rec, fmt.Errorf("write folder: %w", err)
	}
	return rec, tx.Commit()
}

// Folder 用户全部上门回收记录（按追加顺序）
func (s *Store) Folder(ctx context.Context, email string) ([]model.PickupRecord, error) {
	raw, err := s.FolderJSON(ctx, email)
	if err != nil {
		return nil, err
	}
	folder := []model.PickupRecord{}
	if err := json.Unmarshal(raw, &folder); err != nil {
		return nil, fmt.Errorf("decode folder %s: %w", FolderKey(email), err)
	}
	return folder, nil
}

// FolderJSON 文件夹的原始 JSON；不存在时为 []
func (s *Store) FolderJSON(ctx context.Context, email string) ([]byte, error) {
	raw, err := s.GetValue(ctx, FolderKey(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return []byte("[]"), nil
		}
		return nil, err
	}
	return []byte(raw), nil
}
