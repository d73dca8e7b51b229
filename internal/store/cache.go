package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"wbsdash/internal/model"
)

// CacheKey 缓存键：(文件路径, 修改时间, 大小, 映射摘要, 日期, 操作, 参数)
type CacheKey struct {
	File          model.FileIdentity
	MappingDigest string
	Today         string
	Operation     model.Operation
	Params        []string
}

// String 键的摘要形式
func (k CacheKey) String() string {
	parts := []string{
		string(k.Operation),
		k.File.Path,
		strconv.FormatInt(k.File.ModTime.UnixNano(), 10),
		strconv.FormatInt(k.File.Size, 10),
		k.MappingDigest,
		k.Today,
	}
	parts = append(parts, k.Params...)
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:])
}

// GetCached 读取缓存结果；未命中返回 (nil, false, nil)
func (s *Store) GetCached(key CacheKey) ([]byte, bool, error) {
	var payload []byte
	err := s.db.QueryRow("SELECT payload FROM analysis_cache WHERE cache_key = ?", key.String()).Scan(&payload)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read cache: %w", err)
	}
	return payload, true, nil
}

// PutCached 写入缓存结果，同一文件的旧版本记录一并清除
func (s *Store) PutCached(key CacheKey, payload []byte) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		DELETE FROM analysis_cache
		WHERE file_path = ? AND operation = ? AND cache_key <> ? AND created_at < datetime('now', '-1 day')
	`, key.File.Path, string(key.Operation), key.String()); err != nil {
		return fmt.Errorf("failed to prune cache: %w", err)
	}
	if _, err := tx.Exec(`
		INSERT INTO analysis_cache (cache_key, operation, file_path, payload) VALUES (?, ?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET payload = excluded.payload, created_at = CURRENT_TIMESTAMP
	`, key.String(), string(key.Operation), key.File.Path, payload); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	return tx.Commit()
}

// InvalidateFile 清除某个文件的全部缓存
func (s *Store) InvalidateFile(path string) (int64, error) {
	res, err := s.db.Exec("DELETE FROM analysis_cache WHERE file_path = ?", path)
	if err != nil {
		return 0, fmt.Errorf("failed to invalidate cache: %w", err)
	}
	return res.RowsAffected()
}
