package api

import (
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"

	"ewastelocator/internal/exporter"
)

type download struct {
	artifact  exporter.Artifact
	owner     string
	expiresAt time.Time
}

// downloadStore 一次性下载链接（内存，带过期）
type downloadStore struct {
	mu    sync.Mutex
	items map[string]download
}

func newDownloadStore() *downloadStore {
	return &downloadStore{
		items: make(map[string]download),
	}
}

func (s *downloadStore) put(artifact exporter.Artifact, owner string, ttl time.Duration) (token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpiredLocked(time.Now())

	token = newRandomToken(24)
	s.items[token] = download{
		artifact:  artifact,
		owner:     owner,
		expiresAt: time.Now().Add(ttl),
	}
	return token
}

// take 取出并删除；只允许创建它的会话取用
func (s *downloadStore) take(token, owner string) (download, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpiredLocked(time.Now())

	v, ok := s.items[token]
	if !ok || v.owner != owner {
		return download{}, false
	}
	delete(s.items, token)
	return v, true
}

func (s *downloadStore) purgeExpiredLocked(now time.Time) {
	for k, v := range s.items {
		if now.After(v.expiresAt) {
			delete(s.items, k)
		}
	}
}

func newRandomToken(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
