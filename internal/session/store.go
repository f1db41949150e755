package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"ewastelocator/internal/mapview"
)

// State 单个浏览器标签页的会话状态。处理请求期间需持有锁。
type State struct {
	sync.Mutex

	Token    string
	LoggedIn bool
	Email    string
	Scene    *mapview.Scene

	expiresAt time.Time
}

// Store 会话存储（内存，带过期）
type Store struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]*State
	now   func() time.Time
}

// NewStore 创建会话存储
func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:   ttl,
		items: make(map[string]*State),
		now:   time.Now,
	}
}

// Create 新建匿名会话
func (s *Store) Create() *State {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.purgeExpiredLocked(now)

	st := &State{
		Token:     uuid.NewString(),
		Scene:     mapview.NewScene(),
		expiresAt: now.Add(s.ttl),
	}
	s.items[st.Token] = st
	return st
}

// Get 获取会话并顺延过期时间
func (s *Store) Get(token string) (*State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.purgeExpiredLocked(now)

	st, ok := s.items[token]
	if !ok {
		return nil, false
	}
	st.expiresAt = now.Add(s.ttl)
	return st, true
}

// Login 标记会话已登录
func (s *Store) Login(token, email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.items[token]
	if !ok {
		return false
	}
	st.Lock()
	st.LoggedIn = true
	st.Email = email
	st.Unlock()
	return true
}

// Logout 清除登录标记（会话本身保留）
func (s *Store) Logout(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.items[token]; ok {
		st.Lock()
		st.LoggedIn = false
		st.Email = ""
		st.Unlock()
	}
}

// Delete 删除会话
func (s *Store) Delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, token)
}

// Len 当前会话数
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store) purgeExpiredLocked(now time.Time) {
	for k, v := range s.items {
		if now.After(v.expiresAt) {
			delete(s.items, k)
		}
	}
}
