package session

import (
	"errors"
	"testing"
	"time"
)

func TestStoreCreateAndGet(t *testing.T) {
	s := NewStore(time.Hour)
	st := s.Create()
	if st.Token == "" || st.Scene == nil {
		t.Fatalf("session not initialised: %+v", st)
	}
	got, ok := s.Get(st.Token)
	if !ok || got != st {
		t.Fatalf("Get returned %v, %v", got, ok)
	}
	if _, ok := s.Get("unknown"); ok {
		t.Fatalf("unknown token should not resolve")
	}
}

func TestStoreExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewStore(time.Minute)
	s.now = func() time.Time { return now }

	st := s.Create()
	now = now.Add(30 * time.Second)
	if _, ok := s.Get(st.Token); !ok {
		t.Fatalf("session should still be alive")
	}
	// Get 顺延过期时间
	now = now.Add(45 * time.Second)
	if _, ok := s.Get(st.Token); !ok {
		t.Fatalf("session should have been extended")
	}
	now = now.Add(2 * time.Minute)
	if _, ok := s.Get(st.Token); ok {
		t.Fatalf("session should have expired")
	}
	if s.Len() != 0 {
		t.Fatalf("expired session not purged")
	}
}

func TestLoginLogout(t *testing.T) {
	s := NewStore(time.Hour)
	st := s.Create()

	if !errors.Is(Ensure(st), ErrNotLoggedIn) {
		t.Fatalf("anonymous session must not pass the gate")
	}
	if !s.Login(st.Token, "a@b.com") {
		t.Fatalf("login failed")
	}
	if err := Ensure(st); err != nil {
		t.Fatalf("logged in session rejected: %v", err)
	}
	s.Logout(st.Token)
	if Ensure(st) == nil {
		t.Fatalf("logged out session passed the gate")
	}
	if s.Login("missing", "a@b.com") {
		t.Fatalf("login on unknown token should fail")
	}
}

func TestEnsureNilSession(t *testing.T) {
	if !errors.Is(Ensure(nil), ErrNotLoggedIn) {
		t.Fatalf("nil session must not pass the gate")
	}
	if Ensure(&State{LoggedIn: true}) == nil {
		t.Fatalf("session without email must not pass the gate")
	}
}
