package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// 邮箱已存在时不写入，由影响行数判断
const insertUser = `
	INSERT INTO users (email, password_hash, created_at) VALUES (?, ?, ?)
	ON CONFLICT(email) DO NOTHING
`

// CreateUser 注册用户（密码以 bcrypt 哈希保存）
func (s *Store) CreateUser(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return errors.New("email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	res, err := s.db.ExecContext(ctx, s.rebind(insertUser), email, string(hash), nowText())
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserExists
	}
	return nil
}

// Authenticate 校验邮箱与密码
func (s *Store) Authenticate(ctx context.Context, email, password string) error {
	var hash string
	err := s.db.QueryRowContext(ctx, s.rebind("SELECT password_hash FROM users WHERE email = ?"), strings.TrimSpace(email)).Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidCredentials
		}
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
