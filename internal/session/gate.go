package session

import "errors"

// LoginNotice 未登录时的阻塞提示
const LoginNotice = "Please login first."

// ErrNotLoggedIn 未登录
var ErrNotLoggedIn = errors.New("not logged in")

// Ensure 受限操作前的前置检查；返回错误时调用方必须放弃该操作
func Ensure(st *State) error {
	if st == nil || !st.LoggedIn || st.Email == "" {
		return ErrNotLoggedIn
	}
	return nil
}
