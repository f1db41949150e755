package model

import "time"

// PickupIDLayout 上门回收记录 ID 的时间格式（UTC，毫秒精度）
const PickupIDLayout = "2006-01-02T15:04:05.000Z"

// PickupRecord 上门回收申请
type PickupRecord struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Count   int    `json:"count"`
	Address string `json:"address"`
	Date    string `json:"date"`
}

// NewPickupID 根据提交时间生成记录 ID
func NewPickupID(now time.Time) string {
	return now.UTC().Format(PickupIDLayout)
}

// UniquePickupID 保证新 ID 严格晚于上一条记录：同一毫秒内的提交顺延 1ms
func UniquePickupID(prev, id string) string {
	last, err := time.Parse(PickupIDLayout, prev)
	if err != nil {
		return id
	}
	next, err := time.Parse(PickupIDLayout, id)
	if err != nil || next.After(last) {
		return id
	}
	return NewPickupID(last.Add(time.Millisecond))
}

// ContactMessage 联系留言
type ContactMessage struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}
