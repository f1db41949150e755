package search

import (
	"strings"

	"ewastelocator/internal/model"
)

// Normalize 查询词归一化：去首尾空白并转小写
func Normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Filter 按城市、名称或邮编做子串匹配，保持目录原有顺序。
// 空查询匹配全部。
func Filter(centers []model.Center, query string) []model.Center {
	q := Normalize(query)
	out := make([]model.Center, 0, len(centers))
	for _, c := range centers {
		if Matches(c, q) {
			out = append(out, c)
		}
	}
	return out
}

// Matches 判断单条记录是否匹配已归一化的查询词
func Matches(c model.Center, normalized string) bool {
	if strings.Contains(strings.ToLower(c.City), normalized) {
		return true
	}
	if strings.Contains(strings.ToLower(c.Name), normalized) {
		return true
	}
	// 邮编按原文匹配，缺失时不参与
	return c.Pin.Present() && strings.Contains(c.Pin.String(), normalized)
}
