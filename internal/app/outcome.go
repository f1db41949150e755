package app

import (
	"ewastelocator/internal/exporter"
	"ewastelocator/internal/mapview"
	"ewastelocator/internal/model"
	"ewastelocator/internal/render"
)

// 用户可见的提示文案
const (
	NoticeGeoUnsupported = "Geolocation not supported"
	NoticeGeoUnavailable = "Unable to get your location"
	NoticePickupSaved    = "Pickup request saved in your folder."
	NoticeInvalidCount   = "Please enter a valid item count."
	NoticeMessageSent    = "Message sent! Our team will respond shortly."
	NoticeEmptyMessage   = "Please enter a message."
)

// 表单标识，浏览器端据此重置表单
const (
	FormRecycle = "recycleForm"
	FormMessage = "messageForm"
)

// Outcome 一次用户操作的结果：新的面板内容与需要浏览器执行的副作用
type Outcome struct {
	Panel     *render.Panel        `json:"panel,omitempty"`
	Map       []mapview.Command    `json:"map"`
	Notices   []string             `json:"notices,omitempty"`
	Redirect  string               `json:"redirect,omitempty"`
	ResetForm string               `json:"resetForm,omitempty"`
	Folder    []model.PickupRecord `json:"folder,omitempty"`

	// RequestLocation 浏览器应向用户请求一次定位，再调用 UseMyLocation
	RequestLocation bool `json:"requestLocation,omitempty"`

	// Download 由 API 层转换为下载地址
	Download *exporter.Artifact `json:"-"`

	// Denied 会话校验未通过
	Denied bool `json:"-"`
}

func notice(text string) Outcome {
	return Outcome{Map: []mapview.Command{}, Notices: []string{text}}
}
