package render

import (
	"fmt"
	"html"

	"ewastelocator/internal/mapview"
	"ewastelocator/internal/model"
)

// NoResultsMessage 无结果时结果面板展示的文案
const NoResultsMessage = "No centers found in your area."

// DefaultPadding FitBounds 的默认内边距
var DefaultPadding = mapview.Padding{X: 50, Y: 50}

// Item 结果面板中的一条摘要
type Item struct {
	Name    string `json:"name"`
	Summary string `json:"summary"` // address (city)
}

// Panel 结果面板内容；Message 非空时表示没有结果
type Panel struct {
	Items   []Item `json:"items"`
	Message string `json:"message,omitempty"`
}

// Empty 是否为无结果面板
func (p Panel) Empty() bool {
	return len(p.Items) == 0
}

// Renderer 把过滤结果投影到结果面板，并同步驱动地图
type Renderer struct {
	Padding mapview.Padding
}

// New 使用默认内边距创建 Renderer
func New() *Renderer {
	return &Renderer{Padding: DefaultPadding}
}

// Render 渲染结果列表。先清除旧标记再添加新标记，保证地图与列表一一对应。
func (r *Renderer) Render(list []model.Center, p mapview.Presenter) Panel {
	if len(list) == 0 {
		p.ClearMarkers()
		return Panel{Items: []Item{}, Message: NoResultsMessage}
	}

	items := make([]Item, 0, len(list))
	for _, c := range list {
		items = append(items, Item{Name: c.Name, Summary: Summary(c)})
	}
	r.ShowMarkers(list, p)
	return Panel{Items: items}
}

// ShowMarkers 只刷新地图标记，不生成面板（初始加载使用）
func (r *Renderer) ShowMarkers(list []model.Center, p mapview.Presenter) {
	p.ClearMarkers()
	if len(list) == 0 {
		return
	}
	points := make([]mapview.LatLng, 0, len(list))
	for _, c := range list {
		pos := mapview.LatLng{Lat: c.Lat, Lng: c.Lng}
		p.AddMarker(mapview.Marker{
			Position: pos,
			Popup:    Popup(c),
			Layer:    mapview.LayerResults,
			Style:    mapview.PinStyle,
		})
		points = append(points, pos)
	}
	p.FitBounds(points, r.Padding)
}

// Summary 纯文本摘要：address (city)
func Summary(c model.Center) string {
	return fmt.Sprintf("%s (%s)", c.Address, c.City)
}

// Popup 标记弹窗 HTML，字段已转义
func Popup(c model.Center) string {
	return fmt.Sprintf("<b>%s</b><br>%s (%s)",
		html.EscapeString(c.Name), html.EscapeString(c.Address), html.EscapeString(c.City))
}
