package mapview

// LatLng 地理坐标
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Padding FitBounds 时的像素内边距
type Padding struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Layer 标记所在图层
type Layer string

const (
	LayerResults  Layer = "results"  // 搜索结果，随结果列表刷新
	LayerLocation Layer = "location" // 用户位置，不受结果刷新影响
)

// MarkerStyle 标记样式
type MarkerStyle struct {
	Shape  string `json:"shape"` // pin / circle
	Radius int    `json:"radius,omitempty"`
	Color  string `json:"color,omitempty"`
}

var (
	PinStyle      = MarkerStyle{Shape: "pin"}
	LocationStyle = MarkerStyle{Shape: "circle", Radius: 6, Color: "#f1c40f"}
)

// Marker 地图标记
type Marker struct {
	Position LatLng      `json:"position"`
	Popup    string      `json:"popup"`
	Layer    Layer       `json:"layer"`
	Style    MarkerStyle `json:"style"`
}

// Presenter 地图展示组件（外部协作方）的最小接口
type Presenter interface {
	SetView(center LatLng, zoom int)
	AddMarker(m Marker)
	FitBounds(points []LatLng, padding Padding)
	// ClearMarkers 只清除结果图层
	ClearMarkers()
}
