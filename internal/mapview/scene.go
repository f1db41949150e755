package mapview

// Op 地图指令类型
type Op string

const (
	OpSetView      Op = "setView"
	OpAddMarker    Op = "addMarker"
	OpFitBounds    Op = "fitBounds"
	OpClearMarkers Op = "clearMarkers"
)

// Command 发给浏览器端地图组件执行的指令
type Command struct {
	Op      Op       `json:"op"`
	Center  *LatLng  `json:"center,omitempty"`
	Zoom    int      `json:"zoom,omitempty"`
	Marker  *Marker  `json:"marker,omitempty"`
	Bounds  []LatLng `json:"bounds,omitempty"`
	Padding *Padding `json:"padding,omitempty"`
}

// Scene 服务端维护的地图状态：记录当前显示的标记，并把操作记入日志，
// 由调用方 Drain 后下发给浏览器。
type Scene struct {
	center   LatLng
	zoom     int
	results  []Marker
	location []Marker
	journal  []Command
}

// NewScene 创建空场景
func NewScene() *Scene {
	return &Scene{}
}

func (s *Scene) SetView(center LatLng, zoom int) {
	s.center = center
	s.zoom = zoom
	c := center
	s.journal = append(s.journal, Command{Op: OpSetView, Center: &c, Zoom: zoom})
}

func (s *Scene) AddMarker(m Marker) {
	if m.Layer == "" {
		m.Layer = LayerResults
	}
	if m.Layer == LayerLocation {
		s.location = append(s.location, m)
	} else {
		s.results = append(s.results, m)
	}
	mc := m
	s.journal = append(s.journal, Command{Op: OpAddMarker, Marker: &mc})
}

func (s *Scene) FitBounds(points []LatLng, padding Padding) {
	if len(points) == 0 {
		return
	}
	bounds := make([]LatLng, len(points))
	copy(bounds, points)
	p := padding
	s.journal = append(s.journal, Command{Op: OpFitBounds, Bounds: bounds, Padding: &p})
}

func (s *Scene) ClearMarkers() {
	s.results = nil
	s.journal = append(s.journal, Command{Op: OpClearMarkers})
}

// Markers 当前结果图层上的标记
func (s *Scene) Markers() []Marker {
	out := make([]Marker, len(s.results))
	copy(out, s.results)
	return out
}

// LocationMarkers 用户位置图层上的标记
func (s *Scene) LocationMarkers() []Marker {
	out := make([]Marker, len(s.location))
	copy(out, s.location)
	return out
}

// View 当前视图中心与缩放级别
func (s *Scene) View() (LatLng, int) {
	return s.center, s.zoom
}

// Drain 取出并清空未下发的指令
func (s *Scene) Drain() []Command {
	out := s.journal
	s.journal = nil
	if out == nil {
		return []Command{}
	}
	return out
}
