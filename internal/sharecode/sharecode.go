package sharecode

import (
	"fmt"
	"image/color"

	"github.com/skip2/go-qrcode"

	"ewastelocator/internal/model"
)

// DefaultSize 二维码边长（像素）
const DefaultSize = 256

// MapZoom 分享链接的缩放级别
const MapZoom = 17

// MapURL 回收中心在 OpenStreetMap 上的链接
func MapURL(c model.Center) string {
	return fmt.Sprintf("https://www.openstreetmap.org/?mlat=%.6f&mlon=%.6f#map=%d/%.6f/%.6f",
		c.Lat, c.Lng, MapZoom, c.Lat, c.Lng)
}

// PNG 生成指向回收中心位置的二维码
func PNG(c model.Center, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultSize
	}
	qr, err := qrcode.New(MapURL(c), qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("build qr: %w", err)
	}
	qr.ForegroundColor = color.RGBA{0x1e, 0x6b, 0x3a, 0xff}
	qr.BackgroundColor = color.White
	return qr.PNG(size)
}
