package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"ewastelocator/internal/catalog"
	"ewastelocator/internal/exporter"
	"ewastelocator/internal/geo"
	"ewastelocator/internal/mapview"
	"ewastelocator/internal/model"
	"ewastelocator/internal/render"
	"ewastelocator/internal/search"
	"ewastelocator/internal/session"
)

// ErrInvalidCount 物品数量不是非负整数
var ErrInvalidCount = errors.New("invalid item count")

// FolderStore 用户文件夹存储
type FolderStore interface {
	AppendPickup(ctx context.Context, email string, rec model.PickupRecord) (model.PickupRecord, error)
	Folder(ctx context.Context, email string) ([]model.PickupRecord, error)
	FolderJSON(ctx context.Context, email string) ([]byte, error)
}

// MessageStore 联系留言存储
type MessageStore interface {
	SaveMessage(ctx context.Context, msg model.ContactMessage) error
}

// Options 控制器参数
type Options struct {
	LoginURL     string
	DefaultView  mapview.LatLng
	DefaultZoom  int
	LocationZoom int
	Padding      mapview.Padding
	Now          func() time.Time
}

// DefaultOptions 默认参数（印度全境视图）
func DefaultOptions() Options {
	return Options{
		LoginURL:     "/pages/login.html",
		DefaultView:  mapview.LatLng{Lat: 20.5937, Lng: 78.9629},
		DefaultZoom:  5,
		LocationZoom: 12,
		Padding:      render.DefaultPadding,
		Now:          time.Now,
	}
}

// Controller 把每个用户操作分派为独立函数：输入会话状态与表单，输出 Outcome。
// 调用方需持有会话锁。
type Controller struct {
	catalog  *catalog.Catalog
	folders  FolderStore
	messages MessageStore
	renderer *render.Renderer
	opts     Options
	logger   *zap.Logger
}

// NewController 创建控制器
func NewController(c *catalog.Catalog, folders FolderStore, messages MessageStore, opts Options, logger *zap.Logger) *Controller {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		catalog:  c,
		folders:  folders,
		messages: messages,
		renderer: &render.Renderer{Padding: opts.Padding},
		opts:     opts,
		logger:   logger,
	}
}

// gate 受限操作的前置检查；未登录时返回提示与跳转
func (c *Controller) gate(st *session.State) (Outcome, bool) {
	if err := session.Ensure(st); err != nil {
		return Outcome{
			Map:      []mapview.Command{},
			Notices:  []string{session.LoginNotice},
			Redirect: c.opts.LoginURL,
			Denied:   true,
		}, false
	}
	return Outcome{}, true
}

// Init 页面加载：重置地图到默认视图并显示全部回收中心（不需要登录）
func (c *Controller) Init(st *session.State) Outcome {
	st.Scene = mapview.NewScene()
	st.Scene.SetView(c.opts.DefaultView, c.opts.DefaultZoom)
	c.renderer.ShowMarkers(c.catalog.Centers(), st.Scene)
	return Outcome{Map: st.Scene.Drain()}
}

// Search 按查询词过滤并渲染结果
func (c *Controller) Search(st *session.State, query string) Outcome {
	if out, ok := c.gate(st); !ok {
		return out
	}
	list := search.Filter(c.catalog.Centers(), query)
	panel := c.renderer.Render(list, st.Scene)
	c.logger.Debug("search", zap.String("query", query), zap.Int("results", len(list)))
	return Outcome{Panel: &panel, Map: st.Scene.Drain()}
}

// RequestLocation “使用我的位置”第一步：通过会话校验后才允许浏览器请求定位
func (c *Controller) RequestLocation(st *session.State) Outcome {
	if out, ok := c.gate(st); !ok {
		return out
	}
	return Outcome{Map: []mapview.Command{}, RequestLocation: true}
}

// UseMyLocation 请求一次定位，成功后把地图移到当前位置并打点
func (c *Controller) UseMyLocation(ctx context.Context, st *session.State, loc geo.Locator) Outcome {
	if out, ok := c.gate(st); !ok {
		return out
	}
	pos, err := geo.Await(ctx, loc)
	if err != nil {
		if errors.Is(err, geo.ErrUnsupported) {
			return notice(NoticeGeoUnsupported)
		}
		c.logger.Debug("locate failed", zap.Error(err))
		return notice(NoticeGeoUnavailable)
	}

	here := mapview.LatLng{Lat: pos.Lat, Lng: pos.Lng}
	st.Scene.SetView(here, c.opts.LocationZoom)
	st.Scene.AddMarker(mapview.Marker{
		Position: here,
		Popup:    "You are here",
		Layer:    mapview.LayerLocation,
		Style:    mapview.LocationStyle,
	})
	return Outcome{Map: st.Scene.Drain()}
}

// PickupForm 上门回收表单
type PickupForm struct {
	Type    string
	Count   string
	Address string
	Date    string
}

// ParseCount 解析物品数量：必须是非负整数
func ParseCount(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCount, s)
	}
	return n, nil
}

// SubmitPickup 生成记录并追加到当前用户的文件夹
func (c *Controller) SubmitPickup(ctx context.Context, st *session.State, form PickupForm) (Outcome, error) {
	if out, ok := c.gate(st); !ok {
		return out, nil
	}
	count, err := ParseCount(form.Count)
	if err != nil {
		return notice(NoticeInvalidCount), nil
	}

	rec := model.PickupRecord{
		ID:      model.NewPickupID(c.opts.Now()),
		Type:    form.Type,
		Count:   count,
		Address: form.Address,
		Date:    form.Date,
	}
	rec, err = c.folders.AppendPickup(ctx, st.Email, rec)
	if err != nil {
		return Outcome{}, fmt.Errorf("append pickup: %w", err)
	}
	c.logger.Info("pickup request saved", zap.String("email", st.Email), zap.String("id", rec.ID))

	out := notice(NoticePickupSaved)
	out.ResetForm = FormRecycle
	return out, nil
}

// Folder 当前用户的文件夹内容
func (c *Controller) Folder(ctx context.Context, st *session.State) (Outcome, error) {
	if out, ok := c.gate(st); !ok {
		return out, nil
	}
	folder, err := c.folders.Folder(ctx, st.Email)
	if err != nil {
		return Outcome{}, fmt.Errorf("read folder: %w", err)
	}
	return Outcome{Map: []mapview.Command{}, Folder: folder}, nil
}

// ExportFolder 导出当前用户文件夹为可下载文件
func (c *Controller) ExportFolder(ctx context.Context, st *session.State, format exporter.Format) (Outcome, error) {
	if out, ok := c.gate(st); !ok {
		return out, nil
	}

	var artifact exporter.Artifact
	switch format {
	case exporter.FormatXLSX:
		folder, err := c.folders.Folder(ctx, st.Email)
		if err != nil {
			return Outcome{}, fmt.Errorf("read folder: %w", err)
		}
		artifact, err = exporter.XLSX(st.Email, folder)
		if err != nil {
			return Outcome{}, err
		}
	default:
		raw, err := c.folders.FolderJSON(ctx, st.Email)
		if err != nil {
			return Outcome{}, fmt.Errorf("read folder: %w", err)
		}
		artifact = exporter.JSON(st.Email, raw)
	}

	return Outcome{Map: []mapview.Command{}, Download: &artifact}, nil
}

// MessageForm 联系表单
type MessageForm struct {
	Name string
	Body string
}

// SubmitMessage 保存联系留言
func (c *Controller) SubmitMessage(ctx context.Context, st *session.State, form MessageForm) (Outcome, error) {
	if out, ok := c.gate(st); !ok {
		return out, nil
	}
	if strings.TrimSpace(form.Body) == "" {
		return notice(NoticeEmptyMessage), nil
	}

	msg := model.ContactMessage{
		Email:     st.Email,
		Name:      form.Name,
		Body:      form.Body,
		CreatedAt: c.opts.Now(),
	}
	if err := c.messages.SaveMessage(ctx, msg); err != nil {
		return Outcome{}, fmt.Errorf("save message: %w", err)
	}

	out := notice(NoticeMessageSent)
	out.ResetForm = FormMessage
	return out, nil
}
