package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"ewastelocator/internal/util"
)

// AppConfig 应用配置
type AppConfig struct {
	Server  ServerConfig  `toml:"server"`
	Data    DataConfig    `toml:"data"`
	Catalog CatalogConfig `toml:"catalog"`
	Storage StorageConfig `toml:"storage"`
	Session SessionConfig `toml:"session"`
	Map     MapConfig     `toml:"map"`
	Log     LogConfig     `toml:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port        int  `toml:"port"`
	DevMode     bool `toml:"dev_mode"`
	OpenBrowser bool `toml:"open_browser"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir string `toml:"data_dir"`
}

// CatalogConfig 回收中心目录来源
type CatalogConfig struct {
	// Source 本地文件路径（相对数据目录）或 http(s) 地址
	Source string `toml:"source"`
	Watch  bool   `toml:"watch"`
	// FetchTimeout 远程拉取超时，0 表示不设超时
	FetchTimeout Duration `toml:"fetch_timeout"`
}

// StorageConfig 持久化配置
type StorageConfig struct {
	Driver string `toml:"driver"` // sqlite3 / sqlite / pgx
	DSN    string `toml:"dsn"`    // 为空时使用数据目录下的 ewaste.db
}

// SessionConfig 会话配置
type SessionConfig struct {
	TTL      Duration `toml:"ttl"`
	LoginURL string   `toml:"login_url"`
}

// MapConfig 地图默认视图
type MapConfig struct {
	CenterLat    float64 `toml:"center_lat"`
	CenterLng    float64 `toml:"center_lng"`
	Zoom         int     `toml:"zoom"`
	LocationZoom int     `toml:"location_zoom"`
	Padding      int     `toml:"padding"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `toml:"level"`
	Dev   bool   `toml:"dev"`
}

// Duration 支持 "30m" 形式的时长
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		d.Duration = 0
		return nil
	}
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string
	PortSpecified bool
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:        20390,
			DevMode:     false,
			OpenBrowser: true,
		},
		Data: DataConfig{
			DataDir: "data",
		},
		Catalog: CatalogConfig{
			Source: "centers.json",
			Watch:  true,
		},
		Storage: StorageConfig{
			Driver: "sqlite3",
		},
		Session: SessionConfig{
			TTL:      Duration{12 * time.Hour},
			LoginURL: "/pages/login.html",
		},
		Map: MapConfig{
			CenterLat:    20.5937,
			CenterLng:    78.9629,
			Zoom:         5,
			LocationZoom: 12,
			Padding:      50,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// DefaultPath 默认配置文件位置：可执行文件同目录下的 config.toml
func DefaultPath() string {
	exeDir, err := GetExeDir()
	if err != nil {
		// 无法获取可执行文件目录，使用当前目录
		exeDir = "."
	}
	return filepath.Join(exeDir, "config.toml")
}

// LoadConfigWithInfo 从 config.toml 加载配置并返回元信息；path 为空时使用默认位置
func LoadConfigWithInfo(path string) (*AppConfig, LoadConfigInfo, error) {
	if path == "" {
		path = DefaultPath()
	}
	info := LoadConfigInfo{Path: path}
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// 配置文件不存在，使用默认配置
			applyEnv(config)
			return config, info, nil
		}
		return nil, info, err
	}

	info.PortSpecified = isPortSpecifiedInToml(data)

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, info, err
	}

	applyEnv(config)
	return config, info, nil
}

// 环境变量覆盖（用于容器 / 本地运行）
func applyEnv(config *AppConfig) {
	if v := os.Getenv("EWASTE_CATALOG_SOURCE"); v != "" {
		config.Catalog.Source = v
	}
	if v := os.Getenv("EWASTE_STORAGE_DRIVER"); v != "" {
		config.Storage.Driver = v
	}
	if v := os.Getenv("EWASTE_STORAGE_DSN"); v != "" {
		config.Storage.DSN = v
	}
}

// LoadConfig 从 config.toml 加载配置
func LoadConfig(path string) (*AppConfig, error) {
	config, _, err := LoadConfigWithInfo(path)
	return config, err
}

// SaveConfig 保存配置
func SaveConfig(config *AppConfig, path string) error {
	if path == "" {
		path = DefaultPath()
	}
	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}
	return util.WriteFileAtomic(path, data, 0644)
}

// ResolveDataDir 数据目录的绝对位置；相对路径以可执行文件目录为基准
func ResolveDataDir(config *AppConfig) string {
	if filepath.IsAbs(config.Data.DataDir) {
		return config.Data.DataDir
	}
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	return filepath.Join(exeDir, config.Data.DataDir)
}

// EnsureDataDir 确保数据目录存在
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := ResolveDataDir(config)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}
	return dataDir, nil
}

// CatalogLocation 目录来源：URL 与绝对路径原样返回，相对路径放在数据目录下
func CatalogLocation(config *AppConfig, dataDir string) string {
	src := config.Catalog.Source
	if src == "" || filepath.IsAbs(src) || isURL(src) {
		return src
	}
	return filepath.Join(dataDir, src)
}

// StorageDSN 存储连接串；SQLite 未配置时使用数据目录下的 ewaste.db
func StorageDSN(config *AppConfig, dataDir string) string {
	if config.Storage.DSN != "" {
		return config.Storage.DSN
	}
	return filepath.Join(dataDir, "ewaste.db")
}

func isURL(s string) bool {
	return len(s) > 7 && (s[:7] == "http://" || (len(s) > 8 && s[:8] == "https://"))
}
