package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"ewastelocator/internal/model"
)

// Source 回收中心数据源（静态资源）
type Source interface {
	Fetch(ctx context.Context) ([]model.Center, error)
	String() string
}

// NewSource 根据位置选择数据源：http(s) 地址走 HTTP，其余视为本地文件
func NewSource(location string, client *http.Client) (Source, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, errors.New("catalog source is required")
	}
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		if client == nil {
			client = http.DefaultClient
		}
		return &HTTPSource{URL: location, Client: client}, nil
	}
	return &FileSource{Path: location}, nil
}

// FileSource 本地 JSON / YAML 文件
type FileSource struct {
	Path string
}

func (s *FileSource) String() string { return s.Path }

func (s *FileSource) Fetch(ctx context.Context) ([]model.Center, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", s.Path, err)
	}
	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".yaml", ".yml":
		return decodeYAML(data)
	default:
		return decodeJSON(data)
	}
}

// HTTPSource 远程静态资源
type HTTPSource struct {
	URL    string
	Client *http.Client
}

func (s *HTTPSource) String() string { return s.URL }

func (s *HTTPSource) Fetch(ctx context.Context) ([]model.Center, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("catalog endpoint %d: %s", resp.StatusCode, string(b))
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	ct := resp.Header.Get("Content-Type")
	if strings.Contains(ct, "yaml") {
		return decodeYAML(data)
	}
	return decodeJSON(data)
}

// RecordError 单条记录解析失败；其余记录照常加载
type RecordError struct {
	Index int
	Err   error
}

func (e RecordError) Error() string {
	return fmt.Sprintf("record %d: %v", e.Index, e.Err)
}

func (e RecordError) Unwrap() error { return e.Err }

// SkippedError 部分记录被跳过
type SkippedError struct {
	Records []RecordError
}

func (e *SkippedError) Error() string {
	return fmt.Sprintf("skipped %d catalog record(s), first: %v", len(e.Records), e.Records[0])
}

func skipped(records []RecordError) error {
	if len(records) == 0 {
		return nil
	}
	return &SkippedError{Records: records}
}

func decodeJSON(data []byte) ([]model.Center, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode catalog json: %w", err)
	}
	centers := make([]model.Center, 0, len(raw))
	var bad []RecordError
	for i, r := range raw {
		var c model.Center
		if err := json.Unmarshal(r, &c); err != nil {
			bad = append(bad, RecordError{Index: i, Err: err})
			continue
		}
		centers = append(centers, c)
	}
	return centers, skipped(bad)
}

func decodeYAML(data []byte) ([]model.Center, error) {
	var nodes []yaml.Node
	if err := yaml.Unmarshal(data, &nodes); err != nil {
		return nil, fmt.Errorf("decode catalog yaml: %w", err)
	}
	centers := make([]model.Center, 0, len(nodes))
	var bad []RecordError
	for i := range nodes {
		var c model.Center
		if err := nodes[i].Decode(&c); err != nil {
			bad = append(bad, RecordError{Index: i, Err: err})
			continue
		}
		centers = append(centers, c)
	}
	return centers, skipped(bad)
}
