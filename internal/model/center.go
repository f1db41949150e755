package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Center 回收中心记录（加载后不可变）
type Center struct {
	Name    string  `json:"name" yaml:"name"`
	Address string  `json:"address" yaml:"address"`
	City    string  `json:"city" yaml:"city"`
	Pin     Pin     `json:"pin,omitzero" yaml:"pin,omitempty"`
	Lat     float64 `json:"lat" yaml:"lat"`
	Lng     float64 `json:"lng" yaml:"lng"`
}

// Pin 邮政编码，数据源中可能是字符串也可能是数字。
// 布尔值按文本处理：true 记为 "true"，false 视为缺失。
type Pin struct {
	text    string
	numeric bool
}

// StringPin 以字符串形式构造 Pin
func StringPin(s string) Pin {
	return Pin{text: s}
}

// NumberPin 以数字形式构造 Pin
func NumberPin(n float64) Pin {
	return Pin{text: formatNumber(n), numeric: true}
}

// String 转为文本（数字按最短十进制表示）
func (p Pin) String() string {
	return p.text
}

// Present 是否有可用的 Pin（空字符串和数字 0 视为缺失）
func (p Pin) Present() bool {
	if p.text == "" {
		return false
	}
	return !(p.numeric && p.text == "0")
}

// IsZero 供 omitempty 判断
func (p Pin) IsZero() bool {
	return p.text == "" && !p.numeric
}

func (p Pin) MarshalJSON() ([]byte, error) {
	if p.IsZero() {
		return []byte("null"), nil
	}
	if p.numeric {
		return []byte(p.text), nil
	}
	return json.Marshal(p.text)
}

func (p *Pin) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = Pin{}
		return nil
	}
	switch {
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = StringPin(s)
		return nil
	case bytes.Equal(data, []byte("true")):
		*p = StringPin("true")
		return nil
	case bytes.Equal(data, []byte("false")):
		*p = Pin{}
		return nil
	}
	n, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("pin must be a string, number or boolean: %s", data)
	}
	*p = NumberPin(n)
	return nil
}

func (p Pin) MarshalYAML() (interface{}, error) {
	if p.IsZero() {
		return nil, nil
	}
	if p.numeric {
		n, _ := strconv.ParseFloat(p.text, 64)
		return n, nil
	}
	return p.text, nil
}

func (p *Pin) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("pin must be a scalar at line %d", node.Line)
	}
	switch node.Tag {
	case "!!null":
		*p = Pin{}
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return fmt.Errorf("invalid pin %q: %w", node.Value, err)
		}
		*p = Pin{}
		if b {
			*p = StringPin("true")
		}
	case "!!int", "!!float":
		n, err := strconv.ParseFloat(node.Value, 64)
		if err != nil {
			return fmt.Errorf("invalid pin %q: %w", node.Value, err)
		}
		*p = NumberPin(n)
	default:
		*p = StringPin(node.Value)
	}
	return nil
}

func formatNumber(n float64) string {
	s := strconv.FormatFloat(n, 'f', -1, 64)
	if strings.HasPrefix(s, "-0") && n == 0 {
		return "0"
	}
	return s
}
