package exporter

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/xuri/excelize/v2"

	"ewastelocator/internal/model"
)

// Format 导出格式
type Format string

const (
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

const (
	ContentTypeJSON = "application/json"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	sheetName = "Folder"
)

var nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]`)

// Artifact 可下载的导出文件
type Artifact struct {
	FileName    string
	ContentType string
	Body        []byte
}

// SanitizeEmail 把非字母数字字符替换为下划线
func SanitizeEmail(email string) string {
	return nonAlnum.ReplaceAllString(email, "_")
}

// FileName 导出文件名：ewaste-folder-<sanitized-email>.<ext>
func FileName(email string, format Format) string {
	return fmt.Sprintf("ewaste-folder-%s.%s", SanitizeEmail(email), format)
}

// ParseFormat 解析导出格式，空值默认为 JSON
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported export format: %q", s)
	}
}

// JSON 以文件夹原始 JSON 作为导出内容
func JSON(email string, folderJSON []byte) Artifact {
	body := folderJSON
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("[]")
	}
	return Artifact{
		FileName:    FileName(email, FormatJSON),
		ContentType: ContentTypeJSON,
		Body:        body,
	}
}

// XLSX 导出为表格，每条记录一行
func XLSX(email string, folder []model.PickupRecord) (Artifact, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return Artifact{}, err
	}

	header := []interface{}{"ID", "Type", "Count", "Address", "Date"}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return Artifact{}, fmt.Errorf("写入表头失败: %w", err)
	}
	for i, rec := range folder {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return Artifact{}, err
		}
		row := []interface{}{rec.ID, rec.Type, rec.Count, rec.Address, rec.Date}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return Artifact{}, fmt.Errorf("写入第 %d 行失败: %w", i+2, err)
		}
	}
	_ = f.SetColWidth(sheetName, "A", "A", 26)
	_ = f.SetColWidth(sheetName, "D", "D", 40)
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return Artifact{}, fmt.Errorf("生成表格失败: %w", err)
	}
	return Artifact{
		FileName:    FileName(email, FormatXLSX),
		ContentType: ContentTypeXLSX,
		Body:        buf.Bytes(),
	}, nil
}
