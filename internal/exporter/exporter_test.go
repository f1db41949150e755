package exporter

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"ewastelocator/internal/model"
)

func TestFileName(t *testing.T) {
	cases := []struct {
		email  string
		format Format
		want   string
	}{
		{"a.b@c.com", FormatJSON, "ewaste-folder-a_b_c_com.json"},
		{"Mixed.Case+tag@Example.org", FormatJSON, "ewaste-folder-Mixed_Case_tag_Example_org.json"},
		{"a.b@c.com", FormatXLSX, "ewaste-folder-a_b_c_com.xlsx"},
	}
	for _, c := range cases {
		if got := FileName(c.email, c.format); got != c.want {
			t.Errorf("FileName(%q, %s) = %q, want %q", c.email, c.format, got, c.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat(""); err != nil || f != FormatJSON {
		t.Fatalf("default format = %s, %v", f, err)
	}
	if f, err := ParseFormat("xlsx"); err != nil || f != FormatXLSX {
		t.Fatalf("xlsx format = %s, %v", f, err)
	}
	if _, err := ParseFormat("csv"); err == nil {
		t.Fatalf("csv should be rejected")
	}
}

func TestJSONArtifact(t *testing.T) {
	a := JSON("a.b@c.com", nil)
	if string(a.Body) != "[]" || a.ContentType != ContentTypeJSON {
		t.Fatalf("unexpected artifact: %+v", a)
	}
	raw := []byte(`[{"id":"1","type":"tv","count":1,"address":"x","date":"d"}]`)
	if got := JSON("a@b.c", raw); !bytes.Equal(got.Body, raw) {
		t.Fatalf("body changed: %s", got.Body)
	}
}

func TestXLSXArtifact(t *testing.T) {
	folder := []model.PickupRecord{
		{ID: "2024-01-01T00:00:00.000Z", Type: "laptop", Count: 2, Address: "12 MG Road", Date: "2024-01-05"},
		{ID: "2024-01-02T00:00:00.000Z", Type: "phone", Count: 1, Address: "4 FC Road", Date: "2024-01-06"},
	}
	a, err := XLSX("a.b@c.com", folder)
	if err != nil {
		t.Fatalf("xlsx: %v", err)
	}
	if a.FileName != "ewaste-folder-a_b_c_com.xlsx" {
		t.Fatalf("file name = %s", a.FileName)
	}

	f, err := excelize.OpenReader(bytes.NewReader(a.Body))
	if err != nil {
		t.Fatalf("open generated workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0][1] != "Type" || rows[2][1] != "phone" || rows[1][2] != "2" {
		t.Fatalf("unexpected rows: %v", rows)
	}
}
