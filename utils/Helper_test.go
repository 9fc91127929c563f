package utils

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestRandString(t *testing.T) {
	for i := 0; i < 50; i++ {
		key := RandString(32)
		if len(key) != 32 {
			t.Fatalf("len = %d, want 32", len(key))
		}
		for _, r := range key {
			if !strings.ContainsRune(letterBytes, r) {
				t.Fatalf("unexpected character %q in %q", r, key)
			}
		}
	}
}

func TestContainsString(t *testing.T) {
	slice := []string{"Sent", "Success"}
	if !ContainsString(slice, "Sent") {
		t.Errorf("Sent should be found")
	}
	if ContainsString(slice, "Failed") {
		t.Errorf("Failed should not be found")
	}
	if ContainsString(nil, "Sent") {
		t.Errorf("nil slice contains nothing")
	}
}

func TestExportToExcel(t *testing.T) {
	headers := []string{"Session ID", "Phone", "Tokens"}
	rows := [][]interface{}{
		{"ATUid_1", "+2348012345678", int64(60)},
		{"ATUid_2", "+2348087654321", int64(20)},
	}
	data, err := ExportToExcel("Sessions", headers, rows)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	book, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("workbook unreadable: %v", err)
	}
	defer book.Close()

	cell, err := book.GetCellValue("Sessions", "A1")
	if err != nil || cell != "Session ID" {
		t.Fatalf("A1 = %q, err = %v", cell, err)
	}
	cell, _ = book.GetCellValue("Sessions", "B2")
	if cell != "+2348012345678" {
		t.Fatalf("B2 = %q", cell)
	}
	cell, _ = book.GetCellValue("Sessions", "C3")
	if cell != "20" {
		t.Fatalf("C3 = %q", cell)
	}
}
