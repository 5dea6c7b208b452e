package extract

import (
	"strings"
	"testing"
)

func TestSupported(t *testing.T) {
	for _, ft := range []string{"pdf", "txt", "md", "json", "csv"} {
		if !Supported(ft) {
			t.Errorf("Supported(%q) = false, want true", ft)
		}
	}
	for _, ft := range []string{"docx", "exe", "", "PDF"} {
		if Supported(ft) {
			t.Errorf("Supported(%q) = true, want false", ft)
		}
	}
}

func TestText_PlainText(t *testing.T) {
	got, err := Text([]byte("hello world\nsecond line"), "txt")
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if got != "hello world\nsecond line" {
		t.Errorf("got %q", got)
	}
}

func TestText_PlainTextLatin1Fallback(t *testing.T) {
	// 0xE9 is 'é' in latin-1 and invalid as a standalone UTF-8 byte.
	got, err := Text([]byte{'c', 'a', 'f', 0xE9}, "txt")
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if got != "café" {
		t.Errorf("got %q, want %q", got, "café")
	}
}

func TestText_CSV(t *testing.T) {
	data := []byte("name,amount\nwidget,10\ngadget,25\n")
	got, err := Text(data, "csv")
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if !strings.HasPrefix(got, "Columns: name, amount") {
		t.Errorf("missing column header: %q", got)
	}
	if !strings.Contains(got, "name: widget; amount: 10") {
		t.Errorf("missing first row: %q", got)
	}
	if !strings.Contains(got, "name: gadget; amount: 25") {
		t.Errorf("missing second row: %q", got)
	}
}

func TestText_CSVSkipsEmptyValues(t *testing.T) {
	data := []byte("a,b\n1,\n,2\n")
	got, err := Text(data, "csv")
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if !strings.Contains(got, "a: 1\n") {
		t.Errorf("row 1 should include only non-empty values: %q", got)
	}
	if !strings.Contains(got, "b: 2\n") {
		t.Errorf("row 2 should include only non-empty values: %q", got)
	}
}

func TestText_UnsupportedType(t *testing.T) {
	if _, err := Text([]byte("data"), "docx"); err == nil {
		t.Error("expected error for unsupported type")
	}
}

func TestText_InvalidPDF(t *testing.T) {
	if _, err := Text([]byte("not a pdf"), "pdf"); err == nil {
		t.Error("expected error for invalid pdf bytes")
	}
}
