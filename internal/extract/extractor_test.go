package extract

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestExtractBytes_plain(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		ext     string
		want    string
	}{
		{"txt", []byte("Down the Rabbit-Hole\nChapter I"), ".txt", "Down the Rabbit-Hole\nChapter I"},
		{"utf8", []byte("caf\xc3\xa9"), ".md", "café"},
		{"invalid utf8", []byte("hello\x80world"), ".rst", "hello�world"},
		{"crlf and bom", []byte("\xEF\xBB\xBFAlice\r\nRabbit"), ".txt", "Alice\nRabbit"},
		{"no extension", []byte("raw content"), "", "raw content"},
	}
	e := NewExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.ExtractBytes(tt.content, tt.ext)
			if err != nil {
				t.Fatalf("ExtractBytes: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtract_plainFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alice.txt")
	if err := os.WriteFile(path, []byte("Alice was beginning to get very tired"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := NewExtractor().Extract(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != "Alice was beginning to get very tired" {
		t.Errorf("got %q", got)
	}
}

func TestExtract_unsupportedAndMissing(t *testing.T) {
	e := NewExtractor()
	if _, err := e.Extract(filepath.Join(t.TempDir(), "nonexistent.txt")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := e.Extract("book.xlsx"); err == nil {
		t.Error("expected error for unsupported format")
	}
	if _, err := e.ExtractBytes([]byte("x"), ".xyz"); err == nil {
		t.Error("expected error for unknown extension")
	}
	if !Supported(".PDF") || Supported(".pptx") {
		t.Error("Supported: unexpected result")
	}
}

const wordNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

// docxZip returns .docx zip bytes with body as the content of <w:body> stored at docPath.
// When withContentTypes is set, [Content_Types].xml points at docPath.
func docxZip(body, docPath string, withContentTypes bool) []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	if withContentTypes {
		ct, _ := w.Create("[Content_Types].xml")
		_, _ = ct.Write([]byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Override ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml" PartName="/` + docPath + `"/>
</Types>`))
	}
	fw, _ := w.Create(docPath)
	_, _ = fw.Write([]byte(`<w:document ` + wordNS + `><w:body>` + body + `</w:body></w:document>`))
	_ = w.Close()
	return buf.Bytes()
}

func TestExtractBytes_docx(t *testing.T) {
	e := NewExtractor()
	body := `<w:p w:rsidR="00A1"><w:r><w:t>CHAPTER I.</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t xml:space="preserve">Down the </w:t></w:r><w:r><w:t>Rabbit-Hole</w:t></w:r></w:p>`
	got, err := e.ExtractBytes(docxZip(body, docxDocumentXMLPath, false), ".docx")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "CHAPTER I.\n\nDown the Rabbit-Hole" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_docxCustomMainPart(t *testing.T) {
	body := `<w:p><w:r><w:t>Content from document2</w:t></w:r></w:p>`
	got, err := NewExtractor().ExtractBytes(docxZip(body, "word/document2.xml", true), ".docx")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "Content from document2" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_docxErrors(t *testing.T) {
	e := NewExtractor()
	if _, err := e.ExtractBytes([]byte("not a zip"), ".docx"); err == nil {
		t.Error("expected error for non-zip content")
	}
	body := `<w:p><w:r><w:t>lost</w:t></w:r></w:p>`
	if _, err := e.ExtractBytes(docxZip(body, "word/other.xml", false), ".docx"); err == nil {
		t.Error("expected error when the main document part is missing")
	}
}

func TestExtractBytes_pdfInvalid(t *testing.T) {
	if _, err := NewExtractor().ExtractBytes([]byte("%PDF-1.4 truncated"), ".pdf"); err == nil {
		t.Error("expected error for a truncated PDF")
	}
}
