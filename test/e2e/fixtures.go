package e2e

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"strings"
)

// CorpusFormats is the list of corpus file extensions generated by WriteCorpusFile.
// PDF is not generated here (no minimal PDF with extractable text).
var CorpusFormats = []string{".txt", ".md", ".rst", ".docx"}

// WriteCorpusFile returns the bytes of a corpus file of the given extension holding text.
// Plain types get the raw text; .docx gets one paragraph per blank-line separated block.
func WriteCorpusFile(ext, text string) []byte {
	if ext == ".docx" {
		return minimalDocx(text)
	}
	return []byte(text)
}

func minimalDocx(text string) []byte {
	var body strings.Builder
	for _, para := range strings.Split(text, "\n\n") {
		var esc bytes.Buffer
		_ = xml.EscapeText(&esc, []byte(strings.Join(strings.Fields(para), " ")))
		body.WriteString(`<w:p><w:r><w:t xml:space="preserve">`)
		body.Write(esc.Bytes())
		body.WriteString(`</w:t></w:r></w:p>`)
	}

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	ct, _ := w.Create("[Content_Types].xml")
	_, _ = ct.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
		`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`))
	fw, _ := w.Create("word/document.xml")
	_, _ = fw.Write([]byte(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body.String() + `</w:body></w:document>`))
	_ = w.Close()
	return buf.Bytes()
}
