package e2e

import (
	"strings"
	"testing"

	"github.com/hyperjump/wonderland/internal/extract"
)

func TestWriteCorpusFile_AllFormatsExtractable(t *testing.T) {
	e := extract.NewExtractor()
	sample := "Curiouser and curiouser! cried Alice & the <Rabbit>"
	for _, ext := range CorpusFormats {
		t.Run(ext, func(t *testing.T) {
			content := WriteCorpusFile(ext, sample)
			if len(content) == 0 {
				t.Fatal("empty content")
			}
			got, err := e.ExtractBytes(content, ext)
			if err != nil {
				t.Fatalf("ExtractBytes: %v", err)
			}
			if !strings.Contains(got, sample) {
				t.Errorf("extracted text %q does not contain %q", got, sample)
			}
		})
	}
}
