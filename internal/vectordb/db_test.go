package vectordb

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"

	"github.com/hyperjump/wonderland/internal/embedding"
	"github.com/hyperjump/wonderland/internal/models"
	"github.com/hyperjump/wonderland/internal/vector"
)

const testModel = "intfloat/multilingual-e5-small"

var testPassages = []string{
	"Alice was beginning to get very tired of sitting by her sister on the bank",
	"when suddenly a White Rabbit with pink eyes ran close by her",
	"the Rabbit actually took a watch out of its waistcoat-pocket",
	"the Queen of Hearts she made some tarts all on a summer day",
	"the Mad Hatter and a March Hare were having tea",
}

func testEmbedder(t *testing.T, dims int) *embedding.Framed {
	t.Helper()
	f, err := embedding.NewFramed(embedding.NewMockEmbedder(dims), embedding.E5Framing)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func buildTestIndex(t *testing.T, dir string, emb *embedding.Framed) {
	t.Helper()
	ctx := context.Background()
	w, err := NewWriter(dir, "memory", emb.Dimensions())
	if err != nil {
		t.Fatal(err)
	}
	passages := make([]*models.Passage, len(testPassages))
	for i, text := range testPassages {
		passages[i] = &models.Passage{ID: "p" + string(rune('0'+i)), Position: i, Content: text}
	}
	vectors, err := emb.EmbedDocuments(ctx, testPassages)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Add(ctx, passages, vectors); err != nil {
		t.Fatal(err)
	}
	err = w.Commit(Manifest{
		Model:         testModel,
		Dimensions:    emb.Dimensions(),
		QueryPrefix:   emb.Framing().QueryPrefix,
		PassagePrefix: emb.Framing().PassagePrefix,
		Source:        "alice.txt",
		BuiltAt:       time.Now().UTC(),
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestOpenSearch(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "wonderland_db")
	emb := testEmbedder(t, 2048)
	buildTestIndex(t, dir, emb)

	db, err := Open(context.Background(), dir, emb, Options{Model: testModel}, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	m := db.Manifest()
	if m.PassageCount != len(testPassages) || m.IndexType != "memory" {
		t.Errorf("manifest: %+v", m)
	}

	ctx := context.Background()
	got, err := db.Search(ctx, "Who is the White Rabbit?", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 passages, got %d", len(got))
	}
	if !strings.Contains(got[0].Content, "Rabbit") {
		t.Errorf("top passage should mention the Rabbit: %q", got[0].Content)
	}

	again, err := db.Search(ctx, "Who is the White Rabbit?", 2)
	if err != nil {
		t.Fatal(err)
	}
	for i := range got {
		if got[i].ID != again[i].ID {
			t.Errorf("search is not repeatable at %d: %s vs %s", i, got[i].ID, again[i].ID)
		}
	}

	all, err := db.Search(ctx, "tea", 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != len(testPassages) {
		t.Errorf("k above size: got %d passages, want %d", len(all), len(testPassages))
	}

	stats, err := db.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Passages != int64(len(testPassages)) || stats.Vectors != len(testPassages) || stats.DiskUsageBytes <= 0 {
		t.Errorf("stats: %+v", stats)
	}
}

func TestSearch_RecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	dir := filepath.Join(t.TempDir(), "wonderland_db")
	emb := testEmbedder(t, 2048)
	buildTestIndex(t, dir, emb)
	db, err := Open(context.Background(), dir, emb, Options{Model: testModel}, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if _, err := db.Search(context.Background(), "Who is the White Rabbit?", 2); err != nil {
		t.Fatal(err)
	}

	var found bool
	for _, span := range recorder.Ended() {
		if span.Name() != "vectordb.Search" {
			continue
		}
		found = true
		attrs := map[attribute.Key]int64{}
		for _, kv := range span.Attributes() {
			attrs[kv.Key] = kv.Value.AsInt64()
		}
		if attrs["search.k"] != 2 || attrs["search.results"] != 2 {
			t.Errorf("span attributes = %v", span.Attributes())
		}
	}
	if !found {
		t.Fatal("no vectordb.Search span recorded")
	}
}

func TestOpen_NotFound(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "missing"), testEmbedder(t, 16), Options{}, zap.NewNop())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err=%v, want ErrNotFound", err)
	}
}

func TestOpen_Mismatches(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")
	buildTestIndex(t, dir, testEmbedder(t, 64))
	ctx := context.Background()

	if _, err := Open(ctx, dir, testEmbedder(t, 32), Options{}, zap.NewNop()); !errors.Is(err, vector.ErrDimensionMismatch) {
		t.Errorf("dimensions: err=%v, want ErrDimensionMismatch", err)
	}
	if _, err := Open(ctx, dir, testEmbedder(t, 64), Options{Model: "other-model"}, zap.NewNop()); err == nil {
		t.Error("expected error for model mismatch")
	}
	other, _ := embedding.NewFramed(embedding.NewMockEmbedder(64), embedding.Framing{QueryPrefix: "q: ", PassagePrefix: "p: "})
	if _, err := Open(ctx, dir, other, Options{}, zap.NewNop()); err == nil {
		t.Error("expected error for prefix mismatch")
	}
}

func TestOpen_MissingIndexFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")
	emb := testEmbedder(t, 16)
	buildTestIndex(t, dir, emb)
	if err := os.Remove(filepath.Join(dir, IndexBase)); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(context.Background(), dir, emb, Options{}, zap.NewNop()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err=%v, want os.ErrNotExist", err)
	}
}

func TestWriter_RefusesExistingIndexAndAborts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")
	buildTestIndex(t, dir, testEmbedder(t, 16))
	if _, err := NewWriter(dir, "memory", 16); err == nil {
		t.Error("expected error for directory with an index")
	}

	staging := filepath.Join(t.TempDir(), "staging")
	w, err := NewWriter(staging, "memory", 16)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Add(context.Background(), []*models.Passage{{ID: "a"}}, nil); err == nil {
		t.Error("expected error for passages/vectors length mismatch")
	}
	if err := w.Abort(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(staging); !os.IsNotExist(err) {
		t.Error("Abort should remove the directory")
	}
	if err := w.Commit(Manifest{Dimensions: 16}); err == nil {
		t.Error("Commit after Abort should fail")
	}
}

func TestManifestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	if _, err := ReadManifest(dir); err == nil {
		t.Error("expected error for missing manifest")
	}
	if err := WriteManifest(dir, &Manifest{Dimensions: 0, IndexType: "memory"}); err == nil {
		t.Error("expected validation error for zero dimensions")
	}
	built := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	in := &Manifest{Model: testModel, Dimensions: 384, IndexType: "faiss", PassageCount: 7, BuiltAt: built}
	if err := WriteManifest(dir, in); err != nil {
		t.Fatal(err)
	}
	out, err := ReadManifest(dir)
	if err != nil {
		t.Fatal(err)
	}
	if out.Model != in.Model || out.IndexType != "faiss" || out.PassageCount != 7 || !out.BuiltAt.Equal(built) {
		t.Errorf("got %+v", out)
	}
}
