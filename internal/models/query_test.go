package models

import (
	"errors"
	"testing"
)

func TestDecodeQueryRequest(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantErr  error
		wantTopK int // 0 means nil
	}{
		{"empty body", "", ErrQueryRequired, 0},
		{"whitespace body", "  \n", ErrQueryRequired, 0},
		{"invalid json", "{query:", ErrQueryRequired, 0},
		{"json null", "null", ErrQueryRequired, 0},
		{"json array", `["Who is the White Rabbit?"]`, ErrQueryRequired, 0},
		{"missing query", `{"topK": 2}`, ErrQueryRequired, 0},
		{"query not a string", `{"query": 42}`, ErrQueryRequired, 0},
		{"blank query", `{"query": "   "}`, ErrQueryRequired, 0},
		{"query only", `{"query": "Who is the White Rabbit?"}`, nil, 0},
		{"null topK uses default", `{"query": "tea party", "topK": null}`, nil, 0},
		{"explicit topK", `{"query": "Who is the White Rabbit?", "topK": 2}`, nil, 2},
		{"zero topK", `{"query": "x", "topK": 0}`, ErrInvalidTopK, 0},
		{"negative topK", `{"query": "x", "topK": -3}`, ErrInvalidTopK, 0},
		{"fractional topK", `{"query": "x", "topK": 2.5}`, ErrInvalidTopK, 0},
		{"string topK", `{"query": "x", "topK": "2"}`, ErrInvalidTopK, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := DecodeQueryRequest([]byte(tt.body))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("DecodeQueryRequest() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if tt.wantTopK == 0 && req.TopK != nil {
				t.Errorf("TopK = %d, want nil", *req.TopK)
			}
			if tt.wantTopK != 0 && (req.TopK == nil || *req.TopK != tt.wantTopK) {
				t.Errorf("TopK = %v, want %d", req.TopK, tt.wantTopK)
			}
		})
	}
}

func TestDecodeQueryRequest_KeepsOriginalQuery(t *testing.T) {
	req, err := DecodeQueryRequest([]byte(`{"query": "  Who stole the tarts?  "}`))
	if err != nil {
		t.Fatal(err)
	}
	if req.Query != "  Who stole the tarts?  " {
		t.Errorf("query should be echoed unmodified, got %q", req.Query)
	}
}

func TestContents(t *testing.T) {
	got := Contents([]*Passage{{Content: "a"}, {Content: "b"}})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Contents = %v", got)
	}
	if got := Contents(nil); got == nil || len(got) != 0 {
		t.Errorf("Contents(nil) should be an empty, non-nil slice; got %#v", got)
	}
}
