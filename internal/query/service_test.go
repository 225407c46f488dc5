package query

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"go.uber.org/zap"

	"github.com/hyperjump/wonderland/internal/config"
	"github.com/hyperjump/wonderland/internal/models"
)

type fakeSearcher struct {
	passages []string
	err      error
	panicMsg string
	lastK    int
}

func (f *fakeSearcher) Search(_ context.Context, _ string, k int) ([]*models.Passage, error) {
	f.lastK = k
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*models.Passage, 0, k)
	for i, p := range f.passages {
		if i == k {
			break
		}
		out = append(out, &models.Passage{ID: fmt.Sprint(i), Content: p})
	}
	return out, nil
}

func newTestService(s Searcher) *Service {
	return NewService(s, config.QueryConfig{DefaultTopK: 3, MaxTopK: 5}, zap.NewNop())
}

var sevenPassages = []string{"one", "two", "three", "four", "five", "six", "seven"}

func TestService_Query(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantK    int
		wantKind Kind
		wantMsg  string
	}{
		{name: "default topK", body: `{"query":"Who is the White Rabbit?"}`, wantK: 3},
		{name: "explicit topK", body: `{"query":"Who is the White Rabbit?","topK":2}`, wantK: 2},
		{name: "null topK", body: `{"query":"tea","topK":null}`, wantK: 3},
		{name: "topK clamped", body: `{"query":"tea","topK":500}`, wantK: 5},
		{name: "empty body", body: ``, wantKind: KindBadRequest, wantMsg: "Query parameter is required"},
		{name: "not json", body: `query=tea`, wantKind: KindBadRequest, wantMsg: "Query parameter is required"},
		{name: "blank query", body: `{"query":"   "}`, wantKind: KindBadRequest, wantMsg: "Query parameter is required"},
		{name: "zero topK", body: `{"query":"tea","topK":0}`, wantKind: KindBadRequest, wantMsg: "topK must be a positive integer"},
		{name: "string topK", body: `{"query":"tea","topK":"3"}`, wantKind: KindBadRequest, wantMsg: "topK must be a positive integer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := &fakeSearcher{passages: sevenPassages}
			resp, err := newTestService(fs).Query(context.Background(), []byte(tt.body))
			if tt.wantMsg != "" {
				var qe *Error
				if !errors.As(err, &qe) {
					t.Fatalf("err=%v, want *Error", err)
				}
				if qe.Kind != tt.wantKind || qe.Message != tt.wantMsg {
					t.Errorf("got %v %q, want %v %q", qe.Kind, qe.Message, tt.wantKind, tt.wantMsg)
				}
				if qe.StatusCode() != http.StatusBadRequest {
					t.Errorf("StatusCode=%d, want 400", qe.StatusCode())
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if fs.lastK != tt.wantK || len(resp.Contexts) != tt.wantK {
				t.Errorf("k=%d contexts=%d, want %d", fs.lastK, len(resp.Contexts), tt.wantK)
			}
		})
	}
}

func TestService_EchoesQueryAndOrder(t *testing.T) {
	svc := newTestService(&fakeSearcher{passages: sevenPassages})
	resp, err := svc.Query(context.Background(), []byte(`{"query":"  Down the Rabbit-Hole ","topK":2}`))
	if err != nil {
		t.Fatal(err)
	}
	if resp.Query != "  Down the Rabbit-Hole " {
		t.Errorf("Query=%q, should echo the original text", resp.Query)
	}
	if resp.Contexts[0] != "one" || resp.Contexts[1] != "two" {
		t.Errorf("Contexts=%v", resp.Contexts)
	}
}

func TestService_Unavailable(t *testing.T) {
	svc := newTestService(nil)
	if svc.Available() {
		t.Error("service without searcher should not be available")
	}
	for _, body := range []string{``, `{"query":"tea"}`} {
		_, err := svc.Query(context.Background(), []byte(body))
		if !IsUnavailable(err) {
			t.Fatalf("body %q: err=%v, want unavailable", body, err)
		}
		if err.Error() != "Vector database not loaded" {
			t.Errorf("message=%q", err.Error())
		}
		if AsError(err).StatusCode() != http.StatusInternalServerError {
			t.Error("unavailable should map to 500")
		}
	}
}

func TestService_SearchFailure(t *testing.T) {
	cause := errors.New("embedding failed: model unreachable")
	svc := newTestService(&fakeSearcher{err: cause})
	_, err := svc.Query(context.Background(), []byte(`{"query":"tea"}`))
	qe := AsError(err)
	if qe.Kind != KindInternal || qe.Message != "Error processing query: embedding failed: model unreachable" {
		t.Errorf("got %v %q", qe.Kind, qe.Message)
	}
	if !errors.Is(err, cause) {
		t.Error("error should wrap the cause")
	}
}

func TestService_RecoversPanic(t *testing.T) {
	svc := newTestService(&fakeSearcher{panicMsg: "index corrupted"})
	resp, err := svc.Query(context.Background(), []byte(`{"query":"tea"}`))
	if resp != nil {
		t.Error("expected no response after panic")
	}
	qe := AsError(err)
	if qe.Kind != KindInternal || qe.Message != "Error processing query: index corrupted" {
		t.Errorf("got %v %q", qe.Kind, qe.Message)
	}
}

func TestAsError_WrapsPlainErrors(t *testing.T) {
	qe := AsError(errors.New("boom"))
	if qe.Kind != KindInternal || qe.Message != "Error processing query: boom" {
		t.Errorf("got %v %q", qe.Kind, qe.Message)
	}
	if KindBadRequest.String() != "bad_request" {
		t.Errorf("String=%q", KindBadRequest.String())
	}
}
