// Package query validates retrieval requests and runs them against the loaded index.
package query

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/hyperjump/wonderland/internal/config"
	"github.com/hyperjump/wonderland/internal/models"
)

// MsgNotLoaded is returned to clients while no index is loaded.
const MsgNotLoaded = "Vector database not loaded"

// Searcher returns up to k passages for a query, best match first. *vectordb.DB implements it.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]*models.Passage, error)
}

// Service answers query requests. A nil searcher means the index failed to load;
// every query then fails with KindUnavailable.
type Service struct {
	searcher    Searcher
	defaultTopK int
	maxTopK     int
	logger      *zap.Logger
}

// NewService creates a query service. Pass a nil Searcher interface (not a typed nil pointer)
// when no index is loaded.
func NewService(searcher Searcher, cfg config.QueryConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultTopK <= 0 {
		cfg.DefaultTopK = 3
	}
	if cfg.MaxTopK < cfg.DefaultTopK {
		cfg.MaxTopK = cfg.DefaultTopK
	}
	return &Service{
		searcher:    searcher,
		defaultTopK: cfg.DefaultTopK,
		maxTopK:     cfg.MaxTopK,
		logger:      logger,
	}
}

// Available reports whether an index is loaded.
func (s *Service) Available() bool {
	return s.searcher != nil
}

// Query validates the raw JSON body and returns the matching passage texts. The returned
// error is always an *Error. Availability is checked before the body is looked at.
func (s *Service) Query(ctx context.Context, body []byte) (resp *models.QueryResponse, err error) {
	if s.searcher == nil {
		return nil, &Error{Kind: KindUnavailable, Message: MsgNotLoaded}
	}

	req, err := models.DecodeQueryRequest(body)
	if err != nil {
		return nil, &Error{Kind: KindBadRequest, Message: err.Error(), Err: err}
	}
	k := s.resolveTopK(req.TopK)

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic while processing query",
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
			resp = nil
			err = &Error{Kind: KindInternal, Message: fmt.Sprintf("Error processing query: %v", r), Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	s.logger.Debug("processing query", zap.String("query", req.Query), zap.Int("top_k", k))
	passages, err := s.searcher.Search(ctx, req.Query, k)
	if err != nil {
		s.logger.Error("query failed", zap.String("query", req.Query), zap.Error(err))
		return nil, &Error{Kind: KindInternal, Message: "Error processing query: " + err.Error(), Err: err}
	}
	if len(passages) > k {
		passages = passages[:k]
	}
	s.logger.Debug("query answered", zap.Int("contexts", len(passages)))
	return &models.QueryResponse{Query: req.Query, Contexts: models.Contents(passages)}, nil
}

// resolveTopK applies the default and clamps to the configured maximum.
func (s *Service) resolveTopK(topK *int) int {
	if topK == nil {
		return s.defaultTopK
	}
	if *topK > s.maxTopK {
		return s.maxTopK
	}
	return *topK
}

// IsUnavailable reports whether err is a KindUnavailable query error.
func IsUnavailable(err error) bool {
	var qe *Error
	return errors.As(err, &qe) && qe.Kind == KindUnavailable
}
