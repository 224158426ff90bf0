package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/blockimport"
	"golang.org/x/net/html"
)

var _ blockimport.Transformer = (*LoggingTransformer)(nil)

// LoggingTransformer wraps a Transformer with debug logging.
type LoggingTransformer struct {
	next   blockimport.Transformer
	logger *slog.Logger
}

// NewLoggingTransformer creates a new LoggingTransformer.
func NewLoggingTransformer(next blockimport.Transformer, logger *slog.Logger) *LoggingTransformer {
	return &LoggingTransformer{next: next, logger: logger}
}

// Transform logs the source URL and block count around the wrapped call.
func (t *LoggingTransformer) Transform(doc *html.Node, rs *blockimport.Ruleset, src *blockimport.Source) (root *html.Node, err error) {
	defer func(begin time.Time) {
		var url string
		if src != nil {
			url = src.URL
		}
		var blocks int
		if rs != nil {
			blocks = len(rs.Blocks)
		}
		t.logger.Debug("transform",
			"url", url,
			"blocks", blocks,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return t.next.Transform(doc, rs, src)
}
