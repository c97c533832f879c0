package reminder

import (
	"encoding/json"
	"log/slog"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of generated documents a Generator keeps.
const DefaultCacheSize = 128

// GenerateHTML returns the complete widget document for cfg.
func GenerateHTML(cfg Config) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	b.WriteString("<meta charset=\"UTF-8\">\n")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	b.WriteString("<title>Reminder Tab</title>\n")
	b.WriteString("<style>\n")
	b.WriteString(GenerateCSS(cfg))
	b.WriteString("</style>\n</head>\n<body>\n")
	b.WriteString(GenerateHTMLStructure(cfg))
	b.WriteString("<script>\n")
	b.WriteString(GenerateJS(cfg))
	b.WriteString("</script>\n</body>\n</html>\n")
	return b.String()
}

// Generator produces widget documents, memoizing results by configuration.
// It is safe for concurrent use.
type Generator struct {
	cache  *lru.Cache[string, string]
	logger *slog.Logger
}

// NewGenerator creates a generator caching up to cacheSize documents. A
// cacheSize of zero or less disables caching.
func NewGenerator(cacheSize int, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Generator{logger: logger}
	if cacheSize > 0 {
		cache, err := lru.New[string, string](cacheSize)
		if err != nil {
			logger.Warn("generator cache disabled", "error", err)
		} else {
			g.cache = cache
		}
	}
	return g
}

// GenerateHTML returns the complete widget document for cfg.
func (g *Generator) GenerateHTML(cfg Config) string {
	if g.cache == nil {
		return GenerateHTML(cfg)
	}

	key, err := json.Marshal(cfg)
	if err != nil {
		return GenerateHTML(cfg)
	}
	if html, ok := g.cache.Get(string(key)); ok {
		g.logger.Debug("reminder cache hit", "bytes", len(html))
		return html
	}

	html := GenerateHTML(cfg)
	g.cache.Add(string(key), html)
	return html
}

// CacheLen returns the number of cached documents.
func (g *Generator) CacheLen() int {
	if g.cache == nil {
		return 0
	}
	return g.cache.Len()
}
