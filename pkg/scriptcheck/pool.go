package scriptcheck

import (
	"fmt"
	"log/slog"
	"sync"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// parserPool manages a pool of parsers of one language for concurrent access.
//
// Design:
// - Channel-based pooling for thread-safe acquire/release
// - Lazy parser creation up to maxSize
//
// Thread Safety:
// - Channel operations are inherently thread-safe
// - Mutex protects parser creation and the created count
type parserPool struct {
	// pool is a buffered channel storing available parsers
	pool chan *ts.Parser

	// maxSize is the maximum number of parsers in the pool
	maxSize int

	lang Language

	mutex   sync.Mutex
	created int

	logger *slog.Logger
}

func newParserPool(maxSize int, lang Language, logger *slog.Logger) *parserPool {
	return &parserPool{
		pool:    make(chan *ts.Parser, maxSize),
		maxSize: maxSize,
		lang:    lang,
		logger:  logger,
	}
}

// acquire returns a parser from the pool, creating one if needed. It blocks
// when all maxSize parsers are in use.
func (p *parserPool) acquire() (*ts.Parser, error) {
	select {
	case parser := <-p.pool:
		return parser, nil
	default:
		return p.createParserIfNeeded()
	}
}

func (p *parserPool) createParserIfNeeded() (*ts.Parser, error) {
	p.mutex.Lock()

	if p.created < p.maxSize {
		parser := ts.NewParser()
		if parser == nil {
			p.mutex.Unlock()
			return nil, fmt.Errorf("failed to create parser")
		}

		grammar, err := p.lang.grammar()
		if err != nil {
			parser.Close()
			p.mutex.Unlock()
			return nil, err
		}
		if err := parser.SetLanguage(ts.NewLanguage(grammar)); err != nil {
			parser.Close()
			p.mutex.Unlock()
			return nil, fmt.Errorf("failed to set language: %w", err)
		}

		p.created++
		p.logger.Debug("created parser in pool", "language", p.lang, "pool_size", p.created)

		p.mutex.Unlock()
		return parser, nil
	}

	// Max size reached - wait for a parser to be released
	p.mutex.Unlock()
	parser, ok := <-p.pool
	if !ok {
		return nil, fmt.Errorf("parser pool closed")
	}
	return parser, nil
}

// release returns a parser to the pool for reuse.
func (p *parserPool) release(parser *ts.Parser) {
	if parser == nil {
		return
	}

	select {
	case p.pool <- parser:
	default:
		parser.Close()
		p.logger.Warn("parser pool full, closing excess parser")
	}
}

// close releases all parsers in the pool. The pool cannot be used afterwards.
func (p *parserPool) close() {
	close(p.pool)

	count := 0
	for parser := range p.pool {
		if parser != nil {
			parser.Close()
			count++
		}
	}

	p.logger.Debug("closed parser pool", "language", p.lang, "parsers_closed", count)
}

func (p *parserPool) getCreatedCount() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.created
}
