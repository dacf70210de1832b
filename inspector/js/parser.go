package js

import (
	"context"
	"errors"
	"strings"
	"time"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
)

// Source holds a parsed middleware source file together with the raw bytes
// and the line index used for snippet extraction.
type Source struct {
	Path    string
	ModTime time.Time
	Data    []byte
	Lines   []string
	Root    *sitter.Node

	tree *sitter.Tree
}

// Parser parses middleware source files into tree-sitter syntax trees.
// Scripts may start with a shebang line and may use top-level return; the
// javascript grammar accepts both.
type Parser struct {
	parser *sitter.Parser
}

// NewParser creates a parser bound to the javascript grammar.
func NewParser() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(javascript.GetLanguage())
	return &Parser{parser: p}
}

// Parse parses code into a Source. A nil or empty tree is reported as an
// error; the caller treats the file as absent for the run.
func (p *Parser) Parse(ctx context.Context, path string, code []byte, modTime time.Time) (*Source, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, code)
	if err != nil {
		return nil, err
	}
	if tree == nil || tree.RootNode() == nil {
		return nil, errors.New("failed to parse source")
	}
	return &Source{
		Path:    path,
		ModTime: modTime,
		Data:    code,
		Lines:   strings.Split(string(code), "\n"),
		Root:    tree.RootNode(),
		tree:    tree,
	}, nil
}

// Line returns the 1-based source line, or empty when out of range.
func (s *Source) Line(line int) string {
	if line < 1 || line > len(s.Lines) {
		return ""
	}
	return s.Lines[line-1]
}

// Snippet returns the trimmed source line a node starts on.
func (s *Source) Snippet(n *sitter.Node) string {
	return strings.TrimSpace(s.Line(NodeLine(n)))
}
