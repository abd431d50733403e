package template

import (
	"fmt"
	"strings"

	"github.com/invisibleacropolis-ops/RNGEN-sub001/errors"
)

type nodeKind int

const (
	nodeLiteral nodeKind = iota
	nodeAlias
	nodeCall
)

// node is one piece of a parsed template.
type node struct {
	kind  nodeKind
	text  string // literal text, alias name or sub-generator token
	index int    // byte offset in the template
}

func isIdentStart(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || ('0' <= c && c <= '9')
}

// parse splits tmpl into literal runs, $alias references and [token] calls.
// "$$" yields a literal "$"; a "$" not followed by an identifier is literal.
func parse(tmpl string) ([]node, *errors.GenerationError) {
	var nodes []node
	var lit strings.Builder
	litStart := 0

	flush := func() {
		if lit.Len() > 0 {
			nodes = append(nodes, node{kind: nodeLiteral, text: lit.String(), index: litStart})
			lit.Reset()
		}
	}

	for i := 0; i < len(tmpl); {
		c := tmpl[i]
		switch {
		case c == '$' && i+1 < len(tmpl) && tmpl[i+1] == '$':
			if lit.Len() == 0 {
				litStart = i
			}
			lit.WriteByte('$')
			i += 2

		case c == '$' && i+1 < len(tmpl) && isIdentStart(tmpl[i+1]):
			flush()
			j := i + 2
			for j < len(tmpl) && isIdentPart(tmpl[j]) {
				j++
			}
			nodes = append(nodes, node{kind: nodeAlias, text: tmpl[i+1 : j], index: i})
			i = j

		case c == '[':
			end := strings.IndexByte(tmpl[i+1:], ']')
			if end < 0 {
				return nil, errors.NewGenerationError(errors.CodeUnterminatedToken,
					fmt.Sprintf("unterminated token starting at offset %d", i),
					map[string]any{"position": i, "template": tmpl})
			}
			token := strings.TrimSpace(tmpl[i+1 : i+1+end])
			if token == "" {
				return nil, errors.NewGenerationError(errors.CodeEmptyToken,
					fmt.Sprintf("empty token at offset %d", i),
					map[string]any{"position": i, "template": tmpl})
			}
			flush()
			nodes = append(nodes, node{kind: nodeCall, text: token, index: i})
			i += end + 2

		default:
			if lit.Len() == 0 {
				litStart = i
			}
			lit.WriteByte(c)
			i++
		}
	}
	flush()
	return nodes, nil
}
