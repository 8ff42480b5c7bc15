package draft

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Extract pulls the draft object out of a text-extraction reply. Replies
// usually wrap the JSON in a fenced code block surrounded by prose, so every
// fenced block is tried first (in document order), then the span from the
// first '{' to the last '}'.
//
// Extract only decodes; callers still run Validate.
func Extract(reply string) (Tree, error) {
	source := []byte(reply)

	for _, block := range fencedBlocks(source) {
		if tree, ok := decodeObject(block); ok {
			return tree, nil
		}
	}

	start := strings.IndexByte(reply, '{')
	end := strings.LastIndexByte(reply, '}')
	if start >= 0 && end > start {
		if tree, ok := decodeObject([]byte(reply[start : end+1])); ok {
			return tree, nil
		}
	}

	return nil, fmt.Errorf("%w: no JSON object found in reply", ErrMalformed)
}

func fencedBlocks(source []byte) [][]byte {
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var blocks [][]byte
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fenced, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		var buf bytes.Buffer
		lines := fenced.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(source))
		}
		blocks = append(blocks, buf.Bytes())
		return ast.WalkSkipChildren, nil
	})
	return blocks
}

func decodeObject(data []byte) (Tree, bool) {
	var tree Tree
	if err := json.Unmarshal(bytes.TrimSpace(data), &tree); err != nil || tree == nil {
		return nil, false
	}
	return tree, true
}
