package splitter

import (
	"fmt"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"

	"github.com/jamaly87/codebase-semantic-search/internal/models"
	"github.com/jamaly87/codebase-semantic-search/internal/xerrors"
)

// Java Tree-sitter node type strings. These are grammar-defined and stable
// within a parser version; they are not Go constants in any sense beyond
// documentation.
const (
	nodeClass       = "class_declaration"
	nodeInterface   = "interface_declaration"
	nodeEnum        = "enum_declaration"
	nodeMethod      = "method_declaration"
	nodeConstructor = "constructor_declaration"
	nodeIdentifier  = "identifier"
)

var classLikeNodes = map[string]bool{
	nodeClass:     true,
	nodeInterface: true,
	nodeEnum:      true,
}

var methodLikeNodes = map[string]bool{
	nodeMethod:      true,
	nodeConstructor: true,
}

// ASTJavaSplitter extracts one chunk per top-level class/interface/enum
// signature and one chunk per method, using Tree-sitter's Java grammar.
// Tree-sitter parsers are not goroutine-safe, so all parser access is
// serialized behind mux; tree traversal itself is safe without the lock.
type ASTJavaSplitter struct {
	parser *sitter.Parser
	mux    sync.Mutex
}

// NewASTJavaSplitter builds the Java AST splitter. The returned error is
// always nil: attaching the grammar to the parser reports no failure.
func NewASTJavaSplitter() (*ASTJavaSplitter, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(java.GetLanguage())
	return &ASTJavaSplitter{parser: parser}, nil
}

func (a *ASTJavaSplitter) Split(path, language string, content []byte) ([]models.Chunk, error) {
	a.mux.Lock()
	tree := a.parser.Parse(nil, content)
	a.mux.Unlock()

	if tree == nil {
		return nil, fmt.Errorf("%w: tree-sitter returned nil tree for %s", xerrors.ErrParseFailure, path)
	}
	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("%w: empty root node for %s", xerrors.ErrParseFailure, path)
	}

	var chunks []models.Chunk
	index := 0

	var walk func(node *sitter.Node, parent string)
	walk = func(node *sitter.Node, parent string) {
		if node == nil {
			return
		}
		nodeType := node.Type()

		switch {
		case classLikeNodes[nodeType]:
			name := extractName(node, content)
			if parent == "" {
				chunks = append(chunks, classSignatureChunk(path, language, node, content, name, parent, index))
				index++
			}
			childParent := fmt.Sprintf("%s %s", kindKeyword(nodeType), name)
			childCount := int(node.ChildCount())
			for i := 0; i < childCount; i++ {
				walk(node.Child(i), childParent)
			}
			return
		case methodLikeNodes[nodeType]:
			name := extractName(node, content)
			chunks = append(chunks, methodChunk(path, language, node, content, name, parent, index))
			index++
			return
		}

		childCount := int(node.ChildCount())
		for i := 0; i < childCount; i++ {
			walk(node.Child(i), parent)
		}
	}
	walk(root, "")

	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no class or method declarations found in %s", xerrors.ErrParseFailure, path)
	}

	return chunks, nil
}

// classSignatureChunk returns a chunk covering the class/interface/enum
// signature only: from the declaration start up to (but not including)
// the opening brace of its body, so method bodies are not duplicated into
// the class chunk.
func classSignatureChunk(path, language string, node *sitter.Node, content []byte, name, parent string, index int) models.Chunk {
	start := int(node.StartByte())
	end := int(node.EndByte())
	bodyStart := end
	childCount := int(node.ChildCount())
	for i := 0; i < childCount; i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "class_body", "interface_body", "enum_body":
			bodyStart = int(child.StartByte())
		}
		if bodyStart != end {
			break
		}
	}
	if bodyStart > end || bodyStart < start {
		bodyStart = end
	}
	signature := strings.TrimRight(string(content[start:bodyStart]), " \t\n{")

	startLine := int(node.StartPoint().Row) + 1
	endLine := int(node.EndPoint().Row) + 1

	return finalizeChunk(path, language, models.Chunk{
		Symbol:     models.Symbol{Name: name, Kind: kindForNode(node.Type()), Parent: parent},
		Range:      models.Range{StartLine: startLine, EndLine: endLine},
		Content:    signature,
		ChunkIndex: index,
	})
}

func methodChunk(path, language string, node *sitter.Node, content []byte, name, parent string, index int) models.Chunk {
	start := int(node.StartByte())
	end := int(node.EndByte())
	startLine := int(node.StartPoint().Row) + 1
	endLine := int(node.EndPoint().Row) + 1

	return finalizeChunk(path, language, models.Chunk{
		Symbol:     models.Symbol{Name: name, Kind: models.SymbolMethod, Parent: parent},
		Range:      models.Range{StartLine: startLine, EndLine: endLine},
		Content:    string(content[start:end]),
		ChunkIndex: index,
	})
}

// kindKeyword renders the Java declaration keyword used in a child's
// Symbol.Parent, e.g. "class Foo" rather than the bare name "Foo".
func kindKeyword(nodeType string) string {
	switch nodeType {
	case nodeInterface:
		return "interface"
	case nodeEnum:
		return "enum"
	default:
		return "class"
	}
}

func kindForNode(nodeType string) models.SymbolKind {
	switch nodeType {
	case nodeInterface:
		return models.SymbolInterface
	case nodeEnum:
		return models.SymbolEnum
	default:
		return models.SymbolClass
	}
}

// extractName finds the identifier naming a class/method declaration: its
// first direct identifier child.
func extractName(node *sitter.Node, content []byte) string {
	childCount := int(node.ChildCount())
	for i := 0; i < childCount; i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		if child.Type() == nodeIdentifier {
			start := child.StartByte()
			end := child.EndByte()
			if start < end && int(end) <= len(content) {
				return string(content[start:end])
			}
		}
	}
	return ""
}
