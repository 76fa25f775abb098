package pcb

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/OpenTraceLab/OpenTraceKB/pkg/kicad/sexp/kicadsexp"
)

// ParseFile reads and parses a KiCad board file
func ParseFile(filename string) (*Document, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	doc, err := parseString(documentParser, filename, string(data), rootDocument, buildDocument)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return doc, nil
}

// Parse reads and parses a KiCad board from an io.Reader
func Parse(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read board: %w", err)
	}
	return ParseString(string(data))
}

// ParseString parses the text of a whole board: (kicad_pcb ...)
func ParseString(src string) (*Document, error) {
	return parseString(documentParser, "", src, rootDocument, buildDocument)
}

// ParseModule parses a standalone (module ...) statement, as stored in a
// .kicad_mod footprint library file.
func ParseModule(src string) (*Module, error) {
	return parseString(moduleParser, "", src, rootModule, buildModule)
}

// ParseModuleFile reads and parses a .kicad_mod file
func ParseModuleFile(filename string) (*Module, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	m, err := parseString(moduleParser, filename, string(data), rootModule, buildModule)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return m, nil
}

// ParseElement parses one top-level statement such as (net 3 GND).
func ParseElement(src string) (Element, error) {
	return parseString(elementParser, "", src, rootElement, buildElement)
}

// ParseModuleItem parses one module child such as (pad 1 smd rect ...).
func ParseModuleItem(src string) (ModuleItem, error) {
	return parseString(moduleItemParser, "", src, rootModuleItem, buildModuleItem)
}

// parseString runs one grammar over src and builds the result. The lexer
// runs first on its own so unterminated strings and excessive nesting are
// reported as such rather than as grammar mismatches.
func parseString[G, T any](p *participle.Parser[G], filename, src string, root []string, build func(*G) (T, error)) (T, error) {
	var zero T

	tokens, err := kicadsexp.Tokenize(filename, src)
	if err != nil {
		var lexErr *kicadsexp.Error
		if errors.As(err, &lexErr) {
			return zero, &LexicalError{
				Line:   lexErr.Pos.Line,
				Column: lexErr.Pos.Column,
				Text:   sourceLine(src, lexErr.Pos.Line),
				Msg:    lexErr.Msg,
			}
		}
		return zero, err
	}

	ast, err := p.ParseString(filename, src)
	if err != nil {
		return zero, translateError(src, tokens, root, err)
	}

	out, err := build(ast)
	if err != nil {
		var le *LexicalError
		if errors.As(err, &le) && le.Text == "" {
			le.Text = sourceLine(src, le.Line)
		}
		return zero, err
	}
	return out, nil
}

// translateError turns a participle failure into an UnknownConstructError
// when it happened at the keyword of a statement not accepted where it
// appears, and into a LexicalError otherwise.
func translateError(src string, tokens []lexer.Token, root []string, err error) error {
	var perr participle.Error
	if !errors.As(err, &perr) {
		return &LexicalError{Msg: err.Error()}
	}
	pos := perr.Position()

	i := sort.Search(len(tokens), func(i int) bool { return tokens[i].Pos.Offset >= pos.Offset })
	if open, ok := statementAt(tokens, i); ok {
		keyword := tokens[open+1].Value
		context := enclosingKeyword(tokens, open)
		if !accepts(context, root, keyword) {
			return &UnknownConstructError{
				Keyword: keyword,
				Context: context,
				Line:    tokens[open].Pos.Line,
				Column:  tokens[open].Pos.Column,
			}
		}
		// participle backtracks to the start of a keyed block when its
		// first child fails, so look inside for the offending statement.
		if child, parent, ok := firstUnknown(tokens, open); ok {
			return &UnknownConstructError{
				Keyword: tokens[child+1].Value,
				Context: parent,
				Line:    tokens[child].Pos.Line,
				Column:  tokens[child].Pos.Column,
			}
		}
	}

	return &LexicalError{
		Line:   pos.Line,
		Column: pos.Column,
		Text:   sourceLine(src, pos.Line),
		Msg:    perr.Message(),
	}
}

// statementAt reports whether token i is the opening parenthesis of a
// statement, or the keyword just after it, and returns the parenthesis.
func statementAt(tokens []lexer.Token, i int) (int, bool) {
	if i >= len(tokens) {
		return 0, false
	}
	if tokens[i].Type == kicadsexp.LParen && i+1 < len(tokens) && isAtom(tokens[i+1]) {
		return i, true
	}
	if isAtom(tokens[i]) && i > 0 && tokens[i-1].Type == kicadsexp.LParen {
		return i - 1, true
	}
	return 0, false
}

// firstUnknown returns the opening parenthesis of the first statement
// nested in the statement at open whose keyword is not accepted by its
// parent, and the parent's keyword.
func firstUnknown(tokens []lexer.Token, open int) (int, string, bool) {
	stack := []string{strings.ToLower(tokens[open+1].Value)}
	for j := open + 2; j < len(tokens) && len(stack) > 0; j++ {
		switch tokens[j].Type {
		case kicadsexp.LParen:
			keyword := ""
			if j+1 < len(tokens) && isAtom(tokens[j+1]) {
				keyword = tokens[j+1].Value
				if parent := stack[len(stack)-1]; parent != "" && !accepts(parent, nil, keyword) {
					return j, parent, true
				}
			}
			stack = append(stack, strings.ToLower(keyword))
		case kicadsexp.RParen:
			stack = stack[:len(stack)-1]
		}
	}
	return 0, "", false
}

func isAtom(t lexer.Token) bool {
	return t.Type != kicadsexp.LParen && t.Type != kicadsexp.RParen && !t.EOF()
}

// enclosingKeyword returns the keyword of the statement containing the
// parenthesis at open, or "" at top level.
func enclosingKeyword(tokens []lexer.Token, open int) string {
	depth := 0
	for j := open - 1; j >= 0; j-- {
		switch tokens[j].Type {
		case kicadsexp.RParen:
			depth++
		case kicadsexp.LParen:
			if depth == 0 {
				if j+1 < len(tokens) && isAtom(tokens[j+1]) {
					return strings.ToLower(tokens[j+1].Value)
				}
				return ""
			}
			depth--
		}
	}
	return ""
}

// accepts reports whether keyword may start a statement inside context.
// Contexts without a keyword table never report unknown statements.
func accepts(context string, root []string, keyword string) bool {
	keyword = strings.ToLower(keyword)
	if context == "" {
		return slices.Contains(root, keyword)
	}
	allowed, ok := statementKeywords[context]
	if !ok {
		return true
	}
	return slices.Contains(allowed, keyword)
}

var (
	drawingKeywords = []string{"start", "end", "center", "angle", "layer", "width", "tstamp"}
	elementKeywords = []string{"net", "net_class", "general", "setup", "page", "layers", "gr_line", "gr_circle", "gr_arc", "via", "segment", "module"}

	rootDocument   = []string{"kicad_pcb"}
	rootModule     = []string{"module"}
	rootElement    = elementKeywords
	rootModuleItem = []string{"fp_text", "fp_line", "pad", "model"}
)

// statementKeywords lists the child statements each statement accepts.
var statementKeywords = map[string][]string{
	"kicad_pcb":     append([]string{"version", "host"}, elementKeywords...),
	"module":        append([]string{"layer", "tedit", "tstamp", "at", "descr", "tags", "attr"}, rootModuleItem...),
	"fp_text":       {"at", "layer", "effects"},
	"effects":       {"font", "justify"},
	"font":          {"size", "thickness"},
	"pad":           {"at", "size", "rect_delta", "drill", "layers", "net", "solder_mask_margin", "solder_paste_margin", "solder_paste_margin_ratio"},
	"drill":         {"offset"},
	"model":         {"at", "offset", "scale", "rotate"},
	"via":           {"at", "size", "drill", "layers", "net", "tstamp"},
	"segment":       {"start", "end", "width", "layer", "net", "tstamp"},
	"gr_line":       drawingKeywords,
	"gr_circle":     drawingKeywords,
	"gr_arc":        drawingKeywords,
	"fp_line":       drawingKeywords,
	"general":       fieldKeys(generalFields),
	"setup":         append(fieldKeys(setupFields), "pcbplotparams"),
	"pcbplotparams": fieldKeys(plotFields),
	"net_class":     append(fieldKeys(netClassFields), "add_net"),
}

// sourceLine returns the 1-based line of src, without its newline.
func sourceLine(src string, line int) string {
	if line < 1 {
		return ""
	}
	for i := 1; i < line; i++ {
		nl := strings.IndexByte(src, '\n')
		if nl < 0 {
			return ""
		}
		src = src[nl+1:]
	}
	if nl := strings.IndexByte(src, '\n'); nl >= 0 {
		src = src[:nl]
	}
	return strings.TrimRight(src, "\r")
}
