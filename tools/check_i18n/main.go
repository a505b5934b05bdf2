// Command check_i18n lints the UI package for user-facing strings that bypass
// fyne's lang package, lang lookups that run before translations load, and
// lang keys missing from the English catalogue.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const ignoreMarker = "i18n:ignore"

type funcRule struct {
	pkg  string
	name string
	args []int
}

type ignoreTag struct {
	line      int
	hasReason bool
}

type violation struct {
	path    string
	line    int
	column  int
	message string
}

func (v violation) String() string {
	return fmt.Sprintf("%s:%d:%d: %s", v.path, v.line, v.column, v.message)
}

var functionRules = []funcRule{
	{pkg: "widget", name: "NewLabel", args: []int{0}},
	{pkg: "widget", name: "NewLabelWithStyle", args: []int{0}},
	{pkg: "widget", name: "NewButton", args: []int{0}},
	{pkg: "widget", name: "NewButtonWithIcon", args: []int{0}},
	{pkg: "widget", name: "NewCheck", args: []int{0}},
	{pkg: "widget", name: "NewSelect", args: []int{0}},
	{pkg: "widget", name: "NewRadioGroup", args: []int{0}},
	{pkg: "widget", name: "NewAccordionItem", args: []int{0}},
	{pkg: "widget", name: "NewCard", args: []int{0, 1}},
	{pkg: "container", name: "NewTabItem", args: []int{0}},
	{pkg: "canvas", name: "NewText", args: []int{0}},
	{pkg: "dialog", name: "ShowInformation", args: []int{0, 1}},
	{pkg: "dialog", name: "ShowError", args: []int{0}},
	{pkg: "dialog", name: "ShowConfirm", args: []int{0, 1}},
	{pkg: "dialog", name: "ShowCustom", args: []int{0}},
}

var methodRules = map[string][]int{
	"SetPlaceHolder": {0},
	"SetText":        {0},
	"SetTitle":       {0},
}

// langFuncs maps each lang lookup to the index of its key argument.
var langFuncs = map[string]int{"X": 0, "L": 0, "N": 0, "XN": 0}

func main() {
	dir := flag.String("dir", "internal/ui", "UI package to lint")
	catalogue := flag.String("catalogue", "internal/ui/translations/en.json", "English translation file")
	flag.Parse()

	files, err := collectGoFiles(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to collect UI files: %v\n", err)
		os.Exit(1)
	}
	known, err := loadCatalogue(*catalogue)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load %s: %v\n", *catalogue, err)
		os.Exit(1)
	}

	fset := token.NewFileSet()
	var violations []violation
	used := map[string]struct{}{}

	for _, path := range files {
		file, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to parse %s: %v\n", path, err)
			os.Exit(1)
		}
		relPath := filepath.ToSlash(path)
		v, warnLines := analyzeFile(fset, file, relPath, collectIgnoreTags(fset, file))
		violations = append(violations, v...)
		for _, line := range warnLines {
			fmt.Printf("WARN %s:%d: //i18n:ignore without reason\n", relPath, line)
		}
		for key, pos := range langKeys(fset, file) {
			used[key] = struct{}{}
			if _, ok := known[key]; !ok {
				violations = append(violations, violation{
					path: relPath, line: pos.Line, column: pos.Column,
					message: fmt.Sprintf("lang key %q missing from %s", key, filepath.Base(*catalogue)),
				})
			}
		}
	}

	for _, key := range unusedKeys(known, used) {
		fmt.Printf("WARN %s: key %q is never looked up\n", *catalogue, key)
	}
	for _, v := range violations {
		fmt.Println(v)
	}
	if len(violations) > 0 {
		os.Exit(1)
	}
}

func collectGoFiles(root string) ([]string, error) {
	files := make([]string, 0)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".go" || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

func loadCatalogue(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	out := map[string]string{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func unusedKeys(known map[string]string, used map[string]struct{}) []string {
	var out []string
	for key := range known {
		if _, ok := used[key]; !ok {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

// analyzeFile reports bare UI literals and lang lookups made during package
// initialisation, when translations may not be registered yet. The second
// result lists lines of //i18n:ignore tags that carry no reason.
func analyzeFile(fset *token.FileSet, file *ast.File, relPath string, tags map[int][]ignoreTag) ([]violation, []int) {
	var violations []violation
	var warnLines []int
	warned := map[int]struct{}{}

	report := func(node ast.Node, message string) {
		pos := fset.Position(node.Pos())
		ignored, warnLine := ignoreStatus(tags, pos.Line)
		if ignored {
			if warnLine > 0 {
				if _, ok := warned[warnLine]; !ok {
					warned[warnLine] = struct{}{}
					warnLines = append(warnLines, warnLine)
				}
			}
			return
		}
		violations = append(violations, violation{path: relPath, line: pos.Line, column: pos.Column, message: message})
	}

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			if d.Recv == nil && d.Name.Name == "init" && d.Body != nil {
				inspectInitLang(d.Body, report)
			}
		case *ast.GenDecl:
			if d.Tok == token.VAR {
				inspectInitLang(d, report)
			}
		}
	}

	ast.Inspect(file, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		for _, idx := range targetArgIndexes(call) {
			if idx >= len(call.Args) {
				continue
			}
			arg := unwrapExpr(call.Args[idx])
			if !isBareStringLiteral(arg) || isLangCall(arg) {
				continue
			}
			report(arg, "bare UI string literal (use lang.X or //i18n:ignore <reason>)")
		}
		return true
	})
	return violations, warnLines
}

// inspectInitLang flags lang calls under root, skipping function literals
// because those run later.
func inspectInitLang(root ast.Node, report func(ast.Node, string)) {
	ast.Inspect(root, func(n ast.Node) bool {
		if _, ok := n.(*ast.FuncLit); ok {
			return false
		}
		if call, ok := n.(*ast.CallExpr); ok && isLangCall(call) {
			report(call, "lang lookup must not be called during package init")
		}
		return true
	})
}

// langKeys collects literal lang keys in file with their first position.
func langKeys(fset *token.FileSet, file *ast.File) map[string]token.Position {
	keys := map[string]token.Position{}
	ast.Inspect(file, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok || !isLangCall(call) {
			return true
		}
		sel := call.Fun.(*ast.SelectorExpr)
		idx := langFuncs[sel.Sel.Name]
		if idx >= len(call.Args) {
			return true
		}
		lit, ok := unwrapExpr(call.Args[idx]).(*ast.BasicLit)
		if !ok || lit.Kind != token.STRING {
			return true
		}
		key, err := strconv.Unquote(lit.Value)
		if err != nil {
			return true
		}
		if _, seen := keys[key]; !seen {
			keys[key] = fset.Position(lit.Pos())
		}
		return true
	})
	return keys
}

func collectIgnoreTags(fset *token.FileSet, file *ast.File) map[int][]ignoreTag {
	tagsByLine := make(map[int][]ignoreTag)
	for _, group := range file.Comments {
		for _, c := range group.List {
			baseLine := fset.Position(c.Slash).Line
			for i, lineText := range commentLines(c.Text) {
				hasIgnore, hasReason := parseIgnoreComment(lineText)
				if !hasIgnore {
					continue
				}
				line := baseLine + i
				tagsByLine[line] = append(tagsByLine[line], ignoreTag{line: line, hasReason: hasReason})
			}
		}
	}
	return tagsByLine
}

func commentLines(text string) []string {
	if strings.HasPrefix(text, "//") {
		return []string{strings.TrimSpace(strings.TrimPrefix(text, "//"))}
	}
	if strings.HasPrefix(text, "/*") {
		trimmed := strings.TrimSuffix(strings.TrimPrefix(text, "/*"), "*/")
		return strings.Split(trimmed, "\n")
	}
	return []string{text}
}

func parseIgnoreComment(text string) (bool, bool) {
	idx := strings.Index(text, ignoreMarker)
	if idx < 0 {
		return false, false
	}
	return true, strings.TrimSpace(text[idx+len(ignoreMarker):]) != ""
}

// ignoreStatus looks for a tag on the target line or the one above. The
// second result is a reasonless tag line worth warning about.
func ignoreStatus(tagsByLine map[int][]ignoreTag, targetLine int) (bool, int) {
	hasIgnore, hasReason := false, false
	noReasonLine := 0
	for _, line := range []int{targetLine, targetLine - 1} {
		for _, t := range tagsByLine[line] {
			hasIgnore = true
			if t.hasReason {
				hasReason = true
			} else if noReasonLine == 0 {
				noReasonLine = t.line
			}
		}
	}
	switch {
	case !hasIgnore:
		return false, 0
	case hasReason:
		return true, 0
	default:
		return true, noReasonLine
	}
}

func targetArgIndexes(call *ast.CallExpr) []int {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return nil
	}
	if id, ok := sel.X.(*ast.Ident); ok {
		for _, rule := range functionRules {
			if id.Name == rule.pkg && sel.Sel.Name == rule.name {
				return rule.args
			}
		}
	}
	return methodRules[sel.Sel.Name]
}

func unwrapExpr(expr ast.Expr) ast.Expr {
	for {
		paren, ok := expr.(*ast.ParenExpr)
		if !ok {
			return expr
		}
		expr = paren.X
	}
}

func isLangCall(expr ast.Expr) bool {
	call, ok := expr.(*ast.CallExpr)
	if !ok {
		return false
	}
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return false
	}
	id, ok := sel.X.(*ast.Ident)
	if !ok || id.Name != "lang" {
		return false
	}
	_, ok = langFuncs[sel.Sel.Name]
	return ok
}

func isBareStringLiteral(expr ast.Expr) bool {
	lit, ok := expr.(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return false
	}
	unquoted, err := strconv.Unquote(lit.Value)
	if err != nil {
		return true
	}
	return unquoted != ""
}
