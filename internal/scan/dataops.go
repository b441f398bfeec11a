package scan

import (
	"regexp"
	"strings"

	"bridge-generator/internal/common"
	"bridge-generator/internal/diagnostic"
	"bridge-generator/internal/ir"
)

var (
	fromRe         = regexp.MustCompile("([A-Za-z_$][\\w$]*)\\s*\\.\\s*from\\s*\\(\\s*['\"`]([^'\"`]+)['\"`]\\s*\\)")
	createClientRe = regexp.MustCompile(`(?:const|let|var)\s+([A-Za-z_$][\w$]*)\s*(?::[^=]*)?=\s*(?:await\s+)?createClient\s*(?:<[^>]*>)?\s*\(`)
	assignRe       = regexp.MustCompile(`(?:^|[^\w$.])([A-Za-z_$][\w$]*)\s*(?::[^=;{}()]*)?=\s*(?:await\s+)?$`)
	destructRe     = regexp.MustCompile(`(?:const|let|var)\s*\{([^{}]*)\}\s*(?::[^=;]*)?=\s*(?:await\s+)?$`)
)

// notClients are receivers whose .from(...) is never a table access.
var notClients = map[string]bool{
	"storage": true, "Array": true, "Buffer": true, "Object": true,
	"Uint8Array": true, "String": true, "Promise": true, "Deno": true,
}

var filterOps = map[string]bool{
	"eq": true, "neq": true, "gt": true, "gte": true, "lt": true, "lte": true,
	"like": true, "ilike": true, "in": true, "is": true, "contains": true,
	"containedBy": true, "overlaps": true, "textSearch": true,
}

// chainCall is one .method(args) link of a call chain.
type chainCall struct {
	Method string
	Args   string
}

func findDBClients(masked string) map[string]bool {
	clients := map[string]bool{}
	for _, m := range createClientRe.FindAllStringSubmatch(masked, -1) {
		clients[m[1]] = true
	}

	return clients
}

func (fc *fileContext) isDBClient(name string, chain []chainCall) bool {
	if notClients[name] {
		return false
	}

	if fc.dbClients[name] || strings.HasPrefix(strings.ToLower(name), "supabase") {
		return true
	}

	if first, ok := common.First(chain); ok {
		_, isOp := ir.ParseOperationKind(first.Method)
		return isOp
	}

	return false
}

// detectDataOperations recognizes client.from('table').op(...)... chains in
// masked[start:end].
func detectDataOperations(fc *fileContext, start, end int) ([]ir.DataOperation, []diagnostic.Diagnostic) {
	var (
		ops   []ir.DataOperation
		diags []diagnostic.Diagnostic
	)

	region := fc.masked[:end]

	for _, loc := range fromRe.FindAllStringSubmatchIndex(fc.masked[start:end], -1) {
		at := start + loc[0]
		client := fc.masked[start+loc[2] : start+loc[3]]
		table := fc.masked[start+loc[4] : start+loc[5]]

		chain, ok := readChain(region, start+loc[1])
		if !ok {
			diags = append(diags, diagnostic.Warningf(diagnostic.CodeStructuralParse, fc.path,
				"%s:%d: call chain on %q has unbalanced brackets; operation omitted",
				fc.path, common.CountLines(fc.src, at), table))

			continue
		}

		if !fc.isDBClient(client, chain) {
			continue
		}

		op := describeChain(table, chain, common.CountLines(fc.src, at))
		op.Binding = bindingAt(fc.masked, at)
		ops = append(ops, op)
	}

	return ops, diags
}

// readChain reads .method(args) links starting at i. It stops at the
// first link that is not a call. ok is false when a call is unbalanced.
func readChain(src string, i int) ([]chainCall, bool) {
	var calls []chainCall

	for {
		j := skipSpace(src, i)
		if j >= len(src) || src[j] != '.' {
			return calls, true
		}

		j = skipSpace(src, j+1)

		k := j
		for k < len(src) && isIdentByte(src[k]) {
			k++
		}

		if k == j {
			return calls, true
		}

		name := src[j:k]

		k = skipSpace(src, k)
		if k < len(src) && src[k] == '<' {
			if gt := strings.IndexByte(src[k:], '>'); gt >= 0 {
				k = skipSpace(src, k+gt+1)
			}
		}

		if k >= len(src) || src[k] != '(' {
			return calls, true
		}

		end := matchClose(src, k)
		if end < 0 {
			return calls, false
		}

		calls = append(calls, chainCall{Method: name, Args: src[k+1 : end]})
		i = end + 1
	}
}

func describeChain(table string, chain []chainCall, line int) ir.DataOperation {
	op := ir.DataOperation{Table: table, Line: line}

	for _, c := range chain {
		if kind, ok := ir.ParseOperationKind(c.Method); ok {
			if op.Kind == ir.OpUnknown {
				op.Kind = kind
				op.Columns = operationColumns(kind, c.Args)
			}

			continue
		}

		switch {
		case c.Method == "single" || c.Method == "maybeSingle":
			op.Single = true
		case filterOps[c.Method]:
			args := splitTopLevel(c.Args, ",", false)
			if len(args) >= 1 {
				col, _ := stringLiteral(args[0])
				val := ""

				if len(args) >= 2 {
					val = args[1]
				}

				op.Filters = append(op.Filters, ir.FilterHint{Column: col, Operator: c.Method, Value: val})
			}
		case c.Method == "not" || c.Method == "filter":
			args := splitTopLevel(c.Args, ",", false)
			if len(args) >= 3 {
				col, _ := stringLiteral(args[0])
				oper, _ := stringLiteral(args[1])

				if c.Method == "not" {
					oper = "not." + oper
				}

				op.Filters = append(op.Filters, ir.FilterHint{Column: col, Operator: oper, Value: args[2]})
			}
		case c.Method == "match":
			arg := strings.TrimSpace(c.Args)
			if strings.HasPrefix(arg, "{") && strings.HasSuffix(arg, "}") {
				for _, e := range parseObjectLiteral(arg[1 : len(arg)-1]) {
					op.Filters = append(op.Filters, ir.FilterHint{Column: e.Key, Operator: "eq", Value: e.Value})
				}
			}
		case c.Method == "or":
			if lit, ok := stringLiteral(c.Args); ok {
				op.Filters = append(op.Filters, ir.FilterHint{Operator: "or", Value: lit})
			}
		}
	}

	return op
}

// operationColumns extracts the column list of a select or the payload
// keys of a write.
func operationColumns(kind ir.OperationKind, args string) []string {
	first, ok := common.First(splitTopLevel(args, ",", false))
	if !ok {
		if kind == ir.OpSelect {
			return []string{"*"}
		}

		return nil
	}

	if kind == ir.OpSelect {
		lit, ok := stringLiteral(first)
		if !ok {
			return nil
		}

		var cols []string
		for _, c := range splitTopLevel(lit, ",", false) {
			cols = append(cols, strings.Join(strings.Fields(c), " "))
		}

		return cols
	}

	if strings.HasPrefix(first, "[") && strings.HasSuffix(first, "]") {
		first, _ = common.First(splitTopLevel(first[1:len(first)-1], ",", false))
	}

	if !strings.HasPrefix(first, "{") || !strings.HasSuffix(first, "}") {
		return nil
	}

	var keys []string
	for _, e := range parseObjectLiteral(first[1 : len(first)-1]) {
		keys = append(keys, e.Key)
	}

	return keys
}

// bindingAt returns the variable that the expression starting at at is
// assigned to. A destructuring assignment binds its data entry, or the
// first plain entry when there is none.
func bindingAt(masked string, at int) string {
	before := masked[max(0, at-256):at]

	if m := destructRe.FindStringSubmatch(before); m != nil {
		var first string

		for _, e := range parseObjectLiteral(m[1]) {
			if !isIdent(e.Value) {
				continue
			}

			if e.Key == "data" {
				return e.Value
			}

			if first == "" {
				first = e.Value
			}
		}

		return first
	}

	if m := assignRe.FindStringSubmatch(before); m != nil {
		switch m[1] {
		case "const", "let", "var", "return", "await":
			return ""
		}

		return m[1]
	}

	return ""
}
