package scan

import (
	"fmt"
	"path"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"

	"bridge-generator/internal/common"
	"bridge-generator/internal/diagnostic"
	"bridge-generator/internal/ir"
)

var (
	serveRe        = regexp.MustCompile(`\b(?:Deno\s*\.\s*)?serve\s*\(`)
	exportFuncRe   = regexp.MustCompile(`(?m)^[ \t]*export\s+(?:default\s+)?(?:async\s+)?function\s*\*?\s*([A-Za-z_$][\w$]*)?\s*\(`)
	exportArrowRe  = regexp.MustCompile(`(?m)^[ \t]*export\s+const\s+([A-Za-z_$][\w$]*)\s*(?::[^=]*)?=\s*(?:async\s+)?\(`)
	requestParamRe = regexp.MustCompile(`^\s*(?:req|request)\b|:\s*Request\b`)
	arrowTailRe    = regexp.MustCompile(`^\s*(?::\s*[^={]*?)?\s*=>\s*`)
	blockTailRe    = regexp.MustCompile(`^\s*(?::\s*[^{]*?)?\s*\{`)

	methodRes = []*regexp.Regexp{
		regexp.MustCompile(`\.method\s*(?:===?|!==?)\s*['"](GET|POST|PUT|PATCH|DELETE)['"]`),
		regexp.MustCompile(`['"](GET|POST|PUT|PATCH|DELETE)['"]\s*(?:===?|!==?)\s*[\w$.]*\.method\b`),
		regexp.MustCompile(`\bcase\s+['"](GET|POST|PUT|PATCH|DELETE)['"]\s*:`),
	}

	jsonDestructRe = regexp.MustCompile(`(?:const|let|var)\s*\{([^{}]*)\}\s*(?::\s*([A-Za-z_$][\w$.]*))?\s*=\s*await\s+[\w$.]+\.json\s*\(\s*\)(?:\s+as\s+([A-Za-z_$][\w$.]*))?`)
	jsonVarRe      = regexp.MustCompile(`(?:const|let|var)\s+([A-Za-z_$][\w$]*)\s*(?::\s*([A-Za-z_$][\w$.]*))?\s*=\s*await\s+[\w$.]+\.json\s*\(\s*\)(?:\s+as\s+([A-Za-z_$][\w$.]*))?`)
	searchParamRe  = regexp.MustCompile(`\.searchParams\s*\.\s*(get|getAll)\s*\(\s*['"]([^'"]+)['"]\s*\)`)
	pathnameRe     = regexp.MustCompile("pathname\\s*:\\s*['\"`]([^'\"`]+)['\"`]")
	pathSegmentRe  = regexp.MustCompile(`:([A-Za-z_][\w]*)`)
	responseRe     = regexp.MustCompile(`\bnew\s+Response\s*\(|\bResponse\s*\.\s*json\s*\(`)
	statusRe       = regexp.MustCompile(`\bstatus\s*:\s*(\d{3})\b`)
	authRe         = regexp.MustCompile(`\.auth\s*\.\s*(?:getUser|getSession|getClaims)\s*\(|headers\s*\.\s*get\s*\(\s*['"](?i:authorization)['"]\s*\)`)
)

// fileContext is the per-file state shared by every handler in a file.
type fileContext struct {
	path   string
	src    string
	masked string
	sdk    sdkBindings
	// dbClients holds variables assigned from createClient(...).
	dbClients map[string]bool
}

// handlerSpan locates one handler entry point.
type handlerSpan struct {
	name      string
	declAt    int
	bodyStart int
	bodyEnd   int
}

// HandlerNameFromPath derives a handler name from its file path: the
// directory name for index files, the file stem otherwise.
func HandlerNameFromPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	base := path.Base(p)
	stem := strings.TrimSuffix(base, path.Ext(base))

	if dir := path.Dir(p); stem == "index" && dir != "." && dir != "/" {
		return path.Base(dir)
	}

	return stem
}

// scanHandlers locates handler entry points in a file and describes each.
func scanHandlers(fc *fileContext) ([]ir.HandlerDescriptor, []diagnostic.Diagnostic) {
	spans, diags := findHandlerSpans(fc)
	if len(spans) == 0 && len(diags) == 0 {
		diags = append(diags, diagnostic.Warningf(diagnostic.CodeStructuralParse, fc.path,
			"%s: no handler entry point found; file contributes no handlers", fc.path))
	}

	seen := map[string]int{}
	handlers := make([]ir.HandlerDescriptor, 0, len(spans))

	for _, sp := range spans {
		name := sp.name

		seen[name]++
		if n := seen[name]; n > 1 {
			name = fmt.Sprintf("%s~%d", name, n)
		}

		h, more := describeHandler(fc, name, sp, len(spans) == 1)
		handlers = append(handlers, h)
		diags = append(diags, more...)
	}

	return handlers, diags
}

func findHandlerSpans(fc *fileContext) ([]handlerSpan, []diagnostic.Diagnostic) {
	var (
		spans []handlerSpan
		diags []diagnostic.Diagnostic
	)

	unbalanced := func(what string, at int) {
		diags = append(diags, diagnostic.Warningf(diagnostic.CodeStructuralParse, fc.path,
			"%s:%d: %s has unbalanced brackets; handler omitted", fc.path, common.CountLines(fc.src, at), what))
	}

	m := fc.masked

	// claimed holds body offsets already owned by a serve(...) entry, so an
	// exported function passed to serve is not described twice.
	claimed := map[int]bool{}

	for _, loc := range serveRe.FindAllStringIndex(m, -1) {
		open := loc[1] - 1

		closeAt := matchClose(m, open)
		if closeAt < 0 {
			unbalanced("serve(...) call", loc[0])
			continue
		}

		name := HandlerNameFromPath(fc.path)
		args := strings.TrimSpace(m[open+1 : closeAt])

		if isIdent(args) {
			if sp, ok := findNamedFunction(m, args); ok {
				sp.name = name
				sp.declAt = loc[0]
				spans = append(spans, sp)
				claimed[sp.bodyStart] = true

				continue
			}
		}

		spans = append(spans, handlerSpan{name: name, declAt: loc[0], bodyStart: open + 1, bodyEnd: closeAt})
	}

	for _, loc := range exportFuncRe.FindAllStringSubmatchIndex(m, -1) {
		name := "default"
		if loc[2] >= 0 {
			name = m[loc[2]:loc[3]]
		}

		sp, ok, isHandler := functionSpan(m, loc[1]-1)
		if !isHandler {
			continue
		}

		if !ok {
			unbalanced("function "+name, loc[0])
			continue
		}

		if claimed[sp.bodyStart] {
			continue
		}

		sp.name, sp.declAt = name, loc[0]
		spans = append(spans, sp)
	}

	for _, loc := range exportArrowRe.FindAllStringSubmatchIndex(m, -1) {
		name := m[loc[2]:loc[3]]

		sp, ok, isHandler := functionSpan(m, loc[1]-1)
		if !isHandler {
			continue
		}

		if !ok {
			unbalanced("function "+name, loc[0])
			continue
		}

		if claimed[sp.bodyStart] {
			continue
		}

		sp.name, sp.declAt = name, loc[0]
		spans = append(spans, sp)
	}

	sort.SliceStable(spans, func(i, j int) bool { return spans[i].declAt < spans[j].declAt })

	return spans, diags
}

// functionSpan reads a parameter list starting at open and the body that
// follows. isHandler reports whether the first parameter is a request.
func functionSpan(m string, open int) (sp handlerSpan, ok, isHandler bool) {
	closeAt := matchClose(m, open)
	if closeAt < 0 {
		return sp, false, true
	}

	if !requestParamRe.MatchString(m[open+1 : closeAt]) {
		return sp, false, false
	}

	tail := m[closeAt+1:]

	if loc := arrowTailRe.FindStringIndex(tail); loc != nil {
		start := closeAt + 1 + loc[1]
		if start < len(m) && m[start] == '{' {
			end := matchClose(m, start)
			if end < 0 {
				return sp, false, true
			}

			return handlerSpan{bodyStart: start + 1, bodyEnd: end}, true, true
		}

		return handlerSpan{bodyStart: start, bodyEnd: exprEnd(m, start)}, true, true
	}

	if loc := blockTailRe.FindStringIndex(tail); loc != nil {
		start := closeAt + loc[1]

		end := matchClose(m, start)
		if end < 0 {
			return sp, false, true
		}

		return handlerSpan{bodyStart: start + 1, bodyEnd: end}, true, true
	}

	return sp, false, true
}

// findNamedFunction locates a non-exported request function by name, used
// for serve(handler).
func findNamedFunction(m, name string) (handlerSpan, bool) {
	q := regexp.QuoteMeta(name)
	re := regexp.MustCompile(`(?:function\s+` + q + `|(?:const|let|var)\s+` + q + `\s*(?::[^=]*)?=\s*(?:async\s+)?)\s*\(`)

	loc := re.FindStringIndex(m)
	if loc == nil {
		return handlerSpan{}, false
	}

	sp, ok, isHandler := functionSpan(m, loc[1]-1)

	return sp, ok && isHandler
}

func describeHandler(fc *fileContext, name string, sp handlerSpan, soleHandler bool) (ir.HandlerDescriptor, []diagnostic.Diagnostic) {
	body := fc.masked[sp.bodyStart:sp.bodyEnd]

	h := ir.HandlerDescriptor{
		ID:         ir.NewHandlerID(fc.path, name),
		Name:       name,
		SourcePath: fc.path,
		Line:       common.CountLines(fc.src, sp.declAt),
	}

	h.Methods = detectMethods(body)
	h.Params, h.BodyType = detectParams(body)

	pathScope := body
	if soleHandler {
		pathScope = fc.masked
	}

	h.Params = append(h.Params, detectPathParams(pathScope)...)
	h.Response = detectResponse(body)
	h.AuthRequired = authRe.MatchString(body)
	h.Method = primaryMethod(h)

	var diags []diagnostic.Diagnostic

	h.Operations, diags = detectDataOperations(fc, sp.bodyStart, sp.bodyEnd)

	calls, more := detectExternalCalls(fc, sp.bodyStart, sp.bodyEnd)
	diags = append(diags, more...)

	for i := range calls {
		calls[i].ID = h.ID.CallSite(i)
	}

	h.ExternalCalls = calls

	return h, diags
}

func detectMethods(body string) []ir.HTTPMethod {
	type hit struct {
		at     int
		method ir.HTTPMethod
	}

	var hits []hit

	for _, re := range methodRes {
		for _, loc := range re.FindAllStringSubmatchIndex(body, -1) {
			hits = append(hits, hit{at: loc[0], method: ir.ParseHTTPMethod(body[loc[2]:loc[3]])})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].at < hits[j].at })

	var methods []ir.HTTPMethod
	for _, h := range hits {
		methods = append(methods, h.method)
	}

	return common.Dedupe(methods)
}

// primaryMethod picks the first checked method. Without any check, a
// handler that reads a body is POST, one that reads only the query string
// is GET, and anything else is unknown.
func primaryMethod(h ir.HandlerDescriptor) ir.HTTPMethod {
	if m, ok := common.First(h.Methods); ok {
		return m
	}

	hasQuery := false

	for _, p := range h.Params {
		switch p.Location {
		case ir.ParamBody:
			return ir.MethodPost
		case ir.ParamQuery:
			hasQuery = true
		}
	}

	if hasQuery {
		return ir.MethodGet
	}

	return ir.MethodUnknown
}

func detectParams(body string) ([]ir.Param, string) {
	var (
		params   []ir.Param
		bodyType string
		names    []string
	)

	for _, m := range jsonDestructRe.FindAllStringSubmatch(body, -1) {
		names = append(names, destructuredNames(m[1])...)
		bodyType = firstNonEmpty(bodyType, m[2], m[3])
	}

	for _, m := range jsonVarRe.FindAllStringSubmatch(body, -1) {
		v := regexp.QuoteMeta(m[1])
		bodyType = firstNonEmpty(bodyType, m[2], m[3])

		destructRe := regexp.MustCompile(`(?:const|let|var)\s*\{([^{}]*)\}\s*=\s*` + v + `\b`)
		for _, dm := range destructRe.FindAllStringSubmatch(body, -1) {
			names = append(names, destructuredNames(dm[1])...)
		}

		accessRe := regexp.MustCompile(`\b` + v + `\s*\.\s*([A-Za-z_$][\w$]*)`)
		for _, am := range accessRe.FindAllStringSubmatch(body, -1) {
			names = append(names, am[1])
		}
	}

	for _, n := range common.Dedupe(names) {
		params = append(params, ir.Param{Name: n, Type: ir.Primitive("any"), Location: ir.ParamBody})
	}

	var query []string

	for _, m := range searchParamRe.FindAllStringSubmatch(body, -1) {
		if slices.Contains(query, m[2]) {
			continue
		}

		query = append(query, m[2])

		t := ir.OptionalOf(ir.Primitive("string"))
		if m[1] == "getAll" {
			t = ir.ArrayOf(ir.Primitive("string"))
		}

		params = append(params, ir.Param{Name: m[2], Type: t, Location: ir.ParamQuery})
	}

	return params, bodyType
}

func destructuredNames(list string) []string {
	var out []string

	for _, part := range splitTopLevel(list, ",", false) {
		if strings.HasPrefix(part, "...") {
			continue
		}

		name := part
		if i := strings.IndexAny(name, ":="); i >= 0 {
			name = name[:i]
		}

		if name = strings.TrimSpace(name); isIdent(name) {
			out = append(out, name)
		}
	}

	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}

	return ""
}

func detectPathParams(scope string) []ir.Param {
	var names []string

	for _, m := range pathnameRe.FindAllStringSubmatch(scope, -1) {
		for _, seg := range pathSegmentRe.FindAllStringSubmatch(m[1], -1) {
			names = append(names, seg[1])
		}
	}

	params := make([]ir.Param, 0, len(names))
	for _, n := range common.Dedupe(names) {
		params = append(params, ir.Param{Name: n, Type: ir.Primitive("string"), Location: ir.ParamPath})
	}

	return params
}

func detectResponse(body string) ir.ResponseShape {
	var (
		shape  ir.ResponseShape
		fields []string
		codes  []int
		values = map[string]string{}
	)

	for _, loc := range responseRe.FindAllStringIndex(body, -1) {
		open := loc[1] - 1

		closeAt := matchClose(body, open)
		if closeAt < 0 {
			continue
		}

		args := splitTopLevel(body[open+1:closeAt], ",", false)
		isJSONHelper := strings.Contains(body[loc[0]:loc[1]], "json")

		if payload, ok := common.First(args); ok {
			if strings.HasPrefix(payload, "JSON.stringify(") {
				isJSONHelper = true
				payload = strings.TrimSuffix(strings.TrimPrefix(payload, "JSON.stringify("), ")")
				payload, _ = common.First(splitTopLevel(payload, ",", false))
			}

			if isJSONHelper {
				shape.JSON = true
			}

			if isJSONHelper && strings.HasPrefix(payload, "{") && strings.HasSuffix(payload, "}") {
				for _, e := range parseObjectLiteral(payload[1 : len(payload)-1]) {
					fields = append(fields, e.Key)
					if _, seen := values[e.Key]; !seen {
						values[e.Key] = e.Value
					}
				}
			}
		}

		for _, m := range statusRe.FindAllStringSubmatch(body[open:closeAt], -1) {
			if n, err := strconv.Atoi(m[1]); err == nil {
				codes = append(codes, n)
			}
		}
	}

	shape.Fields = common.Dedupe(fields)
	if len(values) > 0 {
		shape.Values = values
	}
	shape.StatusCodes = common.Dedupe(codes)

	return shape
}
