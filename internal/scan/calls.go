package scan

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"bridge-generator/internal/common"
	"bridge-generator/internal/diagnostic"
	"bridge-generator/internal/ir"
)

var (
	importRe    = regexp.MustCompile(`\bimport\s+([^'";]*?)\s+from\s+['"]([^'"]+)['"]`)
	newClientRe = regexp.MustCompile(`(?:const|let|var)\s+([A-Za-z_$][\w$]*)\s*(?::[^=]*)?=\s*new\s+([A-Za-z_$][\w$.]*)\s*\(`)
	subClientRe = regexp.MustCompile(`(?:const|let|var)\s+([A-Za-z_$][\w$]*)\s*=\s*([A-Za-z_$][\w$]*)\s*\.\s*(getGenerativeModel|getModel)\s*\(`)
	fetchRe     = regexp.MustCompile(`\bfetch\s*\(`)
)

// handleBindRe matches the assignment in front of a model-handle call.
var handleBindRe = regexp.MustCompile(`(?:const|let|var)\s+[A-Za-z_$][\w$]*\s*=\s*$`)

// sdkModules maps an import specifier fragment to the provider it serves.
var sdkModules = []struct {
	fragment string
	provider ir.Provider
}{
	{"@anthropic-ai/", ir.ProviderAnthropic},
	{"anthropic", ir.ProviderAnthropic},
	{"@google/generative-ai", ir.ProviderGoogle},
	{"@google/genai", ir.ProviderGoogle},
	{"openai", ir.ProviderOpenAI},
}

// methodCapabilities maps the tail of a client method path to a capability.
// Longer suffixes are listed first.
var methodCapabilities = []struct {
	suffix     string
	capability ir.Capability
}{
	{"chat.completions.create", ir.CapabilityChatCompletion},
	{"chat.completions.stream", ir.CapabilityChatCompletion},
	{"embeddings.create", ir.CapabilityEmbedding},
	{"completions.create", ir.CapabilityTextCompletion},
	{"messages.create", ir.CapabilityChatCompletion},
	{"messages.stream", ir.CapabilityChatCompletion},
	{"responses.create", ir.CapabilityChatCompletion},
	{"generateContentStream", ir.CapabilityChatCompletion},
	{"generateContent", ir.CapabilityChatCompletion},
	{"batchEmbedContents", ir.CapabilityEmbedding},
	{"embedContent", ir.CapabilityEmbedding},
	{"getGenerativeModel", ir.CapabilityChatCompletion},
	{"getModel", ir.CapabilityChatCompletion},
}

var providerHosts = map[string]ir.Provider{
	"api.openai.com":                    ir.ProviderOpenAI,
	"api.anthropic.com":                 ir.ProviderAnthropic,
	"generativelanguage.googleapis.com": ir.ProviderGoogle,
}

var endpointCapabilities = []struct {
	suffix     string
	capability ir.Capability
}{
	{"/chat/completions", ir.CapabilityChatCompletion},
	{"/completions", ir.CapabilityTextCompletion},
	{"/embeddings", ir.CapabilityEmbedding},
	{"/messages", ir.CapabilityChatCompletion},
	{"/responses", ir.CapabilityChatCompletion},
	{":generateContent", ir.CapabilityChatCompletion},
	{":streamGenerateContent", ir.CapabilityChatCompletion},
	{":embedContent", ir.CapabilityEmbedding},
	{":batchEmbedContents", ir.CapabilityEmbedding},
}

// sdkBindings records which identifiers in a file refer to provider SDKs.
type sdkBindings struct {
	// classes are imported names bound to a provider module.
	classes map[string]ir.Provider
	// clients are variables holding an SDK client or model handle.
	clients map[string]ir.Provider
	// models are default model identifiers bound to a model handle.
	models map[string]string
}

func moduleProvider(spec string) (ir.Provider, bool) {
	spec = strings.ToLower(spec)
	for _, m := range sdkModules {
		if strings.Contains(spec, m.fragment) {
			return m.provider, true
		}
	}

	return ir.ProviderUnknown, false
}

// findSDKBindings reads imports and client construction in a file.
func findSDKBindings(masked string) sdkBindings {
	b := sdkBindings{
		classes: map[string]ir.Provider{},
		clients: map[string]ir.Provider{},
		models:  map[string]string{},
	}

	for _, m := range importRe.FindAllStringSubmatch(masked, -1) {
		p, ok := moduleProvider(m[2])
		if !ok {
			continue
		}

		for _, name := range importedNames(m[1]) {
			b.classes[name] = p
		}
	}

	for _, m := range newClientRe.FindAllStringSubmatch(masked, -1) {
		class := m[2]
		if i := strings.LastIndexByte(class, '.'); i >= 0 {
			class = class[:i]
		}

		if p, ok := b.classes[class]; ok {
			b.clients[m[1]] = p
		}
	}

	for _, loc := range subClientRe.FindAllStringSubmatchIndex(masked, -1) {
		parent := masked[loc[4]:loc[5]]

		p, ok := b.clients[parent]
		if !ok {
			continue
		}

		name := masked[loc[2]:loc[3]]
		b.clients[name] = p

		open := loc[1] - 1
		if end := matchClose(masked, open); end > 0 {
			if model, ok := literalParam(argumentObject(masked[open+1:end]), "model"); ok {
				b.models[name] = model
			}
		}
	}

	return b
}

// importedNames lists the local bindings of an import clause.
func importedNames(clause string) []string {
	var names []string

	clause = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(clause), "type "))

	if open := strings.IndexByte(clause, '{'); open >= 0 {
		if end := strings.IndexByte(clause[open:], '}'); end >= 0 {
			for _, part := range strings.Split(clause[open+1:open+end], ",") {
				fields := strings.Fields(part)
				if len(fields) == 0 {
					continue
				}

				names = append(names, fields[len(fields)-1])
			}
		}

		clause = clause[:open]
	}

	for _, part := range strings.Split(clause, ",") {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, "*") {
			fields := strings.Fields(part)
			part = fields[len(fields)-1]
		}

		if isIdent(part) {
			names = append(names, part)
		}
	}

	return names
}

type locatedCall struct {
	at   int
	call ir.ExternalCallSite
}

// detectExternalCalls recognizes SDK method calls and direct HTTP calls
// in masked[start:end], ordered by position.
func detectExternalCalls(fc *fileContext, start, end int) ([]ir.ExternalCallSite, []diagnostic.Diagnostic) {
	var (
		found []locatedCall
		diags []diagnostic.Diagnostic
	)

	body := fc.masked[start:end]

	unbalanced := func(what string, at int) {
		diags = append(diags, diagnostic.Warningf(diagnostic.CodeStructuralParse, fc.path,
			"%s:%d: %s has unbalanced brackets; call omitted", fc.path, common.CountLines(fc.src, at), what))
	}

	if re := fc.sdk.callPattern(); re != nil {
		for _, loc := range re.FindAllStringSubmatchIndex(body, -1) {
			at := start + loc[0]
			client := body[loc[2]:loc[3]]
			methodPath := strings.Join(strings.Fields(body[loc[4]:loc[5]]), "")
			methodPath = strings.TrimPrefix(methodPath, ".")

			open := start + loc[1] - 1

			closeAt := matchClose(fc.masked, open)
			if closeAt < 0 {
				unbalanced(client+"."+methodPath+"(...)", at)
				continue
			}

			// A model handle bound to a variable is recorded by the SDK
			// bindings; the calls made on it are the call sites.
			if isModelHandle(methodPath) && fc.boundHandle(at, closeAt) {
				continue
			}

			call := fc.sdkCall(client, methodPath, fc.masked[open+1:closeAt], at)
			call.Binding = bindingAt(fc.masked, at)
			found = append(found, locatedCall{at: at, call: call})
		}
	}

	for _, loc := range fetchRe.FindAllStringIndex(body, -1) {
		at := start + loc[0]
		open := start + loc[1] - 1

		closeAt := matchClose(fc.masked, open)
		if closeAt < 0 {
			unbalanced("fetch(...)", at)
			continue
		}

		call := fc.fetchCall(fc.masked[open+1:closeAt], at)
		call.Binding = bindingAt(fc.masked, at)
		found = append(found, locatedCall{at: at, call: call})
	}

	sort.SliceStable(found, func(i, j int) bool { return found[i].at < found[j].at })

	calls := make([]ir.ExternalCallSite, 0, len(found))
	for _, f := range found {
		calls = append(calls, f.call)
	}

	return calls, diags
}

// boundHandle reports whether the call spanning at..closeAt is assigned
// as is, without a method chained onto its result.
func (fc *fileContext) boundHandle(at, closeAt int) bool {
	if !handleBindRe.MatchString(fc.masked[max(0, at-256):at]) {
		return false
	}

	next := skipSpace(fc.masked, closeAt+1)

	return next >= len(fc.masked) || fc.masked[next] != '.'
}

func isModelHandle(methodPath string) bool {
	return methodPath == "getGenerativeModel" || methodPath == "getModel"
}

// callPattern matches client.method.path( for every known client.
func (b sdkBindings) callPattern() *regexp.Regexp {
	if len(b.clients) == 0 {
		return nil
	}

	names := make([]string, 0, len(b.clients))
	for n := range b.clients {
		names = append(names, regexp.QuoteMeta(n))
	}

	sort.Strings(names)

	return regexp.MustCompile(`\b(` + strings.Join(names, "|") + `)((?:\s*\.\s*[A-Za-z_$][\w$]*)+)\s*\(`)
}

func (fc *fileContext) sdkCall(client, methodPath, args string, at int) ir.ExternalCallSite {
	call := ir.ExternalCallSite{
		Provider:   fc.sdk.clients[client],
		Capability: ir.CapabilityUnknown,
		Line:       common.CountLines(fc.src, at),
	}

	for _, mc := range methodCapabilities {
		if methodPath == mc.suffix || strings.HasSuffix(methodPath, "."+mc.suffix) {
			call.Capability = mc.capability
			break
		}
	}

	call.Params = rawParams(argumentObject(args))
	call.Params = append([]ir.RawParam{{Key: "method", Value: methodPath}}, call.Params...)

	if model, ok := literalParam(argumentObject(args), "model"); ok {
		call.Model = model
	} else {
		call.Model = fc.sdk.models[client]
	}

	return call
}

func (fc *fileContext) fetchCall(args string, at int) ir.ExternalCallSite {
	call := ir.ExternalCallSite{
		Provider:   ir.ProviderUnknown,
		Capability: ir.CapabilityHTTPRequest,
		Line:       common.CountLines(fc.src, at),
	}

	parts := splitTopLevel(args, ",", false)

	target, ok := common.First(parts)
	if !ok {
		return call
	}

	endpoint, literal := stringLiteral(target)
	if !literal && strings.HasPrefix(target, "`") {
		endpoint = strings.TrimPrefix(target, "`")
		if i := strings.Index(endpoint, "${"); i >= 0 {
			endpoint = endpoint[:i]
		}
	}

	call.Endpoint = endpoint
	call.Params = append(call.Params, ir.RawParam{Key: "url", Value: target})

	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		call.Params = append(call.Params, ir.RawParam{Key: "host", Value: u.Host})

		if p, known := providerHosts[strings.ToLower(u.Host)]; known {
			call.Provider = p
			call.Capability = ir.CapabilityUnknown

			for _, ec := range endpointCapabilities {
				if strings.HasSuffix(u.Path, ec.suffix) {
					call.Capability = ec.capability
					break
				}
			}

			if i := strings.Index(u.Path, "/models/"); i >= 0 && call.Provider == ir.ProviderGoogle {
				rest := u.Path[i+len("/models/"):]
				if j := strings.IndexByte(rest, ':'); j >= 0 {
					call.Model = rest[:j]
				}
			}
		}
	}

	if len(parts) < 2 {
		return call
	}

	for _, e := range rawParams(parts[1]) {
		switch e.Key {
		case "method":
			call.Params = append(call.Params, e)
		case "body":
			payload := strings.TrimSpace(e.Value)
			if !strings.HasPrefix(payload, "JSON.stringify(") {
				continue
			}

			payload = strings.TrimSuffix(strings.TrimPrefix(payload, "JSON.stringify("), ")")
			payload, _ = common.First(splitTopLevel(payload, ",", false))

			call.Params = append(call.Params, rawParams(payload)...)

			if model, ok := literalParam(payload, "model"); ok {
				call.Model = model
			}
		}
	}

	return call
}

// argumentObject returns the first argument when it is an object literal.
func argumentObject(args string) string {
	first, ok := common.First(splitTopLevel(args, ",", false))
	if !ok || !strings.HasPrefix(first, "{") {
		return ""
	}

	return first
}

// rawParams lists the entries of an object literal in source order.
func rawParams(obj string) []ir.RawParam {
	obj = strings.TrimSpace(obj)
	if !strings.HasPrefix(obj, "{") || !strings.HasSuffix(obj, "}") {
		return nil
	}

	var out []ir.RawParam
	for _, e := range parseObjectLiteral(obj[1 : len(obj)-1]) {
		out = append(out, ir.RawParam{Key: e.Key, Value: strings.Join(strings.Fields(e.Value), " ")})
	}

	return out
}

func literalParam(obj, key string) (string, bool) {
	for _, p := range rawParams(obj) {
		if p.Key == key {
			return stringLiteral(p.Value)
		}
	}

	return "", false
}
