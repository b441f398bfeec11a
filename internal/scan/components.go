package scan

import (
	"path"
	"regexp"
	"strings"

	"bridge-generator/internal/common"
	"bridge-generator/internal/ir"
)

var (
	componentNameRe = regexp.MustCompile(`(?m)^[ \t]*export\s+(?:default\s+)?(?:function\s+([A-Z][\w$]*)|const\s+([A-Z][\w$]*)\s*(?::[^=]*)?=)`)
	hookRe          = regexp.MustCompile(`\b(use[A-Z][\w$]*)\s*(?:<[^>()]*>)?\s*\(`)
	routeRe         = regexp.MustCompile(`<Route\b[^>]*?\bpath\s*=\s*["'{]+([^"'}]+)["'}]+`)
	supabaseUsage   = []struct {
		name string
		re   *regexp.Regexp
	}{
		{"auth", regexp.MustCompile(`\.auth\s*\.`)},
		{"database", regexp.MustCompile(`\.from\s*\(\s*['"]`)},
		{"storage", regexp.MustCompile(`\.storage\s*\.`)},
		{"realtime", regexp.MustCompile(`\.channel\s*\(|\.subscribe\s*\(`)},
		{"functions", regexp.MustCompile(`\.functions\s*\.\s*invoke\s*\(`)},
	}
)

// describeComponent extracts informational metadata from a UI source file.
func describeComponent(p, src string) ir.ComponentDescriptor {
	masked := maskComments(src)
	norm := strings.ReplaceAll(p, "\\", "/")

	c := ir.ComponentDescriptor{
		Path:   p,
		IsPage: strings.Contains("/"+norm, "/pages/"),
	}

	if m := componentNameRe.FindStringSubmatch(masked); m != nil {
		c.Name = firstNonEmpty(m[1], m[2])
	} else {
		base := path.Base(norm)
		c.Name = strings.TrimSuffix(base, path.Ext(base))
	}

	var hooks []string
	for _, m := range hookRe.FindAllStringSubmatch(masked, -1) {
		hooks = append(hooks, m[1])
	}

	c.Hooks = common.Dedupe(hooks)

	for _, u := range supabaseUsage {
		if u.re.MatchString(masked) {
			c.SupabaseUsage = append(c.SupabaseUsage, u.name)
		}
	}

	var routes []string
	for _, m := range routeRe.FindAllStringSubmatch(masked, -1) {
		routes = append(routes, strings.TrimSpace(m[1]))
	}

	c.Routes = common.Dedupe(routes)

	return c
}
