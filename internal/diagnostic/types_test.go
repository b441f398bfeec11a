package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnostics_PreservesOrderAcrossSeverities(t *testing.T) {
	var d Diagnostics

	d.AddWarning(CodeSchemaFold, "table missing", "users")
	d.AddInfo(CodeStatementIgnored, "CREATE FUNCTION ignored", "001.sql")
	d.AddError(CodeTemplateRender, "boom", "app/main.py")

	require.Equal(t, 3, d.Len())
	assert.Equal(t, CodeSchemaFold, d.Items[0].Code)
	assert.Equal(t, CodeStatementIgnored, d.Items[1].Code)
	assert.Len(t, d.Warnings(), 1)
	assert.Len(t, d.Infos(), 1)
	assert.Len(t, d.Errors(), 1)
	assert.True(t, d.HasErrors())
	assert.False(t, d.IsValid())
}

func TestDiagnostics_Error(t *testing.T) {
	var d Diagnostics
	assert.NoError(t, d.Error())

	d.AddWarning(CodeSchemaFold, "ignored", "t")
	assert.NoError(t, d.Error())

	d.AddError(CodeTemplateRender, "missing template", "app/main.py")
	d.AddError(CodeTemplateRender, "bad field", "")
	assert.EqualError(t, d.Error(),
		"app/main.py: [template_render_error] missing template; [template_render_error] bad field")
}

func TestDiagnostics_MergeAndWithCode(t *testing.T) {
	var a, b Diagnostics

	a.Add(Warningf(CodeStructuralParse, "f.ts", "unbalanced %s", "brace"))
	b.Add(Infof(CodeCompatibility, "chat", "uses %d providers", 2).WithSuggestions("configure serving"))
	a.Merge(b)

	require.Equal(t, 2, a.Len())
	assert.Equal(t, "f.ts: [structural_parse_warning] unbalanced brace", a.Items[0].String())
	assert.Equal(t, []string{"configure serving"}, a.WithCode(CodeCompatibility)[0].Suggestions)
	assert.Empty(t, a.WithCode(CodeSchemaFold))
}

func TestDiagnosticSeverity_String(t *testing.T) {
	assert.Equal(t, "info", DiagnosticInfo.String())
	assert.Equal(t, "warning", DiagnosticWarning.String())
	assert.Equal(t, "error", DiagnosticError.String())
	assert.Equal(t, "unknown", DiagnosticSeverity(42).String())
}
