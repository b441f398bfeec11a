package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bridge-generator/internal/ir"
)

func TestSplitStatements_SkipsCommentsAndDollarBodies(t *testing.T) {
	input := `-- header comment; with a semicolon
CREATE FUNCTION touch() RETURNS trigger AS $$ BEGIN; NEW.updated_at = now(); RETURN NEW; END; $$ LANGUAGE plpgsql;
/* block /* nested; */ still comment */ CREATE TABLE a (id int);`

	stmts, err := SplitStatements(input)
	require.NoError(t, err)
	require.Len(t, stmts, 2)

	assert.True(t, stmts[0][0].Is("create"))
	assert.True(t, stmts[0][1].Is("FUNCTION"))

	var dollar []Token
	for _, tok := range stmts[0] {
		if tok.Kind == TokenDollarString {
			dollar = append(dollar, tok)
		}
	}

	require.Len(t, dollar, 1)
	assert.Contains(t, dollar[0].Text, "RETURN NEW;")

	assert.True(t, stmts[1][1].Is("TABLE"))
	assert.Equal(t, 3, stmts[1][0].Line)
}

func TestTokenize_QuotedForms(t *testing.T) {
	toks, err := AllTokens(`"Odd ""Name""" 'it''s' E'x' $tag$body$tag$ 1.5e3 ::`)
	require.NoError(t, err)
	require.Len(t, toks, 6)

	assert.Equal(t, TokenQuotedIdent, toks[0].Kind)
	assert.Equal(t, `Odd "Name"`, toks[0].Text)
	assert.Equal(t, TokenString, toks[1].Kind)
	assert.Equal(t, "it's", toks[1].Text)
	assert.Equal(t, "x", toks[2].Text)
	assert.Equal(t, TokenDollarString, toks[3].Kind)
	assert.Equal(t, "body", toks[3].Text)
	assert.Equal(t, TokenNumber, toks[4].Kind)
	assert.Equal(t, "1.5e3", toks[4].Text)
	assert.Equal(t, "::", toks[5].Text)
}

func TestTokenize_Errors(t *testing.T) {
	_, err := AllTokens("SELECT 'oops")
	assert.ErrorIs(t, err, ErrUnterminatedString)

	_, err = AllTokens("/* never closed")
	assert.ErrorIs(t, err, ErrUnterminatedComment)

	_, err = AllTokens("AS $fn$ body")
	assert.ErrorIs(t, err, ErrUnterminatedDollar)
}

func TestParseColumnType(t *testing.T) {
	tests := []struct {
		in   string
		want ir.TypeDescriptor
		args []int
	}{
		{"character varying(255)", ir.Primitive("varchar"), []int{255}},
		{"double precision", ir.Primitive("double precision"), nil},
		{"int8", ir.Primitive("bigint"), nil},
		{"TIMESTAMP WITH TIME ZONE", ir.Primitive("timestamptz"), nil},
		{"integer[]", ir.ArrayOf(ir.Primitive("integer")), nil},
		{"public.mood", ir.Primitive("mood"), nil},
		{"numeric(12, 4)", ir.Primitive("numeric"), []int{12, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			toks, err := AllTokens(tt.in)
			require.NoError(t, err)

			got, _, args := ParseColumnType(toks)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestRender(t *testing.T) {
	toks, err := AllTokens("timezone('utc'::text, now())")
	require.NoError(t, err)
	assert.Equal(t, "timezone('utc'::text, now())", render(toks))

	toks, err = AllTokens("auth.uid() = user_id")
	require.NoError(t, err)
	assert.Equal(t, "auth.uid() = user_id", render(toks))
}
