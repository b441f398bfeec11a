package scan

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBindingAt(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"const { data, error } = await supabase.from('posts')", "data"},
		{"const { data: posts } = await supabase.from('posts')", "posts"},
		{"const { count } = await supabase.from('posts')", "count"},
		{"const completion = await openai.chat.completions.create({})", "completion"},
		{"let res: Response = await fetch(url)", "res"},
		{"result = await fetch(url)", "result"},
		{"return await supabase.from('posts')", ""},
		{"await supabase.from('posts')", ""},
		{"this.cache = await fetch(url)", ""},
		{"if (a == supabase.from('posts'))", ""},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			at := strings.Index(tt.src, "supabase")
			if at < 0 {
				at = strings.Index(tt.src, "openai")
			}

			if at < 0 {
				at = strings.Index(tt.src, "fetch")
			}

			assert.Equal(t, tt.want, bindingAt(tt.src, at))
		})
	}
}
