package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanComponentFile(t *testing.T) {
	src := `import { useState, useEffect } from "react";

export default function Dashboard() {
  const [items, setItems] = useState<Item[]>([]);
  useEffect(() => { supabase.from("items").select(); }, []);
  const { user } = useAuth();
  supabase.auth.onAuthStateChange(() => {});
  return <Routes><Route path="/settings" element={<Settings />} /></Routes>;
}
`
	res := ScanComponentFile("src/pages/Dashboard.tsx", src)
	require.Len(t, res.Components, 1)

	c := res.Components[0]
	assert.Equal(t, "Dashboard", c.Name)
	assert.True(t, c.IsPage)
	assert.Equal(t, []string{"useState", "useEffect", "useAuth"}, c.Hooks)
	assert.Equal(t, []string{"auth", "database"}, c.SupabaseUsage)
	assert.Equal(t, []string{"/settings"}, c.Routes)
}

func TestScanComponentFile_NameFromPath(t *testing.T) {
	res := ScanComponentFile("src/components/Button.tsx", "const x = 1;\n")
	require.Len(t, res.Components, 1)
	assert.Equal(t, "Button", res.Components[0].Name)
	assert.False(t, res.Components[0].IsPage)
	assert.Empty(t, res.Components[0].Hooks)
}
