package typescript_test

import (
	"testing"

	"github.com/fwojciec/sdkdrift"
	"github.com/fwojciec/sdkdrift/typescript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportAnalyzer_Analyze(t *testing.T) {
	t.Parallel()

	analyzer := typescript.NewImportAnalyzer(sdkdrift.DefaultConfig())

	t.Run("records named imports with generated flag", func(t *testing.T) {
		t.Parallel()

		text := "import { UsersApi, Configuration } from '../generated';\n" +
			"import { format } from './helpers';\n"

		p := analyzer.Analyze("users.ts", text)

		assert.Equal(t, "users.ts", p.Path)
		assert.Equal(t, []sdkdrift.ImportRecord{
			{WrapperPath: "users.ts", Source: "../generated", Symbols: []string{"UsersApi", "Configuration"}, IsGenerated: true, Line: 1},
			{WrapperPath: "users.ts", Source: "./helpers", Symbols: []string{"format"}, IsGenerated: false, Line: 2},
		}, p.Imports)
	})

	t.Run("handles aliases type modifiers and multi-line lists", func(t *testing.T) {
		t.Parallel()

		text := "// header\n" +
			"import type { User } from \"../generated/models\";\n" +
			"import {\n" +
			"  type Order,\n" +
			"  Invoice as Bill, // renamed\n" +
			"} from '../generated/models';\n"

		p := analyzer.Analyze("billing.ts", text)

		require.Len(t, p.Imports, 2)
		assert.Equal(t, []string{"User"}, p.Imports[0].Symbols)
		assert.Equal(t, 2, p.Imports[0].Line)
		assert.Equal(t, []string{"Order", "Invoice"}, p.Imports[1].Symbols)
		assert.Equal(t, 3, p.Imports[1].Line)
	})

	t.Run("handles default plus named imports and re-exports", func(t *testing.T) {
		t.Parallel()

		text := "import Client, { UsersApi } from '../generated/apis';\n" +
			"export { User } from '../generated/models/User';\n"

		p := analyzer.Analyze("index.ts", text)

		require.Len(t, p.Imports, 2)
		assert.Equal(t, []string{"UsersApi"}, p.Imports[0].Symbols)
		assert.Equal(t, []string{"User"}, p.Imports[1].Symbols)
		assert.True(t, p.Imports[1].IsGenerated)
	})

	t.Run("ignores default and namespace imports", func(t *testing.T) {
		t.Parallel()

		text := "import Client from '../generated/client';\n" +
			"import * as gen from '../generated';\n" +
			"import '../generated/polyfill';\n"

		p := analyzer.Analyze("client.ts", text)

		assert.NotNil(t, p.Imports)
		assert.Empty(t, p.Imports)
	})

	t.Run("marker must be a whole segment", func(t *testing.T) {
		t.Parallel()

		p := analyzer.Analyze("x.ts", "import { A } from '../generatedHelpers';\n")

		require.Len(t, p.Imports, 1)
		assert.False(t, p.Imports[0].IsGenerated)
	})

	t.Run("collects exported async methods", func(t *testing.T) {
		t.Parallel()

		text := "import { UsersApi } from '../generated';\n" +
			"export class UsersService {\n" +
			"  async getUser(id: string): Promise<User> {}\n" +
			"  private async cache(): Promise<void> {}\n" +
			"}\n"

		p := analyzer.Analyze("users.ts", text)

		assert.Equal(t, []sdkdrift.MethodSignature{{Name: "getUser", ReturnType: "User", Line: 3}}, p.Methods)
	})

	t.Run("empty file has empty non-nil profile", func(t *testing.T) {
		t.Parallel()

		p := analyzer.Analyze("empty.ts", "")

		assert.NotNil(t, p.Imports)
		assert.NotNil(t, p.Methods)
		assert.Empty(t, p.Imports)
		assert.Empty(t, p.Methods)
	})
}
