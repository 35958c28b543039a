package chroma_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/sdkdrift/chroma"
	"github.com/stretchr/testify/assert"
)

func TestCommentStripper_Normalize(t *testing.T) {
	t.Parallel()

	t.Run("blanks line and block comments", func(t *testing.T) {
		t.Parallel()

		src := "// async oldCall(): Promise<void> {}\n" +
			"/* async legacy(): Promise<void> {} */\n" +
			"async current(): Promise<void> {}\n"

		out := chroma.NewCommentStripper().Normalize("api.ts", src)

		assert.NotContains(t, out, "oldCall")
		assert.NotContains(t, out, "legacy")
		assert.Contains(t, out, "async current(): Promise<void> {}")
	})

	t.Run("preserves line count", func(t *testing.T) {
		t.Parallel()

		src := "/**\n * Get a user.\n * async ghost(): Promise<User>\n */\nasync getUser(): Promise<User> {}\n"

		out := chroma.NewCommentStripper().Normalize("api.ts", src)

		assert.Equal(t, strings.Count(src, "\n"), strings.Count(out, "\n"))
		assert.Len(t, out, len(src))
	})

	t.Run("returns unknown languages unchanged", func(t *testing.T) {
		t.Parallel()

		src := "// not a comment in this format"

		out := chroma.NewCommentStripper().Normalize("notes.unknownext", src)

		assert.Equal(t, src, out)
	})

	t.Run("strips comments by file extension", func(t *testing.T) {
		t.Parallel()

		for _, path := range []string{"src/wrappers/Users.tsx", "lib/index.js", "src/generated/runtime.ts"} {
			out := chroma.NewCommentStripper().Normalize(path, "x(); // async ghost(): Promise<void>\n")
			assert.NotContains(t, out, "ghost", "path: %s", path)
		}
	})

	t.Run("keeps text without a trailing newline the same length", func(t *testing.T) {
		t.Parallel()

		src := "async getUser(): Promise<User> {} // trailing"

		out := chroma.NewCommentStripper().Normalize("api.ts", src)

		assert.Len(t, out, len(src))
		assert.Contains(t, out, "async getUser(): Promise<User> {}")
	})

	t.Run("returns empty text unchanged", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, chroma.NewCommentStripper().Normalize("api.ts", ""))
	})
}
