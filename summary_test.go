package sdkdrift_test

import (
	"testing"

	"github.com/fwojciec/sdkdrift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSummaryLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		text   string
		want   sdkdrift.ChangeCounts
		wantOK bool
	}{
		{
			name:   "full line",
			text:   " 3 files changed, 10 insertions(+), 2 deletions(-)\n",
			want:   sdkdrift.ChangeCounts{Files: 3, Insertions: 10, Deletions: 2},
			wantOK: true,
		},
		{
			name:   "singular forms",
			text:   "1 file changed, 1 insertion(+), 1 deletion(-)",
			want:   sdkdrift.ChangeCounts{Files: 1, Insertions: 1, Deletions: 1},
			wantOK: true,
		},
		{
			name:   "insertions only",
			text:   " 2 files changed, 7 insertions(+)",
			want:   sdkdrift.ChangeCounts{Files: 2, Insertions: 7},
			wantOK: true,
		},
		{
			name:   "deletions only",
			text:   " 1 file changed, 4 deletions(-)",
			want:   sdkdrift.ChangeCounts{Files: 1, Deletions: 4},
			wantOK: true,
		},
		{
			name:   "embedded in a larger text",
			text:   "stat:\n 5 files changed, 1 insertion(+)\ndiff --git a/x b/x\n",
			want:   sdkdrift.ChangeCounts{Files: 5, Insertions: 1},
			wantOK: true,
		},
		{
			name: "absent",
			text: "diff --git a/x b/x\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := sdkdrift.ParseSummaryLine(tt.text)

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDiffSummary(t *testing.T) {
	t.Parallel()

	files := []sdkdrift.FileChange{{
		Path: "models/User.ts",
		Hunks: []sdkdrift.Hunk{{Lines: []sdkdrift.LineChange{
			{Kind: sdkdrift.LineDeletion},
			{Kind: sdkdrift.LineAddition},
			{Kind: sdkdrift.LineAddition},
		}}},
	}}

	t.Run("consistent when counts agree", func(t *testing.T) {
		t.Parallel()

		s := sdkdrift.ParseDiffSummary(" 1 file changed, 2 insertions(+), 1 deletion(-)\n", files)

		require.NotNil(t, s.Reported)
		assert.True(t, s.Consistent)
		assert.Empty(t, s.Mismatch())
	})

	t.Run("structural counts win on mismatch", func(t *testing.T) {
		t.Parallel()

		s := sdkdrift.ParseDiffSummary(" 4 files changed, 9 insertions(+), 3 deletions(-)\n", files)

		assert.False(t, s.Consistent)
		assert.Equal(t, sdkdrift.ChangeCounts{Files: 1, Insertions: 2, Deletions: 1}, s.Structural)
		assert.Equal(t, "summary line reports 4 files, +9/-3 but diff contains 1 files, +2/-1", s.Mismatch())
	})

	t.Run("consistent without a summary line", func(t *testing.T) {
		t.Parallel()

		s := sdkdrift.ParseDiffSummary("", files)

		assert.Nil(t, s.Reported)
		assert.True(t, s.Consistent)
	})
}

func TestOversizedMarker(t *testing.T) {
	t.Parallel()

	marker := sdkdrift.OversizedMarker(2048)

	assert.True(t, sdkdrift.IsOversizedMarker(marker))
	assert.Contains(t, marker, "2048 bytes")
	assert.False(t, sdkdrift.IsOversizedMarker("export class UsersApi {}"))
}
