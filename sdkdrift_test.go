package sdkdrift_test

import (
	"testing"
	"time"

	"github.com/fwojciec/sdkdrift"
	"github.com/stretchr/testify/assert"
)

func TestFileChange_Stats(t *testing.T) {
	t.Parallel()

	t.Run("counts added and deleted lines", func(t *testing.T) {
		t.Parallel()

		file := sdkdrift.FileChange{
			Hunks: []sdkdrift.Hunk{
				{
					Lines: []sdkdrift.LineChange{
						{Kind: sdkdrift.LineContext},
						{Kind: sdkdrift.LineDeletion},
						{Kind: sdkdrift.LineAddition},
						{Kind: sdkdrift.LineAddition},
						{Kind: sdkdrift.LineContext},
					},
				},
			},
		}

		added, deleted := file.Stats()

		assert.Equal(t, 2, added)
		assert.Equal(t, 1, deleted)
	})

	t.Run("returns zero for binary files", func(t *testing.T) {
		t.Parallel()

		added, deleted := sdkdrift.FileChange{Binary: true}.Stats()

		assert.Zero(t, added)
		assert.Zero(t, deleted)
	})
}

func TestFileChange_AddedText(t *testing.T) {
	t.Parallel()

	file := sdkdrift.FileChange{
		Hunks: []sdkdrift.Hunk{
			{Lines: []sdkdrift.LineChange{
				{Kind: sdkdrift.LineContext, Content: "class A {"},
				{Kind: sdkdrift.LineDeletion, Content: "  old() {}"},
				{Kind: sdkdrift.LineAddition, Content: "  one() {}"},
			}},
			{Lines: []sdkdrift.LineChange{
				{Kind: sdkdrift.LineAddition, Content: "  two() {}"},
			}},
		},
	}

	assert.Equal(t, "  one() {}\n  two() {}\n", file.AddedText())
	assert.Equal(t, "  old() {}\n", file.DeletedText())
}

func TestHunk_Complete(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		hunk sdkdrift.Hunk
		want bool
	}{
		{
			name: "matches declared ranges",
			hunk: sdkdrift.Hunk{OldLines: 2, NewLines: 2, Lines: []sdkdrift.LineChange{
				{Kind: sdkdrift.LineContext},
				{Kind: sdkdrift.LineDeletion},
				{Kind: sdkdrift.LineAddition},
			}},
			want: true,
		},
		{
			name: "missing lines",
			hunk: sdkdrift.Hunk{OldLines: 3, NewLines: 3, Lines: []sdkdrift.LineChange{
				{Kind: sdkdrift.LineContext},
			}},
			want: false,
		},
		{
			name: "empty hunk with empty ranges",
			hunk: sdkdrift.Hunk{},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.hunk.Complete())
		})
	}
}

func TestWrapperFileProfile_GeneratedImports(t *testing.T) {
	t.Parallel()

	p := sdkdrift.WrapperFileProfile{
		Imports: []sdkdrift.ImportRecord{
			{Source: "../generated", IsGenerated: true},
			{Source: "./helpers"},
			{Source: "../generated/models", IsGenerated: true},
		},
	}

	got := p.GeneratedImports()

	assert.Len(t, got, 2)
	assert.Equal(t, "../generated", got[0].Source)
	assert.Equal(t, "../generated/models", got[1].Source)
}

func TestNewHistoryEntry(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r := &sdkdrift.AnalysisReport{
		ID:               "abc",
		Timestamp:        ts,
		DiffFingerprint:  "00000000deadbeef",
		Files:            make([]sdkdrift.FileChange, 3),
		NewEndpoints:     make([]sdkdrift.EndpointDescriptor, 2),
		AffectedWrappers: make([]sdkdrift.AffectedWrapper, 1),
		Risk:             sdkdrift.RiskAssessment{Level: sdkdrift.RiskMedium, Score: 4},
	}

	assert.Equal(t, sdkdrift.HistoryEntry{
		ID:               "abc",
		Timestamp:        ts,
		DiffFingerprint:  "00000000deadbeef",
		Level:            sdkdrift.RiskMedium,
		Score:            4,
		ChangedFiles:     3,
		AffectedWrappers: 1,
		NewEndpoints:     2,
	}, sdkdrift.NewHistoryEntry(r))
}

func TestAnalysisReport_SectionAnnotations(t *testing.T) {
	t.Parallel()

	r := &sdkdrift.AnalysisReport{Annotations: []sdkdrift.Annotation{
		{Section: sdkdrift.SectionDiff, Message: "a"},
		{Section: sdkdrift.SectionImports, Message: "b"},
		{Section: sdkdrift.SectionDiff, Message: "c"},
	}}

	assert.Equal(t, []sdkdrift.Annotation{
		{Section: sdkdrift.SectionDiff, Message: "a"},
		{Section: sdkdrift.SectionDiff, Message: "c"},
	}, r.SectionAnnotations(sdkdrift.SectionDiff))
	assert.Empty(t, r.SectionAnnotations(sdkdrift.SectionEndpoints))
}
