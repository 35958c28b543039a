package bubbletea_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/fwojciec/sdkdrift"
	"github.com/fwojciec/sdkdrift/bubbletea"
	"github.com/fwojciec/sdkdrift/mock"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// trueColorRenderer creates a lipgloss renderer that outputs true colors.
// This is useful for testing color output without affecting global state.
func trueColorRenderer() *lipgloss.Renderer {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.TrueColor)
	return r
}

func sampleReport() *sdkdrift.AnalysisReport {
	return &sdkdrift.AnalysisReport{
		ID:              "3f2a9c4e-0000-4000-8000-000000000000",
		Timestamp:       time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		DiffFingerprint: "00000000deadbeef",
		Files: []sdkdrift.FileChange{
			{
				Path: "src/generated/apis/UsersApi.ts",
				Kind: sdkdrift.ChangeModified,
				Hunks: []sdkdrift.Hunk{
					{
						OldStart: 1, OldLines: 2, NewStart: 1, NewLines: 3,
						Lines: []sdkdrift.LineChange{
							{Kind: sdkdrift.LineContext, Content: "export class UsersApi {"},
							{Kind: sdkdrift.LineDeletion, Content: "  async getUser(): Promise<User> {}"},
							{Kind: sdkdrift.LineAddition, Content: "  async getUser(): Promise<UserV2> {}"},
							{Kind: sdkdrift.LineAddition, Content: "  async listUsers(): Promise<User[]> {}"},
						},
					},
				},
			},
		},
		NewEndpoints: []sdkdrift.EndpointDescriptor{
			{Name: "listUsers", File: "src/generated/apis/UsersApi.ts", Kind: sdkdrift.EndpointKindAPIMethod, ReturnType: "User[]", Line: 3},
		},
		RemovedEndpoints: []sdkdrift.EndpointDescriptor{},
		ModifiedEndpoints: []sdkdrift.EndpointDescriptor{
			{Name: "getUser", File: "src/generated/apis/UsersApi.ts", Kind: sdkdrift.EndpointKindAPIMethod, ReturnType: "UserV2", Line: 2},
		},
		WrapperCount: 2,
		AffectedWrappers: []sdkdrift.AffectedWrapper{
			{
				Path:                "src/wrappers/users.ts",
				Tier:                sdkdrift.RiskLow,
				AffectedImportCount: 1,
				Imports: []sdkdrift.AffectedImport{
					{
						Source:       "../generated/apis/UsersApi",
						Line:         1,
						Symbols:      []string{"UsersApi"},
						ChangedFiles: []string{"src/generated/apis/UsersApi.ts"},
					},
				},
			},
		},
		Risk: sdkdrift.RiskAssessment{Level: sdkdrift.RiskMedium, Score: 3},
		Annotations: []sdkdrift.Annotation{
			{Section: sdkdrift.SectionImports, Message: "legacy.ts: wrapper file too large, skipped"},
		},
	}
}

// longReport returns a report with two files of n context lines each, with
// markers on the first and last line of each file.
func longReport(n int) *sdkdrift.AnalysisReport {
	file := func(path, tag string) sdkdrift.FileChange {
		lines := make([]sdkdrift.LineChange, n)
		for i := range lines {
			lines[i] = sdkdrift.LineChange{Kind: sdkdrift.LineContext, Content: fmt.Sprintf("line %d", i)}
		}
		lines[0].Content = tag + "_FIRST"
		lines[n-1].Content = tag + "_LAST"
		return sdkdrift.FileChange{
			Path:  path,
			Kind:  sdkdrift.ChangeModified,
			Hunks: []sdkdrift.Hunk{{OldStart: 1, OldLines: n, NewStart: 1, NewLines: n, Lines: lines}},
		}
	}
	return &sdkdrift.AnalysisReport{
		Files: []sdkdrift.FileChange{file("apis/AApi.ts", "ALPHA"), file("apis/BApi.ts", "BETA")},
		Risk:  sdkdrift.RiskAssessment{Level: sdkdrift.RiskLow},
	}
}

func keyRunes(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func quit(t *testing.T, tm *teatest.TestModel) {
	t.Helper()
	tm.Send(keyRunes('q'))
	tm.WaitFinished(t, teatest.WithFinalTimeout(time.Second))
}

func TestModel_Init(t *testing.T) {
	t.Parallel()

	m := bubbletea.NewModel(sampleReport())
	assert.Nil(t, m.Init(), "Init should return nil command")
}

func TestModel_ViewBeforeReady(t *testing.T) {
	t.Parallel()

	m := bubbletea.NewModel(sampleReport())
	assert.Contains(t, m.View(), "Loading")
}

func TestModel_StartsOnSummaryPane(t *testing.T) {
	t.Parallel()

	m := bubbletea.NewModel(sampleReport())
	assert.Equal(t, bubbletea.PaneSummary, m.Pane())

	m = bubbletea.NewModel(sampleReport(), bubbletea.WithPane(bubbletea.PaneDiff))
	assert.Equal(t, bubbletea.PaneDiff, m.Pane())
}

func TestModel_TabTogglesPane(t *testing.T) {
	t.Parallel()

	var m tea.Model = bubbletea.NewModel(sampleReport())
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, bubbletea.PaneDiff, m.(bubbletea.Model).Pane())
	assert.Contains(t, m.View(), "@@ -1,2 +1,3 @@")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, bubbletea.PaneSummary, m.(bubbletea.Model).Pane())
	assert.NotContains(t, m.View(), "@@ -1,2 +1,3 @@")
}

func TestModel_RendersSummary(t *testing.T) {
	t.Parallel()

	var m tea.Model = bubbletea.NewModel(sampleReport())
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	view := m.View()

	assert.Contains(t, view, "MEDIUM")
	assert.Contains(t, view, "score 3")
	assert.Contains(t, view, "New endpoints (1)")
	assert.Contains(t, view, "listUsers: User[]")
	assert.Contains(t, view, "Modified endpoints (1)")
	assert.NotContains(t, view, "Removed endpoints")
	assert.Contains(t, view, "Affected wrappers (1)")
	assert.Contains(t, view, "src/wrappers/users.ts")
	assert.Contains(t, view, "../generated/apis/UsersApi {UsersApi}")
	assert.Contains(t, view, "[imports] legacy.ts: wrapper file too large, skipped")
}

func TestModel_RendersSummaryWithoutAffectedWrappers(t *testing.T) {
	t.Parallel()

	r := sampleReport()
	r.AffectedWrappers = []sdkdrift.AffectedWrapper{}
	r.Annotations = nil

	var m tea.Model = bubbletea.NewModel(r)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	view := m.View()

	assert.Contains(t, view, "Affected wrappers (0)")
	assert.Contains(t, view, "none")
	assert.NotContains(t, view, "Annotations")
}

func TestModel_DiffPaneRendersFileHunkAndGutter(t *testing.T) {
	t.Parallel()

	var m tea.Model = bubbletea.NewModel(sampleReport(), bubbletea.WithPane(bubbletea.PaneDiff))
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	view := m.View()

	assert.Contains(t, view, "── src/generated/apis/UsersApi.ts ")
	assert.Contains(t, view, " +2 -1 ──")
	assert.Contains(t, view, "@@ -1,2 +1,3 @@")
	assert.Contains(t, view, "-  async getUser(): Promise<User> {}")
	assert.Contains(t, view, "+  async listUsers(): Promise<User[]> {}")
	// Deleted line 2 has no new number; added lines are new 2 and 3.
	assert.Contains(t, view, "   2      ")
	assert.Contains(t, view, "        3 ")
}

func TestModel_DiffPaneWithNoChanges(t *testing.T) {
	t.Parallel()

	var m tea.Model = bubbletea.NewModel(&sdkdrift.AnalysisReport{}, bubbletea.WithPane(bubbletea.PaneDiff))
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	assert.Contains(t, m.View(), "No changes")
}

func TestModel_DiffPaneRendersRenamesAndBinaries(t *testing.T) {
	t.Parallel()

	r := &sdkdrift.AnalysisReport{
		Files: []sdkdrift.FileChange{
			{Path: "apis/New.ts", OldPath: "apis/Old.ts", Kind: sdkdrift.ChangeRenamed},
			{Path: "assets/logo.png", Kind: sdkdrift.ChangeAdded, Binary: true},
		},
	}
	var m tea.Model = bubbletea.NewModel(r, bubbletea.WithPane(bubbletea.PaneDiff))
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 24})
	view := m.View()

	assert.Contains(t, view, "apis/Old.ts → apis/New.ts")
	assert.Contains(t, view, "(empty)")
	assert.Contains(t, view, "(binary)")
}

func TestModel_ExpandsTabsInDiff(t *testing.T) {
	t.Parallel()

	r := &sdkdrift.AnalysisReport{
		Files: []sdkdrift.FileChange{{
			Path: "apis/TabApi.ts",
			Kind: sdkdrift.ChangeModified,
			Hunks: []sdkdrift.Hunk{{
				OldStart: 1, OldLines: 1, NewStart: 1, NewLines: 1,
				Lines: []sdkdrift.LineChange{{Kind: sdkdrift.LineContext, Content: "\tindented"}},
			}},
		}},
	}
	var m tea.Model = bubbletea.NewModel(r, bubbletea.WithPane(bubbletea.PaneDiff))
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	assert.NotContains(t, m.View(), "\t")
	assert.Contains(t, m.View(), "indented")
}

func TestModel_StatusBar(t *testing.T) {
	t.Parallel()

	var m tea.Model = bubbletea.NewModel(sampleReport())
	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	view := m.View()

	assert.Contains(t, view, "summary")
	assert.Contains(t, view, "Top")
	assert.Contains(t, view, "tab:pane")
	assert.Contains(t, view, "q:quit")
}

func TestModel_ViewAfterReady(t *testing.T) {
	t.Parallel()

	m := bubbletea.NewModel(sampleReport())
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 24))

	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("listUsers"))
	})

	quit(t, tm)
}

func TestModel_QuitOnCtrlC(t *testing.T) {
	t.Parallel()

	m := bubbletea.NewModel(sampleReport())
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 24))

	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
	tm.WaitFinished(t, teatest.WithFinalTimeout(time.Second))
}

func TestModel_WindowResize(t *testing.T) {
	t.Parallel()

	m := bubbletea.NewModel(sampleReport(), bubbletea.WithPane(bubbletea.PaneDiff))
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 24))

	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("listUsers"))
	})

	tm.Send(tea.WindowSizeMsg{Width: 120, Height: 40})

	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("listUsers"))
	})

	quit(t, tm)
}

func TestModel_GotoBottomAndTop(t *testing.T) {
	t.Parallel()

	m := bubbletea.NewModel(longReport(60), bubbletea.WithPane(bubbletea.PaneDiff))
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 10))

	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("ALPHA_FIRST"))
	})

	tm.Send(keyRunes('G'))
	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("BETA_LAST"))
	})

	tm.Send(keyRunes('g'))
	tm.Send(keyRunes('g'))
	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("ALPHA_FIRST"))
	})

	quit(t, tm)
}

func TestModel_PendingGClearedOnOtherKey(t *testing.T) {
	t.Parallel()

	m := bubbletea.NewModel(sampleReport())
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 24))

	// g followed by q must quit rather than wait for a second g.
	tm.Send(keyRunes('g'))
	tm.Send(keyRunes('q'))
	tm.WaitFinished(t, teatest.WithFinalTimeout(time.Second))
}

func TestModel_FileNavigation(t *testing.T) {
	t.Parallel()

	m := bubbletea.NewModel(longReport(60), bubbletea.WithPane(bubbletea.PaneDiff))
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 10))

	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("ALPHA_FIRST"))
	})

	tm.Send(keyRunes('n'))
	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("BETA_FIRST"))
	})

	tm.Send(keyRunes('N'))
	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("ALPHA_FIRST"))
	})

	quit(t, tm)
}

func TestModel_FileNavigationIgnoredOnSummary(t *testing.T) {
	t.Parallel()

	var m tea.Model = bubbletea.NewModel(longReport(60))
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 10})
	before := m.View()

	m, _ = m.Update(keyRunes('n'))
	assert.Equal(t, before, m.View())
}

func TestModel_CopyReport(t *testing.T) {
	t.Parallel()

	copied := make(chan string, 1)
	cb := &mock.Clipboard{
		CopyFn: func(content string) error {
			copied <- content
			return nil
		},
	}

	r := sampleReport()
	m := bubbletea.NewModel(r, bubbletea.WithClipboard(cb))
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(120, 24))

	tm.Send(keyRunes('y'))
	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("copied report json"))
	})

	var got sdkdrift.AnalysisReport
	require.NoError(t, json.Unmarshal([]byte(<-copied), &got))
	assert.Equal(t, r.ID, got.ID)
	assert.Equal(t, r.Risk.Level, got.Risk.Level)

	quit(t, tm)
}

func TestModel_CopyReportFailure(t *testing.T) {
	t.Parallel()

	cb := &mock.Clipboard{
		CopyFn: func(string) error { return errors.New("xclip exited 1") },
	}
	m := bubbletea.NewModel(sampleReport(), bubbletea.WithClipboard(cb))
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(120, 24))

	tm.Send(keyRunes('y'))
	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("copy failed: xclip exited 1"))
	})

	quit(t, tm)
}

func TestModel_CopyWithoutClipboard(t *testing.T) {
	t.Parallel()

	m := bubbletea.NewModel(sampleReport())
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(120, 24))

	tm.Send(keyRunes('y'))
	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("no clipboard available"))
	})

	quit(t, tm)
}

func TestModel_AppliesColors(t *testing.T) {
	t.Parallel()

	m := bubbletea.NewModel(sampleReport(),
		bubbletea.WithRenderer(trueColorRenderer()),
		bubbletea.WithPane(bubbletea.PaneDiff),
	)
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 24))

	// True color foreground codes use the 38;2;R;G;B format.
	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("38;2;")) && bytes.Contains(out, []byte("listUsers"))
	})

	quit(t, tm)
}

func TestModel_RiskBadgeUsesThemeColor(t *testing.T) {
	t.Parallel()

	theme := staticTheme{styles: sdkdrift.Styles{
		RiskMedium: sdkdrift.ColorPair{Background: "#123456"},
	}}
	var m tea.Model = bubbletea.NewModel(sampleReport(),
		bubbletea.WithRenderer(trueColorRenderer()),
		bubbletea.WithTheme(theme),
	)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	// #123456 as a true color background.
	assert.Contains(t, m.View(), "48;2;18;52;86")
}

func TestModel_HighlightsChangedWords(t *testing.T) {
	t.Parallel()

	var calls [][2]string
	words := &mock.WordDiffer{
		DiffFn: func(old, new string) ([]sdkdrift.Segment, []sdkdrift.Segment) {
			calls = append(calls, [2]string{old, new})
			return []sdkdrift.Segment{{Text: "  async getUser(): Promise<"}, {Text: "User", Changed: true}, {Text: "> {}"}},
				[]sdkdrift.Segment{{Text: "  async getUser(): Promise<"}, {Text: "UserV2", Changed: true}, {Text: "> {}"}}
		},
	}
	theme := staticTheme{styles: sdkdrift.Styles{
		AddedHighlight: sdkdrift.ColorPair{Background: "#123456"},
	}}
	var m tea.Model = bubbletea.NewModel(sampleReport(),
		bubbletea.WithRenderer(trueColorRenderer()),
		bubbletea.WithTheme(theme),
		bubbletea.WithWordDiffer(words),
		bubbletea.WithPane(bubbletea.PaneDiff),
	)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 24})
	view := m.View()

	// Only the first deletion/addition pair is diffed; listUsers has no partner.
	require.Len(t, calls, 1)
	assert.Equal(t, [2]string{"  async getUser(): Promise<User> {}", "  async getUser(): Promise<UserV2> {}"}, calls[0])
	assert.Contains(t, view, "48;2;18;52;86")
	assert.Contains(t, view, "UserV2")
}

func TestModel_SkipsHighlightForMostlyChangedLines(t *testing.T) {
	t.Parallel()

	words := &mock.WordDiffer{
		DiffFn: func(old, new string) ([]sdkdrift.Segment, []sdkdrift.Segment) {
			return []sdkdrift.Segment{{Text: old, Changed: true}}, []sdkdrift.Segment{{Text: new, Changed: true}}
		},
	}
	theme := staticTheme{styles: sdkdrift.Styles{
		AddedHighlight:   sdkdrift.ColorPair{Background: "#123456"},
		DeletedHighlight: sdkdrift.ColorPair{Background: "#123456"},
	}}
	var m tea.Model = bubbletea.NewModel(sampleReport(),
		bubbletea.WithRenderer(trueColorRenderer()),
		bubbletea.WithTheme(theme),
		bubbletea.WithWordDiffer(words),
		bubbletea.WithPane(bubbletea.PaneDiff),
	)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 24})

	assert.NotContains(t, m.View(), "48;2;18;52;86")
	assert.Contains(t, m.View(), "Promise<UserV2>")
}

type staticTheme struct {
	styles sdkdrift.Styles
}

func (s staticTheme) Styles() sdkdrift.Styles { return s.styles }

func TestViewer_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var in, out bytes.Buffer
	viewer := bubbletea.NewViewer(
		bubbletea.WithProgramOptions(
			tea.WithInput(&in),
			tea.WithOutput(&out),
		),
	)

	done := make(chan error, 1)
	go func() {
		done <- viewer.View(ctx, sampleReport())
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("viewer did not exit after context cancellation")
	}
}

func TestViewer_ContextAlreadyCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var in, out bytes.Buffer
	viewer := bubbletea.NewViewer(
		bubbletea.WithProgramOptions(
			tea.WithInput(&in),
			tea.WithOutput(&out),
		),
	)

	err := viewer.View(ctx, sampleReport())
	require.ErrorIs(t, err, context.Canceled)
}
