package main

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/classroom-sim/internal/config"
	"github.com/jwebster45206/classroom-sim/internal/storage"
	"github.com/jwebster45206/classroom-sim/pkg/export"
	"github.com/jwebster45206/classroom-sim/pkg/scenario"
	"github.com/jwebster45206/classroom-sim/pkg/sim"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		ScenarioDir:       t.TempDir(),
		ExportDir:         t.TempDir(),
		StrengthThreshold: 5,
	}
}

func newTestUI(t *testing.T, cfg *config.Config, saver storage.Saver) ConsoleUI {
	t.Helper()
	m := NewConsoleUI(cfg, saver, export.FormatJSON, slog.New(slog.DiscardHandler))
	m.clock = fixedClock()
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return update(t, m, m.Init()())
}

func update(t *testing.T, m ConsoleUI, msg tea.Msg) ConsoleUI {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(ConsoleUI)
	require.True(t, ok)
	return out
}

func updateCmd(t *testing.T, m ConsoleUI, msg tea.Msg) (ConsoleUI, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(ConsoleUI), cmd
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// startWith loads s straight into a run.
func startWith(t *testing.T, m ConsoleUI, s *scenario.Scenario) ConsoleUI {
	t.Helper()
	m = update(t, m, scenarioLoadedMsg{scenario: s})
	require.Equal(t, screenPlay, m.screen)
	return m
}

func TestPicker_ListsPresetsFilesAndUpload(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.ScenarioDir, "mine.json"), []byte(`{}`), 0644))

	m := newTestUI(t, cfg, nil)
	require.False(t, m.loadingScenarios)
	require.Len(t, m.items, len(scenario.Presets)+2)
	assert.Equal(t, scenario.Presets[0].Key, m.items[0].preset)
	assert.Equal(t, filepath.Join(cfg.ScenarioDir, "mine.json"), m.items[len(scenario.Presets)].path)
	assert.True(t, m.items[len(m.items)-1].upload)
	assert.Contains(t, m.View(), "교사 역량 시뮬레이션")
}

func TestPicker_LoadsPreset(t *testing.T) {
	m := newTestUI(t, testConfig(t), nil)

	m, cmd := updateCmd(t, m, key("enter"))
	require.NotNil(t, cmd)
	assert.True(t, m.loading)

	m = update(t, m, cmd())
	assert.Equal(t, screenPlay, m.screen)
	require.NotNil(t, m.sess)
	assert.Equal(t, "science_lab_safety", m.sess.scenario.ID)
}

func TestPicker_ParseErrorStaysOnPicker(t *testing.T) {
	cfg := testConfig(t)
	path := filepath.Join(cfg.ScenarioDir, "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"id": `), 0644))

	m := newTestUI(t, cfg, nil)
	m.selected = len(m.items) - 1

	m, cmd := updateCmd(t, m, key("enter"))
	assert.True(t, m.entering)
	_ = cmd

	for _, r := range path {
		m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	m, cmd = updateCmd(t, m, key("enter"))
	require.NotNil(t, cmd)
	assert.False(t, m.entering)

	m = update(t, m, cmd())
	assert.Equal(t, screenPicker, m.screen)
	var perr *scenario.ParseError
	assert.ErrorAs(t, m.pickerErr, &perr)
	assert.Contains(t, m.View(), "오류")
}

func TestPlay_ChooseAcknowledgeAndFinish(t *testing.T) {
	st := storage.NewMockStorage()
	m := newTestUI(t, testConfig(t), st)
	m = startWith(t, m, testScenario())

	// Typing is disabled, so options are shown at once.
	assert.True(t, m.typing.Done())
	assert.Equal(t, sim.ModePrompt, m.sess.ctrl.Mode())

	m = update(t, m, key("1"))
	assert.Equal(t, sim.ModeResponse, m.sess.ctrl.Mode())
	assert.Equal(t, "학생들이 집중합니다.", m.typing.Visible())

	m = update(t, m, key("enter"))
	assert.Equal(t, "n2", m.sess.ctrl.Node().ID)

	m = update(t, m, key("enter"))
	m, cmd := updateCmd(t, m, key("enter"))
	assert.Equal(t, screenResult, m.screen)
	require.NotNil(t, cmd)

	m = update(t, m, cmd())
	assert.Equal(t, 1, st.Count())
	assert.Contains(t, m.View(), "훌륭한 수업이었습니다.")
}

func TestPlay_DirectEnding(t *testing.T) {
	m := newTestUI(t, testConfig(t), storage.NewMockStorage())
	m = startWith(t, m, testScenario())

	m = update(t, m, key("down"))
	assert.Equal(t, 1, m.cursor)
	m, cmd := updateCmd(t, m, key("enter"))
	assert.Equal(t, screenResult, m.screen)
	assert.NotNil(t, cmd)
	assert.Equal(t, "end_risky", m.sess.report.EndingID)
	assert.False(t, m.sess.report.KnownEnding)
}

func TestPlay_BackFromResultDoesNotSaveTwice(t *testing.T) {
	st := storage.NewMockStorage()
	m := newTestUI(t, testConfig(t), st)
	m = startWith(t, m, testScenario())

	m, cmd := updateCmd(t, m, key("2"))
	require.NotNil(t, cmd)
	m = update(t, m, cmd())

	m = update(t, m, key("b"))
	assert.Equal(t, screenPlay, m.screen)
	assert.Equal(t, sim.ModePrompt, m.sess.ctrl.Mode())

	m, cmd = updateCmd(t, m, key("2"))
	assert.Equal(t, screenResult, m.screen)
	assert.Nil(t, cmd)
	assert.Equal(t, 1, st.Count())
}

func TestResult_ShowsEndingReachedAfterBack(t *testing.T) {
	st := storage.NewMockStorage()
	m := newTestUI(t, testConfig(t), st)
	m = startWith(t, m, testScenario())

	m, cmd := updateCmd(t, m, key("2"))
	require.NotNil(t, cmd)
	m = update(t, m, cmd())
	assert.Contains(t, m.View(), "전반적으로 우수한")

	m = update(t, m, key("b"))
	m = update(t, m, key("1"))
	m = update(t, m, key("enter"))
	m = update(t, m, key("1"))
	m, cmd = updateCmd(t, m, key("enter"))
	require.Equal(t, screenResult, m.screen)
	assert.Nil(t, cmd)

	view := m.View()
	assert.Contains(t, view, "훌륭한 수업이었습니다.")
	assert.NotContains(t, view, "전반적으로 우수한")
	assert.Equal(t, 1, st.Count())
}

func TestPlay_TypingRevealAndSkip(t *testing.T) {
	cfg := testConfig(t)
	cfg.TypingInterval = 1
	m := newTestUI(t, cfg, nil)
	m = startWith(t, m, testScenario())

	assert.False(t, m.typing.Done())
	gen := m.typing.gen

	m = update(t, m, typingTickMsg{gen: gen})
	assert.Equal(t, "학생", m.typing.Visible())

	// A stale tick changes nothing.
	m = update(t, m, typingTickMsg{gen: gen - 1})
	assert.Equal(t, "학생", m.typing.Visible())

	// Any key skips the reveal without choosing.
	m = update(t, m, key("1"))
	assert.True(t, m.typing.Done())
	assert.Equal(t, sim.ModePrompt, m.sess.ctrl.Mode())
	assert.Equal(t, 0, m.sess.rec.Len())
}

func TestPlay_InvalidChoiceShowsStatus(t *testing.T) {
	m := newTestUI(t, testConfig(t), nil)
	m = startWith(t, m, testScenario())

	m = update(t, m, key("9"))
	assert.True(t, m.statusErr)
	assert.Equal(t, screenPlay, m.screen)
	assert.Equal(t, 0, m.sess.rec.Len())
}

func TestPlay_DanglingGotoShowsAbortScreen(t *testing.T) {
	m := newTestUI(t, testConfig(t), nil)
	m = startWith(t, m, testScenario())

	m = update(t, m, key("1"))
	m = update(t, m, key("enter"))
	m = update(t, m, key("2"))
	m = update(t, m, key("enter"))

	assert.Equal(t, screenAbort, m.screen)
	assert.ErrorIs(t, m.abortErr, sim.ErrIntegrity)
	assert.Contains(t, m.View(), "n404")

	m = update(t, m, key("h"))
	assert.Equal(t, screenPicker, m.screen)
	assert.Nil(t, m.sess)
}

func TestPlay_EmptyScenarioAborts(t *testing.T) {
	m := newTestUI(t, testConfig(t), nil)
	m = update(t, m, scenarioLoadedMsg{scenario: &scenario.Scenario{ID: "empty"}})
	assert.Equal(t, screenAbort, m.screen)
}

func TestPlay_HomeDiscardsRun(t *testing.T) {
	st := storage.NewMockStorage()
	m := newTestUI(t, testConfig(t), st)
	m = startWith(t, m, testScenario())

	m = update(t, m, key("1"))
	m = update(t, m, key("h"))
	assert.Equal(t, screenPicker, m.screen)
	assert.Nil(t, m.sess)
	assert.Equal(t, 0, st.Count())
}

func TestPlay_SaveScenarioExport(t *testing.T) {
	cfg := testConfig(t)
	m := newTestUI(t, cfg, nil)
	m = startWith(t, m, testScenario())

	m = update(t, m, key("s"))
	assert.False(t, m.statusErr)
	assert.FileExists(t, filepath.Join(cfg.ExportDir, "science_test.json"))
}

func TestResult_ExportAndCopy(t *testing.T) {
	cfg := testConfig(t)
	m := newTestUI(t, cfg, nil)
	m = startWith(t, m, testScenario())
	m = update(t, m, key("2"))
	require.Equal(t, screenResult, m.screen)

	m = update(t, m, key("e"))
	assert.False(t, m.statusErr)
	entries, err := os.ReadDir(cfg.ExportDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "result_"))

	var copied string
	writeClipboard = func(s string) error { copied = s; return nil }
	t.Cleanup(func() { writeClipboard = defaultClipboard })

	m = update(t, m, key("c"))
	assert.False(t, m.statusErr)
	assert.Contains(t, copied, `"endId": "end_risky"`)

	writeClipboard = func(string) error { return errors.New("no clipboard") }
	m = update(t, m, key("c"))
	assert.True(t, m.statusErr)

	m = update(t, m, key("r"))
	assert.Equal(t, screenPicker, m.screen)
}

func TestResult_SaveFailureShown(t *testing.T) {
	st := storage.NewMockStorage()
	st.SetSaveError(errors.New("offline"))
	m := newTestUI(t, testConfig(t), st)
	m = startWith(t, m, testScenario())

	m, cmd := updateCmd(t, m, key("2"))
	require.NotNil(t, cmd)
	m = update(t, m, cmd())
	assert.True(t, m.statusErr)
	assert.Contains(t, m.status, "offline")
}

func TestQuitModal(t *testing.T) {
	m := newTestUI(t, testConfig(t), nil)

	m = update(t, m, key("q"))
	assert.True(t, m.showQuitModal)
	assert.Contains(t, m.View(), "종료할까요?")

	m = update(t, m, key("n"))
	assert.False(t, m.showQuitModal)

	m = update(t, m, key("ctrl+c"))
	_, cmd := updateCmd(t, m, key("y"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestOptionNumber(t *testing.T) {
	tests := []struct {
		key  string
		want int
		ok   bool
	}{
		{key: "1", want: 1, ok: true},
		{key: "３", want: 3, ok: true},
		{key: "b", ok: false},
		{key: "", ok: false},
	}
	for _, tt := range tests {
		n, ok := optionNumber(tt.key)
		assert.Equal(t, tt.ok, ok, tt.key)
		assert.Equal(t, tt.want, n, tt.key)
	}
}

func TestPlay_FullWidthDigitChooses(t *testing.T) {
	m := newTestUI(t, testConfig(t), nil)
	m = startWith(t, m, testScenario())

	m = update(t, m, key("１"))
	assert.Equal(t, sim.ModeResponse, m.sess.ctrl.Mode())
	assert.Equal(t, 1, m.sess.rec.Len())
}
