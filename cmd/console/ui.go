package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/width"

	"github.com/jwebster45206/classroom-sim/internal/config"
	"github.com/jwebster45206/classroom-sim/internal/logger"
	"github.com/jwebster45206/classroom-sim/internal/storage"
	"github.com/jwebster45206/classroom-sim/pkg/export"
	"github.com/jwebster45206/classroom-sim/pkg/runlog"
	"github.com/jwebster45206/classroom-sim/pkg/scenario"
	"github.com/jwebster45206/classroom-sim/pkg/score"
	"github.com/jwebster45206/classroom-sim/pkg/sim"
)

const PlaceHolderText = "시나리오 파일 경로 (예: ./my_scenario.json)"

var (
	defaultClipboard = clipboard.WriteAll
	writeClipboard   = defaultClipboard
)

type screen int

const (
	screenPicker screen = iota
	screenPlay
	screenResult
	screenAbort
)

type pickerItem struct {
	label  string
	preset string // Bundled preset key
	path   string // Scenario file on disk
	upload bool   // Opens the path entry
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	cfg    *config.Config
	saver  storage.Saver
	format export.Format
	log    *slog.Logger
	clock  runlog.Clock
	th     score.Thresholds

	screen       screen
	chatViewport viewport.Model
	metaViewport viewport.Model
	input        textinput.Model
	ready        bool
	width        int
	height       int

	// Scenario selection state
	items            []pickerItem
	selected         int
	loadingScenarios bool
	loading          bool
	entering         bool
	pickerErr        error

	// Run state
	sess   *session
	typing typewriter
	cursor int

	abortErr  error
	status    string
	statusErr bool

	// Quit confirmation state
	showQuitModal bool
}

type scenariosListedMsg struct {
	items []pickerItem
	err   error
}

type scenarioLoadedMsg struct {
	scenario *scenario.Scenario
	err      error
}

func NewConsoleUI(cfg *config.Config, saver storage.Saver, format export.Format, log *slog.Logger) ConsoleUI {
	ti := textinput.New()
	ti.Placeholder = PlaceHolderText
	ti.Prompt = promptStyle.Render(":: ")
	ti.CharLimit = 1000

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		cfg:              cfg,
		saver:            saver,
		format:           format,
		log:              log,
		clock:            time.Now,
		th:               score.Thresholds{Strength: cfg.StrengthThreshold},
		screen:           screenPicker,
		chatViewport:     chatVp,
		metaViewport:     metaVp,
		input:            ti,
		loadingScenarios: true,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return listScenarios(m.cfg.ScenarioDir)
}

func listScenarios(dir string) tea.Cmd {
	return func() tea.Msg {
		items := make([]pickerItem, 0, len(scenario.Presets)+1)
		for _, p := range scenario.Presets {
			items = append(items, pickerItem{label: fmt.Sprintf("%s (%s)", p.Key, p.File), preset: p.Key})
		}

		files, err := scenario.ListDir(dir)
		for _, f := range files {
			items = append(items, pickerItem{label: "파일: " + filepath.Base(f), path: f})
		}
		items = append(items, pickerItem{label: "경로를 입력해 불러오기...", upload: true})
		return scenariosListedMsg{items: items, err: err}
	}
}

func loadScenario(item pickerItem) tea.Cmd {
	return func() tea.Msg {
		var (
			s   *scenario.Scenario
			err error
		)
		if item.preset != "" {
			s, err = scenario.LoadPreset(item.preset)
		} else {
			s, err = scenario.Load(item.path)
		}
		return scenarioLoadedMsg{scenario: s, err: err}
	}
}

func (m *ConsoleUI) resize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height

	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	m.chatViewport.Width = chatWidth - 2
	m.chatViewport.Height = m.height - 7
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.ready = true

	// Window was resized - reformat content for the new width
	switch m.screen {
	case screenPlay:
		m.writePlay()
	case screenResult:
		m.writeResult()
	}
}

func (m ConsoleUI) contentWidth() int {
	return max(m.chatViewport.Width-6, 20)
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		m.resize(ws)
		return m, nil
	}

	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	if saved, ok := msg.(summarySavedMsg); ok {
		if saved.err != nil {
			logger.WithError(m.log, saved.err).Error("Failed to save summary", "run_id", saved.runID)
			m.setStatus("기록 저장 실패: "+saved.err.Error(), true)
		} else {
			m.log.Info("Summary saved", "run_id", saved.runID)
		}
		m.refresh()
		return m, nil
	}

	switch m.screen {
	case screenPlay:
		return m.updatePlay(msg)
	case screenResult:
		return m.updateResult(msg)
	case screenAbort:
		return m.updateAbort(msg)
	}
	return m.updatePicker(msg)
}

func (m ConsoleUI) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case scenariosListedMsg:
		m.loadingScenarios = false
		m.items = msg.items
		m.pickerErr = msg.err

	case scenarioLoadedMsg:
		m.loading = false
		if msg.err != nil {
			logger.WithError(m.log, msg.err).Warn("Failed to load scenario")
			m.pickerErr = msg.err
			return m, nil
		}
		return m.startRun(msg.scenario)

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.showQuitModal = true
			return m, nil
		}
		if m.loadingScenarios || m.loading {
			return m, nil
		}

		if m.entering {
			switch msg.Type {
			case tea.KeyEsc:
				m.entering = false
				m.input.Blur()
				m.input.Reset()
				return m, nil
			case tea.KeyEnter:
				path := strings.TrimSpace(m.input.Value())
				if path == "" {
					return m, nil
				}
				m.entering = false
				m.input.Blur()
				m.input.Reset()
				m.loading = true
				return m, loadScenario(pickerItem{path: path})
			}
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}

		switch msg.Type {
		case tea.KeyEsc:
			m.showQuitModal = true
		case tea.KeyUp:
			if m.selected > 0 {
				m.selected--
			}
		case tea.KeyDown:
			if m.selected < len(m.items)-1 {
				m.selected++
			}
		case tea.KeyEnter:
			if len(m.items) == 0 {
				return m, nil
			}
			m.pickerErr = nil
			item := m.items[m.selected]
			if item.upload {
				m.entering = true
				cmd := m.input.Focus()
				return m, cmd
			}
			m.loading = true
			return m, loadScenario(item)
		default:
			if msg.String() == "q" {
				m.showQuitModal = true
			}
		}
	}
	return m, nil
}

func (m ConsoleUI) startRun(s *scenario.Scenario) (tea.Model, tea.Cmd) {
	sess, err := newSession(s, m.th, m.clock, m.log)
	if err != nil {
		m.abortErr = err
		m.screen = screenAbort
		return m, nil
	}
	m.sess = sess
	m.screen = screenPlay
	m.cursor = 0
	m.setStatus("", false)
	cmd := m.beginDialogue()
	return m, cmd
}

// beginDialogue restarts the typing reveal for the controller's dialogue.
func (m *ConsoleUI) beginDialogue() tea.Cmd {
	gen := m.typing.Reset(m.sess.ctrl.Dialogue())
	if m.cfg.TypingInterval <= 0 {
		m.typing.Skip()
	}
	m.writePlay()
	m.chatViewport.GotoTop()
	if m.typing.Done() {
		return nil
	}
	return typingTick(m.cfg.TypingInterval, gen)
}

func (m ConsoleUI) updatePlay(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case typingTickMsg:
		if !m.typing.Current(msg) || m.typing.Done() {
			return m, nil
		}
		more := m.typing.Step(runesPerTick)
		m.writePlay()
		if more {
			return m, typingTick(m.cfg.TypingInterval, msg.gen)
		}
		return m, nil

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.chatViewport, cmd = m.chatViewport.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.showQuitModal = true
			return m, nil
		}
		if !m.typing.Done() {
			m.typing.Skip()
			m.writePlay()
			return m, nil
		}

		ctrl := m.sess.ctrl
		key := msg.String()
		switch key {
		case "q", "esc":
			m.showQuitModal = true
			return m, nil
		case "b":
			return m.back()
		case "h":
			return m.goHome()
		case "s":
			m.exportScenario()
			m.writePlay()
			return m, nil
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
			m.writePlay()
			return m, nil
		case "down", "j":
			if m.cursor < len(ctrl.Node().Options)-1 {
				m.cursor++
			}
			m.writePlay()
			return m, nil
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.chatViewport, cmd = m.chatViewport.Update(msg)
			return m, cmd
		case "enter", " ":
			if ctrl.Mode() == sim.ModePrompt {
				return m.afterTransition(ctrl.Choose(m.cursor))
			}
			return m.afterTransition(ctrl.Acknowledge())
		}

		if n, ok := optionNumber(key); ok && ctrl.Mode() == sim.ModePrompt {
			return m.afterTransition(ctrl.Choose(n - 1))
		}
	}
	return m, nil
}

// optionNumber reads a numeric shortcut. Full-width digits from a Korean IME
// are folded to ASCII first.
func optionNumber(key string) (int, bool) {
	n, err := strconv.Atoi(width.Narrow.String(key))
	if err != nil {
		return 0, false
	}
	return n, true
}

func (m ConsoleUI) back() (tea.Model, tea.Cmd) {
	if m.sess.ctrl.Depth() == 0 {
		m.setStatus("처음 장면입니다.", false)
		m.refresh()
		return m, nil
	}
	return m.afterTransition(m.sess.ctrl.Back())
}

// afterTransition moves to the screen matching the controller's new state.
func (m ConsoleUI) afterTransition(err error) (tea.Model, tea.Cmd) {
	if ctrlErr := m.sess.ctrl.Err(); ctrlErr != nil {
		m.abortErr = ctrlErr
		m.screen = screenAbort
		m.typing.Reset("")
		return m, nil
	}
	if err != nil {
		m.log.Debug("Transition rejected", "error", err)
		m.setStatus(err.Error(), true)
		m.refresh()
		return m, nil
	}

	m.cursor = 0
	m.setStatus("", false)
	if m.sess.ctrl.Mode() == sim.ModeTerminal {
		m.screen = screenResult
		m.typing.Reset("")
		m.writeResult()
		m.chatViewport.GotoTop()
		cmd := saveSummary(m.saver, m.sess.takeSave())
		return m, cmd
	}
	m.screen = screenPlay
	cmd := m.beginDialogue()
	return m, cmd
}

func (m ConsoleUI) updateResult(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.MouseMsg:
		var cmd tea.Cmd
		m.chatViewport, cmd = m.chatViewport.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.showQuitModal = true
			return m, nil
		case "b":
			return m.back()
		case "r", "h":
			return m.goHome()
		case "e":
			m.exportSummary()
		case "c":
			m.copySummary()
		case "s":
			m.exportScenario()
		default:
			var cmd tea.Cmd
			m.chatViewport, cmd = m.chatViewport.Update(msg)
			return m, cmd
		}
		m.writeResult()
	}
	return m, nil
}

func (m ConsoleUI) updateAbort(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "q", "esc":
			m.showQuitModal = true
		case "h", "r", "enter":
			return m.goHome()
		}
	}
	return m, nil
}

// goHome discards the current run and returns to the picker.
func (m ConsoleUI) goHome() (tea.Model, tea.Cmd) {
	if m.sess != nil && m.sess.summary == nil {
		m.sess.log.Info("Run abandoned", "selections", m.sess.rec.Len())
	}
	m.sess = nil
	m.abortErr = nil
	m.cursor = 0
	m.typing.Reset("")
	m.screen = screenPicker
	m.setStatus("", false)
	return m, nil
}

func (m *ConsoleUI) exportScenario() {
	path, err := export.WriteScenario(m.cfg.ExportDir, m.sess.scenario, m.format)
	if err != nil {
		logger.WithError(m.log, err).Error("Failed to export scenario")
		m.setStatus("시나리오 저장 실패: "+err.Error(), true)
		return
	}
	m.setStatus("시나리오 저장됨: "+path, false)
}

func (m *ConsoleUI) exportSummary() {
	if m.sess.summary == nil {
		m.setStatus("내보낼 기록이 없습니다.", true)
		return
	}
	path, err := export.WriteSummary(m.cfg.ExportDir, m.sess.summary, m.format, m.clock())
	if err != nil {
		logger.WithError(m.log, err).Error("Failed to export summary")
		m.setStatus("기록 내보내기 실패: "+err.Error(), true)
		return
	}
	m.setStatus("기록 내보냄: "+path, false)
}

func (m *ConsoleUI) copySummary() {
	if m.sess.summary == nil {
		m.setStatus("복사할 기록이 없습니다.", true)
		return
	}
	data, err := export.Encode(m.sess.summary, export.FormatJSON)
	if err == nil {
		err = writeClipboard(string(data))
	}
	if err != nil {
		logger.WithError(m.log, err).Warn("Failed to copy summary")
		m.setStatus("복사 실패: "+err.Error(), true)
		return
	}
	m.setStatus("기록을 클립보드에 복사했습니다.", false)
}

func (m *ConsoleUI) setStatus(msg string, isErr bool) {
	m.status = msg
	m.statusErr = isErr
}

func (m *ConsoleUI) refresh() {
	switch m.screen {
	case screenPlay:
		m.writePlay()
	case screenResult:
		m.writeResult()
	}
}

func (m *ConsoleUI) writePlay() {
	if m.sess == nil {
		return
	}
	v := m.sess.ctrl.View()
	content := writePlayContent(v, m.sess.theme, m.typing.Visible(), m.typing.Done(), m.cursor, m.contentWidth())
	if s := renderStatus(m.status, m.statusErr); s != "" {
		content += "\n\n" + s
	}
	m.chatViewport.SetContent(content)
	m.metaViewport.SetContent(writeMetadata(v, m.sess.scenario.DeclaredCompetencies(), m.sess.rec.Len()))
}

func (m *ConsoleUI) writeResult() {
	if m.sess == nil {
		return
	}
	content := writeResultContent(m.sess.currentReport(), m.sess.ctrl.Dialogue(), m.th.Strength, m.contentWidth())
	if s := renderStatus(m.status, m.statusErr); s != "" {
		content += "\n\n" + s
	}
	m.chatViewport.SetContent(content)
	m.metaViewport.SetContent(writeMetadata(m.sess.ctrl.View(), m.sess.scenario.DeclaredCompetencies(), m.sess.rec.Len()))
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEnter:
			return m, tea.Quit
		case tea.KeyEsc:
			m.showQuitModal = false
			return m, nil
		}
		switch key.String() {
		case "y", "Y":
			return m, tea.Quit
		case "n", "N":
			m.showQuitModal = false
		}
	}
	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("종료할까요?"))
	content.WriteString("\n\n")
	content.WriteString("진행 중인 시뮬레이션은 저장되지 않습니다.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Y: 종료, N: 계속, Ctrl+C: 강제 종료"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderPicker() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	switch {
	case m.loadingScenarios:
		content.WriteString(modalTitleStyle.Render("시나리오 불러오는 중..."))
	case m.loading:
		content.WriteString(modalTitleStyle.Render("시나리오 준비 중..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("잠시만 기다려 주세요..."))
	default:
		content.WriteString(modalTitleStyle.Render("교사 역량 시뮬레이션"))
		content.WriteString("\n\n")
		content.WriteString("시나리오를 선택하세요.\n\n")

		for i, item := range m.items {
			if i == m.selected {
				content.WriteString(modalSelectedItemStyle.Render(fmt.Sprintf("▶ %s", item.label)))
			} else {
				content.WriteString(modalItemStyle.Render(fmt.Sprintf("  %s", item.label)))
			}
			content.WriteString("\n")
		}

		if m.entering {
			content.WriteString("\n")
			content.WriteString(m.input.View())
			content.WriteString("\n")
		}

		if m.pickerErr != nil {
			content.WriteString("\n")
			content.WriteString(errorStyle.Render(wrapError(m.pickerErr)))
			content.WriteString("\n")
		}

		content.WriteString("\n")
		if m.entering {
			content.WriteString(promptStyle.Render("Enter: 불러오기, Esc: 취소"))
		} else {
			content.WriteString(promptStyle.Render("↑/↓ 이동, Enter 선택, q 종료"))
		}
	}

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func wrapError(err error) string {
	return "오류: " + err.Error()
}

func (m ConsoleUI) renderAbort() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("시나리오 데이터 오류"))
	content.WriteString("\n\n")
	content.WriteString(errorStyle.Render(describeAbort(m.abortErr)))
	content.WriteString("\n\n")
	content.WriteString("시뮬레이션을 계속할 수 없습니다.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("h: 처음으로, q: 종료"))

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	switch m.screen {
	case screenPicker:
		return m.renderPicker()
	case screenAbort:
		return m.renderAbort()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"", // Add empty line for spacing
			separatorStyle.Render(strings.Repeat("─", max(chatWidth-4, 1))),
			promptStyle.Render(m.footer()),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}

func (m ConsoleUI) footer() string {
	if m.screen == screenResult {
		return "e 내보내기 · c 복사 · b 뒤로 · r 처음으로 · q 종료"
	}
	return "b 뒤로 · h 처음으로 · s 시나리오 저장 · q 종료"
}
