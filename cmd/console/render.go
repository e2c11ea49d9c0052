package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/classroom-sim/pkg/navigation"
	"github.com/jwebster45206/classroom-sim/pkg/report"
	"github.com/jwebster45206/classroom-sim/pkg/scenario"
	"github.com/jwebster45206/classroom-sim/pkg/score"
	"github.com/jwebster45206/classroom-sim/pkg/sim"
)

const barWidth = 20

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	primaryOptionStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("255")).
				Bold(true)

	competencyStyle = lipgloss.NewStyle().Width(10)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)
)

func levelStyle(l score.Level) lipgloss.Style {
	switch l {
	case score.LevelStrength:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	case score.LevelAdequate:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
}

// scoreBar draws value on a scale of twice the strength threshold.
// Negative values draw an empty bar.
func scoreBar(value, strength, width int) string {
	scale := strength * 2
	if scale <= 0 {
		scale = 10
	}
	v := min(max(value, 0), scale)
	filled := v * width / scale
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func separator(width int) string {
	return separatorStyle.Render(strings.Repeat("─", max(width, 1))) + "\n\n"
}

// writePlayContent renders the dialogue panel for the current step.
func writePlayContent(v sim.View, theme scenario.Theme, visible string, typingDone bool, cursor, width int) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render(v.Title) + "\n\n")
	content.WriteString(separator(width))

	if v.Mode == sim.ModeResponse && v.Pending != nil {
		content.WriteString(userStyle.Render(wordwrap.String("▷ "+v.Pending.Text, width)) + "\n\n")
	}

	content.WriteString(speakerStyle.Render(theme.Speaker) + "\n")
	content.WriteString(narratorStyle.Render(wordwrap.String(visible, width)) + "\n\n")

	if !typingDone {
		content.WriteString(promptStyle.Render("아무 키나 누르면 건너뜁니다"))
		return content.String()
	}

	switch v.Mode {
	case sim.ModePrompt:
		for _, o := range v.Options {
			label := wordwrap.String(fmt.Sprintf("%d. %s", o.Index+1, o.Text), width-2)
			switch {
			case o.Index == cursor:
				content.WriteString(modalSelectedItemStyle.Render("▶ " + label))
			case o.Primary:
				content.WriteString(primaryOptionStyle.Render("  " + label))
			default:
				content.WriteString(modalItemStyle.Render("  " + label))
			}
			content.WriteString("\n")
		}
	case sim.ModeResponse:
		content.WriteString(promptStyle.Render("Enter: 계속"))
	}
	return content.String()
}

func writeMetadata(v sim.View, comps []scenario.Competency, selections int) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("진행 상황") + "\n\n")

	content.WriteString("Scenario:\n")
	content.WriteString(v.ScenarioID + "\n\n")

	content.WriteString("Node:\n")
	content.WriteString(fmt.Sprintf("%s (%s)\n\n", v.NodeID, v.Mode))

	content.WriteString("Selections:\n")
	content.WriteString(fmt.Sprintf("%d total\n\n", selections))

	content.WriteString("Score:\n")
	for _, c := range comps {
		content.WriteString(fmt.Sprintf("• %s: %d\n", c, v.Score.Get(c)))
	}

	content.WriteString("\n")
	content.WriteString("Commands:\n")
	content.WriteString("• 1-9 / ↑↓ Enter: 선택\n")
	if v.CanBack {
		content.WriteString("• b: 뒤로\n")
	}
	content.WriteString("• h: 처음으로\n")
	content.WriteString("• s: 시나리오 저장\n")
	content.WriteString("• q: 종료\n")

	return content.String()
}

func competencyNames(lines []report.Line) string {
	if len(lines) == 0 {
		return "없음"
	}
	names := make([]string, len(lines))
	for i, l := range lines {
		names[i] = string(l.Competency)
	}
	return strings.Join(names, ", ")
}

// writeResultContent renders the final report.
func writeResultContent(r *report.Report, dialogue string, strength, width int) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("결과: "+r.Title) + "\n\n")
	content.WriteString(separator(width))

	if dialogue != "" {
		content.WriteString(narratorStyle.Render(wordwrap.String(dialogue, width)) + "\n\n")
	}

	for _, l := range r.Lines {
		line := fmt.Sprintf("%s %s %3d  %s",
			competencyStyle.Render(string(l.Competency)),
			scoreBar(l.Score, strength, barWidth),
			l.Score,
			levelStyle(l.Level).Render(l.Level.Label()))
		if l.Reference != nil {
			mark := "✓"
			if !l.MeetsReference() {
				mark = "✗"
			}
			line += promptStyle.Render(fmt.Sprintf("  (기준 %d %s)", *l.Reference, mark))
		}
		content.WriteString(line + "\n")
	}
	content.WriteString("\n")

	content.WriteString(speakerStyle.Render("피드백") + "\n")
	content.WriteString(wordwrap.String(r.Feedback, width) + "\n\n")

	content.WriteString(levelStyle(score.LevelStrength).Render("강점: ") + competencyNames(r.Strengths) + "\n")
	content.WriteString(levelStyle(score.LevelNeedsImprovement).Render("개선 필요: ") + competencyNames(r.Improvements) + "\n\n")

	content.WriteString(promptStyle.Render("e: 기록 내보내기 · c: 기록 복사 · b: 뒤로 · r: 처음으로 · q: 종료"))
	return content.String()
}

// describeAbort names the bad reference behind an integrity error.
func describeAbort(err error) string {
	var integrity *navigation.IntegrityError
	if errors.As(err, &integrity) {
		return fmt.Sprintf("존재하지 않는 노드를 가리킵니다: %q", integrity.Goto)
	}
	if errors.Is(err, scenario.ErrNoEntryNode) {
		return "시나리오에 노드가 없습니다."
	}
	return err.Error()
}

func renderStatus(msg string, isErr bool) string {
	if msg == "" {
		return ""
	}
	if isErr {
		return errorStyle.Render(msg)
	}
	return loadingStyle.Render(msg)
}
