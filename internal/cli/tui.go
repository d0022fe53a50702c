package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/rajithraghunath/roomtag/pkg/model"
	"github.com/rajithraghunath/roomtag/pkg/viewmap"
)

// Prompt styles
var (
	promptSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	promptNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	promptDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// ConfirmModel - Yes/No prompt
// =============================================================================

// ConfirmModel is the bubbletea model for a yes/no question.
type ConfirmModel struct {
	Question string
	Yes      bool

	// Answered is false when the prompt was dismissed without a choice.
	Answered bool
}

// NewConfirmModel creates a prompt with Yes preselected when defaultYes is set.
func NewConfirmModel(question string, defaultYes bool) ConfirmModel {
	return ConfirmModel{Question: question, Yes: defaultYes}
}

func (m ConfirmModel) Init() tea.Cmd {
	return nil
}

func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "left", "right", "h", "l", "tab":
		m.Yes = !m.Yes
	case "y", "Y":
		m.Yes, m.Answered = true, true
		return m, tea.Quit
	case "n", "N":
		m.Yes, m.Answered = false, true
		return m, tea.Quit
	case "enter":
		m.Answered = true
		return m, tea.Quit
	}
	return m, nil
}

func (m ConfirmModel) View() string {
	if m.Answered {
		return ""
	}
	yes, no := promptNormalStyle.Render("  Yes  "), promptNormalStyle.Render("  No  ")
	if m.Yes {
		yes = promptSelectedStyle.Render("[ Yes ]")
	} else {
		no = promptSelectedStyle.Render("[ No ]")
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render(m.Question))
	b.WriteString("\n\n  ")
	b.WriteString(yes + "   " + no)
	b.WriteString("\n\n")
	b.WriteString(promptDimStyle.Render("←/→ choose  y/n answer  ⏎ confirm  q cancel"))
	b.WriteString("\n")
	return b.String()
}

// confirm runs a ConfirmModel and returns the choice. A dismissed prompt
// returns context.Canceled.
func confirm(ctx context.Context, question string, defaultYes bool) (bool, error) {
	final, err := tea.NewProgram(NewConfirmModel(question, defaultYes), tea.WithContext(ctx)).Run()
	if err != nil {
		return false, err
	}
	m := final.(ConfirmModel)
	if !m.Answered {
		return false, context.Canceled
	}
	return m.Yes, nil
}

// =============================================================================
// Level Table
// =============================================================================

// noView marks a level without an eligible plan view.
const noView = "—"

// levelRow is one line of the inspect table.
type levelRow struct {
	Level     model.ElementID
	View      string
	Rooms     int
	Unlabeled int
}

// levelRows groups rooms by level and pairs each level with its resolved view.
func levelRows(rooms, unlabeled []model.Room, views viewmap.Map) []levelRow {
	counts := make(map[model.ElementID]*levelRow)
	var order []model.ElementID
	row := func(level model.ElementID) *levelRow {
		r, ok := counts[level]
		if !ok {
			r = &levelRow{Level: level, View: noView}
			if v, ok := views.Lookup(level); ok {
				r.View = viewLabel(v)
			}
			counts[level] = r
			order = append(order, level)
		}
		return r
	}
	for _, level := range views.Levels() {
		row(level)
	}
	for _, r := range rooms {
		row(r.Level).Rooms++
	}
	for _, r := range unlabeled {
		row(r.Level).Unlabeled++
	}

	rows := make([]levelRow, len(order))
	for i, level := range order {
		rows[i] = *counts[level]
	}
	return rows
}

func viewLabel(v model.View) string {
	if v.Name != "" {
		return fmt.Sprintf("%s (%s)", v.Name, v.ID)
	}
	return string(v.ID)
}

// renderLevelTable renders level rows as a rounded lipgloss table.
// Levels without a view are dimmed.
func renderLevelTable(rows []levelRow) string {
	data := make([][]string, len(rows))
	for i, r := range rows {
		data[i] = []string{string(r.Level), r.View, strconv.Itoa(r.Rooms), strconv.Itoa(r.Unlabeled)}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Level", "View", "Rooms", "Unlabeled").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row < 0 || row >= len(rows) {
				return cell
			}
			r := rows[row]
			switch {
			case r.View == noView:
				return cell.Foreground(colorDim)
			case col == 3 && r.Unlabeled > 0:
				return cell.Foreground(colorYellow)
			case col == 3:
				return cell.Foreground(colorGreen)
			}
			return cell
		})
	return t.Render()
}
