package reviewconsole

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"academictoken/internal/bootstrap/logging"
	"academictoken/internal/domain/equivalence"
	"academictoken/internal/errs"
	"academictoken/internal/usecase/academic"
)

const maxAuditLines = 8
const maxShownRecommendations = 4

// Reviewer is the part of the academic service the console drives.
type Reviewer interface {
	ListEquivalencesByStatus(ctx context.Context, status equivalence.Status, req academic.PageRequest) (academic.PageResult[equivalence.Equivalence], error)
	GetAnalysis(ctx context.Context, equivalenceID string) (equivalence.AnalysisResult, error)
	ApproveEquivalence(ctx context.Context, input academic.ApproveEquivalenceInput) (equivalence.Equivalence, error)
}

var _ Reviewer = (*academic.Service)(nil)

type Options struct {
	Approver        string
	Method          string
	PageSize        int
	RefreshInterval time.Duration
}

type reviewModel struct {
	ctx             context.Context
	reviewer        Reviewer
	approver        string
	method          string
	pageSize        int
	refreshInterval time.Duration

	queue         []equivalence.Equivalence
	selectedIndex int
	analysis      equivalence.AnalysisResult
	hasAnalysis   bool
	status        string
	auditLogs     []string
}

type queueLoadedMsg struct {
	items []equivalence.Equivalence
	err   error
}

type analysisLoadedMsg struct {
	equivalenceID string
	analysis      equivalence.AnalysisResult
	err           error
}

type tickMsg struct{}

type decisionDoneMsg struct {
	action        string
	equivalenceID string
	result        string
	err           error
}

func NewReviewModel(ctx context.Context, reviewer Reviewer, options Options) tea.Model {
	pageSize := options.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	interval := options.RefreshInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &reviewModel{
		ctx:             ctx,
		reviewer:        reviewer,
		approver:        strings.TrimSpace(options.Approver),
		method:          strings.TrimSpace(options.Method),
		pageSize:        pageSize,
		refreshInterval: interval,
		status:          "loading",
	}
}

func (m *reviewModel) Init() tea.Cmd {
	return tea.Batch(m.loadQueueCmd(), m.tickCmd())
}

func (m *reviewModel) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := message.(type) {
	case tickMsg:
		return m, tea.Batch(m.loadQueueCmd(), m.tickCmd())
	case queueLoadedMsg:
		if msg.err != nil {
			m.status = "refresh failed: " + msg.err.Error()
			return m, nil
		}
		m.queue = msg.items
		if len(m.queue) == 0 {
			m.selectedIndex = 0
			m.hasAnalysis = false
			m.status = "review queue is empty"
			return m, nil
		}
		if m.selectedIndex >= len(m.queue) {
			m.selectedIndex = len(m.queue) - 1
		}
		if m.selectedIndex < 0 {
			m.selectedIndex = 0
		}
		m.status = fmt.Sprintf("refreshed, %d awaiting review", len(m.queue))
		return m, m.loadAnalysisCmd()
	case analysisLoadedMsg:
		selected, ok := m.selected()
		if !ok || selected.ID != msg.equivalenceID {
			return m, nil
		}
		if msg.err != nil {
			m.hasAnalysis = false
			m.status = "analysis unavailable: " + msg.err.Error()
			return m, nil
		}
		m.analysis = msg.analysis
		m.hasAnalysis = true
		return m, nil
	case decisionDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("%s failed: %v", msg.action, msg.err)
			m.appendAuditLog(msg.action, msg.equivalenceID, "failed", msg.err)
		} else {
			m.status = fmt.Sprintf("%s done: %s", msg.action, msg.result)
			m.appendAuditLog(msg.action, msg.equivalenceID, msg.result, nil)
		}
		return m, m.loadQueueCmd()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "g":
			m.status = "refreshing"
			return m, m.loadQueueCmd()
		case "up", "k":
			if m.selectedIndex > 0 {
				m.selectedIndex--
				m.hasAnalysis = false
				return m, m.loadAnalysisCmd()
			}
			return m, nil
		case "down", "j":
			if m.selectedIndex < len(m.queue)-1 {
				m.selectedIndex++
				m.hasAnalysis = false
				return m, m.loadAnalysisCmd()
			}
			return m, nil
		case "a":
			return m, m.decideCmd(true)
		case "r":
			return m, m.decideCmd(false)
		}
	}
	return m, nil
}

func (m *reviewModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true)
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("62"))

	var builder strings.Builder
	builder.WriteString(titleStyle.Render("Equivalence Review"))
	builder.WriteString("\n")
	builder.WriteString(dimStyle.Render(fmt.Sprintf(
		"approver=%s method=%s refresh=%s",
		firstNonEmpty(m.approver, "-"),
		firstNonEmpty(m.method, "default"),
		m.refreshInterval,
	)))
	builder.WriteString("\n\n")

	builder.WriteString(sectionStyle.Render("Queue"))
	builder.WriteString("\n")
	if len(m.queue) == 0 {
		builder.WriteString(dimStyle.Render("- nothing under review"))
		builder.WriteString("\n\n")
	} else {
		for index, item := range m.queue {
			line := fmt.Sprintf("%s %s -> %s type=%s similarity=%d%% confidence=%d",
				item.ID,
				item.Source.ID,
				item.Target.ID,
				firstNonEmpty(string(item.Type), "-"),
				item.SimilarityPercentage,
				item.ConfidenceScore,
			)
			if index == m.selectedIndex {
				builder.WriteString(selectedStyle.Render("> " + line))
			} else {
				builder.WriteString("  " + line)
			}
			builder.WriteString("\n")
		}
		builder.WriteString("\n")
	}

	builder.WriteString(sectionStyle.Render("Analysis"))
	builder.WriteString("\n")
	if !m.hasAnalysis {
		builder.WriteString(dimStyle.Render("- no analysis"))
		builder.WriteString("\n\n")
	} else {
		a := m.analysis
		builder.WriteString(fmt.Sprintf("Mode: %s\n", a.Mode))
		builder.WriteString(fmt.Sprintf("Overall: %d  Confidence: %d  Recommended: %s\n", a.OverallScore, a.ConfidenceScore, a.RecommendedType))
		builder.WriteString(fmt.Sprintf("Content: %d  Structural: %d  Credit: %d  Level: %d\n",
			a.Factors.Content, a.Factors.Structural, a.Factors.Credit, a.Factors.Level))
		recs := a.Recommendations
		if len(recs) > maxShownRecommendations {
			recs = recs[:maxShownRecommendations]
		}
		for _, rec := range recs {
			builder.WriteString("- " + rec + "\n")
		}
		builder.WriteString("\n")
	}

	builder.WriteString(sectionStyle.Render("Status"))
	builder.WriteString("\n")
	builder.WriteString("- " + firstNonEmpty(m.status, "ready"))
	builder.WriteString("\n\n")

	builder.WriteString(sectionStyle.Render("Audit Log"))
	builder.WriteString("\n")
	if len(m.auditLogs) == 0 {
		builder.WriteString(dimStyle.Render("- no decisions"))
		builder.WriteString("\n\n")
	} else {
		for _, line := range m.auditLogs {
			builder.WriteString("- " + line + "\n")
		}
		builder.WriteString("\n")
	}

	builder.WriteString(dimStyle.Render("Keys: up/k down/j move  g refresh  a approve  r reject  q quit"))
	return builder.String()
}

func (m *reviewModel) tickCmd() tea.Cmd {
	return tea.Tick(m.refreshInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m *reviewModel) loadQueueCmd() tea.Cmd {
	return func() tea.Msg {
		page, err := m.reviewer.ListEquivalencesByStatus(m.ctx, equivalence.StatusUnderReview, academic.PageRequest{Limit: m.pageSize})
		if err != nil {
			return queueLoadedMsg{err: err}
		}
		return queueLoadedMsg{items: page.Items}
	}
}

func (m *reviewModel) loadAnalysisCmd() tea.Cmd {
	selected, ok := m.selected()
	if !ok {
		return nil
	}
	return func() tea.Msg {
		analysis, err := m.reviewer.GetAnalysis(m.ctx, selected.ID)
		return analysisLoadedMsg{equivalenceID: selected.ID, analysis: analysis, err: err}
	}
}

func (m *reviewModel) decideCmd(approve bool) tea.Cmd {
	action := "reject"
	if approve {
		action = "approve"
	}
	selected, ok := m.selected()
	if !ok {
		m.status = "no equivalence selected"
		return nil
	}
	if m.approver == "" {
		m.status = action + " needs --approver"
		return nil
	}
	m.status = action + " in progress"

	return func() tea.Msg {
		eq, err := m.reviewer.ApproveEquivalence(m.ctx, academic.ApproveEquivalenceInput{
			Caller:        m.approver,
			EquivalenceID: selected.ID,
			Approve:       approve,
			Method:        m.method,
			Notes:         "console " + action,
		})
		if err != nil {
			return decisionDoneMsg{action: action, equivalenceID: selected.ID, err: err}
		}
		return decisionDoneMsg{action: action, equivalenceID: selected.ID, result: string(eq.Status)}
	}
}

func (m *reviewModel) selected() (equivalence.Equivalence, bool) {
	if m.selectedIndex < 0 || m.selectedIndex >= len(m.queue) {
		return equivalence.Equivalence{}, false
	}
	return m.queue[m.selectedIndex], true
}

func (m *reviewModel) appendAuditLog(action string, equivalenceID string, result string, opErr error) {
	line := fmt.Sprintf("%s %s id=%s approver=%s result=%s",
		time.Now().Format("15:04:05"), action, equivalenceID, firstNonEmpty(m.approver, "-"), result)
	m.auditLogs = append(m.auditLogs, line)
	if len(m.auditLogs) > maxAuditLines {
		m.auditLogs = m.auditLogs[len(m.auditLogs)-maxAuditLines:]
	}

	attrs := []slog.Attr{
		slog.String("action", action),
		slog.String("equivalence_id", equivalenceID),
		slog.String("approver", m.approver),
		slog.String("result", result),
	}
	if opErr != nil {
		attrs = append(attrs, slog.Any("err", errs.Loggable(opErr)))
		logging.Error(m.ctx, "review console decision failed", attrs...)
		return
	}
	logging.Info(m.ctx, "review console decision", attrs...)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
