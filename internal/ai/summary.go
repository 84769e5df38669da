package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/klabast/wb-services/trace/internal/journal"
)

// Prompt limits
const (
	MaxSummaryEntries = 7
	MaxMoodNoteRunes  = 30
	MaxSummaryPeople  = 3
)

// ErrNoEntries is returned when there is nothing to summarize
var ErrNoEntries = errors.New("ai: no entries provided")

// Summarizer writes a short weekly review
type Summarizer struct {
	Model Model
}

// Summarize asks the model for a review of the week's entries. projects
// resolves work item IDs to titles; unknown IDs are left out.
func (s *Summarizer) Summarize(ctx context.Context, weekStart, weekEnd string, entries []journal.Entry, projects []journal.Project) (string, error) {
	if len(entries) == 0 {
		return "", ErrNoEntries
	}
	prompt := summaryPrompt(weekStart, weekEnd, entries, projects)
	text, err := s.Model.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func summaryPrompt(weekStart, weekEnd string, entries []journal.Entry, projects []journal.Project) string {
	byID := make(map[string]journal.Project, len(projects))
	for _, p := range projects {
		byID[p.ID] = p
	}

	used := entries
	if len(used) > MaxSummaryEntries {
		used = used[:MaxSummaryEntries]
	}

	var lines []string
	for _, e := range used {
		mood := e.Mood.Value.Label()
		if mood == "" {
			mood = journal.MoodOkay.Label()
		}
		if note := truncateRunes(e.Mood.Note, MaxMoodNoteRunes); note != "" {
			mood += "(" + note + ")"
		}

		var titles []string
		for _, w := range e.WorkItems {
			p, ok := byID[w.ProjectID]
			if !ok {
				continue
			}
			if p.Title != "" {
				titles = append(titles, p.Title)
			} else if p.Crew != "" {
				titles = append(titles, p.Crew)
			}
		}

		var names []string
		for i, p := range e.People {
			if i == MaxSummaryPeople {
				break
			}
			names = append(names, p.Name)
		}

		lines = append(lines, fmt.Sprintf("- %s: 기분 %s, 프로젝트: %s, 사람: %s",
			e.Date, mood, orNone(strings.Join(titles, ", ")), orNone(strings.Join(names, ", "))))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "아래는 %s ~ %s 주간 기록이야:\n\n", weekStart, weekEnd)
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\n위 기록을 바탕으로 주간 요약을 작성해줘:\n\n")
	fmt.Fprintf(&b, "📊 **이번 주 한눈에 보기**: 총 %d일 기록, 주요 활동 1-2문장\n\n", len(entries))
	b.WriteString("💼 **프로젝트 진행**: 각 프로젝트별 간단 정리\n\n")
	b.WriteString("😊 **기분 트렌드**: 전반적인 기분과 특이사항\n\n")
	b.WriteString("💡 **인사이트**: 패턴이나 제안 1개\n\n")
	b.WriteString("한국어로, 이모지 사용해서 읽기 좋게 작성해줘. 간결하게!")
	return b.String()
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func orNone(s string) string {
	if s == "" {
		return "없음"
	}
	return s
}
