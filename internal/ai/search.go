package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/klabast/wb-services/trace/internal/calendar"
	"github.com/klabast/wb-services/trace/internal/journal"
)

// MaxSearchResults caps the dates a search returns
const MaxSearchResults = 10

// Fixed explanations for results the model did not produce
const (
	ExplanationNoData     = "검색할 데이터가 없습니다."
	ExplanationUnparsable = "검색 결과를 파싱할 수 없습니다."
	ExplanationDefault    = "검색 결과입니다."
)

// SearchResult lists the matching dates, most relevant first
type SearchResult struct {
	Dates       []string `json:"dates"`
	Explanation string   `json:"explanation"`
}

// SmartSearch finds entries matching a free-form question
type SmartSearch struct {
	Model Model
}

var jsonBlock = regexp.MustCompile(`(?s)\{.*\}`)

// Search asks the model which entries relate to query. An empty query or
// an empty journal returns an empty result without calling the model.
func (s *SmartSearch) Search(ctx context.Context, query string, entries []journal.Entry, projects []journal.Project) (SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" || len(entries) == 0 {
		return SearchResult{Dates: []string{}, Explanation: ExplanationNoData}, nil
	}

	text, err := s.Model.Generate(ctx, searchPrompt(query, entries, projects))
	if err != nil {
		return SearchResult{}, err
	}
	return parseSearchReply(text), nil
}

func parseSearchReply(text string) SearchResult {
	unparsable := SearchResult{Dates: []string{}, Explanation: ExplanationUnparsable}

	block := jsonBlock.FindString(text)
	if block == "" {
		return unparsable
	}
	var reply struct {
		Dates       []string `json:"dates"`
		Explanation string   `json:"explanation"`
	}
	if err := json.Unmarshal([]byte(block), &reply); err != nil {
		return unparsable
	}

	result := SearchResult{Dates: []string{}, Explanation: reply.Explanation}
	if result.Explanation == "" {
		result.Explanation = ExplanationDefault
	}
	seen := make(map[string]bool)
	for _, d := range reply.Dates {
		date, err := calendar.FormatDate(d)
		if err != nil || seen[date] {
			continue
		}
		seen[date] = true
		result.Dates = append(result.Dates, date)
		if len(result.Dates) == MaxSearchResults {
			break
		}
	}
	return result
}

func searchPrompt(query string, entries []journal.Entry, projects []journal.Project) string {
	byID := make(map[string]journal.Project, len(projects))
	for _, p := range projects {
		byID[p.ID] = p
	}

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		parts := []string{"[" + e.Date + "]"}

		mood := e.Mood.Value.Label()
		if mood == "" {
			mood = string(e.Mood.Value)
		}
		parts = append(parts, "기분: "+mood)
		if e.Mood.Note != "" {
			parts = append(parts, "("+e.Mood.Note+")")
		}

		if len(e.WorkItems) > 0 {
			work := make([]string, 0, len(e.WorkItems))
			for _, w := range e.WorkItems {
				p := byID[w.ProjectID]
				item := p.Crew + "/" + p.Title
				if w.DailyNote != "" {
					item += ": " + w.DailyNote
				}
				work = append(work, item)
			}
			parts = append(parts, "작업: "+strings.Join(work, ", "))
		}
		if len(e.Bullets) > 0 {
			parts = append(parts, "메모: "+strings.Join(e.Bullets, ", "))
		}
		if len(e.Events) > 0 {
			parts = append(parts, "이벤트: "+strings.Join(e.Events, ", "))
		}
		if len(e.People) > 0 {
			names := make([]string, 0, len(e.People))
			for _, p := range e.People {
				names = append(names, p.Name)
			}
			parts = append(parts, "사람: "+strings.Join(names, ", "))
		}
		lines = append(lines, strings.Join(parts, " | "))
	}

	return fmt.Sprintf(`당신은 일기/업무 기록 검색 도우미입니다. 아래는 사용자의 일별 기록 데이터입니다.

--- 기록 데이터 ---
%s
--- 끝 ---

사용자 검색 쿼리: %q

위 데이터에서 사용자의 검색 쿼리와 관련된 날짜들을 찾아주세요.
반드시 아래 JSON 형식으로만 응답하세요:

{
  "dates": ["YYYY-MM-DD", "YYYY-MM-DD"],
  "explanation": "검색 결과에 대한 간단한 설명"
}

- dates: 관련된 날짜 목록 (최대 %d개, 관련성 높은 순)
- explanation: 왜 이 날짜들이 관련되는지 1-2문장으로 설명

관련된 기록이 없으면 dates를 빈 배열로 반환하세요.`, strings.Join(lines, "\n"), query, MaxSearchResults)
}

// SearchCache remembers the most recent search so repeated lookups of the
// same query skip the model
type SearchCache struct {
	mu     sync.Mutex
	query  string
	result SearchResult
	ok     bool
}

// Get returns the cached result for query
func (c *SearchCache) Get(query string) (SearchResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ok || c.query != strings.TrimSpace(query) {
		return SearchResult{}, false
	}
	return c.result, true
}

// Put replaces the cached result
func (c *SearchCache) Put(query string, result SearchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query = strings.TrimSpace(query)
	c.result = result
	c.ok = true
}

// Clear drops the cached result. Call it when entries change.
func (c *SearchCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query = ""
	c.result = SearchResult{}
	c.ok = false
}
