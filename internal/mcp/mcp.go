// Package mcp exposes the journal over the Model Context Protocol stdio
// transport, so an agent can read weeks, months and entries and write
// today's entry:
//
//	trace mcp
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/klabast/wb-services/trace/internal/calendar"
	"github.com/klabast/wb-services/trace/internal/journal"
	"github.com/klabast/wb-services/trace/internal/store"
	"github.com/klabast/wb-services/trace/internal/summary"
)

// Version is reported in the initialize response
const Version = "0.1.0"

const serverInstructions = `trace is a personal work journal with one entry per day ` +
	`(bullets, mood, people, plan for tomorrow). Use these tools to look up what ` +
	`happened in a week or month, search past entries, and record today's entry. ` +
	`Dates are YYYY-MM-DD.`

// NewServer creates an MCP server with every journal tool registered
func NewServer(s *store.Store, cal *calendar.Calendar, mondayStart bool) *server.MCPServer {
	srv := server.NewMCPServer(
		"trace",
		Version,
		server.WithToolCapabilities(true),
		server.WithInstructions(serverInstructions),
	)
	registerTools(srv, s, cal, mondayStart)
	return srv
}

func registerTools(srv *server.MCPServer, s *store.Store, cal *calendar.Calendar, mondayStart bool) {
	srv.AddTool(
		mcp.NewTool("journal_week",
			mcp.WithDescription("Show the week containing a date: its entries, mood counts, most mentioned people and weekly notes."),
			mcp.WithTitleAnnotation("Week Summary"),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithString("date",
				mcp.Description("Any date in the week (default: today)"),
			),
			mcp.WithString("start",
				mcp.Description("First day of the week: monday or sunday"),
			),
		),
		handleWeek(s, cal, mondayStart),
	)

	srv.AddTool(
		mcp.NewTool("journal_calendar",
			mcp.WithDescription("Show a month as a calendar grid with the days that have entries marked."),
			mcp.WithTitleAnnotation("Month Calendar"),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithNumber("year",
				mcp.Description("Year (default: current year)"),
			),
			mcp.WithNumber("month",
				mcp.Description("Month 1-12 (default: current month)"),
			),
		),
		handleCalendar(s, cal),
	)

	srv.AddTool(
		mcp.NewTool("journal_entries",
			mcp.WithDescription("List entries between two dates, newest first."),
			mcp.WithTitleAnnotation("List Entries"),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithString("from",
				mcp.Description("First date, inclusive"),
			),
			mcp.WithString("to",
				mcp.Description("Last date, inclusive"),
			),
		),
		handleEntries(s),
	)

	srv.AddTool(
		mcp.NewTool("journal_search",
			mcp.WithDescription("Search entries by keywords. Every word must appear in the entry."),
			mcp.WithTitleAnnotation("Search Entries"),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithString("query",
				mcp.Required(),
				mcp.Description("Keywords"),
			),
			mcp.WithNumber("limit",
				mcp.Description("Max results (default: 10, max: 50)"),
			),
		),
		handleSearch(s),
	)

	srv.AddTool(
		mcp.NewTool("journal_save_entry",
			mcp.WithDescription("Create or replace the entry of a date."),
			mcp.WithTitleAnnotation("Save Entry"),
			mcp.WithReadOnlyHintAnnotation(false),
			mcp.WithDestructiveHintAnnotation(false),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithString("date",
				mcp.Description("Entry date (default: today)"),
			),
			mcp.WithString("mood",
				mcp.Required(),
				mcp.Description("One of: great, good, okay, bad, awful"),
			),
			mcp.WithString("bullets",
				mcp.Description("What happened, one item per line"),
			),
			mcp.WithString("mood_note",
				mcp.Description("Short note on the mood"),
			),
			mcp.WithString("people",
				mcp.Description("Comma separated names"),
			),
			mcp.WithString("tomorrow",
				mcp.Description("Plan for tomorrow"),
			),
		),
		handleSaveEntry(s, cal),
	)
}

// ─── Tool Handlers ───────────────────────────────────────────────────────────

func handleWeek(s *store.Store, cal *calendar.Calendar, mondayStart bool) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		date := stringArg(req, "date", cal.Today())
		monday := mondayStart
		switch stringArg(req, "start", "") {
		case "sunday":
			monday = false
		case "monday":
			monday = true
		case "":
		default:
			return mcp.NewToolResultError("start must be monday or sunday"), nil
		}

		week, err := calendar.WeekRange(date, monday)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		entries, err := s.ListEntries(ctx, store.ListOptions{From: week.WeekStart, To: week.WeekEnd})
		if err != nil {
			return mcp.NewToolResultError("Failed to load entries: " + err.Error()), nil
		}
		weekly, err := summary.Build(entries, week.WeekStart, week.WeekEnd)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		notes, err := s.GetWeeklyNotes(ctx, week.WeekStart)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return mcp.NewToolResultError("Failed to load notes: " + err.Error()), nil
		}
		if notes != nil {
			weekly = weekly.WithNotes(*notes)
		}

		var b strings.Builder
		b.WriteString(weekly.Text())
		b.WriteString("\n")
		b.WriteString(summary.EntriesText(entries))

		return mcp.NewToolResultText(b.String()), nil
	}
}

func handleCalendar(s *store.Store, cal *calendar.Calendar) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		now := cal.Now()
		year := intArg(req, "year", now.Year())
		month := intArg(req, "month", int(now.Month()))

		days, err := cal.Grid(year, month)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		dates, err := s.EntryDates(ctx, days[0].Date, days[len(days)-1].Date)
		if err != nil {
			return mcp.NewToolResultError("Failed to load entry dates: " + err.Error()), nil
		}
		has := make(map[string]bool, len(dates))
		for _, d := range dates {
			has[d] = true
		}

		var b strings.Builder
		b.WriteString(calendar.RenderGrid(year, month, days, func(date string) bool { return has[date] }))
		fmt.Fprintf(&b, "\n%d days with entries in view\n", len(dates))

		return mcp.NewToolResultText(b.String()), nil
	}
}

func handleEntries(s *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		opts := store.ListOptions{}
		for key, dst := range map[string]*string{"from": &opts.From, "to": &opts.To} {
			raw := stringArg(req, key, "")
			if raw == "" {
				continue
			}
			d, err := calendar.FormatDate(raw)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("%s: %s", key, err)), nil
			}
			*dst = d
		}

		entries, err := s.ListEntries(ctx, opts)
		if err != nil {
			return mcp.NewToolResultError("Failed to load entries: " + err.Error()), nil
		}
		if len(entries) == 0 {
			return mcp.NewToolResultText("No entries in range."), nil
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Found %d entries:\n\n", len(entries))
		b.WriteString(summary.EntriesText(entries))
		return mcp.NewToolResultText(b.String()), nil
	}
}

func handleSearch(s *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := strings.TrimSpace(stringArg(req, "query", ""))
		if query == "" {
			return mcp.NewToolResultError("query is required"), nil
		}
		limit := intArg(req, "limit", 10)
		if limit < 1 || limit > 50 {
			limit = 10
		}

		entries, err := s.SearchEntries(ctx, query, limit)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Search error: %s. Try simpler keywords.", err)), nil
		}
		if len(entries) == 0 {
			return mcp.NewToolResultText(fmt.Sprintf("No entries found for: %q", query)), nil
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Found %d entries:\n\n", len(entries))
		b.WriteString(summary.EntriesText(entries))
		return mcp.NewToolResultText(b.String()), nil
	}
}

func handleSaveEntry(s *store.Store, cal *calendar.Calendar) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		date, err := calendar.FormatDate(stringArg(req, "date", cal.Today()))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		mood, err := journal.ParseMood(stringArg(req, "mood", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		entry := journal.Entry{
			Date:     date,
			Mood:     journal.Mood{Value: mood, Note: strings.TrimSpace(stringArg(req, "mood_note", ""))},
			Bullets:  splitList(stringArg(req, "bullets", ""), "\n"),
			Tomorrow: strings.TrimSpace(stringArg(req, "tomorrow", "")),
			People:   []journal.Person{},
		}
		for _, name := range splitList(stringArg(req, "people", ""), ",") {
			entry.People = append(entry.People, journal.Person{Name: name})
		}

		// keep what the tool cannot express
		if existing, err := s.GetEntry(ctx, date); err == nil {
			entry.Events = existing.Events
			entry.WorkItems = existing.WorkItems
		} else if !errors.Is(err, store.ErrNotFound) {
			return mcp.NewToolResultError("Failed to load entry: " + err.Error()), nil
		}

		if err := entry.Validate(); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		saved, err := s.UpsertEntry(ctx, entry)
		if err != nil {
			return mcp.NewToolResultError("Failed to save: " + err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Entry saved: %s (%s, %d bullets)", saved.Date, saved.Mood.Value.Label(), len(saved.Bullets))), nil
	}
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func splitList(raw, sep string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, sep) {
		part = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(part), "- "))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func stringArg(req mcp.CallToolRequest, key, defaultVal string) string {
	v, ok := req.GetArguments()[key].(string)
	if !ok || strings.TrimSpace(v) == "" {
		return defaultVal
	}
	return v
}

func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}
