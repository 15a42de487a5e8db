package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"

	"github.com/hireloop/interview-service/internal/domain"
	"github.com/hireloop/interview-service/internal/interview"
	"github.com/hireloop/interview-service/internal/repository"
)

const usage = `sessionctl - interview session operations

Usage:
  sessionctl list [limit]       list recent sessions (default 20)
  sessionctl show <session-id>  print one session
  sessionctl expire <session-id>  force-expire a session now
`

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(2)
	}

	// Only the database settings matter here; the CLI works without the
	// rest of the service configuration.
	db, err := repository.NewDB(repository.Config{
		Host:     envOr("DB_HOST", "localhost"),
		Port:     envIntOr("DB_PORT", 5432),
		User:     envOr("DB_USER", "postgres"),
		Password: envOr("DB_PASSWORD", "postgres"),
		DBName:   envOr("DB_NAME", "interview_service"),
		SSLMode:  envOr("DB_SSLMODE", "disable"),
	})
	if err != nil {
		fatal(err)
	}
	defer db.Close()

	sessions := repository.NewSessionsRepository(db)
	lifecycle := interview.NewLifecycle(sessions, interview.SystemClock(), logger, nil)
	ctx := context.Background()

	switch os.Args[1] {
	case "list":
		limit := 20
		if len(os.Args) > 2 {
			if n, err := strconv.Atoi(os.Args[2]); err == nil && n > 0 {
				limit = n
			}
		}
		listSessions(ctx, sessions, limit)
	case "show":
		showSession(ctx, sessions, requireID())
	case "expire":
		expireSession(ctx, lifecycle, requireID())
	default:
		fmt.Print(usage)
		os.Exit(2)
	}
}

func requireID() uuid.UUID {
	if len(os.Args) < 3 {
		fmt.Print(usage)
		os.Exit(2)
	}
	id, err := uuid.Parse(os.Args[2])
	if err != nil {
		fatal(fmt.Errorf("invalid session id: %w", err))
	}
	return id
}

func listSessions(ctx context.Context, sessions *repository.SessionsRepository, limit int) {
	list, err := sessions.List(ctx, limit)
	if err != nil {
		fatal(err)
	}

	color.Cyan("Recent interview sessions (%d)", len(list))
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Candidate", "Status", "Mode", "Deadline", "Created"})
	for _, s := range list {
		table.Append([]string{
			s.ID.String(),
			s.CandidateID.String(),
			string(s.Status),
			string(s.Mode),
			s.Deadline().UTC().Format(time.RFC3339),
			s.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	table.Render()
}

func showSession(ctx context.Context, sessions *repository.SessionsRepository, id uuid.UUID) {
	s, err := sessions.GetByID(ctx, id)
	if err != nil {
		fatal(err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Field", "Value"})
	rows := [][]string{
		{"ID", s.ID.String()},
		{"Token", s.Token},
		{"Candidate", s.CandidateID.String()},
		{"Status", string(s.Status)},
		{"Mode", string(s.Mode)},
		{"Window", formatWindow(s)},
		{"Expires", s.ExpiresAt.UTC().Format(time.RFC3339)},
		{"Started", formatStamp(s.StartedAt)},
		{"Completed", formatStamp(s.CompletedAt)},
		{"Abandoned", formatStamp(s.AbandonedAt)},
		{"Link sent", formatStamp(s.LinkSentAt)},
		{"Active", strconv.FormatBool(s.IsActive)},
	}
	for _, row := range rows {
		table.Append(row)
	}
	table.Render()
}

func expireSession(ctx context.Context, lifecycle *interview.Lifecycle, id uuid.UUID) {
	now := time.Now().UTC()
	s, err := lifecycle.Transition(ctx, id, interview.TransitionInput{
		Status:    domain.StatusExpired,
		ExpiresAt: &now,
	})
	if err != nil {
		fatal(err)
	}
	color.Green("Session %s expired (deadline forced to %s)", s.ID, now.Format(time.RFC3339))
}

func formatWindow(s *domain.InterviewSession) string {
	if s.ScheduledStart == nil && s.ScheduledEnd == nil {
		return "-"
	}
	start, end := "-", "-"
	if s.ScheduledStart != nil {
		start = s.ScheduledStart.UTC().Format(time.RFC3339)
	}
	if s.ScheduledEnd != nil {
		end = s.ScheduledEnd.UTC().Format(time.RFC3339)
	}
	return start + " .. " + end
}

func formatStamp(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

func envOr(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func envIntOr(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func fatal(err error) {
	color.Red("Error: %v", err)
	os.Exit(1)
}
