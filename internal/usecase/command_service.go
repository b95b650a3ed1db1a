package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/matchday-predictor/internal/domain/fixture"
)

// CycleRunner is the part of PredictionCycleService commands depend on.
type CycleRunner interface {
	RunCycle(ctx context.Context, input RunCycleInput) (CycleResult, error)
	ListFixtures(ctx context.Context, date string) (time.Time, []fixture.Fixture, error)
}

const (
	pongReply     = "Pong! Bot is working."
	greetingReply = "Hello! Type /help to see what I can do."
	helpReply     = "Football bot commands:\n" +
		"/ping - check the bot is alive\n" +
		"/predict [YYYY-MM-DD] - high-confidence predictions for a day\n" +
		"/matches [YYYY-MM-DD] - fixtures for a day\n" +
		"/help - show this message"
)

// CommandService answers chat-style text commands. Commands accept a "/" or "!"
// prefix; ping, hello and hi also work bare.
type CommandService struct {
	cycles CycleRunner
}

func NewCommandService(cycles CycleRunner) *CommandService {
	return &CommandService{cycles: cycles}
}

func (s *CommandService) Handle(ctx context.Context, text string) (string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CommandService.Handle")
	defer span.End()

	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) == 0 {
		return "", fmt.Errorf("%w: empty command", ErrInvalidInput)
	}

	name := strings.ToLower(strings.TrimLeft(fields[0], "/!"))
	if i := strings.IndexByte(name, '@'); i > 0 {
		// Telegram group syntax: /predict@botname.
		name = name[:i]
	}
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch name {
	case "ping":
		return pongReply, nil
	case "hello", "hi":
		return greetingReply, nil
	case "help", "start":
		return helpReply, nil
	case "predict":
		if s.cycles == nil {
			return "", fmt.Errorf("%w: prediction cycle is not configured", ErrDependencyUnavailable)
		}
		result, err := s.cycles.RunCycle(ctx, RunCycleInput{Date: arg})
		if err != nil {
			return "", err
		}
		return result.Report, nil
	case "matches":
		if s.cycles == nil {
			return "", fmt.Errorf("%w: prediction cycle is not configured", ErrDependencyUnavailable)
		}
		day, items, err := s.cycles.ListFixtures(ctx, arg)
		if err != nil {
			return "", err
		}
		return FormatFixtureList(day, items), nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownCommand, fields[0])
	}
}
