package usecase

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/riskibarqy/go-commitrewrite/internal/commit"
	"github.com/riskibarqy/go-commitrewrite/internal/prompt"
)

// ErrCompletion marks failures of the remote rewrite call.
var ErrCompletion = errors.New("completion failed")

// Inspector is the read-only view of the repository the rewrite needs.
type Inspector interface {
	RecentSubjects(ctx context.Context, n int) ([]string, error)
	StagedFiles(ctx context.Context) ([]string, error)
	StagedDiff(ctx context.Context) (string, error)
}

// Completer turns a system instruction and a user message into a reply.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Service orchestrates the rewrite of a commit message.
type Service struct {
	Repo Inspector
	LLM  Completer
}

// Options is the part of the configuration the rewrite needs.
type Options struct {
	MaxCommits int
	Message    string
}

// Result captures the outputs of the use case.
type Result struct {
	Message           string
	Scopes            []string
	SuspectedBreaking bool
	StagedFiles       []string
	Prompt            string
}

// NewService constructs a Service with the provided dependencies.
func NewService(repo Inspector, llm Completer) *Service {
	return &Service{Repo: repo, LLM: llm}
}

// Execute gathers repository context, asks the model for a rewrite and
// returns it with code fences removed. Repository lookups never fail the run.
func (s *Service) Execute(ctx context.Context, opts Options) (Result, error) {
	if s == nil || s.Repo == nil || s.LLM == nil {
		return Result{}, errors.New("service not properly initialized")
	}
	log := otelzap.Ctx(ctx)

	subjects, err := s.Repo.RecentSubjects(ctx, opts.MaxCommits)
	if err != nil {
		log.Debug("Reading commit history failed", zap.Error(err))
		subjects = nil
	}
	scopes := commit.ExtractScopes(subjects).Sorted()

	diff, err := s.Repo.StagedDiff(ctx)
	if err != nil {
		log.Debug("Reading staged diff failed", zap.Error(err))
		diff = ""
	}

	files, err := s.Repo.StagedFiles(ctx)
	if err != nil {
		log.Debug("Listing staged files failed", zap.Error(err))
		files = nil
	}

	suspected := false
	if strings.TrimSpace(diff) != "" {
		if m, ok := commit.MatchBreakingChange(diff, commit.PublicSymbolPatterns); ok {
			suspected = true
			log.Debug("Removed public symbol",
				zap.String("pattern", m.Pattern.Name),
				zap.String("line", m.Line))
		}
	}

	log.Debug("Collected repository context",
		zap.Int("subjects", len(subjects)),
		zap.Strings("scopes", scopes),
		zap.Int("staged_files", len(files)),
		zap.Bool("suspected_breaking", suspected))

	system := prompt.System(prompt.Input{
		Scopes:            scopes,
		SuspectedBreaking: suspected,
		StagedFiles:       files,
	})

	raw, err := s.LLM.Complete(ctx, system, opts.Message)
	if err != nil {
		return Result{}, errors.Mark(err, ErrCompletion)
	}

	message := commit.StripFences(raw)
	if h, ok := commit.ParseHeader(message); !ok || !commit.IsKnownType(h.Type) {
		log.Warn("Rewritten message does not start with a conventional header",
			zap.String("headline", commit.SplitMessage(message).Headline))
	}
	if suspected && !commit.DeclaresBreakingChange(message) {
		log.Warn("Removed public symbols detected but the message declares no breaking change")
	}

	return Result{
		Message:           message,
		Scopes:            scopes,
		SuspectedBreaking: suspected,
		StagedFiles:       files,
		Prompt:            system,
	}, nil
}
