// Package cli wires configuration, logging, git and the completion client
// into the commitrewrite command.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/riskibarqy/go-commitrewrite/internal/commit"
	"github.com/riskibarqy/go-commitrewrite/internal/config"
	"github.com/riskibarqy/go-commitrewrite/internal/git"
	"github.com/riskibarqy/go-commitrewrite/internal/logger"
	"github.com/riskibarqy/go-commitrewrite/internal/openai"
	"github.com/riskibarqy/go-commitrewrite/internal/usecase"
	"github.com/riskibarqy/go-commitrewrite/internal/util"
)

// ErrUsage is returned when the command is invoked without a message.
var ErrUsage = errors.New("missing commit message")

// UsageLine is printed on stdout when no message is given.
const UsageLine = "Usage: commitrewrite [flags] <commit-message>"

// App holds the collaborators of one invocation. Zero fields fall back to
// the real git CLI, the OpenAI client and the process streams.
type App struct {
	Repo         git.Repository
	NewCompleter func(opts config.Options) (usecase.Completer, error)
	Stdout       io.Writer
	Stderr       io.Writer
}

// Execute runs the command with the process arguments and returns the exit code.
func Execute() int {
	app := &App{Stdout: os.Stdout, Stderr: os.Stderr}
	return app.Run(context.Background(), os.Args[1:])
}

// Run executes the command with args and maps the outcome to an exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	a.defaults()

	if args == nil {
		args = []string{}
	}
	cmd := a.NewRootCommand()
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		a.report(err)
		return 1
	}
	return 0
}

// NewRootCommand builds the cobra command. Flags stop at the first message
// word so that words starting with "-" stay part of the message.
func (a *App) NewRootCommand() *cobra.Command {
	a.defaults()

	cmd := &cobra.Command{
		Use:   "commitrewrite [flags] <commit-message>",
		Short: "Rewrite a commit message as a Conventional Commit",
		Long: `commitrewrite turns a free-form commit message into a Conventional Commit
message. Scopes used in recent history, the staged files and a breaking
change hint from the staged diff are passed to the model as context.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.rewrite(cmd, args)
		},
	}
	cmd.SetOut(a.Stdout)
	cmd.SetErr(a.Stderr)
	cmd.Flags().SetInterspersed(false)
	config.RegisterFlags(cmd.Flags())
	return cmd
}

func (a *App) rewrite(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}
	message := strings.Join(args, " ")

	opts, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}

	level, err := logger.ParseLevel(opts.LogLevel)
	if err != nil {
		return err
	}
	log := logger.New(level, a.Stderr).With(zap.String("run_id", logger.GenerateRunID()))
	defer func() { _ = log.Sync() }()
	restore := logger.Install(log)
	defer restore()

	ctx := cmd.Context()
	if err := opts.Validate(); err != nil {
		return err
	}
	otelzap.Ctx(ctx).Debug("Configuration loaded",
		zap.String("model", opts.Model),
		zap.String("base_url", opts.BaseURL),
		zap.Int("max_commits", opts.MaxCommits),
		zap.String("env_file", opts.EnvFile),
		zap.String("settings_file", opts.SettingsFile))

	llm, err := a.NewCompleter(opts)
	if err != nil {
		return err
	}

	svc := usecase.NewService(a.Repo, llm)
	var result usecase.Result
	err = logger.WithCommandLogging(ctx, "rewrite", func() error {
		var runErr error
		result, runErr = svc.Execute(ctx, usecase.Options{
			MaxCommits: opts.MaxCommits,
			Message:    message,
		})
		return runErr
	})
	if err != nil {
		return err
	}
	msg := commit.SplitMessage(result.Message)
	otelzap.Ctx(ctx).Info("Message rewritten", zap.String("headline", util.Abbreviate(msg.Headline, 72)))

	if opts.HookPath != "" {
		if err := a.Repo.WriteHook(opts.HookPath, msg.String()); err != nil {
			return err
		}
	}
	if opts.Commit {
		if err := a.Repo.Commit(ctx, msg.Headline, msg.Body); err != nil {
			return err
		}
	}

	_, err = fmt.Fprintln(a.Stdout, result.Message)
	return err
}

// report prints the diagnostic for err. Diagnostics share stdout with the
// message; hints go to stderr.
func (a *App) report(err error) {
	switch {
	case errors.Is(err, ErrUsage):
		fmt.Fprintln(a.Stdout, UsageLine)
	case errors.Is(err, config.ErrMissingAPIKey):
		fmt.Fprintln(a.Stdout, "Error: OPENAI_API_KEY is not set.")
	case errors.Is(err, usecase.ErrCompletion):
		fmt.Fprintf(a.Stdout, "Error calling OpenAI API: %v\n", err)
	default:
		fmt.Fprintf(a.Stdout, "Error: %v\n", err)
	}
	for _, hint := range errors.GetAllHints(err) {
		fmt.Fprintf(a.Stderr, "Hint: %s\n", hint)
	}
}

func (a *App) defaults() {
	if a.Stdout == nil {
		a.Stdout = os.Stdout
	}
	if a.Stderr == nil {
		a.Stderr = os.Stderr
	}
	if a.Repo == nil {
		repo := git.NewCLIRepository("")
		repo.Output = a.Stderr
		a.Repo = repo
	}
	if a.NewCompleter == nil {
		a.NewCompleter = newOpenAICompleter
	}
}

func newOpenAICompleter(opts config.Options) (usecase.Completer, error) {
	client, err := openai.NewClient(openai.Config{
		APIKey:      opts.APIKey,
		BaseURL:     opts.BaseURL,
		Model:       opts.Model,
		Temperature: opts.Temperature,
		Timeout:     opts.Timeout,
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}
