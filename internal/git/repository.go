package git

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/riskibarqy/go-commitrewrite/internal/util"
)

// Repository exposes git operations required by the application.
type Repository interface {
	RecentSubjects(ctx context.Context, n int) ([]string, error)
	StagedFiles(ctx context.Context) ([]string, error)
	StagedDiff(ctx context.Context) (string, error)
	Commit(ctx context.Context, headline, body string) error
	WriteHook(path, message string) error
}

// CLIRepository executes git commands through the local CLI.
type CLIRepository struct {
	// Dir is the working directory for git; empty means the process cwd.
	Dir  string
	Exec func(ctx context.Context, name string, args ...string) *exec.Cmd
	// Output receives what `git commit` prints. Nil discards it.
	Output io.Writer
}

// NewCLIRepository returns a concrete Repository backed by the system git binary.
func NewCLIRepository(dir string) *CLIRepository {
	return &CLIRepository{
		Dir:    dir,
		Output: os.Stderr,
		Exec: func(ctx context.Context, name string, args ...string) *exec.Cmd {
			return exec.CommandContext(ctx, name, args...)
		},
	}
}

// RecentSubjects returns the subject lines of the last n commits, most recent first.
// It fails outside a repository or before the first commit.
func (r *CLIRepository) RecentSubjects(ctx context.Context, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	out, err := r.run(ctx, "log", "-n"+strconv.Itoa(n), "--pretty=format:%s")
	if err != nil {
		return nil, err
	}
	return util.NonEmptyLines(out), nil
}

// StagedFiles lists the paths staged for commit in git's order.
func (r *CLIRepository) StagedFiles(ctx context.Context) ([]string, error) {
	out, err := r.run(ctx, "diff", "--cached", "--name-only")
	if err != nil {
		return nil, err
	}
	return util.NonEmptyLines(out), nil
}

// StagedDiff returns the unified diff of the staged changes.
func (r *CLIRepository) StagedDiff(ctx context.Context) (string, error) {
	return r.run(ctx, "diff", "--cached")
}

// Commit records the staged changes with the given message.
func (r *CLIRepository) Commit(ctx context.Context, headline, body string) error {
	if strings.TrimSpace(headline) == "" {
		return errors.New("empty headline")
	}

	args := []string{"commit", "-m", headline}
	if strings.TrimSpace(body) != "" {
		args = append(args, "-m", body)
	}

	cmd := r.command(ctx, args...)
	cmd.Stdout = r.Output
	cmd.Stderr = r.Output
	if err := cmd.Run(); err != nil {
		return errors.Wrap(err, "git commit")
	}
	return nil
}

// WriteHook writes message into a commit message file such as .git/COMMIT_EDITMSG.
func (r *CLIRepository) WriteHook(path, message string) error {
	if err := os.WriteFile(path, []byte(message+"\n"), 0o644); err != nil {
		return errors.Wrapf(err, "write commit message file %s", path)
	}
	return nil
}

func (r *CLIRepository) command(ctx context.Context, args ...string) *exec.Cmd {
	cmd := r.Exec(ctx, "git", args...)
	if r.Dir != "" {
		cmd.Dir = r.Dir
	}
	return cmd
}

func (r *CLIRepository) run(ctx context.Context, args ...string) (string, error) {
	otelzap.Ctx(ctx).Debug("Running git", zap.Strings("args", args), zap.String("dir", r.Dir))

	cmd := r.command(ctx, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", errors.Wrapf(err, "git %s: %s", strings.Join(args, " "), strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
