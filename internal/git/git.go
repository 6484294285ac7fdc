// Package git provides shell-based wrappers for the git CLI.
// It backs the task store's revision log: every saved document is staged and
// committed so the collection has an audit trail.
// It uses os/exec instead of go-git to ensure compatibility with the user's
// git config, hooks, and signing settings.
package git

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Common errors returned by git operations.
var (
	ErrGitNotInstalled  = errors.New("git is not installed or not in PATH")
	ErrNotGitRepository = errors.New("not a git repository")
	ErrNothingToCommit  = errors.New("nothing to commit")
)

const (
	// DefaultAuthorName is used when the data repository has no user.name configured.
	DefaultAuthorName = "tasklane"
	// DefaultAuthorEmail is used when the data repository has no user.email configured.
	DefaultAuthorEmail = "tasklane@localhost"
)

// Commander is an interface for executing commands.
// This allows mocking in tests.
type Commander interface {
	Run(name string, args ...string) (string, error)
	RunInDir(dir, name string, args ...string) (string, error)
}

// ShellCommander executes real shell commands.
type ShellCommander struct{}

// Run executes a command in the current directory.
func (c *ShellCommander) Run(name string, args ...string) (string, error) {
	return c.RunInDir("", name, args...)
}

// RunInDir executes a command in the specified directory.
func (c *ShellCommander) RunInDir(dir, name string, args ...string) (string, error) {
	cmd := exec.Command(name, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		// Include output in error for debugging; git prints "nothing to commit" on stdout
		errMsg := strings.TrimSpace(stderr.String() + " " + stdout.String())
		if errMsg != "" {
			return "", fmt.Errorf("%w: %s", err, errMsg)
		}
		return "", err
	}
	return strings.TrimSpace(stdout.String()), nil
}

// Client wraps git CLI operations for a single working directory.
type Client struct {
	commander Commander
	workDir   string
}

// NewClient creates a new git client for the given directory.
func NewClient(workDir string) *Client {
	return &Client{
		commander: &ShellCommander{},
		workDir:   workDir,
	}
}

// NewClientWithCommander creates a client with a custom commander (for testing).
func NewClientWithCommander(workDir string, commander Commander) *Client {
	return &Client{
		commander: commander,
		workDir:   workDir,
	}
}

// IsGitInstalled checks if git binary is available in PATH.
func (c *Client) IsGitInstalled() bool {
	_, err := c.commander.Run("git", "--version")
	return err == nil
}

// IsRepository checks if the working directory is the top level of a git repository.
// A data directory nested inside a project checkout is not treated as its own repository.
func (c *Client) IsRepository() bool {
	out, err := c.commander.RunInDir(c.workDir, "git", "rev-parse", "--show-cdup")
	return err == nil && out == ""
}

// IsDirty checks if the working directory has uncommitted changes.
func (c *Client) IsDirty() (bool, error) {
	output, err := c.commander.RunInDir(c.workDir, "git", "status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("check dirty state: %w", err)
	}
	return output != "", nil
}

// Init creates an empty repository in the working directory.
func (c *Client) Init() error {
	if _, err := c.commander.RunInDir(c.workDir, "git", "init"); err != nil {
		return fmt.Errorf("init repository: %w", err)
	}
	return nil
}

// EnsureInitialized makes sure the working directory is a repository with a usable
// commit identity. It is idempotent.
func (c *Client) EnsureInitialized() error {
	if !c.IsGitInstalled() {
		return ErrGitNotInstalled
	}
	if !c.IsRepository() {
		if err := c.Init(); err != nil {
			return err
		}
	}
	if err := c.ensureConfig("user.name", DefaultAuthorName); err != nil {
		return err
	}
	return c.ensureConfig("user.email", DefaultAuthorEmail)
}

func (c *Client) ensureConfig(key, fallback string) error {
	if out, err := c.commander.RunInDir(c.workDir, "git", "config", "--get", key); err == nil && out != "" {
		return nil
	}
	if _, err := c.commander.RunInDir(c.workDir, "git", "config", key, fallback); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Add stages files for commit.
func (c *Client) Add(paths ...string) error {
	args := append([]string{"add"}, paths...)
	_, err := c.commander.RunInDir(c.workDir, "git", args...)
	if err != nil {
		return fmt.Errorf("add files: %w", err)
	}
	return nil
}

// StageAll stages all changes.
func (c *Client) StageAll() error {
	return c.Add("--all", ".")
}

// Commit creates a commit with the given message.
// Returns ErrNothingToCommit when the index has no changes.
func (c *Client) Commit(message string) error {
	_, err := c.commander.RunInDir(c.workDir, "git", "commit", "-m", message)
	if err != nil {
		if strings.Contains(err.Error(), "nothing to commit") {
			return ErrNothingToCommit
		}
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Revision is a single entry in the revision log.
type Revision struct {
	Hash      string
	Timestamp time.Time
	Message   string
}

// Log returns up to limit most recent revisions, newest first.
func (c *Client) Log(limit int) ([]Revision, error) {
	if limit <= 0 {
		limit = 20
	}
	output, err := c.commander.RunInDir(c.workDir, "git", "log", fmt.Sprintf("-n%d", limit), "--format=%H|%aI|%s")
	if err != nil {
		if strings.Contains(err.Error(), "does not have any commits") {
			return nil, nil
		}
		return nil, fmt.Errorf("read log: %w", err)
	}
	return parseLog(output), nil
}

func parseLog(output string) []Revision {
	var revs []Revision
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "|", 3)
		if len(parts) != 3 {
			continue
		}
		ts, err := time.Parse(time.RFC3339, parts[1])
		if err != nil {
			continue
		}
		revs = append(revs, Revision{Hash: parts[0], Timestamp: ts, Message: parts[2]})
	}
	return revs
}
