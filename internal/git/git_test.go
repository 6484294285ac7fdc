package git

import (
	"errors"
	"strings"
	"testing"
)

// MockCommander is a test double for Commander that records calls and returns configured responses.
type MockCommander struct {
	// Calls records all commands that were executed
	Calls []MockCall
	// Responses maps command strings to their outputs/errors
	Responses map[string]MockResponse
}

// MockCall records a single command invocation.
type MockCall struct {
	Dir  string
	Name string
	Args []string
}

// MockResponse holds the output and error for a mocked command.
type MockResponse struct {
	Output string
	Error  error
}

// NewMockCommander creates a mock commander with pre-configured responses.
func NewMockCommander() *MockCommander {
	return &MockCommander{
		Responses: make(map[string]MockResponse),
	}
}

// Run implements Commander.Run
func (m *MockCommander) Run(name string, args ...string) (string, error) {
	return m.RunInDir("", name, args...)
}

// RunInDir implements Commander.RunInDir
func (m *MockCommander) RunInDir(dir, name string, args ...string) (string, error) {
	m.Calls = append(m.Calls, MockCall{Dir: dir, Name: name, Args: args})

	key := name + " " + strings.Join(args, " ")
	if resp, ok := m.Responses[key]; ok {
		return resp.Output, resp.Error
	}
	// Default: command succeeds with empty output
	return "", nil
}

// SetResponse configures the response for a command.
func (m *MockCommander) SetResponse(cmd string, output string, err error) {
	m.Responses[cmd] = MockResponse{Output: output, Error: err}
}

// LastCall returns the most recent command call.
func (m *MockCommander) LastCall() *MockCall {
	if len(m.Calls) == 0 {
		return nil
	}
	return &m.Calls[len(m.Calls)-1]
}

// called reports whether the exact command was executed.
func (m *MockCommander) called(cmd string) bool {
	for _, c := range m.Calls {
		if c.Name+" "+strings.Join(c.Args, " ") == cmd {
			return true
		}
	}
	return false
}

func TestIsGitInstalled(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(*MockCommander)
		expected bool
	}{
		{
			name: "git is installed",
			setup: func(m *MockCommander) {
				m.SetResponse("git --version", "git version 2.40.0", nil)
			},
			expected: true,
		},
		{
			name: "git is not installed",
			setup: func(m *MockCommander) {
				m.SetResponse("git --version", "", errors.New("executable not found"))
			},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockCommander()
			tt.setup(mock)
			client := NewClientWithCommander("/data", mock)

			if got := client.IsGitInstalled(); got != tt.expected {
				t.Errorf("IsGitInstalled() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIsRepository(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		err      error
		expected bool
	}{
		{name: "top level of repository", output: "", expected: true},
		{name: "nested inside another checkout", output: "../", expected: false},
		{name: "not a repository", err: errors.New("fatal: not a git repository"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockCommander()
			mock.SetResponse("git rev-parse --show-cdup", tt.output, tt.err)
			client := NewClientWithCommander("/data", mock)

			if got := client.IsRepository(); got != tt.expected {
				t.Errorf("IsRepository() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestEnsureInitialized(t *testing.T) {
	t.Run("initializes a fresh directory and sets identity", func(t *testing.T) {
		mock := NewMockCommander()
		mock.SetResponse("git rev-parse --show-cdup", "", errors.New("not a git repository"))
		mock.SetResponse("git config --get user.name", "", errors.New("exit status 1"))
		mock.SetResponse("git config --get user.email", "", errors.New("exit status 1"))
		client := NewClientWithCommander("/data", mock)

		if err := client.EnsureInitialized(); err != nil {
			t.Fatalf("EnsureInitialized() error = %v", err)
		}
		for _, want := range []string{
			"git init",
			"git config user.name " + DefaultAuthorName,
			"git config user.email " + DefaultAuthorEmail,
		} {
			if !mock.called(want) {
				t.Errorf("expected %q to be called", want)
			}
		}
		for _, c := range mock.Calls {
			if c.Name == "git" && c.Dir != "" && c.Dir != "/data" {
				t.Errorf("command ran in %q, want /data", c.Dir)
			}
		}
	})

	t.Run("existing repository with identity is left alone", func(t *testing.T) {
		mock := NewMockCommander()
		mock.SetResponse("git config --get user.name", "Ada", nil)
		mock.SetResponse("git config --get user.email", "ada@example.com", nil)
		client := NewClientWithCommander("/data", mock)

		if err := client.EnsureInitialized(); err != nil {
			t.Fatalf("EnsureInitialized() error = %v", err)
		}
		if mock.called("git init") {
			t.Error("git init should not run for an existing repository")
		}
		if mock.called("git config user.name " + DefaultAuthorName) {
			t.Error("existing identity should not be overwritten")
		}
	})

	t.Run("git missing", func(t *testing.T) {
		mock := NewMockCommander()
		mock.SetResponse("git --version", "", errors.New("executable not found"))
		client := NewClientWithCommander("/data", mock)

		if err := client.EnsureInitialized(); !errors.Is(err, ErrGitNotInstalled) {
			t.Errorf("EnsureInitialized() error = %v, want ErrGitNotInstalled", err)
		}
	})
}

func TestStageAllAndCommit(t *testing.T) {
	mock := NewMockCommander()
	client := NewClientWithCommander("/data", mock)

	if err := client.StageAll(); err != nil {
		t.Fatalf("StageAll() error = %v", err)
	}
	if !mock.called("git add --all .") {
		t.Error("expected git add --all .")
	}

	if err := client.Commit("Add task: Write docs"); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	last := mock.LastCall()
	if last == nil || strings.Join(last.Args, " ") != "commit -m Add task: Write docs" {
		t.Errorf("unexpected last call: %+v", last)
	}
}

func TestCommit_NothingToCommit(t *testing.T) {
	mock := NewMockCommander()
	mock.SetResponse("git commit -m noop", "", errors.New("exit status 1: nothing to commit, working tree clean"))
	client := NewClientWithCommander("/data", mock)

	if err := client.Commit("noop"); !errors.Is(err, ErrNothingToCommit) {
		t.Errorf("Commit() error = %v, want ErrNothingToCommit", err)
	}
}

func TestLog(t *testing.T) {
	mock := NewMockCommander()
	mock.SetResponse("git log -n2 --format=%H|%aI|%s",
		"abc123|2025-03-02T10:00:00Z|Update task: B\nbad line\ndef456|2025-03-01T09:00:00+01:00|Add task: A|with pipe", nil)
	client := NewClientWithCommander("/data", mock)

	revs, err := client.Log(2)
	if err != nil {
		t.Fatalf("Log() error = %v", err)
	}
	if len(revs) != 2 {
		t.Fatalf("expected 2 revisions, got %d", len(revs))
	}
	if revs[0].Hash != "abc123" || revs[0].Message != "Update task: B" {
		t.Errorf("unexpected first revision: %+v", revs[0])
	}
	if revs[1].Message != "Add task: A|with pipe" {
		t.Errorf("message with pipe not preserved: %q", revs[1].Message)
	}
}

func TestIsDirty(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		err     error
		want    bool
		wantErr bool
	}{
		{name: "clean", output: "", want: false},
		{name: "modified file", output: " M tasks.json", want: true},
		{name: "status fails", err: errors.New("exit status 128"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockCommander()
			mock.SetResponse("git status --porcelain", tt.output, tt.err)
			client := NewClientWithCommander("/data", mock)

			got, err := client.IsDirty()
			if (err != nil) != tt.wantErr {
				t.Fatalf("IsDirty() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("IsDirty() = %v, want %v", got, tt.want)
			}
		})
	}
}
