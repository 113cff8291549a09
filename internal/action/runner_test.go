package action_test

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/skaphos/gitfleet/internal/execx"
	"github.com/skaphos/gitfleet/internal/gitx"
	"github.com/skaphos/gitfleet/internal/model"
)

// MockRunner implements gitx.Runner and execx.Runner for testing.
type MockRunner struct {
	// Responses maps "dir:args" keys to (output, error) pairs.
	Responses map[string]MockResponse

	mu    sync.Mutex
	calls []string
}

var (
	_ gitx.Runner  = (*MockRunner)(nil)
	_ execx.Runner = (*MockRunner)(nil)
)

type MockResponse struct {
	Output string
	Err    error
}

func (m *MockRunner) Run(_ context.Context, dir string, args ...string) (string, error) {
	key := dir + ":" + strings.Join(args, " ")
	m.mu.Lock()
	m.calls = append(m.calls, key)
	m.mu.Unlock()
	if resp, ok := m.Responses[key]; ok {
		return resp.Output, resp.Err
	}
	return "", fmt.Errorf("unexpected call: dir=%q args=%v", dir, args)
}

// Calls returns every "dir:args" key Run has seen, in order.
func (m *MockRunner) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

func testRepo() model.Repository {
	return model.Repository{
		ID:            101,
		Name:          "widgets",
		FullName:      "acme/widgets",
		Owner:         "acme",
		DefaultBranch: "main",
		SSHURL:        "git@github.com:acme/widgets.git",
		CloneURL:      "https://github.com/acme/widgets.git",
	}
}
