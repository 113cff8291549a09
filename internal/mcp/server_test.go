// SPDX-License-Identifier: MIT

// Handlers are exercised directly with hand-built requests; stdio transport
// is owned by mcp-go and not covered here.
package mcp

import (
	"context"
	"encoding/json"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/skaphos/gitfleet/internal/action"
	"github.com/skaphos/gitfleet/internal/engine"
	"github.com/skaphos/gitfleet/internal/model"
)

type stubProbe struct {
	states map[string]model.LocalState
}

func (p stubProbe) Inspect(_ context.Context, path string) (model.LocalState, error) {
	return p.states[path], nil
}

func (stubProbe) Refresh(context.Context, string) error { return nil }

type stubRunner struct {
	out string
	err error
}

func (r stubRunner) Run(context.Context, string, ...string) (string, error) {
	return r.out, r.err
}

func fleetRepos() []model.Repository {
	return []model.Repository{
		{ID: 1, Name: "widgets", FullName: "acme/widgets", Owner: "acme", DefaultBranch: "main", CloneURL: "https://github.com/acme/widgets.git"},
		{ID: 2, Name: "gadgets", FullName: "acme/gadgets", Owner: "acme", Fork: true, DefaultBranch: "main", CloneURL: "https://github.com/acme/gadgets.git"},
	}
}

func newTestServer(states map[string]model.LocalState, deps action.Deps) *Server {
	return NewServer(Config{
		Version: "test",
		Repos: func(context.Context) ([]model.Repository, error) {
			return fleetRepos(), nil
		},
		Engine:     engine.New(stubProbe{states: states}, nil),
		ActionDeps: deps,
		BaseDir:    "/fleet",
		AllowExec:  true,
	})
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	}
}

func resultText(result *mcp.CallToolResult) string {
	ExpectWithOffset(1, result.Content).To(HaveLen(1))
	text, ok := result.Content[0].(mcp.TextContent)
	ExpectWithOffset(1, ok).To(BeTrue())
	return text.Text
}

var _ = Describe("Server", func() {
	It("lists repositories with default filters", func() {
		s := newTestServer(nil, action.Deps{})

		result, err := s.handleList(context.Background(), callRequest("fleet_list", map[string]any{}))
		Expect(err).NotTo(HaveOccurred())

		var repos []model.Repository
		Expect(json.Unmarshal([]byte(resultText(result)), &repos)).To(Succeed())
		// Forks are dropped unless asked for.
		Expect(repos).To(HaveLen(1))
		Expect(repos[0].FullName).To(Equal("acme/widgets"))
	})

	It("includes forks on request", func() {
		s := newTestServer(nil, action.Deps{})

		result, err := s.handleList(context.Background(), callRequest("fleet_list", map[string]any{
			"include_forks": true,
		}))
		Expect(err).NotTo(HaveOccurred())

		var repos []model.Repository
		Expect(json.Unmarshal([]byte(resultText(result)), &repos)).To(Succeed())
		Expect(repos).To(HaveLen(2))
	})

	It("filters by name pattern", func() {
		s := newTestServer(nil, action.Deps{})

		result, err := s.handleList(context.Background(), callRequest("fleet_list", map[string]any{
			"pattern":       "gad*",
			"include_forks": true,
		}))
		Expect(err).NotTo(HaveOccurred())

		var repos []model.Repository
		Expect(json.Unmarshal([]byte(resultText(result)), &repos)).To(Succeed())
		Expect(repos).To(HaveLen(1))
		Expect(repos[0].Name).To(Equal("gadgets"))
	})

	It("surfaces invalid filter patterns", func() {
		s := newTestServer(nil, action.Deps{})

		_, err := s.handleList(context.Background(), callRequest("fleet_list", map[string]any{
			"pattern": "[",
		}))
		Expect(err).To(MatchError(ContainSubstring("invalid pattern")))
	})

	It("propagates repository loading failures", func() {
		s := NewServer(Config{
			Repos: func(context.Context) ([]model.Repository, error) {
				return nil, errors.New("rate limited")
			},
		})

		_, err := s.handleList(context.Background(), callRequest("fleet_list", map[string]any{}))
		Expect(err).To(MatchError(ContainSubstring("rate limited")))
	})

	It("reports status classifications", func() {
		states := map[string]model.LocalState{
			"/fleet/widgets": {Exists: true, Branch: "main", HasUpstream: true, Upstream: "origin/main", Behind: 2},
		}
		s := newTestServer(states, action.Deps{})

		result, err := s.handleStatus(context.Background(), callRequest("fleet_status", map[string]any{
			"no_fetch": true,
		}))
		Expect(err).NotTo(HaveOccurred())

		var summary model.BatchSummary
		Expect(json.Unmarshal([]byte(resultText(result)), &summary)).To(Succeed())
		Expect(summary.Action).To(Equal("status"))
		Expect(summary.Total).To(Equal(1))
		Expect(summary.Results[0].Status).To(Equal(model.StatusUnpulled))
	})

	It("plans a sync without mutating in dry-run", func() {
		s := newTestServer(nil, action.Deps{})

		result, err := s.handleSync(context.Background(), callRequest("fleet_sync", map[string]any{
			"dry_run": true,
		}))
		Expect(err).NotTo(HaveOccurred())

		var summary model.BatchSummary
		Expect(json.Unmarshal([]byte(resultText(result)), &summary)).To(Succeed())
		Expect(summary.Skipped).To(Equal(1))
		Expect(summary.Results[0].Message).To(Equal("would run git clone https://github.com/acme/widgets.git"))
	})

	It("runs shell commands across checkouts", func() {
		states := map[string]model.LocalState{
			"/fleet/widgets": {Exists: true, Branch: "main", HasUpstream: true, Upstream: "origin/main"},
		}
		s := newTestServer(states, action.Deps{Sh: stubRunner{out: "build ok\nwarnings: 0"}})

		result, err := s.handleExec(context.Background(), callRequest("fleet_exec", map[string]any{
			"command": "make build",
		}))
		Expect(err).NotTo(HaveOccurred())

		var summary model.BatchSummary
		Expect(json.Unmarshal([]byte(resultText(result)), &summary)).To(Succeed())
		Expect(summary.Succeeded).To(Equal(1))
		Expect(summary.Results[0].Message).To(Equal("build ok"))
	})

	It("rejects an empty exec command", func() {
		s := newTestServer(nil, action.Deps{})

		_, err := s.handleExec(context.Background(), callRequest("fleet_exec", map[string]any{
			"command": "   ",
		}))
		Expect(err).To(MatchError(ContainSubstring("missing command argument")))
	})
})
