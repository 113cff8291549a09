// SPDX-License-Identifier: MIT

// Package mcp exposes the fleet over the Model Context Protocol so
// assistants can inspect and synchronize checkouts through gitfleet
// instead of shelling out to raw git.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/skaphos/gitfleet/internal/action"
	"github.com/skaphos/gitfleet/internal/engine"
	"github.com/skaphos/gitfleet/internal/filter"
	"github.com/skaphos/gitfleet/internal/model"
	"github.com/skaphos/gitfleet/internal/strutil"
)

// Config wires the server to the rest of the CLI.
type Config struct {
	// Version is reported to MCP clients during initialization.
	Version string
	// Repos loads the repository set the tools operate on.
	Repos func(ctx context.Context) ([]model.Repository, error)
	// Engine runs batches. Nil means a fresh engine with the default git
	// probe and no progress reporting.
	Engine *engine.Engine
	// ActionDeps carries the tool runners for constructed actions.
	ActionDeps action.Deps
	// BaseDir is the checkout directory for batch runs.
	BaseDir string
	// Workers bounds batch concurrency.
	Workers int
	// AllowExec registers the fleet_exec tool. Off by default because it
	// runs arbitrary shell commands in every checkout.
	AllowExec bool
}

// Server is the stdio MCP server behind `gitfleet mcp`.
type Server struct {
	srv *server.MCPServer
	cfg Config
}

// NewServer creates the server and registers its tools.
func NewServer(cfg Config) *Server {
	if cfg.Engine == nil {
		cfg.Engine = engine.New(nil, nil)
	}
	s := &Server{
		srv: server.NewMCPServer("gitfleet", cfg.Version, server.WithLogging()),
		cfg: cfg,
	}
	s.registerTools()
	return s
}

// Serve runs the server on stdio until the client disconnects.
func (s *Server) Serve() error {
	return server.ServeStdio(s.srv)
}

func (s *Server) registerTools() {
	s.srv.AddTool(mcp.NewTool("fleet_list",
		mcp.WithDescription("List the GitHub repositories in the fleet, optionally filtered"),
		mcp.WithString("repo",
			mcp.Description("Comma-separated repository names or owner/name pairs (optional)"),
		),
		mcp.WithString("org",
			mcp.Description("Only repositories owned by this user or organization (optional)"),
		),
		mcp.WithString("pattern",
			mcp.Description("Glob pattern matched against repository names (optional)"),
		),
		mcp.WithBoolean("include_forks",
			mcp.Description("Include forked repositories (optional)"),
		),
		mcp.WithBoolean("include_archived",
			mcp.Description("Include archived repositories (optional)"),
		),
	), s.handleList)

	s.srv.AddTool(mcp.NewTool("fleet_status",
		mcp.WithDescription("Classify each local checkout against its upstream"),
		mcp.WithString("repo",
			mcp.Description("Comma-separated repository names or owner/name pairs (optional)"),
		),
		mcp.WithString("pattern",
			mcp.Description("Glob pattern matched against repository names (optional)"),
		),
		mcp.WithBoolean("no_fetch",
			mcp.Description("Classify against cached tracking refs without fetching (optional)"),
		),
	), s.handleStatus)

	s.srv.AddTool(mcp.NewTool("fleet_sync",
		mcp.WithDescription("Clone missing repositories and fast-forward existing ones"),
		mcp.WithString("repo",
			mcp.Description("Comma-separated repository names or owner/name pairs (optional)"),
		),
		mcp.WithString("pattern",
			mcp.Description("Glob pattern matched against repository names (optional)"),
		),
		mcp.WithBoolean("dry_run",
			mcp.Description("Report planned commands without running them (optional)"),
		),
	), s.handleSync)

	if s.cfg.AllowExec {
		s.srv.AddTool(mcp.NewTool("fleet_exec",
			mcp.WithDescription("Run a shell command in every checkout"),
			mcp.WithString("command",
				mcp.Description("Command passed to sh -c in each repository"),
				mcp.Required(),
			),
			mcp.WithString("repo",
				mcp.Description("Comma-separated repository names or owner/name pairs (optional)"),
			),
			mcp.WithString("pattern",
				mcp.Description("Glob pattern matched against repository names (optional)"),
			),
			mcp.WithBoolean("dry_run",
				mcp.Description("Report planned commands without running them (optional)"),
			),
		), s.handleExec)
	}
}

func (s *Server) handleList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repos, err := s.filteredRepos(ctx, request.GetArguments())
	if err != nil {
		return nil, err
	}
	return jsonResult(repos)
}

func (s *Server) handleStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	repos, err := s.filteredRepos(ctx, args)
	if err != nil {
		return nil, err
	}
	summary := s.cfg.Engine.Run(ctx, action.NewStatus(), repos, s.batchOptions(engine.Options{
		NoRefresh: boolArg(args, "no_fetch"),
	}))
	return jsonResult(summary)
}

func (s *Server) handleSync(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	repos, err := s.filteredRepos(ctx, args)
	if err != nil {
		return nil, err
	}
	summary := s.cfg.Engine.Run(ctx, action.NewSync(s.cfg.ActionDeps), repos, s.batchOptions(engine.Options{
		DryRun: boolArg(args, "dry_run"),
	}))
	return jsonResult(summary)
}

func (s *Server) handleExec(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	command, _ := args["command"].(string)
	if strings.TrimSpace(command) == "" {
		return nil, fmt.Errorf("invalid or missing command argument")
	}
	repos, err := s.filteredRepos(ctx, args)
	if err != nil {
		return nil, err
	}
	summary := s.cfg.Engine.Run(ctx, action.NewShell(s.cfg.ActionDeps, command), repos, s.batchOptions(engine.Options{
		DryRun: boolArg(args, "dry_run"),
	}))
	return jsonResult(summary)
}

// filteredRepos loads the fleet and applies the shared filter arguments.
func (s *Server) filteredRepos(ctx context.Context, args map[string]any) ([]model.Repository, error) {
	repos, err := s.cfg.Repos(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading repositories: %w", err)
	}

	opts := filter.Options{
		IncludeForks:    boolArg(args, "include_forks"),
		IncludeArchived: boolArg(args, "include_archived"),
	}
	if repo := stringArg(args, "repo"); repo != "" {
		opts.Names = strutil.SplitCSV(repo)
	}
	if org := stringArg(args, "org"); org != "" {
		opts.Orgs = strutil.SplitCSV(org)
	}
	if pattern := stringArg(args, "pattern"); pattern != "" {
		opts.Patterns = []string{pattern}
	}
	pred, err := opts.Build()
	if err != nil {
		return nil, fmt.Errorf("invalid filter: %w", err)
	}
	return filter.Apply(pred, repos), nil
}

func (s *Server) batchOptions(opts engine.Options) engine.Options {
	opts.BaseDir = s.cfg.BaseDir
	opts.Workers = s.cfg.Workers
	return opts
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: string(data),
			},
		},
	}, nil
}

func stringArg(args map[string]any, name string) string {
	v, _ := args[name].(string)
	return v
}

func boolArg(args map[string]any, name string) bool {
	v, _ := args[name].(bool)
	return v
}
