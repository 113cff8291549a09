// SPDX-License-Identifier: MIT
package gitfleet

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/skaphos/gitfleet/internal/config"
	"github.com/skaphos/gitfleet/internal/filter"
	"github.com/skaphos/gitfleet/internal/github"
	"github.com/skaphos/gitfleet/internal/model"
	"github.com/skaphos/gitfleet/internal/registry"
	"github.com/skaphos/gitfleet/internal/sortutil"
)

// fleetSource resolves the repository set a command operates on: config,
// environment, the GitHub API, and the snapshot cache for offline runs.
type fleetSource struct {
	cfg       *config.Config
	cfgPath   string
	baseDir   string
	token     string
	cachePath string
	cached    bool
	username  string
}

func newFleetSource(cmd *cobra.Command) (*fleetSource, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	cfgPath, err := config.ResolveConfigPath(flagConfig, cwd)
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		return nil, err
	}
	debugf(cmd, "using config %s", cfgPath)

	if envPath, err := config.LoadDotEnv(cwd); err == nil && envPath != "" {
		debugf(cmd, "loaded %s", envPath)
	}
	config.ApplyEnv(cfg)

	baseDir, err := config.ResolveBaseDir(getStringFlag(cmd, "dir"), cfg)
	if err != nil {
		return nil, err
	}
	if err := config.GuardBaseDir(baseDir); err != nil {
		return nil, err
	}
	cachePath, err := registry.ResolvePath(cfg.CachePath)
	if err != nil {
		return nil, err
	}

	return &fleetSource{
		cfg:       cfg,
		cfgPath:   cfgPath,
		baseDir:   baseDir,
		token:     config.Token(),
		cachePath: cachePath,
		cached:    getBoolFlag(cmd, "cached"),
		username:  cfg.Username,
	}, nil
}

// Authenticated reports whether a GitHub token is configured.
func (f *fleetSource) Authenticated() bool { return f.token != "" }

// Repositories returns the account's repository set, from the snapshot
// cache with --cached and from the GitHub API otherwise. Live discoveries
// are written back to the cache so later --cached runs work offline.
func (f *fleetSource) Repositories(ctx context.Context, cmd *cobra.Command) ([]model.Repository, error) {
	if f.cached {
		snap, err := registry.Load(ctx, f.cachePath)
		if err != nil {
			return nil, err
		}
		if snap.IsStale(f.cfg.CacheStaleDays) {
			infof(cmd, "snapshot cache is %s old; run without --cached to refresh", snap.Age().Round(time.Hour))
		}
		if !snap.Authenticated && f.Authenticated() {
			infof(cmd, "snapshot cache was fetched without a token and misses private repositories")
		}
		if f.username == "" {
			f.username = snap.Username
		}
		return snap.Repos, nil
	}

	client := github.New(github.Options{
		Token:      f.token,
		Username:   f.username,
		HTTPClient: discoveryHTTPClient(f.cfg),
	})
	debugf(cmd, "fetching repositories from GitHub")
	repos, err := client.ListRepositories(ctx)
	if err != nil {
		return nil, err
	}
	if f.username == "" && client.Authenticated() {
		if viewer, err := client.Viewer(ctx); err == nil {
			f.username = viewer
		}
	}

	snap := &registry.Snapshot{
		FetchedAt:     time.Now().UTC(),
		Username:      f.username,
		Authenticated: client.Authenticated(),
		Repos:         repos,
	}
	if err := registry.Save(ctx, snap, f.cachePath); err != nil {
		debugf(cmd, "snapshot cache not written: %v", err)
	}
	return repos, nil
}

func discoveryHTTPClient(cfg *config.Config) *http.Client {
	if cfg == nil || cfg.Defaults.TimeoutSeconds <= 0 {
		return nil
	}
	return &http.Client{Timeout: time.Duration(cfg.Defaults.TimeoutSeconds) * time.Second}
}

// resolveFleet assembles the filtered, sorted repository set for one
// command invocation.
func resolveFleet(cmd *cobra.Command) (*fleetSource, []model.Repository, error) {
	src, err := newFleetSource(cmd)
	if err != nil {
		return nil, nil, err
	}
	repos, err := src.Repositories(cmd.Context(), cmd)
	if err != nil {
		return nil, nil, err
	}

	pred, err := filterOptionsFromFlags(cmd).Build()
	if err != nil {
		return nil, nil, err
	}
	filtered := filter.Apply(pred, repos)
	sortutil.SortRepositories(filtered)
	debugf(cmd, "%d of %d repositories selected", len(filtered), len(repos))
	if len(filtered) == 0 {
		infof(cmd, "no repositories match the filter criteria")
	}
	return src, filtered, nil
}
