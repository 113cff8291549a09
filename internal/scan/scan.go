// SPDX-License-Identifier: MIT

// Package scan walks the base directory and reconciles the checkouts it
// finds against the discovered account set.
package scan

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	git "github.com/go-git/go-git/v5"

	"github.com/skaphos/gitfleet/internal/gitx"
	"github.com/skaphos/gitfleet/internal/model"
)

// Kind classifies one scan finding.
type Kind string

const (
	// KindTracked means the checkout's remote matches an account repository.
	KindTracked Kind = "tracked"
	// KindUntracked means the checkout lives in the account namespace (or
	// has no remote at all) but the account listing does not know it.
	KindUntracked Kind = "untracked"
	// KindForeign means the checkout's remote points at another host or
	// owner.
	KindForeign Kind = "foreign"
	// KindMissing means the account repository has no checkout anywhere
	// under the base directory.
	KindMissing Kind = "missing"
)

// Finding is one reconciled entry of the scan report.
type Finding struct {
	// Kind classifies the finding.
	Kind Kind `json:"kind" yaml:"kind"`
	// Name is the owner-qualified name for tracked and missing entries,
	// and the path relative to the base directory otherwise.
	Name string `json:"name" yaml:"name"`
	// Path is the checkout location. For missing entries it is the path
	// a clone would use.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
	// RepoID is the normalized remote identity (host/owner/name), empty
	// when the checkout has no usable remote.
	RepoID string `json:"repo_id,omitempty" yaml:"repo_id,omitempty"`
	// RemoteURL is the raw URL of the primary remote.
	RemoteURL string `json:"remote_url,omitempty" yaml:"remote_url,omitempty"`
	// Branch is the checked-out branch, empty for detached or unborn HEAD.
	Branch string `json:"branch,omitempty" yaml:"branch,omitempty"`
}

// Report groups scan findings by kind.
type Report struct {
	BaseDir   string    `json:"base_dir" yaml:"base_dir"`
	Tracked   []Finding `json:"tracked" yaml:"tracked"`
	Untracked []Finding `json:"untracked" yaml:"untracked"`
	Foreign   []Finding `json:"foreign" yaml:"foreign"`
	Missing   []Finding `json:"missing" yaml:"missing"`
}

// Options configures a scan run.
type Options struct {
	// BaseDir is the directory holding the checkouts.
	BaseDir string
	// Exclude holds glob patterns matched against paths relative to
	// BaseDir; matching directories are not descended into.
	Exclude []string
	// Username is the account owner, used to split untracked from
	// foreign checkouts.
	Username string
	// RemoteName is the remote consulted first for the repository
	// identity. Empty means "origin".
	RemoteName string
	// Repos is the account set to reconcile against.
	Repos []model.Repository
}

// Run walks the base directory and classifies every checkout it finds.
// Checkout identity is the normalized primary-remote URL, so a repository
// cloned into a nonstandard subdirectory still counts as tracked. A base
// directory that does not exist yet reports the whole account as missing.
func Run(ctx context.Context, opts Options) (*Report, error) {
	base, err := filepath.Abs(opts.BaseDir)
	if err != nil {
		return nil, err
	}
	report := &Report{BaseDir: base}

	index := make(map[string]model.Repository, len(opts.Repos))
	owners := make(map[string]bool, 8)
	if opts.Username != "" {
		owners[strings.ToLower(opts.Username)] = true
	}
	for _, repo := range opts.Repos {
		index[accountID(repo)] = repo
		if repo.Owner != "" {
			owners[strings.ToLower(repo.Owner)] = true
		}
	}
	seen := make(map[string]bool, len(opts.Repos))

	if _, statErr := os.Stat(base); statErr == nil {
		if err := walk(ctx, base, opts, index, owners, seen, report); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(statErr) {
		return nil, statErr
	}

	for _, repo := range opts.Repos {
		if seen[accountID(repo)] {
			continue
		}
		report.Missing = append(report.Missing, Finding{
			Kind:   KindMissing,
			Name:   repo.DisplayName(),
			Path:   filepath.Join(base, repo.Name),
			RepoID: accountID(repo),
		})
	}

	for _, findings := range [][]Finding{report.Tracked, report.Untracked, report.Foreign, report.Missing} {
		sort.Slice(findings, func(i, j int) bool { return findings[i].Name < findings[j].Name })
	}
	return report, nil
}

// MatchesExclude checks whether a path matches any of the given exclude
// glob patterns.
func MatchesExclude(path string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	slashPath := filepath.ToSlash(path)
	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		match, err := doublestar.Match(pattern, slashPath)
		if err != nil {
			continue
		}
		if match {
			return true
		}
	}
	return false
}

func walk(ctx context.Context, base string, opts Options, index map[string]model.Repository, owners map[string]bool, seen map[string]bool, report *Report) error {
	return filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !d.IsDir() {
			return nil
		}
		if d.Type()&os.ModeSymlink != 0 {
			return fs.SkipDir
		}
		if d.Name() == ".git" {
			return fs.SkipDir
		}
		rel, relErr := filepath.Rel(base, path)
		if relErr != nil {
			return relErr
		}
		if rel != "." && MatchesExclude(rel, opts.Exclude) {
			return fs.SkipDir
		}
		if !isCheckout(path) {
			return nil
		}

		finding := probe(path, rel, opts.RemoteName)
		key := strings.ToLower(finding.RepoID)
		if repo, ok := index[key]; ok {
			seen[key] = true
			finding.Kind = KindTracked
			finding.Name = repo.DisplayName()
			report.Tracked = append(report.Tracked, finding)
		} else if isForeign(finding.RepoID, owners) {
			finding.Kind = KindForeign
			report.Foreign = append(report.Foreign, finding)
		} else {
			finding.Kind = KindUntracked
			report.Untracked = append(report.Untracked, finding)
		}
		// A checkout may vendor further repositories; those belong to it,
		// not to the fleet.
		return fs.SkipDir
	})
}

// isCheckout reports whether dir is a repository root: a normal checkout
// with a .git entry, or a bare repository (HEAD file plus objects dir).
func isCheckout(dir string) bool {
	if gitx.Exists(dir) {
		return true
	}
	if _, err := os.Stat(filepath.Join(dir, "HEAD")); err != nil {
		return false
	}
	info, err := os.Stat(filepath.Join(dir, "objects"))
	return err == nil && info.IsDir()
}

// probe opens the checkout and reads its identity without touching the
// working tree. Probe failures leave the identity fields empty; the
// finding then falls into the untracked bucket.
func probe(path, rel, remoteName string) Finding {
	finding := Finding{Name: filepath.ToSlash(rel), Path: path}
	repo, err := git.PlainOpen(path)
	if err != nil {
		return finding
	}
	if ref, headErr := repo.Head(); headErr == nil && ref.Name().IsBranch() {
		finding.Branch = ref.Name().Short()
	}
	if url := primaryRemoteURL(repo, remoteName); url != "" {
		finding.RemoteURL = url
		finding.RepoID = gitx.NormalizeURL(url)
	}
	return finding
}

// primaryRemoteURL returns the URL of the preferred remote: the
// configured name when present, otherwise origin, otherwise the first
// remote alphabetically.
func primaryRemoteURL(repo *git.Repository, prefer string) string {
	remotes, err := repo.Remotes()
	if err != nil || len(remotes) == 0 {
		return ""
	}
	names := make([]string, 0, len(remotes))
	byName := make(map[string]*git.Remote, len(remotes))
	for _, remote := range remotes {
		names = append(names, remote.Config().Name)
		byName[remote.Config().Name] = remote
	}
	primary := prefer
	if primary == "" {
		primary = "origin"
	}
	if _, ok := byName[primary]; !ok {
		primary = gitx.PrimaryRemote(names)
	}
	remote := byName[primary]
	if remote == nil || len(remote.Config().URLs) == 0 {
		return ""
	}
	return remote.Config().URLs[0]
}

// isForeign reports whether a repo id belongs to another host or owner.
// The owner set covers the username plus every owner in the account set,
// so checkouts from a member organization stay untracked rather than
// foreign. Empty ids are not foreign: a checkout without a remote is
// merely untracked.
func isForeign(repoID string, owners map[string]bool) bool {
	if repoID == "" {
		return false
	}
	host, owner, _ := gitx.SplitRepoID(repoID)
	if host != "github.com" {
		return true
	}
	return len(owners) > 0 && !owners[strings.ToLower(owner)]
}

func accountID(repo model.Repository) string {
	return strings.ToLower("github.com/" + repo.FullName)
}
