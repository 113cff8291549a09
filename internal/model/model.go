// Package model defines the core data types used throughout GitFleet.
package model

import (
	"sort"
	"time"
)

// Repository is one GitHub repository as reported by the discovery layer.
// Records are produced by the GitHub client or loaded from the local
// snapshot cache.
type Repository struct {
	// ID is the numeric GitHub repository id. It is the identity key:
	// two records with the same ID describe the same repository.
	ID int64 `json:"id" yaml:"id"`
	// Name is the short repository name without the owner.
	Name string `json:"name" yaml:"name"`
	// FullName is the owner-qualified name (for example, "acme/widgets").
	FullName string `json:"full_name" yaml:"full_name"`
	// Owner is the login of the owning user or organization.
	Owner string `json:"owner" yaml:"owner"`
	// Private reports whether the repository is private.
	Private bool `json:"private" yaml:"private"`
	// Fork reports whether the repository is a fork.
	Fork bool `json:"fork" yaml:"fork"`
	// Archived reports whether the repository is archived on GitHub.
	Archived bool `json:"archived" yaml:"archived"`
	// DefaultBranch is the default branch name (for example, "main").
	DefaultBranch string `json:"default_branch" yaml:"default_branch"`
	// SSHURL is the SSH clone URL.
	SSHURL string `json:"ssh_url" yaml:"ssh_url"`
	// CloneURL is the HTTPS clone URL.
	CloneURL string `json:"clone_url" yaml:"clone_url"`
	// Description is the repository description, possibly empty.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	// Language is the primary language GitHub detected, possibly empty.
	Language string `json:"language,omitempty" yaml:"language,omitempty"`
}

// DisplayName returns the owner-qualified name, falling back to the short
// name for records that predate the full_name field in the snapshot cache.
func (r Repository) DisplayName() string {
	if r.FullName != "" {
		return r.FullName
	}
	return r.Name
}

// PreferredCloneURL picks the clone URL for a checkout. SSH is used when a
// credential is available so pushes work without further setup.
func (r Repository) PreferredCloneURL(ssh bool) string {
	if ssh && r.SSHURL != "" {
		return r.SSHURL
	}
	return r.CloneURL
}

// DedupeRepositories removes duplicate records by ID, keeping the first
// occurrence and the original order of the survivors.
func DedupeRepositories(repos []Repository) []Repository {
	seen := make(map[int64]bool, len(repos))
	out := make([]Repository, 0, len(repos))
	for _, repo := range repos {
		if seen[repo.ID] {
			continue
		}
		seen[repo.ID] = true
		out = append(out, repo)
	}
	return out
}

// LocalState is the observed state of a repository's local checkout. It is
// produced by the git probe and consumed by the classifier.
type LocalState struct {
	// Exists reports whether a checkout is present at the expected path.
	// When false all other fields are zero.
	Exists bool `json:"exists" yaml:"exists"`
	// Branch is the current branch name, empty when HEAD is detached.
	Branch string `json:"branch,omitempty" yaml:"branch,omitempty"`
	// Commit is the short hash of HEAD. Informational only.
	Commit string `json:"commit,omitempty" yaml:"commit,omitempty"`
	// Dirty reports uncommitted changes, staged or not, including
	// untracked files.
	Dirty bool `json:"dirty" yaml:"dirty"`
	// HasUpstream reports whether the current branch has an upstream
	// tracking branch configured.
	HasUpstream bool `json:"has_upstream" yaml:"has_upstream"`
	// Upstream is the upstream ref name (for example, "origin/main").
	Upstream string `json:"upstream,omitempty" yaml:"upstream,omitempty"`
	// Ahead is the number of local commits not on the upstream.
	Ahead int `json:"ahead" yaml:"ahead"`
	// Behind is the number of upstream commits not present locally.
	Behind int `json:"behind" yaml:"behind"`
	// Stale marks a state whose remote refresh failed; ahead/behind
	// counts reflect the last successful fetch.
	Stale bool `json:"stale,omitempty" yaml:"stale,omitempty"`
}

// SyncStatus is the classified relationship between a local checkout and
// its upstream.
type SyncStatus string

const (
	// StatusNotCloned means no checkout exists at the expected path.
	StatusNotCloned SyncStatus = "not_cloned"
	// StatusNoUpstream means the current branch has no upstream to
	// compare against.
	StatusNoUpstream SyncStatus = "no_upstream"
	// StatusDetachedHead means HEAD is not on a branch.
	StatusDetachedHead SyncStatus = "detached_head"
	// StatusUncommitted means the working tree has local modifications.
	StatusUncommitted SyncStatus = "uncommitted"
	// StatusDiverged means the branch is both ahead of and behind its
	// upstream.
	StatusDiverged SyncStatus = "diverged"
	// StatusUnpushed means the branch has local commits the upstream
	// lacks.
	StatusUnpushed SyncStatus = "unpushed"
	// StatusUnpulled means the upstream has commits the branch lacks.
	StatusUnpulled SyncStatus = "unpulled"
	// StatusInSync means checkout and upstream are at the same commit
	// with a clean tree.
	StatusInSync SyncStatus = "in_sync"
)

// Describe returns the human-readable form used in tabular output.
func (s SyncStatus) Describe() string {
	switch s {
	case StatusNotCloned:
		return "not cloned"
	case StatusNoUpstream:
		return "no upstream"
	case StatusDetachedHead:
		return "detached HEAD"
	case StatusUncommitted:
		return "uncommitted changes"
	case StatusDiverged:
		return "diverged"
	case StatusUnpushed:
		return "unpushed commits"
	case StatusUnpulled:
		return "behind upstream"
	case StatusInSync:
		return "in sync"
	default:
		return string(s)
	}
}

// ActionKind groups actions by the gating rules they share.
type ActionKind string

const (
	// KindClone creates checkouts and proceeds only for missing ones.
	KindClone ActionKind = "clone"
	// KindPull updates checkouts and must not touch dirty trees.
	KindPull ActionKind = "pull"
	// KindSync combines clone and pull per repository.
	KindSync ActionKind = "sync"
	// KindReport reads state and never mutates anything.
	KindReport ActionKind = "report"
	// KindMutate changes repository contents or remote metadata and
	// requires an existing checkout.
	KindMutate ActionKind = "mutate"
)

// Outcome is the per-repository result category of an action.
type Outcome string

const (
	// OutcomeSuccess means the action ran and completed.
	OutcomeSuccess Outcome = "success"
	// OutcomeSkipped means a gate or precondition stopped the action
	// before it ran. The message carries the reason.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeFailed means the action ran and did not complete.
	OutcomeFailed Outcome = "failed"
)

// ActionResult is the outcome of applying one action to one repository.
type ActionResult struct {
	// Repo is the owner-qualified repository name.
	Repo string `json:"repo" yaml:"repo"`
	// Outcome categorizes the result.
	Outcome Outcome `json:"outcome" yaml:"outcome"`
	// Message is the human-readable detail: what happened, or for
	// skips, why not.
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
	// Err is the error text for failed results.
	Err string `json:"error,omitempty" yaml:"error,omitempty"`
	// ErrorClass is the coarse failure category (auth, network,
	// timeout, diverged, unknown) for failed results.
	ErrorClass string `json:"error_class,omitempty" yaml:"error_class,omitempty"`
	// Status is the sync classification observed before the action ran.
	Status SyncStatus `json:"status,omitempty" yaml:"status,omitempty"`
	// Stale marks results computed from a state whose remote refresh
	// failed.
	Stale bool `json:"stale,omitempty" yaml:"stale,omitempty"`
}

// BatchSummary aggregates the results of one action applied across a
// repository set. It is built incrementally as results arrive.
type BatchSummary struct {
	// Action is the name of the action that ran.
	Action string `json:"action" yaml:"action"`
	// Total is the number of repositories in the batch input after
	// deduplication.
	Total int `json:"total" yaml:"total"`
	// Succeeded, Skipped and Failed count results by outcome. Their sum
	// equals len(Results), and equals Total unless Interrupted is set.
	Succeeded int `json:"succeeded" yaml:"succeeded"`
	Skipped   int `json:"skipped" yaml:"skipped"`
	Failed    int `json:"failed" yaml:"failed"`
	// Results holds one entry per processed repository.
	Results []ActionResult `json:"results" yaml:"results"`
	// Failures is the failed subset of Results, kept separately so
	// callers can print failure details without refiltering.
	Failures []ActionResult `json:"failures,omitempty" yaml:"failures,omitempty"`
	// SkipReasons groups skipped repository names by reason.
	SkipReasons map[string][]string `json:"skip_reasons,omitempty" yaml:"skip_reasons,omitempty"`
	// ByStatus tallies the sync classification observed per result.
	ByStatus map[SyncStatus]int `json:"by_status,omitempty" yaml:"by_status,omitempty"`
	// Interrupted is set when the batch stopped on cancellation before
	// processing every repository.
	Interrupted bool `json:"interrupted,omitempty" yaml:"interrupted,omitempty"`
	// Elapsed is the wall-clock duration of the batch.
	Elapsed time.Duration `json:"elapsed_ns" yaml:"elapsed_ns"`
}

// Add folds one result into the summary.
func (s *BatchSummary) Add(res ActionResult) {
	s.Results = append(s.Results, res)
	switch res.Outcome {
	case OutcomeSuccess:
		s.Succeeded++
	case OutcomeSkipped:
		s.Skipped++
		if s.SkipReasons == nil {
			s.SkipReasons = make(map[string][]string)
		}
		s.SkipReasons[res.Message] = append(s.SkipReasons[res.Message], res.Repo)
	case OutcomeFailed:
		s.Failed++
		s.Failures = append(s.Failures, res)
	}
	if res.Status != "" {
		if s.ByStatus == nil {
			s.ByStatus = make(map[SyncStatus]int)
		}
		s.ByStatus[res.Status]++
	}
}

// Completed returns the number of results recorded so far.
func (s *BatchSummary) Completed() int {
	return len(s.Results)
}

// SortResults orders results, failures and skip-reason lists by repository
// name so output depends only on batch content, not worker scheduling.
func (s *BatchSummary) SortResults() {
	byRepo := func(results []ActionResult) func(i, j int) bool {
		return func(i, j int) bool { return results[i].Repo < results[j].Repo }
	}
	sort.SliceStable(s.Results, byRepo(s.Results))
	sort.SliceStable(s.Failures, byRepo(s.Failures))
	for _, repos := range s.SkipReasons {
		sort.Strings(repos)
	}
}
