// Package classify maps observed checkout state to a sync classification
// and decides whether an action may proceed against it.
//
// Classification is a fixed-order rule chain: the first matching rule wins
// and every state matches exactly one rule. Reordering the chain changes
// observable behavior, so the order below is a contract, not a style choice.
package classify

import (
	"fmt"

	"github.com/skaphos/gitfleet/internal/model"
)

// Classify reduces a LocalState to its sync classification. Rules are
// evaluated top to bottom; the first hit wins.
func Classify(st model.LocalState) model.SyncStatus {
	switch {
	case !st.Exists:
		return model.StatusNotCloned
	case !st.HasUpstream:
		return model.StatusNoUpstream
	case st.Branch == "":
		return model.StatusDetachedHead
	case st.Dirty:
		return model.StatusUncommitted
	case st.Ahead > 0 && st.Behind > 0:
		return model.StatusDiverged
	case st.Ahead > 0:
		return model.StatusUnpushed
	case st.Behind > 0:
		return model.StatusUnpulled
	default:
		return model.StatusInSync
	}
}

// Decision is the outcome of gating an action against a classification.
type Decision struct {
	// Proceed reports whether the action may run.
	Proceed bool
	// Reason explains a refusal. Empty when Proceed is true.
	Reason string
}

func proceed() Decision           { return Decision{Proceed: true} }
func skip(reason string) Decision { return Decision{Reason: reason} }

// Gate decides whether an action of the given kind may run against a
// repository in the given state. Gates only stop work that would be
// redundant or unsafe; operations that merely cannot succeed (for example
// pulling a diverged branch) proceed and fail at the tool, so the failure
// carries git's own diagnostics.
func Gate(kind model.ActionKind, status model.SyncStatus) Decision {
	switch kind {
	case model.KindClone:
		if status == model.StatusNotCloned {
			return proceed()
		}
		return skip("already exists")
	case model.KindPull:
		switch status {
		case model.StatusNotCloned:
			return skip("not cloned")
		case model.StatusUncommitted:
			return skip("uncommitted changes")
		}
		return proceed()
	case model.KindSync:
		if status == model.StatusUncommitted {
			return skip("uncommitted changes")
		}
		return proceed()
	case model.KindReport:
		return proceed()
	case model.KindMutate:
		if status == model.StatusNotCloned {
			return skip("not cloned")
		}
		return proceed()
	}
	return proceed()
}

// Summarize renders the classification as a one-line detail for reports,
// including ahead/behind counts where they exist.
func Summarize(st model.LocalState, status model.SyncStatus) string {
	switch status {
	case model.StatusUnpushed:
		return fmt.Sprintf("ahead of %s by %d", st.Upstream, st.Ahead)
	case model.StatusUnpulled:
		return fmt.Sprintf("behind %s by %d", st.Upstream, st.Behind)
	case model.StatusDiverged:
		return fmt.Sprintf("diverged from %s (ahead %d, behind %d)", st.Upstream, st.Ahead, st.Behind)
	case model.StatusDetachedHead:
		if st.Commit != "" {
			return fmt.Sprintf("detached HEAD at %s", st.Commit)
		}
		return "detached HEAD"
	case model.StatusNoUpstream:
		if st.Branch != "" {
			return fmt.Sprintf("no upstream configured for %s", st.Branch)
		}
		return "no upstream configured"
	default:
		return status.Describe()
	}
}
