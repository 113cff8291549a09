// SPDX-License-Identifier: MIT
package action

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/skaphos/gitfleet/internal/model"
	"github.com/skaphos/gitfleet/internal/strutil"
)

// maxDescriptionLen is GitHub's repository description limit.
const maxDescriptionLen = 350

// DescSync sets the GitHub repository description from the README tagline.
// The update goes through `gh repo edit` so gh's own credential handling
// applies.
type DescSync struct {
	deps Deps
}

func NewDescSync(deps Deps) *DescSync { return &DescSync{deps: deps} }

func (d *DescSync) Name() string             { return "desc-sync" }
func (d *DescSync) Synopsis() string         { return "sync GitHub descriptions with README taglines" }
func (d *DescSync) Kind() model.ActionKind   { return model.KindMutate }
func (d *DescSync) SafeParallel() bool       { return true }
func (d *DescSync) RequiresToken() bool      { return false }
func (d *DescSync) NeedsRemoteRefresh() bool { return false }
func (d *DescSync) Timeout() time.Duration   { return 30 * time.Second }

func (d *DescSync) Apply(ctx context.Context, req Request) model.ActionResult {
	if req.Repo.Archived {
		return skipped(req.Repo, "repository is archived")
	}
	if req.Repo.Fork {
		return skipped(req.Repo, "repository is a fork")
	}
	content, err := os.ReadFile(filepath.Join(req.Path, "README.md"))
	if err != nil {
		if os.IsNotExist(err) {
			return skipped(req.Repo, "no README.md")
		}
		return failed(req.Repo, "reading README.md", err)
	}
	tagline := ExtractTagline(string(content))
	if tagline == "" {
		return skipped(req.Repo, "no tagline found in README")
	}
	tagline = strutil.Truncate(tagline, maxDescriptionLen)
	if tagline == req.Repo.Description && !d.deps.Force {
		return skipped(req.Repo, "description already matches")
	}
	if req.DryRun {
		return skipped(req.Repo, "would set description: "+strutil.Truncate(tagline, 60))
	}
	if _, err := d.deps.gh().Run(ctx, "", "repo", "edit", req.Repo.FullName, "-d", tagline); err != nil {
		return failed(req.Repo, "gh repo edit failed", err)
	}
	return success(req.Repo, "description updated")
}

var (
	// centeredDivRE matches the leading hero block many READMEs open with.
	centeredDivRE = regexp.MustCompile(`(?is)<div[^>]*align=["']?center["']?[^>]*>(.*?)</div>`)
	boldRE        = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	titleParaRE   = regexp.MustCompile(`(?m)^#\s+[^\n]+\n\n([^\n#]+)`)
	linkRE        = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	emphasisRE    = regexp.MustCompile("[*_`]+")
)

// ExtractTagline finds the one-line project description in README content.
// Two patterns are tried in order: bold text inside a centered hero div,
// then the first paragraph after the H1 title. Candidates that look like
// badges or link rows are rejected; markdown emphasis, code spans and
// links are stripped from the winner.
func ExtractTagline(content string) string {
	if div := centeredDivRE.FindStringSubmatch(content); div != nil {
		for _, m := range boldRE.FindAllStringSubmatch(div[1], -1) {
			candidate := strings.TrimSpace(m[1])
			if len(candidate) > 15 && !strings.Contains(strings.ToLower(candidate), "http") {
				return stripMarkdown(candidate)
			}
		}
	}
	if m := titleParaRE.FindStringSubmatch(content); m != nil {
		paragraph := strings.TrimSpace(m[1])
		if len(paragraph) > 20 && !strings.HasPrefix(paragraph, "[") && !strings.HasPrefix(paragraph, "<") {
			return stripMarkdown(paragraph)
		}
	}
	return ""
}

func stripMarkdown(s string) string {
	s = linkRE.ReplaceAllString(s, "$1")
	s = emphasisRE.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
