package gitx_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skaphos/gitfleet/internal/gitx"
)

var _ = Describe("GitRunner.Run", func() {
	var runner *gitx.GitRunner

	BeforeEach(func() {
		runner = &gitx.GitRunner{}
	})

	It("runs git version successfully", func() {
		out, err := runner.Run(context.Background(), "", "version")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("git version"))
	})

	It("errors for nonexistent directory", func() {
		_, err := runner.Run(context.Background(), "/nonexistent/path/xyz", "status")
		Expect(err).To(HaveOccurred())
	})

	It("respects context cancellation", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := runner.Run(ctx, "", "version")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Exists", func() {
	It("returns true when .git is a directory", func() {
		dir := GinkgoT().TempDir()
		Expect(os.Mkdir(filepath.Join(dir, ".git"), 0o755)).To(Succeed())
		Expect(gitx.Exists(dir)).To(BeTrue())
	})

	It("returns true when .git is a file", func() {
		// Linked worktrees and submodules keep a .git file, not a directory.
		dir := GinkgoT().TempDir()
		Expect(os.WriteFile(filepath.Join(dir, ".git"), []byte("gitdir: ../elsewhere\n"), 0o644)).To(Succeed())
		Expect(gitx.Exists(dir)).To(BeTrue())
	})

	It("returns false when .git is absent", func() {
		Expect(gitx.Exists(GinkgoT().TempDir())).To(BeFalse())
	})

	It("returns false for a missing path", func() {
		Expect(gitx.Exists("/nonexistent/path/xyz")).To(BeFalse())
	})
})

var _ = Describe("Inspect", func() {
	var dir string

	// checkout creates a directory that passes the .git existence probe so
	// every git interaction goes through the mock.
	checkout := func() string {
		d := GinkgoT().TempDir()
		Expect(os.Mkdir(filepath.Join(d, ".git"), 0o755)).To(Succeed())
		return d
	}

	BeforeEach(func() {
		dir = checkout()
	})

	It("returns the zero state for a missing checkout", func() {
		mock := &MockRunner{}
		st, err := gitx.Inspect(context.Background(), mock, filepath.Join(dir, "nope"))
		Expect(err).NotTo(HaveOccurred())
		Expect(st.Exists).To(BeFalse())
		Expect(mock.Calls()).To(BeEmpty())
	})

	It("assembles the full state of a healthy checkout", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			dir + ":symbolic-ref --quiet --short HEAD":                       {Output: "main"},
			dir + ":rev-parse --short HEAD":                                  {Output: "abc1234"},
			dir + ":status --porcelain=v1":                                   {Output: ""},
			dir + ":rev-parse --abbrev-ref --symbolic-full-name @{upstream}": {Output: "origin/main"},
			dir + ":rev-list --left-right --count HEAD...@{upstream}":        {Output: "0\t0"},
		}}
		st, err := gitx.Inspect(context.Background(), mock, dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(st.Exists).To(BeTrue())
		Expect(st.Branch).To(Equal("main"))
		Expect(st.Commit).To(Equal("abc1234"))
		Expect(st.Dirty).To(BeFalse())
		Expect(st.HasUpstream).To(BeTrue())
		Expect(st.Upstream).To(Equal("origin/main"))
		Expect(st.Ahead).To(Equal(0))
		Expect(st.Behind).To(Equal(0))
	})

	It("issues only read-only git commands", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			dir + ":symbolic-ref --quiet --short HEAD":                       {Output: "main"},
			dir + ":rev-parse --short HEAD":                                  {Output: "abc1234"},
			dir + ":status --porcelain=v1":                                   {Output: ""},
			dir + ":rev-parse --abbrev-ref --symbolic-full-name @{upstream}": {Output: "origin/main"},
			dir + ":rev-list --left-right --count HEAD...@{upstream}":        {Output: "1\t0"},
		}}
		_, err := gitx.Inspect(context.Background(), mock, dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(mock.Calls()).To(Equal([]string{
			dir + ":symbolic-ref --quiet --short HEAD",
			dir + ":rev-parse --short HEAD",
			dir + ":status --porcelain=v1",
			dir + ":rev-parse --abbrev-ref --symbolic-full-name @{upstream}",
			dir + ":rev-list --left-right --count HEAD...@{upstream}",
		}))
	})

	It("parses ahead and behind counts", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			dir + ":symbolic-ref --quiet --short HEAD":                       {Output: "main"},
			dir + ":rev-parse --short HEAD":                                  {Output: "abc1234"},
			dir + ":status --porcelain=v1":                                   {Output: ""},
			dir + ":rev-parse --abbrev-ref --symbolic-full-name @{upstream}": {Output: "origin/main"},
			dir + ":rev-list --left-right --count HEAD...@{upstream}":        {Output: "2\t3"},
		}}
		st, err := gitx.Inspect(context.Background(), mock, dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(st.Ahead).To(Equal(2))
		Expect(st.Behind).To(Equal(3))
	})

	It("marks a dirty worktree", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			dir + ":symbolic-ref --quiet --short HEAD":                       {Output: "main"},
			dir + ":rev-parse --short HEAD":                                  {Output: "abc1234"},
			dir + ":status --porcelain=v1":                                   {Output: "M  file.go\n?? new.go"},
			dir + ":rev-parse --abbrev-ref --symbolic-full-name @{upstream}": {Output: "origin/main"},
			dir + ":rev-list --left-right --count HEAD...@{upstream}":        {Output: "0\t0"},
		}}
		st, err := gitx.Inspect(context.Background(), mock, dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(st.Dirty).To(BeTrue())
	})

	It("leaves the branch empty on a detached HEAD", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			dir + ":symbolic-ref --quiet --short HEAD":                       {Err: errors.New("not a symbolic ref")},
			dir + ":rev-parse --short HEAD":                                  {Output: "abc1234"},
			dir + ":status --porcelain=v1":                                   {Output: ""},
			dir + ":rev-parse --abbrev-ref --symbolic-full-name @{upstream}": {Err: errors.New("no upstream")},
		}}
		st, err := gitx.Inspect(context.Background(), mock, dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(st.Branch).To(Equal(""))
		Expect(st.Commit).To(Equal("abc1234"))
		Expect(st.HasUpstream).To(BeFalse())
	})

	It("stops after the upstream probe when none is configured", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			dir + ":symbolic-ref --quiet --short HEAD":                       {Output: "feature"},
			dir + ":rev-parse --short HEAD":                                  {Output: "def5678"},
			dir + ":status --porcelain=v1":                                   {Output: ""},
			dir + ":rev-parse --abbrev-ref --symbolic-full-name @{upstream}": {Err: errors.New("no upstream configured")},
		}}
		st, err := gitx.Inspect(context.Background(), mock, dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(st.HasUpstream).To(BeFalse())
		Expect(st.Ahead).To(Equal(0))
		Expect(st.Behind).To(Equal(0))
	})

	It("tolerates an unborn branch", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			dir + ":symbolic-ref --quiet --short HEAD":                       {Output: "main"},
			dir + ":rev-parse --short HEAD":                                  {Err: errors.New("unknown revision HEAD")},
			dir + ":status --porcelain=v1":                                   {Output: ""},
			dir + ":rev-parse --abbrev-ref --symbolic-full-name @{upstream}": {Err: errors.New("no upstream")},
		}}
		st, err := gitx.Inspect(context.Background(), mock, dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(st.Branch).To(Equal("main"))
		Expect(st.Commit).To(Equal(""))
	})

	It("surfaces a status probe failure", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			dir + ":symbolic-ref --quiet --short HEAD": {Output: "main"},
			dir + ":rev-parse --short HEAD":            {Output: "abc1234"},
			dir + ":status --porcelain=v1":             {Err: errors.New("index locked")},
		}}
		_, err := gitx.Inspect(context.Background(), mock, dir)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("git status"))
	})

	It("surfaces a rev-list failure", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			dir + ":symbolic-ref --quiet --short HEAD":                       {Output: "main"},
			dir + ":rev-parse --short HEAD":                                  {Output: "abc1234"},
			dir + ":status --porcelain=v1":                                   {Output: ""},
			dir + ":rev-parse --abbrev-ref --symbolic-full-name @{upstream}": {Output: "origin/main"},
			dir + ":rev-list --left-right --count HEAD...@{upstream}":        {Err: errors.New("bad revision")},
		}}
		_, err := gitx.Inspect(context.Background(), mock, dir)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("git rev-list"))
	})
})

var _ = Describe("Fetch", func() {
	It("runs fetch with pruning and without submodule recursion", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:-c fetch.recurseSubmodules=false fetch --all --prune --prune-tags --no-recurse-submodules": {Output: ""},
		}}
		Expect(gitx.Fetch(context.Background(), mock, "/repo")).To(Succeed())
	})

	It("returns error on fetch failure", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:-c fetch.recurseSubmodules=false fetch --all --prune --prune-tags --no-recurse-submodules": {Err: errors.New("fetch failed")},
		}}
		Expect(gitx.Fetch(context.Background(), mock, "/repo")).To(HaveOccurred())
	})
})

var _ = Describe("Clone", func() {
	It("clones without a working directory", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			":clone git@github.com:org/repo.git /base/repo": {Output: ""},
		}}
		Expect(gitx.Clone(context.Background(), mock, "git@github.com:org/repo.git", "/base/repo")).To(Succeed())
	})

	It("returns error on clone failure", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			":clone https://github.com/org/repo.git /base/repo": {Err: errors.New("repository not found")},
		}}
		err := gitx.Clone(context.Background(), mock, "https://github.com/org/repo.git", "/base/repo")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Pull", func() {
	It("pulls fast-forward only", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:pull --ff-only --no-recurse-submodules": {Output: "Already up to date."},
		}}
		Expect(gitx.Pull(context.Background(), mock, "/repo")).To(Succeed())
	})

	It("returns error when fast-forward is not possible", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:pull --ff-only --no-recurse-submodules": {Err: errors.New("fatal: Not possible to fast-forward, aborting.")},
		}}
		err := gitx.Pull(context.Background(), mock, "/repo")
		Expect(err).To(HaveOccurred())
		Expect(gitx.ClassifyError(err)).To(Equal("diverged"))
	})
})

var _ = Describe("Probe", func() {
	It("inspects through the configured runner", func() {
		dir := GinkgoT().TempDir()
		Expect(os.Mkdir(filepath.Join(dir, ".git"), 0o755)).To(Succeed())
		mock := &MockRunner{Responses: map[string]MockResponse{
			dir + ":symbolic-ref --quiet --short HEAD":                       {Output: "main"},
			dir + ":rev-parse --short HEAD":                                  {Output: "abc1234"},
			dir + ":status --porcelain=v1":                                   {Output: ""},
			dir + ":rev-parse --abbrev-ref --symbolic-full-name @{upstream}": {Err: errors.New("no upstream")},
		}}
		probe := &gitx.Probe{Runner: mock}
		st, err := probe.Inspect(context.Background(), dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(st.Exists).To(BeTrue())
		Expect(st.Branch).To(Equal("main"))
	})

	It("refreshes through the configured runner", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:-c fetch.recurseSubmodules=false fetch --all --prune --prune-tags --no-recurse-submodules": {Output: ""},
		}}
		probe := &gitx.Probe{Runner: mock}
		Expect(probe.Refresh(context.Background(), "/repo")).To(Succeed())
	})
})

var _ = Describe("GitRunner with real git", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "gitx-test")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(os.RemoveAll(tmpDir)).To(Succeed())
	})

	It("inspects a freshly initialized repo", func() {
		runner := &gitx.GitRunner{}
		ctx := context.Background()

		_, err := runner.Run(ctx, tmpDir, "init")
		Expect(err).NotTo(HaveOccurred())

		Expect(gitx.Exists(tmpDir)).To(BeTrue())

		st, err := gitx.Inspect(ctx, runner, tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(st.Exists).To(BeTrue())
		Expect(st.Dirty).To(BeFalse())
		Expect(st.HasUpstream).To(BeFalse())
	})

	It("sees untracked files as dirty", func() {
		runner := &gitx.GitRunner{}
		ctx := context.Background()

		_, err := runner.Run(ctx, tmpDir, "init")
		Expect(err).NotTo(HaveOccurred())
		Expect(os.WriteFile(filepath.Join(tmpDir, "new.txt"), []byte("x\n"), 0o644)).To(Succeed())

		st, err := gitx.Inspect(ctx, runner, tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(st.Dirty).To(BeTrue())
	})
})
