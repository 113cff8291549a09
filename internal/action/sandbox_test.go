// SPDX-License-Identifier: MIT
package action_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skaphos/gitfleet/internal/action"
	"github.com/skaphos/gitfleet/internal/model"
)

var _ = Describe("SandboxEnable", func() {
	var (
		path         string
		settingsPath string
	)

	BeforeEach(func() {
		path = GinkgoT().TempDir()
		settingsPath = filepath.Join(path, ".claude", "settings.local.json")
	})

	request := func() action.Request {
		return action.Request{
			Repo:   testRepo(),
			Path:   path,
			State:  model.LocalState{Exists: true},
			Status: model.StatusInSync,
		}
	}

	readDoc := func() map[string]any {
		raw, err := os.ReadFile(settingsPath)
		Expect(err).NotTo(HaveOccurred())
		var doc map[string]any
		Expect(json.Unmarshal(raw, &doc)).To(Succeed())
		return doc
	}

	It("creates the settings file when absent", func() {
		act := action.NewSandboxEnable()

		res := act.Apply(context.Background(), request())

		Expect(res.Outcome).To(Equal(model.OutcomeSuccess))
		Expect(res.Message).To(Equal("sandbox enabled"))

		doc := readDoc()
		sandbox := doc["sandbox"].(map[string]any)
		Expect(sandbox["enabled"]).To(BeTrue())
		Expect(sandbox["autoAllowBashIfSandboxed"]).To(BeTrue())
		Expect(sandbox["excludedCommands"]).To(Equal([]any{"docker"}))
		network := sandbox["network"].(map[string]any)
		Expect(network["allowLocalBinding"]).To(BeTrue())
		permissions := doc["permissions"].(map[string]any)
		Expect(permissions["defaultMode"]).To(Equal("acceptEdits"))
	})

	It("writes two-space indented JSON with a trailing newline", func() {
		act := action.NewSandboxEnable()

		act.Apply(context.Background(), request())

		raw, err := os.ReadFile(settingsPath)
		Expect(err).NotTo(HaveOccurred())
		Expect(strings.HasSuffix(string(raw), "\n")).To(BeTrue())
		Expect(string(raw)).To(ContainSubstring("\n  \"permissions\""))
	})

	It("merges into existing settings without clobbering them", func() {
		Expect(os.MkdirAll(filepath.Dir(settingsPath), 0o755)).To(Succeed())
		existing := `{"permissions":{"allow":["Bash(ls:*)"]},"model":"sonnet"}`
		Expect(os.WriteFile(settingsPath, []byte(existing), 0o644)).To(Succeed())
		act := action.NewSandboxEnable()

		res := act.Apply(context.Background(), request())

		Expect(res.Outcome).To(Equal(model.OutcomeSuccess))
		doc := readDoc()
		Expect(doc["model"]).To(Equal("sonnet"))
		permissions := doc["permissions"].(map[string]any)
		Expect(permissions["allow"]).To(Equal([]any{"Bash(ls:*)"}))
		Expect(permissions["defaultMode"]).To(Equal("acceptEdits"))
	})

	It("skips when the patch is already applied", func() {
		act := action.NewSandboxEnable()
		first := act.Apply(context.Background(), request())
		Expect(first.Outcome).To(Equal(model.OutcomeSuccess))

		second := act.Apply(context.Background(), request())

		Expect(second.Outcome).To(Equal(model.OutcomeSkipped))
		Expect(second.Message).To(Equal("sandbox already enabled"))
	})

	It("does not write on dry run", func() {
		act := action.NewSandboxEnable()
		req := request()
		req.DryRun = true

		res := act.Apply(context.Background(), req)

		Expect(res.Outcome).To(Equal(model.OutcomeSkipped))
		Expect(res.Message).To(Equal("would patch .claude/settings.local.json"))
		Expect(settingsPath).NotTo(BeAnExistingFile())
	})

	It("fails on unparseable settings", func() {
		Expect(os.MkdirAll(filepath.Dir(settingsPath), 0o755)).To(Succeed())
		Expect(os.WriteFile(settingsPath, []byte("{not json"), 0o644)).To(Succeed())
		act := action.NewSandboxEnable()

		res := act.Apply(context.Background(), request())

		Expect(res.Outcome).To(Equal(model.OutcomeFailed))
		Expect(res.Message).To(Equal("reading .claude/settings.local.json"))
	})
})
