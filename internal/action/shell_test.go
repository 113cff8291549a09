// SPDX-License-Identifier: MIT
package action_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skaphos/gitfleet/internal/action"
	"github.com/skaphos/gitfleet/internal/model"
)

var _ = Describe("Shell", func() {
	var sh *MockRunner

	BeforeEach(func() {
		sh = &MockRunner{Responses: map[string]MockResponse{}}
	})

	request := func(dryRun bool) action.Request {
		return action.Request{
			Repo:   testRepo(),
			Path:   "/base/widgets",
			State:  model.LocalState{Exists: true},
			Status: model.StatusInSync,
			DryRun: dryRun,
		}
	}

	It("runs the command through sh -c in the checkout", func() {
		sh.Responses["/base/widgets:-c make test"] = MockResponse{Output: "built 3 targets\ndetails follow"}
		act := action.NewShell(action.Deps{Sh: sh}, "make test")

		res := act.Apply(context.Background(), request(false))

		Expect(res.Outcome).To(Equal(model.OutcomeSuccess))
		Expect(res.Message).To(Equal("built 3 targets"))
	})

	It("reports silent commands as succeeded", func() {
		sh.Responses["/base/widgets:-c true"] = MockResponse{}
		act := action.NewShell(action.Deps{Sh: sh}, "true")

		res := act.Apply(context.Background(), request(false))

		Expect(res.Message).To(Equal("command succeeded"))
	})

	It("previews the command on dry run", func() {
		act := action.NewShell(action.Deps{Sh: sh}, "make test")

		res := act.Apply(context.Background(), request(true))

		Expect(res.Outcome).To(Equal(model.OutcomeSkipped))
		Expect(res.Message).To(Equal("would run: make test"))
		Expect(sh.Calls()).To(BeEmpty())
	})

	It("fails when the command fails", func() {
		sh.Responses["/base/widgets:-c make test"] = MockResponse{Err: errors.New("exit status 2")}
		act := action.NewShell(action.Deps{Sh: sh}, "make test")

		res := act.Apply(context.Background(), request(false))

		Expect(res.Outcome).To(Equal(model.OutcomeFailed))
		Expect(res.Message).To(Equal("command failed"))
	})

	It("fails without a command", func() {
		act := action.NewShell(action.Deps{Sh: sh}, "  ")

		res := act.Apply(context.Background(), request(false))

		Expect(res.Outcome).To(Equal(model.OutcomeFailed))
		Expect(res.Err).To(ContainSubstring("no command configured"))
	})
})
