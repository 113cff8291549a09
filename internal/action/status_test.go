// SPDX-License-Identifier: MIT
package action_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skaphos/gitfleet/internal/action"
	"github.com/skaphos/gitfleet/internal/model"
)

var _ = Describe("Status", func() {
	It("reports the classification detail as the message", func() {
		act := action.NewStatus()

		res := act.Apply(context.Background(), action.Request{
			Repo: testRepo(),
			State: model.LocalState{
				Exists: true, Branch: "main", HasUpstream: true,
				Upstream: "origin/main", Ahead: 2,
			},
			Status: model.StatusUnpushed,
		})

		Expect(res.Outcome).To(Equal(model.OutcomeSuccess))
		Expect(res.Message).To(Equal("ahead of origin/main by 2"))
	})

	It("describes clean checkouts as in sync", func() {
		act := action.NewStatus()

		res := act.Apply(context.Background(), action.Request{
			Repo:   testRepo(),
			State:  model.LocalState{Exists: true, Branch: "main", HasUpstream: true},
			Status: model.StatusInSync,
		})

		Expect(res.Message).To(Equal("in sync"))
	})
})
