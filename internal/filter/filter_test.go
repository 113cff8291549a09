package filter_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skaphos/gitfleet/internal/filter"
	"github.com/skaphos/gitfleet/internal/model"
)

func named(name string) filter.Predicate {
	return filter.Leaf(func(r model.Repository) bool { return r.Name == name })
}

var fleet = []model.Repository{
	{ID: 1, Name: "api-server", FullName: "acme/api-server", Owner: "acme", Private: true},
	{ID: 2, Name: "api-client", FullName: "acme/api-client", Owner: "acme"},
	{ID: 3, Name: "website", FullName: "acme/website", Owner: "acme", Archived: true},
	{ID: 4, Name: "dotfiles", FullName: "jdoe/dotfiles", Owner: "jdoe"},
	{ID: 5, Name: "linux", FullName: "jdoe/linux", Owner: "jdoe", Fork: true},
}

var _ = Describe("Predicate", func() {
	repo := model.Repository{Name: "api-server"}

	It("matches everything as the zero value", func() {
		var p filter.Predicate
		Expect(p.Eval(repo)).To(BeTrue())
	})

	It("evaluates a leaf", func() {
		Expect(named("api-server").Eval(repo)).To(BeTrue())
		Expect(named("other").Eval(repo)).To(BeFalse())
	})

	Describe("And", func() {
		It("requires every child", func() {
			p := filter.And(named("api-server"), filter.Leaf(func(r model.Repository) bool { return !r.Fork }))
			Expect(p.Eval(repo)).To(BeTrue())
			Expect(p.Eval(model.Repository{Name: "api-server", Fork: true})).To(BeFalse())
		})

		It("matches everything when empty", func() {
			Expect(filter.And().Eval(repo)).To(BeTrue())
		})

		It("flattens nested Ands", func() {
			p := filter.And(filter.And(named("a"), named("b")), named("c"))
			Expect(p.String()).To(Equal("and(leaf, leaf, leaf)"))
		})
	})

	Describe("Or", func() {
		It("requires any child", func() {
			p := filter.Or(named("other"), named("api-server"))
			Expect(p.Eval(repo)).To(BeTrue())
			Expect(filter.Or(named("x"), named("y")).Eval(repo)).To(BeFalse())
		})

		It("matches nothing when empty", func() {
			Expect(filter.Or().Eval(repo)).To(BeFalse())
		})

		It("flattens nested Ors but not Ands", func() {
			p := filter.Or(filter.Or(named("a"), named("b")), filter.And(named("c"), named("d")))
			Expect(p.String()).To(Equal("or(leaf, leaf, and(leaf, leaf))"))
		})
	})

	Describe("Not", func() {
		It("inverts the inner predicate", func() {
			Expect(filter.Not(named("api-server")).Eval(repo)).To(BeFalse())
			Expect(filter.Not(named("other")).Eval(repo)).To(BeTrue())
			Expect(filter.Not(filter.Not(named("api-server"))).Eval(repo)).To(BeTrue())
		})
	})
})

var _ = Describe("Options", func() {
	names := func(repos []model.Repository) []string {
		out := make([]string, len(repos))
		for i, r := range repos {
			out[i] = r.Name
		}
		return out
	}

	apply := func(opts filter.Options) []model.Repository {
		pred, err := opts.Build()
		Expect(err).NotTo(HaveOccurred())
		return filter.Apply(pred, fleet)
	}

	It("drops forks and archived repos by default", func() {
		Expect(names(apply(filter.Options{}))).To(Equal([]string{"api-server", "api-client", "dotfiles"}))
	})

	It("keeps forks when included", func() {
		Expect(names(apply(filter.Options{IncludeForks: true}))).To(ContainElement("linux"))
	})

	It("keeps archived repos when included", func() {
		Expect(names(apply(filter.Options{IncludeArchived: true}))).To(ContainElement("website"))
	})

	It("selects by bare name case-insensitively", func() {
		Expect(names(apply(filter.Options{Names: []string{"API-Server"}}))).To(Equal([]string{"api-server"}))
	})

	It("selects by owner/name", func() {
		Expect(names(apply(filter.Options{Names: []string{"jdoe/dotfiles"}}))).To(Equal([]string{"dotfiles"}))
	})

	It("selects by org", func() {
		Expect(names(apply(filter.Options{Orgs: []string{"acme"}}))).To(Equal([]string{"api-server", "api-client"}))
	})

	It("selects by glob pattern", func() {
		Expect(names(apply(filter.Options{Patterns: []string{"api-*"}}))).To(Equal([]string{"api-server", "api-client"}))
	})

	It("selects private repositories only", func() {
		Expect(names(apply(filter.Options{PrivateOnly: true}))).To(Equal([]string{"api-server"}))
	})

	It("selects public repositories only", func() {
		Expect(names(apply(filter.Options{PublicOnly: true}))).To(Equal([]string{"api-client", "dotfiles"}))
	})

	It("combines criteria with AND", func() {
		got := apply(filter.Options{Orgs: []string{"acme"}, Patterns: []string{"api-*"}, PrivateOnly: true})
		Expect(names(got)).To(Equal([]string{"api-server"}))
	})

	It("rejects private-only combined with public-only", func() {
		_, err := filter.Options{PrivateOnly: true, PublicOnly: true}.Build()
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("mutually exclusive"))
	})

	It("rejects malformed patterns", func() {
		err := filter.Options{Patterns: []string{"[unclosed"}}.Validate()
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("invalid pattern"))
	})
})

var _ = Describe("Apply", func() {
	It("preserves input order", func() {
		pred, err := filter.Options{IncludeForks: true, IncludeArchived: true}.Build()
		Expect(err).NotTo(HaveOccurred())
		got := filter.Apply(pred, fleet)
		Expect(got).To(HaveLen(len(fleet)))
		for i := range got {
			Expect(got[i].ID).To(Equal(fleet[i].ID))
		}
	})

	It("returns an empty slice when nothing matches", func() {
		pred, err := filter.Options{Names: []string{"nope"}}.Build()
		Expect(err).NotTo(HaveOccurred())
		Expect(filter.Apply(pred, fleet)).To(BeEmpty())
	})
})
