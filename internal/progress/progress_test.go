package progress_test

import (
	"bytes"
	"strings"
	"unicode/utf8"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skaphos/gitfleet/internal/model"
	"github.com/skaphos/gitfleet/internal/progress"
)

var (
	_ progress.Reporter = (*progress.Bar)(nil)
	_ progress.Reporter = progress.Discard{}
)

func result(repo string, outcome model.Outcome) model.ActionResult {
	return model.ActionResult{Repo: repo, Outcome: outcome}
}

var _ = Describe("Bar", func() {
	var buf *bytes.Buffer

	BeforeEach(func() {
		buf = &bytes.Buffer{}
	})

	It("counts outcomes as they arrive", func() {
		bar := progress.NewBar(buf, false)
		bar.Begin(3)
		bar.Observe(result("a/one", model.OutcomeSuccess))
		bar.Observe(result("a/two", model.OutcomeSkipped))
		bar.Observe(result("a/three", model.OutcomeFailed))

		Expect(buf.String()).To(ContainSubstring("[0/3] ✓ 0 ⊘ 0 ✗ 0"))
		Expect(buf.String()).To(ContainSubstring("[3/3] ✓ 1 ⊘ 1 ✗ 1 a/three"))
	})

	It("shows the repository just finished", func() {
		bar := progress.NewBar(buf, false)
		bar.Begin(1)
		bar.Observe(result("acme/api-server", model.OutcomeSuccess))

		Expect(buf.String()).To(ContainSubstring("acme/api-server"))
	})

	It("pads shorter redraws so stale text never lingers", func() {
		bar := progress.NewBar(buf, false)
		bar.Begin(2)
		bar.Observe(result("acme/a-rather-long-repository-name", model.OutcomeSuccess))
		bar.Observe(result("x", model.OutcomeSuccess))

		segments := strings.Split(buf.String(), "\r")
		Expect(segments).To(HaveLen(4))
		long, short := segments[2], segments[3]
		Expect(utf8.RuneCountInString(short)).To(Equal(utf8.RuneCountInString(long)))
		Expect(strings.TrimRight(short, " ")).To(HaveSuffix(" x"))
	})

	It("clears the line on End", func() {
		bar := progress.NewBar(buf, false)
		bar.Begin(1)
		bar.Observe(result("a/one", model.OutcomeSuccess))
		bar.End()

		Expect(buf.String()).To(HaveSuffix("\r"))
		segments := strings.Split(buf.String(), "\r")
		blank := segments[len(segments)-2]
		Expect(strings.TrimRight(blank, " ")).To(BeEmpty())
		Expect(blank).NotTo(BeEmpty())
	})

	It("is a no-op before the first draw", func() {
		bar := progress.NewBar(buf, false)
		bar.End()
		Expect(buf.String()).To(BeEmpty())
	})

	It("wraps glyphs in color when enabled", func() {
		bar := progress.NewBar(buf, true)
		bar.Begin(1)
		bar.Observe(result("a/one", model.OutcomeFailed))

		Expect(buf.String()).To(ContainSubstring("\x1b[32m✓\x1b[0m"))
		Expect(buf.String()).To(ContainSubstring("\x1b[31m✗\x1b[0m"))
	})

	It("emits no escapes when color is disabled", func() {
		bar := progress.NewBar(buf, false)
		bar.Begin(1)
		bar.Observe(result("a/one", model.OutcomeSuccess))
		bar.End()

		Expect(buf.String()).NotTo(ContainSubstring("\x1b["))
	})
})
