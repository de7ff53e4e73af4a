package issue_test

import (
	"bytes"
	"context"
	"log/slog"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/campus-fixit/internal/core/events"
	"github.com/frahmantamala/campus-fixit/internal/issue"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

var _ = Describe("AuditLog", func() {
	It("logs every issue event published on the bus", func() {
		out := &lockedBuffer{}
		lg := slog.New(slog.NewTextHandler(out, nil))
		bus := events.NewEventBus(quietLogger())
		issue.NewAuditLog(lg).Register(bus)

		service := issue.NewService(newMockIssueRepository(), nil, quietLogger(), issue.WithPublisher(bus))
		created, err := service.CreateIssue(context.Background(), issue.CreateIssueDTO{
			Title: "Router down", Description: "Library wifi", Category: "Internet",
		}, "student-a")
		Expect(err).NotTo(HaveOccurred())
		_, err = service.UpdateStatus(context.Background(), created.ID, issue.UpdateStatusDTO{Status: "In Progress"}, "admin-1")
		Expect(err).NotTo(HaveOccurred())
		_, err = service.AddRemark(context.Background(), created.ID, issue.AddRemarkDTO{Text: "Technician on the way"}, "admin-1")
		Expect(err).NotTo(HaveOccurred())

		bus.Wait()
		logged := out.String()
		Expect(logged).To(ContainSubstring("event_type=issue.created"))
		Expect(logged).To(ContainSubstring("event_type=issue.status_changed"))
		Expect(logged).To(ContainSubstring(`to="In Progress"`))
		Expect(logged).To(ContainSubstring("event_type=issue.remark_added"))
		Expect(logged).To(ContainSubstring("issue_id=" + created.ID))
	})
})
