package main_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/campus-fixit/cmd"
	"github.com/frahmantamala/campus-fixit/db"
	"github.com/frahmantamala/campus-fixit/internal"
	"github.com/frahmantamala/campus-fixit/pkg/client"
)

func testConfig(dir string) *internal.Config {
	cfg := internal.DefaultConfig()
	cfg.Database.Driver = db.DriverSQLite
	cfg.Database.Source = filepath.Join(dir, "fixit.db")
	cfg.Database.MaxOpenConns = 1
	cfg.Database.MaxIdleConns = 1
	cfg.Security.JWTSecret = "scenario-secret-0123456789"
	cfg.Security.BCryptCost = 4
	cfg.Upload.Dir = filepath.Join(dir, "uploads")
	cfg.Logging.Level = "error"
	return cfg
}

var pngImage = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

var _ = Describe("Campus FixIt API", func() {
	var (
		ctx context.Context
		srv *httptest.Server
		app *cmd.App
		api string
	)

	BeforeEach(func() {
		ctx = context.Background()
		srv = httptest.NewUnstartedServer(nil)

		cfg := testConfig(GinkgoT().TempDir())
		cfg.Server.BaseURL = "http://" + srv.Listener.Addr().String()
		Expect(cfg.Validate()).To(Succeed())

		var err error
		app, err = cmd.NewApp(ctx, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
		Expect(err).NotTo(HaveOccurred())

		applied, err := db.MigrateUp(ctx, app.DB.SQLX.DB, cfg.Database.Driver)
		Expect(err).NotTo(HaveOccurred())
		Expect(applied).To(Equal(2))

		srv.Config.Handler = app.Handler()
		srv.Start()
		api = srv.URL + "/api"
	})

	AfterEach(func() {
		srv.Close()
		Expect(app.Close()).To(Succeed())
	})

	register := func(name, email, password, role string) *client.Client {
		c := client.New(api)
		_, err := c.Register(ctx, client.RegisterRequest{Name: name, Email: email, Password: password, Role: role})
		Expect(err).NotTo(HaveOccurred())
		return c
	}

	apiStatus := func(err error) int {
		var apiErr *client.APIError
		Expect(errors.As(err, &apiErr)).To(BeTrue())
		return apiErr.Status
	}

	It("walks an issue from report to resolution", func() {
		student := register("Student A", "a@test.com", "password1", "")

		created, err := student.CreateIssue(ctx, client.NewIssue{
			Title:       "Broken Light",
			Description: "The hallway light on floor two flickers",
			Category:    "Electrical",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(created.Status).To(Equal("Open"))
		Expect(created.CreatedBy.Email).To(Equal("a@test.com"))
		Expect(created.ResolvedAt).To(BeNil())

		register("Admin B", "b@test.com", "password2", "admin")
		admin := client.New(api)
		_, err = admin.Login(ctx, "B@Test.com", "password2")
		Expect(err).NotTo(HaveOccurred())

		inProgress, err := admin.UpdateStatus(ctx, created.ID, "In Progress")
		Expect(err).NotTo(HaveOccurred())
		Expect(inProgress.Status).To(Equal("In Progress"))
		Expect(inProgress.ResolvedAt).To(BeNil())

		remarked, err := admin.AddRemark(ctx, created.ID, "assigned")
		Expect(err).NotTo(HaveOccurred())
		Expect(remarked.Remarks).To(HaveLen(1))
		Expect(remarked.Remarks[0].Text).To(Equal("assigned"))

		resolved, err := admin.UpdateStatus(ctx, created.ID, "Resolved")
		Expect(err).NotTo(HaveOccurred())
		Expect(resolved.ResolvedAt).NotTo(BeNil())

		again, err := admin.UpdateStatus(ctx, created.ID, "Resolved")
		Expect(err).NotTo(HaveOccurred())
		Expect(again.ResolvedAt.Equal(*resolved.ResolvedAt)).To(BeTrue())

		stats, err := admin.Stats(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(stats.Total).To(Equal(int64(1)))
		Expect(stats.ByStatus).To(HaveKeyWithValue("Resolved", int64(1)))
	})

	It("scopes issue reads to the creator and admins", func() {
		owner := register("Owner", "owner@test.com", "password1", "")
		other := register("Other", "other@test.com", "password1", "")
		admin := register("Admin", "admin@test.com", "password1", "admin")

		created, err := owner.CreateIssue(ctx, client.NewIssue{Title: "Leak", Description: "Sink leaking", Category: "Water"})
		Expect(err).NotTo(HaveOccurred())

		_, err = owner.GetIssue(ctx, created.ID)
		Expect(err).NotTo(HaveOccurred())
		_, err = admin.GetIssue(ctx, created.ID)
		Expect(err).NotTo(HaveOccurred())

		_, err = other.GetIssue(ctx, created.ID)
		Expect(apiStatus(err)).To(Equal(http.StatusForbidden))

		_, err = other.AllIssues(ctx, client.Filters{})
		Expect(apiStatus(err)).To(Equal(http.StatusForbidden))
		_, err = other.UpdateStatus(ctx, created.ID, "Resolved")
		Expect(apiStatus(err)).To(Equal(http.StatusForbidden))
	})

	It("filters my issues by category newest first", func() {
		student := register("Student", "s@test.com", "password1", "")
		someoneElse := register("Else", "e@test.com", "password1", "")

		first, err := student.CreateIssue(ctx, client.NewIssue{Title: "Leak one", Description: "d", Category: "Water"})
		Expect(err).NotTo(HaveOccurred())
		_, err = student.CreateIssue(ctx, client.NewIssue{Title: "Outlet", Description: "d", Category: "Electrical"})
		Expect(err).NotTo(HaveOccurred())
		time.Sleep(5 * time.Millisecond)
		second, err := student.CreateIssue(ctx, client.NewIssue{Title: "Leak two", Description: "d", Category: "Water"})
		Expect(err).NotTo(HaveOccurred())
		_, err = someoneElse.CreateIssue(ctx, client.NewIssue{Title: "Their leak", Description: "d", Category: "Water"})
		Expect(err).NotTo(HaveOccurred())

		mine, err := student.MyIssues(ctx, client.Filters{Category: "Water"})
		Expect(err).NotTo(HaveOccurred())
		Expect(mine).To(HaveLen(2))
		Expect(mine[0].ID).To(Equal(second.ID))
		Expect(mine[1].ID).To(Equal(first.ID))
	})

	It("rejects duplicate registration and bad credentials", func() {
		register("Student", "dup@test.com", "password1", "")

		_, err := client.New(api).Register(ctx, client.RegisterRequest{Name: "Again", Email: "DUP@test.com", Password: "password1"})
		Expect(apiStatus(err)).To(Equal(http.StatusBadRequest))

		_, err = client.New(api).Login(ctx, "dup@test.com", "badpass")
		Expect(apiStatus(err)).To(Equal(http.StatusUnauthorized))
	})

	It("rejects an unknown category", func() {
		student := register("Student", "c@test.com", "password1", "")
		_, err := student.CreateIssue(ctx, client.NewIssue{Title: "t", Description: "d", Category: "InvalidCategory"})
		Expect(apiStatus(err)).To(Equal(http.StatusBadRequest))
	})

	It("stores and serves an attached photo", func() {
		student := register("Student", "p@test.com", "password1", "")
		created, err := student.CreateIssue(ctx, client.NewIssue{
			Title:       "Cracked window",
			Description: "Library window",
			Category:    "Infrastructure",
			Image:       &client.Image{FileName: "window.png", ContentType: "image/png", Data: pngImage},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(created.ImageURL).NotTo(BeNil())
		Expect(*created.ImageURL).To(HavePrefix(srv.URL + "/uploads/issue-"))

		resp, err := http.Get(*created.ImageURL)
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		body, _ := io.ReadAll(resp.Body)
		Expect(body).To(Equal(pngImage))
	})
})
