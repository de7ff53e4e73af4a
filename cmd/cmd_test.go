package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/campus-fixit/internal"
	"github.com/frahmantamala/campus-fixit/internal/auth"
	"github.com/frahmantamala/campus-fixit/internal/core/events"
	coreuser "github.com/frahmantamala/campus-fixit/internal/core/user"
	"github.com/frahmantamala/campus-fixit/internal/upload"
)

type fakeRegistrar struct {
	taken map[string]bool
	seen  []auth.RegisterDTO
	err   error
}

func (f *fakeRegistrar) Register(ctx context.Context, dto auth.RegisterDTO) (*auth.AuthResult, error) {
	f.seen = append(f.seen, dto)
	if f.err != nil {
		return nil, f.err
	}
	if f.taken[dto.Email] {
		return nil, internal.ErrEmailTaken
	}
	return &auth.AuthResult{Token: "t", User: auth.UserSummary{ID: "id", Email: dto.Email, Role: coreuser.Role(dto.Role)}}, nil
}

var _ = Describe("seedAccounts", func() {
	It("registers an admin and a student with the given password", func() {
		reg := &fakeRegistrar{}
		Expect(seedAccounts(context.Background(), reg, "secret1")).To(Succeed())

		Expect(reg.seen).To(HaveLen(2))
		Expect(reg.seen[0].Role).To(Equal("admin"))
		Expect(reg.seen[1].Role).To(Equal("student"))
		for _, dto := range reg.seen {
			Expect(dto.Password).To(Equal("secret1"))
		}
	})

	It("skips accounts that already exist", func() {
		reg := &fakeRegistrar{taken: map[string]bool{"admin@campus.edu": true}}
		Expect(seedAccounts(context.Background(), reg, "secret1")).To(Succeed())
		Expect(reg.seen).To(HaveLen(2))
	})

	It("stops on other failures", func() {
		reg := &fakeRegistrar{err: errors.New("db down")}
		err := seedAccounts(context.Background(), reg, "secret1")
		Expect(err).To(MatchError(ContainSubstring("db down")))
		Expect(reg.seen).To(HaveLen(1))
	})
})

var _ = Describe("sampleEvent", func() {
	It("builds each issue event type", func() {
		for _, t := range events.IssueEventTypes {
			e, err := sampleEvent(t, "cli")
			Expect(err).NotTo(HaveOccurred())
			Expect(e.EventType()).To(Equal(t))
			Expect(e.EventID()).NotTo(BeEmpty())
		}
	})

	It("rejects unknown types", func() {
		_, err := sampleEvent("order.shipped", "cli")
		Expect(err).To(MatchError(ContainSubstring("unknown event type")))
	})
})

var _ = Describe("NewApp", func() {
	var cfg *internal.Config

	BeforeEach(func() {
		dir := GinkgoT().TempDir()
		cfg = internal.DefaultConfig()
		cfg.Database.Driver = "sqlite"
		cfg.Database.Source = filepath.Join(dir, "app.db")
		cfg.Database.MaxOpenConns = 1
		cfg.Database.MaxIdleConns = 1
		cfg.Security.JWTSecret = "cmd-test-secret-0123456789"
		cfg.Security.BCryptCost = 4
		cfg.Upload.Dir = filepath.Join(dir, "uploads")
	})

	It("wires a router and creates the upload directory", func() {
		app, err := NewApp(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
		Expect(err).NotTo(HaveOccurred())
		defer app.Close()

		Expect(app.Handler()).NotTo(BeNil())
		Expect(app.Auth).NotTo(BeNil())
		info, err := os.Stat(cfg.Upload.Dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(info.IsDir()).To(BeTrue())
	})

	It("fails on an unsupported driver", func() {
		cfg.Database.Driver = "mysql"
		_, err := NewApp(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
		Expect(err).To(MatchError(ContainSubstring("unsupported database driver")))
	})

	It("fails fast when redis is unreachable", func() {
		cfg.Redis.URL = "redis://127.0.0.1:1/0"
		_, err := NewApp(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
		Expect(err).To(MatchError(ContainSubstring("failed to reach redis")))
	})
})

var _ = Describe("newImageStore", func() {
	It("serves local uploads from the configured directory", func() {
		cfg := internal.DefaultConfig()
		cfg.Upload.Dir = filepath.Join(GinkgoT().TempDir(), "u")

		store, dir, err := newImageStore(cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(store).To(BeAssignableToTypeOf(&upload.LocalStore{}))
		Expect(dir).To(Equal(cfg.Upload.Dir))
	})

	It("uses cloudinary without a static directory", func() {
		cfg := internal.DefaultConfig()
		cfg.Upload.Storage = "cloudinary"
		cfg.Upload.Cloudinary = internal.CloudinaryConfig{CloudName: "demo", APIKey: "key", APISecret: "secret"}

		store, dir, err := newImageStore(cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(store).To(BeAssignableToTypeOf(&upload.CloudinaryStore{}))
		Expect(dir).To(BeEmpty())
	})
})

var _ = Describe("loadConfigFile", func() {
	It("reads config.yml over the defaults", func() {
		dir := GinkgoT().TempDir()
		yml := "database:\n  driver: sqlite\n  source: fixit.db\nsecurity:\n  jwt_secret: file-secret-0123456789\n"
		Expect(os.WriteFile(filepath.Join(dir, "config.yml"), []byte(yml), 0o600)).To(Succeed())

		cfg, err := loadConfigFile(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Database.Driver).To(Equal("sqlite"))
		Expect(cfg.Database.Source).To(Equal("fixit.db"))
		Expect(cfg.Security.JWTSecret).To(Equal("file-secret-0123456789"))
		Expect(cfg.Server.Port).To(Equal(5000))
		Expect(cfg.Validate()).To(Succeed())
	})

	It("fails without a config file", func() {
		_, err := loadConfigFile(GinkgoT().TempDir())
		Expect(err).To(MatchError(ContainSubstring("error reading config")))
	})
})
