package internal

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Database.Source = "postgres://localhost/campus_fixit"
	cfg.Security.JWTSecret = "a-very-long-test-secret"
	return cfg
}

var _ = Describe("Config", func() {
	It("accepts the defaults once secrets are filled in", func() {
		Expect(validConfig().Validate()).To(Succeed())
	})

	It("requires a JWT secret", func() {
		cfg := validConfig()
		cfg.Security.JWTSecret = ""
		Expect(cfg.Validate()).To(MatchError(ContainSubstring("JWTSecret")))
	})

	It("rejects unknown database drivers", func() {
		cfg := validConfig()
		cfg.Database.Driver = "mysql"
		Expect(cfg.Validate()).To(MatchError(ContainSubstring("Driver")))
	})

	It("needs cloudinary credentials for cloudinary storage", func() {
		cfg := validConfig()
		cfg.Upload.Storage = "cloudinary"
		Expect(cfg.Validate()).To(MatchError(ContainSubstring("cloudinary storage needs")))

		cfg.Upload.Cloudinary = CloudinaryConfig{CloudName: "c", APIKey: "k", APISecret: "s"}
		Expect(cfg.Validate()).To(Succeed())
	})

	It("checks pool sizes against each other", func() {
		cfg := validConfig()
		cfg.Database.MaxIdleConns = 20
		Expect(cfg.Validate()).To(MatchError(ContainSubstring("max_idle_conns")))
	})

	It("splits allowed origins", func() {
		s := ServerConfig{AllowedOrigins: "http://a.test, http://b.test,"}
		Expect(s.Origins()).To(Equal([]string{"http://a.test", "http://b.test"}))
		Expect((&ServerConfig{}).Origins()).To(Equal([]string{"*"}))
	})

	It("reads plain environment variables", func() {
		GinkgoT().Setenv("PORT", "8080")
		GinkgoT().Setenv("DB_DRIVER", "sqlite")
		GinkgoT().Setenv("DATABASE_URL", "file:fixit.db")
		GinkgoT().Setenv("JWT_SECRET", "env-secret-0123456789")
		GinkgoT().Setenv("JWT_EXPIRES_IN", "7d")
		GinkgoT().Setenv("BCRYPT_COST", "not-a-number")

		cfg := LoadConfigFromEnv()
		Expect(cfg.Server.Port).To(Equal(8080))
		Expect(cfg.Database.Driver).To(Equal("sqlite"))
		Expect(cfg.Security.TokenDuration).To(Equal(7 * 24 * time.Hour))
		Expect(cfg.Security.BCryptCost).To(Equal(12))
		Expect(cfg.Validate()).To(Succeed())
	})

	DescribeTable("ParseDuration",
		func(in string, want time.Duration, ok bool) {
			got, err := ParseDuration(in)
			if !ok {
				Expect(err).To(HaveOccurred())
				return
			}
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		},
		Entry("days", "7d", 7*24*time.Hour, true),
		Entry("hours", "168h", 168*time.Hour, true),
		Entry("bad days", "xd", time.Duration(0), false),
		Entry("garbage", "soon", time.Duration(0), false),
	)
})
