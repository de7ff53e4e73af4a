package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/campus-fixit/internal"
	coreuser "github.com/frahmantamala/campus-fixit/internal/core/user"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   struct {
		Message string `json:"message"`
	} `json:"error"`
}

func decodeEnvelope(rec *httptest.ResponseRecorder) envelope {
	var env envelope
	gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &env)).To(gomega.Succeed())
	return env
}

var _ = ginkgo.Describe("Auth Handler", func() {
	var (
		service *Service
		handler *Handler
		rbac    *RBACAuthorization
		router  chi.Router
		reached bool
	)

	ginkgo.BeforeEach(func() {
		reached = false
		service = NewService(newMockCredentialRepository(), NewJWTTokenGenerator("handler-secret-123", 0), quietLogger(), WithBcryptCost(bcrypt.MinCost))
		handler = NewHandler(service)
		rbac = NewRBACAuthorization(DefaultPolicy(), quietLogger())

		ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reached = true
			id, _ := internal.IdentityFromContext(r.Context())
			handler.WriteSuccess(w, http.StatusOK, map[string]string{"id": id.UserID}, "")
		})

		router = chi.NewRouter()
		router.Post("/auth/register", handler.Register)
		router.Post("/auth/login", handler.Login)
		router.Group(func(r chi.Router) {
			r.Use(handler.AuthMiddleware)
			r.Get("/me", ok)
			r.With(rbac.RequireAdmin()).Get("/admin", ok)
			r.With(rbac.RequireRoles(coreuser.RoleStudent)).Get("/students", ok)
			r.With(rbac.Require(ActionViewIssueStats)).Get("/stats", ok)
		})
	})

	do := func(method, path, body, authHeader string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if authHeader != "" {
			req.Header.Set("Authorization", authHeader)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	tokenFor := func(role coreuser.Role) string {
		t, err := service.IssueToken("u-1", role)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		return t
	}

	ginkgo.Describe("Register and Login", func() {
		ginkgo.It("registers with 201 and the success envelope", func() {
			rec := do(http.MethodPost, "/auth/register", `{"name":"A","email":"a@test.com","password":"password1"}`, "")
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusCreated))
			env := decodeEnvelope(rec)
			gomega.Expect(env.Success).To(gomega.BeTrue())
			gomega.Expect(env.Message).To(gomega.Equal("Registration successful"))

			var result AuthResult
			gomega.Expect(json.Unmarshal(env.Data, &result)).To(gomega.Succeed())
			gomega.Expect(result.Token).NotTo(gomega.BeEmpty())
			gomega.Expect(result.User.Email).To(gomega.Equal("a@test.com"))
		})

		ginkgo.It("answers 400 for a malformed body", func() {
			rec := do(http.MethodPost, "/auth/register", `{"name":`, "")
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
			gomega.Expect(decodeEnvelope(rec).Success).To(gomega.BeFalse())
		})

		ginkgo.It("answers 401 for bad credentials", func() {
			do(http.MethodPost, "/auth/register", `{"name":"A","email":"a@test.com","password":"password1"}`, "")
			rec := do(http.MethodPost, "/auth/login", `{"email":"a@test.com","password":"nope123"}`, "")
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(decodeEnvelope(rec).Error.Message).To(gomega.Equal("Invalid credentials"))
		})

		ginkgo.It("logs in with 200", func() {
			do(http.MethodPost, "/auth/register", `{"name":"A","email":"a@test.com","password":"password1"}`, "")
			rec := do(http.MethodPost, "/auth/login", `{"email":"A@test.com","password":"password1"}`, "")
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(decodeEnvelope(rec).Message).To(gomega.Equal("Login successful"))
		})
	})

	ginkgo.DescribeTable("authentication failures short-circuit with 401",
		func(header, message string) {
			rec := do(http.MethodGet, "/me", "", header)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(decodeEnvelope(rec).Error.Message).To(gomega.Equal(message))
			gomega.Expect(reached).To(gomega.BeFalse())
		},
		ginkgo.Entry("missing header", "", "No token provided"),
		ginkgo.Entry("wrong scheme", "Token abc", "Invalid token format"),
		ginkgo.Entry("empty bearer", "Bearer ", "No token provided"),
		ginkgo.Entry("garbage token", "Bearer abc.def.ghi", "Invalid token"),
	)

	ginkgo.It("puts the identity on the context", func() {
		rec := do(http.MethodGet, "/me", "", "Bearer "+tokenFor(coreuser.RoleStudent))
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		gomega.Expect(reached).To(gomega.BeTrue())
		gomega.Expect(string(decodeEnvelope(rec).Data)).To(gomega.ContainSubstring(`"u-1"`))
	})

	ginkgo.Describe("role gates", func() {
		ginkgo.It("refuses students on admin routes with 403", func() {
			rec := do(http.MethodGet, "/admin", "", "Bearer "+tokenFor(coreuser.RoleStudent))
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
			gomega.Expect(decodeEnvelope(rec).Error.Message).To(gomega.Equal("Access denied. Admin privileges required."))
			gomega.Expect(reached).To(gomega.BeFalse())
		})

		ginkgo.It("lets admins through", func() {
			rec := do(http.MethodGet, "/admin", "", "Bearer "+tokenFor(coreuser.RoleAdmin))
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		})

		ginkgo.It("applies the general role gate", func() {
			rec := do(http.MethodGet, "/students", "", "Bearer "+tokenFor(coreuser.RoleAdmin))
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
			gomega.Expect(decodeEnvelope(rec).Error.Message).To(gomega.Equal("Access denied. Insufficient privileges."))
		})

		ginkgo.It("gates on policy actions", func() {
			rec := do(http.MethodGet, "/stats", "", "Bearer "+tokenFor(coreuser.RoleStudent))
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
			rec = do(http.MethodGet, "/stats", "", "Bearer "+tokenFor(coreuser.RoleAdmin))
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		})

		ginkgo.It("reports 401 when no identity reached the gate", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(context.Background())
			rec := httptest.NewRecorder()
			rbac.RequireAdmin()(http.NotFoundHandler()).ServeHTTP(rec, req)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		})
	})
})
