package issue_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/campus-fixit/internal"
	"github.com/frahmantamala/campus-fixit/internal/auth"
	coreuser "github.com/frahmantamala/campus-fixit/internal/core/user"
	"github.com/frahmantamala/campus-fixit/internal/issue"
	"github.com/frahmantamala/campus-fixit/internal/upload"
	"github.com/frahmantamala/campus-fixit/internal/user"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

type fakeImageStore struct {
	saved   []string
	deleted []string
}

func (f *fakeImageStore) Save(ctx context.Context, img *upload.Image) (string, error) {
	url := "http://localhost:5000/uploads/issue-test" + img.Ext
	f.saved = append(f.saved, url)
	return url, nil
}

func (f *fakeImageStore) Delete(ctx context.Context, url string) error {
	f.deleted = append(f.deleted, url)
	return nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   struct {
		Message string `json:"message"`
	} `json:"error"`
}

// withIdentity stands in for the token middleware: X-Test-User and
// X-Test-Role become the caller identity.
func withIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if uid := r.Header.Get("X-Test-User"); uid != "" {
			id := internal.Identity{UserID: uid, Role: coreuser.Role(r.Header.Get("X-Test-Role"))}
			r = r.WithContext(internal.ContextWithIdentity(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

var _ = Describe("Issue Handler", func() {
	var (
		repo    *mockIssueRepository
		images  *fakeImageStore
		handler *issue.Handler
		router  chi.Router
	)

	BeforeEach(func() {
		repo = newMockIssueRepository()
		images = &fakeImageStore{}
		contacts := &mockContacts{users: map[string]user.ContactV1{
			"student-a": {ID: "student-a", Name: "Alice", Email: "alice@campus.edu"},
		}}
		service := issue.NewService(repo, contacts, quietLogger(), issue.WithStatsReader(fakeStats{}))
		handler = issue.NewHandler(service, images, auth.DefaultPolicy(), upload.DefaultMaxSize)
		rbac := auth.NewRBACAuthorization(auth.DefaultPolicy(), quietLogger())

		router = chi.NewRouter()
		router.Use(withIdentity)
		router.Route("/issues", func(r chi.Router) {
			r.Post("/", handler.CreateIssue)
			r.Get("/my", handler.GetMyIssues)
			r.With(rbac.RequireAdmin()).Get("/", handler.GetAllIssues)
			r.With(rbac.RequireAdmin()).Get("/stats", handler.GetStats)
			r.Get("/{id}", handler.GetIssue)
			r.With(rbac.RequireAdmin()).Patch("/{id}/status", handler.UpdateStatus)
			r.With(rbac.RequireAdmin()).Post("/{id}/remarks", handler.AddRemark)
		})
	})

	send := func(req *http.Request, userID string, role coreuser.Role) (*httptest.ResponseRecorder, envelope) {
		if userID != "" {
			req.Header.Set("X-Test-User", userID)
			req.Header.Set("X-Test-Role", string(role))
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		var env envelope
		Expect(json.Unmarshal(rec.Body.Bytes(), &env)).To(Succeed())
		return rec, env
	}

	jsonRequest := func(method, path, body string) *http.Request {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return req
	}

	multipartRequest := func(fields map[string]string, fileName, fileType string, content []byte) *http.Request {
		body := &bytes.Buffer{}
		mw := multipart.NewWriter(body)
		for k, v := range fields {
			Expect(mw.WriteField(k, v)).To(Succeed())
		}
		if fileName != "" {
			h := make(textproto.MIMEHeader)
			h.Set("Content-Disposition", `form-data; name="image"; filename="`+fileName+`"`)
			h.Set("Content-Type", fileType)
			part, err := mw.CreatePart(h)
			Expect(err).NotTo(HaveOccurred())
			_, err = part.Write(content)
			Expect(err).NotTo(HaveOccurred())
		}
		Expect(mw.Close()).To(Succeed())
		req := httptest.NewRequest(http.MethodPost, "/issues", body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		return req
	}

	createAs := func(userID string) issue.IssueV1 {
		req := jsonRequest(http.MethodPost, "/issues",
			`{"title":"Broken Light","description":"Flickers","category":"Electrical"}`)
		rec, env := send(req, userID, coreuser.RoleStudent)
		Expect(rec.Code).To(Equal(http.StatusCreated))
		var out issue.IssueV1
		Expect(json.Unmarshal(env.Data, &out)).To(Succeed())
		return out
	}

	Describe("POST /issues", func() {
		It("creates from JSON", func() {
			req := jsonRequest(http.MethodPost, "/issues",
				`{"title":"Broken Light","description":"Flickers","category":"Electrical"}`)
			rec, env := send(req, "student-a", coreuser.RoleStudent)
			Expect(rec.Code).To(Equal(http.StatusCreated))
			Expect(env.Success).To(BeTrue())
			Expect(env.Message).To(Equal("Issue created successfully"))

			var out issue.IssueV1
			Expect(json.Unmarshal(env.Data, &out)).To(Succeed())
			Expect(out.Status).To(Equal("Open"))
			Expect(out.CreatedBy.Name).To(Equal("Alice"))
		})

		It("ignores an image url posted in a JSON body", func() {
			req := jsonRequest(http.MethodPost, "/issues",
				`{"title":"t","description":"d","category":"Water","imageUrl":"javascript:alert(1)"}`)
			rec, env := send(req, "student-a", coreuser.RoleStudent)
			Expect(rec.Code).To(Equal(http.StatusCreated))

			var out issue.IssueV1
			Expect(json.Unmarshal(env.Data, &out)).To(Succeed())
			Expect(out.ImageURL).To(BeNil())
			Expect(rec.Body.String()).NotTo(ContainSubstring("javascript:"))
		})

		It("creates from multipart with an image", func() {
			req := multipartRequest(map[string]string{
				"title": "Leak", "description": "Ceiling drips", "category": "Water",
			}, "leak.png", "image/png", pngHeader)
			rec, env := send(req, "student-a", coreuser.RoleStudent)
			Expect(rec.Code).To(Equal(http.StatusCreated))

			var out issue.IssueV1
			Expect(json.Unmarshal(env.Data, &out)).To(Succeed())
			Expect(out.ImageURL).NotTo(BeNil())
			Expect(*out.ImageURL).To(Equal("http://localhost:5000/uploads/issue-test.png"))
			Expect(images.saved).To(HaveLen(1))
		})

		It("removes the stored image when validation fails", func() {
			req := multipartRequest(map[string]string{
				"description": "Ceiling drips", "category": "Water",
			}, "leak.png", "image/png", pngHeader)
			rec, env := send(req, "student-a", coreuser.RoleStudent)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(env.Error.Message).To(Equal("Title is required"))
			Expect(images.deleted).To(Equal(images.saved))
		})

		It("rejects non-image uploads", func() {
			req := multipartRequest(map[string]string{
				"title": "Leak", "description": "Ceiling drips", "category": "Water",
			}, "notes.txt", "text/plain", []byte("hello"))
			rec, env := send(req, "student-a", coreuser.RoleStudent)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(env.Error.Message).To(Equal("Invalid file type. Only JPEG, PNG, and GIF images are allowed."))
			Expect(images.saved).To(BeEmpty())
		})

		It("requires authentication", func() {
			req := jsonRequest(http.MethodPost, "/issues", `{}`)
			rec, env := send(req, "", "")
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(env.Success).To(BeFalse())
		})
	})

	Describe("GET /issues/{id}", func() {
		var created issue.IssueV1

		BeforeEach(func() {
			created = createAs("student-a")
		})

		It("lets the creator read it", func() {
			req := httptest.NewRequest(http.MethodGet, "/issues/"+created.ID, nil)
			rec, _ := send(req, "student-a", coreuser.RoleStudent)
			Expect(rec.Code).To(Equal(http.StatusOK))
		})

		It("lets an admin read it", func() {
			req := httptest.NewRequest(http.MethodGet, "/issues/"+created.ID, nil)
			rec, _ := send(req, "admin-1", coreuser.RoleAdmin)
			Expect(rec.Code).To(Equal(http.StatusOK))
		})

		It("forbids another student", func() {
			req := httptest.NewRequest(http.MethodGet, "/issues/"+created.ID, nil)
			rec, env := send(req, "student-b", coreuser.RoleStudent)
			Expect(rec.Code).To(Equal(http.StatusForbidden))
			Expect(env.Error.Message).To(Equal("Access denied"))
		})

		It("rejects a malformed id", func() {
			req := httptest.NewRequest(http.MethodGet, "/issues/abc", nil)
			rec, env := send(req, "student-a", coreuser.RoleStudent)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(env.Error.Message).To(Equal("Invalid issue ID"))
		})
	})

	Describe("admin routes", func() {
		var created issue.IssueV1

		BeforeEach(func() {
			created = createAs("student-a")
		})

		It("forbids students from listing everything", func() {
			req := httptest.NewRequest(http.MethodGet, "/issues", nil)
			rec, env := send(req, "student-a", coreuser.RoleStudent)
			Expect(rec.Code).To(Equal(http.StatusForbidden))
			Expect(env.Error.Message).To(Equal("Access denied. Admin privileges required."))
		})

		It("updates status", func() {
			req := jsonRequest(http.MethodPatch, "/issues/"+created.ID+"/status", `{"status":"Resolved"}`)
			rec, env := send(req, "admin-1", coreuser.RoleAdmin)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(env.Message).To(Equal("Issue status updated successfully"))

			var out issue.IssueV1
			Expect(json.Unmarshal(env.Data, &out)).To(Succeed())
			Expect(out.ResolvedAt).NotTo(BeNil())
		})

		It("returns 404 for a malformed id on status update", func() {
			req := jsonRequest(http.MethodPatch, "/issues/nope/status", `{"status":"Open"}`)
			rec, env := send(req, "admin-1", coreuser.RoleAdmin)
			Expect(rec.Code).To(Equal(http.StatusNotFound))
			Expect(env.Error.Message).To(Equal("Issue not found"))
		})

		It("adds a remark", func() {
			req := jsonRequest(http.MethodPost, "/issues/"+created.ID+"/remarks", `{"text":"On it"}`)
			rec, env := send(req, "admin-1", coreuser.RoleAdmin)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(env.Message).To(Equal("Remark added successfully"))
		})

		It("serves stats", func() {
			req := httptest.NewRequest(http.MethodGet, "/issues/stats", nil)
			rec, env := send(req, "admin-1", coreuser.RoleAdmin)
			Expect(rec.Code).To(Equal(http.StatusOK))
			var st issue.StatsV1
			Expect(json.Unmarshal(env.Data, &st)).To(Succeed())
			Expect(st.Total).To(Equal(int64(2)))
		})
	})
})
