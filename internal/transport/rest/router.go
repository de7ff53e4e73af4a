package rest

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/campus-fixit/internal/auth"
	"github.com/frahmantamala/campus-fixit/internal/category"
	"github.com/frahmantamala/campus-fixit/internal/issue"
	"github.com/frahmantamala/campus-fixit/internal/transport"
	"github.com/frahmantamala/campus-fixit/internal/transport/middleware"
	"github.com/frahmantamala/campus-fixit/internal/transport/swagger"
	"github.com/frahmantamala/campus-fixit/internal/user"
)

// Routes is everything RegisterAllRoutes mounts. Nil handlers are skipped.
type Routes struct {
	DB              *sql.DB
	AuthHandler     *auth.Handler
	RBAC            *auth.RBACAuthorization
	UserHandler     *user.Handler
	CategoryHandler *category.Handler
	IssueHandler    *issue.Handler

	// UploadDir is served read-only under UploadPath when both are set.
	UploadDir  string
	UploadPath string

	OpenAPISpec    []byte
	AllowedOrigins []string
	Logger         *slog.Logger
}

func RegisterAllRoutes(router chi.Router, rt Routes) {
	base := transport.NewBaseHandler(rt.Logger)
	healthHandler := NewHealthHandler(base, rt.DB)

	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(base.Logger))
	router.Use(middleware.LoggingMiddleware(nil))
	router.Use(middleware.CORS(rt.AllowedOrigins))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		base.WriteError(w, http.StatusNotFound, fmt.Sprintf("Route %s not found", r.URL.Path))
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		base.WriteError(w, http.StatusMethodNotAllowed, fmt.Sprintf("Method %s not allowed on %s", r.Method, r.URL.Path))
	})

	if len(rt.OpenAPISpec) > 0 {
		router.Get(swagger.SpecPath, swagger.SpecHandler(rt.OpenAPISpec))
		router.Handle("/swagger/*", swagger.Handler())
	}

	router.Get("/health", healthHandler.Health)
	router.Get("/ping", healthHandler.Ping)

	if rt.UploadDir != "" && rt.UploadPath != "" {
		prefix := rt.UploadPath
		fs := http.StripPrefix(prefix, http.FileServer(filesOnly{http.Dir(rt.UploadDir)}))
		router.Handle(prefix+"/*", fs)
	}

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.Health)

		if rt.CategoryHandler != nil {
			r.Get("/categories", rt.CategoryHandler.GetCategories)
		}

		if rt.AuthHandler == nil {
			return
		}

		rbac := rt.RBAC
		if rbac == nil {
			rbac = auth.NewRBACAuthorization(auth.DefaultPolicy(), base.Logger)
		}

		r.Route("/auth", func(ar chi.Router) {
			ar.Post("/register", rt.AuthHandler.Register)
			ar.Post("/login", rt.AuthHandler.Login)
			if rt.UserHandler != nil {
				ar.With(rt.AuthHandler.AuthMiddleware).Get("/profile", rt.UserHandler.Profile)
			}
		})

		if rt.IssueHandler == nil {
			return
		}

		r.Route("/issues", func(ir chi.Router) {
			ir.Use(rt.AuthHandler.AuthMiddleware)

			ir.With(rbac.Require(auth.ActionCreateIssue)).Post("/", rt.IssueHandler.CreateIssue)
			ir.With(rbac.Require(auth.ActionListOwnIssues)).Get("/my", rt.IssueHandler.GetMyIssues)
			ir.With(rbac.Require(auth.ActionListAllIssues)).Get("/", rt.IssueHandler.GetAllIssues)
			ir.With(rbac.Require(auth.ActionViewIssueStats)).Get("/stats", rt.IssueHandler.GetStats)

			// ownership is checked inside the handler once the issue is loaded
			ir.Get("/{id}", rt.IssueHandler.GetIssue)

			ir.With(rbac.Require(auth.ActionUpdateStatus)).Patch("/{id}/status", rt.IssueHandler.UpdateStatus)
			ir.With(rbac.Require(auth.ActionAddRemark)).Post("/{id}/remarks", rt.IssueHandler.AddRemark)
		})
	})
}

// filesOnly serves regular files and reports directories as missing, so
// stored upload names cannot be listed.
type filesOnly struct {
	fs http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, os.ErrNotExist
	}
	return file, nil
}
