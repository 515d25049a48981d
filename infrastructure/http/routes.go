package http

import (
	"net/http"

	admindata "dockboard/frontend/adminData"
	adminusers "dockboard/frontend/adminUsers"
	"dockboard/frontend/board"
	exportspage "dockboard/frontend/exports"
	"dockboard/frontend/help"
	"dockboard/frontend/kpi"
	"dockboard/frontend/loads"
	"dockboard/frontend/login"
	"dockboard/infrastructure/rbac"

	"github.com/go-chi/chi/v5"
)

var (
	allRoles     = rbac.Roles
	managerRoles = []string{rbac.RoleAdmin, rbac.RoleSupervisor}
)

// RegisterLoginRoutes registers login/logout routes.
func (s *Server) RegisterLoginRoutes() {
	s.router.Get("/login", login.GetLoginScreenHandler(s.SessionCache))
	s.router.Post("/login", login.CreateLoginHandler(s.DB, s.SessionCache, s.UserCache, s.Options.Login))
	s.router.Post("/logout", login.LogoutHandler(s.DB, s.SessionCache, s.Options.Login))
}

// RegisterAdminRoutes registers user and data administration routes.
func (s *Server) RegisterAdminRoutes(r chi.Router) chi.Router {
	s.Rbac.AddAll(managerRoles, "ADMIN_USERS_LIST_VIEW", http.MethodGet, "/tasker/admin/users")
	r.Get("/admin/users", adminusers.UsersPageQueryHandler(s.DB))
	s.Rbac.AddAll(managerRoles, "ADMIN_USERS_CREATE", http.MethodPost, "/tasker/admin/users")
	r.Post("/admin/users", adminusers.CreateUserCommandHandler(s.DB, s.Audit, s.UserCache))
	s.Rbac.Add(rbac.RoleAdmin, "ADMIN_USERS_EDIT", http.MethodPost, "/tasker/admin/users/*/edit")
	r.Post("/admin/users/{id}/edit", adminusers.UpdateUserCommandHandler(s.DB, s.Audit, s.SessionCache, s.UserCache))
	s.Rbac.Add(rbac.RoleAdmin, "ADMIN_USERS_PASSWORD", http.MethodPost, "/tasker/admin/users/*/password")
	r.Post("/admin/users/{id}/password", adminusers.ChangePasswordCommandHandler(s.DB, s.Audit, s.SessionCache))
	s.Rbac.Add(rbac.RoleAdmin, "ADMIN_USERS_DELETE", http.MethodPost, "/tasker/admin/users/*/delete")
	r.Post("/admin/users/{id}/delete", adminusers.DeleteUserCommandHandler(s.DB, s.Audit, s.SessionCache, s.UserCache))

	s.Rbac.Add(rbac.RoleAdmin, "ADMIN_DATA_VIEW", http.MethodGet, "/tasker/admin/data")
	r.Get("/admin/data", admindata.DataPageQueryHandler(s.DB))
	s.Rbac.Add(rbac.RoleAdmin, "ADMIN_DATA_CLEAR", http.MethodPost, "/tasker/admin/data/clear")
	r.Post("/admin/data/clear", admindata.ClearLoadsCommandHandler(s.DB, s.Audit, s.Hub))
	s.Rbac.Add(rbac.RoleAdmin, "ADMIN_DATA_DEMO", http.MethodPost, "/tasker/admin/data/demo")
	r.Post("/admin/data/demo", admindata.SeedDemoCommandHandler(s.DB, s.Audit, s.Hub))
	return r
}

// RegisterFrontendRoutes registers authenticated routes.
func (s *Server) RegisterFrontendRoutes(r chi.Router) chi.Router {
	s.RegisterBoardRoutes(r)
	s.RegisterLoadRoutes(r)
	s.RegisterKPIRoutes(r)
	s.RegisterExportRoutes(r)

	s.Rbac.AddAll(allRoles, "HELP_VIEW", http.MethodGet, "/tasker/help")
	r.Get("/help", help.HelpPageQueryHandler())

	return r
}

func (s *Server) RegisterBoardRoutes(r chi.Router) {
	s.Rbac.AddAll(allRoles, "BOARD_VIEW", http.MethodGet, "/tasker/loads")
	r.Get("/loads", board.BoardPageQueryHandler(s.DB, s.Options.Board, ClientDebounce))

	s.Rbac.AddAll(allRoles, "BOARD_FLAGS", http.MethodGet, "/tasker/api/board/flags")
	r.Get("/api/board/flags", board.FlagsQueryHandler(s.DB, s.Options.Board))

	s.Rbac.AddAll(allRoles, "BOARD_STREAM", http.MethodGet, "/tasker/api/board/stream")
	r.Get("/api/board/stream", board.StreamHandler(s.DB, s.Options.Board, s.Hub))

	s.Rbac.AddAll(allRoles, "LOAD_SHEET_PDF", http.MethodGet, "/tasker/loads/sheet.pdf")
	r.Get("/loads/sheet.pdf", loads.LoadingSheetQueryHandler(s.DB, s.Options.Board))
}

// RegisterLoadRoutes registers the board mutations. Every role reaches the
// handlers, which answer read-only roles with a 403 so autosave can show it.
func (s *Server) RegisterLoadRoutes(r chi.Router) {
	s.Rbac.AddAll(allRoles, "LOAD_CREATE", http.MethodPost, "/tasker/loads")
	r.Post("/loads", loads.CreateLoadCommandHandler(s.DB, s.Audit, s.Hub))

	s.Rbac.AddAll(allRoles, "LOAD_EDIT", http.MethodPost, "/tasker/loads/*/edit")
	r.Post("/loads/{id}/edit", loads.EditLoadCommandHandler(s.DB, s.Audit, s.Hub))

	s.Rbac.AddAll(allRoles, "LOAD_DELETE", http.MethodPost, "/tasker/loads/*/delete")
	r.Post("/loads/{id}/delete", loads.DeleteLoadCommandHandler(s.DB, s.Audit, s.Hub))

	s.Rbac.AddAll(allRoles, "LANE_HEADER_EDIT", http.MethodPost, "/tasker/loads/update-header")
	r.Post("/loads/update-header", loads.UpdateHeaderCommandHandler(s.DB, s.Audit, s.Hub))

	s.Rbac.AddAll(allRoles, "LANE_CLEAR", http.MethodPost, "/tasker/loads/clear-lane")
	r.Post("/loads/clear-lane", loads.ClearLaneCommandHandler(s.DB, s.Audit, s.Hub))
}

func (s *Server) RegisterKPIRoutes(r chi.Router) {
	s.Rbac.AddAll(managerRoles, "KPI_VIEW", http.MethodGet, "/tasker/kpi")
	r.Get("/kpi", kpi.KPIPageQueryHandler())

	s.Rbac.AddAll(managerRoles, "KPI_IMPORT", http.MethodPost, "/tasker/kpi")
	r.Post("/kpi", kpi.KPIImportCommandHandler(s.DB, s.Audit))
}

func (s *Server) RegisterExportRoutes(r chi.Router) {
	s.Rbac.AddAll(managerRoles, "EXPORT_LOADS", http.MethodGet, "/tasker/exports/loads.csv")
	r.Get("/exports/loads.csv", exportspage.LoadsExportCSVHandler(s.DB, s.Options.Board))

	s.Rbac.AddAll(managerRoles, "EXPORT_LOADS_XLSX", http.MethodGet, "/tasker/exports/loads.xlsx")
	r.Get("/exports/loads.xlsx", exportspage.LoadsExportXLSXHandler(s.DB, s.Options.Board))
}
