package router

import (
	"github.com/labstack/echo/v4"

	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/handler"
	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/middleware"
	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/model"
)

// RegisterMember registers member-scoped endpoints under /v1.  All
// routes require a valid JWT; both roles are accepted since admins act
// on memberships through the same surface.  Ownership checks happen in
// the handlers.  The optional rate limiter (Redis token bucket)
// protects the join endpoint from allocation storms; pass nil to skip.
func RegisterMember(e *echo.Echo, m *handler.MembershipHandler, r *handler.ReassignHandler,
	cred *handler.CredentialHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleMember, model.RoleAdmin),
	)

	if limiter != nil {
		g.POST("/memberships", m.Join, limiter)
	} else {
		g.POST("/memberships", m.Join)
	}
	g.GET("/my-memberships", m.ListMine)
	g.GET("/memberships/:id", m.Get)
	g.GET("/memberships/:id/card", cred.GetCard)

	g.POST("/memberships/:id/reassign/preview", r.Preview)
	g.POST("/memberships/:id/reassign", r.Apply)
	g.GET("/memberships/:id/reassignments", r.History)
}
