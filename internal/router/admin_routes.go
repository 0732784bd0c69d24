package router

import (
	"github.com/labstack/echo/v4"

	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/handler"
	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/middleware"
	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/model"
)

// RegisterAdmin registers ADMIN-scoped endpoints under /v1/admin.
// All routes require a valid JWT and the ADMIN role.
func RegisterAdmin(e *echo.Echo, cat *handler.CatalogHandler, geo *handler.GeoHandler,
	pay *handler.PaymentHandler, cred *handler.CredentialHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)

	// ---- Designations ----
	g.POST("/designations", cat.CreateDesignation)
	g.PUT("/designations/:id", cat.UpdateDesignation)
	g.PATCH("/designations/:id", cat.UpdateDesignation)
	g.PUT("/designations/:id/parent", cat.SetDesignationParent)

	// ---- Cells ----
	g.POST("/cells", cat.CreateCell)

	// ---- Price overrides ----
	g.POST("/designations/:id/price-overrides", cat.CreatePriceOverride)
	g.GET("/designations/:id/price-overrides", cat.ListPriceOverrides)
	g.DELETE("/price-overrides/:id", cat.DeletePriceOverride)

	// ---- Capacity overrides ----
	g.PUT("/capacity-overrides", cat.SetCapacityOverride)
	g.DELETE("/capacity-overrides/:bucketKey", cat.DeleteCapacityOverride)

	// ---- Geography seeding ----
	g.POST("/geo/countries", geo.CreateCountry)
	g.POST("/geo/countries/:id/states", geo.CreateState)
	g.POST("/geo/states/:id/districts", geo.CreateDistrict)
	g.POST("/geo/districts/:id/mandals", geo.CreateMandal)

	// ---- Membership administration ----
	g.POST("/memberships/:id/approve", pay.Approve)
	g.POST("/memberships/:id/revoke", pay.Revoke)

	// ---- Credentials ----
	g.POST("/memberships/:id/card", cred.Issue)
	g.POST("/cards/backfill", cred.Backfill)
}
