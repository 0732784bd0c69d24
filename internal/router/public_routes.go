package router

import (
	"github.com/labstack/echo/v4"

	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/handler"
)

// RegisterPublic registers unauthenticated browse endpoints: the
// geography drill-down, the designation and cell catalogs, and the
// availability check clients call before joining.  The optional cache
// middleware (Redis-backed) is applied to all of them; pass nil to
// serve uncached.
func RegisterPublic(e *echo.Echo, geo *handler.GeoHandler, cat *handler.CatalogHandler,
	av *handler.AvailabilityHandler, cache echo.MiddlewareFunc) {
	mws := []echo.MiddlewareFunc{}
	if cache != nil {
		mws = append(mws, cache)
	}
	g := e.Group("/v1", mws...)

	g.GET("/geo/countries", geo.ListCountries)
	g.GET("/geo/countries/:id/states", geo.ListStates)
	g.GET("/geo/states/:id/districts", geo.ListDistricts)
	g.GET("/geo/districts/:id/mandals", geo.ListMandals)

	g.GET("/designations", cat.ListDesignations)
	g.GET("/cells", cat.ListCells)

	g.GET("/availability", av.Check)
}

// RegisterPaymentWebhook registers the gateway callback.  It is
// unauthenticated by design: gateways sign their payloads out of band
// and the handler absorbs replays, so the worst a forged call can do
// is mark an unpaid membership failed.
func RegisterPaymentWebhook(e *echo.Echo, p *handler.PaymentHandler) {
	e.POST("/v1/payments/webhook", p.Webhook)
}
