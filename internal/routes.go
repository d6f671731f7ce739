package internal

import (
	"net/http"

	"hotseatd/internal/controllers"
	"hotseatd/internal/providers"
	"hotseatd/internal/structures"
)

func InitRoutes(apiController *controllers.ApiController, conf *structures.Config) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/seats", http.HandlerFunc(apiController.GetSeats))
	routers.Get("/seat", http.HandlerFunc(apiController.GetSeat))
	routers.Get("/today", http.HandlerFunc(apiController.GetToday))
	routers.Get("/sessions", http.HandlerFunc(apiController.GetSessions))
	routers.Get("/current", http.HandlerFunc(apiController.GetCurrent))
	routers.Get("/heatmap", http.HandlerFunc(apiController.GetHeatmap))
	routers.Get("/analytics", http.HandlerFunc(apiController.GetAnalytics))
	routers.Get("/analytics/range", http.HandlerFunc(apiController.GetAnalyticsRange))
	routers.Post("/event", http.HandlerFunc(apiController.ReceiveEvent))
	return routers
}
