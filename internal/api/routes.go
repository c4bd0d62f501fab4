package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/codyseavey/card-portfolio/internal/api/handlers"
	"github.com/codyseavey/card-portfolio/internal/database"
	"github.com/codyseavey/card-portfolio/internal/services"
)

func SetupRouter(store *database.Store, worker *services.RefreshWorker, snapshots *services.SnapshotService, corsOrigins []string) *gin.Engine {
	router := gin.Default()

	config := cors.DefaultConfig()
	config.AllowOrigins = corsOrigins
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	config.AllowCredentials = false
	router.Use(cors.New(config))

	cardHandler := handlers.NewCardHandler(store)
	priceHandler := handlers.NewPriceHandler(worker)
	portfolioHandler := handlers.NewPortfolioHandler(store, snapshots)

	api := router.Group("/api")
	{
		cards := api.Group("/cards")
		{
			cards.GET("", cardHandler.ListCards)
			cards.POST("", cardHandler.CreateCard)
			cards.GET("/:id", cardHandler.GetCard)
			cards.PUT("/:id", cardHandler.UpdateCard)
			cards.DELETE("/:id", cardHandler.DeleteCard)
		}

		prices := api.Group("/prices")
		{
			prices.GET("/status", priceHandler.GetRefreshStatus)
			prices.POST("/refresh", priceHandler.TriggerRefresh)
			prices.POST("/refresh/:id", priceHandler.RefreshCardPrice)
		}

		portfolio := api.Group("/portfolio")
		{
			portfolio.GET("/summary", portfolioHandler.GetSummary)
			portfolio.GET("/history", portfolioHandler.GetHistory)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
