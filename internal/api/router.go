package api

import (
	"net/http"

	"github.com/cuphut/Parking-App/internal/api/handler"
	"github.com/cuphut/Parking-App/internal/api/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter(authH *handler.AuthHandler, vehicleH *handler.VehicleHandler,
	parkingH *handler.ParkingHandler, detectH *handler.DetectHandler,
	wsH *handler.WebSocketHandler, authMw *middleware.AuthMiddleware) *gin.Engine {

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ws", wsH.HandleWebSocket)

	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/register", authH.Register)
		authRoutes.POST("/login", authH.Login)

		userRoutes := authRoutes.Group("/users")
		userRoutes.Use(authMw.Authenticate())
		{
			userRoutes.GET("", authH.ListUsers)
			userRoutes.GET("/:username", authH.GetUser)
			userRoutes.PUT("/:username/change-password", authH.ChangePassword)
		}
	}

	vehicleRoutes := r.Group("/registered_vehicle")
	vehicleRoutes.Use(authMw.Authenticate())
	{
		vehicleRoutes.POST("/", vehicleH.Create)
		vehicleRoutes.POST("/import", vehicleH.Import)
		vehicleRoutes.GET("/vehicles", vehicleH.ListAll)
		vehicleRoutes.GET("/:license_plate", vehicleH.Get)
		vehicleRoutes.PUT("/:license_plate", vehicleH.Update)
		vehicleRoutes.DELETE("/:license_plate", authMw.RequireAdmin(), vehicleH.Delete)
	}

	parkingRoutes := r.Group("/parking-lot")
	parkingRoutes.Use(authMw.Authenticate())
	{
		parkingRoutes.POST("/", parkingH.RecordObservation)
		parkingRoutes.GET("/", parkingH.ListAll)
		parkingRoutes.GET("/no-exit-time", parkingH.ListOpen)
		parkingRoutes.GET("/:id", parkingH.GetByID)
		parkingRoutes.PUT("/exit/:id", parkingH.Close)
		parkingRoutes.DELETE("/:license_plate", authMw.RequireAdmin(), parkingH.DeleteByPlate)
	}

	r.POST("/detect-image", authMw.Authenticate(), detectH.ProcessImage)

	return r
}
