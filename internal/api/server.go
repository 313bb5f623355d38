package api

import (
	"fmt"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/tablewise/restaurant-api/docs"
	v1 "github.com/tablewise/restaurant-api/internal/api/handler/v1"
	"github.com/tablewise/restaurant-api/internal/api/middleware"
	"github.com/tablewise/restaurant-api/internal/config"
	"github.com/tablewise/restaurant-api/internal/domain"
	"github.com/tablewise/restaurant-api/internal/events"
	"github.com/tablewise/restaurant-api/internal/metrics"
	"github.com/tablewise/restaurant-api/internal/repository"
	"github.com/tablewise/restaurant-api/internal/repository/dao"
	"github.com/tablewise/restaurant-api/internal/service"
)

type Server struct {
	Config  *config.AppConfig
	Router  *gin.Engine
	Metrics *metrics.Metrics

	MenuService      *service.MenuService
	InventoryService *service.InventoryService
}

type handlers struct {
	auth      *v1.AuthHandler
	user      *v1.UserHandler
	menu      *v1.MenuHandler
	inventory *v1.InventoryHandler
	order     *v1.OrderHandler
	table     *v1.TableHandler
	report    *v1.ReportHandler
}

// NewServer wires every layer on top of db. Committed order and stock events
// go to pub; hub serves the live order feed.
func NewServer(conf *config.AppConfig, db *gorm.DB, pub events.Publisher, hub *events.Hub, m *metrics.Metrics) (*Server, error) {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	loc, err := time.LoadLocation(conf.API.Timezone)
	if err != nil {
		return nil, fmt.Errorf("time.LoadLocation -> %w", err)
	}

	s := &Server{
		Config:  conf,
		Router:  engine,
		Metrics: m,
	}

	s.MountMiddlewares()

	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))
	menuRepo := repository.NewMenuRepository(dao.NewMenuDAO(db))
	inventoryRepo := repository.NewInventoryRepository(dao.NewInventoryDAO(db))
	orderRepo := repository.NewOrderRepository(dao.NewOrderDAO(db))
	tableRepo := repository.NewTableRepository(dao.NewTableDAO(db))
	reportRepo := repository.NewReportRepository(dao.NewReportDAO(db))

	s.MenuService = service.NewMenuService(menuRepo)
	s.InventoryService = service.NewInventoryService(inventoryRepo, pub, m)

	s.MountHandlers(handlers{
		auth:      v1.NewAuthHandler(conf.API, service.NewAuthService(userRepo)),
		user:      v1.NewUserHandler(service.NewUserService(userRepo)),
		menu:      v1.NewMenuHandler(s.MenuService),
		inventory: v1.NewInventoryHandler(s.InventoryService),
		order:     v1.NewOrderHandler(service.NewOrderService(orderRepo, pub, m), hub),
		table:     v1.NewTableHandler(service.NewReservationService(tableRepo, conf.Reservations, m), loc),
		report:    v1.NewReportHandler(service.NewReportService(reportRepo)),
	})

	return s, nil
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
	s.Router.Use(middleware.Metrics(s.Metrics))
}

func (s *Server) MountHandlers(h handlers) {
	const basePath = "/api/v1"

	open := s.Router.Group(basePath)
	{
		open.POST("/users/", h.auth.HandleRegister)
		open.POST("/auth/token", h.auth.HandleLogin)
	}

	authed := s.Router.Group(basePath, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())

	users := authed.Group("/users")
	{
		users.GET("/", h.user.HandleListUsers)
		users.GET("/me", h.user.HandleGetMe)
		users.GET("/:id", h.user.HandleGetUser)
		users.POST("/change_password", h.auth.HandleChangePassword)
	}

	menu := authed.Group("/menu")
	{
		menu.GET("/categories", h.menu.HandleListCategories)
		menu.POST("/categories", h.menu.HandleCreateCategory)
		menu.GET("/categories/:id", h.menu.HandleGetCategory)
		menu.PUT("/categories/:id", h.menu.HandleUpdateCategory)
		menu.PATCH("/categories/:id", h.menu.HandleUpdateCategory)
		menu.DELETE("/categories/:id", h.menu.HandleDeleteCategory)

		menu.GET("/ingredients", h.menu.HandleListIngredients)
		menu.POST("/ingredients", h.menu.HandleCreateIngredient)
		menu.GET("/ingredients/:id", h.menu.HandleGetIngredient)
		menu.PUT("/ingredients/:id", h.menu.HandleUpdateIngredient)
		menu.PATCH("/ingredients/:id", h.menu.HandleUpdateIngredient)
		menu.DELETE("/ingredients/:id", h.menu.HandleDeleteIngredient)

		menu.GET("/dishes", h.menu.HandleListDishes)
		menu.POST("/dishes", h.menu.HandleCreateDish)
		menu.GET("/dishes/:id", h.menu.HandleGetDish)
		menu.PUT("/dishes/:id", h.menu.HandleUpdateDish)
		menu.PATCH("/dishes/:id", h.menu.HandleUpdateDish)
		menu.DELETE("/dishes/:id", h.menu.HandleDeleteDish)
	}

	inventory := authed.Group("/inventory")
	{
		inventory.GET("/stocks", h.inventory.HandleListStocks)
		inventory.POST("/stocks", h.inventory.HandleCreateStock)
		inventory.GET("/stocks/reorder", h.inventory.HandleReorderList)
		inventory.GET("/stocks/:id", h.inventory.HandleGetStock)
		inventory.PATCH("/stocks/:id", h.inventory.HandleUpdateStock)
		inventory.DELETE("/stocks/:id", h.inventory.HandleDeleteStock)

		inventory.GET("/stock-transactions", h.inventory.HandleListTransactions)
		inventory.POST("/stock-transactions", h.inventory.HandleRecordTransaction)
		inventory.GET("/stock-transactions/:id", h.inventory.HandleGetTransaction)
	}

	orders := authed.Group("/orders")
	{
		orders.GET("/orders", h.order.HandleListOrders)
		orders.POST("/orders", h.order.HandleCreateOrder)
		orders.GET("/orders/:id", h.order.HandleGetOrder)
		orders.PATCH("/orders/:id", h.order.HandleUpdateOrder)
		orders.DELETE("/orders/:id", h.order.HandleDeleteOrder)
		orders.POST("/orders/:id/add_item", h.order.HandleAddItem)
		orders.PATCH("/orders/:id/items/:item_id", h.order.HandleUpdateItem)
		orders.DELETE("/orders/:id/items/:item_id", h.order.HandleDeleteItem)
		orders.POST("/orders/:id/make_payment", h.order.HandleMakePayment)

		orders.GET("/payments", h.order.HandleListPayments)
		orders.GET("/payments/:id", h.order.HandleGetPayment)

		orders.GET("/feed", h.order.HandleFeed)
	}

	tables := authed.Group("/tables")
	{
		tables.GET("/tables", h.table.HandleListTables)
		tables.POST("/tables", h.table.HandleCreateTable)
		tables.GET("/tables/:id", h.table.HandleGetTable)
		tables.PATCH("/tables/:id", h.table.HandleUpdateTable)
		tables.DELETE("/tables/:id", h.table.HandleDeleteTable)

		tables.GET("/reservations", h.table.HandleListReservations)
		tables.POST("/reservations", h.table.HandleCreateReservation)
		tables.GET("/reservations/:id", h.table.HandleGetReservation)
		tables.PATCH("/reservations/:id", h.table.HandleUpdateReservation)
		tables.DELETE("/reservations/:id", h.table.HandleDeleteReservation)
	}

	reports := authed.Group("/reports")
	{
		reports.GET("/daily-sales", h.report.HandleListDailySales)
		reports.GET("/daily-sales/:id", h.report.HandleGetDailySales)
		reports.GET("/popular-dishes", h.report.HandleListPopularDishes)
		reports.GET("/popular-dishes/:id", h.report.HandleGetPopularDish)

		writes := reports.Group("", middleware.RequireRoles(domain.RoleManager))
		writes.POST("/daily-sales", h.report.HandleCreateDailySales)
		writes.PUT("/daily-sales/:id", h.report.HandleUpdateDailySales)
		writes.DELETE("/daily-sales/:id", h.report.HandleDeleteDailySales)
		writes.POST("/popular-dishes", h.report.HandleCreatePopularDish)
		writes.PUT("/popular-dishes/:id", h.report.HandleUpdatePopularDish)
		writes.DELETE("/popular-dishes/:id", h.report.HandleDeletePopularDish)
	}

	s.Router.GET("/", v1.HandleHealthcheck)
	s.Router.GET("/metrics", gin.WrapH(s.Metrics.Handler()))

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Restaurant API"
	docs.SwaggerInfo.Description = "Menu, inventory, orders, tables and reports for a restaurant."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
