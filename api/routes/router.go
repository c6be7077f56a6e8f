package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/azulretail/pos-backend/api/controllers"
	"github.com/azulretail/pos-backend/api/middleware"
	authsvc "github.com/azulretail/pos-backend/internal/auth"
	categorysvc "github.com/azulretail/pos-backend/internal/categories"
	employeesvc "github.com/azulretail/pos-backend/internal/employees"
	historysvc "github.com/azulretail/pos-backend/internal/history"
	productsvc "github.com/azulretail/pos-backend/internal/products"
	salesvc "github.com/azulretail/pos-backend/internal/sales"
	"github.com/azulretail/pos-backend/pkg/config"
	"github.com/azulretail/pos-backend/pkg/db"
	"github.com/azulretail/pos-backend/pkg/enums"
	"github.com/azulretail/pos-backend/pkg/logger"
	"github.com/azulretail/pos-backend/pkg/metrics"
	"github.com/azulretail/pos-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	pingers map[string]db.Pinger,
	redisClient *redis.Client,
	promRegistry *prometheus.Registry,
	httpMetrics *metrics.HTTPMetrics,
	authService authsvc.Service,
	categoryService categorysvc.Service,
	productService productsvc.Service,
	saleService salesvc.Service,
	employeeService employeesvc.Service,
	historyService historysvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(),
		middleware.Logging(logg, httpMetrics),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUsernameLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.Live())
		r.Get("/ready", controllers.Ready(pingers, logg))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/auth/login", controllers.Login(authService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.Post("/auth/logout", controllers.Logout(authService, logg))
			r.Post("/auth/change-password", controllers.ChangePassword(authService, logg))

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", controllers.ListCategories(categoryService, logg))
				r.Get("/{id}", controllers.GetCategory(categoryService, logg))

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(string(enums.RoleBoss), logg))
					r.Post("/", controllers.CreateCategory(categoryService, logg))
					r.Patch("/{id}", controllers.UpdateCategory(categoryService, logg))
					r.Delete("/{id}", controllers.DeleteCategory(categoryService, logg))
				})
			})

			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.ListProducts(productService, logg))
				r.Get("/code/{code}", controllers.GetProductByCode(productService, logg))
				r.Get("/{id}", controllers.GetProduct(productService, logg))

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(string(enums.RoleBoss), logg))
					r.Post("/", controllers.CreateProduct(productService, logg))
					r.Patch("/{id}", controllers.UpdateProduct(productService, logg))
					r.Delete("/{id}", controllers.DeleteProduct(productService, logg))
					r.Get("/statistics/inventory", controllers.InventoryStatistics(productService, logg))
				})
			})

			r.Route("/sales", func(r chi.Router) {
				r.Post("/", controllers.RegisterSale(saleService, logg))
				r.Get("/me/statistics", controllers.MyStatistics(saleService, logg))

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(string(enums.RoleBoss), logg))
					r.Get("/", controllers.ListSales(saleService, logg))
					r.Get("/statistics/summary", controllers.SalesStatistics(saleService, logg))
					r.Get("/{id}", controllers.GetSale(saleService, logg))
					r.Post("/{id}/cancel", controllers.CancelSale(saleService, logg))
				})
			})

			r.Route("/employees", func(r chi.Router) {
				r.Use(middleware.RequireRole(string(enums.RoleBoss), logg))
				r.Get("/", controllers.ListEmployees(employeeService, logg))
				r.Post("/", controllers.CreateEmployee(employeeService, logg))
				r.Get("/summary", controllers.EmployeesSummary(employeeService, logg))
				r.Get("/{id}", controllers.GetEmployee(employeeService, logg))
				r.Patch("/{id}", controllers.UpdateEmployee(employeeService, logg))
				r.Delete("/{id}", controllers.DeleteEmployee(employeeService, logg))
				r.Put("/{id}/photo", controllers.UpdateEmployeePhoto(employeeService, logg))
				r.Post("/{id}/reset-password", controllers.ResetEmployeePassword(employeeService, logg))
				r.Get("/{id}/statistics", controllers.EmployeeStatistics(saleService, logg))
			})

			r.Route("/action-history", func(r chi.Router) {
				r.Use(middleware.RequireRole(string(enums.RoleBoss), logg))
				r.Get("/", controllers.ListActionHistory(historyService, logg))
				r.Get("/statistics/today", controllers.ActionHistoryTodayStats(historyService, logg))
			})
		})
	})

	return r
}
