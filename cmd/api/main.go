package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/attendance-payroll-go/internal/config"
	appHTTP "github.com/cmlabs-hris/attendance-payroll-go/internal/handler/http"
	"github.com/cmlabs-hris/attendance-payroll-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-payroll-go/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-payroll-go/internal/pkg/debounce"
	"github.com/cmlabs-hris/attendance-payroll-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-payroll-go/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-payroll-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/attendance-payroll-go/internal/service/attendance"
	serviceAuth "github.com/cmlabs-hris/attendance-payroll-go/internal/service/auth"
	employeeService "github.com/cmlabs-hris/attendance-payroll-go/internal/service/employee"
	payrollService "github.com/cmlabs-hris/attendance-payroll-go/internal/service/payroll"
	"golang.org/x/time/rate"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})).With(slog.String("app", cfg.App.Name)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	// Scan debouncing: in process, or shared through Redis when several
	// instances serve the same kiosks.
	var scanDebouncer debounce.Debouncer
	var scanSweeper cron.Sweeper
	switch cfg.Attendance.DebounceBackend {
	case config.DebounceRedis:
		redisClient, err := database.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.MaxRetries)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer redisClient.Close()
		scanDebouncer = debounce.NewRedis(redisClient, cfg.Attendance.ScanCooldown, "scan:")
	default:
		memory := debounce.NewMemory(cfg.Attendance.ScanCooldown)
		scanDebouncer = memory
		scanSweeper = memory
	}

	userRepo := postgresql.NewUserRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	payrollRepo := postgresql.NewPayrollRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	hub := sse.NewHub(32)

	authService := serviceAuth.NewAuthService(userRepo, JWTService)
	employeeSvc := employeeService.NewEmployeeService(employeeRepo, cfg.Attendance.BadgeIssuer)
	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo, employeeRepo, postgresql.NewTransactor(db), scanDebouncer, hub, cfg.Attendance.Timezone)
	payrollSvc := payrollService.NewPayrollService(payrollRepo, employeeRepo, attendanceRepo, cfg.App.Name)

	scanLimiter := middleware.NewDeviceRateLimiter(rate.Limit(cfg.RateLimit.ScansPerSecond), cfg.RateLimit.Burst)

	scheduler := cron.NewScheduler(ctx)
	cron.NewHousekeepingJobs(scanSweeper, scanLimiter, JWTService).RegisterJobs(scheduler, cfg.Attendance.HousekeepingTick)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(cfg, JWTService, scanLimiter, appHTTP.Handlers{
		Auth:       appHTTP.NewAuthHandler(authService),
		Attendance: appHTTP.NewAttendanceHandler(attendanceSvc, JWTService),
		Employee:   appHTTP.NewEmployeeHandler(employeeSvc),
		Payroll:    appHTTP.NewPayrollHandler(payrollSvc),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// Open event streams end when the process is asked to stop.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env)
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
