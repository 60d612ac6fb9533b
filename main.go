package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"govstay-server/config"
	"govstay-server/routes"
	"govstay-server/scripts"
	"govstay-server/services"
	"govstay-server/utils"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.Log.WithError(err).Fatal("could not load configuration")
	}

	rt, err := scripts.Bootstrap(cfg)
	if err != nil {
		utils.Log.WithError(err).Fatal("could not start services")
	}
	defer rt.Close()
	log := rt.Log

	// Mirror changes are applied off the request path.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	dispatcher := services.NewMirrorDispatcher(rt.Mirror, cfg.Booking.MirrorWorkers, cfg.Booking.MirrorQueueSize)
	dispatcher.Start(ctx)
	rt.Bookings.Changes = dispatcher
	routes.Use(rt.Routes())

	app := iris.New()
	app.Validator = validator.New()

	// CORS configuration
	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	app.Use(iris.Compression)
	app.Use(utils.TimeoutMiddleware(cfg.RequestTimeout))

	// JWT Verifiers
	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, utils.AccessTokenSecret())
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, utils.RefreshTokenSecret())
	refreshTokenVerifier.WithDefaultBlocklist()
	refreshTokenVerifierMiddleware := refreshTokenVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})

	refreshTokenVerifier.Extractors = append(refreshTokenVerifier.Extractors, func(ctx iris.Context) string {
		var tokenInput utils.RefreshTokenInput
		err := ctx.ReadJSON(&tokenInput)
		if err != nil {
			return ""
		}
		return tokenInput.RefreshToken
	})

	routes.Mount(app, accessTokenVerifierMiddleware, refreshTokenVerifierMiddleware)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		log.Info("shutting down")
		shutdownCtx, done := context.WithTimeout(context.Background(), 15*time.Second)
		defer done()
		app.Shutdown(shutdownCtx)
	}()

	log.WithField("addr", cfg.Listen).Info("server starting")
	if err := app.Listen(cfg.Listen, iris.WithoutInterruptHandler); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Error("server stopped")
	}

	// drain pending mirror writes before the stores close
	dispatcher.Close()
}
