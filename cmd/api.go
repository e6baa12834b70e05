package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	errors "github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	gconfig "github.com/Laisky/go-config/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Laisky/aws-documentation-mcp/internal/mcp/calllog"
	"github.com/Laisky/aws-documentation-mcp/library/log"
)

const shutdownTimeout = 10 * time.Second

var apiCMD = &cobra.Command{
	Use:   "api",
	Short: "serve MCP over streamable HTTP",
	Long:  `Serve the documentation tools over streamable HTTP at /mcp`,
	Args:  gcmd.NoExtraArgs,
	PreRun: func(cmd *cobra.Command, args []string) {
		if err := initialize(cmd.Context(), cmd); err != nil {
			log.Logger.Panic("init", zap.Error(err))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		if err := runAPI(cmd.Context(), gconfig.Shared.GetString("listen")); err != nil {
			log.Logger.Panic("run api", zap.Error(err))
		}
	},
}

func init() {
	rootCMD.AddCommand(apiCMD)
}

func runAPI(ctx context.Context, addr string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	mcpServer, callLog, cleanup, err := buildMCPServer(ctx)
	if err != nil {
		return errors.Wrap(err, "build mcp server")
	}
	defer cleanup()

	var lister calllog.Lister
	if callLog != nil {
		lister = callLog
	}

	if !gconfig.Shared.GetBool("debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           newRouter(mcpServer.Handler(), lister),
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Logger.Info("listening on http", zap.String("addr", addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "listen and serve")
		}
		return nil
	})
	group.Go(func() error {
		<-gctx.Done()
		log.Logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		return errors.Wrap(httpSrv.Shutdown(shutdownCtx), "shutdown http server")
	})

	return group.Wait()
}

// newRouter mounts the MCP handler and the optional call log API on gin.
func newRouter(mcpHandler http.Handler, lister calllog.Lister) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		gmw.NewLoggerMiddleware(
			gmw.WithLogger(log.Logger.Named("gin")),
		),
	)

	router.Any("/health", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "ok")
	})

	router.Any("/mcp", gin.WrapH(mcpHandler))

	if lister != nil {
		router.GET("/api/logs", gin.WrapH(calllog.NewHTTPHandler(lister, log.Logger.Named("calllog_http"))))
	}

	return router
}
