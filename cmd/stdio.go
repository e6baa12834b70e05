package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	errors "github.com/Laisky/errors/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	"github.com/Laisky/zap"
	"github.com/spf13/cobra"

	"github.com/Laisky/aws-documentation-mcp/library/log"
)

var stdioCMD = &cobra.Command{
	Use:   "stdio",
	Short: "serve MCP over stdio",
	Long:  `Serve the documentation tools over stdin/stdout, logs go to stderr`,
	Args:  gcmd.NoExtraArgs,
	PreRun: func(cmd *cobra.Command, args []string) {
		if err := initialize(cmd.Context(), cmd); err != nil {
			log.Logger.Panic("init", zap.Error(err))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		if err := runStdio(cmd.Context()); err != nil {
			log.Logger.Panic("run stdio", zap.Error(err))
		}
	},
}

func init() {
	rootCMD.AddCommand(stdioCMD)
}

func runStdio(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, _, cleanup, err := buildMCPServer(ctx)
	if err != nil {
		return errors.Wrap(err, "build mcp server")
	}
	defer cleanup()

	return errors.WithStack(server.ServeStdio(ctx))
}
