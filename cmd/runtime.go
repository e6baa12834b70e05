package cmd

import (
	"context"
	"net/http"
	"strings"
	"time"

	errors "github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"
	"github.com/Laisky/zap"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Laisky/aws-documentation-mcp/internal/docs"
	"github.com/Laisky/aws-documentation-mcp/internal/mcp"
	"github.com/Laisky/aws-documentation-mcp/internal/mcp/calllog"
	"github.com/Laisky/aws-documentation-mcp/library/awsdocs"
	"github.com/Laisky/aws-documentation-mcp/library/log"
)

// selectedPartition resolves the partition flag, falling back to the config file.
func selectedPartition() (docs.Partition, error) {
	name := strings.TrimSpace(gconfig.Shared.GetString("partition"))
	if name == "" {
		name = gconfig.Shared.GetString(keyDocsPartition)
	}
	return docs.PartitionByName(name)
}

// buildService wires the documentation client and service from configuration.
// reporter may be nil.
func buildService(reporter docs.Reporter) (*docs.Service, error) {
	partition, err := selectedPartition()
	if err != nil {
		return nil, errors.Wrap(err, "select partition")
	}

	clientOpts := []awsdocs.Option{
		awsdocs.WithSearchDomain(partition.Host),
		awsdocs.WithSearchEndpoint(gconfig.Shared.GetString(keyDocsSearchEndpoint)),
		awsdocs.WithRecommendationsEndpoint(gconfig.Shared.GetString(keyDocsRecommendationsEndpoint)),
		awsdocs.WithLogger(log.Logger.Named("aws_docs_client")),
	}
	if secs := gconfig.Shared.GetInt(keyDocsTimeoutSeconds); secs > 0 {
		clientOpts = append(clientOpts, awsdocs.WithHTTPClient(&http.Client{
			Timeout: time.Duration(secs) * time.Second,
		}))
	}
	client := awsdocs.NewClient(clientOpts...)

	opts := []docs.Option{docs.WithLogger(log.Logger.Named("docs"))}
	if reporter != nil {
		opts = append(opts, docs.WithReporter(reporter))
	}

	svc, err := docs.NewService(client,
		docs.NewQueryCache(gconfig.Shared.GetInt(keyDocsQueryCacheCapacity)),
		partition, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "new documentation service")
	}

	log.Logger.Info("documentation service ready",
		zap.String("partition", partition.Name),
		zap.String("session_id", client.SessionID()))
	return svc, nil
}

// buildCallLog connects the call log when a DSN is configured. Both return
// values are nil when the call log is off.
func buildCallLog(ctx context.Context) (*calllog.Service, *pgxpool.Pool, error) {
	dsn := strings.TrimSpace(gconfig.Shared.GetString(keyPostgresDSN))
	if dsn == "" {
		log.Logger.Info("call log disabled, no postgres dsn configured")
		return nil, nil, nil
	}

	pool, err := calllog.Connect(ctx, dsn)
	if err != nil {
		return nil, nil, errors.Wrap(err, "connect call log database")
	}

	svc, err := calllog.NewService(ctx, pool, log.Logger.Named("calllog"), nil)
	if err != nil {
		pool.Close()
		return nil, nil, errors.Wrap(err, "new call log service")
	}

	return svc, pool, nil
}

// buildMCPServer assembles the MCP server on top of the documentation service.
func buildMCPServer(ctx context.Context) (*mcp.Server, *calllog.Service, func(), error) {
	svc, err := buildService(mcp.ClientReporter)
	if err != nil {
		return nil, nil, nil, err
	}

	callLog, pool, err := buildCallLog(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	cleanup := func() {
		if pool != nil {
			pool.Close()
		}
	}

	var recorder calllog.Recorder
	if callLog != nil {
		recorder = callLog
	}

	server, err := mcp.NewServer(svc, mcp.LoadToolsSettingsFromConfig(), recorder, log.Logger)
	if err != nil {
		cleanup()
		return nil, nil, nil, errors.Wrap(err, "new mcp server")
	}

	return server, callLog, cleanup, nil
}
