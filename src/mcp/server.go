package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"jobdoctor/src/broker"
	"jobdoctor/src/logger"
	"jobdoctor/src/pipeline"
	"jobdoctor/src/store"
)

// Version is reported to MCP clients.
const Version = "1.0.0"

// Server is the MCP server for jobdoctor.
type Server struct {
	mcpServer   *server.MCPServer
	broker      broker.Broker
	store       store.Store
	log         logger.Logger
	parallelism int
}

// NewServer creates a new MCP server. Audits publish to b and are saved in
// st, where get_job_report reads them back.
func NewServer(b broker.Broker, st store.Store, log logger.Logger, parallelism int) *Server {
	s := server.NewMCPServer(
		"jobdoctor",
		Version,
		server.WithToolCapabilities(true),
	)

	if log == nil {
		log = logger.NewSilentLogger()
	}
	srv := &Server{
		mcpServer:   s,
		broker:      b,
		store:       st,
		log:         log,
		parallelism: parallelism,
	}
	srv.registerTools()

	return srv
}

// registerTools registers all available tools.
func (s *Server) registerTools() {
	auditTool := mcp.NewTool("audit_jobs",
		mcp.WithDescription("Audit the build history of Jenkins jobs without changing anything. Accepts a job directory, a JENKINS_HOME, or a directory of jobs. Returns tier 1 problems (lost or misattributed builds) in full with the repairs that would fix them; tier 2-3 problems are summarized, use get_job_report to see a job in full."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Job directory, JENKINS_HOME, or a directory containing jobs"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Max tier 1 problems (default: 25)"),
		),
	)

	reportTool := mcp.NewTool("get_job_report",
		mcp.WithDescription("Get the full report of one job from an earlier audit_jobs run: every problem, its proposed repairs as shell commands, and the size of the build index."),
		mcp.WithString("run_id",
			mcp.Required(),
			mcp.Description("Run ID from the audit_jobs response"),
		),
		mcp.WithString("job",
			mcp.Required(),
			mcp.Description("Job name or job directory from the manifest"),
		),
	)

	s.mcpServer.AddTool(auditTool, s.handleAuditJobs)
	s.mcpServer.AddTool(reportTool, s.handleGetJobReport)
}

// Run starts the MCP server on stdio.
func (s *Server) Run() error {
	return server.ServeStdio(s.mcpServer)
}

// handleAuditJobs runs a report-only audit and returns the manifest.
func (s *Server) handleAuditJobs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := request.GetString("path", "")
	if path == "" {
		return mcp.NewToolResultError("path parameter is required"), nil
	}
	limit := request.GetInt("limit", DefaultTier1Limit)

	runner := pipeline.NewRunner(s.broker, s.store, s.log, pipeline.Options{Parallelism: s.parallelism})
	run, err := runner.Run(ctx, []string{path})
	if err != nil {
		var userErr *pipeline.UserError
		if errors.As(err, &userErr) {
			return mcp.NewToolResultError(userErr.Error()), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("audit failed: %v", err)), nil
	}

	manifest := ToManifest(run.Run, run.Jobs, TierFindings(run.Jobs, limit))
	return jsonResult(manifest)
}

// handleGetJobReport returns one stored job report.
func (s *Server) handleGetJobReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	runID := request.GetString("run_id", "")
	if runID == "" {
		return mcp.NewToolResultError("run_id parameter is required"), nil
	}
	job := request.GetString("job", "")
	if job == "" {
		return mcp.NewToolResultError("job parameter is required"), nil
	}

	report, err := findJobReport(ctx, s.store, runID, job)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(compressReport(*report))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}
