package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/joescharf/clockme/internal/duration"
	"github.com/joescharf/clockme/internal/models"
	"github.com/joescharf/clockme/internal/tracker"
)

// Tracker is the subset of the tracker service exposed as tools.
type Tracker interface {
	StartSession(ctx context.Context) (*tracker.ClockInResult, error)
	Resume(ctx context.Context) (*tracker.ClockInResult, error)
	EndSession(ctx context.Context) (*tracker.ClockOutResult, error)
	StartBreak(ctx context.Context) (*tracker.BreakResult, error)
	Status(ctx context.Context) (*tracker.Status, error)
	History(ctx context.Context, limit int) ([]models.Session, error)
}

// Server exposes the time tracker as MCP tools.
type Server struct {
	tracker Tracker
	version string
}

// NewServer creates the MCP server wrapper.
func NewServer(t Tracker, version string) *Server {
	if version == "" {
		version = "dev"
	}
	return &Server{tracker: t, version: version}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("clock-me", s.version, server.WithToolCapabilities(true))

	srv.AddTool(s.statusTool())
	srv.AddTool(s.clockInTool())
	srv.AddTool(s.clockOutTool())
	srv.AddTool(s.breakTool())
	srv.AddTool(s.resumeTool())
	srv.AddTool(s.historyTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	stdioServer := server.NewStdioServer(s.MCPServer())
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

// ---------------------------------------------------------------------------
// Tool definitions and handlers
// ---------------------------------------------------------------------------

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// clock_status
func (s *Server) statusTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("clock_status",
		mcp.WithDescription("Show the tracking state (idle, working, on_break), the current session, the most recent session, and today's and all-time work and break totals."),
	)
	return tool, s.handleStatus
}

func (s *Server) handleStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := s.tracker.Status(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get status: %v", err)), nil
	}
	return jsonResult(tracker.NewStatusView(st))
}

type clockInOut struct {
	Project       string    `json:"project"`
	Action        string    `json:"action"`
	At            time.Time `json:"at"`
	BreakDuration string    `json:"break_duration,omitempty"`
}

// clock_in
func (s *Server) clockInTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("clock_in",
		mcp.WithDescription("Clock in to the project. When on a break, ends the break and continues the current session instead."),
	)
	return tool, s.handleClockIn
}

func (s *Server) handleClockIn(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.tracker.StartSession(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to clock in: %v", err)), nil
	}
	return jsonResult(clockInView(res))
}

// clock_resume
func (s *Server) resumeTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("clock_resume",
		mcp.WithDescription("End the current break and continue working. Fails when not on a break."),
	)
	return tool, s.handleResume
}

func (s *Server) handleResume(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.tracker.Resume(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to resume: %v", err)), nil
	}
	return jsonResult(clockInView(res))
}

func clockInView(res *tracker.ClockInResult) clockInOut {
	out := clockInOut{Project: res.Project.Name, Action: "clocked_in", At: res.At}
	if res.Resumed {
		out.Action = "resumed"
		out.BreakDuration = duration.Format(res.BreakDuration)
	}
	return out
}

// clock_out
func (s *Server) clockOutTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("clock_out",
		mcp.WithDescription("Clock out of the current session. An open break is closed first. Returns the session's work and break time."),
	)
	return tool, s.handleClockOut
}

func (s *Server) handleClockOut(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.tracker.EndSession(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to clock out: %v", err)), nil
	}
	return jsonResult(map[string]any{
		"project": res.Project.Name,
		"session": tracker.NewSessionView(&res.Session),
	})
}

// clock_break
func (s *Server) breakTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("clock_break",
		mcp.WithDescription("Start a break in the current session. Use clock_in or clock_resume to continue working."),
	)
	return tool, s.handleBreak
}

func (s *Server) handleBreak(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.tracker.StartBreak(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to start break: %v", err)), nil
	}
	return jsonResult(map[string]any{
		"project":           res.Project.Name,
		"at":                res.At,
		"work_before_break": duration.Format(res.WorkBeforeBreak),
		"previous_breaks":   duration.Format(res.PriorBreaks),
	})
}

// clock_history
func (s *Server) historyTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("clock_history",
		mcp.WithDescription("List closed sessions, newest first."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of sessions to return (default 10, 0 for all)")),
	)
	return tool, s.handleHistory
}

func (s *Server) handleHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", 10)
	if limit < 0 {
		return mcp.NewToolResultError("limit must not be negative"), nil
	}

	sessions, err := s.tracker.History(ctx, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list sessions: %v", err)), nil
	}

	out := make([]tracker.SessionView, len(sessions))
	for i := range sessions {
		out[i] = tracker.NewSessionView(&sessions[i])
	}
	return jsonResult(out)
}
