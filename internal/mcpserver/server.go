// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes link integrity tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/xref/internal/apperr"
	"github.com/starford/xref/internal/index"
	"github.com/starford/xref/internal/integrity"
	"github.com/starford/xref/internal/linkservice"
)

// Server wraps the MCP server with the link tools.
type Server struct {
	mcp *server.MCPServer
	svc *linkservice.Service
}

// New creates a new MCP server with all link tools registered.
func New(svc *linkservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"xref",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("check_links",
		mcp.WithDescription("Re-read the corpus and report dangling links, orphan documents and self references. "+
			"Returns a JSON summary with the full dangling list."),
	), s.checkLinks)

	s.mcp.AddTool(mcp.NewTool("get_backlinks",
		mcp.WithDescription("List the documents that link to the specified document."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Document path relative to the corpus root (e.g. sessions/keynote.md)")),
	), s.getBacklinks)

	s.mcp.AddTool(mcp.NewTool("get_outgoing",
		mcp.WithDescription("List the documents the specified document links to."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Document path relative to the corpus root")),
	), s.getOutgoing)

	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List every document with its title and link counts."),
	), s.listDocuments)

	s.mcp.AddTool(mcp.NewTool("search_documents",
		mcp.WithDescription("Full-text search through document titles and content."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchDocuments)

	s.mcp.AddResource(
		mcp.NewResource(LinkSyntaxURI, "Link Syntax",
			mcp.WithResourceDescription("Which Markdown links are checked and how targets resolve."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readLinkSyntax,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// CheckSummary is the check_links payload.
type CheckSummary struct {
	Revision       string                   `json:"revision"`
	Documents      int                      `json:"documents"`
	Links          int                      `json:"links"`
	Edges          int                      `json:"edges"`
	Orphans        []string                 `json:"orphans"`
	SelfReferences int                      `json:"self_references"`
	Dangling       []integrity.DanglingLink `json:"dangling"`
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) checkLinks(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := s.svc.Refresh(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	r := snap.Report
	sum := CheckSummary{
		Revision:       snap.Revision,
		Documents:      r.Documents,
		Links:          r.Links,
		Edges:          r.Edges,
		Orphans:        make([]string, 0, len(r.Orphans)),
		SelfReferences: len(r.SelfReferences),
		Dangling:       r.Dangling,
	}
	for _, o := range r.Orphans {
		sum.Orphans = append(sum.Orphans, o.Document)
	}
	if sum.Dangling == nil {
		sum.Dangling = []integrity.DanglingLink{}
	}
	return jsonResult(sum)
}

func (s *Server) neighbours(ctx context.Context, req mcp.CallToolRequest,
	fn func(context.Context, string) ([]string, error), empty string) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ids, err := fn(ctx, path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(ids) == 0 {
		return mcp.NewToolResultText(empty), nil
	}
	return mcp.NewToolResultText(strings.Join(ids, "\n")), nil
}

func (s *Server) getBacklinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.neighbours(ctx, req, s.svc.Backlinks, "no backlinks found")
}

func (s *Server) getOutgoing(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.neighbours(ctx, req, s.svc.Outgoing, "no outgoing links found")
}

func (s *Server) listDocuments(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docs, err := s.svc.Documents(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(docs)
}

func (s *Server) searchDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if results == nil {
		results = []index.SearchResult{}
	}
	return jsonResult(results)
}

func (s *Server) readLinkSyntax(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      LinkSyntaxURI,
			MIMEType: "text/markdown",
			Text:     LinkSyntax,
		},
	}, nil
}
