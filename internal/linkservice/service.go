package linkservice

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/starford/xref/internal/apperr"
	"github.com/starford/xref/internal/graph"
	"github.com/starford/xref/internal/index"
	"github.com/starford/xref/internal/integrity"
	"github.com/starford/xref/internal/storage"
)

// ErrNotBuilt is returned by queries issued before the first Refresh.
var ErrNotBuilt = errors.New("linkservice: no snapshot built yet")

// DocumentSummary is a lightweight item in a document listing.
type DocumentSummary struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Incoming int    `json:"incoming"`
	Outgoing int    `json:"outgoing"`
}

// DocumentDetail describes one document and its neighbourhood.
type DocumentDetail struct {
	ID         string                   `json:"id"`
	Title      string                   `json:"title"`
	Checksum   string                   `json:"checksum"`
	Outgoing   []string                 `json:"outgoing"`
	Backlinks  []string                 `json:"backlinks"`
	Dangling   []integrity.DanglingLink `json:"dangling"`
	EntryPoint bool                     `json:"entry_point"`
}

// Service coordinates storage, the pipeline, and the graph store.
type Service struct {
	store  storage.Provider
	db     *index.DB
	opts   BuildOptions
	logger *slog.Logger

	// refreshMu orders whole refreshes so the DB rows and snap always
	// describe the same build.
	refreshMu sync.Mutex

	mu   sync.RWMutex
	snap *Snapshot
}

// NewService creates a new link service.
func NewService(store storage.Provider, db *index.DB, opts BuildOptions) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, db: db, opts: opts, logger: logger}
}

// Refresh rebuilds the snapshot from storage and replaces the graph store
// contents. On failure the previous snapshot stays current. Concurrent calls
// run one after another.
func (s *Service) Refresh(ctx context.Context) (*Snapshot, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	snap, err := Build(ctx, s.store, s.opts)
	if err != nil {
		return nil, err
	}
	if err := s.db.Replace(snap.Corpus, snap.Graph, snap.Report); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	s.logger.Info("snapshot refreshed",
		slog.String("revision", snap.Revision),
		slog.Int("documents", snap.Report.Documents),
		slog.Int("dangling", len(snap.Report.Dangling)))
	return snap, nil
}

// Snapshot returns the current snapshot, or nil before the first Refresh.
func (s *Service) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

func (s *Service) current() (*Snapshot, error) {
	snap := s.Snapshot()
	if snap == nil {
		return nil, ErrNotBuilt
	}
	return snap, nil
}

// Report returns the integrity report of the current snapshot.
func (s *Service) Report(_ context.Context) (*integrity.Report, error) {
	snap, err := s.current()
	if err != nil {
		return nil, err
	}
	return snap.Report, nil
}

// Documents lists every document with its edge counts.
func (s *Service) Documents(_ context.Context) ([]DocumentSummary, error) {
	snap, err := s.current()
	if err != nil {
		return nil, err
	}
	out := make([]DocumentSummary, 0, snap.Corpus.Len())
	for _, d := range snap.Corpus.Documents {
		out = append(out, DocumentSummary{
			ID:       d.ID,
			Title:    d.Title,
			Incoming: len(snap.Graph.Incoming(d.ID)),
			Outgoing: len(snap.Graph.Outgoing(d.ID)),
		})
	}
	return out, nil
}

// Document returns the detail of one document, or apperr.ErrNotFound.
func (s *Service) Document(ctx context.Context, id string) (*DocumentDetail, error) {
	snap, err := s.current()
	if err != nil {
		return nil, err
	}
	row, err := s.db.GetDocument(id)
	if err != nil {
		return nil, err
	}
	backlinks, err := s.Backlinks(ctx, id)
	if err != nil {
		return nil, err
	}
	outgoing, err := s.Outgoing(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &DocumentDetail{
		ID:        row.ID,
		Title:     row.Title,
		Checksum:  row.Checksum,
		Outgoing:  outgoing,
		Backlinks: backlinks,
		Dangling:  []integrity.DanglingLink{},
	}
	for _, d := range snap.Report.Dangling {
		if d.Source == id {
			detail.Dangling = append(detail.Dangling, d)
		}
	}
	for _, e := range snap.Report.EntryPoints {
		if e == id {
			detail.EntryPoint = true
		}
	}
	return detail, nil
}

// Backlinks returns the documents linking to id.
func (s *Service) Backlinks(_ context.Context, id string) ([]string, error) {
	if err := s.known(id); err != nil {
		return nil, err
	}
	return s.db.Backlinks(id)
}

// Outgoing returns the documents id links to.
func (s *Service) Outgoing(_ context.Context, id string) ([]string, error) {
	if err := s.known(id); err != nil {
		return nil, err
	}
	return s.db.Outgoing(id)
}

// Search runs a full-text search over document titles and bodies.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	if _, err := s.current(); err != nil {
		return nil, err
	}
	return s.db.Search(query, limit)
}

// Graph returns the nodes and edges of the current snapshot.
func (s *Service) Graph(ctx context.Context) ([]DocumentSummary, []graph.Edge, error) {
	nodes, err := s.Documents(ctx)
	if err != nil {
		return nil, nil, err
	}
	snap := s.Snapshot()
	edges := snap.Graph.Edges()
	if edges == nil {
		edges = []graph.Edge{}
	}
	return nodes, edges, nil
}

func (s *Service) known(id string) error {
	snap, err := s.current()
	if err != nil {
		return err
	}
	if !snap.Graph.HasNode(id) {
		return apperr.ErrNotFound
	}
	return nil
}
