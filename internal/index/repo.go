package index

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/xref/internal/apperr"
	"github.com/starford/xref/internal/corpus"
	"github.com/starford/xref/internal/graph"
	"github.com/starford/xref/internal/integrity"
)

// Finding kinds stored in the findings table.
const (
	FindingOrphan        = "orphan"
	FindingSelfReference = "self_reference"
	FindingSkipped       = "skipped"
)

// DocumentRow represents a row in the documents table.
type DocumentRow struct {
	ID       string
	Title    string
	Checksum string
}

// LinkRow represents a row in the links table.
type LinkRow struct {
	Source   string
	Target   string
	Raw      string
	Fragment string
	Line     int
	Column   int
	Dangling bool
}

// FindingRow represents a row in the findings table.
type FindingRow struct {
	Kind     string
	Document string
	Detail   string
	Line     int
}

// SearchResult represents one search hit.
type SearchResult struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// Replace swaps the stored snapshot for c, g, and r within one transaction.
func (db *DB) Replace(c *corpus.Corpus, g *graph.Graph, r *integrity.Report) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	for _, stmt := range []string{`DELETE FROM documents`, `DELETE FROM links`, `DELETE FROM findings`} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("index: clear: %w", err)
		}
	}
	if err := ftsClear(tx); err != nil {
		return err
	}

	docStmt, err := tx.Prepare(`INSERT INTO documents (id, title, checksum, body) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("index: prepare document insert: %w", err)
	}
	defer docStmt.Close()
	for _, d := range c.Documents {
		if _, err := docStmt.Exec(d.ID, d.Title, d.Checksum, d.Content); err != nil {
			return fmt.Errorf("index: insert document: %w", err)
		}
		if err := ftsInsert(tx, d.ID, d.Title, d.Content); err != nil {
			return err
		}
	}

	linkStmt, err := tx.Prepare(`
		INSERT INTO links (source, target, raw, fragment, line, col, dangling)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("index: prepare link insert: %w", err)
	}
	defer linkStmt.Close()
	for _, ref := range g.References() {
		dangling := !g.HasNode(ref.Resolved)
		if _, err := linkStmt.Exec(ref.Source, ref.Resolved, ref.Raw, ref.Fragment, ref.Line, ref.Column, dangling); err != nil {
			return fmt.Errorf("index: insert link: %w", err)
		}
	}

	findStmt, err := tx.Prepare(`INSERT INTO findings (kind, document, detail, line) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("index: prepare finding insert: %w", err)
	}
	defer findStmt.Close()
	var findings []FindingRow
	for _, o := range r.Orphans {
		findings = append(findings, FindingRow{Kind: FindingOrphan, Document: o.Document})
	}
	for _, s := range r.SelfReferences {
		findings = append(findings, FindingRow{Kind: FindingSelfReference, Document: s.Document, Detail: s.Raw, Line: s.Line})
	}
	for _, s := range r.Skipped {
		findings = append(findings, FindingRow{Kind: FindingSkipped, Document: s.Path, Detail: s.Reason})
	}
	for _, f := range findings {
		if _, err := findStmt.Exec(f.Kind, f.Document, f.Detail, f.Line); err != nil {
			return fmt.Errorf("index: insert finding: %w", err)
		}
	}

	return tx.Commit()
}

// GetDocument returns the stored document row, or apperr.ErrNotFound.
func (db *DB) GetDocument(id string) (*DocumentRow, error) {
	var d DocumentRow
	err := db.conn.QueryRow(`SELECT id, title, checksum FROM documents WHERE id = ?`, id).
		Scan(&d.ID, &d.Title, &d.Checksum)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("index: get document: %w", err)
	}
	return &d, nil
}

// Documents returns every stored document ordered by id.
func (db *DB) Documents() ([]DocumentRow, error) {
	rows, err := db.conn.Query(`SELECT id, title, checksum FROM documents ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("index: documents: %w", err)
	}
	defer rows.Close()
	var out []DocumentRow
	for rows.Next() {
		var d DocumentRow
		if err := rows.Scan(&d.ID, &d.Title, &d.Checksum); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Backlinks returns the distinct documents, other than target itself, that
// link to target.
func (db *DB) Backlinks(target string) ([]string, error) {
	return db.queryStrings(`
		SELECT DISTINCT source FROM links
		WHERE target = ? AND dangling = 0 AND source <> target
		ORDER BY source
	`, target)
}

// Outgoing returns the distinct documents source links to.
func (db *DB) Outgoing(source string) ([]string, error) {
	return db.queryStrings(`
		SELECT DISTINCT target FROM links
		WHERE source = ? AND dangling = 0
		ORDER BY target
	`, source)
}

// DanglingLinks returns dangling links, optionally limited to one source
// document when source is non-empty.
func (db *DB) DanglingLinks(source string) ([]LinkRow, error) {
	rows, err := db.conn.Query(`
		SELECT source, target, raw, fragment, line, col, dangling FROM links
		WHERE dangling = 1 AND (? = '' OR source = ?)
		ORDER BY source, line, col
	`, source, source)
	if err != nil {
		return nil, fmt.Errorf("index: dangling links: %w", err)
	}
	defer rows.Close()
	var out []LinkRow
	for rows.Next() {
		var l LinkRow
		if err := rows.Scan(&l.Source, &l.Target, &l.Raw, &l.Fragment, &l.Line, &l.Column, &l.Dangling); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Findings returns the stored findings of one kind ordered by document.
func (db *DB) Findings(kind string) ([]FindingRow, error) {
	rows, err := db.conn.Query(`
		SELECT kind, document, detail, line FROM findings
		WHERE kind = ?
		ORDER BY document, line
	`, kind)
	if err != nil {
		return nil, fmt.Errorf("index: findings: %w", err)
	}
	defer rows.Close()
	var out []FindingRow
	for rows.Next() {
		var f FindingRow
		if err := rows.Scan(&f.Kind, &f.Document, &f.Detail, &f.Line); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (db *DB) queryStrings(query string, arg any) ([]string, error) {
	rows, err := db.conn.Query(query, arg)
	if err != nil {
		return nil, fmt.Errorf("index: query: %w", err)
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
