// Package store persists knowledge-graph snapshots and case embeddings
// in a single SQLite database, using sqlite-vec for nearest-neighbor
// search over case embeddings.
package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"github.com/kittipos/lexgraph/graph"
	"github.com/kittipos/lexgraph/legal"
)

func init() {
	sqlite_vec.Auto()
}

// ErrNoSnapshot reports that the database holds no complete snapshot.
// A missing marker row and a corrupt snapshot both map here; callers
// respond by rebuilding from the corpus.
var ErrNoSnapshot = errors.New("store: no complete snapshot")

// snapshotMarker is the meta key written last inside the save
// transaction. Its presence means every other table is consistent.
const snapshotMarker = "snapshot_saved_at"

// CaseHit is one vector-search result.
type CaseHit struct {
	Record     legal.CaseRecord
	Similarity float64
}

// Store wraps the SQLite database for all lexgraph persistence.
type Store struct {
	db           *sql.DB
	embeddingDim int
}

// New opens (or creates) a SQLite database at the given path and
// initialises the schema including the sqlite-vec virtual table.
func New(dbPath string, embeddingDim int) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := db.Exec(schemaSQL(embeddingDim)); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	// Connection pool settings for SQLite.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	return &Store{db: db, embeddingDim: embeddingDim}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for advanced queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// EmbeddingDim returns the configured embedding dimension.
func (s *Store) EmbeddingDim() int {
	return s.embeddingDim
}

// --- Snapshot persistence ---

// SaveSnapshot replaces the persisted snapshot in a single transaction.
// The marker row goes in last, so a crash mid-save leaves no marker and
// the partial state reads back as "no snapshot".
func (s *Store) SaveSnapshot(ctx context.Context, snap *graph.Snapshot) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"meta", "cases", "graph_nodes", "graph_edges", "graph_communities"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("clearing %s: %w", table, err)
			}
		}

		if err := saveCases(ctx, tx, snap); err != nil {
			return err
		}
		if err := saveGraph(ctx, tx, snap.Graph); err != nil {
			return err
		}
		if err := saveCommunities(ctx, tx, snap.Communities); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx,
			"INSERT INTO meta (key, value) VALUES (?, ?)",
			snapshotMarker, time.Now().UTC().Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("writing snapshot marker: %w", err)
		}
		return nil
	})
}

func saveCases(ctx context.Context, tx *sql.Tx, snap *graph.Snapshot) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO cases (decision_id, title, summary, full_text, case_type,
			judges, litigants, related_sections, keywords, source_file, doc_text, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, rec := range snap.Records() {
		judges, _ := json.Marshal(rec.Judges)
		litigants, _ := json.Marshal(rec.Litigants)
		sections, _ := json.Marshal(rec.RelatedSections)
		keywords, _ := json.Marshal(rec.Keywords)
		if _, err := stmt.ExecContext(ctx,
			rec.DecisionID, rec.Title, rec.Summary, rec.FullText, rec.CaseType,
			string(judges), string(litigants), string(sections), string(keywords),
			rec.SourceFile, snap.Documents[rec.DecisionID], i); err != nil {
			return fmt.Errorf("inserting case %s: %w", rec.DecisionID, err)
		}
	}
	return nil
}

func saveGraph(ctx context.Context, tx *sql.Tx, g *graph.Graph) error {
	nodeStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO graph_nodes (id, entity_type, position) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer nodeStmt.Close()

	for i, id := range g.Nodes() {
		if _, err := nodeStmt.ExecContext(ctx, id, string(g.NodeType(id)), i); err != nil {
			return fmt.Errorf("inserting node %s: %w", id, err)
		}
	}

	edgeStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO graph_edges (source, target, relation, weight, position) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer edgeStmt.Close()

	var edgeErr error
	i := 0
	g.Edges(func(e *graph.Edge) {
		if edgeErr != nil {
			return
		}
		if _, err := edgeStmt.ExecContext(ctx, e.Source, e.Target, string(e.Relation), e.Weight, i); err != nil {
			edgeErr = fmt.Errorf("inserting edge %s-%s: %w", e.Source, e.Target, err)
		}
		i++
	})
	return edgeErr
}

func saveCommunities(ctx context.Context, tx *sql.Tx, communities map[int][]string) error {
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO graph_communities (community_id, entity_id, position) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for cid, members := range communities {
		for i, entity := range members {
			if _, err := stmt.ExecContext(ctx, cid, entity, i); err != nil {
				return fmt.Errorf("inserting community member %s: %w", entity, err)
			}
		}
	}
	return nil
}

// LoadSnapshot rehydrates the persisted snapshot. A database without a
// marker row, or one that fails to decode, returns ErrNoSnapshot.
func (s *Store) LoadSnapshot(ctx context.Context) (*graph.Snapshot, error) {
	var savedAt string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM meta WHERE key = ?", snapshotMarker).Scan(&savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading marker: %v", ErrNoSnapshot, err)
	}

	snap, err := s.loadSnapshot(ctx)
	if err != nil {
		slog.Warn("store: snapshot failed to decode, treating as absent", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrNoSnapshot, err)
	}
	slog.Info("store: snapshot loaded", "saved_at", savedAt,
		"nodes", snap.Graph.NodeCount(), "edges", snap.Graph.EdgeCount())
	return snap, nil
}

func (s *Store) loadSnapshot(ctx context.Context) (*graph.Snapshot, error) {
	records, documents, err := s.loadCases(ctx)
	if err != nil {
		return nil, err
	}

	g := graph.New()
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, entity_type FROM graph_nodes ORDER BY position")
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var id, entityType string
		if err := rows.Scan(&id, &entityType); err != nil {
			rows.Close()
			return nil, err
		}
		g.AddNode(id, graph.EntityType(entityType))
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	rows, err = s.db.QueryContext(ctx,
		"SELECT source, target, relation, weight FROM graph_edges ORDER BY position")
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var source, target, relation string
		var weight float64
		if err := rows.Scan(&source, &target, &relation, &weight); err != nil {
			rows.Close()
			return nil, err
		}
		g.UpsertEdge(source, target, graph.Relation(relation), weight)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	communities := make(map[int][]string)
	rows, err = s.db.QueryContext(ctx,
		"SELECT community_id, entity_id FROM graph_communities ORDER BY community_id, position")
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var cid int
		var entity string
		if err := rows.Scan(&cid, &entity); err != nil {
			rows.Close()
			return nil, err
		}
		communities[cid] = append(communities[cid], entity)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	return graph.NewSnapshot(g, communities, records, documents), nil
}

func (s *Store) loadCases(ctx context.Context) ([]legal.CaseRecord, map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT decision_id, title, summary, full_text, case_type,
			judges, litigants, related_sections, keywords, source_file, doc_text
		FROM cases ORDER BY position
	`)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var records []legal.CaseRecord
	documents := make(map[string]string)
	for rows.Next() {
		var rec legal.CaseRecord
		var judges, litigants, sections, keywords, docText sql.NullString
		if err := rows.Scan(&rec.DecisionID, &rec.Title, &rec.Summary, &rec.FullText,
			&rec.CaseType, &judges, &litigants, &sections, &keywords,
			&rec.SourceFile, &docText); err != nil {
			return nil, nil, err
		}
		if judges.Valid && judges.String != "" {
			if err := json.Unmarshal([]byte(judges.String), &rec.Judges); err != nil {
				return nil, nil, fmt.Errorf("decoding judges for %s: %w", rec.DecisionID, err)
			}
		}
		if litigants.Valid && litigants.String != "" && litigants.String != "null" {
			if err := json.Unmarshal([]byte(litigants.String), &rec.Litigants); err != nil {
				return nil, nil, fmt.Errorf("decoding litigants for %s: %w", rec.DecisionID, err)
			}
		}
		if sections.Valid && sections.String != "" && sections.String != "null" {
			if err := json.Unmarshal([]byte(sections.String), &rec.RelatedSections); err != nil {
				return nil, nil, fmt.Errorf("decoding sections for %s: %w", rec.DecisionID, err)
			}
		}
		if keywords.Valid && keywords.String != "" && keywords.String != "null" {
			if err := json.Unmarshal([]byte(keywords.String), &rec.Keywords); err != nil {
				return nil, nil, fmt.Errorf("decoding keywords for %s: %w", rec.DecisionID, err)
			}
		}
		records = append(records, rec)
		documents[rec.DecisionID] = docText.String
	}
	return records, documents, rows.Err()
}

// --- Embedding operations ---

// UpsertCaseEmbedding stores the vector embedding for a case.
func (s *Store) UpsertCaseEmbedding(ctx context.Context, decisionID string, embedding []float32) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO case_rowids (decision_id) VALUES (?)", decisionID); err != nil {
			return err
		}
		var rowid int64
		if err := tx.QueryRowContext(ctx,
			"SELECT rowid FROM case_rowids WHERE decision_id = ?", decisionID).Scan(&rowid); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO vec_cases (case_rowid, embedding) VALUES (?, ?)",
			rowid, serializeFloat32(embedding))
		return err
	})
}

// VectorSearch performs a KNN search returning the top-k nearest cases.
// Distances convert to similarities clamped into [0,1].
func (s *Store) VectorSearch(ctx context.Context, queryEmbedding []float32, k int) ([]CaseHit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.decision_id, v.distance
		FROM vec_cases v
		JOIN case_rowids r ON r.rowid = v.case_rowid
		WHERE v.embedding MATCH ? AND k = ?
		ORDER BY v.distance
	`, serializeFloat32(queryEmbedding), k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type scored struct {
		id         string
		similarity float64
	}
	var ranked []scored
	for rows.Next() {
		var sc scored
		var distance float64
		if err := rows.Scan(&sc.id, &distance); err != nil {
			return nil, err
		}
		sc.similarity = clamp01(1.0 - distance)
		ranked = append(ranked, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var hits []CaseHit
	for _, sc := range ranked {
		rec, err := s.GetCase(ctx, sc.id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return nil, err
		}
		hits = append(hits, CaseHit{Record: *rec, Similarity: sc.similarity})
	}
	return hits, nil
}

// GetCase fetches one case record by decision id.
func (s *Store) GetCase(ctx context.Context, decisionID string) (*legal.CaseRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT decision_id, title, summary, full_text, case_type,
			judges, litigants, related_sections, keywords, source_file
		FROM cases WHERE decision_id = ?
	`, decisionID)

	var rec legal.CaseRecord
	var judges, litigants, sections, keywords sql.NullString
	if err := row.Scan(&rec.DecisionID, &rec.Title, &rec.Summary, &rec.FullText,
		&rec.CaseType, &judges, &litigants, &sections, &keywords, &rec.SourceFile); err != nil {
		return nil, err
	}
	if judges.Valid && judges.String != "" {
		_ = json.Unmarshal([]byte(judges.String), &rec.Judges)
	}
	if litigants.Valid && litigants.String != "" {
		_ = json.Unmarshal([]byte(litigants.String), &rec.Litigants)
	}
	if sections.Valid && sections.String != "" {
		_ = json.Unmarshal([]byte(sections.String), &rec.RelatedSections)
	}
	if keywords.Valid && keywords.String != "" {
		_ = json.Unmarshal([]byte(keywords.String), &rec.Keywords)
	}
	return &rec, nil
}

// EmbeddingCount returns the number of stored case embeddings.
func (s *Store) EmbeddingCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM vec_cases").Scan(&count)
	return count, err
}

// --- helpers ---

func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// serializeFloat32 converts a float32 slice to little-endian bytes for sqlite-vec.
func serializeFloat32(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}
