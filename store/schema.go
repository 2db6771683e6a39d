package store

import "fmt"

// schemaSQL returns the DDL for all tables. embeddingDim controls the
// vec0 virtual table dimension.
func schemaSQL(embeddingDim int) string {
	return fmt.Sprintf(`
-- Case corpus: one row per decision, JSON columns for list fields
CREATE TABLE IF NOT EXISTS cases (
    decision_id TEXT PRIMARY KEY,
    title TEXT,
    summary TEXT,
    full_text TEXT,
    case_type TEXT,
    judges JSON,
    litigants JSON,
    related_sections JSON,
    keywords JSON,
    source_file TEXT,
    doc_text TEXT,
    position INTEGER NOT NULL
);

-- Knowledge graph: typed nodes, insertion order preserved
CREATE TABLE IF NOT EXISTS graph_nodes (
    id TEXT PRIMARY KEY,
    entity_type TEXT NOT NULL,
    position INTEGER NOT NULL
);

-- Knowledge graph: one edge per unordered pair and relation
CREATE TABLE IF NOT EXISTS graph_edges (
    source TEXT NOT NULL,
    target TEXT NOT NULL,
    relation TEXT NOT NULL,
    weight REAL NOT NULL DEFAULT 1.0,
    position INTEGER NOT NULL,
    PRIMARY KEY (source, target, relation)
);

-- Retained communities
CREATE TABLE IF NOT EXISTS graph_communities (
    community_id INTEGER NOT NULL,
    entity_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    PRIMARY KEY (community_id, entity_id)
);

-- Case embeddings via sqlite-vec
CREATE VIRTUAL TABLE IF NOT EXISTS vec_cases USING vec0(
    case_rowid INTEGER PRIMARY KEY,
    embedding float[%d]
);

-- Rowid mapping for the vec0 table
CREATE TABLE IF NOT EXISTS case_rowids (
    rowid INTEGER PRIMARY KEY AUTOINCREMENT,
    decision_id TEXT NOT NULL UNIQUE
);

-- Snapshot marker, written last inside the save transaction
CREATE TABLE IF NOT EXISTS meta (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

-- Indexes
CREATE INDEX IF NOT EXISTS idx_cases_type ON cases(case_type);
CREATE INDEX IF NOT EXISTS idx_nodes_type ON graph_nodes(entity_type);
CREATE INDEX IF NOT EXISTS idx_edges_source ON graph_edges(source);
CREATE INDEX IF NOT EXISTS idx_edges_target ON graph_edges(target);
CREATE INDEX IF NOT EXISTS idx_communities_entity ON graph_communities(entity_id);
`, embeddingDim)
}
