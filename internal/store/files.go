package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jward/arbor/internal/pike"
)

// UpsertFile replaces the indexed state of one file: its content, content
// hash, symbol tree, and diagnostics, in a single transaction.
func (s *Store) UpsertFile(path, hash, content string, syms []*pike.Symbol, diags []pike.Diagnostic) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("upsert %s: begin: %w", path, err)
	}
	defer tx.Rollback()

	var fileID int64
	err = tx.QueryRow(`SELECT id FROM files WHERE path = ?`, path).Scan(&fileID)
	switch {
	case err == sql.ErrNoRows:
		res, err := tx.Exec(
			`INSERT INTO files (path, hash, content, last_indexed) VALUES (?, ?, ?, ?)`,
			path, hash, content, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("upsert %s: insert file: %w", path, err)
		}
		fileID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("upsert %s: file id: %w", path, err)
		}
	case err != nil:
		return fmt.Errorf("upsert %s: lookup: %w", path, err)
	default:
		if _, err := tx.Exec(
			`UPDATE files SET hash = ?, content = ?, last_indexed = ? WHERE id = ?`,
			hash, content, time.Now().UTC(), fileID); err != nil {
			return fmt.Errorf("upsert %s: update file: %w", path, err)
		}
		if _, err := tx.Exec(`DELETE FROM symbols WHERE file_id = ?`, fileID); err != nil {
			return fmt.Errorf("upsert %s: clear symbols: %w", path, err)
		}
		if _, err := tx.Exec(`DELETE FROM diagnostics WHERE file_id = ?`, fileID); err != nil {
			return fmt.Errorf("upsert %s: clear diagnostics: %w", path, err)
		}
	}

	for _, sym := range syms {
		if err := insertSymbolTx(tx, fileID, nil, sym); err != nil {
			return fmt.Errorf("upsert %s: symbol %q: %w", path, sym.Name, err)
		}
	}
	for _, d := range diags {
		if _, err := tx.Exec(
			`INSERT INTO diagnostics (file_id, message, severity, line) VALUES (?, ?, ?, ?)`,
			fileID, d.Message, string(d.Severity), d.Line); err != nil {
			return fmt.Errorf("upsert %s: diagnostic: %w", path, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("upsert %s: commit: %w", path, err)
	}
	return nil
}

func insertSymbolTx(tx *sql.Tx, fileID int64, parentID *int64, sym *pike.Symbol) error {
	var typeExpr string
	if sym.Type != nil {
		typeExpr = sym.Type.String()
	}
	res, err := tx.Exec(`
		INSERT INTO symbols
		  (file_id, parent_id, name, kind, modifiers, type, line, col,
		   end_line, documentation, conditional, condition, branch)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		fileID, parentID, sym.Name, string(sym.Kind),
		strings.Join(sym.Modifiers, ","), typeExpr,
		sym.Line, sym.Col, sym.EndLine, sym.Documentation,
		sym.Conditional, sym.Condition, sym.Branch)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	for _, child := range sym.Children {
		if err := insertSymbolTx(tx, fileID, &id, child); err != nil {
			return err
		}
	}
	return nil
}

// FileSymbols loads the symbol tree of one indexed file. Returns nil (not an
// empty slice) when the path has never been indexed, so callers can tell
// "not analyzed" from "no symbols".
func (s *Store) FileSymbols(path string) ([]*pike.Symbol, error) {
	var fileID int64
	err := s.db.QueryRow(`SELECT id FROM files WHERE path = ?`, path).Scan(&fileID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("symbols %s: lookup: %w", path, err)
	}

	rows, err := s.db.Query(`
		SELECT id, parent_id, name, kind, modifiers, type, line, col,
		       end_line, documentation, conditional, condition, branch
		FROM symbols WHERE file_id = ? ORDER BY id`, fileID)
	if err != nil {
		return nil, fmt.Errorf("symbols %s: query: %w", path, err)
	}
	defer rows.Close()

	byID := map[int64]*pike.Symbol{}
	roots := []*pike.Symbol{}
	for rows.Next() {
		var (
			id       int64
			parentID sql.NullInt64
			modifier string
			typeExpr string
			sym      pike.Symbol
			kind     string
		)
		if err := rows.Scan(&id, &parentID, &sym.Name, &kind, &modifier, &typeExpr,
			&sym.Line, &sym.Col, &sym.EndLine, &sym.Documentation,
			&sym.Conditional, &sym.Condition, &sym.Branch); err != nil {
			return nil, fmt.Errorf("symbols %s: scan: %w", path, err)
		}
		sym.Kind = pike.Kind(kind)
		sym.File = path
		if modifier != "" {
			sym.Modifiers = strings.Split(modifier, ",")
		}
		if typeExpr != "" {
			sym.Type = pike.ParseTypeTokens(pike.Tokenize(typeExpr, 1))
		}
		byID[id] = &sym
		if parentID.Valid {
			if parent := byID[parentID.Int64]; parent != nil {
				parent.Children = append(parent.Children, &sym)
				continue
			}
		}
		roots = append(roots, &sym)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("symbols %s: rows: %w", path, err)
	}
	return roots, nil
}

// FileText returns the stored content of an indexed file.
func (s *Store) FileText(path string) (string, bool, error) {
	var content string
	err := s.db.QueryRow(`SELECT content FROM files WHERE path = ?`, path).Scan(&content)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("text %s: %w", path, err)
	}
	return content, true, nil
}

// FileHash returns the stored content hash, or "" when the path is unknown.
func (s *Store) FileHash(path string) (string, error) {
	var hash string
	err := s.db.QueryRow(`SELECT hash FROM files WHERE path = ?`, path).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hash, nil
}

// Files lists every indexed path.
func (s *Store) Files() ([]string, error) {
	rows, err := s.db.Query(`SELECT path FROM files ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	paths := []string{}
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("list files: scan: %w", err)
		}
		paths = append(paths, path)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list files: rows: %w", err)
	}
	return paths, nil
}

// DeleteFile removes a file and, via cascade, its symbols and diagnostics.
func (s *Store) DeleteFile(path string) error {
	if _, err := s.db.Exec(`DELETE FROM files WHERE path = ?`, path); err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

// FileDiagnostics loads the stored diagnostics of one file.
func (s *Store) FileDiagnostics(path string) ([]pike.Diagnostic, error) {
	rows, err := s.db.Query(`
		SELECT d.message, d.severity, d.line
		FROM diagnostics d JOIN files f ON f.id = d.file_id
		WHERE f.path = ? ORDER BY d.line, d.id`, path)
	if err != nil {
		return nil, fmt.Errorf("diagnostics %s: %w", path, err)
	}
	defer rows.Close()

	diags := []pike.Diagnostic{}
	for rows.Next() {
		var d pike.Diagnostic
		var severity string
		if err := rows.Scan(&d.Message, &severity, &d.Line); err != nil {
			return nil, fmt.Errorf("diagnostics %s: scan: %w", path, err)
		}
		d.Severity = pike.Severity(severity)
		d.File = path
		diags = append(diags, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("diagnostics %s: rows: %w", path, err)
	}
	return diags, nil
}

// IndexStats summarizes the persisted index.
type IndexStats struct {
	Files       int `json:"files"`
	Symbols     int `json:"symbols"`
	Diagnostics int `json:"diagnostics"`
}

// Stats counts the persisted rows.
func (s *Store) Stats() (IndexStats, error) {
	var st IndexStats
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM files`).Scan(&st.Files); err != nil {
		return st, fmt.Errorf("stats: files: %w", err)
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM symbols`).Scan(&st.Symbols); err != nil {
		return st, fmt.Errorf("stats: symbols: %w", err)
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM diagnostics`).Scan(&st.Diagnostics); err != nil {
		return st, fmt.Errorf("stats: diagnostics: %w", err)
	}
	return st, nil
}
