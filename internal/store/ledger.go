package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aniquiz/aniquiz/internal/ledger"
)

// LedgerBackend keeps one JSON document per identity. It implements
// ledger.Backend.
type LedgerBackend struct {
	db *sql.DB
}

func (b *LedgerBackend) Load(ctx context.Context, identity string) (ledger.Book, error) {
	var doc string
	err := b.db.QueryRowContext(ctx,
		`SELECT document FROM missed_ledgers WHERE storage_key = ?`, ledger.StorageKey(identity),
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Book{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query ledger: %w", err)
	}

	book := ledger.Book{}
	if err := json.Unmarshal([]byte(doc), &book); err != nil {
		return nil, fmt.Errorf("decode ledger: %w", err)
	}
	return book, nil
}

// Save replaces the identity's document. An empty book deletes the row. An
// empty identity is stored as the anonymous bucket, matching its key.
func (b *LedgerBackend) Save(ctx context.Context, identity string, book ledger.Book) error {
	key := ledger.StorageKey(identity)
	if identity == "" {
		identity = ledger.AnonymousIdentity
	}
	if len(book) == 0 {
		if _, err := b.db.ExecContext(ctx, `DELETE FROM missed_ledgers WHERE storage_key = ?`, key); err != nil {
			return fmt.Errorf("delete ledger: %w", err)
		}
		return nil
	}

	doc, err := json.Marshal(book)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	_, err = b.db.ExecContext(ctx, `INSERT INTO missed_ledgers (storage_key, identity, document, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (storage_key) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at`,
		key, identity, string(doc), time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	return nil
}

// Identities lists every identity with a non-empty ledger.
func (b *LedgerBackend) Identities(ctx context.Context) ([]string, error) {
	rows, err := b.db.QueryContext(ctx, `SELECT identity FROM missed_ledgers ORDER BY identity`)
	if err != nil {
		return nil, fmt.Errorf("query ledger identities: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
