// Package listing persists disassembly listings in SQLite.
package listing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/sarchlab/rvdis/disasm"
)

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ""

// ErrNotFound is returned when a listing ID does not exist.
var ErrNotFound = errors.New("listing not found")

// Store reads and writes listings.
type Store struct {
	db *bun.DB
}

// Open connects to the SQLite database at dsn. An empty dsn opens a fresh
// in-memory database. With debug set, every query is logged.
func Open(dsn string, debug bool) (*Store, error) {
	if dsn == MemoryDSN {
		dsn = fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open listing database: %w", err)
	}
	// SQLite serializes writers; one connection also keeps a memory
	// database alive for the lifetime of the Store.
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	db.AddQueryHook(bundebug.NewQueryHook(
		bundebug.WithVerbose(true),
		bundebug.WithEnabled(debug),
	))

	return &Store{db: db}, nil
}

// Init creates the tables if they do not exist.
func (s *Store) Init(ctx context.Context) error {
	for _, model := range []interface{}{(*Listing)(nil), (*Line)(nil)} {
		if _, err := s.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	_, err := s.db.NewCreateIndex().
		Model((*Line)(nil)).
		Index("listing_lines_listing_id_seq").
		IfNotExists().
		Column("listing_id", "seq").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	return nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores lines under a new listing and returns its ID.
func (s *Store) Save(ctx context.Context, name, isa string, lines []disasm.Line) (string, error) {
	listing := &Listing{
		ID:        uuid.NewString(),
		Name:      name,
		ISA:       isa,
		Count:     len(lines),
		CreatedAt: time.Now(),
	}
	if len(lines) > 0 {
		listing.Base = lines[0].Address
	}

	rows := make([]Line, len(lines))
	for i, l := range lines {
		if !l.Known() {
			listing.Unknown++
		}
		rows[i] = Line{
			ListingID: listing.ID,
			Seq:       i,
			Address:   l.Address,
			Word:      l.Word,
			Mnemonic:  l.Mnemonic,
			Text:      l.Text,
		}
	}

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(listing).Exec(ctx); err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		_, err := tx.NewInsert().Model(&rows).Exec(ctx)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to save listing %q: %w", name, err)
	}

	return listing.ID, nil
}

// Get returns the listing header.
func (s *Store) Get(ctx context.Context, id string) (*Listing, error) {
	listing := new(Listing)
	err := s.db.NewSelect().Model(listing).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get listing %s: %w", id, err)
	}
	return listing, nil
}

// List returns every listing, oldest first.
func (s *Store) List(ctx context.Context) ([]Listing, error) {
	var listings []Listing
	err := s.db.NewSelect().Model(&listings).Order("created_at ASC", "name ASC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	return listings, nil
}

// Lines returns the lines of a listing in address order.
func (s *Store) Lines(ctx context.Context, id string) ([]Line, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	var lines []Line
	err := s.db.NewSelect().
		Model(&lines).
		Where("listing_id = ?", id).
		Order("seq ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read lines of %s: %w", id, err)
	}
	return lines, nil
}

// Histogram counts mnemonics of a listing in first-seen order.
func (s *Store) Histogram(ctx context.Context, id string) (*orderedmap.OrderedMap[string, int], error) {
	lines, err := s.Lines(ctx, id)
	if err != nil {
		return nil, err
	}

	hist := orderedmap.New[string, int]()
	for _, l := range lines {
		count, _ := hist.Get(l.Mnemonic)
		hist.Set(l.Mnemonic, count+1)
	}
	return hist, nil
}

// Delete removes a listing and its lines.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().Model((*Listing)(nil)).Where("id = ?", id).Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to delete listing %s: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		_, err = tx.NewDelete().Model((*Line)(nil)).Where("listing_id = ?", id).Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to delete lines of %s: %w", id, err)
		}
		return nil
	})
}
