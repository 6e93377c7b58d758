package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/skirmish/internal/game/book"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

// ErrEmptyPartyID is returned when a survivor list is addressed without a party.
var ErrEmptyPartyID = errors.New("party id must not be empty")

// SurvivorRepository stores each party's list of opponents that survived a
// battle and may return in a linked one.
type SurvivorRepository struct {
	db *pgxpool.Pool
}

// NewSurvivorRepository creates a SurvivorRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewSurvivorRepository(db *pgxpool.Pool) *SurvivorRepository {
	return &SurvivorRepository{db: db}
}

// Load returns the survivor list of partyID in its stored order.
//
// Postcondition: Returns an empty, non-nil slice when the party has no survivors.
func (r *SurvivorRepository) Load(ctx context.Context, partyID string) ([]combat.Survivor, error) {
	if partyID == "" {
		return nil, ErrEmptyPartyID
	}
	rows, err := r.db.Query(ctx,
		`SELECT book, section, combatant
		   FROM party_survivors
		  WHERE party_id = $1
		  ORDER BY position`,
		partyID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying survivors of %q: %w", partyID, err)
	}
	defer rows.Close()

	out := []combat.Survivor{}
	for rows.Next() {
		var (
			bookID  string
			section int
			raw     []byte
		)
		if err := rows.Scan(&bookID, &section, &raw); err != nil {
			return nil, fmt.Errorf("scanning survivor of %q: %w", partyID, err)
		}
		var c combat.Combatant
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("decoding survivor of %q: %w", partyID, err)
		}
		out = append(out, combat.Survivor{Combatant: c, Location: book.At(bookID, section)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating survivors of %q: %w", partyID, err)
	}
	return out, nil
}

// Save replaces the survivor list of partyID.
//
// Postcondition: on success Load returns survivors in the same order; on
// error the stored list is unchanged.
func (r *SurvivorRepository) Save(ctx context.Context, partyID string, survivors []combat.Survivor) error {
	if partyID == "" {
		return ErrEmptyPartyID
	}
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM party_survivors WHERE party_id = $1`, partyID); err != nil {
			return fmt.Errorf("clearing survivors of %q: %w", partyID, err)
		}
		batch := &pgx.Batch{}
		for i, s := range survivors {
			raw, err := json.Marshal(s.Combatant)
			if err != nil {
				return fmt.Errorf("encoding survivor %d of %q: %w", i, partyID, err)
			}
			batch.Queue(
				`INSERT INTO party_survivors (party_id, position, book, section, combatant)
				 VALUES ($1, $2, $3, $4, $5::jsonb)`,
				partyID, i, s.Location.Book, s.Location.Section, string(raw),
			)
		}
		if batch.Len() == 0 {
			return nil
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("inserting survivors of %q: %w", partyID, err)
		}
		return nil
	})
}

// Count returns the number of stored survivors of partyID.
func (r *SurvivorRepository) Count(ctx context.Context, partyID string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM party_survivors WHERE party_id = $1`, partyID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting survivors of %q: %w", partyID, err)
	}
	return n, nil
}
