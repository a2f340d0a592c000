package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/4chain-ag/go-dlc-settlement/pkg/core/outcome"
	"github.com/btcsuite/btcd/btcec/v2"
	_ "github.com/mattn/go-sqlite3"
)

var ErrSnapshotNotFound = errors.New("no snapshot stored for contract")

// SQLiteSnapshotStore persists the elements of a party's storage keyed by
// contract id.
type SQLiteSnapshotStore struct {
	wDB *sql.DB
	rDB *sql.DB
}

const elementsSchema = `CREATE TABLE IF NOT EXISTS elements(
	contract_id TEXT NOT NULL,
	outcome INTEGER NOT NULL,
	payout BIGINT NOT NULL,
	payload BLOB NOT NULL,
	anticipation_point BLOB NOT NULL,
	own_pre_signature BLOB,
	cp_pre_signature BLOB,
	created_at TEXT NOT NULL DEFAULT current_timestamp,
	updated_at TEXT NOT NULL DEFAULT current_timestamp,
	PRIMARY KEY(contract_id, outcome)
)`

// NewSQLiteSnapshotStore opens a writer and a reader connection to conn and
// creates the schema. Nothing stays open when it fails.
func NewSQLiteSnapshotStore(conn string) (*SQLiteSnapshotStore, error) {
	wdb, err := openSQLite(conn)
	if err != nil {
		return nil, err
	}
	if _, err := wdb.Exec(elementsSchema); err != nil {
		return nil, errors.Join(err, wdb.Close())
	}
	rdb, err := openSQLite(conn)
	if err != nil {
		return nil, errors.Join(err, wdb.Close())
	}

	wdb.SetMaxOpenConns(1)
	return &SQLiteSnapshotStore{wDB: wdb, rDB: rdb}, nil
}

func openSQLite(conn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", conn)
	if err != nil {
		return nil, err
	}
	if err := applyPragmas(db); err != nil {
		return nil, errors.Join(err, db.Close())
	}
	return db, nil
}

func applyPragmas(db *sql.DB) error {
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			return err
		}
	}
	return nil
}

// Save replaces the snapshot of contractID with the elements of st.
func (s *SQLiteSnapshotStore) Save(ctx context.Context, contractID string, st *ArrayStorage) (err error) {
	tx, err := s.wDB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM elements WHERE contract_id = ?`, contractID); err != nil {
		return err
	}
	for i, e := range st.elements {
		if !st.present[i] {
			continue
		}
		var point []byte
		if e.AnticipationPoint != nil {
			point = e.AnticipationPoint.SerializeCompressed()
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO elements(contract_id, outcome, payout, payload, anticipation_point, own_pre_signature, cp_pre_signature)
			VALUES(?, ?, ?, ?, ?, ?, ?)`,
			contractID,
			i,
			e.Payout,
			e.Payload,
			point,
			[]byte(e.OwnPreSignature),
			[]byte(e.CounterpartyPreSignature),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Load rebuilds the storage of contractID over the given space.
func (s *SQLiteSnapshotStore) Load(ctx context.Context, contractID string, space outcome.Space) (*ArrayStorage, error) {
	rows, err := s.rDB.QueryContext(ctx, `
		SELECT outcome, payout, payload, anticipation_point, own_pre_signature, cp_pre_signature
		FROM elements
		WHERE contract_id = ?
		ORDER BY outcome`, contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	st := NewArrayStorage(space)
	found := false
	for rows.Next() {
		var (
			o     uint32
			e     Element
			point []byte
			own   []byte
			cp    []byte
		)
		if err := rows.Scan(&o, &e.Payout, &e.Payload, &point, &own, &cp); err != nil {
			return nil, err
		}
		if len(point) > 0 {
			if e.AnticipationPoint, err = btcec.ParsePubKey(point); err != nil {
				return nil, fmt.Errorf("outcome %d: %w", o, err)
			}
		}
		if len(own) > 0 {
			e.OwnPreSignature = own
		}
		if len(cp) > 0 {
			e.CounterpartyPreSignature = cp
		}
		if err := st.PutElement(outcome.Outcome(o), e); err != nil {
			return nil, err
		}
		found = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, contractID)
	}
	return st, nil
}

func (s *SQLiteSnapshotStore) Close() error {
	return errors.Join(s.wDB.Close(), s.rDB.Close())
}
