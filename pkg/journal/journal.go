// Package journal records payment attempts in a sqlite database.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/common"
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/zeebo/errs"
)

const (
	dbVersion = 1
)

const schema = `
CREATE TABLE metadata (
	version INTEGER NOT NULL
);
CREATE TABLE attempts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	account TEXT NOT NULL,
	processor TEXT NOT NULL,
	amount TEXT NOT NULL,
	approval TEXT NOT NULL,
	nonce TEXT NOT NULL,
	deadline INTEGER NOT NULL,
	tx_hash TEXT NOT NULL,
	state TEXT NOT NULL,
	outcome TEXT NOT NULL,
	message TEXT NOT NULL
);
CREATE INDEX attempts_state ON attempts ( state );
`

// Attempt is one call to pay, from validation to its final state.
type Attempt struct {
	ID        int64
	CreatedAt time.Time
	UpdatedAt time.Time

	Account   common.Address
	Processor common.Address
	Amount    *big.Int

	// Approval, Nonce and Deadline are set once the permit is signed.
	Approval *big.Int
	Nonce    *big.Int
	Deadline int64

	// TxHash is set once the transaction is signed.
	TxHash common.Hash

	State State

	// Outcome and Message describe the failure, if any.
	Outcome string
	Message string
}

type DB struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens the journal at path, creating it if it does not exist.
func Open(ctx context.Context, path string, readOnly bool) (*DB, error) {
	_, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		if readOnly {
			return nil, errs.New("journal %q does not exist", path)
		}
		if err := initDB(ctx, path); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, errs.Wrap(err)
	}

	db, err := openDB(path, readOnly)
	if err != nil {
		return nil, err
	}
	if err := checkVersion(ctx, db); err != nil {
		return nil, errs.Combine(err, db.Close())
	}
	return newDB(db), nil
}

func OpenInMemory(ctx context.Context) (*DB, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, errs.Wrap(err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	if err := createSchema(ctx, db); err != nil {
		return nil, errs.Combine(err, db.Close())
	}
	return newDB(db), nil
}

func newDB(db *sql.DB) *DB {
	return &DB{
		db: db,
		now: func() time.Time {
			// Row timestamps are for audit only.
			return time.Now().UTC().Truncate(time.Millisecond)
		},
	}
}

func (db *DB) Close() error {
	return errs.Wrap(db.db.Close())
}

// Record inserts the attempt if it has no ID yet and updates it otherwise.
// ID and the timestamps are filled in on a.
func (db *DB) Record(ctx context.Context, a *Attempt) error {
	if _, ok := StateFromString(string(a.State)); !ok {
		return errs.New("invalid attempt state %q", a.State)
	}
	if a.Amount == nil {
		return errs.New("attempt amount is required")
	}

	now := db.now()
	if a.ID == 0 {
		res, err := db.db.ExecContext(ctx, `
			INSERT INTO attempts (
				created_at, updated_at, account, processor, amount, approval,
				nonce, deadline, tx_hash, state, outcome, message
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			now, now, a.Account.Hex(), a.Processor.Hex(), a.Amount.String(), bigString(a.Approval),
			bigString(a.Nonce), a.Deadline, hashString(a.TxHash), string(a.State), a.Outcome, a.Message,
		)
		if err != nil {
			return errs.Wrap(err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return errs.Wrap(err)
		}
		a.ID = id
		a.CreatedAt = now
		a.UpdatedAt = now
		return nil
	}

	res, err := db.db.ExecContext(ctx, `
		UPDATE attempts SET
			updated_at = ?, approval = ?, nonce = ?, deadline = ?, tx_hash = ?,
			state = ?, outcome = ?, message = ?
		WHERE id = ?`,
		now, bigString(a.Approval), bigString(a.Nonce), a.Deadline, hashString(a.TxHash),
		string(a.State), a.Outcome, a.Message, a.ID,
	)
	if err != nil {
		return errs.Wrap(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errs.Wrap(err)
	}
	if n != 1 {
		return errs.New("attempt %d not found", a.ID)
	}
	a.UpdatedAt = now
	return nil
}

func (db *DB) Fetch(ctx context.Context, id int64) (*Attempt, error) {
	row := db.db.QueryRowContext(ctx, selectAttempts+` WHERE id = ?`, id)
	a, err := scanAttempt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.New("attempt %d not found", id)
	}
	return a, err
}

// List returns every attempt, oldest first.
func (db *DB) List(ctx context.Context) (_ []*Attempt, err error) {
	rows, err := db.db.QueryContext(ctx, selectAttempts+` ORDER BY id`)
	if err != nil {
		return nil, errs.Wrap(err)
	}
	defer func() { err = errs.Combine(err, rows.Close()) }()

	var attempts []*Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(err)
	}
	return attempts, nil
}

// CountByState returns how many attempts are in each state. States without
// attempts are absent.
func (db *DB) CountByState(ctx context.Context) (_ map[State]int64, err error) {
	rows, err := db.db.QueryContext(ctx, `SELECT state, COUNT(*) FROM attempts GROUP BY state`)
	if err != nil {
		return nil, errs.Wrap(err)
	}
	defer func() { err = errs.Combine(err, rows.Close()) }()

	counts := make(map[State]int64)
	for rows.Next() {
		var state string
		var count int64
		if err := rows.Scan(&state, &count); err != nil {
			return nil, errs.Wrap(err)
		}
		counts[State(state)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(err)
	}
	return counts, nil
}

const selectAttempts = `
	SELECT id, created_at, updated_at, account, processor, amount, approval,
		nonce, deadline, tx_hash, state, outcome, message
	FROM attempts`

type scanner interface {
	Scan(dest ...any) error
}

func scanAttempt(row scanner) (*Attempt, error) {
	var (
		a         Attempt
		account   string
		processor string
		amount    string
		approval  string
		nonce     string
		txHash    string
		state     string
	)
	if err := row.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt, &account, &processor, &amount, &approval,
		&nonce, &a.Deadline, &txHash, &state, &a.Outcome, &a.Message); err != nil {
		return nil, errs.Wrap(err)
	}

	var ok bool
	if !common.IsHexAddress(account) {
		return nil, errs.New("attempt %d: invalid account %q", a.ID, account)
	}
	a.Account = common.HexToAddress(account)
	if !common.IsHexAddress(processor) {
		return nil, errs.New("attempt %d: invalid processor %q", a.ID, processor)
	}
	a.Processor = common.HexToAddress(processor)
	if a.Amount, ok = new(big.Int).SetString(amount, 10); !ok {
		return nil, errs.New("attempt %d: invalid amount %q", a.ID, amount)
	}
	if a.Approval, ok = parseBig(approval); !ok {
		return nil, errs.New("attempt %d: invalid approval %q", a.ID, approval)
	}
	if a.Nonce, ok = parseBig(nonce); !ok {
		return nil, errs.New("attempt %d: invalid nonce %q", a.ID, nonce)
	}
	if txHash != "" {
		a.TxHash = common.HexToHash(txHash)
	}
	if a.State, ok = StateFromString(state); !ok {
		return nil, errs.New("attempt %d: invalid state %q", a.ID, state)
	}
	return &a, nil
}

func bigString(v *big.Int) string {
	if v == nil {
		return ""
	}
	return v.String()
}

func parseBig(s string) (*big.Int, bool) {
	if s == "" {
		return nil, true
	}
	return new(big.Int).SetString(s, 10)
}

func hashString(h common.Hash) string {
	if h == (common.Hash{}) {
		return ""
	}
	return h.Hex()
}

// initDB creates the journal under a temporary name and renames it into
// place so a crash never leaves a half-initialized journal behind.
func initDB(ctx context.Context, path string) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errs.Wrap(err)
	}
	tmpPath := path + ".tmp"
	db, err := openDB(tmpPath, false)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			err = errs.Combine(err, db.Close(), os.Remove(tmpPath))
		}
	}()

	if err := createSchema(ctx, db); err != nil {
		return err
	}
	if err := db.Close(); err != nil {
		return errs.Wrap(err)
	}
	return errs.Wrap(os.Rename(tmpPath, path))
}

func createSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return errs.Wrap(err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO metadata (version) VALUES (?)`, dbVersion); err != nil {
		return errs.Wrap(err)
	}
	return nil
}

func openDB(path string, readOnly bool) (*sql.DB, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return nil, errs.Wrap(err)
	}
	dbURI := "file:" + path + "?_journal_mode=WAL&_locking_mode=EXCLUSIVE"
	if readOnly {
		dbURI += "&mode=ro"
	}
	db, err := sql.Open("sqlite3", dbURI)
	if err != nil {
		return nil, errs.Wrap(err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

func checkVersion(ctx context.Context, db *sql.DB) error {
	var version int
	if err := db.QueryRowContext(ctx, `SELECT version FROM metadata`).Scan(&version); err != nil {
		return errs.Wrap(err)
	}
	switch {
	case version > dbVersion:
		return errs.New("journal version is in the future (%d); upgrade your tool (%d)", version, dbVersion)
	case version < dbVersion:
		return errs.New("journal version %d is not supported", version)
	}
	return nil
}
