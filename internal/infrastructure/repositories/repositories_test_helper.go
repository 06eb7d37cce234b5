package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createUserTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE,
		name TEXT,
		google_id TEXT UNIQUE,
		avatar_url TEXT,
		password_hash TEXT,
		is_active BOOLEAN,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createPaymentLinkTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE payment_links (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		amount INTEGER NOT NULL,
		description TEXT NOT NULL,
		currency TEXT NOT NULL DEFAULT 'CLP',
		status TEXT NOT NULL,
		single_use BOOLEAN NOT NULL DEFAULT 1,
		expires_at DATETIME,
		extra_data TEXT,
		times_paid INTEGER NOT NULL DEFAULT 0,
		views_count INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createTransactionTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE transactions (
		id TEXT PRIMARY KEY,
		payment_link_id TEXT NOT NULL,
		buy_order TEXT NOT NULL UNIQUE,
		session_id TEXT NOT NULL,
		token TEXT,
		status TEXT NOT NULL,
		response_code INTEGER,
		authorization_code TEXT,
		payment_type_code TEXT,
		installments_number INTEGER,
		amount INTEGER NOT NULL,
		card_last_four TEXT,
		raw_response TEXT,
		created_at DATETIME,
		authorized_at DATETIME
	);`)
}
