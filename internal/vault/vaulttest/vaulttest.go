// Package vaulttest opens an in-memory SQLite database laid out like the dds schema,
// so the vault statements can be exercised without a Postgres server.
package vaulttest

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var schema = []string{
	`ATTACH DATABASE ':memory:' AS dds`,
	`CREATE TABLE dds.h_order (h_order_pk TEXT PRIMARY KEY, order_id TEXT NOT NULL, order_dt TIMESTAMP NOT NULL, load_dt TIMESTAMP NOT NULL, load_src TEXT NOT NULL)`,
	`CREATE TABLE dds.h_user (h_user_pk TEXT PRIMARY KEY, user_id TEXT NOT NULL, load_dt TIMESTAMP NOT NULL, load_src TEXT NOT NULL)`,
	`CREATE TABLE dds.h_restaurant (h_restaurant_pk TEXT PRIMARY KEY, restaurant_id TEXT NOT NULL, load_dt TIMESTAMP NOT NULL, load_src TEXT NOT NULL)`,
	`CREATE TABLE dds.h_product (h_product_pk TEXT PRIMARY KEY, product_id TEXT NOT NULL, load_dt TIMESTAMP NOT NULL, load_src TEXT NOT NULL)`,
	`CREATE TABLE dds.h_category (h_category_pk TEXT PRIMARY KEY, category_name TEXT NOT NULL, load_dt TIMESTAMP NOT NULL, load_src TEXT NOT NULL)`,
	`CREATE TABLE dds.s_order_cost (hk_order_cost_pk TEXT PRIMARY KEY, h_order_pk TEXT NOT NULL REFERENCES h_order (h_order_pk), cost NUMERIC NOT NULL, payment NUMERIC NOT NULL, load_dt TIMESTAMP NOT NULL, load_src TEXT NOT NULL)`,
	`CREATE TABLE dds.s_order_status (hk_order_status_pk TEXT PRIMARY KEY, h_order_pk TEXT NOT NULL REFERENCES h_order (h_order_pk), status TEXT NOT NULL, load_dt TIMESTAMP NOT NULL, load_src TEXT NOT NULL)`,
	`CREATE TABLE dds.s_user_names (hk_user_names_pk TEXT PRIMARY KEY, h_user_pk TEXT NOT NULL REFERENCES h_user (h_user_pk), username TEXT NOT NULL, userlogin TEXT NOT NULL, load_dt TIMESTAMP NOT NULL, load_src TEXT NOT NULL)`,
	`CREATE TABLE dds.s_restaurant_names (hk_restaurant_names_pk TEXT PRIMARY KEY, h_restaurant_pk TEXT NOT NULL REFERENCES h_restaurant (h_restaurant_pk), name TEXT NOT NULL, load_dt TIMESTAMP NOT NULL, load_src TEXT NOT NULL)`,
	`CREATE TABLE dds.s_product_names (hk_product_names_pk TEXT PRIMARY KEY, h_product_pk TEXT NOT NULL REFERENCES h_product (h_product_pk), name TEXT NOT NULL, load_dt TIMESTAMP NOT NULL, load_src TEXT NOT NULL)`,
	`CREATE TABLE dds.l_order_user (hk_order_user_pk TEXT PRIMARY KEY, h_order_pk TEXT NOT NULL REFERENCES h_order (h_order_pk), h_user_pk TEXT NOT NULL REFERENCES h_user (h_user_pk), load_dt TIMESTAMP NOT NULL, load_src TEXT NOT NULL)`,
	`CREATE TABLE dds.l_order_product (hk_order_product_pk TEXT PRIMARY KEY, h_order_pk TEXT NOT NULL REFERENCES h_order (h_order_pk), h_product_pk TEXT NOT NULL REFERENCES h_product (h_product_pk), load_dt TIMESTAMP NOT NULL, load_src TEXT NOT NULL)`,
	`CREATE TABLE dds.l_product_category (hk_product_category_pk TEXT PRIMARY KEY, h_product_pk TEXT NOT NULL REFERENCES h_product (h_product_pk), h_category_pk TEXT NOT NULL REFERENCES h_category (h_category_pk), load_dt TIMESTAMP NOT NULL, load_src TEXT NOT NULL)`,
	`CREATE TABLE dds.l_product_restaurant (hk_product_restaurant_pk TEXT PRIMARY KEY, h_product_pk TEXT NOT NULL REFERENCES h_product (h_product_pk), h_restaurant_pk TEXT NOT NULL REFERENCES h_restaurant (h_restaurant_pk), load_dt TIMESTAMP NOT NULL, load_src TEXT NOT NULL)`,
}

// Tables lists every vault table, hubs first.
var Tables = []string{
	"h_order", "h_user", "h_restaurant", "h_product", "h_category",
	"s_order_cost", "s_order_status", "s_user_names", "s_restaurant_names", "s_product_names",
	"l_order_user", "l_order_product", "l_product_category", "l_product_restaurant",
}

// Open returns a fresh database with the dds schema. Each call is isolated.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// An in-memory database lives and dies with its connection.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Exec(`PRAGMA foreign_keys = ON`).Error)
	for _, stmt := range schema {
		require.NoError(t, db.Exec(stmt).Error, stmt)
	}
	return db
}

// Count returns the number of rows in dds.<table>.
func Count(t testing.TB, db *gorm.DB, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Raw("SELECT COUNT(*) FROM dds."+table).Scan(&n).Error)
	return n
}

// Counts returns the row count of every vault table.
func Counts(t testing.TB, db *gorm.DB) map[string]int64 {
	t.Helper()
	out := make(map[string]int64, len(Tables))
	for _, table := range Tables {
		out[table] = Count(t, db, table)
	}
	return out
}

// Has reports whether dds.<table> has a row whose pkColumn equals pk.
func Has(t testing.TB, db *gorm.DB, table, pkColumn, pk string) bool {
	t.Helper()
	var n int64
	require.NoError(t, db.Raw("SELECT COUNT(*) FROM dds."+table+" WHERE "+pkColumn+" = ?", pk).Scan(&n).Error)
	return n > 0
}
