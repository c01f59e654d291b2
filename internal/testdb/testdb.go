// Package testdb opens migrated in-memory sqlite databases for integration tests.
package testdb

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bigbestmart/catalog-backend/pkg/config"
	"github.com/bigbestmart/catalog-backend/pkg/db"
	"github.com/bigbestmart/catalog-backend/pkg/db/models"
	"github.com/bigbestmart/catalog-backend/pkg/migrate"
)

var seq atomic.Int64

// Open returns a client over a fresh sqlite database with every migration applied.
func Open(t testing.TB) *db.Client {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_fk=1", name, seq.Add(1))

	conn, err := gorm.Open(sqlite.Open(dsn), db.GormConfig())
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, migrate.Run(context.Background(), sqlDB, config.DBDriverSQLite, "up"))
	return db.Wrap(conn)
}

// SeedProducts inserts one product per name, in order, and returns them.
func SeedProducts(t testing.TB, client *db.Client, names ...string) []models.Product {
	t.Helper()

	products := make([]models.Product, len(names))
	for i, name := range names {
		products[i] = models.Product{
			Name:  name,
			Price: decimal.RequireFromString("9.99"),
		}
	}
	if len(products) == 0 {
		return products
	}
	require.NoError(t, client.DB().Create(&products).Error)
	return products
}
