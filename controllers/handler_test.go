package controllers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supplier-compliance-backend/database"
	"supplier-compliance-backend/middlewares"
	"supplier-compliance-backend/storage"
)

func TestRemoveFiles_WaitsForCommit(t *testing.T) {
	db, err := database.OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	prev := database.DB
	database.DB = db
	t.Cleanup(func() {
		database.DB = prev
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	store := storage.NewLocalStore(t.TempDir())
	h := New(nil, store, nil)
	write := func(name string) string {
		p, err := store.Path(1, name)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o600))
		return p
	}
	kept := write("kept.pdf")
	removed := write("removed.pdf")

	app := fiber.New(fiber.Config{ErrorHandler: middlewares.ErrorHandler})
	app.Use(middlewares.RequestTx())
	app.Delete("/rollback", func(c *fiber.Ctx) error {
		h.removeFiles(c, kept)
		_, err := os.Stat(kept)
		assert.NoError(t, err, "still on disk inside the transaction")
		return fiber.NewError(fiber.StatusConflict, "refused")
	})
	app.Delete("/commit", func(c *fiber.Ctx) error {
		h.removeFiles(c, removed)
		return c.SendStatus(fiber.StatusNoContent)
	})

	res, err := app.Test(httptest.NewRequest(http.MethodDelete, "/rollback", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, res.StatusCode)
	_, err = os.Stat(kept)
	assert.NoError(t, err, "a rolled back request keeps the file")

	res, err = app.Test(httptest.NewRequest(http.MethodDelete, "/commit", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	_, err = os.Stat(removed)
	assert.True(t, os.IsNotExist(err))
}
