package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"woosync/internal/config"
	"woosync/internal/connectors/woocommerce"
	"woosync/internal/database"
	"woosync/internal/models"
	"woosync/internal/services/woocommerce/woocommercetest"
)

func setupStore(t *testing.T) *woocommercetest.Server {
	t.Helper()
	srv := woocommercetest.NewServer(t)
	t.Setenv("WOOCOMMERCE_URL", srv.URL)
	t.Setenv("WOOCOMMERCE_CONSUMER_KEY", "ck_test")
	t.Setenv("WOOCOMMERCE_CONSUMER_SECRET", "cs_test")
	t.Setenv("SYNC_DELAY_MS", "0")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("DATABASE_URL", "")
	return srv
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSyncCommand(t *testing.T) {
	srv := setupStore(t)
	existing := srv.Seed(models.Product{Name: "Old", SKU: "CUP"})
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	t.Setenv("DATABASE_URL", "sqlite://"+dbPath)

	path := writeFile(t, "products.json", `[
		{"name": "Mug", "sku": "MUG", "regular_price": "9.50"},
		{"name": "Cup", "sku": "CUP"}
	]`)

	out, err := run(t, "sync", "--file", path, "--concurrency", "1")
	require.NoError(t, err)

	var report woocommerce.SyncReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Outcomes, 2)
	assert.True(t, report.Outcomes[0].Success)
	assert.Equal(t, existing.ID, report.Outcomes[1].Product.ID)
	assert.Equal(t, 1, srv.Count("POST /products"))
	assert.Equal(t, 1, srv.Count("PUT /products/"+strconv.FormatInt(existing.ID, 10)))

	db, err := database.New("sqlite://" + dbPath)
	require.NoError(t, err)
	defer db.Close()
	saved, err := database.NewRunRepository(db.DB).GetRun(context.Background(), report.RunID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncSourceCLI, saved.Source)
	assert.Equal(t, 2, saved.Succeeded)
}

func TestSyncCommandReportsFailures(t *testing.T) {
	srv := setupStore(t)
	srv.FailSKU("BAD", http.StatusBadRequest)

	path := writeFile(t, "products.json", `[{"name": "Bad", "sku": "BAD"}, {"name": "Good", "sku": "GOOD"}]`)

	out, err := run(t, "sync", "-f", path)
	assert.ErrorContains(t, err, "1 of 2 products failed")
	assert.Contains(t, out, `"failed_skus": [`)
	assert.Contains(t, out, `"BAD"`)
}

func TestSyncCommandRejectsBadFlags(t *testing.T) {
	srv := setupStore(t)
	path := writeFile(t, "products.json", `[{"name": "Mug", "sku": "MUG"}]`)

	_, err := run(t, "sync", "-f", path, "--concurrency", "0")
	assert.ErrorContains(t, err, "--concurrency")

	_, err = run(t, "sync", "-f", path, "--delay", "-1s")
	assert.ErrorContains(t, err, "--delay")

	assert.Empty(t, srv.Requests())
}

func TestStoreCommandsRequireCredentials(t *testing.T) {
	setupStore(t)
	t.Setenv("WOOCOMMERCE_CONSUMER_KEY", "")

	_, err := run(t, "status")
	assert.ErrorIs(t, err, config.ErrMissingCredentials)
}

func TestFindListDeleteStatus(t *testing.T) {
	srv := setupStore(t)
	mug := srv.Seed(models.Product{Name: "Mug", SKU: "MUG"})
	cup := srv.Seed(models.Product{Name: "Cup", SKU: "CUP"})

	out, err := run(t, "find", "--sku", "MUG")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "Mug"`)

	_, err = run(t, "find", "--sku", "NOPE")
	assert.ErrorIs(t, err, woocommerce.ErrNotFound)

	out, err = run(t, "list", "--per-page", "1")
	require.NoError(t, err)
	assert.Contains(t, out, `"total_pages": 2`)

	_, err = run(t, "delete", "--sku", "MUG")
	require.NoError(t, err)
	assert.Equal(t, "trash", srv.Product(mug.ID).Status)

	_, err = run(t, "delete", "--id", strconv.FormatInt(cup.ID, 10), "--force")
	require.NoError(t, err)
	assert.Nil(t, srv.Product(cup.ID))

	_, err = run(t, "delete")
	assert.ErrorContains(t, err, "exactly one of --id or --sku")

	out, err = run(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "environment")
}
