package app_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sanmar-inventory/internal/app"
	"sanmar-inventory/internal/backend"
	"sanmar-inventory/internal/core"
)

const batchPayload = `{
	"product": {
		"code": "PC61_White",
		"baseProduct": "PC61",
		"name": "Essential Tee",
		"variantOptions": [
			{
				"variantOptionQualifiers": [{"qualifier": "size", "value": "M"}],
				"stockLevelsMap": {"1": 7}
			}
		]
	},
	"warehouses": [{"code": 1, "shortName": "Dallas, TX"}]
}`

func TestFetchBatch_ContinuesPastFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/p/PC61_White/") {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(batchPayload))
			return
		}
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("<html>not found</html>"))
	}))
	defer server.Close()

	facade := backend.NewFacade(backend.Options{SiteBaseURL: server.URL})
	svc := app.NewService(facade, nil, nil, 0)

	result := svc.FetchBatch(context.Background(), backend.KindWebJSON, []string{"MISSING", "PC61_White"})
	if len(result.Failures) != 1 || result.Failures[0].Key != "MISSING" {
		t.Fatalf("failures = %+v, want one for MISSING", result.Failures)
	}
	if len(result.Rows) != 1 {
		t.Fatalf("rows = %+v, want one row from PC61_White", result.Rows)
	}
	row := result.Rows[0]
	if row.Style != "PC61_White" || row.Size != "M" || row.Qty != 7 || row.Warehouse != "Dallas, TX" {
		t.Errorf("unexpected row %+v", row)
	}
}

func TestParseOfflineFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "captured.json")
	if err := os.WriteFile(path, []byte(batchPayload), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	svc := app.NewService(backend.NewFacade(backend.Options{}), nil, nil, 0)
	env := svc.ParseOfflineFile(path, "PC61_White")
	if env.Error {
		t.Fatalf("unexpected error envelope: %s", env.Message)
	}
	if len(env.Rows) != 1 || env.Rows[0].Style != "PC61_White" {
		t.Errorf("rows = %+v", env.Rows)
	}

	missing := svc.ParseOfflineFile(filepath.Join(t.TempDir(), "nope.json"), "PC61_White")
	if !missing.Error {
		t.Error("expected error envelope for missing file")
	}
}

func TestTables_SplitsStyles(t *testing.T) {
	rows := []core.Row{
		{Style: "K420", WarehouseID: "1", Warehouse: "Dallas, TX", Size: "M", Qty: 5},
		{Style: "PC61", WarehouseID: "1", Warehouse: "Dallas, TX", Size: "L", Qty: 3},
		{Style: "K420", WarehouseID: "2", Warehouse: "Reno, NV", Size: "M", Qty: 2},
	}
	tables, err := app.Tables(rows)
	if err != nil {
		t.Fatalf("Tables: %v", err)
	}
	if len(tables) != 2 || tables[0].Style != "K420" || tables[1].Style != "PC61" {
		t.Fatalf("tables = %+v, want K420 then PC61", tables)
	}
	// K420 total: 5 + 2 across warehouses.
	last := tables[0].Rows[len(tables[0].Rows)-1]
	if last.Label != core.TotalRowLabel || last.Cells[0] != "7" {
		t.Errorf("K420 total row = %+v", last)
	}
}
