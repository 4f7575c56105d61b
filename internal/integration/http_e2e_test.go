//go:build integration || !unit

package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"homezy/internal/adapters/backend"
	server "homezy/internal/adapters/http_server"
	redisad "homezy/internal/adapters/redis"
	"homezy/internal/app"
	"homezy/internal/domain"
	mysqlrepo "homezy/internal/storage/mysql"
)

// ---------- helpers ----------

func migrationsDir() string {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	return filepath.Join("..", "..", "migrations")
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := migrationsDir()

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir %s: %v", dir, err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)
	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("dockertest unavailable: %v", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env:        []string{"MYSQL_ROOT_PASSWORD=root", "MYSQL_DATABASE=homezy"},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Skipf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/homezy?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		resource.GetPort("3306/tcp"))

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)
	return db
}

// fakeBackend serves the managed backend's listings collection.
func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/collections/listings/documents", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("category") != "homes" {
			_, _ = w.Write([]byte(`{"documents":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"documents":[
			{"id":"L1","hostId":"H1","title":"QC loft","location":"Quezon City","price":"3,000","guestSize":"4",
			 "availability":{"startDate":"2025-01-01","endDate":"2025-12-31"},"status":"published"},
			{"id":"L2","hostId":"H1","title":"QC studio","location":"Quezon City","price":3100,"guestSize":2,
			 "availability":{"startDate":"2025-01-01","endDate":"2025-12-31"},"status":"published"},
			{"id":"L3","hostId":"H2","title":"Cebu villa","location":"Cebu","price":9000,"guestSize":8,"status":"published"}
		]}`))
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, _ := json.Marshal(body)
	res, err := http.Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { _ = res.Body.Close() })
	return res
}

func get(t *testing.T, url string, dst any) {
	t.Helper()
	res, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d", url, res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(dst); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

// ---------- the test ----------

func TestHTTP_EndToEnd_SyncSearchBookRecommend(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	mr := miniredis.RunT(t)
	rc := redisad.NewClient(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = rc.Close() })
	cache := redisad.New(rc)
	feed := redisad.NewCatalogFeed(rc, "homezy:catalog-changed")

	// mirror the backend catalog
	client, err := backend.New(fakeBackend(t).URL, "test-key", 50)
	if err != nil {
		t.Fatalf("backend client: %v", err)
	}
	syncer := app.NewSyncService(client, repo, repo, cache, feed)
	n, err := syncer.SyncCategory(ctx, "homes")
	if err != nil || n != 3 {
		t.Fatalf("SyncCategory: n=%d err=%v", n, err)
	}

	srv := server.New()
	srv.MountHandlers(&server.Handlers{
		Browse:   app.NewBrowseService(repo, repo, repo, cache, 0),
		Listings: app.NewListingService(repo, cache, feed),
		Bookings: app.NewBookingService(repo, repo, repo),
		Messages: app.NewMessageService(repo),
	})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	var found domain.SearchResult
	get(t, ts.URL+"/v1/listings?category=homes&location=quezon&date=2025-06-01&adults=2&children=1", &found)
	if found.Header != "Available Apartments on Jun 1, 2025 in quezon for 3 guests" {
		t.Fatalf("header = %q", found.Header)
	}
	if len(found.Items) != 1 || found.Items[0].ID != "L1" || found.Items[0].Price != 3000 {
		t.Fatalf("items = %+v", found.Items)
	}

	res := post(t, ts.URL+"/v1/bookings", map[string]any{"user_id": "u1", "listing_id": "L1", "nights": 2})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create booking: %d", res.StatusCode)
	}

	var rec struct {
		Items []domain.Listing `json:"items"`
	}
	get(t, ts.URL+"/v1/users/u1/recommendations?category=homes", &rec)
	if len(rec.Items) != 1 || rec.Items[0].ID != "L2" {
		t.Fatalf("recommendations = %+v", rec.Items)
	}
}
