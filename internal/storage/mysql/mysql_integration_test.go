//go:build integration

package mysql_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"stayhub/internal/domain"
	mysqlrepo "stayhub/internal/storage/mysql"
)

func mustEnv(t *testing.T, k string) string {
	t.Helper()
	v := os.Getenv(k)
	if v == "" {
		t.Fatalf("%s not set; export it (e.g. MIGRATIONS_DIR=/path/to/sql)", k)
	}
	return v
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := mustEnv(t, "MIGRATIONS_DIR")

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
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

func seedProperty(t *testing.T, db *sql.DB) (tenantID, propertyID int64) {
	t.Helper()
	exec := func(q string, args ...any) int64 {
		res, err := db.Exec(q, args...)
		if err != nil {
			t.Fatalf("seed %q: %v", q, err)
		}
		id, _ := res.LastInsertId()
		return id
	}
	tenantID = exec(`INSERT INTO users (name, email, role) VALUES ('Owner', 'owner@example.com', 'TENANT')`)
	cityID := exec(`INSERT INTO cities (name) VALUES ('Bandung')`)
	catID := exec(`INSERT INTO property_categories (name) VALUES ('Villa')`)
	propertyID = exec(`INSERT INTO properties (tenant_id, city_id, category_id, name, description, address)
		VALUES (?, ?, ?, 'Tepi Danau Villa', 'Lakeside villa', 'Jl. Danau 12')`, tenantID, cityID, catID)
	exec(`INSERT INTO property_images (property_id, url, sort_order) VALUES (?, '/p/1.jpg', 0), (?, '/p/2.jpg', 1)`,
		propertyID, propertyID)
	return tenantID, propertyID
}

func TestRepo_MySQL_RoomLifecycle(t *testing.T) {
	// Start isolated MySQL; let Docker pick a free host port.
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}

	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=stayhub",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/stayhub?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		hostPort)

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

	repo := mysqlrepo.New(db)
	ctx := context.Background()
	tenantID, propertyID := seedProperty(t, db)

	// Property read model picks up joins and images.
	view, err := repo.GetPropertyView(ctx, propertyID)
	if err != nil {
		t.Fatalf("GetPropertyView: %v", err)
	}
	if view.City != "Bandung" || view.Category != "Villa" || len(view.Images) != 2 {
		t.Fatalf("unexpected view: %+v", view)
	}

	// Room with a peak rate and a per-date override.
	img := "/rooms/std.jpg"
	roomID, err := repo.CreateRoom(ctx, domain.Room{
		PropertyID: propertyID, Name: "Standard", Description: "Garden view",
		Image: &img, BasePrice: 100000, Quantity: 5, Capacity: 2,
	})
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}

	start, _ := domain.ParseDate("2024-07-01")
	end, _ := domain.ParseDate("2024-07-10")
	if _, err := repo.CreatePeakRate(ctx, domain.PeakSeasonRate{
		RoomID: roomID, StartDate: start, EndDate: end,
		Type: domain.ModifierPercentage, Value: 10,
		CreatedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("CreatePeakRate: %v", err)
	}

	ovDay, _ := domain.ParseDate("2024-07-05")
	if err := repo.UpsertOverride(ctx, domain.AvailabilityOverride{
		RoomID: roomID, Date: ovDay, Available: 2,
	}); err != nil {
		t.Fatalf("UpsertOverride: %v", err)
	}

	days := domain.DaysBetween(start, end)
	room, err := repo.GetActiveRoom(ctx, roomID, days)
	if err != nil {
		t.Fatalf("GetActiveRoom: %v", err)
	}
	if len(room.PeakRates) != 1 || !room.PeakRates[0].StartDate.Equal(start) {
		t.Fatalf("unexpected rates: %+v", room.PeakRates)
	}
	if len(room.Overrides) != 1 || room.Overrides[0].Available != 2 {
		t.Fatalf("unexpected overrides: %+v", room.Overrides)
	}

	// Upsert wins on conflict.
	if err := repo.UpsertOverride(ctx, domain.AvailabilityOverride{
		RoomID: roomID, Date: ovDay, Available: 4,
	}); err != nil {
		t.Fatalf("UpsertOverride again: %v", err)
	}
	room, err = repo.GetActiveRoom(ctx, roomID, days)
	if err != nil {
		t.Fatalf("GetActiveRoom: %v", err)
	}
	if len(room.Overrides) != 1 || room.Overrides[0].Available != 4 {
		t.Fatalf("override not replaced: %+v", room.Overrides)
	}

	// Soft delete hides the room from explore but not from the tenant.
	if err := repo.SetRoomDeleted(ctx, roomID, true); err != nil {
		t.Fatalf("SetRoomDeleted: %v", err)
	}
	if _, err := repo.GetActiveRoom(ctx, roomID, nil); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound for deleted room, got %v", err)
	}
	anyRoom, err := repo.GetRoomAny(ctx, roomID)
	if err != nil {
		t.Fatalf("GetRoomAny: %v", err)
	}
	if anyRoom.DeletedAt == nil {
		t.Fatalf("expected deleted_at on soft-deleted room")
	}
	rooms, err := repo.ListTenantRooms(ctx, tenantID)
	if err != nil {
		t.Fatalf("ListTenantRooms: %v", err)
	}
	if len(rooms) != 1 {
		t.Fatalf("tenant should still see the room, got %d", len(rooms))
	}
	if err := repo.SetRoomDeleted(ctx, roomID, false); err != nil {
		t.Fatalf("restore: %v", err)
	}
}

func TestRepo_MySQL_BookingLifecycle(t *testing.T) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env:        []string{"MYSQL_ROOT_PASSWORD=root", "MYSQL_DATABASE=stayhub"},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/stayhub?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
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

	repo := mysqlrepo.New(db)
	ctx := context.Background()
	_, propertyID := seedProperty(t, db)

	roomID, err := repo.CreateRoom(ctx, domain.Room{
		PropertyID: propertyID, Name: "Standard", Description: "x",
		BasePrice: 100000, Quantity: 5, Capacity: 2,
	})
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	res, err := db.Exec(`INSERT INTO users (name, email, role) VALUES ('Guest', 'guest@example.com', 'USER')`)
	if err != nil {
		t.Fatalf("seed guest: %v", err)
	}
	guestID, _ := res.LastInsertId()

	in, _ := domain.ParseDate("2024-07-04")
	out, _ := domain.ParseDate("2024-07-07")
	id, err := repo.CreateBooking(ctx, domain.Booking{
		Code: "11111111-2222-3333-4444-555555555555",
		UserID: guestID, RoomID: roomID,
		CheckIn: in, CheckOut: out, Qty: 2, TotalPrice: 660000,
		Status:    domain.BookingWaitingPayment,
		CreatedAt: time.Now().UTC().Add(-2 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	b, err := repo.GetBookingByCode(ctx, "11111111-2222-3333-4444-555555555555")
	if err != nil {
		t.Fatalf("GetBookingByCode: %v", err)
	}
	if b.ID != id || !b.CheckIn.Equal(in) || !b.CheckOut.Equal(out) || b.TotalPrice != 660000 {
		t.Fatalf("unexpected booking: %+v", b)
	}

	// Created two hours ago with a one hour TTL, so it is stale.
	stale, err := repo.ListStaleWaiting(ctx, 3600)
	if err != nil {
		t.Fatalf("ListStaleWaiting: %v", err)
	}
	if len(stale) != 1 || stale[0].ID != id {
		t.Fatalf("expected one stale booking, got %+v", stale)
	}

	if err := repo.SetBookingStatus(ctx, id, domain.BookingExpired); err != nil {
		t.Fatalf("SetBookingStatus: %v", err)
	}
	b, err = repo.GetBookingByCode(ctx, b.Code)
	if err != nil {
		t.Fatalf("GetBookingByCode: %v", err)
	}
	if b.Status != domain.BookingExpired {
		t.Fatalf("expected EXPIRED, got %s", b.Status)
	}
	stale, err = repo.ListStaleWaiting(ctx, 3600)
	if err != nil {
		t.Fatalf("ListStaleWaiting: %v", err)
	}
	if len(stale) != 0 {
		t.Fatalf("expired booking still listed: %+v", stale)
	}

	if _, err := repo.GetBookingByCode(ctx, "no-such-code"); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
