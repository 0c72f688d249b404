package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"fieldtrack/internal/domain/entities"
	"fieldtrack/internal/geo"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSessionRepositoryRoundTrip(t *testing.T) {
	db := openTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	session := entities.NewSession("s1", "t1")
	if err := repo.Create(ctx, session); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByID(ctx, "s1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.TechnicianID != "t1" || !got.Open() {
		t.Errorf("round-trip mismatch: %+v", got)
	}

	open, err := repo.GetOpenByTechnician(ctx, "t1")
	if err != nil {
		t.Fatalf("GetOpenByTechnician: %v", err)
	}
	if open.ID != "s1" {
		t.Errorf("open session = %s, want s1", open.ID)
	}

	if err := repo.Close(ctx, "s1", time.Now()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := repo.GetOpenByTechnician(ctx, "t1"); !errors.Is(err, entities.ErrNotFound) {
		t.Errorf("after close, GetOpenByTechnician = %v, want ErrNotFound", err)
	}

	closed, err := repo.GetByID(ctx, "s1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if closed.Open() || closed.EndedAt == nil {
		t.Errorf("session not closed in store: %+v", closed)
	}
}

func TestSessionRepositoryCloseIdempotent(t *testing.T) {
	db := openTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	if err := repo.Create(ctx, entities.NewSession("s1", "t1")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	first := time.Now().UTC().Truncate(time.Second)
	if err := repo.Close(ctx, "s1", first); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := repo.Close(ctx, "s1", first.Add(time.Hour)); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	got, err := repo.GetByID(ctx, "s1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.EndedAt.Equal(first) {
		t.Errorf("EndedAt overwritten: %v, want %v", got.EndedAt, first)
	}
}

func TestSessionRepositoryGetUnknown(t *testing.T) {
	db := openTestDB(t)
	repo := NewSessionRepository(db)

	if _, err := repo.GetByID(context.Background(), "ghost"); !errors.Is(err, entities.ErrNotFound) {
		t.Errorf("GetByID unknown = %v, want ErrNotFound", err)
	}
	if _, err := repo.GetOpenByTechnician(context.Background(), "ghost"); !errors.Is(err, entities.ErrNotFound) {
		t.Errorf("GetOpenByTechnician unknown = %v, want ErrNotFound", err)
	}
}

func TestPresenceRepositoryRoundTrip(t *testing.T) {
	db := openTestDB(t)
	repo := NewPresenceRepository(db)
	ctx := context.Background()

	record := &entities.PresenceRecord{
		TechnicianID:    "t1",
		Status:          entities.PresenceStatusOnline,
		Location:        &entities.GeoPoint{Lat: 16.0471, Lng: 108.2062},
		SessionID:       "s1",
		UpdatedAt:       time.Now().UTC(),
		DisplayName:     "Kim",
		AffiliationName: "acme",
	}
	if err := repo.Upsert(ctx, record); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := repo.Get(ctx, "t1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != entities.PresenceStatusOnline || got.SessionID != "s1" ||
		got.Location == nil || got.Location.Lat != 16.0471 ||
		got.DisplayName != "Kim" || got.AffiliationName != "acme" {
		t.Errorf("round-trip mismatch: %+v", got)
	}

	// Whole-record replacement: going offline clears location and session.
	offline := &entities.PresenceRecord{
		TechnicianID: "t1",
		Status:       entities.PresenceStatusOffline,
		UpdatedAt:    time.Now().UTC(),
	}
	if err := repo.Upsert(ctx, offline); err != nil {
		t.Fatalf("Upsert offline: %v", err)
	}
	got, err = repo.Get(ctx, "t1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != entities.PresenceStatusOffline || got.SessionID != "" || got.Location != nil {
		t.Errorf("whole-record replace left stale fields: %+v", got)
	}
}

func TestPresenceRepositoryInBounds(t *testing.T) {
	db := openTestDB(t)
	repo := NewPresenceRepository(db)
	ctx := context.Background()

	records := []*entities.PresenceRecord{
		{TechnicianID: "inside", Status: entities.PresenceStatusOnline, SessionID: "s1",
			Location: &entities.GeoPoint{Lat: 16.0471, Lng: 108.2062}, UpdatedAt: time.Now()},
		{TechnicianID: "paused", Status: entities.PresenceStatusPaused, SessionID: "s2",
			Location: &entities.GeoPoint{Lat: 16.05, Lng: 108.21}, UpdatedAt: time.Now()},
		{TechnicianID: "outside", Status: entities.PresenceStatusOnline, SessionID: "s3",
			Location: &entities.GeoPoint{Lat: 17.0, Lng: 109.0}, UpdatedAt: time.Now()},
		{TechnicianID: "offline", Status: entities.PresenceStatusOffline,
			Location: &entities.GeoPoint{Lat: 16.0471, Lng: 108.2062}, UpdatedAt: time.Now()},
	}
	for _, record := range records {
		if err := repo.Upsert(ctx, record); err != nil {
			t.Fatalf("Upsert(%s): %v", record.TechnicianID, err)
		}
	}

	b := geo.BoundingBox(entities.GeoPoint{Lat: 16.0471, Lng: 108.2062}, 5)
	candidates, err := repo.InBounds(ctx, b)
	if err != nil {
		t.Fatalf("InBounds: %v", err)
	}

	ids := make(map[string]bool)
	for _, c := range candidates {
		ids[c.ID] = true
	}
	if !ids["inside"] || !ids["paused"] {
		t.Errorf("active records in bounds missing: %v", ids)
	}
	if ids["offline"] {
		t.Error("offline record offered as a candidate")
	}
	if ids["outside"] {
		t.Error("record outside bounds offered (BETWEEN filter not applied)")
	}
}

func TestTrackRepositoryOrdering(t *testing.T) {
	db := openTestDB(t)
	repo := NewTrackRepository(db)
	ctx := context.Background()
	base := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)

	// Out-of-order capture times plus one timestamp tie; the tie must keep
	// insertion order via the autoincrement id.
	appends := []struct {
		lat    float64
		offset time.Duration
	}{
		{16.03, 2 * time.Minute},
		{16.01, 0},
		{16.02, time.Minute},
		{16.04, 2 * time.Minute}, // tie with the first append
	}
	for _, a := range appends {
		point := entities.NewTrackPoint("t1", "s1",
			entities.GeoPoint{Lat: a.lat, Lng: 108.2}, base.Add(a.offset))
		if err := repo.Append(ctx, point); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	points, err := repo.Points(ctx, "t1", "s1")
	if err != nil {
		t.Fatalf("Points: %v", err)
	}
	if len(points) != 4 {
		t.Fatalf("got %d points, want 4", len(points))
	}
	wantLats := []float64{16.01, 16.02, 16.03, 16.04}
	for i, want := range wantLats {
		if points[i].Location.Lat != want {
			t.Fatalf("position %d lat = %v, want %v (order %+v)", i, points[i].Location.Lat, want, points)
		}
	}
}

func TestTrackRepositoryEmptySession(t *testing.T) {
	db := openTestDB(t)
	repo := NewTrackRepository(db)

	points, err := repo.Points(context.Background(), "t1", "never-started")
	if err != nil {
		t.Fatalf("Points: %v", err)
	}
	if len(points) != 0 {
		t.Errorf("unknown session should yield no points, got %+v", points)
	}
}

func TestProviderRepository(t *testing.T) {
	db := openTestDB(t)
	repo := NewProviderRepository(db)
	ctx := context.Background()

	provider := entities.NewProvider("p1", "Harbor Clinic", "acme",
		&entities.GeoPoint{Lat: 16.0471, Lng: 108.2062})
	if err := repo.Put(ctx, provider); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := repo.GetByID(ctx, "p1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Harbor Clinic" || got.OwnerID != "acme" {
		t.Errorf("round-trip mismatch: %+v", got)
	}

	if _, err := repo.GetByID(ctx, "ghost"); !errors.Is(err, entities.ErrNotFound) {
		t.Errorf("GetByID unknown = %v, want ErrNotFound", err)
	}

	b := geo.BoundingBox(entities.GeoPoint{Lat: 16.0471, Lng: 108.2062}, 5)
	candidates, err := repo.InBounds(ctx, b)
	if err != nil {
		t.Fatalf("InBounds: %v", err)
	}
	if len(candidates) != 1 || candidates[0].ID != "p1" || candidates[0].Owner != "acme" {
		t.Errorf("InBounds = %+v, want the one provider", candidates)
	}
}
