package memory

import (
	"context"
	"testing"
	"time"

	"fieldtrack/internal/domain/entities"
)

func TestTrackRepositoryOrdersByCaptureTime(t *testing.T) {
	repo := NewTrackRepository()
	ctx := context.Background()
	base := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)

	// Appended out of order, as delayed network delivery would produce.
	captures := []time.Duration{2 * time.Minute, 0, time.Minute}
	for i, offset := range captures {
		point := entities.NewTrackPoint("t1", "s1",
			entities.GeoPoint{Lat: 16.0 + float64(i)*0.001, Lng: 108.2}, base.Add(offset))
		if err := repo.Append(ctx, point); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	points, err := repo.Points(ctx, "t1", "s1")
	if err != nil {
		t.Fatalf("Points: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("got %d points, want 3", len(points))
	}
	for i := 1; i < len(points); i++ {
		if points[i].CapturedAt.Before(points[i-1].CapturedAt) {
			t.Fatalf("points not ordered by CapturedAt: %v before %v",
				points[i].CapturedAt, points[i-1].CapturedAt)
		}
	}
}

func TestTrackRepositoryTiesKeepInsertionOrder(t *testing.T) {
	repo := NewTrackRepository()
	ctx := context.Background()
	at := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)

	first := entities.NewTrackPoint("t1", "s1", entities.GeoPoint{Lat: 16.01, Lng: 108.2}, at)
	second := entities.NewTrackPoint("t1", "s1", entities.GeoPoint{Lat: 16.02, Lng: 108.2}, at)
	if err := repo.Append(ctx, first); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := repo.Append(ctx, second); err != nil {
		t.Fatalf("Append: %v", err)
	}

	points, err := repo.Points(ctx, "t1", "s1")
	if err != nil {
		t.Fatalf("Points: %v", err)
	}
	if points[0].Location.Lat != 16.01 || points[1].Location.Lat != 16.02 {
		t.Errorf("equal timestamps reordered: %+v", points)
	}
}

func TestTrackRepositorySessionsIsolated(t *testing.T) {
	repo := NewTrackRepository()
	ctx := context.Background()
	at := time.Now()

	if err := repo.Append(ctx, entities.NewTrackPoint("t1", "s1", entities.GeoPoint{Lat: 16, Lng: 108}, at)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := repo.Append(ctx, entities.NewTrackPoint("t1", "s2", entities.GeoPoint{Lat: 17, Lng: 108}, at)); err != nil {
		t.Fatalf("Append: %v", err)
	}

	points, err := repo.Points(ctx, "t1", "s1")
	if err != nil {
		t.Fatalf("Points: %v", err)
	}
	if len(points) != 1 || points[0].Location.Lat != 16 {
		t.Errorf("session logs not isolated: %+v", points)
	}

	empty, err := repo.Points(ctx, "t1", "unknown")
	if err != nil {
		t.Fatalf("Points: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("unknown session should yield empty polyline, got %+v", empty)
	}
}
