// Copyright 2024-2026 Aiku AI

package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	uri := filepath.Join(t.TempDir(), "anonbridge-test.db")
	db, err := New(context.Background(), "sqlite3-fk-wal", uri, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func testLink(sourceID int64, destIDs ...int64) *MessageLink {
	link := &MessageLink{
		SourceID:    sourceID,
		ProfileSeed: "seed",
		DisplayName: "calm-fox",
		AvatarURL:   "https://avatars.example/calm-fox",
	}
	for _, id := range destIDs {
		link.Destinations = append(link.Destinations, Destination{
			MessageID: id,
			GuildID:   id * 10,
			ChannelID: id * 100,
		})
	}
	return link
}

func TestMessageLink_UpsertAndGet(t *testing.T) {
	t.Parallel()
	db := newTestDatabase(t)
	ctx := context.Background()

	link := testLink(1, 20, 10, 20)
	link.AvatarFailed = true
	link.Attachments = AttachmentSummary{
		ImageFilename: "photo.png",
		Notes:         []string{"voice_note.mp3 (audio)"},
	}
	if err := db.MessageLink.Upsert(ctx, link); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := db.MessageLink.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil {
		t.Fatal("Get returned nil for existing record")
	}
	// Destination set must come back deduplicated and sorted.
	if len(got.Destinations) != 2 || got.Destinations[0].MessageID != 10 || got.Destinations[1].MessageID != 20 {
		t.Errorf("destinations: got %+v, want [10 20]", got.Destinations)
	}
	if !got.AvatarFailed {
		t.Error("avatar_failed flag lost")
	}
	if got.Attachments.ImageFilename != "photo.png" || len(got.Attachments.Notes) != 1 {
		t.Errorf("attachments: got %+v", got.Attachments)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("updated_at not set")
	}
}

func TestMessageLink_GetMissing(t *testing.T) {
	t.Parallel()
	db := newTestDatabase(t)

	got, err := db.MessageLink.Get(context.Background(), 999)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Errorf("Get returned %+v for missing record", got)
	}
}

func TestMessageLink_UpsertReplacesDestinations(t *testing.T) {
	t.Parallel()
	db := newTestDatabase(t)
	ctx := context.Background()

	if err := db.MessageLink.Upsert(ctx, testLink(1, 10, 20)); err != nil {
		t.Fatalf("first Upsert failed: %v", err)
	}
	if err := db.MessageLink.Upsert(ctx, testLink(1, 30)); err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}

	got, err := db.MessageLink.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(got.Destinations) != 1 || got.Destinations[0].MessageID != 30 {
		t.Errorf("destinations after replace: got %+v, want [30]", got.Destinations)
	}

	// The old destination ids must no longer resolve.
	orphan, err := db.MessageLink.GetByDestination(ctx, 10)
	if err != nil {
		t.Fatalf("GetByDestination failed: %v", err)
	}
	if orphan != nil {
		t.Errorf("stale destination still resolves: %+v", orphan)
	}
}

func TestMessageLink_GetByDestination(t *testing.T) {
	t.Parallel()
	db := newTestDatabase(t)
	ctx := context.Background()

	if err := db.MessageLink.Upsert(ctx, testLink(5, 50, 51)); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := db.MessageLink.GetByDestination(ctx, 51)
	if err != nil {
		t.Fatalf("GetByDestination failed: %v", err)
	}
	if got == nil || got.SourceID != 5 {
		t.Errorf("GetByDestination: got %+v, want source 5", got)
	}
	if dest := got.Destinations[1]; dest.GuildID != 510 || dest.ChannelID != 5100 {
		t.Errorf("destination location: got %+v", dest)
	}
}

func TestMessageLink_RemoveDestination(t *testing.T) {
	t.Parallel()
	db := newTestDatabase(t)
	ctx := context.Background()

	if err := db.MessageLink.Upsert(ctx, testLink(1, 10, 20)); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	if err := db.MessageLink.RemoveDestination(ctx, 10); err != nil {
		t.Fatalf("RemoveDestination(10) failed: %v", err)
	}
	got, err := db.MessageLink.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil || len(got.Destinations) != 1 || got.Destinations[0].MessageID != 20 {
		t.Fatalf("after removing 10: got %+v, want destinations [20]", got)
	}

	// Removing the last destination deletes the whole record.
	if err := db.MessageLink.RemoveDestination(ctx, 20); err != nil {
		t.Fatalf("RemoveDestination(20) failed: %v", err)
	}
	got, err = db.MessageLink.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Errorf("record survived removal of last destination: %+v", got)
	}

	// Unknown destination is a no-op.
	if err := db.MessageLink.RemoveDestination(ctx, 12345); err != nil {
		t.Errorf("RemoveDestination for unknown id: %v", err)
	}
}

func TestMessageLink_Delete(t *testing.T) {
	t.Parallel()
	db := newTestDatabase(t)
	ctx := context.Background()

	if err := db.MessageLink.Upsert(ctx, testLink(1, 10)); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	existed, err := db.MessageLink.Delete(ctx, 1)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !existed {
		t.Error("Delete should report an existing row")
	}

	existed, err = db.MessageLink.Delete(ctx, 1)
	if err != nil {
		t.Fatalf("second Delete failed: %v", err)
	}
	if existed {
		t.Error("second Delete should report no row")
	}
}

func TestMessageLink_UpdateAttachments(t *testing.T) {
	t.Parallel()
	db := newTestDatabase(t)
	ctx := context.Background()

	if err := db.MessageLink.Upsert(ctx, testLink(1, 10)); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	err := db.MessageLink.UpdateAttachments(ctx, 1, &AttachmentSummary{
		ImageFilename: "new.png",
		Notes:         []string{"doc.pdf (document)"},
	})
	if err != nil {
		t.Fatalf("UpdateAttachments failed: %v", err)
	}
	got, err := db.MessageLink.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Attachments.ImageFilename != "new.png" || len(got.Attachments.Notes) != 1 {
		t.Errorf("attachments after update: got %+v", got.Attachments)
	}

	// Nil summary and unknown ids are no-ops.
	if err := db.MessageLink.UpdateAttachments(ctx, 1, nil); err != nil {
		t.Errorf("nil summary: %v", err)
	}
	if err := db.MessageLink.UpdateAttachments(ctx, 999, &AttachmentSummary{}); err != nil {
		t.Errorf("unknown source: %v", err)
	}
}

func TestMessageLink_PurgeOlderThan(t *testing.T) {
	t.Parallel()
	db := newTestDatabase(t)
	ctx := context.Background()

	if err := db.MessageLink.Upsert(ctx, testLink(1, 10)); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := db.MessageLink.Upsert(ctx, testLink(2, 20)); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	count, err := db.MessageLink.PurgeOlderThan(ctx, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("PurgeOlderThan failed: %v", err)
	}
	if count != 0 {
		t.Errorf("purge of old threshold removed %d rows, want 0", count)
	}

	count, err = db.MessageLink.PurgeOlderThan(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("PurgeOlderThan failed: %v", err)
	}
	if count != 2 {
		t.Errorf("purge removed %d rows, want 2", count)
	}
}
