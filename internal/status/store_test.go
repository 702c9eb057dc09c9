package status

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/kursadbilgin/cosmos-provisioner/internal/domain"
)

func TestStoreUpdatePreservesCreatedAt(t *testing.T) {
	t.Parallel()

	store := NewStore()
	current := time.Unix(1_700_000_000, 0)
	store.now = func() time.Time { return current }

	first := store.Update("my-cosmos-account", domain.StatusQueued, "provisioning queued")
	if first.Status != domain.StatusQueued {
		t.Fatalf("status = %s, want queued", first.Status)
	}
	if !first.CreatedAt.Equal(first.UpdatedAt) {
		t.Fatal("first insert should stamp CreatedAt == UpdatedAt")
	}

	current = current.Add(2 * time.Minute)
	second := store.Update("my-cosmos-account", domain.StatusCompleted, "account ready")
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("CreatedAt = %v, want preserved %v", second.CreatedAt, first.CreatedAt)
	}
	if !second.UpdatedAt.After(second.CreatedAt) {
		t.Fatal("UpdatedAt should advance past CreatedAt")
	}
	if second.Status != domain.StatusCompleted {
		t.Fatalf("status = %s, want completed", second.Status)
	}
	if second.Message != "account ready" {
		t.Fatalf("message = %q, want overwritten", second.Message)
	}
}

func TestStoreGetMissing(t *testing.T) {
	t.Parallel()

	store := NewStore()
	if _, ok := store.Get("never-submitted"); ok {
		t.Fatal("Get() should report missing record")
	}
}

func TestStoreLastWriterWins(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.Update("acc", domain.StatusQueued, "")
	store.Update("acc", domain.StatusInProgress, "")
	store.Update("acc", domain.StatusError, "azure error: quota exceeded")

	record, ok := store.Get("acc")
	if !ok {
		t.Fatal("record should exist")
	}
	if record.Status != domain.StatusError {
		t.Fatalf("status = %s, want error", record.Status)
	}
	if record.Message != "azure error: quota exceeded" {
		t.Fatalf("message = %q, want last write", record.Message)
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	t.Parallel()

	store := NewStore()
	const accounts = 8
	const writesPerAccount = 50

	var wg sync.WaitGroup
	for i := 0; i < accounts; i++ {
		name := fmt.Sprintf("account-%d", i)
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < writesPerAccount; j++ {
				store.Update(name, domain.StatusInProgress, "")
			}
			store.Update(name, domain.StatusCompleted, "")
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < writesPerAccount; j++ {
				if record, ok := store.Get(name); ok && !record.Status.IsValid() {
					t.Errorf("observed partially written record for %s", name)
					return
				}
			}
		}()
	}
	wg.Wait()

	if store.Len() != accounts {
		t.Fatalf("Len() = %d, want %d", store.Len(), accounts)
	}
	for i := 0; i < accounts; i++ {
		record, ok := store.Get(fmt.Sprintf("account-%d", i))
		if !ok || record.Status != domain.StatusCompleted {
			t.Fatalf("account-%d status = %v, want completed", i, record.Status)
		}
	}
}
