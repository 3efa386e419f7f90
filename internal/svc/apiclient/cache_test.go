package apiclient

import (
	"encoding/json"
	"testing"
	"time"
)

func storePayload(qc *queryCache, key string, tags []Tag, retention time.Duration) func() {
	return qc.store(key, json.RawMessage(`{"ok":true}`), tags, retention)
}

func TestQueryCache_AcquireMissesWhenEmpty(t *testing.T) {
	t.Parallel()

	qc := newQueryCache()

	if _, _, ok := qc.acquire("get_post"); ok {
		t.Error("acquire hit on empty cache")
	}
}

func TestQueryCache_StoreThenAcquire(t *testing.T) {
	t.Parallel()

	qc := newQueryCache()
	release := storePayload(qc, "get_post", []Tag{TagPost}, time.Hour)
	defer release()

	payload, release2, ok := qc.acquire("get_post")
	if !ok {
		t.Fatal("acquire missed a stored entry")
	}
	defer release2()

	if string(payload) != `{"ok":true}` {
		t.Errorf("payload = %s", payload)
	}
}

func TestQueryCache_InvalidateMarksMatchingTagsStale(t *testing.T) {
	t.Parallel()

	qc := newQueryCache()

	releasePosts := storePayload(qc, "get_post", []Tag{TagPost}, time.Hour)
	defer releasePosts()

	releaseSocieties := storePayload(qc, "get_society", []Tag{TagSociety}, time.Hour)
	defer releaseSocieties()

	if got := qc.invalidate([]Tag{TagPost}); got != 1 {
		t.Errorf("invalidated = %d, want 1", got)
	}

	if _, _, ok := qc.acquire("get_post"); ok {
		t.Error("stale entry served from cache")
	}

	_, release, ok := qc.acquire("get_society")
	if !ok {
		t.Error("untagged entry dropped by unrelated invalidation")
	} else {
		release()
	}
}

// An entry with zero retention disappears as soon as its last subscriber
// releases it.
func TestQueryCache_ZeroRetentionDropsOnRelease(t *testing.T) {
	t.Parallel()

	qc := newQueryCache()

	release := storePayload(qc, "get_profile", []Tag{TagUser}, 0)
	release()

	if _, _, ok := qc.acquire("get_profile"); ok {
		t.Error("zero-retention entry survived its last release")
	}
}

func TestQueryCache_EntrySurvivesReleaseWithinRetention(t *testing.T) {
	t.Parallel()

	qc := newQueryCache()

	release := storePayload(qc, "get_post", []Tag{TagPost}, time.Hour)
	release()

	_, release2, ok := qc.acquire("get_post")
	if !ok {
		t.Fatal("entry evicted before retention elapsed")
	}
	release2()
}

func TestQueryCache_EntrySurvivesWhileSubscribed(t *testing.T) {
	t.Parallel()

	qc := newQueryCache()

	release := storePayload(qc, "get_post", []Tag{TagPost}, 0)

	_, release2, ok := qc.acquire("get_post")
	if !ok {
		t.Fatal("acquire missed a stored entry")
	}

	// The first subscriber leaving does not evict while another holds on.
	release()

	_, release3, ok := qc.acquire("get_post")
	if !ok {
		t.Fatal("entry dropped while still subscribed")
	}

	release3()
	release2()

	if _, _, ok := qc.acquire("get_post"); ok {
		t.Error("entry survived its last release")
	}
}

func TestQueryCache_ReleaseIsIdempotent(t *testing.T) {
	t.Parallel()

	qc := newQueryCache()

	release := storePayload(qc, "get_post", []Tag{TagPost}, 0)

	_, release2, ok := qc.acquire("get_post")
	if !ok {
		t.Fatal("acquire missed a stored entry")
	}

	// Double release of the first handle must not steal the second
	// subscriber's reference.
	release()
	release()

	if _, _, ok := qc.acquire("get_post"); !ok {
		t.Error("entry dropped while still subscribed")
	}

	_ = release2
}

func TestQueryKey(t *testing.T) {
	t.Parallel()

	if got := queryKey("get_post", ""); got != "get_post" {
		t.Errorf("key = %q, want %q", got, "get_post")
	}
	if got := queryKey("get_post_by_id", "p42"); got != "get_post_by_id(p42)" {
		t.Errorf("key = %q, want %q", got, "get_post_by_id(p42)")
	}
}
