package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBlacklist_RevokeAndCheck(t *testing.T) {
	blacklist, _ := testBlacklist(t)
	ctx := context.Background()

	revoked, err := blacklist.IsRevoked(ctx, "unseen-token")
	if err != nil {
		t.Fatalf("IsRevoked() error = %v", err)
	}
	if revoked {
		t.Error("unseen token should not be revoked")
	}

	if err := blacklist.Revoke(ctx, "some-token", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}

	revoked, err = blacklist.IsRevoked(ctx, "some-token")
	if err != nil {
		t.Fatalf("IsRevoked() error = %v", err)
	}
	if !revoked {
		t.Error("revoked token should read as revoked")
	}
}

func TestBlacklist_RevokeIdempotent(t *testing.T) {
	blacklist, _ := testBlacklist(t)
	ctx := context.Background()

	exp := time.Now().Add(time.Hour)
	if err := blacklist.Revoke(ctx, "tok", exp); err != nil {
		t.Fatalf("first Revoke() error = %v", err)
	}
	if err := blacklist.Revoke(ctx, "tok", exp); err != nil {
		t.Fatalf("second Revoke() error = %v", err)
	}
}

func TestBlacklist_EntryExpiresWithToken(t *testing.T) {
	blacklist, mr := testBlacklist(t)
	ctx := context.Background()

	if err := blacklist.Revoke(ctx, "tok", time.Now().Add(30*time.Minute)); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}

	mr.FastForward(31 * time.Minute)

	revoked, err := blacklist.IsRevoked(ctx, "tok")
	if err != nil {
		t.Fatalf("IsRevoked() error = %v", err)
	}
	if revoked {
		t.Error("entry should expire with the token it bans")
	}
}

func TestBlacklist_ExpiredTokenGetsMinimumTTL(t *testing.T) {
	blacklist, mr := testBlacklist(t)
	ctx := context.Background()

	// Ban a token that has already expired. The entry must still exist
	// briefly so concurrent requests see it.
	if err := blacklist.Revoke(ctx, "stale", time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}

	revoked, err := blacklist.IsRevoked(ctx, "stale")
	if err != nil {
		t.Fatalf("IsRevoked() error = %v", err)
	}
	if !revoked {
		t.Error("freshly banned token should read as revoked")
	}

	if ttl := mr.TTL(revocationKey("stale")); ttl > minRevocationTTL {
		t.Errorf("TTL = %v, want at most %v", ttl, minRevocationTTL)
	}
}

func TestBlacklist_KeysAreNamespaced(t *testing.T) {
	blacklist, mr := testBlacklist(t)
	ctx := context.Background()

	if err := blacklist.Revoke(ctx, "tok", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}

	if mr.Exists("tok") {
		t.Error("entry should not be stored under the bare token")
	}
	if !mr.Exists(revocationKeyPrefix + "tok") {
		t.Errorf("entry should be stored under the %q prefix", revocationKeyPrefix)
	}
}

func TestBlacklist_RedisDown(t *testing.T) {
	blacklist, mr := testBlacklist(t)
	ctx := context.Background()

	mr.Close()

	if _, err := blacklist.IsRevoked(ctx, "tok"); !errors.Is(err, ErrBlacklistUnavailable) {
		t.Errorf("IsRevoked() error = %v, want ErrBlacklistUnavailable", err)
	}
	if err := blacklist.Revoke(ctx, "tok", time.Now().Add(time.Hour)); !errors.Is(err, ErrBlacklistUnavailable) {
		t.Errorf("Revoke() error = %v, want ErrBlacklistUnavailable", err)
	}
	if err := blacklist.Ping(ctx); !errors.Is(err, ErrBlacklistUnavailable) {
		t.Errorf("Ping() error = %v, want ErrBlacklistUnavailable", err)
	}
}
