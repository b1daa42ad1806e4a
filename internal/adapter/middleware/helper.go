package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// epoch values above this are milliseconds
const epochMillisFloor = 1e12

func bodyHash(b []byte) string { s := sha256.Sum256(b); return hex.EncodeToString(s[:]) }

func nowUTC() time.Time { return time.Now().UTC() }

// identities come from the token subject and may contain ':' or '|', so they
// are hashed into the key
func buildKey(method, path, identity, requestID string) string {
	return "idemp:mq:" + strings.ToLower(method) + ":" + path + ":" + bodyHash([]byte(identity))[:16] + ":" + strings.ToLower(requestID)
}

// validReqID takes a canonical RFC 4122 uuid (v1-v5) or a 32-char hex id.
func validReqID(raw string) bool {
	raw = strings.TrimSpace(raw)
	switch len(raw) {
	case 36:
		u, err := uuid.Parse(raw)
		return err == nil && u.Variant() == uuid.RFC4122 && u.Version() >= 1 && u.Version() <= 5
	case 32:
		_, err := hex.DecodeString(raw)
		return err == nil
	}
	return false
}

// parseRequestAt takes epoch seconds or millis, or RFC3339 with a zone.
func parseRequestAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("missing " + HeaderRequestAt)
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > epochMillisFloor {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, errors.New(HeaderRequestAt + " must be epoch (s/ms) or RFC3339 with timezone")
	}
	return t.UTC(), nil
}

// claimKey reserves key for one in-flight request; false means someone holds it.
func claimKey(ctx context.Context, rdb *redis.Client, key string, entry idempEntry) (bool, error) {
	payload, err := json.Marshal(entry)
	if err != nil {
		return false, err
	}
	return rdb.SetNX(ctx, key, payload, provisionalLockTTL).Result()
}

func readEntry(ctx context.Context, rdb *redis.Client, key string) (idempEntry, error) {
	var e idempEntry
	v, err := rdb.Get(ctx, key).Bytes()
	if err != nil {
		return e, err
	}
	if err := json.Unmarshal(v, &e); err != nil {
		return idempEntry{}, fmt.Errorf("decode %s: %w", key, err)
	}
	return e, nil
}

func storeEntry(ctx context.Context, rdb *redis.Client, key string, entry idempEntry, ttl time.Duration) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, payload, ttl).Err()
}
