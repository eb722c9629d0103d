package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"rojgarsetu/core-service/internal/model"
)

// fingerprintSep joins signature parts. A control character cannot appear in
// normalised text, so "a|b"+"c" can never collide with "a"+"b|c".
const fingerprintSep = "\x1f"

// Fingerprint computes the stable content hash identifying a logical
// posting: SHA-256 over normalised title, normalised organisation and the
// raw source URL. The same logical input always yields the same hash across
// runs — normalisation is locale-independent.
//
// Two genuinely distinct postings sharing title, organisation and URL will
// collide; that false-positive rate is an accepted property of this key.
func Fingerprint(c model.CandidateJob) string {
	sig := normalize(c.Title) + fingerprintSep + normalize(c.Organisation) + fingerprintSep + c.SourceURL
	sum := sha256.Sum256([]byte(sig))
	return hex.EncodeToString(sum[:])
}

// normalize trims, collapses internal whitespace and lowercases.
func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// HashStore is the store subset the dedup engine needs.
type HashStore interface {
	ExistingHashes(ctx context.Context, hashes []string) (map[string]struct{}, error)
}

// FilterNew assigns content hashes and returns only candidates not already
// known — dropping intra-batch duplicates first, then checking the store
// with a single batched existence lookup. The second return value is how
// many candidates were dropped as duplicates.
func FilterNew(ctx context.Context, store HashStore, candidates []model.CandidateJob) ([]model.CandidateJob, int, error) {
	if len(candidates) == 0 {
		return nil, 0, nil
	}

	seen := make(map[string]struct{}, len(candidates))
	unique := make([]model.CandidateJob, 0, len(candidates))
	hashes := make([]string, 0, len(candidates))
	dupes := 0

	for _, c := range candidates {
		c.ContentHash = Fingerprint(c)
		if _, dup := seen[c.ContentHash]; dup {
			dupes++
			continue
		}
		seen[c.ContentHash] = struct{}{}
		unique = append(unique, c)
		hashes = append(hashes, c.ContentHash)
	}

	existing, err := store.ExistingHashes(ctx, hashes)
	if err != nil {
		return nil, 0, err
	}

	fresh := unique[:0]
	for _, c := range unique {
		if _, known := existing[c.ContentHash]; known {
			dupes++
			continue
		}
		fresh = append(fresh, c)
	}

	return fresh, dupes, nil
}
