package services

import "errors"

// Fatal validation errors. A validation pass aborts when it hits one of
// these; every other failure degrades to a conservative default instead.
var (
	// ErrImageDecode means the submitted photo could not be decoded. No
	// fingerprint can be computed, so the whole pass must abort rather
	// than silently substitute a zero hash.
	ErrImageDecode = errors.New("image decode failed")

	// ErrHistoryLookup means a submission-history query failed. The
	// engine cannot safely assume "no history" without risking missed
	// duplicate and GPS checks, so the pass must abort.
	ErrHistoryLookup = errors.New("submission history lookup failed")
)
