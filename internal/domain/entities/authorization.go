package entities

import (
	"path/filepath"
	"strings"
	"time"
)

// UploadAuthorization is the ledger record behind one issued upload token.
// It carries the policy the eventual upload must satisfy and the single-use
// consumption state.
type UploadAuthorization struct {
	Token            string
	MaxSizeBytes     int64
	AllowedExtension string
	CreatedAt        time.Time
	ExpiresAt        time.Time
	Used             bool
}

// Redeemable reports whether the record can still be consumed at the given
// instant. Both conditions are evaluated together; neither is cached from
// issuance time.
func (a *UploadAuthorization) Redeemable(now time.Time) bool {
	return !a.Used && now.Before(a.ExpiresAt)
}

// MatchesExtension compares the file name's suffix against the allowed
// extension, case-insensitively. AllowedExtension is stored without a
// leading dot.
func (a *UploadAuthorization) MatchesExtension(filename string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	return ext == a.AllowedExtension
}

// StoredObject is the result of a successful redemption.
type StoredObject struct {
	Filename     string
	OriginalName string
	Size         int64
}
