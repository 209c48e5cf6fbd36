package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/zots0127/uplink/internal/domain/entities"
	"github.com/zots0127/uplink/internal/domain/repository"
)

const (
	// DefaultTTLMinutes applies when the caller omits expiresInMinutes.
	DefaultTTLMinutes = 30

	// tokenRandomBytes is the crypto/rand component of a token: 128 bits,
	// enough for negligible collision probability at any realistic
	// issuance rate. The timestamp prefix additionally orders tokens.
	tokenRandomBytes = 16
)

// IssuePolicy is the caller-supplied policy for one upload token.
type IssuePolicy struct {
	MaxSizeBytes     int64
	AllowedExtension string
	TTLMinutes       int
}

// IssuedToken is returned to the caller; UploadURL addresses the redemption
// endpoint so the bearer never reconstructs it.
type IssuedToken struct {
	Token            string
	UploadURL        string
	ExpiresAt        time.Time
	MaxSizeBytes     int64
	AllowedExtension string
}

// IssueUseCase creates upload authorization records.
type IssueUseCase struct {
	ledger  repository.LedgerRepository
	baseURL string
	maxTTL  time.Duration
	now     func() time.Time
}

// NewIssueUseCase creates a token issuer. baseURL is the public address
// redemption URLs are built from; maxTTL caps caller-supplied TTLs (zero
// means uncapped).
func NewIssueUseCase(ledger repository.LedgerRepository, baseURL string, maxTTL time.Duration) *IssueUseCase {
	return &IssueUseCase{
		ledger:  ledger,
		baseURL: strings.TrimRight(baseURL, "/"),
		maxTTL:  maxTTL,
		now:     time.Now,
	}
}

// Issue validates the policy, writes exactly one record to the ledger and
// returns the bearer token plus its redemption URL. Invalid policy never
// touches the ledger.
func (u *IssueUseCase) Issue(ctx context.Context, policy IssuePolicy) (*IssuedToken, error) {
	if policy.MaxSizeBytes <= 0 {
		return nil, fmt.Errorf("%w: maxSizeBytes must be a positive number", entities.ErrBadRequest)
	}

	ext := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(policy.AllowedExtension)), ".")
	if ext == "" {
		return nil, fmt.Errorf("%w: allowedExtension is required", entities.ErrBadRequest)
	}

	if policy.TTLMinutes < 0 {
		return nil, fmt.Errorf("%w: expiresInMinutes must be positive", entities.ErrBadRequest)
	}
	ttl := time.Duration(policy.TTLMinutes) * time.Minute
	if policy.TTLMinutes == 0 {
		ttl = DefaultTTLMinutes * time.Minute
	}
	if u.maxTTL > 0 && ttl > u.maxTTL {
		ttl = u.maxTTL
	}

	token, err := generateToken(u.now())
	if err != nil {
		return nil, fmt.Errorf("generating token: %w", err)
	}

	now := u.now()
	auth := &entities.UploadAuthorization{
		Token:            token,
		MaxSizeBytes:     policy.MaxSizeBytes,
		AllowedExtension: ext,
		CreatedAt:        now,
		ExpiresAt:        now.Add(ttl),
	}

	if err := u.ledger.Put(ctx, auth); err != nil {
		return nil, err
	}

	return &IssuedToken{
		Token:            token,
		UploadURL:        fmt.Sprintf("%s/upload/%s", u.baseURL, token),
		ExpiresAt:        auth.ExpiresAt,
		MaxSizeBytes:     auth.MaxSizeBytes,
		AllowedExtension: auth.AllowedExtension,
	}, nil
}

// generateToken builds an unguessable bearer token from a high-resolution
// timestamp prefix and a cryptographically random suffix.
func generateToken(now time.Time) (string, error) {
	buf := make([]byte, tokenRandomBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return strconv.FormatInt(now.UnixNano(), 36) + hex.EncodeToString(buf), nil
}
