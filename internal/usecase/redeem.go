package usecase

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/zots0127/uplink/internal/domain/entities"
	"github.com/zots0127/uplink/internal/domain/repository"
)

// UploadFile is the inbound payload presented with a token.
type UploadFile struct {
	Name   string
	Size   int64
	Reader io.Reader
}

// RedeemUseCase runs the single-use redemption pipeline: validate the upload
// against the token's policy, consume the token atomically, then persist the
// payload.
type RedeemUseCase struct {
	ledger repository.LedgerRepository
	blobs  repository.BlobRepository
	now    func() time.Time
}

func NewRedeemUseCase(ledger repository.LedgerRepository, blobs repository.BlobRepository) *RedeemUseCase {
	return &RedeemUseCase{
		ledger: ledger,
		blobs:  blobs,
		now:    time.Now,
	}
}

// Redeem validates and consumes the token, then stores the payload. Every
// validation stage short-circuits with its own sentinel and leaves the
// ledger untouched; the only write to the record is the conditional consume,
// and the blob write happens strictly after it. A blob failure after
// consumption leaves the token spent with no artifact and is reported as
// ErrStoreFault.
func (u *RedeemUseCase) Redeem(ctx context.Context, token string, file *UploadFile) (*entities.StoredObject, error) {
	auth, err := u.ledger.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	now := u.now()
	if !now.Before(auth.ExpiresAt) {
		return nil, entities.ErrNotFound
	}
	if auth.Used {
		return nil, entities.ErrAlreadyConsumed
	}

	if file == nil || file.Reader == nil {
		return nil, entities.ErrMissingPayload
	}
	if file.Size > auth.MaxSizeBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", entities.ErrPayloadTooLarge, auth.MaxSizeBytes)
	}
	if !auth.MatchesExtension(file.Name) {
		return nil, fmt.Errorf("%w: only .%s files are accepted", entities.ErrUnsupportedType, auth.AllowedExtension)
	}

	// The checks above are advisory fast paths; this conditional write is
	// the actual single-use safeguard. Losing the race reads back the
	// record to shape the error.
	won, err := u.ledger.Consume(ctx, token, now)
	if err != nil {
		return nil, err
	}
	if !won {
		if _, err := u.ledger.Get(ctx, token); err != nil {
			return nil, err
		}
		return nil, entities.ErrAlreadyConsumed
	}

	name := storedName(token, now, file.Name)
	written, err := u.blobs.Save(ctx, name, file.Reader)
	if err != nil {
		return nil, fmt.Errorf("%w: writing %s: %v", entities.ErrStoreFault, name, err)
	}

	return &entities.StoredObject{
		Filename:     name,
		OriginalName: file.Name,
		Size:         written,
	}, nil
}

// storedName derives a collision-free object name from the token, the
// redemption instant and the sanitized original filename.
func storedName(token string, ts time.Time, originalName string) string {
	prefix := token
	if len(prefix) > 16 {
		prefix = prefix[:16]
	}
	return fmt.Sprintf("%s-%d-%s", prefix, ts.UnixNano(), sanitizeFilename(originalName))
}

// sanitizeFilename strips any path components and characters that are not
// safe in an object name.
func sanitizeFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	base = strings.Trim(base, ".")
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "file"
	}
	return b.String()
}
