package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zots0127/uplink/internal/domain/entities"
	"github.com/zots0127/uplink/internal/usecase/mocks"
)

func testAuthorization(token string) *entities.UploadAuthorization {
	now := time.Now()
	return &entities.UploadAuthorization{
		Token:            token,
		MaxSizeBytes:     1000,
		AllowedExtension: "png",
		CreatedAt:        now,
		ExpiresAt:        now.Add(30 * time.Minute),
	}
}

func testUpload(name string, size int64) *UploadFile {
	return &UploadFile{
		Name:   name,
		Size:   size,
		Reader: strings.NewReader(strings.Repeat("x", int(size))),
	}
}

func TestRedeemUseCase_Success(t *testing.T) {
	ledger := new(mocks.MockLedgerRepository)
	blobs := new(mocks.MockBlobRepository)

	auth := testAuthorization("tok1")
	ledger.On("Get", mock.Anything, "tok1").Return(auth, nil)
	ledger.On("Consume", mock.Anything, "tok1", mock.AnythingOfType("time.Time")).Return(true, nil)
	blobs.On("Save", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(int64(500), nil)

	u := NewRedeemUseCase(ledger, blobs)
	stored, err := u.Redeem(context.Background(), "tok1", testUpload("a.PNG", 500))

	require.NoError(t, err)
	assert.Equal(t, "a.PNG", stored.OriginalName)
	assert.Equal(t, int64(500), stored.Size)
	assert.Contains(t, stored.Filename, "a.PNG")
	ledger.AssertExpectations(t)
	blobs.AssertExpectations(t)
}

func TestRedeemUseCase_ValidationPipeline(t *testing.T) {
	tests := []struct {
		name    string
		auth    func() *entities.UploadAuthorization
		getErr  error
		file    *UploadFile
		wantErr error
	}{
		{
			name:    "unknown token",
			auth:    func() *entities.UploadAuthorization { return nil },
			getErr:  entities.ErrNotFound,
			file:    testUpload("a.png", 10),
			wantErr: entities.ErrNotFound,
		},
		{
			name: "expired record reads as not found regardless of used",
			auth: func() *entities.UploadAuthorization {
				a := testAuthorization("tok1")
				a.ExpiresAt = time.Now().Add(-time.Minute)
				a.Used = true
				return a
			},
			file:    testUpload("a.png", 10),
			wantErr: entities.ErrNotFound,
		},
		{
			name: "already used",
			auth: func() *entities.UploadAuthorization {
				a := testAuthorization("tok1")
				a.Used = true
				return a
			},
			file:    testUpload("a.png", 10),
			wantErr: entities.ErrAlreadyConsumed,
		},
		{
			name:    "missing payload",
			auth:    func() *entities.UploadAuthorization { return testAuthorization("tok1") },
			file:    nil,
			wantErr: entities.ErrMissingPayload,
		},
		{
			name:    "payload too large",
			auth:    func() *entities.UploadAuthorization { return testAuthorization("tok1") },
			file:    testUpload("a.png", 1001),
			wantErr: entities.ErrPayloadTooLarge,
		},
		{
			name:    "wrong extension",
			auth:    func() *entities.UploadAuthorization { return testAuthorization("tok1") },
			file:    testUpload("a.gif", 10),
			wantErr: entities.ErrUnsupportedType,
		},
		{
			name:    "extension match is case-insensitive on the file name",
			auth:    func() *entities.UploadAuthorization { return testAuthorization("tok1") },
			file:    testUpload("photo.PnG", 10),
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := new(mocks.MockLedgerRepository)
			blobs := new(mocks.MockBlobRepository)

			if tt.getErr != nil {
				ledger.On("Get", mock.Anything, "tok1").Return(nil, tt.getErr)
			} else {
				ledger.On("Get", mock.Anything, "tok1").Return(tt.auth(), nil)
			}
			if tt.wantErr == nil {
				ledger.On("Consume", mock.Anything, "tok1", mock.Anything).Return(true, nil)
				blobs.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(tt.file.Size, nil)
			}

			u := NewRedeemUseCase(ledger, blobs)
			_, err := u.Redeem(context.Background(), "tok1", tt.file)

			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
				// validation failures must never consume the token
				ledger.AssertNotCalled(t, "Consume", mock.Anything, mock.Anything, mock.Anything)
				blobs.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestRedeemUseCase_ExpiryUsesCurrentClock(t *testing.T) {
	ledger := new(mocks.MockLedgerRepository)
	blobs := new(mocks.MockBlobRepository)

	auth := testAuthorization("tok1")
	ledger.On("Get", mock.Anything, "tok1").Return(auth, nil)

	u := NewRedeemUseCase(ledger, blobs)
	u.now = func() time.Time { return auth.ExpiresAt.Add(time.Second) }

	_, err := u.Redeem(context.Background(), "tok1", testUpload("a.png", 10))
	assert.ErrorIs(t, err, entities.ErrNotFound)
	ledger.AssertNotCalled(t, "Consume", mock.Anything, mock.Anything, mock.Anything)
}

func TestRedeemUseCase_LostRace(t *testing.T) {
	t.Run("record still present maps to already consumed", func(t *testing.T) {
		ledger := new(mocks.MockLedgerRepository)
		blobs := new(mocks.MockBlobRepository)

		ledger.On("Get", mock.Anything, "tok1").Return(testAuthorization("tok1"), nil)
		ledger.On("Consume", mock.Anything, "tok1", mock.Anything).Return(false, nil)

		u := NewRedeemUseCase(ledger, blobs)
		_, err := u.Redeem(context.Background(), "tok1", testUpload("a.png", 10))

		assert.ErrorIs(t, err, entities.ErrAlreadyConsumed)
		blobs.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("record purged meanwhile maps to not found", func(t *testing.T) {
		ledger := new(mocks.MockLedgerRepository)
		blobs := new(mocks.MockBlobRepository)

		ledger.On("Get", mock.Anything, "tok1").Return(testAuthorization("tok1"), nil).Once()
		ledger.On("Consume", mock.Anything, "tok1", mock.Anything).Return(false, nil)
		ledger.On("Get", mock.Anything, "tok1").Return(nil, entities.ErrNotFound).Once()

		u := NewRedeemUseCase(ledger, blobs)
		_, err := u.Redeem(context.Background(), "tok1", testUpload("a.png", 10))

		assert.ErrorIs(t, err, entities.ErrNotFound)
	})
}

func TestRedeemUseCase_BlobFailureAfterConsume(t *testing.T) {
	ledger := new(mocks.MockLedgerRepository)
	blobs := new(mocks.MockBlobRepository)

	ledger.On("Get", mock.Anything, "tok1").Return(testAuthorization("tok1"), nil)
	ledger.On("Consume", mock.Anything, "tok1", mock.Anything).Return(true, nil)
	blobs.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), errors.New("bucket gone"))

	u := NewRedeemUseCase(ledger, blobs)
	_, err := u.Redeem(context.Background(), "tok1", testUpload("a.png", 10))

	// the token stays consumed; the fault carries its own sentinel so
	// operators can tell it apart from validation rejection
	assert.ErrorIs(t, err, entities.ErrStoreFault)
	ledger.AssertExpectations(t)
}

func TestStoredName(t *testing.T) {
	ts := time.Unix(1700000000, 42)

	name := storedName("abcdefghijklmnopqrstuvwxyz", ts, "../../etc/passwd")
	assert.Equal(t, "abcdefghijklmnop", name[:16])
	assert.Contains(t, name, "passwd")
	assert.NotContains(t, name, "/")
	assert.NotContains(t, name, "..")

	// deterministic for identical inputs
	assert.Equal(t, name, storedName("abcdefghijklmnopqrstuvwxyz", ts, "../../etc/passwd"))

	assert.Contains(t, storedName("t", ts, "weird name!.png"), "weird_name_.png")
	assert.Contains(t, storedName("t", ts, ""), "file")
}
