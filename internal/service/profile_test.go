package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileCreate(t *testing.T) {
	st := newTestStore()
	svc := NewProfileService(st, testLogger())
	ctx := context.Background()

	profile, err := svc.Create(ctx, "user-1", CreateProfileInput{
		DisplayName:        "  Aroha  ",
		Bio:                "kia ora",
		PoliticalAlignment: "Labour",
		Private:            false,
	})
	require.NoError(t, err)
	assert.Equal(t, "user-1", profile.UserID)
	assert.Equal(t, "Aroha", profile.DisplayName, "display name is trimmed")
	assert.Equal(t, "kia ora", profile.Bio)
	assert.Equal(t, profile.CreatedAt, profile.UpdatedAt)

	// A second creation for the same user conflicts
	_, err = svc.Create(ctx, "user-1", CreateProfileInput{DisplayName: "Someone Else"})
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
	assert.EqualError(t, err, "Profile already exists. Use PUT to update.")

	// The original profile is untouched
	got, err := svc.Get(ctx, "user-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Aroha", got.DisplayName)
}

func TestProfileCreateValidation(t *testing.T) {
	st := newTestStore()
	svc := NewProfileService(st, testLogger())
	ctx := context.Background()

	tests := []struct {
		name    string
		input   CreateProfileInput
		wantErr string
	}{
		{
			name:    "missing display name",
			input:   CreateProfileInput{},
			wantErr: "display_name is required",
		},
		{
			name:    "bio too long",
			input:   CreateProfileInput{DisplayName: "Aroha", Bio: strings.Repeat("b", 501)},
			wantErr: "bio must not exceed 500 characters",
		},
		{
			name:    "bad alignment",
			input:   CreateProfileInput{DisplayName: "Aroha", PoliticalAlignment: "Pirate"},
			wantErr: "political_alignment must be National, Labour, Independent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, "user-1", tt.input)
			require.Error(t, err)
			assert.Equal(t, KindValidation, KindOf(err))
			assert.EqualError(t, err, tt.wantErr)
		})
	}

	// Nothing was persisted by the failed attempts
	_, err := svc.Get(ctx, "user-1", "user-1")
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestProfileGetPrivacy(t *testing.T) {
	st := newTestStore()
	svc := NewProfileService(st, testLogger())
	ctx := context.Background()

	_, err := svc.Create(ctx, "user-1", CreateProfileInput{
		DisplayName:        "Aroha",
		Bio:                "secret bio",
		PoliticalAlignment: "Independent",
		Private:            true,
	})
	require.NoError(t, err)

	// Owner sees everything
	own, err := svc.Get(ctx, "user-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "secret bio", own.Bio)
	assert.Equal(t, "Independent", own.PoliticalAlignment)

	// Anyone else gets the redacted view
	other, err := svc.Get(ctx, "user-2", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Aroha", other.DisplayName)
	assert.True(t, other.Private)
	assert.Empty(t, other.Bio)
	assert.Empty(t, other.PoliticalAlignment)
	assert.Equal(t, own.CreatedAt, other.CreatedAt)
}

func TestProfileGetNotFound(t *testing.T) {
	svc := NewProfileService(newTestStore(), testLogger())

	_, err := svc.Get(context.Background(), "user-1", "missing")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.EqualError(t, err, "Profile not found")
}

func TestProfileUpdate(t *testing.T) {
	st := newTestStore()
	svc := NewProfileService(st, testLogger())
	svc.now = stepClock(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC), time.Minute)
	ctx := context.Background()

	_, err := svc.Create(ctx, "user-1", CreateProfileInput{
		DisplayName: "Aroha",
		Bio:         "original bio",
	})
	require.NoError(t, err)

	bio := "new bio"
	updated, err := svc.Update(ctx, "user-1", UpdateProfileInput{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "new bio", updated.Bio)
	assert.Equal(t, "Aroha", updated.DisplayName, "omitted fields keep their value")
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))

	// A blank display name on update means "leave it alone"
	blank := "   "
	updated, err = svc.Update(ctx, "user-1", UpdateProfileInput{DisplayName: &blank})
	require.NoError(t, err)
	assert.Equal(t, "Aroha", updated.DisplayName)

	// Privacy can be flipped on its own
	private := true
	updated, err = svc.Update(ctx, "user-1", UpdateProfileInput{Private: &private})
	require.NoError(t, err)
	assert.True(t, updated.Private)
	assert.Equal(t, "new bio", updated.Bio)
}

func TestProfileUpdateValidation(t *testing.T) {
	st := newTestStore()
	svc := NewProfileService(st, testLogger())
	ctx := context.Background()

	seedProfile(t, st, "user-1", "Aroha")

	long := strings.Repeat("b", 501)
	_, err := svc.Update(ctx, "user-1", UpdateProfileInput{Bio: &long})
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))

	// The stored bio is unchanged
	got, err := svc.Get(ctx, "user-1", "user-1")
	require.NoError(t, err)
	assert.Empty(t, got.Bio)

	// Limits apply after trimming, same as on create: a bio that only
	// exceeds 500 characters through surrounding whitespace is accepted
	// and stored trimmed.
	padded := "  " + strings.Repeat("b", 500) + "    "
	got, err = svc.Update(ctx, "user-1", UpdateProfileInput{Bio: &padded})
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("b", 500), got.Bio)
}

func TestProfileUpdateWithoutProfile(t *testing.T) {
	svc := NewProfileService(newTestStore(), testLogger())

	name := "Aroha"
	_, err := svc.Update(context.Background(), "user-1", UpdateProfileInput{DisplayName: &name})
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.EqualError(t, err, "Profile not found. Use POST to create.")
}
