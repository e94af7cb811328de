package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/korero-app/korero-backend/internal/entities"
	"github.com/korero-app/korero-backend/internal/store"
	"github.com/korero-app/korero-backend/internal/validate"
)

// ProfileService enforces the one-profile-per-user invariant and applies
// privacy filtering on reads.
type ProfileService struct {
	store  store.Store
	logger *zap.SugaredLogger
	now    func() time.Time
}

func NewProfileService(st store.Store, logger *zap.SugaredLogger) *ProfileService {
	return &ProfileService{store: st, logger: logger, now: time.Now}
}

// CreateProfileInput carries the fields of a profile creation request.
// Absent optional fields arrive as empty values; creation stores them as
// such.
type CreateProfileInput struct {
	DisplayName        string
	Bio                string
	PoliticalAlignment string
	Private            bool
}

// UpdateProfileInput carries a partial update. Nil means the field was
// omitted and keeps its stored value; a present field is validated and
// merged.
type UpdateProfileInput struct {
	DisplayName        *string
	Bio                *string
	PoliticalAlignment *string
	Private            *bool
}

// Create stores a new profile for caller. A second creation for the same
// user fails with a conflict; the conditional write makes the check and
// the insert one operation.
func (s *ProfileService) Create(ctx context.Context, caller string, in CreateProfileInput) (*entities.Profile, error) {
	displayName := strings.TrimSpace(in.DisplayName)
	bio := strings.TrimSpace(in.Bio)
	alignment := strings.TrimSpace(in.PoliticalAlignment)

	if err := validate.Profile(displayName, &bio, &alignment, false); err != nil {
		return nil, Invalid(err.Error())
	}

	now := s.now()
	profile := &entities.Profile{
		UserID:             caller,
		DisplayName:        displayName,
		Bio:                bio,
		PoliticalAlignment: alignment,
		Private:            in.Private,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	err := s.store.PutItemIfAbsent(ctx, entities.CollectionProfiles, profile.ToItem())
	if errors.Is(err, store.ErrAlreadyExists) {
		return nil, Conflict("Profile already exists. Use PUT to update.")
	}
	if err != nil {
		s.logger.Errorw("profile create failed", "user_id", caller, "error", err)
		return nil, Internal(err, "Failed to create profile")
	}
	return profile, nil
}

// Get returns target's profile as visible to caller. Private profiles
// viewed by anyone else have bio and political alignment redacted.
func (s *ProfileService) Get(ctx context.Context, caller, target string) (*entities.Profile, error) {
	it, err := s.store.GetItem(ctx, entities.CollectionProfiles, store.Key{Partition: target})
	if errors.Is(err, store.ErrNotFound) {
		return nil, NotFound("Profile not found")
	}
	if err != nil {
		s.logger.Errorw("profile get failed", "user_id", target, "error", err)
		return nil, Internal(err, "Failed to retrieve profile")
	}

	profile := entities.ProfileFromItem(it)
	if profile.Private && caller != target {
		return profile.Redacted(), nil
	}
	return profile, nil
}

// Update merges the supplied fields into caller's own profile and
// refreshes updated_at. There is no target parameter on purpose: a caller
// can never update anyone else's record.
func (s *ProfileService) Update(ctx context.Context, caller string, in UpdateProfileInput) (*entities.Profile, error) {
	var displayName string
	if in.DisplayName != nil {
		displayName = strings.TrimSpace(*in.DisplayName)
	}
	bio := trimmed(in.Bio)
	alignment := trimmed(in.PoliticalAlignment)

	// Fields are trimmed before validation so the limits apply to what
	// gets stored, same as on create.
	if err := validate.Profile(displayName, bio, alignment, true); err != nil {
		return nil, Invalid(err.Error())
	}

	key := store.Key{Partition: caller}
	if _, err := s.store.GetItem(ctx, entities.CollectionProfiles, key); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, NotFound("Profile not found. Use POST to create.")
		}
		s.logger.Errorw("profile lookup failed", "user_id", caller, "error", err)
		return nil, Internal(err, "Failed to retrieve profile")
	}

	fields := store.Item{"updated_at": store.FormatTime(s.now())}
	if displayName != "" {
		fields["display_name"] = displayName
	}
	if bio != nil {
		fields["bio"] = *bio
	}
	if alignment != nil {
		fields["political_alignment"] = *alignment
	}
	if in.Private != nil {
		fields["profile_private"] = *in.Private
	}

	it, err := s.store.UpdateItem(ctx, entities.CollectionProfiles, key, fields)
	if err != nil {
		s.logger.Errorw("profile update failed", "user_id", caller, "error", err)
		return nil, Internal(err, "Failed to update profile")
	}
	return entities.ProfileFromItem(it), nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

// displayNameOf fetches caller's display name for denormalizing into
// posts, comments and likes. Everything that writes content requires a
// completed profile first.
func displayNameOf(ctx context.Context, st store.Store, caller string) (string, error) {
	it, err := st.GetItem(ctx, entities.CollectionProfiles, store.Key{Partition: caller})
	if errors.Is(err, store.ErrNotFound) {
		return "", NotFound("Profile not found. Please complete onboarding first.")
	}
	if err != nil {
		return "", Internal(err, "Failed to retrieve user profile")
	}
	name := it.String("display_name")
	if name == "" {
		name = "Unknown User"
	}
	return name, nil
}
