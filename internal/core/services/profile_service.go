package services

import (
	"context"
	"fmt"
	"strings"

	"fluvid/internal/core/domain"
	"fluvid/internal/core/ports"
	"fluvid/pkg/utils"
	"fluvid/pkg/validation"

	"go.uber.org/zap"
)

var monetizationSteps = []ports.JobStep{
	{Label: "Checking account standing"},
	{Label: "Reviewing content"},
	{Label: "Checking community guidelines"},
	{Label: "Checking copyright"},
}

type profileService struct {
	users        ports.UserRepository
	videos       ports.VideoRepository
	monetization ports.MonetizationRepository
	jobs         ports.JobRunner
	logger       *zap.SugaredLogger
}

func NewProfileService(
	users ports.UserRepository,
	videos ports.VideoRepository,
	monetization ports.MonetizationRepository,
	jobs ports.JobRunner,
	logger *zap.SugaredLogger,
) ports.ProfileService {
	return &profileService{
		users:        users,
		videos:       videos,
		monetization: monetization,
		jobs:         jobs,
		logger:       logger,
	}
}

func (s *profileService) Get(ctx context.Context, caller *domain.User) (*domain.User, error) {
	return s.users.GetByID(ctx, caller.ID)
}

func (s *profileService) Update(ctx context.Context, caller *domain.User, patch ports.ProfilePatch) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, caller.ID)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		name := utils.SanitizeString(*patch.Name)
		if err := validation.ValidateName(name); err != nil {
			return nil, domain.NewValidationError("name", err)
		}
		user.Name = name
	}
	if patch.Email != nil {
		email := utils.NormalizeEmail(*patch.Email)
		if err := validation.ValidateEmail(email); err != nil {
			return nil, domain.NewValidationError("email", err)
		}
		user.Email = email
	}
	if patch.Avatar != nil {
		avatar := strings.TrimSpace(*patch.Avatar)
		if err := validation.ValidateURL(avatar); err != nil {
			return nil, domain.NewValidationError("avatar", err)
		}
		user.Avatar = avatar
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Infow("profile updated", "user_id", user.ID)
	return user, nil
}

func (s *profileService) Monetization(ctx context.Context, caller *domain.User) (*domain.MonetizationSettings, error) {
	return s.monetization.Get(ctx, caller.ID)
}

func (s *profileService) UpdateMonetization(ctx context.Context, caller *domain.User, settings domain.MonetizationSettings) (*domain.MonetizationSettings, error) {
	if !domain.RoleHasPermission(caller.Role, domain.PermManageMonetization) {
		return nil, domain.ErrForbidden
	}

	settings.PayoutEmail = utils.NormalizeEmail(settings.PayoutEmail)
	if settings.PayoutEmail != "" || settings.Enabled {
		if err := validation.ValidateEmail(settings.PayoutEmail); err != nil {
			return nil, domain.NewValidationError("payoutEmail", err)
		}
	}
	if err := validation.ValidatePrice(settings.SubscriptionPrice, MaxPrice); err != nil {
		return nil, domain.NewValidationError("subscriptionPrice", err)
	}

	if err := s.monetization.Save(ctx, caller.ID, &settings); err != nil {
		return nil, fmt.Errorf("failed to save monetization settings: %w", err)
	}
	return &settings, nil
}

// CheckMonetization runs the four-step eligibility review. The result is decided when the job finishes.
func (s *profileService) CheckMonetization(ctx context.Context, caller *domain.User) (*domain.Job, error) {
	if !domain.RoleHasPermission(caller.Role, domain.PermManageMonetization) {
		return nil, domain.ErrForbidden
	}

	owner := caller.ID
	return s.jobs.Submit(ctx, domain.JobMonetizationCheck, owner, string(owner), monetizationSteps,
		func(ctx context.Context) (interface{}, *domain.Toast, error) {
			result, err := s.eligibility(ctx, owner)
			if err != nil {
				return nil, nil, err
			}
			var toast domain.Toast
			if result.Eligible {
				toast = domain.SuccessToast("You're eligible!", "Your channel meets the monetization requirements.")
			} else {
				toast = domain.InfoToast("Not eligible yet", strings.Join(result.Reasons, " "))
			}
			return result, &toast, nil
		})
}

// eligibility: premium accounts always qualify, others need enough public videos and views.
func (s *profileService) eligibility(ctx context.Context, owner domain.UserID) (*domain.MonetizationCheckResult, error) {
	user, err := s.users.GetByID(ctx, owner)
	if err != nil {
		return nil, err
	}
	all, err := s.videos.List(ctx)
	if err != nil {
		return nil, err
	}

	result := &domain.MonetizationCheckResult{}
	for _, v := range FilterVideos(all, domain.VideoFilter{OwnerID: owner, Privacy: domain.PrivacyPublic}) {
		result.PublicVideos++
		result.TotalViews += v.Views
	}

	meetsVideos := result.PublicVideos >= domain.MinPublicVideosForMonetization
	meetsViews := result.TotalViews >= domain.MinViewsForMonetization
	result.Eligible = user.Premium || (meetsVideos && meetsViews)

	if !result.Eligible {
		if !meetsVideos {
			result.Reasons = append(result.Reasons, fmt.Sprintf("Publish at least %d public videos.", domain.MinPublicVideosForMonetization))
		}
		if !meetsViews {
			result.Reasons = append(result.Reasons, fmt.Sprintf("Reach %d total views.", domain.MinViewsForMonetization))
		}
	}
	return result, nil
}
