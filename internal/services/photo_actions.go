package services

import (
	"context"
)

// PhotoActions applies screening outcomes for pending profile photos.
type PhotoActions struct {
	Users *MongoUserService
	Flags *MongoUserFlagService
}

// Approve points every profile referencing the pending URL at the
// approved download URL and records the stored size.
func (a *PhotoActions) Approve(ctx context.Context, pendingURL, approvedURL string, sizeBytes int64) error {
	if a.Users == nil {
		return nil
	}
	if err := a.Users.ApprovePendingPhoto(ctx, pendingURL, approvedURL); err != nil {
		return err
	}
	if sizeBytes > 0 {
		if userID, err := a.Users.FindUserIDByPhotoURL(ctx, approvedURL); err == nil && userID != "" {
			_ = a.Users.SetStorageUsage(ctx, userID, float64(sizeBytes)/(1024*1024))
		}
	}
	return nil
}

// Reject clears the pending reference and records a strike against the
// uploader.
func (a *PhotoActions) Reject(ctx context.Context, pendingURL string) error {
	if a.Users == nil {
		return nil
	}

	userID, err := a.Users.FindUserIDByPhotoURL(ctx, pendingURL)
	if err == nil && userID != "" && a.Flags != nil {
		_, _ = a.Flags.AddStrike(ctx, userID)
	}

	return a.Users.RejectPendingPhoto(ctx, pendingURL)
}
