package services

import (
	"context"
	"crypto/tls"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aroundu/app/internal/models"
)

var ErrLocationOutOfRange = errors.New("location coordinates out of range")

type MongoUserService struct {
	client   *mongo.Client
	db       *mongo.Database
	usersCol *mongo.Collection
}

func NewMongoUserService(ctx context.Context, mongoURI, dbName string) (*MongoUserService, error) {
	tlsCfg := &tls.Config{
		MinVersion: tls.VersionTLS12,
		MaxVersion: tls.VersionTLS12,
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI).SetTLSConfig(tlsCfg))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	db := client.Database(dbName)
	col := db.Collection("users")

	// Best-effort indexes.
	_, _ = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	_, _ = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "photo_url", Value: 1}},
	})

	return &MongoUserService{
		client:   client,
		db:       db,
		usersCol: col,
	}, nil
}

func (s *MongoUserService) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoUserService) GetByUserID(ctx context.Context, userID string) (*models.UserProfile, error) {
	var prof models.UserProfile
	if err := s.usersCol.FindOne(ctx, bson.M{"user_id": userID}).Decode(&prof); err != nil {
		return nil, err
	}
	return &prof, nil
}

// GetOrCreate returns the user's profile, creating a fresh free-plan
// record on first sign-in.
func (s *MongoUserService) GetOrCreate(ctx context.Context, userID string, email string) (*models.UserProfile, error) {
	now := time.Now()

	var prof models.UserProfile
	err := s.usersCol.FindOne(ctx, bson.M{"user_id": userID}).Decode(&prof)
	if err == nil {
		if email != "" && prof.Email == "" {
			// Backfill the email recorded by the identity provider.
			_, _ = s.usersCol.UpdateOne(ctx, bson.M{"user_id": userID}, bson.M{
				"$set": bson.M{"email": email, "updated_at": now},
			})
			prof.Email = email
			prof.UpdatedAt = now
		}
		return &prof, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	prof = models.UserProfile{
		ID:        userID,
		Email:     email,
		Plan:      models.PlanFree,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err = s.usersCol.InsertOne(ctx, prof)
	if err != nil {
		// If a race created it, fetch again.
		var retry models.UserProfile
		if err2 := s.usersCol.FindOne(ctx, bson.M{"user_id": userID}).Decode(&retry); err2 == nil {
			return &retry, nil
		}
		return nil, err
	}
	return &prof, nil
}

// Patch applies a partial update from the pointer fields of the
// payload. isOnboarded is monotonic: a false in the payload never
// reverses an onboarded account.
func (s *MongoUserService) Patch(ctx context.Context, userID string, req *models.ProfilePayload) (*models.UserProfile, error) {
	now := time.Now()

	set := bson.M{
		"updated_at": now,
	}
	if req.FirstName != nil {
		set["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		set["last_name"] = *req.LastName
	}
	if req.Email != nil {
		set["email"] = *req.Email
	}
	if req.PhotoURL != nil {
		set["photo_url"] = *req.PhotoURL
	}
	if req.Location != nil {
		if !req.Location.Valid() {
			return nil, ErrLocationOutOfRange
		}
		set["location"] = *req.Location
	}
	if req.Onboarded != nil && *req.Onboarded {
		set["is_onboarded"] = true
	}

	setOnInsert := bson.M{
		"user_id":    userID,
		"plan":       models.PlanFree,
		"created_at": now,
	}

	_, err := s.usersCol.UpdateOne(
		ctx,
		bson.M{"user_id": userID},
		bson.M{"$set": set, "$setOnInsert": setOnInsert},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return nil, err
	}

	var prof models.UserProfile
	if err := s.usersCol.FindOne(ctx, bson.M{"user_id": userID}).Decode(&prof); err != nil {
		return nil, err
	}
	return &prof, nil
}

// SetStorageUsage records the informational storage counter after an
// approved photo lands.
func (s *MongoUserService) SetStorageUsage(ctx context.Context, userID string, usageMb float64) error {
	_, err := s.usersCol.UpdateOne(ctx, bson.M{"user_id": userID}, bson.M{
		"$set": bson.M{"storage_usage_mb": usageMb, "updated_at": time.Now()},
	})
	return err
}

// ApprovePendingPhoto updates any profile whose photo_url currently
// equals the pending URL to point at the final approved download URL.
func (s *MongoUserService) ApprovePendingPhoto(ctx context.Context, pendingURL string, approvedURL string) error {
	if strings.TrimSpace(pendingURL) == "" || strings.TrimSpace(approvedURL) == "" {
		return nil
	}
	now := time.Now()
	_, err := s.usersCol.UpdateMany(ctx, bson.M{"photo_url": pendingURL}, bson.M{
		"$set": bson.M{"photo_url": approvedURL, "updated_at": now},
	})
	return err
}

// RejectPendingPhoto clears photo_url wherever it matches pendingURL.
func (s *MongoUserService) RejectPendingPhoto(ctx context.Context, pendingURL string) error {
	if strings.TrimSpace(pendingURL) == "" {
		return nil
	}
	now := time.Now()
	_, err := s.usersCol.UpdateMany(ctx, bson.M{"photo_url": pendingURL}, bson.M{
		"$set": bson.M{"photo_url": "", "updated_at": now},
	})
	return err
}

// FindUserIDByPhotoURL resolves the owner of a stored photo URL.
func (s *MongoUserService) FindUserIDByPhotoURL(ctx context.Context, url string) (string, error) {
	var doc struct {
		UserID string `bson:"user_id"`
	}
	err := s.usersCol.FindOne(ctx, bson.M{"photo_url": url}, options.FindOne().SetProjection(bson.M{
		"user_id": 1,
	})).Decode(&doc)
	if err != nil {
		return "", err
	}
	return doc.UserID, nil
}

// DeleteUser removes the profile document and returns the photo URL (if
// any) so the caller can clean up stored objects.
func (s *MongoUserService) DeleteUser(ctx context.Context, userID string) (string, error) {
	var doc struct {
		PhotoURL string `bson:"photo_url"`
	}
	_ = s.usersCol.FindOne(ctx, bson.M{"user_id": userID}, options.FindOne().SetProjection(bson.M{
		"photo_url": 1,
	})).Decode(&doc)

	if _, err := s.usersCol.DeleteOne(ctx, bson.M{"user_id": userID}); err != nil {
		return "", err
	}
	return doc.PhotoURL, nil
}
