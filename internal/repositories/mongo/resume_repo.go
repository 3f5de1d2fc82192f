package mongo

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/chainfolio/chainfolio/internal/models"
	"github.com/chainfolio/chainfolio/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ResumeRepository is the document-store contract for resume aggregates.
// Every lookup keys on owner+id: a record belonging to a different owner is
// indistinguishable from a missing one (utils.ErrNotFound).
type ResumeRepository interface {
	Insert(ctx context.Context, r *models.Resume) error
	ListByOwner(ctx context.Context, userID string) ([]models.Resume, error)
	GetByID(ctx context.Context, userID, id string) (*models.Resume, error)
	FindDefault(ctx context.Context, userID string) (*models.Resume, error)
	FindLatest(ctx context.Context, userID string) (*models.Resume, error)
	Replace(ctx context.Context, userID, id string, r *models.Resume) error
	SetSection(ctx context.Context, userID, id, field string, value any) error
	UnsetDefaults(ctx context.Context, userID, excludeID string) error
	SetDefaultFlag(ctx context.Context, userID, id string) error
	Delete(ctx context.Context, userID, id string) error
	SetVerification(ctx context.Context, userID, id string, v *models.Verification) error
	ClearVerification(ctx context.Context, userID, id string) error
	SearchPublic(ctx context.Context, query string, limit int64) ([]models.Resume, error)
}

type resumeRepo struct {
	col *mongo.Collection
}

func NewResumeRepo(db *mongo.Database) ResumeRepository {
	return &resumeRepo{col: db.Collection("resumes")}
}

// ownerFilter builds the owner+id lookup filter. A malformed id can never
// name an existing record, so it folds into ErrNotFound downstream.
func ownerFilter(userID, id string) (bson.M, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, utils.ErrNotFound
	}
	return bson.M{"_id": oid, "user_id": userID}, nil
}

func (r *resumeRepo) Insert(ctx context.Context, res *models.Resume) error {
	now := time.Now().UTC()
	if res.CreatedAt.IsZero() {
		res.CreatedAt = now
	}
	res.UpdatedAt = now

	out, err := r.col.InsertOne(ctx, res)
	if err != nil {
		return err
	}
	if oid, ok := out.InsertedID.(primitive.ObjectID); ok {
		res.ID = oid
	}
	return nil
}

func (r *resumeRepo) ListByOwner(ctx context.Context, userID string) ([]models.Resume, error) {
	cur, err := r.col.Find(ctx,
		bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Resume
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *resumeRepo) GetByID(ctx context.Context, userID, id string) (*models.Resume, error) {
	filter, err := ownerFilter(userID, id)
	if err != nil {
		return nil, err
	}

	var res models.Resume
	err = r.col.FindOne(ctx, filter).Decode(&res)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *resumeRepo) FindDefault(ctx context.Context, userID string) (*models.Resume, error) {
	var res models.Resume
	err := r.col.FindOne(ctx, bson.M{"user_id": userID, "is_default": true}).Decode(&res)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *resumeRepo) FindLatest(ctx context.Context, userID string) (*models.Resume, error) {
	var res models.Resume
	err := r.col.FindOne(ctx,
		bson.M{"user_id": userID},
		options.FindOne().SetSort(bson.D{{Key: "updated_at", Value: -1}}),
	).Decode(&res)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Replace overwrites the mutable fields of one record. Identity, ownership,
// and created_at are never touched.
func (r *resumeRepo) Replace(ctx context.Context, userID, id string, res *models.Resume) error {
	filter, err := ownerFilter(userID, id)
	if err != nil {
		return err
	}

	out, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		"title":      res.Title,
		"template":   res.Template,
		"theme":      res.Theme,
		"basics":     res.Basics,
		"skills":     res.Skills,
		"work":       res.Work,
		"education":  res.Education,
		"volunteer":  res.Volunteer,
		"awards":     res.Awards,
		"activities": res.Activities,
		"labels":     res.Labels,
		"is_public":  res.IsPublic,
		"is_default": res.IsDefault,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if out.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *resumeRepo) SetSection(ctx context.Context, userID, id, field string, value any) error {
	filter, err := ownerFilter(userID, id)
	if err != nil {
		return err
	}

	out, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		field:        value,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if out.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

// UnsetDefaults clears is_default on every record of the owner, optionally
// excluding one id. Paired with SetDefaultFlag this keeps the one-default
// invariant; the two writes are best-effort ordered, not transactional.
func (r *resumeRepo) UnsetDefaults(ctx context.Context, userID, excludeID string) error {
	filter := bson.M{"user_id": userID, "is_default": true}
	if excludeID != "" {
		oid, err := primitive.ObjectIDFromHex(excludeID)
		if err != nil {
			return utils.ErrNotFound
		}
		filter["_id"] = bson.M{"$ne": oid}
	}

	_, err := r.col.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"is_default": false}})
	return err
}

func (r *resumeRepo) SetDefaultFlag(ctx context.Context, userID, id string) error {
	filter, err := ownerFilter(userID, id)
	if err != nil {
		return err
	}

	out, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		"is_default": true,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if out.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *resumeRepo) Delete(ctx context.Context, userID, id string) error {
	filter, err := ownerFilter(userID, id)
	if err != nil {
		return err
	}

	out, err := r.col.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if out.DeletedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *resumeRepo) SetVerification(ctx context.Context, userID, id string, v *models.Verification) error {
	filter, err := ownerFilter(userID, id)
	if err != nil {
		return err
	}

	// Full overwrite, never a merge: a re-run verification must not keep
	// fields from a previous attempt.
	out, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		"verification": v,
		"updated_at":   time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if out.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *resumeRepo) ClearVerification(ctx context.Context, userID, id string) error {
	filter, err := ownerFilter(userID, id)
	if err != nil {
		return err
	}

	out, err := r.col.UpdateOne(ctx, filter, bson.M{
		"$unset": bson.M{"verification": ""},
		"$set":   bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if out.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *resumeRepo) SearchPublic(ctx context.Context, query string, limit int64) ([]models.Resume, error) {
	if limit <= 0 {
		limit = 20
	}

	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	filter := bson.M{
		"is_public": true,
		"$or": []bson.M{
			{"basics.name": pattern},
			{"basics.label": pattern},
			{"basics.summary": pattern},
			{"title": pattern},
		},
	}

	cur, err := r.col.Find(ctx, filter,
		options.Find().
			SetSort(bson.D{{Key: "updated_at", Value: -1}}).
			SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Resume
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
