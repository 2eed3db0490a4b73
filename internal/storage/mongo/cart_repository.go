package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/IICPAS/IICPAS-sub003/internal/app_errors"
	"github.com/IICPAS/IICPAS-sub003/internal/models"
)

type CartRepository struct {
	collection        *mongo.Collection
	collectionHistory *mongo.Collection
}

func NewCartRepository(db *mongo.Database) *CartRepository {
	return &CartRepository{
		collection:        db.Collection(CartCollection),
		collectionHistory: db.Collection(CartHistoryCollection),
	}
}

// GetCart returns the student's cart, or an empty unsaved one.
func (r *CartRepository) GetCart(ctx context.Context, studentID string) (*models.Cart, error) {
	var cart models.Cart
	err := r.collection.FindOne(ctx, bson.M{"student_id": studentID}).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			now := time.Now().UTC()
			return &models.Cart{
				StudentID: studentID,
				Items:     []models.CartItem{},
				CreatedAt: now,
				UpdatedAt: now,
			}, nil
		}
		return nil, err
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return &cart, nil
}

// SaveCart writes the cart if nobody saved it since it was read. A lost race
// surfaces as ErrCartConflict: either the version filter misses and the upsert
// hits the unique student index, or two first saves collide on it.
func (r *CartRepository) SaveCart(ctx context.Context, cart *models.Cart) error {
	filter := bson.M{"student_id": cart.StudentID, "version": cart.Version}
	next := *cart
	next.Version = cart.Version + 1
	next.UpdatedAt = time.Now().UTC()

	_, err := r.collection.ReplaceOne(ctx, filter, next, options.Replace().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return app_errors.ErrCartConflict
		}
		return err
	}
	*cart = next
	return nil
}

// ClearCart empties the cart in place and bumps its version, so a save still
// holding the old version misses its filter and reports ErrCartConflict.
func (r *CartRepository) ClearCart(ctx context.Context, studentID string) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"student_id": studentID}, clearUpdate(time.Now().UTC()))
	return err
}

func clearUpdate(now time.Time) bson.M {
	return bson.M{
		"$set": bson.M{"items": bson.A{}, "total_price": 0.0, "updated_at": now},
		"$inc": bson.M{"version": 1},
	}
}

func (r *CartRepository) AddCartHistory(ctx context.Context, event models.CartEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	_, err := r.collectionHistory.InsertOne(ctx, event)
	return err
}
