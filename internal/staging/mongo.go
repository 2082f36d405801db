package staging

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/insightdelivered/statement-importer/internal/models"
)

// PendingCollection is the collection holding one staged batch per owner.
const PendingCollection = "temp_transactions"

// CollectionProvider yields collection handles from a connected database.
type CollectionProvider interface {
	Collection(name string, opts ...*options.CollectionOptions) *mongo.Collection
}

// MongoStore persists pending batches in MongoDB, one document per owner
// keyed by _id, so replace-by-owner is a single upsert.
type MongoStore struct {
	provider CollectionProvider
}

// NewMongoStore creates a MongoStore over the given database.
func NewMongoStore(provider CollectionProvider) *MongoStore {
	return &MongoStore{provider: provider}
}

// batchDoc is the stored shape of a pending batch. Amounts travel as strings
// because decimal.Decimal has no bson codec.
type batchDoc struct {
	Owner    string         `bson:"_id"`
	Items    []candidateDoc `bson:"transactions"`
	StagedAt time.Time      `bson:"stagedAt"`
}

type candidateDoc struct {
	ID            string `bson:"id"`
	Owner         string `bson:"owner"`
	Title         string `bson:"title"`
	Amount        string `bson:"amount"`
	Category      string `bson:"category"`
	Kind          string `bson:"kind"`
	Date          string `bson:"date"`
	PaymentMethod string `bson:"paymentMethod"`
	Note          string `bson:"note"`
}

// Put implements Store via a ReplaceOne upsert keyed by owner.
func (s *MongoStore) Put(ctx context.Context, owner string, items []models.TransactionCandidate) error {
	doc := batchDoc{
		Owner:    owner,
		Items:    make([]candidateDoc, 0, len(items)),
		StagedAt: time.Now().UTC(),
	}
	for _, item := range items {
		doc.Items = append(doc.Items, toDoc(item))
	}

	coll := s.provider.Collection(PendingCollection)
	_, err := coll.ReplaceOne(ctx, bson.M{"_id": owner}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("stage batch for %s: %w", owner, err)
	}
	return nil
}

// Get implements Store.
func (s *MongoStore) Get(ctx context.Context, owner string) (*models.PendingBatch, error) {
	coll := s.provider.Collection(PendingCollection)

	var doc batchDoc
	err := coll.FindOne(ctx, bson.M{"_id": owner}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotStaged
	}
	if err != nil {
		return nil, fmt.Errorf("load staged batch for %s: %w", owner, err)
	}

	batch := &models.PendingBatch{
		Owner:    doc.Owner,
		Items:    make([]models.TransactionCandidate, 0, len(doc.Items)),
		StagedAt: doc.StagedAt,
	}
	for _, item := range doc.Items {
		candidate, err := fromDoc(item)
		if err != nil {
			return nil, fmt.Errorf("staged batch for %s is corrupt: %w", owner, err)
		}
		batch.Items = append(batch.Items, candidate)
	}
	return batch, nil
}

// Clear implements Store. Deleting an absent document is not an error.
func (s *MongoStore) Clear(ctx context.Context, owner string) error {
	coll := s.provider.Collection(PendingCollection)
	if _, err := coll.DeleteOne(ctx, bson.M{"_id": owner}); err != nil {
		return fmt.Errorf("clear staged batch for %s: %w", owner, err)
	}
	return nil
}

func toDoc(c models.TransactionCandidate) candidateDoc {
	return candidateDoc{
		ID:            c.ID,
		Owner:         c.Owner,
		Title:         c.Title,
		Amount:        c.Amount.String(),
		Category:      string(c.Category),
		Kind:          string(c.Kind),
		Date:          c.Date,
		PaymentMethod: c.PaymentMethod,
		Note:          c.Note,
	}
}

func fromDoc(d candidateDoc) (models.TransactionCandidate, error) {
	amount, err := decimal.NewFromString(d.Amount)
	if err != nil {
		return models.TransactionCandidate{}, fmt.Errorf("amount %q: %w", d.Amount, err)
	}
	return models.TransactionCandidate{
		ID:            d.ID,
		Owner:         d.Owner,
		Title:         d.Title,
		Amount:        amount,
		Category:      models.Category(d.Category),
		Kind:          models.Kind(d.Kind),
		Date:          d.Date,
		PaymentMethod: d.PaymentMethod,
		Note:          d.Note,
	}, nil
}

var _ Store = (*MongoStore)(nil)
