package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/insurance4you/agency/internal/core"
)

type PaymentRepoMongo struct {
	coll      *mongodrv.Collection
	opTimeout time.Duration
}

func NewPaymentRepo(db *mongodrv.Database, opTimeout time.Duration) *PaymentRepoMongo {
	return &PaymentRepoMongo{coll: db.Collection(ColPayments), opTimeout: opTimeout}
}

func (repo *PaymentRepoMongo) Create(ctx context.Context, p core.Payment) error {
	ctx, cancel := opCtx(ctx, repo.opTimeout)
	defer cancel()

	_, err := repo.coll.InsertOne(ctx, toPaymentDoc(p))
	return mapErr(err, nil, core.ErrConflict)
}

func (repo *PaymentRepoMongo) Get(ctx context.Context, paymentID string) (core.Payment, error) {
	ctx, cancel := opCtx(ctx, repo.opTimeout)
	defer cancel()

	var doc PaymentDoc
	err := repo.coll.FindOne(ctx, bson.M{"_id": paymentID}).Decode(&doc)
	if err != nil {
		return core.Payment{}, mapErr(err, core.ErrPaymentNotFound, nil)
	}
	return fromPaymentDoc(doc), nil
}

func (repo *PaymentRepoMongo) ListByCustomer(ctx context.Context, customerID string) ([]core.Payment, error) {
	ctx, cancel := opCtx(ctx, repo.opTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "payment_date", Value: -1}})
	cursor, err := repo.coll.Find(ctx, bson.M{"customer_id": customerID}, opts)
	if err != nil {
		return nil, mapErr(err, nil, nil)
	}
	defer cursor.Close(ctx)

	var payments []core.Payment
	for cursor.Next(ctx) {
		var doc PaymentDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, mapErr(err, nil, nil)
		}
		payments = append(payments, fromPaymentDoc(doc))
	}
	return payments, mapErr(cursor.Err(), nil, nil)
}

func (repo *PaymentRepoMongo) HasCompleted(ctx context.Context, customerID, policyID string) (bool, error) {
	ctx, cancel := opCtx(ctx, repo.opTimeout)
	defer cancel()

	count, err := repo.coll.CountDocuments(ctx, bson.M{
		"customer_id": customerID,
		"policy_id":   policyID,
		"status":      string(core.PaymentStatusCompleted),
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, mapErr(err, nil, nil)
	}
	return count > 0, nil
}

func (repo *PaymentRepoMongo) LastID(ctx context.Context) (string, error) {
	ctx, cancel := opCtx(ctx, repo.opTimeout)
	defer cancel()
	return lastID(ctx, repo.coll, bson.M{})
}
