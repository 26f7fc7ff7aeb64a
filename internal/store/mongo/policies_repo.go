package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/insurance4you/agency/internal/core"
)

type PurchasedPolicyRepoMongo struct {
	coll      *mongodrv.Collection
	payments  *mongodrv.Collection
	opTimeout time.Duration
}

func NewPurchasedPolicyRepo(db *mongodrv.Database, opTimeout time.Duration) *PurchasedPolicyRepoMongo {
	return &PurchasedPolicyRepoMongo{
		coll:      db.Collection(ColPurchased),
		payments:  db.Collection(ColPayments),
		opTimeout: opTimeout,
	}
}

func (repo *PurchasedPolicyRepoMongo) Create(ctx context.Context, p core.PurchasedPolicy) error {
	ctx, cancel := opCtx(ctx, repo.opTimeout)
	defer cancel()

	_, err := repo.coll.InsertOne(ctx, toPurchasedDoc(p))
	return mapErr(err, nil, core.ErrPolicyExists)
}

func (repo *PurchasedPolicyRepoMongo) Get(ctx context.Context, customerID, policyID string) (core.PurchasedPolicy, error) {
	ctx, cancel := opCtx(ctx, repo.opTimeout)
	defer cancel()

	var doc PolicyInstanceDoc
	err := repo.coll.FindOne(ctx, bson.M{"_id": purchasedKey(customerID, policyID)}).Decode(&doc)
	if err != nil {
		return core.PurchasedPolicy{}, mapErr(err, core.ErrPolicyNotFound, nil)
	}
	return fromPurchasedDoc(doc), nil
}

func (repo *PurchasedPolicyRepoMongo) ListByCustomer(ctx context.Context, customerID string) ([]core.PurchasedPolicy, error) {
	return repo.find(ctx, bson.M{"customer_id": customerID})
}

func (repo *PurchasedPolicyRepoMongo) ListByAgent(ctx context.Context, agentID string) ([]core.PurchasedPolicy, error) {
	return repo.find(ctx, bson.M{"agent_id": agentID})
}

func (repo *PurchasedPolicyRepoMongo) ListByStatus(ctx context.Context, status core.PolicyStatus) ([]core.PurchasedPolicy, error) {
	return repo.find(ctx, bson.M{"status": string(status)})
}

func (repo *PurchasedPolicyRepoMongo) find(ctx context.Context, filter bson.M) ([]core.PurchasedPolicy, error) {
	ctx, cancel := opCtx(ctx, repo.opTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "start_date", Value: -1}, {Key: "policy_id", Value: 1}})
	cursor, err := repo.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, mapErr(err, nil, nil)
	}
	defer cursor.Close(ctx)

	var policies []core.PurchasedPolicy
	for cursor.Next(ctx) {
		var doc PolicyInstanceDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, mapErr(err, nil, nil)
		}
		policies = append(policies, fromPurchasedDoc(doc))
	}
	return policies, mapErr(cursor.Err(), nil, nil)
}

func (repo *PurchasedPolicyRepoMongo) UpdateStatus(ctx context.Context, customerID, policyID string, status core.PolicyStatus) error {
	ctx, cancel := opCtx(ctx, repo.opTimeout)
	defer cancel()

	res, err := repo.coll.UpdateOne(ctx,
		bson.M{"_id": purchasedKey(customerID, policyID)},
		bson.M{"$set": bson.M{"status": string(status)}})
	if err != nil {
		return mapErr(err, nil, nil)
	}
	if res.MatchedCount == 0 {
		return core.ErrPolicyNotFound
	}
	return nil
}

// ListPayable filters accepted policies down to those without a completed
// payment. Payment volume per customer is small, so two queries beat a
// $lookup here.
func (repo *PurchasedPolicyRepoMongo) ListPayable(ctx context.Context, customerID string) ([]core.PurchasedPolicy, error) {
	accepted, err := repo.find(ctx, bson.M{
		"customer_id": customerID,
		"status":      string(core.PolicyStatusAccepted),
	})
	if err != nil {
		return nil, err
	}
	if len(accepted) == 0 {
		return accepted, nil
	}

	ctx, cancel := opCtx(ctx, repo.opTimeout)
	defer cancel()

	cursor, err := repo.payments.Find(ctx, bson.M{
		"customer_id": customerID,
		"status":      string(core.PaymentStatusCompleted),
	})
	if err != nil {
		return nil, mapErr(err, nil, nil)
	}
	defer cursor.Close(ctx)

	paid := make(map[string]bool)
	for cursor.Next(ctx) {
		var doc PaymentDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, mapErr(err, nil, nil)
		}
		paid[doc.PolicyID] = true
	}
	if err := cursor.Err(); err != nil {
		return nil, mapErr(err, nil, nil)
	}

	payable := accepted[:0]
	for _, p := range accepted {
		if !paid[p.PolicyID] {
			payable = append(payable, p)
		}
	}
	return payable, nil
}

func (repo *PurchasedPolicyRepoMongo) ExpireEnded(ctx context.Context, before time.Time) (int64, error) {
	ctx, cancel := opCtx(ctx, repo.opTimeout)
	defer cancel()

	res, err := repo.coll.UpdateMany(ctx,
		bson.M{
			"end_date": bson.M{"$lt": before},
			"status": bson.M{"$in": []string{
				string(core.PolicyStatusAccepted),
				string(core.PolicyStatusPremiumPaid),
			}},
		},
		bson.M{"$set": bson.M{"status": string(core.PolicyStatusExpired)}})
	if err != nil {
		return 0, mapErr(err, nil, nil)
	}
	return res.ModifiedCount, nil
}

type CustomPolicyRepoMongo struct {
	coll      *mongodrv.Collection
	opTimeout time.Duration
}

func NewCustomPolicyRepo(db *mongodrv.Database, opTimeout time.Duration) *CustomPolicyRepoMongo {
	return &CustomPolicyRepoMongo{coll: db.Collection(ColCustom), opTimeout: opTimeout}
}

func (repo *CustomPolicyRepoMongo) Create(ctx context.Context, p core.CustomPolicy) error {
	ctx, cancel := opCtx(ctx, repo.opTimeout)
	defer cancel()

	_, err := repo.coll.InsertOne(ctx, toCustomDoc(p))
	return mapErr(err, nil, core.ErrPolicyExists)
}

func (repo *CustomPolicyRepoMongo) Get(ctx context.Context, policyID string) (core.CustomPolicy, error) {
	ctx, cancel := opCtx(ctx, repo.opTimeout)
	defer cancel()

	var doc PolicyInstanceDoc
	err := repo.coll.FindOne(ctx, bson.M{"_id": policyID}).Decode(&doc)
	if err != nil {
		return core.CustomPolicy{}, mapErr(err, core.ErrCustomNotFound, nil)
	}
	return fromCustomDoc(doc), nil
}

func (repo *CustomPolicyRepoMongo) ListPending(ctx context.Context) ([]core.CustomPolicy, error) {
	return repo.find(ctx, bson.M{"status": string(core.PolicyStatusRequested)})
}

func (repo *CustomPolicyRepoMongo) ListByCustomer(ctx context.Context, customerID string) ([]core.CustomPolicy, error) {
	return repo.find(ctx, bson.M{"customer_id": customerID})
}

func (repo *CustomPolicyRepoMongo) find(ctx context.Context, filter bson.M) ([]core.CustomPolicy, error) {
	ctx, cancel := opCtx(ctx, repo.opTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := repo.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, mapErr(err, nil, nil)
	}
	defer cursor.Close(ctx)

	var policies []core.CustomPolicy
	for cursor.Next(ctx) {
		var doc PolicyInstanceDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, mapErr(err, nil, nil)
		}
		policies = append(policies, fromCustomDoc(doc))
	}
	return policies, mapErr(cursor.Err(), nil, nil)
}

func (repo *CustomPolicyRepoMongo) UpdateStatus(ctx context.Context, policyID string, status core.PolicyStatus) error {
	ctx, cancel := opCtx(ctx, repo.opTimeout)
	defer cancel()

	res, err := repo.coll.UpdateOne(ctx, bson.M{"_id": policyID},
		bson.M{"$set": bson.M{"status": string(status)}})
	if err != nil {
		return mapErr(err, nil, nil)
	}
	if res.MatchedCount == 0 {
		return core.ErrCustomNotFound
	}
	return nil
}
