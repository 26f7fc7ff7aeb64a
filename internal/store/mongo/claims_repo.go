package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/insurance4you/agency/internal/core"
)

type ClaimRepoMongo struct {
	coll      *mongodrv.Collection
	opTimeout time.Duration
}

func NewClaimRepo(db *mongodrv.Database, opTimeout time.Duration) *ClaimRepoMongo {
	return &ClaimRepoMongo{coll: db.Collection(ColClaims), opTimeout: opTimeout}
}

func (repo *ClaimRepoMongo) Create(ctx context.Context, c core.Claim) error {
	ctx, cancel := opCtx(ctx, repo.opTimeout)
	defer cancel()

	_, err := repo.coll.InsertOne(ctx, toClaimDoc(c))
	return mapErr(err, nil, core.ErrConflict)
}

func (repo *ClaimRepoMongo) Get(ctx context.Context, claimID string) (core.Claim, error) {
	ctx, cancel := opCtx(ctx, repo.opTimeout)
	defer cancel()

	var doc ClaimDoc
	err := repo.coll.FindOne(ctx, bson.M{"_id": claimID}).Decode(&doc)
	if err != nil {
		return core.Claim{}, mapErr(err, core.ErrClaimNotFound, nil)
	}
	return fromClaimDoc(doc), nil
}

func (repo *ClaimRepoMongo) ListPending(ctx context.Context) ([]core.Claim, error) {
	return repo.find(ctx, bson.M{"status": string(core.ClaimStatusPending)},
		bson.D{{Key: "date_filed", Value: 1}})
}

func (repo *ClaimRepoMongo) ListByCustomer(ctx context.Context, customerID string) ([]core.Claim, error) {
	return repo.find(ctx, bson.M{"customer_id": customerID},
		bson.D{{Key: "date_filed", Value: -1}})
}

func (repo *ClaimRepoMongo) find(ctx context.Context, filter bson.M, sort bson.D) ([]core.Claim, error) {
	ctx, cancel := opCtx(ctx, repo.opTimeout)
	defer cancel()

	cursor, err := repo.coll.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, mapErr(err, nil, nil)
	}
	defer cursor.Close(ctx)

	var claims []core.Claim
	for cursor.Next(ctx) {
		var doc ClaimDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, mapErr(err, nil, nil)
		}
		claims = append(claims, fromClaimDoc(doc))
	}
	return claims, mapErr(cursor.Err(), nil, nil)
}

func (repo *ClaimRepoMongo) Decide(ctx context.Context, claimID string, status core.ClaimStatus, details string) error {
	ctx, cancel := opCtx(ctx, repo.opTimeout)
	defer cancel()

	res, err := repo.coll.UpdateOne(ctx, bson.M{"_id": claimID},
		bson.M{"$set": bson.M{"status": string(status), "details": details}})
	if err != nil {
		return mapErr(err, nil, nil)
	}
	if res.MatchedCount == 0 {
		return core.ErrClaimNotFound
	}
	return nil
}

func (repo *ClaimRepoMongo) LastID(ctx context.Context) (string, error) {
	ctx, cancel := opCtx(ctx, repo.opTimeout)
	defer cancel()
	return lastID(ctx, repo.coll, bson.M{})
}
