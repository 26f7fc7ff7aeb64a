package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mongodrv "go.mongodb.org/mongo-driver/mongo"

	"github.com/insurance4you/agency/internal/core"
)

type UserRepoMongo struct {
	coll      *mongodrv.Collection
	opTimeout time.Duration
}

func NewUserRepo(db *mongodrv.Database, opTimeout time.Duration) *UserRepoMongo {
	return &UserRepoMongo{coll: db.Collection(ColUsers), opTimeout: opTimeout}
}

func (repo *UserRepoMongo) Create(ctx context.Context, u core.User) error {
	ctx, cancel := opCtx(ctx, repo.opTimeout)
	defer cancel()

	_, err := repo.coll.InsertOne(ctx, toUserDoc(u))
	return mapErr(err, nil, core.ErrUserExists)
}

func (repo *UserRepoMongo) Get(ctx context.Context, nric string) (core.User, error) {
	ctx, cancel := opCtx(ctx, repo.opTimeout)
	defer cancel()

	var doc UserDoc
	err := repo.coll.FindOne(ctx, bson.M{"_id": nric}).Decode(&doc)
	if err != nil {
		return core.User{}, mapErr(err, core.ErrUserNotFound, nil)
	}
	return fromUserDoc(doc), nil
}

func (repo *UserRepoMongo) GetByEmail(ctx context.Context, email string) (core.User, error) {
	ctx, cancel := opCtx(ctx, repo.opTimeout)
	defer cancel()

	var doc UserDoc
	err := repo.coll.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if err != nil {
		return core.User{}, mapErr(err, core.ErrUserNotFound, nil)
	}
	return fromUserDoc(doc), nil
}

func (repo *UserRepoMongo) UpdateProfileField(ctx context.Context, nric string, field core.ProfileField, value string) error {
	ctx, cancel := opCtx(ctx, repo.opTimeout)
	defer cancel()

	var set bson.M
	switch field {
	case core.FieldName:
		set = bson.M{"name": value}
	case core.FieldEmail:
		set = bson.M{"email": value}
	case core.FieldPassword:
		set = bson.M{"password": value}
	case core.FieldContactNumber:
		set = bson.M{"contact_number": value}
	case core.FieldAge:
		var age int
		if _, err := fmt.Sscanf(value, "%d", &age); err != nil {
			return fmt.Errorf("%w: age must be a number", core.ErrValidation)
		}
		set = bson.M{"age": age}
	default:
		return fmt.Errorf("%w: field %q is not updatable", core.ErrValidation, field)
	}

	res, err := repo.coll.UpdateOne(ctx, bson.M{"_id": nric}, bson.M{"$set": set})
	if err != nil {
		return mapErr(err, nil, core.ErrEmailTaken)
	}
	if res.MatchedCount == 0 {
		return core.ErrUserNotFound
	}
	return nil
}

type CustomerRepoMongo struct {
	coll      *mongodrv.Collection
	opTimeout time.Duration
}

func NewCustomerRepo(db *mongodrv.Database, opTimeout time.Duration) *CustomerRepoMongo {
	return &CustomerRepoMongo{coll: db.Collection(ColCustomers), opTimeout: opTimeout}
}

func (repo *CustomerRepoMongo) Create(ctx context.Context, c core.Customer) error {
	ctx, cancel := opCtx(ctx, repo.opTimeout)
	defer cancel()

	_, err := repo.coll.InsertOne(ctx, toCustomerDoc(c))
	return mapErr(err, nil, core.ErrUserExists)
}

func (repo *CustomerRepoMongo) Get(ctx context.Context, customerID string) (core.Customer, error) {
	ctx, cancel := opCtx(ctx, repo.opTimeout)
	defer cancel()

	var doc CustomerDoc
	err := repo.coll.FindOne(ctx, bson.M{"_id": customerID}).Decode(&doc)
	if err != nil {
		return core.Customer{}, mapErr(err, core.ErrCustomerNotFound, nil)
	}
	return fromCustomerDoc(doc), nil
}

func (repo *CustomerRepoMongo) GetByNRIC(ctx context.Context, nric string) (core.Customer, error) {
	ctx, cancel := opCtx(ctx, repo.opTimeout)
	defer cancel()

	var doc CustomerDoc
	err := repo.coll.FindOne(ctx, bson.M{"nric": nric}).Decode(&doc)
	if err != nil {
		return core.Customer{}, mapErr(err, core.ErrCustomerNotFound, nil)
	}
	return fromCustomerDoc(doc), nil
}

func (repo *CustomerRepoMongo) LastID(ctx context.Context) (string, error) {
	ctx, cancel := opCtx(ctx, repo.opTimeout)
	defer cancel()
	return lastID(ctx, repo.coll, bson.M{})
}

type AgentRepoMongo struct {
	coll      *mongodrv.Collection
	purchased *mongodrv.Collection
	opTimeout time.Duration
}

func NewAgentRepo(db *mongodrv.Database, opTimeout time.Duration) *AgentRepoMongo {
	return &AgentRepoMongo{
		coll:      db.Collection(ColAgents),
		purchased: db.Collection(ColPurchased),
		opTimeout: opTimeout,
	}
}

func (repo *AgentRepoMongo) Create(ctx context.Context, a core.Agent) error {
	ctx, cancel := opCtx(ctx, repo.opTimeout)
	defer cancel()

	_, err := repo.coll.InsertOne(ctx, toAgentDoc(a))
	return mapErr(err, nil, core.ErrUserExists)
}

func (repo *AgentRepoMongo) Get(ctx context.Context, agentID string) (core.Agent, error) {
	return repo.findOne(ctx, bson.M{"_id": agentID})
}

func (repo *AgentRepoMongo) GetByNRIC(ctx context.Context, nric string) (core.Agent, error) {
	return repo.findOne(ctx, bson.M{"nric": nric})
}

func (repo *AgentRepoMongo) findOne(ctx context.Context, filter bson.M) (core.Agent, error) {
	ctx, cancel := opCtx(ctx, repo.opTimeout)
	defer cancel()

	var doc AgentDoc
	err := repo.coll.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		return core.Agent{}, mapErr(err, core.ErrAgentNotFound, nil)
	}
	return fromAgentDoc(doc), nil
}

func (repo *AgentRepoMongo) List(ctx context.Context) ([]core.Agent, error) {
	ctx, cancel := opCtx(ctx, repo.opTimeout)
	defer cancel()

	cursor, err := repo.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, mapErr(err, nil, nil)
	}
	defer cursor.Close(ctx)

	var agents []core.Agent
	for cursor.Next(ctx) {
		var doc AgentDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, mapErr(err, nil, nil)
		}
		agents = append(agents, fromAgentDoc(doc))
	}
	return agents, mapErr(cursor.Err(), nil, nil)
}

// RandomActive picks a uniformly random active agent via $sample.
func (repo *AgentRepoMongo) RandomActive(ctx context.Context) (core.Agent, error) {
	ctx, cancel := opCtx(ctx, repo.opTimeout)
	defer cancel()

	pipeline := mongodrv.Pipeline{
		{{Key: "$match", Value: bson.M{"status": string(core.AgentStatusActive)}}},
		{{Key: "$sample", Value: bson.M{"size": 1}}},
	}
	cursor, err := repo.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return core.Agent{}, mapErr(err, nil, nil)
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		if err := cursor.Err(); err != nil {
			return core.Agent{}, mapErr(err, nil, nil)
		}
		return core.Agent{}, core.ErrNoActiveAgents
	}
	var doc AgentDoc
	if err := cursor.Decode(&doc); err != nil {
		return core.Agent{}, mapErr(err, nil, nil)
	}
	return fromAgentDoc(doc), nil
}

func (repo *AgentRepoMongo) SetStatus(ctx context.Context, agentID string, status core.AgentStatus) error {
	ctx, cancel := opCtx(ctx, repo.opTimeout)
	defer cancel()

	res, err := repo.coll.UpdateOne(ctx, bson.M{"_id": agentID},
		bson.M{"$set": bson.M{"status": string(status)}})
	if err != nil {
		return mapErr(err, nil, nil)
	}
	if res.MatchedCount == 0 {
		return core.ErrAgentNotFound
	}
	return nil
}

func (repo *AgentRepoMongo) Delete(ctx context.Context, agentID string) error {
	ctx, cancel := opCtx(ctx, repo.opTimeout)
	defer cancel()

	res, err := repo.coll.DeleteOne(ctx, bson.M{"_id": agentID})
	if err != nil {
		return mapErr(err, nil, nil)
	}
	if res.DeletedCount == 0 {
		return core.ErrAgentNotFound
	}
	return nil
}

func (repo *AgentRepoMongo) LastID(ctx context.Context) (string, error) {
	ctx, cancel := opCtx(ctx, repo.opTimeout)
	defer cancel()
	return lastID(ctx, repo.coll, bson.M{})
}

func (repo *AgentRepoMongo) SumSoldPremiums(ctx context.Context, agentID string) (float64, error) {
	ctx, cancel := opCtx(ctx, repo.opTimeout)
	defer cancel()

	pipeline := mongodrv.Pipeline{
		{{Key: "$match", Value: bson.M{"agent_id": agentID}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$premium"}}}},
	}
	cursor, err := repo.purchased.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, mapErr(err, nil, nil)
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		return 0, mapErr(cursor.Err(), nil, nil)
	}
	var result struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.Decode(&result); err != nil {
		return 0, mapErr(err, nil, nil)
	}
	return result.Total, nil
}

// lastID returns the lexically-highest _id, longest first so timestamp
// fallback IDs sort after padded sequential ones. "" when empty.
func lastID(ctx context.Context, coll *mongodrv.Collection, filter bson.M) (string, error) {
	pipeline := mongodrv.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$addFields", Value: bson.M{"id_len": bson.M{"$strLenCP": "$_id"}}}},
		{{Key: "$sort", Value: bson.D{{Key: "id_len", Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$limit", Value: 1}},
		{{Key: "$project", Value: bson.M{"_id": 1}}},
	}
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return "", mapErr(err, nil, nil)
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		return "", mapErr(cursor.Err(), nil, nil)
	}
	var doc struct {
		ID string `bson:"_id"`
	}
	if err := cursor.Decode(&doc); err != nil {
		return "", mapErr(err, nil, nil)
	}
	return doc.ID, nil
}
