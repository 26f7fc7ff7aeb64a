package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	if err := ensureUsersIndexes(ctx, db); err != nil {
		return fmt.Errorf("ensure users indexes: %w", err)
	}
	if err := ensureAccountIndexes(ctx, db); err != nil {
		return fmt.Errorf("ensure account indexes: %w", err)
	}
	if err := ensurePolicyIndexes(ctx, db); err != nil {
		return fmt.Errorf("ensure policy indexes: %w", err)
	}
	if err := ensureClaimsIndexes(ctx, db); err != nil {
		return fmt.Errorf("ensure claims indexes: %w", err)
	}
	if err := ensurePaymentsIndexes(ctx, db); err != nil {
		return fmt.Errorf("ensure payments indexes: %w", err)
	}
	return nil
}

func ensureUsersIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(ColUsers)
	models := []mongo.IndexModel{
		newIndex("email", 1, "users_email_unique", true),
		newIndex("role", 1, "users_role", false),
	}
	_, err := coll.Indexes().CreateMany(ctx, models)
	return err
}

func ensureAccountIndexes(ctx context.Context, db *mongo.Database) error {
	if _, err := db.Collection(ColCustomers).Indexes().CreateMany(ctx, []mongo.IndexModel{
		newIndex("nric", 1, "customers_nric_unique", true),
	}); err != nil {
		return err
	}
	_, err := db.Collection(ColAgents).Indexes().CreateMany(ctx, []mongo.IndexModel{
		newIndex("nric", 1, "agents_nric_unique", true),
		newIndex("status", 1, "agents_status", false),
	})
	return err
}

func ensurePolicyIndexes(ctx context.Context, db *mongo.Database) error {
	if _, err := db.Collection(ColPackages).Indexes().CreateMany(ctx, []mongo.IndexModel{
		newIndex("policy_type", 1, "packages_type", false),
	}); err != nil {
		return err
	}
	if _, err := db.Collection(ColPurchased).Indexes().CreateMany(ctx, []mongo.IndexModel{
		newIndex("customer_id", 1, "purchased_customer", false),
		newIndex("agent_id", 1, "purchased_agent", false),
		newIndex("status", 1, "purchased_status", false),
	}); err != nil {
		return err
	}
	_, err := db.Collection(ColCustom).Indexes().CreateMany(ctx, []mongo.IndexModel{
		newIndex("customer_id", 1, "custom_customer", false),
		newIndex("status", 1, "custom_status", false),
	})
	return err
}

func ensureClaimsIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(ColClaims).Indexes().CreateMany(ctx, []mongo.IndexModel{
		newIndex("customer_id", 1, "claims_customer", false),
		newIndex("status", 1, "claims_status", false),
	})
	return err
}

func ensurePaymentsIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(ColPayments).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "customer_id", Value: 1}, {Key: "policy_id", Value: 1}},
			Options: options.Index().SetName("payments_policy"),
		},
	})
	return err
}

func newIndex(field string, asc int32, name string, unique bool) mongo.IndexModel {
	opts := options.Index().SetName(name)
	if unique {
		opts = opts.SetUnique(true)
	}
	return mongo.IndexModel{
		Keys:    bson.D{{Key: field, Value: asc}},
		Options: opts,
	}
}
