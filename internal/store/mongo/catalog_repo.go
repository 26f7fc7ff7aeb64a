package mongo

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/insurance4you/agency/internal/core"
)

type PackageRepoMongo struct {
	db        *mongodrv.Database
	coll      *mongodrv.Collection
	opTimeout time.Duration
}

func NewPackageRepo(db *mongodrv.Database, opTimeout time.Duration) *PackageRepoMongo {
	return &PackageRepoMongo{db: db, coll: db.Collection(ColPackages), opTimeout: opTimeout}
}

func (repo *PackageRepoMongo) Create(ctx context.Context, p core.PolicyPackage) error {
	ctx, cancel := opCtx(ctx, repo.opTimeout)
	defer cancel()

	_, err := repo.coll.InsertOne(ctx, toPackageDoc(p))
	return mapErr(err, nil, core.ErrPackageExists)
}

func (repo *PackageRepoMongo) Get(ctx context.Context, policyID string) (core.PolicyPackage, error) {
	ctx, cancel := opCtx(ctx, repo.opTimeout)
	defer cancel()

	var doc PackageDoc
	err := repo.coll.FindOne(ctx, bson.M{"_id": policyID}).Decode(&doc)
	if err != nil {
		return core.PolicyPackage{}, mapErr(err, core.ErrPackageNotFound, nil)
	}
	return fromPackageDoc(doc), nil
}

func (repo *PackageRepoMongo) List(ctx context.Context) ([]core.PolicyPackage, error) {
	return repo.find(ctx, bson.M{})
}

func (repo *PackageRepoMongo) ListPrepared(ctx context.Context, t core.PolicyType) ([]core.PolicyPackage, error) {
	return repo.find(ctx, bson.M{
		"policy_type": string(t),
		"policy_plan": bson.M{"$ne": string(core.PlanCustom)},
	})
}

func (repo *PackageRepoMongo) find(ctx context.Context, filter bson.M) ([]core.PolicyPackage, error) {
	ctx, cancel := opCtx(ctx, repo.opTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := repo.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, mapErr(err, nil, nil)
	}
	defer cursor.Close(ctx)

	var packages []core.PolicyPackage
	for cursor.Next(ctx) {
		var doc PackageDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, mapErr(err, nil, nil)
		}
		packages = append(packages, fromPackageDoc(doc))
	}
	return packages, mapErr(cursor.Err(), nil, nil)
}

func (repo *PackageRepoMongo) UpdateField(ctx context.Context, policyID string, field core.PackageField, value string) error {
	ctx, cancel := opCtx(ctx, repo.opTimeout)
	defer cancel()

	var set bson.M
	switch field {
	case core.PackageFieldPlan:
		set = bson.M{"policy_plan": value}
	case core.PackageFieldPremium, core.PackageFieldCoverage:
		amount, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %s must be a number", core.ErrValidation, field)
		}
		set = bson.M{string(field): amount}
	default:
		return fmt.Errorf("%w: field %q is not updatable", core.ErrValidation, field)
	}

	res, err := repo.coll.UpdateOne(ctx, bson.M{"_id": policyID}, bson.M{"$set": set})
	if err != nil {
		return mapErr(err, nil, nil)
	}
	if res.MatchedCount == 0 {
		return core.ErrPackageNotFound
	}
	return nil
}

func (repo *PackageRepoMongo) Delete(ctx context.Context, policyID string) error {
	ctx, cancel := opCtx(ctx, repo.opTimeout)
	defer cancel()

	res, err := repo.coll.DeleteOne(ctx, bson.M{"_id": policyID})
	if err != nil {
		return mapErr(err, nil, nil)
	}
	if res.DeletedCount == 0 {
		return core.ErrPackageNotFound
	}
	return nil
}

func (repo *PackageRepoMongo) LastIDByPrefix(ctx context.Context, prefix string) (string, error) {
	ctx, cancel := opCtx(ctx, repo.opTimeout)
	defer cancel()
	return lastID(ctx, repo.coll, bson.M{"_id": bson.M{"$regex": "^" + prefix}})
}

func (repo *PackageRepoMongo) CreateDetails(ctx context.Context, policyID, customerID string, d core.PolicyDetails) error {
	ctx, cancel := opCtx(ctx, repo.opTimeout)
	defer cancel()

	var (
		coll *mongodrv.Collection
		doc  any
	)
	switch v := d.(type) {
	case core.LifeDetails:
		coll = repo.db.Collection(ColLifeDetails)
		doc = LifeDetailsDoc{
			PolicyID:        policyID,
			CustomerID:      customerID,
			BeneficiaryName: v.BeneficiaryName,
			DeathBenefit:    v.DeathBenefit,
			MedicalHistory:  v.MedicalHistory,
		}
	case core.VehicleDetails:
		coll = repo.db.Collection(ColVehicleDetails)
		doc = VehicleDetailsDoc{
			PolicyID:            policyID,
			CustomerID:          customerID,
			VehicleType:         v.VehicleType,
			VehicleValue:        v.VehicleValue,
			VehicleAge:          v.VehicleAge,
			VehicleRegistration: v.VehicleRegistration,
			AccidentCoverage:    v.AccidentCoverage,
		}
	case core.PropertyDetails:
		coll = repo.db.Collection(ColPropertyDetails)
		doc = PropertyDetailsDoc{
			PolicyID:        policyID,
			CustomerID:      customerID,
			PropertyAddress: v.PropertyAddress,
			PropertyType:    v.PropertyType,
			PropertyValue:   v.PropertyValue,
			PropertyAge:     v.PropertyAge,
		}
	case core.HealthDetails:
		coll = repo.db.Collection(ColHealthDetails)
		doc = HealthDetailsDoc{
			PolicyID:       policyID,
			CustomerID:     customerID,
			CoverageType:   v.CoverageType,
			MedicalHistory: v.MedicalHistory,
			Deductible:     v.Deductible,
			Copayment:      v.Copayment,
		}
	default:
		return fmt.Errorf("%w: unknown policy details variant %T", core.ErrValidation, d)
	}

	_, err := coll.InsertOne(ctx, doc)
	return mapErr(err, nil, core.ErrPackageExists)
}

func (repo *PackageRepoMongo) GetDetails(ctx context.Context, policyID string, t core.PolicyType) (core.PolicyDetails, error) {
	ctx, cancel := opCtx(ctx, repo.opTimeout)
	defer cancel()

	filter := bson.M{"_id": policyID}
	switch t {
	case core.PolicyTypeLife:
		var doc LifeDetailsDoc
		if err := repo.db.Collection(ColLifeDetails).FindOne(ctx, filter).Decode(&doc); err != nil {
			return nil, mapErr(err, core.ErrDetailsNotFound, nil)
		}
		return core.LifeDetails{
			BeneficiaryName: doc.BeneficiaryName,
			DeathBenefit:    doc.DeathBenefit,
			MedicalHistory:  doc.MedicalHistory,
		}, nil
	case core.PolicyTypeVehicle:
		var doc VehicleDetailsDoc
		if err := repo.db.Collection(ColVehicleDetails).FindOne(ctx, filter).Decode(&doc); err != nil {
			return nil, mapErr(err, core.ErrDetailsNotFound, nil)
		}
		return core.VehicleDetails{
			VehicleType:         doc.VehicleType,
			VehicleValue:        doc.VehicleValue,
			VehicleAge:          doc.VehicleAge,
			VehicleRegistration: doc.VehicleRegistration,
			AccidentCoverage:    doc.AccidentCoverage,
		}, nil
	case core.PolicyTypeProperty:
		var doc PropertyDetailsDoc
		if err := repo.db.Collection(ColPropertyDetails).FindOne(ctx, filter).Decode(&doc); err != nil {
			return nil, mapErr(err, core.ErrDetailsNotFound, nil)
		}
		return core.PropertyDetails{
			PropertyAddress: doc.PropertyAddress,
			PropertyType:    doc.PropertyType,
			PropertyValue:   doc.PropertyValue,
			PropertyAge:     doc.PropertyAge,
		}, nil
	case core.PolicyTypeHealth:
		var doc HealthDetailsDoc
		if err := repo.db.Collection(ColHealthDetails).FindOne(ctx, filter).Decode(&doc); err != nil {
			return nil, mapErr(err, core.ErrDetailsNotFound, nil)
		}
		return core.HealthDetails{
			CoverageType:   doc.CoverageType,
			MedicalHistory: doc.MedicalHistory,
			Deductible:     doc.Deductible,
			Copayment:      doc.Copayment,
		}, nil
	}
	return nil, fmt.Errorf("%w: unknown policy type %q", core.ErrValidation, t)
}
