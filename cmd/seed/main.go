package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/insurance4you/agency/internal/core"
	"github.com/insurance4you/agency/internal/platform/config"
	"github.com/insurance4you/agency/internal/platform/logging"
	"github.com/insurance4you/agency/internal/store/mongo"
	"github.com/insurance4you/agency/internal/store/postgres"
)

// Seeds the catalog with prepared packages and creates demo accounts
// (one administrator, two agents, two customers). Safe to re-run;
// already-seeded records are skipped.
func main() {
	cfg := config.MustLoad()
	log := logging.New(cfg.Env)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users, customers, agents, packages, tx, closeFn, err := openRepos(ctx, cfg)
	if err != nil {
		log.Error("failed to open store", "db_type", cfg.DBType, "err", err)
		return
	}
	defer closeFn(ctx)

	log.Info("seeding catalog packages")
	seedPackages(ctx, log, packages)

	log.Info("seeding demo accounts")
	seedAccounts(ctx, log, users, customers, agents, tx)

	log.Info("done seeding")
}

func openRepos(ctx context.Context, cfg *config.Config) (
	core.UserRepo, core.CustomerRepo, core.AgentRepo, core.PackageRepo, core.TxRunner,
	func(context.Context) error, error,
) {
	opTimeout := 5 * time.Second

	if cfg.DBType == "mongo" {
		client, err := mongo.NewClient(cfg)
		if err != nil {
			return nil, nil, nil, nil, nil, nil, err
		}
		if err := mongo.EnsureIndexes(ctx, client.DB); err != nil {
			_ = client.Close(ctx)
			return nil, nil, nil, nil, nil, nil, err
		}
		return mongo.NewUserRepo(client.DB, opTimeout),
			mongo.NewCustomerRepo(client.DB, opTimeout),
			mongo.NewAgentRepo(client.DB, opTimeout),
			mongo.NewPackageRepo(client.DB, opTimeout),
			mongo.NewTxRunner(client.Client),
			client.Close, nil
	}

	client, err := postgres.NewClient(cfg)
	if err != nil {
		return nil, nil, nil, nil, nil, nil, err
	}
	if err := client.EnsureSchema(ctx); err != nil {
		_ = client.Close(ctx)
		return nil, nil, nil, nil, nil, nil, err
	}
	return postgres.NewUserRepo(client.DB, opTimeout),
		postgres.NewCustomerRepo(client.DB, opTimeout),
		postgres.NewAgentRepo(client.DB, opTimeout),
		postgres.NewPackageRepo(client.DB, opTimeout),
		postgres.NewTxRunner(client.DB),
		client.Close, nil
}

func seedPackages(ctx context.Context, log *slog.Logger, repo core.PackageRepo) {
	packages := []core.PolicyPackage{
		{PolicyID: "L001", PolicyType: core.PolicyTypeLife, PolicyPlan: core.PlanStandard,
			CoverageAmount: 100000, Premium: 180.00,
			CustomData: "Beneficiary: To be nominated, Medical History: none"},
		{PolicyID: "L002", PolicyType: core.PolicyTypeLife, PolicyPlan: core.PlanPremium,
			CoverageAmount: 500000, Premium: 945.00,
			CustomData: "Beneficiary: To be nominated, Medical History: none"},
		{PolicyID: "V001", PolicyType: core.PolicyTypeVehicle, PolicyPlan: core.PlanStandard,
			CoverageAmount: 50000, Premium: 2625.00,
			CustomData: "Vehicle Type: Sedan, Vehicle Value: RM50000"},
		{PolicyID: "V002", PolicyType: core.PolicyTypeVehicle, PolicyPlan: core.PlanPremium,
			CoverageAmount: 120000, Premium: 7920.00,
			CustomData: "Vehicle Type: SUV, Vehicle Value: RM120000"},
		{PolicyID: "H001", PolicyType: core.PolicyTypeHealth, PolicyPlan: core.PlanStandard,
			CoverageAmount: 30000, Premium: 1054.58,
			CustomData: "Coverage Type: BASIC, Medical History: none"},
		{PolicyID: "H002", PolicyType: core.PolicyTypeHealth, PolicyPlan: core.PlanPremium,
			CoverageAmount: 80000, Premium: 4212.00,
			CustomData: "Coverage Type: COMPREHENSIVE, Medical History: none"},
		{PolicyID: "P001", PolicyType: core.PolicyTypeProperty, PolicyPlan: core.PlanStandard,
			CoverageAmount: 400000, Premium: 1738.80,
			CustomData: "Property Type: residential, Property Value: RM400000"},
		{PolicyID: "P002", PolicyType: core.PolicyTypeProperty, PolicyPlan: core.PlanPremium,
			CoverageAmount: 900000, Premium: 5416.20,
			CustomData: "Property Type: commercial, Property Value: RM900000"},
	}

	for _, p := range packages {
		err := repo.Create(ctx, p)
		switch {
		case errors.Is(err, core.ErrConflict):
			log.Info("package already seeded", "policy_id", p.PolicyID)
		case err != nil:
			log.Error("failed to seed package", "policy_id", p.PolicyID, "err", err)
		default:
			log.Info("seeded package", "policy_id", p.PolicyID)
		}
	}
}

type seedAccount struct {
	user     core.User
	customer *core.Customer
	agent    *core.Agent
}

func seedAccounts(ctx context.Context, log *slog.Logger,
	users core.UserRepo, customers core.CustomerRepo, agents core.AgentRepo, tx core.TxRunner,
) {
	accounts := []seedAccount{
		{
			user: core.User{NRIC: "900101015000", Role: core.RoleAdministrator,
				Name: "Alia Rahman", Email: "admin@insurance4you.example", Age: 41},
		},
		{
			user: core.User{NRIC: "850215045111", Role: core.RoleAgent,
				Name: "Marcus Tan", Email: "marcus.tan@insurance4you.example", Age: 39},
			agent: &core.Agent{AgentID: "AG01", NRIC: "850215045111",
				Qualification: "CFP", CommissionRate: 7.5, Status: core.AgentStatusActive},
		},
		{
			user: core.User{NRIC: "910712085222", Role: core.RoleAgent,
				Name: "Siti Noor", Email: "siti.noor@insurance4you.example", Age: 33},
			agent: &core.Agent{AgentID: "AG02", NRIC: "910712085222",
				Qualification: "ChFC", CommissionRate: 6.0, Status: core.AgentStatusActive},
		},
		{
			user: core.User{NRIC: "950505105333", Role: core.RoleCustomer,
				Name: "Daniel Lim", Email: "daniel.lim@example.com", Age: 30},
			customer: &core.Customer{CustomerID: "C01", NRIC: "950505105333",
				Occupation: "Engineer", Income: 85000},
		},
		{
			user: core.User{NRIC: "880830125444", Role: core.RoleCustomer,
				Name: "Priya Nair", Email: "priya.nair@example.com", Age: 37},
			customer: &core.Customer{CustomerID: "C02", NRIC: "880830125444",
				Occupation: "Pharmacist", Income: 98000},
		},
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("changeme123"), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to hash demo password", "err", err)
		return
	}

	for _, acc := range accounts {
		acc.user.PasswordHash = string(hash)
		acc.user.CreatedAt = time.Now()

		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			if err := users.Create(ctx, acc.user); err != nil {
				return err
			}
			if acc.customer != nil {
				return customers.Create(ctx, *acc.customer)
			}
			if acc.agent != nil {
				return agents.Create(ctx, *acc.agent)
			}
			return nil
		})
		switch {
		case errors.Is(err, core.ErrConflict):
			log.Info("account already seeded", "nric", acc.user.NRIC)
		case err != nil:
			log.Error("failed to seed account", "nric", acc.user.NRIC, "err", err)
		default:
			log.Info("seeded account", "name", acc.user.Name, "role", acc.user.Role)
		}
	}
}
