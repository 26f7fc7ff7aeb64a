package core

import (
	"context"
	"sort"
	"time"
)

// In-memory repo fakes backing the service tests. Each fake mirrors the store
// semantics that matter to the services: sentinel errors, last-ID ordering
// (longest ID first, then lexicographic) and per-method error injection. The
// fake transaction runner snapshots every participating fake and restores the
// snapshots when the wrapped function fails, so atomicity checks observe real
// rollback.

func maxID(ids []string) string {
	if len(ids) == 0 {
		return ""
	}
	sort.Slice(ids, func(i, j int) bool {
		if len(ids[i]) != len(ids[j]) {
			return len(ids[i]) > len(ids[j])
		}
		return ids[i] > ids[j]
	})
	return ids[0]
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

type snapshotter interface {
	snapshot() func()
}

type fakeTx struct {
	stores   []snapshotter
	beginErr error
}

func (t *fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if t.beginErr != nil {
		return t.beginErr
	}
	restores := make([]func(), 0, len(t.stores))
	for _, s := range t.stores {
		restores = append(restores, s.snapshot())
	}
	if err := fn(ctx); err != nil {
		for _, restore := range restores {
			restore()
		}
		return err
	}
	return nil
}

type fakeUserRepo struct {
	users     map[string]User
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]User)}
}

func (r *fakeUserRepo) snapshot() func() {
	saved := copyMap(r.users)
	return func() { r.users = saved }
}

func (r *fakeUserRepo) Create(_ context.Context, u User) error {
	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.users[u.NRIC]; ok {
		return ErrUserExists
	}
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return ErrEmailTaken
		}
	}
	r.users[u.NRIC] = u
	return nil
}

func (r *fakeUserRepo) Get(_ context.Context, nric string) (User, error) {
	u, ok := r.users[nric]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (r *fakeUserRepo) UpdateProfileField(_ context.Context, nric string, field ProfileField, value string) error {
	u, ok := r.users[nric]
	if !ok {
		return ErrUserNotFound
	}
	switch field {
	case FieldName:
		u.Name = value
	case FieldEmail:
		u.Email = value
	case FieldPassword:
		u.PasswordHash = value
	case FieldContactNumber:
		u.ContactNumber = value
	}
	r.users[nric] = u
	return nil
}

type fakeCustomerRepo struct {
	customers map[string]Customer
	lastIDErr error
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{customers: make(map[string]Customer)}
}

func (r *fakeCustomerRepo) snapshot() func() {
	saved := copyMap(r.customers)
	return func() { r.customers = saved }
}

func (r *fakeCustomerRepo) Create(_ context.Context, c Customer) error {
	if _, ok := r.customers[c.CustomerID]; ok {
		return ErrConflict
	}
	r.customers[c.CustomerID] = c
	return nil
}

func (r *fakeCustomerRepo) Get(_ context.Context, customerID string) (Customer, error) {
	c, ok := r.customers[customerID]
	if !ok {
		return Customer{}, ErrCustomerNotFound
	}
	return c, nil
}

func (r *fakeCustomerRepo) GetByNRIC(_ context.Context, nric string) (Customer, error) {
	for _, c := range r.customers {
		if c.NRIC == nric {
			return c, nil
		}
	}
	return Customer{}, ErrCustomerNotFound
}

func (r *fakeCustomerRepo) LastID(_ context.Context) (string, error) {
	if r.lastIDErr != nil {
		return "", r.lastIDErr
	}
	ids := make([]string, 0, len(r.customers))
	for id := range r.customers {
		ids = append(ids, id)
	}
	return maxID(ids), nil
}

type fakeAgentRepo struct {
	agents       map[string]Agent
	soldPremiums map[string]float64
	randomErr    error
}

func newFakeAgentRepo(agents ...Agent) *fakeAgentRepo {
	r := &fakeAgentRepo{
		agents:       make(map[string]Agent),
		soldPremiums: make(map[string]float64),
	}
	for _, a := range agents {
		r.agents[a.AgentID] = a
	}
	return r
}

func (r *fakeAgentRepo) snapshot() func() {
	saved := copyMap(r.agents)
	return func() { r.agents = saved }
}

func (r *fakeAgentRepo) Create(_ context.Context, a Agent) error {
	if _, ok := r.agents[a.AgentID]; ok {
		return ErrConflict
	}
	r.agents[a.AgentID] = a
	return nil
}

func (r *fakeAgentRepo) Get(_ context.Context, agentID string) (Agent, error) {
	a, ok := r.agents[agentID]
	if !ok {
		return Agent{}, ErrAgentNotFound
	}
	return a, nil
}

func (r *fakeAgentRepo) GetByNRIC(_ context.Context, nric string) (Agent, error) {
	for _, a := range r.agents {
		if a.NRIC == nric {
			return a, nil
		}
	}
	return Agent{}, ErrAgentNotFound
}

func (r *fakeAgentRepo) List(_ context.Context) ([]Agent, error) {
	out := make([]Agent, 0, len(r.agents))
	for _, a := range r.agents {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AgentID < out[j].AgentID })
	return out, nil
}

// RandomActive picks the lowest active agent ID so tests stay deterministic.
func (r *fakeAgentRepo) RandomActive(_ context.Context) (Agent, error) {
	if r.randomErr != nil {
		return Agent{}, r.randomErr
	}
	var active []string
	for id, a := range r.agents {
		if a.Status == AgentStatusActive {
			active = append(active, id)
		}
	}
	if len(active) == 0 {
		return Agent{}, ErrNoActiveAgents
	}
	sort.Strings(active)
	return r.agents[active[0]], nil
}

func (r *fakeAgentRepo) SetStatus(_ context.Context, agentID string, status AgentStatus) error {
	a, ok := r.agents[agentID]
	if !ok {
		return ErrAgentNotFound
	}
	a.Status = status
	r.agents[agentID] = a
	return nil
}

func (r *fakeAgentRepo) Delete(_ context.Context, agentID string) error {
	if _, ok := r.agents[agentID]; !ok {
		return ErrAgentNotFound
	}
	delete(r.agents, agentID)
	return nil
}

func (r *fakeAgentRepo) LastID(_ context.Context) (string, error) {
	ids := make([]string, 0, len(r.agents))
	for id := range r.agents {
		ids = append(ids, id)
	}
	return maxID(ids), nil
}

func (r *fakeAgentRepo) SumSoldPremiums(_ context.Context, agentID string) (float64, error) {
	return r.soldPremiums[agentID], nil
}

type fakePackageRepo struct {
	packages  map[string]PolicyPackage
	details   map[string]PolicyDetails
	createErr error
	detailErr error
}

func newFakePackageRepo(packages ...PolicyPackage) *fakePackageRepo {
	r := &fakePackageRepo{
		packages: make(map[string]PolicyPackage),
		details:  make(map[string]PolicyDetails),
	}
	for _, p := range packages {
		r.packages[p.PolicyID] = p
	}
	return r
}

func (r *fakePackageRepo) snapshot() func() {
	savedPkgs, savedDetails := copyMap(r.packages), copyMap(r.details)
	return func() { r.packages, r.details = savedPkgs, savedDetails }
}

func (r *fakePackageRepo) Create(_ context.Context, p PolicyPackage) error {
	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.packages[p.PolicyID]; ok {
		return ErrPackageExists
	}
	r.packages[p.PolicyID] = p
	return nil
}

func (r *fakePackageRepo) Get(_ context.Context, policyID string) (PolicyPackage, error) {
	p, ok := r.packages[policyID]
	if !ok {
		return PolicyPackage{}, ErrPackageNotFound
	}
	return p, nil
}

func (r *fakePackageRepo) List(_ context.Context) ([]PolicyPackage, error) {
	out := make([]PolicyPackage, 0, len(r.packages))
	for _, p := range r.packages {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PolicyID < out[j].PolicyID })
	return out, nil
}

func (r *fakePackageRepo) ListPrepared(_ context.Context, t PolicyType) ([]PolicyPackage, error) {
	var out []PolicyPackage
	for _, p := range r.packages {
		if p.PolicyType == t && p.PolicyPlan != PlanCustom {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PolicyID < out[j].PolicyID })
	return out, nil
}

func (r *fakePackageRepo) UpdateField(_ context.Context, policyID string, field PackageField, value string) error {
	if _, ok := r.packages[policyID]; !ok {
		return ErrPackageNotFound
	}
	return nil
}

func (r *fakePackageRepo) Delete(_ context.Context, policyID string) error {
	if _, ok := r.packages[policyID]; !ok {
		return ErrPackageNotFound
	}
	delete(r.packages, policyID)
	return nil
}

func (r *fakePackageRepo) LastIDByPrefix(_ context.Context, prefix string) (string, error) {
	var ids []string
	for id := range r.packages {
		if len(id) > len(prefix) && id[:len(prefix)] == prefix {
			ids = append(ids, id)
		}
	}
	return maxID(ids), nil
}

func (r *fakePackageRepo) CreateDetails(_ context.Context, policyID, _ string, d PolicyDetails) error {
	if r.detailErr != nil {
		return r.detailErr
	}
	r.details[policyID] = d
	return nil
}

func (r *fakePackageRepo) GetDetails(_ context.Context, policyID string, _ PolicyType) (PolicyDetails, error) {
	d, ok := r.details[policyID]
	if !ok {
		return nil, ErrDetailsNotFound
	}
	return d, nil
}

type fakePurchasedRepo struct {
	policies  map[string]PurchasedPolicy
	payments  *fakePaymentRepo // for ListPayable; nil means nothing is paid
	createErr error
	updateErr error
}

func newFakePurchasedRepo() *fakePurchasedRepo {
	return &fakePurchasedRepo{policies: make(map[string]PurchasedPolicy)}
}

func purchasedKey(customerID, policyID string) string {
	return customerID + "/" + policyID
}

func (r *fakePurchasedRepo) snapshot() func() {
	saved := copyMap(r.policies)
	return func() { r.policies = saved }
}

func (r *fakePurchasedRepo) Create(_ context.Context, p PurchasedPolicy) error {
	if r.createErr != nil {
		return r.createErr
	}
	key := purchasedKey(p.CustomerID, p.PolicyID)
	if _, ok := r.policies[key]; ok {
		return ErrPolicyExists
	}
	r.policies[key] = p
	return nil
}

func (r *fakePurchasedRepo) Get(_ context.Context, customerID, policyID string) (PurchasedPolicy, error) {
	p, ok := r.policies[purchasedKey(customerID, policyID)]
	if !ok {
		return PurchasedPolicy{}, ErrPolicyNotFound
	}
	return p, nil
}

func (r *fakePurchasedRepo) ListByCustomer(_ context.Context, customerID string) ([]PurchasedPolicy, error) {
	var out []PurchasedPolicy
	for _, p := range r.policies {
		if p.CustomerID == customerID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PolicyID < out[j].PolicyID })
	return out, nil
}

func (r *fakePurchasedRepo) ListByAgent(_ context.Context, agentID string) ([]PurchasedPolicy, error) {
	var out []PurchasedPolicy
	for _, p := range r.policies {
		if p.AgentID == agentID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePurchasedRepo) ListByStatus(_ context.Context, status PolicyStatus) ([]PurchasedPolicy, error) {
	var out []PurchasedPolicy
	for _, p := range r.policies {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePurchasedRepo) UpdateStatus(_ context.Context, customerID, policyID string, status PolicyStatus) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	key := purchasedKey(customerID, policyID)
	p, ok := r.policies[key]
	if !ok {
		return ErrPolicyNotFound
	}
	p.Status = status
	r.policies[key] = p
	return nil
}

func (r *fakePurchasedRepo) ListPayable(ctx context.Context, customerID string) ([]PurchasedPolicy, error) {
	var out []PurchasedPolicy
	for _, p := range r.policies {
		if p.CustomerID != customerID || p.Status != PolicyStatusAccepted {
			continue
		}
		if r.payments != nil {
			paid, err := r.payments.HasCompleted(ctx, p.CustomerID, p.PolicyID)
			if err != nil {
				return nil, err
			}
			if paid {
				continue
			}
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PolicyID < out[j].PolicyID })
	return out, nil
}

func (r *fakePurchasedRepo) ExpireEnded(_ context.Context, before time.Time) (int64, error) {
	var n int64
	for key, p := range r.policies {
		if p.Status.Terminal() || p.Status == PolicyStatusRequested {
			continue
		}
		if p.EndDate.Before(before) {
			p.Status = PolicyStatusExpired
			r.policies[key] = p
			n++
		}
	}
	return n, nil
}

type fakeCustomRepo struct {
	policies  map[string]CustomPolicy
	createErr error
	updateErr error
}

func newFakeCustomRepo() *fakeCustomRepo {
	return &fakeCustomRepo{policies: make(map[string]CustomPolicy)}
}

func (r *fakeCustomRepo) snapshot() func() {
	saved := copyMap(r.policies)
	return func() { r.policies = saved }
}

func (r *fakeCustomRepo) Create(_ context.Context, p CustomPolicy) error {
	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.policies[p.PolicyID]; ok {
		return ErrConflict
	}
	r.policies[p.PolicyID] = p
	return nil
}

func (r *fakeCustomRepo) Get(_ context.Context, policyID string) (CustomPolicy, error) {
	p, ok := r.policies[policyID]
	if !ok {
		return CustomPolicy{}, ErrCustomNotFound
	}
	return p, nil
}

func (r *fakeCustomRepo) ListPending(_ context.Context) ([]CustomPolicy, error) {
	var out []CustomPolicy
	for _, p := range r.policies {
		if p.Status == PolicyStatusRequested {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PolicyID < out[j].PolicyID })
	return out, nil
}

func (r *fakeCustomRepo) ListByCustomer(_ context.Context, customerID string) ([]CustomPolicy, error) {
	var out []CustomPolicy
	for _, p := range r.policies {
		if p.CustomerID == customerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeCustomRepo) UpdateStatus(_ context.Context, policyID string, status PolicyStatus) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	p, ok := r.policies[policyID]
	if !ok {
		return ErrCustomNotFound
	}
	p.Status = status
	r.policies[policyID] = p
	return nil
}

type fakeClaimRepo struct {
	claims    map[string]Claim
	lastIDErr error
}

func newFakeClaimRepo() *fakeClaimRepo {
	return &fakeClaimRepo{claims: make(map[string]Claim)}
}

func (r *fakeClaimRepo) snapshot() func() {
	saved := copyMap(r.claims)
	return func() { r.claims = saved }
}

func (r *fakeClaimRepo) Create(_ context.Context, c Claim) error {
	if _, ok := r.claims[c.ClaimID]; ok {
		return ErrConflict
	}
	r.claims[c.ClaimID] = c
	return nil
}

func (r *fakeClaimRepo) Get(_ context.Context, claimID string) (Claim, error) {
	c, ok := r.claims[claimID]
	if !ok {
		return Claim{}, ErrClaimNotFound
	}
	return c, nil
}

func (r *fakeClaimRepo) ListPending(_ context.Context) ([]Claim, error) {
	var out []Claim
	for _, c := range r.claims {
		if c.Status == ClaimStatusPending {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateFiled.Before(out[j].DateFiled) })
	return out, nil
}

func (r *fakeClaimRepo) ListByCustomer(_ context.Context, customerID string) ([]Claim, error) {
	var out []Claim
	for _, c := range r.claims {
		if c.CustomerID == customerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeClaimRepo) Decide(_ context.Context, claimID string, status ClaimStatus, details string) error {
	c, ok := r.claims[claimID]
	if !ok {
		return ErrClaimNotFound
	}
	c.Status = status
	c.Details = details
	r.claims[claimID] = c
	return nil
}

func (r *fakeClaimRepo) LastID(_ context.Context) (string, error) {
	if r.lastIDErr != nil {
		return "", r.lastIDErr
	}
	ids := make([]string, 0, len(r.claims))
	for id := range r.claims {
		ids = append(ids, id)
	}
	return maxID(ids), nil
}

type fakePaymentRepo struct {
	payments  map[string]Payment
	createErr error
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[string]Payment)}
}

func (r *fakePaymentRepo) snapshot() func() {
	saved := copyMap(r.payments)
	return func() { r.payments = saved }
}

func (r *fakePaymentRepo) Create(_ context.Context, p Payment) error {
	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.payments[p.PaymentID]; ok {
		return ErrConflict
	}
	r.payments[p.PaymentID] = p
	return nil
}

func (r *fakePaymentRepo) Get(_ context.Context, paymentID string) (Payment, error) {
	p, ok := r.payments[paymentID]
	if !ok {
		return Payment{}, ErrPaymentNotFound
	}
	return p, nil
}

func (r *fakePaymentRepo) ListByCustomer(_ context.Context, customerID string) ([]Payment, error) {
	var out []Payment
	for _, p := range r.payments {
		if p.CustomerID == customerID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaymentID < out[j].PaymentID })
	return out, nil
}

func (r *fakePaymentRepo) HasCompleted(_ context.Context, customerID, policyID string) (bool, error) {
	for _, p := range r.payments {
		if p.CustomerID == customerID && p.PolicyID == policyID && p.Status == PaymentStatusCompleted {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakePaymentRepo) LastID(_ context.Context) (string, error) {
	ids := make([]string, 0, len(r.payments))
	for id := range r.payments {
		ids = append(ids, id)
	}
	return maxID(ids), nil
}
