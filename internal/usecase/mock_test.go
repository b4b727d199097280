//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"stockus-platform/internal/domain"
	"stockus-platform/internal/domain/model"
	"stockus-platform/internal/domain/ports/adapter"
	"stockus-platform/internal/domain/ports/repository"
)

// ---- Mock PaymentRepo ----

type MockPaymentRepo struct {
	mu    sync.RWMutex
	store map[string]*model.PaymentRecord // by ID

	CreateFunc            func(ctx context.Context, tx repository.Tx, p *model.PaymentRecord) error
	ApplyNotificationFunc func(ctx context.Context, tx repository.Tx, id string, upd repository.NotificationUpdate) error
}

var _ repository.PaymentRepository = (*MockPaymentRepo)(nil)

func NewMockPaymentRepo() *MockPaymentRepo {
	return &MockPaymentRepo{store: make(map[string]*model.PaymentRecord)}
}

func (m *MockPaymentRepo) Create(ctx context.Context, tx repository.Tx, p *model.PaymentRecord) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, p)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *MockPaymentRepo) FindByOrderID(ctx context.Context, tx repository.Tx, orderID string) (*model.PaymentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.store {
		if p.OrderID == orderID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockPaymentRepo) ApplyNotification(ctx context.Context, tx repository.Tx, id string, upd repository.NotificationUpdate) error {
	if m.ApplyNotificationFunc != nil {
		return m.ApplyNotificationFunc(ctx, tx, id, upd)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Status = upd.Status
	p.TransactionID = &upd.TransactionID
	p.PaymentMethod = &upd.PaymentMethod
	p.RawNotification = upd.RawPayload
	p.PaidAt = upd.PaidAt
	p.UpdatedAt = time.Now()
	return nil
}

func (m *MockPaymentRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, limit int) ([]*model.PaymentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.PaymentRecord
	for _, p := range m.store {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockPaymentRepo) ListPendingOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.PaymentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.PaymentRecord
	for _, p := range m.store {
		if p.Status == model.PaymentStatusPending && p.CreatedAt.Before(olderThan) {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

// Get returns the stored record for assertions.
func (m *MockPaymentRepo) Get(id string) *model.PaymentRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.store[id]; ok {
		cp := *p
		return &cp
	}
	return nil
}

// ---- Mock SubscriptionRepo ----

type MockSubscriptionRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Subscription

	CreateFunc func(ctx context.Context, tx repository.Tx, sub *model.Subscription) error
}

var _ repository.SubscriptionRepository = (*MockSubscriptionRepo)(nil)

func NewMockSubscriptionRepo() *MockSubscriptionRepo {
	return &MockSubscriptionRepo{store: make(map[string]*model.Subscription)}
}

func (m *MockSubscriptionRepo) Create(ctx context.Context, tx repository.Tx, sub *model.Subscription) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, sub)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.store {
		if s.UserID == sub.UserID && s.Status == model.SubscriptionStatusActive {
			return domain.ErrAlreadyExists
		}
	}
	cp := *sub
	m.store[sub.ID] = &cp
	return nil
}

func (m *MockSubscriptionRepo) FindActiveByUser(ctx context.Context, tx repository.Tx, userID string) (*model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.store {
		if s.UserID == userID && s.Status == model.SubscriptionStatusActive {
			cp := *s
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockSubscriptionRepo) FindByPaymentID(ctx context.Context, tx repository.Tx, paymentID string) (*model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.store {
		if s.PaymentID != nil && *s.PaymentID == paymentID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockSubscriptionRepo) Cancel(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.Status = model.SubscriptionStatusCancelled
	return nil
}

func (m *MockSubscriptionRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Subscription
	for _, s := range m.store {
		if s.UserID == userID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ---- Mock UserRepo ----

type MockUserRepo struct {
	mu    sync.RWMutex
	store map[string]*model.User

	SaveErr error
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{store: make(map[string]*model.User)}
}

func (m *MockUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.store {
		if existing.Email == u.Email && existing.ID != u.ID {
			return domain.ErrAlreadyExists
		}
	}
	cp := *u
	m.store[u.ID] = &cp
	return nil
}

func (m *MockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.store {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockUserRepo) UpdateTier(ctx context.Context, tx repository.Tx, id string, tier model.Tier) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.Tier = tier
	return nil
}

func (m *MockUserRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.User
	for _, u := range m.store {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

// ---- Mock PromoRepo ----

type MockPromoRepo struct {
	mu    sync.RWMutex
	store map[string]*model.PromoCode

	IncrementUsageFunc func(ctx context.Context, tx repository.Tx, id string) (bool, error)
}

var _ repository.PromoRepository = (*MockPromoRepo)(nil)

func NewMockPromoRepo() *MockPromoRepo {
	return &MockPromoRepo{store: make(map[string]*model.PromoCode)}
}

func (m *MockPromoRepo) Create(ctx context.Context, tx repository.Tx, p *model.PromoCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *MockPromoRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.PromoCode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.store {
		if p.Code == code {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

// IncrementUsage mirrors the conditional single-statement update of the real
// repository: no increment past the cap, reported via the bool.
func (m *MockPromoRepo) IncrementUsage(ctx context.Context, tx repository.Tx, id string) (bool, error) {
	if m.IncrementUsageFunc != nil {
		return m.IncrementUsageFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok || !p.Active {
		return false, nil
	}
	if p.MaxUses != nil && p.CurrentUses >= *p.MaxUses {
		return false, nil
	}
	p.CurrentUses++
	return true, nil
}

func (m *MockPromoRepo) Get(id string) *model.PromoCode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.store[id]; ok {
		cp := *p
		return &cp
	}
	return nil
}

// ---- Mock ReferralRepo ----

type MockReferralRepo struct {
	mu     sync.RWMutex
	store  map[string]*model.Referral
	usages []*model.ReferralUsage

	CreateFunc func(ctx context.Context, tx repository.Tx, r *model.Referral) error
}

var _ repository.ReferralRepository = (*MockReferralRepo)(nil)

func NewMockReferralRepo() *MockReferralRepo {
	return &MockReferralRepo{store: make(map[string]*model.Referral)}
}

func (m *MockReferralRepo) Create(ctx context.Context, tx repository.Tx, r *model.Referral) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, r)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.store {
		if existing.Code == r.Code || existing.UserID == r.UserID {
			return domain.ErrAlreadyExists
		}
	}
	cp := *r
	m.store[r.ID] = &cp
	return nil
}

func (m *MockReferralRepo) FindByUser(ctx context.Context, tx repository.Tx, userID string) (*model.Referral, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.store {
		if r.UserID == userID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockReferralRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.Referral, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.store {
		if r.Code == code {
			cp := *r
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockReferralRepo) InsertUsage(ctx context.Context, tx repository.Tx, u *model.ReferralUsage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.usages {
		if existing.ReferralID == u.ReferralID && existing.NewUserID == u.NewUserID && existing.PaymentID == u.PaymentID {
			return domain.ErrAlreadyExists
		}
	}
	cp := *u
	m.usages = append(m.usages, &cp)
	return nil
}

func (m *MockReferralRepo) AddReward(ctx context.Context, tx repository.Tx, id string, rewardAmount int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	r.TotalUses++
	r.RewardsEarned += rewardAmount
	return nil
}

func (m *MockReferralRepo) Get(id string) *model.Referral {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.store[id]; ok {
		cp := *r
		return &cp
	}
	return nil
}

func (m *MockReferralRepo) Usages() []*model.ReferralUsage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*model.ReferralUsage(nil), m.usages...)
}

// ---- Mock ReportRepo ----

type MockReportRepo struct {
	mu    sync.RWMutex
	store []*model.Report
}

var _ repository.ReportRepository = (*MockReportRepo)(nil)

func NewMockReportRepo() *MockReportRepo { return &MockReportRepo{} }

func (m *MockReportRepo) Save(ctx context.Context, tx repository.Tx, r *model.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.store = append(m.store, &cp)
	return nil
}

func (m *MockReportRepo) ListPublished(ctx context.Context, tx repository.Tx) ([]*model.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Report
	for _, r := range m.store {
		if r.Published {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockReportRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.store {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

// ---- Mock CohortRepo ----

type MockCohortRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Cohort
}

var _ repository.CohortRepository = (*MockCohortRepo)(nil)

func NewMockCohortRepo() *MockCohortRepo {
	return &MockCohortRepo{store: make(map[string]*model.Cohort)}
}

func (m *MockCohortRepo) Save(ctx context.Context, tx repository.Tx, c *model.Cohort) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.store[c.ID] = &cp
	return nil
}

func (m *MockCohortRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Cohort, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *MockCohortRepo) ListOpen(ctx context.Context, tx repository.Tx) ([]*model.Cohort, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Cohort
	for _, c := range m.store {
		if c.Status == model.CohortStatusOpen {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ---- Mock TransactionManager ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

func NewMockTxManager() *MockTxManager { return &MockTxManager{} }

// WithTx runs fn with a nil Tx by default; mock repositories ignore the
// handle, so rollback semantics are not simulated here.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// ---- Mock PaymentGateway ----

type MockPaymentGateway struct {
	NameVal string

	CreateCheckoutFunc func(ctx context.Context, orderID string, grossAmount int64, customer adapter.Customer, itemLabel string) (*adapter.CheckoutSession, error)
	PollStatusFunc     func(ctx context.Context, orderID string) (*adapter.StatusNotification, error)
}

var _ adapter.PaymentGateway = (*MockPaymentGateway)(nil)

func (m *MockPaymentGateway) Name() string {
	if m.NameVal == "" {
		return "mockpay"
	}
	return m.NameVal
}

func (m *MockPaymentGateway) CreateCheckout(ctx context.Context, orderID string, grossAmount int64, customer adapter.Customer, itemLabel string) (*adapter.CheckoutSession, error) {
	if m.CreateCheckoutFunc != nil {
		return m.CreateCheckoutFunc(ctx, orderID, grossAmount, customer, itemLabel)
	}
	token := "TOK-" + uuid.NewString()
	return &adapter.CheckoutSession{Token: token, RedirectURL: "https://pay.example/" + token}, nil
}

func (m *MockPaymentGateway) PollStatus(ctx context.Context, orderID string) (*adapter.StatusNotification, error) {
	if m.PollStatusFunc != nil {
		return m.PollStatusFunc(ctx, orderID)
	}
	return &adapter.StatusNotification{OrderID: orderID, TransactionStatus: "pending"}, nil
}

// ---- Mock Mailer ----

type MockMailer struct {
	mu   sync.Mutex
	Sent []adapter.Receipt

	SendReceiptFunc func(ctx context.Context, to string, r adapter.Receipt) error
}

var _ adapter.Mailer = (*MockMailer)(nil)

func (m *MockMailer) SendReceipt(ctx context.Context, to string, r adapter.Receipt) error {
	if m.SendReceiptFunc != nil {
		return m.SendReceiptFunc(ctx, to, r)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, r)
	return nil
}

func (m *MockMailer) SentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}
