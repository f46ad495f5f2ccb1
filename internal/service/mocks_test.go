package service

import (
	"context"
	"errors"
	"sync"

	"storefront/internal/events"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"
)

// MockOrderRepository is a mock implementation of OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) CreateOrders(ctx context.Context, tx pgx.Tx, orders []model.Order) error {
	args := m.Called(ctx, tx, orders)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByUser(ctx context.Context, userID string) ([]model.OrderView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.OrderView), args.Error(1)
}

func (m *MockOrderRepository) ListAll(ctx context.Context, status *model.OrderStatus) ([]model.OrderView, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.OrderView), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, upd repository.StatusUpdate) (*model.Order, error) {
	args := m.Called(ctx, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

// MockMenuRepository is a mock implementation of MenuRepository.
type MockMenuRepository struct {
	mock.Mock
}

func (m *MockMenuRepository) ListCategories(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Category), args.Error(1)
}

func (m *MockMenuRepository) CreateCategory(ctx context.Context, category *model.Category) error {
	return m.Called(ctx, category).Error(0)
}

func (m *MockMenuRepository) UpdateCategory(ctx context.Context, category *model.Category) error {
	return m.Called(ctx, category).Error(0)
}

func (m *MockMenuRepository) DeleteCategory(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockMenuRepository) ListMenu(ctx context.Context, categoryID *int64) ([]model.MenuItem, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MenuItem), args.Error(1)
}

func (m *MockMenuRepository) GetByID(ctx context.Context, id string) (*model.MenuItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MenuItem), args.Error(1)
}

func (m *MockMenuRepository) GetByIDs(ctx context.Context, ids []string) ([]model.MenuItem, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MenuItem), args.Error(1)
}

func (m *MockMenuRepository) Create(ctx context.Context, item *model.MenuItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockMenuRepository) Update(ctx context.Context, item *model.MenuItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockMenuRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockMenuRepository) UpsertCatalog(ctx context.Context, catalog *model.Catalog) error {
	return m.Called(ctx, catalog).Error(0)
}

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserRepository) Upsert(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) SetRole(ctx context.Context, id string, role model.Role) error {
	return m.Called(ctx, id, role).Error(0)
}

// MockTx is a minimal mock implementation of pgx.Tx for testing.
type MockTx struct {
	mock.Mock
}

func (m *MockTx) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// Stub methods to satisfy pgx.Tx interface - these are not used in our tests
func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }

// memoryIdempotency is an in-process idempotency store.
type memoryIdempotency struct {
	mu       sync.Mutex
	entries  map[string]*model.SubmitResult
	released []string
}

func newMemoryIdempotency() *memoryIdempotency {
	return &memoryIdempotency{entries: make(map[string]*model.SubmitResult)}
}

func (s *memoryIdempotency) Reserve(_ context.Context, userID, key string) (*model.SubmitResult, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := userID + "/" + key
	existing, ok := s.entries[k]
	if !ok {
		s.entries[k] = nil
		return nil, true, nil
	}
	if existing == nil {
		return nil, false, model.ErrDuplicateRequest
	}
	return existing, false, nil
}

func (s *memoryIdempotency) Complete(ctx context.Context, userID, key string, result *model.SubmitResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[userID+"/"+key] = result
	return nil
}

func (s *memoryIdempotency) Release(ctx context.Context, userID, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, userID+"/"+key)
	s.released = append(s.released, key)
	return nil
}

// recordingPublisher keeps every envelope it is asked to publish.
type recordingPublisher struct {
	mu        sync.Mutex
	envelopes []events.Envelope
	err       error
}

func (p *recordingPublisher) Publish(_ context.Context, env events.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.envelopes = append(p.envelopes, env)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.envelopes))
	for i, env := range p.envelopes {
		out[i] = env.EventType
	}
	return out
}

// brokenStorage fails every cart write.
type brokenStorage struct {
	items []model.CartLineItem
}

var errStorageDown = errors.New("storage unavailable")

func (b *brokenStorage) Load(context.Context, string) ([]model.CartLineItem, error) {
	return append([]model.CartLineItem(nil), b.items...), nil
}

func (b *brokenStorage) Save(context.Context, string, []model.CartLineItem) error {
	return errStorageDown
}

func (b *brokenStorage) Delete(context.Context, string) error {
	return errStorageDown
}
