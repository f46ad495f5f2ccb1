package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/events"
	"storefront/internal/handler"
	"storefront/internal/idempotency"
	"storefront/internal/lifecycle"
	"storefront/internal/metrics"
	"storefront/internal/middleware"
	"storefront/internal/model"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"
	"storefront/internal/testutil"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const (
	testAPIKey = "test-api-key"
	adminID    = "admin-1"
)

const seedMenu = `
categories:
  - id: 1
    name: Roti
  - id: 2
    name: Kue
items:
  - id: A
    categoryId: 1
    name: Roti Susu
    price: 15000
  - id: B
    categoryId: 1
    name: Roti Coklat
    price: 7500
  - id: C
    categoryId: 2
    name: Bolu Pandan
    price: 30000
`

// manualClock is a settable clock shared by the order and admin services.
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// TestEnv is a fully wired API over real Postgres and Redis.
type TestEnv struct {
	Pool    *pgxpool.Pool
	Redis   *redis.Client
	Clock   *manualClock
	Metrics *metrics.Metrics
	Server  *handlerServer
}

// SetupTestEnv starts the containers, seeds the menu and an admin user and
// builds the router the serve command builds.
func SetupTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	logger := zerolog.Nop()
	pool := testutil.SetupPostgres(t)
	rdb := testutil.SetupRedis(t)

	SeedMenu(t, pool)
	require.NoError(t, repository.NewUserRepository(pool, logger).Upsert(context.Background(), &model.User{
		ID: adminID, Email: "admin@example.com", Name: "Admin", Role: model.RoleAdmin,
	}))

	clock := &manualClock{now: time.Now().UTC().Truncate(time.Second)}
	m := metrics.New()
	machine := lifecycle.NewMachine(lifecycle.NewPolicy(lifecycle.DefaultCancellationWindow))
	publisher := events.NewNopPublisher(logger)

	menuRepo := repository.NewMenuRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	userService := service.NewUserService(repository.NewUserRepository(pool, logger), logger)
	carts := cart.NewRedisStorage(rdb, time.Hour, logger)

	orderService := service.NewOrderService(service.OrderDeps{
		Orders:        orderRepo,
		Carts:         carts,
		Publisher:     publisher,
		Metrics:       m,
		Machine:       machine,
		Idempotency:   idempotency.NewRedisStore(rdb, time.Hour, logger),
		Clock:         clock.Now,
		CountdownTick: 10 * time.Millisecond,
	}, logger)
	adminService := service.NewAdminService(orderRepo, menuRepo, publisher, m, machine, clock.Now, logger)

	mux := router.New(router.Handlers{
		Menu:  handler.NewMenuHandler(service.NewMenuService(menuRepo, logger), logger),
		Cart:  handler.NewCartHandler(service.NewCartService(carts, menuRepo, logger), logger),
		Order: handler.NewOrderHandler(orderService, logger),
		Admin: handler.NewAdminHandler(adminService, userService, logger),
	}, router.Options{
		APIKey:   testAPIKey,
		Resolver: userService,
		Metrics:  m,
	}, logger)

	return &TestEnv{
		Pool:    pool,
		Redis:   rdb,
		Clock:   clock,
		Metrics: m,
		Server:  &handlerServer{t: t, h: mux},
	}
}

// SeedMenu imports the test catalogue.
func SeedMenu(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	c, err := catalog.Decode(strings.NewReader(seedMenu), "seed.yaml")
	require.NoError(t, err)
	require.NoError(t, repository.NewMenuRepository(pool, zerolog.Nop()).UpsertCatalog(context.Background(), c))
}

// CleanupOrders removes every order row and all Redis state.
func (e *TestEnv) CleanupOrders(t *testing.T) {
	t.Helper()

	ctx := context.Background()
	_, err := e.Pool.Exec(ctx, "DELETE FROM orders")
	require.NoError(t, err)
	require.NoError(t, e.Redis.FlushDB(ctx).Err())
}

// handlerServer sends authenticated requests straight to the router.
type handlerServer struct {
	t *testing.T
	h http.Handler
}

// Do sends a request as userID, or anonymously when userID is empty. Extra
// headers come in name/value pairs.
func (s *handlerServer) Do(method, path, userID string, body any, headers ...string) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.HeaderAPIKey, testAPIKey)
	if userID != "" {
		req.Header.Set(middleware.HeaderUserID, userID)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	s.h.ServeHTTP(rec, req)
	return rec
}

// Decode unmarshals a recorded JSON body into v.
func Decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	raw := rec.Body.String()
	require.NoError(t, json.Unmarshal([]byte(raw), &v), raw)
	return v
}
