package integration

import (
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const customerID = "customer-1"

var bankTransfer = model.DraftOrder{
	DeliveryAddress: "Jl. Merdeka No. 1, Bandung",
	PaymentMethod:   model.PaymentBankTransfer,
	PaymentAuxInfo:  "BCA 1234567890",
}

// fillCart puts A x2, B x1 and C x3 in the customer's cart.
func fillCart(t *testing.T, env *TestEnv) {
	t.Helper()

	for _, line := range []model.CartItemRequest{
		{ItemID: "A", Quantity: 2},
		{ItemID: "B", Quantity: 1},
		{ItemID: "C", Quantity: 3},
	} {
		rec := env.Server.Do(http.MethodPost, "/api/cart/items", customerID, line)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
}

func checkout(t *testing.T, env *TestEnv) model.SubmitResult {
	t.Helper()

	fillCart(t, env)
	rec := env.Server.Do(http.MethodPost, "/api/checkout", customerID, bankTransfer)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return Decode[model.SubmitResult](t, rec)
}

func TestMenuAPI_Integration(t *testing.T) {
	env := SetupTestEnv(t)

	t.Run("GET /api/categories lists seeded categories", func(t *testing.T) {
		rec := env.Server.Do(http.MethodGet, "/api/categories", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, Decode[[]model.Category](t, rec), 2)
	})

	t.Run("GET /api/menu filters by category", func(t *testing.T) {
		rec := env.Server.Do(http.MethodGet, "/api/menu?category=1", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, Decode[[]model.MenuItem](t, rec), 2)
	})

	t.Run("GET /api/menu/{id} returns 404 for unknown item", func(t *testing.T) {
		rec := env.Server.Do(http.MethodGet, "/api/menu/Z", "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCheckoutAPI_Integration(t *testing.T) {
	env := SetupTestEnv(t)

	t.Run("checkout writes one row per line and empties the cart", func(t *testing.T) {
		env.CleanupOrders(t)

		result := checkout(t, env)
		assert.Len(t, result.OrderIDs, 3)
		assert.Equal(t, int64(15000*2+7500+30000*3), result.Total)

		rec := env.Server.Do(http.MethodGet, "/api/cart", customerID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, Decode[model.CartResponse](t, rec).Items)

		var batches, addresses int
		require.NoError(t, env.Pool.QueryRow(t.Context(),
			"SELECT COUNT(DISTINCT batch_id), COUNT(DISTINCT delivery_address) FROM orders WHERE user_id = $1",
			customerID).Scan(&batches, &addresses))
		assert.Equal(t, 1, batches)
		assert.Equal(t, 1, addresses)
	})

	t.Run("rejected checkout keeps the cart", func(t *testing.T) {
		env.CleanupOrders(t)
		fillCart(t, env)

		draft := bankTransfer
		draft.PaymentAuxInfo = "   "
		rec := env.Server.Do(http.MethodPost, "/api/checkout", customerID, draft)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, model.ErrCodeValidation, Decode[model.ErrorResponse](t, rec).Error)

		rec = env.Server.Do(http.MethodGet, "/api/cart", customerID, nil)
		assert.Len(t, Decode[model.CartResponse](t, rec).Items, 3)
	})

	t.Run("empty cart is rejected", func(t *testing.T) {
		env.CleanupOrders(t)

		rec := env.Server.Do(http.MethodPost, "/api/checkout", customerID, bankTransfer)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("retry with the same idempotency key replays the batch", func(t *testing.T) {
		env.CleanupOrders(t)
		fillCart(t, env)

		key := uuid.NewString()
		first := env.Server.Do(http.MethodPost, "/api/checkout", customerID, bankTransfer, "Idempotency-Key", key)
		require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
		second := env.Server.Do(http.MethodPost, "/api/checkout", customerID, bankTransfer, "Idempotency-Key", key)
		require.Equal(t, http.StatusCreated, second.Code, second.Body.String())

		assert.Equal(t, Decode[model.SubmitResult](t, first).BatchID, Decode[model.SubmitResult](t, second).BatchID)

		var rows int
		require.NoError(t, env.Pool.QueryRow(t.Context(), "SELECT COUNT(*) FROM orders").Scan(&rows))
		assert.Equal(t, 3, rows)
	})

	t.Run("cash on delivery stores no payment info", func(t *testing.T) {
		env.CleanupOrders(t)
		fillCart(t, env)

		rec := env.Server.Do(http.MethodPost, "/api/checkout", customerID, model.DraftOrder{
			DeliveryAddress: "Jl. Asia Afrika 8",
			PaymentMethod:   model.PaymentCashOnDelivery,
			PaymentAuxInfo:  "ignored",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var withAux int
		require.NoError(t, env.Pool.QueryRow(t.Context(),
			"SELECT COUNT(*) FROM orders WHERE payment_aux_info IS NOT NULL").Scan(&withAux))
		assert.Zero(t, withAux)
	})
}

func TestOrderLifecycleAPI_Integration(t *testing.T) {
	env := SetupTestEnv(t)

	t.Run("history shows fresh orders as cancelable", func(t *testing.T) {
		env.CleanupOrders(t)
		checkout(t, env)

		rec := env.Server.Do(http.MethodGet, "/api/orders?filter=in_progress", customerID, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		history := Decode[model.HistoryResponse](t, rec)
		require.Len(t, history.Orders, 3)
		assert.Equal(t, 3, history.Counts[model.FilterInProgress])
		for _, o := range history.Orders {
			assert.True(t, o.Cancelable)
			assert.Equal(t, "5:00", o.Remaining)
		}
	})

	t.Run("customer cancels inside the window", func(t *testing.T) {
		env.CleanupOrders(t)
		result := checkout(t, env)
		env.Clock.Advance(2 * time.Minute)

		path := "/api/orders/" + result.OrderIDs[0].String() + "/cancel"
		rec := env.Server.Do(http.MethodPost, path, customerID, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, model.StatusCancelled, Decode[model.Order](t, rec).Status)

		rec = env.Server.Do(http.MethodPost, path, customerID, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)

		rec = env.Server.Do(http.MethodGet, "/api/orders?filter=cancelled", customerID, nil)
		assert.Len(t, Decode[model.HistoryResponse](t, rec).Orders, 1)
	})

	t.Run("cancel after the window is refused", func(t *testing.T) {
		env.CleanupOrders(t)
		result := checkout(t, env)
		env.Clock.Advance(5 * time.Minute)

		rec := env.Server.Do(http.MethodPost, "/api/orders/"+result.OrderIDs[0].String()+"/cancel", customerID, nil)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, model.ErrCodeWindowExpired, Decode[model.ErrorResponse](t, rec).Error)
	})

	t.Run("another customer's order is not found", func(t *testing.T) {
		env.CleanupOrders(t)
		result := checkout(t, env)

		rec := env.Server.Do(http.MethodPost, "/api/orders/"+result.OrderIDs[0].String()+"/cancel", "customer-2", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("countdown ends with an expired event once the window closes", func(t *testing.T) {
		env.CleanupOrders(t)
		result := checkout(t, env)
		env.Clock.Advance(6 * time.Minute)

		rec := env.Server.Do(http.MethodGet, "/api/orders/"+result.OrderIDs[0].String()+"/countdown", customerID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

		body := rec.Body.String()
		assert.Equal(t, 1, strings.Count(body, "event: "))
		assert.Contains(t, body, "event: expired")
		assert.Contains(t, body, `"cancelable":false`)
	})
}

func TestAdminAPI_Integration(t *testing.T) {
	env := SetupTestEnv(t)

	t.Run("customer cannot reach admin routes", func(t *testing.T) {
		rec := env.Server.Do(http.MethodGet, "/api/admin/orders", customerID, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin moves orders forward only", func(t *testing.T) {
		env.CleanupOrders(t)
		result := checkout(t, env)
		shipped, other := result.OrderIDs[0].String(), result.OrderIDs[1].String()

		rec := env.Server.Do(http.MethodPut, "/api/admin/orders/"+shipped+"/status", adminID,
			model.StatusUpdateRequest{Status: model.StatusShipping})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, model.StatusShipping, Decode[model.Order](t, rec).Status)

		rec = env.Server.Do(http.MethodPut, "/api/admin/orders/"+shipped+"/status", adminID,
			model.StatusUpdateRequest{Status: model.StatusPreparing})
		assert.Equal(t, http.StatusConflict, rec.Code)

		rec = env.Server.Do(http.MethodPut, "/api/admin/orders/"+other+"/status", adminID,
			model.StatusUpdateRequest{Status: model.StatusCompleted})
		assert.Equal(t, http.StatusConflict, rec.Code)

		rec = env.Server.Do(http.MethodGet, "/api/admin/orders?status=shipping", adminID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, Decode[[]model.OrderView](t, rec), 1)
	})

	t.Run("customer may cancel a shipping order inside the window", func(t *testing.T) {
		env.CleanupOrders(t)
		result := checkout(t, env)
		id := result.OrderIDs[0].String()

		rec := env.Server.Do(http.MethodPut, "/api/admin/orders/"+id+"/status", adminID,
			model.StatusUpdateRequest{Status: model.StatusShipping})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = env.Server.Do(http.MethodPost, "/api/orders/"+id+"/cancel", customerID, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = env.Server.Do(http.MethodPut, "/api/admin/orders/"+id+"/status", adminID,
			model.StatusUpdateRequest{Status: model.StatusCompleted})
		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, model.ErrCodeAlreadyTerminal, Decode[model.ErrorResponse](t, rec).Error)
	})

	t.Run("admin manages menu items", func(t *testing.T) {
		env.CleanupOrders(t)

		item := model.MenuItem{ID: "D", CategoryID: 2, Name: "Brownies", Price: 45000}
		rec := env.Server.Do(http.MethodPost, "/api/admin/menu", adminID, item)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		rec = env.Server.Do(http.MethodPost, "/api/admin/menu", adminID, item)
		assert.Equal(t, http.StatusConflict, rec.Code)

		item.Price = 40000
		rec = env.Server.Do(http.MethodPut, "/api/admin/menu/D", adminID, item)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = env.Server.Do(http.MethodGet, "/api/menu/D", customerID, nil)
		assert.Equal(t, int64(40000), Decode[model.MenuItem](t, rec).Price)

		rec = env.Server.Do(http.MethodDelete, "/api/admin/menu/D", adminID, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("items on orders cannot be deleted", func(t *testing.T) {
		env.CleanupOrders(t)
		checkout(t, env)

		rec := env.Server.Do(http.MethodDelete, "/api/admin/menu/A", adminID, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("admin manages categories", func(t *testing.T) {
		rec := env.Server.Do(http.MethodPost, "/api/admin/categories", adminID, model.Category{Name: " Minuman "})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		created := Decode[model.Category](t, rec)
		assert.Equal(t, "Minuman", created.Name)
		id := strconv.FormatInt(created.ID, 10)

		rec = env.Server.Do(http.MethodPost, "/api/admin/categories", adminID, model.Category{Name: "Roti"})
		assert.Equal(t, http.StatusConflict, rec.Code)

		rec = env.Server.Do(http.MethodPut, "/api/admin/categories/"+id, adminID, model.Category{Name: "Minuman Dingin"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = env.Server.Do(http.MethodGet, "/api/categories", customerID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, Decode[[]model.Category](t, rec), model.Category{ID: created.ID, Name: "Minuman Dingin"})

		rec = env.Server.Do(http.MethodDelete, "/api/admin/categories/1", adminID, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)

		rec = env.Server.Do(http.MethodDelete, "/api/admin/categories/"+id, adminID, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = env.Server.Do(http.MethodPost, "/api/admin/categories", customerID, model.Category{Name: "Snack"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin lists users", func(t *testing.T) {
		rec := env.Server.Do(http.MethodGet, "/api/admin/users", adminID, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var ids []string
		for _, u := range Decode[[]model.User](t, rec) {
			ids = append(ids, u.ID)
		}
		assert.Contains(t, ids, adminID)
	})

	t.Run("admin promotes a customer", func(t *testing.T) {
		require.NoError(t, repository.NewUserRepository(env.Pool, zerolog.Nop()).Upsert(t.Context(), &model.User{
			ID: customerID, Role: model.RoleCustomer,
		}))

		rec := env.Server.Do(http.MethodPut, "/api/admin/users/nobody/role", adminID,
			model.RoleUpdateRequest{Role: model.RoleAdmin})
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = env.Server.Do(http.MethodPut, "/api/admin/users/"+customerID+"/role", adminID,
			model.RoleUpdateRequest{Role: model.RoleAdmin})
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

		rec = env.Server.Do(http.MethodGet, "/api/admin/orders", customerID, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
