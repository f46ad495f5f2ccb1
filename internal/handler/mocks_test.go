package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"storefront/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockOrderService is a mock implementation of OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Submit(ctx context.Context, userID string, draft model.DraftOrder) (*model.SubmitResult, error) {
	args := m.Called(ctx, userID, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SubmitResult), args.Error(1)
}

func (m *MockOrderService) History(ctx context.Context, userID string, filter model.HistoryFilter) (*model.HistoryResponse, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.HistoryResponse), args.Error(1)
}

func (m *MockOrderService) Cancel(ctx context.Context, userID string, orderID uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, userID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) Countdown(ctx context.Context, userID string, orderID uuid.UUID) (<-chan time.Duration, error) {
	args := m.Called(ctx, userID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan time.Duration), args.Error(1)
}

// MockCartService is a mock implementation of CartService.
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) Get(ctx context.Context, userID string) (*model.CartResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartResponse), args.Error(1)
}

func (m *MockCartService) AddItem(ctx context.Context, userID string, req model.CartItemRequest) (*model.CartResponse, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartResponse), args.Error(1)
}

func (m *MockCartService) SetQuantity(ctx context.Context, userID, itemID string, qty int) (*model.CartResponse, error) {
	args := m.Called(ctx, userID, itemID, qty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartResponse), args.Error(1)
}

func (m *MockCartService) RemoveItem(ctx context.Context, userID, itemID string) (*model.CartResponse, error) {
	args := m.Called(ctx, userID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartResponse), args.Error(1)
}

func (m *MockCartService) Clear(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

// MockMenuService is a mock implementation of MenuService.
type MockMenuService struct {
	mock.Mock
}

func (m *MockMenuService) ListCategories(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Category), args.Error(1)
}

func (m *MockMenuService) ListMenu(ctx context.Context, categoryID *int64) ([]model.MenuItem, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MenuItem), args.Error(1)
}

func (m *MockMenuService) GetByID(ctx context.Context, id string) (*model.MenuItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MenuItem), args.Error(1)
}

// MockAdminService is a mock implementation of AdminService.
type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) ListOrders(ctx context.Context, status *model.OrderStatus) ([]model.OrderView, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.OrderView), args.Error(1)
}

func (m *MockAdminService) TransitionOrder(ctx context.Context, orderID uuid.UUID, to model.OrderStatus) (*model.Order, error) {
	args := m.Called(ctx, orderID, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockAdminService) CreateMenuItem(ctx context.Context, item *model.MenuItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockAdminService) UpdateMenuItem(ctx context.Context, item *model.MenuItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockAdminService) DeleteMenuItem(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAdminService) CreateCategory(ctx context.Context, category *model.Category) error {
	return m.Called(ctx, category).Error(0)
}

func (m *MockAdminService) UpdateCategory(ctx context.Context, category *model.Category) error {
	return m.Called(ctx, category).Error(0)
}

func (m *MockAdminService) DeleteCategory(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// MockUserService is a mock implementation of UserService.
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Resolve(ctx context.Context, userID string) (model.Actor, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.Actor), args.Error(1)
}

func (m *MockUserService) SetRole(ctx context.Context, userID string, role model.Role) error {
	return m.Called(ctx, userID, role).Error(0)
}

func (m *MockUserService) ListUsers(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

var customer = &model.Actor{UserID: "user-1", Role: model.RoleCustomer}

// newRequest builds a request with an optional JSON body, caller and chi
// path parameters. A string body is sent verbatim.
func newRequest(method, path string, body any, actor *model.Actor, params map[string]string) *http.Request {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, _ := json.Marshal(b)
		reader = bytes.NewBuffer(data)
	}

	req := httptest.NewRequest(method, path, reader)
	ctx := req.Context()
	if actor != nil {
		ctx = model.WithActor(ctx, *actor)
	}
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}

func decodeError(body *bytes.Buffer) model.ErrorResponse {
	var resp model.ErrorResponse
	_ = json.NewDecoder(body).Decode(&resp)
	return resp
}
