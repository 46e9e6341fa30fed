package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Chikothe3rd/campuseats/internal/models"
	"github.com/Chikothe3rd/campuseats/internal/realtime"
)

func strPtr(s string) *string   { return &s }
func f64Ptr(v float64) *float64 { return &v }

// fakeOrderRepo is an in-memory order store with the same conditional update
// semantics as the SQL repository: a claim or status update whose precondition
// no longer holds affects zero rows and maps to the matching sentinel.
type fakeOrderRepo struct {
	mu     sync.Mutex
	seq    int64
	orders map[string]*models.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[string]*models.Order{}}
}

func (f *fakeOrderRepo) seed(order models.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	order.CreatedAt = time.Unix(f.seq, 0)
	f.orders[order.ID] = &order
}

func (f *fakeOrderRepo) CreateOrder(_ context.Context, order *models.Order) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	stored := *order
	stored.CreatedAt = time.Unix(f.seq, 0)
	f.orders[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (f *fakeOrderRepo) GetOrderByID(_ context.Context, id string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[id]
	if !ok {
		return nil, models.ErrDataNotFound
	}
	out := *order
	return &out, nil
}

func (f *fakeOrderRepo) list(match func(*models.Order) bool) []models.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Order{}
	for _, order := range f.orders {
		if match(order) {
			out = append(out, *order)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (f *fakeOrderRepo) GetOrdersByBuyer(_ context.Context, buyerID string) ([]models.Order, error) {
	return f.list(func(o *models.Order) bool { return o.BuyerID == buyerID }), nil
}

func (f *fakeOrderRepo) GetOrdersByVendor(_ context.Context, vendorID string) ([]models.Order, error) {
	return f.list(func(o *models.Order) bool { return o.VendorID == vendorID }), nil
}

func (f *fakeOrderRepo) GetOrdersForRunner(_ context.Context, runnerID string) ([]models.Order, error) {
	return f.list(func(o *models.Order) bool {
		if o.Status == models.OrderStatusPending && o.RunnerID == nil {
			return true
		}
		return o.RunnerID != nil && *o.RunnerID == runnerID
	}), nil
}

func (f *fakeOrderRepo) ClaimOrder(_ context.Context, orderID, runnerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderID]
	if !ok || order.Status != models.OrderStatusPending || order.RunnerID != nil {
		return models.ErrAlreadyClaimed
	}
	id := runnerID
	order.RunnerID = &id
	order.Status = models.OrderStatusAccepted
	return nil
}

func (f *fakeOrderRepo) UpdateOrderStatus(_ context.Context, orderID, from, to string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderID]
	if !ok || order.Status != from {
		return models.ErrConflictData
	}
	order.Status = to
	return nil
}

func (f *fakeOrderRepo) UpdateRunnerLocation(_ context.Context, orderID string, lat, lng float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderID]
	if !ok || order.Status != models.OrderStatusDelivering {
		return models.ErrNotDelivering
	}
	order.RunnerLat = &lat
	order.RunnerLng = &lng
	now := time.Now()
	order.LastLocationUpdate = &now
	return nil
}

func (f *fakeOrderRepo) GetPendingPaymentIDs(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := []string{}
	for _, order := range f.orders {
		if order.PaymentStatus == models.PaymentStatusPending {
			ids = append(ids, order.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (f *fakeOrderRepo) UpdatePaymentStatus(_ context.Context, orderID, from, to string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderID]
	if !ok || order.PaymentStatus != from {
		return models.ErrConflictData
	}
	order.PaymentStatus = to
	return nil
}

// fakeVendorResolver resolves vendors from fixed fixtures
type fakeVendorResolver struct {
	byUser map[string]models.Vendor
	byID   map[string]models.Vendor
}

func newFakeVendorResolver(vendors ...models.Vendor) *fakeVendorResolver {
	f := &fakeVendorResolver{
		byUser: map[string]models.Vendor{},
		byID:   map[string]models.Vendor{},
	}
	for _, v := range vendors {
		f.byUser[v.UserID] = v
		f.byID[v.ID] = v
	}
	return f
}

func (f *fakeVendorResolver) GetVendorByUserID(_ context.Context, userID string) (*models.Vendor, error) {
	v, ok := f.byUser[userID]
	if !ok {
		return nil, models.ErrDataNotFound
	}
	return &v, nil
}

func (f *fakeVendorResolver) GetVendorByID(_ context.Context, id string) (*models.Vendor, error) {
	v, ok := f.byID[id]
	if !ok {
		return nil, models.ErrDataNotFound
	}
	return &v, nil
}

type notifiedEntry struct {
	UserID   string
	Title    string
	Severity string
}

// recordingNotifier captures notifications instead of persisting them
type recordingNotifier struct {
	mu      sync.Mutex
	entries []notifiedEntry
}

func (r *recordingNotifier) Notify(_ context.Context, userID, title, _ string, severity string, _ *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, notifiedEntry{UserID: userID, Title: title, Severity: severity})
	return nil
}

func (r *recordingNotifier) all() []notifiedEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notifiedEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// recordingFeed captures published change events
type recordingFeed struct {
	mu     sync.Mutex
	events []realtime.Event
}

func (r *recordingFeed) PublishOrderChange(_ context.Context, ev realtime.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingFeed) all() []realtime.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]realtime.Event, len(r.events))
	copy(out, r.events)
	return out
}
