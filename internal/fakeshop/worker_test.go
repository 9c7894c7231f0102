package fakeshop

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/almirah-shop/storefront/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreAnyFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreAnyFunction("net/http.(*persistConn).writeLoop"))
}

func stopPool(t *testing.T, wp *NotificationPool) {
	t.Helper()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		wp.Stop(ctx)
	})
}

func TestNotificationPool_OrderFansOut(t *testing.T) {
	s := NewStore()
	seller := int64(42)
	owned := s.AddProduct(types.Product{Name: "A", Price: 10}, seller)
	unowned := s.AddProduct(types.Product{Name: "B", Price: 10}, 0)

	wp := NewNotificationPool(2, 10, s)
	wp.Start()
	stopPool(t, wp)

	order := types.Order{ID: 1, OrderNumber: "ALM-1", TotalPrice: 20, Items: []types.OrderItem{
		{ID: 2, ProductID: owned.ID, Quantity: 1},
		{ID: 3, ProductID: unowned.ID, Quantity: 1},
	}}
	require.True(t, wp.Enqueue(NotificationJob{Kind: EventOrderPlaced, Order: &order}))

	require.Eventually(t, func() bool {
		return s.UnreadCount(types.RoleAdmin, 0) == 1 && s.UnreadCount(types.RoleSeller, seller) == 1
	}, time.Second, 10*time.Millisecond)

	notes := s.Notifications(types.RoleSeller, seller, NotificationFilter{})
	require.Len(t, notes, 1)
	assert.Equal(t, owned.ID, *notes[0].ProductID)
	assert.Equal(t, "order", notes[0].Type)
}

func TestNotificationPool_SellerRegistrationIsHighPriority(t *testing.T) {
	s := NewStore()
	wp := NewNotificationPool(1, 10, s)
	wp.Start()
	stopPool(t, wp)

	require.True(t, wp.Enqueue(NotificationJob{Kind: EventSellerRegistered, SellerID: 9, Username: "vendor"}))
	require.Eventually(t, func() bool {
		return s.UnreadCount(types.RoleAdmin, 0) == 1
	}, time.Second, 10*time.Millisecond)

	note := s.Notifications(types.RoleAdmin, 0, NotificationFilter{})[0]
	assert.Equal(t, types.PriorityHigh, note.Priority)
	assert.Contains(t, note.Message, "vendor")
}

func TestNotificationPool_RetriesFailedDelivery(t *testing.T) {
	wp := NewNotificationPool(1, 10, NewStore())
	var attempts atomic.Int32
	wp.SetDeliverFunc(func(ctx context.Context, job NotificationJob) error {
		if attempts.Add(1) < 3 {
			return errors.New("mail gateway down")
		}
		return nil
	})
	wp.Start()
	stopPool(t, wp)

	require.True(t, wp.Enqueue(NotificationJob{Kind: EventSellerRegistered}))
	require.Eventually(t, func() bool { return attempts.Load() == 3 }, time.Second, 10*time.Millisecond)
}

func TestNotificationPool_GivesUpAfterMaxRetries(t *testing.T) {
	wp := NewNotificationPool(1, 10, NewStore())
	var attempts atomic.Int32
	wp.SetDeliverFunc(func(ctx context.Context, job NotificationJob) error {
		attempts.Add(1)
		return errors.New("always failing")
	})
	wp.Start()
	stopPool(t, wp)

	require.True(t, wp.Enqueue(NotificationJob{Kind: EventSellerRegistered}))
	require.Eventually(t, func() bool { return attempts.Load() == maxNotificationRetries+1 }, time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(maxNotificationRetries+1), attempts.Load())
}

func TestNotificationPool_StoppedRejectsJobs(t *testing.T) {
	wp := NewNotificationPool(1, 1, NewStore())
	wp.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	wp.Stop(ctx)
	wp.Stop(ctx)

	assert.False(t, wp.Enqueue(NotificationJob{Kind: EventSellerRegistered}))
}

func TestNotificationPool_StaysStoppedAfterStop(t *testing.T) {
	wp := NewNotificationPool(2, 1, NewStore())
	wp.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	wp.Stop(ctx)

	wp.Start()
	wp.mu.Lock()
	started := wp.started
	wp.mu.Unlock()
	assert.False(t, started)
	assert.False(t, wp.Enqueue(NotificationJob{Kind: EventOrderPlaced}))
}

func TestNotificationPool_UnknownKindFails(t *testing.T) {
	wp := NewNotificationPool(1, 1, NewStore())
	err := wp.dispatch(context.Background(), NotificationJob{Kind: "bogus"})
	assert.Error(t, err)
	assert.Error(t, wp.dispatch(context.Background(), NotificationJob{Kind: EventOrderPlaced}))
}
