package fakeshop

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/almirah-shop/storefront/internal/types"
	"github.com/almirah-shop/storefront/internal/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EventKind string

const (
	EventOrderPlaced      EventKind = "order"
	EventReturnRequested  EventKind = "return"
	EventSellerRegistered EventKind = "approval"
)

// NotificationJob fans one shop event out to the admin and seller feeds.
type NotificationJob struct {
	JobID      string
	Kind       EventKind
	Order      *types.Order
	Return     *types.Return
	SellerID   int64
	Username   string
	CreatedAt  time.Time
	RetryCount int
}

const maxNotificationRetries = 3

// NotificationPool delivers notification jobs off the request path.
type NotificationPool struct {
	jobs       chan NotificationJob
	quit       chan struct{}
	started    bool
	stopped    bool
	mu         sync.Mutex
	wg         sync.WaitGroup
	numWorkers int
	store      *Store
	deliver    func(ctx context.Context, job NotificationJob) error
}

func NewNotificationPool(numWorkers int, queueCapacity int, store *Store) *NotificationPool {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	if queueCapacity <= 0 {
		queueCapacity = 100
	}
	wp := &NotificationPool{
		jobs:       make(chan NotificationJob, queueCapacity),
		quit:       make(chan struct{}),
		numWorkers: numWorkers,
		store:      store,
	}
	wp.deliver = wp.dispatch
	return wp
}

// SetDeliverFunc replaces the delivery step.
func (wp *NotificationPool) SetDeliverFunc(fn func(ctx context.Context, job NotificationJob) error) {
	wp.deliver = fn
}

// Start launches the workers. A pool that has been stopped stays stopped.
func (wp *NotificationPool) Start() {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	if wp.started {
		return
	}
	if wp.stopped {
		utils.Zlog.Warn("Notification pool already stopped, not restarting")
		return
	}
	wp.started = true
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go func(workerID int) {
			defer wp.wg.Done()
			utils.Zlog.Debug("Notification worker started", zap.Int("workerId", workerID))
			for {
				select {
				case <-wp.quit:
					return
				case job := <-wp.jobs:
					wp.process(workerID, job)
				}
			}
		}(i + 1)
	}
}

func (wp *NotificationPool) Stop(ctx context.Context) {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	if !wp.started {
		return
	}
	wp.started = false
	wp.stopped = true
	close(wp.quit)
	done := make(chan struct{})
	go func() {
		wp.wg.Wait()
		close(done)
	}()
	select {
	case <-ctx.Done():
		utils.Zlog.Warn("Timeout waiting for notification workers to stop")
	case <-done:
		utils.Zlog.Debug("All notification workers stopped")
	}
}

// Enqueue never blocks; it reports false when the pool is stopped or full.
func (wp *NotificationPool) Enqueue(job NotificationJob) bool {
	if job.JobID == "" {
		job.JobID = uuid.NewString()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	select {
	case <-wp.quit:
		return false
	default:
	}
	select {
	case wp.jobs <- job:
		return true
	default:
		utils.Zlog.Warn("Notification queue full, dropping event",
			zap.String("jobId", job.JobID),
			zap.String("kind", string(job.Kind)))
		return false
	}
}

func (wp *NotificationPool) process(workerID int, job NotificationJob) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := wp.deliver(ctx, job); err != nil {
		utils.Zlog.Error("Failed to deliver notification",
			zap.Int("workerId", workerID),
			zap.String("jobId", job.JobID),
			zap.String("kind", string(job.Kind)),
			zap.Int("retryCount", job.RetryCount),
			zap.Error(err))
		wp.requeue(workerID, job)
		return
	}
	utils.Zlog.Debug("Notification delivered",
		zap.Int("workerId", workerID),
		zap.String("jobId", job.JobID),
		zap.String("kind", string(job.Kind)))
}

func (wp *NotificationPool) requeue(workerID int, job NotificationJob) {
	if job.RetryCount >= maxNotificationRetries {
		utils.Zlog.Error("Max retries exceeded for notification job",
			zap.Int("workerId", workerID),
			zap.String("jobId", job.JobID))
		return
	}
	job.RetryCount++
	if !wp.Enqueue(job) {
		utils.Zlog.Error("Failed to requeue notification job",
			zap.Int("workerId", workerID),
			zap.String("jobId", job.JobID))
	}
}

func (wp *NotificationPool) dispatch(ctx context.Context, job NotificationJob) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	switch job.Kind {
	case EventOrderPlaced:
		if job.Order == nil {
			return fmt.Errorf("order event %s has no order", job.JobID)
		}
		o := job.Order
		wp.store.AddNotification(types.RoleAdmin, types.Notification{
			Type:    string(EventOrderPlaced),
			Message: fmt.Sprintf("Order %s placed for %s", o.OrderNumber, formatTotal(o.TotalPrice)),
			OrderID: &o.ID,
		})
		for _, it := range o.Items {
			owner := wp.store.Owner(it.ProductID)
			if owner == 0 {
				continue
			}
			wp.store.AddNotification(types.RoleSeller, types.Notification{
				Type:      string(EventOrderPlaced),
				Message:   fmt.Sprintf("%d unit(s) ordered in %s", it.Quantity, o.OrderNumber),
				SellerID:  &owner,
				ProductID: &it.ProductID,
				OrderID:   &o.ID,
				Size:      deref(it.Size),
				Color:     deref(it.Color),
			})
		}
	case EventReturnRequested:
		if job.Return == nil {
			return fmt.Errorf("return event %s has no return", job.JobID)
		}
		r := job.Return
		wp.store.AddNotification(types.RoleAdmin, types.Notification{
			Type:      string(EventReturnRequested),
			Message:   fmt.Sprintf("Return requested for order item %d", r.OrderItemID),
			ProductID: &r.ProductID,
			OrderID:   &r.OrderID,
		})
		if owner := wp.store.Owner(r.ProductID); owner != 0 {
			wp.store.AddNotification(types.RoleSeller, types.Notification{
				Type:      string(EventReturnRequested),
				Message:   "A customer requested a return",
				SellerID:  &owner,
				ProductID: &r.ProductID,
				OrderID:   &r.OrderID,
			})
		}
	case EventSellerRegistered:
		sellerID := job.SellerID
		wp.store.AddNotification(types.RoleAdmin, types.Notification{
			Type:     string(EventSellerRegistered),
			Message:  fmt.Sprintf("Seller %s is waiting for approval", job.Username),
			SellerID: &sellerID,
			Priority: types.PriorityHigh,
		})
	default:
		return fmt.Errorf("unknown notification kind %q", job.Kind)
	}
	return nil
}

func formatTotal(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
