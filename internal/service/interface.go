package service

import (
	"context"

	"github.com/vogiaan1904/ticketbottle-servicequeue/internal/domain"
)

// QueueService is the sole mutation surface for queue state. Unknown
// ids are no-ops returning nil/false; domain-rule violations return
// sentinel errors from errors.go.
type QueueService interface {
	// Guest operations
	JoinQueue(ctx context.Context, in JoinQueueInput) (*domain.QueueEntry, error)
	LeaveQueue(ctx context.Context, entryID string) (bool, error)

	// Staff operations
	CallNext(ctx context.Context, serviceID string) (*domain.QueueEntry, error)
	MarkServiceStarted(ctx context.Context, entryID string) (*domain.QueueEntry, error)
	MarkServiceCompleted(ctx context.Context, entryID string) (*domain.QueueEntry, error)
	SkipEntry(ctx context.Context, in SkipEntryInput) (*domain.QueueEntry, error)
	AdjustPosition(ctx context.Context, in AdjustPositionInput) (*domain.QueueEntry, error)
	VerifyAdmissionToken(ctx context.Context, token string) (*domain.QueueEntry, error)

	// Reads
	GetQueueForService(ctx context.Context, serviceID string) ([]*domain.QueueEntry, error)
	GetAllQueues(ctx context.Context) (map[string][]*domain.QueueEntry, error)
	GetEntry(ctx context.Context, entryID string) (*domain.QueueEntry, error)
	GetUserEntry(ctx context.Context, userID string) (*domain.QueueEntry, error)
	GetQueueStats(ctx context.Context, serviceID string) (*QueueStats, error)
	GetServiceTypes(ctx context.Context) ([]*domain.ServiceType, error)
	GetServiceType(ctx context.Context, serviceID string) (*domain.ServiceType, error)
	GetRecentTransactions(ctx context.Context, limit int) ([]*domain.QueueTransaction, error)

	// Administration
	UpdateServiceType(ctx context.Context, in UpdateServiceTypeInput) (*domain.ServiceType, error)
	GetConfiguration(ctx context.Context) (*domain.QueueConfiguration, error)
	UpdateConfiguration(ctx context.Context, cfg *domain.QueueConfiguration) error

	// Maintenance
	RecomputeWaitTimes(ctx context.Context) error

	// Subscriptions; the returned func unsubscribes.
	SubscribeQueueUpdated(fn QueueUpdatedFunc) func()
	SubscribePositionChanged(fn PositionChangedFunc) func()
	SubscribeStatusChanged(fn StatusChangedFunc) func()

	// Shutdown stops auto-progress timers and forces a final save.
	Shutdown(ctx context.Context) error
}
