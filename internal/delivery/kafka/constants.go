package kafka

const (
	TopicEntryCalled    = "servicequeue.entry.called"
	TopicEntryStarted   = "servicequeue.entry.started"
	TopicEntryCompleted = "servicequeue.entry.completed"
	TopicEntryCancelled = "servicequeue.entry.cancelled"
	TopicQueueUpdated   = "servicequeue.queue.updated"

	TopicGuestCheckedOut = "guest.checked_out"
)
