package domain

import "time"

type TrackingStatus string

const (
	TrackingOrderPlaced    TrackingStatus = "Order Placed"
	TrackingOrderConfirmed TrackingStatus = "Order Confirmed"
	TrackingPreparing      TrackingStatus = "Preparing for Delivery"
	TrackingOutForDelivery TrackingStatus = "Out for Delivery"
	TrackingDelivered      TrackingStatus = "Delivered"
)

type trackingStage struct {
	status    TrackingStatus
	pending   string
	completed string
}

// trackingStages is the fixed fulfillment pipeline. Steps complete
// strictly in this order and never un-complete.
var trackingStages = []trackingStage{
	{
		status:    TrackingOrderPlaced,
		pending:   "Your order has been placed successfully.",
		completed: "Your order has been placed successfully.",
	},
	{
		status:    TrackingOrderConfirmed,
		pending:   "Your order will be confirmed by the farmer.",
		completed: "Your order has been confirmed by the farmer.",
	},
	{
		status:    TrackingPreparing,
		pending:   "The farmer will prepare your order for delivery.",
		completed: "The farmer is preparing your order for delivery.",
	},
	{
		status:    TrackingOutForDelivery,
		pending:   "Your order will be out for delivery.",
		completed: "Your order is out for delivery.",
	},
	{
		status:    TrackingDelivered,
		pending:   "Your order will be delivered to you.",
		completed: "Your order has been delivered successfully.",
	},
}

type TrackingStep struct {
	Seq         int
	Status      TrackingStatus
	Description string
	Completed   bool
	CompletedAt *time.Time
}

// TrackingHistory holds the steps ordered by Seq. Invariant: completed
// steps form a prefix of the sequence.
type TrackingHistory []TrackingStep

// NewTrackingHistory returns the initial history for a fresh order: the
// Order Placed step completed at now, everything else pending.
func NewTrackingHistory(now time.Time) TrackingHistory {
	h := make(TrackingHistory, 0, len(trackingStages))
	for i, stage := range trackingStages {
		step := TrackingStep{
			Seq:         i + 1,
			Status:      stage.status,
			Description: stage.pending,
		}
		if i == 0 {
			completedAt := now
			step.Completed = true
			step.CompletedAt = &completedAt
			step.Description = stage.completed
		}
		h = append(h, step)
	}
	return h
}

// CurrentStatus returns the status of the last completed step.
func (h TrackingHistory) CurrentStatus() TrackingStatus {
	current := TrackingOrderPlaced
	for _, step := range h {
		if !step.Completed {
			break
		}
		current = step.Status
	}
	return current
}

// Advance completes the step named by status and returns it. The step
// must be exactly the first incomplete one: skipping ahead returns
// ErrTrackingOutOfOrder and re-completing returns ErrTrackingStepCompleted.
func (h TrackingHistory) Advance(status TrackingStatus, now time.Time) (TrackingStep, error) {
	idx := -1
	for i, stage := range trackingStages {
		if stage.status == status {
			idx = i
			break
		}
	}
	if idx == -1 || len(h) != len(trackingStages) {
		return TrackingStep{}, ErrUnknownTrackingStatus
	}

	if h[idx].Completed {
		return TrackingStep{}, ErrTrackingStepCompleted
	}
	for i := 0; i < idx; i++ {
		if !h[i].Completed {
			return TrackingStep{}, ErrTrackingOutOfOrder
		}
	}

	completedAt := now
	h[idx].Completed = true
	h[idx].CompletedAt = &completedAt
	h[idx].Description = trackingStages[idx].completed
	return h[idx], nil
}

// Delivered reports whether the terminal step has completed.
func (h TrackingHistory) Delivered() bool {
	return len(h) > 0 && h[len(h)-1].Completed
}
