package entities

import (
	"math/big"
	"strconv"
	"time"
)

// RequestID correlates a randomness request with its fulfillment. Zero means none.
type RequestID uint64

// String returns the decimal form of the id
func (id RequestID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// RandomnessParams are the provider settings sent with every request.
// The coordinator treats them as opaque.
type RandomnessParams struct {
	KeyHash              string `json:"keyHash"`
	SubscriptionID       uint64 `json:"subscriptionId"`
	RequestConfirmations uint16 `json:"requestConfirmations"`
	CallbackGasLimit     uint32 `json:"callbackGasLimit"`
	NumWords             uint32 `json:"numWords"`
}

// RandomnessRequest is the outbound message a provider publishes
type RandomnessRequest struct {
	RequestID   RequestID        `json:"requestId"`
	Params      RandomnessParams `json:"params"`
	RequestedAt time.Time        `json:"requestedAt"`
}

// Fulfillment is an inbound randomness result keyed by request id
type Fulfillment struct {
	RequestID  RequestID
	RandomWord *big.Int
}
