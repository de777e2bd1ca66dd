package model

import "time"

// SlotLock is a short-lived advisory lock on one service-day. Only one
// creator at a time can hold it, which serializes the conflict check and
// insert for that day. A TTL index removes locks abandoned by crashed callers.
type SlotLock struct {
	ID        string    `bson:"_id" json:"id"`
	Owner     string    `bson:"owner" json:"owner"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

func SlotLockID(serviceID, date string) string {
	return "slot:" + serviceID + ":" + date
}
