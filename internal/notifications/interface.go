package notifications

import "github.com/ibrhmmrana/hunter2.0-sub000/internal/models"

// NotificationInterface defines the contract for downstream alert
// delivery. The monitoring core never calls this; it only persists
// Alert rows, which the digest job picks up later.
type NotificationInterface interface {
	SendDigest(digest *models.Digest) error
}
