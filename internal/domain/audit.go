package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuditEntry is an append-only record of an operator action on the core
type AuditEntry struct {
	ID         string                 `bson:"_id" json:"id"`
	Action     string                 `bson:"action" json:"action"`
	Resource   string                 `bson:"resource" json:"resource"`
	ResourceID string                 `bson:"resourceId" json:"resourceId"`
	OperatorID string                 `bson:"operatorId" json:"operatorId"`
	Details    map[string]interface{} `bson:"details,omitempty" json:"details,omitempty"`
	CreatedAt  time.Time              `bson:"createdAt" json:"createdAt"`
}

// NewAuditEntry creates an audit record for an operator action
func NewAuditEntry(action, resource, resourceID, operatorID string, details map[string]interface{}) *AuditEntry {
	return &AuditEntry{
		ID:         primitive.NewObjectID().Hex(),
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		OperatorID: operatorID,
		Details:    details,
		CreatedAt:  time.Now().UTC(),
	}
}
