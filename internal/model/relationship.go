package model

import "github.com/google/uuid"

// Relationship links two patients as family ("spouse", "parent",
// "child", ...). Edges are kept symmetric: adding or removing a
// relationship updates both patients' collections.
type Relationship struct {
	RelatedPatientID uuid.UUID `json:"related_patient_id"`
	RelationshipType string    `json:"relationship_type"`
}

type AddRelationshipRequest struct {
	RelatedPatientID uuid.UUID `json:"related_patient_id" binding:"required"`
	RelationshipType string    `json:"relationship_type" binding:"required"`
}
