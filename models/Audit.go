package models

import (
	"time"
)

// AuditLog is one admin mutation with the record before and after it.
type AuditLog struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	ActorID      uint      `json:"actorID" gorm:"index;not null"`
	Action       string    `json:"action" gorm:"size:64;index"`
	ResourceType string    `json:"resourceType" gorm:"size:32;index"`
	ResourceID   uint      `json:"resourceID" gorm:"index"`
	Before       string    `json:"before" gorm:"type:text"`
	After        string    `json:"after" gorm:"type:text"`
	RemoteIP     string    `json:"remoteIP" gorm:"size:64"`
	CreatedAt    time.Time `json:"createdAt" gorm:"index"`
}
