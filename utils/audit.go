package utils

import (
	"encoding/json"
	"net"

	"govstay-server/models"
	"govstay-server/storage"

	"github.com/kataras/iris/v12"
)

// Audit records an admin mutation. Failures are logged, never returned.
func Audit(ctx iris.Context, action, resourceType string, resourceID uint, before interface{}, after interface{}) {
	var beforeStr, afterStr string
	if before != nil {
		if b, err := json.Marshal(before); err == nil {
			beforeStr = string(b)
		}
	}
	if after != nil {
		if a, err := json.Marshal(after); err == nil {
			afterStr = string(a)
		}
	}
	var adminID uint
	if tok := GetAccessToken(ctx); tok != nil {
		adminID = tok.ID
	}
	entry := models.AuditLog{
		ActorID:      adminID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Before:       beforeStr,
		After:        afterStr,
		RemoteIP:     clientIP(ctx),
	}
	if err := storage.DB.WithContext(ctx.Request().Context()).Create(&entry).Error; err != nil {
		Log.WithError(err).WithField("action", action).Error("audit write failed")
	}
}

func clientIP(ctx iris.Context) string {
	if ip := ctx.GetHeader("X-Forwarded-For"); ip != "" {
		return ip
	}
	addr := ctx.RemoteAddr()
	if ip, _, err := net.SplitHostPort(addr); err == nil {
		return ip
	}
	return addr
}
