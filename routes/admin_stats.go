package routes

import (
	"govstay-server/models"
	"govstay-server/storage"
	"govstay-server/utils"

	"github.com/kataras/iris/v12"
)

// AdminStats - GET /api/admin/stats
func AdminStats(ctx iris.Context) {
	st, err := bookings.Stats(ctx.Request().Context())
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	utils.JSONData(ctx, st)
}

// AdminActivity - GET /api/admin/activity?resource_type=&page=&per_page=
func AdminActivity(ctx iris.Context) {
	page, perPage := utils.Paging(ctx)
	q := storage.DB.WithContext(ctx.Request().Context()).Model(&models.AuditLog{})
	if rt := ctx.URLParamTrim("resource_type"); rt != "" {
		q = q.Where("resource_type = ?", rt)
	}
	var total int64
	q.Count(&total)

	var logs []models.AuditLog
	if err := q.Order("created_at DESC").Offset((page - 1) * perPage).Limit(perPage).Find(&logs).Error; err != nil {
		handleServiceError(ctx, err)
		return
	}
	utils.JSONPage(ctx, logs, page, perPage, total)
}
