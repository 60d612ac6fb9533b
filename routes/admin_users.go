package routes

import (
	"net/http"
	"strings"

	"govstay-server/models"
	"govstay-server/storage"
	"govstay-server/utils"

	"github.com/kataras/iris/v12"
)

// AdminListUsers - GET /api/admin/users?role=&q=&page=&per_page=
func AdminListUsers(ctx iris.Context) {
	page, perPage := utils.Paging(ctx)

	var users []models.User
	q := strings.TrimSpace(ctx.URLParamDefault("q", ""))
	role := strings.TrimSpace(ctx.URLParamDefault("role", ""))

	query := storage.DB.WithContext(ctx.Request().Context()).Model(&models.User{})
	if role != "" {
		query = query.Where("role = ?", role)
	}
	if q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("lower(first_name) LIKE ? OR lower(last_name) LIKE ? OR lower(email) LIKE ?", like, like, like)
	}

	var total int64
	query.Count(&total)
	query = query.Order("id ASC").Offset((page - 1) * perPage).Limit(perPage)
	if err := query.Find(&users).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.JSONPage(ctx, users, page, perPage, total)
}

// AdminChangeUserRole - PATCH /api/admin/users/{id}/role { role }
func AdminChangeUserRole(ctx iris.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	var body RoleInput
	if err := ctx.ReadJSON(&body); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if id == callerID(ctx) && body.Role != models.RoleAdmin {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_role", "admins cannot demote themselves")
		return
	}

	var user models.User
	if err := storage.DB.First(&user, id).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "user not found")
		return
	}

	before := user
	user.Role = body.Role
	if err := storage.DB.Model(&user).Update("role", body.Role).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", "could not update role")
		return
	}

	utils.Audit(ctx, "user.role_update", "user", user.ID, before, user)

	utils.JSONData(ctx, user)
}

type RoleInput struct {
	Role string `json:"role" validate:"required,oneof=guest admin"`
}
