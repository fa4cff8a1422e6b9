package handler

import (
	"net/http"
	"strconv"
	"time"

	"insightlink/backend/common"
	apperrors "insightlink/backend/common/errors"
	"insightlink/backend/common/i18n"
	"insightlink/backend/model"
	"insightlink/backend/service"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

func currentUserID(c *gin.Context) (int64, bool) {
	raw, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	id, ok := raw.(int64)
	return id, ok
}

type RegisterRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=20"`
	Password    string `json:"password" binding:"required,min=6,max=64"`
	DisplayName string `json:"display_name" binding:"omitempty,max=50"`
	Email       string `json:"email" binding:"omitempty,email"`
}

func Register(c *gin.Context) {
	lang := c.GetString("lang")
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespError(c, http.StatusBadRequest, i18n.Translate(apperrors.ErrInvalidParam, lang), err)
		return
	}
	if model.IsUsernameAlreadyTaken(req.Username) {
		common.RespErrorStr(c, http.StatusConflict, i18n.Translate(apperrors.ErrUsernameTaken, lang))
		return
	}
	if req.Email != "" && model.IsEmailAlreadyTaken(req.Email) {
		common.RespErrorStr(c, http.StatusConflict, i18n.Translate(apperrors.ErrEmailTaken, lang))
		return
	}
	user := &model.User{
		Username:    req.Username,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Role:        common.RoleCommonUser,
		Status:      common.UserStatusEnabled,
		Tier:        model.TierFree,
	}
	if user.DisplayName == "" {
		user.DisplayName = req.Username
	}
	if err := user.Insert(); err != nil {
		common.RespError(c, http.StatusInternalServerError, i18n.Translate(apperrors.ErrInternalServer, lang), err)
		return
	}
	common.RespSuccess(c, user)
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func Login(c *gin.Context) {
	lang := c.GetString("lang")
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespError(c, http.StatusBadRequest, i18n.Translate(apperrors.ErrInvalidParam, lang), err)
		return
	}
	user := &model.User{Username: req.Username, Password: req.Password}
	if err := user.ValidateAndFill(lang); err != nil {
		common.RespErrorStr(c, http.StatusUnauthorized, err.Error())
		return
	}

	session := sessions.Default(c)
	session.Set("username", user.Username)
	session.Set("role", user.Role)
	session.Set("id", user.ID)
	session.Set("status", user.Status)
	if err := session.Save(); err != nil {
		common.RespError(c, http.StatusInternalServerError, "failed to save session", err)
		return
	}

	accessToken, err := service.GenerateToken(user)
	if err != nil {
		common.RespError(c, http.StatusInternalServerError, "failed to generate token", err)
		return
	}
	refreshToken, err := service.GenerateRefreshToken(user)
	if err != nil {
		common.RespError(c, http.StatusInternalServerError, "failed to generate refresh token", err)
		return
	}

	common.RespSuccess(c, gin.H{
		"user":          user,
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

func Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	_ = session.Save()

	// Blacklist the bearer token until it would have expired anyway.
	if common.RedisEnabled {
		authHeader := c.GetHeader("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			_ = common.RedisSet("jwt:blacklist:"+authHeader[7:], "1", 24*time.Hour)
		}
	}
	common.RespSuccessStr(c, "logged out")
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func RefreshToken(c *gin.Context) {
	lang := c.GetString("lang")
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespError(c, http.StatusBadRequest, i18n.Translate(apperrors.ErrInvalidParam, lang), err)
		return
	}
	claims, err := service.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		common.RespErrorStr(c, http.StatusUnauthorized, err.Error())
		return
	}
	user, err := model.GetUserById(claims.UserID, lang)
	if err != nil {
		common.RespErrorStr(c, http.StatusUnauthorized, err.Error())
		return
	}
	accessToken, err := service.GenerateToken(user)
	if err != nil {
		common.RespError(c, http.StatusInternalServerError, "failed to generate token", err)
		return
	}
	common.RespSuccess(c, gin.H{"access_token": accessToken})
}

func GetSelf(c *gin.Context) {
	lang := c.GetString("lang")
	id, ok := currentUserID(c)
	if !ok {
		common.RespErrorStr(c, http.StatusUnauthorized, "user_id not found in context")
		return
	}
	user, err := model.GetUserById(id, lang)
	if err != nil {
		common.RespErrorStr(c, http.StatusNotFound, err.Error())
		return
	}
	now := time.Now()
	tier := service.EffectiveTierOf(user, now)
	common.RespSuccess(c, gin.H{
		"user":           user,
		"effective_tier": tier,
		"limits":         service.DefaultLimits.GetTierLimits(tier),
	})
}

type UpdateSelfRequest struct {
	DisplayName string `json:"display_name" binding:"omitempty,max=50"`
	Email       string `json:"email" binding:"omitempty,email"`
	Password    string `json:"password" binding:"omitempty,min=6,max=64"`
}

func UpdateSelf(c *gin.Context) {
	lang := c.GetString("lang")
	id, ok := currentUserID(c)
	if !ok {
		common.RespErrorStr(c, http.StatusUnauthorized, "user_id not found in context")
		return
	}
	var req UpdateSelfRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespError(c, http.StatusBadRequest, i18n.Translate(apperrors.ErrInvalidParam, lang), err)
		return
	}
	user, err := model.GetUserById(id, lang)
	if err != nil {
		common.RespErrorStr(c, http.StatusNotFound, err.Error())
		return
	}
	if req.DisplayName != "" {
		user.DisplayName = req.DisplayName
	}
	if req.Email != "" && req.Email != user.Email {
		if model.IsEmailAlreadyTaken(req.Email) {
			common.RespErrorStr(c, http.StatusConflict, i18n.Translate(apperrors.ErrEmailTaken, lang))
			return
		}
		user.Email = req.Email
	}
	updatePassword := req.Password != ""
	if updatePassword {
		user.Password = req.Password
	}
	if err := user.Update(updatePassword); err != nil {
		common.RespError(c, http.StatusInternalServerError, i18n.Translate(apperrors.ErrInternalServer, lang), err)
		return
	}
	common.RespSuccess(c, user)
}

// Admin endpoints

type CreateUserRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=20"`
	Password    string `json:"password" binding:"required,min=6,max=64"`
	DisplayName string `json:"display_name" binding:"omitempty,max=50"`
	Email       string `json:"email" binding:"omitempty,email"`
	Role        int    `json:"role" binding:"omitempty,oneof=1 10"`
}

// CreateUser lets an admin provision an account directly.
func CreateUser(c *gin.Context) {
	lang := c.GetString("lang")
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespError(c, http.StatusBadRequest, i18n.Translate(apperrors.ErrInvalidParam, lang), err)
		return
	}
	if req.Role >= c.GetInt("role") {
		common.RespErrorStr(c, http.StatusForbidden, "cannot create a user with the same or higher role")
		return
	}
	if model.IsUsernameAlreadyTaken(req.Username) {
		common.RespErrorStr(c, http.StatusConflict, i18n.Translate(apperrors.ErrUsernameTaken, lang))
		return
	}
	if req.Email != "" && model.IsEmailAlreadyTaken(req.Email) {
		common.RespErrorStr(c, http.StatusConflict, i18n.Translate(apperrors.ErrEmailTaken, lang))
		return
	}
	role := req.Role
	if role == 0 {
		role = common.RoleCommonUser
	}
	user := &model.User{
		Username:    req.Username,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Role:        role,
		Status:      common.UserStatusEnabled,
		Tier:        model.TierFree,
	}
	if user.DisplayName == "" {
		user.DisplayName = req.Username
	}
	if err := user.Insert(); err != nil {
		common.RespError(c, http.StatusInternalServerError, i18n.Translate(apperrors.ErrInternalServer, lang), err)
		return
	}
	common.RespSuccess(c, user)
}

func GetAllUsers(c *gin.Context) {
	p, _ := strconv.Atoi(c.Query("p"))
	if p < 0 {
		p = 0
	}
	users, err := model.GetAllUsers(p*common.ItemsPerPage, common.ItemsPerPage)
	if err != nil {
		common.RespErrorStr(c, http.StatusInternalServerError, err.Error())
		return
	}
	common.RespSuccess(c, users)
}

func SearchUsers(c *gin.Context) {
	keyword := c.Query("keyword")
	users, err := model.SearchUsers(keyword)
	if err != nil {
		common.RespErrorStr(c, http.StatusInternalServerError, err.Error())
		return
	}
	common.RespSuccess(c, users)
}

func GetUser(c *gin.Context) {
	lang := c.GetString("lang")
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		common.RespErrorStr(c, http.StatusBadRequest, err.Error())
		return
	}
	user, err := model.GetUserById(id, lang)
	if err != nil {
		common.RespErrorStr(c, http.StatusNotFound, err.Error())
		return
	}
	if c.GetInt("role") <= user.Role {
		common.RespErrorStr(c, http.StatusForbidden, "cannot view a user with the same or higher role")
		return
	}
	common.RespSuccess(c, user)
}

type ManageUserRequest struct {
	ID     int64  `json:"id" binding:"required"`
	Action string `json:"action" binding:"required,oneof=block unblock promote demote set_tier"`
	Tier   string `json:"tier" binding:"omitempty,oneof=FREE PRO MAX"`
	Days   int    `json:"days" binding:"omitempty,min=0"`
}

// ManageUser applies an administrative action to an account.
func ManageUser(c *gin.Context) {
	lang := c.GetString("lang")
	var req ManageUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespError(c, http.StatusBadRequest, i18n.Translate(apperrors.ErrInvalidParam, lang), err)
		return
	}
	user, err := model.GetUserById(req.ID, lang)
	if err != nil {
		common.RespErrorStr(c, http.StatusNotFound, err.Error())
		return
	}
	if c.GetInt("role") <= user.Role {
		common.RespErrorStr(c, http.StatusForbidden, "cannot manage a user with the same or higher role")
		return
	}

	switch req.Action {
	case "block":
		user.Status = common.UserStatusBlocked
	case "unblock":
		user.Status = common.UserStatusEnabled
	case "promote":
		user.Role = common.RoleAdminUser
	case "demote":
		user.Role = common.RoleCommonUser
	case "set_tier":
		if req.Tier == "" {
			common.RespErrorStr(c, http.StatusBadRequest, i18n.Translate(apperrors.ErrInvalidParam, lang))
			return
		}
		user.Tier = req.Tier
		if req.Tier == model.TierFree || req.Days == 0 {
			user.TierExpiresAt = nil
		} else {
			expiry := time.Now().AddDate(0, 0, req.Days)
			user.TierExpiresAt = &expiry
		}
	}
	if err := user.Update(false); err != nil {
		common.RespError(c, http.StatusInternalServerError, i18n.Translate(apperrors.ErrInternalServer, lang), err)
		return
	}

	actorID, _ := currentUserID(c)
	model.RecordAudit(actorID, model.AuditActionUserManage, "user/"+strconv.FormatInt(user.ID, 10),
		model.AuditLevelInfo, req.Action)
	common.RespSuccess(c, user)
}

func DeleteUser(c *gin.Context) {
	lang := c.GetString("lang")
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		common.RespErrorStr(c, http.StatusBadRequest, err.Error())
		return
	}
	user, err := model.GetUserById(id, lang)
	if err != nil {
		common.RespErrorStr(c, http.StatusNotFound, err.Error())
		return
	}
	if c.GetInt("role") <= user.Role {
		common.RespErrorStr(c, http.StatusForbidden, "cannot delete a user with the same or higher role")
		return
	}
	if err := model.DeleteUserById(id, lang); err != nil {
		common.RespErrorStr(c, http.StatusInternalServerError, err.Error())
		return
	}
	common.RespSuccessStr(c, "user deleted")
}
