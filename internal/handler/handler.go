package handler

import (
	"errors"
	"net/http"

	"github.com/stardrophere/Financial-System/internal/models"
	"github.com/stardrophere/Financial-System/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// currentUser 从 context 中取出 AuthMiddleware 放入的用户，取不到时写 401 并返回 nil。
func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get("currentUser")
	if !ok {
		util.Error(c, http.StatusUnauthorized, "未登录。")
		return nil
	}
	user, ok := v.(*models.User)
	if !ok || user == nil {
		util.Error(c, http.StatusUnauthorized, "未登录。")
		return nil
	}
	return user
}

// writeError 按错误类别映射响应：参数错误 400（消息直接透出），
// 记录不存在 404，其余按内部错误处理：记日志，对外只给笼统消息。
func writeError(c *gin.Context, log *zap.Logger, op string, userID uint, err error, internalMsg string) {
	var ia *util.InvalidArgumentError
	switch {
	case errors.As(err, &ia):
		util.Error(c, http.StatusBadRequest, ia.Message)
	case errors.Is(err, gorm.ErrRecordNotFound):
		util.Error(c, http.StatusNotFound, "记录未找到。")
	default:
		log.Error(op,
			zap.Uint("user_id", userID),
			zap.Error(err))
		util.Error(c, http.StatusInternalServerError, internalMsg)
	}
}
