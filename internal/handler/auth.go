package handler

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/stardrophere/Financial-System/internal/config"
	"github.com/stardrophere/Financial-System/internal/models"
	"github.com/stardrophere/Financial-System/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// 用户名规则：3-20 位，仅字母、数字、下划线
var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)

// AuthHandler 负责注册/登录接口
type AuthHandler struct {
	DB       *gorm.DB
	Secret   string
	Issuer   string
	TokenTTL time.Duration
	Log      *zap.Logger
}

func NewAuthHandler(db *gorm.DB, cfg config.JWTConfig, log *zap.Logger) *AuthHandler {
	ttlHours := cfg.ExpireHours
	if ttlHours <= 0 {
		ttlHours = 24
	}
	return &AuthHandler{
		DB:       db,
		Secret:   cfg.Secret,
		Issuer:   cfg.Issuer,
		TokenTTL: time.Duration(ttlHours) * time.Hour,
		Log:      log,
	}
}

type registerReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register 用户注册
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "用户名和密码是必填项。")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if !usernameRe.MatchString(req.Username) {
		util.Error(c, http.StatusBadRequest, "用户名必须为3-20位字母、数字或下划线。")
		return
	}
	if len(req.Password) < 6 || len(req.Password) > 64 {
		util.Error(c, http.StatusBadRequest, "密码长度需为6-64位。")
		return
	}

	// 用户名不区分大小写唯一
	var count int64
	if err := h.DB.Model(&models.User{}).
		Where("LOWER(username) = LOWER(?)", req.Username).
		Count(&count).Error; err != nil {
		h.Log.Error("查询用户失败", zap.Error(err))
		util.Error(c, http.StatusInternalServerError, "注册失败。")
		return
	}
	if count > 0 {
		util.Error(c, http.StatusBadRequest, "用户已存在。")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.Log.Error("密码哈希失败", zap.Error(err))
		util.Error(c, http.StatusInternalServerError, "注册失败。")
		return
	}

	user := models.User{
		Username:     req.Username,
		PasswordHash: string(hash),
	}
	if err := h.DB.Create(&user).Error; err != nil {
		h.Log.Error("创建用户失败", zap.Error(err))
		util.Error(c, http.StatusInternalServerError, "注册失败。")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "用户注册成功。"})
}

type loginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 用户登录，校验通过后签发 JWT
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "用户名和密码是必填项。")
		return
	}

	req.Username = strings.TrimSpace(req.Username)

	var user models.User
	if err := h.DB.Where("LOWER(username) = LOWER(?)", req.Username).
		First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusBadRequest, "用户不存在。")
		} else {
			h.Log.Error("查询用户失败", zap.Error(err))
			util.Error(c, http.StatusInternalServerError, "登录失败。")
		}
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		util.Error(c, http.StatusBadRequest, "账号或密码错误。")
		return
	}

	// 记录最近登录信息，失败不影响登录
	now := time.Now()
	user.LastLoginAt = &now
	user.LastLoginIP = c.ClientIP()
	_ = h.DB.Save(&user).Error

	token, err := util.GenerateToken(h.Secret, h.Issuer, user.ID, h.TokenTTL)
	if err != nil {
		h.Log.Error("生成 token 失败", zap.Uint("user_id", user.ID), zap.Error(err))
		util.Error(c, http.StatusInternalServerError, "登录失败。")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "登录成功。",
		"token":   token,
	})
}
