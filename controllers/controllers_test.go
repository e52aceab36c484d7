package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/inflame-ue/goblog/config"
	"github.com/inflame-ue/goblog/middleware"
	"github.com/inflame-ue/goblog/models"
	"github.com/inflame-ue/goblog/utils"
)

// setupTestDB opens a fresh in-memory database migrated with all models.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Post{}, &models.Comment{}, &models.PageView{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// setupRouter wires the routes under test against the given database.
func setupRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.SetForTesting(config.AppConfig{
		JWTSecret:      "test-secret",
		AdminUsernames: []string{"admin"},
	})

	ac := NewAuthController(db)
	pc := NewPostController(db)
	sc := NewStatsController(db)

	r := gin.New()
	api := r.Group("/api/v1")
	api.POST("/auth/register", ac.Register)
	api.POST("/auth/login", ac.Login)
	api.POST("/auth/logout", middleware.AuthRequired(), ac.Logout)
	api.GET("/auth/me", middleware.AuthRequired(), ac.Me)
	api.GET("/posts", pc.ListPosts)
	api.GET("/posts/:id", pc.GetPost)
	api.GET("/stats", sc.GetStats)
	api.GET("/posts/:id/stats", sc.GetPostStats)

	admin := api.Group("/posts")
	admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
	admin.POST("", pc.CreatePost)
	admin.PUT("/:id", pc.UpdatePost)
	admin.DELETE("/:id", pc.DeletePost)

	api.POST("/posts/:id/comments", middleware.AuthRequired(), pc.CreateComment)
	api.DELETE("/comments/:commentId", middleware.AuthRequired(), pc.DeleteComment)

	return r
}

func createUser(t *testing.T, db *gorm.DB, username, email string) models.User {
	t.Helper()
	hash, err := utils.HashPassword("password123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	user := models.User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		AvatarURL:    utils.GravatarURL(email),
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func bearerFor(t *testing.T, user models.User) string {
	t.Helper()
	token, err := utils.GenerateToken(user.ID, user.Username, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return "Bearer " + token
}

func doJSON(t *testing.T, r *gin.Engine, method, path, auth string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewBuffer(b)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp struct {
		Code    int            `json:"code"`
		Message string         `json:"message"`
		Data    map[string]any `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return resp.Data
}
