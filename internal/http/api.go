package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"teleport-backend/internal/service"
	"teleport-backend/internal/signaling"
	"teleport-backend/internal/storage"
)

const userIDKey = "user_id"

// Handler wires HTTP routes to domain services.
type Handler struct {
	users    service.UserService
	tokens   service.TokenService
	tasks    service.TaskService
	cards    service.CardService
	chats    service.ChatService
	relay    *signaling.Relay
	storage  storage.Service
	bucket   string
	logger   *logrus.Logger
	upgrader websocket.Upgrader
}

func NewHandler(
	users service.UserService,
	tokens service.TokenService,
	tasks service.TaskService,
	cards service.CardService,
	chats service.ChatService,
	relay *signaling.Relay,
	store storage.Service,
	bucket string,
	logger *logrus.Logger,
) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		users:   users,
		tokens:  tokens,
		tasks:   tasks,
		cards:   cards,
		chats:   chats,
		relay:   relay,
		storage: store,
		bucket:  bucket,
		logger:  logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	api := router.Group("/api/v1")
	{
		api.POST("/register", h.register)
		api.POST("/confirm-email", h.confirmEmail)
		api.POST("/login", h.login)
		api.POST("/refresh", h.refresh)
		api.GET("/business-card/:subdomain", h.getCardBySubdomain)
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})

		authed := api.Group("", h.authMiddleware())
		{
			authed.GET("/profile", h.getProfile)
			authed.PUT("/profile", h.updateProfile)
			authed.POST("/change-password", h.changePassword)
			authed.POST("/profile/avatar", h.uploadAvatar)

			authed.POST("/business-card/create", h.createOrUpdateCard)
			authed.GET("/business-card/view", h.getOwnCard)

			authed.POST("/chats", h.createChat)
			authed.GET("/chats", h.listChats)
			authed.POST("/chats/start_by_name", h.startChatByName)
			authed.POST("/chats/:id/messages", h.sendMessage)
			authed.GET("/chats/:id/messages", h.listMessages)

			authed.POST("/create-task", h.createTask)
			authed.GET("/tasks", h.listTasks)
			authed.GET("/tasks/:id", h.getTask)
			authed.DELETE("/tasks/:id", h.deleteTask)
			authed.POST("/tasks/:id/accept", h.acceptTask)
			authed.POST("/tasks/:id/complete", h.completeTask)
			authed.GET("/tasks/:id/watch", h.watchTask)
		}
	}

	ws := router.Group("/ws")
	{
		ws.GET("/video/:task_id/streamer", h.streamerSocket)
		ws.GET("/video/:task_id/viewer", h.viewerSocket)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (h *Handler) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		userID, err := h.tokens.ParseUserID(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

func currentUserID(c *gin.Context) int64 {
	return c.GetInt64(userIDKey)
}
