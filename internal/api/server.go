package api

import (
	"fmt"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vietanh2810/stand-portal-api/docs"
	v1 "github.com/vietanh2810/stand-portal-api/internal/api/handler/v1"
	"github.com/vietanh2810/stand-portal-api/internal/api/middleware"
	"github.com/vietanh2810/stand-portal-api/internal/cache"
	"github.com/vietanh2810/stand-portal-api/internal/config"
	"github.com/vietanh2810/stand-portal-api/internal/metrics"
	"github.com/vietanh2810/stand-portal-api/internal/repository"
	"github.com/vietanh2810/stand-portal-api/internal/repository/dao"
	"github.com/vietanh2810/stand-portal-api/internal/service"
)

const megabyte = 1 << 20

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine

	blobs service.BlobStore
	pub   service.Publisher
	redis *redis.Client

	users   *repository.UserRepository
	stands  *repository.StandRepository
	configs *repository.ConfigurationRepository
	uSvc    *service.UserService
	hub     *v1.Hub
}

// NewServer wires repositories, services and handlers. redis may be nil, in
// which case partner lookups are not cached.
func NewServer(conf *config.AppConfig, db *gorm.DB, blobs service.BlobStore, pub service.Publisher, redis *redis.Client) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config:  conf,
		Router:  engine,
		blobs:   blobs,
		pub:     pub,
		redis:   redis,
		users:   repository.NewUserRepository(dao.NewUserDAO(db)),
		stands:  repository.NewStandRepository(dao.NewStandDAO(db)),
		configs: repository.NewConfigurationRepository(dao.NewConfigurationDAO(db)),
		hub:     v1.NewHub(conf.API.AllowedCORSDomains),
	}
	s.uSvc = service.NewUserService(s.users)

	s.MountMiddlewares()

	authHandler := s.initAuthHandler()
	userHandler := v1.NewUserHandler(s.uSvc)
	standHandler, submissionHandler := s.initStandHandlers()
	configurationHandler := v1.NewConfigurationHandler(service.NewConfigurationService(s.configs), s.uSvc)
	discussionHandler := s.initDiscussionHandler()
	s.MountHandlers(authHandler, userHandler, standHandler, submissionHandler, configurationHandler, discussionHandler)

	return s
}

func (s *Server) initAuthHandler() *v1.AuthHandler {
	svc := service.NewAuthService(s.users, s.Config.API.AdminEmails)
	handler := v1.NewAuthHandler(s.Config.API, svc)

	return handler
}

func (s *Server) initStandHandlers() (*v1.StandHandler, *v1.SubmissionHandler) {
	review := service.NewReviewService(s.stands, s.pub)
	stands := service.NewStandService(s.stands, s.configs, s.partnerDirectory(), s.Config.API.EventName)
	submissions := service.NewSubmissionService(s.stands, s.configs, review, s.blobs, s.pub, int64(s.Config.Uploads.MaxFileSizeMB)*megabyte)

	return v1.NewStandHandler(stands, review, s.uSvc, s.Config.API.PublicURL),
		v1.NewSubmissionHandler(submissions, s.uSvc)
}

func (s *Server) initDiscussionHandler() *v1.DiscussionHandler {
	svc := service.NewDiscussionService(s.stands, s.blobs, s.pub, s.hub, int64(s.Config.Uploads.MaxAttachmentSizeMB)*megabyte, s.location())
	handler := v1.NewDiscussionHandler(svc, s.uSvc, s.hub)

	return handler
}

func (s *Server) partnerDirectory() *service.PartnerDirectory {
	if s.redis == nil {
		return service.NewPartnerDirectory(s.users, nil)
	}

	ttl := time.Duration(s.Config.Redis.TTLMinutes) * time.Minute
	return service.NewPartnerDirectory(s.users, cache.NewJSONCache(s.redis, "partner:", ttl))
}

func (s *Server) location() *time.Location {
	loc, err := time.LoadLocation(s.Config.API.Timezone)
	if err != nil {
		zap.L().Warn(fmt.Sprintf("unknown timezone %q, grouping messages in UTC", s.Config.API.Timezone), zap.Error(err))
		return time.UTC
	}

	return loc
}

func (s *Server) MountMiddlewares() {
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.RequestLogger())
	s.Router.Use(metrics.Middleware())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(
	authHandler *v1.AuthHandler,
	userHandler *v1.UserHandler,
	standHandler *v1.StandHandler,
	submissionHandler *v1.SubmissionHandler,
	configurationHandler *v1.ConfigurationHandler,
	discussionHandler *v1.DiscussionHandler,
) {
	const basePath = "/api/v1"

	auth := s.Router.Group(basePath)
	{
		auth.POST("/auth/signup", authHandler.HandleSignup)
		auth.POST("/auth/login", authHandler.HandleLogin)
	}

	authenticator := middleware.NewAuthenticator(s.Config.API.JWTSigningKey)
	authenticated := s.Router.Group(basePath, authenticator.VerifyJWT())

	users := authenticated.Group("")
	{
		users.GET("/users/me", userHandler.HandleGetMe)
		users.GET("/users/:userID", userHandler.HandleGetUser)
		users.GET("/partners", userHandler.HandleListPartners)
	}

	stands := authenticated.Group("/stands")
	{
		stands.GET("", standHandler.HandleListStands)
		stands.POST("", standHandler.HandleCreateStand)
		stands.GET("/mine", standHandler.HandleGetMyStand)
		stands.GET("/summary", standHandler.HandleStandSummary)
		stands.GET("/:standID", standHandler.HandleGetStand)
		stands.PATCH("/:standID", standHandler.HandleUpdateStand)
		stands.DELETE("/:standID", standHandler.HandleDeleteStand)
		stands.GET("/:standID/sheet.pdf", standHandler.HandleStandSheet)

		// Review
		stands.PUT("/:standID/status", standHandler.HandleChangeStatus)
		stands.GET("/:standID/history", standHandler.HandleStandHistory)

		// Submissions
		stands.POST("/:standID/artwork", submissionHandler.HandleSubmitArtwork)
		stands.POST("/:standID/logos", submissionHandler.HandleSubmitLogo)
		stands.POST("/:standID/renders", submissionHandler.HandleSubmitRender)
		stands.POST("/:standID/drawings", submissionHandler.HandleSubmitDrawing)
		stands.DELETE("/:standID/submissions/:kind/:entryID", submissionHandler.HandleDeleteSubmission)
		stands.POST("/:standID/submissions/:kind/:entryID/comments", submissionHandler.HandleCommentOnSubmission)
		stands.POST("/:standID/comments", submissionHandler.HandleAddPartnerComment)
		stands.PUT("/:standID/requirements", submissionHandler.HandleUpdateRequirements)
		stands.PUT("/:standID/construction-type", submissionHandler.HandleSetConstructionType)

		// Discussion
		limiter := middleware.NewRateLimiter(s.Config.RateLimit.MessagesPerMinute, s.Config.RateLimit.Burst)
		stands.GET("/:standID/messages", discussionHandler.HandleListMessages)
		stands.POST("/:standID/messages", limiter.Limit(), discussionHandler.HandleSendMessage)
	}

	live := s.Router.Group(basePath, authenticator.VerifyWebSocketJWT())
	{
		live.GET("/stands/:standID/ws", discussionHandler.HandleWebSocket)
	}

	configurations := authenticated.Group("/configurations")
	{
		configurations.GET("", configurationHandler.HandleListConfigurations)
		configurations.POST("", configurationHandler.HandleCreateConfiguration)
		configurations.GET("/default", configurationHandler.HandleGetDefaultConfiguration)
		configurations.GET("/:configID", configurationHandler.HandleGetConfiguration)
		configurations.PATCH("/:configID", configurationHandler.HandleUpdateConfiguration)
		configurations.DELETE("/:configID", configurationHandler.HandleDeleteConfiguration)
		configurations.POST("/:configID/duplicate", configurationHandler.HandleDuplicateConfiguration)
		configurations.PUT("/:configID/default", configurationHandler.HandleSetDefaultConfiguration)
		configurations.POST("/:configID/archive", configurationHandler.HandleArchiveConfiguration)
		configurations.POST("/:configID/requirements", configurationHandler.HandleAddRequirement)
		configurations.PUT("/:configID/requirements/:requirementID", configurationHandler.HandleUpdateRequirement)
		configurations.DELETE("/:configID/requirements/:requirementID", configurationHandler.HandleRemoveRequirement)
		configurations.POST("/:configID/voltages", configurationHandler.HandleAddVoltage)
		configurations.DELETE("/:configID/voltages/:voltage", configurationHandler.HandleRemoveVoltage)
	}

	s.Router.GET("/", v1.HandleHealthcheck)
	s.Router.GET("/metrics", metrics.Handler())

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Stand Portal API"
	docs.SwaggerInfo.Description = "Exhibitor stand submission and review workflow."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
