package app

import (
	"fmt"

	"github.com/qs-lzh/yamdb/config"
	"github.com/qs-lzh/yamdb/internal/auth"
	"github.com/qs-lzh/yamdb/internal/cache"
	"github.com/qs-lzh/yamdb/internal/mail"
	"github.com/qs-lzh/yamdb/internal/mq"
	"github.com/qs-lzh/yamdb/internal/repository"
	"github.com/qs-lzh/yamdb/internal/service/domain"
	"github.com/qs-lzh/yamdb/internal/service/workflow"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config

	DB     *gorm.DB
	Cache  *cache.RedisCache
	Logger *zap.Logger
	MQConn *amqp.Connection

	Tokens *auth.JWTManager
	Codes  *auth.CodeGenerator

	UserService     domain.UserService
	CategoryService domain.CategoryService
	GenreService    domain.GenreService
	TitleService    domain.TitleService
	ReviewService   domain.ReviewService
	CommentService  domain.CommentService

	MailWorkflow *workflow.MailWorkflow
}

// New wires repositories, services and workflows. cache and mqConn may be
// nil: ratings are then always computed from the database and mails are
// sent inline.
func New(config *config.Config, db *gorm.DB, redisCache *cache.RedisCache, mqConn *amqp.Connection, logger *zap.Logger) (*App, error) {
	tokens, err := auth.NewJWTManager(config.JWTSecret, config.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("access tokens: %w", err)
	}
	codes, err := auth.NewCodeGenerator(config.ConfirmationSecret, config.ConfirmationCodeTTL)
	if err != nil {
		return nil, fmt.Errorf("confirmation codes: %w", err)
	}
	sender, err := newSender(config, logger)
	if err != nil {
		return nil, err
	}

	userRepo := repository.NewUserRepoGorm(db)
	categoryRepo := repository.NewCategoryRepoGorm(db)
	genreRepo := repository.NewGenreRepoGorm(db)
	titleRepo := repository.NewTitleRepoGorm(db)
	reviewRepo := repository.NewReviewRepoGorm(db)
	commentRepo := repository.NewCommentRepoGorm(db)

	// a nil *RedisCache must not become a non-nil interface
	var ratings domain.RatingCache
	if redisCache != nil {
		ratings = redisCache
	}

	mailWorkflow := workflow.NewMailWorkflow(mqConn, sender, logger.Named("mail"))

	return &App{
		Config:          config,
		DB:              db,
		Cache:           redisCache,
		Logger:          logger,
		MQConn:          mqConn,
		Tokens:          tokens,
		Codes:           codes,
		UserService:     domain.NewUserService(db, userRepo, reviewRepo, ratings, codes, tokens, mailWorkflow, logger.Named("users")),
		CategoryService: domain.NewCategoryService(categoryRepo, logger.Named("categories")),
		GenreService:    domain.NewGenreService(genreRepo, logger.Named("genres")),
		TitleService:    domain.NewTitleService(titleRepo, categoryRepo, genreRepo, ratings, logger.Named("titles")),
		ReviewService:   domain.NewReviewService(reviewRepo, titleRepo, ratings, logger.Named("reviews")),
		CommentService:  domain.NewCommentService(commentRepo, reviewRepo, logger.Named("comments")),
		MailWorkflow:    mailWorkflow,
	}, nil
}

func newSender(config *config.Config, logger *zap.Logger) (mail.Sender, error) {
	if config.SMTPAddr == "" {
		logger.Warn("SMTP_ADDR not set, confirmation mails are written to the log")
		return mail.NewLogSender(logger.Named("mail")), nil
	}
	sender, err := mail.NewSMTPSender(config.SMTPAddr, config.SMTPUsername, config.SMTPPassword, config.MailFrom, config.SMTPTimeout)
	if err != nil {
		return nil, fmt.Errorf("smtp: %w", err)
	}
	return sender, nil
}

func (app *App) Init() error {
	if app.MQConn == nil {
		return nil
	}

	// init rabbit mq
	if err := mq.InitQueues(app.MQConn); err != nil {
		return fmt.Errorf("init queues: %w", err)
	}
	return app.MailWorkflow.Start(app.MQConn)
}

func (app *App) Close() error {
	if app.MQConn != nil {
		if err := app.MQConn.Close(); err != nil {
			app.Logger.Warn("closing rabbitmq connection", zap.Error(err))
		}
	}
	if app.Cache != nil {
		if err := app.Cache.Close(); err != nil {
			app.Logger.Warn("closing redis client", zap.Error(err))
		}
	}
	sqlDB, err := app.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
