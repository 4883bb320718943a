package container

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-graph/config"
	"github.com/oksasatya/go-social-graph/internal/domain/repository"
	"github.com/oksasatya/go-social-graph/pkg/helpers"
)

// app-level container to share constructed components across packages.
// Router modules wire themselves from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	mediaStore  repository.MediaStore

	jwtManager *helpers.JWTManager

	emailPub  *helpers.RabbitPublisher
	repairPub *helpers.RabbitPublisher
)

func SetConfig(c *config.Config)              { cfg = c }
func GetConfig() *config.Config               { return cfg }
func SetLogger(l *logrus.Logger)              { logger = l }
func GetLogger() *logrus.Logger               { return logger }
func SetPGPool(p *pgxpool.Pool)               { pgPool = p }
func GetPGPool() *pgxpool.Pool                { return pgPool }
func SetRedis(r *redis.Client)                { redisClient = r }
func GetRedis() *redis.Client                 { return redisClient }
func SetMedia(m repository.MediaStore)        { mediaStore = m }
func GetMedia() repository.MediaStore         { return mediaStore }
func SetJWT(m *helpers.JWTManager)            { jwtManager = m }
func GetJWT() *helpers.JWTManager             { return jwtManager }
func SetEmailPub(p *helpers.RabbitPublisher)  { emailPub = p }
func GetEmailPub() *helpers.RabbitPublisher   { return emailPub }
func SetRepairPub(p *helpers.RabbitPublisher) { repairPub = p }
func GetRepairPub() *helpers.RabbitPublisher  { return repairPub }
