package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"case_coordination_service/internal/coordination/app"
	"case_coordination_service/internal/coordination/repository"
	"case_coordination_service/internal/coordination/router"
	"case_coordination_service/pkg/config"
	"case_coordination_service/pkg/database"
	"case_coordination_service/pkg/logger"
	testtool "case_coordination_service/pkg/test_tool"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.CoordinationService, config.EnvConfig.CoordinationServiceLogPath)
	cfg := config.LoadConfig[config.Coordination](config.EnvConfig.CoordinationService, config.EnvConfig.CoordinationServiceYAMLPath)

	if cfg.Presence.StaleThreshold == 0 {
		cfg.Presence.StaleThreshold = 5 * time.Minute
	}
	if cfg.Presence.SweepInterval == 0 {
		cfg.Presence.SweepInterval = time.Minute
	}
	if cfg.Presence.RecordTTL == 0 {
		cfg.Presence.RecordTTL = 10 * time.Minute
	}
	if cfg.Typing.Timeout == 0 {
		cfg.Typing.Timeout = 3 * time.Second
	}

	testtool.StartPprof()

	ctx := context.Background()

	// mongo holds messages and notifications
	uri := fmt.Sprintf("mongodb://%s:%s@%s:%d", cfg.MongoSQL.User, cfg.MongoSQL.Password, cfg.MongoSQL.Host, cfg.MongoSQL.Port)
	mongo, err := database.NewMongoDB(ctx,
		database.Connection{
			ConnectStr:    uri,
			RetryCount:    cfg.MongoSQL.RetryCount,
			RetryInterval: time.Duration(cfg.MongoSQL.RetryInterval),
		},
		cfg.MongoSQL.Database)
	if err != nil {
		logger.Log.Fatal(
			"Unable to connect to mongoDB database after retries",
			zap.String("address", fmt.Sprintf("[%s]", uri)),
			zap.Error(err),
		)
	}
	defer mongo.Close(ctx)

	// redis carries the presence snapshot and the cross-node room fabric
	masterName, sentinel := config.GetRedisSetting()
	redisClient, err := database.NewRedisClient(masterName, sentinel, cfg.Redis.RedisDB)
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect redis err : %v", err))
	}

	// postgres is the platform's source of truth for users and case access
	pgURI := fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		cfg.PostgreSQL.User, cfg.PostgreSQL.Password, cfg.PostgreSQL.Host, cfg.PostgreSQL.Port, cfg.PostgreSQL.Database)
	pgPool, err := database.NewDatabaseConnection(database.Connection{
		ConnectStr:    pgURI,
		RetryCount:    cfg.PostgreSQL.RetryCount,
		RetryInterval: time.Duration(cfg.PostgreSQL.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal(
			"Unable to connect to postgres database after retries",
			zap.String("address", fmt.Sprintf("[%s]", pgURI)),
			zap.Error(err),
		)
	}
	defer pgPool.Close()

	var activityPublisher repository.ActivityPublisher
	if cfg.Kafka.Enabled {
		writer, err := database.NewKafkaWriterWithRetry(database.KafkaConnection{
			Brokers:       cfg.Kafka.Brokers,
			Topic:         cfg.Kafka.Topic,
			RetryCount:    cfg.Kafka.RetryCount,
			RetryInterval: time.Duration(cfg.Kafka.RetryInterval),
		})
		if err != nil {
			logger.Log.Fatal(fmt.Sprintf("connect kafka err : %v", err))
		}
		defer writer.Close()
		activityPublisher = repository.NewKafkaActivityPublisher(writer)
	}

	var notificationQueue repository.NotificationQueue
	if cfg.Rabbit.Enabled {
		rabbitConn, err := database.ConnectRabbitMQWithRetry(database.Connection{
			ConnectStr:    cfg.Rabbit.URL,
			RetryCount:    cfg.Rabbit.RetryCount,
			RetryInterval: time.Duration(cfg.Rabbit.RetryInterval),
		})
		if err != nil {
			logger.Log.Fatal(fmt.Sprintf("connect rabbitmq err : %v", err))
		}
		defer rabbitConn.Close()

		channel, err := database.GetRabbitMQChannelWithRetry(rabbitConn, cfg.Rabbit.RetryCount, time.Duration(cfg.Rabbit.RetryInterval))
		if err != nil {
			logger.Log.Fatal(fmt.Sprintf("open rabbitmq channel err : %v", err))
		}
		defer channel.Close()
		notificationQueue = repository.NewRabbitNotificationQueue(database.NewRabbitRepository(channel), cfg.Rabbit.Queue)
	}

	// repositories
	msgRepo := repository.NewMongoMessageRepository(mongo.Database)
	notificationRepo := repository.NewMongoNotificationRepository(mongo.Database)
	presenceRepo := repository.NewRedisPresenceRepository(redisClient, cfg.Presence.RecordTTL)
	directory, resolver := repository.NewAccessRepository(pgPool)
	fabric := repository.NewRedisPubSub(redisClient)

	// hub and use cases
	hub := app.NewConnectionHub()
	if err := hub.AttachFabric(ctx, fabric); err != nil {
		logger.Log.Fatal(fmt.Sprintf("attach room fabric err : %v", err))
	}

	roomUC := app.NewRoomSubscriptionUseCase(hub, resolver)
	presenceUC := app.NewPresenceUseCase(hub, presenceRepo, cfg.Presence.StaleThreshold)
	typingUC := app.NewTypingUseCase(hub, cfg.Typing.Timeout)
	notificationUC := app.NewNotificationUseCase(notificationRepo, hub, notificationQueue)
	messageUC := app.NewMessageUseCase(msgRepo, hub, notificationUC)
	activityUC := app.NewActivityBroadcaster(hub, activityPublisher)

	presenceUC.StartSweep(ctx, cfg.Presence.SweepInterval)

	r := fiber.New()
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.CoordinationServiceLogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file,
	}))

	wsHandler := app.NewCoordinationWebsocketHandler(hub, directory, roomUC, presenceUC, typingUC, messageUC, notificationUC, activityUC)
	router.RegisterRoutes(r, wsHandler, app.NewBroadcastHandler(notificationUC, activityUC))

	port := ":" + cfg.Port
	log.Printf("Coordination Service listening on %s", port)
	if err := r.Listen(port); err != nil {
		log.Fatalf("Failed to start Fiber: %v", err)
	}
}
