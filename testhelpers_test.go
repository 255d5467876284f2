//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	goredis "github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/sitso-en/photovault/internal/application"
	"github.com/sitso-en/photovault/internal/cache"
	"github.com/sitso-en/photovault/internal/config"
	"github.com/sitso-en/photovault/internal/events"
	"github.com/sitso-en/photovault/internal/kafka"
	"github.com/sitso-en/photovault/internal/repository"
	"github.com/sitso-en/photovault/internal/storage"
)

const (
	testBucket    = "photovault-test"
	testAccessKey = "testadmin"
	testSecretKey = "testsecret"
)

// pngBytes is a minimal image carrying the PNG signature so uploads
// pass content sniffing.
var pngBytes = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0x15, 0xC4, 0x89,
}

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	RedisAddr    string
	StorageCfg   config.StorageConfig
	KafkaBrokers []string
	Cleanup      func()
}

// photovaultStack holds the wired-up service components under test.
type photovaultStack struct {
	PhotoService *application.PhotoService
	AlbumService *application.AlbumService
	ObjectStore  storage.ObjectStore
	CacheStore   *cache.Store
	Producer     *kafka.Producer
	Cleanup      func()
}

// setupContainers starts PostgreSQL, Redis, MinIO and Kafka
// testcontainers and returns connected clients.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	// PostgreSQL
	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_photovault",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_photovault sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, db.AutoMigrate(
		&repository.UserModel{},
		&repository.PhotoModel{},
		&repository.AlbumModel{},
		&repository.AlbumPhotoModel{},
	))

	// Redis
	redisReq := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: redisReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start Redis container")

	redisHost, err := redisContainer.Host(ctx)
	require.NoError(t, err)
	redisPort, err := redisContainer.MappedPort(ctx, "6379")
	require.NoError(t, err)
	redisAddr := net.JoinHostPort(redisHost, redisPort.Port())

	// MinIO
	minioReq := testcontainers.ContainerRequest{
		Image:        "minio/minio:RELEASE.2024-01-16T16-07-38Z",
		ExposedPorts: []string{"9000/tcp"},
		Env: map[string]string{
			"MINIO_ROOT_USER":     testAccessKey,
			"MINIO_ROOT_PASSWORD": testSecretKey,
		},
		Cmd: []string{"server", "/data"},
		WaitingFor: wait.ForHTTP("/minio/health/live").
			WithPort("9000/tcp").
			WithStartupTimeout(60 * time.Second),
	}
	minioContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: minioReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start MinIO container")

	minioHost, err := minioContainer.Host(ctx)
	require.NoError(t, err)
	minioPort, err := minioContainer.MappedPort(ctx, "9000")
	require.NoError(t, err)
	minioEndpoint := net.JoinHostPort(minioHost, minioPort.Port())

	createBucket(t, minioEndpoint)

	storageCfg := config.StorageConfig{
		Endpoint:  minioEndpoint,
		AccessKey: testAccessKey,
		SecretKey: testSecretKey,
		Bucket:    testBucket,
		// Public URLs resolve against the same endpoint in tests.
		PublicDomain: minioEndpoint,
		UseSSL:       false,
		Timeout:      10 * time.Second,
	}

	// Kafka (confluent-local supports KRaft natively)
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, kafkaBrokers, events.TopicPhotoEvents, events.TopicUserEvents)

	cleanup := func() {
		for _, c := range []testcontainers.Container{kafkaContainer, minioContainer, redisContainer, pgContainer} {
			if err := c.Terminate(ctx); err != nil {
				t.Logf("failed to terminate container: %v", err)
			}
		}
	}

	return &testInfra{
		DB:           db,
		RedisAddr:    redisAddr,
		StorageCfg:   storageCfg,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupStack wires the full service stack against real backends.
func setupStack(t *testing.T, infra *testInfra) *photovaultStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	redisClient := goredis.NewClient(&goredis.Options{Addr: infra.RedisAddr})
	cacheStore := cache.NewStore(cache.NewRedisBackend(redisClient), logger)

	cacheCfg := config.CacheConfig{
		TTL:        5 * time.Minute,
		TTLLong:    time.Hour,
		PageWindow: 10,
	}
	invalidator := cache.NewInvalidator(cacheStore, cacheCfg.PageWindow)

	validator := storage.NewValidator(
		5*1024*1024,
		[]string{"image/png", "image/jpeg", "image/gif"},
		[]string{".png", ".jpg", ".jpeg", ".gif"},
	)
	objectStore, err := storage.NewClient(infra.StorageCfg, validator, logger)
	require.NoError(t, err, "failed to create object store client")

	producer := kafka.NewProducer(infra.KafkaBrokers, logger)

	photoRepo := repository.NewGormPhotoRepository(infra.DB)
	albumRepo := repository.NewGormAlbumRepository(infra.DB)

	photoSvc := application.NewPhotoService(
		photoRepo, albumRepo, objectStore, cacheStore, invalidator, producer, cacheCfg, logger,
	)
	albumSvc := application.NewAlbumService(
		albumRepo, photoRepo, cacheStore, invalidator, cacheCfg, logger,
	)

	return &photovaultStack{
		PhotoService: photoSvc,
		AlbumService: albumSvc,
		ObjectStore:  objectStore,
		CacheStore:   cacheStore,
		Producer:     producer,
		Cleanup: func() {
			_ = producer.Close()
			_ = redisClient.Close()
		},
	}
}

// createBucket provisions the test bucket on the MinIO container.
func createBucket(t *testing.T, endpoint string) {
	t.Helper()
	mc, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(testAccessKey, testSecretKey, ""),
		Secure: false,
	})
	require.NoError(t, err, "failed to create MinIO admin client")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, mc.MakeBucket(ctx, testBucket, minio.MakeBucketOptions{}), "failed to create bucket")
}

// publishTestEvent publishes a CloudEvent to Kafka.
func publishTestEvent(t *testing.T, brokers []string, topic, source, eventType string, data interface{}) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	producer := kafka.NewProducer(brokers, logger)
	defer func() { _ = producer.Close() }()

	ce, err := kafka.NewCloudEvent(source, eventType, data)
	require.NoError(t, err, "failed to create cloud event")

	err = producer.PublishEvent(context.Background(), topic, ce)
	require.NoError(t, err, "failed to publish event")
}

// consumeOneEvent reads from a Kafka topic until it finds an event of
// the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with
// "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
