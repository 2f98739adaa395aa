package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"trend-api/domain/repository"
	"trend-api/infrastructure/configuration"
	"trend-api/infrastructure/logger"

	_ "github.com/lib/pq"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverMSSQL    = "mssql"
	DriverMySQL    = "mysql"
	DriverMongo    = "mongo"
	DriverSQLite   = "sqlite"
)

func NewPostgreSQLDB(ctx context.Context) (*sql.DB, error) {
	cfg := configuration.C.Database.Psql
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

func mysqlDSN(cfg configuration.Db) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name)
}

// NewMySQLGormDB opens MySQL through gorm. Each upsert is a single statement, so the
// implicit per-write transaction is skipped.
func NewMySQLGormDB() (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(mysqlDSN(configuration.C.Database.MySql)), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

func NewMongoDb(ctx context.Context) (*mongo.Client, error) {
	uri := configuration.C.Database.Mongo.URI
	if uri == "" {
		cfg := configuration.C.Database.Mongo
		uri = fmt.Sprintf("mongodb://%s:%s", cfg.Host, cfg.Port)
		if cfg.User != "" {
			uri = fmt.Sprintf("mongodb://%s:%s@%s:%s", cfg.User, cfg.Password, cfg.Host, cfg.Port)
		}
	}
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// NewTrendStore opens the backend selected by driver and prepares its schema.
func NewTrendStore(ctx context.Context, driver string) (repository.ITrendStore, error) {
	log := logger.GetLogger().WithField("driver", driver)
	switch driver {
	case DriverPostgres:
		db, err := NewPostgreSQLDB(ctx)
		if err != nil {
			return nil, err
		}
		if err := EnsureTrendSchema(db); err != nil {
			_ = db.Close()
			return nil, err
		}
		log.Info("PostgreSQL trend store ready")
		return NewTrendStorePostgres(db), nil
	case DriverMSSQL:
		db, err := NewMSSQLDB(ctx)
		if err != nil {
			return nil, err
		}
		if err := EnsureTrendSchemaMSSQL(db); err != nil {
			_ = db.Close()
			return nil, err
		}
		log.Info("MSSQL trend store ready")
		return NewTrendStoreMSSQL(db), nil
	case DriverMySQL:
		db, err := NewMySQLGormDB()
		if err != nil {
			return nil, err
		}
		if err := EnsureTrendSchemaGorm(db); err != nil {
			return nil, err
		}
		log.Info("MySQL trend store ready")
		return NewTrendStoreGorm(db), nil
	case DriverMongo:
		client, err := NewMongoDb(ctx)
		if err != nil {
			return nil, err
		}
		name := configuration.C.Database.Mongo.Name
		if err := EnsureTrendIndexesMongo(ctx, client, name); err != nil {
			log.WithField("error", err).Warn("Mongo trend indexes not created")
		}
		log.Info("MongoDB trend store ready")
		return NewTrendStoreMongo(client, name), nil
	case DriverSQLite, "":
		store, err := NewTrendStoreSQLite(configuration.C.Database.Sqlite.Path)
		if err != nil {
			return nil, err
		}
		log.WithField("path", configuration.C.Database.Sqlite.Path).Info("SQLite trend store ready")
		return store, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", driver)
}
