// Package di wires the application graph: databases, repositories, clients
// and services. Everything is constructed here once and handed to the server
// and the scheduler; no package reaches for globals.
package di

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/felixsc1/BoomerBitcoinV2/internal/clientdata"
	"github.com/felixsc1/BoomerBitcoinV2/internal/clients/coingecko"
	"github.com/felixsc1/BoomerBitcoinV2/internal/clients/yahoo"
	"github.com/felixsc1/BoomerBitcoinV2/internal/config"
	"github.com/felixsc1/BoomerBitcoinV2/internal/database"
	"github.com/felixsc1/BoomerBitcoinV2/internal/modules/charts"
	"github.com/felixsc1/BoomerBitcoinV2/internal/modules/pnl"
	"github.com/felixsc1/BoomerBitcoinV2/internal/modules/purchases"
	"github.com/felixsc1/BoomerBitcoinV2/internal/reliability"
	"github.com/felixsc1/BoomerBitcoinV2/internal/services"
)

// Container holds all application dependencies
type Container struct {
	// Databases
	PurchasesDB *database.DB
	CacheDB     *database.DB

	// Repositories
	PurchaseRepo *purchases.Repository
	CacheRepo    *clientdata.Repository

	// Market data clients
	CoinGeckoClient *coingecko.Client
	YahooClient     *yahoo.Client

	// Services
	PriceCache    *services.PriceCacheService
	PnLService    *pnl.Service
	ChartsService *charts.Service
	BackupService *reliability.BackupService

	// CloudBackup is nil unless S3 credentials are configured.
	CloudBackup *reliability.CloudBackupService

	// Jobs
	CleanupJob *clientdata.CleanupJob

	log zerolog.Logger
}

// New builds the full dependency graph from configuration.
func New(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	c := &Container{log: log}

	if err := c.initDatabases(cfg); err != nil {
		return nil, err
	}
	c.initRepositories()
	c.initClients(cfg)
	c.initServices(cfg)

	return c, nil
}

func (c *Container) initDatabases(cfg *config.Config) error {
	purchasesDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "purchases.db"),
		Profile: database.ProfileLedger,
		Name:    "purchases",
	})
	if err != nil {
		return fmt.Errorf("failed to open purchases database: %w", err)
	}
	if err := purchasesDB.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate purchases database: %w", err)
	}

	cacheDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "client_data.db"),
		Profile: database.ProfileCache,
		Name:    "client_data",
	})
	if err != nil {
		purchasesDB.Close()
		return fmt.Errorf("failed to open cache database: %w", err)
	}
	if err := cacheDB.Migrate(); err != nil {
		purchasesDB.Close()
		cacheDB.Close()
		return fmt.Errorf("failed to migrate cache database: %w", err)
	}

	c.PurchasesDB = purchasesDB
	c.CacheDB = cacheDB
	return nil
}

func (c *Container) initRepositories() {
	c.PurchaseRepo = purchases.NewRepository(c.PurchasesDB.Conn(), c.log)
	c.CacheRepo = clientdata.NewRepository(c.CacheDB.Conn())
}

func (c *Container) initClients(cfg *config.Config) {
	c.CoinGeckoClient = coingecko.NewClient(cfg.CoinGeckoBaseURL, c.log)
	c.YahooClient = yahoo.NewClient(cfg.YahooBaseURL, c.log)
}

func (c *Container) initServices(cfg *config.Config) {
	c.PriceCache = services.NewPriceCacheService(c.CacheRepo, c.log, c.CoinGeckoClient, c.YahooClient)
	c.PnLService = pnl.NewService(c.PurchaseRepo, c.PriceCache, c.log)
	c.ChartsService = charts.NewService(c.PurchaseRepo, c.PriceCache, c.log)

	c.BackupService = reliability.NewBackupService(map[string]*database.DB{
		"purchases":   c.PurchasesDB,
		"client_data": c.CacheDB,
	}, c.log)

	c.CleanupJob = clientdata.NewCleanupJob(c.CacheRepo, c.log)

	backup := cfg.Backup
	if backup != nil && backup.Enabled && backup.S3Bucket != "" &&
		backup.AccessKeyID != "" && backup.SecretAccessKey != "" {
		s3Client, err := reliability.NewS3Client(
			backup.S3Region,
			backup.S3Endpoint,
			backup.AccessKeyID,
			backup.SecretAccessKey,
			backup.S3Bucket,
			c.log,
		)
		if err != nil {
			c.log.Warn().Err(err).Msg("Failed to initialize S3 client, cloud backup disabled")
		} else {
			c.CloudBackup = reliability.NewCloudBackupService(s3Client, c.BackupService, cfg.DataDir, c.log)
			c.log.Info().Str("bucket", backup.S3Bucket).Msg("Cloud backup enabled")
		}
	}
}

// Close releases all held resources.
func (c *Container) Close() {
	if c.CacheDB != nil {
		if err := c.CacheDB.Close(); err != nil {
			c.log.Error().Err(err).Msg("Failed to close cache database")
		}
	}
	if c.PurchasesDB != nil {
		if err := c.PurchasesDB.Close(); err != nil {
			c.log.Error().Err(err).Msg("Failed to close purchases database")
		}
	}
}
