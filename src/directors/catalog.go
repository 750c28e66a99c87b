package directors

import (
	"sync"

	"go.uber.org/zap"

	"relstore/src/models"
)

// Catalog is the process-wide singleton bundling the one models.Database a
// standalone process operates over with its TableService facade, in the
// style of the teacher's ServiceManager singleton — generalised from a
// fixed set of named services to the single schema registry this core
// revolves around.
type Catalog struct {
	Database *models.Database
	Tables   *TableService
	logger   *zap.SugaredLogger
}

var (
	instance *Catalog
	once     sync.Once
	mu       sync.RWMutex
)

// InitCatalog initializes the Catalog singleton. Subsequent calls are
// no-ops; use ResetCatalog (tests only) to force re-initialization.
func InitCatalog(db *models.Database, logger *zap.SugaredLogger) *Catalog {
	once.Do(func() {
		mu.Lock()
		defer mu.Unlock()
		instance = &Catalog{
			Database: db,
			Tables:   NewTableService(db, nil, logger),
			logger:   logger,
		}
		if logger != nil {
			logger.Info("catalog singleton initialized")
		}
	})
	return instance
}

// GetCatalog returns the singleton, or nil if InitCatalog has not run yet.
func GetCatalog() *Catalog {
	mu.RLock()
	defer mu.RUnlock()
	return instance
}

// ResetCatalog clears the singleton. Tests use this to get a fresh Catalog
// per test case.
func ResetCatalog() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}
