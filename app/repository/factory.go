package repository

import (
	"sync"

	"gorm.io/gorm"
)

// Factory manages repository instances and ensures they are singletons
type Factory struct {
	db    *gorm.DB
	repos *Repositories
	once  sync.Once
}

// NewFactory creates a new repository factory
func NewFactory(db *gorm.DB) *Factory {
	return &Factory{
		db: db,
	}
}

// GetRepositories returns a singleton instance of all repositories
func (f *Factory) GetRepositories() *Repositories {
	f.once.Do(func() {
		f.repos = NewRepositories(f.db)
	})
	return f.repos
}

// GetPetReportRepository returns the pet report repository instance
func (f *Factory) GetPetReportRepository() PetReportRepository {
	return f.GetRepositories().PetReport
}

// GetPhotoRepository returns the photo repository instance
func (f *Factory) GetPhotoRepository() PhotoRepository {
	return f.GetRepositories().Photo
}

// Global factory instance
var globalFactory *Factory
var factoryOnce sync.Once

// InitializeFactory initializes the global repository factory
func InitializeFactory(db *gorm.DB) {
	factoryOnce.Do(func() {
		globalFactory = NewFactory(db)
	})
}

// GetGlobalFactory returns the global repository factory instance
func GetGlobalFactory() *Factory {
	if globalFactory == nil {
		panic("Repository factory not initialized. Call InitializeFactory first.")
	}
	return globalFactory
}

// GetGlobalRepositories returns the global repositories instance
func GetGlobalRepositories() *Repositories {
	return GetGlobalFactory().GetRepositories()
}

// SwapGlobalRepositories replaces the globally registered repositories and
// returns the previous set, or nil if none were registered. Tests use it to
// install stub implementations of the persistence layer.
func SwapGlobalRepositories(repos *Repositories) *Repositories {
	var prev *Repositories
	if globalFactory != nil {
		prev = globalFactory.GetRepositories()
	}
	f := &Factory{}
	f.once.Do(func() { f.repos = repos })
	globalFactory = f
	return prev
}
