package provider

import (
	"github.com/linkvault-next/internal/config"
	"github.com/linkvault-next/internal/models"
	"github.com/linkvault-next/internal/repository"
	"github.com/linkvault-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config *config.Config

	// Repositories
	LinkRepo repository.LinkRepository

	// Services
	LinkService *service.LinkService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	container := &Container{Config: cfg}
	container.initRepositories()
	container.initServices()
	return container
}

func (c *Container) initRepositories() {
	db := models.DB

	c.LinkRepo = repository.NewLinkRepository(db)
}

func (c *Container) initServices() {
	limits := service.LinkLimits{}
	if c.Config != nil {
		limits = service.LinkLimits{
			DefaultListLimit:   c.Config.Link.DefaultListLimit,
			DefaultSearchLimit: c.Config.Link.DefaultSearchLimit,
			MaxLimit:           c.Config.Link.MaxLimit,
		}
	}
	c.LinkService = service.NewLinkService(c.LinkRepo, limits)
}
