package services

import (
	"log/slog"

	"github.com/SAP-F-2025/voice-service/internal/cache"
	"github.com/SAP-F-2025/voice-service/internal/events"
	"github.com/SAP-F-2025/voice-service/internal/models"
	"github.com/SAP-F-2025/voice-service/internal/repositories"
	"github.com/SAP-F-2025/voice-service/internal/validator"
)

// ServiceManager hands the transport layer every service, built over one
// repository, cache and publisher.
type ServiceManager interface {
	Resolver() Resolver
	Catalog() CatalogService
	Block() BlockService
	Submission() SubmissionService
	Completion() CompletionService
	Report() ReportService
	Membership() MembershipService
}

type ManagerConfig struct {
	Roles       RoleConfig
	OrderPolicy models.OrderPolicy
}

type serviceManager struct {
	resolver   Resolver
	catalog    CatalogService
	block      BlockService
	submission SubmissionService
	completion CompletionService
	report     ReportService
	membership MembershipService
}

func NewServiceManager(
	repo repositories.Repository,
	structureCache cache.StructureCache,
	publisher events.EventPublisher,
	validator *validator.Validator,
	logger *slog.Logger,
	cfg ManagerConfig,
) ServiceManager {
	if structureCache == nil {
		structureCache = cache.NewNoopStructureCache()
	}

	resolver := NewResolver(repo, structureCache, cfg.Roles, NewServiceLogger(logger, "resolver"))
	completion := NewCompletionService(repo, resolver, NewServiceLogger(logger, "completion"))

	return &serviceManager{
		resolver:   resolver,
		catalog:    NewCatalogService(repo, resolver, structureCache, validator, NewServiceLogger(logger, "catalog")),
		block:      NewBlockService(repo, resolver, publisher, validator, NewServiceLogger(logger, "block")),
		submission: NewSubmissionService(repo, resolver, publisher, validator, cfg.OrderPolicy, NewServiceLogger(logger, "submission")),
		completion: completion,
		report:     NewReportService(completion, NewServiceLogger(logger, "report")),
		membership: NewMembershipService(repo, validator, NewServiceLogger(logger, "membership")),
	}
}

func (m *serviceManager) Resolver() Resolver            { return m.resolver }
func (m *serviceManager) Catalog() CatalogService       { return m.catalog }
func (m *serviceManager) Block() BlockService           { return m.block }
func (m *serviceManager) Submission() SubmissionService { return m.submission }
func (m *serviceManager) Completion() CompletionService { return m.completion }
func (m *serviceManager) Report() ReportService         { return m.report }
func (m *serviceManager) Membership() MembershipService { return m.membership }
