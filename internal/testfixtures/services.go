package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/internlog/internal/application"
	"github.com/example/internlog/internal/report"
)

// ServiceFactory builds application services wired to a shared fixture
// clock and id generator.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
	Logger      *slog.Logger
}

// ServiceFactoryOption configures a ServiceFactory.
type ServiceFactoryOption func(*ServiceFactory)

func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

func WithClock(clock *Clock) ServiceFactoryOption {
	return func(f *ServiceFactory) { f.Clock = clock }
}

func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(f *ServiceFactory) { f.IDGenerator = generator }
}

func WithLogger(logger *slog.Logger) ServiceFactoryOption {
	return func(f *ServiceFactory) { f.Logger = logger }
}

// NewTaskService returns a task service. A non-nil cache is purged on every
// task write.
func (f *ServiceFactory) NewTaskService(tasks application.TaskRepository, cache *application.SummaryCache) *application.TaskService {
	service := application.NewTaskServiceWithLogger(tasks, f.IDGenerator.NextFunc(), f.Clock.NowFunc(), f.Logger)
	if cache != nil {
		service.InvalidateOnWrite(cache)
	}
	return service
}

func (f *ServiceFactory) NewProfileService(profiles application.ProfileRepository) *application.ProfileService {
	return application.NewProfileServiceWithLogger(profiles, f.IDGenerator.NextFunc(), f.Clock.NowFunc(), f.Logger)
}

// ReportServiceDeps captures dependencies for a report service. A nil
// Renderer renders real PDFs stamped with the factory clock.
type ReportServiceDeps struct {
	Tasks    application.TaskRepository
	Profiles application.ProfileRepository
	Renderer report.Renderer
	Options  application.ReportOptions
}

func (f *ServiceFactory) NewReportService(deps ReportServiceDeps) *application.ReportService {
	return application.NewReportServiceWithLogger(deps.Tasks, deps.Profiles, deps.Renderer, deps.Options, f.Clock.NowFunc(), f.Logger)
}
