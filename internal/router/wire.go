package router

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jwalitptl/homecare-api/internal/config"
	"github.com/jwalitptl/homecare-api/internal/email"
	"github.com/jwalitptl/homecare-api/internal/handler"
	agencyHandler "github.com/jwalitptl/homecare-api/internal/handler/agency"
	assignmentHandler "github.com/jwalitptl/homecare-api/internal/handler/assignment"
	patientHandler "github.com/jwalitptl/homecare-api/internal/handler/patient"
	replyHandler "github.com/jwalitptl/homecare-api/internal/handler/reply"
	therapistHandler "github.com/jwalitptl/homecare-api/internal/handler/therapist"
	"github.com/jwalitptl/homecare-api/internal/repository"
	agencyService "github.com/jwalitptl/homecare-api/internal/service/agency"
	assignmentService "github.com/jwalitptl/homecare-api/internal/service/assignment"
	patientService "github.com/jwalitptl/homecare-api/internal/service/patient"
	replyService "github.com/jwalitptl/homecare-api/internal/service/reply"
	therapistService "github.com/jwalitptl/homecare-api/internal/service/therapist"
	"github.com/jwalitptl/homecare-api/pkg/logger"
	"github.com/jwalitptl/homecare-api/pkg/metrics"
	"github.com/jwalitptl/homecare-api/pkg/validator"
)

// Deps are the process level collaborators the API is built from.
type Deps struct {
	Store    repository.Store
	Logger   *logger.Logger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Mailer   email.Service
}

// Build assembles services, handlers and the router.
func Build(cfg *config.Config, deps Deps) (*Router, error) {
	if err := validator.RegisterGin(); err != nil {
		return nil, err
	}

	templates, err := replyService.LoadTemplates(cfg.Reply.TemplatesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load reply templates: %w", err)
	}

	v := validator.New()
	agencySvc := agencyService.NewService(deps.Store, v, deps.Logger, agencyService.Config{
		CacheTTL:        cfg.Cache.AgencyTTL,
		CleanupInterval: cfg.Cache.CleanupInterval,
	})
	patientSvc := patientService.NewService(deps.Store, v, deps.Logger)
	patientSvc.OnAgencyChange(agencySvc.Invalidate)
	assignmentSvc := assignmentService.NewService(deps.Store, deps.Logger, deps.Metrics)
	therapistSvc := therapistService.NewService(deps.Store, v, deps.Logger)
	replySvc := replyService.NewService(deps.Store, deps.Mailer, deps.Logger, deps.Metrics, replyService.Config{
		Templates:   templates,
		FromAddress: cfg.Reply.FromAddress,
	})

	return NewRouter(ConfigFrom(cfg), deps.Metrics,
		handler.NewHandler(deps.Store, deps.Gatherer),
		agencyHandler.NewHandler(agencySvc),
		patientHandler.NewHandler(patientSvc),
		assignmentHandler.NewHandler(assignmentSvc),
		therapistHandler.NewHandler(therapistSvc),
		replyHandler.NewHandler(replySvc),
	), nil
}
